package frame

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
)

// Encode produces the "meta" prefixed version 14 encoding of md. It is the
// inverse of Decode and is used to build metadata fixtures.
func Encode(md *RuntimeMetadataV14) ([]byte, error) {
	return EncodeVersioned(md, SupportedVersion)
}

// EncodeVersioned is Encode with an arbitrary version byte. Only useful for
// producing inputs the decoder must reject.
func EncodeVersioned(md *RuntimeMetadataV14, version uint8) ([]byte, error) {
	w := newWriter()
	w.u32(MagicNumber)
	w.u8(version)
	w.metadataV14(md)
	if w.err != nil {
		return nil, fmt.Errorf("encode metadata: %w", w.err)
	}
	return w.buf.Bytes(), nil
}

// writer keeps the first error and turns every later write into a no-op,
// so encoding code can stay linear.
type writer struct {
	buf bytes.Buffer
	enc *scale.Encoder
	err error
}

func newWriter() *writer {
	w := &writer{}
	w.enc = scale.NewEncoder(&w.buf)
	return w
}

func (w *writer) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *writer) u8(v uint8) {
	if w.err != nil {
		return
	}
	w.fail(w.enc.PushByte(v))
}

func (w *writer) u32(v uint32) {
	if w.err != nil {
		return
	}
	w.fail(w.enc.Encode(v))
}

func (w *writer) compact(v uint32) {
	if w.err != nil {
		return
	}
	w.fail(w.enc.EncodeUintCompact(*new(big.Int).SetUint64(uint64(v))))
}

func (w *writer) bytes(b []byte) {
	w.compact(uint32(len(b)))
	if w.err != nil || len(b) == 0 {
		return
	}
	w.fail(w.enc.Write(b))
}

func (w *writer) str(s string) {
	w.bytes([]byte(s))
}

func (w *writer) strs(ss []string) {
	w.compact(uint32(len(ss)))
	for _, s := range ss {
		w.str(s)
	}
}

func (w *writer) option(some bool) {
	if some {
		w.u8(1)
	} else {
		w.u8(0)
	}
}

func (w *writer) optionalStr(s *string) {
	w.option(s != nil)
	if s != nil {
		w.str(*s)
	}
}

func (w *writer) optionalType(id *uint32) {
	w.option(id != nil)
	if id != nil {
		w.compact(*id)
	}
}

func (w *writer) metadataV14(md *RuntimeMetadataV14) {
	w.compact(uint32(len(md.Types)))
	for _, pt := range md.Types {
		w.portableType(pt)
	}

	w.compact(uint32(len(md.Pallets)))
	for _, p := range md.Pallets {
		w.pallet(p)
	}

	w.compact(md.Extrinsic.Type)
	w.u8(md.Extrinsic.Version)
	w.compact(uint32(len(md.Extrinsic.SignedExtensions)))
	for _, ext := range md.Extrinsic.SignedExtensions {
		w.str(ext.Identifier)
		w.compact(ext.Type)
		w.compact(ext.AdditionalSigned)
	}

	w.compact(md.Runtime)
}

func (w *writer) portableType(pt PortableType) {
	w.compact(pt.ID)
	w.strs(pt.Type.Path)
	w.compact(uint32(len(pt.Type.Params)))
	for _, p := range pt.Type.Params {
		w.str(p.Name)
		w.optionalType(p.Type)
	}
	if pt.Type.Def == nil {
		w.fail(fmt.Errorf("type %d has no definition", pt.ID))
		return
	}
	if _, err := VisitTypeDef[struct{}](pt.Type.Def, defWriter{w}); err != nil {
		w.fail(err)
	}
	w.strs(pt.Type.Docs)
}

func (w *writer) fields(fields []Field) {
	w.compact(uint32(len(fields)))
	for _, f := range fields {
		w.optionalStr(f.Name)
		w.compact(f.Type)
		w.optionalStr(f.TypeName)
		w.strs(f.Docs)
	}
}

// defWriter writes the tag and body of a TypeDef.
type defWriter struct{ w *writer }

func (d defWriter) VisitComposite(def *TypeDefComposite) (struct{}, error) {
	d.w.u8(0)
	d.w.fields(def.Fields)
	return struct{}{}, nil
}

func (d defWriter) VisitVariant(def *TypeDefVariant) (struct{}, error) {
	d.w.u8(1)
	d.w.compact(uint32(len(def.Variants)))
	for _, v := range def.Variants {
		d.w.str(v.Name)
		d.w.fields(v.Fields)
		d.w.u8(v.Index)
		d.w.strs(v.Docs)
	}
	return struct{}{}, nil
}

func (d defWriter) VisitSequence(def *TypeDefSequence) (struct{}, error) {
	d.w.u8(2)
	d.w.compact(def.Type)
	return struct{}{}, nil
}

func (d defWriter) VisitArray(def *TypeDefArray) (struct{}, error) {
	d.w.u8(3)
	d.w.u32(def.Len)
	d.w.compact(def.Type)
	return struct{}{}, nil
}

func (d defWriter) VisitTuple(def *TypeDefTuple) (struct{}, error) {
	d.w.u8(4)
	d.w.compact(uint32(len(def.Types)))
	for _, t := range def.Types {
		d.w.compact(t)
	}
	return struct{}{}, nil
}

func (d defWriter) VisitPrimitive(def *TypeDefPrimitive) (struct{}, error) {
	d.w.u8(5)
	d.w.u8(uint8(def.Primitive))
	return struct{}{}, nil
}

func (d defWriter) VisitCompact(def *TypeDefCompact) (struct{}, error) {
	d.w.u8(6)
	d.w.compact(def.Type)
	return struct{}{}, nil
}

func (d defWriter) VisitBitSequence(def *TypeDefBitSequence) (struct{}, error) {
	d.w.u8(7)
	d.w.compact(def.StoreType)
	d.w.compact(def.OrderType)
	return struct{}{}, nil
}

func (w *writer) pallet(p PalletMetadata) {
	w.str(p.Name)

	w.option(p.Storage != nil)
	if p.Storage != nil {
		w.str(p.Storage.Prefix)
		w.compact(uint32(len(p.Storage.Entries)))
		for _, e := range p.Storage.Entries {
			w.storageEntry(e)
		}
	}

	var calls, event, perr *uint32
	if p.Calls != nil {
		calls = &p.Calls.Type
	}
	if p.Event != nil {
		event = &p.Event.Type
	}
	if p.Error != nil {
		perr = &p.Error.Type
	}

	w.optionalType(calls)
	w.optionalType(event)

	w.compact(uint32(len(p.Constants)))
	for _, c := range p.Constants {
		w.str(c.Name)
		w.compact(c.Type)
		w.bytes(c.Value)
		w.strs(c.Docs)
	}

	w.optionalType(perr)
	w.u8(p.Index)
}

func (w *writer) storageEntry(e StorageEntryMetadata) {
	w.str(e.Name)
	w.u8(uint8(e.Modifier))
	switch t := e.Type.(type) {
	case *StoragePlain:
		w.u8(0)
		w.compact(t.Value)
	case *StorageMap:
		w.u8(1)
		w.compact(uint32(len(t.Hashers)))
		for _, h := range t.Hashers {
			w.u8(uint8(h))
		}
		w.compact(t.Key)
		w.compact(t.Value)
	default:
		w.fail(fmt.Errorf("storage entry %q has unknown type %T", e.Name, e.Type))
		return
	}
	w.bytes(e.Default)
	w.strs(e.Docs)
}
