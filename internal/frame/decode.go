package frame

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
)

// Decode parses a "meta" prefixed metadata blob.
//
// The version byte is checked before anything else in the body is read: a
// mismatch returns UNSUPPORTED_VERSION even if the rest of the buffer is
// garbage. Every other failure is MALFORMED_METADATA with the offset of the
// element being read. Bytes after the body are ignored.
func Decode(raw []byte) (*RuntimeMetadataV14, error) {
	r := newReader(raw)

	magic, err := r.u32("magic prefix")
	if err != nil {
		return nil, err
	}
	if magic != MagicNumber {
		return nil, NewMalformedError(0, fmt.Sprintf("bad magic prefix 0x%08x", magic), nil)
	}

	version, err := r.u8("version")
	if err != nil {
		return nil, err
	}
	if version != SupportedVersion {
		return nil, NewUnsupportedVersionError(version)
	}

	md, err := r.metadataV14()
	if err != nil {
		return nil, err
	}

	if rest := r.remaining(); rest > 0 {
		slog.Debug("ignoring trailing metadata bytes", "bytes", rest, "offset", r.offset())
	}

	return md, nil
}

// DecodeHex decodes the 0x-prefixed hex string returned by the
// state_getMetadata RPC.
func DecodeHex(s string) (*RuntimeMetadataV14, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, NewMalformedError(-1, "metadata is not valid hex", err)
	}
	return Decode(raw)
}

// reader tracks the offset of a scale.Decoder over an in-memory buffer so
// every failure can report where it happened.
type reader struct {
	src  *bytes.Reader
	dec  *scale.Decoder
	size int
}

func newReader(raw []byte) *reader {
	src := bytes.NewReader(raw)
	return &reader{
		src:  src,
		dec:  scale.NewDecoder(src),
		size: len(raw),
	}
}

func (r *reader) offset() int {
	return r.size - r.src.Len()
}

func (r *reader) remaining() int {
	return r.src.Len()
}

func (r *reader) need(n int, what string) error {
	if r.remaining() < n {
		return NewMalformedError(r.offset(),
			fmt.Sprintf("truncated %s: need %d byte(s), have %d", what, n, r.remaining()), nil)
	}
	return nil
}

func (r *reader) u8(what string) (uint8, error) {
	if err := r.need(1, what); err != nil {
		return 0, err
	}
	at := r.offset()
	b, err := r.dec.ReadOneByte()
	if err != nil {
		return 0, NewMalformedError(at, "reading "+what, err)
	}
	return b, nil
}

func (r *reader) u32(what string) (uint32, error) {
	if err := r.need(4, what); err != nil {
		return 0, err
	}
	at := r.offset()
	var v uint32
	if err := r.dec.Decode(&v); err != nil {
		return 0, NewMalformedError(at, "reading "+what, err)
	}
	return v, nil
}

// compact reads a Compact<u32>, which is how portable type ids and all
// length prefixes are encoded.
func (r *reader) compact(what string) (uint32, error) {
	if err := r.need(1, what); err != nil {
		return 0, err
	}
	at := r.offset()
	v, err := r.dec.DecodeUintCompact()
	if err != nil {
		return 0, NewMalformedError(at, "invalid compact "+what, err)
	}
	if !v.IsUint64() || v.Uint64() > math.MaxUint32 {
		return 0, NewMalformedError(at, fmt.Sprintf("compact %s overflows u32", what), nil)
	}
	return uint32(v.Uint64()), nil
}

// length reads a length prefix. Every element this package decodes takes at
// least one byte, so a prefix larger than the remaining input is invalid.
func (r *reader) length(what string) (int, error) {
	at := r.offset()
	n, err := r.compact(what + " length")
	if err != nil {
		return 0, err
	}
	if uint64(n) > uint64(r.remaining()) {
		return 0, NewMalformedError(at,
			fmt.Sprintf("%s length %d exceeds remaining %d byte(s)", what, n, r.remaining()), nil)
	}
	return int(n), nil
}

func (r *reader) bytes(what string) ([]byte, error) {
	n, err := r.length(what)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}
	at := r.offset()
	if err := r.dec.Read(buf); err != nil {
		return nil, NewMalformedError(at, "reading "+what, err)
	}
	return buf, nil
}

func (r *reader) str(what string) (string, error) {
	at := r.offset()
	buf, err := r.bytes(what)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(buf) {
		return "", NewMalformedError(at, what+" is not valid UTF-8", nil)
	}
	return string(buf), nil
}

func (r *reader) option(what string) (bool, error) {
	at := r.offset()
	tag, err := r.u8(what + " option tag")
	if err != nil {
		return false, err
	}
	switch tag {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, NewMalformedError(at, fmt.Sprintf("invalid option tag %d for %s", tag, what), nil)
	}
}

func (r *reader) optionalStr(what string) (*string, error) {
	some, err := r.option(what)
	if err != nil || !some {
		return nil, err
	}
	s, err := r.str(what)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *reader) strs(what string) ([]string, error) {
	return readVec(r, what, func(int) (string, error) {
		return r.str(what)
	})
}

// readVec reads a length-prefixed vector. The result is never nil.
func readVec[T any](r *reader, what string, item func(i int) (T, error)) ([]T, error) {
	n, err := r.length(what)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		v, err := item(i)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (r *reader) metadataV14() (*RuntimeMetadataV14, error) {
	types, err := readVec(r, "types", func(int) (PortableType, error) {
		return r.portableType()
	})
	if err != nil {
		return nil, err
	}

	pallets, err := readVec(r, "pallets", func(int) (PalletMetadata, error) {
		return r.pallet()
	})
	if err != nil {
		return nil, err
	}

	extrinsic, err := r.extrinsic()
	if err != nil {
		return nil, err
	}

	runtime, err := r.compact("runtime type")
	if err != nil {
		return nil, err
	}

	return &RuntimeMetadataV14{
		Types:     types,
		Pallets:   pallets,
		Extrinsic: extrinsic,
		Runtime:   runtime,
	}, nil
}

func (r *reader) portableType() (PortableType, error) {
	id, err := r.compact("type id")
	if err != nil {
		return PortableType{}, err
	}

	path, err := r.strs("type path")
	if err != nil {
		return PortableType{}, err
	}

	params, err := readVec(r, "type params", func(int) (TypeParameter, error) {
		name, err := r.str("type param name")
		if err != nil {
			return TypeParameter{}, err
		}
		some, err := r.option("type param")
		if err != nil {
			return TypeParameter{}, err
		}
		p := TypeParameter{Name: name}
		if some {
			ty, err := r.compact("type param type")
			if err != nil {
				return TypeParameter{}, err
			}
			p.Type = &ty
		}
		return p, nil
	})
	if err != nil {
		return PortableType{}, err
	}

	def, err := r.typeDef()
	if err != nil {
		return PortableType{}, err
	}

	docs, err := r.strs("type docs")
	if err != nil {
		return PortableType{}, err
	}

	return PortableType{
		ID: id,
		Type: Type{
			Path:   path,
			Params: params,
			Def:    def,
			Docs:   docs,
		},
	}, nil
}

func (r *reader) typeDef() (TypeDef, error) {
	at := r.offset()
	tag, err := r.u8("type definition tag")
	if err != nil {
		return nil, err
	}

	switch tag {
	case 0:
		fields, err := r.fields()
		if err != nil {
			return nil, err
		}
		return &TypeDefComposite{Fields: fields}, nil
	case 1:
		variants, err := readVec(r, "variants", func(int) (Variant, error) {
			return r.variant()
		})
		if err != nil {
			return nil, err
		}
		return &TypeDefVariant{Variants: variants}, nil
	case 2:
		ty, err := r.compact("sequence element type")
		if err != nil {
			return nil, err
		}
		return &TypeDefSequence{Type: ty}, nil
	case 3:
		n, err := r.u32("array length")
		if err != nil {
			return nil, err
		}
		ty, err := r.compact("array element type")
		if err != nil {
			return nil, err
		}
		return &TypeDefArray{Len: n, Type: ty}, nil
	case 4:
		types, err := readVec(r, "tuple", func(int) (uint32, error) {
			return r.compact("tuple element type")
		})
		if err != nil {
			return nil, err
		}
		return &TypeDefTuple{Types: types}, nil
	case 5:
		pat := r.offset()
		p, err := r.u8("primitive tag")
		if err != nil {
			return nil, err
		}
		if !Primitive(p).Valid() {
			return nil, NewMalformedError(pat, fmt.Sprintf("invalid primitive tag %d", p), nil)
		}
		return &TypeDefPrimitive{Primitive: Primitive(p)}, nil
	case 6:
		ty, err := r.compact("compact inner type")
		if err != nil {
			return nil, err
		}
		return &TypeDefCompact{Type: ty}, nil
	case 7:
		store, err := r.compact("bit store type")
		if err != nil {
			return nil, err
		}
		order, err := r.compact("bit order type")
		if err != nil {
			return nil, err
		}
		return &TypeDefBitSequence{StoreType: store, OrderType: order}, nil
	default:
		return nil, NewMalformedError(at, fmt.Sprintf("invalid type definition tag %d", tag), nil)
	}
}

func (r *reader) fields() ([]Field, error) {
	return readVec(r, "fields", func(int) (Field, error) {
		name, err := r.optionalStr("field name")
		if err != nil {
			return Field{}, err
		}
		ty, err := r.compact("field type")
		if err != nil {
			return Field{}, err
		}
		typeName, err := r.optionalStr("field type name")
		if err != nil {
			return Field{}, err
		}
		docs, err := r.strs("field docs")
		if err != nil {
			return Field{}, err
		}
		return Field{Name: name, Type: ty, TypeName: typeName, Docs: docs}, nil
	})
}

func (r *reader) variant() (Variant, error) {
	name, err := r.str("variant name")
	if err != nil {
		return Variant{}, err
	}
	fields, err := r.fields()
	if err != nil {
		return Variant{}, err
	}
	index, err := r.u8("variant index")
	if err != nil {
		return Variant{}, err
	}
	docs, err := r.strs("variant docs")
	if err != nil {
		return Variant{}, err
	}
	return Variant{Name: name, Fields: fields, Index: index, Docs: docs}, nil
}

func (r *reader) pallet() (PalletMetadata, error) {
	var p PalletMetadata
	var err error

	if p.Name, err = r.str("pallet name"); err != nil {
		return p, err
	}

	some, err := r.option("pallet storage")
	if err != nil {
		return p, err
	}
	if some {
		storage, err := r.storage()
		if err != nil {
			return p, err
		}
		p.Storage = &storage
	}

	calls, err := r.optionalType("pallet calls")
	if err != nil {
		return p, err
	}
	if calls != nil {
		p.Calls = &PalletCallMetadata{Type: *calls}
	}

	event, err := r.optionalType("pallet event")
	if err != nil {
		return p, err
	}
	if event != nil {
		p.Event = &PalletEventMetadata{Type: *event}
	}

	p.Constants, err = readVec(r, "constants", func(int) (PalletConstantMetadata, error) {
		return r.constant()
	})
	if err != nil {
		return p, err
	}

	perr, err := r.optionalType("pallet error")
	if err != nil {
		return p, err
	}
	if perr != nil {
		p.Error = &PalletErrorMetadata{Type: *perr}
	}

	if p.Index, err = r.u8("pallet index"); err != nil {
		return p, err
	}

	return p, nil
}

func (r *reader) optionalType(what string) (*uint32, error) {
	some, err := r.option(what)
	if err != nil || !some {
		return nil, err
	}
	ty, err := r.compact(what + " type")
	if err != nil {
		return nil, err
	}
	return &ty, nil
}

func (r *reader) storage() (PalletStorageMetadata, error) {
	prefix, err := r.str("storage prefix")
	if err != nil {
		return PalletStorageMetadata{}, err
	}
	entries, err := readVec(r, "storage entries", func(int) (StorageEntryMetadata, error) {
		return r.storageEntry()
	})
	if err != nil {
		return PalletStorageMetadata{}, err
	}
	return PalletStorageMetadata{Prefix: prefix, Entries: entries}, nil
}

func (r *reader) storageEntry() (StorageEntryMetadata, error) {
	var e StorageEntryMetadata
	var err error

	if e.Name, err = r.str("storage entry name"); err != nil {
		return e, err
	}

	at := r.offset()
	modifier, err := r.u8("storage modifier")
	if err != nil {
		return e, err
	}
	if modifier > uint8(ModifierDefault) {
		return e, NewMalformedError(at, fmt.Sprintf("invalid storage modifier %d", modifier), nil)
	}
	e.Modifier = StorageEntryModifier(modifier)

	at = r.offset()
	tag, err := r.u8("storage entry type tag")
	if err != nil {
		return e, err
	}
	switch tag {
	case 0:
		value, err := r.compact("storage value type")
		if err != nil {
			return e, err
		}
		e.Type = &StoragePlain{Value: value}
	case 1:
		hashers, err := readVec(r, "storage hashers", func(int) (StorageHasher, error) {
			hat := r.offset()
			h, err := r.u8("storage hasher")
			if err != nil {
				return 0, err
			}
			if !StorageHasher(h).Valid() {
				return 0, NewMalformedError(hat, fmt.Sprintf("invalid storage hasher %d", h), nil)
			}
			return StorageHasher(h), nil
		})
		if err != nil {
			return e, err
		}
		key, err := r.compact("storage key type")
		if err != nil {
			return e, err
		}
		value, err := r.compact("storage value type")
		if err != nil {
			return e, err
		}
		e.Type = &StorageMap{Hashers: hashers, Key: key, Value: value}
	default:
		return e, NewMalformedError(at, fmt.Sprintf("invalid storage entry type tag %d", tag), nil)
	}

	if e.Default, err = r.bytes("storage default"); err != nil {
		return e, err
	}
	if e.Docs, err = r.strs("storage docs"); err != nil {
		return e, err
	}

	return e, nil
}

func (r *reader) constant() (PalletConstantMetadata, error) {
	var c PalletConstantMetadata
	var err error

	if c.Name, err = r.str("constant name"); err != nil {
		return c, err
	}
	if c.Type, err = r.compact("constant type"); err != nil {
		return c, err
	}
	if c.Value, err = r.bytes("constant value"); err != nil {
		return c, err
	}
	if c.Docs, err = r.strs("constant docs"); err != nil {
		return c, err
	}
	return c, nil
}

func (r *reader) extrinsic() (ExtrinsicMetadata, error) {
	var x ExtrinsicMetadata
	var err error

	if x.Type, err = r.compact("extrinsic type"); err != nil {
		return x, err
	}
	if x.Version, err = r.u8("extrinsic version"); err != nil {
		return x, err
	}
	x.SignedExtensions, err = readVec(r, "signed extensions", func(int) (SignedExtensionMetadata, error) {
		var ext SignedExtensionMetadata
		var err error
		if ext.Identifier, err = r.str("signed extension identifier"); err != nil {
			return ext, err
		}
		if ext.Type, err = r.compact("signed extension type"); err != nil {
			return ext, err
		}
		if ext.AdditionalSigned, err = r.compact("signed extension additional type"); err != nil {
			return ext, err
		}
		return ext, nil
	})
	return x, err
}
