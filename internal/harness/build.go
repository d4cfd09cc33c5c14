package harness

import (
	"github.com/danforbes/dots/internal/frame"
	"github.com/danforbes/dots/internal/testutil"
)

// Build converts the scenario into a raw metadata tree. The scenario must
// have passed validation.
func (s *Scenario) Build() *frame.RuntimeMetadataV14 {
	b := testutil.NewMetadataBuilder()

	for _, ts := range s.Types {
		b.AddAt(ts.ID, typeDef(ts), ts.Path...)
	}

	for _, p := range s.Pallets {
		b.Pallet(pallet(p))
	}

	for _, ext := range s.Extensions {
		b.Extension(ext.Name, ext.Type, ext.Additional)
	}

	version := uint8(4)
	if s.ExtrinsicVersion != nil {
		version = *s.ExtrinsicVersion
	}
	if s.Extrinsic != nil {
		b.Extrinsic(*s.Extrinsic, version)
	} else {
		b.ExtrinsicVersion(version)
	}
	if s.Runtime != nil {
		b.Runtime(*s.Runtime)
	}

	return b.Build()
}

// Bytes builds and encodes the scenario.
func (s *Scenario) Bytes() ([]byte, error) {
	return frame.Encode(s.Build())
}

func typeDef(ts TypeSpec) frame.TypeDef {
	switch {
	case ts.Primitive != "":
		return &frame.TypeDefPrimitive{Primitive: primitiveNames[ts.Primitive]}
	case ts.Composite != nil:
		return &frame.TypeDefComposite{Fields: fields(*ts.Composite)}
	case ts.Variant != nil:
		variants := make([]frame.Variant, 0, len(*ts.Variant))
		for _, v := range *ts.Variant {
			variants = append(variants, testutil.Variant(v.Index, v.Name, fields(v.Fields)...))
		}
		return &frame.TypeDefVariant{Variants: variants}
	case ts.Sequence != nil:
		return &frame.TypeDefSequence{Type: *ts.Sequence}
	case ts.Array != nil:
		return &frame.TypeDefArray{Len: ts.Array.Len, Type: ts.Array.Type}
	case ts.Tuple != nil:
		return &frame.TypeDefTuple{Types: append([]uint32{}, *ts.Tuple...)}
	case ts.Compact != nil:
		return &frame.TypeDefCompact{Type: *ts.Compact}
	case ts.BitSequence != nil:
		return &frame.TypeDefBitSequence{StoreType: ts.BitSequence.Store, OrderType: ts.BitSequence.Order}
	}
	return nil
}

func fields(specs []FieldSpec) []frame.Field {
	out := make([]frame.Field, 0, len(specs))
	for _, f := range specs {
		out = append(out, testutil.Field(f.Name, f.Type))
	}
	return out
}

func pallet(p PalletSpec) frame.PalletMetadata {
	out := frame.PalletMetadata{
		Name:      p.Name,
		Index:     p.Index,
		Constants: make([]frame.PalletConstantMetadata, 0, len(p.Constants)),
	}
	if p.Calls != nil {
		out.Calls = &frame.PalletCallMetadata{Type: *p.Calls}
	}
	if p.Events != nil {
		out.Event = &frame.PalletEventMetadata{Type: *p.Events}
	}
	if p.Errors != nil {
		out.Error = &frame.PalletErrorMetadata{Type: *p.Errors}
	}
	for _, c := range p.Constants {
		out.Constants = append(out.Constants, frame.PalletConstantMetadata{
			Name:  c.Name,
			Type:  c.Type,
			Value: []byte(c.Value),
			Docs:  []string{},
		})
	}
	if p.Storage != nil {
		storage := &frame.PalletStorageMetadata{
			Prefix:  p.Name,
			Entries: make([]frame.StorageEntryMetadata, 0, len(*p.Storage)),
		}
		for _, st := range *p.Storage {
			storage.Entries = append(storage.Entries, storageEntry(st))
		}
		out.Storage = storage
	}
	return out
}

func storageEntry(st StorageSpec) frame.StorageEntryMetadata {
	e := frame.StorageEntryMetadata{
		Name:     st.Name,
		Modifier: modifierNames[st.Modifier],
		Default:  []byte(st.Default),
		Docs:     []string{},
	}
	if st.Plain != nil {
		e.Type = &frame.StoragePlain{Value: *st.Plain}
	} else {
		hashers := make([]frame.StorageHasher, 0, len(st.Map.Hashers))
		for _, h := range st.Map.Hashers {
			hashers = append(hashers, hasherNames[h])
		}
		e.Type = &frame.StorageMap{Hashers: hashers, Key: st.Map.Key, Value: st.Map.Value}
	}
	return e
}
