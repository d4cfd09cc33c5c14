package testutil

import (
	"github.com/danforbes/dots/internal/frame"
)

// MetadataBuilder assembles synthetic version 14 metadata for tests.
//
// Types get sequential ids starting at 0 unless added with AddAt. Build
// fills in a unit tuple for the extrinsic and runtime types when the test
// did not set them, so every built tree passes registry checks.
//
// Thread-safety: not safe for concurrent use.
type MetadataBuilder struct {
	md          frame.RuntimeMetadataV14
	next        uint32
	used        map[uint32]bool
	extrinsicOK bool
	runtimeOK   bool
}

// NewMetadataBuilder creates an empty builder with extrinsic version 4.
func NewMetadataBuilder() *MetadataBuilder {
	return &MetadataBuilder{
		md: frame.RuntimeMetadataV14{
			Types:     []frame.PortableType{},
			Pallets:   []frame.PalletMetadata{},
			Extrinsic: frame.ExtrinsicMetadata{Version: 4, SignedExtensions: []frame.SignedExtensionMetadata{}},
		},
		used: make(map[uint32]bool),
	}
}

// Add registers def under the next free id and returns it.
func (b *MetadataBuilder) Add(def frame.TypeDef, path ...string) uint32 {
	for b.used[b.next] {
		b.next++
	}
	id := b.next
	b.AddAt(id, def, path...)
	return id
}

// AddAt registers def under an explicit id. Registering an id twice is
// allowed and produces metadata the registry rejects.
func (b *MetadataBuilder) AddAt(id uint32, def frame.TypeDef, path ...string) uint32 {
	if path == nil {
		path = []string{}
	}
	b.used[id] = true
	b.md.Types = append(b.md.Types, frame.PortableType{
		ID: id,
		Type: frame.Type{
			Path:   path,
			Params: []frame.TypeParameter{},
			Def:    def,
			Docs:   []string{},
		},
	})
	return id
}

// Primitive registers a primitive type.
func (b *MetadataBuilder) Primitive(p frame.Primitive) uint32 {
	return b.Add(&frame.TypeDefPrimitive{Primitive: p})
}

// Composite registers a composite with the given path and fields.
func (b *MetadataBuilder) Composite(path []string, fields ...frame.Field) uint32 {
	return b.Add(&frame.TypeDefComposite{Fields: nonNil(fields)}, path...)
}

// Variant registers a variant type with the given path and variants.
func (b *MetadataBuilder) Variant(path []string, variants ...frame.Variant) uint32 {
	return b.Add(&frame.TypeDefVariant{Variants: nonNil(variants)}, path...)
}

// Tuple registers a tuple of the given ids. No ids makes the unit type.
func (b *MetadataBuilder) Tuple(ids ...uint32) uint32 {
	return b.Add(&frame.TypeDefTuple{Types: nonNil(ids)})
}

// Sequence registers a Vec of elem.
func (b *MetadataBuilder) Sequence(elem uint32) uint32 {
	return b.Add(&frame.TypeDefSequence{Type: elem})
}

// Array registers a fixed-size array of elem.
func (b *MetadataBuilder) Array(length, elem uint32) uint32 {
	return b.Add(&frame.TypeDefArray{Len: length, Type: elem})
}

// Compact registers a compact-encoded inner.
func (b *MetadataBuilder) Compact(inner uint32) uint32 {
	return b.Add(&frame.TypeDefCompact{Type: inner})
}

// BitSequence registers a bit sequence.
func (b *MetadataBuilder) BitSequence(store, order uint32) uint32 {
	return b.Add(&frame.TypeDefBitSequence{StoreType: store, OrderType: order})
}

// Pallet appends a pallet. Nil slices are replaced with empty ones.
func (b *MetadataBuilder) Pallet(p frame.PalletMetadata) *MetadataBuilder {
	p.Constants = nonNil(p.Constants)
	b.md.Pallets = append(b.md.Pallets, p)
	return b
}

// Extension appends a signed extension.
func (b *MetadataBuilder) Extension(name string, ty, additional uint32) *MetadataBuilder {
	b.md.Extrinsic.SignedExtensions = append(b.md.Extrinsic.SignedExtensions, frame.SignedExtensionMetadata{
		Identifier:       name,
		Type:             ty,
		AdditionalSigned: additional,
	})
	return b
}

// Extrinsic sets the extrinsic type and version.
func (b *MetadataBuilder) Extrinsic(ty uint32, version uint8) *MetadataBuilder {
	b.md.Extrinsic.Type = ty
	b.md.Extrinsic.Version = version
	b.extrinsicOK = true
	return b
}

// ExtrinsicVersion sets the extrinsic format version without fixing the
// extrinsic type.
func (b *MetadataBuilder) ExtrinsicVersion(version uint8) *MetadataBuilder {
	b.md.Extrinsic.Version = version
	return b
}

// Runtime sets the runtime type.
func (b *MetadataBuilder) Runtime(ty uint32) *MetadataBuilder {
	b.md.Runtime = ty
	b.runtimeOK = true
	return b
}

// Build returns the assembled tree. The builder must not be used afterwards.
func (b *MetadataBuilder) Build() *frame.RuntimeMetadataV14 {
	if !b.extrinsicOK || !b.runtimeOK {
		unit := b.Tuple()
		if !b.extrinsicOK {
			b.Extrinsic(unit, b.md.Extrinsic.Version)
		}
		if !b.runtimeOK {
			b.Runtime(unit)
		}
	}
	return &b.md
}

// Bytes builds and encodes the tree.
func (b *MetadataBuilder) Bytes() ([]byte, error) {
	return frame.Encode(b.Build())
}

// Field makes a field. An empty name makes an unnamed field.
func Field(name string, ty uint32) frame.Field {
	f := frame.Field{Type: ty, Docs: []string{}}
	if name != "" {
		f.Name = &name
	}
	return f
}

// Variant makes a variant.
func Variant(index uint8, name string, fields ...frame.Field) frame.Variant {
	return frame.Variant{Name: name, Fields: nonNil(fields), Index: index, Docs: []string{}}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
