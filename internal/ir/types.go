package ir

import (
	"slices"
)

// Kind is the discriminant of a ScaleType.
type Kind string

const (
	KindBoolean Kind = "Boolean"
	KindString  Kind = "String"
	KindU8      Kind = "U8"
	KindU16     Kind = "U16"
	KindU32     Kind = "U32"
	KindU64     Kind = "U64"
	KindU128    Kind = "U128"
	KindU256    Kind = "U256"
	KindI8      Kind = "I8"
	KindI16     Kind = "I16"
	KindI32     Kind = "I32"
	KindI64     Kind = "I64"
	KindI128    Kind = "I128"
	KindI256    Kind = "I256"
	KindCompact Kind = "Compact"
	KindEnum    Kind = "Enum"
	KindOption  Kind = "Option"
	KindResult  Kind = "Result"
	KindTuple   Kind = "Tuple"
	KindList    Kind = "List"
	KindStruct  Kind = "Struct"
)

// ValidKinds defines the allowed ScaleType discriminants.
var ValidKinds = map[Kind]bool{
	KindBoolean: true, KindString: true,
	KindU8: true, KindU16: true, KindU32: true, KindU64: true, KindU128: true, KindU256: true,
	KindI8: true, KindI16: true, KindI32: true, KindI64: true, KindI128: true, KindI256: true,
	KindCompact: true, KindEnum: true, KindOption: true, KindResult: true,
	KindTuple: true, KindList: true, KindStruct: true,
}

// ScaleType is a normalized type definition.
//
// Payload by kind:
//   - Enum: Variants, Name
//   - Struct: Fields, Name
//   - Tuple, Result: Fields (Result is always [ok, err])
//   - Compact, Option: Store
//   - List: Store, and Length when fixed-size
//
// Every other payload field is nil.
type ScaleType struct {
	Type     Kind      `json:"type" yaml:"type"`
	Variants []Variant `json:"variants" yaml:"variants"`
	Store    *uint32   `json:"store" yaml:"store"`
	Length   *uint32   `json:"length" yaml:"length"`
	Fields   []Field   `json:"fields" yaml:"fields"`
	Name     *string   `json:"name" yaml:"name"`
}

// Field is a (possibly unnamed) reference to another type.
type Field struct {
	Name  *string `json:"name" yaml:"name"`
	Field uint32  `json:"field" yaml:"field"`
}

// Variant is one case of an Enum. Fields is nil when the case carries no
// data.
type Variant struct {
	Index  uint8   `json:"index" yaml:"index"`
	Name   string  `json:"name" yaml:"name"`
	Fields []Field `json:"fields" yaml:"fields"`
}

// Types is the full type index keyed by type id.
type Types map[uint32]ScaleType

// IDs returns the type ids in ascending order.
func (t Types) IDs() []uint32 {
	ids := make([]uint32, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Metadata is the complete normalized output of one decode.
type Metadata struct {
	Pallets []Pallet `json:"pallets" yaml:"pallets"`
	Types   Types    `json:"types" yaml:"types"`
	Signing Signing  `json:"signing" yaml:"signing"`
}

// Pallet returns the pallet with the given name.
func (m *Metadata) Pallet(name string) (*Pallet, bool) {
	for i := range m.Pallets {
		if m.Pallets[i].Name == name {
			return &m.Pallets[i], true
		}
	}
	return nil, false
}

// Pallet is one runtime module. Storage, Errors, Events and Calls are nil
// when the module does not declare the section.
type Pallet struct {
	Index     uint8           `json:"index" yaml:"index"`
	Name      string          `json:"name" yaml:"name"`
	Constants []Constant      `json:"constants" yaml:"constants"`
	Storage   []StorageItem   `json:"storage" yaml:"storage"`
	Errors    []PalletVariant `json:"errors" yaml:"errors"`
	Events    []PalletVariant `json:"events" yaml:"events"`
	Calls     []PalletVariant `json:"calls" yaml:"calls"`
}

// Call returns the call with the given name.
func (p *Pallet) Call(name string) (*PalletVariant, bool) {
	return findVariant(p.Calls, name)
}

// Event returns the event with the given name.
func (p *Pallet) Event(name string) (*PalletVariant, bool) {
	return findVariant(p.Events, name)
}

// StorageItem returns the storage entry with the given name.
func (p *Pallet) StorageItem(name string) (*StorageItem, bool) {
	for i := range p.Storage {
		if p.Storage[i].Name == name {
			return &p.Storage[i], true
		}
	}
	return nil, false
}

func findVariant(vs []PalletVariant, name string) (*PalletVariant, bool) {
	for i := range vs {
		if vs[i].Name == name {
			return &vs[i], true
		}
	}
	return nil, false
}

// PalletVariant is a call, event or error of a pallet. Fields is never nil.
type PalletVariant struct {
	Index  uint8    `json:"index" yaml:"index"`
	Name   string   `json:"name" yaml:"name"`
	Fields []Field  `json:"fields" yaml:"fields"`
	Docs   []string `json:"docs" yaml:"docs"`
}

// Constant is a pallet constant. Value is the SCALE encoding of a value
// of type Type, passed through uninterpreted.
type Constant struct {
	Name  string   `json:"name" yaml:"name"`
	Type  uint32   `json:"type" yaml:"type"`
	Value Bytes    `json:"value" yaml:"value"`
	Docs  []string `json:"docs" yaml:"docs"`
}

// StorageItem is a storage entry. Exactly one of Type and Map is set.
type StorageItem struct {
	Name     string          `json:"name" yaml:"name"`
	Type     *uint32         `json:"type" yaml:"type"`
	Map      *MapDef         `json:"map" yaml:"map"`
	Modifier StorageModifier `json:"modifier" yaml:"modifier"`
	Default  Bytes           `json:"default" yaml:"default"`
	Docs     []string        `json:"docs" yaml:"docs"`
}

// MapDef describes a keyed storage entry.
type MapDef struct {
	Hashers []StorageHasher `json:"hashers" yaml:"hashers"`
	Key     uint32          `json:"key" yaml:"key"`
	Value   uint32          `json:"value" yaml:"value"`
}

// StorageModifier tells consumers what an absent storage value decodes to.
type StorageModifier string

const (
	ModifierOptional StorageModifier = "Optional"
	ModifierDefault  StorageModifier = "Default"
)

// StorageHasher is the stable name of a storage key hasher.
type StorageHasher string

const (
	HasherBlake2_128       StorageHasher = "Blake2_128"
	HasherBlake2_256       StorageHasher = "Blake2_256"
	HasherBlake2_128Concat StorageHasher = "Blake2_128Concat"
	HasherTwox128          StorageHasher = "Twox128"
	HasherTwox256          StorageHasher = "Twox256"
	HasherTwox64Concat     StorageHasher = "Twox64Concat"
	HasherIdentity         StorageHasher = "Identity"
)

// ValidHashers defines the allowed hasher names.
var ValidHashers = map[StorageHasher]bool{
	HasherBlake2_128:       true,
	HasherBlake2_256:       true,
	HasherBlake2_128Concat: true,
	HasherTwox128:          true,
	HasherTwox256:          true,
	HasherTwox64Concat:     true,
	HasherIdentity:         true,
}

// Signing is the filtered signed extension set plus the extrinsic format
// version.
type Signing struct {
	Version    uint8             `json:"type" yaml:"type"`
	Extensions []SignedExtension `json:"extensions" yaml:"extensions"`
}

// SignedExtension is an extension with at least one payload-carrying type.
// Type and Additional are nil when the corresponding type is empty.
type SignedExtension struct {
	Name       string  `json:"name" yaml:"name"`
	Type       *uint32 `json:"type" yaml:"type"`
	Additional *uint32 `json:"additional" yaml:"additional"`
}

// Extension returns the signed extension with the given name.
func (s *Signing) Extension(name string) (*SignedExtension, bool) {
	for i := range s.Extensions {
		if s.Extensions[i].Name == name {
			return &s.Extensions[i], true
		}
	}
	return nil, false
}
