package frame

// Prefix and version of the only supported encoding.
const (
	// MagicNumber is the u32 "meta" prefix, little endian on the wire.
	MagicNumber uint32 = 0x6174656d

	// SupportedVersion is the RuntimeMetadata enum index of V14.
	SupportedVersion uint8 = 14
)

// RuntimeMetadataV14 is the decoded body of a version 14 metadata blob.
type RuntimeMetadataV14 struct {
	Types     []PortableType
	Pallets   []PalletMetadata
	Extrinsic ExtrinsicMetadata
	Runtime   uint32 // type id of the runtime itself
}

// PortableType pairs a registry id with its definition.
type PortableType struct {
	ID   uint32
	Type Type
}

// Type is a single registry entry.
type Type struct {
	Path   []string
	Params []TypeParameter
	Def    TypeDef
	Docs   []string
}

// TypeParameter is a generic parameter; Type is nil for erased parameters.
type TypeParameter struct {
	Name string
	Type *uint32
}

// Field is a (possibly unnamed) member of a composite or variant.
type Field struct {
	Name     *string
	Type     uint32
	TypeName *string
	Docs     []string
}

// Variant is one case of a TypeDefVariant.
type Variant struct {
	Name   string
	Fields []Field
	Index  uint8
	Docs   []string
}

// DefKind names a TypeDef case. Used in diagnostics only.
type DefKind string

const (
	KindComposite   DefKind = "composite"
	KindVariant     DefKind = "variant"
	KindSequence    DefKind = "sequence"
	KindArray       DefKind = "array"
	KindTuple       DefKind = "tuple"
	KindPrimitive   DefKind = "primitive"
	KindCompact     DefKind = "compact"
	KindBitSequence DefKind = "bitsequence"
)

// TypeDef is a sealed interface over the eight type definition cases.
// Only the TypeDef* types in this package implement it; use VisitTypeDef
// to dispatch on it.
type TypeDef interface {
	typeDef() // Sealed
	Kind() DefKind
}

// TypeDefComposite is a struct-like type.
type TypeDefComposite struct {
	Fields []Field
}

// TypeDefVariant is an enum-like type.
type TypeDefVariant struct {
	Variants []Variant
}

// TypeDefSequence is a length-prefixed list.
type TypeDefSequence struct {
	Type uint32
}

// TypeDefArray is a fixed-size list.
type TypeDefArray struct {
	Len  uint32
	Type uint32
}

// TypeDefTuple is an anonymous product of types.
type TypeDefTuple struct {
	Types []uint32
}

// TypeDefPrimitive wraps one of the built-in primitives.
type TypeDefPrimitive struct {
	Primitive Primitive
}

// TypeDefCompact is a compact-encoded integer.
type TypeDefCompact struct {
	Type uint32
}

// TypeDefBitSequence is a bitvec with explicit store and order types.
type TypeDefBitSequence struct {
	StoreType uint32
	OrderType uint32
}

func (*TypeDefComposite) typeDef()   {}
func (*TypeDefVariant) typeDef()     {}
func (*TypeDefSequence) typeDef()    {}
func (*TypeDefArray) typeDef()       {}
func (*TypeDefTuple) typeDef()       {}
func (*TypeDefPrimitive) typeDef()   {}
func (*TypeDefCompact) typeDef()     {}
func (*TypeDefBitSequence) typeDef() {}

func (*TypeDefComposite) Kind() DefKind   { return KindComposite }
func (*TypeDefVariant) Kind() DefKind     { return KindVariant }
func (*TypeDefSequence) Kind() DefKind    { return KindSequence }
func (*TypeDefArray) Kind() DefKind       { return KindArray }
func (*TypeDefTuple) Kind() DefKind       { return KindTuple }
func (*TypeDefPrimitive) Kind() DefKind   { return KindPrimitive }
func (*TypeDefCompact) Kind() DefKind     { return KindCompact }
func (*TypeDefBitSequence) Kind() DefKind { return KindBitSequence }

// Primitive enumerates the scale-info primitive types in wire order.
type Primitive uint8

const (
	PrimitiveBool Primitive = iota
	PrimitiveChar
	PrimitiveStr
	PrimitiveU8
	PrimitiveU16
	PrimitiveU32
	PrimitiveU64
	PrimitiveU128
	PrimitiveU256
	PrimitiveI8
	PrimitiveI16
	PrimitiveI32
	PrimitiveI64
	PrimitiveI128
	PrimitiveI256
)

// Valid reports whether p is a known primitive tag.
func (p Primitive) Valid() bool {
	return p <= PrimitiveI256
}

// PalletMetadata is one module of the runtime.
type PalletMetadata struct {
	Name      string
	Storage   *PalletStorageMetadata
	Calls     *PalletCallMetadata
	Event     *PalletEventMetadata
	Constants []PalletConstantMetadata
	Error     *PalletErrorMetadata
	Index     uint8
}

// PalletStorageMetadata is the storage section of a pallet.
type PalletStorageMetadata struct {
	Prefix  string
	Entries []StorageEntryMetadata
}

// StorageEntryModifier tells whether a missing value decodes to None or
// to the declared default.
type StorageEntryModifier uint8

const (
	ModifierOptional StorageEntryModifier = iota
	ModifierDefault
)

// StorageEntryMetadata is a single storage item.
type StorageEntryMetadata struct {
	Name     string
	Modifier StorageEntryModifier
	Type     StorageEntryType
	Default  []byte
	Docs     []string
}

// StorageEntryType is either *StoragePlain or *StorageMap.
type StorageEntryType interface {
	storageEntryType() // Sealed
}

// StoragePlain is a single value entry.
type StoragePlain struct {
	Value uint32
}

// StorageMap is a keyed entry.
type StorageMap struct {
	Hashers []StorageHasher
	Key     uint32
	Value   uint32
}

func (*StoragePlain) storageEntryType() {}
func (*StorageMap) storageEntryType()   {}

// StorageHasher enumerates the storage key hashers in wire order.
type StorageHasher uint8

const (
	HasherBlake2_128 StorageHasher = iota
	HasherBlake2_256
	HasherBlake2_128Concat
	HasherTwox128
	HasherTwox256
	HasherTwox64Concat
	HasherIdentity
)

// Valid reports whether h is a known hasher tag.
func (h StorageHasher) Valid() bool {
	return h <= HasherIdentity
}

// PalletCallMetadata references the pallet's call enum.
type PalletCallMetadata struct {
	Type uint32
}

// PalletEventMetadata references the pallet's event enum.
type PalletEventMetadata struct {
	Type uint32
}

// PalletErrorMetadata references the pallet's error enum.
type PalletErrorMetadata struct {
	Type uint32
}

// PalletConstantMetadata is a constant with its SCALE-encoded value.
type PalletConstantMetadata struct {
	Name  string
	Type  uint32
	Value []byte
	Docs  []string
}

// ExtrinsicMetadata describes the extrinsic format.
type ExtrinsicMetadata struct {
	Type             uint32
	Version          uint8
	SignedExtensions []SignedExtensionMetadata
}

// SignedExtensionMetadata is one signed extension declaration.
type SignedExtensionMetadata struct {
	Identifier       string
	Type             uint32
	AdditionalSigned uint32
}
