// Package compiler turns a decoded FRAME metadata tree into the normalized
// ir schema.
//
// The pipeline is strictly one way: frame.Decode produces the raw tree,
// frame.NewRegistry indexes its types, and the functions here normalize
// every type, project every pallet and filter the signed extensions.
// Everything is a pure function of the registry; nothing here mutates it.
package compiler

import (
	"slices"
	"strings"

	"github.com/danforbes/dots/internal/frame"
	"github.com/danforbes/dots/internal/ir"
)

// NormalizeType converts the type registered under id into its normalized
// form.
//
// A composite with exactly one field is never emitted as a Struct: the
// result is the normalized form of the field's type. A chain of such
// wrappers that revisits an id fails with CYCLIC_TYPE.
func NormalizeType(id uint32, reg *frame.Registry) (ir.ScaleType, error) {
	return newNormalizer(reg).normalize(id, nil)
}

// normalizer memoizes results for one registry. It is not safe for
// concurrent use.
type normalizer struct {
	reg  *frame.Registry
	memo map[uint32]ir.ScaleType
}

func newNormalizer(reg *frame.Registry) *normalizer {
	return &normalizer{
		reg:  reg,
		memo: make(map[uint32]ir.ScaleType, reg.Len()),
	}
}

// normalize resolves id. chain holds the wrapper ids already being elided
// on the way here.
func (n *normalizer) normalize(id uint32, chain []uint32) (ir.ScaleType, error) {
	if st, ok := n.memo[id]; ok {
		return st, nil
	}
	if slices.Contains(chain, id) {
		return ir.ScaleType{}, frame.NewCyclicTypeError(append(slices.Clone(chain), id))
	}

	t, err := n.reg.Resolve(id)
	if err != nil {
		return ir.ScaleType{}, err
	}

	st, err := frame.VisitTypeDef[ir.ScaleType](t.Def, shapeVisitor{
		n:     n,
		typ:   t,
		chain: append(slices.Clone(chain), id),
	})
	if err != nil {
		return ir.ScaleType{}, err
	}

	n.memo[id] = st
	return st, nil
}

// shapeVisitor maps one raw definition onto its normalized shape.
type shapeVisitor struct {
	n     *normalizer
	typ   *frame.Type
	chain []uint32
}

func (v shapeVisitor) VisitComposite(def *frame.TypeDefComposite) (ir.ScaleType, error) {
	if len(def.Fields) == 1 {
		return v.n.normalize(def.Fields[0].Type, v.chain)
	}
	return ir.ScaleType{
		Type:   ir.KindStruct,
		Fields: convertFields(def.Fields),
		Name:   qualifiedName(v.typ.Path),
	}, nil
}

func (v shapeVisitor) VisitVariant(def *frame.TypeDefVariant) (ir.ScaleType, error) {
	if st, ok := optionOrResult(def.Variants); ok {
		return st, nil
	}

	variants := make([]ir.Variant, 0, len(def.Variants))
	for _, raw := range def.Variants {
		variant := ir.Variant{Index: raw.Index, Name: raw.Name}
		if len(raw.Fields) > 0 {
			variant.Fields = convertFields(raw.Fields)
		}
		variants = append(variants, variant)
	}
	return ir.ScaleType{
		Type:     ir.KindEnum,
		Variants: variants,
		Name:     qualifiedName(v.typ.Path),
	}, nil
}

func (shapeVisitor) VisitSequence(def *frame.TypeDefSequence) (ir.ScaleType, error) {
	return ir.ScaleType{Type: ir.KindList, Store: ref(def.Type)}, nil
}

func (shapeVisitor) VisitArray(def *frame.TypeDefArray) (ir.ScaleType, error) {
	return ir.ScaleType{Type: ir.KindList, Store: ref(def.Type), Length: ref(def.Len)}, nil
}

func (shapeVisitor) VisitTuple(def *frame.TypeDefTuple) (ir.ScaleType, error) {
	fields := make([]ir.Field, 0, len(def.Types))
	for _, id := range def.Types {
		fields = append(fields, ir.Field{Field: id})
	}
	return ir.ScaleType{Type: ir.KindTuple, Fields: fields}, nil
}

func (shapeVisitor) VisitPrimitive(def *frame.TypeDefPrimitive) (ir.ScaleType, error) {
	if !def.Primitive.Valid() {
		return ir.ScaleType{}, frame.NewMalformedError(-1, "invalid primitive", nil)
	}
	return ir.ScaleType{Type: primitiveKinds[def.Primitive]}, nil
}

func (shapeVisitor) VisitCompact(def *frame.TypeDefCompact) (ir.ScaleType, error) {
	return ir.ScaleType{Type: ir.KindCompact, Store: ref(def.Type)}, nil
}

// The bit order type stands in for the storage representation.
func (shapeVisitor) VisitBitSequence(def *frame.TypeDefBitSequence) (ir.ScaleType, error) {
	return ir.ScaleType{Type: ir.KindList, Store: ref(def.OrderType)}, nil
}

// primitiveKinds is indexed by frame.Primitive. Char and Str both map to
// String.
var primitiveKinds = [...]ir.Kind{
	frame.PrimitiveBool: ir.KindBoolean,
	frame.PrimitiveChar: ir.KindString,
	frame.PrimitiveStr:  ir.KindString,
	frame.PrimitiveU8:   ir.KindU8,
	frame.PrimitiveU16:  ir.KindU16,
	frame.PrimitiveU32:  ir.KindU32,
	frame.PrimitiveU64:  ir.KindU64,
	frame.PrimitiveU128: ir.KindU128,
	frame.PrimitiveU256: ir.KindU256,
	frame.PrimitiveI8:   ir.KindI8,
	frame.PrimitiveI16:  ir.KindI16,
	frame.PrimitiveI32:  ir.KindI32,
	frame.PrimitiveI64:  ir.KindI64,
	frame.PrimitiveI128: ir.KindI128,
	frame.PrimitiveI256: ir.KindI256,
}

// optionOrResult recognizes exactly [None, Some] and [Ok, Err], in that
// order. A payload variant without a field falls through to a plain Enum.
func optionOrResult(variants []frame.Variant) (ir.ScaleType, bool) {
	if len(variants) != 2 {
		return ir.ScaleType{}, false
	}
	first, second := variants[0], variants[1]

	switch {
	case first.Name == "None" && second.Name == "Some":
		if len(second.Fields) == 0 {
			return ir.ScaleType{}, false
		}
		return ir.ScaleType{Type: ir.KindOption, Store: ref(second.Fields[0].Type)}, true

	case first.Name == "Ok" && second.Name == "Err":
		if len(first.Fields) == 0 || len(second.Fields) == 0 {
			return ir.ScaleType{}, false
		}
		return ir.ScaleType{
			Type: ir.KindResult,
			Fields: []ir.Field{
				{Field: first.Fields[0].Type},
				{Field: second.Fields[0].Type},
			},
		}, true
	}
	return ir.ScaleType{}, false
}

// convertFields always returns a non-nil slice.
func convertFields(fields []frame.Field) []ir.Field {
	out := make([]ir.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, ir.Field{Name: f.Name, Field: f.Type})
	}
	return out
}

// qualifiedName joins the namespace segments and identifier with "::".
// An empty path yields "".
func qualifiedName(path []string) *string {
	name := strings.Join(path, "::")
	return &name
}

func ref(id uint32) *uint32 {
	return &id
}
