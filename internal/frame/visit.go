package frame

import "fmt"

// TypeDefVisitor has one method per TypeDef case. Adding a case to TypeDef
// adds a method here, which breaks every visitor at compile time until it
// handles the new case.
type TypeDefVisitor[T any] interface {
	VisitComposite(def *TypeDefComposite) (T, error)
	VisitVariant(def *TypeDefVariant) (T, error)
	VisitSequence(def *TypeDefSequence) (T, error)
	VisitArray(def *TypeDefArray) (T, error)
	VisitTuple(def *TypeDefTuple) (T, error)
	VisitPrimitive(def *TypeDefPrimitive) (T, error)
	VisitCompact(def *TypeDefCompact) (T, error)
	VisitBitSequence(def *TypeDefBitSequence) (T, error)
}

// VisitTypeDef dispatches def to the matching visitor method.
func VisitTypeDef[T any](def TypeDef, v TypeDefVisitor[T]) (T, error) {
	switch d := def.(type) {
	case *TypeDefComposite:
		return v.VisitComposite(d)
	case *TypeDefVariant:
		return v.VisitVariant(d)
	case *TypeDefSequence:
		return v.VisitSequence(d)
	case *TypeDefArray:
		return v.VisitArray(d)
	case *TypeDefTuple:
		return v.VisitTuple(d)
	case *TypeDefPrimitive:
		return v.VisitPrimitive(d)
	case *TypeDefCompact:
		return v.VisitCompact(d)
	case *TypeDefBitSequence:
		return v.VisitBitSequence(d)
	default:
		var zero T
		return zero, fmt.Errorf("frame: unknown type definition %T", def)
	}
}

// refCollector lists every type id a definition refers to.
type refCollector struct{}

func (refCollector) VisitComposite(def *TypeDefComposite) ([]uint32, error) {
	return fieldRefs(def.Fields), nil
}

func (refCollector) VisitVariant(def *TypeDefVariant) ([]uint32, error) {
	var refs []uint32
	for _, v := range def.Variants {
		refs = append(refs, fieldRefs(v.Fields)...)
	}
	return refs, nil
}

func (refCollector) VisitSequence(def *TypeDefSequence) ([]uint32, error) {
	return []uint32{def.Type}, nil
}

func (refCollector) VisitArray(def *TypeDefArray) ([]uint32, error) {
	return []uint32{def.Type}, nil
}

func (refCollector) VisitTuple(def *TypeDefTuple) ([]uint32, error) {
	return append([]uint32(nil), def.Types...), nil
}

func (refCollector) VisitPrimitive(*TypeDefPrimitive) ([]uint32, error) {
	return nil, nil
}

func (refCollector) VisitCompact(def *TypeDefCompact) ([]uint32, error) {
	return []uint32{def.Type}, nil
}

func (refCollector) VisitBitSequence(def *TypeDefBitSequence) ([]uint32, error) {
	return []uint32{def.StoreType, def.OrderType}, nil
}

func fieldRefs(fields []Field) []uint32 {
	refs := make([]uint32, 0, len(fields))
	for _, f := range fields {
		refs = append(refs, f.Type)
	}
	return refs
}

// References returns the type ids def refers to, in declaration order.
func References(def TypeDef) ([]uint32, error) {
	return VisitTypeDef[[]uint32](def, refCollector{})
}
