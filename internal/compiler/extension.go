package compiler

import (
	"fmt"

	"github.com/danforbes/dots/internal/frame"
	"github.com/danforbes/dots/internal/ir"
)

// FilterSignedExtensions keeps the signed extensions whose type or
// additional-signed type carries a payload, in declaration order.
//
// A type carries no payload when it is a composite without fields, a tuple
// without elements, a variant without variants or an array of length zero.
// Each surviving extension names only the ids that carry payload.
func FilterSignedExtensions(ex frame.ExtrinsicMetadata, reg *frame.Registry) (ir.Signing, error) {
	out := ir.Signing{
		Version:    ex.Version,
		Extensions: make([]ir.SignedExtension, 0, len(ex.SignedExtensions)),
	}

	for _, raw := range ex.SignedExtensions {
		typ, err := payloadRef(raw.Type, reg, fmt.Sprintf("signed extension %s", raw.Identifier))
		if err != nil {
			return ir.Signing{}, err
		}
		additional, err := payloadRef(raw.AdditionalSigned, reg, fmt.Sprintf("signed extension %s additional", raw.Identifier))
		if err != nil {
			return ir.Signing{}, err
		}
		if typ == nil && additional == nil {
			continue
		}
		out.Extensions = append(out.Extensions, ir.SignedExtension{
			Name:       raw.Identifier,
			Type:       typ,
			Additional: additional,
		})
	}

	return out, nil
}

// payloadRef returns &id if the type carries payload, nil otherwise.
func payloadRef(id uint32, reg *frame.Registry, referrer string) (*uint32, error) {
	t, err := reg.Resolve(id)
	if err != nil {
		return nil, frame.NewUnresolvedTypeError(id, referrer)
	}
	carries, err := frame.VisitTypeDef[bool](t.Def, payloadProbe{})
	if err != nil {
		return nil, err
	}
	if !carries {
		return nil, nil
	}
	return ref(id), nil
}

// payloadProbe reports whether a definition carries data.
type payloadProbe struct{}

func (payloadProbe) VisitComposite(def *frame.TypeDefComposite) (bool, error) {
	return len(def.Fields) > 0, nil
}

func (payloadProbe) VisitVariant(def *frame.TypeDefVariant) (bool, error) {
	return len(def.Variants) > 0, nil
}

func (payloadProbe) VisitSequence(*frame.TypeDefSequence) (bool, error) { return true, nil }

func (payloadProbe) VisitArray(def *frame.TypeDefArray) (bool, error) {
	return def.Len > 0, nil
}

func (payloadProbe) VisitTuple(def *frame.TypeDefTuple) (bool, error) {
	return len(def.Types) > 0, nil
}

func (payloadProbe) VisitPrimitive(*frame.TypeDefPrimitive) (bool, error) { return true, nil }

func (payloadProbe) VisitCompact(*frame.TypeDefCompact) (bool, error) { return true, nil }

func (payloadProbe) VisitBitSequence(*frame.TypeDefBitSequence) (bool, error) { return true, nil }
