package compiler

import (
	"fmt"

	"github.com/danforbes/dots/internal/frame"
	"github.com/danforbes/dots/internal/ir"
)

// Section names used in INVALID_VARIANT_SHAPE errors.
const (
	SectionCalls  = "calls"
	SectionEvents = "events"
	SectionErrors = "errors"
)

// hasherNames is indexed by frame.StorageHasher. Output names come from this
// table and nothing else.
var hasherNames = [...]ir.StorageHasher{
	frame.HasherBlake2_128:       ir.HasherBlake2_128,
	frame.HasherBlake2_256:       ir.HasherBlake2_256,
	frame.HasherBlake2_128Concat: ir.HasherBlake2_128Concat,
	frame.HasherTwox128:          ir.HasherTwox128,
	frame.HasherTwox256:          ir.HasherTwox256,
	frame.HasherTwox64Concat:     ir.HasherTwox64Concat,
	frame.HasherIdentity:         ir.HasherIdentity,
}

var modifierNames = [...]ir.StorageModifier{
	frame.ModifierOptional: ir.ModifierOptional,
	frame.ModifierDefault:  ir.ModifierDefault,
}

// ProjectPallet maps one raw pallet onto its normalized form.
//
// Every referenced type id must resolve. The calls, events and errors
// types must resolve to variants; each variant becomes one entry. Absent
// sections stay nil.
func ProjectPallet(p frame.PalletMetadata, reg *frame.Registry) (ir.Pallet, error) {
	out := ir.Pallet{
		Index:     p.Index,
		Name:      p.Name,
		Constants: make([]ir.Constant, 0, len(p.Constants)),
	}

	for _, c := range p.Constants {
		if err := reg.MustExist(c.Type, fmt.Sprintf("constant %s.%s", p.Name, c.Name)); err != nil {
			return ir.Pallet{}, err
		}
		out.Constants = append(out.Constants, ir.Constant{
			Name:  c.Name,
			Type:  c.Type,
			Value: ir.Bytes(c.Value),
			Docs:  docs(c.Docs),
		})
	}

	if p.Storage != nil {
		items, err := projectStorage(p.Name, p.Storage, reg)
		if err != nil {
			return ir.Pallet{}, err
		}
		out.Storage = items
	}

	var err error
	if p.Error != nil {
		if out.Errors, err = projectVariants(p.Name, SectionErrors, p.Error.Type, reg); err != nil {
			return ir.Pallet{}, err
		}
	}
	if p.Event != nil {
		if out.Events, err = projectVariants(p.Name, SectionEvents, p.Event.Type, reg); err != nil {
			return ir.Pallet{}, err
		}
	}
	if p.Calls != nil {
		if out.Calls, err = projectVariants(p.Name, SectionCalls, p.Calls.Type, reg); err != nil {
			return ir.Pallet{}, err
		}
	}

	return out, nil
}

func projectStorage(pallet string, s *frame.PalletStorageMetadata, reg *frame.Registry) ([]ir.StorageItem, error) {
	items := make([]ir.StorageItem, 0, len(s.Entries))
	for _, e := range s.Entries {
		referrer := fmt.Sprintf("storage %s.%s", pallet, e.Name)

		if int(e.Modifier) >= len(modifierNames) {
			return nil, frame.NewMalformedError(-1, fmt.Sprintf("%s: invalid modifier %d", referrer, e.Modifier), nil)
		}
		item := ir.StorageItem{
			Name:     e.Name,
			Modifier: modifierNames[e.Modifier],
			Default:  ir.Bytes(e.Default),
			Docs:     docs(e.Docs),
		}

		switch t := e.Type.(type) {
		case *frame.StoragePlain:
			if err := reg.MustExist(t.Value, referrer); err != nil {
				return nil, err
			}
			item.Type = ref(t.Value)

		case *frame.StorageMap:
			if err := reg.MustExist(t.Key, referrer); err != nil {
				return nil, err
			}
			if err := reg.MustExist(t.Value, referrer); err != nil {
				return nil, err
			}
			hashers := make([]ir.StorageHasher, 0, len(t.Hashers))
			for _, h := range t.Hashers {
				if !h.Valid() {
					return nil, frame.NewMalformedError(-1, fmt.Sprintf("%s: invalid hasher %d", referrer, h), nil)
				}
				hashers = append(hashers, hasherNames[h])
			}
			item.Map = &ir.MapDef{Hashers: hashers, Key: t.Key, Value: t.Value}

		default:
			return nil, frame.NewMalformedError(-1, fmt.Sprintf("%s: unknown entry type %T", referrer, e.Type), nil)
		}

		items = append(items, item)
	}
	return items, nil
}

// projectVariants resolves a calls, events or errors type and lists its
// variants in declaration order.
func projectVariants(pallet, section string, id uint32, reg *frame.Registry) ([]ir.PalletVariant, error) {
	t, err := reg.Resolve(id)
	if err != nil {
		return nil, frame.NewUnresolvedTypeError(id, fmt.Sprintf("%s.%s", pallet, section))
	}
	def, ok := t.Def.(*frame.TypeDefVariant)
	if !ok {
		return nil, frame.NewInvalidVariantShapeError(pallet, section, id, t.Def.Kind())
	}

	out := make([]ir.PalletVariant, 0, len(def.Variants))
	for _, v := range def.Variants {
		out = append(out, ir.PalletVariant{
			Index:  v.Index,
			Name:   v.Name,
			Fields: convertFields(v.Fields),
			Docs:   docs(v.Docs),
		})
	}
	return out, nil
}

func docs(lines []string) []string {
	if lines == nil {
		return []string{}
	}
	return lines
}
