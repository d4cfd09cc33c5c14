package frame

import "fmt"

// Registry is the read-only portable type table of one metadata instance.
// It is safe for concurrent use because nothing mutates it after
// NewRegistry returns. Callers must treat the returned *Type values as
// read-only.
type Registry struct {
	ids   []uint32 // declaration order
	types map[uint32]*Type
}

// NewRegistry indexes types by id and checks that every reference held by
// a definition resolves within the table.
//
// A duplicate id is a MALFORMED_METADATA error; a dangling reference is an
// UNRESOLVED_TYPE_REFERENCE error naming the referring type.
func NewRegistry(types []PortableType) (*Registry, error) {
	r := &Registry{
		ids:   make([]uint32, 0, len(types)),
		types: make(map[uint32]*Type, len(types)),
	}

	for i := range types {
		pt := &types[i]
		if _, dup := r.types[pt.ID]; dup {
			return nil, NewMalformedError(-1, fmt.Sprintf("duplicate type id %d in registry", pt.ID), nil)
		}
		if pt.Type.Def == nil {
			return nil, NewMalformedError(-1, fmt.Sprintf("type %d has no definition", pt.ID), nil)
		}
		r.ids = append(r.ids, pt.ID)
		r.types[pt.ID] = &pt.Type
	}

	for _, id := range r.ids {
		refs, err := References(r.types[id].Def)
		if err != nil {
			return nil, err
		}
		for _, ref := range refs {
			if _, ok := r.types[ref]; !ok {
				return nil, NewUnresolvedTypeError(ref, fmt.Sprintf("type %d", id))
			}
		}
	}

	return r, nil
}

// Resolve returns the type registered under id.
func (r *Registry) Resolve(id uint32) (*Type, error) {
	t, ok := r.types[id]
	if !ok {
		return nil, NewUnresolvedTypeError(id, "")
	}
	return t, nil
}

// MustExist returns an UNRESOLVED_TYPE_REFERENCE error naming referrer if
// id is not registered.
func (r *Registry) MustExist(id uint32, referrer string) error {
	if _, ok := r.types[id]; !ok {
		return NewUnresolvedTypeError(id, referrer)
	}
	return nil
}

// IDs returns the registered ids in declaration order.
func (r *Registry) IDs() []uint32 {
	return append([]uint32(nil), r.ids...)
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	return len(r.ids)
}
