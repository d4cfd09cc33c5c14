package compiler

import (
	"fmt"

	"github.com/danforbes/dots/internal/ir"
)

// Validation error codes (E200-E299)
const (
	// Type index errors (E200-E209)
	ErrUnknownKind      = "E200" // discriminant outside the fixed vocabulary
	ErrDanglingTypeRef  = "E201" // referenced id missing from the type index
	ErrPayloadMismatch  = "E202" // payload fields do not match the kind
	ErrResultShape      = "E203" // Result must have exactly two fields
	ErrMissingQualified = "E204" // Enum/Struct without a name

	// Pallet errors (E210-E219)
	ErrDuplicatePallet    = "E210" // duplicate pallet name or index
	ErrStorageShape       = "E211" // storage item must set exactly one of type/map
	ErrUnknownHasher      = "E212" // hasher outside the name table
	ErrDuplicateVariant   = "E213" // duplicate call/event/error index
	ErrHasherCount        = "E214" // map without hashers
	ErrUnknownModifier    = "E215" // modifier outside Optional/Default
	ErrEmptyExtension     = "E220" // signed extension with neither type nor additional
	ErrDuplicateExtension = "E221" // signed extension listed twice
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate re-checks the invariants of a normalized document.
// Returns all errors found (does not fail-fast).
//
// Output of DecodeMetadata always validates cleanly; Validate exists for
// documents that were edited, cached or produced elsewhere.
func Validate(md *ir.Metadata) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateTypes(md.Types)...)
	errs = append(errs, validatePallets(md.Pallets, md.Types)...)
	errs = append(errs, validateSigning(md.Signing, md.Types)...)
	return errs
}

func validateTypes(types ir.Types) []ValidationError {
	var errs []ValidationError

	for _, id := range types.IDs() {
		st := types[id]
		path := fmt.Sprintf("types[%d]", id)

		// E200: fixed vocabulary
		if !ir.ValidKinds[st.Type] {
			errs = append(errs, ValidationError{
				Field:   path + ".type",
				Message: fmt.Sprintf("unknown kind %q", st.Type),
				Code:    ErrUnknownKind,
			})
			continue
		}

		errs = append(errs, validatePayload(path, st)...)

		// E201: every reference resolves
		for _, r := range typeRefs(st) {
			if _, ok := types[r]; !ok {
				errs = append(errs, ValidationError{
					Field:   path,
					Message: fmt.Sprintf("references type %d which is not in the index", r),
					Code:    ErrDanglingTypeRef,
				})
			}
		}
	}

	return errs
}

// validatePayload checks that exactly the fields the kind uses are set.
func validatePayload(path string, st ir.ScaleType) []ValidationError {
	var errs []ValidationError
	mismatch := func(field, msg string) {
		errs = append(errs, ValidationError{
			Field:   path + "." + field,
			Message: fmt.Sprintf("%s: %s", st.Type, msg),
			Code:    ErrPayloadMismatch,
		})
	}

	wantStore := st.Type == ir.KindCompact || st.Type == ir.KindOption || st.Type == ir.KindList
	wantFields := st.Type == ir.KindStruct || st.Type == ir.KindTuple || st.Type == ir.KindResult
	wantVariants := st.Type == ir.KindEnum
	wantName := st.Type == ir.KindEnum || st.Type == ir.KindStruct

	if wantStore != (st.Store != nil) {
		mismatch("store", "store must be set exactly for Compact, Option and List")
	}
	if st.Length != nil && st.Type != ir.KindList {
		mismatch("length", "length is only valid on List")
	}
	if wantFields != (st.Fields != nil) {
		mismatch("fields", "fields must be set exactly for Struct, Tuple and Result")
	}
	if wantVariants != (st.Variants != nil) {
		mismatch("variants", "variants must be set exactly for Enum")
	}
	if !wantName && st.Name != nil {
		mismatch("name", "name is only valid on Enum and Struct")
	}

	// E203
	if st.Type == ir.KindResult && len(st.Fields) != 2 {
		errs = append(errs, ValidationError{
			Field:   path + ".fields",
			Message: fmt.Sprintf("Result must have exactly 2 fields, has %d", len(st.Fields)),
			Code:    ErrResultShape,
		})
	}

	// E204
	if wantName && st.Name == nil {
		errs = append(errs, ValidationError{
			Field:   path + ".name",
			Message: fmt.Sprintf("%s must carry a qualified name", st.Type),
			Code:    ErrMissingQualified,
		})
	}

	return errs
}

// typeRefs lists the ids a normalized type points at.
func typeRefs(st ir.ScaleType) []uint32 {
	var refs []uint32
	if st.Store != nil {
		refs = append(refs, *st.Store)
	}
	for _, f := range st.Fields {
		refs = append(refs, f.Field)
	}
	for _, v := range st.Variants {
		for _, f := range v.Fields {
			refs = append(refs, f.Field)
		}
	}
	return refs
}

func validatePallets(pallets []ir.Pallet, types ir.Types) []ValidationError {
	var errs []ValidationError
	names := make(map[string]bool)
	indices := make(map[uint8]bool)

	dangling := func(field string, id uint32) {
		if _, ok := types[id]; !ok {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("type %d is not in the index", id),
				Code:    ErrDanglingTypeRef,
			})
		}
	}

	for i, p := range pallets {
		path := fmt.Sprintf("pallets[%d]", i)

		// E210
		if names[p.Name] {
			errs = append(errs, ValidationError{
				Field:   path + ".name",
				Message: fmt.Sprintf("duplicate pallet name: %q", p.Name),
				Code:    ErrDuplicatePallet,
			})
		}
		if indices[p.Index] {
			errs = append(errs, ValidationError{
				Field:   path + ".index",
				Message: fmt.Sprintf("duplicate pallet index: %d", p.Index),
				Code:    ErrDuplicatePallet,
			})
		}
		names[p.Name] = true
		indices[p.Index] = true

		for j, c := range p.Constants {
			dangling(fmt.Sprintf("%s.constants[%d].type", path, j), c.Type)
		}

		for j, s := range p.Storage {
			spath := fmt.Sprintf("%s.storage[%d]", path, j)

			// E211: exactly one of type / map
			if (s.Type == nil) == (s.Map == nil) {
				errs = append(errs, ValidationError{
					Field:   spath,
					Message: fmt.Sprintf("storage item %q must set exactly one of type and map", s.Name),
					Code:    ErrStorageShape,
				})
			}
			if s.Modifier != ir.ModifierOptional && s.Modifier != ir.ModifierDefault {
				errs = append(errs, ValidationError{
					Field:   spath + ".modifier",
					Message: fmt.Sprintf("unknown modifier %q", s.Modifier),
					Code:    ErrUnknownModifier,
				})
			}
			if s.Type != nil {
				dangling(spath+".type", *s.Type)
			}
			if s.Map != nil {
				errs = append(errs, validateMap(spath+".map", s.Map)...)
				dangling(spath+".map.key", s.Map.Key)
				dangling(spath+".map.value", s.Map.Value)
			}
		}

		sections := []struct {
			name     string
			variants []ir.PalletVariant
		}{
			{SectionCalls, p.Calls},
			{SectionEvents, p.Events},
			{SectionErrors, p.Errors},
		}
		for _, sec := range sections {
			section := sec.name
			seen := make(map[uint8]bool)
			for j, v := range sec.variants {
				vpath := fmt.Sprintf("%s.%s[%d]", path, section, j)
				// E213
				if seen[v.Index] {
					errs = append(errs, ValidationError{
						Field:   vpath + ".index",
						Message: fmt.Sprintf("duplicate %s index %d (%s)", section, v.Index, v.Name),
						Code:    ErrDuplicateVariant,
					})
				}
				seen[v.Index] = true
				for k, f := range v.Fields {
					dangling(fmt.Sprintf("%s.fields[%d]", vpath, k), f.Field)
				}
			}
		}
	}

	return errs
}

func validateMap(path string, m *ir.MapDef) []ValidationError {
	var errs []ValidationError

	// E214
	if len(m.Hashers) == 0 {
		errs = append(errs, ValidationError{
			Field:   path + ".hashers",
			Message: "map must declare at least one hasher",
			Code:    ErrHasherCount,
		})
	}
	// E212
	for i, h := range m.Hashers {
		if !ir.ValidHashers[h] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.hashers[%d]", path, i),
				Message: fmt.Sprintf("unknown hasher %q", h),
				Code:    ErrUnknownHasher,
			})
		}
	}
	return errs
}

func validateSigning(s ir.Signing, types ir.Types) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool)

	for i, ext := range s.Extensions {
		path := fmt.Sprintf("signing.extensions[%d]", i)

		// E220
		if ext.Type == nil && ext.Additional == nil {
			errs = append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("extension %q carries no payload and should have been dropped", ext.Name),
				Code:    ErrEmptyExtension,
			})
		}
		// E221
		if seen[ext.Name] {
			errs = append(errs, ValidationError{
				Field:   path + ".name",
				Message: fmt.Sprintf("duplicate extension %q", ext.Name),
				Code:    ErrDuplicateExtension,
			})
		}
		seen[ext.Name] = true

		errs = append(errs, danglingOptional(path+".type", ext.Type, types)...)
		errs = append(errs, danglingOptional(path+".additional", ext.Additional, types)...)
	}

	return errs
}

func danglingOptional(field string, id *uint32, types ir.Types) []ValidationError {
	if id == nil {
		return nil
	}
	if _, ok := types[*id]; ok {
		return nil
	}
	return []ValidationError{{
		Field:   field,
		Message: fmt.Sprintf("type %d is not in the index", *id),
		Code:    ErrDanglingTypeRef,
	}}
}
