package frame

import (
	"errors"
	"fmt"
	"strings"
)

// MetadataError is the single error type surfaced by the decode pipeline.
//
// Codes:
//   - MALFORMED_METADATA: the buffer fails structural decode
//   - UNSUPPORTED_VERSION: the version byte is not 14
//   - UNRESOLVED_TYPE_REFERENCE: a referenced type id is not in the registry
//   - INVALID_VARIANT_SHAPE: a calls/events/errors type is not a variant
//   - CYCLIC_TYPE: single-field wrapper elision loops back on itself
//
// All of them are terminal for the decode attempt; nothing is retried.
type MetadataError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Offset is the byte offset of a structural failure, -1 if unknown.
	Offset int

	// TypeID is the offending type id, if any.
	TypeID *uint32

	// Details contains additional context (pallet, section, version, ...).
	Details map[string]string

	// Err is the underlying codec error, if any.
	Err error
}

// ErrorCode categorizes metadata errors.
type ErrorCode string

const (
	// ErrCodeMalformed indicates a structural decode failure.
	ErrCodeMalformed ErrorCode = "MALFORMED_METADATA"

	// ErrCodeUnsupportedVersion indicates a version byte other than 14.
	ErrCodeUnsupportedVersion ErrorCode = "UNSUPPORTED_VERSION"

	// ErrCodeUnresolvedType indicates a dangling type reference.
	ErrCodeUnresolvedType ErrorCode = "UNRESOLVED_TYPE_REFERENCE"

	// ErrCodeInvalidVariantShape indicates a non-variant call/event/error type.
	ErrCodeInvalidVariantShape ErrorCode = "INVALID_VARIANT_SHAPE"

	// ErrCodeCyclicType indicates a wrapper chain that refers back to itself.
	ErrCodeCyclicType ErrorCode = "CYCLIC_TYPE"
)

// Error implements the error interface.
func (e *MetadataError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Code, e.Message)
	if e.Offset >= 0 {
		fmt.Fprintf(&b, " (offset=%d)", e.Offset)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *MetadataError) Unwrap() error {
	return e.Err
}

// NewMalformedError creates a MetadataError for a structural decode failure.
// Pass offset -1 when the position is unknown.
func NewMalformedError(offset int, message string, err error) *MetadataError {
	return &MetadataError{
		Code:    ErrCodeMalformed,
		Message: message,
		Offset:  offset,
		Err:     err,
	}
}

// NewUnsupportedVersionError creates a MetadataError for a version mismatch.
func NewUnsupportedVersionError(observed uint8) *MetadataError {
	return &MetadataError{
		Code:    ErrCodeUnsupportedVersion,
		Message: fmt.Sprintf("metadata version %d is not supported (want %d)", observed, SupportedVersion),
		Offset:  4,
		Details: map[string]string{
			"observed": fmt.Sprintf("%d", observed),
		},
	}
}

// NewUnresolvedTypeError creates a MetadataError for a dangling type id.
// referrer describes where the reference was found.
func NewUnresolvedTypeError(id uint32, referrer string) *MetadataError {
	msg := fmt.Sprintf("type %d is not defined in the registry", id)
	if referrer != "" {
		msg = fmt.Sprintf("type %d referenced by %s is not defined in the registry", id, referrer)
	}
	return &MetadataError{
		Code:    ErrCodeUnresolvedType,
		Message: msg,
		Offset:  -1,
		TypeID:  &id,
	}
}

// NewInvalidVariantShapeError creates a MetadataError for a calls, events
// or errors section whose type is not a variant.
func NewInvalidVariantShapeError(pallet, section string, id uint32, kind DefKind) *MetadataError {
	return &MetadataError{
		Code:    ErrCodeInvalidVariantShape,
		Message: fmt.Sprintf("%s.%s type %d must be a variant, got %s", pallet, section, id, kind),
		Offset:  -1,
		TypeID:  &id,
		Details: map[string]string{
			"pallet":  pallet,
			"section": section,
			"kind":    string(kind),
		},
	}
}

// NewCyclicTypeError creates a MetadataError for a wrapper chain that
// revisits a type id. chain lists the ids in visit order, ending with the
// repeated id.
func NewCyclicTypeError(chain []uint32) *MetadataError {
	parts := make([]string, len(chain))
	for i, id := range chain {
		parts[i] = fmt.Sprintf("%d", id)
	}
	id := chain[len(chain)-1]
	return &MetadataError{
		Code:    ErrCodeCyclicType,
		Message: fmt.Sprintf("single-field wrapper chain is cyclic: %s", strings.Join(parts, " → ")),
		Offset:  -1,
		TypeID:  &id,
		Details: map[string]string{
			"chain": strings.Join(parts, ","),
		},
	}
}

// IsMalformed returns true if err is a MALFORMED_METADATA error.
func IsMalformed(err error) bool {
	return hasCode(err, ErrCodeMalformed)
}

// IsUnsupportedVersion returns true if err is an UNSUPPORTED_VERSION error.
func IsUnsupportedVersion(err error) bool {
	return hasCode(err, ErrCodeUnsupportedVersion)
}

// IsUnresolvedType returns true if err is an UNRESOLVED_TYPE_REFERENCE error.
func IsUnresolvedType(err error) bool {
	return hasCode(err, ErrCodeUnresolvedType)
}

// IsInvalidVariantShape returns true if err is an INVALID_VARIANT_SHAPE error.
func IsInvalidVariantShape(err error) bool {
	return hasCode(err, ErrCodeInvalidVariantShape)
}

// IsCyclicType returns true if err is a CYCLIC_TYPE error.
func IsCyclicType(err error) bool {
	return hasCode(err, ErrCodeCyclicType)
}

// CodeOf returns the code of a wrapped MetadataError, or "" if there is none.
func CodeOf(err error) ErrorCode {
	var me *MetadataError
	if errors.As(err, &me) {
		return me.Code
	}
	return ""
}

func hasCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
