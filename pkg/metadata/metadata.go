// Package metadata is the public entry point of dots.
//
// Decode turns a FRAME runtime metadata blob (version 14, as returned by the
// state_getMetadata RPC) into a normalized description of every type,
// pallet and signed extension:
//
//	md, err := metadata.Decode(raw)
//	if err != nil {
//		return err
//	}
//	balances, _ := md.Pallet("Balances")
//
// Errors carry a code; use the Is* predicates to branch on them.
package metadata

import (
	"github.com/danforbes/dots/internal/compiler"
	"github.com/danforbes/dots/internal/frame"
	"github.com/danforbes/dots/internal/ir"
)

// Output schema.
type (
	Metadata        = ir.Metadata
	ScaleType       = ir.ScaleType
	Kind            = ir.Kind
	Field           = ir.Field
	Variant         = ir.Variant
	Types           = ir.Types
	Pallet          = ir.Pallet
	PalletVariant   = ir.PalletVariant
	Constant        = ir.Constant
	StorageItem     = ir.StorageItem
	MapDef          = ir.MapDef
	StorageHasher   = ir.StorageHasher
	StorageModifier = ir.StorageModifier
	Signing         = ir.Signing
	SignedExtension = ir.SignedExtension
	Bytes           = ir.Bytes
)

// Error is the coded error returned by Decode.
type Error = frame.MetadataError

// ErrorCode categorizes errors.
type ErrorCode = frame.ErrorCode

// Error codes.
const (
	CodeMalformed           = frame.ErrCodeMalformed
	CodeUnsupportedVersion  = frame.ErrCodeUnsupportedVersion
	CodeUnresolvedType      = frame.ErrCodeUnresolvedType
	CodeInvalidVariantShape = frame.ErrCodeInvalidVariantShape
	CodeCyclicType          = frame.ErrCodeCyclicType
)

// Options tunes DecodeWithOptions.
type Options = compiler.Options

// Decode decodes and normalizes a binary metadata blob.
func Decode(raw []byte) (*Metadata, error) {
	return compiler.DecodeMetadata(raw)
}

// DecodeWithOptions is Decode with tuning options.
func DecodeWithOptions(raw []byte, opts Options) (*Metadata, error) {
	return compiler.DecodeMetadataWithOptions(raw, opts)
}

// DecodeHex decodes a 0x-prefixed hex blob.
func DecodeHex(s string) (*Metadata, error) {
	raw, err := ir.ParseBytes(s)
	if err != nil {
		return nil, frame.NewMalformedError(-1, "metadata is not valid hex", err)
	}
	return compiler.DecodeMetadata(raw)
}

// Hash returns the content fingerprint of md.
func Hash(md *Metadata) (string, error) {
	return ir.MetadataHash(md)
}

// CodeOf returns the code of err, or "" if err is not a decode error.
func CodeOf(err error) ErrorCode { return frame.CodeOf(err) }

// IsMalformed reports a structural decode failure.
func IsMalformed(err error) bool { return frame.IsMalformed(err) }

// IsUnsupportedVersion reports a version byte other than 14.
func IsUnsupportedVersion(err error) bool { return frame.IsUnsupportedVersion(err) }

// IsUnresolvedType reports a dangling type reference.
func IsUnresolvedType(err error) bool { return frame.IsUnresolvedType(err) }

// IsInvalidVariantShape reports a calls, events or errors type that is not a variant.
func IsInvalidVariantShape(err error) bool { return frame.IsInvalidVariantShape(err) }

// IsCyclicType reports a cyclic single-field wrapper chain.
func IsCyclicType(err error) bool { return frame.IsCyclicType(err) }
