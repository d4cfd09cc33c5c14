// Package schema checks emitted metadata documents against a CUE schema.
//
// The schema (metadata.cue) restates the JSON conventions of package ir:
// which payload fields each ScaleType kind carries, that exactly one of
// a storage item's type and map is set, and the enumerated hasher and
// modifier names. It is the contract external consumers can validate
// against without importing Go code.
package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/danforbes/dots/internal/ir"
)

//go:embed metadata.cue
var source string

// Source returns the CUE schema text.
func Source() string {
	return source
}

// Issue is one schema violation.
type Issue struct {
	Path    string
	Message string
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// Error reports every violation found in a document.
type Error struct {
	Issues []Issue
}

func (e *Error) Error() string {
	if len(e.Issues) == 1 {
		return "schema: " + e.Issues[0].String()
	}
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return fmt.Sprintf("schema: %d violations: %s", len(e.Issues), strings.Join(parts, "; "))
}

// Validator holds the compiled schema. A Validator is not safe for
// concurrent use.
type Validator struct {
	ctx *cue.Context
	def cue.Value
}

// NewValidator compiles the embedded schema.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(source, cue.Filename("metadata.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	def := v.LookupPath(cue.ParsePath("#Metadata"))
	if !def.Exists() {
		return nil, fmt.Errorf("compile schema: #Metadata not defined")
	}
	return &Validator{ctx: ctx, def: def}, nil
}

// Validate checks a JSON document. Violations are returned as *Error; a
// document that is not JSON at all is a plain error.
func (v *Validator) Validate(doc []byte) error {
	if !json.Valid(doc) {
		return fmt.Errorf("schema: document is not valid JSON")
	}
	data := v.ctx.CompileBytes(doc, cue.Filename("metadata.json"))
	if err := data.Err(); err != nil {
		return fmt.Errorf("schema: %w", err)
	}

	unified := v.def.Unify(data)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return toError(err)
	}
	return nil
}

// ValidateMetadata renders md as JSON and validates it.
func (v *Validator) ValidateMetadata(md *ir.Metadata) error {
	doc, err := json.Marshal(md)
	if err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	return v.Validate(doc)
}

// Validate checks doc with a freshly compiled schema.
func Validate(doc []byte) error {
	v, err := NewValidator()
	if err != nil {
		return err
	}
	return v.Validate(doc)
}

func toError(err error) error {
	list := cueerrors.Errors(err)
	if len(list) == 0 {
		return &Error{Issues: []Issue{{Message: err.Error()}}}
	}

	out := &Error{Issues: make([]Issue, 0, len(list))}
	for _, e := range list {
		format, args := e.Msg()
		out.Issues = append(out.Issues, Issue{
			Path:    strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
		})
	}
	return out
}
