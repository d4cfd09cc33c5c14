package harness

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/danforbes/dots/internal/compiler"
	"github.com/danforbes/dots/internal/ir"
	"github.com/danforbes/dots/internal/schema"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

func assertTypeKind(md *ir.Metadata, a Assertion) error {
	ty, ok := md.Types[*a.ID]
	if !ok {
		return &AssertionError{
			Type:     AssertTypeKind,
			Expected: fmt.Sprintf("type %d of kind %s", *a.ID, a.Kind),
			Actual:   "type not in index",
		}
	}
	if string(ty.Type) != a.Kind {
		return &AssertionError{
			Type:     AssertTypeKind,
			Expected: fmt.Sprintf("type %d of kind %s", *a.ID, a.Kind),
			Actual:   string(ty.Type),
		}
	}
	return nil
}

// assertTypeShape compares the type's JSON form with the expected subset.
func assertTypeShape(md *ir.Metadata, a Assertion) error {
	ty, ok := md.Types[*a.ID]
	if !ok {
		return &AssertionError{
			Type:     AssertTypeShape,
			Expected: fmt.Sprintf("type %d", *a.ID),
			Actual:   "type not in index",
		}
	}

	actual, err := toJSONValue(ty)
	if err != nil {
		return err
	}
	expected, err := toJSONValue(a.Expect)
	if err != nil {
		return err
	}

	if !matchSubset(actual, expected) {
		return &AssertionError{
			Type:     AssertTypeShape,
			Expected: fmt.Sprintf("type %d matching %s", *a.ID, compactJSON(expected)),
			Actual:   compactJSON(actual),
		}
	}
	return nil
}

func assertExtensions(md *ir.Metadata, a Assertion) error {
	names := make([]string, 0, len(md.Signing.Extensions))
	for _, ext := range md.Signing.Extensions {
		names = append(names, ext.Name)
	}
	if !reflect.DeepEqual(names, nonNilStrings(a.Names)) {
		return &AssertionError{
			Type:     AssertExtensions,
			Expected: fmt.Sprintf("%v", a.Names),
			Actual:   fmt.Sprintf("%v", names),
		}
	}
	return nil
}

func assertPalletSection(md *ir.Metadata, a Assertion) error {
	p, ok := md.Pallet(a.Pallet)
	if !ok {
		return &AssertionError{
			Type:     AssertPalletSection,
			Expected: fmt.Sprintf("pallet %s", a.Pallet),
			Actual:   "pallet not found",
		}
	}

	names := sectionNamesOf(p, a.Section)
	if !reflect.DeepEqual(names, nonNilStrings(a.Names)) {
		return &AssertionError{
			Type:     AssertPalletSection,
			Expected: fmt.Sprintf("%s.%s = %v", a.Pallet, a.Section, a.Names),
			Actual:   fmt.Sprintf("%v", names),
		}
	}
	return nil
}

func sectionNamesOf(p *ir.Pallet, section string) []string {
	names := []string{}
	switch section {
	case "calls":
		for _, v := range p.Calls {
			names = append(names, v.Name)
		}
	case "events":
		for _, v := range p.Events {
			names = append(names, v.Name)
		}
	case "errors":
		for _, v := range p.Errors {
			names = append(names, v.Name)
		}
	case "storage":
		for _, s := range p.Storage {
			names = append(names, s.Name)
		}
	case "constants":
		for _, c := range p.Constants {
			names = append(names, c.Name)
		}
	}
	return names
}

func assertCycles(md *ir.Metadata, a Assertion) error {
	cycles := compiler.AnalyzeCycles(md.Types)
	if len(cycles) != *a.Count {
		msgs := make([]string, 0, len(cycles))
		for _, c := range cycles {
			msgs = append(msgs, c.Message)
		}
		return &AssertionError{
			Type:     AssertCycles,
			Expected: fmt.Sprintf("%d cycle(s)", *a.Count),
			Actual:   fmt.Sprintf("%d cycle(s) %v", len(cycles), msgs),
		}
	}
	return nil
}

func assertValid(md *ir.Metadata) error {
	if errs := compiler.Validate(md); len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		return &AssertionError{
			Type:     AssertValid,
			Expected: "no validation errors",
			Actual:   strings.Join(msgs, "; "),
		}
	}

	v, err := schema.NewValidator()
	if err != nil {
		return err
	}
	if err := v.ValidateMetadata(md); err != nil {
		return &AssertionError{
			Type:     AssertValid,
			Expected: "document matches schema",
			Actual:   err.Error(),
		}
	}
	return nil
}

// toJSONValue renders v through encoding/json so typed output and YAML
// literals compare in the same vocabulary.
func toJSONValue(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("render for comparison: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("render for comparison: %w", err)
	}
	return out, nil
}

func compactJSON(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(raw)
}

// matchSubset reports whether actual contains expected. Objects match when
// every expected key matches; arrays must have equal length and match
// element-wise.
func matchSubset(actual, expected any) bool {
	switch exp := expected.(type) {
	case map[string]any:
		act, ok := actual.(map[string]any)
		if !ok {
			return false
		}
		for key, ev := range exp {
			av, exists := act[key]
			if !exists || !matchSubset(av, ev) {
				return false
			}
		}
		return true
	case []any:
		act, ok := actual.([]any)
		if !ok || len(act) != len(exp) {
			return false
		}
		for i := range exp {
			if !matchSubset(act[i], exp[i]) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(actual, expected)
	}
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// EvaluateAssertions evaluates all assertions against decoded metadata.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(md *ir.Metadata, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTypeKind:
			err = assertTypeKind(md, assertion)
		case AssertTypeShape:
			err = assertTypeShape(md, assertion)
		case AssertExtensions:
			err = assertExtensions(md, assertion)
		case AssertPalletSection:
			err = assertPalletSection(md, assertion)
		case AssertCycles:
			err = assertCycles(md, assertion)
		case AssertValid:
			err = assertValid(md)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
