package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danforbes/dots/internal/ir"
)

func TestMatchSubset(t *testing.T) {
	actual := map[string]any{
		"type":   "Struct",
		"name":   "demo::Pair",
		"store":  nil,
		"fields": []any{map[string]any{"name": "a", "field": 1.0}},
	}

	tests := []struct {
		name     string
		expected any
		want     bool
	}{
		{"empty object", map[string]any{}, true},
		{"scalar", map[string]any{"type": "Struct"}, true},
		{"null", map[string]any{"store": nil}, true},
		{"nested subset", map[string]any{"fields": []any{map[string]any{"field": 1.0}}}, true},
		{"wrong scalar", map[string]any{"type": "Enum"}, false},
		{"missing key", map[string]any{"length": nil}, false},
		{"array length", map[string]any{"fields": []any{}}, false},
		{"object vs scalar", map[string]any{"name": map[string]any{}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchSubset(actual, tt.expected))
		})
	}
}

func TestAssertTypeShape_YAMLIntegers(t *testing.T) {
	store := uint32(3)
	md := &ir.Metadata{Types: ir.Types{1: {Type: ir.KindOption, Store: &store}}}
	id := uint32(1)

	err := assertTypeShape(md, Assertion{Type: AssertTypeShape, ID: &id, Expect: map[string]any{"store": 3}})
	assert.NoError(t, err)

	err = assertTypeShape(md, Assertion{Type: AssertTypeShape, ID: &id, Expect: map[string]any{"store": 4}})
	assert.Error(t, err)
}

func TestAssertPalletSection_MissingPallet(t *testing.T) {
	err := assertPalletSection(&ir.Metadata{}, Assertion{Pallet: "Nope", Section: "calls"})
	var ae *AssertionError
	assert.ErrorAs(t, err, &ae)
	assert.Equal(t, "pallet not found", ae.Actual)
}

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{Type: "cycles", Expected: "1 cycle(s)", Actual: "0 cycle(s) []"}
	assert.Equal(t, "Assertion failed: cycles\n  Expected: 1 cycle(s)\n  Actual: 0 cycle(s) []", err.Error())
}

func TestEvaluateAssertions_Unknown(t *testing.T) {
	errs := EvaluateAssertions(&ir.Metadata{}, []Assertion{{Type: "bogus"}})
	assert.Equal(t, []string{`assertion[0]: unknown assertion type "bogus"`}, errs)
}
