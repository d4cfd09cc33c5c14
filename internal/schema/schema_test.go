package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danforbes/dots/internal/compiler"
	"github.com/danforbes/dots/internal/ir"
	"github.com/danforbes/dots/internal/testutil"
)

func decodedSample(t *testing.T) *ir.Metadata {
	t.Helper()
	md, err := compiler.DecodeMetadata(testutil.SampleRuntimeBytes(t))
	require.NoError(t, err)
	return md
}

// sampleDoc returns the sample metadata as a generic JSON tree for
// mutation.
func sampleDoc(t *testing.T) map[string]any {
	t.Helper()
	raw, err := json.Marshal(decodedSample(t))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	return doc
}

func encode(t *testing.T, doc map[string]any) []byte {
	t.Helper()
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	return raw
}

func TestNewValidator(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)
	assert.True(t, v.def.Exists())
}

func TestValidate_DecodedMetadata(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	assert.NoError(t, v.ValidateMetadata(decodedSample(t)))
}

func TestValidate_EmptyMetadata(t *testing.T) {
	doc := []byte(`{"pallets":[],"types":{},"signing":{"type":4,"extensions":[]}}`)
	assert.NoError(t, Validate(doc))
}

func TestValidate_NotJSON(t *testing.T) {
	err := Validate([]byte(`{"pallets":`))
	require.Error(t, err)

	var se *Error
	assert.False(t, errors.As(err, &se))
}

func TestValidate_Violations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(doc map[string]any)
	}{
		{
			name: "storage with both type and map",
			mutate: func(doc map[string]any) {
				item := storageItem(doc, 0, 0)
				item["type"] = 1
			},
		},
		{
			name: "storage with neither type nor map",
			mutate: func(doc map[string]any) {
				item := storageItem(doc, 0, 1)
				item["type"] = nil
			},
		},
		{
			name: "unknown hasher",
			mutate: func(doc map[string]any) {
				m := storageItem(doc, 0, 0)["map"].(map[string]any)
				m["hashers"] = []any{"Sha256"}
			},
		},
		{
			name: "unknown modifier",
			mutate: func(doc map[string]any) {
				storageItem(doc, 0, 0)["modifier"] = "Required"
			},
		},
		{
			name: "odd length hex",
			mutate: func(doc map[string]any) {
				storageItem(doc, 0, 1)["default"] = "0x123"
			},
		},
		{
			name: "enum without name",
			mutate: func(doc map[string]any) {
				typeEntry(doc, "12")["name"] = nil
			},
		},
		{
			name: "primitive with payload",
			mutate: func(doc map[string]any) {
				typeEntry(doc, "0")["store"] = 1
			},
		},
		{
			name: "result with three fields",
			mutate: func(doc map[string]any) {
				ty := typeEntry(doc, "13")
				fields := ty["fields"].([]any)
				ty["fields"] = append(fields, fields[0])
			},
		},
		{
			name: "unknown kind",
			mutate: func(doc map[string]any) {
				typeEntry(doc, "0")["type"] = "Float"
			},
		},
		{
			name: "non numeric type key",
			mutate: func(doc map[string]any) {
				types := doc["types"].(map[string]any)
				types["x"] = types["0"]
			},
		},
		{
			name: "pallet index out of range",
			mutate: func(doc map[string]any) {
				pallet(doc, 0)["index"] = 256
			},
		},
		{
			name: "unexpected field",
			mutate: func(doc map[string]any) {
				doc["extra"] = true
			},
		},
		{
			name: "missing signing",
			mutate: func(doc map[string]any) {
				delete(doc, "signing")
			},
		},
	}

	v, err := NewValidator()
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := sampleDoc(t)
			tt.mutate(doc)

			err := v.Validate(encode(t, doc))
			require.Error(t, err)

			var se *Error
			require.ErrorAs(t, err, &se)
			assert.NotEmpty(t, se.Issues)
		})
	}
}

func TestError_Format(t *testing.T) {
	one := &Error{Issues: []Issue{{Path: "types.0.type", Message: "bad kind"}}}
	assert.Equal(t, "schema: types.0.type: bad kind", one.Error())

	two := &Error{Issues: []Issue{{Message: "a"}, {Path: "p", Message: "b"}}}
	assert.Equal(t, "schema: 2 violations: a; p: b", two.Error())
}

func TestSource(t *testing.T) {
	assert.Contains(t, Source(), "#Metadata")
}

func pallet(doc map[string]any, i int) map[string]any {
	return doc["pallets"].([]any)[i].(map[string]any)
}

func storageItem(doc map[string]any, p, i int) map[string]any {
	return pallet(doc, p)["storage"].([]any)[i].(map[string]any)
}

func typeEntry(doc map[string]any, id string) map[string]any {
	return doc["types"].(map[string]any)[id].(map[string]any)
}
