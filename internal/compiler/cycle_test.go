package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danforbes/dots/internal/ir"
)

func named(s string) *string { return &s }

// TestAnalyzeCycles_Empty tests that an empty index produces no warnings.
func TestAnalyzeCycles_Empty(t *testing.T) {
	warnings := AnalyzeCycles(nil)
	assert.NotNil(t, warnings)
	assert.Empty(t, warnings)
}

// TestAnalyzeCycles_DAG tests that an acyclic index produces no warnings.
func TestAnalyzeCycles_DAG(t *testing.T) {
	types := ir.Types{
		0: {Type: ir.KindU8},
		1: {Type: ir.KindList, Store: u32Ptr(0)},
		2: {Type: ir.KindTuple, Fields: []ir.Field{{Field: 0}, {Field: 1}}},
		3: {Type: ir.KindOption, Store: u32Ptr(2)},
	}
	assert.Empty(t, AnalyzeCycles(types))
}

// TestAnalyzeCycles_SampleRuntimeIsAcyclic tests the sample runtime.
func TestAnalyzeCycles_SampleRuntimeIsAcyclic(t *testing.T) {
	assert.Empty(t, AnalyzeCycles(decodedSample(t).Types))
}

// TestAnalyzeCycles_SelfLoop tests a type that refers to itself.
func TestAnalyzeCycles_SelfLoop(t *testing.T) {
	types := ir.Types{
		0: {Type: ir.KindEnum, Name: named("demo::Tree"), Variants: []ir.Variant{
			{Index: 0, Name: "Leaf"},
			{Index: 1, Name: "Node", Fields: []ir.Field{{Field: 0}, {Field: 0}}},
		}},
	}

	warnings := AnalyzeCycles(types)
	require.Len(t, warnings, 1)
	assert.Equal(t, []uint32{0, 0}, warnings[0].Path)
	assert.Contains(t, warnings[0].Message, "demo::Tree")
	assert.Equal(t, "info", warnings[0].Level)
}

// TestAnalyzeCycles_CallBatch tests the usual RuntimeCall → Vec<RuntimeCall> recursion.
func TestAnalyzeCycles_CallBatch(t *testing.T) {
	types := ir.Types{
		0: {Type: ir.KindU8},
		1: {Type: ir.KindEnum, Name: named("node_runtime::RuntimeCall"), Variants: []ir.Variant{
			{Index: 0, Name: "Utility", Fields: []ir.Field{{Field: 2}}},
		}},
		2: {Type: ir.KindEnum, Name: named("pallet_utility::Call"), Variants: []ir.Variant{
			{Index: 0, Name: "batch", Fields: []ir.Field{{Name: named("calls"), Field: 3}}},
		}},
		3: {Type: ir.KindList, Store: u32Ptr(1)},
	}

	warnings := AnalyzeCycles(types)
	require.Len(t, warnings, 1)
	assert.Equal(t, []uint32{1, 2, 3, 1}, warnings[0].Path)
	assert.Contains(t, warnings[0].Message, "1 (node_runtime::RuntimeCall) → 2 (pallet_utility::Call) → 3 → 1")
}

// TestAnalyzeCycles_MultipleSorted tests that warnings are ordered by smallest id.
func TestAnalyzeCycles_MultipleSorted(t *testing.T) {
	types := ir.Types{
		7: {Type: ir.KindList, Store: u32Ptr(8)},
		8: {Type: ir.KindOption, Store: u32Ptr(7)},
		2: {Type: ir.KindList, Store: u32Ptr(2)},
	}

	warnings := AnalyzeCycles(types)
	require.Len(t, warnings, 2)
	assert.Equal(t, uint32(2), warnings[0].Path[0])
	assert.Equal(t, []uint32{7, 8, 7}, warnings[1].Path)
}
