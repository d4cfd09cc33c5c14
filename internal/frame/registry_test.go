package frame_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danforbes/dots/internal/frame"
)

func TestNewRegistry_DeclarationOrder(t *testing.T) {
	reg, err := frame.NewRegistry(everyShape().Types)
	require.NoError(t, err)

	assert.Equal(t, []uint32{0, 1, 2, 3, 4, 5, 6, 7, 300}, reg.IDs())
	assert.Equal(t, 9, reg.Len())

	ty, err := reg.Resolve(300)
	require.NoError(t, err)
	assert.Equal(t, []string{"Option"}, ty.Path)
}

func TestNewRegistry_IDsIsACopy(t *testing.T) {
	reg, err := frame.NewRegistry(everyShape().Types)
	require.NoError(t, err)

	ids := reg.IDs()
	ids[0] = 999
	assert.Equal(t, uint32(0), reg.IDs()[0])
}

func TestNewRegistry_Duplicate(t *testing.T) {
	types := everyShape().Types
	types[1].ID = 0

	_, err := frame.NewRegistry(types)
	require.Error(t, err)
	assert.True(t, frame.IsMalformed(err))
	assert.Contains(t, err.Error(), "duplicate type id 0")
}

func TestNewRegistry_DanglingReferences(t *testing.T) {
	tests := []struct {
		name string
		def  frame.TypeDef
	}{
		{"composite field", &frame.TypeDefComposite{Fields: []frame.Field{{Type: 42}}}},
		{"variant field", &frame.TypeDefVariant{Variants: []frame.Variant{{Name: "A", Fields: []frame.Field{{Type: 42}}}}}},
		{"sequence", &frame.TypeDefSequence{Type: 42}},
		{"array", &frame.TypeDefArray{Len: 1, Type: 42}},
		{"tuple", &frame.TypeDefTuple{Types: []uint32{0, 42}}},
		{"compact", &frame.TypeDefCompact{Type: 42}},
		{"bit store", &frame.TypeDefBitSequence{StoreType: 42, OrderType: 0}},
		{"bit order", &frame.TypeDefBitSequence{StoreType: 0, OrderType: 42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			types := []frame.PortableType{
				{ID: 0, Type: frame.Type{Def: &frame.TypeDefPrimitive{Primitive: frame.PrimitiveU8}}},
				{ID: 1, Type: frame.Type{Def: tt.def}},
			}

			_, err := frame.NewRegistry(types)
			require.Error(t, err)
			assert.True(t, frame.IsUnresolvedType(err))

			var me *frame.MetadataError
			require.ErrorAs(t, err, &me)
			assert.Equal(t, uint32(42), *me.TypeID)
			assert.Contains(t, me.Message, "referenced by type 1")
		})
	}
}

func TestNewRegistry_NilDefinition(t *testing.T) {
	_, err := frame.NewRegistry([]frame.PortableType{{ID: 0}})
	assert.True(t, frame.IsMalformed(err))
}

func TestRegistry_Resolve(t *testing.T) {
	reg, err := frame.NewRegistry(everyShape().Types)
	require.NoError(t, err)

	_, err = reg.Resolve(8)
	assert.True(t, frame.IsUnresolvedType(err))

	assert.NoError(t, reg.MustExist(7, "test"))
	err = reg.MustExist(8, "constant Demo.Max")
	assert.True(t, frame.IsUnresolvedType(err))
	assert.Contains(t, err.Error(), "constant Demo.Max")
}

func TestReferences(t *testing.T) {
	tests := []struct {
		name string
		def  frame.TypeDef
		want []uint32
	}{
		{"primitive", &frame.TypeDefPrimitive{Primitive: frame.PrimitiveBool}, nil},
		{"composite", &frame.TypeDefComposite{Fields: []frame.Field{{Type: 3}, {Type: 1}}}, []uint32{3, 1}},
		{"variant", &frame.TypeDefVariant{Variants: []frame.Variant{
			{Fields: []frame.Field{{Type: 4}}},
			{Fields: []frame.Field{}},
			{Fields: []frame.Field{{Type: 5}, {Type: 6}}},
		}}, []uint32{4, 5, 6}},
		{"sequence", &frame.TypeDefSequence{Type: 2}, []uint32{2}},
		{"array", &frame.TypeDefArray{Len: 8, Type: 2}, []uint32{2}},
		{"tuple", &frame.TypeDefTuple{Types: []uint32{9, 8}}, []uint32{9, 8}},
		{"compact", &frame.TypeDefCompact{Type: 7}, []uint32{7}},
		{"bit sequence", &frame.TypeDefBitSequence{StoreType: 1, OrderType: 2}, []uint32{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := frame.References(tt.def)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVisitTypeDef_Nil(t *testing.T) {
	_, err := frame.References(nil)
	assert.Error(t, err)
}
