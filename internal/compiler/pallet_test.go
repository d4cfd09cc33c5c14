package compiler

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danforbes/dots/internal/frame"
	"github.com/danforbes/dots/internal/ir"
	"github.com/danforbes/dots/internal/testutil"
)

// TestProjectPallet_AccountsMap tests the keyed storage entry shape.
func TestProjectPallet_AccountsMap(t *testing.T) {
	b := testutil.NewMetadataBuilder()
	b.AddAt(5, &frame.TypeDefArray{Len: 32, Type: 6})
	b.AddAt(6, &frame.TypeDefPrimitive{Primitive: frame.PrimitiveU8})
	b.AddAt(10, &frame.TypeDefPrimitive{Primitive: frame.PrimitiveU128})
	reg := registry(t, b)

	p := frame.PalletMetadata{
		Name: "Balances",
		Storage: &frame.PalletStorageMetadata{
			Prefix: "Balances",
			Entries: []frame.StorageEntryMetadata{{
				Name:     "Accounts",
				Modifier: frame.ModifierDefault,
				Type: &frame.StorageMap{
					Hashers: []frame.StorageHasher{frame.HasherBlake2_128Concat},
					Key:     5,
					Value:   10,
				},
				Default: make([]byte, 16),
				Docs:    []string{" The balance of an account."},
			}},
		},
		Constants: []frame.PalletConstantMetadata{},
		Index:     5,
	}

	out, err := ProjectPallet(p, reg)
	require.NoError(t, err)
	require.Len(t, out.Storage, 1)

	item := out.Storage[0]
	assert.Equal(t, "Accounts", item.Name)
	assert.Nil(t, item.Type, "map entries have no scalar type")
	require.NotNil(t, item.Map)
	assert.Equal(t, ir.MapDef{Hashers: []ir.StorageHasher{ir.HasherBlake2_128Concat}, Key: 5, Value: 10}, *item.Map)
	assert.Equal(t, ir.ModifierDefault, item.Modifier)

	raw, err := json.Marshal(item)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "Accounts",
		"type": null,
		"map": {"hashers": ["Blake2_128Concat"], "key": 5, "value": 10},
		"modifier": "Default",
		"default": "0x00000000000000000000000000000000",
		"docs": [" The balance of an account."]
	}`, string(raw))
}

// TestProjectPallet_PlainStorage tests the scalar storage entry shape.
func TestProjectPallet_PlainStorage(t *testing.T) {
	b := testutil.NewMetadataBuilder()
	u32 := b.Primitive(frame.PrimitiveU32)
	reg := registry(t, b)

	out, err := ProjectPallet(frame.PalletMetadata{
		Name: "System",
		Storage: &frame.PalletStorageMetadata{Entries: []frame.StorageEntryMetadata{{
			Name:     "Number",
			Modifier: frame.ModifierOptional,
			Type:     &frame.StoragePlain{Value: u32},
		}}},
	}, reg)
	require.NoError(t, err)

	item := out.Storage[0]
	require.NotNil(t, item.Type)
	assert.Equal(t, u32, *item.Type)
	assert.Nil(t, item.Map)
	assert.Equal(t, ir.ModifierOptional, item.Modifier)
	assert.Equal(t, []string{}, item.Docs)
}

// TestProjectPallet_HasherNames tests every hasher in the table.
func TestProjectPallet_HasherNames(t *testing.T) {
	b := testutil.NewMetadataBuilder()
	u8 := b.Primitive(frame.PrimitiveU8)
	reg := registry(t, b)

	all := []frame.StorageHasher{
		frame.HasherBlake2_128, frame.HasherBlake2_256, frame.HasherBlake2_128Concat,
		frame.HasherTwox128, frame.HasherTwox256, frame.HasherTwox64Concat, frame.HasherIdentity,
	}
	out, err := ProjectPallet(frame.PalletMetadata{
		Name: "Demo",
		Storage: &frame.PalletStorageMetadata{Entries: []frame.StorageEntryMetadata{{
			Name: "DoubleMap",
			Type: &frame.StorageMap{Hashers: all, Key: u8, Value: u8},
		}}},
	}, reg)
	require.NoError(t, err)

	assert.Equal(t, []ir.StorageHasher{
		"Blake2_128", "Blake2_256", "Blake2_128Concat",
		"Twox128", "Twox256", "Twox64Concat", "Identity",
	}, out.Storage[0].Map.Hashers)
}

// TestProjectPallet_Sections tests calls, events and errors projection.
func TestProjectPallet_Sections(t *testing.T) {
	b := testutil.NewMetadataBuilder()
	u8 := b.Primitive(frame.PrimitiveU8)
	vec := b.Sequence(u8)
	call := b.Variant([]string{"frame_system", "pallet", "Call"},
		testutil.Variant(0, "remark", testutil.Field("remark", vec)),
		testutil.Variant(7, "kill"),
	)
	errType := b.Variant([]string{"frame_system", "pallet", "Error"},
		testutil.Variant(0, "InvalidSpecName"),
	)
	reg := registry(t, b)

	out, err := ProjectPallet(frame.PalletMetadata{
		Name:  "System",
		Calls: &frame.PalletCallMetadata{Type: call},
		Error: &frame.PalletErrorMetadata{Type: errType},
		Index: 0,
	}, reg)
	require.NoError(t, err)

	require.Len(t, out.Calls, 2)
	assert.Equal(t, "remark", out.Calls[0].Name)
	assert.Equal(t, "remark", *out.Calls[0].Fields[0].Name)
	assert.Equal(t, uint8(7), out.Calls[1].Index)
	assert.NotNil(t, out.Calls[1].Fields, "fields are always present")
	assert.Empty(t, out.Calls[1].Fields)

	require.Len(t, out.Errors, 1)
	assert.Equal(t, "InvalidSpecName", out.Errors[0].Name)

	assert.Nil(t, out.Events, "absent section stays nil")
	assert.Nil(t, out.Storage)
	assert.NotNil(t, out.Constants)
}

// TestProjectPallet_CallsNotVariant tests that a tuple calls type fails.
func TestProjectPallet_CallsNotVariant(t *testing.T) {
	b := testutil.NewMetadataBuilder()
	u8 := b.Primitive(frame.PrimitiveU8)
	tuple := b.Tuple(u8)
	reg := registry(t, b)

	_, err := ProjectPallet(frame.PalletMetadata{
		Name:  "Broken",
		Calls: &frame.PalletCallMetadata{Type: tuple},
	}, reg)
	require.Error(t, err)
	assert.True(t, frame.IsInvalidVariantShape(err))

	var me *frame.MetadataError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "calls", me.Details["section"])
	assert.Equal(t, "Broken", me.Details["pallet"])
	assert.Equal(t, "tuple", me.Details["kind"])
}

// TestProjectPallet_EventsAndErrorsNotVariant tests the other two sections.
func TestProjectPallet_EventsAndErrorsNotVariant(t *testing.T) {
	b := testutil.NewMetadataBuilder()
	u8 := b.Primitive(frame.PrimitiveU8)
	reg := registry(t, b)

	_, err := ProjectPallet(frame.PalletMetadata{Name: "A", Event: &frame.PalletEventMetadata{Type: u8}}, reg)
	assert.True(t, frame.IsInvalidVariantShape(err))

	_, err = ProjectPallet(frame.PalletMetadata{Name: "A", Error: &frame.PalletErrorMetadata{Type: u8}}, reg)
	assert.True(t, frame.IsInvalidVariantShape(err))
}

// TestProjectPallet_UnresolvedReferences tests every reference site.
func TestProjectPallet_UnresolvedReferences(t *testing.T) {
	b := testutil.NewMetadataBuilder()
	u8 := b.Primitive(frame.PrimitiveU8)
	reg := registry(t, b)

	tests := []struct {
		name   string
		pallet frame.PalletMetadata
	}{
		{"constant", frame.PalletMetadata{Constants: []frame.PalletConstantMetadata{{Name: "C", Type: 99}}}},
		{"plain storage", frame.PalletMetadata{Storage: &frame.PalletStorageMetadata{Entries: []frame.StorageEntryMetadata{
			{Name: "S", Type: &frame.StoragePlain{Value: 99}},
		}}}},
		{"map key", frame.PalletMetadata{Storage: &frame.PalletStorageMetadata{Entries: []frame.StorageEntryMetadata{
			{Name: "M", Type: &frame.StorageMap{Hashers: []frame.StorageHasher{frame.HasherIdentity}, Key: 99, Value: u8}},
		}}}},
		{"map value", frame.PalletMetadata{Storage: &frame.PalletStorageMetadata{Entries: []frame.StorageEntryMetadata{
			{Name: "M", Type: &frame.StorageMap{Hashers: []frame.StorageHasher{frame.HasherIdentity}, Key: u8, Value: 99}},
		}}}},
		{"calls", frame.PalletMetadata{Calls: &frame.PalletCallMetadata{Type: 99}}},
		{"events", frame.PalletMetadata{Event: &frame.PalletEventMetadata{Type: 99}}},
		{"errors", frame.PalletMetadata{Error: &frame.PalletErrorMetadata{Type: 99}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.pallet.Name = "Demo"
			_, err := ProjectPallet(tt.pallet, reg)
			require.Error(t, err)
			assert.True(t, frame.IsUnresolvedType(err), "got %v", err)
		})
	}
}

// TestProjectPallet_ConstantsPassThrough tests that constant bytes are untouched.
func TestProjectPallet_ConstantsPassThrough(t *testing.T) {
	b := testutil.NewMetadataBuilder()
	u32 := b.Primitive(frame.PrimitiveU32)
	reg := registry(t, b)

	out, err := ProjectPallet(frame.PalletMetadata{
		Name: "System",
		Constants: []frame.PalletConstantMetadata{{
			Name: "BlockHashCount", Type: u32, Value: []byte{0x60, 0x09, 0, 0}, Docs: []string{" doc"},
		}},
	}, reg)
	require.NoError(t, err)

	require.Len(t, out.Constants, 1)
	c := out.Constants[0]
	assert.Equal(t, ir.Constant{Name: "BlockHashCount", Type: u32, Value: ir.Bytes{0x60, 0x09, 0, 0}, Docs: []string{" doc"}}, c)
}
