package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danforbes/dots/internal/frame"
)

func TestMetadataBuilder_SequentialIDs(t *testing.T) {
	b := NewMetadataBuilder()
	assert.Equal(t, uint32(0), b.Primitive(frame.PrimitiveU8))
	assert.Equal(t, uint32(1), b.Sequence(0))
	assert.Equal(t, uint32(2), b.Tuple())
}

func TestMetadataBuilder_AddAtSkipsUsedIDs(t *testing.T) {
	b := NewMetadataBuilder()
	b.AddAt(0, &frame.TypeDefPrimitive{Primitive: frame.PrimitiveU32})
	b.AddAt(1, &frame.TypeDefPrimitive{Primitive: frame.PrimitiveU8})

	assert.Equal(t, uint32(2), b.Tuple())
}

func TestMetadataBuilder_BuildFillsExtrinsicAndRuntime(t *testing.T) {
	b := NewMetadataBuilder()
	u8 := b.Primitive(frame.PrimitiveU8)
	md := b.Build()

	require.Len(t, md.Types, 2, "unit tuple added for extrinsic and runtime")
	assert.NotEqual(t, u8, md.Extrinsic.Type)
	assert.Equal(t, md.Extrinsic.Type, md.Runtime)
	assert.Equal(t, uint8(4), md.Extrinsic.Version)

	_, err := frame.NewRegistry(md.Types)
	require.NoError(t, err)
}

func TestMetadataBuilder_BytesRoundTrip(t *testing.T) {
	b := NewMetadataBuilder()
	u32 := b.Primitive(frame.PrimitiveU32)
	b.Composite([]string{"demo", "Pair"}, Field("a", u32), Field("b", u32))

	raw, err := b.Bytes()
	require.NoError(t, err)

	md, err := frame.Decode(raw)
	require.NoError(t, err)
	assert.Len(t, md.Types, 3)
}

func TestSampleRuntime_Valid(t *testing.T) {
	md := SampleRuntime()

	reg, err := frame.NewRegistry(md.Types)
	require.NoError(t, err)
	assert.Equal(t, 27, reg.Len())
	assert.Len(t, md.Pallets, 2)
	assert.Len(t, md.Extrinsic.SignedExtensions, 6)
}

func TestSampleRuntime_Deterministic(t *testing.T) {
	assert.Equal(t, SampleRuntimeBytes(t), SampleRuntimeBytes(t))
}
