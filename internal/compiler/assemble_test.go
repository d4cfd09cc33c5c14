package compiler

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danforbes/dots/internal/frame"
	"github.com/danforbes/dots/internal/ir"
	"github.com/danforbes/dots/internal/testutil"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

// TestDecodeMetadata_SampleRuntimeGolden compares the canonical JSON of the sample runtime.
func TestDecodeMetadata_SampleRuntimeGolden(t *testing.T) {
	md, err := DecodeMetadata(testutil.SampleRuntimeBytes(t))
	require.NoError(t, err)

	out, err := ir.MarshalCanonical(md)
	require.NoError(t, err)

	newGoldie(t).Assert(t, "sample_runtime", out)
}

// TestDecodeMetadata_SampleRuntimeShape spot-checks the sample runtime output.
func TestDecodeMetadata_SampleRuntimeShape(t *testing.T) {
	md, err := DecodeMetadata(testutil.SampleRuntimeBytes(t))
	require.NoError(t, err)

	system, ok := md.Pallet("System")
	require.True(t, ok)
	account, ok := system.StorageItem("Account")
	require.True(t, ok)
	assert.Equal(t, []ir.StorageHasher{ir.HasherBlake2_128Concat}, account.Map.Hashers)

	balances, ok := md.Pallet("Balances")
	require.True(t, ok)
	assert.Equal(t, uint8(5), balances.Index)
	transfer, ok := balances.Event("Transfer")
	require.True(t, ok)
	assert.Len(t, transfer.Fields, 3)

	names := make([]string, 0, len(md.Signing.Extensions))
	for _, e := range md.Signing.Extensions {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{
		"CheckSpecVersion", "CheckGenesis", "CheckMortality", "CheckNonce", "ChargeTransactionPayment",
	}, names, "CheckNonZeroSender carries no payload")

	// AccountId32 wraps [u8; 32]
	assert.Equal(t, ir.KindList, md.Types[5].Type)
	assert.Equal(t, ir.KindOption, md.Types[11].Type)
	assert.Equal(t, ir.KindResult, md.Types[13].Type)

	assert.Empty(t, Validate(md), "decoder output always validates")
}

// TestDecodeMetadata_TypeKeysMatchRegistry tests that the type index covers exactly the registry.
func TestDecodeMetadata_TypeKeysMatchRegistry(t *testing.T) {
	raw := testutil.SampleRuntime()
	reg, err := frame.NewRegistry(raw.Types)
	require.NoError(t, err)

	md, err := DecodeMetadata(testutil.SampleRuntimeBytes(t))
	require.NoError(t, err)

	want := reg.IDs()
	slices.Sort(want)
	assert.Equal(t, want, md.Types.IDs())
}

// TestDecodeMetadata_Truncated tests that every strict prefix of the body is malformed.
func TestDecodeMetadata_Truncated(t *testing.T) {
	raw := testutil.SampleRuntimeBytes(t)

	for _, n := range []int{5, 6, 10, len(raw) / 2, len(raw) - 1} {
		md, err := DecodeMetadata(raw[:n])
		require.Error(t, err, "prefix of %d bytes", n)
		assert.True(t, frame.IsMalformed(err), "prefix of %d bytes: %v", n, err)
		assert.Nil(t, md)
	}
}

// TestDecodeMetadata_UnsupportedVersion tests that the version is checked before the body.
func TestDecodeMetadata_UnsupportedVersion(t *testing.T) {
	raw := []byte{0x6d, 0x65, 0x74, 0x61, 15, 0xff, 0xff}

	md, err := DecodeMetadata(raw)
	require.Error(t, err)
	assert.Nil(t, md)
	assert.True(t, frame.IsUnsupportedVersion(err))

	var me *frame.MetadataError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "15", me.Details["observed"])
}

// TestDecodeMetadata_NoPartialOutput tests that a late failure returns nothing.
func TestDecodeMetadata_NoPartialOutput(t *testing.T) {
	b := testutil.NewMetadataBuilder()
	u8 := b.Primitive(frame.PrimitiveU8)
	b.Pallet(frame.PalletMetadata{Name: "Good", Index: 0})
	b.Pallet(frame.PalletMetadata{Name: "Bad", Calls: &frame.PalletCallMetadata{Type: u8}, Index: 1})
	raw, err := b.Bytes()
	require.NoError(t, err)

	md, err := DecodeMetadata(raw)
	assert.Nil(t, md)
	assert.True(t, frame.IsInvalidVariantShape(err))
	assert.Contains(t, err.Error(), "pallet Bad")
}

// TestDecodeMetadata_CyclicWrapper tests that the assembler surfaces CYCLIC_TYPE.
func TestDecodeMetadata_CyclicWrapper(t *testing.T) {
	b := testutil.NewMetadataBuilder()
	b.AddAt(0, &frame.TypeDefComposite{Fields: []frame.Field{testutil.Field("", 1)}})
	b.AddAt(1, &frame.TypeDefComposite{Fields: []frame.Field{testutil.Field("", 0)}})
	raw, err := b.Bytes()
	require.NoError(t, err)

	_, err = DecodeMetadata(raw)
	assert.True(t, frame.IsCyclicType(err))
}

// TestDecodeMetadata_DanglingExtrinsicType tests the extrinsic and runtime references.
func TestDecodeMetadata_DanglingExtrinsicType(t *testing.T) {
	b := testutil.NewMetadataBuilder()
	unit := b.Tuple()
	b.Extrinsic(99, 4).Runtime(unit)
	raw, err := b.Bytes()
	require.NoError(t, err)

	_, err = DecodeMetadata(raw)
	assert.True(t, frame.IsUnresolvedType(err))

	b = testutil.NewMetadataBuilder()
	unit = b.Tuple()
	b.Extrinsic(unit, 4).Runtime(99)
	raw, err = b.Bytes()
	require.NoError(t, err)

	_, err = DecodeMetadata(raw)
	assert.True(t, frame.IsUnresolvedType(err))
}

// TestDecodeMetadataWithOptions_ParallelMatchesSequential tests that parallelism does not change output.
func TestDecodeMetadataWithOptions_ParallelMatchesSequential(t *testing.T) {
	raw := testutil.SampleRuntimeBytes(t)

	seq, err := DecodeMetadata(raw)
	require.NoError(t, err)

	for _, p := range []int{2, 4, 16} {
		par, err := DecodeMetadataWithOptions(raw, Options{Parallelism: p})
		require.NoError(t, err)
		assert.Equal(t, seq, par, "parallelism %d", p)
	}
}

// TestDecodeMetadataWithOptions_ParallelFirstErrorWins tests that the earliest failing pallet is reported.
func TestDecodeMetadataWithOptions_ParallelFirstErrorWins(t *testing.T) {
	b := testutil.NewMetadataBuilder()
	u8 := b.Primitive(frame.PrimitiveU8)
	for i, name := range []string{"A", "B", "C", "D", "E", "F"} {
		p := frame.PalletMetadata{Name: name, Index: uint8(i)}
		if name == "C" || name == "F" {
			p.Event = &frame.PalletEventMetadata{Type: u8}
		}
		b.Pallet(p)
	}
	raw, err := b.Bytes()
	require.NoError(t, err)

	for range 20 {
		_, err := DecodeMetadataWithOptions(raw, Options{Parallelism: 6})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "pallet C")
	}
}

// TestDecodeMetadata_JSONConventions tests the field names consumers rely on.
func TestDecodeMetadata_JSONConventions(t *testing.T) {
	md, err := DecodeMetadata(testutil.SampleRuntimeBytes(t))
	require.NoError(t, err)

	raw, err := json.Marshal(md)
	require.NoError(t, err)

	var doc struct {
		Types   map[string]map[string]any `json:"types"`
		Signing map[string]any            `json:"signing"`
		Pallets []struct {
			Constants []map[string]any `json:"constants"`
			Storage   []map[string]any `json:"storage"`
			Errors    any              `json:"errors"`
		} `json:"pallets"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))

	assert.Equal(t, "U32", doc.Types["1"]["type"], "type discriminant")
	assert.Equal(t, float64(4), doc.Signing["type"], "signing version")
	assert.Equal(t, float64(1), doc.Pallets[0].Constants[0]["type"], "constant type id")
	assert.Nil(t, doc.Pallets[0].Storage[0]["type"], "map entry has null type")
	assert.Nil(t, doc.Pallets[0].Errors, "absent section is null")
}
