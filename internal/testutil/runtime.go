package testutil

import (
	"testing"

	"github.com/danforbes/dots/internal/frame"
)

// SampleRuntime builds a small runtime with the shapes real chains use:
// a System pallet with a keyed account map, a Balances pallet with calls,
// events and errors, and the usual signed extension set.
//
// The result is deterministic; golden files depend on its type ids:
//
//	0 u8            9 Compact<u128>     18 Balances Error
//	1 u32          10 ()                19 Era
//	2 u64          11 Option<u32>       20 H256
//	3 u128         12 DispatchError     21 Compact<u32>
//	4 [u8; 32]     13 Result            22 CheckNonce
//	5 AccountId32  14 System Call       23 CheckNonZeroSender
//	6 AccountData  15 System Event      24 RuntimeCall
//	7 AccountInfo  16 Balances Call     25 Lsb0
//	8 Vec<u8>      17 Balances Event    26 BitVec<u8, Lsb0>
func SampleRuntime() *frame.RuntimeMetadataV14 {
	b := NewMetadataBuilder()

	u8 := b.Primitive(frame.PrimitiveU8)
	u32 := b.Primitive(frame.PrimitiveU32)
	b.Primitive(frame.PrimitiveU64)
	u128 := b.Primitive(frame.PrimitiveU128)
	bytes32 := b.Array(32, u8)
	accountID := b.Composite([]string{"sp_core", "crypto", "AccountId32"}, Field("", bytes32))
	accountData := b.Composite([]string{"pallet_balances", "AccountData"},
		Field("free", u128),
		Field("reserved", u128),
	)
	accountInfo := b.Composite([]string{"frame_system", "AccountInfo"},
		Field("nonce", u32),
		Field("data", accountData),
	)
	vecU8 := b.Sequence(u8)
	compactU128 := b.Compact(u128)
	unit := b.Tuple()
	b.Variant([]string{"Option"},
		Variant(0, "None"),
		Variant(1, "Some", Field("", u32)),
	)
	dispatchError := b.Variant([]string{"sp_runtime", "DispatchError"},
		Variant(0, "Other"),
		Variant(1, "BadOrigin"),
	)
	dispatchResult := b.Variant([]string{"Result"},
		Variant(0, "Ok", Field("", unit)),
		Variant(1, "Err", Field("", dispatchError)),
	)
	systemCall := b.Variant([]string{"frame_system", "pallet", "Call"},
		Variant(0, "remark", Field("remark", vecU8)),
	)
	systemEvent := b.Variant([]string{"frame_system", "pallet", "Event"},
		Variant(0, "ExtrinsicSuccess"),
		Variant(1, "Remarked", Field("sender", accountID), Field("result", dispatchResult)),
	)
	balancesCall := b.Variant([]string{"pallet_balances", "pallet", "Call"},
		Variant(0, "transfer_allow_death", Field("dest", accountID), Field("value", compactU128)),
	)
	balancesEvent := b.Variant([]string{"pallet_balances", "pallet", "Event"},
		Variant(2, "Transfer", Field("from", accountID), Field("to", accountID), Field("amount", u128)),
	)
	balancesError := b.Variant([]string{"pallet_balances", "pallet", "Error"},
		Variant(0, "InsufficientBalance"),
		Variant(1, "ExistentialDeposit"),
	)
	era := b.Variant([]string{"sp_runtime", "generic", "era", "Era"},
		Variant(0, "Immortal"),
		Variant(1, "Mortal1", Field("", u8)),
	)
	hash := b.Composite([]string{"primitive_types", "H256"}, Field("", bytes32))
	compactU32 := b.Compact(u32)
	checkNonce := b.Composite([]string{"frame_system", "extensions", "check_nonce", "CheckNonce"},
		Field("", compactU32),
	)
	empty := b.Composite([]string{"frame_system", "extensions", "check_non_zero_sender", "CheckNonZeroSender"})
	runtimeCall := b.Variant([]string{"node_runtime", "RuntimeCall"},
		Variant(0, "System", Field("", systemCall)),
		Variant(5, "Balances", Field("", balancesCall)),
	)
	lsb0 := b.Composite([]string{"bitvec", "order", "Lsb0"})
	b.BitSequence(u8, lsb0)

	b.Pallet(frame.PalletMetadata{
		Name: "System",
		Storage: &frame.PalletStorageMetadata{
			Prefix: "System",
			Entries: []frame.StorageEntryMetadata{
				{
					Name:     "Account",
					Modifier: frame.ModifierDefault,
					Type: &frame.StorageMap{
						Hashers: []frame.StorageHasher{frame.HasherBlake2_128Concat},
						Key:     accountID,
						Value:   accountInfo,
					},
					Default: make([]byte, 36),
					Docs:    []string{" The full account information for a particular account ID."},
				},
				{
					Name:     "Number",
					Modifier: frame.ModifierDefault,
					Type:     &frame.StoragePlain{Value: u32},
					Default:  []byte{0, 0, 0, 0},
					Docs:     []string{" The current block number being processed."},
				},
				{
					Name:     "ParentHash",
					Modifier: frame.ModifierOptional,
					Type:     &frame.StoragePlain{Value: hash},
					Default:  []byte{},
					Docs:     []string{},
				},
			},
		},
		Calls: &frame.PalletCallMetadata{Type: systemCall},
		Event: &frame.PalletEventMetadata{Type: systemEvent},
		Constants: []frame.PalletConstantMetadata{{
			Name:  "BlockHashCount",
			Type:  u32,
			Value: []byte{0x60, 0x09, 0x00, 0x00},
			Docs:  []string{" Maximum number of block number to block hash mappings to keep."},
		}},
		Index: 0,
	})

	b.Pallet(frame.PalletMetadata{
		Name: "Balances",
		Storage: &frame.PalletStorageMetadata{
			Prefix: "Balances",
			Entries: []frame.StorageEntryMetadata{{
				Name:     "TotalIssuance",
				Modifier: frame.ModifierDefault,
				Type:     &frame.StoragePlain{Value: u128},
				Default:  make([]byte, 16),
				Docs:     []string{" The total units issued in the system."},
			}},
		},
		Calls: &frame.PalletCallMetadata{Type: balancesCall},
		Event: &frame.PalletEventMetadata{Type: balancesEvent},
		Constants: []frame.PalletConstantMetadata{{
			Name:  "ExistentialDeposit",
			Type:  u128,
			Value: []byte{0xf4, 0x01, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
			Docs:  []string{},
		}},
		Error: &frame.PalletErrorMetadata{Type: balancesError},
		Index: 5,
	})

	b.Extension("CheckNonZeroSender", empty, unit)
	b.Extension("CheckSpecVersion", unit, u32)
	b.Extension("CheckGenesis", unit, hash)
	b.Extension("CheckMortality", era, hash)
	b.Extension("CheckNonce", checkNonce, unit)
	b.Extension("ChargeTransactionPayment", compactU128, unit)

	b.Extrinsic(vecU8, 4)
	b.Runtime(runtimeCall)
	return b.Build()
}

// SampleRuntimeBytes encodes SampleRuntime, failing the test on error.
func SampleRuntimeBytes(tb testing.TB) []byte {
	tb.Helper()
	raw, err := frame.Encode(SampleRuntime())
	if err != nil {
		tb.Fatalf("encode sample runtime: %v", err)
	}
	return raw
}
