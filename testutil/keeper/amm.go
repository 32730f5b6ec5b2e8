package keeper

import (
	"testing"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	ammkeeper "github.com/paw-chain/pawswap/x/amm/keeper"
	ammtypes "github.com/paw-chain/pawswap/x/amm/types"
	assetkeeper "github.com/paw-chain/pawswap/x/asset/keeper"
	assettypes "github.com/paw-chain/pawswap/x/asset/types"
)

// OwnerName names the account that owns the test registry.
const OwnerName = "owner"

// Fixture bundles an AMM keeper with the asset ledger it settles against.
type Fixture struct {
	AMM   ammkeeper.Keeper
	Asset assetkeeper.Keeper
	Ctx   sdk.Context
	Owner sdk.AccAddress
}

// AMMKeeper creates a test AMM keeper backed by a real asset keeper on an
// in-memory multistore.
func AMMKeeper(t testing.TB) Fixture {
	return AMMKeeperWithAssets(t, func(ak assetkeeper.Keeper) ammtypes.AssetKeeper { return ak })
}

// AMMKeeperWithAssets is AMMKeeper with the asset capability seen by the AMM
// replaced by wrap(assetKeeper). Tests use it to inject transfer callbacks
// or failures.
func AMMKeeperWithAssets(t testing.TB, wrap func(assetkeeper.Keeper) ammtypes.AssetKeeper) Fixture {
	ammKey := storetypes.NewKVStoreKey(ammtypes.StoreKey)
	assetKey := storetypes.NewKVStoreKey(assettypes.StoreKey)

	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, log.NewNopLogger(), metrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(ammKey, storetypes.StoreTypeIAVL, db)
	stateStore.MountStoreWithDB(assetKey, storetypes.StoreTypeIAVL, db)
	require.NoError(t, stateStore.LoadLatestVersion())

	owner := assettypes.NamedAccount(OwnerName)
	assetKeeper := assetkeeper.NewKeeper(assetKey)
	ammKeeper := ammkeeper.NewKeeper(ammKey, wrap(assetKeeper), owner)

	ctx := sdk.NewContext(stateStore, cmtproto.Header{Height: 1}, false, log.NewNopLogger())

	require.NoError(t, ammKeeper.InitGenesis(ctx, *ammtypes.DefaultGenesis()))

	return Fixture{
		AMM:   ammKeeper,
		Asset: assetKeeper,
		Ctx:   ctx,
		Owner: owner,
	}
}

// Account returns the address of a named test account.
func Account(name string) sdk.AccAddress {
	return assettypes.NamedAccount(name)
}

// Fund mints amount of denom to holder.
func (f Fixture) Fund(t testing.TB, denom string, holder sdk.AccAddress, amount int64) {
	require.NoError(t, f.Asset.Mint(f.Ctx, denom, holder, math.NewInt(amount)))
}

// FundAndApprove mints amount of denom to holder and lets the pool spend it.
func (f Fixture) FundAndApprove(t testing.TB, denom string, holder sdk.AccAddress, poolID uint64, amount int64) {
	f.Fund(t, denom, holder, amount)
	pool := ammtypes.PoolAddress(poolID)
	current := f.Asset.Allowance(f.Ctx, denom, holder, pool)
	require.NoError(t, f.Asset.Approve(f.Ctx, denom, holder, pool, current.AddRaw(amount)))
}

// CreatePool creates a pool for (x, y) as the registry owner.
func (f Fixture) CreatePool(t testing.TB, x, y string) *ammtypes.Pool {
	pool, err := f.AMM.CreatePool(f.Ctx, f.Owner, x, y)
	require.NoError(t, err)
	return pool
}

// SeedPool creates a pool for (x, y) and deposits amountX/amountY from
// provider, returning the pool and the minted shares.
func (f Fixture) SeedPool(t testing.TB, provider sdk.AccAddress, x, y string, amountX, amountY int64) (*ammtypes.Pool, math.Int) {
	pool := f.CreatePool(t, x, y)
	f.FundAndApprove(t, x, provider, pool.Id, amountX)
	f.FundAndApprove(t, y, provider, pool.Id, amountY)

	amountA, amountB := math.NewInt(amountX), math.NewInt(amountY)
	if pool.AssetA != x {
		amountA, amountB = amountB, amountA
	}
	minted, err := f.AMM.AddLiquidity(f.Ctx, provider, pool.Id, amountA, amountB)
	require.NoError(t, err)

	pool, err = f.AMM.GetPoolByID(f.Ctx, pool.Id)
	require.NoError(t, err)
	return pool, minted
}
