package keeper

import (
	"context"

	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/pawswap/x/amm/types"
)

// Keeper of the amm store. It owns the pool registry and every pool's
// reserves and share ledger; asset custody is delegated to the asset keeper.
type Keeper struct {
	storeKey    storetypes.StoreKey
	assetKeeper types.AssetKeeper
	owner       sdk.AccAddress
	metrics     *AMMMetrics
}

// NewKeeper creates a new amm Keeper instance. owner is the controlling
// identity reported by Owner and, when pool creation is restricted, the only
// account allowed to create pools.
func NewKeeper(key storetypes.StoreKey, assetKeeper types.AssetKeeper, owner sdk.AccAddress) Keeper {
	return Keeper{
		storeKey:    key,
		assetKeeper: assetKeeper,
		owner:       owner,
		metrics:     NewAMMMetrics(),
	}
}

// getStore returns the KVStore for the amm module
func (k Keeper) getStore(ctx context.Context) storetypes.KVStore {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return sdkCtx.KVStore(k.storeKey)
}

// Logger returns a module-specific logger.
func (k Keeper) Logger(ctx context.Context) log.Logger {
	return sdk.UnwrapSDKContext(ctx).Logger().With("module", "x/"+types.ModuleName)
}

// Owner returns the controlling identity of the registry.
func (k Keeper) Owner() sdk.AccAddress {
	return k.owner
}
