package keeper

import (
	"context"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/pawswap/x/amm/types"
)

// CreatePool registers an empty pool for the unordered pair (assetX, assetY).
// The first call for a pair wins; any later call with the same assets in
// either order fails with ErrDuplicatePool. Reserves are never touched here.
func (k Keeper) CreatePool(ctx context.Context, creator sdk.AccAddress, assetX, assetY string) (*types.Pool, error) {
	pair, err := types.NewPair(assetX, assetY)
	if err != nil {
		return nil, err
	}

	params, err := k.GetParams(ctx)
	if err != nil {
		return nil, fmt.Errorf("CreatePool: get params: %w", err)
	}
	if params.RestrictPoolCreation && !creator.Equals(k.owner) {
		return nil, types.ErrUnauthorized.Wrapf("only %s may create pools, got %s", k.owner, creator)
	}

	if existing, found := k.getPoolIDByPair(ctx, pair); found {
		return nil, types.ErrDuplicatePool.Wrapf("pool %d already trades %s", existing, pair)
	}

	var pool types.Pool
	var index uint64
	err = k.executeAtomic(ctx, func(cacheCtx sdk.Context) error {
		pool = types.NewPool(k.GetNextPoolID(cacheCtx), pair, creator)
		if err := k.setPool(cacheCtx, &pool); err != nil {
			return fmt.Errorf("CreatePool: save pool: %w", err)
		}
		k.setPoolByPair(cacheCtx, pair, pool.Id)
		k.setPoolByAddress(cacheCtx, &pool)
		index = k.appendPoolList(cacheCtx, pool.Id)

		cacheCtx.EventManager().EmitEvents(sdk.Events{
			sdk.NewEvent(
				types.EventTypePoolCreated,
				sdk.NewAttribute(types.AttributeKeyPoolID, fmt.Sprintf("%d", pool.Id)),
				sdk.NewAttribute(types.AttributeKeyPoolAddress, pool.GetAddress().String()),
				sdk.NewAttribute(types.AttributeKeyAssetA, pair.AssetA),
				sdk.NewAttribute(types.AttributeKeyAssetB, pair.AssetB),
				sdk.NewAttribute(types.AttributeKeyCreator, creator.String()),
			),
			sdk.NewEvent(
				sdk.EventTypeMessage,
				sdk.NewAttribute(sdk.AttributeKeyModule, types.ModuleName),
				sdk.NewAttribute(sdk.AttributeKeySender, creator.String()),
			),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	k.metrics.recordPoolCreated(k.PoolCount(ctx))
	k.Logger(ctx).Info("pool created", "pool_id", pool.Id, "pair", pair.String(), "index", index)
	return &pool, nil
}

// GetPool looks up the pool of an unordered pair. The second return value
// is false when no pool exists for the pair, including when either id is not
// a valid asset.
func (k Keeper) GetPool(ctx context.Context, assetX, assetY string) (*types.Pool, bool) {
	if types.ValidateAsset(assetX) != nil || types.ValidateAsset(assetY) != nil {
		return nil, false
	}
	poolID, found := k.getPoolIDByPair(ctx, types.CanonicalPair(assetX, assetY))
	if !found {
		return nil, false
	}
	pool, err := k.GetPoolByID(ctx, poolID)
	if err != nil {
		k.Logger(ctx).Error("pair index points at unreadable pool", "pool_id", poolID, "error", err)
		return nil, false
	}
	return pool, true
}

// ListPools returns the pool at position index of the creation-ordered pool
// list.
func (k Keeper) ListPools(ctx context.Context, index uint64) (*types.Pool, error) {
	count := k.PoolCount(ctx)
	if index >= count {
		return nil, types.ErrIndexOutOfRange.Wrapf("index %d, %d pools", index, count)
	}
	bz := k.getStore(ctx).Get(PoolListKey(index))
	if bz == nil {
		return nil, types.ErrInvalidPoolState.Wrapf("pool list entry %d missing", index)
	}
	return k.GetPoolByID(ctx, sdk.BigEndianToUint64(bz))
}
