package keeper

import (
	"context"
	"encoding/json"
	"fmt"

	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"

	"github.com/paw-chain/pawswap/x/amm/types"
)

// GetNextPoolID returns the next pool ID and increments the counter
func (k Keeper) GetNextPoolID(ctx context.Context) uint64 {
	store := k.getStore(ctx)
	bz := store.Get(NextPoolIDKey)

	poolID := uint64(1)
	if bz != nil {
		poolID = sdk.BigEndianToUint64(bz)
	}
	store.Set(NextPoolIDKey, sdk.Uint64ToBigEndian(poolID+1))
	return poolID
}

// PeekNextPoolID returns the ID the next pool will get without consuming it
func (k Keeper) PeekNextPoolID(ctx context.Context) uint64 {
	bz := k.getStore(ctx).Get(NextPoolIDKey)
	if bz == nil {
		return 1
	}
	return sdk.BigEndianToUint64(bz)
}

// SetNextPoolID sets the next pool ID counter
func (k Keeper) SetNextPoolID(ctx context.Context, poolID uint64) {
	k.getStore(ctx).Set(NextPoolIDKey, sdk.Uint64ToBigEndian(poolID))
}

// GetPoolByID retrieves a pool by its unique numeric ID.
// Returns ErrPoolNotFound if the pool does not exist.
func (k Keeper) GetPoolByID(ctx context.Context, poolID uint64) (*types.Pool, error) {
	bz := k.getStore(ctx).Get(PoolKey(poolID))
	if bz == nil {
		return nil, types.ErrPoolNotFound.Wrapf("pool %d not found", poolID)
	}

	var pool types.Pool
	if err := json.Unmarshal(bz, &pool); err != nil {
		return nil, fmt.Errorf("GetPoolByID: unmarshal pool %d: %w", poolID, err)
	}
	return &pool, nil
}

// setPool saves a pool to the store
func (k Keeper) setPool(ctx context.Context, pool *types.Pool) error {
	if err := pool.Validate(); err != nil {
		return err
	}
	bz, err := json.Marshal(pool)
	if err != nil {
		return fmt.Errorf("setPool: marshal pool %d: %w", pool.Id, err)
	}
	k.getStore(ctx).Set(PoolKey(pool.Id), bz)
	return nil
}

// getPoolIDByPair resolves a canonical pair through the pair index
func (k Keeper) getPoolIDByPair(ctx context.Context, pair types.Pair) (uint64, bool) {
	bz := k.getStore(ctx).Get(PoolByPairKey(pair))
	if bz == nil {
		return 0, false
	}
	return sdk.BigEndianToUint64(bz), true
}

// setPoolByPair indexes a pool by its canonical pair
func (k Keeper) setPoolByPair(ctx context.Context, pair types.Pair, poolID uint64) {
	k.getStore(ctx).Set(PoolByPairKey(pair), sdk.Uint64ToBigEndian(poolID))
}

// setPoolByAddress indexes a pool by its custody address
func (k Keeper) setPoolByAddress(ctx context.Context, pool *types.Pool) {
	k.getStore(ctx).Set(PoolByAddressKey(pool.GetAddress()), sdk.Uint64ToBigEndian(pool.Id))
}

// IsPoolAddress reports whether addr is the custody account of any pool.
func (k Keeper) IsPoolAddress(ctx context.Context, addr sdk.AccAddress) bool {
	if len(addr) == 0 || len(addr) > address.MaxAddrLen {
		return false
	}
	return k.getStore(ctx).Has(PoolByAddressKey(addr))
}

// rejectPoolAccount fails when addr is a pool custody account. Pools never
// deposit, withdraw or trade on their own behalf.
func (k Keeper) rejectPoolAccount(ctx context.Context, addr sdk.AccAddress) error {
	if k.IsPoolAddress(ctx, addr) {
		return types.ErrInvalidAccount.Wrapf("%s is a pool custody account", addr)
	}
	return nil
}

// PoolCount returns the number of pools ever created.
func (k Keeper) PoolCount(ctx context.Context) uint64 {
	bz := k.getStore(ctx).Get(PoolCountKey)
	if bz == nil {
		return 0
	}
	return sdk.BigEndianToUint64(bz)
}

// appendPoolList records poolID at the end of the creation-ordered list
func (k Keeper) appendPoolList(ctx context.Context, poolID uint64) uint64 {
	store := k.getStore(ctx)
	index := k.PoolCount(ctx)
	store.Set(PoolListKey(index), sdk.Uint64ToBigEndian(poolID))
	store.Set(PoolCountKey, sdk.Uint64ToBigEndian(index+1))
	return index
}

// IteratePools walks the pool list in creation order
func (k Keeper) IteratePools(ctx context.Context, cb func(index uint64, pool types.Pool) (stop bool)) error {
	store := k.getStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, PoolListKeyPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		index := sdk.BigEndianToUint64(iterator.Key()[len(PoolListKeyPrefix):])
		pool, err := k.GetPoolByID(ctx, sdk.BigEndianToUint64(iterator.Value()))
		if err != nil {
			return fmt.Errorf("IteratePools: list entry %d: %w", index, err)
		}
		if cb(index, *pool) {
			break
		}
	}
	return nil
}

// AllPools returns every pool in creation order.
func (k Keeper) AllPools(ctx context.Context) ([]types.Pool, error) {
	pools := make([]types.Pool, 0, k.PoolCount(ctx))
	err := k.IteratePools(ctx, func(_ uint64, pool types.Pool) bool {
		pools = append(pools, pool)
		return false
	})
	return pools, err
}
