package keeper

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/pawswap/x/amm/types"
)

var lockMarker = []byte{0x01}

// executeAtomic runs fn against a cached branch of ctx. The branch, including
// its events, is written back only when fn returns nil, so a failed
// operation leaves no trace.
func (k Keeper) executeAtomic(ctx context.Context, fn func(cacheCtx sdk.Context) error) error {
	cacheCtx, writeFn := sdk.UnwrapSDKContext(ctx).CacheContext()
	if err := fn(cacheCtx); err != nil {
		return err
	}
	writeFn()
	return nil
}

// WithPoolLock executes fn atomically while holding the pool's reentrancy
// lock. The lock lives in the store branch handed to fn, so any call that
// re-enters the keeper through the asset keeper on that branch observes it
// and is rejected with ErrReentrancy.
func (k Keeper) WithPoolLock(ctx context.Context, poolID uint64, fn func(cacheCtx sdk.Context) error) error {
	lockKey := ReentrancyLockKey(poolLockName(poolID))
	if k.getStore(ctx).Has(lockKey) {
		return types.ErrReentrancy.Wrapf("pool %d is locked by an operation in progress", poolID)
	}

	return k.executeAtomic(ctx, func(cacheCtx sdk.Context) error {
		store := k.getStore(cacheCtx)
		store.Set(lockKey, lockMarker)
		if err := fn(cacheCtx); err != nil {
			return err
		}
		store.Delete(lockKey)
		return nil
	})
}

// IsPoolLocked reports whether an operation on poolID is in progress on ctx.
func (k Keeper) IsPoolLocked(ctx context.Context, poolID uint64) bool {
	return k.getStore(ctx).Has(ReentrancyLockKey(poolLockName(poolID)))
}

// validateSwapInvariant checks that a swap did not shrink reserveA*reserveB.
func validateSwapInvariant(before, after *types.Pool) error {
	if !types.ProductNonDecreasing(before.ReserveA, before.ReserveB, after.ReserveA, after.ReserveB) {
		return types.ErrInvariantViolation.Wrapf(
			"pool %d: k fell from %s to %s",
			after.Id,
			types.Product(before.ReserveA, before.ReserveB),
			types.Product(after.ReserveA, after.ReserveB),
		)
	}
	return nil
}
