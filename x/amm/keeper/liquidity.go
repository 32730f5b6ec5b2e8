package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/pawswap/x/amm/types"
)

// GetShares returns owner's entry in a pool's share ledger, zero if absent.
func (k Keeper) GetShares(ctx context.Context, poolID uint64, owner sdk.AccAddress) (math.Int, error) {
	bz := k.getStore(ctx).Get(SharesKey(poolID, owner))
	if bz == nil {
		return math.ZeroInt(), nil
	}

	var shares math.Int
	if err := shares.Unmarshal(bz); err != nil {
		return math.ZeroInt(), fmt.Errorf("GetShares: unmarshal pool %d: %w", poolID, err)
	}
	return shares, nil
}

// setShares writes a ledger entry. Zero entries are removed.
func (k Keeper) setShares(ctx context.Context, poolID uint64, owner sdk.AccAddress, shares math.Int) error {
	store := k.getStore(ctx)
	if shares.IsZero() {
		store.Delete(SharesKey(poolID, owner))
		return nil
	}

	bz, err := shares.Marshal()
	if err != nil {
		return fmt.Errorf("setShares: marshal pool %d: %w", poolID, err)
	}
	store.Set(SharesKey(poolID, owner), bz)
	return nil
}

// IterateShares walks a pool's share ledger in owner byte order.
func (k Keeper) IterateShares(ctx context.Context, poolID uint64, cb func(owner sdk.AccAddress, shares math.Int) (stop bool)) error {
	prefix := SharesKeyByPoolPrefix(poolID)
	iterator := storetypes.KVStorePrefixIterator(k.getStore(ctx), prefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		owner := sdk.AccAddress(iterator.Key()[len(prefix):])
		var shares math.Int
		if err := shares.Unmarshal(iterator.Value()); err != nil {
			return fmt.Errorf("IterateShares: pool %d owner %s: %w", poolID, owner, err)
		}
		if cb(owner, shares) {
			break
		}
	}
	return nil
}

// GetReserves returns the current reserves of a pool in canonical order.
func (k Keeper) GetReserves(ctx context.Context, poolID uint64) (reserveA, reserveB math.Int, err error) {
	pool, err := k.GetPoolByID(ctx, poolID)
	if err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	return pool.ReserveA, pool.ReserveB, nil
}

// AddLiquidity deposits exactly amountA and amountB from provider and
// credits the minted shares. The first deposit into an empty pool sets its
// price and mints floor(sqrt(amountA*amountB)); later deposits mint in
// proportion to the limiting side, and any excess of the other asset stays
// in the pool for existing holders.
func (k Keeper) AddLiquidity(ctx context.Context, provider sdk.AccAddress, poolID uint64, amountA, amountB math.Int) (math.Int, error) {
	if amountA.IsNil() || amountB.IsNil() || !amountA.IsPositive() || !amountB.IsPositive() {
		return math.ZeroInt(), types.ErrZeroAmount.Wrap("deposit amounts must be positive")
	}
	if err := k.rejectPoolAccount(ctx, provider); err != nil {
		return math.ZeroInt(), err
	}

	minted := math.ZeroInt()
	var updated types.Pool
	err := k.WithPoolLock(ctx, poolID, func(cacheCtx sdk.Context) error {
		pool, err := k.GetPoolByID(cacheCtx, poolID)
		if err != nil {
			return err
		}

		if pool.IsSeeded() {
			minted, err = types.ProportionalShares(amountA, amountB, pool.ReserveA, pool.ReserveB, pool.TotalShares)
		} else {
			minted, err = types.InitialShares(amountA, amountB)
		}
		if err != nil {
			return err
		}
		if minted.IsZero() {
			return types.ErrDustDeposit.Wrapf("deposit %s/%s mints no shares in pool %d", amountA, amountB, poolID)
		}

		held, err := k.GetShares(cacheCtx, poolID, provider)
		if err != nil {
			return err
		}

		if pool.ReserveA, err = pool.ReserveA.SafeAdd(amountA); err != nil {
			return types.ErrOverflow.Wrapf("reserve %s: %v", pool.AssetA, err)
		}
		if pool.ReserveB, err = pool.ReserveB.SafeAdd(amountB); err != nil {
			return types.ErrOverflow.Wrapf("reserve %s: %v", pool.AssetB, err)
		}
		if pool.TotalShares, err = pool.TotalShares.SafeAdd(minted); err != nil {
			return types.ErrOverflow.Wrapf("total shares: %v", err)
		}
		if err := k.setPool(cacheCtx, pool); err != nil {
			return err
		}
		if err := k.setShares(cacheCtx, poolID, provider, held.Add(minted)); err != nil {
			return err
		}

		poolAddr := pool.GetAddress()
		if err := k.assetKeeper.TransferFrom(cacheCtx, pool.AssetA, poolAddr, provider, poolAddr, amountA); err != nil {
			return fmt.Errorf("AddLiquidity: pull %s: %w", pool.AssetA, err)
		}
		if err := k.assetKeeper.TransferFrom(cacheCtx, pool.AssetB, poolAddr, provider, poolAddr, amountB); err != nil {
			return fmt.Errorf("AddLiquidity: pull %s: %w", pool.AssetB, err)
		}

		cacheCtx.EventManager().EmitEvents(sdk.Events{
			sdk.NewEvent(
				types.EventTypeAddLiquidity,
				sdk.NewAttribute(types.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
				sdk.NewAttribute(types.AttributeKeyProvider, provider.String()),
				sdk.NewAttribute(types.AttributeKeyAmountA, amountA.String()),
				sdk.NewAttribute(types.AttributeKeyAmountB, amountB.String()),
				sdk.NewAttribute(types.AttributeKeyShares, minted.String()),
			),
			sdk.NewEvent(
				sdk.EventTypeMessage,
				sdk.NewAttribute(sdk.AttributeKeyModule, types.ModuleName),
				sdk.NewAttribute(sdk.AttributeKeySender, provider.String()),
			),
		})
		updated = *pool
		return nil
	})
	if err != nil {
		return math.ZeroInt(), err
	}

	k.metrics.recordLiquidityAdded(&updated, amountA, amountB)
	k.Logger(ctx).Debug("liquidity added", "pool_id", poolID, "provider", provider.String(), "shares", minted.String())
	return minted, nil
}

// RemoveLiquidity burns shares held by provider and pays out the matching
// fraction of both reserves. Burning the last share empties the pool, which
// then accepts a fresh initial deposit.
func (k Keeper) RemoveLiquidity(ctx context.Context, provider sdk.AccAddress, poolID uint64, shares math.Int) (amountA, amountB math.Int, err error) {
	if shares.IsNil() || !shares.IsPositive() {
		return math.ZeroInt(), math.ZeroInt(), types.ErrZeroAmount.Wrap("shares to burn must be positive")
	}
	if err := k.rejectPoolAccount(ctx, provider); err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}

	amountA, amountB = math.ZeroInt(), math.ZeroInt()
	var updated types.Pool
	err = k.WithPoolLock(ctx, poolID, func(cacheCtx sdk.Context) error {
		pool, err := k.GetPoolByID(cacheCtx, poolID)
		if err != nil {
			return err
		}

		held, err := k.GetShares(cacheCtx, poolID, provider)
		if err != nil {
			return err
		}
		if shares.GT(held) {
			return types.ErrInsufficientBalance.Wrapf("burning %s shares of pool %d, own %s", shares, poolID, held)
		}

		amountA, amountB, err = types.WithdrawAmounts(shares, pool.ReserveA, pool.ReserveB, pool.TotalShares)
		if err != nil {
			return err
		}

		pool.ReserveA = pool.ReserveA.Sub(amountA)
		pool.ReserveB = pool.ReserveB.Sub(amountB)
		pool.TotalShares = pool.TotalShares.Sub(shares)
		if err := k.setPool(cacheCtx, pool); err != nil {
			return err
		}
		if err := k.setShares(cacheCtx, poolID, provider, held.Sub(shares)); err != nil {
			return err
		}

		poolAddr := pool.GetAddress()
		if amountA.IsPositive() {
			if err := k.assetKeeper.Transfer(cacheCtx, pool.AssetA, poolAddr, provider, amountA); err != nil {
				return fmt.Errorf("RemoveLiquidity: pay %s: %w", pool.AssetA, err)
			}
		}
		if amountB.IsPositive() {
			if err := k.assetKeeper.Transfer(cacheCtx, pool.AssetB, poolAddr, provider, amountB); err != nil {
				return fmt.Errorf("RemoveLiquidity: pay %s: %w", pool.AssetB, err)
			}
		}

		cacheCtx.EventManager().EmitEvents(sdk.Events{
			sdk.NewEvent(
				types.EventTypeRemoveLiquidity,
				sdk.NewAttribute(types.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
				sdk.NewAttribute(types.AttributeKeyProvider, provider.String()),
				sdk.NewAttribute(types.AttributeKeyAmountA, amountA.String()),
				sdk.NewAttribute(types.AttributeKeyAmountB, amountB.String()),
				sdk.NewAttribute(types.AttributeKeyShares, shares.String()),
			),
			sdk.NewEvent(
				sdk.EventTypeMessage,
				sdk.NewAttribute(sdk.AttributeKeyModule, types.ModuleName),
				sdk.NewAttribute(sdk.AttributeKeySender, provider.String()),
			),
		})
		updated = *pool
		return nil
	})
	if err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}

	k.metrics.recordLiquidityRemoved(&updated, amountA, amountB)
	k.Logger(ctx).Debug("liquidity removed", "pool_id", poolID, "provider", provider.String(), "shares", shares.String())
	return amountA, amountB, nil
}
