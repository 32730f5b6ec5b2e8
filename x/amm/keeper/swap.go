package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/pawswap/x/amm/types"
)

// Swap sells inputAmount of inputAsset to the pool and pays the constant
// product output to trader. The whole input, fee included, joins the input
// reserve. A positive minOutput rejects fills below it with ErrSlippage.
func (k Keeper) Swap(
	ctx context.Context,
	trader sdk.AccAddress,
	poolID uint64,
	inputAsset string,
	inputAmount, minOutput math.Int,
) (math.Int, error) {
	if inputAmount.IsNil() || !inputAmount.IsPositive() {
		return math.ZeroInt(), types.ErrZeroAmount.Wrap("swap input must be positive")
	}
	if minOutput.IsNil() {
		minOutput = math.ZeroInt()
	}
	if err := k.rejectPoolAccount(ctx, trader); err != nil {
		return math.ZeroInt(), err
	}

	var (
		output   math.Int
		fee      math.Int
		assetOut string
		updated  types.Pool
	)
	// failures are labelled only for existing pools, and only with assets
	// the pool trades
	failLabel := ""
	err := k.WithPoolLock(ctx, poolID, func(cacheCtx sdk.Context) error {
		pool, err := k.GetPoolByID(cacheCtx, poolID)
		if err != nil {
			return err
		}
		before := *pool
		failLabel = swapAssetUnknown

		params, err := k.GetParams(cacheCtx)
		if err != nil {
			return fmt.Errorf("Swap: get params: %w", err)
		}

		var reserveIn, reserveOut math.Int
		reserveIn, reserveOut, assetOut, err = pool.Sides(inputAsset)
		if err != nil {
			return err
		}
		failLabel = inputAsset

		output, fee, err = types.SwapOutput(inputAmount, reserveIn, reserveOut, params.FeeBasisPoints)
		if err != nil {
			return err
		}
		if output.IsZero() {
			return types.ErrZeroAmount.Wrapf("input %s%s buys nothing from pool %d", inputAmount, inputAsset, poolID)
		}
		if output.LT(minOutput) {
			return types.ErrSlippage.Wrapf("output %s below minimum %s", output, minOutput)
		}

		newIn, err := reserveIn.SafeAdd(inputAmount)
		if err != nil {
			return types.ErrOverflow.Wrapf("reserve %s: %v", inputAsset, err)
		}
		newOut := reserveOut.Sub(output)
		if inputAsset == pool.AssetA {
			pool.ReserveA, pool.ReserveB = newIn, newOut
		} else {
			pool.ReserveA, pool.ReserveB = newOut, newIn
		}
		if err := validateSwapInvariant(&before, pool); err != nil {
			return err
		}
		if err := k.setPool(cacheCtx, pool); err != nil {
			return err
		}

		poolAddr := pool.GetAddress()
		if err := k.assetKeeper.TransferFrom(cacheCtx, inputAsset, poolAddr, trader, poolAddr, inputAmount); err != nil {
			return fmt.Errorf("Swap: pull %s: %w", inputAsset, err)
		}
		if err := k.assetKeeper.Transfer(cacheCtx, assetOut, poolAddr, trader, output); err != nil {
			return fmt.Errorf("Swap: pay %s: %w", assetOut, err)
		}

		cacheCtx.EventManager().EmitEvents(sdk.Events{
			sdk.NewEvent(
				types.EventTypeSwap,
				sdk.NewAttribute(types.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
				sdk.NewAttribute(types.AttributeKeyTrader, trader.String()),
				sdk.NewAttribute(types.AttributeKeyAssetIn, inputAsset),
				sdk.NewAttribute(types.AttributeKeyAssetOut, assetOut),
				sdk.NewAttribute(types.AttributeKeyAmountIn, inputAmount.String()),
				sdk.NewAttribute(types.AttributeKeyAmountOut, output.String()),
				sdk.NewAttribute(types.AttributeKeyFee, fee.String()),
			),
			sdk.NewEvent(
				sdk.EventTypeMessage,
				sdk.NewAttribute(sdk.AttributeKeyModule, types.ModuleName),
				sdk.NewAttribute(sdk.AttributeKeySender, trader.String()),
			),
		})
		updated = *pool
		return nil
	})
	if err != nil {
		if failLabel != "" {
			k.metrics.recordSwapFailure(poolID, failLabel)
		}
		return math.ZeroInt(), err
	}

	k.metrics.recordSwap(poolID, inputAsset, inputAmount, fee)
	k.metrics.recordPoolState(&updated)
	k.Logger(ctx).Debug("swap executed",
		"pool_id", poolID,
		"trader", trader.String(),
		"asset_in", inputAsset,
		"amount_in", inputAmount.String(),
		"asset_out", assetOut,
		"amount_out", output.String(),
	)
	return output, nil
}

// QuoteSwap returns what Swap would pay for the same input right now,
// without touching state.
func (k Keeper) QuoteSwap(ctx context.Context, poolID uint64, inputAsset string, inputAmount math.Int) (math.Int, error) {
	if inputAmount.IsNil() || !inputAmount.IsPositive() {
		return math.ZeroInt(), types.ErrZeroAmount.Wrap("swap input must be positive")
	}
	pool, err := k.GetPoolByID(ctx, poolID)
	if err != nil {
		return math.ZeroInt(), err
	}
	params, err := k.GetParams(ctx)
	if err != nil {
		return math.ZeroInt(), fmt.Errorf("QuoteSwap: get params: %w", err)
	}
	reserveIn, reserveOut, _, err := pool.Sides(inputAsset)
	if err != nil {
		return math.ZeroInt(), err
	}
	output, _, err := types.SwapOutput(inputAmount, reserveIn, reserveOut, params.FeeBasisPoints)
	return output, err
}

// LegacyDec carries 18 fractional digits inside a 256 bit mantissa budget.
const spotPriceMaxBitLen = 192

// SpotPrice returns reserveOut/reserveIn for selling inputAsset. It is for
// display only.
func (k Keeper) SpotPrice(ctx context.Context, poolID uint64, inputAsset string) (math.LegacyDec, error) {
	pool, err := k.GetPoolByID(ctx, poolID)
	if err != nil {
		return math.LegacyZeroDec(), err
	}
	reserveIn, reserveOut, _, err := pool.Sides(inputAsset)
	if err != nil {
		return math.LegacyZeroDec(), err
	}
	if !reserveIn.IsPositive() {
		return math.LegacyZeroDec(), types.ErrEmptyPool.Wrapf("pool %d has no liquidity", poolID)
	}
	if reserveOut.BigInt().BitLen() > spotPriceMaxBitLen {
		return math.LegacyZeroDec(), types.ErrOverflow.Wrapf("reserve %s too large for a decimal price", reserveOut)
	}
	return math.LegacyNewDecFromInt(reserveOut).QuoInt(reserveIn), nil
}
