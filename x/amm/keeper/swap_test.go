package keeper_test

import (
	"testing"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	keepertest "github.com/paw-chain/pawswap/testutil/keeper"
	"github.com/paw-chain/pawswap/x/amm/types"
	assettypes "github.com/paw-chain/pawswap/x/asset/types"
)

func TestSwap_AToB(t *testing.T) {
	f := keepertest.AMMKeeper(t)
	pool, _ := f.SeedPool(t, alice, denomD, denomW, 10000, 100)
	f.FundAndApprove(t, denomD, bob, pool.Id, 1000)
	f.Ctx = freshEvents(f.Ctx)

	out, err := f.AMM.Swap(f.Ctx, bob, pool.Id, denomD, math.NewInt(1000), math.ZeroInt())
	require.NoError(t, err)
	requireInt(t, 9, out)

	after, err := f.AMM.GetPoolByID(f.Ctx, pool.Id)
	require.NoError(t, err)
	requireInt(t, 11000, after.ReserveA)
	requireInt(t, 91, after.ReserveB)
	require.True(t, types.ProductNonDecreasing(pool.ReserveA, pool.ReserveB, after.ReserveA, after.ReserveB))

	requireInt(t, 0, f.Asset.BalanceOf(f.Ctx, denomD, bob))
	requireInt(t, 9, f.Asset.BalanceOf(f.Ctx, denomW, bob))
	requireInt(t, 11000, f.Asset.BalanceOf(f.Ctx, denomD, pool.GetAddress()))
	requireInt(t, 91, f.Asset.BalanceOf(f.Ctx, denomW, pool.GetAddress()))

	requireEvent(t, f.Ctx.EventManager().Events(), types.EventTypeSwap, map[string]string{
		types.AttributeKeyPoolID:    "1",
		types.AttributeKeyTrader:    bob.String(),
		types.AttributeKeyAssetIn:   denomD,
		types.AttributeKeyAssetOut:  denomW,
		types.AttributeKeyAmountIn:  "1000",
		types.AttributeKeyAmountOut: "9",
		types.AttributeKeyFee:       "3",
	})
}

func TestSwap_BToA(t *testing.T) {
	f := keepertest.AMMKeeper(t)
	pool, _ := f.SeedPool(t, alice, denomD, denomW, 10000, 100)
	f.FundAndApprove(t, denomW, bob, pool.Id, 10)

	out, err := f.AMM.Swap(f.Ctx, bob, pool.Id, denomW, math.NewInt(10), math.ZeroInt())
	require.NoError(t, err)
	requireInt(t, 825, out)

	reserveA, reserveB, err := f.AMM.GetReserves(f.Ctx, pool.Id)
	require.NoError(t, err)
	requireInt(t, 9175, reserveA)
	requireInt(t, 110, reserveB)
	requireInt(t, 825, f.Asset.BalanceOf(f.Ctx, denomD, bob))
}

// A second actor swaps into a freshly seeded pool and spends all of its D.
func TestSwap_DepositThenSwapScenario(t *testing.T) {
	f := keepertest.AMMKeeper(t)
	pool, minted := f.SeedPool(t, alice, denomD, denomW, 10000, 100)
	requireInt(t, 10000, pool.ReserveA)
	requireInt(t, 100, pool.ReserveB)
	requireInt(t, 1000, minted)

	f.FundAndApprove(t, denomD, carol, pool.Id, 1000)
	out, err := f.AMM.Swap(f.Ctx, carol, pool.Id, denomD, math.NewInt(1000), math.ZeroInt())
	require.NoError(t, err)
	require.True(t, out.IsPositive())
	require.True(t, out.LT(math.NewInt(100)))
	requireInt(t, 0, f.Asset.BalanceOf(f.Ctx, denomD, carol))
	require.Equal(t, out.String(), f.Asset.BalanceOf(f.Ctx, denomW, carol).String())
}

func TestSwap_Errors(t *testing.T) {
	f := keepertest.AMMKeeper(t)
	seeded, _ := f.SeedPool(t, alice, denomD, denomW, 10000, 100)
	empty := f.CreatePool(t, "uatom", denomD)
	f.FundAndApprove(t, denomD, bob, seeded.Id, 1000)

	tests := []struct {
		name   string
		poolID uint64
		asset  string
		amount math.Int
		expErr error
	}{
		{"unknown asset", seeded.Id, "uatom", math.NewInt(100), types.ErrUnknownAsset},
		{"zero input", seeded.Id, denomD, math.ZeroInt(), types.ErrZeroAmount},
		{"negative input", seeded.Id, denomD, math.NewInt(-10), types.ErrZeroAmount},
		{"empty pool", empty.Id, denomD, math.NewInt(100), types.ErrEmptyPool},
		{"unknown pool", 9, denomD, math.NewInt(100), types.ErrPoolNotFound},
		{"output rounds to zero", seeded.Id, denomD, math.NewInt(100), types.ErrZeroAmount},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.AMM.Swap(f.Ctx, bob, tc.poolID, tc.asset, tc.amount, math.ZeroInt())
			require.ErrorIs(t, err, tc.expErr)
		})
	}

	after, err := f.AMM.GetPoolByID(f.Ctx, seeded.Id)
	require.NoError(t, err)
	require.Equal(t, seeded.String(), after.String())
	requireInt(t, 1000, f.Asset.BalanceOf(f.Ctx, denomD, bob))
}

func TestSwap_MinOutput(t *testing.T) {
	f := keepertest.AMMKeeper(t)
	pool, _ := f.SeedPool(t, alice, denomD, denomW, 10000, 100)
	f.FundAndApprove(t, denomD, bob, pool.Id, 1000)
	f.Ctx = freshEvents(f.Ctx)

	_, err := f.AMM.Swap(f.Ctx, bob, pool.Id, denomD, math.NewInt(1000), math.NewInt(10))
	require.ErrorIs(t, err, types.ErrSlippage)
	requireNoEvent(t, f.Ctx.EventManager().Events(), types.EventTypeSwap)
	requireInt(t, 1000, f.Asset.BalanceOf(f.Ctx, denomD, bob))

	out, err := f.AMM.Swap(f.Ctx, bob, pool.Id, denomD, math.NewInt(1000), math.NewInt(9))
	require.NoError(t, err)
	requireInt(t, 9, out)
}

func TestSwap_WithoutAllowance(t *testing.T) {
	f := keepertest.AMMKeeper(t)
	pool, _ := f.SeedPool(t, alice, denomD, denomW, 10000, 100)
	f.Fund(t, denomD, bob, 1000)

	_, err := f.AMM.Swap(f.Ctx, bob, pool.Id, denomD, math.NewInt(1000), math.ZeroInt())
	require.ErrorIs(t, err, assettypes.ErrInsufficientAllowance)

	after, err := f.AMM.GetPoolByID(f.Ctx, pool.Id)
	require.NoError(t, err)
	require.Equal(t, pool.String(), after.String())
}

func TestSwap_FeeParam(t *testing.T) {
	f := keepertest.AMMKeeper(t)
	require.NoError(t, f.AMM.SetParams(f.Ctx, types.NewParams(0, false)))
	pool, _ := f.SeedPool(t, alice, denomD, denomW, 1_000_000, 1_000_000)
	f.FundAndApprove(t, denomD, bob, pool.Id, 1000)

	// 1000 * 1e6 / 1_001_000
	out, err := f.AMM.Swap(f.Ctx, bob, pool.Id, denomD, math.NewInt(1000), math.ZeroInt())
	require.NoError(t, err)
	requireInt(t, 999, out)
}

func TestQuoteSwap_MatchesSwap(t *testing.T) {
	f := keepertest.AMMKeeper(t)
	pool, _ := f.SeedPool(t, alice, denomD, denomW, 10000, 100)
	f.FundAndApprove(t, denomW, bob, pool.Id, 10)

	quote, err := f.AMM.QuoteSwap(f.Ctx, pool.Id, denomW, math.NewInt(10))
	require.NoError(t, err)

	reserveA, reserveB, err := f.AMM.GetReserves(f.Ctx, pool.Id)
	require.NoError(t, err)
	requireInt(t, 10000, reserveA)
	requireInt(t, 100, reserveB)

	out, err := f.AMM.Swap(f.Ctx, bob, pool.Id, denomW, math.NewInt(10), math.ZeroInt())
	require.NoError(t, err)
	require.Equal(t, quote.String(), out.String())

	_, err = f.AMM.QuoteSwap(f.Ctx, pool.Id, "uatom", math.NewInt(10))
	require.ErrorIs(t, err, types.ErrUnknownAsset)

	for _, amount := range []math.Int{{}, math.ZeroInt(), math.NewInt(-10)} {
		_, err = f.AMM.QuoteSwap(f.Ctx, pool.Id, denomW, amount)
		require.ErrorIs(t, err, types.ErrZeroAmount)
	}
}

func TestSwap_PoolAccountRejected(t *testing.T) {
	f := keepertest.AMMKeeper(t)
	pool, _ := f.SeedPool(t, bob, denomD, denomW, 10000, 100)
	other := f.CreatePool(t, "uatom", denomD)
	f.FundAndApprove(t, denomD, pool.GetAddress(), pool.Id, 1000)
	f.FundAndApprove(t, denomD, other.GetAddress(), pool.Id, 1000)

	for _, trader := range []sdk.AccAddress{pool.GetAddress(), other.GetAddress()} {
		_, err := f.AMM.Swap(f.Ctx, trader, pool.Id, denomD, math.NewInt(1000), math.ZeroInt())
		require.ErrorIs(t, err, types.ErrInvalidAccount)
	}

	after, err := f.AMM.GetPoolByID(f.Ctx, pool.Id)
	require.NoError(t, err)
	require.Equal(t, pool.String(), after.String())
	requireInt(t, 11000, f.Asset.BalanceOf(f.Ctx, denomD, pool.GetAddress()))
}

func TestSpotPrice(t *testing.T) {
	f := keepertest.AMMKeeper(t)
	pool, _ := f.SeedPool(t, alice, denomD, denomW, 10000, 100)

	price, err := f.AMM.SpotPrice(f.Ctx, pool.Id, denomD)
	require.NoError(t, err)
	require.True(t, math.LegacyMustNewDecFromStr("0.01").Equal(price), price.String())

	price, err = f.AMM.SpotPrice(f.Ctx, pool.Id, denomW)
	require.NoError(t, err)
	require.True(t, math.LegacyNewDec(100).Equal(price), price.String())

	empty := f.CreatePool(t, "uatom", denomD)
	_, err = f.AMM.SpotPrice(f.Ctx, empty.Id, denomD)
	require.ErrorIs(t, err, types.ErrEmptyPool)
}

// Many small swaps in both directions never let the product fall below its
// starting value.
func TestSwap_TinyIncrementsNeverLowerProduct(t *testing.T) {
	f := keepertest.AMMKeeper(t)
	pool, _ := f.SeedPool(t, alice, denomD, denomW, 1_000_000, 1_000_000)
	f.FundAndApprove(t, denomD, bob, pool.Id, 200*200)
	f.FundAndApprove(t, denomW, bob, pool.Id, 200*200)

	start := types.Product(pool.ReserveA, pool.ReserveB)
	prev := start
	for i := 0; i < 200; i++ {
		asset := denomD
		if i%2 == 1 {
			asset = denomW
		}
		_, err := f.AMM.Swap(f.Ctx, bob, pool.Id, asset, math.NewInt(200), math.ZeroInt())
		require.NoError(t, err)

		reserveA, reserveB, err := f.AMM.GetReserves(f.Ctx, pool.Id)
		require.NoError(t, err)
		k := types.Product(reserveA, reserveB)
		require.True(t, k.Cmp(prev) >= 0, "step %d: k fell from %s to %s", i, prev, k)
		prev = k
	}
	require.True(t, prev.Cmp(start) > 0)
}
