package keeper_test

import (
	"testing"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	keepertest "github.com/paw-chain/pawswap/testutil/keeper"
	"github.com/paw-chain/pawswap/x/amm/keeper"
	"github.com/paw-chain/pawswap/x/amm/types"
	assettypes "github.com/paw-chain/pawswap/x/asset/types"
)

func TestAddLiquidity_InitialDeposit(t *testing.T) {
	f := keepertest.AMMKeeper(t)
	pool := f.CreatePool(t, denomD, denomW)
	f.FundAndApprove(t, denomD, alice, pool.Id, 10000)
	f.FundAndApprove(t, denomW, alice, pool.Id, 100)
	f.Ctx = freshEvents(f.Ctx)

	minted, err := f.AMM.AddLiquidity(f.Ctx, alice, pool.Id, math.NewInt(10000), math.NewInt(100))
	require.NoError(t, err)
	requireInt(t, 1000, minted)

	reserveA, reserveB, err := f.AMM.GetReserves(f.Ctx, pool.Id)
	require.NoError(t, err)
	requireInt(t, 10000, reserveA)
	requireInt(t, 100, reserveB)

	shares, err := f.AMM.GetShares(f.Ctx, pool.Id, alice)
	require.NoError(t, err)
	requireInt(t, 1000, shares)

	requireInt(t, 0, f.Asset.BalanceOf(f.Ctx, denomD, alice))
	requireInt(t, 0, f.Asset.BalanceOf(f.Ctx, denomW, alice))
	requireInt(t, 10000, f.Asset.BalanceOf(f.Ctx, denomD, pool.GetAddress()))
	requireInt(t, 100, f.Asset.BalanceOf(f.Ctx, denomW, pool.GetAddress()))
	requireInt(t, 0, f.Asset.Allowance(f.Ctx, denomD, alice, pool.GetAddress()))

	requireEvent(t, f.Ctx.EventManager().Events(), types.EventTypeAddLiquidity, map[string]string{
		types.AttributeKeyPoolID:   "1",
		types.AttributeKeyProvider: alice.String(),
		types.AttributeKeyAmountA:  "10000",
		types.AttributeKeyAmountB:  "100",
		types.AttributeKeyShares:   "1000",
	})
}

func TestAddLiquidity_PerfectSquare(t *testing.T) {
	f := keepertest.AMMKeeper(t)

	pool, minted := f.SeedPool(t, alice, denomD, denomW, 400, 900)
	requireInt(t, 600, minted)
	require.Equal(t, 0, types.Product(pool.ReserveA, pool.ReserveB).Cmp(types.Product(minted, minted)))
}

func TestAddLiquidity_Proportional(t *testing.T) {
	f := keepertest.AMMKeeper(t)
	pool, _ := f.SeedPool(t, alice, denomD, denomW, 10000, 100)

	f.FundAndApprove(t, denomD, bob, pool.Id, 1000)
	f.FundAndApprove(t, denomW, bob, pool.Id, 10)

	minted, err := f.AMM.AddLiquidity(f.Ctx, bob, pool.Id, math.NewInt(1000), math.NewInt(10))
	require.NoError(t, err)
	requireInt(t, 100, minted)

	pool, err = f.AMM.GetPoolByID(f.Ctx, pool.Id)
	require.NoError(t, err)
	requireInt(t, 11000, pool.ReserveA)
	requireInt(t, 110, pool.ReserveB)
	requireInt(t, 1100, pool.TotalShares)

	// minted/total == amountA/reserveA == amountB/reserveB before the deposit
	require.Equal(t, 0, types.Product(minted, math.NewInt(10000)).Cmp(types.Product(math.NewInt(1000), math.NewInt(1000))))
}

func TestAddLiquidity_ImbalancedExcessIsDonated(t *testing.T) {
	f := keepertest.AMMKeeper(t)
	pool, _ := f.SeedPool(t, alice, denomD, denomW, 10000, 100)

	f.FundAndApprove(t, denomD, bob, pool.Id, 1000)
	f.FundAndApprove(t, denomW, bob, pool.Id, 20)

	minted, err := f.AMM.AddLiquidity(f.Ctx, bob, pool.Id, math.NewInt(1000), math.NewInt(20))
	require.NoError(t, err)
	requireInt(t, 100, minted)

	pool, err = f.AMM.GetPoolByID(f.Ctx, pool.Id)
	require.NoError(t, err)
	requireInt(t, 11000, pool.ReserveA)
	requireInt(t, 120, pool.ReserveB)
	requireInt(t, 0, f.Asset.BalanceOf(f.Ctx, denomW, bob))

	// alice's 1000 of 1100 shares now claim part of bob's surplus W.
	_, outB, err := types.WithdrawAmounts(math.NewInt(1000), pool.ReserveA, pool.ReserveB, pool.TotalShares)
	require.NoError(t, err)
	requireInt(t, 109, outB)
}

func TestAddLiquidity_DustDepositRejected(t *testing.T) {
	f := keepertest.AMMKeeper(t)
	pool, _ := f.SeedPool(t, alice, denomD, denomW, 10000, 100)

	f.FundAndApprove(t, denomD, bob, pool.Id, 1)
	f.FundAndApprove(t, denomW, bob, pool.Id, 1)

	_, err := f.AMM.AddLiquidity(f.Ctx, bob, pool.Id, math.NewInt(1), math.NewInt(1))
	require.ErrorIs(t, err, types.ErrDustDeposit)

	after, err := f.AMM.GetPoolByID(f.Ctx, pool.Id)
	require.NoError(t, err)
	require.Equal(t, pool.String(), after.String())
	requireInt(t, 1, f.Asset.BalanceOf(f.Ctx, denomD, bob))
	requireInt(t, 1, f.Asset.BalanceOf(f.Ctx, denomW, bob))
}

func TestAddLiquidity_Errors(t *testing.T) {
	f := keepertest.AMMKeeper(t)
	pool := f.CreatePool(t, denomD, denomW)

	tests := []struct {
		name   string
		poolID uint64
		a, b   math.Int
		expErr error
	}{
		{"zero amount a", pool.Id, math.ZeroInt(), math.NewInt(10), types.ErrZeroAmount},
		{"zero amount b", pool.Id, math.NewInt(10), math.ZeroInt(), types.ErrZeroAmount},
		{"negative amount", pool.Id, math.NewInt(-1), math.NewInt(10), types.ErrZeroAmount},
		{"nil amount", pool.Id, math.Int{}, math.NewInt(10), types.ErrZeroAmount},
		{"unknown pool", 99, math.NewInt(10), math.NewInt(10), types.ErrPoolNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.AMM.AddLiquidity(f.Ctx, alice, tc.poolID, tc.a, tc.b)
			require.ErrorIs(t, err, tc.expErr)
		})
	}
}

func TestAddLiquidity_MissingAllowanceRevertsEverything(t *testing.T) {
	f := keepertest.AMMKeeper(t)
	pool := f.CreatePool(t, denomD, denomW)

	f.FundAndApprove(t, denomD, alice, pool.Id, 10000)
	f.Fund(t, denomW, alice, 100) // no approval for W

	_, err := f.AMM.AddLiquidity(f.Ctx, alice, pool.Id, math.NewInt(10000), math.NewInt(100))
	require.ErrorIs(t, err, assettypes.ErrInsufficientAllowance)

	after, err := f.AMM.GetPoolByID(f.Ctx, pool.Id)
	require.NoError(t, err)
	require.False(t, after.IsSeeded())
	shares, err := f.AMM.GetShares(f.Ctx, pool.Id, alice)
	require.NoError(t, err)
	require.True(t, shares.IsZero())

	// the D leg pulled before the failure is rolled back too
	requireInt(t, 10000, f.Asset.BalanceOf(f.Ctx, denomD, alice))
	requireInt(t, 10000, f.Asset.Allowance(f.Ctx, denomD, alice, pool.GetAddress()))
	requireInt(t, 0, f.Asset.BalanceOf(f.Ctx, denomD, pool.GetAddress()))
	require.False(t, f.AMM.IsPoolLocked(f.Ctx, pool.Id))
}

func TestAddLiquidity_InsufficientFunds(t *testing.T) {
	f := keepertest.AMMKeeper(t)
	pool := f.CreatePool(t, denomD, denomW)

	f.FundAndApprove(t, denomD, alice, pool.Id, 50)
	f.FundAndApprove(t, denomW, alice, pool.Id, 100)
	require.NoError(t, f.Asset.Approve(f.Ctx, denomD, alice, pool.GetAddress(), math.NewInt(10000)))

	_, err := f.AMM.AddLiquidity(f.Ctx, alice, pool.Id, math.NewInt(10000), math.NewInt(100))
	require.ErrorIs(t, err, assettypes.ErrInsufficientFunds)
}

func TestRemoveLiquidity_Partial(t *testing.T) {
	f := keepertest.AMMKeeper(t)
	pool, _ := f.SeedPool(t, alice, denomD, denomW, 10000, 100)
	f.Ctx = freshEvents(f.Ctx)

	outA, outB, err := f.AMM.RemoveLiquidity(f.Ctx, alice, pool.Id, math.NewInt(250))
	require.NoError(t, err)
	requireInt(t, 2500, outA)
	requireInt(t, 25, outB)

	pool, err = f.AMM.GetPoolByID(f.Ctx, pool.Id)
	require.NoError(t, err)
	requireInt(t, 7500, pool.ReserveA)
	requireInt(t, 75, pool.ReserveB)
	requireInt(t, 750, pool.TotalShares)

	shares, err := f.AMM.GetShares(f.Ctx, pool.Id, alice)
	require.NoError(t, err)
	requireInt(t, 750, shares)
	requireInt(t, 2500, f.Asset.BalanceOf(f.Ctx, denomD, alice))
	requireInt(t, 25, f.Asset.BalanceOf(f.Ctx, denomW, alice))

	requireEvent(t, f.Ctx.EventManager().Events(), types.EventTypeRemoveLiquidity, map[string]string{
		types.AttributeKeyProvider: alice.String(),
		types.AttributeKeyAmountA:  "2500",
		types.AttributeKeyAmountB:  "25",
		types.AttributeKeyShares:   "250",
	})
}

func TestRemoveLiquidity_FullWithdrawalEmptiesPool(t *testing.T) {
	f := keepertest.AMMKeeper(t)
	pool, minted := f.SeedPool(t, alice, denomD, denomW, 10000, 100)
	requireInt(t, 1000, minted)

	outA, outB, err := f.AMM.RemoveLiquidity(f.Ctx, alice, pool.Id, minted)
	require.NoError(t, err)
	requireInt(t, 10000, outA)
	requireInt(t, 100, outB)

	reserveA, reserveB, err := f.AMM.GetReserves(f.Ctx, pool.Id)
	require.NoError(t, err)
	require.True(t, reserveA.IsZero())
	require.True(t, reserveB.IsZero())

	shares, err := f.AMM.GetShares(f.Ctx, pool.Id, alice)
	require.NoError(t, err)
	require.True(t, shares.IsZero())

	pool, err = f.AMM.GetPoolByID(f.Ctx, pool.Id)
	require.NoError(t, err)
	require.False(t, pool.IsSeeded())

	// an emptied pool takes a fresh initial deposit at a new price
	f.FundAndApprove(t, denomD, bob, pool.Id, 400)
	f.FundAndApprove(t, denomW, bob, pool.Id, 900)
	minted, err = f.AMM.AddLiquidity(f.Ctx, bob, pool.Id, math.NewInt(400), math.NewInt(900))
	require.NoError(t, err)
	requireInt(t, 600, minted)
}

func TestRemoveLiquidity_LastHolderGetsRoundingRemainder(t *testing.T) {
	f := keepertest.AMMKeeper(t)
	pool, aliceShares := f.SeedPool(t, alice, denomD, denomW, 1000, 7)
	requireInt(t, 83, aliceShares)

	f.FundAndApprove(t, denomD, bob, pool.Id, 1000)
	f.FundAndApprove(t, denomW, bob, pool.Id, 7)
	bobShares, err := f.AMM.AddLiquidity(f.Ctx, bob, pool.Id, math.NewInt(1000), math.NewInt(7))
	require.NoError(t, err)
	requireInt(t, 83, bobShares)

	_, _, err = f.AMM.RemoveLiquidity(f.Ctx, alice, pool.Id, math.NewInt(27))
	require.NoError(t, err)
	_, _, err = f.AMM.RemoveLiquidity(f.Ctx, bob, pool.Id, bobShares)
	require.NoError(t, err)
	_, _, err = f.AMM.RemoveLiquidity(f.Ctx, alice, pool.Id, math.NewInt(56))
	require.NoError(t, err)

	pool, err = f.AMM.GetPoolByID(f.Ctx, pool.Id)
	require.NoError(t, err)
	require.False(t, pool.IsSeeded())
	require.True(t, pool.ReserveA.IsZero())
	require.True(t, pool.ReserveB.IsZero())

	total := f.Asset.BalanceOf(f.Ctx, denomD, alice).Add(f.Asset.BalanceOf(f.Ctx, denomD, bob))
	requireInt(t, 2000, total)
	total = f.Asset.BalanceOf(f.Ctx, denomW, alice).Add(f.Asset.BalanceOf(f.Ctx, denomW, bob))
	requireInt(t, 14, total)
}

func TestRemoveLiquidity_Errors(t *testing.T) {
	f := keepertest.AMMKeeper(t)
	pool, _ := f.SeedPool(t, alice, denomD, denomW, 10000, 100)

	tests := []struct {
		name     string
		provider []byte
		poolID   uint64
		shares   math.Int
		expErr   error
	}{
		{"zero shares", alice, pool.Id, math.ZeroInt(), types.ErrZeroAmount},
		{"negative shares", alice, pool.Id, math.NewInt(-5), types.ErrZeroAmount},
		{"more than held", alice, pool.Id, math.NewInt(1001), types.ErrInsufficientBalance},
		{"not a holder", bob, pool.Id, math.NewInt(1), types.ErrInsufficientBalance},
		{"unknown pool", alice, 7, math.NewInt(1), types.ErrPoolNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := f.AMM.RemoveLiquidity(f.Ctx, tc.provider, tc.poolID, tc.shares)
			require.ErrorIs(t, err, tc.expErr)
		})
	}

	after, err := f.AMM.GetPoolByID(f.Ctx, pool.Id)
	require.NoError(t, err)
	require.Equal(t, pool.String(), after.String())
}

func TestRemoveLiquidity_EmptyPool(t *testing.T) {
	f := keepertest.AMMKeeper(t)
	pool := f.CreatePool(t, denomD, denomW)

	_, _, err := f.AMM.RemoveLiquidity(f.Ctx, alice, pool.Id, math.NewInt(1))
	require.ErrorIs(t, err, types.ErrInsufficientBalance)
}

func TestAddLiquidity_PoolAccountRejected(t *testing.T) {
	f := keepertest.AMMKeeper(t)
	pool, _ := f.SeedPool(t, bob, denomD, denomW, 10000, 100)
	other := f.CreatePool(t, "uatom", denomD)

	// both custody accounts hold and approve enough to cover the deposit
	for _, holder := range []sdk.AccAddress{pool.GetAddress(), other.GetAddress()} {
		f.FundAndApprove(t, denomD, holder, pool.Id, 10000)
		f.FundAndApprove(t, denomW, holder, pool.Id, 100)
	}

	for _, holder := range []sdk.AccAddress{pool.GetAddress(), other.GetAddress()} {
		_, err := f.AMM.AddLiquidity(f.Ctx, holder, pool.Id, math.NewInt(10000), math.NewInt(100))
		require.ErrorIs(t, err, types.ErrInvalidAccount)
	}

	after, err := f.AMM.GetPoolByID(f.Ctx, pool.Id)
	require.NoError(t, err)
	require.Equal(t, pool.String(), after.String())
	requireInt(t, 0, mustShares(t, f, pool.Id, pool.GetAddress()))
	msg, broken := keeper.PoolReservesInvariant(f.AMM)(f.Ctx)
	require.False(t, broken, msg)
}

func TestRemoveLiquidity_PoolAccountRejected(t *testing.T) {
	f := keepertest.AMMKeeper(t)
	pool, _ := f.SeedPool(t, bob, denomD, denomW, 10000, 100)

	_, _, err := f.AMM.RemoveLiquidity(f.Ctx, pool.GetAddress(), pool.Id, math.NewInt(1))
	require.ErrorIs(t, err, types.ErrInvalidAccount)
	require.True(t, f.AMM.IsPoolAddress(f.Ctx, pool.GetAddress()))
	require.False(t, f.AMM.IsPoolAddress(f.Ctx, bob))
}

func mustShares(t *testing.T, f keepertest.Fixture, poolID uint64, owner sdk.AccAddress) math.Int {
	t.Helper()
	shares, err := f.AMM.GetShares(f.Ctx, poolID, owner)
	require.NoError(t, err)
	return shares
}
