package simulation_test

import (
	"math/rand"
	"testing"

	simtypes "github.com/cosmos/cosmos-sdk/types/simulation"
	"github.com/stretchr/testify/require"

	keepertest "github.com/paw-chain/pawswap/testutil/keeper"
	"github.com/paw-chain/pawswap/x/amm/simulation"
	assetkeeper "github.com/paw-chain/pawswap/x/asset/keeper"
)

func TestWeightedOperations(t *testing.T) {
	f := keepertest.AMMKeeper(t)
	ops := simulation.WeightedOperations(f.AMM, f.Asset)

	weights := make(map[string]int)
	for _, op := range ops {
		weights[op.Name] = op.Weight
	}
	require.Equal(t, map[string]int{
		simulation.OpCreatePool:      10,
		simulation.OpAddLiquidity:    30,
		simulation.OpRemoveLiquidity: 20,
		simulation.OpSwap:            50,
	}, weights)
}

func TestRun(t *testing.T) {
	for _, seed := range []int64{1, 7, 42} {
		f := keepertest.AMMKeeper(t)
		r := rand.New(rand.NewSource(seed))
		accs := simtypes.RandomAccounts(r, 5)

		report, err := simulation.Run(f.Ctx, f.AMM, f.Asset, r, accs, 300)
		require.NoError(t, err, "seed %d\n%s", seed, report)

		executed := 0
		for _, outcomes := range report {
			for _, n := range outcomes {
				executed += n
			}
		}
		require.Equal(t, 300, executed)
		require.Positive(t, report[simulation.OpSwap][simulation.OutcomeOK], "seed %d\n%s", seed, report)
		require.NotZero(t, f.AMM.PoolCount(f.Ctx))

		msg, broken := assetkeeper.TotalSupplyInvariant(f.Asset)(f.Ctx)
		require.False(t, broken, msg)
	}
}

func TestRun_NoAccounts(t *testing.T) {
	f := keepertest.AMMKeeper(t)
	_, err := simulation.Run(f.Ctx, f.AMM, f.Asset, rand.New(rand.NewSource(1)), nil, 10)
	require.Error(t, err)
}
