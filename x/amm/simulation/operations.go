package simulation

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	simtypes "github.com/cosmos/cosmos-sdk/types/simulation"

	"github.com/paw-chain/pawswap/x/amm/keeper"
	"github.com/paw-chain/pawswap/x/amm/types"
)

// Simulation operation names and default weights
const (
	OpCreatePool      = "create_pool"
	OpAddLiquidity    = "add_liquidity"
	OpRemoveLiquidity = "remove_liquidity"
	OpSwap            = "swap"

	DefaultWeightCreatePool      = 10
	DefaultWeightAddLiquidity    = 30
	DefaultWeightRemoveLiquidity = 20
	DefaultWeightSwap            = 50
)

// Operation outcomes
const (
	OutcomeOK       = "ok"
	OutcomeNoOp     = "noop"
	OutcomeRejected = "rejected"
)

// Denoms traded by the simulation.
var Denoms = []string{"uatom", "udai", "uosmo", "upaw", "uweth"}

// AssetKeeper is the part of the asset ledger the simulation uses to fund
// and authorize actors.
type AssetKeeper interface {
	Mint(ctx context.Context, denom string, recipient sdk.AccAddress, amount math.Int) error
	Approve(ctx context.Context, denom string, owner, spender sdk.AccAddress, amount math.Int) error
}

// Operation performs one random action and reports its outcome. A non-nil
// error means the run must stop.
type Operation func(r *rand.Rand, ctx sdk.Context, accs []simtypes.Account) (string, error)

// WeightedOperation is an operation with its selection weight.
type WeightedOperation struct {
	Name   string
	Weight int
	Op     Operation
}

// Report counts outcomes per operation name.
type Report map[string]map[string]int

func (r Report) record(op, outcome string) {
	if r[op] == nil {
		r[op] = make(map[string]int)
	}
	r[op][outcome]++
}

// String renders the report with operations in name order.
func (r Report) String() string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)

	out := ""
	for _, name := range names {
		out += fmt.Sprintf("%-17s ok=%d noop=%d rejected=%d\n",
			name, r[name][OutcomeOK], r[name][OutcomeNoOp], r[name][OutcomeRejected])
	}
	return out
}

// WeightedOperations returns all AMM operations with their default weights.
func WeightedOperations(k keeper.Keeper, ak AssetKeeper) []WeightedOperation {
	return []WeightedOperation{
		{OpCreatePool, DefaultWeightCreatePool, SimulateCreatePool(k)},
		{OpAddLiquidity, DefaultWeightAddLiquidity, SimulateAddLiquidity(k, ak)},
		{OpRemoveLiquidity, DefaultWeightRemoveLiquidity, SimulateRemoveLiquidity(k)},
		{OpSwap, DefaultWeightSwap, SimulateSwap(k, ak)},
	}
}

// Run executes steps randomly chosen weighted operations against ctx and
// checks every AMM invariant after each one.
func Run(ctx sdk.Context, k keeper.Keeper, ak AssetKeeper, r *rand.Rand, accs []simtypes.Account, steps int) (Report, error) {
	if len(accs) == 0 {
		return nil, fmt.Errorf("simulation needs at least one account")
	}
	ops := WeightedOperations(k, ak)
	total := 0
	for _, op := range ops {
		total += op.Weight
	}

	report := make(Report)
	invariant := keeper.AllInvariants(k)
	for step := 0; step < steps; step++ {
		pick := r.Intn(total)
		var chosen WeightedOperation
		for _, op := range ops {
			if pick < op.Weight {
				chosen = op
				break
			}
			pick -= op.Weight
		}

		outcome, err := chosen.Op(r, ctx, accs)
		if err != nil {
			return report, fmt.Errorf("step %d %s: %w", step, chosen.Name, err)
		}
		report.record(chosen.Name, outcome)

		if msg, broken := invariant(ctx); broken {
			return report, fmt.Errorf("step %d %s broke an invariant: %s", step, chosen.Name, msg)
		}
	}
	return report, nil
}

// classify maps an operation error to an outcome. Expected rejections are
// tolerated; defects and unexpected failures abort the run.
func classify(err error) (string, error) {
	if err == nil {
		return OutcomeOK, nil
	}
	if types.IsDefect(err) {
		return "", err
	}
	if errorsmod.IsOf(err,
		types.ErrDuplicatePool,
		types.ErrInvalidPair,
		types.ErrUnauthorized,
		types.ErrZeroAmount,
		types.ErrDustDeposit,
		types.ErrEmptyPool,
		types.ErrInsufficientBalance,
		types.ErrSlippage,
	) {
		return OutcomeRejected, nil
	}
	return "", err
}

func randomPool(r *rand.Rand, ctx sdk.Context, k keeper.Keeper) (*types.Pool, error) {
	count := k.PoolCount(ctx)
	if count == 0 {
		return nil, nil
	}
	return k.ListPools(ctx, uint64(r.Int63n(int64(count))))
}

// fundAndApprove mints amount to holder and authorizes the pool to pull it.
func fundAndApprove(ctx sdk.Context, ak AssetKeeper, denom string, holder sdk.AccAddress, pool *types.Pool, amount math.Int) error {
	if err := ak.Mint(ctx, denom, holder, amount); err != nil {
		return err
	}
	return ak.Approve(ctx, denom, holder, pool.GetAddress(), amount)
}

// SimulateCreatePool creates a pool for a random pair, which is rejected
// when the pair already has one.
func SimulateCreatePool(k keeper.Keeper) Operation {
	return func(r *rand.Rand, ctx sdk.Context, accs []simtypes.Account) (string, error) {
		simAccount, _ := simtypes.RandomAcc(r, accs)

		tokenA := Denoms[r.Intn(len(Denoms))]
		tokenB := Denoms[r.Intn(len(Denoms))]
		if tokenA == tokenB {
			return OutcomeNoOp, nil
		}

		_, err := k.CreatePool(ctx, simAccount.Address, tokenA, tokenB)
		return classify(err)
	}
}

// SimulateAddLiquidity deposits random amounts into a random pool.
func SimulateAddLiquidity(k keeper.Keeper, ak AssetKeeper) Operation {
	return func(r *rand.Rand, ctx sdk.Context, accs []simtypes.Account) (string, error) {
		simAccount, _ := simtypes.RandomAcc(r, accs)

		pool, err := randomPool(r, ctx, k)
		if err != nil {
			return "", err
		}
		if pool == nil {
			return OutcomeNoOp, nil
		}

		amountA := math.NewInt(int64(simtypes.RandIntBetween(r, 1, 1_000_000)))
		amountB := math.NewInt(int64(simtypes.RandIntBetween(r, 1, 1_000_000)))
		if err := fundAndApprove(ctx, ak, pool.AssetA, simAccount.Address, pool, amountA); err != nil {
			return "", err
		}
		if err := fundAndApprove(ctx, ak, pool.AssetB, simAccount.Address, pool, amountB); err != nil {
			return "", err
		}

		_, err = k.AddLiquidity(ctx, simAccount.Address, pool.Id, amountA, amountB)
		return classify(err)
	}
}

// SimulateRemoveLiquidity burns a random part of an actor's shares.
func SimulateRemoveLiquidity(k keeper.Keeper) Operation {
	return func(r *rand.Rand, ctx sdk.Context, accs []simtypes.Account) (string, error) {
		simAccount, _ := simtypes.RandomAcc(r, accs)

		pool, err := randomPool(r, ctx, k)
		if err != nil {
			return "", err
		}
		if pool == nil {
			return OutcomeNoOp, nil
		}

		shares, err := k.GetShares(ctx, pool.Id, simAccount.Address)
		if err != nil {
			return "", err
		}
		if shares.IsZero() {
			return OutcomeNoOp, nil
		}

		burn := shares
		if shares.IsInt64() && r.Intn(4) != 0 {
			burn = math.NewInt(r.Int63n(shares.Int64()) + 1)
		}

		_, _, err = k.RemoveLiquidity(ctx, simAccount.Address, pool.Id, burn)
		return classify(err)
	}
}

// SimulateSwap sells a random amount of a random pool asset.
func SimulateSwap(k keeper.Keeper, ak AssetKeeper) Operation {
	return func(r *rand.Rand, ctx sdk.Context, accs []simtypes.Account) (string, error) {
		simAccount, _ := simtypes.RandomAcc(r, accs)

		pool, err := randomPool(r, ctx, k)
		if err != nil {
			return "", err
		}
		if pool == nil {
			return OutcomeNoOp, nil
		}

		assetIn := pool.AssetA
		if r.Intn(2) == 1 {
			assetIn = pool.AssetB
		}
		amountIn := math.NewInt(int64(simtypes.RandIntBetween(r, 1, 100_000)))
		if err := fundAndApprove(ctx, ak, assetIn, simAccount.Address, pool, amountIn); err != nil {
			return "", err
		}

		minOut := math.ZeroInt()
		if r.Intn(5) == 0 {
			quote, err := k.QuoteSwap(ctx, pool.Id, assetIn, amountIn)
			if err == nil {
				minOut = quote.AddRaw(int64(r.Intn(2)))
			}
		}

		_, err = k.Swap(ctx, simAccount.Address, pool.Id, assetIn, amountIn, minOut)
		return classify(err)
	}
}
