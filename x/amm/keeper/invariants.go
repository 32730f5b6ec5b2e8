package keeper

import (
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/pawswap/x/amm/types"
)

// Invariant route names
const (
	RoutePoolReserves  = "pool-reserves"
	RoutePoolShares    = "pool-shares"
	RoutePoolState     = "pool-state"
	RoutePoolsRegistry = "pools-registry"
)

// RegisterInvariants registers all AMM invariants
func RegisterInvariants(ir sdk.InvariantRegistry, k Keeper) {
	ir.RegisterRoute(types.ModuleName, RoutePoolReserves, PoolReservesInvariant(k))
	ir.RegisterRoute(types.ModuleName, RoutePoolShares, PoolSharesInvariant(k))
	ir.RegisterRoute(types.ModuleName, RoutePoolState, PoolStateInvariant(k))
	ir.RegisterRoute(types.ModuleName, RoutePoolsRegistry, PoolsRegistryInvariant(k))
}

// AllInvariants runs all invariants of the AMM module
func AllInvariants(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		for _, inv := range []sdk.Invariant{
			PoolStateInvariant(k),
			PoolsRegistryInvariant(k),
			PoolSharesInvariant(k),
			PoolReservesInvariant(k),
		} {
			if res, stop := inv(ctx); stop {
				return res, stop
			}
		}
		return sdk.FormatInvariant(types.ModuleName, "all", "every invariant holds"), false
	}
}

// PoolReservesInvariant checks that every pool's custody account holds at
// least its recorded reserves. Tokens sent to a pool address outside the
// AMM make the balance exceed the reserves, never the other way round.
func PoolReservesInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			msg   string
			count int
		)

		pools, err := k.AllPools(ctx)
		if err != nil {
			return sdk.FormatInvariant(types.ModuleName, RoutePoolReserves, err.Error()), true
		}
		for _, pool := range pools {
			addr := pool.GetAddress()
			balanceA := k.assetKeeper.BalanceOf(ctx, pool.AssetA, addr)
			balanceB := k.assetKeeper.BalanceOf(ctx, pool.AssetB, addr)

			if balanceA.LT(pool.ReserveA) {
				count++
				msg += fmt.Sprintf("pool %d: custody balance of %s (%s) < reserve (%s)\n",
					pool.Id, pool.AssetA, balanceA, pool.ReserveA)
			}
			if balanceB.LT(pool.ReserveB) {
				count++
				msg += fmt.Sprintf("pool %d: custody balance of %s (%s) < reserve (%s)\n",
					pool.Id, pool.AssetB, balanceB, pool.ReserveB)
			}
		}

		broken := count != 0
		return sdk.FormatInvariant(
			types.ModuleName, RoutePoolReserves,
			fmt.Sprintf("found %d underfunded reserves\n%s", count, msg),
		), broken
	}
}

// PoolSharesInvariant checks that each pool's share ledger sums to its
// total shares.
func PoolSharesInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			msg   string
			count int
		)

		pools, err := k.AllPools(ctx)
		if err != nil {
			return sdk.FormatInvariant(types.ModuleName, RoutePoolShares, err.Error()), true
		}
		for _, pool := range pools {
			sum := math.ZeroInt()
			err := k.IterateShares(ctx, pool.Id, func(_ sdk.AccAddress, shares math.Int) bool {
				sum = sum.Add(shares)
				return false
			})
			if err != nil {
				count++
				msg += fmt.Sprintf("pool %d: %v\n", pool.Id, err)
				continue
			}
			if !sum.Equal(pool.TotalShares) {
				count++
				msg += fmt.Sprintf("pool %d: ledger sum %s != total shares %s\n", pool.Id, sum, pool.TotalShares)
			}
		}

		broken := count != 0
		return sdk.FormatInvariant(
			types.ModuleName, RoutePoolShares,
			fmt.Sprintf("found %d pools with inconsistent share ledgers\n%s", count, msg),
		), broken
	}
}

// PoolStateInvariant checks that every stored pool is well formed: reserves
// and shares are all zero or all positive.
func PoolStateInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			msg   string
			count int
		)

		pools, err := k.AllPools(ctx)
		if err != nil {
			return sdk.FormatInvariant(types.ModuleName, RoutePoolState, err.Error()), true
		}
		for _, pool := range pools {
			if err := pool.Validate(); err != nil {
				count++
				msg += fmt.Sprintf("%v\n", err)
			}
		}

		broken := count != 0
		return sdk.FormatInvariant(
			types.ModuleName, RoutePoolState,
			fmt.Sprintf("found %d malformed pools\n%s", count, msg),
		), broken
	}
}

// PoolsRegistryInvariant checks that the pool list, the pair index and the
// id counter agree with each other.
func PoolsRegistryInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			msg   string
			count int
		)

		nextID := k.PeekNextPoolID(ctx)
		seen := make(map[uint64]bool)
		listed := uint64(0)
		err := k.IteratePools(ctx, func(index uint64, pool types.Pool) bool {
			if index != listed {
				count++
				msg += fmt.Sprintf("list position %d found at %d\n", listed, index)
			}
			listed++
			if seen[pool.Id] {
				count++
				msg += fmt.Sprintf("pool %d listed twice\n", pool.Id)
			}
			seen[pool.Id] = true
			if pool.Id >= nextID {
				count++
				msg += fmt.Sprintf("pool %d not below next id %d\n", pool.Id, nextID)
			}
			if id, found := k.getPoolIDByPair(ctx, pool.Pair()); !found || id != pool.Id {
				count++
				msg += fmt.Sprintf("pair %s does not resolve to pool %d\n", pool.Pair(), pool.Id)
			}
			if !k.IsPoolAddress(ctx, pool.GetAddress()) {
				count++
				msg += fmt.Sprintf("custody address of pool %d not indexed\n", pool.Id)
			}
			return false
		})
		if err != nil {
			return sdk.FormatInvariant(types.ModuleName, RoutePoolsRegistry, err.Error()), true
		}
		if total := k.PoolCount(ctx); total != listed {
			count++
			msg += fmt.Sprintf("pool count %d, listed %d\n", total, listed)
		}

		broken := count != 0
		return sdk.FormatInvariant(
			types.ModuleName, RoutePoolsRegistry,
			fmt.Sprintf("found %d registry inconsistencies\n%s", count, msg),
		), broken
	}
}
