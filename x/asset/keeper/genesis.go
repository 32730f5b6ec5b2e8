package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/pawswap/x/asset/types"
)

// InitGenesis loads balances and allowances. Supply is rebuilt from the
// balances.
func (k Keeper) InitGenesis(ctx context.Context, genState types.GenesisState) error {
	if err := genState.Validate(); err != nil {
		return err
	}

	for _, b := range genState.Balances {
		holder, err := sdk.AccAddressFromBech32(b.Holder)
		if err != nil {
			return fmt.Errorf("invalid holder %s: %w", b.Holder, err)
		}
		if err := k.setAmount(ctx, BalanceKey(b.Denom, holder), b.Amount); err != nil {
			return fmt.Errorf("failed to set balance %s/%s: %w", b.Denom, b.Holder, err)
		}
		supply, err := k.TotalSupply(ctx, b.Denom).SafeAdd(b.Amount)
		if err != nil {
			return types.ErrInvalidGenesis.Wrapf("supply of %s overflows", b.Denom)
		}
		if err := k.setAmount(ctx, SupplyKey(b.Denom), supply); err != nil {
			return fmt.Errorf("failed to set supply of %s: %w", b.Denom, err)
		}
	}

	for _, a := range genState.Allowances {
		owner, err := sdk.AccAddressFromBech32(a.Owner)
		if err != nil {
			return fmt.Errorf("invalid owner %s: %w", a.Owner, err)
		}
		spender, err := sdk.AccAddressFromBech32(a.Spender)
		if err != nil {
			return fmt.Errorf("invalid spender %s: %w", a.Spender, err)
		}
		if err := k.setAmount(ctx, AllowanceKey(a.Denom, owner, spender), a.Amount); err != nil {
			return fmt.Errorf("failed to set allowance %s/%s: %w", a.Denom, a.Owner, err)
		}
	}
	return nil
}

// ExportGenesis returns the asset module's exported genesis.
func (k Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	gs := types.DefaultGenesis()

	err := k.IterateBalances(ctx, func(denom string, holder sdk.AccAddress, amount math.Int) bool {
		gs.Balances = append(gs.Balances, types.Balance{Denom: denom, Holder: holder.String(), Amount: amount})
		return false
	})
	if err != nil {
		return nil, fmt.Errorf("failed to export balances: %w", err)
	}

	err = k.IterateAllowances(ctx, func(denom string, owner, spender sdk.AccAddress, amount math.Int) bool {
		gs.Allowances = append(gs.Allowances, types.Allowance{
			Denom:   denom,
			Owner:   owner.String(),
			Spender: spender.String(),
			Amount:  amount,
		})
		return false
	})
	if err != nil {
		return nil, fmt.Errorf("failed to export allowances: %w", err)
	}
	return gs, nil
}

// TotalSupplyInvariant checks that each denom's supply equals the sum of its
// balances.
func TotalSupplyInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		sums := make(map[string]math.Int)
		err := k.IterateBalances(ctx, func(denom string, _ sdk.AccAddress, amount math.Int) bool {
			sum, ok := sums[denom]
			if !ok {
				sum = math.ZeroInt()
			}
			sums[denom] = sum.Add(amount)
			return false
		})
		if err != nil {
			return sdk.FormatInvariant(types.ModuleName, "total-supply", err.Error()), true
		}

		var (
			msg   string
			count int
		)
		for denom, sum := range sums {
			if supply := k.TotalSupply(ctx, denom); !supply.Equal(sum) {
				count++
				msg += fmt.Sprintf("%s: supply %s != balances %s\n", denom, supply, sum)
			}
		}

		broken := count != 0
		return sdk.FormatInvariant(
			types.ModuleName, "total-supply",
			fmt.Sprintf("found %d denoms with mismatched supply\n%s", count, msg),
		), broken
	}
}

// RegisterInvariants registers all asset invariants
func RegisterInvariants(ir sdk.InvariantRegistry, k Keeper) {
	ir.RegisterRoute(types.ModuleName, "total-supply", TotalSupplyInvariant(k))
}
