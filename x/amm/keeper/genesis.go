package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/pawswap/x/amm/types"
)

// InitGenesis initializes the amm module's state from a genesis state.
// Pools are appended to the pool list in the order given.
func (k Keeper) InitGenesis(ctx context.Context, genState types.GenesisState) error {
	if err := genState.Validate(); err != nil {
		return err
	}

	if err := k.SetParams(ctx, genState.Params); err != nil {
		return fmt.Errorf("failed to set params: %w", err)
	}

	for i := range genState.Pools {
		pool := genState.Pools[i]
		if err := k.setPool(ctx, &pool); err != nil {
			return fmt.Errorf("failed to set pool %d: %w", pool.Id, err)
		}
		k.setPoolByPair(ctx, pool.Pair(), pool.Id)
		k.setPoolByAddress(ctx, &pool)
		k.appendPoolList(ctx, pool.Id)
	}

	for _, rec := range genState.Shares {
		owner, err := sdk.AccAddressFromBech32(rec.Owner)
		if err != nil {
			return fmt.Errorf("invalid share owner %s: %w", rec.Owner, err)
		}
		if err := k.setShares(ctx, rec.PoolId, owner, rec.Shares); err != nil {
			return fmt.Errorf("failed to set shares of %s in pool %d: %w", rec.Owner, rec.PoolId, err)
		}
	}

	k.SetNextPoolID(ctx, genState.NextPoolId)
	return nil
}

// ExportGenesis returns the amm module's exported genesis.
func (k Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	params, err := k.GetParams(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get params: %w", err)
	}

	pools, err := k.AllPools(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get pools: %w", err)
	}

	shares := []types.ShareRecord{}
	for _, pool := range pools {
		err := k.IterateShares(ctx, pool.Id, func(owner sdk.AccAddress, amount math.Int) bool {
			shares = append(shares, types.ShareRecord{
				PoolId: pool.Id,
				Owner:  owner.String(),
				Shares: amount,
			})
			return false
		})
		if err != nil {
			return nil, fmt.Errorf("failed to export shares of pool %d: %w", pool.Id, err)
		}
	}

	return &types.GenesisState{
		Params:     params,
		Pools:      pools,
		Shares:     shares,
		NextPoolId: k.PeekNextPoolID(ctx),
	}, nil
}
