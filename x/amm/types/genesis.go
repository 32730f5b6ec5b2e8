package types

import (
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// ShareRecord is one entry of a pool's share ledger.
type ShareRecord struct {
	PoolId uint64   `json:"pool_id"`
	Owner  string   `json:"owner"`
	Shares math.Int `json:"shares"`
}

// GenesisState defines the AMM module's genesis state. Pools are listed in
// creation order.
type GenesisState struct {
	Params     Params        `json:"params"`
	Pools      []Pool        `json:"pools"`
	Shares     []ShareRecord `json:"shares"`
	NextPoolId uint64        `json:"next_pool_id"`
}

// DefaultGenesis returns the default genesis state.
func DefaultGenesis() *GenesisState {
	return &GenesisState{
		Params:     DefaultParams(),
		Pools:      []Pool{},
		Shares:     []ShareRecord{},
		NextPoolId: 1,
	}
}

// Validate performs basic genesis state validation.
func (gs GenesisState) Validate() error {
	if err := gs.Params.Validate(); err != nil {
		return err
	}
	if gs.NextPoolId == 0 {
		return ErrInvalidGenesis.Wrap("next_pool_id must be positive")
	}

	pools := make(map[uint64]Pool, len(gs.Pools))
	pairs := make(map[Pair]uint64, len(gs.Pools))
	var lastID uint64
	for _, pool := range gs.Pools {
		if err := pool.Validate(); err != nil {
			return ErrInvalidGenesis.Wrapf("pool %d: %v", pool.Id, err)
		}
		if pool.Id <= lastID {
			return ErrInvalidGenesis.Wrapf("pool %d out of creation order", pool.Id)
		}
		lastID = pool.Id
		if pool.Id >= gs.NextPoolId {
			return ErrInvalidGenesis.Wrapf("pool %d not below next_pool_id %d", pool.Id, gs.NextPoolId)
		}
		if other, ok := pairs[pool.Pair()]; ok {
			return ErrInvalidGenesis.Wrapf("pools %d and %d share pair %s", other, pool.Id, pool.Pair())
		}
		pools[pool.Id] = pool
		pairs[pool.Pair()] = pool.Id
	}

	sums := make(map[uint64]math.Int, len(gs.Pools))
	seen := make(map[string]struct{}, len(gs.Shares))
	for _, rec := range gs.Shares {
		if _, ok := pools[rec.PoolId]; !ok {
			return ErrInvalidGenesis.Wrapf("shares for unknown pool %d", rec.PoolId)
		}
		if _, err := sdk.AccAddressFromBech32(rec.Owner); err != nil {
			return ErrInvalidGenesis.Wrapf("share owner %q: %v", rec.Owner, err)
		}
		if rec.Shares.IsNil() || !rec.Shares.IsPositive() {
			return ErrInvalidGenesis.Wrapf("non-positive shares for %s in pool %d", rec.Owner, rec.PoolId)
		}
		key := fmt.Sprintf("%d/%s", rec.PoolId, rec.Owner)
		if _, dup := seen[key]; dup {
			return ErrInvalidGenesis.Wrapf("duplicate share record %s", key)
		}
		seen[key] = struct{}{}

		sum, ok := sums[rec.PoolId]
		if !ok {
			sum = math.ZeroInt()
		}
		sums[rec.PoolId] = sum.Add(rec.Shares)
	}

	for id, pool := range pools {
		sum, ok := sums[id]
		if !ok {
			sum = math.ZeroInt()
		}
		if !sum.Equal(pool.TotalShares) {
			return ErrInvalidGenesis.Wrapf("pool %d share ledger sums to %s, total is %s", id, sum, pool.TotalShares)
		}
	}
	return nil
}
