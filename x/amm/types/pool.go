package types

import (
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"
)

// Pair is an unordered pair of asset identifiers held in canonical order,
// AssetA sorting before AssetB.
type Pair struct {
	AssetA string `json:"asset_a"`
	AssetB string `json:"asset_b"`
}

// CanonicalPair orders two asset identifiers bytewise so that (x, y) and
// (y, x) produce the same Pair. It performs no validation.
func CanonicalPair(x, y string) Pair {
	if y < x {
		x, y = y, x
	}
	return Pair{AssetA: x, AssetB: y}
}

// NewPair validates both identifiers and returns their canonical pair.
func NewPair(x, y string) (Pair, error) {
	if err := ValidateAsset(x); err != nil {
		return Pair{}, err
	}
	if err := ValidateAsset(y); err != nil {
		return Pair{}, err
	}
	if x == y {
		return Pair{}, ErrInvalidPair.Wrapf("identical assets %s", x)
	}
	return CanonicalPair(x, y), nil
}

// String returns "assetA/assetB".
func (p Pair) String() string {
	return p.AssetA + "/" + p.AssetB
}

// ValidateAsset checks that denom is a well formed asset identifier.
func ValidateAsset(denom string) error {
	if err := sdk.ValidateDenom(denom); err != nil {
		return ErrInvalidAsset.Wrapf("%q: %v", denom, err)
	}
	return nil
}

// PoolAddress derives the custody account of the pool with the given id.
func PoolAddress(poolID uint64) sdk.AccAddress {
	return address.Module(ModuleName, sdk.Uint64ToBigEndian(poolID))
}

// Pool is a constant-product venue for one asset pair.
type Pool struct {
	Id          uint64   `json:"id"`
	AssetA      string   `json:"asset_a"`
	AssetB      string   `json:"asset_b"`
	ReserveA    math.Int `json:"reserve_a"`
	ReserveB    math.Int `json:"reserve_b"`
	TotalShares math.Int `json:"total_shares"`
	Creator     string   `json:"creator"`
}

// NewPool returns an empty pool for pair.
func NewPool(id uint64, pair Pair, creator sdk.AccAddress) Pool {
	return Pool{
		Id:          id,
		AssetA:      pair.AssetA,
		AssetB:      pair.AssetB,
		ReserveA:    math.ZeroInt(),
		ReserveB:    math.ZeroInt(),
		TotalShares: math.ZeroInt(),
		Creator:     creator.String(),
	}
}

// GetAddress returns the account that custodies the pool reserves.
func (p Pool) GetAddress() sdk.AccAddress {
	return PoolAddress(p.Id)
}

// Pair returns the pool's canonical asset pair.
func (p Pool) Pair() Pair {
	return Pair{AssetA: p.AssetA, AssetB: p.AssetB}
}

// HasAsset reports whether denom is one of the pool's two assets.
func (p Pool) HasAsset(denom string) bool {
	return denom == p.AssetA || denom == p.AssetB
}

// IsSeeded reports whether the pool holds liquidity. An unseeded pool
// takes its price from the next deposit.
func (p Pool) IsSeeded() bool {
	return p.TotalShares.IsPositive()
}

// Sides returns the reserves ordered for a swap that sells assetIn, along
// with the asset bought.
func (p Pool) Sides(assetIn string) (reserveIn, reserveOut math.Int, assetOut string, err error) {
	switch assetIn {
	case p.AssetA:
		return p.ReserveA, p.ReserveB, p.AssetB, nil
	case p.AssetB:
		return p.ReserveB, p.ReserveA, p.AssetA, nil
	default:
		return math.Int{}, math.Int{}, "", ErrUnknownAsset.Wrapf(
			"pool %d trades %s/%s, got %s", p.Id, p.AssetA, p.AssetB, assetIn)
	}
}

// Validate checks the structural invariants of a pool.
func (p Pool) Validate() error {
	if p.Id == 0 {
		return ErrInvalidPoolState.Wrap("pool id cannot be zero")
	}
	pair, err := NewPair(p.AssetA, p.AssetB)
	if err != nil {
		return err
	}
	if pair.AssetA != p.AssetA {
		return ErrInvalidPoolState.Wrapf("pool %d assets not in canonical order", p.Id)
	}
	if p.ReserveA.IsNil() || p.ReserveB.IsNil() || p.TotalShares.IsNil() {
		return ErrInvalidPoolState.Wrapf("pool %d has unset amounts", p.Id)
	}
	if p.ReserveA.IsNegative() || p.ReserveB.IsNegative() || p.TotalShares.IsNegative() {
		return ErrInvalidPoolState.Wrapf("pool %d has negative amounts", p.Id)
	}
	if p.ReserveA.IsZero() != p.ReserveB.IsZero() {
		return ErrInvalidPoolState.Wrapf("pool %d is partially seeded: %s/%s", p.Id, p.ReserveA, p.ReserveB)
	}
	if p.ReserveA.IsZero() != p.TotalShares.IsZero() {
		return ErrInvalidPoolState.Wrapf("pool %d reserves and shares disagree: reserves %s/%s, shares %s",
			p.Id, p.ReserveA, p.ReserveB, p.TotalShares)
	}
	return nil
}

// String implements fmt.Stringer.
func (p Pool) String() string {
	return fmt.Sprintf("pool %d %s reserves=%s/%s shares=%s", p.Id, p.Pair(), p.ReserveA, p.ReserveB, p.TotalShares)
}
