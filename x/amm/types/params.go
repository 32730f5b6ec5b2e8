package types

import (
	"fmt"
)

// DefaultFeeBasisPoints is the swap fee charged on input, 0.30%.
const DefaultFeeBasisPoints uint32 = 30

// Params are the AMM module parameters. They are fixed at genesis.
type Params struct {
	// FeeBasisPoints is the share of every swap input, in 1/10000ths,
	// retained by the pool.
	FeeBasisPoints uint32 `json:"fee_basis_points"`

	// RestrictPoolCreation limits CreatePool to the keeper owner.
	RestrictPoolCreation bool `json:"restrict_pool_creation"`
}

// NewParams creates a new Params instance.
func NewParams(feeBps uint32, restrictPoolCreation bool) Params {
	return Params{
		FeeBasisPoints:       feeBps,
		RestrictPoolCreation: restrictPoolCreation,
	}
}

// DefaultParams returns a default set of parameters.
func DefaultParams() Params {
	return NewParams(DefaultFeeBasisPoints, false)
}

// Validate validates the set of params.
func (p Params) Validate() error {
	if p.FeeBasisPoints >= FeeDenominator {
		return ErrInvalidParams.Wrapf("fee_basis_points must be below %d, got %d", FeeDenominator, p.FeeBasisPoints)
	}
	return nil
}

// String implements fmt.Stringer.
func (p Params) String() string {
	return fmt.Sprintf("fee_basis_points: %d\nrestrict_pool_creation: %t", p.FeeBasisPoints, p.RestrictPoolCreation)
}
