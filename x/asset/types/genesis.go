package types

import (
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Balance is one holder's balance of one denom.
type Balance struct {
	Denom  string   `json:"denom"`
	Holder string   `json:"holder"`
	Amount math.Int `json:"amount"`
}

// Allowance is the amount spender may move out of owner's balance of denom.
type Allowance struct {
	Denom   string   `json:"denom"`
	Owner   string   `json:"owner"`
	Spender string   `json:"spender"`
	Amount  math.Int `json:"amount"`
}

// GenesisState defines the asset module's genesis state.
type GenesisState struct {
	Balances   []Balance   `json:"balances"`
	Allowances []Allowance `json:"allowances"`
}

// DefaultGenesis returns an empty ledger.
func DefaultGenesis() *GenesisState {
	return &GenesisState{
		Balances:   []Balance{},
		Allowances: []Allowance{},
	}
}

// ValidateDenom checks that denom is a well formed asset identifier.
func ValidateDenom(denom string) error {
	if err := sdk.ValidateDenom(denom); err != nil {
		return ErrInvalidDenom.Wrapf("%q: %v", denom, err)
	}
	return nil
}

// Validate performs basic genesis state validation.
func (gs GenesisState) Validate() error {
	seen := make(map[string]struct{}, len(gs.Balances))
	for _, b := range gs.Balances {
		if err := ValidateDenom(b.Denom); err != nil {
			return ErrInvalidGenesis.Wrapf("balance: %v", err)
		}
		if _, err := sdk.AccAddressFromBech32(b.Holder); err != nil {
			return ErrInvalidGenesis.Wrapf("balance holder %q: %v", b.Holder, err)
		}
		if b.Amount.IsNil() || !b.Amount.IsPositive() {
			return ErrInvalidGenesis.Wrapf("non-positive %s balance for %s", b.Denom, b.Holder)
		}
		key := fmt.Sprintf("%s/%s", b.Denom, b.Holder)
		if _, dup := seen[key]; dup {
			return ErrInvalidGenesis.Wrapf("duplicate balance %s", key)
		}
		seen[key] = struct{}{}
	}

	seen = make(map[string]struct{}, len(gs.Allowances))
	for _, a := range gs.Allowances {
		if err := ValidateDenom(a.Denom); err != nil {
			return ErrInvalidGenesis.Wrapf("allowance: %v", err)
		}
		if _, err := sdk.AccAddressFromBech32(a.Owner); err != nil {
			return ErrInvalidGenesis.Wrapf("allowance owner %q: %v", a.Owner, err)
		}
		if _, err := sdk.AccAddressFromBech32(a.Spender); err != nil {
			return ErrInvalidGenesis.Wrapf("allowance spender %q: %v", a.Spender, err)
		}
		if a.Amount.IsNil() || !a.Amount.IsPositive() {
			return ErrInvalidGenesis.Wrapf("non-positive %s allowance %s -> %s", a.Denom, a.Owner, a.Spender)
		}
		key := fmt.Sprintf("%s/%s/%s", a.Denom, a.Owner, a.Spender)
		if _, dup := seen[key]; dup {
			return ErrInvalidGenesis.Wrapf("duplicate allowance %s", key)
		}
		seen[key] = struct{}{}
	}
	return nil
}
