package types

import (
	"cosmossdk.io/errors"
)

// Asset module sentinel errors
var (
	ErrInsufficientAllowance = errors.Register(ModuleName, 2, "insufficient allowance")
	ErrInsufficientFunds     = errors.Register(ModuleName, 3, "insufficient funds")
	ErrInvalidAmount         = errors.Register(ModuleName, 4, "invalid amount")
	ErrInvalidDenom          = errors.Register(ModuleName, 5, "invalid denom")
	ErrInvalidGenesis        = errors.Register(ModuleName, 6, "invalid genesis state")
)
