package types

import (
	"cosmossdk.io/errors"
)

// AMM module sentinel errors
var (
	// registry
	ErrInvalidPair     = errors.Register(ModuleName, 2, "invalid asset pair")
	ErrDuplicatePool   = errors.Register(ModuleName, 3, "pool already exists")
	ErrIndexOutOfRange = errors.Register(ModuleName, 4, "pool index out of range")
	ErrPoolNotFound    = errors.Register(ModuleName, 5, "pool not found")
	ErrInvalidAsset    = errors.Register(ModuleName, 6, "invalid asset identifier")
	ErrUnauthorized    = errors.Register(ModuleName, 7, "unauthorized")

	// pool
	ErrZeroAmount          = errors.Register(ModuleName, 10, "amount must be positive")
	ErrDustDeposit         = errors.Register(ModuleName, 11, "deposit too small to mint shares")
	ErrInsufficientBalance = errors.Register(ModuleName, 12, "insufficient share balance")
	ErrUnknownAsset        = errors.Register(ModuleName, 13, "asset is not part of the pool")
	ErrEmptyPool           = errors.Register(ModuleName, 14, "pool has no liquidity")
	ErrInvariantViolation  = errors.Register(ModuleName, 15, "constant product invariant violated")
	ErrSlippage            = errors.Register(ModuleName, 16, "output amount below minimum")
	ErrReentrancy          = errors.Register(ModuleName, 17, "reentrant call rejected")
	ErrInvalidPoolState    = errors.Register(ModuleName, 18, "invalid pool state")
	ErrOverflow            = errors.Register(ModuleName, 19, "arithmetic overflow")
	ErrInvalidAccount      = errors.Register(ModuleName, 20, "pool custody account cannot trade")

	// configuration
	ErrInvalidParams  = errors.Register(ModuleName, 30, "invalid module parameters")
	ErrInvalidGenesis = errors.Register(ModuleName, 31, "invalid genesis state")
)

// IsDefect reports whether err signals broken internal accounting rather than a
// rejected request. Callers should stop processing and surface these loudly.
func IsDefect(err error) bool {
	return errors.IsOf(err, ErrInvariantViolation, ErrInvalidPoolState)
}
