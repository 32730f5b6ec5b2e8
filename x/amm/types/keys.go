package types

const (
	// ModuleName defines the module name
	ModuleName = "amm"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName

	// RouterKey defines the module's message routing key
	RouterKey = ModuleName

	// FeeDenominator is the fixed-point scale of Params.FeeBasisPoints
	FeeDenominator = 10_000
)
