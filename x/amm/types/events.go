package types

// AMM module event types
const (
	EventTypePoolCreated     = "pool_created"
	EventTypeAddLiquidity    = "add_liquidity"
	EventTypeRemoveLiquidity = "remove_liquidity"
	EventTypeSwap            = "swap"
)

// AMM module event attribute keys
const (
	AttributeKeyPoolID      = "pool_id"
	AttributeKeyPoolAddress = "pool_address"
	AttributeKeyAssetA      = "asset_a"
	AttributeKeyAssetB      = "asset_b"
	AttributeKeyCreator     = "creator"
	AttributeKeyProvider    = "provider"
	AttributeKeyTrader      = "trader"
	AttributeKeyAmountA     = "amount_a"
	AttributeKeyAmountB     = "amount_b"
	AttributeKeyShares      = "shares"
	AttributeKeyAssetIn     = "asset_in"
	AttributeKeyAssetOut    = "asset_out"
	AttributeKeyAmountIn    = "amount_in"
	AttributeKeyAmountOut   = "amount_out"
	AttributeKeyFee         = "fee"
)
