package api

import (
	ammtypes "github.com/paw-chain/pawswap/x/amm/types"
)

// Error codes
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeNotFound       = "NOT_FOUND"
	CodeEmptyPool      = "EMPTY_POOL"
	CodeRateLimit      = "RATE_LIMIT"
	CodeInternal       = "INTERNAL_ERROR"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// StatusResponse reports the served state.
type StatusResponse struct {
	ChainID string `json:"chain_id"`
	Height  int64  `json:"height"`
	Pools   uint64 `json:"pools"`
}

// PoolResponse is the JSON view of a pool. Amounts are decimal strings.
type PoolResponse struct {
	Id          uint64 `json:"id"`
	AssetA      string `json:"asset_a"`
	AssetB      string `json:"asset_b"`
	ReserveA    string `json:"reserve_a"`
	ReserveB    string `json:"reserve_b"`
	TotalShares string `json:"total_shares"`
	Creator     string `json:"creator"`
	Address     string `json:"address"`
}

// NewPoolResponse renders pool.
func NewPoolResponse(pool *ammtypes.Pool) PoolResponse {
	return PoolResponse{
		Id:          pool.Id,
		AssetA:      pool.AssetA,
		AssetB:      pool.AssetB,
		ReserveA:    pool.ReserveA.String(),
		ReserveB:    pool.ReserveB.String(),
		TotalShares: pool.TotalShares.String(),
		Creator:     pool.Creator,
		Address:     pool.GetAddress().String(),
	}
}

// PoolsResponse lists pools in creation order.
type PoolsResponse struct {
	Pools []PoolResponse `json:"pools"`
	Count int            `json:"count"`
}

// QuoteResponse is the result of a simulated swap.
type QuoteResponse struct {
	PoolID    uint64 `json:"pool_id"`
	AssetIn   string `json:"asset_in"`
	AmountIn  string `json:"amount_in"`
	AssetOut  string `json:"asset_out"`
	AmountOut string `json:"amount_out"`
	SpotPrice string `json:"spot_price"`
}

// SharesResponse reports an account's pool shares.
type SharesResponse struct {
	PoolID  uint64 `json:"pool_id"`
	Account string `json:"account"`
	Shares  string `json:"shares"`
}

// BalanceResponse reports an account's asset balance.
type BalanceResponse struct {
	Denom   string `json:"denom"`
	Account string `json:"account"`
	Balance string `json:"balance"`
}
