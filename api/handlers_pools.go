package api

import (
	"net/http"
	"strconv"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/gin-gonic/gin"

	"github.com/paw-chain/pawswap/app"
	ammtypes "github.com/paw-chain/pawswap/x/amm/types"
	assettypes "github.com/paw-chain/pawswap/x/asset/types"
)

func (s *Server) handleStatus(c *gin.Context) {
	var resp StatusResponse
	_ = s.query(func(ctx sdk.Context) error {
		resp = StatusResponse{
			ChainID: s.app.ChainID(),
			Height:  s.app.LastBlockHeight(),
			Pools:   s.app.AMMKeeper.PoolCount(ctx),
		}
		return nil
	})
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleParams(c *gin.Context) {
	var params ammtypes.Params
	err := s.query(func(ctx sdk.Context) (err error) {
		params, err = s.app.AMMKeeper.GetParams(ctx)
		return err
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, params)
}

// handleGetPools returns all pools in creation order
func (s *Server) handleGetPools(c *gin.Context) {
	var pools []ammtypes.Pool
	err := s.query(func(ctx sdk.Context) (err error) {
		pools, err = s.app.AMMKeeper.AllPools(ctx)
		return err
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	resp := PoolsResponse{Pools: make([]PoolResponse, 0, len(pools)), Count: len(pools)}
	for i := range pools {
		resp.Pools = append(resp.Pools, NewPoolResponse(&pools[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// handleGetPool returns a specific pool
func (s *Server) handleGetPool(c *gin.Context) {
	poolID, ok := poolIDParam(c)
	if !ok {
		return
	}

	var pool *ammtypes.Pool
	err := s.query(func(ctx sdk.Context) (err error) {
		pool, err = s.app.AMMKeeper.GetPoolByID(ctx, poolID)
		return err
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewPoolResponse(pool))
}

// handleGetPair returns the pool for an asset pair in either order
func (s *Server) handleGetPair(c *gin.Context) {
	assetX, assetY := c.Param("asset_x"), c.Param("asset_y")

	var (
		pool  *ammtypes.Pool
		found bool
	)
	_ = s.query(func(ctx sdk.Context) error {
		pool, found = s.app.AMMKeeper.GetPool(ctx, assetX, assetY)
		return nil
	})
	if !found {
		s.respondError(c, ammtypes.ErrPoolNotFound.Wrapf("no pool for %s/%s", assetX, assetY))
		return
	}
	c.JSON(http.StatusOK, NewPoolResponse(pool))
}

// handleQuote simulates selling ?amount of ?asset_in into a pool.
func (s *Server) handleQuote(c *gin.Context) {
	poolID, ok := poolIDParam(c)
	if !ok {
		return
	}
	assetIn := c.Query("asset_in")
	if assetIn == "" {
		badRequest(c, "asset_in is required")
		return
	}
	amountIn, ok := math.NewIntFromString(c.Query("amount"))
	if !ok {
		badRequest(c, "amount must be an integer")
		return
	}

	var resp QuoteResponse
	err := s.query(func(ctx sdk.Context) error {
		pool, err := s.app.AMMKeeper.GetPoolByID(ctx, poolID)
		if err != nil {
			return err
		}
		_, _, assetOut, err := pool.Sides(assetIn)
		if err != nil {
			return err
		}
		out, err := s.app.AMMKeeper.QuoteSwap(ctx, poolID, assetIn, amountIn)
		if err != nil {
			return err
		}
		price, err := s.app.AMMKeeper.SpotPrice(ctx, poolID, assetIn)
		if err != nil {
			return err
		}
		resp = QuoteResponse{
			PoolID:    poolID,
			AssetIn:   assetIn,
			AmountIn:  amountIn.String(),
			AssetOut:  assetOut,
			AmountOut: out.String(),
			SpotPrice: price.String(),
		}
		return nil
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetShares(c *gin.Context) {
	poolID, ok := poolIDParam(c)
	if !ok {
		return
	}
	account, err := app.ResolveAccount(c.Param("account"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	var shares math.Int
	err = s.query(func(ctx sdk.Context) error {
		if _, err := s.app.AMMKeeper.GetPoolByID(ctx, poolID); err != nil {
			return err
		}
		shares, err = s.app.AMMKeeper.GetShares(ctx, poolID, account)
		return err
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, SharesResponse{PoolID: poolID, Account: account.String(), Shares: shares.String()})
}

func (s *Server) handleGetBalance(c *gin.Context) {
	denom := c.Param("denom")
	if err := assettypes.ValidateDenom(denom); err != nil {
		s.respondError(c, err)
		return
	}
	account, err := app.ResolveAccount(c.Param("account"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	var balance math.Int
	_ = s.query(func(ctx sdk.Context) error {
		balance = s.app.AssetKeeper.BalanceOf(ctx, denom, account)
		return nil
	})
	c.JSON(http.StatusOK, BalanceResponse{Denom: denom, Account: account.String(), Balance: balance.String()})
}

func poolIDParam(c *gin.Context) (uint64, bool) {
	poolID, err := strconv.ParseUint(c.Param("pool_id"), 10, 64)
	if err != nil || poolID == 0 {
		badRequest(c, "invalid pool id")
		return 0, false
	}
	return poolID, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Code: CodeInvalidRequest})
}

// respondError maps module errors onto HTTP statuses. Anything unrecognised
// is logged and reported as an internal error.
func (s *Server) respondError(c *gin.Context, err error) {
	switch {
	case errorsmod.IsOf(err, ammtypes.ErrPoolNotFound, ammtypes.ErrIndexOutOfRange):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: CodeNotFound})
	case errorsmod.IsOf(err,
		ammtypes.ErrInvalidPair,
		ammtypes.ErrInvalidAsset,
		ammtypes.ErrUnknownAsset,
		ammtypes.ErrZeroAmount,
		assettypes.ErrInvalidDenom,
	):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: CodeInvalidRequest})
	case errorsmod.IsOf(err, ammtypes.ErrEmptyPool):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: CodeEmptyPool})
	default:
		s.logger.Error("query failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error", Code: CodeInternal})
	}
}
