package keeper

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"sync"

	"cosmossdk.io/math"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/paw-chain/pawswap/x/amm/types"
)

// AMMMetrics holds all Prometheus metrics for the AMM module
type AMMMetrics struct {
	// Swap metrics
	SwapsTotal        *prometheus.CounterVec
	SwapVolume        *prometheus.CounterVec
	SwapFeesCollected *prometheus.CounterVec

	// Liquidity metrics
	LiquidityAdded   *prometheus.CounterVec
	LiquidityRemoved *prometheus.CounterVec
	PoolReserves     *prometheus.GaugeVec
	PoolTotalShares  *prometheus.GaugeVec

	// Pool metrics
	PoolsTotal       prometheus.Gauge
	PoolCreationRate prometheus.Counter
}

var (
	ammMetricsOnce sync.Once
	ammMetrics     *AMMMetrics
)

// NewAMMMetrics creates and registers AMM metrics (singleton pattern)
func NewAMMMetrics() *AMMMetrics {
	ammMetricsOnce.Do(func() {
		ammMetrics = &AMMMetrics{
			SwapsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "pawswap",
					Subsystem: "amm",
					Name:      "swaps_total",
					Help:      "Total number of swaps attempted by outcome",
				},
				[]string{"pool_id", "asset_in", "status"},
			),
			SwapVolume: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "pawswap",
					Subsystem: "amm",
					Name:      "swap_volume_total",
					Help:      "Total swap input volume in base units",
				},
				[]string{"pool_id", "asset_in"},
			),
			SwapFeesCollected: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "pawswap",
					Subsystem: "amm",
					Name:      "swap_fees_total",
					Help:      "Total swap fees retained by pools",
				},
				[]string{"pool_id", "asset"},
			),
			LiquidityAdded: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "pawswap",
					Subsystem: "amm",
					Name:      "liquidity_added_total",
					Help:      "Total liquidity deposited in base units",
				},
				[]string{"pool_id", "asset"},
			),
			LiquidityRemoved: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "pawswap",
					Subsystem: "amm",
					Name:      "liquidity_removed_total",
					Help:      "Total liquidity withdrawn in base units",
				},
				[]string{"pool_id", "asset"},
			),
			PoolReserves: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "pawswap",
					Subsystem: "amm",
					Name:      "pool_reserves",
					Help:      "Current pool reserves",
				},
				[]string{"pool_id", "asset"},
			),
			PoolTotalShares: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "pawswap",
					Subsystem: "amm",
					Name:      "pool_total_shares",
					Help:      "Outstanding liquidity shares per pool",
				},
				[]string{"pool_id"},
			),
			PoolsTotal: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "pawswap",
					Subsystem: "amm",
					Name:      "pools_total",
					Help:      "Number of registered pools",
				},
			),
			PoolCreationRate: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "pawswap",
					Subsystem: "amm",
					Name:      "pools_created_total",
					Help:      "Total pools created",
				},
			),
		}
	})
	return ammMetrics
}

const (
	swapStatusSuccess = "success"
	swapStatusFailed  = "failed"

	// swapAssetUnknown labels failed swaps of assets outside the pool
	swapAssetUnknown = "unknown"
)

func (m *AMMMetrics) recordPoolCreated(count uint64) {
	if m == nil {
		return
	}
	m.PoolCreationRate.Inc()
	m.PoolsTotal.Set(float64(count))
}

// recordSwap counts a filled swap. The fee is charged in the input asset.
func (m *AMMMetrics) recordSwap(poolID uint64, assetIn string, amountIn, fee math.Int) {
	if m == nil {
		return
	}
	id := strconv.FormatUint(poolID, 10)
	m.SwapsTotal.WithLabelValues(id, assetIn, swapStatusSuccess).Inc()
	m.SwapVolume.WithLabelValues(id, assetIn).Add(intToFloat(amountIn))
	m.SwapFeesCollected.WithLabelValues(id, assetIn).Add(intToFloat(fee))
}

func (m *AMMMetrics) recordSwapFailure(poolID uint64, assetIn string) {
	if m == nil {
		return
	}
	m.SwapsTotal.WithLabelValues(strconv.FormatUint(poolID, 10), assetIn, swapStatusFailed).Inc()
}

func (m *AMMMetrics) recordLiquidityAdded(pool *types.Pool, amountA, amountB math.Int) {
	if m == nil {
		return
	}
	id := strconv.FormatUint(pool.Id, 10)
	m.LiquidityAdded.WithLabelValues(id, pool.AssetA).Add(intToFloat(amountA))
	m.LiquidityAdded.WithLabelValues(id, pool.AssetB).Add(intToFloat(amountB))
	m.recordPoolState(pool)
}

func (m *AMMMetrics) recordLiquidityRemoved(pool *types.Pool, amountA, amountB math.Int) {
	if m == nil {
		return
	}
	id := strconv.FormatUint(pool.Id, 10)
	m.LiquidityRemoved.WithLabelValues(id, pool.AssetA).Add(intToFloat(amountA))
	m.LiquidityRemoved.WithLabelValues(id, pool.AssetB).Add(intToFloat(amountB))
	m.recordPoolState(pool)
}

func (m *AMMMetrics) recordPoolState(pool *types.Pool) {
	if m == nil {
		return
	}
	id := strconv.FormatUint(pool.Id, 10)
	m.PoolReserves.WithLabelValues(id, pool.AssetA).Set(intToFloat(pool.ReserveA))
	m.PoolReserves.WithLabelValues(id, pool.AssetB).Set(intToFloat(pool.ReserveB))
	m.PoolTotalShares.WithLabelValues(id).Set(intToFloat(pool.TotalShares))
}

// intToFloat converts for display. Precision loss is acceptable for metrics.
func intToFloat(x math.Int) float64 {
	if x.IsNil() {
		return 0
	}
	f, _ := new(big.Float).SetInt(x.BigInt()).Float64()
	return f
}

// RefreshMetrics sets the pool gauges from the current state. Counters are
// process local and are not restored.
func (k Keeper) RefreshMetrics(ctx context.Context) error {
	if k.metrics == nil {
		return nil
	}
	err := k.IteratePools(ctx, func(_ uint64, pool types.Pool) bool {
		k.metrics.recordPoolState(&pool)
		return false
	})
	if err != nil {
		return fmt.Errorf("RefreshMetrics: %w", err)
	}
	k.metrics.PoolsTotal.Set(float64(k.PoolCount(ctx)))
	return nil
}
