// Package health reports the health of a pawswap state database.
//
// The checker exposes three endpoints:
//   - /health          liveness
//   - /health/ready    committed state and invariants
//   - /health/detailed readiness plus per-pool state
package health

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"cosmossdk.io/log"
	"github.com/gorilla/mux"

	"github.com/paw-chain/pawswap/app"
)

// Status represents the health status of a component
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// ComponentHealth represents the health status of a single component
type ComponentHealth struct {
	Status    Status         `json:"status"`
	Message   string         `json:"message,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Metrics   map[string]any `json:"metrics,omitempty"`
}

// HealthCheck represents the overall health check response
type HealthCheck struct {
	Status     Status                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	ChainID    string                     `json:"chain_id"`
	Height     int64                      `json:"height"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
}

// Checker performs health checks against an App. Checks are serialized
// because the App's working state is not safe for concurrent use.
type Checker struct {
	logger log.Logger
	app    *app.App

	mu            sync.Mutex
	lastCheck     time.Time
	cachedHealth  *HealthCheck
	cacheDuration time.Duration
}

// DefaultCacheDuration is how long a non-detailed result is reused.
const DefaultCacheDuration = 5 * time.Second

// NewChecker creates a new health checker
func NewChecker(logger log.Logger, a *app.App, cacheDuration time.Duration) *Checker {
	return &Checker{
		logger:        logger.With("module", "health"),
		app:           a,
		cacheDuration: cacheDuration,
	}
}

// Check runs the state and invariant checks, and the pool check when
// detailed is set.
func (c *Checker) Check(detailed bool) *HealthCheck {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !detailed && c.cachedHealth != nil && time.Since(c.lastCheck) < c.cacheDuration {
		return c.cachedHealth
	}

	health := &HealthCheck{
		Timestamp:  time.Now(),
		ChainID:    c.app.ChainID(),
		Height:     c.app.LastBlockHeight(),
		Components: make(map[string]ComponentHealth),
	}

	health.Components["state"] = c.checkState()
	if health.Height > 0 {
		health.Components["invariants"] = c.checkInvariants()
		if detailed {
			health.Components["pools"] = c.checkPools()
		}
	}

	health.Status = calculateOverallStatus(health.Components)

	if !detailed {
		c.lastCheck = time.Now()
		c.cachedHealth = health
	}
	return health
}

func (c *Checker) checkState() ComponentHealth {
	height := c.app.LastBlockHeight()
	if height == 0 {
		return ComponentHealth{
			Status:    StatusUnhealthy,
			Message:   "chain not initialized",
			Timestamp: time.Now(),
		}
	}
	return ComponentHealth{
		Status:    StatusHealthy,
		Message:   "state committed",
		Timestamp: time.Now(),
		Metrics:   map[string]any{"last_block_height": height},
	}
}

func (c *Checker) checkInvariants() ComponentHealth {
	start := time.Now()
	results := c.app.CheckInvariants(c.app.NewBlockContext())

	routes := make(map[string]string, len(results))
	broken := 0
	for _, res := range results {
		status := "ok"
		if res.Broken {
			status = "broken"
			broken++
			c.logger.Error("invariant broken", "module", res.Module, "route", res.Route, "msg", res.Message)
		}
		routes[res.Module+"/"+res.Route] = status
	}

	metrics := map[string]any{
		"routes":           routes,
		"duration_ms":      time.Since(start).Milliseconds(),
		"invariants_total": len(results),
	}
	if broken > 0 {
		return ComponentHealth{
			Status:    StatusUnhealthy,
			Message:   fmt.Sprintf("%d invariant(s) broken", broken),
			Timestamp: time.Now(),
			Metrics:   metrics,
		}
	}
	return ComponentHealth{
		Status:    StatusHealthy,
		Message:   "all invariants hold",
		Timestamp: time.Now(),
		Metrics:   metrics,
	}
}

func (c *Checker) checkPools() ComponentHealth {
	pools, err := c.app.AMMKeeper.AllPools(c.app.NewBlockContext())
	if err != nil {
		return ComponentHealth{
			Status:    StatusUnhealthy,
			Message:   fmt.Sprintf("failed to read pools: %v", err),
			Timestamp: time.Now(),
		}
	}

	seeded := 0
	reserves := make(map[string]map[string]string, len(pools))
	for _, pool := range pools {
		if pool.IsSeeded() {
			seeded++
		}
		reserves[fmt.Sprintf("%d", pool.Id)] = map[string]string{
			pool.AssetA:    pool.ReserveA.String(),
			pool.AssetB:    pool.ReserveB.String(),
			"total_shares": pool.TotalShares.String(),
		}
	}

	status := StatusHealthy
	message := fmt.Sprintf("%d pools, %d with liquidity", len(pools), seeded)
	if len(pools) > 0 && seeded == 0 {
		status = StatusDegraded
		message = "no pool holds liquidity"
	}
	return ComponentHealth{
		Status:    status,
		Message:   message,
		Timestamp: time.Now(),
		Metrics: map[string]any{
			"pools_total":  len(pools),
			"pools_seeded": seeded,
			"reserves":     reserves,
		},
	}
}

// calculateOverallStatus determines the overall health status based on component statuses
func calculateOverallStatus(components map[string]ComponentHealth) Status {
	hasDegraded := false
	for _, component := range components {
		switch component.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			hasDegraded = true
		}
	}
	if hasDegraded {
		return StatusDegraded
	}
	return StatusHealthy
}

// RegisterRoutes registers health check endpoints on router.
func (c *Checker) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", c.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/health/ready", c.handleHealthReady).Methods(http.MethodGet)
	router.HandleFunc("/health/detailed", c.handleHealthDetailed).Methods(http.MethodGet)
}

func (c *Checker) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (c *Checker) handleHealthReady(w http.ResponseWriter, _ *http.Request) {
	c.respond(w, c.Check(false))
}

func (c *Checker) handleHealthDetailed(w http.ResponseWriter, _ *http.Request) {
	c.respond(w, c.Check(true))
}

// respond answers 503 only when unhealthy; degraded is still ready.
func (c *Checker) respond(w http.ResponseWriter, health *HealthCheck) {
	statusCode := http.StatusOK
	if health.Status == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}
	writeJSON(w, statusCode, health)
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}
