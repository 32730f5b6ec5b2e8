package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cosmossdk.io/log"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/paw-chain/pawswap/app/health"
)

const flagCORS = "cors"

// NewMetricsRouter routes /metrics to the Prometheus handler and, when
// checker is set, the health endpoints.
func NewMetricsRouter(checker *health.Checker) *mux.Router {
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	if checker != nil {
		checker.RegisterRoutes(router)
	}
	return router
}

// StartPrometheusServer serves handler on addr in the background until ctx
// is done.
func StartPrometheusServer(ctx context.Context, addr string, handler http.Handler, logger log.Logger) *http.Server {
	server := &http.Server{
		Addr:              addr,
		Handler:           handlers.RecoveryHandler()(handler),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", "addr", addr, "err", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("serving metrics", "addr", addr)
	return server
}

// ServeMetricsCmd loads pool gauges from state and serves them, with the
// health endpoints, until interrupted.
func ServeMetricsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve-metrics",
		Short: "Serve Prometheus metrics and health checks for the current state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if listen, _ := cmd.Flags().GetString(flagListen); listen != "" {
				cfg.Metrics.ListenAddr = listen
			}
			cfg.Metrics.Enabled = true
			if err := cfg.Validate(); err != nil {
				return err
			}
			addr := cfg.Metrics.ListenAddr
			// served below with the health routes
			cfg.Metrics.Enabled = false

			n, err := openNode(cmd, cfg)
			if err != nil {
				return err
			}
			defer n.Close()

			if err := n.app.AMMKeeper.RefreshMetrics(n.app.NewBlockContext()); err != nil {
				return err
			}

			checker := health.NewChecker(n.logger, n.app, health.DefaultCacheDuration)
			var handler http.Handler = NewMetricsRouter(checker)
			if enableCORS, _ := cmd.Flags().GetBool(flagCORS); enableCORS {
				handler = handlers.CORS(
					handlers.AllowedOrigins([]string{"*"}),
					handlers.AllowedMethods([]string{http.MethodGet, http.MethodOptions}),
					handlers.AllowedHeaders([]string{"Content-Type"}),
				)(handler)
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			StartPrometheusServer(ctx, addr, handler, n.logger)

			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().String(flagListen, "", "listen address, overrides metrics.listen-addr")
	cmd.Flags().Bool(flagCORS, false, "allow cross-origin GET requests")
	return cmd
}
