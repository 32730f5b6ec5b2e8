package cmd

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/paw-chain/pawswap/api"
)

const flagRateLimit = "rate-limit"

// ServeAPICmd serves the REST query API, with Prometheus metrics at
// /metrics, over the current state until interrupted.
func ServeAPICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve-api",
		Short: "Serve read-only pool and balance queries over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if listen, _ := cmd.Flags().GetString(flagListen); listen != "" {
				cfg.API.ListenAddr = listen
			}
			if cmd.Flags().Changed(flagRateLimit) {
				cfg.API.RateLimitRPS, _ = cmd.Flags().GetInt(flagRateLimit)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			n, err := openNode(cmd, cfg)
			if err != nil {
				return err
			}
			defer n.Close()

			if err := n.app.AMMKeeper.RefreshMetrics(n.app.NewBlockContext()); err != nil {
				return err
			}
			srv, err := api.NewServer(n.logger, n.app, cfg.API)
			if err != nil {
				return err
			}
			srv.RegisterMetrics(promhttp.Handler())
			return srv.Start(cmd.Context())
		},
	}
	cmd.Flags().String(flagListen, "", "listen address, overrides api.listen-addr")
	cmd.Flags().Int(flagRateLimit, 0, "requests per second per client, overrides api.rate-limit-rps")
	return cmd
}
