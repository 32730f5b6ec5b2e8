package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"cosmossdk.io/log"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.opentelemetry.io/otel/attribute"

	"github.com/paw-chain/pawswap/app"
	"github.com/paw-chain/pawswap/app/telemetry"
	ammtypes "github.com/paw-chain/pawswap/x/amm/types"
)

const (
	flagHome      = "home"
	flagFrom      = "from"
	flagMinOut    = "min-out"
	flagChainID   = "chain-id"
	flagOverwrite = "overwrite"
	flagGenesis   = "genesis"
	flagOutput    = "output"
	flagSeed      = "seed"
	flagSteps     = "steps"
	flagAccounts  = "accounts"
	flagListen    = "listen"
)

// NewRootCmd creates the pawswapd root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   app.AppName,
		Short: "PAW constant-product exchange",
		Long: `pawswapd runs a constant-product AMM over a local state database.
Every mutating command executes in one committed block.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SetOut(cmd.OutOrStdout())
			cmd.SetErr(cmd.ErrOrStderr())
			return nil
		},
	}
	rootCmd.PersistentFlags().String(flagHome, app.DefaultNodeHome, "directory for config and data")

	rootCmd.AddCommand(
		InitCmd(),
		MintCmd(),
		ApproveCmd(),
		CreatePoolCmd(),
		AddLiquidityCmd(),
		RemoveLiquidityCmd(),
		SwapCmd(),
		QueryCmd(),
		ExportCmd(),
		InvariantsCmd(),
		ScenarioCmd(),
		SimulateCmd(),
		ServeMetricsCmd(),
		ServeAPICmd(),
	)
	return rootCmd
}

func addTxFlags(fs *pflag.FlagSet) {
	fs.String(flagFrom, "", "account executing the command (name, bech32 or pool:<id>)")
}

// node is an opened application together with its configuration.
type node struct {
	cfg       app.Config
	logger    log.Logger
	app       *app.App
	telemetry *telemetry.Provider
	closer    io.Closer
}

func (n *node) Close() error {
	err := n.app.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if terr := n.telemetry.Shutdown(ctx); terr != nil {
		n.logger.Error("telemetry shutdown failed", "err", terr)
	}

	if cerr := n.closer.Close(); err == nil {
		err = cerr
	}
	return err
}

func loadConfig(cmd *cobra.Command) (app.Config, string, error) {
	home, err := cmd.Flags().GetString(flagHome)
	if err != nil {
		return app.Config{}, "", err
	}
	cfg, err := app.LoadConfig(home)
	if err != nil {
		return app.Config{}, "", err
	}
	return cfg, home, nil
}

// openNode opens the configured database and commits the default genesis if
// the chain has not been initialized yet.
func openNode(cmd *cobra.Command, cfg app.Config) (*node, error) {
	logger, closer, err := app.NewLogger(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	tp, err := telemetry.NewProvider(cfg.TelemetryProviderConfig())
	if err != nil {
		closer.Close()
		return nil, err
	}
	db, err := app.OpenDB(cfg.DB)
	if err != nil {
		_ = tp.Shutdown(context.Background())
		closer.Close()
		return nil, err
	}
	a, err := app.New(db, logger, cfg)
	if err != nil {
		db.Close()
		_ = tp.Shutdown(context.Background())
		closer.Close()
		return nil, err
	}

	n := &node{cfg: cfg, logger: logger, app: a, telemetry: tp, closer: closer}
	if !a.Initialized() {
		if err := a.InitChain(app.NewDefaultGenesisState(cfg)); err != nil {
			n.Close()
			return nil, err
		}
	}
	if cfg.Metrics.Enabled {
		StartPrometheusServer(cmd.Context(), cfg.Metrics.ListenAddr, NewMetricsRouter(nil), logger)
	}
	return n, nil
}

// runBlock executes fn in the next block inside a span named after the
// command. When commit is set and fn succeeds, invariants are checked and the
// block is committed.
func runBlock(cmd *cobra.Command, commit bool, fn func(n *node, ctx sdk.Context) error) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	n, err := openNode(cmd, cfg)
	if err != nil {
		return err
	}
	defer n.Close()

	kind := "query"
	if commit {
		kind = "tx"
	}
	ctx := n.app.NewBlockContext()
	spanCtx, span := telemetry.StartSpan(cmd.Context(), kind+"."+cmd.Name(),
		attribute.String("chain.id", n.app.ChainID()),
		attribute.Int64("block.height", ctx.BlockHeight()),
	)
	err = execBlock(cmd, n, ctx.WithContext(spanCtx), commit, fn)
	telemetry.EndSpan(span, err)
	return err
}

func execBlock(cmd *cobra.Command, n *node, ctx sdk.Context, commit bool, fn func(n *node, ctx sdk.Context) error) error {
	if err := fn(n, ctx); err != nil {
		if ammtypes.IsDefect(err) {
			n.logger.Error("accounting defect detected", "command", cmd.Name(), "height", ctx.BlockHeight(), "err", err)
		}
		return err
	}
	if !commit {
		return nil
	}
	if err := n.app.AssertInvariants(ctx); err != nil {
		n.logger.Error("invariant broken", "command", cmd.Name(), "height", ctx.BlockHeight(), "err", err)
		return err
	}
	n.app.Commit()
	return nil
}

func fromAccount(cmd *cobra.Command) (sdk.AccAddress, error) {
	from, err := cmd.Flags().GetString(flagFrom)
	if err != nil {
		return nil, err
	}
	if from == "" {
		return nil, fmt.Errorf("--%s is required", flagFrom)
	}
	return app.ResolveAccount(from)
}

func printJSON(cmd *cobra.Command, v any) error {
	bz, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(bz))
	return err
}
