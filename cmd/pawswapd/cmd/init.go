package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	dbm "github.com/cosmos/cosmos-db"
	"github.com/spf13/cobra"

	"github.com/paw-chain/pawswap/app"
)

// InitCmd writes the default configuration and commits the genesis block.
func InitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration and initialize the chain",
		Long: `Write the default configuration to <home>/config/config.toml and commit
the genesis block. --genesis loads the state exported by "pawswapd export".

Example:
  pawswapd init --chain-id pawswap-testnet-1 --home ~/.pawswap
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			home, err := cmd.Flags().GetString(flagHome)
			if err != nil {
				return err
			}
			overwrite, _ := cmd.Flags().GetBool(flagOverwrite)
			chainID, _ := cmd.Flags().GetString(flagChainID)
			genesisFile, _ := cmd.Flags().GetString(flagGenesis)

			var genesis *app.GenesisState
			if genesisFile != "" {
				gs, err := app.ReadGenesisFile(genesisFile)
				if err != nil {
					return err
				}
				if chainID == "" {
					chainID = gs.ChainID
				}
				genesis = &gs
			}

			cfg := app.DefaultConfig()
			if chainID != "" {
				cfg.ChainID = chainID
			}
			if err := app.WriteConfig(home, cfg, overwrite); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}

			cfg, err = app.LoadConfig(home)
			if err != nil {
				return err
			}
			if overwrite && cfg.DB.Backend == string(dbm.GoLevelDBBackend) {
				if err := os.RemoveAll(filepath.Join(cfg.DB.Dir, app.AppName+".db")); err != nil {
					return fmt.Errorf("failed to reset state: %w", err)
				}
			}

			gs := app.NewDefaultGenesisState(cfg)
			if genesis != nil {
				gs = *genesis
			}

			logger, closer, err := app.NewLogger(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closer.Close()
			db, err := app.OpenDB(cfg.DB)
			if err != nil {
				return err
			}
			a, err := app.New(db, logger, cfg)
			if err != nil {
				db.Close()
				return err
			}
			defer a.Close()

			if err := a.InitChain(gs); err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{
				"chain_id": cfg.ChainID,
				"home":     home,
				"height":   a.LastBlockHeight(),
				"pools":    len(gs.AMM.Pools),
			})
		},
	}
	cmd.Flags().Bool(flagOverwrite, false, "overwrite the existing config and state")
	cmd.Flags().String(flagChainID, "", "chain id written to the config")
	cmd.Flags().String(flagGenesis, "", "genesis JSON file to initialize from")
	return cmd
}
