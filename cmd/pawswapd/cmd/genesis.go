package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/spf13/cobra"
)

// ExportCmd writes the state of both modules as genesis JSON.
func ExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export state to genesis JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			output, _ := cmd.Flags().GetString(flagOutput)
			return runBlock(cmd, false, func(n *node, ctx sdk.Context) error {
				gs, err := n.app.ExportGenesis(ctx)
				if err != nil {
					return err
				}
				if output == "" {
					return printJSON(cmd, gs)
				}
				bz, err := json.MarshalIndent(gs, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode genesis: %w", err)
				}
				if err := os.WriteFile(output, bz, 0o600); err != nil {
					return fmt.Errorf("failed to write genesis: %w", err)
				}
				n.logger.Info("exported genesis", "file", output, "height", n.app.LastBlockHeight())
				return nil
			})
		},
	}
	cmd.Flags().String(flagOutput, "", "write to this file instead of stdout")
	return cmd
}

// InvariantsCmd checks every registered invariant against the latest state.
func InvariantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invariants",
		Short: "Check all module invariants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBlock(cmd, false, func(n *node, ctx sdk.Context) error {
				broken := 0
				for _, res := range n.app.CheckInvariants(ctx) {
					status := "ok"
					if res.Broken {
						status = "broken"
						broken++
						n.logger.Error("invariant broken", "module", res.Module, "route", res.Route, "msg", res.Message)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s/%s: %s\n", res.Module, res.Route, status)
				}
				if broken > 0 {
					return fmt.Errorf("%d invariant(s) broken", broken)
				}
				return nil
			})
		},
	}
}
