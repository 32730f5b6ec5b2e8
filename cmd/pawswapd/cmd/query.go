package cmd

import (
	"strconv"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/spf13/cobra"

	"github.com/paw-chain/pawswap/api"
	"github.com/paw-chain/pawswap/app"
	ammtypes "github.com/paw-chain/pawswap/x/amm/types"
)

// QueryCmd groups the read-only commands.
func QueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "query",
		Aliases: []string{"q"},
		Short:   "Querying subcommands",
	}
	cmd.AddCommand(
		queryPoolCmd(),
		queryPairCmd(),
		queryPoolsCmd(),
		queryListCmd(),
		querySharesCmd(),
		queryBalanceCmd(),
		queryQuoteCmd(),
		queryParamsCmd(),
	)
	return cmd
}

func queryPoolCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pool [pool-id]",
		Short: "Show a pool by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			poolID, err := parsePoolID(args[0])
			if err != nil {
				return err
			}
			return runBlock(cmd, false, func(n *node, ctx sdk.Context) error {
				pool, err := n.app.AMMKeeper.GetPoolByID(ctx, poolID)
				if err != nil {
					return err
				}
				return printJSON(cmd, api.NewPoolResponse(pool))
			})
		},
	}
}

func queryPairCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pair [asset-x] [asset-y]",
		Short: "Show the pool for an asset pair in either order",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBlock(cmd, false, func(n *node, ctx sdk.Context) error {
				pool, found := n.app.AMMKeeper.GetPool(ctx, args[0], args[1])
				if !found {
					return ammtypes.ErrPoolNotFound.Wrapf("no pool for %s/%s", args[0], args[1])
				}
				return printJSON(cmd, api.NewPoolResponse(pool))
			})
		},
	}
}

func queryPoolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pools",
		Short: "List every pool in creation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBlock(cmd, false, func(n *node, ctx sdk.Context) error {
				pools, err := n.app.AMMKeeper.AllPools(ctx)
				if err != nil {
					return err
				}
				views := make([]api.PoolResponse, 0, len(pools))
				for i := range pools {
					views = append(views, api.NewPoolResponse(&pools[i]))
				}
				return printJSON(cmd, views)
			})
		},
	}
}

func queryListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [index]",
		Short: "Show the pool at a zero-based creation index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return err
			}
			return runBlock(cmd, false, func(n *node, ctx sdk.Context) error {
				pool, err := n.app.AMMKeeper.ListPools(ctx, index)
				if err != nil {
					return err
				}
				return printJSON(cmd, api.NewPoolResponse(pool))
			})
		},
	}
}

func querySharesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shares [pool-id] [account]",
		Short: "Show an account's pool shares",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			poolID, err := parsePoolID(args[0])
			if err != nil {
				return err
			}
			account, err := app.ResolveAccount(args[1])
			if err != nil {
				return err
			}
			return runBlock(cmd, false, func(n *node, ctx sdk.Context) error {
				if _, err := n.app.AMMKeeper.GetPoolByID(ctx, poolID); err != nil {
					return err
				}
				shares, err := n.app.AMMKeeper.GetShares(ctx, poolID, account)
				if err != nil {
					return err
				}
				return printJSON(cmd, map[string]string{
					"pool_id": args[0],
					"account": account.String(),
					"shares":  shares.String(),
				})
			})
		},
	}
}

func queryBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance [denom] [account]",
		Short: "Show an account's asset balance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := app.ResolveAccount(args[1])
			if err != nil {
				return err
			}
			return runBlock(cmd, false, func(n *node, ctx sdk.Context) error {
				return printJSON(cmd, map[string]string{
					"denom":   args[0],
					"account": account.String(),
					"balance": n.app.AssetKeeper.BalanceOf(ctx, args[0], account).String(),
				})
			})
		},
	}
}

func queryQuoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quote [pool-id] [input-asset] [amount]",
		Short: "Quote a swap without executing it",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			poolID, err := parsePoolID(args[0])
			if err != nil {
				return err
			}
			amount, err := parseAmount("amount", args[2])
			if err != nil {
				return err
			}
			return runBlock(cmd, false, func(n *node, ctx sdk.Context) error {
				output, err := n.app.AMMKeeper.QuoteSwap(ctx, poolID, args[1], amount)
				if err != nil {
					return err
				}
				price, err := n.app.AMMKeeper.SpotPrice(ctx, poolID, args[1])
				if err != nil {
					return err
				}
				return printJSON(cmd, map[string]string{
					"pool_id":    args[0],
					"asset_in":   args[1],
					"amount_in":  amount.String(),
					"amount_out": output.String(),
					"spot_price": price.String(),
				})
			})
		},
	}
}

func queryParamsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "params",
		Short: "Show the AMM parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBlock(cmd, false, func(n *node, ctx sdk.Context) error {
				params, err := n.app.AMMKeeper.GetParams(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd, params)
			})
		},
	}
}
