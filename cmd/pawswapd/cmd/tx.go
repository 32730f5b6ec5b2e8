package cmd

import (
	"fmt"
	"strconv"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/spf13/cobra"

	"github.com/paw-chain/pawswap/api"
	"github.com/paw-chain/pawswap/app"
)

func parseAmount(name, s string) (math.Int, error) {
	amount, ok := math.NewIntFromString(s)
	if !ok {
		return math.Int{}, fmt.Errorf("invalid %s %q", name, s)
	}
	return amount, nil
}

func parsePoolID(s string) (uint64, error) {
	poolID, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid pool id %q: %w", s, err)
	}
	return poolID, nil
}

// MintCmd credits new units of a denom to an account.
func MintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mint [denom] [account] [amount]",
		Short: "Mint asset units to an account",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := app.ResolveAccount(args[1])
			if err != nil {
				return err
			}
			amount, err := parseAmount("amount", args[2])
			if err != nil {
				return err
			}
			return runBlock(cmd, true, func(n *node, ctx sdk.Context) error {
				if err := n.app.AssetKeeper.Mint(ctx, args[0], account, amount); err != nil {
					return err
				}
				return printJSON(cmd, map[string]string{
					"denom":   args[0],
					"account": account.String(),
					"balance": n.app.AssetKeeper.BalanceOf(ctx, args[0], account).String(),
				})
			})
		},
	}
}

// ApproveCmd sets the allowance of a spender over an owner's denom. A numeric
// spender names a pool.
func ApproveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve [denom] [owner] [spender|pool-id] [amount]",
		Short: "Allow a spender or pool to pull an owner's asset",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := app.ResolveAccount(args[1])
			if err != nil {
				return err
			}
			spender, err := resolveSpender(args[2])
			if err != nil {
				return err
			}
			amount, err := parseAmount("amount", args[3])
			if err != nil {
				return err
			}
			return runBlock(cmd, true, func(n *node, ctx sdk.Context) error {
				if err := n.app.AssetKeeper.Approve(ctx, args[0], owner, spender, amount); err != nil {
					return err
				}
				return printJSON(cmd, map[string]string{
					"denom":     args[0],
					"owner":     owner.String(),
					"spender":   spender.String(),
					"allowance": amount.String(),
				})
			})
		},
	}
}

func resolveSpender(s string) (sdk.AccAddress, error) {
	if poolID, err := strconv.ParseUint(s, 10, 64); err == nil {
		return app.ResolveAccount(fmt.Sprintf("%s%d", app.PoolAccountPrefix, poolID))
	}
	return app.ResolveAccount(s)
}

// CreatePoolCmd registers a pool for an asset pair.
func CreatePoolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-pool [asset-x] [asset-y]",
		Short: "Create a pool for an asset pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := fromAccount(cmd)
			if err != nil {
				return err
			}
			return runBlock(cmd, true, func(n *node, ctx sdk.Context) error {
				pool, err := n.app.AMMKeeper.CreatePool(ctx, from, args[0], args[1])
				if err != nil {
					return err
				}
				return printJSON(cmd, api.NewPoolResponse(pool))
			})
		},
	}
	addTxFlags(cmd.Flags())
	return cmd
}

// AddLiquidityCmd deposits both assets into a pool.
func AddLiquidityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-liquidity [pool-id] [amount-a] [amount-b]",
		Short: "Deposit liquidity into a pool",
		Long: `Deposit amount-a of the pool's first asset and amount-b of its second.
The pool must be approved to pull both amounts from --from.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := fromAccount(cmd)
			if err != nil {
				return err
			}
			poolID, err := parsePoolID(args[0])
			if err != nil {
				return err
			}
			amountA, err := parseAmount("amount-a", args[1])
			if err != nil {
				return err
			}
			amountB, err := parseAmount("amount-b", args[2])
			if err != nil {
				return err
			}
			return runBlock(cmd, true, func(n *node, ctx sdk.Context) error {
				minted, err := n.app.AMMKeeper.AddLiquidity(ctx, from, poolID, amountA, amountB)
				if err != nil {
					return err
				}
				return printJSON(cmd, map[string]string{
					"pool_id":       args[0],
					"shares_minted": minted.String(),
				})
			})
		},
	}
	addTxFlags(cmd.Flags())
	return cmd
}

// RemoveLiquidityCmd burns pool shares for their proportional reserves.
func RemoveLiquidityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove-liquidity [pool-id] [shares]",
		Short: "Withdraw liquidity from a pool",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := fromAccount(cmd)
			if err != nil {
				return err
			}
			poolID, err := parsePoolID(args[0])
			if err != nil {
				return err
			}
			shares, err := parseAmount("shares", args[1])
			if err != nil {
				return err
			}
			return runBlock(cmd, true, func(n *node, ctx sdk.Context) error {
				amountA, amountB, err := n.app.AMMKeeper.RemoveLiquidity(ctx, from, poolID, shares)
				if err != nil {
					return err
				}
				return printJSON(cmd, map[string]string{
					"pool_id":  args[0],
					"amount_a": amountA.String(),
					"amount_b": amountB.String(),
				})
			})
		},
	}
	addTxFlags(cmd.Flags())
	return cmd
}

// SwapCmd sells an exact input amount to a pool.
func SwapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swap [pool-id] [input-asset] [amount]",
		Short: "Swap an exact input amount through a pool",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := fromAccount(cmd)
			if err != nil {
				return err
			}
			poolID, err := parsePoolID(args[0])
			if err != nil {
				return err
			}
			amount, err := parseAmount("amount", args[2])
			if err != nil {
				return err
			}
			minOutStr, err := cmd.Flags().GetString(flagMinOut)
			if err != nil {
				return err
			}
			minOut, err := parseAmount(flagMinOut, minOutStr)
			if err != nil {
				return err
			}
			return runBlock(cmd, true, func(n *node, ctx sdk.Context) error {
				pool, err := n.app.AMMKeeper.GetPoolByID(ctx, poolID)
				if err != nil {
					return err
				}
				_, _, assetOut, err := pool.Sides(args[1])
				if err != nil {
					return err
				}
				output, err := n.app.AMMKeeper.Swap(ctx, from, poolID, args[1], amount, minOut)
				if err != nil {
					return err
				}
				return printJSON(cmd, map[string]string{
					"pool_id":    args[0],
					"asset_in":   args[1],
					"amount_in":  amount.String(),
					"asset_out":  assetOut,
					"amount_out": output.String(),
				})
			})
		},
	}
	addTxFlags(cmd.Flags())
	cmd.Flags().String(flagMinOut, "0", "minimum acceptable output amount")
	return cmd
}
