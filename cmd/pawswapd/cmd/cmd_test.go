package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/paw-chain/pawswap/app"
)

func execute(t *testing.T, home string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append(args, "--"+flagHome, home))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func mustExecute(t *testing.T, home string, args ...string) string {
	t.Helper()
	out, err := execute(t, home, args...)
	require.NoError(t, err, "pawswapd %v", args)
	return out
}

func decode(t *testing.T, out string) map[string]any {
	t.Helper()
	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res), out)
	return res
}

func initHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	res := decode(t, mustExecute(t, home, "init", "--"+flagChainID, "pawswap-test-1"))
	require.Equal(t, "pawswap-test-1", res["chain_id"])
	require.EqualValues(t, 1, res["height"])
	return home
}

func TestInitCmd(t *testing.T) {
	home := initHome(t)
	require.FileExists(t, app.ConfigPath(home))

	cfg, err := app.LoadConfig(home)
	require.NoError(t, err)
	require.Equal(t, "pawswap-test-1", cfg.ChainID)

	_, err = execute(t, home, "init")
	require.Error(t, err)

	mustExecute(t, home, "mint", "udai", "alice", "5")
	mustExecute(t, home, "init", "--"+flagOverwrite, "--"+flagChainID, "pawswap-test-2")
	res := decode(t, mustExecute(t, home, "query", "balance", "udai", "alice"))
	require.Equal(t, "0", res["balance"])
}

func TestTxFlow(t *testing.T) {
	home := initHome(t)

	pool := decode(t, mustExecute(t, home, "create-pool", "uweth", "udai", "--"+flagFrom, "owner"))
	require.Equal(t, "udai", pool["asset_a"])
	require.Equal(t, "uweth", pool["asset_b"])
	require.EqualValues(t, 1, pool["id"])

	mustExecute(t, home, "mint", "udai", "alice", "10000")
	mustExecute(t, home, "mint", "uweth", "alice", "100")
	mustExecute(t, home, "approve", "udai", "alice", "1", "10000")
	mustExecute(t, home, "approve", "uweth", "alice", "pool:1", "100")

	res := decode(t, mustExecute(t, home, "add-liquidity", "1", "10000", "100", "--"+flagFrom, "alice"))
	require.Equal(t, "1000", res["shares_minted"])

	mustExecute(t, home, "mint", "udai", "bob", "1000")
	mustExecute(t, home, "approve", "udai", "bob", "1", "1000")

	quote := decode(t, mustExecute(t, home, "query", "quote", "1", "udai", "1000"))
	require.Equal(t, "9", quote["amount_out"])
	require.Equal(t, "0.010000000000000000", quote["spot_price"])

	_, err := execute(t, home, "swap", "1", "udai", "1000", "--"+flagMinOut, "10", "--"+flagFrom, "bob")
	require.ErrorContains(t, err, "below minimum")

	res = decode(t, mustExecute(t, home, "swap", "1", "udai", "1000", "--"+flagMinOut, "9", "--"+flagFrom, "bob"))
	require.Equal(t, "9", res["amount_out"])
	require.Equal(t, "uweth", res["asset_out"])

	pool = decode(t, mustExecute(t, home, "query", "pool", "1"))
	require.Equal(t, "11000", pool["reserve_a"])
	require.Equal(t, "91", pool["reserve_b"])

	pool = decode(t, mustExecute(t, home, "query", "pair", "uweth", "udai"))
	require.EqualValues(t, 1, pool["id"])
	pool = decode(t, mustExecute(t, home, "query", "list", "0"))
	require.EqualValues(t, 1, pool["id"])
	_, err = execute(t, home, "query", "list", "1")
	require.ErrorContains(t, err, "out of range")

	var pools []map[string]any
	require.NoError(t, json.Unmarshal([]byte(mustExecute(t, home, "query", "pools")), &pools))
	require.Len(t, pools, 1)

	res = decode(t, mustExecute(t, home, "query", "balance", "uweth", "bob"))
	require.Equal(t, "9", res["balance"])

	res = decode(t, mustExecute(t, home, "remove-liquidity", "1", "250", "--"+flagFrom, "alice"))
	require.Equal(t, "2750", res["amount_a"])
	require.Equal(t, "22", res["amount_b"])
	res = decode(t, mustExecute(t, home, "query", "shares", "1", "alice"))
	require.Equal(t, "750", res["shares"])

	out := mustExecute(t, home, "invariants")
	require.Contains(t, out, "amm/pool-reserves: ok")
	require.Contains(t, out, "asset/total-supply: ok")
}

func TestTxErrors(t *testing.T) {
	home := initHome(t)

	_, err := execute(t, home, "create-pool", "udai", "uweth")
	require.ErrorContains(t, err, "--from is required")

	_, err = execute(t, home, "add-liquidity", "x", "1", "1", "--"+flagFrom, "alice")
	require.ErrorContains(t, err, "invalid pool id")

	_, err = execute(t, home, "mint", "udai", "alice", "ten")
	require.ErrorContains(t, err, "invalid amount")

	_, err = execute(t, home, "swap", "1", "udai", "5", "--"+flagFrom, "alice")
	require.ErrorContains(t, err, "pool not found")

	_, err = execute(t, home, "create-pool", "udai", "udai", "--"+flagFrom, "alice")
	require.ErrorContains(t, err, "invalid asset pair")
}

func TestExportAndInitFromGenesis(t *testing.T) {
	home := initHome(t)
	mustExecute(t, home, "create-pool", "udai", "uweth", "--"+flagFrom, "alice")
	mustExecute(t, home, "mint", "udai", "alice", "400")
	mustExecute(t, home, "mint", "uweth", "alice", "900")
	mustExecute(t, home, "approve", "udai", "alice", "1", "400")
	mustExecute(t, home, "approve", "uweth", "alice", "1", "900")
	mustExecute(t, home, "add-liquidity", "1", "400", "900", "--"+flagFrom, "alice")

	genesisFile := filepath.Join(t.TempDir(), "genesis.json")
	mustExecute(t, home, "export", "--"+flagOutput, genesisFile)
	gs, err := app.ReadGenesisFile(genesisFile)
	require.NoError(t, err)
	require.NoError(t, gs.Validate())
	require.Equal(t, "pawswap-test-1", gs.ChainID)
	require.Len(t, gs.AMM.Pools, 1)

	other := t.TempDir()
	res := decode(t, mustExecute(t, other, "init", "--"+flagGenesis, genesisFile))
	require.Equal(t, "pawswap-test-1", res["chain_id"])
	require.EqualValues(t, 1, res["pools"])

	res = decode(t, mustExecute(t, other, "query", "shares", "1", "alice"))
	require.Equal(t, "600", res["shares"])

	stdout := mustExecute(t, other, "export")
	var exported app.GenesisState
	require.NoError(t, json.Unmarshal([]byte(stdout), &exported))
	require.Equal(t, gs.AMM.NextPoolId, exported.AMM.NextPoolId)
}

func TestScenarioCmd(t *testing.T) {
	home := initHome(t)
	out := mustExecute(t, home, "scenario", filepath.Join("..", "..", "..", "app", "testdata", "basic.yaml"))
	require.Contains(t, out, "received 9")
	require.Contains(t, out, "returned 2750udai and 22uweth")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("steps:\n  - {action: swap, from: bob, pool: 1, asset: udai, amount: 1000, min-out: 1000}\n"), 0o600))
	out, err := execute(t, home, "scenario", bad)
	require.ErrorContains(t, err, "below minimum")
	require.Contains(t, out, "error")
}

func TestSimulateCmd(t *testing.T) {
	home := initHome(t)
	out := mustExecute(t, home, "simulate", "--"+flagSeed, "3", "--"+flagSteps, "150")
	require.Contains(t, out, "swap")

	_, err := execute(t, home, "simulate", "--"+flagAccounts, "0", "--"+flagSteps, "5")
	require.Error(t, err)

	// the configured database is untouched
	pools := mustExecute(t, home, "query", "pools")
	require.JSONEq(t, "[]", pools)
}
