package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"go.opentelemetry.io/otel/attribute"
	"gopkg.in/yaml.v3"

	"github.com/paw-chain/pawswap/app/telemetry"
)

// Scenario actions
const (
	ActionMint            = "mint"
	ActionApprove         = "approve"
	ActionCreatePool      = "create-pool"
	ActionAddLiquidity    = "add-liquidity"
	ActionRemoveLiquidity = "remove-liquidity"
	ActionSwap            = "swap"
)

// Scenario is a scripted sequence of steps, each executed in its own block.
type Scenario struct {
	Name  string         `yaml:"name"`
	Steps []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one scripted action. Which fields are read depends on
// Action; account fields accept anything ResolveAccount does.
type ScenarioStep struct {
	Action string `yaml:"action"`
	From   string `yaml:"from"`

	Denom   string `yaml:"denom"`
	Account string `yaml:"account"`
	Spender string `yaml:"spender"`

	AssetX string `yaml:"asset-x"`
	AssetY string `yaml:"asset-y"`
	Asset  string `yaml:"asset"`
	Pool   uint64 `yaml:"pool"`

	Amount  string `yaml:"amount"`
	AmountA string `yaml:"amount-a"`
	AmountB string `yaml:"amount-b"`
	Shares  string `yaml:"shares"`
	MinOut  string `yaml:"min-out"`

	// ExpectError, when set, requires the step to fail with an error whose
	// message contains it.
	ExpectError string `yaml:"expect-error"`
}

// StepResult records the outcome of one scenario step.
type StepResult struct {
	Index  int
	Action string
	Height int64
	Output string
	Err    error
}

func (r StepResult) String() string {
	if r.Err != nil {
		return fmt.Sprintf("#%d %s @%d: error: %v", r.Index, r.Action, r.Height, r.Err)
	}
	return fmt.Sprintf("#%d %s @%d: %s", r.Index, r.Action, r.Height, r.Output)
}

// LoadScenario reads a YAML scenario file.
func LoadScenario(path string) (Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("failed to open scenario: %w", err)
	}
	defer f.Close()
	return DecodeScenario(f)
}

// DecodeScenario decodes a YAML scenario, rejecting unknown fields.
func DecodeScenario(r io.Reader) (Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return Scenario{}, fmt.Errorf("failed to decode scenario: %w", err)
	}
	if len(sc.Steps) == 0 {
		return Scenario{}, fmt.Errorf("scenario %q has no steps", sc.Name)
	}
	return sc, nil
}

// ParseScenario decodes a YAML scenario held in memory.
func ParseScenario(bz []byte) (Scenario, error) {
	return DecodeScenario(bytes.NewReader(bz))
}

// RunScenario executes every step in its own block, checking invariants
// before each commit. It stops at the first step whose outcome differs from
// its expectation and returns the results so far.
func (app *App) RunScenario(goCtx context.Context, sc Scenario) (results []StepResult, err error) {
	goCtx, span := telemetry.StartSpan(goCtx, "scenario.run",
		attribute.String("scenario.name", sc.Name),
		attribute.Int("scenario.steps", len(sc.Steps)),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	results = make([]StepResult, 0, len(sc.Steps))
	for i, step := range sc.Steps {
		res, err := app.runStep(goCtx, i, step)
		results = append(results, res)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// runStep executes one step in its own block and commits it once the
// outcome matches the expectation and invariants hold.
func (app *App) runStep(goCtx context.Context, i int, step ScenarioStep) (StepResult, error) {
	ctx := app.NewBlockContext()
	goCtx, span := telemetry.StartSpan(goCtx, "scenario."+step.Action,
		attribute.Int("step.index", i),
		attribute.Int64("block.height", ctx.BlockHeight()),
	)
	out, err := app.applyStep(ctx.WithContext(goCtx), step)
	telemetry.EndSpan(span, err)
	res := StepResult{Index: i, Action: step.Action, Height: ctx.BlockHeight(), Output: out, Err: err}

	switch {
	case step.ExpectError == "" && err != nil:
		return res, fmt.Errorf("step %d %s failed: %w", i, step.Action, err)
	case step.ExpectError != "" && err == nil:
		return res, fmt.Errorf("step %d %s succeeded, expected error %q", i, step.Action, step.ExpectError)
	case step.ExpectError != "" && !strings.Contains(strings.ToLower(err.Error()), strings.ToLower(step.ExpectError)):
		return res, fmt.Errorf("step %d %s: expected error %q, got: %w", i, step.Action, step.ExpectError, err)
	}

	if err := app.AssertInvariants(ctx); err != nil {
		return res, fmt.Errorf("step %d %s: %w", i, step.Action, err)
	}
	app.Commit()
	return res, nil
}

func (app *App) applyStep(ctx sdk.Context, step ScenarioStep) (string, error) {
	switch step.Action {
	case ActionMint:
		account, err := ResolveAccount(step.Account)
		if err != nil {
			return "", err
		}
		amount, err := parseAmount("amount", step.Amount)
		if err != nil {
			return "", err
		}
		if err := app.AssetKeeper.Mint(ctx, step.Denom, account, amount); err != nil {
			return "", err
		}
		return fmt.Sprintf("minted %s%s to %s", amount, step.Denom, account), nil

	case ActionApprove:
		owner, err := ResolveAccount(firstNonEmpty(step.Account, step.From))
		if err != nil {
			return "", err
		}
		spender, err := ResolveAccount(step.Spender)
		if err != nil {
			return "", err
		}
		amount, err := parseAmount("amount", step.Amount)
		if err != nil {
			return "", err
		}
		if err := app.AssetKeeper.Approve(ctx, step.Denom, owner, spender, amount); err != nil {
			return "", err
		}
		return fmt.Sprintf("approved %s%s for %s", amount, step.Denom, spender), nil

	case ActionCreatePool:
		from, err := ResolveAccount(step.From)
		if err != nil {
			return "", err
		}
		pool, err := app.AMMKeeper.CreatePool(ctx, from, step.AssetX, step.AssetY)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("created pool %d %s/%s at %s", pool.Id, pool.AssetA, pool.AssetB, pool.GetAddress()), nil

	case ActionAddLiquidity:
		from, err := ResolveAccount(step.From)
		if err != nil {
			return "", err
		}
		amountA, err := parseAmount("amount-a", step.AmountA)
		if err != nil {
			return "", err
		}
		amountB, err := parseAmount("amount-b", step.AmountB)
		if err != nil {
			return "", err
		}
		minted, err := app.AMMKeeper.AddLiquidity(ctx, from, step.Pool, amountA, amountB)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("minted %s shares", minted), nil

	case ActionRemoveLiquidity:
		from, err := ResolveAccount(step.From)
		if err != nil {
			return "", err
		}
		shares, err := parseAmount("shares", step.Shares)
		if err != nil {
			return "", err
		}
		amountA, amountB, err := app.AMMKeeper.RemoveLiquidity(ctx, from, step.Pool, shares)
		if err != nil {
			return "", err
		}
		pool, err := app.AMMKeeper.GetPoolByID(ctx, step.Pool)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("returned %s%s and %s%s", amountA, pool.AssetA, amountB, pool.AssetB), nil

	case ActionSwap:
		from, err := ResolveAccount(step.From)
		if err != nil {
			return "", err
		}
		amount, err := parseAmount("amount", step.Amount)
		if err != nil {
			return "", err
		}
		minOut := math.ZeroInt()
		if step.MinOut != "" {
			if minOut, err = parseAmount("min-out", step.MinOut); err != nil {
				return "", err
			}
		}
		output, err := app.AMMKeeper.Swap(ctx, from, step.Pool, step.Asset, amount, minOut)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("received %s", output), nil

	default:
		return "", fmt.Errorf("unknown action %q", step.Action)
	}
}

func parseAmount(field, s string) (math.Int, error) {
	amount, ok := math.NewIntFromString(strings.TrimSpace(s))
	if !ok {
		return math.Int{}, fmt.Errorf("invalid %s %q", field, s)
	}
	return amount, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
