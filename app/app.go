package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"

	ammkeeper "github.com/paw-chain/pawswap/x/amm/keeper"
	ammtypes "github.com/paw-chain/pawswap/x/amm/types"
	assetkeeper "github.com/paw-chain/pawswap/x/asset/keeper"
	assettypes "github.com/paw-chain/pawswap/x/asset/types"
)

// ErrAlreadyInitialized is returned by InitChain on a database that already
// holds committed state.
var ErrAlreadyInitialized = errors.New("chain already initialized")

var _ sdk.InvariantRegistry = (*App)(nil)

// App hosts the asset and amm keepers on a single commit multistore. Each
// block is a context from NewBlockContext followed by Commit.
type App struct {
	logger  log.Logger
	db      dbm.DB
	cms     storetypes.CommitMultiStore
	keys    map[string]*storetypes.KVStoreKey
	chainID string

	AssetKeeper assetkeeper.Keeper
	AMMKeeper   ammkeeper.Keeper

	invariants []InvariantRoute
}

// InvariantRoute is a registered invariant.
type InvariantRoute struct {
	Module    string
	Route     string
	Invariant sdk.Invariant
}

// InvariantResult is the outcome of one invariant check.
type InvariantResult struct {
	Module  string
	Route   string
	Message string
	Broken  bool
}

// OpenDB opens the configured state database.
func OpenDB(cfg DBConfig) (dbm.DB, error) {
	db, err := dbm.NewDB(AppName, dbm.BackendType(cfg.Backend), cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Backend, err)
	}
	return db, nil
}

// New returns an App on db with the latest committed version loaded.
func New(db dbm.DB, logger log.Logger, cfg Config) (*App, error) {
	owner, err := cfg.OwnerAddress()
	if err != nil {
		return nil, fmt.Errorf("invalid owner: %w", err)
	}

	keys := storetypes.NewKVStoreKeys(assettypes.StoreKey, ammtypes.StoreKey)
	cms := store.NewCommitMultiStore(db, logger, metrics.NewNoOpMetrics())
	for _, key := range keys {
		cms.MountStoreWithDB(key, storetypes.StoreTypeIAVL, nil)
	}
	if err := cms.LoadLatestVersion(); err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	app := &App{
		logger:  logger,
		db:      db,
		cms:     cms,
		keys:    keys,
		chainID: cfg.ChainID,
	}
	app.AssetKeeper = assetkeeper.NewKeeper(keys[assettypes.StoreKey])
	app.AMMKeeper = ammkeeper.NewKeeper(keys[ammtypes.StoreKey], app.AssetKeeper, owner)

	assetkeeper.RegisterInvariants(app, app.AssetKeeper)
	ammkeeper.RegisterInvariants(app, app.AMMKeeper)

	return app, nil
}

// Logger returns the application logger.
func (app *App) Logger() log.Logger {
	return app.logger
}

// ChainID returns the configured chain id.
func (app *App) ChainID() string {
	return app.chainID
}

// LastBlockHeight returns the height of the last committed block.
func (app *App) LastBlockHeight() int64 {
	return app.cms.LastCommitID().Version
}

// Initialized reports whether genesis has been committed.
func (app *App) Initialized() bool {
	return app.LastBlockHeight() > 0
}

// NewBlockContext returns a context for the next block. Writes go to the
// working state and are persisted by Commit.
func (app *App) NewBlockContext() sdk.Context {
	header := cmtproto.Header{
		ChainID: app.chainID,
		Height:  app.LastBlockHeight() + 1,
		Time:    time.Now().UTC(),
	}
	return sdk.NewContext(app.cms, header, false, app.logger).
		WithEventManager(sdk.NewEventManager())
}

// Commit persists the working state as a new version.
func (app *App) Commit() storetypes.CommitID {
	cid := app.cms.Commit()
	app.logger.Debug("committed block", "height", cid.Version, "hash", fmt.Sprintf("%X", cid.Hash))
	return cid
}

// InitChain validates and loads gs, checks every invariant and commits the
// genesis block.
func (app *App) InitChain(gs GenesisState) error {
	if app.Initialized() {
		return ErrAlreadyInitialized
	}
	if gs.ChainID != "" && gs.ChainID != app.chainID {
		return fmt.Errorf("genesis chain id %q does not match configured %q", gs.ChainID, app.chainID)
	}
	if err := gs.Validate(); err != nil {
		return err
	}

	ctx := app.NewBlockContext()
	if err := app.AssetKeeper.InitGenesis(ctx, gs.Asset); err != nil {
		return fmt.Errorf("InitChain: asset: %w", err)
	}
	if err := app.AMMKeeper.InitGenesis(ctx, gs.AMM); err != nil {
		return fmt.Errorf("InitChain: amm: %w", err)
	}
	if err := app.AssertInvariants(ctx); err != nil {
		return fmt.Errorf("InitChain: %w", err)
	}

	cid := app.Commit()
	app.logger.Info("initialized chain", "chain_id", app.chainID, "height", cid.Version, "pools", len(gs.AMM.Pools))
	return nil
}

// ExportGenesis exports the state of both modules.
func (app *App) ExportGenesis(ctx sdk.Context) (GenesisState, error) {
	asset, err := app.AssetKeeper.ExportGenesis(ctx)
	if err != nil {
		return GenesisState{}, fmt.Errorf("ExportGenesis: asset: %w", err)
	}
	amm, err := app.AMMKeeper.ExportGenesis(ctx)
	if err != nil {
		return GenesisState{}, fmt.Errorf("ExportGenesis: amm: %w", err)
	}
	return GenesisState{ChainID: app.chainID, AMM: *amm, Asset: *asset}, nil
}

// RegisterRoute implements sdk.InvariantRegistry.
func (app *App) RegisterRoute(moduleName, route string, invar sdk.Invariant) {
	app.invariants = append(app.invariants, InvariantRoute{Module: moduleName, Route: route, Invariant: invar})
}

// Invariants returns the registered invariants in registration order.
func (app *App) Invariants() []InvariantRoute {
	return app.invariants
}

// CheckInvariants runs every registered invariant.
func (app *App) CheckInvariants(ctx sdk.Context) []InvariantResult {
	results := make([]InvariantResult, 0, len(app.invariants))
	for _, ir := range app.invariants {
		msg, broken := ir.Invariant(ctx)
		results = append(results, InvariantResult{Module: ir.Module, Route: ir.Route, Message: msg, Broken: broken})
	}
	return results
}

// AssertInvariants returns an error describing every broken invariant.
func (app *App) AssertInvariants(ctx sdk.Context) error {
	var broken []string
	for _, res := range app.CheckInvariants(ctx) {
		if res.Broken {
			broken = append(broken, strings.TrimSpace(res.Message))
		}
	}
	if len(broken) > 0 {
		return fmt.Errorf("%d invariant(s) broken:\n%s", len(broken), strings.Join(broken, "\n"))
	}
	return nil
}

// Close closes the underlying database.
func (app *App) Close() error {
	return app.db.Close()
}
