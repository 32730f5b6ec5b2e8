package keeper_test

import (
	"testing"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/paw-chain/pawswap/x/asset/keeper"
	"github.com/paw-chain/pawswap/x/asset/types"
)

type KeeperTestSuite struct {
	suite.Suite

	ctx    sdk.Context
	keeper keeper.Keeper

	alice, bob, pool sdk.AccAddress
}

func TestKeeperTestSuite(t *testing.T) {
	suite.Run(t, new(KeeperTestSuite))
}

func (s *KeeperTestSuite) SetupTest() {
	key := storetypes.NewKVStoreKey(types.StoreKey)
	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, log.NewNopLogger(), metrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(key, storetypes.StoreTypeIAVL, db)
	s.Require().NoError(stateStore.LoadLatestVersion())

	s.ctx = sdk.NewContext(stateStore, cmtproto.Header{}, false, log.NewNopLogger())
	s.keeper = keeper.NewKeeper(key)
	s.alice = types.NamedAccount("alice")
	s.bob = types.NamedAccount("bob")
	s.pool = types.NamedAccount("pool")
}

func (s *KeeperTestSuite) requireBalance(expected int64, denom string, holder sdk.AccAddress) {
	s.T().Helper()
	s.Require().Equal(math.NewInt(expected).String(), s.keeper.BalanceOf(s.ctx, denom, holder).String())
}

func (s *KeeperTestSuite) TestMint() {
	s.Require().NoError(s.keeper.Mint(s.ctx, "udai", s.alice, math.NewInt(100)))
	s.Require().NoError(s.keeper.Mint(s.ctx, "udai", s.alice, math.NewInt(50)))

	s.requireBalance(150, "udai", s.alice)
	s.Require().Equal("150", s.keeper.TotalSupply(s.ctx, "udai").String())
	s.requireBalance(0, "uweth", s.alice)

	s.Require().ErrorIs(s.keeper.Mint(s.ctx, "1bad", s.alice, math.NewInt(1)), types.ErrInvalidDenom)
	s.Require().ErrorIs(s.keeper.Mint(s.ctx, "udai", s.alice, math.NewInt(-1)), types.ErrInvalidAmount)
}

func (s *KeeperTestSuite) TestTransfer() {
	s.Require().NoError(s.keeper.Mint(s.ctx, "udai", s.alice, math.NewInt(100)))

	s.Require().NoError(s.keeper.Transfer(s.ctx, "udai", s.alice, s.bob, math.NewInt(40)))
	s.requireBalance(60, "udai", s.alice)
	s.requireBalance(40, "udai", s.bob)

	err := s.keeper.Transfer(s.ctx, "udai", s.alice, s.bob, math.NewInt(61))
	s.Require().ErrorIs(err, types.ErrInsufficientFunds)
	s.requireBalance(60, "udai", s.alice)

	s.Require().NoError(s.keeper.Transfer(s.ctx, "udai", s.alice, s.alice, math.NewInt(60)))
	s.requireBalance(60, "udai", s.alice)

	s.Require().NoError(s.keeper.Transfer(s.ctx, "udai", s.alice, s.bob, math.NewInt(60)))
	s.requireBalance(0, "udai", s.alice)
	s.requireBalance(100, "udai", s.bob)
	s.Require().Equal("100", s.keeper.TotalSupply(s.ctx, "udai").String())
}

func (s *KeeperTestSuite) TestApproveAndTransferFrom() {
	s.Require().NoError(s.keeper.Mint(s.ctx, "udai", s.alice, math.NewInt(100)))

	err := s.keeper.TransferFrom(s.ctx, "udai", s.pool, s.alice, s.pool, math.NewInt(10))
	s.Require().ErrorIs(err, types.ErrInsufficientAllowance)

	s.Require().NoError(s.keeper.Approve(s.ctx, "udai", s.alice, s.pool, math.NewInt(30)))
	s.Require().Equal("30", s.keeper.Allowance(s.ctx, "udai", s.alice, s.pool).String())

	s.Require().NoError(s.keeper.TransferFrom(s.ctx, "udai", s.pool, s.alice, s.pool, math.NewInt(20)))
	s.requireBalance(80, "udai", s.alice)
	s.requireBalance(20, "udai", s.pool)
	s.Require().Equal("10", s.keeper.Allowance(s.ctx, "udai", s.alice, s.pool).String())

	err = s.keeper.TransferFrom(s.ctx, "udai", s.pool, s.alice, s.bob, math.NewInt(11))
	s.Require().ErrorIs(err, types.ErrInsufficientAllowance)

	// approve replaces rather than adds
	s.Require().NoError(s.keeper.Approve(s.ctx, "udai", s.alice, s.pool, math.NewInt(500)))
	err = s.keeper.TransferFrom(s.ctx, "udai", s.pool, s.alice, s.bob, math.NewInt(500))
	s.Require().ErrorIs(err, types.ErrInsufficientFunds)
	s.Require().Equal("500", s.keeper.Allowance(s.ctx, "udai", s.alice, s.pool).String())

	// allowances are per denom
	s.Require().True(s.keeper.Allowance(s.ctx, "uweth", s.alice, s.pool).IsZero())
}

func (s *KeeperTestSuite) TestEvents() {
	s.ctx = s.ctx.WithEventManager(sdk.NewEventManager())
	s.Require().NoError(s.keeper.Mint(s.ctx, "udai", s.alice, math.NewInt(5)))
	s.Require().NoError(s.keeper.Approve(s.ctx, "udai", s.alice, s.bob, math.NewInt(5)))
	s.Require().NoError(s.keeper.TransferFrom(s.ctx, "udai", s.bob, s.alice, s.bob, math.NewInt(5)))

	var kinds []string
	for _, ev := range s.ctx.EventManager().Events() {
		kinds = append(kinds, ev.Type)
	}
	s.Require().Equal([]string{types.EventTypeMint, types.EventTypeApproval, types.EventTypeTransfer}, kinds)
}

func (s *KeeperTestSuite) TestGenesisRoundTrip() {
	s.Require().NoError(s.keeper.Mint(s.ctx, "udai", s.alice, math.NewInt(100)))
	s.Require().NoError(s.keeper.Mint(s.ctx, "uweth", s.bob, math.NewInt(7)))
	s.Require().NoError(s.keeper.Approve(s.ctx, "udai", s.alice, s.pool, math.NewInt(30)))

	gs, err := s.keeper.ExportGenesis(s.ctx)
	s.Require().NoError(err)
	s.Require().NoError(gs.Validate())
	s.Require().Len(gs.Balances, 2)
	s.Require().Len(gs.Allowances, 1)

	src := s.keeper
	srcCtx := s.ctx
	s.SetupTest()
	s.Require().NoError(s.keeper.InitGenesis(s.ctx, *gs))

	s.requireBalance(100, "udai", s.alice)
	s.requireBalance(7, "uweth", s.bob)
	s.Require().Equal("30", s.keeper.Allowance(s.ctx, "udai", s.alice, s.pool).String())
	s.Require().Equal(src.TotalSupply(srcCtx, "udai").String(), s.keeper.TotalSupply(s.ctx, "udai").String())

	msg, broken := keeper.TotalSupplyInvariant(s.keeper)(s.ctx)
	s.Require().False(broken, msg)
}

func TestGenesisState_Validate(t *testing.T) {
	holder := types.NamedAccount("alice").String()

	tests := []struct {
		name    string
		gs      types.GenesisState
		wantErr bool
	}{
		{"default", *types.DefaultGenesis(), false},
		{
			"valid",
			types.GenesisState{
				Balances:   []types.Balance{{Denom: "udai", Holder: holder, Amount: math.NewInt(1)}},
				Allowances: []types.Allowance{{Denom: "udai", Owner: holder, Spender: holder, Amount: math.NewInt(1)}},
			},
			false,
		},
		{
			"duplicate balance",
			types.GenesisState{Balances: []types.Balance{
				{Denom: "udai", Holder: holder, Amount: math.NewInt(1)},
				{Denom: "udai", Holder: holder, Amount: math.NewInt(2)},
			}},
			true,
		},
		{
			"zero balance",
			types.GenesisState{Balances: []types.Balance{{Denom: "udai", Holder: holder, Amount: math.ZeroInt()}}},
			true,
		},
		{
			"bad holder",
			types.GenesisState{Balances: []types.Balance{{Denom: "udai", Holder: "nope", Amount: math.NewInt(1)}}},
			true,
		},
		{
			"bad denom",
			types.GenesisState{Allowances: []types.Allowance{{Denom: "x", Owner: holder, Spender: holder, Amount: math.NewInt(1)}}},
			true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.gs.Validate()
			if tc.wantErr {
				require.ErrorIs(t, err, types.ErrInvalidGenesis)
				return
			}
			require.NoError(t, err)
		})
	}
}
