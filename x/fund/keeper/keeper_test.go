package keeper_test

import (
	"testing"
	"time"

	"cosmossdk.io/log"
	sdkmath "cosmossdk.io/math"
	storemetrics "cosmossdk.io/store/metrics"
	"cosmossdk.io/store/rootmulti"
	storetypes "cosmossdk.io/store/types"
	tmproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/cosmos/cosmos-sdk/codec"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	"github.com/cosmos/cosmos-sdk/runtime"
	"github.com/cosmos/cosmos-sdk/std"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/Fsud/basiscash-protocol/internal/mockbank"
	"github.com/Fsud/basiscash-protocol/x/fund/keeper"
	"github.com/Fsud/basiscash-protocol/x/fund/types"
	ledgerkeeper "github.com/Fsud/basiscash-protocol/x/ledger/keeper"
	ledgertypes "github.com/Fsud/basiscash-protocol/x/ledger/types"
)

func setupKeeper(t *testing.T) (keeper.Keeper, ledgerkeeper.Keeper, *mockbank.Keeper, sdk.Context) {
	t.Helper()

	fundKey := storetypes.NewKVStoreKey(types.StoreKey)
	ledgerKey := storetypes.NewKVStoreKey(ledgertypes.StoreKey)
	db := dbm.NewMemDB()
	cms := rootmulti.NewStore(db, log.NewNopLogger(), storemetrics.NoOpMetrics{})
	cms.MountStoreWithDB(fundKey, storetypes.StoreTypeIAVL, nil)
	cms.MountStoreWithDB(ledgerKey, storetypes.StoreTypeIAVL, nil)
	require.NoError(t, cms.LoadLatestVersion())

	header := tmproto.Header{
		ChainID: "basis-test-1",
		Height:  1,
		Time:    time.Unix(1_770_000_000, 0).UTC(),
	}
	ctx := sdk.NewContext(cms, header, false, log.NewNopLogger())

	reg := codectypes.NewInterfaceRegistry()
	std.RegisterInterfaces(reg)
	cdc := codec.NewProtoCodec(reg)

	bank := mockbank.New()
	lk := ledgerkeeper.NewKeeper(cdc, runtime.NewKVStoreService(ledgerKey), bank, "basis1gov")
	fk := keeper.NewKeeper(cdc, runtime.NewKVStoreService(fundKey), lk, "basis1gov")

	return fk, lk, bank, ctx
}

func TestDepositRecordsAndMovesFunds(t *testing.T) {
	fk, lk, bank, ctx := setupKeeper(t)
	depositor := sdk.AccAddress("depositor___________")

	bank.Fund(depositor, sdk.NewCoins(sdk.NewCoin(ledgertypes.CashDenom, sdkmath.NewInt(1_000))))

	require.NoError(t, fk.Deposit(ctx, depositor, ledgertypes.CashDenom, sdkmath.NewInt(300), "seigniorage fee"))
	require.Equal(t, sdkmath.NewInt(300), fk.Balance(ctx, ledgertypes.CashDenom))
	require.Equal(t, sdkmath.NewInt(700), lk.BalanceOf(ctx, ledgertypes.CashDenom, depositor))

	require.NoError(t, fk.Deposit(ctx, depositor, ledgertypes.CashDenom, sdkmath.NewInt(200), "seigniorage fee"))

	gs, err := fk.ExportGenesis(ctx)
	require.NoError(t, err)
	require.Len(t, gs.Deposits, 2)
	require.Equal(t, uint64(0), gs.Deposits[0].Sequence)
	require.Equal(t, uint64(1), gs.Deposits[1].Sequence)
	require.Equal(t, "seigniorage fee", gs.Deposits[0].Memo)
	require.Equal(t, sdkmath.NewInt(300), gs.Deposits[0].Amount)
}

func TestDepositRejectsZeroAmount(t *testing.T) {
	fk, _, _, ctx := setupKeeper(t)
	depositor := sdk.AccAddress("depositor___________")

	err := fk.Deposit(ctx, depositor, ledgertypes.CashDenom, sdkmath.ZeroInt(), "")
	require.ErrorContains(t, err, "must be positive")
}

func TestWithdrawRequiresOperator(t *testing.T) {
	fk, _, bank, ctx := setupKeeper(t)
	recipient := sdk.AccAddress("recipient___________")

	bank.Fund(fk.ModuleAddress(), sdk.NewCoins(sdk.NewCoin(ledgertypes.CashDenom, sdkmath.NewInt(500))))

	// No roles yet.
	err := fk.Withdraw(ctx, "basis1op", ledgertypes.CashDenom, recipient, sdkmath.NewInt(100), "")
	require.ErrorContains(t, err, "roles are not set")

	require.NoError(t, fk.SetRoles(ctx, "basis1gov", types.Roles{Owner: "basis1owner", Operator: "basis1op"}))

	err = fk.Withdraw(ctx, "basis1nobody", ledgertypes.CashDenom, recipient, sdkmath.NewInt(100), "")
	require.ErrorContains(t, err, "not the fund operator")

	require.NoError(t, fk.Withdraw(ctx, "basis1op", ledgertypes.CashDenom, recipient, sdkmath.NewInt(100), "grant"))
	require.Equal(t, sdkmath.NewInt(400), fk.Balance(ctx, ledgertypes.CashDenom))
}

func TestSetRolesGating(t *testing.T) {
	fk, _, _, ctx := setupKeeper(t)

	// Bootstrap is authority-only.
	err := fk.SetRoles(ctx, "basis1nobody", types.Roles{Owner: "basis1owner", Operator: "basis1op"})
	require.ErrorContains(t, err, "cannot bootstrap")

	require.NoError(t, fk.SetRoles(ctx, "basis1gov", types.Roles{Owner: "basis1owner", Operator: "basis1op"}))

	// Once set, only the owner can reassign.
	err = fk.SetRoles(ctx, "basis1gov", types.Roles{Owner: "basis1other", Operator: "basis1op"})
	require.ErrorContains(t, err, "not the fund owner")
	require.NoError(t, fk.SetRoles(ctx, "basis1owner", types.Roles{Owner: "basis1other", Operator: "basis1op2"}))

	roles, err := fk.GetRoles(ctx)
	require.NoError(t, err)
	require.Equal(t, "basis1other", roles.Owner)
	require.Equal(t, "basis1op2", roles.Operator)
}

func TestGenesisRoundTrip(t *testing.T) {
	fk, _, _, ctx := setupKeeper(t)

	gs := &types.GenesisState{
		Roles: types.Roles{Owner: "basis1owner", Operator: "basis1op"},
		Deposits: []types.Deposit{
			{Sequence: 0, Denom: ledgertypes.CashDenom, Depositor: "basis1dep", Amount: sdkmath.NewInt(50)},
		},
	}
	require.NoError(t, fk.InitGenesis(ctx, gs))

	out, err := fk.ExportGenesis(ctx)
	require.NoError(t, err)
	require.Equal(t, "basis1owner", out.Roles.Owner)
	require.Len(t, out.Deposits, 1)
}
