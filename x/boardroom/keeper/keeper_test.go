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
	"github.com/Fsud/basiscash-protocol/x/boardroom/keeper"
	"github.com/Fsud/basiscash-protocol/x/boardroom/types"
	ledgerkeeper "github.com/Fsud/basiscash-protocol/x/ledger/keeper"
	ledgertypes "github.com/Fsud/basiscash-protocol/x/ledger/types"
)

const operator = "basis1treasury"

func setupKeeper(t *testing.T) (keeper.Keeper, *mockbank.Keeper, sdk.Context) {
	t.Helper()

	boardroomKey := storetypes.NewKVStoreKey(types.StoreKey)
	ledgerKey := storetypes.NewKVStoreKey(ledgertypes.StoreKey)
	db := dbm.NewMemDB()
	cms := rootmulti.NewStore(db, log.NewNopLogger(), storemetrics.NoOpMetrics{})
	cms.MountStoreWithDB(boardroomKey, storetypes.StoreTypeIAVL, nil)
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
	bk := keeper.NewKeeper(cdc, runtime.NewKVStoreService(boardroomKey), lk, "basis1gov")

	require.NoError(t, bk.SetRoles(ctx, "basis1gov", types.Roles{Owner: "basis1owner", Operator: operator}))

	return bk, bank, ctx
}

func fundShares(bank *mockbank.Keeper, addr sdk.AccAddress, amount int64) {
	bank.Fund(addr, sdk.NewCoins(sdk.NewCoin(ledgertypes.ShareDenom, sdkmath.NewInt(amount))))
}

func fundCash(bank *mockbank.Keeper, addr sdk.AccAddress, amount int64) {
	bank.Fund(addr, sdk.NewCoins(sdk.NewCoin(ledgertypes.CashDenom, sdkmath.NewInt(amount))))
}

func TestStakeAndWithdraw(t *testing.T) {
	bk, bank, ctx := setupKeeper(t)
	staker := sdk.AccAddress("staker______________")
	fundShares(bank, staker, 1_000)

	require.NoError(t, bk.Stake(ctx, staker, sdkmath.NewInt(600)))
	require.Equal(t, sdkmath.NewInt(600), bk.TotalStaked(ctx))

	staked, err := bk.StakedBalance(ctx, staker)
	require.NoError(t, err)
	require.Equal(t, sdkmath.NewInt(600), staked)

	err = bk.Withdraw(ctx, staker, sdkmath.NewInt(700))
	require.ErrorContains(t, err, "exceeds staked")

	require.NoError(t, bk.Withdraw(ctx, staker, sdkmath.NewInt(600)))
	require.True(t, bk.TotalStaked(ctx).IsZero())
}

func TestAllocateSeigniorageGating(t *testing.T) {
	bk, bank, ctx := setupKeeper(t)
	treasury := sdk.AccAddress("treasury____________")
	fundCash(bank, treasury, 10_000)

	// Nothing staked yet.
	err := bk.AllocateSeigniorage(ctx, operator, treasury, sdkmath.NewInt(1_000))
	require.ErrorContains(t, err, "no staked shares")

	staker := sdk.AccAddress("staker______________")
	fundShares(bank, staker, 100)
	require.NoError(t, bk.Stake(ctx, staker, sdkmath.NewInt(100)))

	err = bk.AllocateSeigniorage(ctx, "basis1nobody", treasury, sdkmath.NewInt(1_000))
	require.ErrorContains(t, err, "not the boardroom operator")

	err = bk.AllocateSeigniorage(ctx, operator, treasury, sdkmath.ZeroInt())
	require.ErrorContains(t, err, "must be positive")

	require.NoError(t, bk.AllocateSeigniorage(ctx, operator, treasury, sdkmath.NewInt(1_000)))
}

func TestRewardDistributionProRata(t *testing.T) {
	bk, bank, ctx := setupKeeper(t)
	treasury := sdk.AccAddress("treasury____________")
	alice := sdk.AccAddress("alice_______________")
	bob := sdk.AccAddress("bob_________________")
	fundCash(bank, treasury, 10_000)
	fundShares(bank, alice, 300)
	fundShares(bank, bob, 100)

	require.NoError(t, bk.Stake(ctx, alice, sdkmath.NewInt(300)))
	require.NoError(t, bk.Stake(ctx, bob, sdkmath.NewInt(100)))

	require.NoError(t, bk.AllocateSeigniorage(ctx, operator, treasury, sdkmath.NewInt(4_000)))

	earned, err := bk.Earned(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, sdkmath.NewInt(3_000), earned)

	earned, err = bk.Earned(ctx, bob)
	require.NoError(t, err)
	require.Equal(t, sdkmath.NewInt(1_000), earned)

	require.NoError(t, bk.ClaimReward(ctx, alice))
	require.Equal(t, sdkmath.NewInt(3_000), bank.GetBalance(ctx, alice, ledgertypes.CashDenom).Amount)

	// Claim is not repeatable.
	require.NoError(t, bk.ClaimReward(ctx, alice))
	require.Equal(t, sdkmath.NewInt(3_000), bank.GetBalance(ctx, alice, ledgertypes.CashDenom).Amount)
}

func TestLateStakerEarnsNothingRetroactively(t *testing.T) {
	bk, bank, ctx := setupKeeper(t)
	treasury := sdk.AccAddress("treasury____________")
	alice := sdk.AccAddress("alice_______________")
	carol := sdk.AccAddress("carol_______________")
	fundCash(bank, treasury, 10_000)
	fundShares(bank, alice, 100)
	fundShares(bank, carol, 100)

	require.NoError(t, bk.Stake(ctx, alice, sdkmath.NewInt(100)))
	require.NoError(t, bk.AllocateSeigniorage(ctx, operator, treasury, sdkmath.NewInt(2_000)))

	// Carol joins after the first allocation.
	require.NoError(t, bk.Stake(ctx, carol, sdkmath.NewInt(100)))
	earned, err := bk.Earned(ctx, carol)
	require.NoError(t, err)
	require.True(t, earned.IsZero())

	require.NoError(t, bk.AllocateSeigniorage(ctx, operator, treasury, sdkmath.NewInt(2_000)))

	earned, err = bk.Earned(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, sdkmath.NewInt(3_000), earned)

	earned, err = bk.Earned(ctx, carol)
	require.NoError(t, err)
	require.Equal(t, sdkmath.NewInt(1_000), earned)
}

func TestExitReturnsSharesAndReward(t *testing.T) {
	bk, bank, ctx := setupKeeper(t)
	treasury := sdk.AccAddress("treasury____________")
	staker := sdk.AccAddress("staker______________")
	fundCash(bank, treasury, 10_000)
	fundShares(bank, staker, 500)

	require.NoError(t, bk.Stake(ctx, staker, sdkmath.NewInt(500)))
	require.NoError(t, bk.AllocateSeigniorage(ctx, operator, treasury, sdkmath.NewInt(1_500)))

	require.NoError(t, bk.Exit(ctx, staker))
	require.Equal(t, sdkmath.NewInt(500), bank.GetBalance(ctx, staker, ledgertypes.ShareDenom).Amount)
	require.Equal(t, sdkmath.NewInt(1_500), bank.GetBalance(ctx, staker, ledgertypes.CashDenom).Amount)
	require.True(t, bk.TotalStaked(ctx).IsZero())
}

func TestTransferOperator(t *testing.T) {
	bk, _, ctx := setupKeeper(t)

	err := bk.TransferOperator(ctx, "basis1nobody", "basis1next")
	require.ErrorContains(t, err, "cannot transfer")

	require.NoError(t, bk.TransferOperator(ctx, operator, "basis1next"))
	roles, err := bk.GetRoles(ctx)
	require.NoError(t, err)
	require.Equal(t, "basis1next", roles.Operator)

	// Owner can also reassign.
	require.NoError(t, bk.TransferOperator(ctx, "basis1owner", "basis1final"))
}

func TestGenesisRoundTrip(t *testing.T) {
	bk, _, ctx := setupKeeper(t)

	gs := &types.GenesisState{
		Roles: types.Roles{Owner: "basis1owner", Operator: operator},
		Seats: []types.Seat{
			{Address: "basis1alice", Staked: sdkmath.NewInt(10), RewardEarned: sdkmath.ZeroInt()},
		},
		Snapshots: []types.Snapshot{
			{TimeUnix: 1, RewardReceived: sdkmath.NewInt(100), RewardPerShare: sdkmath.NewInt(10)},
		},
	}
	require.NoError(t, bk.InitGenesis(ctx, gs))

	out, err := bk.ExportGenesis(ctx)
	require.NoError(t, err)
	require.Len(t, out.Seats, 1)
	require.Len(t, out.Snapshots, 1)
}
