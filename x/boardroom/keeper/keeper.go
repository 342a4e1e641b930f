package keeper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cosmossdk.io/collections"
	"cosmossdk.io/core/store"
	sdkmath "cosmossdk.io/math"
	"github.com/cosmos/cosmos-sdk/codec"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"

	"github.com/Fsud/basiscash-protocol/x/boardroom/types"
	ledgertypes "github.com/Fsud/basiscash-protocol/x/ledger/types"
)

// Event types emitted by the boardroom module.
const (
	EventTypeStaked      = "boardroom_staked"
	EventTypeWithdrawn   = "boardroom_withdrawn"
	EventTypeRewardPaid  = "boardroom_reward_paid"
	EventTypeRewardAdded = "boardroom_reward_added"

	AttributeKeyStaker = "staker"
	AttributeKeySource = "source"
	AttributeKeyAmount = "amount"
)

// rewardScale is the fixed-point base for reward-per-share accounting.
var rewardScale = sdkmath.NewIntWithDecimal(1, 18)

// LedgerKeeper is the expected asset-ledger interface.
type LedgerKeeper interface {
	Transfer(ctx context.Context, denom string, from, to sdk.AccAddress, amount sdkmath.Int) error
	BalanceOf(ctx context.Context, denom string, addr sdk.AccAddress) sdkmath.Int
}

// Keeper runs the share-staking reward pool. Stakers lock shares, the
// treasury notifies cash rewards, and each staker's entitlement is
// settled lazily against a snapshot history of cumulative
// reward-per-share.
type Keeper struct {
	cdc          codec.Codec
	storeService store.KVStoreService
	authority    string

	ledgerKeeper LedgerKeeper

	Roles         collections.Item[string]
	Seats         collections.Map[string, string]
	Snapshots     collections.Map[uint64, string]
	SnapshotCount collections.Item[uint64]
}

// NewKeeper creates a new boardroom keeper.
func NewKeeper(
	cdc codec.Codec,
	storeService store.KVStoreService,
	ledgerKeeper LedgerKeeper,
	authority string,
) Keeper {
	sb := collections.NewSchemaBuilder(storeService)

	return Keeper{
		cdc:          cdc,
		storeService: storeService,
		authority:    authority,
		ledgerKeeper: ledgerKeeper,
		Roles: collections.NewItem(
			sb,
			collections.NewPrefix(types.RolesKey),
			"roles",
			collections.StringValue,
		),
		Seats: collections.NewMap(
			sb,
			collections.NewPrefix(types.SeatKeyPrefix),
			"seats",
			collections.StringKey,
			collections.StringValue,
		),
		Snapshots: collections.NewMap(
			sb,
			collections.NewPrefix(types.SnapshotKeyPrefix),
			"snapshots",
			collections.Uint64Key,
			collections.StringValue,
		),
		SnapshotCount: collections.NewItem(
			sb,
			collections.NewPrefix(types.SnapshotCountKey),
			"snapshot_count",
			collections.Uint64Value,
		),
	}
}

// GetAuthority returns the keeper authority address.
func (k Keeper) GetAuthority() string {
	return k.authority
}

// ModuleAddress returns the account holding staked shares and pending
// cash rewards.
func (k Keeper) ModuleAddress() sdk.AccAddress {
	return authtypes.NewModuleAddress(types.ModuleName)
}

// TotalStaked returns the share balance locked in the boardroom.
func (k Keeper) TotalStaked(ctx context.Context) sdkmath.Int {
	return k.ledgerKeeper.BalanceOf(ctx, ledgertypes.ShareDenom, k.ModuleAddress())
}

// Stake locks amount of shares for the staker. Outstanding rewards are
// settled before the position changes so the new stake does not earn
// retroactively.
func (k Keeper) Stake(ctx context.Context, staker sdk.AccAddress, amount sdkmath.Int) error {
	if amount.IsNil() || !amount.IsPositive() {
		return fmt.Errorf("stake amount must be positive, got %s", amount)
	}
	seat, err := k.settledSeat(ctx, staker.String())
	if err != nil {
		return err
	}
	if err := k.ledgerKeeper.Transfer(ctx, ledgertypes.ShareDenom, staker, k.ModuleAddress(), amount); err != nil {
		return err
	}
	seat.Staked = seat.Staked.Add(amount)
	if err := k.setSeat(ctx, seat); err != nil {
		return err
	}
	k.emitStakerEvent(ctx, EventTypeStaked, staker.String(), amount)
	return nil
}

// Withdraw unlocks amount of the staker's shares.
func (k Keeper) Withdraw(ctx context.Context, staker sdk.AccAddress, amount sdkmath.Int) error {
	if amount.IsNil() || !amount.IsPositive() {
		return fmt.Errorf("withdrawal amount must be positive, got %s", amount)
	}
	seat, err := k.settledSeat(ctx, staker.String())
	if err != nil {
		return err
	}
	if seat.Staked.LT(amount) {
		return fmt.Errorf("withdrawal of %s exceeds staked %s", amount, seat.Staked)
	}
	seat.Staked = seat.Staked.Sub(amount)
	if err := k.setSeat(ctx, seat); err != nil {
		return err
	}
	if err := k.ledgerKeeper.Transfer(ctx, ledgertypes.ShareDenom, k.ModuleAddress(), staker, amount); err != nil {
		return err
	}
	k.emitStakerEvent(ctx, EventTypeWithdrawn, staker.String(), amount)
	return nil
}

// ClaimReward pays out the staker's settled cash rewards. Claiming with
// nothing earned is a no-op.
func (k Keeper) ClaimReward(ctx context.Context, staker sdk.AccAddress) error {
	seat, err := k.settledSeat(ctx, staker.String())
	if err != nil {
		return err
	}
	reward := seat.RewardEarned
	if !reward.IsPositive() {
		return k.setSeat(ctx, seat)
	}
	seat.RewardEarned = sdkmath.ZeroInt()
	if err := k.setSeat(ctx, seat); err != nil {
		return err
	}
	if err := k.ledgerKeeper.Transfer(ctx, ledgertypes.CashDenom, k.ModuleAddress(), staker, reward); err != nil {
		return err
	}
	k.emitStakerEvent(ctx, EventTypeRewardPaid, staker.String(), reward)
	return nil
}

// Exit withdraws the full stake and claims any pending reward.
func (k Keeper) Exit(ctx context.Context, staker sdk.AccAddress) error {
	seat, err := k.settledSeat(ctx, staker.String())
	if err != nil {
		return err
	}
	if err := k.setSeat(ctx, seat); err != nil {
		return err
	}
	if seat.Staked.IsPositive() {
		if err := k.Withdraw(ctx, staker, seat.Staked); err != nil {
			return err
		}
	}
	return k.ClaimReward(ctx, staker)
}

// AllocateSeigniorage notifies a new cash reward, pulled from the source
// account. Actor must hold the operator role, and the pool must have
// stakers to distribute to.
func (k Keeper) AllocateSeigniorage(ctx context.Context, actor string, source sdk.AccAddress, amount sdkmath.Int) error {
	roles, err := k.GetRoles(ctx)
	if err != nil {
		return err
	}
	if actor != roles.Operator {
		return fmt.Errorf("%s is not the boardroom operator", actor)
	}
	if amount.IsNil() || !amount.IsPositive() {
		return fmt.Errorf("seigniorage amount must be positive, got %s", amount)
	}
	totalStaked := k.TotalStaked(ctx)
	if !totalStaked.IsPositive() {
		return fmt.Errorf("boardroom has no staked shares")
	}

	prev, _, err := k.latestSnapshot(ctx)
	if err != nil {
		return err
	}
	next := types.Snapshot{
		RewardReceived: amount,
		RewardPerShare: prev.RewardPerShare.Add(amount.Mul(rewardScale).Quo(totalStaked)),
	}
	if sdkCtx, ok := unwrapSDKContext(ctx); ok {
		next.TimeUnix = sdkCtx.BlockTime().Unix()
	}
	if err := k.appendSnapshot(ctx, next); err != nil {
		return err
	}
	if err := k.ledgerKeeper.Transfer(ctx, ledgertypes.CashDenom, source, k.ModuleAddress(), amount); err != nil {
		return err
	}
	k.emitStakerEvent(ctx, EventTypeRewardAdded, actor, amount)
	return nil
}

// Earned returns the staker's claimable reward, settled plus accrued
// since the seat's last snapshot.
func (k Keeper) Earned(ctx context.Context, staker sdk.AccAddress) (sdkmath.Int, error) {
	seat, err := k.settledSeat(ctx, staker.String())
	if err != nil {
		return sdkmath.Int{}, err
	}
	return seat.RewardEarned, nil
}

// StakedBalance returns the staker's locked shares.
func (k Keeper) StakedBalance(ctx context.Context, staker sdk.AccAddress) (sdkmath.Int, error) {
	seat, err := k.getSeat(ctx, staker.String())
	if err != nil {
		return sdkmath.Int{}, err
	}
	return seat.Staked, nil
}

// GetOperator returns the current operator role holder.
func (k Keeper) GetOperator(ctx context.Context) (string, error) {
	roles, err := k.GetRoles(ctx)
	if err != nil {
		return "", err
	}
	return roles.Operator, nil
}

// GetRoles returns the boardroom role record.
func (k Keeper) GetRoles(ctx context.Context) (types.Roles, error) {
	raw, err := k.Roles.Get(ctx)
	if err != nil {
		if errors.Is(err, collections.ErrNotFound) {
			return types.Roles{}, fmt.Errorf("boardroom roles are not set")
		}
		return types.Roles{}, err
	}
	var roles types.Roles
	if err := json.Unmarshal([]byte(raw), &roles); err != nil {
		return types.Roles{}, fmt.Errorf("corrupt boardroom role record: %w", err)
	}
	return roles, nil
}

// SetRoles replaces the role record. The current owner may hand roles on;
// when none are set yet the keeper authority bootstraps them.
func (k Keeper) SetRoles(ctx context.Context, actor string, roles types.Roles) error {
	if err := roles.Validate(); err != nil {
		return err
	}
	current, err := k.GetRoles(ctx)
	switch {
	case err == nil:
		if actor != current.Owner {
			return fmt.Errorf("%s is not the boardroom owner", actor)
		}
	default:
		if actor != k.authority {
			return fmt.Errorf("%s cannot bootstrap boardroom roles", actor)
		}
	}
	bz, err := json.Marshal(roles)
	if err != nil {
		return err
	}
	return k.Roles.Set(ctx, string(bz))
}

// TransferOperator reassigns the operator role. The current owner or the
// current operator may hand the role on.
func (k Keeper) TransferOperator(ctx context.Context, actor, target string) error {
	roles, err := k.GetRoles(ctx)
	if err != nil {
		return err
	}
	if actor != roles.Owner && actor != roles.Operator {
		return fmt.Errorf("%s cannot transfer the boardroom operator role", actor)
	}
	if target == "" {
		return fmt.Errorf("operator target cannot be empty")
	}
	roles.Operator = target
	bz, err := json.Marshal(roles)
	if err != nil {
		return err
	}
	return k.Roles.Set(ctx, string(bz))
}

// InitGenesis seeds roles, seats and the snapshot history.
func (k Keeper) InitGenesis(ctx context.Context, gs *types.GenesisState) error {
	if gs == nil {
		return nil
	}
	if err := gs.Validate(); err != nil {
		return err
	}
	if gs.Roles.Owner != "" {
		bz, err := json.Marshal(gs.Roles)
		if err != nil {
			return err
		}
		if err := k.Roles.Set(ctx, string(bz)); err != nil {
			return err
		}
	}
	for _, seat := range gs.Seats {
		if err := k.setSeat(ctx, seat); err != nil {
			return err
		}
	}
	for _, snap := range gs.Snapshots {
		if err := k.appendSnapshot(ctx, snap); err != nil {
			return err
		}
	}
	return nil
}

// ExportGenesis dumps roles, seats and snapshots.
func (k Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	gs := types.DefaultGenesis()
	if roles, err := k.GetRoles(ctx); err == nil {
		gs.Roles = roles
	}
	err := k.Seats.Walk(ctx, nil, func(_ string, raw string) (bool, error) {
		var seat types.Seat
		if err := json.Unmarshal([]byte(raw), &seat); err != nil {
			return true, err
		}
		gs.Seats = append(gs.Seats, seat)
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	err = k.Snapshots.Walk(ctx, nil, func(_ uint64, raw string) (bool, error) {
		var snap types.Snapshot
		if err := json.Unmarshal([]byte(raw), &snap); err != nil {
			return true, err
		}
		gs.Snapshots = append(gs.Snapshots, snap)
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return gs, nil
}

// settledSeat loads the staker's seat with rewards accrued up to the
// latest snapshot folded into RewardEarned.
func (k Keeper) settledSeat(ctx context.Context, addr string) (types.Seat, error) {
	seat, err := k.getSeat(ctx, addr)
	if err != nil {
		return types.Seat{}, err
	}
	latest, count, err := k.latestSnapshot(ctx)
	if err != nil {
		return types.Seat{}, err
	}
	if count == 0 || seat.LastSnapshotIndex == count {
		return seat, nil
	}
	var baseline sdkmath.Int
	if seat.LastSnapshotIndex == 0 {
		baseline = sdkmath.ZeroInt()
	} else {
		base, err := k.getSnapshot(ctx, seat.LastSnapshotIndex-1)
		if err != nil {
			return types.Seat{}, err
		}
		baseline = base.RewardPerShare
	}
	accrued := seat.Staked.Mul(latest.RewardPerShare.Sub(baseline)).Quo(rewardScale)
	seat.RewardEarned = seat.RewardEarned.Add(accrued)
	seat.LastSnapshotIndex = count
	return seat, nil
}

// latestSnapshot returns the newest snapshot and the history length. An
// empty history reads as a zero snapshot.
func (k Keeper) latestSnapshot(ctx context.Context) (types.Snapshot, uint64, error) {
	count, err := k.SnapshotCount.Get(ctx)
	if err != nil {
		if errors.Is(err, collections.ErrNotFound) {
			return zeroSnapshot(), 0, nil
		}
		return types.Snapshot{}, 0, err
	}
	if count == 0 {
		return zeroSnapshot(), 0, nil
	}
	snap, err := k.getSnapshot(ctx, count-1)
	if err != nil {
		return types.Snapshot{}, 0, err
	}
	return snap, count, nil
}

func zeroSnapshot() types.Snapshot {
	return types.Snapshot{
		RewardReceived: sdkmath.ZeroInt(),
		RewardPerShare: sdkmath.ZeroInt(),
	}
}

func (k Keeper) appendSnapshot(ctx context.Context, snap types.Snapshot) error {
	count, err := k.SnapshotCount.Get(ctx)
	if err != nil && !errors.Is(err, collections.ErrNotFound) {
		return err
	}
	bz, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if err := k.Snapshots.Set(ctx, count, string(bz)); err != nil {
		return err
	}
	return k.SnapshotCount.Set(ctx, count+1)
}

func (k Keeper) getSnapshot(ctx context.Context, index uint64) (types.Snapshot, error) {
	raw, err := k.Snapshots.Get(ctx, index)
	if err != nil {
		return types.Snapshot{}, err
	}
	var snap types.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return types.Snapshot{}, fmt.Errorf("corrupt snapshot %d: %w", index, err)
	}
	return snap, nil
}

func (k Keeper) getSeat(ctx context.Context, addr string) (types.Seat, error) {
	raw, err := k.Seats.Get(ctx, addr)
	if err != nil {
		if errors.Is(err, collections.ErrNotFound) {
			return types.NewSeat(addr), nil
		}
		return types.Seat{}, err
	}
	var seat types.Seat
	if err := json.Unmarshal([]byte(raw), &seat); err != nil {
		return types.Seat{}, fmt.Errorf("corrupt seat for %s: %w", addr, err)
	}
	return seat, nil
}

func (k Keeper) setSeat(ctx context.Context, seat types.Seat) error {
	bz, err := json.Marshal(seat)
	if err != nil {
		return err
	}
	return k.Seats.Set(ctx, seat.Address, string(bz))
}

func (k Keeper) emitStakerEvent(ctx context.Context, eventType, who string, amount sdkmath.Int) {
	sdkCtx, ok := unwrapSDKContext(ctx)
	if !ok {
		return
	}
	if em := sdkCtx.EventManager(); em != nil {
		em.EmitEvent(sdk.NewEvent(
			eventType,
			sdk.NewAttribute(AttributeKeyStaker, who),
			sdk.NewAttribute(AttributeKeyAmount, amount.String()),
		))
	}
}

func unwrapSDKContext(ctx context.Context) (sdk.Context, bool) {
	if ctx == nil {
		return sdk.Context{}, false
	}
	if sdkCtx, ok := ctx.(sdk.Context); ok {
		return sdkCtx, true
	}
	if val := ctx.Value(sdk.SdkContextKey); val != nil {
		if sdkCtx, ok := val.(sdk.Context); ok {
			return sdkCtx, true
		}
	}
	return sdk.Context{}, false
}
