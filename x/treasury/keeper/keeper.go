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

	"github.com/Fsud/basiscash-protocol/internal/epoch"
	"github.com/Fsud/basiscash-protocol/x/treasury/types"
)

// Event types emitted by the treasury module.
const (
	EventTypeBoughtBonds          = "treasury_bought_bonds"
	EventTypeRedeemedBonds        = "treasury_redeemed_bonds"
	EventTypeReserveFunded        = "treasury_reserve_funded"
	EventTypeBoardroomFunded      = "treasury_boardroom_funded"
	EventTypeContributionFunded   = "treasury_contribution_pool_funded"
	EventTypeInitialized          = "treasury_initialized"
	EventTypeMigrated             = "treasury_migrated"
	EventTypeConfigUpdated        = "treasury_config_updated"
	EventTypeSchedulePeriodUpdate = "treasury_period_updated"

	AttributeKeyAccount   = "account"
	AttributeKeyCashSpent = "cash_spent"
	AttributeKeyBonds     = "bonds"
	AttributeKeyAmount    = "amount"
	AttributeKeyTimestamp = "timestamp"
	AttributeKeyField     = "field"
	AttributeKeyBefore    = "before"
	AttributeKeyAfter     = "after"
	AttributeKeyTarget    = "target"
)

// LedgerKeeper is the expected asset-ledger interface covering the cash,
// bond and share denoms.
type LedgerKeeper interface {
	Mint(ctx context.Context, actor, denom string, to sdk.AccAddress, amount sdkmath.Int) error
	BurnFrom(ctx context.Context, actor, denom string, holder sdk.AccAddress, amount sdkmath.Int) error
	Transfer(ctx context.Context, denom string, from, to sdk.AccAddress, amount sdkmath.Int) error
	BalanceOf(ctx context.Context, denom string, addr sdk.AccAddress) sdkmath.Int
	TotalSupply(ctx context.Context, denom string) sdkmath.Int
	Operator(ctx context.Context, denom string) (string, error)
	TransferOperator(ctx context.Context, denom, actor, target string) error
	TransferOwnership(ctx context.Context, denom, actor, target string) error
}

// OracleKeeper is the expected price-oracle interface. Consult failures
// are fatal to the calling operation; Update failures are the caller's
// choice to suppress.
type OracleKeeper interface {
	Consult(ctx context.Context, name, denom string, amount sdkmath.Int) (sdkmath.Int, error)
	Callable(ctx context.Context, name string) bool
	Update(ctx context.Context, name string) error
	LastEpoch(ctx context.Context, name string) (int64, error)
}

// RewardSink is the expected staking-pool interface.
type RewardSink interface {
	AllocateSeigniorage(ctx context.Context, actor string, source sdk.AccAddress, amount sdkmath.Int) error
	GetOperator(ctx context.Context) (string, error)
	TotalStaked(ctx context.Context) sdkmath.Int
}

// FeeSink is the expected fee-collection fund interface.
type FeeSink interface {
	Deposit(ctx context.Context, from sdk.AccAddress, denom string, amount sdkmath.Int, memo string) error
}

// Keeper is the treasury controller. It gates bond purchase, bond
// redemption and seigniorage allocation behind the lifecycle, permission
// and epoch checks, and owns the reserve accounting.
type Keeper struct {
	cdc          codec.Codec
	storeService store.KVStoreService
	authority    string

	ledgerKeeper LedgerKeeper
	oracleKeeper OracleKeeper
	rewardSink   RewardSink
	feeSink      FeeSink

	CoreState collections.Item[string]
	Config    collections.Item[string]
	Schedule  collections.Item[string]
	Guard     collections.KeySet[string]
}

// NewKeeper creates a new treasury keeper.
func NewKeeper(
	cdc codec.Codec,
	storeService store.KVStoreService,
	ledgerKeeper LedgerKeeper,
	oracleKeeper OracleKeeper,
	rewardSink RewardSink,
	feeSink FeeSink,
	authority string,
) Keeper {
	sb := collections.NewSchemaBuilder(storeService)

	return Keeper{
		cdc:          cdc,
		storeService: storeService,
		authority:    authority,
		ledgerKeeper: ledgerKeeper,
		oracleKeeper: oracleKeeper,
		rewardSink:   rewardSink,
		feeSink:      feeSink,
		CoreState: collections.NewItem(
			sb,
			collections.NewPrefix(types.CoreStateKey),
			"core_state",
			collections.StringValue,
		),
		Config: collections.NewItem(
			sb,
			collections.NewPrefix(types.ConfigKey),
			"config",
			collections.StringValue,
		),
		Schedule: collections.NewItem(
			sb,
			collections.NewPrefix(types.ScheduleKey),
			"schedule",
			collections.StringValue,
		),
		Guard: collections.NewKeySet(
			sb,
			collections.NewPrefix(types.GuardKeyPrefix),
			"guard",
			collections.StringKey,
		),
	}
}

// GetAuthority returns the keeper authority address.
func (k Keeper) GetAuthority() string {
	return k.authority
}

// ModuleAddress returns the treasury's module account.
func (k Keeper) ModuleAddress() sdk.AccAddress {
	return authtypes.NewModuleAddress(types.ModuleName)
}

// GetCoreState loads the treasury accounting state, defaulting to a
// fresh uninitialized state.
func (k Keeper) GetCoreState(ctx context.Context) (types.CoreState, error) {
	raw, err := k.CoreState.Get(ctx)
	if err != nil {
		if errors.Is(err, collections.ErrNotFound) {
			return types.NewCoreState(), nil
		}
		return types.CoreState{}, err
	}
	var state types.CoreState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return types.CoreState{}, fmt.Errorf("corrupt treasury state: %w", err)
	}
	return state, nil
}

func (k Keeper) setCoreState(ctx context.Context, state types.CoreState) error {
	if err := state.Validate(); err != nil {
		return err
	}
	bz, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return k.CoreState.Set(ctx, string(bz))
}

// GetConfig loads the policy configuration, defaulting to the standard
// oracle names and rates.
func (k Keeper) GetConfig(ctx context.Context) (types.Config, error) {
	raw, err := k.Config.Get(ctx)
	if err != nil {
		if errors.Is(err, collections.ErrNotFound) {
			return types.DefaultConfig(), nil
		}
		return types.Config{}, err
	}
	var cfg types.Config
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return types.Config{}, fmt.Errorf("corrupt treasury config: %w", err)
	}
	return cfg, nil
}

func (k Keeper) setConfig(ctx context.Context, cfg types.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	bz, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return k.Config.Set(ctx, string(bz))
}

// GetSchedule loads the seigniorage epoch schedule. A missing or
// zero-period schedule means the treasury was never configured.
func (k Keeper) GetSchedule(ctx context.Context) (epoch.Schedule, error) {
	raw, err := k.Schedule.Get(ctx)
	if err != nil {
		if errors.Is(err, collections.ErrNotFound) {
			return epoch.Schedule{}, fmt.Errorf("treasury schedule is not configured")
		}
		return epoch.Schedule{}, err
	}
	var s epoch.Schedule
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return epoch.Schedule{}, fmt.Errorf("corrupt treasury schedule: %w", err)
	}
	if s.PeriodSeconds <= 0 {
		return epoch.Schedule{}, fmt.Errorf("treasury schedule is not configured")
	}
	return s, nil
}

func (k Keeper) setSchedule(ctx context.Context, s epoch.Schedule) error {
	bz, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return k.Schedule.Set(ctx, string(bz))
}

// InitGenesis seeds state, config and the epoch schedule.
func (k Keeper) InitGenesis(ctx context.Context, gs *types.GenesisState) error {
	if gs == nil {
		return nil
	}
	if err := gs.Validate(); err != nil {
		return err
	}
	if err := k.setCoreState(ctx, gs.CoreState); err != nil {
		return err
	}
	if err := k.setConfig(ctx, gs.Config); err != nil {
		return err
	}
	if gs.Schedule.PeriodSeconds > 0 {
		if err := k.setSchedule(ctx, gs.Schedule); err != nil {
			return err
		}
	}
	return nil
}

// ExportGenesis dumps state, config and schedule.
func (k Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	state, err := k.GetCoreState(ctx)
	if err != nil {
		return nil, err
	}
	cfg, err := k.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	gs := &types.GenesisState{CoreState: state, Config: cfg}
	if s, err := k.GetSchedule(ctx); err == nil {
		gs.Schedule = s
	}
	return gs, nil
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
