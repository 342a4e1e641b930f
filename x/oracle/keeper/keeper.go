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

	"github.com/Fsud/basiscash-protocol/internal/epoch"
	"github.com/Fsud/basiscash-protocol/x/oracle/types"
)

// Event types emitted by the oracle module.
const (
	EventTypePricePosted  = "oracle_price_posted"
	EventTypePriceUpdated = "oracle_price_updated"

	AttributeKeyOracle = "oracle"
	AttributeKeyDenom  = "denom"
	AttributeKeyPrice  = "price"
	AttributeKeyFeeder = "feeder"
	AttributeKeyEpoch  = "epoch"
)

// scale is the fixed-point unit prices are quoted in (1e18 == 1.0).
var scale = sdkmath.NewIntWithDecimal(1, 18)

// Keeper manages named, epoch-gated price oracles. Feeders post raw
// observations at will; Update promotes the latest observation to the
// committed price once per oracle epoch; Consult answers only from the
// committed price and fails when none exists.
type Keeper struct {
	cdc          codec.Codec
	storeService store.KVStoreService
	authority    string

	Instances collections.Map[string, string]
	Feeders   collections.KeySet[string]
}

// NewKeeper creates a new oracle keeper.
func NewKeeper(
	cdc codec.Codec,
	storeService store.KVStoreService,
	authority string,
) Keeper {
	sb := collections.NewSchemaBuilder(storeService)

	return Keeper{
		cdc:          cdc,
		storeService: storeService,
		authority:    authority,
		Instances: collections.NewMap(
			sb,
			collections.NewPrefix(types.InstanceKeyPrefix),
			"instances",
			collections.StringKey,
			collections.StringValue,
		),
		Feeders: collections.NewKeySet(
			sb,
			collections.NewPrefix(types.FeederKeyPrefix),
			"feeders",
			collections.StringKey,
		),
	}
}

// GetAuthority returns the keeper authority address.
func (k Keeper) GetAuthority() string {
	return k.authority
}

// CreateOracle registers a named oracle with its own epoch schedule.
// Authority-gated; the start instant must lie strictly after the
// current block time.
func (k Keeper) CreateOracle(ctx context.Context, actor, name, denom string, start, periodSeconds, startEpoch int64) error {
	if actor != k.authority {
		return fmt.Errorf("%s is not the oracle authority", actor)
	}
	if has, err := k.Instances.Has(ctx, name); err != nil {
		return err
	} else if has {
		return fmt.Errorf("oracle %s already exists", name)
	}
	if start <= sdk.UnwrapSDKContext(ctx).BlockTime().Unix() {
		return fmt.Errorf("oracle start time must be in the future, got %d", start)
	}
	schedule, err := epoch.NewSchedule(start, periodSeconds, startEpoch)
	if err != nil {
		return err
	}
	inst := types.Instance{Name: name, Denom: denom, Schedule: schedule}
	if err := inst.Validate(); err != nil {
		return err
	}
	return k.setInstance(ctx, inst)
}

// AddFeeder allowlists a price feeder. Authority-gated.
func (k Keeper) AddFeeder(ctx context.Context, actor, feeder string) error {
	if actor != k.authority {
		return fmt.Errorf("%s is not the oracle authority", actor)
	}
	return k.Feeders.Set(ctx, feeder)
}

// PostPrice records a pending observation from an allowlisted feeder. The
// observation only becomes the committed price at the next Update.
func (k Keeper) PostPrice(ctx context.Context, feeder, name string, price sdkmath.Int) error {
	allowed, err := k.Feeders.Has(ctx, feeder)
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("%s is not an allowed price feeder", feeder)
	}
	if !price.IsPositive() {
		return fmt.Errorf("posted price must be positive, got %s", price)
	}

	inst, err := k.getInstance(ctx, name)
	if err != nil {
		return err
	}
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	inst.Pending = &types.PriceObservation{
		Price:        price,
		Feeder:       feeder,
		PostedAtUnix: sdkCtx.BlockTime().Unix(),
	}
	if err := k.setInstance(ctx, inst); err != nil {
		return err
	}

	sdkCtx.EventManager().EmitEvent(sdk.NewEvent(
		EventTypePricePosted,
		sdk.NewAttribute(AttributeKeyOracle, name),
		sdk.NewAttribute(AttributeKeyDenom, inst.Denom),
		sdk.NewAttribute(AttributeKeyPrice, price.String()),
		sdk.NewAttribute(AttributeKeyFeeder, feeder),
	))
	return nil
}

// Callable reports whether the oracle's own epoch gate is open.
func (k Keeper) Callable(ctx context.Context, name string) bool {
	inst, err := k.getInstance(ctx, name)
	if err != nil {
		return false
	}
	now := sdk.UnwrapSDKContext(ctx).BlockTime().Unix()
	return inst.Schedule.Started(now) && inst.Schedule.Callable(now)
}

// Update promotes the pending observation to the committed price and
// advances the oracle's epoch gate. Errors when the gate is closed or when
// there is nothing to commit yet; treasury callers treat both as
// best-effort.
func (k Keeper) Update(ctx context.Context, name string) error {
	inst, err := k.getInstance(ctx, name)
	if err != nil {
		return err
	}
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	now := sdkCtx.BlockTime().Unix()
	if !inst.Schedule.Started(now) {
		return fmt.Errorf("oracle %s is not started yet", name)
	}
	if !inst.Schedule.Callable(now) {
		return fmt.Errorf("oracle %s epoch is not open", name)
	}
	if inst.Pending == nil && inst.Price == nil {
		return fmt.Errorf("oracle %s has no observation to commit", name)
	}

	if inst.Pending != nil {
		inst.Price = &types.PriceRecord{
			Price:         inst.Pending.Price,
			UpdatedAtUnix: now,
			Epoch:         inst.Schedule.CurrentEpoch(now),
		}
		inst.Pending = nil
	}
	// With no fresh observation the committed price carries over; the
	// epoch still advances so the cadence keeps moving.
	inst.Schedule.MarkExecuted(now)
	if err := k.setInstance(ctx, inst); err != nil {
		return err
	}

	sdkCtx.EventManager().EmitEvent(sdk.NewEvent(
		EventTypePriceUpdated,
		sdk.NewAttribute(AttributeKeyOracle, name),
		sdk.NewAttribute(AttributeKeyDenom, inst.Denom),
		sdk.NewAttribute(AttributeKeyPrice, inst.Price.Price.String()),
		sdk.NewAttribute(AttributeKeyEpoch, fmt.Sprintf("%d", inst.Schedule.LastEpoch())),
	))
	return nil
}

// Consult returns the committed price of denom for the given base amount
// (1e18 == one unit). A missing committed price is a hard failure; there is
// no fallback quote.
func (k Keeper) Consult(ctx context.Context, name, denom string, amount sdkmath.Int) (sdkmath.Int, error) {
	inst, err := k.getInstance(ctx, name)
	if err != nil {
		return sdkmath.Int{}, err
	}
	if inst.Denom != denom {
		return sdkmath.Int{}, fmt.Errorf("oracle %s quotes %s, not %s", name, inst.Denom, denom)
	}
	if inst.Price == nil {
		return sdkmath.Int{}, fmt.Errorf("oracle %s failed to consult %s price: no committed price", name, denom)
	}
	return inst.Price.Price.Mul(amount).Quo(scale), nil
}

// LastEpoch returns the oracle's last executed epoch index. The treasury
// uses it to recompute the bond cap at most once per oracle epoch.
func (k Keeper) LastEpoch(ctx context.Context, name string) (int64, error) {
	inst, err := k.getInstance(ctx, name)
	if err != nil {
		return 0, err
	}
	return inst.Schedule.LastEpoch(), nil
}

// SetPeriod changes an oracle's epoch length. Authority-gated; past
// executions are not renormalized.
func (k Keeper) SetPeriod(ctx context.Context, actor, name string, periodSeconds int64) error {
	if actor != k.authority {
		return fmt.Errorf("%s is not the oracle authority", actor)
	}
	inst, err := k.getInstance(ctx, name)
	if err != nil {
		return err
	}
	if err := inst.Schedule.SetPeriod(periodSeconds); err != nil {
		return err
	}
	return k.setInstance(ctx, inst)
}

// InitGenesis seeds instances and feeders.
func (k Keeper) InitGenesis(ctx context.Context, gs *types.GenesisState) error {
	if gs == nil {
		return nil
	}
	if err := gs.Validate(); err != nil {
		return err
	}
	for _, inst := range gs.Instances {
		if err := k.setInstance(ctx, inst); err != nil {
			return err
		}
	}
	for _, f := range gs.Feeders {
		if err := k.Feeders.Set(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

// ExportGenesis dumps instances and feeders.
func (k Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	gs := types.DefaultGenesis()
	err := k.Instances.Walk(ctx, nil, func(_ string, raw string) (bool, error) {
		var inst types.Instance
		if err := json.Unmarshal([]byte(raw), &inst); err != nil {
			return true, err
		}
		gs.Instances = append(gs.Instances, inst)
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	err = k.Feeders.Walk(ctx, nil, func(feeder string) (bool, error) {
		gs.Feeders = append(gs.Feeders, feeder)
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return gs, nil
}

func (k Keeper) getInstance(ctx context.Context, name string) (types.Instance, error) {
	raw, err := k.Instances.Get(ctx, name)
	if err != nil {
		if errors.Is(err, collections.ErrNotFound) {
			return types.Instance{}, fmt.Errorf("oracle %s does not exist", name)
		}
		return types.Instance{}, err
	}
	var inst types.Instance
	if err := json.Unmarshal([]byte(raw), &inst); err != nil {
		return types.Instance{}, fmt.Errorf("corrupt oracle instance %s: %w", name, err)
	}
	return inst, nil
}

func (k Keeper) setInstance(ctx context.Context, inst types.Instance) error {
	bz, err := json.Marshal(inst)
	if err != nil {
		return err
	}
	return k.Instances.Set(ctx, inst.Name, string(bz))
}
