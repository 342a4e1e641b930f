package keeper

import (
	"context"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/Fsud/basiscash-protocol/internal/epoch"
	ledgertypes "github.com/Fsud/basiscash-protocol/x/ledger/types"
	"github.com/Fsud/basiscash-protocol/x/treasury/types"
)

// Initialize moves the treasury from Uninitialized to Active, booking
// whatever cash it already holds as the starting redemption reserve.
// One-way; authority-gated.
func (k Keeper) Initialize(ctx context.Context, actor string) error {
	if actor != k.authority {
		return types.ErrNeedsPermission.Wrapf("%s cannot initialize the treasury", actor)
	}
	state, err := k.GetCoreState(ctx)
	if err != nil {
		return err
	}
	if state.Lifecycle != types.LifecycleUninitialized {
		return types.ErrWrongLifecycle.Wrapf("treasury is already %s", state.Lifecycle)
	}

	state.Lifecycle = types.LifecycleActive
	state.AccumulatedSeigniorage = k.CashBalance(ctx)
	if err := k.setCoreState(ctx, state); err != nil {
		return err
	}

	if sdkCtx, ok := unwrapSDKContext(ctx); ok {
		if em := sdkCtx.EventManager(); em != nil {
			em.EmitEvent(sdk.NewEvent(
				EventTypeInitialized,
				sdk.NewAttribute(AttributeKeyAmount, state.AccumulatedSeigniorage.String()),
				sdk.NewAttribute(AttributeKeyTimestamp, fmt.Sprintf("%d", sdkCtx.BlockTime().Unix())),
			))
		}
	}
	return nil
}

// SetSchedule installs the seigniorage epoch schedule. Authority-gated
// and only allowed before the treasury activates, so a live schedule
// cannot be replaced wholesale (use SetPeriod for that). The start
// instant must lie strictly after the current block time.
func (k Keeper) SetSchedule(ctx context.Context, actor string, start, periodSeconds, startEpoch int64) error {
	if actor != k.authority {
		return types.ErrNeedsPermission.Wrapf("%s cannot set the treasury schedule", actor)
	}
	state, err := k.GetCoreState(ctx)
	if err != nil {
		return err
	}
	if state.Lifecycle != types.LifecycleUninitialized {
		return types.ErrWrongLifecycle.Wrapf("treasury is already %s", state.Lifecycle)
	}
	if start <= k.blockTime(ctx) {
		return fmt.Errorf("schedule start time must be in the future, got %d", start)
	}
	s, err := epoch.NewSchedule(start, periodSeconds, startEpoch)
	if err != nil {
		return err
	}
	return k.setSchedule(ctx, s)
}

// Migrate hands the protocol to a successor: operator and ownership roles
// plus the full balances of all three ledgers move to the target, and
// every gated entry point is disabled permanently. One-way;
// authority-gated; a second call fails.
func (k Keeper) Migrate(ctx context.Context, actor string, target sdk.AccAddress) error {
	if actor != k.authority {
		return types.ErrNeedsPermission.Wrapf("%s cannot migrate the treasury", actor)
	}
	if target.Empty() {
		return fmt.Errorf("migration target cannot be empty")
	}
	state, err := k.GetCoreState(ctx)
	if err != nil {
		return err
	}
	if state.Lifecycle == types.LifecycleMigrated {
		return types.ErrMigrated
	}

	self := k.ModuleAddress()
	for _, denom := range []string{ledgertypes.CashDenom, ledgertypes.BondDenom, ledgertypes.ShareDenom} {
		if err := k.ledgerKeeper.TransferOperator(ctx, denom, self.String(), target.String()); err != nil {
			return err
		}
		if err := k.ledgerKeeper.TransferOwnership(ctx, denom, self.String(), target.String()); err != nil {
			return err
		}
		balance := k.ledgerKeeper.BalanceOf(ctx, denom, self)
		if balance.IsPositive() {
			if err := k.ledgerKeeper.Transfer(ctx, denom, self, target, balance); err != nil {
				return err
			}
		}
	}

	state.Lifecycle = types.LifecycleMigrated
	state.MigrationTarget = target.String()
	if err := k.setCoreState(ctx, state); err != nil {
		return err
	}

	if sdkCtx, ok := unwrapSDKContext(ctx); ok {
		if em := sdkCtx.EventManager(); em != nil {
			em.EmitEvent(sdk.NewEvent(
				EventTypeMigrated,
				sdk.NewAttribute(AttributeKeyTarget, target.String()),
			))
		}
	}
	return nil
}
