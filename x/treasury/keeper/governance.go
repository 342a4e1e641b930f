package keeper

import (
	"context"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/Fsud/basiscash-protocol/x/treasury/types"
)

// Governance setters. All are authority-gated and emit a before/after
// change record.

// SetFundAllocationRate updates the percentage of seigniorage routed to
// the fee fund.
func (k Keeper) SetFundAllocationRate(ctx context.Context, actor string, rate uint64) error {
	return k.updateConfig(ctx, actor, "fund_allocation_rate", func(cfg *types.Config) (string, string) {
		before := fmt.Sprintf("%d", cfg.FundAllocationRate)
		cfg.FundAllocationRate = rate
		return before, fmt.Sprintf("%d", rate)
	})
}

// SetBondOracle points bond pricing at a different oracle instance.
func (k Keeper) SetBondOracle(ctx context.Context, actor, name string) error {
	return k.updateConfig(ctx, actor, "bond_oracle", func(cfg *types.Config) (string, string) {
		before := cfg.BondOracle
		cfg.BondOracle = name
		return before, name
	})
}

// SetSeigniorageOracle points expansion pricing at a different oracle
// instance.
func (k Keeper) SetSeigniorageOracle(ctx context.Context, actor, name string) error {
	return k.updateConfig(ctx, actor, "seigniorage_oracle", func(cfg *types.Config) (string, string) {
		before := cfg.SeigniorageOracle
		cfg.SeigniorageOracle = name
		return before, name
	})
}

// SetCeilingRatio reshapes the redemption ceiling curve.
func (k Keeper) SetCeilingRatio(ctx context.Context, actor string, bps uint64) error {
	return k.updateConfig(ctx, actor, "ceiling_ratio_bps", func(cfg *types.Config) (string, string) {
		before := fmt.Sprintf("%d", cfg.CeilingRatioBps)
		cfg.CeilingRatioBps = bps
		return before, fmt.Sprintf("%d", bps)
	})
}

// SetPeriod changes the epoch length, effective immediately for all
// subsequent gate checks. Past execution timestamps are not rewritten,
// so epoch indices computed after a period change reflect the new
// period against the old timeline.
func (k Keeper) SetPeriod(ctx context.Context, actor string, periodSeconds int64) error {
	if actor != k.authority {
		return types.ErrNeedsPermission.Wrapf("%s cannot set the treasury period", actor)
	}
	schedule, err := k.GetSchedule(ctx)
	if err != nil {
		return err
	}
	before := schedule.PeriodSeconds
	if err := schedule.SetPeriod(periodSeconds); err != nil {
		return err
	}
	if err := k.setSchedule(ctx, schedule); err != nil {
		return err
	}
	k.emitChangeEvent(ctx, EventTypeSchedulePeriodUpdate, "period_seconds",
		fmt.Sprintf("%d", before), fmt.Sprintf("%d", periodSeconds))
	return nil
}

func (k Keeper) updateConfig(ctx context.Context, actor, field string, mutate func(*types.Config) (before, after string)) error {
	if actor != k.authority {
		return types.ErrNeedsPermission.Wrapf("%s cannot update the treasury config", actor)
	}
	cfg, err := k.GetConfig(ctx)
	if err != nil {
		return err
	}
	before, after := mutate(&cfg)
	if err := k.setConfig(ctx, cfg); err != nil {
		return err
	}
	k.emitChangeEvent(ctx, EventTypeConfigUpdated, field, before, after)
	return nil
}

func (k Keeper) emitChangeEvent(ctx context.Context, eventType, field, before, after string) {
	sdkCtx, ok := unwrapSDKContext(ctx)
	if !ok {
		return
	}
	if em := sdkCtx.EventManager(); em != nil {
		em.EmitEvent(sdk.NewEvent(
			eventType,
			sdk.NewAttribute(AttributeKeyField, field),
			sdk.NewAttribute(AttributeKeyBefore, before),
			sdk.NewAttribute(AttributeKeyAfter, after),
		))
	}
}
