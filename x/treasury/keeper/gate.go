package keeper

import (
	"context"
	"fmt"

	ledgertypes "github.com/Fsud/basiscash-protocol/x/ledger/types"
	"github.com/Fsud/basiscash-protocol/x/treasury/types"
)

// checkGates runs the common preconditions shared by every mutating
// entry point, in order: one gated call per block per account, lifecycle
// is Active, the epoch schedule has started, and the treasury holds the
// operator role over all three ledgers and the boardroom at once.
func (k Keeper) checkGates(ctx context.Context, caller string) error {
	if err := k.takeBlockSlot(ctx, caller); err != nil {
		return err
	}

	state, err := k.GetCoreState(ctx)
	if err != nil {
		return err
	}
	switch state.Lifecycle {
	case types.LifecycleMigrated:
		return types.ErrMigrated
	case types.LifecycleActive:
	default:
		return types.ErrWrongLifecycle.Wrapf("treasury is %s", state.Lifecycle)
	}

	schedule, err := k.GetSchedule(ctx)
	if err != nil {
		return err
	}
	if !schedule.Started(k.blockTime(ctx)) {
		return types.ErrNotStarted
	}

	return k.checkOperatorRights(ctx)
}

// takeBlockSlot enforces the one-call-per-block-per-account guard. The
// slot is consumed even if a later gate rejects the call, because the
// whole state transition aborts together on error.
func (k Keeper) takeBlockSlot(ctx context.Context, caller string) error {
	sdkCtx, ok := unwrapSDKContext(ctx)
	if !ok {
		return fmt.Errorf("block context unavailable")
	}
	slot := fmt.Sprintf("%d/%s", sdkCtx.BlockHeight(), caller)
	if has, err := k.Guard.Has(ctx, slot); err != nil {
		return err
	} else if has {
		return types.ErrOneBlockOneFunction
	}
	return k.Guard.Set(ctx, slot)
}

// PruneBlockGuard drops every recorded call slot. Slots are keyed by
// block height, so by the time BeginBlock runs all of them belong to
// earlier blocks and are stale.
func (k Keeper) PruneBlockGuard(ctx context.Context) error {
	return k.Guard.Clear(ctx, nil)
}

// checkOperatorRights verifies the treasury simultaneously operates the
// cash, bond and share ledgers and the boardroom. Losing any one right
// disables all mutating entry points rather than half-executing.
func (k Keeper) checkOperatorRights(ctx context.Context) error {
	self := k.ModuleAddress().String()
	for _, denom := range []string{ledgertypes.CashDenom, ledgertypes.BondDenom, ledgertypes.ShareDenom} {
		op, err := k.ledgerKeeper.Operator(ctx, denom)
		if err != nil {
			return err
		}
		if op != self {
			return types.ErrNeedsPermission.Wrapf("not the operator of %s", denom)
		}
	}
	op, err := k.rewardSink.GetOperator(ctx)
	if err != nil {
		return err
	}
	if op != self {
		return types.ErrNeedsPermission.Wrap("not the boardroom operator")
	}
	return nil
}

// refreshOracles opportunistically triggers each oracle's own epoch
// update. Failures are swallowed: the oracle's committed price governs
// correctness independently of whether this refresh landed.
func (k Keeper) refreshOracles(ctx context.Context) {
	cfg, err := k.GetConfig(ctx)
	if err != nil {
		return
	}
	for _, name := range []string{cfg.BondOracle, cfg.SeigniorageOracle} {
		if !k.oracleKeeper.Callable(ctx, name) {
			continue
		}
		if err := k.oracleKeeper.Update(ctx, name); err != nil {
			if sdkCtx, ok := unwrapSDKContext(ctx); ok {
				sdkCtx.Logger().Debug("opportunistic oracle update failed",
					"oracle", name, "err", err)
			}
		}
	}
}

func (k Keeper) blockTime(ctx context.Context) int64 {
	sdkCtx, ok := unwrapSDKContext(ctx)
	if !ok {
		return 0
	}
	return sdkCtx.BlockTime().Unix()
}
