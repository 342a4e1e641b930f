package keeper

import (
	"context"
	"fmt"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	ledgertypes "github.com/Fsud/basiscash-protocol/x/ledger/types"
	"github.com/Fsud/basiscash-protocol/x/treasury/types"
)

// AllocateSeigniorage is the once-per-epoch expansion step. When cash
// trades above the ceiling it mints the supply gap and routes it, in
// order, to the fee fund, the bond-redemption reserve and the boardroom.
// When the price sits at or below the ceiling the call succeeds without
// touching balances, but the epoch gate still advances.
func (k Keeper) AllocateSeigniorage(ctx context.Context, caller sdk.AccAddress) error {
	if err := k.checkGates(ctx, caller.String()); err != nil {
		return err
	}

	now := k.blockTime(ctx)
	schedule, err := k.GetSchedule(ctx)
	if err != nil {
		return err
	}
	if !schedule.Callable(now) {
		return types.ErrNotCallable.Wrapf("next epoch opens at epoch %d", schedule.NextEpoch())
	}

	k.refreshOracles(ctx)

	price, err := k.SeigniorageOraclePrice(ctx)
	if err != nil {
		return err
	}
	ceiling, err := k.CeilingPrice(ctx)
	if err != nil {
		return err
	}

	if price.GT(ceiling) {
		if err := k.expandSupply(ctx, price); err != nil {
			return err
		}
	}

	schedule.MarkExecuted(now)
	return k.setSchedule(ctx, schedule)
}

// expandSupply mints the seigniorage for this epoch and distributes it.
func (k Keeper) expandSupply(ctx context.Context, price sdkmath.Int) error {
	state, err := k.GetCoreState(ctx)
	if err != nil {
		return err
	}
	cfg, err := k.GetConfig(ctx)
	if err != nil {
		return err
	}
	circ, err := k.CirculatingSupply(ctx)
	if err != nil {
		return err
	}

	seigniorage := circ.Mul(price.Sub(types.PegPrice)).Quo(types.PegPrice)
	if !seigniorage.IsPositive() {
		return nil
	}

	self := k.ModuleAddress().String()
	if err := k.ledgerKeeper.Mint(ctx, self, ledgertypes.CashDenom, k.ModuleAddress(), seigniorage); err != nil {
		return err
	}

	remaining := seigniorage

	// Fee fund share.
	fee := seigniorage.MulRaw(int64(cfg.FundAllocationRate)).QuoRaw(100)
	if fee.IsPositive() {
		memo := fmt.Sprintf("seigniorage contribution at %d", k.blockTime(ctx))
		if err := k.feeSink.Deposit(ctx, k.ModuleAddress(), ledgertypes.CashDenom, fee, memo); err != nil {
			return err
		}
		k.emitFundedEvent(ctx, EventTypeContributionFunded, fee)
		remaining = remaining.Sub(fee)
	}

	// Reserve share: fill the gap between outstanding bonds and cash
	// already reserved. When the gap would swallow everything, keep 20%
	// back for the boardroom.
	bondSupply := k.ledgerKeeper.TotalSupply(ctx, ledgertypes.BondDenom)
	gap := bondSupply.Sub(state.AccumulatedSeigniorage)
	if gap.IsNegative() {
		gap = sdkmath.ZeroInt()
	}
	reserve := sdkmath.MinInt(remaining, gap)
	if reserve.IsPositive() {
		if reserve.Equal(remaining) {
			reserve = reserve.MulRaw(80).QuoRaw(100)
		}
		state.AccumulatedSeigniorage = state.AccumulatedSeigniorage.Add(reserve)
		k.emitFundedEvent(ctx, EventTypeReserveFunded, reserve)
		remaining = remaining.Sub(reserve)
	}

	// Boardroom share.
	if remaining.IsPositive() {
		if err := k.rewardSink.AllocateSeigniorage(ctx, self, k.ModuleAddress(), remaining); err != nil {
			return err
		}
		k.emitFundedEvent(ctx, EventTypeBoardroomFunded, remaining)
	}

	return k.setCoreState(ctx, state)
}

func (k Keeper) emitFundedEvent(ctx context.Context, eventType string, amount sdkmath.Int) {
	sdkCtx, ok := unwrapSDKContext(ctx)
	if !ok {
		return
	}
	if em := sdkCtx.EventManager(); em != nil {
		em.EmitEvent(sdk.NewEvent(
			eventType,
			sdk.NewAttribute(AttributeKeyAmount, amount.String()),
			sdk.NewAttribute(AttributeKeyTimestamp, fmt.Sprintf("%d", sdkCtx.BlockTime().Unix())),
		))
	}
}
