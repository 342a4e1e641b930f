package keeper

import (
	"context"
	"fmt"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	ledgertypes "github.com/Fsud/basiscash-protocol/x/ledger/types"
	"github.com/Fsud/basiscash-protocol/x/treasury/types"
)

// BuyBonds sells bonds at a discount while cash trades below peg. The
// buyer spends amount of cash (clamped to the epoch bond cap) and
// receives amount*peg/price bonds, redeemable at peg later. targetPrice
// is the buyer's slippage bound.
func (k Keeper) BuyBonds(ctx context.Context, buyer sdk.AccAddress, amount, targetPrice sdkmath.Int) error {
	if err := k.checkGates(ctx, buyer.String()); err != nil {
		return err
	}
	if amount.IsNil() || !amount.IsPositive() {
		return types.ErrZeroAmount.Wrap("cannot purchase bonds with zero amount")
	}

	k.refreshOracles(ctx)

	price, err := k.BondOraclePrice(ctx)
	if err != nil {
		return err
	}
	if price.GT(targetPrice) {
		return types.ErrPriceMoved.Wrapf("price %s exceeds target %s", price, targetPrice)
	}
	if price.GTE(types.PegPrice) {
		return types.ErrPriceNotEligible.Wrapf("price %s not below peg", price)
	}

	state, err := k.GetCoreState(ctx)
	if err != nil {
		return err
	}
	state, err = k.refreshBondCap(ctx, state, price)
	if err != nil {
		return err
	}

	// Cap the cash spend at the remaining bond gap valued at the
	// current discount.
	capInCash := state.BondCap.Mul(price).Quo(types.PegPrice)
	spend := sdkmath.MinInt(amount, capInCash)
	if !spend.IsPositive() {
		return types.ErrBondCapZero
	}

	self := k.ModuleAddress().String()
	if err := k.ledgerKeeper.BurnFrom(ctx, self, ledgertypes.CashDenom, buyer, spend); err != nil {
		return err
	}
	bonds := spend.Mul(types.PegPrice).Quo(price)
	if err := k.ledgerKeeper.Mint(ctx, self, ledgertypes.BondDenom, buyer, bonds); err != nil {
		return err
	}
	if err := k.setCoreState(ctx, state); err != nil {
		return err
	}

	k.emitBondEvent(ctx, EventTypeBoughtBonds, buyer.String(), spend, bonds)
	return nil
}

// RedeemBonds burns the caller's bonds and pays out cash at peg, allowed
// only while cash trades above the ceiling price. Redemption draws on the
// treasury's whole cash balance, reserved or not.
func (k Keeper) RedeemBonds(ctx context.Context, redeemer sdk.AccAddress, amount sdkmath.Int) error {
	if err := k.checkGates(ctx, redeemer.String()); err != nil {
		return err
	}
	if amount.IsNil() || !amount.IsPositive() {
		return types.ErrZeroAmount.Wrap("cannot redeem bonds with zero amount")
	}

	k.refreshOracles(ctx)

	price, err := k.BondOraclePrice(ctx)
	if err != nil {
		return err
	}
	ceiling, err := k.CeilingPrice(ctx)
	if err != nil {
		return err
	}
	if !price.GT(ceiling) {
		return types.ErrPriceNotEligible.Wrapf("price %s not above ceiling %s", price, ceiling)
	}
	if k.CashBalance(ctx).LT(amount) {
		return types.ErrInsufficientReserve.Wrapf("treasury holds %s cash, %s requested", k.CashBalance(ctx), amount)
	}

	state, err := k.GetCoreState(ctx)
	if err != nil {
		return err
	}
	state.AccumulatedSeigniorage = state.AccumulatedSeigniorage.Sub(
		sdkmath.MinInt(state.AccumulatedSeigniorage, amount),
	)
	if err := k.setCoreState(ctx, state); err != nil {
		return err
	}

	self := k.ModuleAddress().String()
	if err := k.ledgerKeeper.BurnFrom(ctx, self, ledgertypes.BondDenom, redeemer, amount); err != nil {
		return err
	}
	if err := k.ledgerKeeper.Transfer(ctx, ledgertypes.CashDenom, k.ModuleAddress(), redeemer, amount); err != nil {
		return err
	}

	k.emitBondEvent(ctx, EventTypeRedeemedBonds, redeemer.String(), amount, amount)
	return nil
}

// refreshBondCap recomputes the bond cap once per bond-oracle epoch: the
// supply gap below peg, less bonds already outstanding.
func (k Keeper) refreshBondCap(ctx context.Context, state types.CoreState, price sdkmath.Int) (types.CoreState, error) {
	cfg, err := k.GetConfig(ctx)
	if err != nil {
		return state, err
	}
	oracleEpoch, err := k.oracleKeeper.LastEpoch(ctx, cfg.BondOracle)
	if err != nil {
		return state, fmt.Errorf("bond oracle epoch: %w", err)
	}
	if state.LastBondOracleEpoch == oracleEpoch {
		return state, nil
	}

	circ, err := k.CirculatingSupply(ctx)
	if err != nil {
		return state, err
	}
	bondSupply := k.ledgerKeeper.TotalSupply(ctx, ledgertypes.BondDenom)

	cap := circ.Mul(types.PegPrice.Sub(price)).Quo(types.PegPrice)
	cap = cap.Sub(sdkmath.MinInt(cap, bondSupply))
	state.BondCap = cap
	state.LastBondOracleEpoch = oracleEpoch
	return state, nil
}

func (k Keeper) emitBondEvent(ctx context.Context, eventType, account string, cash, bonds sdkmath.Int) {
	sdkCtx, ok := unwrapSDKContext(ctx)
	if !ok {
		return
	}
	if em := sdkCtx.EventManager(); em != nil {
		em.EmitEvent(sdk.NewEvent(
			eventType,
			sdk.NewAttribute(AttributeKeyAccount, account),
			sdk.NewAttribute(AttributeKeyCashSpent, cash.String()),
			sdk.NewAttribute(AttributeKeyBonds, bonds.String()),
		))
	}
}
