package keeper

import (
	"context"

	sdkmath "cosmossdk.io/math"

	ledgertypes "github.com/Fsud/basiscash-protocol/x/ledger/types"
	"github.com/Fsud/basiscash-protocol/x/treasury/types"
)

// CirculatingSupply is the cash supply outside the treasury reserve.
func (k Keeper) CirculatingSupply(ctx context.Context) (sdkmath.Int, error) {
	state, err := k.GetCoreState(ctx)
	if err != nil {
		return sdkmath.Int{}, err
	}
	return k.ledgerKeeper.TotalSupply(ctx, ledgertypes.CashDenom).Sub(state.AccumulatedSeigniorage), nil
}

// CeilingPrice is the redemption threshold derived from the ceiling
// curve at the current circulating supply.
func (k Keeper) CeilingPrice(ctx context.Context) (sdkmath.Int, error) {
	cfg, err := k.GetConfig(ctx)
	if err != nil {
		return sdkmath.Int{}, err
	}
	circ, err := k.CirculatingSupply(ctx)
	if err != nil {
		return sdkmath.Int{}, err
	}
	return types.RatioCurve{Bps: cfg.CeilingRatioBps}.Ceiling(circ), nil
}

// BondOraclePrice is the cash price per peg unit from the bond oracle.
// A failed consultation is fatal to the caller.
func (k Keeper) BondOraclePrice(ctx context.Context) (sdkmath.Int, error) {
	cfg, err := k.GetConfig(ctx)
	if err != nil {
		return sdkmath.Int{}, err
	}
	return k.oraclePrice(ctx, cfg.BondOracle)
}

// SeigniorageOraclePrice is the cash price per peg unit from the
// seigniorage oracle.
func (k Keeper) SeigniorageOraclePrice(ctx context.Context) (sdkmath.Int, error) {
	cfg, err := k.GetConfig(ctx)
	if err != nil {
		return sdkmath.Int{}, err
	}
	return k.oraclePrice(ctx, cfg.SeigniorageOracle)
}

// Reserve returns cash the treasury has earmarked for bond redemptions.
func (k Keeper) Reserve(ctx context.Context) (sdkmath.Int, error) {
	state, err := k.GetCoreState(ctx)
	if err != nil {
		return sdkmath.Int{}, err
	}
	return state.AccumulatedSeigniorage, nil
}

// CashBalance returns the treasury's full cash holding, reserved or not.
func (k Keeper) CashBalance(ctx context.Context) sdkmath.Int {
	return k.ledgerKeeper.BalanceOf(ctx, ledgertypes.CashDenom, k.ModuleAddress())
}

// ReserveInvariant reports whether the reserve accounting exceeds the
// cash actually held. A non-nil return means the books are broken.
func (k Keeper) ReserveInvariant(ctx context.Context) error {
	state, err := k.GetCoreState(ctx)
	if err != nil {
		return err
	}
	if state.AccumulatedSeigniorage.GT(k.CashBalance(ctx)) {
		return types.ErrInsufficientReserve.Wrapf(
			"reserve %s exceeds cash balance %s",
			state.AccumulatedSeigniorage, k.CashBalance(ctx),
		)
	}
	return nil
}

func (k Keeper) oraclePrice(ctx context.Context, name string) (sdkmath.Int, error) {
	price, err := k.oracleKeeper.Consult(ctx, name, ledgertypes.CashDenom, types.PegPrice)
	if err != nil {
		return sdkmath.Int{}, types.ErrOracleFailed.Wrapf("%s: %v", name, err)
	}
	return price, nil
}
