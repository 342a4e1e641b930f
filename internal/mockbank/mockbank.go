// Package mockbank provides an in-memory stand-in for the x/bank keeper so
// module keepers can be exercised without wiring the full auth/bank stack.
package mockbank

import (
	"context"
	"fmt"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
)

// Keeper tracks balances and supplies in plain maps. Module accounts are
// addressed with authtypes.NewModuleAddress, matching the real bank keeper.
type Keeper struct {
	balances map[string]sdk.Coins
	supply   map[string]sdkmath.Int
}

// New returns an empty mock bank.
func New() *Keeper {
	return &Keeper{
		balances: make(map[string]sdk.Coins),
		supply:   make(map[string]sdkmath.Int),
	}
}

// Fund credits an account directly, bypassing mint accounting for supply.
// Test setup helper; supply is increased so invariants over totals hold.
func (k *Keeper) Fund(addr sdk.AccAddress, coins sdk.Coins) {
	k.balances[addr.String()] = k.balances[addr.String()].Add(coins...)
	for _, c := range coins {
		k.supply[c.Denom] = k.supplyOf(c.Denom).Add(c.Amount)
	}
}

func (k *Keeper) MintCoins(_ context.Context, moduleName string, amt sdk.Coins) error {
	addr := authtypes.NewModuleAddress(moduleName)
	k.balances[addr.String()] = k.balances[addr.String()].Add(amt...)
	for _, c := range amt {
		k.supply[c.Denom] = k.supplyOf(c.Denom).Add(c.Amount)
	}
	return nil
}

func (k *Keeper) BurnCoins(_ context.Context, moduleName string, amt sdk.Coins) error {
	addr := authtypes.NewModuleAddress(moduleName)
	if err := k.debit(addr, amt); err != nil {
		return err
	}
	for _, c := range amt {
		k.supply[c.Denom] = k.supplyOf(c.Denom).Sub(c.Amount)
	}
	return nil
}

func (k *Keeper) SendCoins(_ context.Context, from, to sdk.AccAddress, amt sdk.Coins) error {
	if err := k.debit(from, amt); err != nil {
		return err
	}
	k.balances[to.String()] = k.balances[to.String()].Add(amt...)
	return nil
}

func (k *Keeper) SendCoinsFromModuleToAccount(ctx context.Context, senderModule string, recipient sdk.AccAddress, amt sdk.Coins) error {
	return k.SendCoins(ctx, authtypes.NewModuleAddress(senderModule), recipient, amt)
}

func (k *Keeper) SendCoinsFromAccountToModule(ctx context.Context, sender sdk.AccAddress, recipientModule string, amt sdk.Coins) error {
	return k.SendCoins(ctx, sender, authtypes.NewModuleAddress(recipientModule), amt)
}

func (k *Keeper) GetBalance(_ context.Context, addr sdk.AccAddress, denom string) sdk.Coin {
	return sdk.NewCoin(denom, k.balances[addr.String()].AmountOf(denom))
}

func (k *Keeper) GetSupply(_ context.Context, denom string) sdk.Coin {
	return sdk.NewCoin(denom, k.supplyOf(denom))
}

func (k *Keeper) debit(addr sdk.AccAddress, amt sdk.Coins) error {
	have := k.balances[addr.String()]
	if !have.IsAllGTE(amt) {
		return fmt.Errorf("insufficient funds: %s has %s, needs %s", addr, have, amt)
	}
	k.balances[addr.String()] = have.Sub(amt...)
	return nil
}

func (k *Keeper) supplyOf(denom string) sdkmath.Int {
	if s, ok := k.supply[denom]; ok {
		return s
	}
	return sdkmath.ZeroInt()
}
