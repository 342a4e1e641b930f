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

	"github.com/Fsud/basiscash-protocol/x/ledger/types"
)

// Event types emitted by the ledger module.
const (
	EventTypeOperatorTransferred  = "ledger_operator_transferred"
	EventTypeOwnershipTransferred = "ledger_ownership_transferred"

	AttributeKeyDenom    = "denom"
	AttributeKeyPrevious = "previous"
	AttributeKeyNext     = "next"
)

// BankKeeper is the expected bank interface backing mint, burn and transfer.
type BankKeeper interface {
	MintCoins(ctx context.Context, moduleName string, amt sdk.Coins) error
	BurnCoins(ctx context.Context, moduleName string, amt sdk.Coins) error
	SendCoins(ctx context.Context, from, to sdk.AccAddress, amt sdk.Coins) error
	SendCoinsFromModuleToAccount(ctx context.Context, senderModule string, recipient sdk.AccAddress, amt sdk.Coins) error
	SendCoinsFromAccountToModule(ctx context.Context, sender sdk.AccAddress, recipientModule string, amt sdk.Coins) error
	GetBalance(ctx context.Context, addr sdk.AccAddress, denom string) sdk.Coin
	GetSupply(ctx context.Context, denom string) sdk.Coin
}

// Keeper manages owner/operator roles per asset and routes supply changes
// through the bank module. Mint and burn require the acting address to hold
// the denom's operator role, the same discipline the treasury relies on.
type Keeper struct {
	cdc          codec.Codec
	storeService store.KVStoreService
	authority    string

	bankKeeper BankKeeper

	Roles collections.Map[string, string]
}

// NewKeeper creates a new ledger keeper.
func NewKeeper(
	cdc codec.Codec,
	storeService store.KVStoreService,
	bankKeeper BankKeeper,
	authority string,
) Keeper {
	sb := collections.NewSchemaBuilder(storeService)

	return Keeper{
		cdc:          cdc,
		storeService: storeService,
		authority:    authority,
		bankKeeper:   bankKeeper,
		Roles: collections.NewMap(
			sb,
			collections.NewPrefix(types.RoleKeyPrefix),
			"roles",
			collections.StringKey,
			collections.StringValue,
		),
	}
}

// GetAuthority returns the keeper authority address.
func (k Keeper) GetAuthority() string {
	return k.authority
}

// InitDenom registers a managed asset with its initial roles. Idempotent
// registration of an already-known denom is rejected.
func (k Keeper) InitDenom(ctx context.Context, denom, owner, operator string) error {
	record := types.RoleRecord{Denom: denom, Owner: owner, Operator: operator}
	if err := record.Validate(); err != nil {
		return err
	}
	if has, err := k.Roles.Has(ctx, denom); err != nil {
		return err
	} else if has {
		return fmt.Errorf("denom %s is already registered", denom)
	}
	return k.setRole(ctx, record)
}

// Operator returns the operator role holder for a denom.
func (k Keeper) Operator(ctx context.Context, denom string) (string, error) {
	record, err := k.getRole(ctx, denom)
	if err != nil {
		return "", err
	}
	return record.Operator, nil
}

// Owner returns the owner role holder for a denom.
func (k Keeper) Owner(ctx context.Context, denom string) (string, error) {
	record, err := k.getRole(ctx, denom)
	if err != nil {
		return "", err
	}
	return record.Owner, nil
}

// Mint creates amount of denom for the recipient. Actor must hold the
// operator role.
func (k Keeper) Mint(ctx context.Context, actor, denom string, to sdk.AccAddress, amount sdkmath.Int) error {
	if err := k.requireOperator(ctx, actor, denom); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return fmt.Errorf("mint amount must be positive, got %s", amount)
	}
	coins := sdk.NewCoins(sdk.NewCoin(denom, amount))
	if err := k.bankKeeper.MintCoins(ctx, types.ModuleName, coins); err != nil {
		return err
	}
	return k.bankKeeper.SendCoinsFromModuleToAccount(ctx, types.ModuleName, to, coins)
}

// BurnFrom destroys amount of denom held by holder. Actor must hold the
// operator role.
func (k Keeper) BurnFrom(ctx context.Context, actor, denom string, holder sdk.AccAddress, amount sdkmath.Int) error {
	if err := k.requireOperator(ctx, actor, denom); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return fmt.Errorf("burn amount must be positive, got %s", amount)
	}
	coins := sdk.NewCoins(sdk.NewCoin(denom, amount))
	if err := k.bankKeeper.SendCoinsFromAccountToModule(ctx, holder, types.ModuleName, coins); err != nil {
		return err
	}
	return k.bankKeeper.BurnCoins(ctx, types.ModuleName, coins)
}

// Transfer moves amount of denom between accounts. Holders move their own
// funds; role checks are the caller's concern.
func (k Keeper) Transfer(ctx context.Context, denom string, from, to sdk.AccAddress, amount sdkmath.Int) error {
	if !amount.IsPositive() {
		return fmt.Errorf("transfer amount must be positive, got %s", amount)
	}
	return k.bankKeeper.SendCoins(ctx, from, to, sdk.NewCoins(sdk.NewCoin(denom, amount)))
}

// BalanceOf returns addr's balance of denom.
func (k Keeper) BalanceOf(ctx context.Context, denom string, addr sdk.AccAddress) sdkmath.Int {
	return k.bankKeeper.GetBalance(ctx, addr, denom).Amount
}

// TotalSupply returns the total supply of denom.
func (k Keeper) TotalSupply(ctx context.Context, denom string) sdkmath.Int {
	return k.bankKeeper.GetSupply(ctx, denom).Amount
}

// TransferOperator reassigns the operator role. The current owner or the
// current operator may hand the role on.
func (k Keeper) TransferOperator(ctx context.Context, denom, actor, target string) error {
	record, err := k.getRole(ctx, denom)
	if err != nil {
		return err
	}
	if actor != record.Owner && actor != record.Operator {
		return fmt.Errorf("%s cannot transfer operator of %s", actor, denom)
	}
	if target == "" {
		return fmt.Errorf("operator target cannot be empty")
	}
	previous := record.Operator
	record.Operator = target
	if err := k.setRole(ctx, record); err != nil {
		return err
	}
	k.emitRoleEvent(ctx, EventTypeOperatorTransferred, denom, previous, target)
	return nil
}

// TransferOwnership reassigns the owner role. Owner-gated.
func (k Keeper) TransferOwnership(ctx context.Context, denom, actor, target string) error {
	record, err := k.getRole(ctx, denom)
	if err != nil {
		return err
	}
	if actor != record.Owner {
		return fmt.Errorf("%s is not the owner of %s", actor, denom)
	}
	if target == "" {
		return fmt.Errorf("ownership target cannot be empty")
	}
	previous := record.Owner
	record.Owner = target
	if err := k.setRole(ctx, record); err != nil {
		return err
	}
	k.emitRoleEvent(ctx, EventTypeOwnershipTransferred, denom, previous, target)
	return nil
}

// InitGenesis seeds the role table.
func (k Keeper) InitGenesis(ctx context.Context, gs *types.GenesisState) error {
	if gs == nil {
		return nil
	}
	if err := gs.Validate(); err != nil {
		return err
	}
	for _, record := range gs.Roles {
		if err := k.setRole(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

// ExportGenesis dumps the role table.
func (k Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	gs := types.DefaultGenesis()
	err := k.Roles.Walk(ctx, nil, func(_ string, raw string) (bool, error) {
		var record types.RoleRecord
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			return true, err
		}
		gs.Roles = append(gs.Roles, record)
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return gs, nil
}

func (k Keeper) requireOperator(ctx context.Context, actor, denom string) error {
	operator, err := k.Operator(ctx, denom)
	if err != nil {
		return err
	}
	if actor != operator {
		return fmt.Errorf("%s is not the operator of %s", actor, denom)
	}
	return nil
}

func (k Keeper) getRole(ctx context.Context, denom string) (types.RoleRecord, error) {
	raw, err := k.Roles.Get(ctx, denom)
	if err != nil {
		if errors.Is(err, collections.ErrNotFound) {
			return types.RoleRecord{}, fmt.Errorf("denom %s is not registered", denom)
		}
		return types.RoleRecord{}, err
	}
	var record types.RoleRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return types.RoleRecord{}, fmt.Errorf("corrupt role record for %s: %w", denom, err)
	}
	return record, nil
}

func (k Keeper) setRole(ctx context.Context, record types.RoleRecord) error {
	bz, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return k.Roles.Set(ctx, record.Denom, string(bz))
}

func (k Keeper) emitRoleEvent(ctx context.Context, eventType, denom, previous, next string) {
	sdkCtx, ok := unwrapSDKContext(ctx)
	if !ok {
		return
	}
	if em := sdkCtx.EventManager(); em != nil {
		em.EmitEvent(sdk.NewEvent(
			eventType,
			sdk.NewAttribute(AttributeKeyDenom, denom),
			sdk.NewAttribute(AttributeKeyPrevious, previous),
			sdk.NewAttribute(AttributeKeyNext, next),
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
