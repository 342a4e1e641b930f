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

	"github.com/Fsud/basiscash-protocol/x/fund/types"
)

// Event types emitted by the fund module.
const (
	EventTypeDeposit    = "fund_deposit"
	EventTypeWithdrawal = "fund_withdrawal"

	AttributeKeyDenom     = "denom"
	AttributeKeySender    = "sender"
	AttributeKeyRecipient = "recipient"
	AttributeKeyAmount    = "amount"
	AttributeKeyMemo      = "memo"
)

// LedgerKeeper is the expected asset-ledger interface.
type LedgerKeeper interface {
	Transfer(ctx context.Context, denom string, from, to sdk.AccAddress, amount sdkmath.Int) error
	BalanceOf(ctx context.Context, denom string, addr sdk.AccAddress) sdkmath.Int
}

// Keeper holds the protocol fee pool. Anyone may deposit into the fund;
// only the operator may move value back out.
type Keeper struct {
	cdc          codec.Codec
	storeService store.KVStoreService
	authority    string

	ledgerKeeper LedgerKeeper

	Roles        collections.Item[string]
	Deposits     collections.Map[uint64, string]
	DepositCount collections.Item[uint64]
}

// NewKeeper creates a new fund keeper.
func NewKeeper(
	cdc codec.Codec,
	storeService store.KVStoreService,
	ledgerKeeper LedgerKeeper,
	authority string,
) Keeper {
	sb := collections.NewSchemaBuilder(storeService)

	return Keeper{
		cdc:          cdc,
		storeService: storeService,
		authority:    authority,
		ledgerKeeper: ledgerKeeper,
		Roles: collections.NewItem(
			sb,
			collections.NewPrefix(types.RolesKey),
			"roles",
			collections.StringValue,
		),
		Deposits: collections.NewMap(
			sb,
			collections.NewPrefix(types.DepositKeyPrefix),
			"deposits",
			collections.Uint64Key,
			collections.StringValue,
		),
		DepositCount: collections.NewItem(
			sb,
			collections.NewPrefix(types.DepositCountKey),
			"deposit_count",
			collections.Uint64Value,
		),
	}
}

// GetAuthority returns the keeper authority address.
func (k Keeper) GetAuthority() string {
	return k.authority
}

// ModuleAddress returns the account holding the fund's pooled balances.
func (k Keeper) ModuleAddress() sdk.AccAddress {
	return authtypes.NewModuleAddress(types.ModuleName)
}

// Deposit pulls amount of denom from the depositor into the fund account
// and records the transfer.
func (k Keeper) Deposit(ctx context.Context, from sdk.AccAddress, denom string, amount sdkmath.Int, memo string) error {
	if amount.IsNil() || !amount.IsPositive() {
		return fmt.Errorf("deposit amount must be positive, got %s", amount)
	}
	if err := k.ledgerKeeper.Transfer(ctx, denom, from, k.ModuleAddress(), amount); err != nil {
		return err
	}

	seq, err := k.nextSequence(ctx)
	if err != nil {
		return err
	}
	record := types.Deposit{
		Sequence:  seq,
		Denom:     denom,
		Depositor: from.String(),
		Amount:    amount,
		Memo:      memo,
	}
	if sdkCtx, ok := unwrapSDKContext(ctx); ok {
		record.ReceivedUnix = sdkCtx.BlockTime().Unix()
	}
	if err := k.setDeposit(ctx, record); err != nil {
		return err
	}

	k.emitTransferEvent(ctx, EventTypeDeposit, denom, from.String(), k.ModuleAddress().String(), amount, memo)
	return nil
}

// Withdraw moves amount of denom from the fund to the recipient. Actor
// must hold the operator role.
func (k Keeper) Withdraw(ctx context.Context, actor, denom string, to sdk.AccAddress, amount sdkmath.Int, memo string) error {
	roles, err := k.GetRoles(ctx)
	if err != nil {
		return err
	}
	if actor != roles.Operator {
		return fmt.Errorf("%s is not the fund operator", actor)
	}
	if amount.IsNil() || !amount.IsPositive() {
		return fmt.Errorf("withdrawal amount must be positive, got %s", amount)
	}
	if err := k.ledgerKeeper.Transfer(ctx, denom, k.ModuleAddress(), to, amount); err != nil {
		return err
	}

	k.emitTransferEvent(ctx, EventTypeWithdrawal, denom, k.ModuleAddress().String(), to.String(), amount, memo)
	return nil
}

// Balance returns the fund's holding of denom.
func (k Keeper) Balance(ctx context.Context, denom string) sdkmath.Int {
	return k.ledgerKeeper.BalanceOf(ctx, denom, k.ModuleAddress())
}

// GetRoles returns the fund role record.
func (k Keeper) GetRoles(ctx context.Context) (types.Roles, error) {
	raw, err := k.Roles.Get(ctx)
	if err != nil {
		if errors.Is(err, collections.ErrNotFound) {
			return types.Roles{}, fmt.Errorf("fund roles are not set")
		}
		return types.Roles{}, err
	}
	var roles types.Roles
	if err := json.Unmarshal([]byte(raw), &roles); err != nil {
		return types.Roles{}, fmt.Errorf("corrupt fund role record: %w", err)
	}
	return roles, nil
}

// SetRoles replaces the role record. The current owner may hand roles on;
// when none are set yet the keeper authority bootstraps them.
func (k Keeper) SetRoles(ctx context.Context, actor string, roles types.Roles) error {
	if err := roles.Validate(); err != nil {
		return err
	}
	current, err := k.GetRoles(ctx)
	switch {
	case err == nil:
		if actor != current.Owner {
			return fmt.Errorf("%s is not the fund owner", actor)
		}
	default:
		if actor != k.authority {
			return fmt.Errorf("%s cannot bootstrap fund roles", actor)
		}
	}
	bz, err := json.Marshal(roles)
	if err != nil {
		return err
	}
	return k.Roles.Set(ctx, string(bz))
}

// InitGenesis seeds roles and any carried-over deposit history.
func (k Keeper) InitGenesis(ctx context.Context, gs *types.GenesisState) error {
	if gs == nil {
		return nil
	}
	if err := gs.Validate(); err != nil {
		return err
	}
	if gs.Roles.Owner != "" {
		bz, err := json.Marshal(gs.Roles)
		if err != nil {
			return err
		}
		if err := k.Roles.Set(ctx, string(bz)); err != nil {
			return err
		}
	}
	var maxSeq uint64
	for _, d := range gs.Deposits {
		if err := k.setDeposit(ctx, d); err != nil {
			return err
		}
		if d.Sequence >= maxSeq {
			maxSeq = d.Sequence + 1
		}
	}
	if len(gs.Deposits) > 0 {
		if err := k.DepositCount.Set(ctx, maxSeq); err != nil {
			return err
		}
	}
	return nil
}

// ExportGenesis dumps roles and the deposit log.
func (k Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	gs := types.DefaultGenesis()
	if roles, err := k.GetRoles(ctx); err == nil {
		gs.Roles = roles
	}
	err := k.Deposits.Walk(ctx, nil, func(_ uint64, raw string) (bool, error) {
		var record types.Deposit
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			return true, err
		}
		gs.Deposits = append(gs.Deposits, record)
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return gs, nil
}

func (k Keeper) nextSequence(ctx context.Context) (uint64, error) {
	seq, err := k.DepositCount.Get(ctx)
	if err != nil && !errors.Is(err, collections.ErrNotFound) {
		return 0, err
	}
	if err := k.DepositCount.Set(ctx, seq+1); err != nil {
		return 0, err
	}
	return seq, nil
}

func (k Keeper) setDeposit(ctx context.Context, record types.Deposit) error {
	bz, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return k.Deposits.Set(ctx, record.Sequence, string(bz))
}

func (k Keeper) emitTransferEvent(ctx context.Context, eventType, denom, sender, recipient string, amount sdkmath.Int, memo string) {
	sdkCtx, ok := unwrapSDKContext(ctx)
	if !ok {
		return
	}
	if em := sdkCtx.EventManager(); em != nil {
		em.EmitEvent(sdk.NewEvent(
			eventType,
			sdk.NewAttribute(AttributeKeyDenom, denom),
			sdk.NewAttribute(AttributeKeySender, sender),
			sdk.NewAttribute(AttributeKeyRecipient, recipient),
			sdk.NewAttribute(AttributeKeyAmount, amount.String()),
			sdk.NewAttribute(AttributeKeyMemo, memo),
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
