package types

import (
	errorsmod "cosmossdk.io/errors"
)

// Treasury error taxonomy. Precondition failures and oracle failures
// abort the whole call with no state change; an economic no-op is not an
// error at all.
var (
	ErrNotStarted          = errorsmod.Register(ModuleName, 2, "treasury epoch has not started")
	ErrWrongLifecycle      = errorsmod.Register(ModuleName, 3, "operation not allowed in current lifecycle state")
	ErrMigrated            = errorsmod.Register(ModuleName, 4, "treasury has migrated")
	ErrZeroAmount          = errorsmod.Register(ModuleName, 5, "amount must be positive")
	ErrNeedsPermission     = errorsmod.Register(ModuleName, 6, "treasury lacks an operator permission")
	ErrOneBlockOneFunction = errorsmod.Register(ModuleName, 7, "only one treasury call per block per account")
	ErrNotCallable         = errorsmod.Register(ModuleName, 8, "epoch gate is closed")
	ErrOracleFailed        = errorsmod.Register(ModuleName, 9, "oracle consultation failed")
	ErrPriceNotEligible    = errorsmod.Register(ModuleName, 10, "cash price not eligible")
	ErrPriceMoved          = errorsmod.Register(ModuleName, 11, "cash price moved past target")
	ErrBondCapZero         = errorsmod.Register(ModuleName, 12, "no bonds available for purchase")
	ErrInsufficientReserve = errorsmod.Register(ModuleName, 13, "treasury cash balance too low")
)
