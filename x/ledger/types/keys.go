package types

const (
	// ModuleName is the ledger module namespace. Its module account is the
	// mint/burn gateway for the protocol assets.
	ModuleName = "ledger"

	// StoreKey is the module KV store key.
	StoreKey = ModuleName
)

var (
	// RoleKeyPrefix stores per-denom owner/operator role records.
	RoleKeyPrefix = []byte{0x01}
)
