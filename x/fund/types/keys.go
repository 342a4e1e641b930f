package types

const (
	// ModuleName is the fund module namespace. Its module account holds
	// the protocol's fee-collection pool.
	ModuleName = "fund"

	// StoreKey is the module KV store key.
	StoreKey = ModuleName
)

var (
	// RolesKey stores the fund owner/operator roles.
	RolesKey = []byte{0x01}

	// DepositKeyPrefix stores deposit records by sequence.
	DepositKeyPrefix = []byte{0x02}

	// DepositCountKey stores the next deposit sequence.
	DepositCountKey = []byte{0x03}
)
