package types

const (
	// ModuleName is the boardroom module namespace. Its module account
	// holds the staked shares and undistributed cash rewards.
	ModuleName = "boardroom"

	// StoreKey is the module KV store key.
	StoreKey = ModuleName
)

var (
	// RolesKey stores the boardroom owner/operator roles.
	RolesKey = []byte{0x01}

	// SeatKeyPrefix stores per-staker seats by address.
	SeatKeyPrefix = []byte{0x02}

	// SnapshotKeyPrefix stores reward snapshots by index.
	SnapshotKeyPrefix = []byte{0x03}

	// SnapshotCountKey stores the snapshot history length.
	SnapshotCountKey = []byte{0x04}
)
