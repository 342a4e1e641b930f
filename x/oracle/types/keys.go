package types

const (
	// ModuleName is the oracle module namespace.
	ModuleName = "oracle"

	// StoreKey is the module KV store key.
	StoreKey = ModuleName
)

var (
	// InstanceKeyPrefix stores named oracle instances.
	InstanceKeyPrefix = []byte{0x01}

	// FeederKeyPrefix stores the feeder allowlist.
	FeederKeyPrefix = []byte{0x02}
)
