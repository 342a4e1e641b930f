package types

const (
	// ModuleName is the treasury module namespace. Its module account is
	// the protocol operator: it holds the bond-redemption reserve and the
	// operator role over all three asset ledgers.
	ModuleName = "treasury"

	// StoreKey is the module KV store key.
	StoreKey = ModuleName
)

var (
	// CoreStateKey stores the treasury lifecycle and reserve accounting.
	CoreStateKey = []byte{0x01}

	// ConfigKey stores the mutable policy configuration.
	ConfigKey = []byte{0x02}

	// ScheduleKey stores the seigniorage epoch schedule.
	ScheduleKey = []byte{0x03}

	// GuardKeyPrefix marks gated calls already taken this block.
	GuardKeyPrefix = []byte{0x04}
)
