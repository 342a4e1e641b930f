package types

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/Fsud/basiscash-protocol/internal/epoch"
)

// Lifecycle states. Transitions run forward only: Uninitialized ->
// Active -> Migrated.
const (
	LifecycleUninitialized = "uninitialized"
	LifecycleActive        = "active"
	LifecycleMigrated      = "migrated"
)

// PegPrice is the fixed-point representation of the 1.0 peg target.
var PegPrice = sdkmath.NewIntWithDecimal(1, 18)

// DefaultFundAllocationRate is the percentage of seigniorage routed to
// the fee fund.
const DefaultFundAllocationRate = uint64(2)

// DefaultCeilingRatioBps puts the redemption ceiling 5% above peg.
const DefaultCeilingRatioBps = uint64(10_500)

// CoreState is the treasury's mutable accounting state.
type CoreState struct {
	Lifecycle              string      `json:"lifecycle"`
	AccumulatedSeigniorage sdkmath.Int `json:"accumulated_seigniorage"`
	BondCap                sdkmath.Int `json:"bond_cap"`
	LastBondOracleEpoch    int64       `json:"last_bond_oracle_epoch"`
	MigrationTarget        string      `json:"migration_target,omitempty"`
}

// NewCoreState returns a fresh, uninitialized treasury state.
func NewCoreState() CoreState {
	return CoreState{
		Lifecycle:              LifecycleUninitialized,
		AccumulatedSeigniorage: sdkmath.ZeroInt(),
		BondCap:                sdkmath.ZeroInt(),
		LastBondOracleEpoch:    -1,
	}
}

// Validate performs stateless checks on the core state.
func (cs CoreState) Validate() error {
	switch cs.Lifecycle {
	case LifecycleUninitialized, LifecycleActive, LifecycleMigrated:
	default:
		return fmt.Errorf("unknown lifecycle state %q", cs.Lifecycle)
	}
	if cs.AccumulatedSeigniorage.IsNil() || cs.AccumulatedSeigniorage.IsNegative() {
		return fmt.Errorf("accumulated seigniorage cannot be negative")
	}
	if cs.BondCap.IsNil() || cs.BondCap.IsNegative() {
		return fmt.Errorf("bond cap cannot be negative")
	}
	if cs.Lifecycle == LifecycleMigrated && cs.MigrationTarget == "" {
		return fmt.Errorf("migrated state requires a migration target")
	}
	return nil
}

// Config is the governance-mutable policy surface.
type Config struct {
	BondOracle         string `json:"bond_oracle"`
	SeigniorageOracle  string `json:"seigniorage_oracle"`
	FundAllocationRate uint64 `json:"fund_allocation_rate"`
	CeilingRatioBps    uint64 `json:"ceiling_ratio_bps"`
}

// DefaultConfig wires the two well-known oracle instances with default
// policy rates.
func DefaultConfig() Config {
	return Config{
		BondOracle:         "bond",
		SeigniorageOracle:  "seigniorage",
		FundAllocationRate: DefaultFundAllocationRate,
		CeilingRatioBps:    DefaultCeilingRatioBps,
	}
}

// Validate performs stateless checks on the config.
func (c Config) Validate() error {
	if c.BondOracle == "" {
		return fmt.Errorf("bond oracle name cannot be empty")
	}
	if c.SeigniorageOracle == "" {
		return fmt.Errorf("seigniorage oracle name cannot be empty")
	}
	if c.FundAllocationRate > 100 {
		return fmt.Errorf("fund allocation rate %d exceeds 100%%", c.FundAllocationRate)
	}
	if c.CeilingRatioBps < 10_000 {
		return fmt.Errorf("ceiling ratio %d bps is below peg", c.CeilingRatioBps)
	}
	return nil
}

// RatioCurve is the ceiling-price curve: a constant multiple of peg,
// independent of circulating supply.
type RatioCurve struct {
	Bps uint64
}

// Ceiling returns the redemption threshold price.
func (c RatioCurve) Ceiling(_ sdkmath.Int) sdkmath.Int {
	return PegPrice.MulRaw(int64(c.Bps)).QuoRaw(10_000)
}

// GenesisState is the treasury module genesis payload.
type GenesisState struct {
	CoreState CoreState      `json:"core_state"`
	Config    Config         `json:"config"`
	Schedule  epoch.Schedule `json:"schedule"`
}

// DefaultGenesis returns an uninitialized treasury with default policy.
// The schedule is zero-valued and must be set before gated operations
// can run.
func DefaultGenesis() *GenesisState {
	return &GenesisState{
		CoreState: NewCoreState(),
		Config:    DefaultConfig(),
	}
}

// Validate performs stateless genesis checks.
func (gs GenesisState) Validate() error {
	if err := gs.CoreState.Validate(); err != nil {
		return err
	}
	return gs.Config.Validate()
}
