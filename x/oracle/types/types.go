package types

import (
	"fmt"
	"strings"

	sdkmath "cosmossdk.io/math"

	"github.com/Fsud/basiscash-protocol/internal/epoch"
)

// Well-known oracle instance names consumed by the treasury. Two instances
// over the same asset can run on different cadences, which is why the bond
// and seigniorage feeds are kept separate.
const (
	BondOracleName        = "bond"
	SeigniorageOracleName = "seigniorage"
)

// PriceObservation is a feeder-posted price pending promotion at the next
// oracle epoch.
type PriceObservation struct {
	Price        sdkmath.Int `json:"price"`
	Feeder       string      `json:"feeder"`
	PostedAtUnix int64       `json:"posted_at_unix"`
}

// PriceRecord is the committed price answered by Consult.
type PriceRecord struct {
	Price         sdkmath.Int `json:"price"`
	UpdatedAtUnix int64       `json:"updated_at_unix"`
	Epoch         int64       `json:"epoch"`
}

// Instance is one named oracle: a committed price, an optional pending
// observation and its own epoch gate.
type Instance struct {
	Name     string            `json:"name"`
	Denom    string            `json:"denom"`
	Schedule epoch.Schedule    `json:"schedule"`
	Pending  *PriceObservation `json:"pending,omitempty"`
	Price    *PriceRecord      `json:"price,omitempty"`
}

// Validate checks instance identity fields.
func (i Instance) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("oracle name cannot be empty")
	}
	if strings.TrimSpace(i.Denom) == "" {
		return fmt.Errorf("oracle %s denom cannot be empty", i.Name)
	}
	if i.Schedule.PeriodSeconds <= 0 {
		return fmt.Errorf("oracle %s period must be positive", i.Name)
	}
	return nil
}

// GenesisState seeds oracle instances and the feeder allowlist.
type GenesisState struct {
	Instances []Instance `json:"instances"`
	Feeders   []string   `json:"feeders"`
}

// DefaultGenesis returns an empty oracle state.
func DefaultGenesis() *GenesisState {
	return &GenesisState{}
}

// Validate performs basic genesis validation.
func (gs GenesisState) Validate() error {
	seen := make(map[string]bool, len(gs.Instances))
	for _, inst := range gs.Instances {
		if err := inst.Validate(); err != nil {
			return err
		}
		if seen[inst.Name] {
			return fmt.Errorf("duplicate oracle instance %s", inst.Name)
		}
		seen[inst.Name] = true
	}
	for _, f := range gs.Feeders {
		if strings.TrimSpace(f) == "" {
			return fmt.Errorf("feeder address cannot be empty")
		}
	}
	return nil
}
