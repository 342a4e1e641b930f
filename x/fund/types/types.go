package types

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
)

// Roles records who administers the fund. The owner may reassign roles,
// the operator may withdraw.
type Roles struct {
	Owner    string `json:"owner"`
	Operator string `json:"operator"`
}

// Validate performs stateless checks on the role record.
func (r Roles) Validate() error {
	if r.Owner == "" {
		return fmt.Errorf("fund owner cannot be empty")
	}
	if r.Operator == "" {
		return fmt.Errorf("fund operator cannot be empty")
	}
	return nil
}

// Deposit is the record of a single inbound transfer into the fund.
type Deposit struct {
	Sequence     uint64      `json:"sequence"`
	Denom        string      `json:"denom"`
	Depositor    string      `json:"depositor"`
	Amount       sdkmath.Int `json:"amount"`
	Memo         string      `json:"memo"`
	ReceivedUnix int64       `json:"received_unix"`
}

// Validate performs stateless checks on a deposit record.
func (d Deposit) Validate() error {
	if d.Denom == "" {
		return fmt.Errorf("deposit denom cannot be empty")
	}
	if d.Depositor == "" {
		return fmt.Errorf("deposit depositor cannot be empty")
	}
	if d.Amount.IsNil() || !d.Amount.IsPositive() {
		return fmt.Errorf("deposit amount must be positive")
	}
	return nil
}

// GenesisState is the fund module genesis payload.
type GenesisState struct {
	Roles    Roles     `json:"roles"`
	Deposits []Deposit `json:"deposits"`
}

// DefaultGenesis returns an empty fund genesis. Roles must be provided
// before the fund accepts withdrawals.
func DefaultGenesis() *GenesisState {
	return &GenesisState{}
}

// Validate performs stateless genesis checks.
func (gs GenesisState) Validate() error {
	if gs.Roles.Owner != "" || gs.Roles.Operator != "" {
		if err := gs.Roles.Validate(); err != nil {
			return err
		}
	}
	for _, d := range gs.Deposits {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("deposit %d: %w", d.Sequence, err)
		}
	}
	return nil
}
