package types

import (
	"fmt"
	"strings"
)

// Protocol asset denominations. Cash tracks the peg, bonds are the discount
// instrument sold below peg, shares collect boardroom seigniorage.
const (
	CashDenom  = "ubac"
	BondDenom  = "ubab"
	ShareDenom = "ubas"
)

// RoleRecord holds the two privileged roles of one asset. The operator may
// mint and burn; the owner may reassign both roles.
type RoleRecord struct {
	Denom    string `json:"denom"`
	Owner    string `json:"owner"`
	Operator string `json:"operator"`
}

// Validate checks the record is complete.
func (r RoleRecord) Validate() error {
	if strings.TrimSpace(r.Denom) == "" {
		return fmt.Errorf("role record denom cannot be empty")
	}
	if strings.TrimSpace(r.Owner) == "" {
		return fmt.Errorf("role record owner cannot be empty for %s", r.Denom)
	}
	if strings.TrimSpace(r.Operator) == "" {
		return fmt.Errorf("role record operator cannot be empty for %s", r.Denom)
	}
	return nil
}

// GenesisState seeds the role table.
type GenesisState struct {
	Roles []RoleRecord `json:"roles"`
}

// DefaultGenesis returns an empty role table; denoms are registered by the
// treasury wiring or by explicit genesis entries.
func DefaultGenesis() *GenesisState {
	return &GenesisState{}
}

// Validate performs basic genesis validation.
func (gs GenesisState) Validate() error {
	seen := make(map[string]bool, len(gs.Roles))
	for _, r := range gs.Roles {
		if err := r.Validate(); err != nil {
			return err
		}
		if seen[r.Denom] {
			return fmt.Errorf("duplicate role record for denom %s", r.Denom)
		}
		seen[r.Denom] = true
	}
	return nil
}
