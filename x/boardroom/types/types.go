package types

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
)

// Roles records who administers the boardroom. The owner may reassign
// roles, the operator may notify new seigniorage rewards.
type Roles struct {
	Owner    string `json:"owner"`
	Operator string `json:"operator"`
}

// Validate performs stateless checks on the role record.
func (r Roles) Validate() error {
	if r.Owner == "" {
		return fmt.Errorf("boardroom owner cannot be empty")
	}
	if r.Operator == "" {
		return fmt.Errorf("boardroom operator cannot be empty")
	}
	return nil
}

// Seat is a staker's position: staked shares, rewards settled but not
// claimed, and the snapshot index those rewards were settled against.
type Seat struct {
	Address           string      `json:"address"`
	Staked            sdkmath.Int `json:"staked"`
	RewardEarned      sdkmath.Int `json:"reward_earned"`
	LastSnapshotIndex uint64      `json:"last_snapshot_index"`
}

// NewSeat returns an empty seat for addr.
func NewSeat(addr string) Seat {
	return Seat{
		Address:      addr,
		Staked:       sdkmath.ZeroInt(),
		RewardEarned: sdkmath.ZeroInt(),
	}
}

// Validate performs stateless checks on a seat.
func (s Seat) Validate() error {
	if s.Address == "" {
		return fmt.Errorf("seat address cannot be empty")
	}
	if s.Staked.IsNil() || s.Staked.IsNegative() {
		return fmt.Errorf("seat staked amount cannot be negative")
	}
	if s.RewardEarned.IsNil() || s.RewardEarned.IsNegative() {
		return fmt.Errorf("seat reward cannot be negative")
	}
	return nil
}

// Snapshot fixes the cumulative reward-per-share at the moment a
// seigniorage allocation landed.
type Snapshot struct {
	TimeUnix       int64       `json:"time_unix"`
	RewardReceived sdkmath.Int `json:"reward_received"`
	RewardPerShare sdkmath.Int `json:"reward_per_share"`
}

// Validate performs stateless checks on a snapshot.
func (s Snapshot) Validate() error {
	if s.RewardReceived.IsNil() || s.RewardReceived.IsNegative() {
		return fmt.Errorf("snapshot reward cannot be negative")
	}
	if s.RewardPerShare.IsNil() || s.RewardPerShare.IsNegative() {
		return fmt.Errorf("snapshot reward per share cannot be negative")
	}
	return nil
}

// GenesisState is the boardroom module genesis payload.
type GenesisState struct {
	Roles     Roles      `json:"roles"`
	Seats     []Seat     `json:"seats"`
	Snapshots []Snapshot `json:"snapshots"`
}

// DefaultGenesis returns an empty boardroom genesis.
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
	seen := make(map[string]struct{}, len(gs.Seats))
	for _, seat := range gs.Seats {
		if err := seat.Validate(); err != nil {
			return err
		}
		if _, ok := seen[seat.Address]; ok {
			return fmt.Errorf("duplicate seat for %s", seat.Address)
		}
		seen[seat.Address] = struct{}{}
	}
	for i, snap := range gs.Snapshots {
		if err := snap.Validate(); err != nil {
			return fmt.Errorf("snapshot %d: %w", i, err)
		}
	}
	return nil
}
