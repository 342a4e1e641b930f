package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/cosmos/cosmos-sdk/client"
	genutilcli "github.com/cosmos/cosmos-sdk/x/genutil/client/cli"
	genutiltypes "github.com/cosmos/cosmos-sdk/x/genutil/types"

	treasurytypes "github.com/Fsud/basiscash-protocol/x/treasury/types"
)

func genesisMigrationMap() genutiltypes.MigrationMap {
	migrations := genutiltypes.MigrationMap{}
	for k, v := range genutilcli.MigrationMap {
		migrations[k] = v
	}

	// App-level genesis migration for v0.2.0: backfill treasury policy
	// fields introduced after the initial release. Treasury state is
	// plain JSON, so this bypasses the proto codec.
	migrations["v0.2.0"] = func(state genutiltypes.AppMap, _ client.Context) (genutiltypes.AppMap, error) {
		bz, ok := state[treasurytypes.ModuleName]
		if !ok || len(bz) == 0 {
			out, err := json.Marshal(treasurytypes.DefaultGenesis())
			if err != nil {
				return nil, err
			}
			state[treasurytypes.ModuleName] = out
			return state, nil
		}

		var gs treasurytypes.GenesisState
		if err := json.Unmarshal(bz, &gs); err != nil {
			return nil, fmt.Errorf("treasury genesis unmarshal: %w", err)
		}

		updated := false
		defaults := treasurytypes.DefaultConfig()
		if gs.Config.BondOracle == "" {
			gs.Config.BondOracle = defaults.BondOracle
			updated = true
		}
		if gs.Config.SeigniorageOracle == "" {
			gs.Config.SeigniorageOracle = defaults.SeigniorageOracle
			updated = true
		}
		if gs.Config.FundAllocationRate == 0 {
			gs.Config.FundAllocationRate = defaults.FundAllocationRate
			updated = true
		}
		if gs.Config.CeilingRatioBps == 0 {
			gs.Config.CeilingRatioBps = defaults.CeilingRatioBps
			updated = true
		}

		if updated {
			out, err := json.Marshal(&gs)
			if err != nil {
				return nil, fmt.Errorf("treasury genesis marshal: %w", err)
			}
			state[treasurytypes.ModuleName] = out
		}

		return state, nil
	}

	return migrations
}
