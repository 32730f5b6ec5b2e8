package app

import (
	"encoding/json"
	"fmt"
	"os"

	ammtypes "github.com/paw-chain/pawswap/x/amm/types"
	assettypes "github.com/paw-chain/pawswap/x/asset/types"
)

// GenesisState is the application state of both modules.
type GenesisState struct {
	ChainID string                  `json:"chain_id"`
	AMM     ammtypes.GenesisState   `json:"amm"`
	Asset   assettypes.GenesisState `json:"asset"`
}

// NewDefaultGenesisState returns the genesis for a fresh chain with the AMM
// parameters taken from cfg.
func NewDefaultGenesisState(cfg Config) GenesisState {
	amm := *ammtypes.DefaultGenesis()
	amm.Params = ammtypes.NewParams(cfg.AMM.FeeBasisPoints, cfg.AMM.RestrictPoolCreation)

	return GenesisState{
		ChainID: cfg.ChainID,
		AMM:     amm,
		Asset:   *assettypes.DefaultGenesis(),
	}
}

// Validate validates both module states.
func (gs GenesisState) Validate() error {
	if err := gs.Asset.Validate(); err != nil {
		return fmt.Errorf("asset genesis: %w", err)
	}
	if err := gs.AMM.Validate(); err != nil {
		return fmt.Errorf("amm genesis: %w", err)
	}
	return nil
}

// ReadGenesisFile loads a genesis state from a JSON file.
func ReadGenesisFile(path string) (GenesisState, error) {
	bz, err := os.ReadFile(path)
	if err != nil {
		return GenesisState{}, fmt.Errorf("failed to read genesis: %w", err)
	}
	var gs GenesisState
	if err := json.Unmarshal(bz, &gs); err != nil {
		return GenesisState{}, fmt.Errorf("failed to decode genesis: %w", err)
	}
	return gs, nil
}
