package genesis

import (
	"time"

	"flightsurety/core/params"
	"flightsurety/types/ids"
)

// AirlineConfig names the airline registered at genesis.
type AirlineConfig struct {
	Address ids.Address `json:"address"`
	Name    string      `json:"name,omitempty"`
}

// GenesisConfig represents the full genesis configuration schema.
type GenesisConfig struct {
	ChainID           string        `json:"chainId"`
	GenesisTime       time.Time     `json:"genesisTime,omitempty"`
	Operator          ids.Address   `json:"operator"`
	FirstAirline      AirlineConfig `json:"firstAirline"`
	AuthorizedCallers []ids.Address `json:"authorizedCallers,omitempty"`
	Params            params.Params `json:"params"`
}
