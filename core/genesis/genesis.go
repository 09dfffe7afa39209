package genesis

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/crypto/sha3"

	"flightsurety/core/params"
	"flightsurety/core/validation"
	"flightsurety/types/ids"
)

// LoadGenesisConfig loads and validates a genesis document. Parameters left
// out of the document take their default values.
func LoadGenesisConfig(path string) (*GenesisConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read genesis config: %w", err)
	}
	return ParseGenesisConfig(raw)
}

func ParseGenesisConfig(raw []byte) (*GenesisConfig, error) {
	if err := validation.ValidatePayload(validation.Genesis, raw); err != nil {
		return nil, fmt.Errorf("could not validate genesis config: %w", err)
	}
	cfg := GenesisConfig{Params: params.Default()}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("could not parse genesis config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default is a development genesis with default parameters.
func Default(operator, firstAirline ids.Address) *GenesisConfig {
	return &GenesisConfig{
		ChainID:      "flightsurety-dev",
		Operator:     operator,
		FirstAirline: AirlineConfig{Address: firstAirline, Name: "Genesis Airline"},
		Params:       params.Default(),
	}
}

func (c *GenesisConfig) Validate() error {
	if c.Operator.IsZero() {
		return fmt.Errorf("genesis operator: %w", ids.ErrInvalidAddress)
	}
	if c.FirstAirline.Address.IsZero() {
		return fmt.Errorf("genesis first airline: %w", ids.ErrInvalidAddress)
	}
	if err := c.Params.Validate(); err != nil {
		return fmt.Errorf("genesis params: %w", err)
	}
	return nil
}

// Hash identifies a genesis document. A store initialised from one genesis
// refuses to open under another.
func (c *GenesisConfig) Hash() (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	h := sha3.Sum256(b)
	return hex.EncodeToString(h[:]), nil
}
