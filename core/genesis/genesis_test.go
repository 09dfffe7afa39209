package genesis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightsurety/core/params"
	"flightsurety/types/units"
)

const doc = `{
  "chainId": "flightsurety-test",
  "genesisTime": "2024-05-01T00:00:00Z",
  "operator": "0xf500000000000000000000000000000000000001",
  "firstAirline": {"address": "0xf500000000000000000000000000000000000065", "name": "First Air"},
  "authorizedCallers": ["0xf5000000000000000000000000000000000000c9"],
  "params": {"minResponses": 5}
}`

func TestLoadGenesisConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg, err := LoadGenesisConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "flightsurety-test", cfg.ChainID)
	assert.Equal(t, "First Air", cfg.FirstAirline.Name)
	assert.Len(t, cfg.AuthorizedCallers, 1)
	assert.Equal(t, 5, cfg.Params.MinResponses)
	assert.Equal(t, 10*units.Ether, cfg.Params.SeedFunding, "unset params keep defaults")
	assert.Equal(t, params.Default().IndexRange, cfg.Params.IndexRange)
}

func TestParseGenesisRejects(t *testing.T) {
	_, err := ParseGenesisConfig([]byte(`{"chainId":"x"}`))
	assert.Error(t, err)

	_, err = ParseGenesisConfig([]byte(`{"chainId":"x","operator":"0x0000000000000000000000000000000000000000","firstAirline":{"address":"0xf500000000000000000000000000000000000065"}}`))
	assert.Error(t, err)

	_, err = ParseGenesisConfig([]byte(`{"chainId":"x","operator":"0xf500000000000000000000000000000000000001","firstAirline":{"address":"0xf500000000000000000000000000000000000065"},"params":{"payoutNumerator":1}}`))
	assert.Error(t, err, "payout below premium")
}

func TestHashIsStable(t *testing.T) {
	a, err := ParseGenesisConfig([]byte(doc))
	require.NoError(t, err)
	b, err := ParseGenesisConfig([]byte(doc))
	require.NoError(t, err)

	ha, err := a.Hash()
	require.NoError(t, err)
	hb, err := b.Hash()
	require.NoError(t, err)
	assert.Equal(t, ha, hb)

	b.Params.MinResponses = 3
	hb, err = b.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, ha, hb)
}
