package ids

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	a, err := ParseAddress("0x00000000000000000000000000000000000000aa")
	require.NoError(t, err)
	assert.Equal(t, byte(0xaa), a[AddressLength-1])
	assert.Equal(t, "0x00000000000000000000000000000000000000aa", a.String())

	_, err = ParseAddress("0x1234")
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = ParseAddress("0xzz000000000000000000000000000000000000aa")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestAddressFromSeedIsDistinct(t *testing.T) {
	seen := map[Address]bool{}
	for i := uint64(0); i < 64; i++ {
		a := AddressFromSeed(i)
		assert.False(t, a.IsZero())
		assert.False(t, seen[a], "seed %d collided", i)
		seen[a] = true
	}
}

func TestAddressJSON(t *testing.T) {
	type wrapper struct {
		Who Address `json:"who"`
	}
	in := wrapper{Who: AddressFromSeed(7)}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), in.Who.String())

	var out wrapper
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestIDFromString(t *testing.T) {
	var id ID
	id[0], id[31] = 1, 2
	parsed, err := FromString(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = FromString("abcd")
	assert.Error(t, err)
}

func TestIDJSONIsHex(t *testing.T) {
	type wrapper struct {
		FlightID ID `json:"flightId"`
	}
	var in wrapper
	in.FlightID[0], in.FlightID[31] = 0xab, 0x01
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"flightId":"`+in.FlightID.String()+`"}`, string(data))

	var out wrapper
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)

	assert.Error(t, json.Unmarshal([]byte(`{"flightId":"abcd"}`), &out))
}
