package units

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMulRatio(t *testing.T) {
	got, ok := Ether.MulRatio(3, 2)
	require.True(t, ok)
	assert.Equal(t, Amount(1_500_000_000), got)

	got, ok = Amount(3).MulRatio(3, 2)
	require.True(t, ok)
	assert.Equal(t, Amount(4), got)

	_, ok = Amount(math.MaxUint64).MulRatio(3, 2)
	assert.False(t, ok)

	_, ok = Ether.MulRatio(1, 0)
	assert.False(t, ok)
}

func TestAdd(t *testing.T) {
	sum, ok := Ether.Add(Ether)
	require.True(t, ok)
	assert.Equal(t, 2*Ether, sum)

	_, ok = Amount(math.MaxUint64).Add(1)
	assert.False(t, ok)
}

func TestParseEtherAndString(t *testing.T) {
	cases := map[string]Amount{
		"1":        Ether,
		"1.5":      1_500_000_000,
		"0.000001": 1000,
		".25 ETH":  250_000_000,
		"10":       10 * Ether,
	}
	for in, want := range cases {
		got, err := ParseEther(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	assert.Equal(t, "1.5 ETH", Amount(1_500_000_000).String())
	assert.Equal(t, "10 ETH", (10 * Ether).String())

	_, err := ParseEther("1.0000000001")
	assert.Error(t, err)
	_, err = ParseEther("abc")
	assert.Error(t, err)

	top, err := ParseEther("18446744073.709551615")
	require.NoError(t, err)
	assert.Equal(t, Amount(math.MaxUint64), top)

	for _, in := range []string{"18446744073.9", "18446744073.709551616", "18446744074"} {
		_, err = ParseEther(in)
		assert.Error(t, err, in)
	}
}
