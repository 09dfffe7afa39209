package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestValidateRejects(t *testing.T) {
	p := Default()
	p.PayoutDenominator = 0
	assert.Error(t, p.Validate())

	p = Default()
	p.IndexRange = 0
	assert.Error(t, p.Validate())

	p = Default()
	p.PayoutNumerator = 1
	assert.Error(t, p.Validate())
}

func TestVotesRequired(t *testing.T) {
	cases := map[int]int{1: 1, 2: 1, 3: 2, 4: 2, 5: 3, 6: 3, 7: 4}
	for funded, want := range cases {
		assert.Equal(t, want, VotesRequired(funded), "funded=%d", funded)
	}
}
