package money

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotal(t *testing.T) {
	got, err := Total(80000, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(80000), got)

	got, err = Total(50000, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(250000), got)

	got, err = Total(0, 7)
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestTotal_Overflow(t *testing.T) {
	_, err := Total(math.MaxInt64/2+1, 2)
	assert.ErrorIs(t, err, ErrOverflow)

	got, err := Total(math.MaxInt64, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), got)
}

func TestTotal_Negative(t *testing.T) {
	_, err := Total(-1, 1)
	assert.ErrorIs(t, err, ErrNegative)
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "123.45", Display(12345, 2))
	assert.Equal(t, "80000", Display(80000, 0))
	assert.Equal(t, "0.05", Display(5, 2))
}
