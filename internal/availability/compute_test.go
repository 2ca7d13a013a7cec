package availability

import (
	"testing"

	"github.com/NguyenZak/longhai-ticket-sub001/internal/tiers"
	"github.com/stretchr/testify/assert"
)

func twoBandTier() *tiers.TicketTier {
	return &tiers.TicketTier{
		Status: tiers.TierStatusActive,
		Bands:  tiers.Bands{{Price: 50000, Quantity: 5}, {Price: 80000, Quantity: 5}},
	}
}

func TestCompute_NoBookings(t *testing.T) {
	res := Compute(twoBandTier(), nil)

	assert.Equal(t, 10, res.TotalPool)
	assert.Equal(t, 10, res.Available)
	assert.Equal(t, 5, res.Bands[1].Available)
	assert.False(t, res.Oversold)
}

func TestCompute_PerBand(t *testing.T) {
	res := Compute(twoBandTier(), map[int]int{0: 5, 1: 1})

	assert.Equal(t, 6, res.Booked)
	assert.Equal(t, 4, res.Available)
	assert.Equal(t, 0, res.Bands[0].Available)
	assert.Equal(t, 4, res.Bands[1].Available)
	assert.Equal(t, int64(80000), res.Bands[1].Price)
}

func TestCompute_OversoldClamps(t *testing.T) {
	res := Compute(twoBandTier(), map[int]int{0: 7, 1: 5})

	assert.True(t, res.Oversold)
	assert.Equal(t, -2, res.RawAvailable)
	assert.Equal(t, 0, res.Available)
	assert.Equal(t, 0, res.Bands[0].Available)
}

func TestCompute_BandOversoldOnly(t *testing.T) {
	res := Compute(twoBandTier(), map[int]int{0: 6})

	assert.True(t, res.Oversold)
	assert.Equal(t, 4, res.Available)
	assert.Equal(t, 0, res.Bands[0].Available)
}

func TestCompute_RemovedBandStillCounts(t *testing.T) {
	tier := &tiers.TicketTier{Bands: tiers.Bands{{Price: 100, Quantity: 3}}}

	res := Compute(tier, map[int]int{0: 1, 2: 1})

	assert.Equal(t, 2, res.Booked)
	assert.Equal(t, 1, res.Available)
}
