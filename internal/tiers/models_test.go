package tiers

import (
	"errors"
	"testing"

	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketTier_Derived(t *testing.T) {
	tier := &TicketTier{Bands: Bands{{Price: 80000, Quantity: 5}, {Price: 50000, Quantity: 5}, {Price: 120000, Quantity: 2}}}

	assert.Equal(t, int64(50000), tier.MinPrice())
	assert.Equal(t, int64(120000), tier.MaxPrice())
	assert.Equal(t, 12, tier.TotalPool())
	assert.Equal(t, []int64{80000, 50000, 120000}, tier.Prices())
	assert.Equal(t, []int{5, 5, 2}, tier.Quantities())
}

func TestTicketTier_DerivedEmpty(t *testing.T) {
	tier := &TicketTier{}

	assert.Zero(t, tier.MinPrice())
	assert.Zero(t, tier.MaxPrice())
	assert.Zero(t, tier.TotalPool())
}

func TestTicketTier_Band(t *testing.T) {
	tier := &TicketTier{Bands: Bands{{Price: 1, Quantity: 1}}}

	b, ok := tier.Band(0)
	assert.True(t, ok)
	assert.Equal(t, int64(1), b.Price)

	_, ok = tier.Band(1)
	assert.False(t, ok)
	_, ok = tier.Band(-1)
	assert.False(t, ok)
}

func TestBandsFromArrays_LengthMismatch(t *testing.T) {
	_, err := BandsFromArrays([]int64{100, 200}, []int{10})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	appErr, _ := apperr.As(err)
	assert.Equal(t, "quantities", appErr.Field)
}

func TestBandsFromArrays(t *testing.T) {
	bands, err := BandsFromArrays([]int64{100, 200}, []int{10, 5})
	require.NoError(t, err)
	assert.Equal(t, Bands{{Price: 100, Quantity: 10}, {Price: 200, Quantity: 5}}, bands)
}

func TestBands_ValueScanRoundTrip(t *testing.T) {
	in := Bands{{Price: 50000, Quantity: 5}, {Price: 80000, Quantity: 5}}
	v, err := in.Value()
	require.NoError(t, err)
	assert.Equal(t, `[{"price":50000,"quantity":5},{"price":80000,"quantity":5}]`, v)

	var out Bands
	require.NoError(t, out.Scan([]byte(v.(string))))
	assert.Equal(t, in, out)

	var empty Bands
	require.NoError(t, empty.Scan(nil))
	assert.Empty(t, empty)

	assert.Error(t, empty.Scan(42))
}

func TestTierStatus(t *testing.T) {
	assert.True(t, TierStatusSoldOut.IsValid())
	assert.False(t, TierStatus("archived").IsValid())
	assert.True(t, TierStatusActive.IsSellable())
	assert.False(t, TierStatusPreparing.IsSellable())
}
