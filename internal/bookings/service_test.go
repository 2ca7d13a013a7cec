package bookings

import (
	"bytes"
	"context"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/NguyenZak/longhai-ticket-sub001/internal/notifications"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/apperr"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/clock"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/tiers"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func activeTier(bands ...tiers.PriceBand) tiers.TicketTier {
	return tiers.TicketTier{
		ID:      uuid.New(),
		EventID: uuid.New(),
		Name:    "Standard",
		Bands:   bands,
		Status:  tiers.TierStatusActive,
	}
}

func band(price int64, qty int) tiers.PriceBand {
	return tiers.PriceBand{Price: price, Quantity: qty}
}

func intPtr(i int) *int { return &i }

func request(t tiers.TicketTier, bandIndex, qty int) CreateBookingRequest {
	return CreateBookingRequest{
		EventID:   t.EventID,
		TierID:    t.ID,
		UserID:    uuid.New(),
		BandIndex: intPtr(bandIndex),
		Quantity:  qty,
	}
}

type fixture struct {
	svc       Service
	repo      *fakeRepo
	publisher *recordingPublisher
	refresher *recordingRefresher
}

func newFixture(opts []Option, ts ...tiers.TicketTier) fixture {
	repo := newFakeRepo(ts...)
	pub := &recordingPublisher{}
	ref := &recordingRefresher{}
	base := []Option{
		WithClock(clock.NewFixed(testNow)),
		WithPublisher(pub),
		WithAvailability(ref),
		WithLogger(quietLogger()),
	}
	return fixture{
		svc:       NewService(repo, append(base, opts...)...),
		repo:      repo,
		publisher: pub,
		refresher: ref,
	}
}

func booked(t *testing.T, f fixture, tierID uuid.UUID) map[int]int {
	t.Helper()
	booked, err := f.repo.BookedByBand(context.Background(), tierID)
	require.NoError(t, err)
	return booked
}

func TestCreateBooking_TwoBandScenario(t *testing.T) {
	tier := activeTier(band(50000, 5), band(80000, 5))
	f := newFixture(nil, tier)
	ctx := context.Background()

	_, err := f.svc.CreateBooking(ctx, request(tier, 0, 6))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrInsufficientInventory)

	first, err := f.svc.CreateBooking(ctx, request(tier, 0, 5))
	require.NoError(t, err)
	assert.Equal(t, int64(250000), first.TotalAmount)
	assert.Equal(t, StatusPending, first.Status)

	second, err := f.svc.CreateBooking(ctx, request(tier, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(80000), second.UnitPrice)
	assert.Equal(t, int64(80000), second.TotalAmount)

	perBand := booked(t, f, tier.ID)
	assert.Equal(t, 4, tier.TotalPool()-perBand[0]-perBand[1])

	_, err = f.svc.CreateBooking(ctx, request(tier, 0, 1))
	assert.ErrorIs(t, err, apperr.ErrInsufficientInventory, "band 0 is exhausted even though the tier has stock")
}

func TestCreateBooking_Validation(t *testing.T) {
	tier := activeTier(band(1000, 3))
	inactive := activeTier(band(1000, 3))
	inactive.Status = tiers.TierStatusPreparing
	huge := activeTier(band(math.MaxInt64/2, 5))
	f := newFixture(nil, tier, inactive, huge)
	ctx := context.Background()

	tests := []struct {
		name  string
		req   CreateBookingRequest
		kind  apperr.Kind
		field string
	}{
		{"zero quantity", request(tier, 0, 0), apperr.KindValidation, "quantity"},
		{"negative band", request(tier, -1, 1), apperr.KindValidation, "band_index"},
		{"missing band", func() CreateBookingRequest { r := request(tier, 0, 1); r.BandIndex = nil; return r }(), apperr.KindValidation, "band_index"},
		{"band out of range", request(tier, 1, 1), apperr.KindValidation, "band_index"},
		{"tier not on sale", request(inactive, 0, 1), apperr.KindValidation, "tier_id"},
		{"wrong event", func() CreateBookingRequest { r := request(tier, 0, 1); r.EventID = uuid.New(); return r }(), apperr.KindValidation, "event_id"},
		{"unknown tier", func() CreateBookingRequest { r := request(tier, 0, 1); r.TierID = uuid.New(); return r }(), apperr.KindNotFound, "tier_id"},
		{"amount overflow", request(huge, 0, 3), apperr.KindValidation, "quantity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateBooking(ctx, tt.req)
			appErr, ok := apperr.As(err)
			require.True(t, ok, "got %v", err)
			assert.Equal(t, tt.kind, appErr.Kind)
			assert.Equal(t, tt.field, appErr.Field)
		})
	}

	assert.Empty(t, f.repo.bookings)
	assert.Empty(t, f.publisher.types())
}

func TestCreateBooking_ConcurrentPurchasesNeverOversell(t *testing.T) {
	const pool, buyers = 10, 50
	tier := activeTier(band(1000, pool))
	f := newFixture(nil, tier)

	var (
		wg           sync.WaitGroup
		ok, rejected atomic.Int32
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CreateBooking(context.Background(), request(tier, 0, 1))
			switch {
			case err == nil:
				ok.Add(1)
			case apperr.KindOf(err) == apperr.KindInsufficientInventory:
				rejected.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, pool, ok.Load())
	assert.EqualValues(t, buyers-pool, rejected.Load())
	assert.Equal(t, pool, booked(t, f, tier.ID)[0])
}

func TestCreateBooking_SideEffects(t *testing.T) {
	tier := activeTier(band(1000, 3))
	f := newFixture(nil, tier)

	b, err := f.svc.CreateBooking(context.Background(), request(tier, 0, 2))
	require.NoError(t, err)

	assert.Equal(t, []notifications.BookingEventType{notifications.BookingEventCreated}, f.publisher.types())
	assert.Equal(t, 1, f.refresher.invalidated)
	assert.Equal(t, 1, f.refresher.refreshed)
	assert.Equal(t, tier.EventID, b.EventID)
	assert.Equal(t, testNow, b.CreatedAt)
}

func TestGenerateBookingNumber_Format(t *testing.T) {
	f := newFixture([]Option{WithEntropy(zeroReader{})})

	number, err := f.svc.GenerateBookingNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "BK20261019AAAAAA", number)
	assert.Regexp(t, `^BK\d{8}[A-Z0-9]{6}$`, number)
}

func TestGenerateBookingNumber_RegeneratesOnCollision(t *testing.T) {
	// six zero bytes give AAAAAA, then six 0x01 bytes give BBBBBB
	entropy := bytes.NewReader(append(make([]byte, 6), bytes.Repeat([]byte{1}, 6)...))
	f := newFixture([]Option{WithEntropy(entropy)})
	f.repo.numbers["BK20261019AAAAAA"] = true

	number, err := f.svc.GenerateBookingNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "BK20261019BBBBBB", number)
}

func TestGenerateBookingNumber_GivesUpAfterMaxAttempts(t *testing.T) {
	f := newFixture([]Option{WithEntropy(zeroReader{}), WithMaxNumberAttempts(3)})
	f.repo.numbers["BK20261019AAAAAA"] = true

	_, err := f.svc.GenerateBookingNumber(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestCreateBooking_RetriesNumberLostToRace(t *testing.T) {
	tier := activeTier(band(1000, 3))
	entropy := bytes.NewReader(append(make([]byte, 6), bytes.Repeat([]byte{2}, 6)...))
	f := newFixture([]Option{WithEntropy(entropy)}, tier)
	f.repo.raceNumbers["BK20261019AAAAAA"] = true

	b, err := f.svc.CreateBooking(context.Background(), request(tier, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, "BK20261019CCCCCC", b.BookingNumber)
}

func TestCreateBooking_NumberExhaustionIsConflict(t *testing.T) {
	tier := activeTier(band(1000, 3))
	f := newFixture([]Option{WithEntropy(zeroReader{}), WithMaxNumberAttempts(2)}, tier)
	f.repo.numbers["BK20261019AAAAAA"] = true

	_, err := f.svc.CreateBooking(context.Background(), request(tier, 0, 1))
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Empty(t, booked(t, f, tier.ID))
}

func TestBookingNumbersAreUnique(t *testing.T) {
	tier := activeTier(band(1, 10000))
	f := newFixture(nil, tier)

	seen := make(map[string]bool, 10000)
	for i := 0; i < 10000; i++ {
		b, err := f.svc.CreateBooking(context.Background(), request(tier, 0, 1))
		require.NoError(t, err)
		require.False(t, seen[b.BookingNumber], "duplicate %s", b.BookingNumber)
		seen[b.BookingNumber] = true
	}

	_, err := f.svc.CreateBooking(context.Background(), request(tier, 0, 1))
	assert.ErrorIs(t, err, apperr.ErrInsufficientInventory)
}

func TestTransitions(t *testing.T) {
	tier := activeTier(band(1000, 4))
	f := newFixture(nil, tier)
	ctx := context.Background()

	b, err := f.svc.CreateBooking(ctx, request(tier, 0, 4))
	require.NoError(t, err)

	_, err = f.svc.CompleteBooking(ctx, b.ID)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err), "pending cannot complete")

	confirmed, err := f.svc.ConfirmBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.ConfirmedAt)

	completed, err := f.svc.CompleteBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, completed.Status)

	_, err = f.svc.CancelBooking(ctx, b.ID)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err), "completed cannot be cancelled")

	assert.Equal(t, []notifications.BookingEventType{
		notifications.BookingEventCreated,
		notifications.BookingEventConfirmed,
		notifications.BookingEventCompleted,
	}, f.publisher.types())
}

func TestCancelBooking_ReleasesInventory(t *testing.T) {
	tier := activeTier(band(1000, 2))
	f := newFixture(nil, tier)
	ctx := context.Background()

	b, err := f.svc.CreateBooking(ctx, request(tier, 0, 2))
	require.NoError(t, err)
	_, err = f.svc.CreateBooking(ctx, request(tier, 0, 1))
	require.ErrorIs(t, err, apperr.ErrInsufficientInventory)

	cancelled, err := f.svc.CancelBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)

	_, err = f.svc.CancelBooking(ctx, b.ID)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

	// the cancelled row stays in the ledger
	kept, err := f.svc.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, kept.Status)

	_, err = f.svc.CreateBooking(ctx, request(tier, 0, 2))
	assert.NoError(t, err)
}

func TestCancelBooking_NotFound(t *testing.T) {
	f := newFixture(nil)

	_, err := f.svc.CancelBooking(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListBookings_Defaults(t *testing.T) {
	tier := activeTier(band(1000, 30))
	f := newFixture(nil, tier)
	for i := 0; i < 12; i++ {
		_, err := f.svc.CreateBooking(context.Background(), request(tier, 0, 1))
		require.NoError(t, err)
	}

	list, total, err := f.svc.ListBookings(context.Background(), BookingListQuery{TierID: tier.ID.String()})
	require.NoError(t, err)
	assert.EqualValues(t, 12, total)
	assert.Len(t, list, 10)

	_, _, err = f.svc.ListBookings(context.Background(), BookingListQuery{Status: "held"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCalculateTotalPages(t *testing.T) {
	assert.Equal(t, 0, CalculateTotalPages(10, 0))
	assert.Equal(t, 2, CalculateTotalPages(12, 10))
	assert.Equal(t, 1, CalculateTotalPages(10, 10))
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusConfirmed))
	assert.True(t, StatusPending.CanTransitionTo(StatusCancelled))
	assert.True(t, StatusConfirmed.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusCancelled.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusCompleted.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusCancelled.IsActive())
	assert.True(t, StatusCompleted.IsActive())
}
