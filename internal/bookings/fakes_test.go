package bookings

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/NguyenZak/longhai-ticket-sub001/internal/notifications"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/apperr"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/tiers"
	"github.com/NguyenZak/longhai-ticket-sub001/pkg/logger"

	"github.com/google/uuid"
)

func quietLogger() *logger.Logger {
	return logger.FromSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// fakeRepo keeps the ledger in memory. Mutations are applied immediately;
// the service only writes as the last step of a transaction so there is
// nothing to roll back.
type fakeRepo struct {
	mu       sync.Mutex
	tiers    map[uuid.UUID]tiers.TicketTier
	bookings map[uuid.UUID]*Booking
	numbers  map[string]bool
	// numbers reported free by BookingNumberExists but rejected on insert
	raceNumbers map[string]bool
}

func newFakeRepo(ts ...tiers.TicketTier) *fakeRepo {
	r := &fakeRepo{
		tiers:       make(map[uuid.UUID]tiers.TicketTier),
		bookings:    make(map[uuid.UUID]*Booking),
		numbers:     make(map[string]bool),
		raceNumbers: make(map[string]bool),
	}
	for _, t := range ts {
		r.tiers[t.ID] = t
	}
	return r
}

func (r *fakeRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (r *fakeRepo) LockTier(_ context.Context, tierID uuid.UUID) (*tiers.TicketTier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tiers[tierID]
	if !ok {
		return nil, apperr.NotFound("tier_id", "tier %s not found", tierID)
	}
	return &t, nil
}

func (r *fakeRepo) BookedByBand(_ context.Context, tierID uuid.UUID) (map[int]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[int]int)
	for _, b := range r.bookings {
		if b.TierID == tierID && b.Status.IsActive() {
			out[b.BandIndex] += b.Quantity
		}
	}
	return out, nil
}

func (r *fakeRepo) BookingNumberExists(_ context.Context, number string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.numbers[number], nil
}

func (r *fakeRepo) Create(_ context.Context, booking *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.numbers[booking.BookingNumber] || r.raceNumbers[booking.BookingNumber] {
		return ErrDuplicateBookingNumber
	}
	r.numbers[booking.BookingNumber] = true
	cp := *booking
	r.bookings[booking.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, apperr.NotFound("booking_id", "booking %s not found", id)
	}
	cp := *b
	return &cp, nil
}

func (r *fakeRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeRepo) UpdateStatus(_ context.Context, booking *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *booking
	r.bookings[booking.ID] = &cp
	return nil
}

func (r *fakeRepo) List(_ context.Context, query BookingListQuery) ([]Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Booking
	for _, b := range r.bookings {
		if query.TierID != "" && b.TierID.String() != query.TierID {
			continue
		}
		if query.Status != "" && string(b.Status) != query.Status {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookingNumber < out[j].BookingNumber })
	total := int64(len(out))
	start := (query.Page - 1) * query.Limit
	if start > len(out) {
		start = len(out)
	}
	end := start + query.Limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

type recordingPublisher struct {
	mu       sync.Mutex
	messages []*notifications.BookingMessage
}

func (p *recordingPublisher) PublishBookingEvent(_ context.Context, msg *notifications.BookingMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

func (p *recordingPublisher) types() []notifications.BookingEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]notifications.BookingEventType, 0, len(p.messages))
	for _, m := range p.messages {
		out = append(out, m.Type)
	}
	return out
}

type recordingRefresher struct {
	mu          sync.Mutex
	invalidated int
	refreshed   int
}

func (r *recordingRefresher) Invalidate(context.Context, uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invalidated++
	return nil
}

func (r *recordingRefresher) RefreshEvent(context.Context, uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refreshed++
	return nil
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}
