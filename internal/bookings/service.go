package bookings

import (
	"context"
	"crypto/rand"
	"errors"
	"io"

	"github.com/NguyenZak/longhai-ticket-sub001/internal/availability"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/notifications"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/apperr"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/clock"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/validation"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/tiers"
	"github.com/NguyenZak/longhai-ticket-sub001/pkg/logger"
	"github.com/NguyenZak/longhai-ticket-sub001/pkg/metrics"
	"github.com/NguyenZak/longhai-ticket-sub001/pkg/money"

	"github.com/google/uuid"
)

const defaultMaxNumberAttempts = 10

type Service interface {
	CreateBooking(ctx context.Context, req CreateBookingRequest) (*Booking, error)
	ConfirmBooking(ctx context.Context, id uuid.UUID) (*Booking, error)
	CompleteBooking(ctx context.Context, id uuid.UUID) (*Booking, error)
	CancelBooking(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error)
	ListBookings(ctx context.Context, query BookingListQuery) ([]Booking, int64, error)
	GenerateBookingNumber(ctx context.Context) (string, error)
}

// AvailabilityRefresher drops derived availability after the ledger changes.
type AvailabilityRefresher interface {
	Invalidate(ctx context.Context, tierID uuid.UUID) error
	RefreshEvent(ctx context.Context, eventID uuid.UUID) error
}

// EventPublisher announces committed ledger changes.
type EventPublisher interface {
	PublishBookingEvent(ctx context.Context, msg *notifications.BookingMessage) error
}

type Option func(*service)

func WithLocker(l TierLocker) Option {
	return func(s *service) { s.locker = l }
}

func WithPublisher(p EventPublisher) Option {
	return func(s *service) { s.publisher = p }
}

func WithAvailability(a AvailabilityRefresher) Option {
	return func(s *service) { s.availability = a }
}

func WithClock(c clock.Clock) Option {
	return func(s *service) { s.clock = c }
}

// WithEntropy replaces crypto/rand as the booking number source.
func WithEntropy(r io.Reader) Option {
	return func(s *service) { s.entropy = r }
}

// WithMaxNumberAttempts bounds booking number regeneration on collision.
func WithMaxNumberAttempts(n int) Option {
	return func(s *service) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(s *service) { s.log = l }
}

type service struct {
	repo         Repository
	locker       TierLocker
	publisher    EventPublisher
	availability AvailabilityRefresher
	clock        clock.Clock
	entropy      io.Reader
	maxAttempts  int
	log          *logger.Logger
}

func NewService(repo Repository, opts ...Option) Service {
	s := &service{
		repo:        repo,
		locker:      NewLocalLocker(),
		publisher:   notifications.NoopPublisher{},
		clock:       clock.NewSystem(),
		entropy:     rand.Reader,
		maxAttempts: defaultMaxNumberAttempts,
		log:         logger.GetDefault(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithComponent("bookings")
	return s
}

// CreateBooking records a purchase. The check against remaining inventory
// and the insert happen under the tier lock and in one transaction, so
// concurrent purchases never push a tier or band below zero.
func (s *service) CreateBooking(ctx context.Context, req CreateBookingRequest) (*Booking, error) {
	if err := validation.Struct(req); err != nil {
		s.reject(ctx, req, err)
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, req.TierID)
	if err != nil {
		s.reject(ctx, req, err)
		return nil, err
	}
	defer unlock()

	var booking *Booking
	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		tier, err := s.repo.LockTier(txCtx, req.TierID)
		if err != nil {
			return err
		}
		band, err := checkSellable(tier, req)
		if err != nil {
			return err
		}

		booked, err := s.repo.BookedByBand(txCtx, tier.ID)
		if err != nil {
			return err
		}
		if err := checkInventory(availability.Compute(tier, booked), *req.BandIndex, req.Quantity); err != nil {
			return err
		}

		total, err := money.Total(band.Price, req.Quantity)
		if err != nil {
			return apperr.Validation("quantity", "total amount for %d tickets is out of range", req.Quantity).Wrap(err)
		}

		now := s.clock.Now()
		booking = &Booking{
			ID:          uuid.New(),
			EventID:     tier.EventID,
			TierID:      tier.ID,
			UserID:      req.UserID,
			BandIndex:   *req.BandIndex,
			Quantity:    req.Quantity,
			UnitPrice:   band.Price,
			TotalAmount: total,
			Status:      StatusPending,
			Notes:       req.Notes,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return s.insertWithNumber(txCtx, booking)
	})
	if err != nil {
		s.reject(ctx, req, err)
		return nil, err
	}

	metrics.BookingsTotal.WithLabelValues(metrics.ResultCreated).Inc()
	s.log.LogBookingCreated(ctx, booking.ID.String(), booking.BookingNumber, booking.TierID.String(), booking.Quantity, booking.TotalAmount)
	s.afterCommit(ctx, booking, notifications.BookingEventCreated)
	return booking, nil
}

func checkSellable(tier *tiers.TicketTier, req CreateBookingRequest) (tiers.PriceBand, error) {
	if tier.EventID != req.EventID {
		return tiers.PriceBand{}, apperr.Validation("event_id", "tier %s does not belong to event %s", tier.ID, req.EventID)
	}
	if !tier.Status.IsSellable() {
		return tiers.PriceBand{}, apperr.Validation("tier_id", "tier %s is %s, not on sale", tier.ID, tier.Status)
	}
	band, ok := tier.Band(*req.BandIndex)
	if !ok {
		return tiers.PriceBand{}, apperr.Validation("band_index", "tier %s has no price band %d", tier.ID, *req.BandIndex)
	}
	return band, nil
}

func checkInventory(res availability.Result, bandIndex, quantity int) error {
	if quantity > res.Available {
		return apperr.InsufficientInventory("quantity", "requested %d, only %d left in tier", quantity, res.Available)
	}
	if left := res.Bands[bandIndex].Available; quantity > left {
		return apperr.InsufficientInventory("quantity", "requested %d, only %d left at price band %d", quantity, left, bandIndex)
	}
	return nil
}

// insertWithNumber draws booking numbers until one inserts cleanly.
func (s *service) insertWithNumber(ctx context.Context, booking *Booking) error {
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		number, taken, err := s.candidate(ctx)
		if err != nil {
			return err
		}
		if !taken {
			booking.BookingNumber = number
			err = s.repo.Create(ctx, booking)
			if err == nil {
				return nil
			}
			if !errors.Is(err, ErrDuplicateBookingNumber) {
				return err
			}
		}
		metrics.BookingNumberRetries.Inc()
	}
	return s.exhausted()
}

// GenerateBookingNumber returns a number not yet present in the ledger.
func (s *service) GenerateBookingNumber(ctx context.Context) (string, error) {
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		number, taken, err := s.candidate(ctx)
		if err != nil {
			return "", err
		}
		if !taken {
			return number, nil
		}
		metrics.BookingNumberRetries.Inc()
	}
	return "", s.exhausted()
}

func (s *service) candidate(ctx context.Context) (string, bool, error) {
	number, err := NewBookingNumber(s.clock.Now(), s.entropy)
	if err != nil {
		return "", false, err
	}
	taken, err := s.repo.BookingNumberExists(ctx, number)
	if err != nil {
		return "", false, err
	}
	return number, taken, nil
}

func (s *service) exhausted() error {
	return apperr.Conflict("booking_number", "no unused booking number after %d attempts", s.maxAttempts)
}

func (s *service) ConfirmBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return s.transition(ctx, id, StatusConfirmed, notifications.BookingEventConfirmed)
}

func (s *service) CompleteBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return s.transition(ctx, id, StatusCompleted, notifications.BookingEventCompleted)
}

// CancelBooking releases the booking's quantity back to its tier. The row is
// kept with status cancelled.
func (s *service) CancelBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return s.transition(ctx, id, StatusCancelled, notifications.BookingEventCancelled)
}

func (s *service) transition(ctx context.Context, id uuid.UUID, to Status, event notifications.BookingEventType) (*Booking, error) {
	var (
		booking *Booking
		from    Status
	)
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		b, err := s.repo.GetByIDForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if !b.Status.CanTransitionTo(to) {
			return apperr.InvalidState("status", "booking %s is %s and cannot become %s", b.ID, b.Status, to)
		}
		from = b.Status
		b.stamp(to, s.clock.Now())
		if err := s.repo.UpdateStatus(txCtx, b); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.BookingTransitions.WithLabelValues(string(to)).Inc()
	s.log.LogBookingStatusChanged(ctx, booking.ID.String(), string(from), string(to))
	s.afterCommit(ctx, booking, event)
	return booking, nil
}

func (s *service) GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListBookings(ctx context.Context, query BookingListQuery) ([]Booking, int64, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}
	if err := validation.Struct(query); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, query)
}

// afterCommit runs side effects that must not undo a committed write.
func (s *service) afterCommit(ctx context.Context, b *Booking, event notifications.BookingEventType) {
	if s.availability != nil {
		if err := s.availability.Invalidate(ctx, b.TierID); err != nil {
			s.log.WarnContext(ctx, "Failed to invalidate availability", "tier_id", b.TierID.String(), "error", err.Error())
		}
		if err := s.availability.RefreshEvent(ctx, b.EventID); err != nil {
			s.log.WarnContext(ctx, "Failed to refresh event counters", "event_id", b.EventID.String(), "error", err.Error())
		}
	}

	msg := &notifications.BookingMessage{
		Type:          event,
		BookingID:     b.ID,
		BookingNumber: b.BookingNumber,
		EventID:       b.EventID,
		TierID:        b.TierID,
		UserID:        b.UserID,
		BandIndex:     b.BandIndex,
		Quantity:      b.Quantity,
		TotalAmount:   b.TotalAmount,
		Status:        string(b.Status),
		OccurredAt:    b.UpdatedAt,
	}
	if err := s.publisher.PublishBookingEvent(ctx, msg); err != nil {
		s.log.WarnContext(ctx, "Failed to publish booking event", "booking_id", b.ID.String(), "error", err.Error())
	}
}

func (s *service) reject(ctx context.Context, req CreateBookingRequest, err error) {
	result := metrics.ResultError
	switch apperr.KindOf(err) {
	case apperr.KindInsufficientInventory:
		result = metrics.ResultInsufficient
	case apperr.KindValidation, apperr.KindNotFound:
		result = metrics.ResultRejected
	case apperr.KindConflict, apperr.KindInvalidState:
		result = metrics.ResultConflict
	}
	metrics.BookingsTotal.WithLabelValues(result).Inc()
	s.log.LogBookingRejected(ctx, req.TierID.String(), req.Quantity, err)
}
