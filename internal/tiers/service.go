package tiers

import (
	"context"
	"sort"

	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/apperr"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/validation"
	"github.com/NguyenZak/longhai-ticket-sub001/pkg/logger"

	"github.com/google/uuid"
)

type Service interface {
	SetChangeListener(listener ChangeListener)
	SetLedger(ledger Ledger)
	CreateTier(ctx context.Context, eventID uuid.UUID, req CreateTierRequest) (*TicketTier, error)
	UpdateTier(ctx context.Context, tierID uuid.UUID, req UpdateTierRequest) (*TicketTier, error)
	GetTier(ctx context.Context, tierID uuid.UUID) (*TicketTier, error)
	ListTiers(ctx context.Context, eventID uuid.UUID) ([]TicketTier, error)
	CancelTier(ctx context.Context, tierID uuid.UUID) (*TicketTier, error)
}

// EventChecker is satisfied by the events service.
type EventChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// ChangeListener is told about every stored tier change. The availability
// service uses it to drop cached snapshots and refresh event counters.
type ChangeListener interface {
	TierChanged(ctx context.Context, tier *TicketTier)
}

// Ledger reports quantities held by non-cancelled bookings, keyed by band
// index. The booking repository satisfies it.
type Ledger interface {
	BookedByBand(ctx context.Context, tierID uuid.UUID) (map[int]int, error)
}

type service struct {
	repo     Repository
	events   EventChecker
	listener ChangeListener
	ledger   Ledger
	log      *logger.Logger
}

func NewService(repo Repository, events EventChecker) Service {
	return &service{
		repo:   repo,
		events: events,
		log:    logger.GetDefault(),
	}
}

func (s *service) SetChangeListener(listener ChangeListener) {
	s.listener = listener
}

// SetLedger enables the band edit check against existing bookings.
func (s *service) SetLedger(ledger Ledger) {
	s.ledger = ledger
}

func (s *service) CreateTier(ctx context.Context, eventID uuid.UUID, req CreateTierRequest) (*TicketTier, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	bands, err := resolveBands(req.Bands, req.Prices, req.Quantities)
	if err != nil {
		return nil, err
	}
	if bands == nil {
		bands = Bands{}
	}

	status := TierStatusPreparing
	if req.Status != "" {
		status = TierStatus(req.Status)
	}

	if err := s.requireEvent(ctx, eventID); err != nil {
		return nil, err
	}

	tier := &TicketTier{
		ID:          uuid.New(),
		EventID:     eventID,
		Name:        req.Name,
		Color:       req.Color,
		Bands:       bands,
		Status:      status,
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, tier); err != nil {
		return nil, err
	}

	s.log.LogTierCreated(ctx, tier.ID.String(), eventID.String(), tier.TotalPool())
	s.notify(ctx, tier)
	return tier, nil
}

func (s *service) UpdateTier(ctx context.Context, tierID uuid.UUID, req UpdateTierRequest) (*TicketTier, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if req.Name != nil && *req.Name == "" {
		return nil, apperr.Validation("name", "must not be empty")
	}
	bands, err := resolveBands(req.Bands, req.Prices, req.Quantities)
	if err != nil {
		return nil, err
	}

	var tier *TicketTier
	err = s.repo.WithTx(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetByIDForUpdate(ctx, tierID)
		if err != nil {
			return err
		}
		if current.Status == TierStatusCancelled {
			return apperr.InvalidState("status", "tier %s is cancelled", tierID)
		}
		if bands != nil {
			if err := s.checkBooked(ctx, tierID, bands); err != nil {
				return err
			}
		}

		if req.Name != nil {
			current.Name = *req.Name
		}
		if req.Color != nil {
			current.Color = *req.Color
		}
		if bands != nil {
			current.Bands = bands
		}
		if req.Status != nil {
			current.Status = TierStatus(*req.Status)
		}
		if req.Description != nil {
			current.Description = *req.Description
		}

		if err := s.repo.Update(ctx, current); err != nil {
			return err
		}
		tier = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, tier)
	return tier, nil
}

// checkBooked rejects bands that would leave the ledger holding more than
// the pool: a shrunk band below its booked sum, or a removed band with bookings.
func (s *service) checkBooked(ctx context.Context, tierID uuid.UUID, bands Bands) error {
	if s.ledger == nil {
		return nil
	}
	booked, err := s.ledger.BookedByBand(ctx, tierID)
	if err != nil {
		return err
	}

	indexes := make([]int, 0, len(booked))
	for i := range booked {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	for _, i := range indexes {
		held := booked[i]
		if held == 0 {
			continue
		}
		if i >= len(bands) {
			return apperr.InvalidState("bands", "band %d holds %d booked tickets and cannot be removed", i, held)
		}
		if bands[i].Quantity < held {
			return apperr.InvalidState("bands", "band %d quantity %d is below the %d tickets already booked", i, bands[i].Quantity, held)
		}
	}
	return nil
}

func (s *service) GetTier(ctx context.Context, tierID uuid.UUID) (*TicketTier, error) {
	return s.repo.GetByID(ctx, tierID)
}

func (s *service) ListTiers(ctx context.Context, eventID uuid.UUID) ([]TicketTier, error) {
	if err := s.requireEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repo.ListByEventID(ctx, eventID)
}

// CancelTier is the tier's delete: the row stays so existing bookings keep
// their reference. Cancelling twice returns the tier unchanged.
func (s *service) CancelTier(ctx context.Context, tierID uuid.UUID) (*TicketTier, error) {
	var (
		tier    *TicketTier
		changed bool
	)
	err := s.repo.WithTx(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetByIDForUpdate(ctx, tierID)
		if err != nil {
			return err
		}
		tier = current
		if current.Status == TierStatusCancelled {
			return nil
		}
		current.Status = TierStatusCancelled
		changed = true
		return s.repo.Update(ctx, current)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.notify(ctx, tier)
	}
	return tier, nil
}

func (s *service) requireEvent(ctx context.Context, eventID uuid.UUID) error {
	if s.events == nil {
		return nil
	}
	ok, err := s.events.Exists(ctx, eventID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("event_id", "event %s not found", eventID)
	}
	return nil
}

func (s *service) notify(ctx context.Context, tier *TicketTier) {
	if s.listener != nil {
		s.listener.TierChanged(ctx, tier)
	}
}

// resolveBands picks bands or the legacy arrays. A nil result means neither was supplied.
func resolveBands(bands []PriceBand, prices []int64, quantities []int) (Bands, error) {
	legacy := prices != nil || quantities != nil
	if bands != nil && legacy {
		return nil, apperr.Validation("bands", "supply either bands or prices and quantities, not both")
	}
	if legacy {
		return BandsFromArrays(prices, quantities)
	}
	if bands == nil {
		return nil, nil
	}
	for i, b := range bands {
		if b.Price < 0 {
			return nil, apperr.Validation("bands", "band %d has a negative price", i)
		}
		if b.Quantity < 0 {
			return nil, apperr.Validation("bands", "band %d has a negative quantity", i)
		}
	}
	return Bands(bands), nil
}
