package analytics

import (
	"context"
	"errors"
	"time"

	"github.com/NguyenZak/longhai-ticket-sub001/internal/events"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/apperr"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/clock"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/constants"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/tiers"
	"github.com/NguyenZak/longhai-ticket-sub001/pkg/cache"
	"github.com/NguyenZak/longhai-ticket-sub001/pkg/logger"

	"github.com/google/uuid"
)

const (
	defaultStatsDays = 30
	maxStatsDays     = 365
)

type Service interface {
	SetCacheService(c cache.Service)
	GetEventSales(ctx context.Context, eventID uuid.UUID) (*EventSales, error)
	GetDailyBookingStats(ctx context.Context, days int) ([]DailyBookingStats, error)
}

type EventReader interface {
	GetEventByID(ctx context.Context, id uuid.UUID) (*events.EventResponse, error)
}

type TierLister interface {
	ListByEventID(ctx context.Context, eventID uuid.UUID) ([]tiers.TicketTier, error)
}

type service struct {
	repo     Repository
	events   EventReader
	tiers    TierLister
	cache    cache.Service
	cacheTTL time.Duration
	clock    clock.Clock
	log      *logger.Logger
}

// NewService builds the sales report service. Reports are served from the
// cache for TTL_EVENT_SALES once a cache is injected, so they may trail the
// ledger by that long.
func NewService(repo Repository, events EventReader, tiers TierLister) Service {
	return &service{
		repo:     repo,
		events:   events,
		tiers:    tiers,
		cacheTTL: constants.TTL_EVENT_SALES,
		clock:    clock.NewSystem(),
		log:      logger.GetDefault(),
	}
}

// SetCacheService injects the cache service dependency
func (s *service) SetCacheService(c cache.Service) {
	s.cache = c
}

func (s *service) GetEventSales(ctx context.Context, eventID uuid.UUID) (*EventSales, error) {
	key := constants.BuildEventSalesKey(eventID.String())
	if s.cache != nil {
		var cached EventSales
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.WarnContext(ctx, "sales cache read failed", "event_id", eventID.String(), "error", err.Error())
		}
	}

	event, err := s.events.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	tierList, err := s.tiers.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	aggregates, err := s.repo.TierAggregates(ctx, eventID)
	if err != nil {
		return nil, err
	}

	sales := buildEventSales(eventID, event.Name, tierList, aggregates)
	sales.GeneratedAt = s.clock.Now()

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, sales, s.cacheTTL); err != nil {
			s.log.WarnContext(ctx, "sales cache write failed", "event_id", eventID.String(), "error", err.Error())
		}
	}
	return sales, nil
}

func buildEventSales(eventID uuid.UUID, name string, tierList []tiers.TicketTier, aggregates map[uuid.UUID]TierAggregate) *EventSales {
	sales := &EventSales{
		EventID:   eventID,
		EventName: name,
		Tiers:     make([]TierSales, 0, len(tierList)),
	}

	var bookings, cancelled int
	for i := range tierList {
		tier := &tierList[i]
		agg := aggregates[tier.ID]
		ts := TierSales{
			TierID:        tier.ID,
			Name:          tier.Name,
			Status:        string(tier.Status),
			TotalPool:     tier.TotalPool(),
			TicketsSold:   agg.TicketsSold,
			Revenue:       agg.Revenue,
			PendingAmount: agg.PendingAmount,
			Bookings:      agg.Bookings,
			Cancelled:     agg.Cancelled,
			Utilization:   percent(agg.TicketsSold, tier.TotalPool()),
		}
		sales.Tiers = append(sales.Tiers, ts)

		sales.Revenue += ts.Revenue
		sales.PendingAmount += ts.PendingAmount
		sales.TicketsSold += ts.TicketsSold
		bookings += ts.Bookings
		cancelled += ts.Cancelled
		if tier.Status != tiers.TierStatusCancelled {
			sales.TotalPool += ts.TotalPool
		}
	}

	sales.CancellationRate = percent(cancelled, bookings)
	sales.Utilization = percent(sales.TicketsSold, sales.TotalPool)
	return sales
}

func percent(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func (s *service) GetDailyBookingStats(ctx context.Context, days int) ([]DailyBookingStats, error) {
	if days == 0 {
		days = defaultStatsDays
	}
	if days < 1 || days > maxStatsDays {
		return nil, apperr.Validation("days", "must be between 1 and %d", maxStatsDays)
	}
	since := s.clock.Now().AddDate(0, 0, -days)
	return s.repo.DailyBookingStats(ctx, since)
}
