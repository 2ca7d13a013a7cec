package availability

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/clock"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/constants"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/tiers"
	"github.com/NguyenZak/longhai-ticket-sub001/pkg/cache"
	"github.com/NguyenZak/longhai-ticket-sub001/pkg/logger"
	"github.com/NguyenZak/longhai-ticket-sub001/pkg/metrics"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Ledger reports quantities held by non-cancelled bookings, keyed by band index.
type Ledger interface {
	BookedByBand(ctx context.Context, tierID uuid.UUID) (map[int]int, error)
}

type TierReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*tiers.TicketTier, error)
	ListByEventID(ctx context.Context, eventID uuid.UUID) ([]tiers.TicketTier, error)
	ListAll(ctx context.Context) ([]tiers.TicketTier, error)
}

// EventCounterWriter stores the derived per-event seat counters.
type EventCounterWriter interface {
	UpdateSeatCounters(ctx context.Context, eventID uuid.UUID, total, available int) error
}

type Service interface {
	AvailableQuantity(ctx context.Context, tierID uuid.UUID) (int, error)
	AvailableByBand(ctx context.Context, tierID uuid.UUID) ([]BandAvailability, error)
	IsAvailable(ctx context.Context, tierID uuid.UUID) (bool, error)
	Snapshot(ctx context.Context, tierID uuid.UUID) (*Snapshot, error)
	Invalidate(ctx context.Context, tierID uuid.UUID) error
	RefreshEvent(ctx context.Context, eventID uuid.UUID) error
	Reconcile(ctx context.Context) (*ReconcileReport, error)
	TierChanged(ctx context.Context, tier *tiers.TicketTier)
}

type Option func(*service)

// WithCache fronts Snapshot with a Redis cache.
func WithCache(c cache.Service, ttl time.Duration) Option {
	return func(s *service) {
		s.cache = c
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

func WithEventCounters(w EventCounterWriter) Option {
	return func(s *service) { s.events = w }
}

func WithClock(c clock.Clock) Option {
	return func(s *service) { s.clock = c }
}

func WithLogger(l *logger.Logger) Option {
	return func(s *service) { s.log = l }
}

// WithReconcileConcurrency bounds how many tiers Reconcile reads at once.
func WithReconcileConcurrency(n int) Option {
	return func(s *service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

type service struct {
	tiers       TierReader
	ledger      Ledger
	events      EventCounterWriter
	cache       cache.Service
	cacheTTL    time.Duration
	clock       clock.Clock
	log         *logger.Logger
	group       singleflight.Group
	concurrency int
}

func NewService(tierReader TierReader, ledger Ledger, opts ...Option) Service {
	s := &service{
		tiers:       tierReader,
		ledger:      ledger,
		cacheTTL:    constants.TTL_TIER_AVAILABILITY,
		clock:       clock.NewSystem(),
		log:         logger.GetDefault(),
		concurrency: 8,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// compute reads the tier and the ledger directly; it never touches the cache.
func (s *service) compute(ctx context.Context, tierID uuid.UUID) (*tiers.TicketTier, Result, error) {
	tier, err := s.tiers.GetByID(ctx, tierID)
	if err != nil {
		return nil, Result{}, err
	}
	booked, err := s.ledger.BookedByBand(ctx, tierID)
	if err != nil {
		return nil, Result{}, fmt.Errorf("sum bookings: %w", err)
	}

	res := Compute(tier, booked)
	if res.Oversold {
		metrics.AvailabilityAnomalies.Inc()
		s.log.LogAvailabilityAnomaly(ctx, tier.ID.String(), res.TotalPool, res.Booked)
	}
	return tier, res, nil
}

func (s *service) AvailableQuantity(ctx context.Context, tierID uuid.UUID) (int, error) {
	_, res, err := s.compute(ctx, tierID)
	if err != nil {
		return 0, err
	}
	return res.Available, nil
}

func (s *service) AvailableByBand(ctx context.Context, tierID uuid.UUID) ([]BandAvailability, error) {
	_, res, err := s.compute(ctx, tierID)
	if err != nil {
		return nil, err
	}
	return res.Bands, nil
}

func (s *service) IsAvailable(ctx context.Context, tierID uuid.UUID) (bool, error) {
	tier, res, err := s.compute(ctx, tierID)
	if err != nil {
		return false, err
	}
	return tier.Status.IsSellable() && res.Available > 0, nil
}

func (s *service) Snapshot(ctx context.Context, tierID uuid.UUID) (*Snapshot, error) {
	if s.cache == nil {
		return s.freshSnapshot(ctx, tierID)
	}

	key := constants.BuildTierAvailabilityKey(tierID.String())
	var cached Snapshot
	err := s.cache.Get(ctx, key, &cached)
	switch {
	case err == nil:
		metrics.AvailabilityCache.WithLabelValues(metrics.CacheHit).Inc()
		return &cached, nil
	case errors.Is(err, cache.ErrCacheMiss):
		metrics.AvailabilityCache.WithLabelValues(metrics.CacheMiss).Inc()
	default:
		metrics.AvailabilityCache.WithLabelValues(metrics.CacheError).Inc()
		s.log.WarnContext(ctx, "availability cache read failed", "tier_id", tierID.String(), "error", err.Error())
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		// Read the generation before the ledger so an Invalidate that lands
		// mid-computation makes the write below a no-op.
		gen, genErr := s.cache.Generation(ctx, constants.BuildTierGenerationKey(tierID.String()))
		snap, err := s.freshSnapshot(ctx, tierID)
		if err != nil {
			return nil, err
		}
		if genErr != nil {
			s.log.WarnContext(ctx, "availability generation read failed", "tier_id", tierID.String(), "error", genErr.Error())
			return snap, nil
		}
		if err := s.storeSnapshot(ctx, tierID, gen, snap); err != nil {
			s.log.WarnContext(ctx, "availability cache write failed", "tier_id", tierID.String(), "error", err.Error())
		}
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	snap := *v.(*Snapshot)
	return &snap, nil
}

func (s *service) freshSnapshot(ctx context.Context, tierID uuid.UUID) (*Snapshot, error) {
	tier, res, err := s.compute(ctx, tierID)
	if err != nil {
		return nil, err
	}
	return newSnapshot(tier, res, s.clock.Now()), nil
}

// storeSnapshot caches snap unless the tier was invalidated after gen was read.
func (s *service) storeSnapshot(ctx context.Context, tierID uuid.UUID, gen int64, snap *Snapshot) error {
	stored, err := s.cache.SetIfGeneration(ctx,
		constants.BuildTierGenerationKey(tierID.String()), gen,
		constants.BuildTierAvailabilityKey(tierID.String()), snap, s.cacheTTL)
	if err != nil {
		return err
	}
	if !stored {
		metrics.AvailabilityCache.WithLabelValues(metrics.CacheSuperseded).Inc()
		s.log.DebugContext(ctx, "availability snapshot superseded", "tier_id", tierID.String())
	}
	return nil
}

// Invalidate bumps the tier generation, so snapshots computed before this
// call are never written back, then drops the cached snapshot.
func (s *service) Invalidate(ctx context.Context, tierID uuid.UUID) error {
	if s.cache == nil {
		return nil
	}
	if _, err := s.cache.Bump(ctx, constants.BuildTierGenerationKey(tierID.String()), constants.TTL_TIER_GENERATION); err != nil {
		return err
	}
	return s.cache.Delete(ctx, constants.BuildTierAvailabilityKey(tierID.String()))
}

// RefreshEvent recomputes the event's seat counters from its non-cancelled tiers.
func (s *service) RefreshEvent(ctx context.Context, eventID uuid.UUID) error {
	if s.events == nil {
		return nil
	}
	list, err := s.tiers.ListByEventID(ctx, eventID)
	if err != nil {
		return err
	}

	total, available := 0, 0
	for i := range list {
		tier := &list[i]
		if tier.Status == tiers.TierStatusCancelled {
			continue
		}
		booked, err := s.ledger.BookedByBand(ctx, tier.ID)
		if err != nil {
			return fmt.Errorf("sum bookings: %w", err)
		}
		res := Compute(tier, booked)
		total += res.TotalPool
		available += res.Available
	}
	return s.events.UpdateSeatCounters(ctx, eventID, total, available)
}

// Reconcile recomputes every tier from the ledger, overwrites cached
// snapshots and event counters, and reports oversold tiers.
func (s *service) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	started := s.clock.Now()
	timer := time.Now()

	list, err := s.tiers.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	type counters struct{ total, available int }
	var (
		mu       sync.Mutex
		perEvent = make(map[uuid.UUID]*counters)
		report   = &ReconcileReport{StartedAt: started, Tiers: len(list), Anomalies: []Anomaly{}}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range list {
		tier := &list[i]
		g.Go(func() error {
			var (
				gen    int64
				genErr error
			)
			if s.cache != nil {
				gen, genErr = s.cache.Generation(gctx, constants.BuildTierGenerationKey(tier.ID.String()))
			}
			booked, err := s.ledger.BookedByBand(gctx, tier.ID)
			if err != nil {
				return fmt.Errorf("sum bookings for tier %s: %w", tier.ID, err)
			}
			res := Compute(tier, booked)
			snap := newSnapshot(tier, res, started)

			cacheFailed := false
			if s.cache != nil {
				cacheFailed = genErr != nil || s.storeSnapshot(gctx, tier.ID, gen, snap) != nil
			}

			mu.Lock()
			defer mu.Unlock()
			if cacheFailed {
				report.CacheFails++
			}
			if res.Oversold {
				report.Anomalies = append(report.Anomalies, Anomaly{
					TierID:       tier.ID.String(),
					EventID:      tier.EventID.String(),
					TotalPool:    res.TotalPool,
					Booked:       res.Booked,
					RawAvailable: res.RawAvailable,
				})
			}
			c, ok := perEvent[tier.EventID]
			if !ok {
				c = &counters{}
				perEvent[tier.EventID] = c
			}
			if tier.Status != tiers.TierStatusCancelled {
				c.total += res.TotalPool
				c.available += res.Available
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(report.Anomalies, func(i, j int) bool {
		return report.Anomalies[i].TierID < report.Anomalies[j].TierID
	})

	for _, a := range report.Anomalies {
		metrics.AvailabilityAnomalies.Inc()
		s.log.LogAvailabilityAnomaly(ctx, a.TierID, a.TotalPool, a.Booked)
	}

	if s.events != nil {
		for eventID, c := range perEvent {
			if err := s.events.UpdateSeatCounters(ctx, eventID, c.total, c.available); err != nil {
				return nil, err
			}
		}
	}
	report.Events = len(perEvent)
	report.Duration = time.Since(timer)

	metrics.ReconcileDuration.Observe(report.Duration.Seconds())
	s.log.LogReconcileCompleted(ctx, report.Tiers, len(report.Anomalies), report.Duration)
	return report, nil
}

// TierChanged implements tiers.ChangeListener.
func (s *service) TierChanged(ctx context.Context, tier *tiers.TicketTier) {
	if err := s.Invalidate(ctx, tier.ID); err != nil {
		s.log.WarnContext(ctx, "availability invalidate failed", "tier_id", tier.ID.String(), "error", err.Error())
	}
	if err := s.RefreshEvent(ctx, tier.EventID); err != nil {
		s.log.WarnContext(ctx, "event counter refresh failed", "event_id", tier.EventID.String(), "error", err.Error())
	}
}
