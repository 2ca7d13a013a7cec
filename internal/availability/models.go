package availability

import (
	"time"

	"github.com/NguyenZak/longhai-ticket-sub001/internal/tiers"
)

// Snapshot is the read-side view of one tier. It may come from the cache and
// must never be used to admit a booking.
type Snapshot struct {
	TierID      string             `json:"tier_id"`
	EventID     string             `json:"event_id"`
	Status      tiers.TierStatus   `json:"status"`
	TotalPool   int                `json:"total_pool"`
	Booked      int                `json:"booked"`
	Available   int                `json:"available"`
	Bands       []BandAvailability `json:"bands"`
	IsAvailable bool               `json:"is_available"`
	ComputedAt  time.Time          `json:"computed_at"`
}

type Anomaly struct {
	TierID       string `json:"tier_id"`
	EventID      string `json:"event_id"`
	TotalPool    int    `json:"total_pool"`
	Booked       int    `json:"booked"`
	RawAvailable int    `json:"raw_available"`
}

type ReconcileReport struct {
	Tiers      int           `json:"tiers"`
	Events     int           `json:"events"`
	Anomalies  []Anomaly     `json:"anomalies"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	CacheFails int           `json:"cache_failures"`
}

func newSnapshot(tier *tiers.TicketTier, res Result, at time.Time) *Snapshot {
	return &Snapshot{
		TierID:      tier.ID.String(),
		EventID:     tier.EventID.String(),
		Status:      tier.Status,
		TotalPool:   res.TotalPool,
		Booked:      res.Booked,
		Available:   res.Available,
		Bands:       res.Bands,
		IsAvailable: tier.Status.IsSellable() && res.Available > 0,
		ComputedAt:  at,
	}
}
