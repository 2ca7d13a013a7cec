package analytics

import (
	"time"

	"github.com/google/uuid"
)

// EventSales summarises the ledger for one event, tier by tier.
type EventSales struct {
	EventID          uuid.UUID   `json:"event_id"`
	EventName        string      `json:"event_name"`
	TotalPool        int         `json:"total_pool"`
	TicketsSold      int         `json:"tickets_sold"`
	Revenue          int64       `json:"revenue"`
	PendingAmount    int64       `json:"pending_amount"`
	CancellationRate float64     `json:"cancellation_rate"`
	Utilization      float64     `json:"utilization"`
	Tiers            []TierSales `json:"tiers"`
	GeneratedAt      time.Time   `json:"generated_at"`
}

type TierSales struct {
	TierID        uuid.UUID `json:"tier_id"`
	Name          string    `json:"name"`
	Status        string    `json:"status"`
	TotalPool     int       `json:"total_pool"`
	TicketsSold   int       `json:"tickets_sold"`
	Revenue       int64     `json:"revenue"`
	PendingAmount int64     `json:"pending_amount"`
	Bookings      int       `json:"bookings"`
	Cancelled     int       `json:"cancelled"`
	Utilization   float64   `json:"utilization"`
}

// TierAggregate is one row of the per-tier ledger rollup.
type TierAggregate struct {
	TierID        uuid.UUID
	TicketsSold   int
	Revenue       int64
	PendingAmount int64
	Bookings      int
	Cancelled     int
}

type DailyBookingStats struct {
	Date              time.Time `json:"date"`
	TotalBookings     int       `json:"total_bookings"`
	ActiveBookings    int       `json:"active_bookings"`
	CancelledBookings int       `json:"cancelled_bookings"`
	TicketsSold       int       `json:"tickets_sold"`
	Revenue           int64     `json:"revenue"`
}
