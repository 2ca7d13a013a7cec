package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultCreated      = "created"
	ResultInsufficient = "insufficient_inventory"
	ResultRejected     = "rejected"
	ResultConflict     = "conflict"
	ResultError        = "error"

	CacheHit        = "hit"
	CacheMiss       = "miss"
	CacheError      = "error"
	CacheSuperseded = "superseded"
)

var (
	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_bookings_total",
			Help: "Booking attempts by outcome",
		},
		[]string{"result"},
	)

	BookingNumberRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ticket_booking_number_retries_total",
			Help: "Booking number regenerations caused by collisions",
		},
	)

	BookingTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_booking_transitions_total",
			Help: "Booking status transitions",
		},
		[]string{"to"},
	)

	AvailabilityAnomalies = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ticket_availability_anomalies_total",
			Help: "Tiers observed with more booked tickets than their pool",
		},
	)

	AvailabilityCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_availability_cache_total",
			Help: "Availability snapshot cache lookups",
		},
		[]string{"result"},
	)

	ReconcileDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ticket_reconcile_duration_seconds",
			Help:    "Duration of availability reconciliation runs",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	TierLockWait = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ticket_tier_lock_wait_seconds",
			Help:    "Time spent acquiring the distributed tier lock",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)
)
