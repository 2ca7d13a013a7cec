package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/dbtx"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Revenue counts confirmed and completed bookings; pending amounts are
// reported separately and cancelled rows are excluded from both.
type Repository interface {
	TierAggregates(ctx context.Context, eventID uuid.UUID) (map[uuid.UUID]TierAggregate, error)
	DailyBookingStats(ctx context.Context, since time.Time) ([]DailyBookingStats, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) TierAggregates(ctx context.Context, eventID uuid.UUID) (map[uuid.UUID]TierAggregate, error) {
	var rows []TierAggregate
	err := dbtx.Conn(ctx, r.db).Raw(`
		SELECT
			tier_id,
			COALESCE(SUM(quantity) FILTER (WHERE status <> 'cancelled'), 0) AS tickets_sold,
			COALESCE(SUM(total_amount) FILTER (WHERE status IN ('confirmed', 'completed')), 0) AS revenue,
			COALESCE(SUM(total_amount) FILTER (WHERE status = 'pending'), 0) AS pending_amount,
			COUNT(*) AS bookings,
			COUNT(*) FILTER (WHERE status = 'cancelled') AS cancelled
		FROM bookings
		WHERE event_id = ?
		GROUP BY tier_id
	`, eventID).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate tier sales: %w", err)
	}

	out := make(map[uuid.UUID]TierAggregate, len(rows))
	for _, row := range rows {
		out[row.TierID] = row
	}
	return out, nil
}

func (r *repository) DailyBookingStats(ctx context.Context, since time.Time) ([]DailyBookingStats, error) {
	var stats []DailyBookingStats
	err := dbtx.Conn(ctx, r.db).Raw(`
		SELECT
			DATE(created_at) AS date,
			COUNT(*) AS total_bookings,
			COUNT(*) FILTER (WHERE status <> 'cancelled') AS active_bookings,
			COUNT(*) FILTER (WHERE status = 'cancelled') AS cancelled_bookings,
			COALESCE(SUM(quantity) FILTER (WHERE status <> 'cancelled'), 0) AS tickets_sold,
			COALESCE(SUM(total_amount) FILTER (WHERE status IN ('confirmed', 'completed')), 0) AS revenue
		FROM bookings
		WHERE created_at >= ?
		GROUP BY DATE(created_at)
		ORDER BY date DESC
	`, since).Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get daily booking stats: %w", err)
	}
	return stats, nil
}
