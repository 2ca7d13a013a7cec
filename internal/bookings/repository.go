package bookings

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/apperr"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/dbtx"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/tiers"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrDuplicateBookingNumber is returned by Create when the number is already taken.
var ErrDuplicateBookingNumber = errors.New("booking number already exists")

type Repository interface {
	// WithTx runs fn in one transaction; repository calls made with the
	// ctx passed to fn join it.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	// LockTier reads the tier row FOR UPDATE, serialising bookings per tier.
	LockTier(ctx context.Context, tierID uuid.UUID) (*tiers.TicketTier, error)
	BookedByBand(ctx context.Context, tierID uuid.UUID) (map[int]int, error)
	BookingNumberExists(ctx context.Context, number string) (bool, error)
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Booking, error)
	UpdateStatus(ctx context.Context, booking *Booking) error
	List(ctx context.Context, query BookingListQuery) ([]Booking, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return dbtx.WithTx(ctx, r.db, fn)
}

func (r *repository) LockTier(ctx context.Context, tierID uuid.UUID) (*tiers.TicketTier, error) {
	var tier tiers.TicketTier
	err := dbtx.Conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", tierID).
		First(&tier).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("tier_id", "tier %s not found", tierID)
		}
		return nil, fmt.Errorf("lock tier: %w", err)
	}
	return &tier, nil
}

func (r *repository) BookedByBand(ctx context.Context, tierID uuid.UUID) (map[int]int, error) {
	var rows []struct {
		BandIndex int
		Booked    int
	}
	err := dbtx.Conn(ctx, r.db).
		Model(&Booking{}).
		Select("band_index, COALESCE(SUM(quantity), 0) AS booked").
		Where("tier_id = ? AND status <> ?", tierID, StatusCancelled).
		Group("band_index").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("sum booked quantity: %w", err)
	}

	booked := make(map[int]int, len(rows))
	for _, row := range rows {
		booked[row.BandIndex] = row.Booked
	}
	return booked, nil
}

func (r *repository) BookingNumberExists(ctx context.Context, number string) (bool, error) {
	var count int64
	err := dbtx.Conn(ctx, r.db).
		Model(&Booking{}).
		Where("booking_number = ?", number).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check booking number: %w", err)
	}
	return count > 0, nil
}

// Create inserts inside a savepoint so a duplicate number does not abort the
// surrounding transaction and the caller can retry with a fresh number.
func (r *repository) Create(ctx context.Context, booking *Booking) error {
	err := dbtx.Conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		return tx.Create(booking).Error
	})
	if err != nil {
		if dbtx.IsUniqueViolation(err) {
			return ErrDuplicateBookingNumber
		}
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return r.get(dbtx.Conn(ctx, r.db), id)
}

func (r *repository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return r.get(dbtx.Conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *repository) get(q *gorm.DB, id uuid.UUID) (*Booking, error) {
	var booking Booking
	if err := q.Where("id = ?", id).First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("booking_id", "booking %s not found", id)
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return &booking, nil
}

func (r *repository) UpdateStatus(ctx context.Context, booking *Booking) error {
	updates := map[string]interface{}{
		"status":       booking.Status,
		"updated_at":   booking.UpdatedAt,
		"confirmed_at": booking.ConfirmedAt,
		"completed_at": booking.CompletedAt,
		"cancelled_at": booking.CancelledAt,
	}
	err := dbtx.Conn(ctx, r.db).
		Model(&Booking{}).
		Where("id = ?", booking.ID).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	return nil
}

func (r *repository) List(ctx context.Context, query BookingListQuery) ([]Booking, int64, error) {
	var bookings []Booking
	var totalCount int64

	baseQuery := r.applyFilters(dbtx.Conn(ctx, r.db).Model(&Booking{}), query)

	if err := baseQuery.Count(&totalCount).Error; err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}

	offset := (query.Page - 1) * query.Limit
	err := baseQuery.
		Order("created_at DESC").
		Offset(offset).
		Limit(query.Limit).
		Find(&bookings).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, totalCount, nil
}

// applyFilters applies query filters to the GORM query
func (r *repository) applyFilters(query *gorm.DB, filters BookingListQuery) *gorm.DB {
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if id, err := uuid.Parse(filters.EventID); err == nil {
		query = query.Where("event_id = ?", id)
	}
	if id, err := uuid.Parse(filters.TierID); err == nil {
		query = query.Where("tier_id = ?", id)
	}
	if id, err := uuid.Parse(filters.UserID); err == nil {
		query = query.Where("user_id = ?", id)
	}
	return query
}

// CalculateTotalPages returns the page count for totalCount rows
func CalculateTotalPages(totalCount int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(totalCount) / float64(limit)))
}
