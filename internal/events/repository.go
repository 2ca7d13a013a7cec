package events

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/apperr"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/dbtx"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)
	GetAll(ctx context.Context, query EventListQuery) ([]Event, int64, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	UpdateSeatCounters(ctx context.Context, id uuid.UUID, total, available int) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, event *Event) error {
	if err := dbtx.Conn(ctx, r.db).Create(event).Error; err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	var event Event
	err := dbtx.Conn(ctx, r.db).Where("id = ?", id).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("event_id", "event %s not found", id)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &event, nil
}

func (r *repository) GetAll(ctx context.Context, query EventListQuery) ([]Event, int64, error) {
	var events []Event
	var totalCount int64

	db := dbtx.Conn(ctx, r.db).Model(&Event{})

	if query.Search != "" {
		searchTerm := "%" + strings.ToLower(query.Search) + "%"
		db = db.Where("LOWER(name) LIKE ? OR LOWER(venue) LIKE ?", searchTerm, searchTerm)
	}
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	offset := (query.Page - 1) * query.Limit
	err := db.Order("starts_at ASC").
		Offset(offset).
		Limit(query.Limit).
		Find(&events).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}

	return events, totalCount, nil
}

func (r *repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := dbtx.Conn(ctx, r.db).Model(&Event{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check event: %w", err)
	}
	return count > 0, nil
}

// UpdateSeatCounters overwrites the derived counters. Negative values are
// clamped so the check constraints never reject a refresh.
func (r *repository) UpdateSeatCounters(ctx context.Context, id uuid.UUID, total, available int) error {
	if total < 0 {
		total = 0
	}
	if available < 0 {
		available = 0
	}
	err := dbtx.Conn(ctx, r.db).Model(&Event{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_seats":     total,
			"available_seats": available,
		}).Error
	if err != nil {
		return fmt.Errorf("update seat counters: %w", err)
	}
	return nil
}
