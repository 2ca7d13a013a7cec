package tiers

import (
	"context"
	"errors"
	"fmt"

	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/apperr"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/dbtx"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// WithTx runs fn in one transaction; calls made with the ctx passed to
	// fn join it, including the booking repository's.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	Create(ctx context.Context, tier *TicketTier) error
	GetByID(ctx context.Context, id uuid.UUID) (*TicketTier, error)
	// GetByIDForUpdate takes the same row lock bookings take before selling.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*TicketTier, error)
	ListByEventID(ctx context.Context, eventID uuid.UUID) ([]TicketTier, error)
	ListAll(ctx context.Context) ([]TicketTier, error)
	Update(ctx context.Context, tier *TicketTier) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, tier *TicketTier) error {
	if err := dbtx.Conn(ctx, r.db).Create(tier).Error; err != nil {
		return fmt.Errorf("create tier: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*TicketTier, error) {
	var tier TicketTier
	if err := dbtx.Conn(ctx, r.db).Where("id = ?", id).First(&tier).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("tier_id", "tier %s not found", id)
		}
		return nil, fmt.Errorf("get tier: %w", err)
	}
	return &tier, nil
}

func (r *repository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return dbtx.WithTx(ctx, r.db, fn)
}

func (r *repository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*TicketTier, error) {
	var tier TicketTier
	err := dbtx.Conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&tier).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("tier_id", "tier %s not found", id)
		}
		return nil, fmt.Errorf("lock tier: %w", err)
	}
	return &tier, nil
}

func (r *repository) ListByEventID(ctx context.Context, eventID uuid.UUID) ([]TicketTier, error) {
	var tiers []TicketTier
	err := dbtx.Conn(ctx, r.db).
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&tiers).Error
	if err != nil {
		return nil, fmt.Errorf("list tiers: %w", err)
	}
	return tiers, nil
}

func (r *repository) ListAll(ctx context.Context) ([]TicketTier, error) {
	var tiers []TicketTier
	if err := dbtx.Conn(ctx, r.db).Order("event_id, created_at").Find(&tiers).Error; err != nil {
		return nil, fmt.Errorf("list all tiers: %w", err)
	}
	return tiers, nil
}

func (r *repository) Update(ctx context.Context, tier *TicketTier) error {
	if err := dbtx.Conn(ctx, r.db).Save(tier).Error; err != nil {
		return fmt.Errorf("update tier: %w", err)
	}
	return nil
}
