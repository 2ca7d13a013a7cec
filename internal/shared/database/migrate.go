package database

import (
	"github.com/NguyenZak/longhai-ticket-sub001/internal/bookings"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/events"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/tiers"

	"gorm.io/gorm"
)

// Migrate creates the ledger tables and their constraints
func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return err
	}
	if err := db.AutoMigrate(
		&events.Event{},
		&tiers.TicketTier{},
		&bookings.Booking{},
	); err != nil {
		return err
	}
	return MigrateConstraints(db)
}
