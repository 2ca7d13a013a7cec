package database

import (
	"fmt"

	"gorm.io/gorm"
)

type constraint struct {
	table string
	name  string
	def   string
}

// Postgres has no ADD CONSTRAINT IF NOT EXISTS, so each one is guarded by a
// pg_constraint lookup.
var ledgerConstraints = []constraint{
	{"ticket_tiers", "fk_ticket_tiers_event", "FOREIGN KEY (event_id) REFERENCES events(id)"},
	{"ticket_tiers", "chk_ticket_tiers_bands_array", "CHECK (jsonb_typeof(bands) = 'array')"},
	{"bookings", "fk_bookings_tier", "FOREIGN KEY (tier_id) REFERENCES ticket_tiers(id)"},
	{"bookings", "fk_bookings_event", "FOREIGN KEY (event_id) REFERENCES events(id)"},
}

// MigrateConstraints adds the constraints and indexes AutoMigrate cannot express
func MigrateConstraints(db *gorm.DB) error {
	for _, c := range ledgerConstraints {
		stmt := fmt.Sprintf(`
			DO $$
			BEGIN
				IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%s') THEN
					ALTER TABLE %s ADD CONSTRAINT %s %s;
				END IF;
			END $$;`, c.name, c.table, c.name, c.def)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("add constraint %s: %w", c.name, err)
		}
	}

	// Serves the per-band SUM taken under the tier lock on every purchase.
	err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_bookings_active_tier_band
		ON bookings (tier_id, band_index)
		INCLUDE (quantity)
		WHERE status <> 'cancelled';
	`).Error
	if err != nil {
		return fmt.Errorf("create active booking index: %w", err)
	}

	return nil
}
