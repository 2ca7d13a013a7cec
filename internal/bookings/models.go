package bookings

import (
	"time"

	"github.com/google/uuid"
)

// Booking is one ledger entry: a quantity of tickets drawn from a single
// price band of a tier. Cancelled rows are kept and simply stop counting
// against availability.
type Booking struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EventID       uuid.UUID `gorm:"type:uuid;not null;index" json:"event_id"`
	TierID        uuid.UUID `gorm:"type:uuid;not null;index:idx_bookings_tier_status,priority:1" json:"tier_id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	BandIndex     int       `gorm:"not null;default:0;check:band_index >= 0" json:"band_index"`
	BookingNumber string    `gorm:"type:varchar(16);uniqueIndex;not null" json:"booking_number"`
	Quantity      int       `gorm:"not null;check:quantity >= 1" json:"quantity"`
	UnitPrice     int64     `gorm:"not null;check:unit_price >= 0" json:"unit_price"`
	TotalAmount   int64     `gorm:"not null;check:total_amount >= 0" json:"total_amount"`
	Status        Status    `gorm:"type:varchar(20);not null;default:'pending';index:idx_bookings_tier_status,priority:2;check:status IN ('pending','confirmed','cancelled','completed')" json:"status"`
	Notes         string    `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

func (Booking) TableName() string {
	return "bookings"
}

// stamp records when the booking entered status s
func (b *Booking) stamp(s Status, at time.Time) {
	b.Status = s
	b.UpdatedAt = at
	switch s {
	case StatusConfirmed:
		b.ConfirmedAt = &at
	case StatusCompleted:
		b.CompletedAt = &at
	case StatusCancelled:
		b.CancelledAt = &at
	}
}
