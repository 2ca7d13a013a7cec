package bookings

import "github.com/google/uuid"

// CreateBookingRequest asks the ledger for Quantity tickets from one price
// band of a tier.
type CreateBookingRequest struct {
	EventID   uuid.UUID `json:"event_id" binding:"required"`
	TierID    uuid.UUID `json:"tier_id" binding:"required"`
	UserID    uuid.UUID `json:"user_id" binding:"required"`
	BandIndex *int      `json:"band_index" binding:"required,gte=0"`
	Quantity  int       `json:"quantity" binding:"gte=1"`
	Notes     string    `json:"notes" binding:"max=500"`
}

type BookingListQuery struct {
	Page    int    `form:"page" json:"page" binding:"omitempty,min=1"`
	Limit   int    `form:"limit" json:"limit" binding:"omitempty,min=1,max=100"`
	EventID string `form:"event_id" json:"event_id" binding:"omitempty,uuid"`
	TierID  string `form:"tier_id" json:"tier_id" binding:"omitempty,uuid"`
	UserID  string `form:"user_id" json:"user_id" binding:"omitempty,uuid"`
	Status  string `form:"status" json:"status" binding:"omitempty,oneof=pending confirmed cancelled completed"`
}
