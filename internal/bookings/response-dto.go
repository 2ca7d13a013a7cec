package bookings

import (
	"time"

	"github.com/NguyenZak/longhai-ticket-sub001/pkg/money"

	"github.com/google/uuid"
)

type BookingResponse struct {
	ID            uuid.UUID  `json:"id"`
	BookingNumber string     `json:"booking_number"`
	EventID       uuid.UUID  `json:"event_id"`
	TierID        uuid.UUID  `json:"tier_id"`
	UserID        uuid.UUID  `json:"user_id"`
	BandIndex     int        `json:"band_index"`
	Quantity      int        `json:"quantity"`
	UnitPrice     int64      `json:"unit_price"`
	TotalAmount   int64      `json:"total_amount"`
	TotalDisplay  string     `json:"total_display"`
	Currency      string     `json:"currency"`
	Status        Status     `json:"status"`
	Notes         string     `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	ConfirmedAt   *time.Time `json:"confirmed_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
}

type PaginatedBookings struct {
	Bookings   []BookingResponse `json:"bookings"`
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

// Currency describes how amounts are rendered for clients
type Currency struct {
	Code     string
	Exponent int32
}

func (b *Booking) ToResponse(cur Currency) BookingResponse {
	return BookingResponse{
		ID:            b.ID,
		BookingNumber: b.BookingNumber,
		EventID:       b.EventID,
		TierID:        b.TierID,
		UserID:        b.UserID,
		BandIndex:     b.BandIndex,
		Quantity:      b.Quantity,
		UnitPrice:     b.UnitPrice,
		TotalAmount:   b.TotalAmount,
		TotalDisplay:  money.Display(b.TotalAmount, cur.Exponent),
		Currency:      cur.Code,
		Status:        b.Status,
		Notes:         b.Notes,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
		ConfirmedAt:   b.ConfirmedAt,
		CompletedAt:   b.CompletedAt,
		CancelledAt:   b.CancelledAt,
	}
}
