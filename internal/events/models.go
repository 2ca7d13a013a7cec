package events

import (
	"time"

	"github.com/google/uuid"
)

// Event owns ticket tiers. TotalSeats and AvailableSeats are a derived cache
// refreshed from the tiers and the booking ledger; they are never authoritative.
type Event struct {
	ID             uuid.UUID   `json:"id" gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name           string      `json:"name" gorm:"not null;size:255"`
	Description    string      `json:"description" gorm:"type:text"`
	Venue          string      `json:"venue" gorm:"not null;size:255"`
	StartsAt       time.Time   `json:"starts_at" gorm:"not null;index"`
	Status         EventStatus `json:"status" gorm:"type:varchar(20);not null;default:'draft'"`
	TotalSeats     int         `json:"total_seats" gorm:"not null;default:0;check:total_seats >= 0"`
	AvailableSeats int         `json:"available_seats" gorm:"not null;default:0;check:available_seats >= 0"`
	CreatedAt      time.Time   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time   `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Event) TableName() string {
	return "events"
}

type EventResponse struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	Venue          string      `json:"venue"`
	StartsAt       time.Time   `json:"starts_at"`
	Status         EventStatus `json:"status"`
	TotalSeats     int         `json:"total_seats"`
	AvailableSeats int         `json:"available_seats"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

type CreateEventRequest struct {
	Name        string    `json:"name" binding:"required,min=3,max=255"`
	Description string    `json:"description" binding:"max=2000"`
	Venue       string    `json:"venue" binding:"required,min=3,max=255"`
	StartsAt    time.Time `json:"starts_at" binding:"required"`
	Status      string    `json:"status" binding:"omitempty,oneof=draft published cancelled completed"`
}

type EventListQuery struct {
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Search string `form:"search"`
	Status string `form:"status" binding:"omitempty,oneof=draft published cancelled completed"`
}

type PaginatedEvents struct {
	Events     []EventResponse `json:"events"`
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

func (e *Event) ToResponse() EventResponse {
	return EventResponse{
		ID:             e.ID.String(),
		Name:           e.Name,
		Description:    e.Description,
		Venue:          e.Venue,
		StartsAt:       e.StartsAt,
		Status:         e.Status,
		TotalSeats:     e.TotalSeats,
		AvailableSeats: e.AvailableSeats,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}
