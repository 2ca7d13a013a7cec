package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// BookingEventType names a ledger change carried on the booking topic
type BookingEventType string

const (
	BookingEventCreated   BookingEventType = "BOOKING_CREATED"
	BookingEventConfirmed BookingEventType = "BOOKING_CONFIRMED"
	BookingEventCompleted BookingEventType = "BOOKING_COMPLETED"
	BookingEventCancelled BookingEventType = "BOOKING_CANCELLED"
)

// BookingMessage is the payload published after a booking row changes.
// Consumers only rely on TierID and EventID to refresh availability; the
// rest is informational.
type BookingMessage struct {
	Type          BookingEventType `json:"type"`
	BookingID     uuid.UUID        `json:"booking_id"`
	BookingNumber string           `json:"booking_number"`
	EventID       uuid.UUID        `json:"event_id"`
	TierID        uuid.UUID        `json:"tier_id"`
	UserID        uuid.UUID        `json:"user_id"`
	BandIndex     int              `json:"band_index"`
	Quantity      int              `json:"quantity"`
	TotalAmount   int64            `json:"total_amount"`
	Status        string           `json:"status"`
	OccurredAt    time.Time        `json:"occurred_at"`
}

func (m *BookingMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// PartitionKey keeps every message for a tier on one partition so consumers
// see them in commit order.
func (m *BookingMessage) PartitionKey() string {
	return m.TierID.String()
}

func FromJSON(data []byte) (*BookingMessage, error) {
	var msg BookingMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
