package tiers

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/apperr"

	"github.com/google/uuid"
)

// PriceBand is one price point of a tier and the number of tickets sold at it.
// Prices are in minor currency units.
type PriceBand struct {
	Price    int64 `json:"price" binding:"gte=0"`
	Quantity int   `json:"quantity" binding:"gte=0"`
}

// Bands is stored as a single JSONB column.
type Bands []PriceBand

func (b Bands) Value() (driver.Value, error) {
	if b == nil {
		b = Bands{}
	}
	data, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (b *Bands) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*b = Bands{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("bands: unsupported scan type %T", src)
	}
	return json.Unmarshal(data, b)
}

// BandsFromArrays pairs the legacy parallel price and quantity arrays.
func BandsFromArrays(prices []int64, quantities []int) (Bands, error) {
	if len(prices) != len(quantities) {
		return nil, apperr.Validation("quantities",
			"expected %d quantities to match prices, got %d", len(prices), len(quantities))
	}
	bands := make(Bands, len(prices))
	for i := range prices {
		bands[i] = PriceBand{Price: prices[i], Quantity: quantities[i]}
	}
	return bands, nil
}

type TicketTier struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	EventID     uuid.UUID  `json:"event_id" gorm:"type:uuid;not null;index"`
	Name        string     `json:"name" gorm:"not null;size:255"`
	Color       string     `json:"color" gorm:"size:32"`
	Bands       Bands      `json:"bands" gorm:"type:jsonb;not null"`
	Status      TierStatus `json:"status" gorm:"type:varchar(20);not null;default:'preparing'"`
	Description string     `json:"description" gorm:"type:text"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (TicketTier) TableName() string {
	return "ticket_tiers"
}

// MinPrice is the lowest band price, 0 for a tier without bands.
func (t *TicketTier) MinPrice() int64 {
	if len(t.Bands) == 0 {
		return 0
	}
	lowest := t.Bands[0].Price
	for _, b := range t.Bands[1:] {
		if b.Price < lowest {
			lowest = b.Price
		}
	}
	return lowest
}

// MaxPrice is the highest band price, 0 for a tier without bands.
func (t *TicketTier) MaxPrice() int64 {
	var highest int64
	for _, b := range t.Bands {
		if b.Price > highest {
			highest = b.Price
		}
	}
	return highest
}

// TotalPool is the number of tickets across all bands.
func (t *TicketTier) TotalPool() int {
	total := 0
	for _, b := range t.Bands {
		total += b.Quantity
	}
	return total
}

func (t *TicketTier) Prices() []int64 {
	prices := make([]int64, len(t.Bands))
	for i, b := range t.Bands {
		prices[i] = b.Price
	}
	return prices
}

func (t *TicketTier) Quantities() []int {
	quantities := make([]int, len(t.Bands))
	for i, b := range t.Bands {
		quantities[i] = b.Quantity
	}
	return quantities
}

// Band returns the band at index i.
func (t *TicketTier) Band(i int) (PriceBand, bool) {
	if i < 0 || i >= len(t.Bands) {
		return PriceBand{}, false
	}
	return t.Bands[i], true
}
