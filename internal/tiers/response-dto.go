package tiers

import "time"

type TierResponse struct {
	ID          string      `json:"id"`
	EventID     string      `json:"event_id"`
	Name        string      `json:"name"`
	Color       string      `json:"color,omitempty"`
	Bands       []PriceBand `json:"bands"`
	Prices      []int64     `json:"prices"`
	Quantities  []int       `json:"quantities"`
	MinPrice    int64       `json:"min_price"`
	MaxPrice    int64       `json:"max_price"`
	TotalPool   int         `json:"total_pool"`
	Status      TierStatus  `json:"status"`
	Description string      `json:"description,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func (t *TicketTier) ToResponse() TierResponse {
	bands := make([]PriceBand, len(t.Bands))
	copy(bands, t.Bands)
	return TierResponse{
		ID:          t.ID.String(),
		EventID:     t.EventID.String(),
		Name:        t.Name,
		Color:       t.Color,
		Bands:       bands,
		Prices:      t.Prices(),
		Quantities:  t.Quantities(),
		MinPrice:    t.MinPrice(),
		MaxPrice:    t.MaxPrice(),
		TotalPool:   t.TotalPool(),
		Status:      t.Status,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
