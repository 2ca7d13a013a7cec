package tiers

// CreateTierRequest accepts either bands or the legacy prices/quantities arrays.
type CreateTierRequest struct {
	Name        string      `json:"name" binding:"required,max=255"`
	Color       string      `json:"color" binding:"max=32"`
	Bands       []PriceBand `json:"bands" binding:"omitempty,dive"`
	Prices      []int64     `json:"prices" binding:"omitempty,dive,gte=0"`
	Quantities  []int       `json:"quantities" binding:"omitempty,dive,gte=0"`
	Status      string      `json:"status" binding:"omitempty,oneof=preparing active inactive sold_out booked cancelled"`
	Description string      `json:"description" binding:"max=2000"`
}

// UpdateTierRequest is a partial patch. A nil slice leaves the bands untouched;
// supplied bands replace the stored ones as a whole.
type UpdateTierRequest struct {
	Name        *string     `json:"name" binding:"omitempty,min=1,max=255"`
	Color       *string     `json:"color" binding:"omitempty,max=32"`
	Bands       []PriceBand `json:"bands" binding:"omitempty,dive"`
	Prices      []int64     `json:"prices" binding:"omitempty,dive,gte=0"`
	Quantities  []int       `json:"quantities" binding:"omitempty,dive,gte=0"`
	Status      *string     `json:"status" binding:"omitempty,oneof=preparing active inactive sold_out booked cancelled"`
	Description *string     `json:"description" binding:"omitempty,max=2000"`
}
