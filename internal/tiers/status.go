package tiers

type TierStatus string

const (
	TierStatusPreparing TierStatus = "preparing"
	TierStatusActive    TierStatus = "active"
	TierStatusInactive  TierStatus = "inactive"
	TierStatusSoldOut   TierStatus = "sold_out"
	TierStatusBooked    TierStatus = "booked"
	TierStatusCancelled TierStatus = "cancelled"
)

func (s TierStatus) IsValid() bool {
	switch s {
	case TierStatusPreparing, TierStatusActive, TierStatusInactive,
		TierStatusSoldOut, TierStatusBooked, TierStatusCancelled:
		return true
	}
	return false
}

// IsSellable reports whether bookings may be taken against the tier.
func (s TierStatus) IsSellable() bool {
	return s == TierStatusActive
}
