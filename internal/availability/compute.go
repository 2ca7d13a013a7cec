package availability

import "github.com/NguyenZak/longhai-ticket-sub001/internal/tiers"

type BandAvailability struct {
	Index     int   `json:"index"`
	Price     int64 `json:"price"`
	Quantity  int   `json:"quantity"`
	Booked    int   `json:"booked"`
	Available int   `json:"available"`
}

// Result is availability derived from one read of the ledger.
type Result struct {
	TotalPool int
	Booked    int
	// RawAvailable is TotalPool - Booked before clamping.
	RawAvailable int
	Available    int
	Bands        []BandAvailability
	Oversold     bool
}

// Compute derives tier and band availability from the quantities booked per
// band by non-cancelled bookings. Negative values clamp to zero and set Oversold.
// Bookings on a band index the tier no longer has still count against the tier.
func Compute(tier *tiers.TicketTier, bookedByBand map[int]int) Result {
	res := Result{
		TotalPool: tier.TotalPool(),
		Bands:     make([]BandAvailability, len(tier.Bands)),
	}

	for _, qty := range bookedByBand {
		res.Booked += qty
	}

	for i, band := range tier.Bands {
		booked := bookedByBand[i]
		available := band.Quantity - booked
		if available < 0 {
			res.Oversold = true
			available = 0
		}
		res.Bands[i] = BandAvailability{
			Index:     i,
			Price:     band.Price,
			Quantity:  band.Quantity,
			Booked:    booked,
			Available: available,
		}
	}

	res.RawAvailable = res.TotalPool - res.Booked
	res.Available = res.RawAvailable
	if res.Available < 0 {
		res.Oversold = true
		res.Available = 0
	}
	return res
}
