package bookings

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"time"
)

const (
	bookingNumberPrefix   = "BK"
	bookingNumberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	bookingNumberSuffix   = 6
)

// NewBookingNumber formats BK + YYYYMMDD + six characters from [A-Z0-9]
// drawn from entropy.
func NewBookingNumber(now time.Time, entropy io.Reader) (string, error) {
	if entropy == nil {
		entropy = rand.Reader
	}

	alphabetLen := big.NewInt(int64(len(bookingNumberAlphabet)))
	suffix := make([]byte, bookingNumberSuffix)
	for i := range suffix {
		n, err := rand.Int(entropy, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("read booking number entropy: %w", err)
		}
		suffix[i] = bookingNumberAlphabet[n.Int64()]
	}

	return bookingNumberPrefix + now.UTC().Format("20060102") + string(suffix), nil
}
