// Package money does amount arithmetic on minor currency units.
package money

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

var (
	ErrNegative = errors.New("amount must not be negative")
	ErrOverflow = errors.New("amount overflows int64")
)

var maxAmount = decimal.NewFromInt(math.MaxInt64)

// Total returns unitPrice * quantity, refusing results that do not fit int64.
func Total(unitPrice int64, quantity int) (int64, error) {
	if unitPrice < 0 || quantity < 0 {
		return 0, ErrNegative
	}
	total := decimal.NewFromInt(unitPrice).Mul(decimal.NewFromInt(int64(quantity)))
	if total.GreaterThan(maxAmount) {
		return 0, ErrOverflow
	}
	return total.IntPart(), nil
}

// Display renders an amount in major units, e.g. Display(12345, 2) == "123.45".
func Display(amount int64, exponent int32) string {
	return decimal.New(amount, -exponent).StringFixed(exponent)
}
