package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrFractionalAmount = errors.New("amount has sub-minor-unit precision")

// MinorUnits converts a decimal amount to the provider's integer minor unit
// (cents, paise). The conversion must be exact: an amount like 10.005 is a
// data error, never something to round.
func MinorUnits(d decimal.Decimal) (int64, error) {
	m := d.Mul(decimal.NewFromInt(100))
	if !m.IsInteger() {
		return 0, fmt.Errorf("%w: %s", ErrFractionalAmount, d.String())
	}
	return m.IntPart(), nil
}
