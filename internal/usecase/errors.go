package usecase

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDuplicate           = errors.New("duplicate idempotency key")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderAlreadyPaid    = errors.New("order already paid")
	ErrProviderUnavailable = errors.New("payment provider unavailable")
)

// StockViolation names one cart line that cannot be fulfilled, with the
// quantity actually available so the user gets a precise message.
type StockViolation struct {
	ProductID string
	Name      string
	Requested int
	Available int
}

func (v StockViolation) String() string {
	return fmt.Sprintf("%s: only %d available, %d requested", v.Name, v.Available, v.Requested)
}

// InsufficientStockError carries every violated line, not just the first:
// the whole checkout fails as one unit and the user fixes the cart once.
type InsufficientStockError struct {
	Violations []StockViolation
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}
