package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrInvalidQuantity = errors.New("quantity must be positive")

// UpsertMode makes the add-vs-replace decision explicit. Callers say what
// they mean instead of the store guessing from membership.
type UpsertMode int

const (
	UpsertAdd     UpsertMode = iota // increment existing quantity
	UpsertReplace                   // overwrite quantity
)

// CartLine is what the session cart persists: product and quantity only.
// Prices are resolved from the live product at read/checkout time.
type CartLine struct {
	ProductID string
	Quantity  int
}

// CheckoutLine is a cart line joined with the live product for display and
// validation.
type CheckoutLine struct {
	Product   *Product
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}
