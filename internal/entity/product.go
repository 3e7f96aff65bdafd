package domain

import "github.com/shopspring/decimal"

// Product is read-mostly from this service's perspective: stock only ever
// decreases through the order repo's reserve step.
type Product struct {
	ID    string
	Name  string
	Price decimal.Decimal
	Stock int
}
