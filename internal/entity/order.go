package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidShipping = errors.New("invalid shipping info")
	ErrNoItems         = errors.New("order has no items")
)

// ShippingInfo is captured on the order header at checkout time.
type ShippingInfo struct {
	FirstName  string
	LastName   string
	Email      string
	Address    string
	PostalCode string
	City       string
}

// Order is the durable record of one checkout attempt. Once Paid flips to
// true it never goes back; ProviderReference holds the settlement id
// regardless of which provider settled it.
type Order struct {
	ID                string
	UserID            string
	Shipping          ShippingInfo
	Paid              bool
	Provider          string // payment method the user picked, empty until then
	PaymentIntentID   string // provider-assigned correlation id
	ProviderReference string // settlement id
	Items             []OrderItem
	CreatedAt         time.Time
}

// OrderItem snapshots the unit price at order-creation time. Later product
// price changes do not touch it.
type OrderItem struct {
	OrderID   string
	ProductID string
	Name      string
	Price     decimal.Decimal
	Quantity  int
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Total is the amount charged to the payment provider: the sum of the item
// line totals, nothing else.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.LineTotal())
	}
	return total
}

func (o *Order) Validate() error {
	s := o.Shipping
	if s.FirstName == "" || s.Email == "" || s.Address == "" || s.City == "" {
		return ErrInvalidShipping
	}
	if len(o.Items) == 0 {
		return ErrNoItems
	}
	return nil
}
