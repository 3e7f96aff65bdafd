package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	domain "github.com/giftnest/storefront/internal/entity"
)

// Cart joins the session cart with the live catalog: stored lines carry only
// product and quantity, prices are always resolved fresh.
type Cart struct {
	carts   CartStore
	catalog Catalog
}

func NewCart(carts CartStore, catalog Catalog) *Cart {
	return &Cart{carts: carts, catalog: catalog}
}

// View returns display lines with live unit prices and the running total.
func (uc *Cart) View(ctx context.Context, sessionID string) ([]domain.CheckoutLine, decimal.Decimal, error) {
	lines, err := uc.carts.Lines(ctx, sessionID)
	if err != nil {
		return nil, decimal.Zero, err
	}

	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.ProductID
	}
	products, err := uc.catalog.GetProducts(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, err
	}

	out := make([]domain.CheckoutLine, 0, len(lines))
	total := decimal.Zero
	for _, l := range lines {
		p, ok := products[l.ProductID]
		if !ok {
			// product removed from the catalog; drop the stale line
			_ = uc.carts.Remove(ctx, sessionID, l.ProductID)
			continue
		}
		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		out = append(out, domain.CheckoutLine{
			Product:   p,
			Quantity:  l.Quantity,
			UnitPrice: p.Price,
			LineTotal: lineTotal,
		})
		total = total.Add(lineTotal)
	}
	return out, total, nil
}

// Upsert adds to or replaces a line's quantity; the mode comes from the
// caller, never from sniffing cart membership. Requested quantity is checked
// against live stock so the user hears about shortages before checkout.
func (uc *Cart) Upsert(ctx context.Context, sessionID, productID string, quantity int, mode domain.UpsertMode) error {
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	p, err := uc.catalog.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	if quantity > p.Stock {
		return &InsufficientStockError{Violations: []StockViolation{{
			ProductID: p.ID, Name: p.Name, Requested: quantity, Available: p.Stock,
		}}}
	}
	if err := uc.carts.Upsert(ctx, sessionID, productID, quantity, mode); err != nil {
		return fmt.Errorf("cart upsert: %w", err)
	}
	return nil
}

func (uc *Cart) Remove(ctx context.Context, sessionID, productID string) error {
	return uc.carts.Remove(ctx, sessionID, productID)
}
