package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domain "github.com/giftnest/storefront/internal/entity"
	"github.com/giftnest/storefront/internal/logging"
)

type CreateOrderInput struct {
	SessionID      string
	UserID         string
	IdempotencyKey string
	Shipping       domain.ShippingInfo
}

type CreateOrderOutput struct {
	OrderID string
	Total   decimal.Decimal
}

// CreateOrder is the checkout orchestrator: validate every line against live
// stock, then create the order header, its price-snapshotted items and the
// inventory decrements in one transaction, then clear the cart.
type CreateOrder struct {
	carts   CartStore
	catalog Catalog
	orders  OrderRepo
	idem    IdempotencyStore
}

func NewCreateOrder(carts CartStore, catalog Catalog, orders OrderRepo, idem IdempotencyStore) *CreateOrder {
	return &CreateOrder{carts: carts, catalog: catalog, orders: orders, idem: idem}
}

func (uc *CreateOrder) Execute(ctx context.Context, in CreateOrderInput) (CreateOrderOutput, error) {
	log := logging.FromCtx(ctx)

	// Fast path: idempotency recall
	if in.IdempotencyKey != "" {
		if id, ok, _ := uc.idem.Recall(ctx, in.UserID, in.IdempotencyKey); ok {
			existing, err := uc.orders.GetByID(ctx, id)
			if err != nil {
				return CreateOrderOutput{}, err
			}
			return CreateOrderOutput{OrderID: existing.ID, Total: existing.Total()}, nil
		}
	}

	lines, err := uc.carts.Lines(ctx, in.SessionID)
	if err != nil {
		return CreateOrderOutput{}, fmt.Errorf("read cart: %w", err)
	}
	if len(lines) == 0 {
		checkoutRejections.WithLabelValues("empty_cart").Inc()
		return CreateOrderOutput{}, ErrEmptyCart
	}

	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.ProductID
	}
	products, err := uc.catalog.GetProducts(ctx, ids)
	if err != nil {
		return CreateOrderOutput{}, fmt.Errorf("load products: %w", err)
	}

	// Validate every line and collect ALL violations; no partial order.
	var violations []StockViolation
	for _, l := range lines {
		p, ok := products[l.ProductID]
		if !ok {
			return CreateOrderOutput{}, fmt.Errorf("product %s no longer exists", l.ProductID)
		}
		if l.Quantity > p.Stock {
			violations = append(violations, StockViolation{
				ProductID: p.ID, Name: p.Name, Requested: l.Quantity, Available: p.Stock,
			})
		}
	}
	if len(violations) > 0 {
		checkoutRejections.WithLabelValues("insufficient_stock").Inc()
		return CreateOrderOutput{}, &InsufficientStockError{Violations: violations}
	}

	if in.IdempotencyKey != "" {
		ok, err := uc.idem.TryLock(ctx, in.UserID, in.IdempotencyKey)
		if err != nil {
			return CreateOrderOutput{}, err
		}
		if !ok {
			return CreateOrderOutput{}, ErrDuplicate
		}
	}

	order := &domain.Order{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		Shipping:  in.Shipping,
		CreatedAt: time.Now().UTC(),
	}
	for _, l := range lines {
		p := products[l.ProductID]
		order.Items = append(order.Items, domain.OrderItem{
			OrderID:   order.ID,
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price, // snapshot; later catalog price changes don't touch it
			Quantity:  l.Quantity,
		})
	}
	if err := order.Validate(); err != nil {
		return CreateOrderOutput{}, err
	}

	// All-or-nothing: header, items and stock decrements commit together or
	// not at all. A reserve losing a race surfaces as InsufficientStockError.
	if err := uc.orders.Create(ctx, order); err != nil {
		return CreateOrderOutput{}, err
	}

	if err := uc.carts.Clear(ctx, in.SessionID); err != nil {
		// order exists; a stale cart is an annoyance, not a rollback reason
		log.Warn("cart clear failed after order create", "order_id", order.ID, "error", err)
	}
	if in.IdempotencyKey != "" {
		_ = uc.idem.Remember(ctx, in.UserID, in.IdempotencyKey, order.ID)
	}

	ordersCreated.Inc()
	log.Info("order created", "order_id", order.ID, "user_id", in.UserID, "total", order.Total().StringFixed(2))
	return CreateOrderOutput{OrderID: order.ID, Total: order.Total()}, nil
}
