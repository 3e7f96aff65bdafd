package usecase

import (
	"context"

	domain "github.com/giftnest/storefront/internal/entity"
)

type OrderRepo interface {
	// Create persists the order header, its items and the stock decrements in
	// one transaction. A reserve losing a race returns *InsufficientStockError
	// and nothing is persisted.
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// GetByIntentID resolves the provider correlation id set at initiation.
	GetByIntentID(ctx context.Context, intentID string) (*domain.Order, error)
	SetPaymentIntent(ctx context.Context, orderID, provider, intentID string) error
	// MarkPaid is the guarded paid=false -> true transition. Returns false
	// when another caller already won; that is a duplicate, not an error.
	MarkPaid(ctx context.Context, orderID, reference string) (bool, error)
}

type Catalog interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	GetProducts(ctx context.Context, ids []string) (map[string]*domain.Product, error)
}

type CartStore interface {
	Lines(ctx context.Context, sessionID string) ([]domain.CartLine, error)
	Upsert(ctx context.Context, sessionID, productID string, quantity int, mode domain.UpsertMode) error
	Remove(ctx context.Context, sessionID, productID string) error
	Clear(ctx context.Context, sessionID string) error
}

type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}

// Notifier is fire-and-forget from the reconciler's perspective: a failure
// is logged by the caller and never affects the reconciliation result.
type Notifier interface {
	PaymentConfirmed(ctx context.Context, msg PaymentConfirmedMsg) error
}
