package usecase

import (
	"context"
	"fmt"

	domain "github.com/giftnest/storefront/internal/entity"
	"github.com/giftnest/storefront/internal/logging"
	"github.com/giftnest/storefront/internal/payment"
)

type StartPaymentInput struct {
	OrderID string
	UserID  string
	Method  string
}

// StartPayment picks a provider from the enabled set and initiates a charge
// for an order the caller owns. The provider's correlation id, when one is
// issued, is persisted on the order before the session is returned.
type StartPayment struct {
	orders    OrderRepo
	providers *payment.Registry
}

func NewStartPayment(orders OrderRepo, providers *payment.Registry) *StartPayment {
	return &StartPayment{orders: orders, providers: providers}
}

// Methods lists the enabled providers for the selection page. An empty set is
// an operational error, not an empty page.
func (uc *StartPayment) Methods(ctx context.Context, orderID, userID string) ([]payment.Method, error) {
	if _, err := uc.ownedUnpaid(ctx, orderID, userID); err != nil {
		return nil, err
	}
	if uc.providers.Empty() {
		return nil, ErrProviderUnavailable
	}
	return uc.providers.Methods(), nil
}

func (uc *StartPayment) Execute(ctx context.Context, in StartPaymentInput) (*payment.Session, error) {
	order, err := uc.ownedUnpaid(ctx, in.OrderID, in.UserID)
	if err != nil {
		return nil, err
	}

	if uc.providers.Empty() {
		return nil, ErrProviderUnavailable
	}
	p, ok := uc.providers.Get(payment.Kind(in.Method))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderUnavailable, in.Method)
	}

	session, err := p.Initiate(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("initiate %s: %w", in.Method, err)
	}

	if session.IntentID != "" {
		if err := uc.orders.SetPaymentIntent(ctx, order.ID, string(p.Kind()), session.IntentID); err != nil {
			return nil, fmt.Errorf("persist payment intent: %w", err)
		}
	}

	logging.FromCtx(ctx).Info("payment initiated",
		"order_id", order.ID, "provider", in.Method, "session_type", session.Type)
	return session, nil
}

// ownedUnpaid hides foreign orders behind ErrOrderNotFound so the endpoint
// leaks nothing about other users' orders.
func (uc *StartPayment) ownedUnpaid(ctx context.Context, orderID, userID string) (*domain.Order, error) {
	order, err := uc.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	if order.Paid {
		return nil, ErrOrderAlreadyPaid
	}
	return order, nil
}
