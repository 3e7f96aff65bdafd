package usecase

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/giftnest/storefront/internal/entity"
	"github.com/giftnest/storefront/internal/logging"
	"github.com/giftnest/storefront/internal/payment"
)

// ReconcilePayment converges the three settlement entry points (provider
// webhook, client verify-now call, back-office settlement feed) on one
// idempotent apply step. Concurrency between them is resolved by the repo's
// conditional paid=false -> true update, not by locking.
type ReconcilePayment struct {
	orders    OrderRepo
	providers *payment.Registry
	notifier  Notifier
	currency  string
}

func NewReconcilePayment(orders OrderRepo, providers *payment.Registry, notifier Notifier, currency string) *ReconcilePayment {
	return &ReconcilePayment{orders: orders, providers: providers, notifier: notifier, currency: currency}
}

// Webhook authenticates an asynchronous callback from its raw bytes and
// header signature, then applies the settlement. Signature failures change
// nothing and must surface (the handler turns them into 400); an unknown
// correlation id is logged and swallowed so the provider stops retrying.
func (uc *ReconcilePayment) Webhook(ctx context.Context, providerKind string, payload []byte, signature string) error {
	p, ok := uc.providers.Get(payment.Kind(providerKind))
	if !ok {
		return fmt.Errorf("%w: %s", payment.ErrUnknownProvider, providerKind)
	}
	wh, ok := p.(payment.WebhookVerifier)
	if !ok {
		return fmt.Errorf("%w: %s has no webhook", payment.ErrUnknownProvider, providerKind)
	}

	ev, err := wh.VerifyWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			paymentsReconciled.WithLabelValues(providerKind, "invalid_signature").Inc()
			logging.FromCtx(ctx).Warn("webhook signature rejected", "provider", providerKind)
		}
		return err
	}
	if ev == nil {
		// authentic but irrelevant event type
		paymentsReconciled.WithLabelValues(providerKind, "ignored").Inc()
		return nil
	}

	order, err := uc.orders.GetByIntentID(ctx, ev.IntentID)
	if err != nil {
		return err
	}
	if order == nil {
		paymentsReconciled.WithLabelValues(providerKind, "order_not_found").Inc()
		logging.FromCtx(ctx).Error("webhook references unknown order",
			"provider", providerKind, "intent_id", ev.IntentID)
		// acknowledged by the handler regardless, to stop retry storms
		return nil
	}

	return uc.apply(ctx, order, ev)
}

// VerifyClient is the synchronous verify-now entry point, called right after
// a provider's client SDK reports success. It requires the authenticated
// caller to own the order; anything else is ErrOrderNotFound.
func (uc *ReconcilePayment) VerifyClient(ctx context.Context, providerKind, userID string, v payment.ClientVerification) (*domain.Order, error) {
	p, ok := uc.providers.Get(payment.Kind(providerKind))
	if !ok {
		return nil, fmt.Errorf("%w: %s", payment.ErrUnknownProvider, providerKind)
	}
	cv, ok := p.(payment.ClientVerifier)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no client verification", payment.ErrUnknownProvider, providerKind)
	}

	ev, err := cv.VerifyClient(v)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			paymentsReconciled.WithLabelValues(providerKind, "invalid_signature").Inc()
			logging.FromCtx(ctx).Warn("client verification rejected", "provider", providerKind)
		}
		return nil, err
	}

	order, err := uc.orders.GetByIntentID(ctx, ev.IntentID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.UserID != userID {
		return nil, ErrOrderNotFound
	}

	if err := uc.apply(ctx, order, ev); err != nil {
		return nil, err
	}
	return order, nil
}

// ApplySettlement handles the back-office feed for offline methods (COD,
// manual transfer). The back office addresses orders by our own id.
func (uc *ReconcilePayment) ApplySettlement(ctx context.Context, msg SettlementMsg) error {
	if msg.Status != "SETTLED" {
		return nil
	}
	order, err := uc.orders.GetByID(ctx, msg.OrderID)
	if err != nil {
		return err
	}
	if order == nil {
		paymentsReconciled.WithLabelValues(msg.Provider, "order_not_found").Inc()
		logging.FromCtx(ctx).Error("settlement references unknown order",
			"provider", msg.Provider, "order_id", msg.OrderID)
		return nil
	}
	return uc.apply(ctx, order, &payment.Event{
		Provider:     payment.Kind(msg.Provider),
		SettlementID: msg.Reference,
	})
}

// apply is the single idempotent transition. Providers redeliver webhooks and
// the client verify races the async one; whoever wins the conditional update
// settles the order, everyone else is a silent duplicate.
func (uc *ReconcilePayment) apply(ctx context.Context, order *domain.Order, ev *payment.Event) error {
	log := logging.FromCtx(ctx)

	if order.Paid {
		paymentsReconciled.WithLabelValues(string(ev.Provider), "duplicate").Inc()
		return nil
	}

	updated, err := uc.orders.MarkPaid(ctx, order.ID, ev.SettlementID)
	if err != nil {
		return fmt.Errorf("mark paid: %w", err)
	}
	if !updated {
		// lost the race to the other entry point; same outcome, no error
		paymentsReconciled.WithLabelValues(string(ev.Provider), "duplicate").Inc()
		return nil
	}

	paymentsReconciled.WithLabelValues(string(ev.Provider), "settled").Inc()
	log.Info("payment settled",
		"order_id", order.ID, "provider", ev.Provider, "reference", ev.SettlementID)

	// fire-and-forget: a notification failure never unsettles anything
	msg := PaymentConfirmedMsg{
		OrderID:   order.ID,
		UserID:    order.UserID,
		Email:     order.Shipping.Email,
		Provider:  string(ev.Provider),
		Reference: ev.SettlementID,
		Currency:  uc.currency,
	}
	if cents, err := domain.MinorUnits(order.Total()); err == nil {
		msg.AmountCents = cents
	}
	if err := uc.notifier.PaymentConfirmed(ctx, msg); err != nil {
		log.Warn("payment confirmation notify failed", "order_id", order.ID, "error", err)
	}
	return nil
}
