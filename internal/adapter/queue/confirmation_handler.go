package queue

import (
	"context"

	"github.com/giftnest/storefront/internal/logging"
	"github.com/giftnest/storefront/internal/usecase"
)

// Mailer is the port to whatever actually delivers the confirmation email.
type Mailer interface {
	SendPaymentConfirmation(ctx context.Context, msg usecase.PaymentConfirmedMsg) error
}

// ConfirmationHandler drains payment.confirmed.q and hands each settlement
// to the mailer. Intended for the JSON adapter:
// queue.JSONHandler[usecase.PaymentConfirmedMsg].
type ConfirmationHandler struct {
	mailer Mailer
}

func NewConfirmationHandler(m Mailer) *ConfirmationHandler {
	return &ConfirmationHandler{mailer: m}
}

func (h *ConfirmationHandler) HandleConfirmed(ctx context.Context, msg usecase.PaymentConfirmedMsg) error {
	return h.mailer.SendPaymentConfirmation(ctx, msg)
}

// LogMailer is the default mailer: it records the confirmation instead of
// delivering it. SMTP delivery lives outside this service.
type LogMailer struct{}

func (LogMailer) SendPaymentConfirmation(ctx context.Context, msg usecase.PaymentConfirmedMsg) error {
	logging.FromCtx(ctx).Info("payment confirmation queued for delivery",
		"order_id", msg.OrderID, "email", msg.Email, "provider", msg.Provider,
		"reference", msg.Reference)
	return nil
}
