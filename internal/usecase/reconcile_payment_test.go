package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/giftnest/storefront/internal/entity"
	"github.com/giftnest/storefront/internal/payment"
)

const testKind = payment.Kind("testpay")

// reconcileFixture wires one unpaid order with a persisted payment intent
// behind a fake provider.
type reconcileFixture struct {
	orders   *memOrderRepo
	notifier *recordingNotifier
	provider *fakeProvider
	uc       *ReconcilePayment
	orderID  string
}

func newReconcileFixture(t *testing.T) *reconcileFixture {
	t.Helper()
	ctx := context.Background()

	catalog := newMemCatalog(
		&domain.Product{ID: "p1", Name: "Mug", Price: decimal.RequireFromString("150.00"), Stock: 10},
	)
	orders := newMemOrderRepo(catalog)
	order := &domain.Order{
		ID:     "ord-1",
		UserID: "u1",
		Shipping: domain.ShippingInfo{
			FirstName: "Asha", Email: "asha@example.com", Address: "12 MG Road", City: "Bengaluru",
		},
		Items: []domain.OrderItem{{
			OrderID: "ord-1", ProductID: "p1", Name: "Mug",
			Price: decimal.RequireFromString("150.00"), Quantity: 2,
		}},
	}
	require.NoError(t, orders.Create(ctx, order))
	require.NoError(t, orders.SetPaymentIntent(ctx, order.ID, string(testKind), "intent-1"))

	provider := &fakeProvider{kind: testKind}
	notifier := &recordingNotifier{}
	uc := NewReconcilePayment(orders, payment.NewRegistry(provider), notifier, "INR")

	return &reconcileFixture{orders: orders, notifier: notifier, provider: provider, uc: uc, orderID: order.ID}
}

func capturedEvent() *payment.Event {
	return &payment.Event{Provider: testKind, IntentID: "intent-1", SettlementID: "pay-77"}
}

func TestWebhook_SettlesOrderAndNotifiesOnce(t *testing.T) {
	f := newReconcileFixture(t)
	f.provider.webhookFn = func([]byte, string) (*payment.Event, error) {
		return capturedEvent(), nil
	}

	require.NoError(t, f.uc.Webhook(context.Background(), string(testKind), []byte(`{}`), "sig"))

	order, err := f.orders.GetByID(context.Background(), f.orderID)
	require.NoError(t, err)
	assert.True(t, order.Paid)
	assert.Equal(t, "pay-77", order.ProviderReference)

	require.Equal(t, 1, f.notifier.count())
	msg := f.notifier.msgs[0]
	assert.Equal(t, f.orderID, msg.OrderID)
	assert.Equal(t, "asha@example.com", msg.Email)
	assert.Equal(t, int64(30000), msg.AmountCents)
	assert.Equal(t, "INR", msg.Currency)
}

func TestWebhook_DuplicateDeliveryIsSilent(t *testing.T) {
	f := newReconcileFixture(t)
	f.provider.webhookFn = func([]byte, string) (*payment.Event, error) {
		return capturedEvent(), nil
	}

	require.NoError(t, f.uc.Webhook(context.Background(), string(testKind), []byte(`{}`), "sig"))
	require.NoError(t, f.uc.Webhook(context.Background(), string(testKind), []byte(`{}`), "sig"))
	require.NoError(t, f.uc.Webhook(context.Background(), string(testKind), []byte(`{}`), "sig"))

	order, _ := f.orders.GetByID(context.Background(), f.orderID)
	assert.True(t, order.Paid)
	assert.Equal(t, "pay-77", order.ProviderReference)
	assert.Equal(t, 1, f.notifier.count())
}

func TestWebhook_InvalidSignatureChangesNothing(t *testing.T) {
	f := newReconcileFixture(t)
	f.provider.webhookFn = func([]byte, string) (*payment.Event, error) {
		return nil, payment.ErrInvalidSignature
	}

	err := f.uc.Webhook(context.Background(), string(testKind), []byte(`{}`), "bad")
	assert.ErrorIs(t, err, payment.ErrInvalidSignature)

	order, _ := f.orders.GetByID(context.Background(), f.orderID)
	assert.False(t, order.Paid)
	assert.Zero(t, f.notifier.count())
}

func TestWebhook_IrrelevantEventIsNoOp(t *testing.T) {
	f := newReconcileFixture(t)
	f.provider.webhookFn = func([]byte, string) (*payment.Event, error) {
		return nil, nil
	}

	require.NoError(t, f.uc.Webhook(context.Background(), string(testKind), []byte(`{}`), "sig"))
	order, _ := f.orders.GetByID(context.Background(), f.orderID)
	assert.False(t, order.Paid)
	assert.Zero(t, f.notifier.count())
}

func TestWebhook_UnknownOrderIsAcknowledged(t *testing.T) {
	f := newReconcileFixture(t)
	f.provider.webhookFn = func([]byte, string) (*payment.Event, error) {
		return &payment.Event{Provider: testKind, IntentID: "intent-nobody", SettlementID: "pay-1"}, nil
	}

	assert.NoError(t, f.uc.Webhook(context.Background(), string(testKind), []byte(`{}`), "sig"))
	assert.Zero(t, f.notifier.count())
}

func TestWebhook_UnknownProvider(t *testing.T) {
	f := newReconcileFixture(t)
	err := f.uc.Webhook(context.Background(), "nosuch", []byte(`{}`), "sig")
	assert.ErrorIs(t, err, payment.ErrUnknownProvider)
}

func TestVerifyClient_RequiresOwnership(t *testing.T) {
	f := newReconcileFixture(t)
	f.provider.clientFn = func(payment.ClientVerification) (*payment.Event, error) {
		return capturedEvent(), nil
	}

	_, err := f.uc.VerifyClient(context.Background(), string(testKind), "intruder", payment.ClientVerification{})
	assert.ErrorIs(t, err, ErrOrderNotFound)

	order, _ := f.orders.GetByID(context.Background(), f.orderID)
	assert.False(t, order.Paid)
}

func TestVerifyClient_Settles(t *testing.T) {
	f := newReconcileFixture(t)
	f.provider.clientFn = func(payment.ClientVerification) (*payment.Event, error) {
		return capturedEvent(), nil
	}

	order, err := f.uc.VerifyClient(context.Background(), string(testKind), "u1", payment.ClientVerification{})
	require.NoError(t, err)
	assert.Equal(t, f.orderID, order.ID)

	stored, _ := f.orders.GetByID(context.Background(), f.orderID)
	assert.True(t, stored.Paid)
	assert.Equal(t, 1, f.notifier.count())
}

// The async webhook and the client verify race each other in production;
// whichever wins the guarded update settles, the other is a duplicate.
func TestWebhookAndVerifyRace_PaidExactlyOnce(t *testing.T) {
	f := newReconcileFixture(t)
	f.provider.webhookFn = func([]byte, string) (*payment.Event, error) {
		return capturedEvent(), nil
	}
	f.provider.clientFn = func(payment.ClientVerification) (*payment.Event, error) {
		return capturedEvent(), nil
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = f.uc.Webhook(context.Background(), string(testKind), []byte(`{}`), "sig")
	}()
	go func() {
		defer wg.Done()
		_, _ = f.uc.VerifyClient(context.Background(), string(testKind), "u1", payment.ClientVerification{})
	}()
	wg.Wait()

	order, _ := f.orders.GetByID(context.Background(), f.orderID)
	assert.True(t, order.Paid)
	assert.Equal(t, "pay-77", order.ProviderReference)
	assert.Equal(t, 1, f.notifier.count())
}

func TestApplySettlement_OfflineFeed(t *testing.T) {
	f := newReconcileFixture(t)

	// non-settled statuses are ignored
	require.NoError(t, f.uc.ApplySettlement(context.Background(), SettlementMsg{
		OrderID: f.orderID, Provider: "cod", Reference: "rcpt-1", Status: "PENDING",
	}))
	order, _ := f.orders.GetByID(context.Background(), f.orderID)
	assert.False(t, order.Paid)

	require.NoError(t, f.uc.ApplySettlement(context.Background(), SettlementMsg{
		OrderID: f.orderID, Provider: "cod", Reference: "rcpt-1", Status: "SETTLED",
	}))
	order, _ = f.orders.GetByID(context.Background(), f.orderID)
	assert.True(t, order.Paid)
	assert.Equal(t, "rcpt-1", order.ProviderReference)
	assert.Equal(t, 1, f.notifier.count())
}

func TestApplySettlement_UnknownOrderIsAcknowledged(t *testing.T) {
	f := newReconcileFixture(t)
	assert.NoError(t, f.uc.ApplySettlement(context.Background(), SettlementMsg{
		OrderID: "ord-nobody", Provider: "cod", Reference: "rcpt-1", Status: "SETTLED",
	}))
	assert.Zero(t, f.notifier.count())
}
