package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	domain "github.com/giftnest/storefront/internal/entity"
)

// StripeConfig is the enabled subset of configs.PaymentConfig.Stripe.
type StripeConfig struct {
	SecretKey      string
	PublishableKey string
	WebhookSecret  string
	Currency       string
	SuccessURL     string
	CancelURL      string
}

// StripeProvider creates a hosted checkout session per order. The session's
// payment intent is the correlation id; the webhook's
// checkout.session.completed event settles the order.
type StripeProvider struct {
	api *client.API
	cfg StripeConfig
}

func NewStripeProvider(cfg StripeConfig) *StripeProvider {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)
	return &StripeProvider{api: api, cfg: cfg}
}

func (p *StripeProvider) Kind() Kind { return KindStripe }

func (p *StripeProvider) Method() Method {
	return Method{
		ID:          string(KindStripe),
		Name:        "Stripe",
		Description: "Pay with credit/debit cards worldwide",
		Currencies:  []string{"USD", "EUR", "GBP"},
	}
}

func (p *StripeProvider) Initiate(ctx context.Context, o *domain.Order) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(o.ID),
		SuccessURL:        stripe.String(p.cfg.SuccessURL),
		CancelURL:         stripe.String(p.cfg.CancelURL),
	}
	params.Context = ctx

	for _, it := range o.Items {
		unit, err := domain.MinorUnits(it.Price)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", it.ProductID, err)
		}
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(int64(it.Quantity)),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(p.cfg.Currency),
				UnitAmount: stripe.Int64(unit),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(it.Name),
				},
			},
		})
	}

	s, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session: %w", err)
	}

	intent := ""
	if s.PaymentIntent != nil {
		intent = s.PaymentIntent.ID
	}
	return &Session{
		Provider:    KindStripe,
		Type:        SessionRedirect,
		IntentID:    intent,
		RedirectURL: s.URL,
		ClientPayload: map[string]any{
			"sessionId":      s.ID,
			"publishableKey": p.cfg.PublishableKey,
		},
	}, nil
}

func (p *StripeProvider) WebhookHeader() string { return "Stripe-Signature" }

// VerifyWebhook lets the Stripe SDK check the signed-payload header; only
// then is the event body parsed. Anything but a completed checkout session
// is acknowledged as a no-op.
func (p *StripeProvider) VerifyWebhook(payload []byte, signature string) (*Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	if event.Type != "checkout.session.completed" {
		return nil, nil
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}
	if cs.PaymentIntent == nil || cs.PaymentIntent.ID == "" {
		return nil, fmt.Errorf("completed session %s has no payment intent", cs.ID)
	}
	return &Event{
		Provider:     KindStripe,
		IntentID:     cs.PaymentIntent.ID,
		SettlementID: cs.PaymentIntent.ID,
	}, nil
}
