package payment

import (
	"context"
	"encoding/json"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"

	domain "github.com/giftnest/storefront/internal/entity"
	"github.com/giftnest/storefront/internal/security"
)

// RazorpayConfig is the enabled subset of configs.PaymentConfig.Razorpay.
type RazorpayConfig struct {
	KeyID     string
	KeySecret string
	Currency  string
}

// RazorpayProvider creates a provider-side order in minor units (paise) and
// hands the client SDK payload back. Settlement arrives either through the
// HMAC-signed webhook or the client verify-now call.
type RazorpayProvider struct {
	client *razorpay.Client
	cfg    RazorpayConfig
	sigs   *security.SignatureService
}

func NewRazorpayProvider(cfg RazorpayConfig, sigs *security.SignatureService) *RazorpayProvider {
	return &RazorpayProvider{
		client: razorpay.NewClient(cfg.KeyID, cfg.KeySecret),
		cfg:    cfg,
		sigs:   sigs,
	}
}

func (p *RazorpayProvider) Kind() Kind { return KindRazorpay }

func (p *RazorpayProvider) Method() Method {
	return Method{
		ID:          string(KindRazorpay),
		Name:        "Razorpay",
		Description: "Pay with UPI, cards, net banking & more",
		Currencies:  []string{"INR"},
	}
}

func (p *RazorpayProvider) Initiate(ctx context.Context, o *domain.Order) (*Session, error) {
	paise, err := domain.MinorUnits(o.Total())
	if err != nil {
		return nil, fmt.Errorf("order %s total: %w", o.ID, err)
	}

	data := map[string]interface{}{
		"amount":          paise,
		"currency":        p.cfg.Currency,
		"receipt":         "order_" + o.ID,
		"payment_capture": 1,
	}
	body, err := p.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay order create: %w", err)
	}
	rzpOrderID, _ := body["id"].(string)
	if rzpOrderID == "" {
		return nil, fmt.Errorf("razorpay order create: response has no id")
	}

	return &Session{
		Provider: KindRazorpay,
		Type:     SessionClient,
		IntentID: rzpOrderID,
		ClientPayload: map[string]any{
			"order_id": rzpOrderID,
			"amount":   paise,
			"currency": p.cfg.Currency,
			"key":      p.cfg.KeyID,
		},
	}, nil
}

func (p *RazorpayProvider) WebhookHeader() string { return "X-Razorpay-Signature" }

type razorpayWebhook struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// VerifyWebhook checks the hex HMAC-SHA256 of the raw body before parsing a
// single field out of it. Events other than payment.captured are authentic
// no-ops.
func (p *RazorpayProvider) VerifyWebhook(payload []byte, signature string) (*Event, error) {
	if err := p.sigs.Verify(string(KindRazorpay), payload, signature); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	var wh razorpayWebhook
	if err := json.Unmarshal(payload, &wh); err != nil {
		return nil, fmt.Errorf("decode webhook: %w", err)
	}
	if wh.Event != "payment.captured" {
		return nil, nil
	}
	if wh.Payload.Payment.Entity.OrderID == "" {
		return nil, fmt.Errorf("payment.captured event has no order_id")
	}
	return &Event{
		Provider:     KindRazorpay,
		IntentID:     wh.Payload.Payment.Entity.OrderID,
		SettlementID: wh.Payload.Payment.Entity.ID,
	}, nil
}

// VerifyClient checks the signature the checkout JS hands back after a
// successful payment, using the SDK's documented construction
// (HMAC of "order_id|payment_id" under the key secret).
func (p *RazorpayProvider) VerifyClient(v ClientVerification) (*Event, error) {
	if v.ProviderOrderID == "" || v.ProviderPaymentID == "" || v.ProviderSignature == "" {
		return nil, fmt.Errorf("%w: missing verification fields", ErrInvalidSignature)
	}
	params := map[string]interface{}{
		"razorpay_order_id":   v.ProviderOrderID,
		"razorpay_payment_id": v.ProviderPaymentID,
	}
	if !utils.VerifyPaymentSignature(params, v.ProviderSignature, p.cfg.KeySecret) {
		return nil, ErrInvalidSignature
	}
	return &Event{
		Provider:     KindRazorpay,
		IntentID:     v.ProviderOrderID,
		SettlementID: v.ProviderPaymentID,
	}, nil
}
