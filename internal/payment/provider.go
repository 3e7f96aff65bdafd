package payment

import (
	"context"
	"errors"

	domain "github.com/giftnest/storefront/internal/entity"
)

type Kind string

const (
	KindStripe       Kind = "stripe"
	KindRazorpay     Kind = "razorpay"
	KindCOD          Kind = "cod"
	KindBankTransfer Kind = "banktransfer"
)

var (
	ErrInvalidSignature = errors.New("invalid provider signature")
	ErrUnknownProvider  = errors.New("unknown payment provider")
)

// SessionType tells the handler what to do with an initiation result.
type SessionType string

const (
	SessionRedirect     SessionType = "redirect"     // send the browser to RedirectURL
	SessionClient       SessionType = "client"       // feed ClientPayload to the provider's JS SDK
	SessionInstructions SessionType = "instructions" // display Instructions, settle out-of-band
)

// Session is what initiating a charge hands back to the caller.
type Session struct {
	Provider      Kind           `json:"provider"`
	Type          SessionType    `json:"type"`
	IntentID      string         `json:"-"` // provider correlation id, persisted on the order
	RedirectURL   string         `json:"redirect_url,omitempty"`
	ClientPayload map[string]any `json:"client_payload,omitempty"`
	Instructions  string         `json:"instructions,omitempty"`
}

// Event is a verified "payment captured" notification. A nil Event with a
// nil error means the notification was authentic but irrelevant here.
type Event struct {
	Provider     Kind
	IntentID     string // correlation id to find the order by
	SettlementID string
}

// ClientVerification is the body of the synchronous verify-now call made
// right after a provider's client SDK reports success.
type ClientVerification struct {
	ProviderOrderID   string `json:"provider_order_id"`
	ProviderPaymentID string `json:"provider_payment_id"`
	ProviderSignature string `json:"provider_signature"`
}

// Method describes a provider on the selection page.
type Method struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Currencies  []string `json:"currencies"`
}

// Provider is the capability every payment method has: initiate a charge for
// an order. Gateways additionally implement WebhookVerifier and/or
// ClientVerifier; offline methods implement neither.
type Provider interface {
	Kind() Kind
	Method() Method
	Initiate(ctx context.Context, o *domain.Order) (*Session, error)
}

// WebhookVerifier authenticates an asynchronous server-to-server callback
// from the raw body bytes and the header-carried signature, before trusting
// any payload field.
type WebhookVerifier interface {
	WebhookHeader() string
	VerifyWebhook(payload []byte, signature string) (*Event, error)
}

// ClientVerifier authenticates the synchronous verify-now call.
type ClientVerifier interface {
	VerifyClient(v ClientVerification) (*Event, error)
}
