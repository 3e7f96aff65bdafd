package payment

import (
	"context"
	"fmt"

	domain "github.com/giftnest/storefront/internal/entity"
)

// CODProvider is cash on delivery: initiation only displays instructions and
// the order stays unpaid until the back-office settlement feed says
// otherwise. There is no verify path.
type CODProvider struct{}

func NewCODProvider() *CODProvider { return &CODProvider{} }

func (*CODProvider) Kind() Kind { return KindCOD }

func (*CODProvider) Method() Method {
	return Method{
		ID:          string(KindCOD),
		Name:        "Cash on Delivery",
		Description: "Pay with cash upon delivery",
	}
}

func (*CODProvider) Initiate(_ context.Context, o *domain.Order) (*Session, error) {
	return &Session{
		Provider:     KindCOD,
		Type:         SessionInstructions,
		Instructions: fmt.Sprintf("Order %s will be payable in cash upon delivery.", o.ID),
	}, nil
}

// BankTransferProvider is a manual UPI-style transfer to a configured VPA.
// Settlement is out-of-band, recorded by ops on the settlement feed.
type BankTransferProvider struct {
	vpa   string
	payee string
}

func NewBankTransferProvider(vpa, payeeName string) *BankTransferProvider {
	return &BankTransferProvider{vpa: vpa, payee: payeeName}
}

func (*BankTransferProvider) Kind() Kind { return KindBankTransfer }

func (p *BankTransferProvider) Method() Method {
	return Method{
		ID:          string(KindBankTransfer),
		Name:        "UPI (Manual)",
		Description: "Pay to " + p.vpa,
		Currencies:  []string{"INR"},
	}
}

func (p *BankTransferProvider) Initiate(_ context.Context, o *domain.Order) (*Session, error) {
	return &Session{
		Provider: KindBankTransfer,
		Type:     SessionInstructions,
		Instructions: fmt.Sprintf("Transfer %s to %s (%s) and quote order %s in the payment note.",
			o.Total().StringFixed(2), p.vpa, p.payee, o.ID),
		ClientPayload: map[string]any{
			"vpa":   p.vpa,
			"payee": p.payee,
		},
	}, nil
}
