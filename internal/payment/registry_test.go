package payment

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/giftnest/storefront/internal/entity"
)

func TestRegistry_GetAndOrder(t *testing.T) {
	r := NewRegistry(
		NewCODProvider(),
		NewBankTransferProvider("shop@upi", "GiftNest"),
	)
	assert.False(t, r.Empty())

	p, ok := r.Get(KindCOD)
	require.True(t, ok)
	assert.Equal(t, KindCOD, p.Kind())

	_, ok = r.Get(KindStripe)
	assert.False(t, ok)

	methods := r.Methods()
	require.Len(t, methods, 2)
	assert.Equal(t, string(KindCOD), methods[0].ID)
	assert.Equal(t, string(KindBankTransfer), methods[1].ID)
}

func TestRegistry_Empty(t *testing.T) {
	assert.True(t, NewRegistry().Empty())
	assert.Empty(t, NewRegistry().Methods())
}

func TestRegistry_DuplicateKindKeepsFirst(t *testing.T) {
	first := NewBankTransferProvider("first@upi", "First")
	second := NewBankTransferProvider("second@upi", "Second")

	r := NewRegistry(first, second)
	p, ok := r.Get(KindBankTransfer)
	require.True(t, ok)
	assert.Same(t, first, p.(*BankTransferProvider))
	assert.Len(t, r.Methods(), 1)
}

func TestOfflineProviders_Initiate(t *testing.T) {
	order := &domain.Order{
		ID: "ord-1",
		Items: []domain.OrderItem{{
			ProductID: "p1", Name: "Mug", Price: decimal.RequireFromString("150.50"), Quantity: 2,
		}},
	}

	s, err := NewCODProvider().Initiate(context.Background(), order)
	require.NoError(t, err)
	assert.Equal(t, SessionInstructions, s.Type)
	assert.Empty(t, s.IntentID)
	assert.Contains(t, s.Instructions, "ord-1")

	s, err = NewBankTransferProvider("shop@upi", "GiftNest").Initiate(context.Background(), order)
	require.NoError(t, err)
	assert.Equal(t, SessionInstructions, s.Type)
	assert.Contains(t, s.Instructions, "301.00")
	assert.Contains(t, s.Instructions, "shop@upi")
	assert.Equal(t, "shop@upi", s.ClientPayload["vpa"])
}
