package kafka

import (
	"context"

	"github.com/giftnest/storefront/internal/usecase"
)

// SettlementHandler applies back-office settlements (COD collected, manual
// transfers matched) through the same reconciler the webhooks use, so the
// paid transition stays guarded in exactly one place.
type SettlementHandler struct {
	reconciler *usecase.ReconcilePayment
}

func NewSettlementHandler(r *usecase.ReconcilePayment) *SettlementHandler {
	return &SettlementHandler{reconciler: r}
}

func (h *SettlementHandler) Handle(ctx context.Context, ev usecase.SettlementMsg) error {
	return h.reconciler.ApplySettlement(ctx, ev)
}
