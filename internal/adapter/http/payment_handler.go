package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/giftnest/storefront/internal/adapter/http/middleware"
	"github.com/giftnest/storefront/internal/payment"
	"github.com/giftnest/storefront/internal/usecase"
)

type PaymentHandler struct {
	start      *usecase.StartPayment
	reconciler *usecase.ReconcilePayment
	providers  *payment.Registry
}

func NewPaymentHandler(start *usecase.StartPayment, reconciler *usecase.ReconcilePayment, providers *payment.Registry) *PaymentHandler {
	return &PaymentHandler{start: start, reconciler: reconciler, providers: providers}
}

// ListMethods backs the method-selection page for an order the caller owns.
func (h *PaymentHandler) ListMethods(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	methods, err := h.start.Methods(ctx, c.Param("order_id"), middleware.UserID(c))
	if err != nil {
		h.startError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"methods": methods})
}

type processReq struct {
	Method string `json:"method" binding:"required"`
}

// Process initiates a charge with the selected provider and returns the
// session (redirect URL, client payload or offline instructions).
func (h *PaymentHandler) Process(c *gin.Context) {
	var req processReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	session, err := h.start.Execute(ctx, usecase.StartPaymentInput{
		OrderID: c.Param("order_id"),
		UserID:  middleware.UserID(c),
		Method:  req.Method,
	})
	if err != nil {
		h.startError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *PaymentHandler) startError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	case errors.Is(err, usecase.ErrOrderAlreadyPaid):
		c.JSON(http.StatusConflict, gin.H{"error": "already_paid"})
	case errors.Is(err, usecase.ErrProviderUnavailable):
		// operator problem, not a user problem; say so without detail
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payment_unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "payment_failed"})
	}
}

// Webhook is the asynchronous reconciliation entry point. Anything
// syntactically handled gets a 200, including no-ops and unknown orders,
// so the provider stops retrying; only signature failures return 400.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	providerKind := c.Param("provider")
	p, ok := h.providers.Get(payment.Kind(providerKind))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown_provider"})
		return
	}
	wh, ok := p.(payment.WebhookVerifier)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown_provider"})
		return
	}

	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable_body"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	err = h.reconciler.Webhook(ctx, providerKind, payload, c.GetHeader(wh.WebhookHeader()))
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			// never describe what was wrong with the signature
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
			return
		}
		// our problem; acknowledge so the provider does not retry-storm us
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// VerifyNow is the synchronous entry point the storefront JS calls right
// after the provider SDK reports success. Requires the authenticated owner.
func (h *PaymentHandler) VerifyNow(c *gin.Context) {
	var req payment.ClientVerification
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	order, err := h.reconciler.VerifyClient(ctx, c.Param("provider"), middleware.UserID(c), req)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrInvalidSignature):
			c.JSON(http.StatusBadRequest, gin.H{"error": "verification_failed"})
		case errors.Is(err, usecase.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		case errors.Is(err, payment.ErrUnknownProvider):
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown_provider"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "verification_failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "order_id": order.ID})
}
