package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/giftnest/storefront/internal/adapter/http/middleware"
	domain "github.com/giftnest/storefront/internal/entity"
	"github.com/giftnest/storefront/internal/usecase"
)

type OrderHandler struct {
	create *usecase.CreateOrder
	query  usecase.OrderRepo
}

func NewOrderHandler(create *usecase.CreateOrder, query usecase.OrderRepo) *OrderHandler {
	return &OrderHandler{create: create, query: query}
}

type createOrderReq struct {
	FirstName  string `json:"first_name" binding:"required"`
	LastName   string `json:"last_name"`
	Email      string `json:"email" binding:"required,email"`
	Address    string `json:"address" binding:"required"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city" binding:"required"`
}

// CreateOrder is the checkout submission: shipping form in the body, session
// in X-Session-Id, duplicate protection via X-Idempotency-Key.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	sid := sessionID(c)
	if sid == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_session"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	out, err := h.create.Execute(ctx, usecase.CreateOrderInput{
		SessionID:      sid,
		UserID:         middleware.UserID(c),
		IdempotencyKey: c.GetHeader("X-Idempotency-Key"),
		Shipping: domain.ShippingInfo{
			FirstName:  req.FirstName,
			LastName:   req.LastName,
			Email:      req.Email,
			Address:    req.Address,
			PostalCode: req.PostalCode,
			City:       req.City,
		},
	})
	if err != nil {
		var stockErr *usecase.InsufficientStockError
		switch {
		case errors.As(err, &stockErr):
			// every violated line at once so the user fixes the cart in one pass
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":  "insufficient_stock",
				"detail": stockViolations(stockErr),
			})
		case errors.Is(err, usecase.ErrEmptyCart):
			c.JSON(http.StatusBadRequest, gin.H{"error": "empty_cart"})
		case errors.Is(err, usecase.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": "duplicate_request"})
		case errors.Is(err, domain.ErrInvalidShipping):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_shipping"})
		default:
			// no order is left half-created; the user just retries
			c.JSON(http.StatusInternalServerError, gin.H{"error": "order_create_failed"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order_id": out.OrderID,
		"total":    out.Total.StringFixed(2),
	})
}

func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	order, err := h.query.GetByID(ctx, c.Param("id"))
	if err != nil || order == nil || order.UserID != middleware.UserID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}

	items := make([]gin.H, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, gin.H{
			"product_id": it.ProductID,
			"name":       it.Name,
			"price":      it.Price.StringFixed(2),
			"quantity":   it.Quantity,
			"line_total": it.LineTotal().StringFixed(2),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"id":         order.ID,
		"paid":       order.Paid,
		"provider":   order.Provider,
		"total":      order.Total().StringFixed(2),
		"items":      items,
		"created_at": order.CreatedAt,
	})
}
