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

type CartHandler struct {
	cart *usecase.Cart
}

func NewCartHandler(cart *usecase.Cart) *CartHandler {
	return &CartHandler{cart: cart}
}

// sessionID scopes the cart. Anonymous browsers carry X-Session-Id; once
// authenticated the subject works as a fallback.
func sessionID(c *gin.Context) string {
	if sid := c.GetHeader("X-Session-Id"); sid != "" {
		return sid
	}
	return middleware.UserID(c)
}

type cartLineResp struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	LineTotal string `json:"line_total"`
}

func (h *CartHandler) GetCart(c *gin.Context) {
	sid := sessionID(c)
	if sid == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_session"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	lines, total, err := h.cart.View(ctx, sid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cart_unavailable"})
		return
	}

	resp := make([]cartLineResp, 0, len(lines))
	for _, l := range lines {
		resp = append(resp, cartLineResp{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.StringFixed(2),
			LineTotal: l.LineTotal.StringFixed(2),
		})
	}
	c.JSON(http.StatusOK, gin.H{"lines": resp, "total": total.StringFixed(2)})
}

type upsertLineReq struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

// AddLine is additive: posting the same product twice doubles the quantity.
func (h *CartHandler) AddLine(c *gin.Context) {
	h.upsert(c, domain.UpsertAdd, "")
}

// ReplaceLine overwrites the quantity of the line named in the path.
func (h *CartHandler) ReplaceLine(c *gin.Context) {
	h.upsert(c, domain.UpsertReplace, c.Param("id"))
}

func (h *CartHandler) upsert(c *gin.Context, mode domain.UpsertMode, pathProductID string) {
	sid := sessionID(c)
	if sid == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_session"})
		return
	}

	var req upsertLineReq
	if pathProductID != "" {
		// product comes from the path on replace; body carries quantity only
		var body struct {
			Quantity int `json:"quantity" binding:"required,gt=0"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
			return
		}
		req = upsertLineReq{ProductID: pathProductID, Quantity: body.Quantity}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	err := h.cart.Upsert(ctx, sid, req.ProductID, req.Quantity, mode)
	if err != nil {
		var stockErr *usecase.InsufficientStockError
		switch {
		case errors.As(err, &stockErr):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":  "insufficient_stock",
				"detail": stockViolations(stockErr),
			})
		case errors.Is(err, domain.ErrInvalidQuantity):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_quantity"})
		default:
			c.JSON(http.StatusNotFound, gin.H{"error": "product_not_found"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *CartHandler) RemoveLine(c *gin.Context) {
	sid := sessionID(c)
	if sid == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_session"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.cart.Remove(ctx, sid, c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cart_unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func stockViolations(e *usecase.InsufficientStockError) []gin.H {
	out := make([]gin.H, 0, len(e.Violations))
	for _, v := range e.Violations {
		out = append(out, gin.H{
			"product_id": v.ProductID,
			"name":       v.Name,
			"requested":  v.Requested,
			"available":  v.Available,
		})
	}
	return out
}
