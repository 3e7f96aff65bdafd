package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/giftnest/storefront/internal/adapter/http/middleware"
	"github.com/giftnest/storefront/internal/logging"
)

func NewRouter(ch *CartHandler, oh *OrderHandler, ph *PaymentHandler, th *TokenHandler, authz *middleware.Authz, l *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Metrics(), middleware.Logging(l))

	r.GET("/healthz", func(c *gin.Context) {
		logging.From(c).Info("health check")
		c.JSON(200, gin.H{"ok": true})
	})
	// Prometheus endpoint (scraped by Prometheus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/v1/token", th.IssueToken)

	// provider-to-server callbacks authenticate by signature, not bearer token
	r.POST("/payment/webhook/:provider", ph.Webhook)

	v1 := r.Group("/v1")
	{
		v1.GET("/cart", authz.Require("cart.read"), ch.GetCart)
		v1.POST("/cart/lines", authz.Require("cart.write"), ch.AddLine)
		v1.PUT("/cart/lines/:id", authz.Require("cart.write"), ch.ReplaceLine)
		v1.DELETE("/cart/lines/:id", authz.Require("cart.write"), ch.RemoveLine)

		v1.POST("/orders", authz.Require("orders.write"), oh.CreateOrder)
		v1.GET("/orders/:id", authz.Require("orders.read"), oh.GetOrderByID)

		v1.GET("/payment/process/:order_id", authz.Require("payments.write"), ph.ListMethods)
		v1.POST("/payment/process/:order_id", authz.Require("payments.write"), ph.Process)
		v1.POST("/payment/verify/:provider", authz.Require("payments.write"), ph.VerifyNow)
	}

	return r
}
