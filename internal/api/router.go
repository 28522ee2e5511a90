package api

import (
	"net/http"

	"github.com/coteroyale/storefront/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServiceName labels metrics and logs.
const ServiceName = "storefront-api"

// NewRouter wires middleware and routes.
func NewRouter(h *Handler, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(RequestLogger())
	router.Use(metrics.PrometheusMiddleware(ServiceName))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api", SecurityHeaders(allowedOrigins))
	{
		api.POST("/contact", h.Contact)
		api.OPTIONS("/contact", Preflight)

		api.POST("/checkout", h.CreateCheckout)
		api.GET("/search", h.Search)
		api.POST("/webhooks/stripe", h.StripeWebhook)
		api.POST("/quiz/results", h.QuizResults)
	}

	return router
}
