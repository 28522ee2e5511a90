package api

import (
	"io"
	"net/http"

	"github.com/coteroyale/storefront/internal/models"
	"github.com/gin-gonic/gin"
)

// maxWebhookBody bounds the payload read from the payment provider.
const maxWebhookBody = 65536

// StripeWebhook handles POST /api/webhooks/stripe.
func (h *Handler) StripeWebhook(c *gin.Context) {
	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Missing stripe-signature header"})
		return
	}

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Webhook Error: " + err.Error()})
		return
	}

	event, err := h.Webhooks.Verify(payload, signature)
	if err != nil {
		logger(c).WithError(err).Warn("Webhook signature verification failed")
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Webhook Error: " + err.Error()})
		return
	}

	if h.HandleEvent != nil {
		if err := h.HandleEvent(event); err != nil {
			logger(c).WithError(err).WithField("event_type", string(event.Type)).Error("Failed to handle webhook event")
		}
	}

	c.JSON(http.StatusOK, models.WebhookAck{Received: true})
}
