package payment

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/coteroyale/storefront/internal/metrics"
	"github.com/coteroyale/storefront/internal/models"
	log "github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

// ErrMissingSignature is returned when a delivery has no Stripe-Signature header.
var ErrMissingSignature = errors.New("missing stripe-signature header")

// WebhookVerifier checks Stripe webhook signatures against the endpoint secret.
type WebhookVerifier struct {
	secret string
}

// NewWebhookVerifier creates a verifier for one endpoint secret.
func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: secret}
}

// Verify authenticates payload and decodes the event. Events created with a different API
// version are accepted; only the fields read by HandleEvent matter.
func (v *WebhookVerifier) Verify(payload []byte, signatureHeader string) (stripe.Event, error) {
	if signatureHeader == "" {
		return stripe.Event{}, ErrMissingSignature
	}
	return webhook.ConstructEventWithOptions(payload, signatureHeader, v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
}

// HandleEvent reacts to a verified event. Orders are not stored, so handled events are only
// logged.
func HandleEvent(event stripe.Event) error {
	eventType := string(event.Type)
	metrics.WebhookEvents.WithLabelValues(eventType).Inc()

	switch eventType {
	case models.EventCheckoutSessionCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return fmt.Errorf("decode checkout session: %w", err)
		}
		log.WithFields(log.Fields{
			"event_id":     event.ID,
			"session_id":   sess.ID,
			"amount_total": sess.AmountTotal,
			"currency":     sess.Currency,
		}).Info("Checkout session completed")

	case models.EventPaymentIntentSucceeded:
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return fmt.Errorf("decode payment intent: %w", err)
		}
		log.WithFields(log.Fields{
			"event_id":          event.ID,
			"payment_intent_id": intent.ID,
			"amount":            intent.Amount,
		}).Info("Payment intent succeeded")

	default:
		log.WithFields(log.Fields{
			"event_id":   event.ID,
			"event_type": eventType,
		}).Warn("Unhandled webhook event type")
	}
	return nil
}
