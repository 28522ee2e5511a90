package models

// Payment provider event types the webhook reacts to
const (
	EventCheckoutSessionCompleted = "checkout.session.completed"
	EventPaymentIntentSucceeded   = "payment_intent.succeeded"
)

// WebhookAck acknowledges a verified webhook delivery
type WebhookAck struct {
	Received bool `json:"received"`
}
