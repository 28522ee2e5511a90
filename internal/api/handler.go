// Package api exposes the storefront HTTP endpoints.
package api

import (
	"context"

	"github.com/coteroyale/storefront/internal/checkout"
	"github.com/coteroyale/storefront/internal/models"
	"github.com/coteroyale/storefront/internal/ratelimit"
	"github.com/stripe/stripe-go/v76"
)

// SettingsSource loads the per-locale contact settings.
type SettingsSource interface {
	ContactSettings(ctx context.Context, lang string) (models.ContactSettings, error)
}

// Dispatcher delivers a validated contact submission.
type Dispatcher interface {
	Dispatch(ctx context.Context, submission models.ContactSubmission, settings models.ContactSettings) error
}

// CheckoutService creates payment sessions.
type CheckoutService interface {
	CreateSession(ctx context.Context, req checkout.Request) (string, error)
}

// Catalog searches and lists products.
type Catalog interface {
	SearchProducts(ctx context.Context, query, lang string) ([]models.ProductRecord, error)
	ProductsByType(ctx context.Context, docType, lang string) ([]models.ProductRecord, error)
}

// WebhookVerifier authenticates payment provider deliveries.
type WebhookVerifier interface {
	Verify(payload []byte, signatureHeader string) (stripe.Event, error)
}

// Handler holds the dependencies of every endpoint.
type Handler struct {
	ContactLimiter *ratelimit.Limiter
	SearchLimiter  *ratelimit.Limiter
	Settings       SettingsSource
	Dispatcher     Dispatcher
	Checkout       CheckoutService
	Catalog        Catalog
	Webhooks       WebhookVerifier
	// HandleEvent reacts to a verified webhook event.
	HandleEvent func(stripe.Event) error
}
