// Package payment adapts the Stripe API to the checkout flow and verifies Stripe webhooks.
package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/coteroyale/storefront/internal/checkout"
	"github.com/coteroyale/storefront/internal/patterns"
	log "github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeConfig configures StripeSessions.
type StripeConfig struct {
	SecretKey string
	// BaseURL overrides the API host, for tests.
	BaseURL    string
	HTTPClient *http.Client
}

// StripeSessions creates hosted checkout sessions.
type StripeSessions struct {
	api     *client.API
	circuit *patterns.CircuitBreakerWrapper
}

// NewStripeSessions creates the adapter. Retries are disabled; the circuit breaker fails
// fast while Stripe is unavailable.
func NewStripeSessions(cfg StripeConfig) *StripeSessions {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: patterns.DefaultTimeout}
	}

	backendCfg := &stripe.BackendConfig{
		HTTPClient:        httpClient,
		LeveledLogger:     log.StandardLogger(),
		MaxNetworkRetries: stripe.Int64(0),
	}
	if cfg.BaseURL != "" {
		backendCfg.URL = stripe.String(cfg.BaseURL)
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg)

	return &StripeSessions{
		api: client.New(cfg.SecretKey, &stripe.Backends{
			API:     backend,
			Connect: backend,
			Uploads: backend,
		}),
		circuit: patterns.NewCircuitBreaker("Stripe", "storefront-api", patterns.BreakerSettings{}, isCountedFailure),
	}
}

// isCountedFailure keeps rejected requests (card or parameter errors) from opening the breaker.
func isCountedFailure(err error) bool {
	if err == nil {
		return true
	}
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return stripeErr.HTTPStatusCode >= 400 && stripeErr.HTTPStatusCode < 500 &&
			stripeErr.HTTPStatusCode != http.StatusTooManyRequests
	}
	return false
}

// CreateSession opens a payment-mode checkout session.
func (s *StripeSessions) CreateSession(ctx context.Context, req checkout.SessionRequest) (checkout.Session, error) {
	params := sessionParams(req)
	params.Context = ctx

	res, err := s.circuit.Execute(func() (interface{}, error) {
		return s.api.CheckoutSessions.New(params)
	})
	if err != nil {
		return checkout.Session{}, fmt.Errorf("stripe create session: %w", err)
	}

	sess := res.(*stripe.CheckoutSession)
	return checkout.Session{ID: sess.ID, URL: sess.URL}, nil
}

func sessionParams(req checkout.SessionRequest) *stripe.CheckoutSessionParams {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.LineItems))
	for _, it := range req.LineItems {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(req.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:     stripe.String(it.Name),
					Images:   stripe.StringSlice(it.Images),
					Metadata: map[string]string{"prismicId": it.ProductID},
				},
				UnitAmount: stripe.Int64(it.UnitAmount),
			},
			Quantity: stripe.Int64(it.Quantity),
		})
	}

	shipping := make([]*stripe.CheckoutSessionShippingOptionParams, 0, len(req.ShippingOptions))
	for _, opt := range req.ShippingOptions {
		shipping = append(shipping, &stripe.CheckoutSessionShippingOptionParams{
			ShippingRateData: &stripe.CheckoutSessionShippingOptionShippingRateDataParams{
				DisplayName: stripe.String(opt.DisplayName),
				Type:        stripe.String("fixed_amount"),
				FixedAmount: &stripe.CheckoutSessionShippingOptionShippingRateDataFixedAmountParams{
					Amount:   stripe.Int64(opt.Amount),
					Currency: stripe.String(req.Currency),
				},
				DeliveryEstimate: &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateParams{
					Minimum: &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateMinimumParams{
						Unit:  stripe.String("business_day"),
						Value: stripe.Int64(opt.Estimate.MinBusinessDays),
					},
					Maximum: &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateMaximumParams{
						Unit:  stripe.String("business_day"),
						Value: stripe.Int64(opt.Estimate.MaxBusinessDays),
					},
				},
			},
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:            stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:       lineItems,
		SuccessURL:      stripe.String(req.SuccessURL),
		CancelURL:       stripe.String(req.CancelURL),
		ShippingOptions: shipping,
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(req.AllowedCountries),
		},
	}
	if req.Locale != "" {
		params.Locale = stripe.String(req.Locale)
	}
	return params
}
