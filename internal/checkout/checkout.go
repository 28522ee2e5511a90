// Package checkout turns a client cart into a payment session priced from the CMS.
//
// The client only decides which products and how many. Names, images and prices always
// come from the authoritative product records.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coteroyale/storefront/internal/cart"
	"github.com/coteroyale/storefront/internal/locale"
	"github.com/coteroyale/storefront/internal/metrics"
	"github.com/coteroyale/storefront/internal/models"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrEmptyCart means the request carried no cart lines.
	ErrEmptyCart = errors.New("cart is empty or invalid")

	// ErrInvalidLanguage means the URL locale is not supported.
	ErrInvalidLanguage = errors.New("invalid language")

	// ErrNoSessionURL means the provider created a session without a redirect URL.
	ErrNoSessionURL = errors.New("payment session has no redirect URL")
)

// NotFoundError is returned when a cart line references an unknown product.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("product with ID %s not found", e.ID)
}

// WrongTypeError is returned when a cart line references a document that is not for sale.
type WrongTypeError struct {
	ID string
}

func (e *WrongTypeError) Error() string {
	return fmt.Sprintf("product with ID %s is not a fragrance", e.ID)
}

// ProductSource loads authoritative product records.
type ProductSource interface {
	ProductsByIDs(ctx context.Context, ids []string, lang string) ([]models.ProductRecord, error)
}

// Request is a checkout attempt.
type Request struct {
	Cart []models.CartItem
	// Lang is the URL locale, e.g. "en" or "pl".
	Lang string
	// Origin is the site origin redirects go back to. Empty means the configured site URL.
	Origin string
}

// Service builds payment sessions.
type Service struct {
	products ProductSource
	sessions SessionCreator
	siteURL  string
}

// NewService creates a checkout service.
func NewService(products ProductSource, sessions SessionCreator, siteURL string) *Service {
	return &Service{
		products: products,
		sessions: sessions,
		siteURL:  strings.TrimSuffix(siteURL, "/"),
	}
}

// CreateSession reconciles the cart against the CMS and returns the hosted payment URL.
func (s *Service) CreateSession(ctx context.Context, req Request) (string, error) {
	if len(req.Cart) == 0 {
		metrics.CheckoutSessions.WithLabelValues("empty_cart").Inc()
		return "", ErrEmptyCart
	}

	contentLang, ok := locale.ContentLocale(req.Lang)
	if !ok {
		metrics.CheckoutSessions.WithLabelValues("invalid_language").Inc()
		return "", fmt.Errorf("%w: %q", ErrInvalidLanguage, req.Lang)
	}

	records, err := s.products.ProductsByIDs(ctx, uniqueIDs(req.Cart), contentLang)
	if err != nil {
		metrics.CheckoutSessions.WithLabelValues("upstream_error").Inc()
		return "", fmt.Errorf("fetch products: %w", err)
	}
	byID := make(map[string]models.ProductRecord, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}

	items, err := buildLineItems(req.Cart, byID)
	if err != nil {
		metrics.CheckoutSessions.WithLabelValues("rejected").Inc()
		return "", err
	}

	origin := strings.TrimSuffix(req.Origin, "/")
	if origin == "" {
		origin = s.siteURL
	}

	sessionReq := SessionRequest{
		Currency:         Currency,
		LineItems:        items,
		ShippingOptions:  ShippingOptions,
		AllowedCountries: AllowedCountries,
		SuccessURL:       fmt.Sprintf("%s/%s/order/success?session_id={CHECKOUT_SESSION_ID}", origin, req.Lang),
		CancelURL:        fmt.Sprintf("%s/%s/order/cancel", origin, req.Lang),
		Locale:           req.Lang,
	}

	session, err := s.sessions.CreateSession(ctx, sessionReq)
	if err != nil {
		metrics.CheckoutSessions.WithLabelValues("upstream_error").Inc()
		return "", fmt.Errorf("create payment session: %w", err)
	}
	if session.URL == "" {
		metrics.CheckoutSessions.WithLabelValues("upstream_error").Inc()
		return "", ErrNoSessionURL
	}

	subtotal := Subtotal(items)
	metrics.CheckoutSessions.WithLabelValues("created").Inc()
	metrics.CheckoutAmount.Observe(float64(subtotal))

	log.WithFields(log.Fields{
		"session_id": session.ID,
		"lines":      len(items),
		"subtotal":   FormatAmount(subtotal),
		"lang":       req.Lang,
	}).Info("Checkout session created")

	return session.URL, nil
}

func buildLineItems(lines []models.CartItem, byID map[string]models.ProductRecord) ([]LineItem, error) {
	items := make([]LineItem, 0, len(lines))
	for _, line := range lines {
		product, ok := byID[line.ID]
		if !ok {
			return nil, &NotFoundError{ID: line.ID}
		}
		if product.Type != models.ProductTypeFragrance {
			return nil, &WrongTypeError{ID: line.ID}
		}

		if product.Price == 0 {
			log.WithField("product_id", product.ID).Warn("Product has a price of 0")
		}

		name := product.Title
		if name == "" {
			name = FallbackProductName
		}
		var images []string
		if product.ImageURL != "" {
			images = []string{product.ImageURL}
		}

		items = append(items, LineItem{
			Name:       name,
			Images:     images,
			UnitAmount: product.Price,
			Quantity:   int64(cart.ClampQuantity(line.Quantity)),
			ProductID:  product.ID,
		})
	}
	return items, nil
}

func uniqueIDs(lines []models.CartItem) []string {
	seen := make(map[string]bool, len(lines))
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		if !seen[l.ID] {
			seen[l.ID] = true
			ids = append(ids, l.ID)
		}
	}
	return ids
}

// Subtotal sums unit amount times quantity over items, in minor units.
func Subtotal(items []LineItem) int64 {
	var total int64
	for _, it := range items {
		total += it.UnitAmount * it.Quantity
	}
	return total
}

// FormatAmount renders minor units as a decimal amount, e.g. 12900 -> "129.00".
func FormatAmount(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2)
}
