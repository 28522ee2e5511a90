package checkout

import "context"

// Currency is the only currency the shop sells in.
const Currency = "pln"

// CurrencyLabel is how prices are suffixed for display.
const CurrencyLabel = "PLN"

// FallbackProductName is shown when a product has no title.
const FallbackProductName = "Unnamed Product"

// LineItem is one priced line of a payment session.
type LineItem struct {
	Name       string
	Images     []string
	UnitAmount int64
	Quantity   int64
	ProductID  string
}

// DeliveryEstimate is a business-day range.
type DeliveryEstimate struct {
	MinBusinessDays int64
	MaxBusinessDays int64
}

// ShippingOption is a fixed-amount shipping rate.
type ShippingOption struct {
	DisplayName string
	Amount      int64
	Estimate    DeliveryEstimate
}

// SessionRequest is everything the payment provider needs to open a hosted checkout.
type SessionRequest struct {
	Currency         string
	LineItems        []LineItem
	ShippingOptions  []ShippingOption
	AllowedCountries []string
	SuccessURL       string
	CancelURL        string
	Locale           string
}

// Session is the provider's answer.
type Session struct {
	ID  string
	URL string
}

// SessionCreator opens a hosted payment session.
type SessionCreator interface {
	CreateSession(ctx context.Context, req SessionRequest) (Session, error)
}

// ShippingOptions are offered on every checkout.
var ShippingOptions = []ShippingOption{
	{DisplayName: "Standard Shipping", Amount: 1500, Estimate: DeliveryEstimate{MinBusinessDays: 2, MaxBusinessDays: 5}},
	{DisplayName: "Express Shipping", Amount: 3000, Estimate: DeliveryEstimate{MinBusinessDays: 1, MaxBusinessDays: 2}},
}

// AllowedCountries are the shipping destinations.
var AllowedCountries = []string{
	"AT", "BE", "BG", "CY", "CZ", "DE", "DK", "EE", "ES", "FI", "FR", "GR", "HR",
	"HU", "IE", "IS", "IT", "LI", "LT", "LU", "LV", "MT", "NL", "NO", "PL",
}
