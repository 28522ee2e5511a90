package models

// CartItem is one line of the client-side cart. Only ID and Quantity are trusted at checkout;
// Name, Price and Image are display copies the client keeps in local storage.
type CartItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Image    string `json:"image"`
	Quantity int    `json:"quantity"`
}

// CheckoutRequest is the body of POST /api/checkout
type CheckoutRequest struct {
	Cart []CartItem `json:"cart"`
	Lang string     `json:"lang"`
}

// CheckoutResponse carries the hosted payment page URL
type CheckoutResponse struct {
	URL string `json:"url"`
}

// ErrorResponse is the generic error body
type ErrorResponse struct {
	Error string `json:"error"`
}
