package models

// ProductTypeFragrance is the only CMS document type that can be sold
const ProductTypeFragrance = "fragrance"

// ProductRecord is the authoritative product as stored in the CMS
type ProductRecord struct {
	ID       string `json:"id"`
	UID      string `json:"uid,omitempty"`
	Type     string `json:"type"`
	Lang     string `json:"lang"`
	Title    string `json:"title"`
	Price    int64  `json:"price"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// SearchResult is a product as returned by the search endpoint
type SearchResult struct {
	ProductRecord
	FormattedPrice string `json:"formattedPrice"`
}
