package platform

import (
	"context"

	"github.com/PuerkitoBio/goquery"
)

// SearchRequest is one user-specified item query with filter thresholds.
// Requests are re-read from the input file at the start of every cycle.
type SearchRequest struct {
	Name            string  `json:"name"`
	MaxPrice        float64 `json:"max_price"`
	MinSellerRating float64 `json:"min_seller_rating"`
}

// Listing is one normalized found product record. Price is always a parsed
// number; cleaning happens before a Listing is constructed. SellerRating is
// nil for platforms that do not expose one.
type Listing struct {
	Platform     string   `json:"platform"`
	SearchTerm   string   `json:"search_term"`
	Title        string   `json:"title"`
	Price        float64  `json:"price"`
	SellerRating *float64 `json:"seller_rating"`
	URL          string   `json:"url"`
}

// Platform is the contract every marketplace backend implements. Search
// honors the request's thresholds: a listing violating max_price or
// min_seller_rating is never returned. Errors are *errors.Error values
// carrying the platform name and cause.
type Platform interface {
	Search(ctx context.Context, req SearchRequest) ([]Listing, error)
	Name() string
}

// TextHandler customizes extraction of one field from a result element.
type TextHandler func(*goquery.Selection) string

// Selectors locate listing fields inside a scraped search-results page.
// They are data, not architecture: when a marketplace changes its markup,
// only these values need editing.
type Selectors struct {
	// ResultItem matches one listing container
	ResultItem string
	Title      string
	Price      string
	Link       string
	// SellerInfo matches the seller-rating text; empty means the platform
	// does not expose a seller rating
	SellerInfo string
	// Sponsored matches ad rows to skip; optional
	Sponsored string
	// EmbeddedJSON matches script tags carrying product data; optional
	EmbeddedJSON string
}

// BackendConfig describes one scraping backend. URLTemplate contains a
// single %s placeholder for the URL-encoded search term.
type BackendConfig struct {
	Provider    string
	URLTemplate string
	Selectors   Selectors

	// Optional hooks for marketplace quirks
	TitleHandler  TextHandler
	PriceHandler  TextHandler
	DetectBlock   func(*goquery.Document) bool
	ParseEmbedded func(*goquery.Document) ([]Candidate, bool)
}

// Candidate is a raw result row before cleaning and filtering.
type Candidate struct {
	Title      string
	Link       string
	PriceText  string
	RatingText string
}
