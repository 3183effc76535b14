package domain

import "github.com/shopspring/decimal"

// ProductColor is a selectable color variant of a catalog product.
type ProductColor struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// Product is a catalog entry as served by the read API. The catalog owns
// these records; the storefront only snapshots fields into cart lines.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Brand       string          `json:"brand"`
	Category    string          `json:"category"`
	Gender      string          `json:"gender"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	Images      []string        `json:"images"`
	Thumbnail   string          `json:"thumbnail"`
	Sizes       []float64       `json:"sizes"`
	Colors      []ProductColor  `json:"colors"`
	Stock       int             `json:"stock"`
	Rating      float64         `json:"rating"`
	Description string          `json:"description,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
}
