package domain

import "github.com/shopspring/decimal"

// LineItem is one distinct purchasable entry in the cart, keyed by
// product plus selected variant (size/color). Name, image, price and
// stock are snapshots taken at add-time and are not kept in sync with
// the catalog afterwards.
type LineItem struct {
	Key       string          `json:"key"`
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency"`
	Image     string          `json:"image"`
	Size      *float64        `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
	Quantity  int             `json:"quantity"`
	Stock     int             `json:"stock"`
}

// PaymentDetails is the checkout form as filled by the user.
type PaymentDetails struct {
	FullName   string
	Email      string
	Address    string
	City       string
	Country    string
	CardNumber string
	Expiration string
	CVV        string
}
