// Package pricing derives cart totals from the current line-item list.
// Everything here is a pure function: totals are recomputed on every
// read and never stored, so they cannot drift from the cart contents.
package pricing

import (
	"github.com/shopspring/decimal"

	"zapateria-storefront/internal/domain"
)

// DefaultCurrency is reported for an empty cart.
const DefaultCurrency = "USD"

// Summary is the derived view of a cart: total unit count, exact
// subtotal and display currency.
type Summary struct {
	ItemCount int
	Subtotal  decimal.Decimal
	Currency  string
}

// Summarize computes the summary for the given line items in list order.
// The currency is taken from the first item; carts are assumed to be
// single-currency and this is not validated here.
func Summarize(items []domain.LineItem) Summary {
	out := Summary{
		Subtotal: decimal.Zero,
		Currency: DefaultCurrency,
	}
	if len(items) > 0 {
		out.Currency = items[0].Currency
	}
	for _, item := range items {
		out.ItemCount += item.Quantity
		out.Subtotal = out.Subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return out
}

// ItemCount returns the sum of all line quantities.
func ItemCount(items []domain.LineItem) int {
	return Summarize(items).ItemCount
}

// Subtotal returns the exact sum of price times quantity across items.
func Subtotal(items []domain.LineItem) decimal.Decimal {
	return Summarize(items).Subtotal
}
