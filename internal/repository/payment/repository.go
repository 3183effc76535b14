package payment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Record is a stored payment. Card data is masked before it reaches the
// repository: only the last four digits and the expiry are kept.
type Record struct {
	ID           string
	FullName     string
	Email        string
	Address      *string
	City         *string
	Country      *string
	CardLast4    string
	ExpMonth     int
	ExpYear      int
	Amount       decimal.Decimal
	Currency     string
	PaymentToken *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateInput carries the fields of a new payment.
type CreateInput struct {
	FullName     string
	Email        string
	Address      *string
	City         *string
	Country      *string
	CardLast4    string
	ExpMonth     int
	ExpYear      int
	Amount       decimal.Decimal
	Currency     string
	PaymentToken *string
}

// UpdateInput carries the mutable delivery fields; nil means unchanged.
type UpdateInput struct {
	FullName *string
	Email    *string
	Address  *string
	City     *string
	Country  *string
	Amount   *decimal.Decimal
	Currency *string
}

type Repository interface {
	Create(ctx context.Context, in CreateInput) (*Record, error)
	GetByID(ctx context.Context, id string) (*Record, error)
	List(ctx context.Context, page, perPage int) ([]Record, int, error)
	Update(ctx context.Context, id string, in UpdateInput) (*Record, error)
	Delete(ctx context.Context, id string) error
}
