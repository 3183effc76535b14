package payment

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"zapateria-storefront/internal/domain"
)

const paymentColumns = `id::text, full_name, email, address, city, country, card_last4, exp_month, exp_year, amount, currency, payment_token, created_at, updated_at`

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, in CreateInput) (*Record, error) {
	const q = `
INSERT INTO payments (full_name, email, address, city, country, card_last4, exp_month, exp_year, amount, currency, payment_token)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING ` + paymentColumns + `
`
	row := r.pool.QueryRow(ctx, q,
		in.FullName, in.Email, in.Address, in.City, in.Country,
		in.CardLast4, in.ExpMonth, in.ExpYear, in.Amount, in.Currency, in.PaymentToken,
	)
	return scanRecord(row)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Record, error) {
	const q = `
SELECT ` + paymentColumns + `
FROM payments
WHERE id = $1
`
	return scanRecord(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) List(ctx context.Context, page, perPage int) ([]Record, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 15
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM payments`).Scan(&total); err != nil {
		return nil, 0, err
	}

	const q = `
SELECT ` + paymentColumns + `
FROM payments
ORDER BY created_at DESC
LIMIT $1 OFFSET $2
`
	rows, err := r.pool.Query(ctx, q, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecordFromRows(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *postgresRepo) Update(ctx context.Context, id string, in UpdateInput) (*Record, error) {
	const q = `
UPDATE payments
SET full_name = COALESCE($2, full_name),
    email     = COALESCE($3, email),
    address   = COALESCE($4, address),
    city      = COALESCE($5, city),
    country   = COALESCE($6, country),
    amount    = COALESCE($7, amount),
    currency  = COALESCE($8, currency),
    updated_at = now()
WHERE id = $1
RETURNING ` + paymentColumns + `
`
	row := r.pool.QueryRow(ctx, q, id,
		in.FullName, in.Email, in.Address, in.City, in.Country, in.Amount, in.Currency,
	)
	return scanRecord(row)
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	rec, err := scanRecordFromRows(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func scanRecordFromRows(row rowScanner) (*Record, error) {
	var rec Record
	if err := row.Scan(
		&rec.ID,
		&rec.FullName,
		&rec.Email,
		&rec.Address,
		&rec.City,
		&rec.Country,
		&rec.CardLast4,
		&rec.ExpMonth,
		&rec.ExpYear,
		&rec.Amount,
		&rec.Currency,
		&rec.PaymentToken,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}
