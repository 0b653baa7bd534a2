package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ovibet/cashier/internal/core/domain"
)

// Postgres reads the catalog from the payment_methods table. Re-querying
// yields the current catalog; any caching is the caller's choice.
type Postgres struct {
	Db *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{Db: db}
}

const methodColumns = `
	id, name, category, required_fields, min_amount, max_amount,
	processing_time, fee_description, is_active`

func (p *Postgres) List(ctx context.Context) ([]domain.PaymentMethod, error) {
	rows, err := p.Db.Query(ctx, `
		SELECT `+methodColumns+`
		FROM payment_methods
		WHERE is_active = TRUE
		ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	defer rows.Close()

	var methods []domain.PaymentMethod
	for rows.Next() {
		m, err := scanMethod(rows)
		if err != nil {
			return nil, err
		}
		methods = append(methods, m)
	}
	return methods, rows.Err()
}

func (p *Postgres) Get(ctx context.Context, id string) (domain.PaymentMethod, error) {
	row := p.Db.QueryRow(ctx, `
		SELECT `+methodColumns+`
		FROM payment_methods
		WHERE id = $1`, id)
	m, err := scanMethod(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.PaymentMethod{}, domain.ErrMethodNotFound
	}
	return m, err
}

func scanMethod(row pgx.Row) (domain.PaymentMethod, error) {
	var (
		m        domain.PaymentMethod
		category string
		minStr   string
		maxStr   string
	)
	err := row.Scan(&m.ID, &m.Name, &category, &m.RequiredFields,
		&minStr, &maxStr, &m.ProcessingTime, &m.FeeDescription, &m.IsActive)
	if err != nil {
		return domain.PaymentMethod{}, err
	}
	m.Category = domain.MethodCategory(category)
	if m.MinAmount, err = decimal.NewFromString(minStr); err != nil {
		return domain.PaymentMethod{}, fmt.Errorf("method %s: bad min_amount: %w", m.ID, err)
	}
	if m.MaxAmount, err = decimal.NewFromString(maxStr); err != nil {
		return domain.PaymentMethod{}, fmt.Errorf("method %s: bad max_amount: %w", m.ID, err)
	}
	return m, nil
}
