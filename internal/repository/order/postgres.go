package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"printshop-storefront/internal/domain"
)

// DBPool matches the methods from *pgxpool.Pool that the repository uses.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type postgresRepo struct {
	pool DBPool
}

func NewPostgres(pool DBPool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return nil, fmt.Errorf("encode order items: %w", err)
	}
	const q = `
INSERT INTO orders (session_id, email, status, currency, shipping_type, total_cents, item_count, items)
VALUES ($1, NULLIF($2, ''), $3, $4, NULLIF($5, ''), $6, $7, $8::jsonb)
RETURNING id::text, created_at
`
	out := o
	if err := r.pool.QueryRow(ctx, q,
		o.SessionID,
		o.Email,
		o.Status,
		o.Currency,
		string(o.ShippingType),
		o.TotalCents,
		o.ItemCount,
		string(items),
	).Scan(&out.ID, &out.CreatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	const q = `
SELECT id::text, session_id, COALESCE(email, ''), status, currency, COALESCE(shipping_type, ''), total_cents, item_count, items::text, created_at
FROM orders
WHERE id = $1::uuid
`
	var (
		o            domain.Order
		shippingType string
		items        string
	)
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&o.ID,
		&o.SessionID,
		&o.Email,
		&o.Status,
		&o.Currency,
		&shippingType,
		&o.TotalCents,
		&o.ItemCount,
		&items,
		&o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	o.ShippingType = domain.ShippingType(shippingType)
	if err := json.Unmarshal([]byte(items), &o.Items); err != nil {
		return nil, fmt.Errorf("decode order items: %w", err)
	}
	return &o, nil
}
