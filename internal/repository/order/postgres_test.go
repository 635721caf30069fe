package order

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printshop-storefront/internal/domain"
)

func TestPostgres_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	created := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO orders")).
		WithArgs("s1", "a@b.c", domain.OrderStatusPending, "EUR", "fast", int64(2000), 1, `[{"productId":"P1","name":"Tee","unitPriceCents":1000,"quantity":2}]`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow("o1", created))

	got, err := NewPostgres(mock).Create(context.Background(), domain.Order{
		SessionID:    "s1",
		Email:        "a@b.c",
		Status:       domain.OrderStatusPending,
		Currency:     "EUR",
		ShippingType: domain.ShippingFast,
		TotalCents:   2000,
		ItemCount:    1,
		Items:        []domain.LineItem{{ProductID: "P1", Name: "Tee", UnitPriceCents: 1000, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, "o1", got.ID)
	assert.Equal(t, created, got.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	created := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM orders\nWHERE id = $1::uuid")).
		WithArgs("o1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "session_id", "email", "status", "currency", "shipping_type", "total_cents", "item_count", "items", "created_at"}).
			AddRow("o1", "s1", "", domain.OrderStatusPaid, "EUR", "urgent", int64(2500), 1, `[{"productId":"P1","name":"Tee","unitPriceCents":2500,"quantity":1,"customization":{"ref":"r1"}}]`, created))

	got, err := NewPostgres(mock).GetByID(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPaid, got.Status)
	assert.Equal(t, domain.ShippingUrgent, got.ShippingType)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "r1", got.Items[0].CustomizationRef())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM orders")).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err = NewPostgres(mock).GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
