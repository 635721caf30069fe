package product

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printshop-storefront/internal/domain"
)

var productColumns = []string{"id", "key", "sku", "name", "description", "price_cents", "currency", "attributes", "created_at"}

func TestPostgres_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM products")).
		WillReturnRows(pgxmock.NewRows(productColumns).
			AddRow("p1", "tee", "SKU-TEE", "Tee", "", int64(1999), "EUR", map[string]interface{}{"sizes": []interface{}{"S", "M"}}, created).
			AddRow("p2", "hoodie", "SKU-HOOD", "Hoodie", "warm", int64(3999), "EUR", map[string]interface{}{}, created))

	list, err := NewPostgres(mock, zerolog.Nop()).List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "tee", list[0].Key)
	assert.Equal(t, []string{"S", "M"}, list[0].Sizes())
	assert.Equal(t, int64(3999), list[1].PriceCents)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1::uuid")).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err = NewPostgres(mock, zerolog.Nop()).GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_UpsertIDMismatch(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO products")).
		WithArgs("import-id", "tee", "SKU", "Tee", "", int64(100), "EUR", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow("existing-id", time.Now()))

	_, err = NewPostgres(mock, zerolog.Nop()).Upsert(context.Background(), domain.Product{
		ID: "import-id", Key: "tee", SKU: "SKU", Name: "Tee", PriceCents: 100, Currency: "EUR",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id mismatch")
	assert.NoError(t, mock.ExpectationsWereMet())
}
