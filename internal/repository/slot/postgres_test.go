package slot

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgres_Load(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT payload::text")).
		WithArgs("cart:s1").
		WillReturnRows(pgxmock.NewRows([]string{"payload"}).AddRow(`[{"productId":"P1"}]`))

	got, err := NewPostgres(mock).Load(context.Background(), "cart:s1")
	require.NoError(t, err)
	assert.Equal(t, `[{"productId":"P1"}]`, string(got))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_LoadMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT payload::text")).
		WithArgs("cart:s1").
		WillReturnError(pgx.ErrNoRows)

	_, err = NewPostgres(mock).Load(context.Background(), "cart:s1")
	assert.ErrorIs(t, err, ErrEmpty)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SaveUpserts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO cart_slots")).
		WithArgs("cart:s1", `[]`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, NewPostgres(mock).Save(context.Background(), "cart:s1", []byte(`[]`)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_DeleteError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM cart_slots")).
		WithArgs("cart:s1").
		WillReturnError(errors.New("connection reset"))

	err = NewPostgres(mock).Delete(context.Background(), "cart:s1")
	assert.EqualError(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}
