package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fekuna/omnipos-storefront/internal/kv"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T, quota int64) (*PGStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPGStore(sqlx.NewDb(db, "postgres"), "shop", quota), mock
}

func TestPGStore_Get(t *testing.T) {
	s, mock := newMockStore(t, 0)

	mock.ExpectQuery("SELECT value FROM kv_entries").
		WithArgs("shop", kv.KeyCart).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(`[]`))
	mock.ExpectQuery("SELECT value FROM kv_entries").
		WithArgs("shop", kv.KeyOrders).
		WillReturnError(sql.ErrNoRows)

	v, ok, err := s.Get(context.Background(), kv.KeyCart)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", v)

	_, ok, err = s.Get(context.Background(), kv.KeyOrders)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGStore_SetWithinQuota(t *testing.T) {
	s, mock := newMockStore(t, 100)

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock\(hashtext\(\$1\)\)`).
		WithArgs("shop").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SUM\(OCTET_LENGTH\(key\) \+ OCTET_LENGTH\(value\)\)`).
		WithArgs("shop", kv.KeyOrders).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(40))
	mock.ExpectExec("INSERT INTO kv_entries").
		WithArgs("shop", kv.KeyOrders, "[1,2,3]", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.Set(context.Background(), kv.KeyOrders, "[1,2,3]"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGStore_SetOverQuota(t *testing.T) {
	s, mock := newMockStore(t, 50)

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").
		WithArgs("shop").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT COALESCE").
		WithArgs("shop", kv.KeyOrders).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(45))
	mock.ExpectRollback()

	err := s.Set(context.Background(), kv.KeyOrders, "[1,2,3]")
	assert.True(t, kv.IsQuotaExceeded(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGStore_QuotaCountsBytes(t *testing.T) {
	s, mock := newMockStore(t, 20)
	value := "ééééé" // 5 characters, 10 bytes

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").
		WithArgs("shop").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT COALESCE").
		WithArgs("shop", kv.KeyCart).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(8))
	mock.ExpectRollback()

	err := s.Set(context.Background(), kv.KeyCart, value)
	assert.True(t, kv.IsQuotaExceeded(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGStore_DiskFullMapsToQuota(t *testing.T) {
	s, mock := newMockStore(t, 0)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO kv_entries").
		WillReturnError(&pq.Error{Code: pqDiskFull, Message: "could not extend file"})
	mock.ExpectRollback()

	err := s.Set(context.Background(), kv.KeyProducts, "[]")
	assert.True(t, kv.IsQuotaExceeded(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGStore_RemoveAndClear(t *testing.T) {
	s, mock := newMockStore(t, 0)

	mock.ExpectExec("DELETE FROM kv_entries WHERE namespace = \\$1 AND key = \\$2").
		WithArgs("shop", kv.KeyCart).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM kv_entries WHERE namespace = \\$1$").
		WithArgs("shop").
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, s.Remove(context.Background(), kv.KeyCart))
	require.NoError(t, s.ClearAll(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
