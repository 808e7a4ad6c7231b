package storage

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteBackendRoundTrip(t *testing.T) {
	backend, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer backend.Close()
	ctx := context.Background()

	_, found, err := backend.Get(ctx, ContactsKey)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, backend.Put(ctx, ContactsKey, []byte(`["first"]`)))
	require.NoError(t, backend.Put(ctx, ContactsKey, []byte(`["second"]`)))

	value, found, err := backend.Get(ctx, ContactsKey)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `["second"]`, string(value))
}

func TestSQLiteBackendSchemaFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS kv").
		WillReturnError(errors.New("read-only database"))

	_, err = NewSQLiteBackend(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create kv table")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteBackendGetError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS kv").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(selectKV)).
		WithArgs(ContactsKey).
		WillReturnError(errors.New("disk I/O error"))

	backend, err := NewSQLiteBackend(context.Background(), db)
	require.NoError(t, err)

	_, found, err := backend.Get(context.Background(), ContactsKey)
	require.Error(t, err)
	assert.False(t, found)
	assert.Contains(t, err.Error(), "disk I/O error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteBackendPutUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS kv").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO kv").
		WithArgs(ContactsKey, []byte(`[]`), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	backend, err := NewSQLiteBackend(context.Background(), db)
	require.NoError(t, err)

	require.NoError(t, backend.Put(context.Background(), ContactsKey, []byte(`[]`)))
	assert.NoError(t, mock.ExpectationsWereMet())
}
