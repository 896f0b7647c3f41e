package postgres_test

import (
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/config"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/storage"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/storage/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type order struct {
	OrderID string `json:"order_id"`
	Total   string `json:"total"`
}

func setupStore(t *testing.T) (*postgres.Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "Failed to create sqlmock")

	t.Cleanup(func() {
		db.Close()
	})

	return postgres.New(db, &config.Storage{Timeout: time.Second}), mock
}

func TestEnsureSchema(t *testing.T) {
	ctx := t.Context()

	t.Run("Success", func(t *testing.T) {
		store, mock := setupStore(t)
		mock.ExpectExec(`CREATE TABLE IF NOT EXISTS kv_store`).WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, store.EnsureSchema(ctx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Database Error", func(t *testing.T) {
		store, mock := setupStore(t)
		mock.ExpectExec(`CREATE TABLE IF NOT EXISTS kv_store`).WillReturnError(errors.New("permission denied"))

		err := store.EnsureSchema(ctx)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create kv_store table")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGet(t *testing.T) {
	ctx := t.Context()
	key := storage.Key(storage.OrderHistoryKeyPrefix, "session-1")
	expectedSQL := regexp.QuoteMeta(`SELECT value FROM kv_store WHERE key = $1`)

	t.Run("Success - Row Found", func(t *testing.T) {
		// Arrange
		store, mock := setupStore(t)
		history := []order{{OrderID: "VM1700000000000ABCDEFGHI", Total: "1419.99"}}
		data, err := json.Marshal(history)
		require.NoError(t, err)

		mock.ExpectQuery(expectedSQL).WithArgs(key).
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(data))

		// Act
		var got []order
		found, err := store.Get(ctx, key, &got)

		// Assert
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, history, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success - No Row", func(t *testing.T) {
		store, mock := setupStore(t)
		mock.ExpectQuery(expectedSQL).WithArgs(key).WillReturnRows(sqlmock.NewRows([]string{"value"}))

		var got []order
		found, err := store.Get(ctx, key, &got)

		require.NoError(t, err)
		assert.False(t, found)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Shape Mismatch Is Corrupt", func(t *testing.T) {
		store, mock := setupStore(t)
		mock.ExpectQuery(expectedSQL).WithArgs(key).
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`{"order_id":"x"}`)))

		var got []order
		found, err := store.Get(ctx, key, &got)

		require.Error(t, err)
		assert.False(t, found)
		assert.True(t, storage.IsCorrupt(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Database Error", func(t *testing.T) {
		store, mock := setupStore(t)
		dbErr := errors.New("connection reset")
		mock.ExpectQuery(expectedSQL).WithArgs(key).WillReturnError(dbErr)

		var got []order
		found, err := store.Get(ctx, key, &got)

		require.Error(t, err)
		assert.False(t, found)
		assert.ErrorIs(t, err, dbErr)
		assert.False(t, storage.IsCorrupt(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSet(t *testing.T) {
	ctx := t.Context()
	key := storage.SubscribersKey
	expectedSQL := regexp.QuoteMeta(`INSERT INTO kv_store (key, value, updated_at)`)

	t.Run("Success - Upsert", func(t *testing.T) {
		store, mock := setupStore(t)
		value := []string{"a@example.com"}
		data, err := json.Marshal(value)
		require.NoError(t, err)

		mock.ExpectExec(expectedSQL).WithArgs(key, data).WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, store.Set(ctx, key, value))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Marshal Error", func(t *testing.T) {
		store, mock := setupStore(t)

		err := store.Set(ctx, key, make(chan int))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to marshal value")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Database Error", func(t *testing.T) {
		store, mock := setupStore(t)
		dbErr := errors.New("disk full")
		mock.ExpectExec(expectedSQL).WillReturnError(dbErr)

		err := store.Set(ctx, key, []string{"a@example.com"})

		require.Error(t, err)
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDelete(t *testing.T) {
	ctx := t.Context()
	key := storage.Key(storage.CartKeyPrefix, "session-1")
	expectedSQL := regexp.QuoteMeta(`DELETE FROM kv_store WHERE key = $1`)

	t.Run("Success", func(t *testing.T) {
		store, mock := setupStore(t)
		mock.ExpectExec(expectedSQL).WithArgs(key).WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, store.Delete(ctx, key))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Database Error", func(t *testing.T) {
		store, mock := setupStore(t)
		mock.ExpectExec(expectedSQL).WithArgs(key).WillReturnError(errors.New("boom"))

		require.Error(t, store.Delete(ctx, key))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
