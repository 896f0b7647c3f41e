package service_test

import (
	"testing"

	appErrors "github.com/aaravmahajanofficial/vmjewels-storefront/internal/errors"
	service "github.com/aaravmahajanofficial/vmjewels-storefront/internal/services"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWishlist(t *testing.T) {
	ctx := t.Context()

	t.Run("Success - Add Is Idempotent", func(t *testing.T) {
		f := newFixture(t)
		w := service.NewWishlistService(sessionID, f.store, f.catalog)

		items, added, err := w.Add(ctx, 7)
		require.NoError(t, err)
		assert.True(t, added)
		require.Len(t, items, 1)
		assert.Equal(t, "Sapphire Pendant Necklace", items[0].Name)
		assertMoney(t, "799.99", items[0].Price)

		items, added, err = w.Add(ctx, 7)
		require.NoError(t, err)
		assert.False(t, added)
		assert.Len(t, items, 1)
	})

	t.Run("Success - Toggle", func(t *testing.T) {
		f := newFixture(t)
		w := service.NewWishlistService(sessionID, f.store, f.catalog)

		items, added, err := w.Toggle(ctx, 2)
		require.NoError(t, err)
		assert.True(t, added)
		assert.Len(t, items, 1)

		items, added, err = w.Toggle(ctx, 2)
		require.NoError(t, err)
		assert.False(t, added)
		assert.Empty(t, items)
	})

	t.Run("Success - Remove Missing Is No-op", func(t *testing.T) {
		f := newFixture(t)
		w := service.NewWishlistService(sessionID, f.store, f.catalog)
		_, _, err := w.Add(ctx, 1)
		require.NoError(t, err)

		items, err := w.Remove(ctx, 99)

		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("Success - Persisted Per Session", func(t *testing.T) {
		f := newFixture(t)
		_, _, err := service.NewWishlistService(sessionID, f.store, f.catalog).Add(ctx, 3)
		require.NoError(t, err)

		items, err := service.NewWishlistService(sessionID, f.store, f.catalog).Items(ctx)
		require.NoError(t, err)
		assert.Len(t, items, 1)

		others, err := service.NewWishlistService("other", f.store, f.catalog).Items(ctx)
		require.NoError(t, err)
		assert.Empty(t, others)
	})

	t.Run("Success - Corrupt List Reads Empty", func(t *testing.T) {
		f := newFixture(t)
		f.store.SetRaw(storage.Key(storage.WishlistKeyPrefix, sessionID), []byte("[{"))

		items, err := service.NewWishlistService(sessionID, f.store, f.catalog).Items(ctx)

		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})

	t.Run("Failure - Unknown Product", func(t *testing.T) {
		f := newFixture(t)

		_, _, err := service.NewWishlistService(sessionID, f.store, f.catalog).Add(ctx, 42)

		require.Error(t, err)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeNotFound))
	})

	t.Run("Failure - Store Error", func(t *testing.T) {
		f := newFixture(t)
		f.store.failSet.Store(true)

		_, _, err := service.NewWishlistService(sessionID, f.store, f.catalog).Add(ctx, 1)

		require.Error(t, err)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeStorage))
	})
}
