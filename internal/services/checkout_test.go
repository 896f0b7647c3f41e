package service_test

import (
	"testing"

	appErrors "github.com/aaravmahajanofficial/vmjewels-storefront/internal/errors"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/events"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/models"
	service "github.com/aaravmahajanofficial/vmjewels-storefront/internal/services"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyPromo(t *testing.T) {
	ctx := t.Context()

	t.Run("Success - Applied And Persisted", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.cart.Add(ctx, 1, noVariant, 1)
		require.NoError(t, err)

		result, err := f.checkout.ApplyPromo(ctx, "welcome10")

		require.NoError(t, err)
		assert.Equal(t, models.PromoStatusApplied, result.Status)
		require.NotNil(t, result.Promo)
		assert.Equal(t, "WELCOME10", result.Promo.Code)
		assert.Equal(t, "130.00", result.Totals.Discount)
		assert.Equal(t, "Promo code applied successfully!", result.Message)

		var stored models.PromoCode
		found, err := f.store.Get(ctx, storage.Key(storage.AppliedPromoKeyPrefix, sessionID), &stored)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "WELCOME10", stored.Code)

		published := f.events.ofType(events.TotalsChanged)
		require.NotEmpty(t, published)
		payload := published[len(published)-1].Payload.(events.TotalsChangedPayload)
		require.NotNil(t, payload.Promo)
		assert.Equal(t, "WELCOME10", payload.Promo.Code)
	})

	t.Run("Success - Applying Replaces", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.checkout.ApplyPromo(ctx, "WELCOME10")
		require.NoError(t, err)
		_, err = f.checkout.ApplyPromo(ctx, "SAVE25")
		require.NoError(t, err)

		require.NotNil(t, f.checkout.Promo())
		assert.Equal(t, "SAVE25", f.checkout.Promo().Code)
	})

	t.Run("Empty - Keeps Existing Promo", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.checkout.ApplyPromo(ctx, "FREESHIP")
		require.NoError(t, err)

		result, err := f.checkout.ApplyPromo(ctx, "  ")

		require.NoError(t, err)
		assert.Equal(t, models.PromoStatusEmpty, result.Status)
		require.NotNil(t, result.Promo)
		assert.Equal(t, "FREESHIP", result.Promo.Code)
	})

	t.Run("Invalid - Clears Active Promo", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.cart.Add(ctx, 2, noVariant, 1)
		require.NoError(t, err)
		_, err = f.checkout.ApplyPromo(ctx, "WELCOME10")
		require.NoError(t, err)

		result, err := f.checkout.ApplyPromo(ctx, "BOGUS")

		require.NoError(t, err)
		assert.Equal(t, models.PromoStatusInvalid, result.Status)
		assert.Nil(t, result.Promo)
		assert.Nil(t, f.checkout.Promo())
		assert.Equal(t, "0.00", result.Totals.Discount)
		assert.Equal(t, f.pricing.ComputeTotals(f.cart.Snapshot().Lines, nil).View(), result.Totals)

		_, ok := f.store.Raw(storage.Key(storage.AppliedPromoKeyPrefix, sessionID))
		assert.False(t, ok)
	})

	t.Run("Failure - Store Error Keeps Previous Promo", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.checkout.ApplyPromo(ctx, "WELCOME10")
		require.NoError(t, err)

		f.store.failSet.Store(true)
		_, err = f.checkout.ApplyPromo(ctx, "SAVE25")

		require.Error(t, err)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeStorage))
		assert.Equal(t, "WELCOME10", f.checkout.Promo().Code)
	})
}

func TestRemovePromo(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)
	_, err := f.checkout.ApplyPromo(ctx, "SAVE25")
	require.NoError(t, err)

	result, err := f.checkout.RemovePromo(ctx)

	require.NoError(t, err)
	assert.Equal(t, models.PromoStatusRemoved, result.Status)
	assert.Nil(t, f.checkout.Promo())
}

func TestCheckoutLoad(t *testing.T) {
	ctx := t.Context()

	t.Run("Success - Restores Promo", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.checkout.ApplyPromo(ctx, "FREESHIP")
		require.NoError(t, err)

		cart := service.NewCartStore(sessionID, f.store, f.catalog, nil)
		reloaded := service.NewCheckoutService(sessionID, cart, f.pricing, f.store, nil)
		require.NoError(t, reloaded.Load(ctx))

		require.NotNil(t, reloaded.Promo())
		assert.Equal(t, "FREESHIP", reloaded.Promo().Code)
	})

	t.Run("Success - Corrupt Promo Ignored", func(t *testing.T) {
		f := newFixture(t)
		f.store.SetRaw(storage.Key(storage.AppliedPromoKeyPrefix, sessionID), []byte("{"))

		require.NoError(t, f.checkout.Load(ctx))
		assert.Nil(t, f.checkout.Promo())
	})

	t.Run("Success - Retired Code Ignored", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.store.Set(ctx, storage.Key(storage.AppliedPromoKeyPrefix, sessionID),
			models.PromoCode{Code: "SUMMER50", Kind: models.PromoPercentage, Value: money("0.5")}))

		require.NoError(t, f.checkout.Load(ctx))
		assert.Nil(t, f.checkout.Promo())
	})
}

func TestTotalsFollowCart(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)

	assert.Equal(t, "0.00", f.checkout.Totals().View().Total)

	_, err := f.cart.Add(ctx, 6, noVariant, 1)
	require.NoError(t, err)
	assertMoney(t, "149.99", f.checkout.Totals().Subtotal)

	_, err = f.cart.SetQuantity(ctx, 6, noVariant, 4)
	require.NoError(t, err)
	assertMoney(t, "599.96", f.checkout.Totals().Subtotal)
	assertMoney(t, "0", f.checkout.Totals().Shipping)

	published := f.events.ofType(events.TotalsChanged)
	require.Len(t, published, 2)
	payload := published[1].Payload.(events.TotalsChangedPayload)
	assertMoney(t, "599.96", payload.Totals.Subtotal)
}

func TestBeginCheckout(t *testing.T) {
	ctx := t.Context()

	t.Run("Failure - Empty Cart", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.checkout.BeginCheckout(ctx)

		require.Error(t, err)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeEmptyCart))
	})

	t.Run("Success - Snapshots Cart And Promo", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.cart.Add(ctx, 3, noVariant, 1)
		require.NoError(t, err)
		_, err = f.checkout.ApplyPromo(ctx, "WELCOME10")
		require.NoError(t, err)

		summary, err := f.checkout.BeginCheckout(ctx)

		require.NoError(t, err)
		require.Len(t, summary.Lines, 1)
		require.NotNil(t, summary.Promo)
		assert.Equal(t, "WELCOME10", summary.Promo.Code)
		assert.Equal(t, "60.00", summary.Totals.Discount)

		var snapshot []models.CartLineItem
		found, err := f.store.Get(ctx, storage.Key(storage.CheckoutCartKeyPrefix, sessionID), &snapshot)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Len(t, snapshot, 1)
	})

	t.Run("Failure - Store Error", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.cart.Add(ctx, 3, noVariant, 1)
		require.NoError(t, err)
		f.store.failSet.Store(true)

		_, err = f.checkout.BeginCheckout(ctx)

		require.Error(t, err)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeStorage))
	})
}
