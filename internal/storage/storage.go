package storage

import (
	"context"
	"errors"
)

// ErrCorrupt marks a stored value that exists but cannot be decoded.
var ErrCorrupt = errors.New("corrupt stored value")

// Storage is a string-keyed, JSON-valued store with a single writer per key.
type Storage interface {
	Get(ctx context.Context, key string, value any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
	Close() error
}

func Key(prefix string, id string) string {
	return prefix + ":" + id
}

const (
	CartKeyPrefix           = "vmjewels-cart"
	CheckoutCartKeyPrefix   = "vmjewels-checkout-cart"
	AppliedPromoKeyPrefix   = "vmjewels-applied-promo"
	OrderHistoryKeyPrefix   = "vmjewels-order-history"
	WishlistKeyPrefix       = "vmjewels-wishlist"
	RecentlyViewedKeyPrefix = "vmjewels-recently-viewed"

	SubscribersKey = "vmjewels-subscribers"
)

// IsCorrupt reports whether err came from decoding a malformed stored value.
func IsCorrupt(err error) bool {
	return errors.Is(err, ErrCorrupt)
}
