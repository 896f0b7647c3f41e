package utils

import (
	"context"
	"time"
)

const DefaultStoreTimeout = 5 * time.Second

// WithStoreTimeout bounds a single storage round-trip; d <= 0 falls back to DefaultStoreTimeout.
func WithStoreTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultStoreTimeout
	}

	return context.WithTimeout(ctx, d)
}
