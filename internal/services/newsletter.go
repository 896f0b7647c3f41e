package service

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/errors"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/models"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/storage"
)

// NewsletterService manages the storefront-wide subscriber list.
type NewsletterService struct {
	mu    sync.Mutex
	store storage.Storage
	rules *FieldRules
	now   func() time.Time
}

func NewNewsletterService(store storage.Storage, rules *FieldRules) *NewsletterService {
	return &NewsletterService{store: store, rules: rules, now: time.Now}
}

// Subscribe matches existing subscribers case-insensitively, so repeat sign-ups are harmless.
func (n *NewsletterService) Subscribe(ctx context.Context, email string) (*models.SubscribeResponse, error) {

	logger := middleware.LoggerFromContext(ctx)

	email = strings.TrimSpace(email)

	if result := n.rules.Check(models.FieldEmail, email); !result.OK {
		return nil, errors.AddValidationError(models.FieldEmail, "Please enter a valid email address.")
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	var subscribers []models.Subscriber

	if _, err := n.store.Get(ctx, storage.SubscribersKey, &subscribers); err != nil {
		if !storage.IsCorrupt(err) {
			return nil, errors.StorageError("Failed to load subscribers").WithError(err)
		}

		logger.Warn("Discarding unreadable subscriber list", slog.String("error", err.Error()))
		subscribers = nil
	}

	if slices.ContainsFunc(subscribers, func(s models.Subscriber) bool { return strings.EqualFold(s.Email, email) }) {
		return &models.SubscribeResponse{
			Email:      email,
			Subscribed: true,
			Message:    "You're already subscribed!",
		}, nil
	}

	subscribers = append(subscribers, models.Subscriber{Email: email, SubscribedAt: n.now().UTC()})

	if err := n.store.Set(ctx, storage.SubscribersKey, subscribers); err != nil {
		return nil, errors.StorageError("Failed to save subscription").WithError(err)
	}

	logger.Info("New newsletter subscriber", slog.Int("subscribers", len(subscribers)))

	return &models.SubscribeResponse{
		Email:      email,
		Subscribed: true,
		Message:    "Thank you for subscribing! You'll hear from us soon.",
	}, nil
}
