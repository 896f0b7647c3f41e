package service

import (
	"context"
	"html"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/errors"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/events"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/models"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/storage"
	"github.com/microcosm-cc/bluemonday"
)

const (
	DefaultSuccessRate = 0.9
	orderIDAlphabet    = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	orderIDSuffixLen   = 9
)

// Outcome decides whether a simulated submission goes through.
type Outcome func(ctx context.Context, order *models.Order) bool

func RandomOutcome(successRate float64) Outcome {
	return func(context.Context, *models.Order) bool {
		return rand.Float64() < successRate
	}
}

// NewOrderID returns "VM", the unix time in milliseconds, then nine base-36 characters.
func NewOrderID(now time.Time) string {

	var b strings.Builder
	b.Grow(2 + 13 + orderIDSuffixLen)

	b.WriteString("VM")
	b.WriteString(strconv.FormatInt(now.UnixMilli(), 10))

	for range orderIDSuffixLen {
		b.WriteByte(orderIDAlphabet[rand.IntN(len(orderIDAlphabet))])
	}

	return b.String()
}

type OrderNotifier interface {
	OrderConfirmed(ctx context.Context, order *models.Order) error
}

type SubmitterOption func(*OrderSubmitter)

func WithOutcome(outcome Outcome) SubmitterOption {
	return func(s *OrderSubmitter) { s.outcome = outcome }
}

func WithDelay(delay time.Duration) SubmitterOption {
	return func(s *OrderSubmitter) { s.delay = delay }
}

func WithTimeout(timeout time.Duration) SubmitterOption {
	return func(s *OrderSubmitter) { s.timeout = timeout }
}

func WithNotifier(notifier OrderNotifier) SubmitterOption {
	return func(s *OrderSubmitter) { s.notifier = notifier }
}

func WithClock(now func() time.Time) SubmitterOption {
	return func(s *OrderSubmitter) { s.now = now }
}

func WithOrderIDs(newID func(time.Time) string) SubmitterOption {
	return func(s *OrderSubmitter) { s.newID = newID }
}

// OrderSubmitter runs Idle -> Submitting -> Confirmed | Failed -> Idle for one session.
type OrderSubmitter struct {
	mu        sync.Mutex
	historyMu sync.Mutex
	state     models.SubmissionState
	sessionID string
	cart      *CartStore
	checkout  *CheckoutService
	validator *CheckoutValidator
	store     storage.Storage
	bus       *events.Bus
	notifier  OrderNotifier
	outcome   Outcome
	newID     func(time.Time) string
	now       func() time.Time
	delay     time.Duration
	timeout   time.Duration
	policy    *bluemonday.Policy
}

func NewOrderSubmitter(sessionID string, cart *CartStore, checkout *CheckoutService, validator *CheckoutValidator, store storage.Storage, bus *events.Bus, opts ...SubmitterOption) *OrderSubmitter {

	s := &OrderSubmitter{
		state:     models.SubmissionIdle,
		sessionID: sessionID,
		cart:      cart,
		checkout:  checkout,
		validator: validator,
		store:     store,
		bus:       bus,
		outcome:   RandomOutcome(DefaultSuccessRate),
		newID:     NewOrderID,
		now:       time.Now,
		delay:     2 * time.Second,
		timeout:   10 * time.Second,
		policy:    bluemonday.StrictPolicy(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *OrderSubmitter) State() models.SubmissionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

func (s *OrderSubmitter) setState(state models.SubmissionState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Submit validates the form, waits out the simulated processing and records the order on success.
// The cart is only cleared after the order is safely in the history.
func (s *OrderSubmitter) Submit(ctx context.Context, form models.CheckoutForm) (models.OrderResult, error) {

	logger := middleware.LoggerFromContext(ctx).With(slog.String("sessionId", s.sessionID))

	if s.State() == models.SubmissionSubmitting {
		return models.OrderResult{State: models.SubmissionSubmitting}, errors.SubmissionInProgressError("An order is already being processed")
	}

	formResult := s.validator.ValidateForm(ctx, form)
	if !formResult.Valid {
		appErr := errors.ValidationError("Please fix the errors in the form before submitting.")
		for _, f := range formResult.Invalid() {
			appErr.WithField(f.Field, f.Reason)
		}

		return models.OrderResult{State: s.State()}, appErr
	}

	cart, _ := s.cart.State()
	if cart.IsEmpty() {
		return models.OrderResult{State: s.State()}, errors.EmptyCartError("Your cart is empty. Please add items before placing an order.")
	}

	s.mu.Lock()
	if s.state == models.SubmissionSubmitting {
		s.mu.Unlock()
		return models.OrderResult{State: models.SubmissionSubmitting}, errors.SubmissionInProgressError("An order is already being processed")
	}
	s.state = models.SubmissionSubmitting
	s.mu.Unlock()

	logger.Info("Submitting order", slog.Int("items", cart.ItemCount()))

	order := s.buildOrder(form, cart)

	if err := s.wait(ctx); err != nil {
		logger.Warn("Order submission interrupted", slog.String("error", err.Error()))
		return s.fail(ctx, "Order processing timed out. Please try again.", err)
	}

	if !s.outcome(ctx, order) {
		logger.Warn("Payment processing failed", slog.String("orderId", order.ID))
		return s.fail(ctx, "There was an error processing your order. Please try again.", nil)
	}

	if err := s.prependHistory(ctx, order); err != nil {
		logger.Error("Failed to record order", slog.String("orderId", order.ID), slog.String("error", err.Error()))
		s.setState(models.SubmissionIdle)

		return models.OrderResult{State: models.SubmissionIdle, Retryable: true}, errors.StorageError("Failed to record order").WithError(err)
	}

	if err := s.checkout.Reset(ctx); err != nil {
		logger.Error("Failed to clear checkout data after order", slog.String("orderId", order.ID), slog.String("error", err.Error()))
	}

	if _, err := s.cart.Clear(ctx); err != nil {
		logger.Error("Failed to clear cart after order", slog.String("orderId", order.ID), slog.String("error", err.Error()))
	}

	s.setState(models.SubmissionConfirmed)

	result := models.OrderResult{State: models.SubmissionConfirmed, Order: order}
	s.publish(ctx, result)

	logger.Info("Order confirmed", slog.String("orderId", order.ID), slog.String("total", order.Total.StringFixed(2)))

	if s.notifier != nil {
		if err := s.notifier.OrderConfirmed(ctx, order); err != nil {
			logger.Warn("Failed to send order confirmation", slog.String("orderId", order.ID), slog.String("error", err.Error()))
		}
	}

	return result, nil
}

func (s *OrderSubmitter) wait(ctx context.Context) error {

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *OrderSubmitter) fail(ctx context.Context, reason string, cause error) (models.OrderResult, error) {

	s.setState(models.SubmissionFailed)
	result := models.OrderResult{State: models.SubmissionFailed, Reason: reason, Retryable: true}
	s.publish(ctx, result)
	s.setState(models.SubmissionIdle)

	appErr := errors.SubmissionError(reason)
	if cause != nil {
		appErr.WithError(cause)
	}

	return result, appErr
}

func (s *OrderSubmitter) publish(ctx context.Context, result models.OrderResult) {
	s.bus.Publish(ctx, events.Event{
		Type:      events.OrderResult,
		SessionID: s.sessionID,
		Payload:   events.OrderResultPayload{Result: result},
	})
}

func (s *OrderSubmitter) buildOrder(form models.CheckoutForm, cart models.Cart) *models.Order {

	now := s.now()
	totals := s.checkout.Totals().Rounded()

	contact := form.Contact()
	for _, field := range []*string{
		&contact.Email, &contact.FirstName, &contact.LastName, &contact.Phone,
		&contact.Address, &contact.City, &contact.State, &contact.Zip,
	} {
		*field = s.sanitize(*field)
	}

	method := models.PaymentMethod(strings.TrimSpace(form.PaymentMethod))

	order := &models.Order{
		ID:            s.newID(now),
		Customer:      contact,
		PaymentMethod: method,
		Items:         cart.Lines,
		PromoCode:     promoCode(s.checkout.Promo()),
		Totals:        totals,
		Total:         totals.Total,
		Status:        models.OrderStatusConfirmed,
		CreatedAt:     now.UTC(),
	}

	if method == models.PaymentMethodCard {
		order.CardLast4 = lastFour(form.CardNumber)
	}

	return order
}

// sanitize strips markup; the result is stored as plain text.
func (s *OrderSubmitter) sanitize(value string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(value)))
}

func lastFour(number string) string {

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)

	if len(digits) <= 4 {
		return digits
	}

	return digits[len(digits)-4:]
}

func (s *OrderSubmitter) historyKey() string {
	return storage.Key(storage.OrderHistoryKeyPrefix, s.sessionID)
}

func (s *OrderSubmitter) prependHistory(ctx context.Context, order *models.Order) error {

	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	history, err := s.loadHistory(ctx)
	if err != nil {
		return err
	}

	history = append([]models.Order{*order}, history...)

	return s.store.Set(ctx, s.historyKey(), history)
}

// History returns past orders, newest first.
func (s *OrderSubmitter) History(ctx context.Context) ([]models.Order, error) {

	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	history, err := s.loadHistory(ctx)
	if err != nil {
		return nil, errors.StorageError("Failed to load order history").WithError(err)
	}

	return history, nil
}

func (s *OrderSubmitter) loadHistory(ctx context.Context) ([]models.Order, error) {

	var history []models.Order

	_, err := s.store.Get(ctx, s.historyKey(), &history)
	if err != nil {
		if !storage.IsCorrupt(err) {
			return nil, err
		}

		middleware.LoggerFromContext(ctx).Warn("Discarding unreadable order history", slog.String("sessionId", s.sessionID))
		history = nil
	}

	if history == nil {
		history = []models.Order{}
	}

	return history, nil
}
