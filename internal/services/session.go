package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/catalog"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/events"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/models"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/storage"
)

// Session bundles the per-visitor components that share one storage namespace.
type Session struct {
	ID             string
	Cart           *CartStore
	Checkout       *CheckoutService
	Validator      *CheckoutValidator
	Orders         *OrderSubmitter
	Wishlist       *WishlistService
	RecentlyViewed *RecentlyViewedService
}

type sessionEntry struct {
	once     sync.Once
	session  *Session
	err      error
	ready    atomic.Pointer[Session]
	lastSeen time.Time
	// requests currently holding the session; guarded by SessionManager.mu
	active int
}

type SessionManagerConfig struct {
	Store     storage.Storage
	Catalog   *catalog.Catalog
	Pricing   *PricingEngine
	Rules     *FieldRules
	Bus       *events.Bus
	IdleTTL   time.Duration
	Submitter []SubmitterOption
	Now       func() time.Time
}

// SessionManager lazily opens sessions from storage and evicts idle ones from memory.
// Evicted sessions lose nothing: their state is reloaded on the next request.
type SessionManager struct {
	mu       sync.Mutex
	cfg      SessionManagerConfig
	sessions map[string]*sessionEntry
	now      func() time.Time
}

func NewSessionManager(cfg SessionManagerConfig) *SessionManager {

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &SessionManager{
		cfg:      cfg,
		sessions: make(map[string]*sessionEntry),
		now:      now,
	}
}

// Get opens the session without holding it. Request handlers should use Acquire.
func (m *SessionManager) Get(ctx context.Context, id string) (*Session, error) {

	session, release, err := m.Acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	release()

	return session, nil
}

// Acquire opens the session and keeps it from being swept until release is called.
// release is safe to call more than once.
func (m *SessionManager) Acquire(ctx context.Context, id string) (*Session, func(), error) {

	m.mu.Lock()
	entry, ok := m.sessions[id]
	if !ok {
		entry = &sessionEntry{}
		m.sessions[id] = entry
	}
	entry.lastSeen = m.now()
	entry.active++
	m.mu.Unlock()

	var released sync.Once
	release := func() {
		released.Do(func() {
			m.mu.Lock()
			entry.active--
			entry.lastSeen = m.now()
			m.mu.Unlock()
		})
	}

	entry.once.Do(func() {
		entry.session, entry.err = m.open(ctx, id)
		if entry.err == nil {
			entry.ready.Store(entry.session)
		}
	})

	if entry.err != nil {
		release()

		m.mu.Lock()
		if m.sessions[id] == entry {
			delete(m.sessions, id)
		}
		m.mu.Unlock()

		return nil, nil, entry.err
	}

	return entry.session, release, nil
}

func (m *SessionManager) open(ctx context.Context, id string) (*Session, error) {

	cart := NewCartStore(id, m.cfg.Store, m.cfg.Catalog, m.cfg.Bus)
	checkout := NewCheckoutService(id, cart, m.cfg.Pricing, m.cfg.Store, m.cfg.Bus)
	validator := NewCheckoutValidator(id, m.cfg.Rules, m.cfg.Bus)

	if err := cart.Load(ctx); err != nil {
		return nil, err
	}

	if err := checkout.Load(ctx); err != nil {
		return nil, err
	}

	middleware.LoggerFromContext(ctx).Debug("Session opened", slog.String("sessionId", id))

	return &Session{
		ID:             id,
		Cart:           cart,
		Checkout:       checkout,
		Validator:      validator,
		Orders:         NewOrderSubmitter(id, cart, checkout, validator, m.cfg.Store, m.cfg.Bus, m.cfg.Submitter...),
		Wishlist:       NewWishlistService(id, m.cfg.Store, m.cfg.Catalog),
		RecentlyViewed: NewRecentlyViewedService(id, m.cfg.Store, m.cfg.Catalog),
	}, nil
}

// Sweep drops sessions idle for longer than the configured TTL, sparing any still held by a request
// or with an order in flight.
func (m *SessionManager) Sweep() int {

	if m.cfg.IdleTTL <= 0 {
		return 0
	}

	cutoff := m.now().Add(-m.cfg.IdleTTL)

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0

	for id, entry := range m.sessions {
		if entry.active > 0 || entry.lastSeen.After(cutoff) {
			continue
		}

		if session := entry.ready.Load(); session != nil && session.Orders.State() == models.SubmissionSubmitting {
			continue
		}

		delete(m.sessions, id)
		evicted++
	}

	return evicted
}

// Run sweeps on every tick until ctx is done.
func (m *SessionManager) Run(ctx context.Context, interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				slog.Info("Evicted idle sessions", slog.Int("count", n))
			}
		}
	}
}

func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.sessions)
}
