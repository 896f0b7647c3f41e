package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/api/handlers"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/config"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/events"
	service "github.com/aaravmahajanofficial/vmjewels-storefront/internal/services"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionHeldForRequest(t *testing.T) {
	e := newEnv(t)

	base := time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)
	var elapsed atomic.Int64
	advance := func() { elapsed.Add(int64(time.Hour)) }

	sessions := service.NewSessionManager(service.SessionManagerConfig{
		Store:   e.store,
		Catalog: e.catalog,
		Pricing: service.NewPricingEngine(config.DefaultPricingRules(), nil),
		Rules:   e.rules,
		Bus:     events.NewBus(),
		IdleTTL: 30 * time.Minute,
		Now:     func() time.Time { return base.Add(time.Duration(elapsed.Load())) },
	})

	h := handlers.NewCartHandler(sessions)

	req := testutils.CreateSessionRequest(http.MethodGet, "/api/v1/cart", nil, sessionID, nil)
	ctx, cancel := context.WithCancel(req.Context())
	defer cancel()

	rr := httptest.NewRecorder()
	h.GetCart()(rr, req.WithContext(ctx))
	require.Equal(t, http.StatusOK, rr.Code)

	advance()
	assert.Equal(t, 0, sessions.Sweep())
	assert.Equal(t, 1, sessions.Len())

	cancel()

	assert.Eventually(t, func() bool {
		advance()
		return sessions.Sweep() == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, sessions.Len())
}
