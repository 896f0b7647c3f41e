package handlers_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/api/handlers"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/catalog"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/config"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/events"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/models"
	service "github.com/aaravmahajanofficial/vmjewels-storefront/internal/services"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/storage/memory"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/testutils"
	"github.com/stretchr/testify/require"
)

const sessionID = "8d0f9a4e-2b7c-4f51-a3d6-6e2c1b9f0a77"

type env struct {
	store    *memory.Store
	catalog  *catalog.Catalog
	sessions *service.SessionManager
	rules    *service.FieldRules
	approve  bool
}

func newEnv(t *testing.T) *env {
	t.Helper()

	e := &env{store: memory.New(), catalog: catalog.Default(), approve: true}
	now := func() time.Time { return time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC) }
	e.rules = service.NewFieldRules(now)

	e.sessions = service.NewSessionManager(service.SessionManagerConfig{
		Store:   e.store,
		Catalog: e.catalog,
		Pricing: service.NewPricingEngine(config.DefaultPricingRules(), nil),
		Rules:   e.rules,
		Bus:     events.NewBus(),
		Submitter: []service.SubmitterOption{
			service.WithDelay(0),
			service.WithOutcome(func(context.Context, *models.Order) bool { return e.approve }),
		},
	})

	return e
}

func (e *env) session(t *testing.T) *service.Session {
	t.Helper()

	s, err := e.sessions.Get(t.Context(), sessionID)
	require.NoError(t, err)

	return s
}

func serve(h http.HandlerFunc, method, target string, body io.Reader, pathParams map[string]string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h(rr, testutils.CreateSessionRequest(method, target, body, sessionID, pathParams))

	return rr
}

func validForm() models.CheckoutForm {
	return models.CheckoutForm{
		Email:         "jane@example.com",
		FirstName:     "Jane",
		LastName:      "Doe",
		Address:       "1 Main St",
		City:          "New York",
		State:         "NY",
		Zip:           "10001",
		PaymentMethod: "card",
		CardName:      "Jane Doe",
		CardNumber:    "4111111111111111",
		Expiry:        "12/30",
		CVV:           "123",
	}
}

var _ handlers.SessionProvider = (*service.SessionManager)(nil)
