package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/api/handlers"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/catalog"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/config"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/events"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/health"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/metrics"
	service "github.com/aaravmahajanofficial/vmjewels-storefront/internal/services"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/storage"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/storage/memory"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/storage/postgres"
	redisstore "github.com/aaravmahajanofficial/vmjewels-storefront/internal/storage/redis"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/telemetry"
	"github.com/aaravmahajanofficial/vmjewels-storefront/pkg/sendgrid"
	"github.com/prometheus/client_golang/prometheus"
)

// openStorage returns the configured backend and a closer for its underlying connection.
func openStorage(ctx context.Context, cfg *config.Config) (storage.Storage, func() error, error) {

	switch cfg.Storage.Backend {
	case config.BackendRedis:
		client, err := redisstore.NewClient(&cfg.RedisConnect)
		if err != nil {
			return nil, nil, err
		}

		return redisstore.New(client, &cfg.Storage), client.Close, nil

	case config.BackendPostgres:
		db, err := postgres.Open(&cfg.Database)
		if err != nil {
			return nil, nil, err
		}

		store := postgres.New(db, &cfg.Storage)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}

		return store, store.Close, nil

	case config.BackendMemory:
		store := memory.New()
		return store, store.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

func main() {

	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load config
	cfg := config.MustLoad()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, &cfg.Otel, cfg.Env)
	if err != nil {
		slog.Error("❌ Error setting up tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	store, closeStore, err := openStorage(ctx, cfg)
	if err != nil {
		slog.Error("❌ Error opening storage", slog.String("backend", cfg.Storage.Backend), slog.String("error", err.Error()))
		os.Exit(1)
	}

	defer func() {
		if err := closeStore(); err != nil {
			slog.Error("⚠️ Error closing storage", slog.String("error", err.Error()))
		} else {
			slog.Info("✅ Storage closed")
		}
	}()

	rules, err := cfg.Pricing.Rules()
	if err != nil {
		slog.Error("❌ Invalid pricing config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	bus := events.NewBus()
	metrics.NewStorefront(prometheus.DefaultRegisterer).Subscribe(bus)

	products := catalog.Default()
	fieldRules := service.NewFieldRules(nil)

	submitterOpts := []service.SubmitterOption{
		service.WithOutcome(service.RandomOutcome(cfg.Submission.SuccessRate)),
		service.WithDelay(cfg.Submission.Delay),
		service.WithTimeout(cfg.Submission.Timeout),
	}

	if cfg.SendGrid.APIKey != "" {
		emailService := sendgrid.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
		submitterOpts = append(submitterOpts, service.WithNotifier(service.NewNotificationService(emailService)))
	} else {
		slog.Warn("SendGrid API key not set; order confirmation emails are disabled")
	}

	sessions := service.NewSessionManager(service.SessionManagerConfig{
		Store:     store,
		Catalog:   products,
		Pricing:   service.NewPricingEngine(rules, nil),
		Rules:     fieldRules,
		Bus:       bus,
		IdleTTL:   cfg.Sessions.IdleTTL,
		Submitter: submitterOpts,
	})

	go sessions.Run(ctx, cfg.Sessions.SweepInterval)

	healthChecker, err := health.NewHealthHandler(cfg, store)
	if err != nil {
		slog.Error("❌ Error creating health checks", slog.String("error", err.Error()))
		os.Exit(1)
	}

	sessionMiddleware := middleware.NewSessionMiddleware([]byte(cfg.Security.SessionKey), cfg.Security.SessionTTL)

	productHandler := handlers.NewProductHandler(service.NewProductService(products), sessions)
	cartHandler := handlers.NewCartHandler(sessions)
	checkoutHandler := handlers.NewCheckoutHandler(sessions)
	orderHandler := handlers.NewOrderHandler(sessions)
	wishlistHandler := handlers.NewWishlistHandler(sessions)
	newsletterHandler := handlers.NewNewsletterHandler(service.NewNewsletterService(store, fieldRules))

	slog.Info("storage initialized", slog.String("env", cfg.Env), slog.String("backend", cfg.Storage.Backend))

	// Setup router
	routerMux := http.NewServeMux()

	route := func(pattern string, h http.HandlerFunc) {
		routerMux.Handle(pattern, telemetry.Handler(sessionMiddleware.Attach(h), pattern))
	}

	route("GET /api/v1/products", productHandler.ListProducts())
	route("GET /api/v1/products/{id}", productHandler.GetProduct())
	route("GET /api/v1/recently-viewed", productHandler.RecentlyViewed())
	route("GET /api/v1/cart", cartHandler.GetCart())
	route("DELETE /api/v1/cart", cartHandler.ClearCart())
	route("POST /api/v1/cart/items", cartHandler.AddItem())
	route("PUT /api/v1/cart/items", cartHandler.UpdateQuantity())
	route("DELETE /api/v1/cart/items", cartHandler.RemoveItem())
	route("POST /api/v1/cart/items/increase", cartHandler.IncreaseItem())
	route("POST /api/v1/cart/items/decrease", cartHandler.DecreaseItem())
	route("POST /api/v1/cart/promo", cartHandler.ApplyPromo())
	route("DELETE /api/v1/cart/promo", cartHandler.RemovePromo())
	route("GET /api/v1/cart/totals", cartHandler.Totals())
	route("POST /api/v1/checkout", checkoutHandler.BeginCheckout())
	route("POST /api/v1/checkout/validate-field", checkoutHandler.ValidateField())
	route("POST /api/v1/checkout/validate", checkoutHandler.ValidateForm())
	route("POST /api/v1/orders", orderHandler.CreateOrder())
	route("GET /api/v1/orders", orderHandler.ListOrders())
	route("GET /api/v1/wishlist", wishlistHandler.List())
	route("POST /api/v1/wishlist/{id}", wishlistHandler.Add())
	route("DELETE /api/v1/wishlist/{id}", wishlistHandler.Remove())
	routerMux.Handle("POST /api/v1/newsletter", telemetry.Handler(newsletterHandler.Subscribe(), "POST /api/v1/newsletter"))
	routerMux.Handle("GET /health", healthChecker.Handler())
	routerMux.Handle("GET /metrics", metrics.Handler(prometheus.DefaultGatherer))

	// Middleware chaining
	var handler http.Handler = routerMux
	handler = metrics.NewHTTP(prometheus.DefaultRegisterer).Middleware(handler)
	handler = middleware.Logging(handler)

	// Setup http server
	server := http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.Addr))

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("❌ Failed to start server", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("⚠️ Tracer shutdown encountered an issue", slog.String("error", err.Error()))
	}
}
