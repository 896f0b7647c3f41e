package health

import (
	"context"
	"fmt"
	"time"

	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/config"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/storage"
	"github.com/hellofresh/health-go/v5"
	"github.com/hellofresh/health-go/v5/checks/postgres"
	healthRedis "github.com/hellofresh/health-go/v5/checks/redis"
)

const probeKey = "vmjewels-health-probe"

// NewHealthHandler reports on the configured storage backend plus a read round-trip through store.
func NewHealthHandler(cfg *config.Config, store storage.Storage) (*health.Health, error) {

	checks := []health.Config{
		{
			Name:      "storage",
			Timeout:   2 * time.Second,
			SkipOnErr: false,
			Check: func(ctx context.Context) error {
				var probe struct{}
				if _, err := store.Get(ctx, probeKey, &probe); err != nil && !storage.IsCorrupt(err) {
					return fmt.Errorf("storage round-trip failed: %w", err)
				}
				return nil
			},
		},
	}

	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		checks = append(checks, health.Config{
			Name:      "database",
			Timeout:   3 * time.Second,
			SkipOnErr: false,
			Check: postgres.New(postgres.Config{
				DSN: cfg.Database.GetDSN(),
			}),
		})
	case config.BackendRedis:
		checks = append(checks, health.Config{
			Name:      "redis",
			Timeout:   2 * time.Second,
			SkipOnErr: false,
			Check: healthRedis.New(healthRedis.Config{
				DSN: cfg.RedisConnect.GetDSN(),
			}),
		})
	}

	h, err := health.New(
		health.WithComponent(health.Component{
			Name:    cfg.Otel.ServiceName,
			Version: "1.0.0",
		}),
		health.WithSystemInfo(),
		health.WithChecks(checks...),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create health instance: %w", err)
	}

	return h, nil
}
