package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/config"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/storage"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/utils"
	"github.com/redis/go-redis/v9"
)

type Store struct {
	client  *redis.Client
	ttl     time.Duration
	timeout time.Duration
}

func NewClient(cfg *config.RedisConnect) (*redis.Client, error) {

	redisURL := cfg.GetDSN()
	slog.Info("Connecting to Redis", slog.String("url", fmt.Sprintf("redis://%s:<password>@%s:%s", cfg.Username, cfg.Host, cfg.Port)))

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		slog.Error("Failed to parse Redis URL", slog.Any("error", err))
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	opt.DB = cfg.DB

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		slog.Error("Failed to connect to Redis", slog.Any("error", err))
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.Info("Successfully connected to Redis")

	return client, nil
}

// New wraps client; ttl <= 0 stores keys without expiry.
func New(client *redis.Client, cfg *config.Storage) *Store {
	return &Store{
		client:  client,
		ttl:     cfg.TTL,
		timeout: cfg.Timeout,
	}
}

func (s *Store) Get(ctx context.Context, key string, value any) (bool, error) {

	ctx, cancel := utils.WithStoreTimeout(ctx, s.timeout)
	defer cancel()

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {

		if errors.Is(err, redis.Nil) {
			return false, nil
		}

		return false, fmt.Errorf("failed to get key %s from redis: %w", key, err)
	}

	if err := json.Unmarshal(data, value); err != nil {
		return false, fmt.Errorf("failed to unmarshal value for key %s: %w: %w", key, storage.ErrCorrupt, err)
	}

	return true, nil
}

func (s *Store) Set(ctx context.Context, key string, value any) error {

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}

	ttl := s.ttl
	if ttl < 0 {
		ttl = 0
	}

	ctx, cancel := utils.WithStoreTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s in redis: %w", key, err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {

	ctx, cancel := utils.WithStoreTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s from redis: %w", key, err)
	}

	return nil
}

// Close leaves the client open; the caller that created it owns it.
func (s *Store) Close() error {
	return nil
}
