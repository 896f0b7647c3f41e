package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/XSAM/otelsql"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/config"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/storage"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/utils"
	"go.opentelemetry.io/otel/attribute"

	_ "github.com/lib/pq"
)

const schema = `
		CREATE TABLE IF NOT EXISTS kv_store (
			key        TEXT PRIMARY KEY,
			value      JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`

// Store persists storefront keys as JSONB rows in a single kv_store table.
type Store struct {
	DB      *sql.DB
	timeout time.Duration
}

// Open connects through an otelsql-instrumented driver so every statement gets a span.
func Open(cfg *config.Database) (*sql.DB, error) {

	db, err := otelsql.Open("postgres", cfg.GetDSN(),
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func New(db *sql.DB, cfg *config.Storage) *Store {
	return &Store{DB: db, timeout: cfg.Timeout}
}

func (s *Store) EnsureSchema(ctx context.Context) error {

	dbCtx, cancel := utils.WithStoreTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.DB.ExecContext(dbCtx, schema); err != nil {
		return fmt.Errorf("failed to create kv_store table: %w", err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, key string, value any) (bool, error) {

	dbCtx, cancel := utils.WithStoreTimeout(ctx, s.timeout)
	defer cancel()

	query := `SELECT value FROM kv_store WHERE key = $1`

	var data []byte

	err := s.DB.QueryRowContext(dbCtx, query, key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}

		return false, fmt.Errorf("failed to get key %s from postgres: %w", key, err)
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

	dbCtx, cancel := utils.WithStoreTimeout(ctx, s.timeout)
	defer cancel()

	query := `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`

	if _, err := s.DB.ExecContext(dbCtx, query, key, data); err != nil {
		return fmt.Errorf("failed to set key %s in postgres: %w", key, err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {

	dbCtx, cancel := utils.WithStoreTimeout(ctx, s.timeout)
	defer cancel()

	query := `DELETE FROM kv_store WHERE key = $1`

	if _, err := s.DB.ExecContext(dbCtx, query, key); err != nil {
		return fmt.Errorf("failed to delete key %s from postgres: %w", key, err)
	}

	return nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}
