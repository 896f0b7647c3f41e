package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/shopspring/decimal"
)

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type HTTPServer struct {
	Addr            string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8082"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// Storage selects the key-value backend that stands in for browser local storage.
type Storage struct {
	Backend string        `yaml:"backend" env:"STORAGE_BACKEND" env-default:"memory"`
	Timeout time.Duration `yaml:"timeout" env:"STORAGE_TIMEOUT" env-default:"2s"`
	TTL     time.Duration `yaml:"ttl" env:"STORAGE_TTL" env-default:"0s"`
}

type Database struct {
	Host            string        `yaml:"PG_HOST" env:"PG_HOST" env-default:"localhost"`
	Port            string        `yaml:"PG_PORT" env:"PG_PORT" env-default:"5432"`
	User            string        `yaml:"PG_USER" env:"PG_USER"`
	Password        string        `yaml:"PG_PASSWORD" env:"PG_PASSWORD"`
	Name            string        `yaml:"PG_DBNAME" env:"PG_DBNAME"`
	SSLMode         string        `yaml:"PG_SSLMODE" env:"PG_SSLMODE" env-default:"require"`
	MaxOpenConns    int           `yaml:"MAX_OPEN_CONNS" env:"PG_MAX_OPEN_CONNS" env-default:"10"`
	MaxIdleConns    int           `yaml:"MAX_IDLE_CONNS" env:"PG_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetime time.Duration `yaml:"CONN_MAX_LIFETIME" env:"PG_CONN_MAX_LIFETIME" env-default:"30m"`
	ConnMaxIdleTime time.Duration `yaml:"CONN_MAX_IDLE_TIME" env:"PG_CONN_MAX_IDLE_TIME" env-default:"5m"`
}

type RedisConnect struct {
	Host     string `yaml:"REDIS_HOST" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"REDIS_PORT" env:"REDIS_PORT" env-default:"6379"`
	Username string `yaml:"REDIS_USER" env:"REDIS_USER"`
	Password string `yaml:"REDIS_PASSWORD" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"REDIS_DB" env:"REDIS_DB" env-default:"0"`
}

type Security struct {
	SessionKey string        `yaml:"SESSION_KEY" env:"SESSION_KEY" env-required:"true"`
	SessionTTL time.Duration `yaml:"SESSION_TTL" env:"SESSION_TTL" env-default:"720h"`
}

// Sessions bounds how long an idle storefront session stays in memory.
type Sessions struct {
	IdleTTL       time.Duration `yaml:"idle_ttl" env:"SESSION_IDLE_TTL" env-default:"30m"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"SESSION_SWEEP_INTERVAL" env-default:"5m"`
}

type Pricing struct {
	FreeShippingThreshold string `yaml:"FREE_SHIPPING_THRESHOLD" env:"FREE_SHIPPING_THRESHOLD" env-default:"500.00"`
	FlatShippingFee       string `yaml:"FLAT_SHIPPING_FEE" env:"FLAT_SHIPPING_FEE" env-default:"15.00"`
	TaxRate               string `yaml:"TAX_RATE" env:"TAX_RATE" env-default:"0.08"`
}

type PricingRules struct {
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
	TaxRate               decimal.Decimal
}

type Submission struct {
	SuccessRate float64       `yaml:"SUCCESS_RATE" env:"SUBMISSION_SUCCESS_RATE" env-default:"0.9"`
	Delay       time.Duration `yaml:"DELAY" env:"SUBMISSION_DELAY" env-default:"2s"`
	Timeout     time.Duration `yaml:"TIMEOUT" env:"SUBMISSION_TIMEOUT" env-default:"10s"`
}

type SendGrid struct {
	APIKey    string `yaml:"API_KEY" env:"SENDGRID_API_KEY"`
	FromEmail string `yaml:"FROM_EMAIL" env:"SENDGRID_FROM_EMAIL" env-default:"orders@vmjewels.com"`
	FromName  string `yaml:"FROM_NAME" env:"SENDGRID_FROM_NAME" env-default:"VM Jewels"`
}

type Otel struct {
	ServiceName      string  `yaml:"SERVICE_NAME" env:"OTEL_SERVICE_NAME" env-default:"vmjewels-storefront"`
	ExporterEndpoint string  `yaml:"EXPORTER_ENDPOINT" env:"OTEL_EXPORTER_ENDPOINT"`
	SamplerRatio     float64 `yaml:"SAMPLER_RATIO" env:"OTEL_SAMPLER_RATIO" env-default:"1"`
}

type Config struct {
	Env          string `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer   `yaml:"http_server"`
	Storage      Storage      `yaml:"storage"`
	Database     Database     `yaml:"database"`
	RedisConnect RedisConnect `yaml:"redis"`
	Security     Security     `yaml:"security"`
	Sessions     Sessions     `yaml:"sessions"`
	Pricing      Pricing      `yaml:"pricing"`
	Submission   Submission   `yaml:"submission"`
	SendGrid     SendGrid     `yaml:"sendgrid"`
	Otel         Otel         `yaml:"otel"`
}

func MustLoad() *Config {

	var configPath string

	configPath = os.Getenv("CONFIG_PATH")

	if configPath == "" {

		flags := flag.String("config", "", "gets the config flag value")

		flag.Parse()

		configPath = *flags

		if configPath == "" {

			log.Fatal("Config path is not set")

		}

	}

	cfg, err := LoadConfigFromPath(configPath)
	if err != nil {
		log.Fatalf("can not load config: %s", err.Error())
	}

	return cfg

}

func LoadConfigFromPath(configPath string) (*Config, error) {

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("can not read config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the cross-field rules cleanenv tags cannot express.
func (c *Config) Validate() error {

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.RedisConnect.Host == "" {
			return errors.New("redis backend requires REDIS_HOST")
		}
	case BackendPostgres:
		if c.Database.User == "" || c.Database.Name == "" {
			return errors.New("postgres backend requires PG_USER and PG_DBNAME")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if c.Submission.SuccessRate < 0 || c.Submission.SuccessRate > 1 {
		return fmt.Errorf("submission success rate must be within [0,1], got %v", c.Submission.SuccessRate)
	}

	if _, err := c.Pricing.Rules(); err != nil {
		return err
	}

	return nil
}

func (p Pricing) Rules() (PricingRules, error) {

	threshold, err := decimal.NewFromString(p.FreeShippingThreshold)
	if err != nil {
		return PricingRules{}, fmt.Errorf("invalid FREE_SHIPPING_THRESHOLD: %w", err)
	}

	fee, err := decimal.NewFromString(p.FlatShippingFee)
	if err != nil {
		return PricingRules{}, fmt.Errorf("invalid FLAT_SHIPPING_FEE: %w", err)
	}

	rate, err := decimal.NewFromString(p.TaxRate)
	if err != nil {
		return PricingRules{}, fmt.Errorf("invalid TAX_RATE: %w", err)
	}

	if threshold.IsNegative() || fee.IsNegative() || rate.IsNegative() {
		return PricingRules{}, errors.New("pricing values must not be negative")
	}

	return PricingRules{FreeShippingThreshold: threshold, FlatShippingFee: fee, TaxRate: rate}, nil
}

// DefaultPricingRules are the storefront's long-standing numbers: free shipping from 500.00, else 15.00, 8% tax.
func DefaultPricingRules() PricingRules {
	return PricingRules{
		FreeShippingThreshold: decimal.RequireFromString("500.00"),
		FlatShippingFee:       decimal.RequireFromString("15.00"),
		TaxRate:               decimal.RequireFromString("0.08"),
	}
}

func (d *Database) GetDSN() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

func (r *RedisConnect) GetDSN() string {
	return fmt.Sprintf("redis://%s:%s@%s:%s", r.Username, r.Password, r.Host, r.Port)
}
