package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

type Config struct {
	DatabaseHost     string `env:"DATABASE_HOST,default=localhost"`
	DatabasePort     string `env:"DATABASE_PORT,default=5432"`
	DatabaseUser     string `env:"DATABASE_USER,default=postgres"`
	DatabasePassword string `env:"DATABASE_PASSWORD,default=password"`
	DatabaseName     string `env:"DATABASE_NAME,default=storegg"`

	ServerPort string `env:"SERVER_PORT,default=8080"`
	JWTSecret  string `env:"JWT_SECRET,default=secret"`

	CatalogURL     string        `env:"CATALOG_URL,default=https://fakestoreapi.com/products"`
	CatalogTimeout time.Duration `env:"CATALOG_TIMEOUT,default=10s"`

	StartingBalance int64 `env:"STARTING_BALANCE,default=500"`
	StrictFunds     bool  `env:"STRICT_FUNDS,default=false"`
	UniqueOwnership bool  `env:"UNIQUE_OWNERSHIP,default=false"`

	LedgerBackend string `env:"LEDGER_BACKEND,default=postgres"`
	RedisAddr     string `env:"REDIS_ADDR,default=localhost:6379"`

	RateLimitRPS   int           `env:"RATE_LIMIT_RPS,default=20"`
	RateLimitBurst int           `env:"RATE_LIMIT_BURST,default=40"`
	RateLimitIdle  time.Duration `env:"RATE_LIMIT_IDLE,default=10m"`
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LedgerBackend {
	case BackendPostgres, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("unknown LEDGER_BACKEND %q", c.LedgerBackend)
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	return nil
}

// DSN is the lib/pq connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DatabaseHost,
		c.DatabasePort,
		c.DatabaseUser,
		c.DatabasePassword,
		c.DatabaseName,
	)
}
