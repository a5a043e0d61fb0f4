package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port string
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MigrationsPath  string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CartConfig selects the durable store behind the cart: "file" keeps one JSON
// document per user under Dir, "redis" keeps the same document in Redis.
type CartConfig struct {
	Storage string
	Dir     string
}

type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Cart     CartConfig
}

// NewConfig loads an optional .env file and reads the configuration from the
// environment. Missing required values are reported as errors, not defaulted.
func NewConfig() (*Config, error) {
	// .env is a convenience for local runs; absence is not an error.
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.App.Port = getEnv("APP_PORT", "8080")

	cfg.Postgres.Host = os.Getenv("DB_HOST")
	if cfg.Postgres.Host == "" {
		return nil, fmt.Errorf("config: DB_HOST is required")
	}
	cfg.Postgres.Port = getEnv("DB_PORT", "5432")
	cfg.Postgres.User = os.Getenv("DB_USER")
	if cfg.Postgres.User == "" {
		return nil, fmt.Errorf("config: DB_USER is required")
	}
	cfg.Postgres.Password = os.Getenv("DB_PASSWORD")
	if cfg.Postgres.Password == "" {
		return nil, fmt.Errorf("config: DB_PASSWORD is required")
	}
	cfg.Postgres.DBName = os.Getenv("DB_NAME")
	if cfg.Postgres.DBName == "" {
		return nil, fmt.Errorf("config: DB_NAME is required")
	}
	cfg.Postgres.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Postgres.MigrationsPath = getEnv("DB_MIGRATIONS_PATH", "migrations")

	maxConns, err := getEnvInt("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, err
	}
	cfg.Postgres.MaxConns = int32(maxConns)

	minConns, err := getEnvInt("DB_MIN_CONNS", 2)
	if err != nil {
		return nil, err
	}
	cfg.Postgres.MinConns = int32(minConns)

	lifetimeMin, err := getEnvInt("DB_MAX_CONN_LIFETIME_MIN", 30)
	if err != nil {
		return nil, err
	}
	cfg.Postgres.MaxConnLifetime = time.Duration(lifetimeMin) * time.Minute

	cfg.Cart.Storage = getEnv("CART_STORAGE", "file")
	if cfg.Cart.Storage != "file" && cfg.Cart.Storage != "redis" {
		return nil, fmt.Errorf("config: CART_STORAGE must be 'file' or 'redis', got %q", cfg.Cart.Storage)
	}
	cfg.Cart.Dir = getEnv("CART_DIR", "carts")

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	cfg.Redis.DB = redisDB

	if cfg.Cart.Storage == "redis" && cfg.Redis.Addr == "" {
		return nil, fmt.Errorf("config: REDIS_ADDR is required when CART_STORAGE=redis")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be an integer, got %q", key, v)
	}
	return n, nil
}
