package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type HTTP struct {
	Addr string
}

type GRPC struct {
	Addr string
}

type Database struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// Migrate applies the embedded schema migrations at startup.
	Migrate bool
}

type Redis struct {
	// Addr may be empty, which disables idempotency keys.
	Addr           string
	IdempotencyTTL time.Duration
}

type Auth struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type Purchase struct {
	CommissionRate decimal.Decimal
	Timeout        time.Duration
}

type Telemetry struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

type Log struct {
	Level string
	File  string
}

type Config struct {
	HTTP      HTTP
	GRPC      GRPC
	Database  Database
	Redis     Redis
	Auth      Auth
	Purchase  Purchase
	Telemetry Telemetry
	Log       Log
}

func Default() Config {
	return Config{
		HTTP: HTTP{Addr: ":8080"},
		GRPC: GRPC{Addr: ":50051"},
		Database: Database{
			Driver:          "mysql",
			DSN:             "root:root@tcp(localhost:3306)/artisan_market",
			MaxOpenConns:    50,
			MaxIdleConns:    25,
			ConnMaxLifetime: 5 * time.Minute,
			Migrate:         true,
		},
		Redis: Redis{
			Addr:           "localhost:6379",
			IdempotencyTTL: 24 * time.Hour,
		},
		Auth: Auth{
			JWTSecret: "change-me-in-production",
			TokenTTL:  30 * time.Minute,
		},
		Purchase: Purchase{
			CommissionRate: decimal.RequireFromString("0.05"),
			Timeout:        5 * time.Second,
		},
		Telemetry: Telemetry{
			Enabled:     false,
			Endpoint:    "localhost:4318",
			ServiceName: "artisan-market",
		},
		Log: Log{Level: "info"},
	}
}

// Load reads an optional .env file and the environment over Default.
// Priority: ENV > .env file > defaults. A malformed value is an error rather
// than a silent fallback.
func Load(envPath string) (Config, error) {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	l := loader{}
	l.string("HTTP_ADDR", &cfg.HTTP.Addr)
	l.string("GRPC_ADDR", &cfg.GRPC.Addr)

	l.string("DB_DRIVER", &cfg.Database.Driver)
	l.string("DATABASE_DSN", &cfg.Database.DSN)
	l.int("DB_MAX_OPEN_CONNS", &cfg.Database.MaxOpenConns)
	l.int("DB_MAX_IDLE_CONNS", &cfg.Database.MaxIdleConns)
	l.duration("DB_CONN_MAX_LIFETIME", &cfg.Database.ConnMaxLifetime)
	l.bool("DB_MIGRATE", &cfg.Database.Migrate)

	if v, ok := os.LookupEnv("REDIS_ADDR"); ok {
		cfg.Redis.Addr = v
	}
	l.duration("IDEMPOTENCY_TTL", &cfg.Redis.IdempotencyTTL)

	l.string("JWT_SECRET", &cfg.Auth.JWTSecret)
	l.duration("TOKEN_TTL", &cfg.Auth.TokenTTL)

	l.decimal("COMMISSION_RATE", &cfg.Purchase.CommissionRate)
	l.duration("PURCHASE_TIMEOUT", &cfg.Purchase.Timeout)

	l.bool("OTEL_ENABLED", &cfg.Telemetry.Enabled)
	l.string("OTEL_EXPORTER_OTLP_ENDPOINT", &cfg.Telemetry.Endpoint)
	l.string("SERVICE_NAME", &cfg.Telemetry.ServiceName)

	l.string("LOG_LEVEL", &cfg.Log.Level)
	l.string("LOG_FILE", &cfg.Log.File)

	if l.err != nil {
		return Config{}, l.err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres":
	default:
		return fmt.Errorf("DB_DRIVER %q: want mysql or postgres", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("DATABASE_DSN is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	rate := c.Purchase.CommissionRate
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("COMMISSION_RATE %s out of range [0, 1]", rate)
	}
	return nil
}

// loader keeps the first parse error so Load can report it once.
type loader struct {
	err error
}

func (l *loader) lookup(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != "" && l.err == nil
}

func (l *loader) fail(key, value string, err error) {
	l.err = fmt.Errorf("parse %s=%q: %w", key, value, err)
}

func (l *loader) string(key string, dst *string) {
	if v, ok := l.lookup(key); ok {
		*dst = v
	}
}

func (l *loader) int(key string, dst *int) {
	if v, ok := l.lookup(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			l.fail(key, v, err)
			return
		}
		*dst = n
	}
}

func (l *loader) bool(key string, dst *bool) {
	if v, ok := l.lookup(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			l.fail(key, v, err)
			return
		}
		*dst = b
	}
}

// duration accepts Go duration strings ("750ms", "24h").
func (l *loader) duration(key string, dst *time.Duration) {
	if v, ok := l.lookup(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			l.fail(key, v, err)
			return
		}
		*dst = d
	}
}

func (l *loader) decimal(key string, dst *decimal.Decimal) {
	if v, ok := l.lookup(key); ok {
		d, err := decimal.NewFromString(v)
		if err != nil {
			l.fail(key, v, err)
			return
		}
		*dst = d
	}
}
