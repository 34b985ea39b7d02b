package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ResetTokenTTL is fixed; only the session token lifetime is configurable.
const ResetTokenTTL = 5 * time.Minute

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

var (
	ErrMissingSecret = errors.New("jwt secrets must be set")
	ErrSharedSecret  = errors.New("JWT_SECRET and JWT_RESET_PASSWORD_SECRET must differ")
	ErrUnknownStore  = errors.New("unknown STORE_DRIVER")
)

type Config struct {
	Env  string `env:"APP_ENV" envDefault:"dev"`
	Port int    `env:"PORT" envDefault:"3000"`

	StoreDriver   string `env:"STORE_DRIVER" envDefault:"mongo"`
	MongoURI      string `env:"MONGO_URI" envDefault:"mongodb://127.0.0.1:27017"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"commenthub"`

	// DatabaseURL wins over the DB_* pieces when set.
	DatabaseURL string `env:"DATABASE_URL"`
	DBHost      string `env:"DB_HOST" envDefault:"127.0.0.1"`
	DBPort      string `env:"DB_PORT" envDefault:"5432"`
	DBUser      string `env:"DB_USER" envDefault:"commenthub"`
	DBPassword  string `env:"DB_PASSWORD" envDefault:"commenthub"`
	DBName      string `env:"DB_NAME" envDefault:"commenthub"`
	DBSSLMode   string `env:"DB_SSLMODE" envDefault:"disable"`

	JWTSecret              string        `env:"JWT_SECRET"`
	JWTExpiration          time.Duration `env:"JWT_EXPIRATION" envDefault:"1h"`
	JWTResetPasswordSecret string        `env:"JWT_RESET_PASSWORD_SECRET"`

	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
	AdminName     string `env:"ADMIN_NAME" envDefault:"Administrator"`

	OTLPEndpoint     string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	TraceSampleRatio float64 `env:"OTEL_TRACES_SAMPLE_RATIO" envDefault:"1"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	MaxBodyBytes       int64    `env:"MAX_BODY_BYTES" envDefault:"1048576"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	// a missing .env is fine outside of local dev
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.JWTSecret == "" || c.JWTResetPasswordSecret == "" {
		return ErrMissingSecret
	}
	if c.JWTSecret == c.JWTResetPasswordSecret {
		return ErrSharedSecret
	}
	if c.JWTExpiration <= 0 {
		return fmt.Errorf("JWT_EXPIRATION must be positive, got %s", c.JWTExpiration)
	}

	if c.TraceSampleRatio < 0 || c.TraceSampleRatio > 1 {
		return fmt.Errorf("OTEL_TRACES_SAMPLE_RATIO must be within [0,1], got %g", c.TraceSampleRatio)
	}

	switch c.StoreDriver {
	case StoreMongo, StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStore, c.StoreDriver)
	}

	return nil
}

func (c Config) IsDev() bool {
	return c.Env == "dev"
}

func (c Config) SeedAdmin() bool {
	return strings.TrimSpace(c.AdminEmail) != "" && c.AdminPassword != ""
}

func (c Config) DBURL() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName + "?sslmode=" + c.DBSSLMode
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// WithTimeout bounds a single store round trip; the parent is normally the request context.
func WithTimeout(parent context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, duration)
}
