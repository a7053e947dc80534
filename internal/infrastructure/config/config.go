package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// DeviceSecret signs the device tokens that identify a browser.
	DeviceSecret string `env:"DEVICE_SECRET"`
	// TokenSealKey encrypts bearer tokens at rest.
	TokenSealKey string `env:"TOKEN_SEAL_KEY"`

	Mongo   MongoConfig
	Redis   RedisConfig
	Backend BackendConfig
	Cart    CartConfig
	Guard   GuardConfig
	Queue   QueueConfig
	Notices NoticeConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=storefront_session"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,      default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,        default=0"`
	PoolSize int    `env:"REDIS_POOL_SIZE, default=0"`
}

type BackendConfig struct {
	BaseURL string        `env:"BACKEND_BASE_URL, default=http://localhost:5000/api"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT,  default=10s"`
}

type CartConfig struct {
	GuestPolicy    string        `env:"CART_GUEST_POLICY, default=adopt"`
	IdleTTL        time.Duration `env:"CART_IDLE_TTL,     default=30m"`
	AttributionTTL time.Duration `env:"ATTRIBUTION_TTL,   default=720h"`
}

type GuardConfig struct {
	EnforceCompleteness bool `env:"GUARD_ENFORCE_COMPLETENESS, default=false"`
}

type QueueConfig struct {
	Workers int `env:"QUEUE_WORKERS, default=4"`
}

type NoticeConfig struct {
	TTL time.Duration `env:"NOTICE_TTL, default=10m"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration through l and validates it.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.Env == "production" {
		if c.DeviceSecret == "" {
			errs = append(errs, errors.New("DEVICE_SECRET is required in production"))
		}
		if c.TokenSealKey == "" {
			errs = append(errs, errors.New("TOKEN_SEAL_KEY is required in production"))
		}
	}
	switch c.Cart.GuestPolicy {
	case "adopt", "merge":
	default:
		errs = append(errs, fmt.Errorf("CART_GUEST_POLICY must be adopt or merge, got %q", c.Cart.GuestPolicy))
	}
	if c.Backend.Timeout <= 0 {
		errs = append(errs, errors.New("BACKEND_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
