package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	Store     StoreConfig
	DB        DBConfig
	Redis     RedisConfig
	Catalog   CatalogConfig
	Checkout  CheckoutConfig
	RateLimit RateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FRESHCART_APP_ENV" required:"true"`
	Port         string `envconfig:"FRESHCART_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"FRESHCART_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"FRESHCART_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"FRESHCART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// HTTPConfig tunes the API server and the browser origins allowed to call it.
type HTTPConfig struct {
	CORSAllowedOrigins []string      `envconfig:"FRESHCART_HTTP_CORS_ORIGINS" default:"http://localhost:3000"`
	ReadTimeout        time.Duration `envconfig:"FRESHCART_HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout       time.Duration `envconfig:"FRESHCART_HTTP_WRITE_TIMEOUT" default:"15s"`
	ShutdownTimeout    time.Duration `envconfig:"FRESHCART_HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
}

// StoreConfig selects the durable key-value backend holding carts and wishlists.
type StoreConfig struct {
	Backend         string `envconfig:"FRESHCART_STORE_BACKEND" default:"sql"`
	Namespace       string `envconfig:"FRESHCART_STORE_NAMESPACE" default:"fc"`
	EngineCacheSize int    `envconfig:"FRESHCART_STORE_ENGINE_CACHE_SIZE" default:"1024"`
}

type DBConfig struct {
	Driver      string `envconfig:"FRESHCART_DB_DRIVER" default:"sqlite"`
	DSN         string `envconfig:"FRESHCART_DB_DSN" default:"file:freshcart.db?cache=shared"`
	AutoMigrate bool   `envconfig:"FRESHCART_DB_AUTO_MIGRATE" default:"false"`

	MaxOpenConns    int           `envconfig:"FRESHCART_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"FRESHCART_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"FRESHCART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FRESHCART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FRESHCART_REDIS_URL"`
	Address      string        `envconfig:"FRESHCART_REDIS_ADDR"`
	Password     string        `envconfig:"FRESHCART_REDIS_PASSWORD"`
	DB           int           `envconfig:"FRESHCART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FRESHCART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FRESHCART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FRESHCART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FRESHCART_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"FRESHCART_REDIS_WRITE_TIMEOUT" default:"3s"`
}

// CatalogConfig bounds the resident product set and the browse pages cut from it.
type CatalogConfig struct {
	FetchLimit      int    `envconfig:"FRESHCART_CATALOG_FETCH_LIMIT" default:"500"`
	DefaultPageSize int    `envconfig:"FRESHCART_CATALOG_PAGE_SIZE" default:"12"`
	MaxPageSize     int    `envconfig:"FRESHCART_CATALOG_MAX_PAGE_SIZE" default:"60"`
	SeedFile        string `envconfig:"FRESHCART_CATALOG_SEED_FILE"`
}

type CheckoutConfig struct {
	DeliveryFee           decimal.Decimal `envconfig:"FRESHCART_CHECKOUT_DELIVERY_FEE" default:"40.00"`
	FreeDeliveryThreshold decimal.Decimal `envconfig:"FRESHCART_CHECKOUT_FREE_DELIVERY_THRESHOLD" default:"500.00"`
	CurrencyCode          string          `envconfig:"FRESHCART_CHECKOUT_CURRENCY" default:"INR"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64       `envconfig:"FRESHCART_RATE_LIMIT_RPS" default:"10"`
	Burst             int           `envconfig:"FRESHCART_RATE_LIMIT_BURST" default:"20"`
	IdleTTL           time.Duration `envconfig:"FRESHCART_RATE_LIMIT_IDLE_TTL" default:"3m"`
}

// Enabled reports whether per-profile throttling should be installed.
func (r RateLimitConfig) Enabled() bool {
	return r.RequestsPerSecond > 0 && r.Burst > 0
}

func (c *Config) validate() error {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	switch c.Store.Backend {
	case StoreBackendMemory, StoreBackendSQL:
	case StoreBackendRedis:
		if c.Redis.URL == "" && c.Redis.Address == "" {
			return fmt.Errorf("%s or %s is required for the redis store backend", EnvRedisURL, EnvRedisAddr)
		}
	default:
		return fmt.Errorf("unsupported %s %q", EnvStoreBackend, c.Store.Backend)
	}

	c.DB.Driver = strings.ToLower(strings.TrimSpace(c.DB.Driver))
	if c.DB.Driver != DBDriverSQLite && c.DB.Driver != DBDriverPostgres {
		return fmt.Errorf("unsupported %s %q", EnvDBDriver, c.DB.Driver)
	}
	if c.DB.DSN == "" {
		return fmt.Errorf("%s is required", EnvDBDSN)
	}

	if c.Catalog.DefaultPageSize <= 0 {
		return fmt.Errorf("%s must be positive", EnvCatalogPageSize)
	}
	if c.Catalog.MaxPageSize < c.Catalog.DefaultPageSize {
		c.Catalog.MaxPageSize = c.Catalog.DefaultPageSize
	}

	if c.Checkout.DeliveryFee.IsNegative() || c.Checkout.FreeDeliveryThreshold.IsNegative() {
		return fmt.Errorf("checkout amounts must be non-negative")
	}
	return nil
}
