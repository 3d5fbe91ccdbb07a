package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	Cart     CartConfig
	Upstream UpstreamConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CARTSHARE_APP_ENV" default:"dev"`
	Port         string `envconfig:"CARTSHARE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"CARTSHARE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CARTSHARE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN       string `envconfig:"CARTSHARE_DB_DSN"`
	UseSQLite bool   `envconfig:"CARTSHARE_USE_SQLITE" default:"true"`
	// SQLitePath defaults to a shared in-memory database so dev boots with no
	// external dependencies.
	SQLitePath string `envconfig:"CARTSHARE_SQLITE_PATH" default:"file::memory:?cache=shared"`

	MaxOpenConns    int           `envconfig:"CARTSHARE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CARTSHARE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CARTSHARE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CARTSHARE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db DBConfig) validate() error {
	if !db.UseSQLite && db.DSN == "" {
		return fmt.Errorf("%s is required when %s is false", EnvDBDSN, EnvUseSQLite)
	}
	return nil
}

// RedisConfig is optional: when URL is empty the idempotency middleware runs
// as a pass-through and no connection is attempted.
type RedisConfig struct {
	URL          string        `envconfig:"CARTSHARE_REDIS_URL"`
	PoolSize     int           `envconfig:"CARTSHARE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CARTSHARE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CARTSHARE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CARTSHARE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CARTSHARE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != ""
}

type CartConfig struct {
	// ExpiryWindow is how long a cart stays active after creation or refresh.
	ExpiryWindow time.Duration `envconfig:"CARTSHARE_CART_EXPIRY_WINDOW" default:"24h"`
	// CheckoutLockTTL bounds how long a checkout lock freezes a cart.
	CheckoutLockTTL time.Duration `envconfig:"CARTSHARE_CHECKOUT_LOCK_TTL" default:"5m"`
}

// UpstreamConfig points at the product, inventory, and exchange-rate
// collaborators. Empty base URLs switch the process to in-memory stubs.
type UpstreamConfig struct {
	ProductsBaseURL  string        `envconfig:"CARTSHARE_PRODUCTS_BASE_URL"`
	InventoryBaseURL string        `envconfig:"CARTSHARE_INVENTORY_BASE_URL"`
	RatesBaseURL     string        `envconfig:"CARTSHARE_RATES_BASE_URL"`
	Timeout          time.Duration `envconfig:"CARTSHARE_UPSTREAM_TIMEOUT" default:"5s"`
}
