package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	EnvPrefix = "BAOFLOW"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Rates        RatesConfig
	Billing      BillingConfig
	Fees         FeeConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BAOFLOW_APP_ENV" required:"true"`
	Port         string `envconfig:"BAOFLOW_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BAOFLOW_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BAOFLOW_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"BAOFLOW_DB_DSN" required:"true"`

	MaxOpenConns    int           `envconfig:"BAOFLOW_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BAOFLOW_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BAOFLOW_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BAOFLOW_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BAOFLOW_REDIS_URL"`
	PoolSize     int           `envconfig:"BAOFLOW_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BAOFLOW_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BAOFLOW_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BAOFLOW_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BAOFLOW_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// RatesConfig holds currency conversion settings. DefaultRate is the local
// fallback used when the external rate source is unreachable.
type RatesConfig struct {
	SourceCurrency string          `envconfig:"BAOFLOW_RATES_SOURCE_CURRENCY" default:"USD"`
	TargetCurrency string          `envconfig:"BAOFLOW_RATES_TARGET_CURRENCY" default:"JPY"`
	DefaultRate    decimal.Decimal `envconfig:"BAOFLOW_RATES_DEFAULT_RATE" default:"155"`
	CacheTTL       time.Duration   `envconfig:"BAOFLOW_RATES_CACHE_TTL" default:"1h"`
}

// BillingConfig carries the calculation defaults that used to live in a
// singleton settings row. They are passed into the pricing engine explicitly
// so the engine stays pure.
type BillingConfig struct {
	TaxRatePercent   decimal.Decimal `envconfig:"BAOFLOW_BILLING_TAX_RATE_PERCENT" default:"10"`
	DefaultCostRatio decimal.Decimal `envconfig:"BAOFLOW_BILLING_DEFAULT_COST_RATIO" default:"0.55"`
}

// FeeConfig carries the per-method payment fee parameters.
type FeeConfig struct {
	WireFeeRate     decimal.Decimal `envconfig:"BAOFLOW_FEES_WIRE_RATE" default:"0.04"`
	WireFixedFee    decimal.Decimal `envconfig:"BAOFLOW_FEES_WIRE_FIXED" default:"3"`
	CardFeeRate     decimal.Decimal `envconfig:"BAOFLOW_FEES_CARD_RATE" default:"0.036"`
	BankTransferFee decimal.Decimal `envconfig:"BAOFLOW_FEES_BANK_TRANSFER_FLAT" default:"25"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BAOFLOW_FEATURE_AUTO_MIGRATE" default:"false"`
}
