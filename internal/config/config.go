package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/segyhp/trainer-billing/internal/domain"
)

// Pricing policies applied when session count x price drifts from the gross amount.
const (
	PricingPolicyReconcile = "reconcile"
	PricingPolicyStrict    = "strict"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:",squash"`
	Database  DatabaseConfig  `mapstructure:",squash"`
	Redis     RedisConfig     `mapstructure:",squash"`
	Scheduler SchedulerConfig `mapstructure:",squash"`
	Logging   LoggingConfig   `mapstructure:",squash"`
	Billing   BillingConfig   `mapstructure:",squash"`
	TxRetry   TxRetryConfig   `mapstructure:",squash"`
	Health    HealthConfig    `mapstructure:",squash"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"SERVER_PORT"`
	Host         string        `mapstructure:"SERVER_HOST"`
	Env          string        `mapstructure:"ENV"`
	ReadTimeout  time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"DATABASE_URL"`
	Host            string        `mapstructure:"DATABASE_HOST"`
	Port            string        `mapstructure:"DATABASE_PORT"`
	Name            string        `mapstructure:"DATABASE_NAME"`
	User            string        `mapstructure:"DATABASE_USER"`
	Password        string        `mapstructure:"DATABASE_PASSWORD"`
	SSLMode         string        `mapstructure:"DATABASE_SSLMODE"`
	MaxOpenConns    int           `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `mapstructure:"DATABASE_CONN_MAX_LIFETIME"`
}

type RedisConfig struct {
	Host            string        `mapstructure:"REDIS_HOST"`
	Port            string        `mapstructure:"REDIS_PORT"`
	Password        string        `mapstructure:"REDIS_PASSWORD"`
	DB              int           `mapstructure:"REDIS_DB"`
	Prefix          string        `mapstructure:"REDIS_PREFIX"`
	BalanceCacheTTL time.Duration `mapstructure:"BALANCE_CACHE_TTL"`
}

type SchedulerConfig struct {
	DeactivateSpec string `mapstructure:"SCHEDULER_DEACTIVATE_SPEC"`
	IntegritySpec  string `mapstructure:"SCHEDULER_INTEGRITY_SPEC"`
	Timezone       string `mapstructure:"SCHEDULER_TIMEZONE"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Format string `mapstructure:"LOG_FORMAT"`
}

type BillingConfig struct {
	VATRate                  string `mapstructure:"VAT_RATE"`
	CardFeeRate              string `mapstructure:"CARD_FEE_RATE"`
	CalculationMethod        string `mapstructure:"CALCULATION_METHOD"`
	PricingPolicy            string `mapstructure:"PRICING_POLICY"`
	PricingToleranceRate     string `mapstructure:"PRICING_TOLERANCE_RATE"`
	PricingToleranceAbsolute int64  `mapstructure:"PRICING_TOLERANCE_ABSOLUTE"`
	CreditBasis              string `mapstructure:"CREDIT_BASIS"`
	Timezone                 string `mapstructure:"BILLING_TIMEZONE"`
}

type TxRetryConfig struct {
	Attempts uint          `mapstructure:"TX_RETRY_ATTEMPTS"`
	Delay    time.Duration `mapstructure:"TX_RETRY_DELAY"`
	MaxDelay time.Duration `mapstructure:"TX_RETRY_MAX_DELAY"`
}

type HealthConfig struct {
	Timeout string `mapstructure:"HEALTH_CHECK_TIMEOUT"`
}

// DSN returns DATABASE_URL when set, otherwise builds one from the parts.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + d.Port,
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	return u.String()
}

// Addr returns host:port of the Redis server.
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("ENV", "development")
	v.SetDefault("SERVER_READ_TIMEOUT", "15s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "15s")

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", "5432")
	v.SetDefault("DATABASE_NAME", "trainer_billing")
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_PASSWORD", "postgres")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 25)
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_PREFIX", "trainer_billing:")
	v.SetDefault("BALANCE_CACHE_TTL", "10m")

	v.SetDefault("SCHEDULER_DEACTIVATE_SPEC", "0 0 3 * * *")
	v.SetDefault("SCHEDULER_INTEGRITY_SPEC", "0 30 3 * * *")
	v.SetDefault("SCHEDULER_TIMEZONE", "Asia/Seoul")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("VAT_RATE", "0.10")
	v.SetDefault("CARD_FEE_RATE", "0.035")
	v.SetDefault("CALCULATION_METHOD", string(domain.MethodInclusive))
	v.SetDefault("PRICING_POLICY", PricingPolicyReconcile)
	v.SetDefault("PRICING_TOLERANCE_RATE", "0.01")
	v.SetDefault("PRICING_TOLERANCE_ABSOLUTE", 1000)
	v.SetDefault("CREDIT_BASIS", string(domain.CreditBasisNet))
	v.SetDefault("BILLING_TIMEZONE", "Asia/Seoul")

	v.SetDefault("TX_RETRY_ATTEMPTS", 3)
	v.SetDefault("TX_RETRY_DELAY", "50ms")
	v.SetDefault("TX_RETRY_MAX_DELAY", "500ms")

	v.SetDefault("HEALTH_CHECK_TIMEOUT", "5s")
}

// Load reads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	// Don't fail if .env file doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	// Read from environment variables
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" && c.Database.Host == "" {
		return fmt.Errorf("DATABASE_URL or DATABASE_HOST is required")
	}

	one := decimal.NewFromInt(1)
	for name, raw := range map[string]string{
		"VAT_RATE":               c.Billing.VATRate,
		"CARD_FEE_RATE":          c.Billing.CardFeeRate,
		"PRICING_TOLERANCE_RATE": c.Billing.PricingToleranceRate,
	} {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("%s must be a valid decimal: %w", name, err)
		}
		if rate.IsNegative() || rate.GreaterThanOrEqual(one) {
			return fmt.Errorf("%s must be in [0, 1)", name)
		}
	}

	// Packages store their rates at a fixed scale; top-ups split with the stored value.
	for name, raw := range map[string]string{
		"VAT_RATE":      c.Billing.VATRate,
		"CARD_FEE_RATE": c.Billing.CardFeeRate,
	} {
		if !domain.FitsRateScale(decimal.RequireFromString(raw)) {
			return fmt.Errorf("%s must have at most %d decimal places", name, domain.RateScale)
		}
	}

	if domain.CalculationMethod(c.Billing.CalculationMethod) != domain.MethodInclusive {
		return fmt.Errorf("CALCULATION_METHOD %q is not supported", c.Billing.CalculationMethod)
	}

	switch c.Billing.PricingPolicy {
	case PricingPolicyReconcile, PricingPolicyStrict:
	default:
		return fmt.Errorf("PRICING_POLICY must be %q or %q", PricingPolicyReconcile, PricingPolicyStrict)
	}

	if c.Billing.PricingToleranceAbsolute < 0 {
		return fmt.Errorf("PRICING_TOLERANCE_ABSOLUTE must not be negative")
	}

	switch domain.CreditBasis(c.Billing.CreditBasis) {
	case domain.CreditBasisNet, domain.CreditBasisGross:
	default:
		return fmt.Errorf("CREDIT_BASIS must be %q or %q", domain.CreditBasisNet, domain.CreditBasisGross)
	}

	if _, err := time.LoadLocation(c.Billing.Timezone); err != nil {
		return fmt.Errorf("BILLING_TIMEZONE is invalid: %w", err)
	}

	if c.TxRetry.Attempts == 0 {
		return fmt.Errorf("TX_RETRY_ATTEMPTS must be greater than 0")
	}

	// Validate cron specs
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(c.Scheduler.DeactivateSpec); err != nil {
		return fmt.Errorf("SCHEDULER_DEACTIVATE_SPEC is invalid: %w", err)
	}
	if _, err := parser.Parse(c.Scheduler.IntegritySpec); err != nil {
		return fmt.Errorf("SCHEDULER_INTEGRITY_SPEC is invalid: %w", err)
	}
	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE is invalid: %w", err)
	}

	// Validate health check timeout
	if _, err := time.ParseDuration(c.Health.Timeout); err != nil {
		return fmt.Errorf("HEALTH_CHECK_TIMEOUT must be a valid duration: %w", err)
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// GetFeeRates returns the application-wide default rate set
func (c *Config) GetFeeRates() domain.FeeRates {
	vat, _ := decimal.NewFromString(c.Billing.VATRate)
	card, _ := decimal.NewFromString(c.Billing.CardFeeRate)
	return domain.FeeRates{
		VATRate:     vat,
		CardFeeRate: card,
		Method:      domain.CalculationMethod(c.Billing.CalculationMethod),
	}
}

// GetPricingToleranceRate returns the relative pricing tolerance as decimal
func (c *Config) GetPricingToleranceRate() decimal.Decimal {
	rate, _ := decimal.NewFromString(c.Billing.PricingToleranceRate)
	return rate
}

// GetCreditBasis returns the basis new packages are credited on
func (c *Config) GetCreditBasis() domain.CreditBasis {
	return domain.CreditBasis(c.Billing.CreditBasis)
}

// IsStrictPricing reports whether pricing mismatches are rejected instead of reconciled
func (c *Config) IsStrictPricing() bool {
	return c.Billing.PricingPolicy == PricingPolicyStrict
}

// GetSchedulerLocation returns the scheduler time zone
func (c *Config) GetSchedulerLocation() *time.Location {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GetBillingLocation returns the time zone payment dates are recorded in
func (c *Config) GetBillingLocation() *time.Location {
	loc, err := time.LoadLocation(c.Billing.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GetHealthTimeout returns the health check timeout as duration
func (c *Config) GetHealthTimeout() time.Duration {
	timeout, _ := time.ParseDuration(c.Health.Timeout)
	return timeout
}
