package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NinnOgTonic/antaeus/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment        DeploymentConfig        `mapstructure:"deployment" validate:"required"`
	Server            ServerConfig            `mapstructure:"server" validate:"required"`
	Logging           LoggingConfig           `mapstructure:"logging" validate:"required"`
	Postgres          PostgresConfig          `mapstructure:"postgres" validate:"required"`
	Billing           BillingConfig           `mapstructure:"billing" validate:"required"`
	InvoiceGeneration InvoiceGenerationConfig `mapstructure:"invoice_generation" validate:"required"`
	Payment           PaymentConfig           `mapstructure:"payment" validate:"required"`
	Stripe            StripeConfig            `mapstructure:"stripe"`
	Sentry            SentryConfig            `mapstructure:"sentry"`
	Cache             CacheConfig             `mapstructure:"cache"`
}

type DeploymentConfig struct {
	Mode types.RunMode `mapstructure:"mode" validate:"required,oneof=local api worker"`
}

type ServerConfig struct {
	Address string `mapstructure:"address" validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

type PostgresConfig struct {
	Host                   string `mapstructure:"host" validate:"required"`
	Port                   int    `mapstructure:"port" validate:"required"`
	User                   string `mapstructure:"user" validate:"required"`
	Password               string `mapstructure:"password"`
	DBName                 string `mapstructure:"dbname" validate:"required"`
	SSLMode                string `mapstructure:"sslmode" validate:"required"`
	MaxOpenConns           int    `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"gte=0"`
	// ConnectTimeoutSeconds bounds the startup retries against an unreachable database
	ConnectTimeoutSeconds int `mapstructure:"connect_timeout_seconds" validate:"gte=0"`
}

// BillingConfig drives the procedure that charges pending invoices
type BillingConfig struct {
	IntervalMs int `mapstructure:"interval_ms" validate:"gt=0"`
	// BatchSize caps the pending invoices fetched per tick, 0 means all of them
	BatchSize int `mapstructure:"batch_size" validate:"gte=0"`
}

// InvoiceGenerationConfig drives the procedure that issues one invoice per
// customer per billing period
type InvoiceGenerationConfig struct {
	IntervalMs int `mapstructure:"interval_ms" validate:"gt=0"`
	BatchSize  int `mapstructure:"batch_size" validate:"gte=0"`
}

type PaymentConfig struct {
	Provider types.PaymentProviderType `mapstructure:"provider" validate:"required,oneof=simulated stripe"`
	// ChargeTimeoutMs bounds a single charge call, 0 disables the bound
	ChargeTimeoutMs int `mapstructure:"charge_timeout_ms" validate:"gte=0"`
	// RateLimitPerSecond caps charge calls, 0 disables the limiter
	RateLimitPerSecond float64         `mapstructure:"rate_limit_per_second" validate:"gte=0"`
	RateLimitBurst     int             `mapstructure:"rate_limit_burst" validate:"gte=0"`
	Simulated          SimulatedConfig `mapstructure:"simulated"`
}

// SimulatedConfig tunes the in-process payment provider used for local runs
type SimulatedConfig struct {
	SuccessRate      float64 `mapstructure:"success_rate" validate:"gte=0,lte=1"`
	NetworkErrorRate float64 `mapstructure:"network_error_rate" validate:"gte=0,lte=1"`
}

type StripeConfig struct {
	SecretKey string `mapstructure:"secret_key"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

type CacheConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	TTLSeconds int  `mapstructure:"ttl_seconds" validate:"gte=0"`
}

func NewConfig() (*Configuration, error) {
	// a missing .env is the normal case outside local development
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/antaeus")

	v.SetEnvPrefix("ANTAEUS")
	v.SetEnvKeyReplacer(envKeyReplacer())
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		fmt.Printf("No config file found, using defaults and environment\n")
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	return load(v)
}

// envKeyReplacer maps billing.batch_size to ANTAEUS_BILLING_BATCH_SIZE
func envKeyReplacer() *strings.Replacer {
	return strings.NewReplacer(
		".", "_",
		"-", "_",
	)
}

func load(v *viper.Viper) (*Configuration, error) {
	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults registers every key so environment overrides apply even without a config file
func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", string(types.ModeLocal))
	v.SetDefault("server.address", ":7000")
	v.SetDefault("logging.level", string(types.LogLevelInfo))

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "antaeus")
	v.SetDefault("postgres.password", "antaeus")
	v.SetDefault("postgres.dbname", "antaeus")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime_minutes", 30)
	v.SetDefault("postgres.connect_timeout_seconds", 30)

	v.SetDefault("billing.interval_ms", 2000)
	v.SetDefault("billing.batch_size", 100)
	v.SetDefault("invoice_generation.interval_ms", 5000)
	v.SetDefault("invoice_generation.batch_size", 50)

	v.SetDefault("payment.provider", string(types.PaymentProviderSimulated))
	v.SetDefault("payment.charge_timeout_ms", 10000)
	v.SetDefault("payment.rate_limit_per_second", 0)
	v.SetDefault("payment.rate_limit_burst", 1)
	v.SetDefault("payment.simulated.success_rate", 0.5)
	v.SetDefault("payment.simulated.network_error_rate", 0.1)

	v.SetDefault("stripe.secret_key", "")

	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "development")
	v.SetDefault("sentry.sample_rate", 1.0)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl_seconds", 300)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Payment.Provider == types.PaymentProviderStripe && c.Stripe.SecretKey == "" {
		return errors.New("stripe.secret_key is required when payment.provider is stripe")
	}
	if c.Sentry.Enabled && c.Sentry.DSN == "" {
		return errors.New("sentry.dsn is required when sentry is enabled")
	}
	return nil
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts or other non-web applications
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}

func (c BillingConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMs) * time.Millisecond
}

func (c InvoiceGenerationConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMs) * time.Millisecond
}

func (c PaymentConfig) ChargeTimeout() time.Duration {
	return time.Duration(c.ChargeTimeoutMs) * time.Millisecond
}

func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}
