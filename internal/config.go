package internal

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

type Config struct {
	App           AppConfig           `mapstructure:"app" env:", prefix=APP_"`
	Server        ServerConfig        `mapstructure:"http_server" env:", prefix=HTTP_"`
	Database      DatabaseConfig      `mapstructure:"database" env:", prefix=DB_"`
	Redis         RedisConfig         `mapstructure:"redis" env:", prefix=REDIS_"`
	Session       SessionConfig       `mapstructure:"session" env:", prefix=SESSION_"`
	Security      SecurityConfig      `mapstructure:"security" env:", prefix=SECURITY_"`
	Mail          MailConfig          `mapstructure:"mail" env:", prefix=MAIL_"`
	Product       ProductConfig       `mapstructure:"product" env:", prefix=PRODUCT_"`
	Observability ObservabilityConfig `mapstructure:"observability" env:", prefix=OBSERVABILITY_"`
}

type AppConfig struct {
	Env     string `mapstructure:"env" env:"ENV, default=development"`
	BaseURL string `mapstructure:"base_url" env:"BASE_URL, default=http://localhost:8080"`
}

func (c AppConfig) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

type ServerConfig struct {
	Port              int           `mapstructure:"port" env:"PORT, default=8080"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" env:"READ_HEADER_TIMEOUT, default=5s"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout" env:"READ_TIMEOUT, default=15s"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout" env:"IDLE_TIMEOUT, default=60s"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout" env:"WRITE_TIMEOUT, default=15s"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" env:"MAX_OPEN_CONNS, default=20"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" env:"MAX_IDLE_CONNS, default=5"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" env:"CONN_MAX_LIFETIME, default=30m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" env:"CONN_MAX_IDLE_TIME, default=5m"`
	Source          string        `mapstructure:"source" env:"SOURCE"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr" env:"ADDR, default=localhost:6379"`
	Password string        `mapstructure:"password" env:"PASSWORD"`
	DB       int           `mapstructure:"db" env:"DB, default=0"`
	Timeout  time.Duration `mapstructure:"timeout" env:"TIMEOUT, default=3s"`
}

const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

type SessionConfig struct {
	Store        string        `mapstructure:"store" env:"STORE, default=memory"`
	CookieName   string        `mapstructure:"cookie_name" env:"COOKIE_NAME, default=inventory_session"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout" env:"IDLE_TIMEOUT, default=30m"`
	SecureCookie bool          `mapstructure:"secure_cookie" env:"SECURE_COOKIE, default=false"`
	Secret       string        `mapstructure:"secret" env:"SECRET"`
}

type SecurityConfig struct {
	BCryptCost        int           `mapstructure:"bcrypt_cost" env:"BCRYPT_COST, default=12"`
	MasterKey         string        `mapstructure:"master_key" env:"MASTER_KEY"`
	OTPTTL            time.Duration `mapstructure:"otp_ttl" env:"OTP_TTL, default=10m"`
	MaxVerifyAttempts int           `mapstructure:"max_verify_attempts" env:"MAX_VERIFY_ATTEMPTS, default=5"`
	ResetTokenTTL     time.Duration `mapstructure:"reset_token_ttl" env:"RESET_TOKEN_TTL, default=1h"`
}

type MailConfig struct {
	Host                string        `mapstructure:"host" env:"HOST"`
	Port                int           `mapstructure:"port" env:"PORT, default=587"`
	Username            string        `mapstructure:"username" env:"USERNAME"`
	Password            string        `mapstructure:"password" env:"PASSWORD"`
	FromAddress         string        `mapstructure:"from_address" env:"FROM_ADDRESS, default=no-reply@localhost"`
	FromName            string        `mapstructure:"from_name" env:"FROM_NAME, default=CWTP Inventory"`
	TLSPolicy           string        `mapstructure:"tls_policy" env:"TLS_POLICY, default=mandatory"`
	Timeout             time.Duration `mapstructure:"timeout" env:"TIMEOUT, default=10s"`
	ExposeCodeOnFailure bool          `mapstructure:"expose_code_on_failure" env:"EXPOSE_CODE_ON_FAILURE, default=false"`
}

type ProductConfig struct {
	QRBaseURL string `mapstructure:"qr_base_url" env:"QR_BASE_URL, default=https://api.qrserver.com/v1/create-qr-code/?size=300x300&data="`
}

type ObservabilityConfig struct {
	Metrics MetricsConfig `mapstructure:"metrics" env:", prefix=METRICS_"`
	Logging LoggingConfig `mapstructure:"logging" env:", prefix=LOG_"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" env:"ENABLED, default=true"`
	Path    string `mapstructure:"path" env:"PATH, default=/metrics"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" env:"LEVEL, default=info"`
	Format string `mapstructure:"format" env:"FORMAT, default=json"`
}

// LoadConfigFromEnv builds the config from environment variables only. Used
// for container deployments where no config.yml is mounted.
func LoadConfigFromEnv(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}
	return &cfg, nil
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.App.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("app config: %v", err))
	}

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Session.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("session config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if err := c.Mail.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("mail config: %v", err))
	}

	if err := c.Observability.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("logging config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *AppConfig) Validate() error {
	switch c.Env {
	case EnvDevelopment, EnvStaging, EnvProduction:
	default:
		return fmt.Errorf("unknown env %q", c.Env)
	}
	if c.BaseURL != "" {
		if _, err := url.Parse(c.BaseURL); err != nil {
			return fmt.Errorf("invalid base_url: %w", err)
		}
	}
	return nil
}

func (c *ServerConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.Source == "" {
		return errors.New("source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *SessionConfig) Validate() error {
	if c.Store != SessionStoreMemory && c.Store != SessionStoreRedis {
		return fmt.Errorf("store must be %q or %q", SessionStoreMemory, SessionStoreRedis)
	}
	if len(c.Secret) < 32 {
		return errors.New("session secret must be at least 32 characters")
	}
	if c.IdleTimeout < time.Minute {
		return errors.New("idle_timeout must be at least 1m")
	}
	return nil
}

func (c *SecurityConfig) Validate() error {
	if c.BCryptCost < 4 || c.BCryptCost > 31 {
		return fmt.Errorf("bcrypt_cost %d out of range", c.BCryptCost)
	}
	if c.MasterKey == "" {
		return errors.New("master_key is required")
	}
	if c.OTPTTL < 0 {
		return errors.New("otp_ttl cannot be negative")
	}
	if c.MaxVerifyAttempts < 0 {
		return errors.New("max_verify_attempts cannot be negative")
	}
	if c.ResetTokenTTL <= 0 {
		return errors.New("reset_token_ttl must be positive")
	}
	return nil
}

func (c *MailConfig) Validate() error {
	if c.Host == "" {
		return nil
	}
	if c.Port <= 0 {
		return fmt.Errorf("invalid smtp port %d", c.Port)
	}
	if c.FromAddress == "" {
		return errors.New("from_address is required when host is set")
	}
	switch c.TLSPolicy {
	case "mandatory", "opportunistic", "none":
	default:
		return fmt.Errorf("unknown tls_policy %q", c.TLSPolicy)
	}
	return nil
}

// CodeFallbackAllowed reports whether a failed OTP email may surface the code
// in the response. Never true outside development.
func (c *Config) CodeFallbackAllowed() bool {
	return c.App.IsDevelopment() && c.Mail.ExposeCodeOnFailure
}

func (c *LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Level)
	}
	if c.Format != "json" && c.Format != "text" {
		return fmt.Errorf("unknown log format %q", c.Format)
	}
	return nil
}
