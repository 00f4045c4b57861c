package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v9"
)

const (
	CatalogStatic   = "static"
	CatalogPostgres = "postgres"
)

type Config struct {
	Env           string        `env:"APP_ENV" envDefault:"production"`
	CatalogSource string        `env:"CATALOG_SOURCE" envDefault:"static"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	HTTP     HTTPConfig     `envPrefix:"HTTP_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	Database DatabaseConfig `envPrefix:"DB_"`
	LeadsAPI LeadsAPIConfig `envPrefix:"LEADS_API_"`
	Telegram TelegramConfig `envPrefix:"TELEGRAM_"`
	OTP      OTPConfig      `envPrefix:"OTP_"`
}

type HTTPConfig struct {
	Addr            string        `env:"ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
	RateLimit       float64       `env:"RATE_LIMIT" envDefault:"10"`
	RateBurst       int           `env:"RATE_BURST" envDefault:"20"`
	// TrustProxy honours X-Forwarded-For and X-Real-IP. Off unless the
	// service runs behind a proxy that sets them.
	TrustProxy bool `env:"TRUST_PROXY" envDefault:"false"`
}

type RedisConfig struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

type DatabaseConfig struct {
	Host            string        `env:"HOST" envDefault:"localhost"`
	Port            int           `env:"PORT" envDefault:"5432"`
	User            string        `env:"USER"`
	Password        string        `env:"PASSWORD"`
	Name            string        `env:"NAME"`
	SSLMode         string        `env:"SSLMODE" envDefault:"disable"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"2"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"5m"`
	ConnMaxIdleTime time.Duration `env:"CONN_MAX_IDLE_TIME" envDefault:"2m"`
	Migrate         bool          `env:"MIGRATE" envDefault:"true"`
}

// DSN builds a lib/pq connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

type LeadsAPIConfig struct {
	BaseURL    string        `env:"BASE_URL,required"`
	Token      string        `env:"TOKEN"`
	Timeout    time.Duration `env:"TIMEOUT" envDefault:"10s"`
	MaxRetries uint64        `env:"MAX_RETRIES" envDefault:"3"`
}

type TelegramConfig struct {
	Token     string `env:"TOKEN"`
	ChannelID int64  `env:"CHANNEL_ID"`
}

// OTPConfig bounds how often one phone number may request a code.
type OTPConfig struct {
	SendLimit  int64         `env:"SEND_LIMIT" envDefault:"3"`
	SendWindow time.Duration `env:"SEND_WINDOW" envDefault:"10m"`
}

func (c *Config) Development() bool {
	return c.Env == "development"
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	switch c.CatalogSource {
	case CatalogStatic:
	case CatalogPostgres:
		if c.Database.User == "" || c.Database.Name == "" {
			errs = append(errs, errors.New("DB_USER and DB_NAME are required when CATALOG_SOURCE=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("CATALOG_SOURCE must be %q or %q, got %q", CatalogStatic, CatalogPostgres, c.CatalogSource))
	}

	if u, err := url.Parse(c.LeadsAPI.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("LEADS_API_BASE_URL %q is not an absolute URL", c.LeadsAPI.BaseURL))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.OTP.SendLimit <= 0 || c.OTP.SendWindow <= 0 {
		errs = append(errs, errors.New("OTP_SEND_LIMIT and OTP_SEND_WINDOW must be positive"))
	}
	if c.Telegram.Token != "" && c.Telegram.ChannelID == 0 {
		errs = append(errs, errors.New("TELEGRAM_CHANNEL_ID is required when TELEGRAM_TOKEN is set"))
	}

	return errors.Join(errs...)
}
