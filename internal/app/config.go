package app

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the simulator.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"60s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	// Generation window and seed. Dates use YYYY-MM-DD.
	Seed      int64  `envconfig:"MISA_SEED" default:"20240101"`
	StartDate string `envconfig:"MISA_START" default:"2024-01-01"`
	EndDate   string `envconfig:"MISA_END" default:"2025-08-24"`
	AsOfDate  string `envconfig:"MISA_AS_OF" default:"2025-08-24"`

	OutputDir string `envconfig:"MISA_OUTPUT_DIR" default:"out"`

	PGDSN string `envconfig:"PG_DSN" default:""`

	RedisAddr string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	CacheTTL  time.Duration `envconfig:"CACHE_TTL" default:"10m"`
}

// LoadConfig reads configuration from the environment, with an optional
// .env file for local development.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if _, _, _, err := cfg.Window(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Window parses the configured generation window and as-of date.
func (c *Config) Window() (start, end, asOf time.Time, err error) {
	start, err = parseDay("MISA_START", c.StartDate)
	if err != nil {
		return
	}
	end, err = parseDay("MISA_END", c.EndDate)
	if err != nil {
		return
	}
	asOf, err = parseDay("MISA_AS_OF", c.AsOfDate)
	if err != nil {
		return
	}
	if !end.After(start) {
		err = fmt.Errorf("app: MISA_END %s must be after MISA_START %s", c.EndDate, c.StartDate)
	}
	return
}

func parseDay(name, value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("app: parse %s: %w", name, err)
	}
	return t, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
