package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all environment-based configuration for the folio client.
type Config struct {
	// APIURL is the base URL of the Folio workspace API.
	APIURL string `env:"FOLIO_API_URL" envDefault:"http://localhost:8080"`

	// Account credentials, used only when no persisted session can be
	// resumed.
	Email    string `env:"FOLIO_EMAIL"`
	Password string `env:"FOLIO_PASSWORD"`

	// StateDir holds the credential database and its sealing key.
	// Defaults to ~/.folio/.
	StateDir string `env:"FOLIO_STATE_DIR"`

	// TokenMargin is the safety window before expiry at which a token is
	// treated as stale. One margin applies everywhere.
	TokenMargin time.Duration `env:"FOLIO_TOKEN_MARGIN" envDefault:"30m"`

	// RevalidateInterval is the background revalidation period. Must be
	// shorter than TokenMargin so the check fires before expiry.
	RevalidateInterval time.Duration `env:"FOLIO_REVALIDATE_INTERVAL" envDefault:"5m"`

	// ExchangeTimeout bounds the refresh-exchange network call.
	ExchangeTimeout time.Duration `env:"FOLIO_EXCHANGE_TIMEOUT" envDefault:"15s"`

	// RequestsPerSecond throttles outbound API calls. Zero disables the
	// limiter.
	RequestsPerSecond float64 `env:"FOLIO_REQUESTS_PER_SECOND" envDefault:"20"`

	// Environment controls log verbosity and format defaults.
	Env       string `env:"ENV" envDefault:"dev"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load reads configuration from the environment, with an optional .env file
// for local development.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}

	if cfg.StateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolving home directory: %w", err)
		}
		cfg.StateDir = filepath.Join(home, ".folio")
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("FOLIO_API_URL must be set")
	}
	if c.TokenMargin <= 0 {
		return fmt.Errorf("FOLIO_TOKEN_MARGIN must be positive")
	}
	if c.RevalidateInterval <= 0 {
		return fmt.Errorf("FOLIO_REVALIDATE_INTERVAL must be positive")
	}
	if c.RevalidateInterval >= c.TokenMargin {
		return fmt.Errorf(
			"FOLIO_REVALIDATE_INTERVAL (%s) must be shorter than FOLIO_TOKEN_MARGIN (%s)",
			c.RevalidateInterval, c.TokenMargin,
		)
	}
	if c.ExchangeTimeout <= 0 {
		return fmt.Errorf("FOLIO_EXCHANGE_TIMEOUT must be positive")
	}
	return nil
}
