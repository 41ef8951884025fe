package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"queryquest/internal/game"
)

type Config struct {
	HTTPAddr            string `env:"HTTP_ADDR" envDefault:":8080"`
	BaseURL             string `env:"BASE_URL"`
	DatabaseURL         string `env:"DATABASE_URL"`
	ReadonlyDatabaseURL string `env:"READONLY_DATABASE_URL"`
	SQLitePath          string `env:"SQLITE_PATH" envDefault:"queryquest-catalog.db"`
	SecretKey           string `env:"SECRET_KEY"`
	SeedFile            string `env:"SEED_FILE"`

	RoundSeconds       int           `env:"ROUND_SECONDS" envDefault:"80"`
	HintSegments       int           `env:"HINT_SEGMENTS" envDefault:"4"`
	TickInterval       time.Duration `env:"TICK_INTERVAL" envDefault:"1s"`
	QueryTimeout       time.Duration `env:"QUERY_TIMEOUT" envDefault:"500ms"`
	MaxInputLength     int           `env:"MAX_INPUT_LENGTH" envDefault:"1000"`
	MaxNameLength      int           `env:"MAX_NAME_LENGTH" envDefault:"50"`
	RateLimitPerMinute int           `env:"RATE_LIMIT_PER_MINUTE" envDefault:"30"`

	DBMaxOpenConns     int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	DBMaxIdleConns     int           `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetime  time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
	DBConnMaxIdleTime  time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"1m"`
	SandboxMaxConns    int32         `env:"SANDBOX_MAX_CONNS" envDefault:"8"`
	EventBufferSize    int           `env:"EVENT_BUFFER_SIZE" envDefault:"256"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"90s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`
}

// Default returns the configuration used when the environment sets nothing.
func Default() Config {
	return Config{
		HTTPAddr:           ":8080",
		SQLitePath:         "queryquest-catalog.db",
		RoundSeconds:       80,
		HintSegments:       4,
		TickInterval:       time.Second,
		QueryTimeout:       500 * time.Millisecond,
		MaxInputLength:     1000,
		MaxNameLength:      50,
		RateLimitPerMinute: 30,
		DBMaxOpenConns:     10,
		DBMaxIdleConns:     10,
		DBConnMaxLifetime:  5 * time.Minute,
		DBConnMaxIdleTime:  time.Minute,
		SandboxMaxConns:    8,
		EventBufferSize:    256,
		ShutdownTimeout:    90 * time.Second,
		LogLevel:           "info",
	}
}

func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.RoundSeconds <= 0 {
		errs = append(errs, errors.New("ROUND_SECONDS must be positive"))
	}
	if c.HintSegments <= 0 {
		errs = append(errs, errors.New("HINT_SEGMENTS must be positive"))
	}
	if c.TickInterval <= 0 {
		errs = append(errs, errors.New("TICK_INTERVAL must be positive"))
	}
	if c.QueryTimeout <= 0 {
		errs = append(errs, errors.New("QUERY_TIMEOUT must be positive"))
	}
	if c.MaxInputLength <= 0 {
		errs = append(errs, errors.New("MAX_INPUT_LENGTH must be positive"))
	}
	if c.MaxNameLength <= 0 {
		errs = append(errs, errors.New("MAX_NAME_LENGTH must be positive"))
	}
	return errors.Join(errs...)
}

// DevMode reports whether the server runs without Postgres.
func (c Config) DevMode() bool {
	return c.DatabaseURL == ""
}

var ErrNoReadonlyRole = errors.New("READONLY_DATABASE_URL must name a role distinct from DATABASE_URL")

// SandboxURL is the connection string for untrusted queries. Postgres mode
// requires a dedicated read-only role.
func (c Config) SandboxURL() (string, error) {
	if c.ReadonlyDatabaseURL == "" || c.ReadonlyDatabaseURL == c.DatabaseURL {
		return "", ErrNoReadonlyRole
	}
	return c.ReadonlyDatabaseURL, nil
}

func (c Config) GameSettings() game.Settings {
	return game.Settings{
		RoundTicks:     int(time.Duration(c.RoundSeconds) * time.Second / c.TickInterval),
		HintSegments:   c.HintSegments,
		TickInterval:   c.TickInterval,
		MaxInputLength: c.MaxInputLength,
	}
}
