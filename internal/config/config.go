package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"sponsorhub/internal/config/configs"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config aggregates all configuration sections for the application. Fields
// are populated from environment variables using the caarlos0/env library. The
// nested structs are tagged with envPrefix so their fields are parsed with
// the given prefix. See the individual types in the configs package for
// default values and options. Use Load to construct a Config.
type Config struct {
	// Env specifies the deployment environment (e.g. prod, dev). It is
	// attached to every log record.
	Env string `env:"ENV" envDefault:"prod"`

	// StoreDriver selects the storage backend, postgres or memory.
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`

	HTTP      configs.HTTP      `envPrefix:"HTTP_"`
	Log       configs.Logger    `envPrefix:"LOG_"`
	Psql      configs.Postgres  `envPrefix:"PSQL_"`
	Auth      configs.Auth      `envPrefix:"AUTH_"`
	Billing   configs.Billing   `envPrefix:"BILLING_"`
	Broadcast configs.Broadcast `envPrefix:"BROADCAST_"`
	Events    configs.Events    `envPrefix:"EVENTS_"`
	Retry     configs.Retry     `envPrefix:"RETRY_"`
}

// Load reads configuration from environment variables into a Config. If
// parsing fails, an error is returned. All fields are loaded with their
// specified defaults when no environment variable is provided.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.StoreDriver {
	case StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("STORE_DRIVER: unknown driver %q", c.StoreDriver)
	}
	if c.Auth.Secret == "" && !c.Auth.AllowAnonymousAdmin {
		return fmt.Errorf("AUTH_SECRET is required unless AUTH_ALLOW_ANONYMOUS_ADMIN is set")
	}
	if c.Broadcast.QueueSize <= 0 {
		return fmt.Errorf("BROADCAST_QUEUE_SIZE must be positive")
	}
	if c.Events.Rate <= 0 || c.Events.Burst <= 0 {
		return fmt.Errorf("EVENTS_RATE and EVENTS_BURST must be positive")
	}
	return nil
}
