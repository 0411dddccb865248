package configs

import "time"

// Retry bounds the automatic retry of idempotent reads.
type Retry struct {
	MaxAttempts    uint          `env:"MAX_ATTEMPTS" envDefault:"3"`
	InitialBackoff time.Duration `env:"INITIAL_BACKOFF" envDefault:"50ms"`
}
