package configs

import "time"

// Broadcast configures the live-state push channel.
type Broadcast struct {
	QueueSize    int           `env:"QUEUE_SIZE" envDefault:"16"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"5s"`
}
