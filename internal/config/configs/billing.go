package configs

import "time"

// Billing configures invoicing defaults and background jobs.
type Billing struct {
	// NetDays is the default payment term of new invoices.
	NetDays int `env:"NET_DAYS" envDefault:"30"`
	// SweepInterval is how often overdue invoices and expired campaigns
	// are processed.
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`
	// RefreshInterval is how often cached campaign totals are recomputed.
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" envDefault:"5m"`
	// JobTimeout bounds a single job run.
	JobTimeout time.Duration `env:"JOB_TIMEOUT" envDefault:"30s"`
}
