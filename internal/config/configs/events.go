package configs

// Events throttles delivery event ingestion.
type Events struct {
	// Rate is the sustained number of ingest requests per second.
	Rate  float64 `env:"RATE" envDefault:"200"`
	Burst int     `env:"BURST" envDefault:"400"`
}
