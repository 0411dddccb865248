package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration tracks API latency per route pattern and status.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "sponsorhub_http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
			Buckets: []float64{
				0.001, // 1ms
				0.005, // 5ms
				0.01,  // 10ms
				0.025, // 25ms
				0.05,  // 50ms
				0.1,   // 100ms
				0.25,  // 250ms
				0.5,   // 500ms
				1.0,   // 1s
				2.5,   // 2.5s
				5.0,   // 5s
			},
		},
		[]string{"method", "route", "status"},
	)

	// DeliveryEventsRecorded counts ledger appends by event type.
	DeliveryEventsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sponsorhub_delivery_events_recorded_total",
			Help: "Delivery events appended to the ledger",
		},
		[]string{"type"},
	)

	// InvoiceTransitions counts invoice creation and status changes.
	InvoiceTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sponsorhub_invoice_transitions_total",
			Help: "Invoices created or moved to a new status",
		},
		[]string{"status"},
	)

	// BroadcastSessions is the number of connected push sessions.
	BroadcastSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sponsorhub_broadcast_sessions",
			Help: "Connected live-state sessions",
		},
	)

	// BroadcastDropped counts messages discarded from full session queues.
	BroadcastDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sponsorhub_broadcast_dropped_total",
			Help: "Push messages dropped because a session queue was full",
		},
	)

	// JobRuns counts scheduler runs by job and outcome.
	JobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sponsorhub_job_runs_total",
			Help: "Background job runs by outcome (ok, error, skipped)",
		},
		[]string{"job", "outcome"},
	)
)

// ObserveHTTP records the duration of one request.
func ObserveHTTP(method, route, status string, seconds float64) {
	HTTPRequestDuration.WithLabelValues(method, route, status).Observe(seconds)
}

// RecordEvent counts one ledger append.
func RecordEvent(eventType string) {
	DeliveryEventsRecorded.WithLabelValues(eventType).Inc()
}

// RecordInvoice counts an invoice reaching status.
func RecordInvoice(status string) {
	InvoiceTransitions.WithLabelValues(status).Inc()
}

// RecordJob counts one scheduler run.
func RecordJob(job, outcome string) {
	JobRuns.WithLabelValues(job, outcome).Inc()
}
