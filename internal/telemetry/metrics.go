package telemetry

import "github.com/prometheus/client_golang/prometheus"

// HTTPRequestDuration tracks HTTP request latency across all routes.
var HTTPRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "hifzer",
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "path", "status"},
)

// ReviewEventsIngestedTotal counts ingested review/transition events.
var ReviewEventsIngestedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "hifzer",
		Subsystem: "events",
		Name:      "ingested_total",
		Help:      "Total number of review events accepted by the event store.",
	},
	[]string{"event_type"},
)

// ReviewEventsDeduplicatedTotal counts ingest calls that hit an existing clientEventId.
var ReviewEventsDeduplicatedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: "hifzer",
		Subsystem: "events",
		Name:      "deduplicated_total",
		Help:      "Total number of ingest calls that deduplicated against an existing event.",
	},
)

// ReducerDuration tracks how long a single (user, ayah) replay takes.
var ReducerDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: "hifzer",
		Subsystem: "reducer",
		Name:      "replay_duration_seconds",
		Help:      "Duration of a full event replay for one (user, ayah) pair.",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	},
)

// ManzilPromotionsTotal counts items that reach the MANZIL tier.
var ManzilPromotionsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: "hifzer",
		Subsystem: "promotion",
		Name:      "manzil_total",
		Help:      "Total number of items that crossed the seven-day promotion gate into MANZIL.",
	},
)

// QueueBuildDuration tracks how long building a Today Queue takes.
var QueueBuildDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: "hifzer",
		Subsystem: "queue",
		Name:      "build_duration_seconds",
		Help:      "Duration of a Today Queue planning pass.",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	},
)

// QueueModeTotal counts how often each queue mode was selected.
var QueueModeTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "hifzer",
		Subsystem: "queue",
		Name:      "mode_total",
		Help:      "Total number of Today Queue builds by selected mode.",
	},
	[]string{"mode"},
)

// DebtFreezeTotal counts debt-freeze activations.
var DebtFreezeTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: "hifzer",
		Subsystem: "queue",
		Name:      "debt_freeze_total",
		Help:      "Total number of Today Queue builds that triggered a debt freeze.",
	},
)

// FluencyGateResultTotal counts fluency gate test outcomes.
var FluencyGateResultTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "hifzer",
		Subsystem: "fluency_gate",
		Name:      "result_total",
		Help:      "Total number of fluency gate submissions by pass/fail result.",
	},
	[]string{"result"},
)

// StepValidationRejectedTotal counts rejected session-protocol step submissions.
var StepValidationRejectedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: "hifzer",
		Subsystem: "session",
		Name:      "step_rejected_total",
		Help:      "Total number of session step submissions rejected as out of sequence.",
	},
)

// All returns all hifzer-specific metrics for registration.
func All() []prometheus.Collector {
	return []prometheus.Collector{
		ReviewEventsIngestedTotal,
		ReviewEventsDeduplicatedTotal,
		ReducerDuration,
		ManzilPromotionsTotal,
		QueueBuildDuration,
		QueueModeTotal,
		DebtFreezeTotal,
		FluencyGateResultTotal,
		StepValidationRejectedTotal,
	}
}
