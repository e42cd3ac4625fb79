package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Quiz service metrics
var (
	// Round counters
	RoundsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "organquiz",
			Subsystem: "quiz",
			Name:      "rounds_total",
			Help:      "Total quiz rounds started",
		},
		[]string{"status"},
	)

	// Answer verdicts
	AnswersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "organquiz",
			Subsystem: "quiz",
			Name:      "answers_total",
			Help:      "Total answers checked",
		},
		[]string{"verdict"},
	)

	// Per-subject generation attempts
	GenerationAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "organquiz",
			Subsystem: "imagegen",
			Name:      "generation_attempts_total",
			Help:      "Total image generation attempts",
		},
		[]string{"outcome"},
	)

	// Provider call duration
	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "organquiz",
			Subsystem: "imagegen",
			Name:      "generation_duration_seconds",
			Help:      "Image generation attempt duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	// Artifact lifecycle
	ArtifactsPublishedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "organquiz",
			Subsystem: "artifacts",
			Name:      "published_total",
			Help:      "Total artifacts published to the serving root",
		},
	)

	ArtifactsRetiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "organquiz",
			Subsystem: "artifacts",
			Name:      "retired_total",
			Help:      "Total artifacts deleted after being superseded",
		},
	)
)

// RecordRound records a round start outcome.
func RecordRound(status string) {
	RoundsTotal.WithLabelValues(status).Inc()
}

// RecordAnswer records an answer verdict.
func RecordAnswer(verdict string) {
	AnswersTotal.WithLabelValues(verdict).Inc()
}

// RecordGeneration records one generation attempt.
func RecordGeneration(outcome string, durationSec float64) {
	GenerationAttemptsTotal.WithLabelValues(outcome).Inc()
	GenerationDuration.Observe(durationSec)
}
