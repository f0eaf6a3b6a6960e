package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Decorator event labels.
const (
	EventOnceHit       = "once_hit"
	EventOnceMiss      = "once_miss"
	EventPostFailed    = "post_failed"
	EventRetryAttempt  = "retry_attempt"
	EventRetryExhaust  = "retry_exhausted"
	EventRetryBypassed = "retry_bypassed"
)

var (
	// DecoratorEvents counts combinator activity per wrapped callable.
	DecoratorEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "koans_decorator_events_total",
			Help: "Total number of combinator events by callable and event type",
		},
		[]string{"callable", "event"},
	)

	// ScoresTotal counts scored Greed rolls.
	ScoresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "koans_scores_total",
			Help: "Total number of Greed rolls scored",
		},
	)

	// ScorePoints tracks the distribution of Greed scores.
	ScorePoints = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "koans_score_points",
			Help:    "Points awarded per scored Greed roll",
			Buckets: []float64{0, 50, 100, 200, 300, 500, 1000, 2000, 3000},
		},
	)

	// FetchDuration tracks page fetch latency per engine.
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "koans_fetch_duration_seconds",
			Help:    "Screenplay page fetch latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"engine"},
	)

	// CacheLookups counts page cache lookups by result (hit/miss).
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "koans_cache_lookups_total",
			Help: "Total number of page cache lookups",
		},
		[]string{"result"},
	)
)

// RecordScore observes one scored roll.
func RecordScore(points int) {
	ScoresTotal.Inc()
	ScorePoints.Observe(float64(points))
}
