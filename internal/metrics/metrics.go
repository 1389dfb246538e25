package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Fetches issued against the content source.
	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threadfeed_fetches_total",
			Help: "Total number of fetches issued against the content source",
		},
		[]string{"kind", "status"},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "threadfeed_fetch_duration_seconds",
			Help:    "Content source fetch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	StaleResponses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "threadfeed_stale_responses_total",
			Help: "Responses discarded because the filters changed while they were in flight",
		},
	)

	PostsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "threadfeed_posts_dropped_total",
			Help: "Raw records dropped during normalization",
		},
	)

	PostsCollected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threadfeed_posts_collected_total",
			Help: "Posts written to ranked leaderboards by the collector",
		},
		[]string{"scope", "sort"},
	)

	ApplicationInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "threadfeed_application_info",
			Help: "Application information",
		},
		[]string{"version"},
	)
)

// Init records static application information.
func Init(version string) {
	ApplicationInfo.WithLabelValues(version).Set(1)
}
