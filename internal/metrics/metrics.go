// Package metrics defines Prometheus metrics for competitor-price-matcher.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cpm"

// HTTP metrics.
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	HealthzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "healthz_up",
		Help:      "1 when the last /healthz probe succeeded.",
	})

	ReadyzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "readyz_up",
		Help:      "1 when the last /readyz probe succeeded.",
	})
)

// Search API metrics.
var (
	SearchRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "search_requests_total",
		Help:      "Total search API requests by outcome.",
	}, []string{"outcome"})

	SearchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "search_duration_seconds",
		Help:      "Duration of search API requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	})
)

// Page fetch metrics.
var (
	FetchRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_requests_total",
		Help:      "Total page fetches by content kind and outcome.",
	}, []string{"kind", "outcome"})

	FetchRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_retries_total",
		Help:      "Total page fetch retries after 429, 5xx, 403 or 406 responses.",
	})

	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "fetch_duration_seconds",
		Help:      "Duration of page fetches in seconds, retries included.",
		Buckets:   prometheus.DefBuckets,
	})
)

// Extraction and matching metrics.
var (
	OffersExtractedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "offers_extracted_total",
		Help:      "Total offers extracted, by origin.",
	}, []string{"origin"})

	PlatformDetectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "platform_detected_total",
		Help:      "Total fetched pages by sniffed platform.",
	}, []string{"platform"})

	GateRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_rejections_total",
		Help:      "Total offers rejected by the matcher, by gate.",
	}, []string{"reason"})
)

// Resolution metrics.
var (
	ResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resolutions_total",
		Help:      "Total (target, scope) resolutions by status and matching tier.",
	}, []string{"status", "tier"})

	TierFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tier_failures_total",
		Help:      "Total query tiers that failed with a search or fetch error.",
	}, []string{"tier"})

	ResolveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "resolve_duration_seconds",
		Help:      "Duration of resolving one target across all scopes.",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
	})
)

// Batch run metrics.
var (
	BatchRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "batch_runs_total",
		Help:      "Total batch runs by final status.",
	}, []string{"status"})

	BatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "batch_duration_seconds",
		Help:      "Duration of batch runs in seconds.",
		Buckets:   []float64{10, 30, 60, 300, 600, 1800, 3600},
	})

	BatchChanges = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "batch_changes",
		Help:      "Number of changed results in the last batch run.",
	})

	SchedulerNextRunTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "scheduler_next_run_timestamp",
		Help:      "Unix timestamp of the next scheduled batch run.",
	})

	ResultsPrunedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "results_pruned_total",
		Help:      "Total result rows removed by retention pruning.",
	})
)

// Pacing metrics.
var (
	PacingDailyUsage = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "pacing_daily_usage",
		Help:      "Outbound requests made within the rolling 24-hour window.",
	})

	PacingDailyLimitHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pacing_daily_limit_hits_total",
		Help:      "Total number of times the daily request cap was reached.",
	})

	CatalogCostAvailable = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "catalog_cost_available",
		Help:      "Throttle cost available as last reported by the catalog API.",
	})
)

// Notification metrics.
var (
	NotificationsSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_sent_total",
		Help:      "Total change notifications delivered.",
	})

	NotificationFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_failures_total",
		Help:      "Total number of notification send failures.",
	})

	NotificationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_duration_seconds",
		Help:      "Duration of notification webhook calls in seconds.",
		Buckets:   prometheus.DefBuckets,
	})
)
