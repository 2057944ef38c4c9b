package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	SnapshotLoadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crossref_snapshot_load_seconds",
		Help:    "Time spent loading and indexing a snapshot.",
		Buckets: prometheus.DefBuckets,
	}, []string{"project"})

	SnapshotElements = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "crossref_snapshot_elements_total",
		Help: "Number of code elements in the loaded snapshot.",
	}, []string{"project"})

	SnapshotEdges = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "crossref_snapshot_edges_total",
		Help: "Number of relationship edges in the loaded snapshot.",
	}, []string{"project"})

	SnapshotReloadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crossref_snapshot_reloads_total",
		Help: "Total number of snapshot loads, including reloads after invalidation.",
	})

	QueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crossref_query_seconds",
		Help:    "Time spent answering a relationship query.",
		Buckets: prometheus.DefBuckets,
	}, []string{"query_type"})

	ImpactDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "crossref_impact_seconds",
		Help:    "Time spent on a change-impact analysis.",
		Buckets: prometheus.DefBuckets,
	})

	DanglingEdgesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crossref_dangling_edges_total",
		Help: "Total number of edges skipped during traversal because the target element is missing.",
	})

	PatternCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crossref_pattern_cache_hits_total",
		Help: "Total number of pattern cache hits.",
	})

	PatternCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crossref_pattern_cache_misses_total",
		Help: "Total number of pattern cache misses, including expired entries.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crossref_watcher_events_total",
		Help: "Total number of file system events received by the snapshot watcher.",
	})

	DriftChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crossref_drift_checks_total",
		Help: "Total number of drift computations, labelled by resulting severity.",
	}, []string{"severity"})
)
