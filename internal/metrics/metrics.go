package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendation pipeline metrics
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "miscite_recommend_runs_total",
			Help: "Total number of recommendation runs by terminal status",
		},
		[]string{"status"},
	)

	CandidatesPerRun = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "miscite_recommend_candidates_per_run",
			Help:    "Number of normalized candidates entering the merge pass",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250},
		},
	)

	MergesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "miscite_recommend_merges_total",
			Help: "Total number of candidates absorbed by redundancy merges",
		},
	)

	BuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "miscite_recommend_build_duration_seconds",
			Help:    "Recommendation build duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "miscite_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "status"},
	)
)
