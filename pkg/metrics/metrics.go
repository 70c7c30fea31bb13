package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	PagesFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imager_pages_fetched_total",
			Help: "Total number of source page fetch attempts.",
		},
		[]string{"status"}, // success, http_error, failure
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "imager_fetch_duration_seconds",
			Help:    "Duration of source page fetches.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 60},
		},
		[]string{"domain"},
	)

	CandidatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imager_candidates_total",
			Help: "Resolved image candidates by winning strategy.",
		},
		[]string{"strategy"}, // meta, jsonld, largest_img, none
	)

	ImagesSavedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "imager_images_saved_total",
			Help: "Total number of images downloaded and written.",
		},
	)

	SkipsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imager_skips_total",
			Help: "Records skipped during a run, by reason.",
		},
		[]string{"reason"},
	)
)
