package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   prometheus.CounterVec
	HTTPRequestDuration prometheus.HistogramVec

	// Story metrics
	StoriesCreatedTotal prometheus.Counter
	StoryViewsTotal     prometheus.Counter
	StoryDeletesTotal   prometheus.CounterVec

	// Messaging metrics
	MessagesSentTotal prometheus.Counter

	// Search metrics
	SearchesTotal prometheus.CounterVec

	// Upload metrics
	UploadsTotal    prometheus.CounterVec
	UploadDuration  prometheus.HistogramVec
	UploadSizeBytes prometheus.HistogramVec

	// Reconciliation metrics
	CountersReconciledTotal prometheus.Counter
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),

			StoriesCreatedTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "stories_created_total",
				Help: "Total number of stories created",
			}),
			StoryViewsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "story_views_total",
				Help: "Total number of first-time story views recorded",
			}),
			StoryDeletesTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "story_deletes_total",
					Help: "Total number of story delete attempts",
				},
				[]string{"outcome"},
			),

			MessagesSentTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "messages_sent_total",
				Help: "Total number of chat messages sent",
			}),

			SearchesTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "searches_total",
					Help: "Total number of search requests",
				},
				[]string{"outcome"},
			),

			UploadsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "media_uploads_total",
					Help: "Total number of media uploads",
				},
				[]string{"backend", "outcome"},
			),
			UploadDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "media_upload_duration_seconds",
					Help:    "Media upload latency in seconds",
					Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
				},
				[]string{"backend"},
			),
			UploadSizeBytes: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "media_upload_size_bytes",
					Help:    "Media upload payload size in bytes",
					Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
				},
				[]string{"backend"},
			),

			CountersReconciledTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "counters_reconciled_total",
				Help: "Total number of drifted counters corrected by reconciliation",
			}),
		}
	})
	return instance
}

// Get returns the metrics instance, initializing it on first use
func Get() *Metrics {
	return Initialize()
}
