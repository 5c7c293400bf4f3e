package metrics

import (
	"net/http"
	"strings"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/platform/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Blob cleanup outcomes used as the "result" label.
const (
	CleanupDeleted   = "deleted"
	CleanupRetried   = "retried"
	CleanupAbandoned = "abandoned"
	CleanupQueued    = "queued"
)

// MetricsManager holds the service's Prometheus collectors on a private registry.
type MetricsManager struct {
	Registry *prometheus.Registry

	ListingsCreatedTotal  prometheus.Counter
	ListingsDeletedTotal  prometheus.Counter
	RatingsSubmittedTotal prometheus.Counter
	CommentsAddedTotal    prometheus.Counter
	CommentsRemovedTotal  prometheus.Counter
	LikesToggledTotal     *prometheus.CounterVec
	TrackingToggledTotal  *prometheus.CounterVec
	BlobCleanupTotal      *prometheus.CounterVec
	APIErrorsTotal        *prometheus.CounterVec
	APILatency            *prometheus.HistogramVec
}

// NewMetricsManager creates and registers all collectors under the given namespace.
func NewMetricsManager(serviceName string) *MetricsManager {
	namespace := strings.ReplaceAll(serviceName, "-", "_")
	registry := prometheus.NewRegistry()

	m := &MetricsManager{
		Registry: registry,
		ListingsCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listings_created_total",
			Help:      "Total number of listings that reached the complete state.",
		}),
		ListingsDeletedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listings_deleted_total",
			Help:      "Total number of listings deleted by their owners.",
		}),
		RatingsSubmittedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratings_submitted_total",
			Help:      "Total number of rating submissions.",
		}),
		CommentsAddedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comments_added_total",
			Help:      "Total number of comments added.",
		}),
		CommentsRemovedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comments_removed_total",
			Help:      "Total number of comment removal requests.",
		}),
		LikesToggledTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comment_likes_toggled_total",
			Help:      "Comment like toggles by resulting state.",
		}, []string{"liked"}),
		TrackingToggledTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tracking_toggled_total",
			Help:      "Tracking toggles by resulting state.",
		}, []string{"tracked"}),
		BlobCleanupTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blob_cleanup_total",
			Help:      "Orphan blob cleanup outcomes.",
		}, []string{"result"}),
		APIErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_errors_total",
			Help:      "Total number of API errors by route and status code.",
		}, []string{"route", "status"}),
		APILatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_latency_seconds",
			Help:      "Latency of API requests by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	registry.MustRegister(
		m.ListingsCreatedTotal,
		m.ListingsDeletedTotal,
		m.RatingsSubmittedTotal,
		m.CommentsAddedTotal,
		m.CommentsRemovedTotal,
		m.LikesToggledTotal,
		m.TrackingToggledTotal,
		m.BlobCleanupTotal,
		m.APIErrorsTotal,
		m.APILatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *MetricsManager) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// NewMetricsServer returns the HTTP server for /metrics, or nil when port is empty.
func NewMetricsServer(port string, appLogger *logger.Logger, m *MetricsManager) *http.Server {
	if port == "" {
		appLogger.Info("Prometheus metrics server port not configured, server will not start")
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	appLogger.Info("Prometheus metrics server configured", zap.String("port", port), zap.String("path", "/metrics"))
	return &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}
}
