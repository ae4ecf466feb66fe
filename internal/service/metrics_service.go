package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Archive operation results used as metric labels.
const (
	ArchiveResultSuccess  = "success"
	ArchiveResultNotFound = "not_found"
	ArchiveResultConflict = "conflict"
	ArchiveResultFailure  = "failure"
)

// MetricsService encapsulates Prometheus instrumentation. A nil receiver is a no-op.
type MetricsService struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	archiveTotal     *prometheus.CounterVec
	archiveDuration  *prometheus.HistogramVec
	assetsTotal      *prometheus.CounterVec
	cleanupAbandoned prometheus.Counter
	cacheLookups     *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	archiveTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "archive_operations_total",
		Help: "Project archival attempts by result",
	}, []string{"result"})

	archiveDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "archive_duration_seconds",
		Help:    "End to end duration of project archival",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"result"})

	assetsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "archive_assets_deleted_total",
		Help: "Object store deletions attempted during archival by outcome",
	}, []string{"outcome"})

	cleanupAbandoned := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "archive_asset_cleanup_abandoned_total",
		Help: "Asset deletions that exhausted their retries",
	})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "archive_cache_lookups_total",
		Help: "Archived project cache lookups by result",
	}, []string{"result"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, archiveTotal, archiveDuration, assetsTotal, cleanupAbandoned, cacheLookups, goroutines)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		archiveTotal:     archiveTotal,
		archiveDuration:  archiveDuration,
		assetsTotal:      assetsTotal,
		cleanupAbandoned: cleanupAbandoned,
		cacheLookups:     cacheLookups,
	}
}

// Registry exposes the underlying registry for tests and custom collectors.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveArchive records one archival attempt.
func (m *MetricsService) ObserveArchive(result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.archiveTotal.WithLabelValues(result).Inc()
	m.archiveDuration.WithLabelValues(result).Observe(duration.Seconds())
}

// RecordAssetDeletion counts one object store removal by outcome.
func (m *MetricsService) RecordAssetDeletion(outcome string) {
	if m == nil {
		return
	}
	m.assetsTotal.WithLabelValues(outcome).Inc()
}

// RecordCleanupAbandoned counts a retried deletion that was given up on.
func (m *MetricsService) RecordCleanupAbandoned() {
	if m == nil {
		return
	}
	m.cleanupAbandoned.Inc()
}

// RecordCacheLookup counts archived project cache hits and misses.
func (m *MetricsService) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}
