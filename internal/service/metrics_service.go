package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/popspot-calendar/internal/filter"
	"github.com/noah-isme/popspot-calendar/internal/models"
)

// MetricsService owns the Prometheus registry and keeps running totals for
// the /metrics/summary snapshot.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheLookups    *prometheus.CounterVec
	sourceDuration  *prometheus.HistogramVec
	pipelineDropped *prometheus.CounterVec
	warmupRuns      *prometheus.CounterVec

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	sourceCount          uint64
	sourceFailureCount   uint64
	sourceDurationTotal  uint64
}

// NewMetricsService registers the calendar collectors on a private registry.
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

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "calendar_cache_read_seconds",
		Help:    "Latency of month summary cache reads",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "calendar_cache_write_seconds",
		Help:    "Latency of month summary cache writes",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "calendar_cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "calendar_cache_lookups_total",
		Help: "Cache lookups by result",
	}, []string{"result"})

	sourceDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "calendar_source_request_seconds",
		Help:    "Duration of event source calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "outcome"})

	pipelineDropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "calendar_filter_dropped_total",
		Help: "Items removed by the local filter pipeline",
	}, []string{"stage"})

	warmupRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "calendar_warmup_runs_total",
		Help: "Month summary warm-up jobs by outcome",
	}, []string{"outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheLookups,
		sourceDuration, pipelineDropped, warmupRuns, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHitRatio:   cacheHitRatio,
		cacheLookups:    cacheLookups,
		sourceDuration:  sourceDuration,
		pipelineDropped: pipelineDropped,
		warmupRuns:      warmupRuns,
	}
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

// Registry is exposed for tests.
func (m *MetricsService) Registry() *prometheus.Registry { return m.registry }

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records a cache lookup and refreshes the hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheLookups.WithLabelValues("miss").Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	total := hits + atomic.LoadUint64(&m.cacheMissCount)
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks cache write latency.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveSourceCall records one event source call.
func (m *MetricsService) ObserveSourceCall(operation string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
		atomic.AddUint64(&m.sourceFailureCount, 1)
	}
	m.sourceDuration.WithLabelValues(operation, outcome).Observe(duration.Seconds())
	atomic.AddUint64(&m.sourceCount, 1)
	atomic.AddUint64(&m.sourceDurationTotal, uint64(duration.Nanoseconds()))
}

// ObservePipeline adds the per-stage drop counts of one pipeline run.
func (m *MetricsService) ObservePipeline(stats filter.Stats) {
	if m == nil {
		return
	}
	for stage, n := range stats.Dropped {
		if n > 0 {
			m.pipelineDropped.WithLabelValues(stage).Add(float64(n))
		}
	}
}

// ObserveWarmup counts a finished warm-up job.
func (m *MetricsService) ObserveWarmup(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.warmupRuns.WithLabelValues("error").Inc()
		return
	}
	m.warmupRuns.WithLabelValues("ok").Inc()
}

// Snapshot returns the running totals.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	sourceCalls := atomic.LoadUint64(&m.sourceCount)
	sourceDuration := atomic.LoadUint64(&m.sourceDurationTotal)

	out := models.SystemMetrics{
		CacheHits:      hits,
		CacheMisses:    misses,
		RequestsTotal:  requests,
		SourceCalls:    sourceCalls,
		SourceFailures: atomic.LoadUint64(&m.sourceFailureCount),
		Goroutines:     runtime.NumGoroutine(),
		GeneratedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if lookups := hits + misses; lookups > 0 {
		out.CacheHitRatio = float64(hits) / float64(lookups)
	}
	if requests > 0 {
		out.AverageRequestDurationMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}
	if sourceCalls > 0 {
		out.AverageSourceDurationMs = float64(sourceDuration) / float64(sourceCalls) / float64(time.Millisecond)
	}
	return out
}
