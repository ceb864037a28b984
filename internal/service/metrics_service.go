package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API
// and the rendering pipeline.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	renderDuration  prometheus.Histogram
	renderedReports prometheus.Counter
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
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

	renderDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "report_render_duration_seconds",
		Help:    "Time spent composing and rendering report card batches",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
	})

	renderedReports := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "report_cards_rendered_total",
		Help: "Total number of report cards rendered",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "template_cache_hits_total",
		Help: "Total template cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "template_cache_misses_total",
		Help: "Total template cache misses",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, renderDuration, renderedReports, cacheHits, cacheMisses, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		renderDuration:  renderDuration,
		renderedReports: renderedReports,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
	}
}

// Handler exposes the registry for the /metrics endpoint.
func (m *MetricsService) Handler() http.Handler {
	return m.handler
}

// ObserveRequest records one handled HTTP request.
func (m *MetricsService) ObserveRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, strconv.Itoa(status)}
	m.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(labels...).Inc()
}

// ObserveRender records one finished batch render.
func (m *MetricsService) ObserveRender(duration time.Duration, reports int) {
	m.renderDuration.Observe(duration.Seconds())
	m.renderedReports.Add(float64(reports))
}

// CacheHit counts a template cache hit.
func (m *MetricsService) CacheHit() { m.cacheHits.Inc() }

// CacheMiss counts a template cache miss.
func (m *MetricsService) CacheMiss() { m.cacheMisses.Inc() }
