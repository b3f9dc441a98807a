package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WebMetrics struct {
	service  string
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	uploadTotal     *prometheus.CounterVec
	uploadDuration  *prometheus.HistogramVec
	uploadInFlight  prometheus.Gauge
	copyTotal       *prometheus.CounterVec
	rateLimitedHits *prometheus.CounterVec
}

func NewWebMetrics(service string) *WebMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tsum",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tsum",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tsum",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	uploadTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tsum",
			Subsystem: "upload",
			Name:      "total",
			Help:      "Total settled transcript uploads by status.",
		},
		[]string{"service", "status"},
	)
	uploadDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tsum",
			Subsystem: "upload",
			Name:      "duration_seconds",
			Help:      "Time from submission until the summarizer answered.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service", "status"},
	)
	uploadInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tsum",
			Subsystem: "upload",
			Name:      "in_flight",
			Help:      "Number of uploads waiting for the summarizer.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	copyTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tsum",
			Subsystem: "clipboard",
			Name:      "copies_total",
			Help:      "Total summary copies to the clipboard by status.",
		},
		[]string{"service", "status"},
	)
	rateLimitedHits := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tsum",
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Total requests rejected by the UI rate limiter.",
		},
		[]string{"service", "path"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		uploadTotal,
		uploadDuration,
		uploadInFlight,
		copyTotal,
		rateLimitedHits,
	)

	return &WebMetrics{
		service:         service,
		registry:        registry,
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestInFlight: requestInFlight,
		uploadTotal:     uploadTotal,
		uploadDuration:  uploadDuration,
		uploadInFlight:  uploadInFlight,
		copyTotal:       copyTotal,
		rateLimitedHits: rateLimitedHits,
	}
}

func (m *WebMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WebMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *WebMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			m.service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(m.service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath keeps label cardinality bounded for unknown paths.
func normalizePath(path string) string {
	switch path {
	case "/", "/healthz", "/metrics",
		"/ui/state", "/ui/file", "/ui/file/clear", "/ui/upload", "/ui/summary", "/ui/copy":
		return path
	default:
		return "other"
	}
}

func (m *WebMetrics) RecordRateLimited(path string) {
	m.rateLimitedHits.WithLabelValues(m.service, normalizePath(path)).Inc()
}

func (m *WebMetrics) UploadStarted() {
	m.uploadInFlight.Inc()
}

func (m *WebMetrics) UploadFinished(duration time.Duration, err error) {
	m.uploadInFlight.Dec()

	status := statusLabel(err)
	m.uploadTotal.WithLabelValues(m.service, status).Inc()
	m.uploadDuration.WithLabelValues(m.service, status).Observe(duration.Seconds())
}

func (m *WebMetrics) SummaryCopied(err error) {
	m.copyTotal.WithLabelValues(m.service, statusLabel(err)).Inc()
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}
