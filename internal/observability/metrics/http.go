package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	uploadBytes         *prometheus.HistogramVec
	qaRequestsTotal     *prometheus.CounterVec
	qaRetrievalHitTotal *prometheus.CounterVec
	qaNoContextTotal    *prometheus.CounterVec
	qaRetrievedClauses  *prometheus.HistogramVec
	qaDuration          *prometheus.HistogramVec
	translateTotal      *prometheus.CounterVec
	ttsTotal            *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "legalease",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "legalease",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "legalease",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	uploadBytes := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "legalease",
			Subsystem: "http",
			Name:      "upload_bytes",
			Help:      "Distribution of uploaded document sizes in bytes.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		},
		[]string{"service"},
	)
	qaRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "legalease",
			Subsystem: "qa",
			Name:      "requests_total",
			Help:      "Total successful Q&A requests.",
		},
		[]string{"service"},
	)
	qaRetrievalHitTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "legalease",
			Subsystem: "qa",
			Name:      "retrieval_hit_total",
			Help:      "Total Q&A requests with at least one retrieved clause.",
		},
		[]string{"service"},
	)
	qaNoContextTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "legalease",
			Subsystem: "qa",
			Name:      "no_context_total",
			Help:      "Total Q&A requests answered without retrieved clauses.",
		},
		[]string{"service"},
	)
	qaRetrievedClauses := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "legalease",
			Subsystem: "qa",
			Name:      "retrieved_clauses",
			Help:      "Distribution of retrieved clauses per successful Q&A request.",
			Buckets:   []float64{0, 1, 2, 3},
		},
		[]string{"service"},
	)
	qaDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "legalease",
			Subsystem: "qa",
			Name:      "duration_seconds",
			Help:      "Q&A execution duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	translateTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "legalease",
			Subsystem: "translate",
			Name:      "requests_total",
			Help:      "Total translation requests by target language.",
		},
		[]string{"service", "language"},
	)
	ttsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "legalease",
			Subsystem: "tts",
			Name:      "requests_total",
			Help:      "Total speech synthesis requests by language.",
		},
		[]string{"service", "language"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		uploadBytes,
		qaRequestsTotal,
		qaRetrievalHitTotal,
		qaNoContextTotal,
		qaRetrievedClauses,
		qaDuration,
		translateTotal,
		ttsTotal,
	)

	return &HTTPServerMetrics{
		registry:            registry,
		requestTotal:        requestTotal,
		requestDuration:     requestDuration,
		requestInFlight:     requestInFlight,
		uploadBytes:         uploadBytes,
		qaRequestsTotal:     qaRequestsTotal,
		qaRetrievalHitTotal: qaRetrievalHitTotal,
		qaNoContextTotal:    qaNoContextTotal,
		qaRetrievedClauses:  qaRetrievedClauses,
		qaDuration:          qaDuration,
		translateTotal:      translateTotal,
		ttsTotal:            ttsTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
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
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	if rest, ok := strings.CutPrefix(path, "/v1/documents/"); ok {
		if idx := strings.Index(rest, "/"); idx >= 0 {
			return "/v1/documents/{document_id}/" + rest[idx+1:]
		}
		return "/v1/documents/{document_id}"
	}
	return path
}

func (m *HTTPServerMetrics) RecordUploadSize(service string, sizeBytes int64) {
	if sizeBytes <= 0 {
		return
	}
	m.uploadBytes.WithLabelValues(service).Observe(float64(sizeBytes))
}

func (m *HTTPServerMetrics) RecordQAObservation(service string, clauseCount int, duration time.Duration) {
	m.qaRequestsTotal.WithLabelValues(service).Inc()
	m.qaRetrievedClauses.WithLabelValues(service).Observe(float64(clauseCount))
	m.qaDuration.WithLabelValues(service).Observe(duration.Seconds())

	if clauseCount > 0 {
		m.qaRetrievalHitTotal.WithLabelValues(service).Inc()
		return
	}
	m.qaNoContextTotal.WithLabelValues(service).Inc()
}

func (m *HTTPServerMetrics) RecordTranslate(service, language string) {
	if language == "" {
		language = "unknown"
	}
	m.translateTotal.WithLabelValues(service, language).Inc()
}

func (m *HTTPServerMetrics) RecordTTS(service, language string) {
	if language == "" {
		language = "unknown"
	}
	m.ttsTotal.WithLabelValues(service, language).Inc()
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

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
