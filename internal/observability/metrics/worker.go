package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	processTotal       *prometheus.CounterVec
	processDuration    *prometheus.HistogramVec
	processInFlight    prometheus.Gauge
	queueLag           *prometheus.HistogramVec
	stageFallbackTotal *prometheus.CounterVec
	resumedTotal       *prometheus.CounterVec

	service string
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	processTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "legalease",
			Subsystem: "worker",
			Name:      "document_process_total",
			Help:      "Total processed documents by status.",
		},
		[]string{"service", "status"},
	)
	processDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "legalease",
			Subsystem: "worker",
			Name:      "document_process_duration_seconds",
			Help:      "Document processing duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	processInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "legalease",
			Subsystem: "worker",
			Name:      "document_process_in_flight",
			Help:      "Number of in-flight document processing runs.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "legalease",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between document upload and processing start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)
	stageFallbackTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "legalease",
			Subsystem: "worker",
			Name:      "stage_fallback_total",
			Help:      "Total pipeline stages that degraded to fallback output.",
		},
		[]string{"service", "stage"},
	)
	resumedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "legalease",
			Subsystem: "worker",
			Name:      "documents_resumed_total",
			Help:      "Total stuck documents re-enqueued by the resume job.",
		},
		[]string{"service"},
	)

	registry.MustRegister(processTotal, processDuration, processInFlight, queueLag, stageFallbackTotal, resumedTotal)

	return &WorkerMetrics{
		registry:           registry,
		processTotal:       processTotal,
		processDuration:    processDuration,
		processInFlight:    processInFlight,
		queueLag:           queueLag,
		stageFallbackTotal: stageFallbackTotal,
		resumedTotal:       resumedTotal,
		service:            service,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartDocument() {
	m.processInFlight.Inc()
}

func (m *WorkerMetrics) FinishDocument(duration time.Duration, err error) {
	m.processInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.processTotal.WithLabelValues(m.service, status).Inc()
	m.processDuration.WithLabelValues(m.service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveQueueLag(lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(m.service).Observe(lag.Seconds())
}

// StageFallback satisfies the pipeline observer contract.
func (m *WorkerMetrics) StageFallback(stage string) {
	if stage == "" {
		stage = "unknown"
	}
	m.stageFallbackTotal.WithLabelValues(m.service, stage).Inc()
}

func (m *WorkerMetrics) RecordResumed(count int) {
	if count <= 0 {
		return
	}
	m.resumedTotal.WithLabelValues(m.service).Add(float64(count))
}
