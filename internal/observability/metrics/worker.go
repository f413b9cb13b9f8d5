package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	scanTotal      *prometheus.CounterVec
	scanDuration   *prometheus.HistogramVec
	corpusChunks   prometheus.Gauge
	reindexTotal   *prometheus.CounterVec
	rebuildSeconds *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	scanTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "viraat",
			Subsystem: "worker",
			Name:      "corpus_scan_total",
			Help:      "Total knowledge base scans by status.",
		},
		[]string{"service", "status"},
	)
	scanDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "viraat",
			Subsystem: "worker",
			Name:      "corpus_scan_duration_seconds",
			Help:      "Knowledge base scan duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	corpusChunks := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "viraat",
			Subsystem: "worker",
			Name:      "corpus_chunks",
			Help:      "Number of chunks loaded from the knowledge base.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	reindexTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "viraat",
			Subsystem: "worker",
			Name:      "reindex_published_total",
			Help:      "Total reindex notifications published.",
		},
		[]string{"service"},
	)
	rebuildSeconds := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "viraat",
			Subsystem: "index",
			Name:      "rebuild_duration_seconds",
			Help:      "Index rebuild duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)

	registry.MustRegister(scanTotal, scanDuration, corpusChunks, reindexTotal, rebuildSeconds)

	return &WorkerMetrics{
		registry:       registry,
		scanTotal:      scanTotal,
		scanDuration:   scanDuration,
		corpusChunks:   corpusChunks,
		reindexTotal:   reindexTotal,
		rebuildSeconds: rebuildSeconds,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) FinishScan(service string, duration time.Duration, chunkCount int, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	m.scanTotal.WithLabelValues(service, status).Inc()
	m.scanDuration.WithLabelValues(service, status).Observe(duration.Seconds())
	if err == nil {
		m.corpusChunks.Set(float64(chunkCount))
	}
}

func (m *WorkerMetrics) RecordReindexPublished(service string) {
	m.reindexTotal.WithLabelValues(service).Inc()
}

func (m *WorkerMetrics) ObserveRebuild(service string, duration time.Duration) {
	m.rebuildSeconds.WithLabelValues(service).Observe(duration.Seconds())
}
