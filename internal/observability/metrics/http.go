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

	chatRequestsTotal     *prometheus.CounterVec
	retrievalHitTotal     *prometheus.CounterVec
	retrievalMissTotal    *prometheus.CounterVec
	retrievedRefs         *prometheus.HistogramVec
	chatDuration          *prometheus.HistogramVec
	visualDirectivesTotal *prometheus.CounterVec
	authFailuresTotal     *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "viraat",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "viraat",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "viraat",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	chatRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "viraat",
			Subsystem: "chat",
			Name:      "requests_total",
			Help:      "Total successful chat requests.",
		},
		[]string{"service", "endpoint"},
	)
	retrievalHitTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "viraat",
			Subsystem: "retrieval",
			Name:      "hit_total",
			Help:      "Total chat requests with at least one retrieved reference.",
		},
		[]string{"service", "endpoint"},
	)
	retrievalMissTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "viraat",
			Subsystem: "retrieval",
			Name:      "miss_total",
			Help:      "Total chat requests answered without retrieved references.",
		},
		[]string{"service", "endpoint"},
	)
	retrievedRefs := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "viraat",
			Subsystem: "retrieval",
			Name:      "references",
			Help:      "Distribution of retrieved references per chat request.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8},
		},
		[]string{"service", "endpoint"},
	)
	chatDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "viraat",
			Subsystem: "chat",
			Name:      "duration_seconds",
			Help:      "Chat pipeline duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	visualDirectivesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "viraat",
			Subsystem: "visual",
			Name:      "directives_total",
			Help:      "Total visual directives emitted by entity type.",
		},
		[]string{"service", "entity_type"},
	)
	authFailuresTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "viraat",
			Subsystem: "auth",
			Name:      "failures_total",
			Help:      "Total rejected authentication attempts.",
		},
		[]string{"service", "reason"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		chatRequestsTotal,
		retrievalHitTotal,
		retrievalMissTotal,
		retrievedRefs,
		chatDuration,
		visualDirectivesTotal,
		authFailuresTotal,
	)

	return &HTTPServerMetrics{
		registry:              registry,
		requestTotal:          requestTotal,
		requestDuration:       requestDuration,
		requestInFlight:       requestInFlight,
		chatRequestsTotal:     chatRequestsTotal,
		retrievalHitTotal:     retrievalHitTotal,
		retrievalMissTotal:    retrievalMissTotal,
		retrievedRefs:         retrievedRefs,
		chatDuration:          chatDuration,
		visualDirectivesTotal: visualDirectivesTotal,
		authFailuresTotal:     authFailuresTotal,
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
	if rest, ok := strings.CutPrefix(path, "/v1/conversations/"); ok {
		if strings.HasSuffix(rest, "/messages") {
			return "/v1/conversations/{conversation_id}/messages"
		}
		return "/v1/conversations/{conversation_id}"
	}
	return path
}

func (m *HTTPServerMetrics) RecordChatObservation(service, endpoint string, sourceCount int, duration time.Duration) {
	m.chatRequestsTotal.WithLabelValues(service, endpoint).Inc()
	m.retrievedRefs.WithLabelValues(service, endpoint).Observe(float64(sourceCount))
	m.chatDuration.WithLabelValues(service, endpoint).Observe(duration.Seconds())

	if sourceCount > 0 {
		m.retrievalHitTotal.WithLabelValues(service, endpoint).Inc()
		return
	}
	m.retrievalMissTotal.WithLabelValues(service, endpoint).Inc()
}

func (m *HTTPServerMetrics) RecordVisualDirective(service, entityType string) {
	if entityType == "" {
		entityType = "unknown"
	}
	m.visualDirectivesTotal.WithLabelValues(service, entityType).Inc()
}

func (m *HTTPServerMetrics) RecordAuthFailure(service, reason string) {
	if reason == "" {
		reason = "unknown"
	}
	m.authFailuresTotal.WithLabelValues(service, reason).Inc()
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
