// Package metrics собирает prometheus-метрики сервиса в отдельном реестре.
// Все методы безопасны для nil-получателя, поэтому метрики можно не передавать в тестах.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shopping_mall"

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

type Metrics struct {
	registry *prometheus.Registry

	useCaseRequests *prometheus.CounterVec
	useCaseDuration *prometheus.HistogramVec
	orderCollisions prometheus.Counter
	cacheLookups    *prometheus.CounterVec
	uploadFailures  prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		useCaseRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "usecase_requests_total",
			Help:      "Number of use case invocations by outcome.",
		}, []string{"use_case", "outcome"}),
		useCaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "usecase_duration_seconds",
			Help:      "Use case latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"use_case"}),
		orderCollisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_number_collisions_total",
			Help:      "Generated order numbers that were already taken.",
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by namespace and result.",
		}, []string{"namespace", "result"}),
		uploadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "object_upload_failures_total",
			Help:      "Failed object storage uploads.",
		}),
	}
	reg.MustRegister(
		m.useCaseRequests,
		m.useCaseDuration,
		m.orderCollisions,
		m.cacheLookups,
		m.uploadFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler отдает метрики для /metrics
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveUseCase записывает исход и длительность вызова. Удобно через defer.
func (m *Metrics) ObserveUseCase(useCase string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	m.useCaseRequests.WithLabelValues(useCase, outcome).Inc()
	m.useCaseDuration.WithLabelValues(useCase).Observe(time.Since(start).Seconds())
}

func (m *Metrics) OrderNumberCollision() {
	if m == nil {
		return
	}
	m.orderCollisions.Inc()
}

func (m *Metrics) CacheLookup(namespace string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(namespace, result).Inc()
}

func (m *Metrics) UploadFailure() {
	if m == nil {
		return
	}
	m.uploadFailures.Inc()
}
