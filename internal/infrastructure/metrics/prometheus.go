// Package metrics exposes conversion metrics to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ersonp/gnsstime/internal/domain/entities"
)

const namespace = "gnsstime"

// Metrics holds all Prometheus metrics. It implements ports.ConversionMetrics.
type Metrics struct {
	registry *prometheus.Registry

	ConversionsTotal   *prometheus.CounterVec
	ConversionErrors   *prometheus.CounterVec
	ConversionHops     prometheus.Histogram
	ConversionDuration prometheus.Histogram
	Corrections        prometheus.Gauge
}

// NewMetrics creates the metrics on a private registry, together with the
// process and Go runtime collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		ConversionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "conversions_total",
				Help:      "Total number of successful epoch conversions",
			},
			[]string{"source", "target", "extrapolated"},
		),

		ConversionErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "conversion_errors_total",
				Help:      "Total number of failed epoch conversions",
			},
			[]string{"source", "target", "reason"},
		),

		ConversionHops: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "conversion_hops",
				Help:      "Number of corrections applied per conversion",
				Buckets:   []float64{0, 1, 2, 3, 4, 6, 9},
			},
		),

		ConversionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "conversion_duration_seconds",
				Help:      "Duration of epoch conversions",
				Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
			},
		),

		Corrections: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "corrections",
				Help:      "Number of corrections in the active database",
			},
		),
	}
}

// ObserveConversion records a successful conversion.
func (m *Metrics) ObserveConversion(source, target entities.TimeScale, hops int, extrapolated bool, elapsed time.Duration) {
	m.ConversionsTotal.WithLabelValues(source.String(), target.String(), strconv.FormatBool(extrapolated)).Inc()
	m.ConversionHops.Observe(float64(hops))
	m.ConversionDuration.Observe(elapsed.Seconds())
}

// ObserveConversionError records a failed conversion.
func (m *Metrics) ObserveConversionError(source, target entities.TimeScale, reason string) {
	m.ConversionErrors.WithLabelValues(source.String(), target.String(), reason).Inc()
}

// SetCorrections records the size of the active database.
func (m *Metrics) SetCorrections(n int) {
	m.Corrections.Set(float64(n))
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
