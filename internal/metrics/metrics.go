// Package metrics exposes Prometheus collectors for the extraction pipeline.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/agenthands/ordex/internal/core/model"
)

type Metrics struct {
	Extractions        *prometheus.CounterVec
	GenerativeCalls    *prometheus.CounterVec
	GenerativeDuration prometheus.Histogram
	FieldsRecovered    *prometheus.CounterVec
	FieldsMissing      *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Extractions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ordex_extractions_total",
			Help: "Documents processed, by engine label.",
		}, []string{"engine"}),
		GenerativeCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ordex_generative_calls_total",
			Help: "Generative fallback calls, by outcome.",
		}, []string{"outcome"}),
		GenerativeDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "ordex_generative_call_duration_seconds",
			Help:    "Latency of generative fallback calls.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 9),
		}),
		FieldsRecovered: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ordex_fields_recovered_total",
			Help: "Fields filled by the generative fallback.",
		}, []string{"field"}),
		FieldsMissing: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ordex_fields_missing_total",
			Help: "Fields absent from the final result.",
		}, []string{"field"}),
	}
}

func (m *Metrics) ObserveResult(r model.ExtractionResult) {
	if m == nil {
		return
	}
	m.Extractions.WithLabelValues(string(r.Engine)).Inc()
	for _, f := range r.Missing() {
		m.FieldsMissing.WithLabelValues(string(f)).Inc()
	}
}

func (m *Metrics) ObserveGenerative(ok bool, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.GenerativeCalls.WithLabelValues(outcome).Inc()
	m.GenerativeDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveRecovered(fields []model.Field) {
	if m == nil {
		return
	}
	for _, f := range fields {
		m.FieldsRecovered.WithLabelValues(string(f)).Inc()
	}
}
