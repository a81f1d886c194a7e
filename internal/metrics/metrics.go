// Package metrics exposes the service's Prometheus collectors on a dedicated registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "phishing"

const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Recorder holds the service collectors. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	analysesTotal         *prometheus.CounterVec
	analysisDuration      prometheus.Histogram
	persistenceFallbacks  *prometheus.CounterVec
	batchItemsTotal       *prometheus.CounterVec
	statisticsDegradation prometheus.Counter
}

// New creates a Recorder with every collector registered, plus the Go runtime
// and process collectors.
func New() (*Recorder, error) {
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		analysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analyses_total",
				Help:      "Total number of URL analyses by prediction",
			},
			[]string{"prediction"},
		),
		analysisDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "analysis_duration_seconds",
				Help:      "Time spent analyzing a single URL",
				Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
			},
		),
		persistenceFallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "persistence_fallbacks_total",
				Help:      "Total number of analyses returned without being persisted",
			},
			[]string{"operation"},
		),
		batchItemsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "batch_items_total",
				Help:      "Total number of batch items processed by outcome",
			},
			[]string{"outcome"},
		),
		statisticsDegradation: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "statistics_degraded_total",
				Help:      "Total number of statistics snapshots replaced by a zeroed snapshot",
			},
		),
	}

	cs := []prometheus.Collector{
		r.analysesTotal,
		r.analysisDuration,
		r.persistenceFallbacks,
		r.batchItemsTotal,
		r.statisticsDegradation,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}

	for _, c := range cs {
		if err := r.registry.Register(c); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func (r *Recorder) ObserveAnalysis(prediction string, seconds float64) {
	if r == nil {
		return
	}
	r.analysesTotal.WithLabelValues(prediction).Inc()
	r.analysisDuration.Observe(seconds)
}

func (r *Recorder) PersistenceFallback(operation string) {
	if r == nil {
		return
	}
	r.persistenceFallbacks.WithLabelValues(operation).Inc()
}

func (r *Recorder) BatchItem(outcome string) {
	if r == nil {
		return
	}
	r.batchItemsTotal.WithLabelValues(outcome).Inc()
}

func (r *Recorder) StatisticsDegraded() {
	if r == nil {
		return
	}
	r.statisticsDegradation.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
