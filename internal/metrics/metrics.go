// Package metrics provides Prometheus instrumentation for the optimization
// service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/optserve/simplexd/internal/optimization/neldermead"
)

// Collector holds the Prometheus instruments recorded by the optimizer
// surfaces.
type Collector struct {
	runs        *prometheus.CounterVec
	evaluations prometheus.Counter
	iterations  prometheus.Histogram
}

// NewCollector creates the instruments and registers them with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "simplexd",
			Subsystem: "optimizer",
			Name:      "runs_total",
			Help:      "Optimization runs completed, by terminal status.",
		}, []string{"status"}),
		evaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "simplexd",
			Subsystem: "optimizer",
			Name:      "objective_evaluations_total",
			Help:      "Objective function calls across all runs.",
		}),
		iterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "simplexd",
			Subsystem: "optimizer",
			Name:      "run_iterations",
			Help:      "Iterations until termination, per run.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}
	reg.MustRegister(c.runs, c.evaluations, c.iterations)
	return c
}

// ObserveRun records the outcome of a single optimizer run. A nil Collector
// records nothing, so callers do not need to guard.
func (c *Collector) ObserveRun(res *neldermead.Result) {
	if c == nil {
		return
	}
	c.runs.WithLabelValues(res.Status.String()).Inc()
	c.evaluations.Add(float64(res.Evaluations))
	c.iterations.Observe(float64(res.Iterations))
}
