// Package metrics records formulation activity as Prometheus metrics. The
// CLI writes the registry to a node_exporter textfile when asked to.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ration"

// Recorder holds the formulation metrics. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	formulations     *prometheus.CounterVec
	solveDuration    *prometheus.HistogramVec
	ignoredOverrides prometheus.Counter
}

// NewRecorder registers the formulation metrics with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		formulations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "formulations_total",
			Help:      "Formulation requests by path and outcome.",
		}, []string{"path", "outcome"}),
		solveDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "solve_duration_seconds",
			Help:      "Time spent in the LP solver by solver status.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 5},
		}, []string{"status"}),
		ignoredOverrides: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ignored_price_overrides_total",
			Help:      "Price overrides that named no known ingredient.",
		}),
	}
}

// ObserveFormulation counts one finished request. outcome is "success" or a
// failure reason.
func (r *Recorder) ObserveFormulation(path, outcome string) {
	if r == nil {
		return
	}
	r.formulations.WithLabelValues(path, outcome).Inc()
}

// ObserveSolve records the duration of one solver run.
func (r *Recorder) ObserveSolve(status string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.solveDuration.WithLabelValues(status).Observe(elapsed.Seconds())
}

// AddIgnoredOverrides counts price overrides that were dropped.
func (r *Recorder) AddIgnoredOverrides(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.ignoredOverrides.Add(float64(n))
}

// WriteTextfile writes everything in g to path in the text exposition format.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("failed to write metrics textfile %s: %w", path, err)
	}
	return nil
}
