// Package metrics exposes run progress as Prometheus collectors on a private
// registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"theoryea/internal/evo"
)

const namespace = "theoryea"

var labels = []string{"algorithm", "problem"}

// Recorder owns a registry with per algorithm and problem collectors.
// It is safe for concurrent runs.
type Recorder struct {
	registry *prometheus.Registry

	runs        *prometheus.CounterVec
	evaluations *prometheus.CounterVec
	generations *prometheus.CounterVec
	degenerate  *prometheus.CounterVec
	bestFitness *prometheus.GaugeVec
	lambda      *prometheus.GaugeVec
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed runs.",
		}, labels),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Fitness evaluations performed.",
		}, labels),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Generations completed.",
		}, labels),
		degenerate: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degenerate_duplicates_total",
			Help:      "Offspring evaluated as duplicates after the retry bound was hit.",
		}, labels),
		bestFitness: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "best_fitness",
			Help:      "Best fitness seen by the most recently reporting run.",
		}, labels),
		lambda: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "lambda",
			Help:      "Current offspring parameter of the 1+(lambda,lambda) GA.",
		}, labels),
	}
	r.registry.MustRegister(r.runs, r.evaluations, r.generations, r.degenerate, r.bestFitness, r.lambda)
	return r
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Observer returns an evo.Observer for a single run that feeds the
// collectors and then calls next, if any. Counters receive deltas, so each
// run needs its own observer.
func (r *Recorder) Observer(next evo.Observer) evo.Observer {
	var lastEvals, lastDegenerate int
	first := true
	return func(s evo.GenerationStats) {
		values := []string{string(s.Algorithm), s.Problem}
		r.evaluations.WithLabelValues(values...).Add(float64(s.Evaluations - lastEvals))
		if !first {
			r.generations.WithLabelValues(values...).Inc()
		}
		if d := s.DegenerateDuplicates - lastDegenerate; d > 0 {
			r.degenerate.WithLabelValues(values...).Add(float64(d))
		}
		r.bestFitness.WithLabelValues(values...).Set(s.BestFitness)
		if s.Algorithm == evo.AlgorithmLambdaLambda {
			r.lambda.WithLabelValues(values...).Set(s.Lambda)
		}
		lastEvals, lastDegenerate, first = s.Evaluations, s.DegenerateDuplicates, false

		if next != nil {
			next(s)
		}
	}
}

// RunCompleted counts a finished run.
func (r *Recorder) RunCompleted(algorithm evo.Algorithm, problem string) {
	r.runs.WithLabelValues(string(algorithm), problem).Inc()
}

// WriteTextfile dumps the registry in the text exposition format for a
// node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
