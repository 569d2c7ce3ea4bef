package stats

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"theoryea/internal/model"
)

// BenchmarkRun is one seed of a benchmark.
type BenchmarkRun struct {
	RunID       string  `json:"run_id"`
	Seed        int64   `json:"seed"`
	BestFitness float64 `json:"best_fitness"`
	Evaluations int     `json:"evaluations"`
	// EvaluationsToTarget is the evaluation count at the first checkpoint
	// that reached the target, or 0 when it was never reached.
	EvaluationsToTarget int  `json:"evaluations_to_target,omitempty"`
	ReachedTarget       bool `json:"reached_target"`
}

type SeriesStats struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

type BenchmarkSummary struct {
	Name         string         `json:"name"`
	GeneratedAt  string         `json:"generated_at_utc"`
	TotalRuns    int            `json:"total_runs"`
	Target       *float64       `json:"target,omitempty"`
	SuccessRuns  int            `json:"success_runs"`
	SuccessRate  float64        `json:"success_rate"`
	BestFitness  SeriesStats    `json:"best_fitness"`
	Evaluations  SeriesStats    `json:"evaluations"`
	ToTarget     *SeriesStats   `json:"evaluations_to_target,omitempty"`
	AverageTrace []PlotPoint    `json:"average_trace,omitempty"`
	Runs         []BenchmarkRun `json:"runs"`
}

// PlotPoint is the mean best fitness across runs at an evaluation count.
type PlotPoint struct {
	Evaluations int     `json:"evaluations"`
	Value       float64 `json:"value"`
}

// EvaluationsToTarget scans a trace for the first checkpoint whose best
// fitness reaches target.
func EvaluationsToTarget(trace []model.TracePoint, target float64) (int, bool) {
	for _, point := range trace {
		if point.BestFitness >= target {
			return point.Evaluations, true
		}
	}
	return 0, false
}

// SummarizeBenchmark aggregates runs. When target is set, success counts and
// evaluations-to-target statistics cover the runs that reached it.
func SummarizeBenchmark(name string, runs []BenchmarkRun, target *float64) BenchmarkSummary {
	summary := BenchmarkSummary{
		Name:        name,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339Nano),
		TotalRuns:   len(runs),
		Target:      cloneFloat64Ptr(target),
		Runs:        append([]BenchmarkRun(nil), runs...),
	}
	if len(runs) == 0 {
		return summary
	}

	best := make([]float64, len(runs))
	evals := make([]float64, len(runs))
	toTarget := make([]float64, 0, len(runs))
	for i, run := range runs {
		best[i] = run.BestFitness
		evals[i] = float64(run.Evaluations)
		if run.ReachedTarget {
			summary.SuccessRuns++
			toTarget = append(toTarget, float64(run.EvaluationsToTarget))
		}
	}
	summary.SuccessRate = float64(summary.SuccessRuns) / float64(len(runs))
	summary.BestFitness = seriesStats(best)
	summary.Evaluations = seriesStats(evals)
	if target != nil && len(toTarget) > 0 {
		s := seriesStats(toTarget)
		summary.ToTarget = &s
	}
	return summary
}

func seriesStats(values []float64) SeriesStats {
	if len(values) == 0 {
		return SeriesStats{}
	}
	out := SeriesStats{
		Mean: stat.Mean(values, nil),
		Min:  floats.Min(values),
		Max:  floats.Max(values),
	}
	// sample deviation is undefined for a single value
	if len(values) > 1 {
		out.Std = stat.StdDev(values, nil)
	}
	// infeasible knapsack runs score -MaxFloat64 and overflow the sums
	if math.IsInf(out.Mean, 0) || math.IsNaN(out.Mean) {
		out.Mean = out.Min
	}
	if math.IsInf(out.Std, 0) || math.IsNaN(out.Std) {
		out.Std = 0
	}
	return out
}

// AverageTrace samples every trace at evaluation counts step, 2*step, ... up
// to the longest trace and averages the best fitness known at each point.
// Runs whose trace starts after a sample point do not contribute to it.
func AverageTrace(traces [][]model.TracePoint, step int) []PlotPoint {
	if step <= 0 {
		step = 500
	}
	last := 0
	for _, trace := range traces {
		if n := len(trace); n > 0 && trace[n-1].Evaluations > last {
			last = trace[n-1].Evaluations
		}
	}

	points := make([]PlotPoint, 0, last/step+1)
	values := make([]float64, 0, len(traces))
	for at := step; at <= last; at += step {
		values = values[:0]
		for _, trace := range traces {
			if best, ok := bestAt(trace, at); ok {
				values = append(values, best)
			}
		}
		if len(values) == 0 {
			continue
		}
		mean := stat.Mean(values, nil)
		if math.IsInf(mean, 0) {
			mean = floats.Min(values)
		}
		points = append(points, PlotPoint{Evaluations: at, Value: mean})
	}
	return points
}

// bestAt returns the best fitness of the last checkpoint at or before evals.
func bestAt(trace []model.TracePoint, evals int) (float64, bool) {
	found := false
	best := 0.0
	for _, point := range trace {
		if point.Evaluations > evals {
			break
		}
		best = point.BestFitness
		found = true
	}
	return best, found
}

// WriteBenchmarkSummary writes <dir>/<name>_benchmark.json and returns its
// path.
func WriteBenchmarkSummary(dir string, summary BenchmarkSummary) (string, error) {
	if summary.Name == "" {
		return "", fmt.Errorf("benchmark name is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, summary.Name+"_benchmark.json")
	if err := writeJSON(path, summary); err != nil {
		return "", err
	}
	return path, nil
}

func cloneFloat64Ptr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	value := *v
	return &value
}
