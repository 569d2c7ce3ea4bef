package problem

import (
	"math"
	"sort"

	"theoryea/internal/model"
)

// Knapsack is a multi-dimensional 0/1 knapsack instance: n items, m capacity
// constraints. Weights are indexed [constraint][item].
type Knapsack struct {
	name       string
	values     []float64
	weights    [][]float64
	capacities []float64
	optimum    float64

	// removal order used by Repair, lowest density first
	order []int
}

func NewKnapsack(name string, values []float64, weights [][]float64, capacities []float64, optimum float64) (*Knapsack, error) {
	n := len(values)
	if n == 0 {
		return nil, errorf(ErrProblem, "knapsack requires at least one item")
	}
	if len(weights) != len(capacities) {
		return nil, errorf(ErrProblem, "knapsack weight rows=%d capacities=%d", len(weights), len(capacities))
	}
	for j, row := range weights {
		if len(row) != n {
			return nil, errorf(ErrProblem, "knapsack constraint %d has %d weights, want %d", j, len(row), n)
		}
		for i, w := range row {
			if w < 0 || math.IsNaN(w) {
				return nil, errorf(ErrProblem, "knapsack weight [%d][%d] must be >= 0", j, i)
			}
		}
		if capacities[j] < 0 || math.IsNaN(capacities[j]) {
			return nil, errorf(ErrProblem, "knapsack capacity %d must be >= 0", j)
		}
	}

	k := &Knapsack{
		name:       name,
		values:     append([]float64(nil), values...),
		weights:    make([][]float64, len(weights)),
		capacities: append([]float64(nil), capacities...),
		optimum:    optimum,
	}
	for j := range weights {
		k.weights[j] = append([]float64(nil), weights[j]...)
	}
	k.order = k.removalOrder()
	return k, nil
}

func (k *Knapsack) Name() string { return KindKnapsack }

func (k *Knapsack) Instance() string { return k.name }

func (k *Knapsack) Length() int { return len(k.values) }

func (k *Knapsack) Constraints() int { return len(k.capacities) }

func (k *Knapsack) Optimum() (float64, bool) {
	return k.optimum, k.optimum > 0
}

func (k *Knapsack) Evaluate(genome model.Genome) (float64, error) {
	if err := checkLength(k, genome); err != nil {
		return 0, err
	}
	if !k.Feasible(genome) {
		return InfeasibleFitness, nil
	}
	total := 0.0
	for i, bit := range genome {
		if bit != 0 {
			total += k.values[i]
		}
	}
	return total, nil
}

func (k *Knapsack) Feasible(genome model.Genome) bool {
	return fits(k.loads(genome), k.capacities)
}

// Repair drops selected items, lowest value density first, until every
// capacity holds. Feasible genomes come back unchanged.
func (k *Knapsack) Repair(genome model.Genome) (model.Genome, error) {
	if err := checkLength(k, genome); err != nil {
		return nil, err
	}
	out := genome.Clone()
	loads := k.loads(out)
	for _, i := range k.order {
		if fits(loads, k.capacities) {
			break
		}
		if out[i] == 0 {
			continue
		}
		out[i] = 0
		for j := range loads {
			loads[j] -= k.weights[j][i]
		}
	}
	return out, nil
}

// Loads returns the used capacity of every constraint.
func (k *Knapsack) Loads(genome model.Genome) []float64 {
	return k.loads(genome)
}

func (k *Knapsack) Capacities() []float64 {
	return append([]float64(nil), k.capacities...)
}

func (k *Knapsack) loads(genome model.Genome) []float64 {
	loads := make([]float64, len(k.capacities))
	for i, bit := range genome {
		if bit == 0 {
			continue
		}
		for j := range loads {
			loads[j] += k.weights[j][i]
		}
	}
	return loads
}

func (k *Knapsack) removalOrder() []int {
	density := make([]float64, len(k.values))
	for i := range k.values {
		relWeight := 0.0
		for j := range k.capacities {
			w := k.weights[j][i]
			if w == 0 {
				continue
			}
			if k.capacities[j] == 0 {
				relWeight = math.Inf(1)
				break
			}
			relWeight += w / k.capacities[j]
		}
		if relWeight == 0 {
			density[i] = math.Inf(1)
			continue
		}
		density[i] = k.values[i] / relWeight
	}

	order := make([]int, len(k.values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return density[order[a]] < density[order[b]]
	})
	return order
}

func fits(loads, capacities []float64) bool {
	for j, load := range loads {
		// tolerate float drift from incremental subtraction
		if load > capacities[j]+1e-9 {
			return false
		}
	}
	return true
}
