package evo

import (
	"math"

	"golang.org/x/exp/constraints"
)

// runLambdaLambda drives the 1+(lambda,lambda) GA. Each generation has a
// mutation phase producing the winner x' and a crossover phase that mixes x'
// back into x with bias 1/lambda.
//
// With self-adjustment, lambda shrinks by F after an improving generation and
// grows by F^(1/4) otherwise, always within [1, L].
func (m *PopulationMonitor) runLambdaLambda() (RunResult, error) {
	length := float64(m.problem.Length())
	lambda := clamp(m.cfg.InitialLambda, 1, length)

	x, err := m.spawn(RandomGenome(m.rng, m.problem.Length()))
	if err != nil {
		return RunResult{}, err
	}
	m.checkpoint(Population{x}, lambda)

	for !m.budget.Exhausted() {
		m.generation++
		n := offspringCount(lambda)

		mutator := StandardMutation{Rate: lambda}
		mutants := make(Population, 0, n)
		for i := 0; i < n; i++ {
			mutant, err := m.spawn(mutator.Mutate(m.rng, x.Genome))
			if err != nil {
				return RunResult{}, err
			}
			mutants = append(mutants, mutant)
		}
		winner := m.mutationWinner(mutants)

		bias := 1 / lambda
		var y *Individual
		for i := 0; i < n; i++ {
			child, err := m.spawn(BiasedCrossover(m.rng, x.Genome, winner.Genome, bias))
			if err != nil {
				return RunResult{}, err
			}
			if y == nil || child.Fitness > y.Fitness {
				y = child
			}
		}
		if winner.Fitness > y.Fitness {
			y = winner
		}

		improved := y.Fitness > x.Fitness
		if improved {
			x = y
		}
		if m.cfg.SelfAdjust {
			if improved {
				lambda = lambda / m.cfg.F
			} else {
				lambda = lambda * math.Pow(m.cfg.F, 0.25)
			}
			lambda = clamp(lambda, 1, length)
		}
		m.checkpoint(Population{x}, lambda)
	}
	return m.result(x, lambda), nil
}

// mutationWinner returns the fittest mutant, breaking ties uniformly.
func (m *PopulationMonitor) mutationWinner(mutants Population) *Individual {
	best := mutants[0].Fitness
	for _, ind := range mutants[1:] {
		if ind.Fitness > best {
			best = ind.Fitness
		}
	}
	tied := make(Population, 0, len(mutants))
	for _, ind := range mutants {
		if ind.Fitness == best {
			tied = append(tied, ind)
		}
	}
	if len(tied) == 1 {
		return tied[0]
	}
	return tied[m.rng.Intn(len(tied))]
}

func offspringCount(lambda float64) int {
	n := int(math.Round(lambda))
	if n < 1 {
		return 1
	}
	return n
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
