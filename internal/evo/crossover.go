package evo

import (
	"math/rand"

	"theoryea/internal/model"
)

// UniformCrossover takes every bit from a or b with equal probability.
func UniformCrossover(rng *rand.Rand, a, b model.Genome) model.Genome {
	return BiasedCrossover(rng, a, b, 0.5)
}

// BiasedCrossover takes every bit from donor with probability bias and from
// base otherwise.
func BiasedCrossover(rng *rand.Rand, base, donor model.Genome, bias float64) model.Genome {
	out := base.Clone()
	for i := range out {
		if rng.Float64() < bias {
			out[i] = donor[i]
		}
	}
	return out
}
