package evo

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"theoryea/internal/model"
)

// Mutator produces a mutated copy of a genome.
type Mutator interface {
	Name() string
	Mutate(rng *rand.Rand, genome model.Genome) model.Genome
}

// StandardMutation flips each bit independently with probability Rate/L, so
// Rate bits flip on average.
type StandardMutation struct {
	Rate float64
}

func (StandardMutation) Name() string { return "standard" }

func (m StandardMutation) Mutate(rng *rand.Rand, genome model.Genome) model.Genome {
	out := genome.Clone()
	if len(out) == 0 {
		return out
	}
	p := m.Rate / float64(len(out))
	for i := range out {
		if rng.Float64() < p {
			out[i] ^= 1
		}
	}
	return out
}

// FastMutation flips exactly k distinct bits, with k drawn from a power law
// P(k) ~ k^-beta over {1, ..., max(1, L/2)}.
type FastMutation struct {
	beta float64
	cdf  []float64
}

func NewFastMutation(length int, beta float64) (*FastMutation, error) {
	if length <= 0 {
		return nil, fmt.Errorf("fast mutation length must be > 0, got %d", length)
	}
	if beta <= 1 {
		return nil, fmt.Errorf("fast mutation beta must be > 1, got %g", beta)
	}
	support := length / 2
	if support < 1 {
		support = 1
	}
	cdf := make([]float64, support)
	total := 0.0
	for k := 1; k <= support; k++ {
		total += math.Pow(float64(k), -beta)
		cdf[k-1] = total
	}
	for i := range cdf {
		cdf[i] /= total
	}
	cdf[support-1] = 1
	return &FastMutation{beta: beta, cdf: cdf}, nil
}

func (*FastMutation) Name() string { return "fast" }

func (m *FastMutation) Beta() float64 { return m.beta }

// MaxFlips is the upper end of the flip-count support.
func (m *FastMutation) MaxFlips() int { return len(m.cdf) }

// SampleFlips draws the number of bits to flip.
func (m *FastMutation) SampleFlips(rng *rand.Rand) int {
	u := rng.Float64()
	return sort.SearchFloat64s(m.cdf, u) + 1
}

func (m *FastMutation) Mutate(rng *rand.Rand, genome model.Genome) model.Genome {
	return flipDistinct(rng, genome, m.SampleFlips(rng))
}

// flipDistinct flips k positions chosen uniformly without replacement.
func flipDistinct(rng *rand.Rand, genome model.Genome, k int) model.Genome {
	out := genome.Clone()
	n := len(out)
	if k > n {
		k = n
	}
	positions := make([]int, n)
	for i := range positions {
		positions[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + rng.Intn(n-i)
		positions[i], positions[j] = positions[j], positions[i]
		out[positions[i]] ^= 1
	}
	return out
}

func newMutator(cfg Config, length int) (Mutator, error) {
	if cfg.Fast {
		fm, err := NewFastMutation(length, cfg.Beta)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfig, err)
		}
		return fm, nil
	}
	return StandardMutation{Rate: cfg.MutationRate}, nil
}
