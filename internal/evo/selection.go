package evo

import (
	"errors"
	"fmt"
	"math/rand"
)

var ErrEmptyPopulation = errors.New("population is empty")

// Selector chooses one parent from the population.
type Selector interface {
	Name() string
	Select(rng *rand.Rand, population Population) (*Individual, error)
}

// UniformSelector picks any member with equal probability.
type UniformSelector struct{}

func (UniformSelector) Name() string {
	return string(SelectionUniform)
}

func (UniformSelector) Select(rng *rand.Rand, population Population) (*Individual, error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if len(population) == 0 {
		return nil, ErrEmptyPopulation
	}
	return population[rng.Intn(len(population))], nil
}

// TournamentSelector samples Size distinct members and returns the fittest.
// Ties are resolved uniformly among the tied members. Size is clamped to the
// population size, so a full-size tournament always finds the maximum.
type TournamentSelector struct {
	Size int
}

func (TournamentSelector) Name() string {
	return string(SelectionTournament)
}

func (s TournamentSelector) Select(rng *rand.Rand, population Population) (*Individual, error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	n := len(population)
	if n == 0 {
		return nil, ErrEmptyPopulation
	}
	size := s.Size
	if size < 1 {
		return nil, fmt.Errorf("invalid tournament size: %d", s.Size)
	}
	if size > n {
		size = n
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < size; i++ {
		j := i + rng.Intn(n-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	entrants := idx[:size]

	best := population[entrants[0]].Fitness
	for _, i := range entrants[1:] {
		if population[i].Fitness > best {
			best = population[i].Fitness
		}
	}
	tied := make([]int, 0, size)
	for _, i := range entrants {
		if population[i].Fitness == best {
			tied = append(tied, i)
		}
	}
	if len(tied) == 1 {
		return population[tied[0]], nil
	}
	return population[tied[rng.Intn(len(tied))]], nil
}

// NewSelector builds the selector named by method.
func NewSelector(method SelectionMethod, tournSize int) (Selector, error) {
	switch method {
	case SelectionUniform, "":
		return UniformSelector{}, nil
	case SelectionTournament:
		if tournSize < 1 {
			return nil, configErrorf("tournament size must be >= 1, got %d", tournSize)
		}
		return TournamentSelector{Size: tournSize}, nil
	default:
		return nil, configErrorf("unknown selection %q", method)
	}
}
