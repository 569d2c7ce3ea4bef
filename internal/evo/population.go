package evo

import (
	"math/rand"
	"sort"

	"theoryea/internal/model"
)

// Individual pairs a genome with its cached fitness. Birth is the creation
// order inside a run and breaks fitness ties in favour of newer individuals.
type Individual struct {
	Genome    model.Genome
	Fitness   float64
	Evaluated bool
	Feasible  bool
	Birth     uint64
}

func (ind *Individual) Clone() *Individual {
	if ind == nil {
		return nil
	}
	c := *ind
	c.Genome = ind.Genome.Clone()
	return &c
}

// Population is an ordered multiset of individuals.
type Population []*Individual

// Best returns the fittest individual, preferring the newer one on ties.
func (p Population) Best() *Individual {
	var best *Individual
	for _, ind := range p {
		if best == nil || fitterOrNewer(ind, best) {
			best = ind
		}
	}
	return best
}

// WorstIndex returns the position of the least fit individual, preferring
// the older one on ties. It returns -1 for an empty population.
func (p Population) WorstIndex() int {
	worst := -1
	for i, ind := range p {
		if worst < 0 || fitterOrNewer(p[worst], ind) {
			worst = i
		}
	}
	return worst
}

// Genomes returns the genomes in population order.
func (p Population) Genomes() []model.Genome {
	out := make([]model.Genome, len(p))
	for i, ind := range p {
		out[i] = ind.Genome
	}
	return out
}

// rankByFitness sorts in place, fittest first, newer first on ties.
func rankByFitness(p Population) {
	sort.SliceStable(p, func(i, j int) bool {
		return fitterOrNewer(p[i], p[j])
	})
}

func fitterOrNewer(a, b *Individual) bool {
	if a.Fitness != b.Fitness {
		return a.Fitness > b.Fitness
	}
	return a.Birth > b.Birth
}

// RandomGenome draws every bit uniformly.
func RandomGenome(rng *rand.Rand, length int) model.Genome {
	g := model.NewGenome(length)
	for i := range g {
		g[i] = byte(rng.Intn(2))
	}
	return g
}

// NewRand builds the single random stream a run draws from.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
