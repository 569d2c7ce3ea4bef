package evo

import "theoryea/internal/model"

// duplicateFilter remembers the genomes of the current parents and of the
// offspring batch built so far.
type duplicateFilter struct {
	seen map[string]struct{}
}

func newDuplicateFilter(population Population) *duplicateFilter {
	f := &duplicateFilter{seen: make(map[string]struct{}, 2*len(population))}
	for _, ind := range population {
		f.add(ind.Genome)
	}
	return f
}

func (f *duplicateFilter) contains(genome model.Genome) bool {
	if f == nil {
		return false
	}
	_, ok := f.seen[genome.Key()]
	return ok
}

func (f *duplicateFilter) add(genome model.Genome) {
	if f == nil {
		return
	}
	f.seen[genome.Key()] = struct{}{}
}
