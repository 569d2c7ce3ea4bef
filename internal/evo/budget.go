package evo

// Budget counts fitness evaluations for one run. Algorithms consult
// Exhausted only between generations, so the final count may exceed Max by
// up to one generation of evaluations.
type Budget struct {
	max  int
	used int
}

func NewBudget(max int) *Budget {
	return &Budget{max: max}
}

func (b *Budget) RecordEvaluation() {
	b.used++
}

func (b *Budget) Exhausted() bool {
	return b.used >= b.max
}

func (b *Budget) Used() int { return b.used }

func (b *Budget) Max() int { return b.max }
