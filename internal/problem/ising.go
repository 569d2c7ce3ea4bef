package problem

import "theoryea/internal/model"

// Edge couples spins I and J with weight W.
type Edge struct {
	I int
	J int
	W float64
}

// Ising scores a spin assignment on a weighted graph. Bit 1 is spin +1 and
// bit 0 is spin -1; every edge contributes W*s_i*s_j.
type Ising struct {
	name  string
	spins int
	edges []Edge
}

func NewIsing(name string, spins int, edges []Edge) (*Ising, error) {
	if spins <= 0 {
		return nil, errorf(ErrProblem, "ising requires at least one spin")
	}
	for k, e := range edges {
		if e.I < 0 || e.I >= spins || e.J < 0 || e.J >= spins {
			return nil, errorf(ErrProblem, "ising edge %d (%d,%d) out of range [0,%d)", k, e.I, e.J, spins)
		}
	}
	return &Ising{name: name, spins: spins, edges: append([]Edge(nil), edges...)}, nil
}

func (p *Ising) Name() string { return KindIsing }

func (p *Ising) Instance() string { return p.name }

func (p *Ising) Length() int { return p.spins }

func (p *Ising) Edges() int { return len(p.edges) }

func (p *Ising) Evaluate(genome model.Genome) (float64, error) {
	if err := checkLength(p, genome); err != nil {
		return 0, err
	}
	total := 0.0
	for _, e := range p.edges {
		if genome[e.I] == genome[e.J] {
			total += e.W
		} else {
			total -= e.W
		}
	}
	return total, nil
}
