package problem

import "theoryea/internal/model"

// OneMax counts set bits.
type OneMax struct {
	N   int
	Run int
}

func NewOneMax(length, run int) (*OneMax, error) {
	if length <= 0 {
		return nil, errorf(ErrProblem, "onemax length must be > 0, got %d", length)
	}
	return &OneMax{N: length, Run: run}, nil
}

func (p *OneMax) Name() string { return KindOneMax }

func (p *OneMax) Length() int { return p.N }

func (p *OneMax) Evaluate(genome model.Genome) (float64, error) {
	if err := checkLength(p, genome); err != nil {
		return 0, err
	}
	return float64(genome.Ones()), nil
}

func (p *OneMax) Optimum() (float64, bool) {
	return float64(p.N), true
}
