package problem

import "theoryea/internal/model"

// Clause is a disjunction of literals. Literal v > 0 means variable v-1 is
// true, v < 0 means variable -v-1 is false.
type Clause []int

// MaxSat counts satisfied clauses of a CNF formula.
type MaxSat struct {
	name      string
	variables int
	clauses   []Clause
}

func NewMaxSat(name string, variables int, clauses []Clause) (*MaxSat, error) {
	if variables <= 0 {
		return nil, errorf(ErrProblem, "maxsat requires at least one variable")
	}
	copied := make([]Clause, 0, len(clauses))
	for c, clause := range clauses {
		for _, lit := range clause {
			if lit == 0 || lit > variables || -lit > variables {
				return nil, errorf(ErrProblem, "maxsat clause %d literal %d out of range [1,%d]", c, lit, variables)
			}
		}
		copied = append(copied, append(Clause(nil), clause...))
	}
	return &MaxSat{name: name, variables: variables, clauses: copied}, nil
}

func (p *MaxSat) Name() string { return KindMaxSat }

func (p *MaxSat) Instance() string { return p.name }

func (p *MaxSat) Length() int { return p.variables }

func (p *MaxSat) Clauses() int { return len(p.clauses) }

func (p *MaxSat) Evaluate(genome model.Genome) (float64, error) {
	if err := checkLength(p, genome); err != nil {
		return 0, err
	}
	satisfied := 0
	for _, clause := range p.clauses {
		for _, lit := range clause {
			if lit > 0 && genome[lit-1] != 0 || lit < 0 && genome[-lit-1] == 0 {
				satisfied++
				break
			}
		}
	}
	return float64(satisfied), nil
}
