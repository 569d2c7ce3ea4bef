package problem

import (
	"errors"
	"fmt"
	"math"

	"theoryea/internal/model"
)

// InfeasibleFitness is the score of a knapsack selection that violates a
// capacity constraint when repair is off. It is the lowest finite float so
// that results stay JSON encodable.
const InfeasibleFitness = -math.MaxFloat64

var (
	ErrProblem      = errors.New("problem error")
	ErrGenomeLength = fmt.Errorf("%w: genome length mismatch", ErrProblem)
	ErrParse        = errors.New("problem parse error")
	ErrUnknownKind  = errors.New("unknown problem kind")
)

// Problem scores bitstrings of a fixed length. Evaluate must be a pure
// function of the genome and the instance data.
type Problem interface {
	Name() string
	Length() int
	Evaluate(genome model.Genome) (float64, error)
}

// Repairer is implemented by constrained problems that can map any genome to
// a feasible one.
type Repairer interface {
	Repair(genome model.Genome) (model.Genome, error)
}

// FeasibilityChecker reports whether a genome satisfies every constraint.
type FeasibilityChecker interface {
	Feasible(genome model.Genome) bool
}

// Bounded optionally exposes a known optimum for reporting.
type Bounded interface {
	Optimum() (float64, bool)
}

func checkLength(p Problem, genome model.Genome) error {
	if genome.Len() != p.Length() {
		return fmt.Errorf("%w: %s got=%d want=%d", ErrGenomeLength, p.Name(), genome.Len(), p.Length())
	}
	return nil
}

func errorf(base error, format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{base}, args...)...)
}
