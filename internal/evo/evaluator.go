package evo

import (
	"errors"
	"fmt"

	"theoryea/internal/model"
	"theoryea/internal/problem"
)

// Evaluator scores individuals against a problem and charges the budget
// exactly once per Problem.Evaluate call.
type Evaluator struct {
	problem  problem.Problem
	repairer problem.Repairer
	checker  problem.FeasibilityChecker
	budget   *Budget
	births   uint64
}

func NewEvaluator(p problem.Problem, budget *Budget, repair bool) (*Evaluator, error) {
	if p == nil {
		return nil, configErrorf("problem is required")
	}
	if budget == nil {
		return nil, configErrorf("budget is required")
	}
	e := &Evaluator{problem: p, budget: budget}
	if repair {
		r, ok := p.(problem.Repairer)
		if !ok {
			return nil, configErrorf("problem %s does not support repair", p.Name())
		}
		e.repairer = r
	}
	if c, ok := p.(problem.FeasibilityChecker); ok {
		e.checker = c
	}
	return e, nil
}

// Prepare applies repair when enabled. It never touches the budget.
func (e *Evaluator) Prepare(genome model.Genome) (model.Genome, error) {
	if e.repairer == nil {
		return genome, nil
	}
	repaired, err := e.repairer.Repair(genome)
	if err != nil {
		return nil, problemError("repair", e.problem, err)
	}
	return repaired, nil
}

// NewIndividual wraps a genome with the next birth number.
func (e *Evaluator) NewIndividual(genome model.Genome) *Individual {
	e.births++
	return &Individual{Genome: genome, Birth: e.births}
}

// Evaluate repairs (when enabled) and scores ind, replacing its genome with
// the repaired one so the cached fitness always matches the stored genome.
func (e *Evaluator) Evaluate(ind *Individual) error {
	genome, err := e.Prepare(ind.Genome)
	if err != nil {
		return err
	}
	fitness, err := e.problem.Evaluate(genome)
	e.budget.RecordEvaluation()
	if err != nil {
		return problemError("evaluate", e.problem, err)
	}
	ind.Genome = genome
	ind.Fitness = fitness
	ind.Evaluated = true
	ind.Feasible = e.checker == nil || e.checker.Feasible(genome)
	return nil
}

// Spawn builds and evaluates a new individual from genome.
func (e *Evaluator) Spawn(genome model.Genome) (*Individual, error) {
	ind := e.NewIndividual(genome)
	if err := e.Evaluate(ind); err != nil {
		return nil, err
	}
	return ind, nil
}

func (e *Evaluator) Budget() *Budget { return e.budget }

func problemError(op string, p problem.Problem, err error) error {
	if errors.Is(err, problem.ErrProblem) {
		return fmt.Errorf("%s %s: %w", op, p.Name(), err)
	}
	return fmt.Errorf("%s %s: %w: %w", op, p.Name(), problem.ErrProblem, err)
}
