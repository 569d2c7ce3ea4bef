package evo

import (
	"io"
	"log/slog"
	"math/rand"

	"theoryea/internal/model"
	"theoryea/internal/problem"
)

// GenerationStats is handed to an Observer at every checkpoint. Population
// is the live population and must not be modified or retained.
type GenerationStats struct {
	Algorithm            Algorithm
	Problem              string
	Generation           int
	Evaluations          int
	BestFitness          float64
	CurrentBestFitness   float64
	Lambda               float64
	DegenerateDuplicates int
	Population           Population
}

// Observer receives per-generation statistics.
type Observer func(GenerationStats)

// RunResult is the terminal record of a run.
type RunResult struct {
	Best                 *Individual
	Evaluations          int
	Generations          int
	Trace                []model.TracePoint
	DegenerateDuplicates int
	FinalLambda          float64
}

// PopulationMonitor owns the state every algorithm shares: the random
// stream, the budget, the evaluator, the best individual seen so far and the
// convergence trace.
type PopulationMonitor struct {
	cfg     Config
	problem problem.Problem
	rng     *rand.Rand
	budget  *Budget
	eval    *Evaluator
	logger  *slog.Logger

	started    bool
	best       *Individual
	generation int
	degenerate int
	trace      []model.TracePoint
}

func NewPopulationMonitor(p problem.Problem, cfg Config) (*PopulationMonitor, error) {
	if p == nil {
		return nil, configErrorf("problem is required")
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(p.Length()); err != nil {
		return nil, err
	}
	budget := NewBudget(cfg.MaxEvals)
	eval, err := NewEvaluator(p, budget, cfg.Repair)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger = logger.With("algorithm", string(cfg.Algorithm), "problem", p.Name())

	return &PopulationMonitor{
		cfg:     cfg,
		problem: p,
		rng:     NewRand(cfg.Seed),
		budget:  budget,
		eval:    eval,
		logger:  logger,
	}, nil
}

func (m *PopulationMonitor) Config() Config { return m.cfg }

// spawn evaluates genome as a new individual and tracks it as a best
// candidate.
func (m *PopulationMonitor) spawn(genome model.Genome) (*Individual, error) {
	ind, err := m.eval.Spawn(genome)
	if err != nil {
		return nil, err
	}
	m.consider(ind)
	return ind, nil
}

func (m *PopulationMonitor) consider(ind *Individual) {
	if m.best == nil || ind.Fitness > m.best.Fitness {
		m.best = ind.Clone()
	}
}

func (m *PopulationMonitor) noteDegenerate(attempts int) {
	m.degenerate++
	m.logger.Warn("duplicate filter exhausted retries, evaluating duplicate",
		"generation", m.generation,
		"attempts", attempts,
		"degenerate_total", m.degenerate,
	)
}

// checkpoint closes a generation: it records a trace point, logs it and
// notifies the observer.
func (m *PopulationMonitor) checkpoint(population Population, lambda float64) {
	current := population.Best()
	point := model.TracePoint{
		Generation:  m.generation,
		Evaluations: m.budget.Used(),
		BestFitness: m.best.Fitness,
		Lambda:      lambda,
	}
	m.trace = append(m.trace, point)

	m.logger.Debug("generation complete",
		"generation", point.Generation,
		"evaluations", point.Evaluations,
		"best_fitness", point.BestFitness,
		"current_best", current.Fitness,
		"lambda", lambda,
	)
	if m.cfg.Observer != nil {
		m.cfg.Observer(GenerationStats{
			Algorithm:            m.cfg.Algorithm,
			Problem:              m.problem.Name(),
			Generation:           point.Generation,
			Evaluations:          point.Evaluations,
			BestFitness:          point.BestFitness,
			CurrentBestFitness:   current.Fitness,
			Lambda:               lambda,
			DegenerateDuplicates: m.degenerate,
			Population:           population,
		})
	}
}

func (m *PopulationMonitor) result(best *Individual, finalLambda float64) RunResult {
	if best == nil {
		best = m.best
	}
	m.logger.Info("run complete",
		"generations", m.generation,
		"evaluations", m.budget.Used(),
		"best_fitness", best.Fitness,
	)
	return RunResult{
		Best:                 best.Clone(),
		Evaluations:          m.budget.Used(),
		Generations:          m.generation,
		Trace:                append([]model.TracePoint(nil), m.trace...),
		DegenerateDuplicates: m.degenerate,
		FinalLambda:          finalLambda,
	}
}
