package evo

import (
	"errors"

	"theoryea/internal/problem"
)

var ErrAlreadyRun = errors.New("monitor has already run")

// Run executes the configured algorithm on p until the evaluation budget is
// exhausted.
func Run(p problem.Problem, cfg Config) (RunResult, error) {
	m, err := NewPopulationMonitor(p, cfg)
	if err != nil {
		return RunResult{}, err
	}
	return m.Run()
}

// Run executes the search once. A monitor cannot be reused.
func (m *PopulationMonitor) Run() (RunResult, error) {
	if m.started {
		return RunResult{}, ErrAlreadyRun
	}
	m.started = true

	m.logger.Info("run starting",
		"length", m.problem.Length(),
		"mu", m.cfg.Mu,
		"lambda", m.cfg.Lambda,
		"max_evals", m.cfg.MaxEvals,
		"seed", m.cfg.Seed,
	)
	switch m.cfg.Algorithm {
	case AlgorithmPlus, AlgorithmComma, AlgorithmSteady:
		return m.runTheoryGA()
	case AlgorithmGreedy:
		return m.runGreedy()
	case AlgorithmLambdaLambda:
		return m.runLambdaLambda()
	default:
		return RunResult{}, configErrorf("unknown algorithm %q", m.cfg.Algorithm)
	}
}
