package evo

import "theoryea/internal/model"

// runTheoryGA drives the (mu+lambda), (mu,lambda) and steady state variants.
func (m *PopulationMonitor) runTheoryGA() (RunResult, error) {
	selector, err := NewSelector(m.cfg.Selection, m.cfg.TournSize)
	if err != nil {
		return RunResult{}, err
	}
	mutator, err := newMutator(m.cfg, m.problem.Length())
	if err != nil {
		return RunResult{}, err
	}
	discard := m.cfg.Discard

	population, err := m.initialPopulation(m.cfg.Mu, discard)
	if err != nil {
		return RunResult{}, err
	}
	m.checkpoint(population, 0)

	for !m.budget.Exhausted() {
		m.generation++
		switch m.cfg.Algorithm {
		case AlgorithmSteady:
			population, err = m.steadyGeneration(population, selector, mutator)
		default:
			population, err = m.batchGeneration(population, selector, mutator, discard)
		}
		if err != nil {
			return RunResult{}, err
		}
		m.checkpoint(population, 0)
	}
	return m.result(nil, 0), nil
}

func (m *PopulationMonitor) initialPopulation(size int, discard bool) (Population, error) {
	var filter *duplicateFilter
	if discard {
		filter = newDuplicateFilter(nil)
	}
	population := make(Population, 0, size)
	for len(population) < size {
		genome, err := m.uniqueCandidate(filter, func() (model.Genome, error) {
			return RandomGenome(m.rng, m.problem.Length()), nil
		})
		if err != nil {
			return nil, err
		}
		ind, err := m.spawn(genome)
		if err != nil {
			return nil, err
		}
		filter.add(ind.Genome)
		population = append(population, ind)
	}
	return population, nil
}

// batchGeneration creates lambda offspring and applies plus or comma
// survivor selection.
func (m *PopulationMonitor) batchGeneration(population Population, selector Selector, mutator Mutator, discard bool) (Population, error) {
	var filter *duplicateFilter
	if discard {
		filter = newDuplicateFilter(population)
	}

	offspring := make(Population, 0, m.cfg.Lambda)
	for i := 0; i < m.cfg.Lambda; i++ {
		genome, err := m.uniqueCandidate(filter, func() (model.Genome, error) {
			return m.breed(population, selector, mutator)
		})
		if err != nil {
			return nil, err
		}
		child, err := m.spawn(genome)
		if err != nil {
			return nil, err
		}
		filter.add(child.Genome)
		offspring = append(offspring, child)
	}

	var pool Population
	if m.cfg.Algorithm == AlgorithmPlus {
		pool = make(Population, 0, len(population)+len(offspring))
		pool = append(pool, population...)
		pool = append(pool, offspring...)
	} else {
		pool = offspring
	}
	rankByFitness(pool)
	next := make(Population, m.cfg.Mu)
	copy(next, pool[:m.cfg.Mu])
	return next, nil
}

// steadyGeneration creates lambda offspring one at a time, each replacing
// the current worst member when it is at least as fit.
func (m *PopulationMonitor) steadyGeneration(population Population, selector Selector, mutator Mutator) (Population, error) {
	for i := 0; i < m.cfg.Lambda; i++ {
		genome, err := m.breed(population, selector, mutator)
		if err != nil {
			return nil, err
		}
		child, err := m.spawn(genome)
		if err != nil {
			return nil, err
		}
		worst := population.WorstIndex()
		if child.Fitness >= population[worst].Fitness {
			population[worst] = child
		}
	}
	return population, nil
}

// breed selects parents, optionally crosses them over and mutates the result.
func (m *PopulationMonitor) breed(population Population, selector Selector, mutator Mutator) (model.Genome, error) {
	parent, err := selector.Select(m.rng, population)
	if err != nil {
		return nil, err
	}
	genome := parent.Genome
	if m.cfg.Crossover {
		other, err := selector.Select(m.rng, population)
		if err != nil {
			return nil, err
		}
		genome = UniformCrossover(m.rng, parent.Genome, other.Genome)
	}
	return mutator.Mutate(m.rng, genome), nil
}

// uniqueCandidate draws candidates until one is absent from filter or the
// retry bound is hit. Candidates are repaired first so that the comparison
// uses the genome that will actually be stored. A nil filter accepts the
// first candidate.
func (m *PopulationMonitor) uniqueCandidate(filter *duplicateFilter, draw func() (model.Genome, error)) (model.Genome, error) {
	for attempt := 0; ; attempt++ {
		candidate, err := draw()
		if err != nil {
			return nil, err
		}
		genome, err := m.eval.Prepare(candidate)
		if err != nil {
			return nil, err
		}
		if !filter.contains(genome) {
			return genome, nil
		}
		if attempt >= m.cfg.DuplicateRetries {
			m.noteDegenerate(attempt + 1)
			return genome, nil
		}
	}
}
