package evo

// runGreedy drives the greedy (2+1) algorithm: two parents, one child per
// generation, and the child replaces its own parent when it is at least as
// fit. The better parent can therefore never get worse.
func (m *PopulationMonitor) runGreedy() (RunResult, error) {
	mutator := StandardMutation{Rate: m.cfg.MutationRate}

	population, err := m.initialPopulation(2, false)
	if err != nil {
		return RunResult{}, err
	}
	m.checkpoint(population, 0)

	for !m.budget.Exhausted() {
		m.generation++
		i := m.rng.Intn(len(population))
		child, err := m.spawn(mutator.Mutate(m.rng, population[i].Genome))
		if err != nil {
			return RunResult{}, err
		}
		if child.Fitness >= population[i].Fitness {
			population[i] = child
		}
		m.checkpoint(population, 0)
	}
	return m.result(population.Best(), 0), nil
}
