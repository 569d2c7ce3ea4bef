package problem

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"theoryea/internal/model"
)

func genome(t *testing.T, s string) model.Genome {
	t.Helper()
	g, err := model.ParseGenome(s)
	require.NoError(t, err)
	return g
}

func TestOneMaxEvaluate(t *testing.T) {
	p, err := NewOneMax(6, 3)
	require.NoError(t, err)
	assert.Equal(t, KindOneMax, p.Name())
	assert.Equal(t, 6, p.Length())

	got, err := p.Evaluate(genome(t, "101101"))
	require.NoError(t, err)
	assert.Equal(t, 4.0, got)

	opt, ok := p.Optimum()
	assert.True(t, ok)
	assert.Equal(t, 6.0, opt)

	_, err = NewOneMax(0, 0)
	assert.ErrorIs(t, err, ErrProblem)
}

func TestEvaluateRejectsWrongLength(t *testing.T) {
	p, err := NewOneMax(4, 0)
	require.NoError(t, err)
	_, err = p.Evaluate(genome(t, "101"))
	assert.ErrorIs(t, err, ErrGenomeLength)
	assert.ErrorIs(t, err, ErrProblem)
}

func smallKnapsack(t *testing.T) *Knapsack {
	t.Helper()
	k, err := NewKnapsack("small", []float64{10, 2, 6}, [][]float64{{5, 4, 3}}, []float64{6}, 10)
	require.NoError(t, err)
	return k
}

func TestKnapsackEvaluate(t *testing.T) {
	k := smallKnapsack(t)
	assert.Equal(t, KindKnapsack, k.Name())
	assert.Equal(t, "small", k.Instance())
	assert.Equal(t, 1, k.Constraints())

	got, err := k.Evaluate(genome(t, "100"))
	require.NoError(t, err)
	assert.Equal(t, 10.0, got)

	got, err = k.Evaluate(genome(t, "011"))
	require.NoError(t, err)
	assert.Equal(t, InfeasibleFitness, got)
	assert.False(t, k.Feasible(genome(t, "011")))
	assert.Equal(t, []float64{7}, k.Loads(genome(t, "011")))

	got, err = k.Evaluate(genome(t, "000"))
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestKnapsackRepairRemovesLowestDensityFirst(t *testing.T) {
	k := smallKnapsack(t)
	in := genome(t, "111")

	out, err := k.Repair(in)
	require.NoError(t, err)
	// densities are 12, 3, 12: item 1 goes first, then item 0 before item 2
	assert.Equal(t, "001", out.String())
	assert.Equal(t, "111", in.String(), "input must not change")
}

func TestKnapsackRepairKeepsFeasibleGenome(t *testing.T) {
	k := smallKnapsack(t)
	out, err := k.Repair(genome(t, "100"))
	require.NoError(t, err)
	assert.Equal(t, "100", out.String())
}

func TestKnapsackRepairIsFeasibleAndIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	const items, constraints = 30, 4
	values := make([]float64, items)
	weights := make([][]float64, constraints)
	capacities := make([]float64, constraints)
	for i := range values {
		values[i] = float64(1 + rng.Intn(50))
	}
	for j := range weights {
		weights[j] = make([]float64, items)
		total := 0.0
		for i := range weights[j] {
			weights[j][i] = float64(rng.Intn(20))
			total += weights[j][i]
		}
		capacities[j] = total / 3
	}
	k, err := NewKnapsack("random", values, weights, capacities, 0)
	require.NoError(t, err)

	for trial := 0; trial < 200; trial++ {
		g := model.NewGenome(items)
		for i := range g {
			g[i] = byte(rng.Intn(2))
		}
		once, err := k.Repair(g)
		require.NoError(t, err)
		require.True(t, k.Feasible(once))
		for i := range g {
			require.LessOrEqual(t, once[i], g[i], "repair only removes items")
		}
		twice, err := k.Repair(once)
		require.NoError(t, err)
		require.Equal(t, once, twice)
	}
}

func TestKnapsackZeroCapacityDropsWeightedItems(t *testing.T) {
	k, err := NewKnapsack("tight", []float64{5, 3}, [][]float64{{1, 0}}, []float64{0}, 0)
	require.NoError(t, err)
	out, err := k.Repair(genome(t, "11"))
	require.NoError(t, err)
	assert.Equal(t, "01", out.String())
	_, ok := k.Optimum()
	assert.False(t, ok)
}

func TestNewKnapsackValidation(t *testing.T) {
	_, err := NewKnapsack("x", nil, nil, nil, 0)
	assert.ErrorIs(t, err, ErrProblem)
	_, err = NewKnapsack("x", []float64{1}, [][]float64{{1}}, []float64{1, 2}, 0)
	assert.ErrorIs(t, err, ErrProblem)
	_, err = NewKnapsack("x", []float64{1, 2}, [][]float64{{1}}, []float64{1}, 0)
	assert.ErrorIs(t, err, ErrProblem)
	_, err = NewKnapsack("x", []float64{1}, [][]float64{{-1}}, []float64{1}, 0)
	assert.ErrorIs(t, err, ErrProblem)
}

func TestMaxSatEvaluate(t *testing.T) {
	// (x1 or not x2) and (x2 or x3) and (not x1)
	p, err := NewMaxSat("f", 3, []Clause{{1, -2}, {2, 3}, {-1}})
	require.NoError(t, err)
	assert.Equal(t, 3, p.Clauses())

	cases := map[string]float64{
		"000": 2,
		"100": 1,
		"001": 3,
		"110": 2,
		"111": 2,
	}
	for bits, want := range cases {
		got, err := p.Evaluate(genome(t, bits))
		require.NoError(t, err)
		assert.Equal(t, want, got, bits)
	}

	_, err = NewMaxSat("bad", 2, []Clause{{3}})
	assert.ErrorIs(t, err, ErrProblem)
	_, err = NewMaxSat("bad", 2, []Clause{{0}})
	assert.ErrorIs(t, err, ErrProblem)
}

func TestIsingEvaluate(t *testing.T) {
	p, err := NewIsing("ring", 3, []Edge{{0, 1, 1}, {1, 2, 1}, {2, 0, -2}})
	require.NoError(t, err)
	assert.Equal(t, 3, p.Edges())

	cases := map[string]float64{
		"111": 0,
		"000": 0,
		"110": 1 - 1 + 2,
		"010": -1 - 1 - 2,
	}
	for bits, want := range cases {
		got, err := p.Evaluate(genome(t, bits))
		require.NoError(t, err)
		assert.Equal(t, want, got, bits)
	}

	_, err = NewIsing("bad", 2, []Edge{{0, 2, 1}})
	assert.ErrorIs(t, err, ErrProblem)
}

func TestProblemsAreDeterministic(t *testing.T) {
	k := smallKnapsack(t)
	g := genome(t, "101")
	a, err := k.Evaluate(g)
	require.NoError(t, err)
	b, err := k.Evaluate(g)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
