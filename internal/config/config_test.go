package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"theoryea/internal/evo"
)

func validPlus() RunConfig {
	cfg := Default()
	cfg.Problem = "onemax"
	cfg.ProblemFile = "onemax_50_1"
	cfg.Algorithm = "plus"
	cfg.Mu = 5
	cfg.Lambda = 10
	return cfg
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "uniform", cfg.Selection)
	assert.Equal(t, 10000, cfg.MaxEvals)
	assert.Equal(t, int64(100), cfg.Seed)
	assert.Equal(t, 1.5, cfg.Beta)
	assert.Equal(t, 1.5, cfg.F)
	assert.Equal(t, 1.0, cfg.MutationRate)
	assert.True(t, cfg.SelfAdjust)
	assert.Equal(t, "results", cfg.ResultsRoot)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	content := `problem: mkp
problem_file: instances/mknap1.txt
algorithm: comma
selection: tournament
tournament_size: 3
mu: 4
lambda: 8
repair: true
max_evals: 500
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mkp", cfg.Problem)
	assert.Equal(t, "comma", cfg.Algorithm)
	assert.Equal(t, 3, cfg.TournSize)
	assert.Equal(t, 500, cfg.MaxEvals)
	assert.True(t, cfg.Repair)
	assert.Equal(t, int64(100), cfg.Seed, "unset keys keep defaults")
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "mknap1.txt", cfg.TestFile())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mu: [1, 2"), 0o644))
	_, err = Load(path)
	assert.ErrorIs(t, err, evo.ErrConfig)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*RunConfig)
		ok     bool
	}{
		{name: "plus", mutate: func(c *RunConfig) {}, ok: true},
		{name: "missing problem", mutate: func(c *RunConfig) { c.Problem = "" }},
		{name: "unknown problem", mutate: func(c *RunConfig) { c.Problem = "tsp" }},
		{name: "unknown algorithm", mutate: func(c *RunConfig) { c.Algorithm = "anneal" }},
		{name: "missing file", mutate: func(c *RunConfig) { c.ProblemFile = "" }},
		{name: "tournament without size", mutate: func(c *RunConfig) { c.Selection = "tournament" }},
		{name: "tournament with size", mutate: func(c *RunConfig) { c.Selection = "tournament"; c.TournSize = 2 }, ok: true},
		{name: "repair on onemax", mutate: func(c *RunConfig) { c.Repair = true }},
		{name: "fast on steady", mutate: func(c *RunConfig) { c.Algorithm = "steady"; c.Fast = true }},
		{name: "fast on comma", mutate: func(c *RunConfig) { c.Algorithm = "comma"; c.Fast = true }, ok: true},
		{name: "plus without lambda", mutate: func(c *RunConfig) { c.Lambda = 0 }},
		{name: "greedy with lambda", mutate: func(c *RunConfig) { c.Algorithm = "greedy"; c.Mu = 2 }},
		{name: "greedy", mutate: func(c *RunConfig) { c.Algorithm = "greedy"; c.Mu = 2; c.Lambda = 0 }, ok: true},
		{name: "greedy with crossover", mutate: func(c *RunConfig) { c.Algorithm = "greedy"; c.Mu = 2; c.Lambda = 0; c.Crossover = true }},
		{name: "discard on plus", mutate: func(c *RunConfig) { c.Discard = true }, ok: true},
		{name: "discard on comma", mutate: func(c *RunConfig) { c.Algorithm = "comma"; c.Discard = true }, ok: true},
		{name: "discard on steady", mutate: func(c *RunConfig) { c.Algorithm = "steady"; c.Discard = true }},
		{name: "discard on greedy", mutate: func(c *RunConfig) { c.Algorithm = "greedy"; c.Mu = 2; c.Lambda = 0; c.Discard = true }},
		{name: "discard on lambdalambda", mutate: func(c *RunConfig) { c.Algorithm = "lambdalambda"; c.Mu = 0; c.Lambda = 0; c.Discard = true }},
		{name: "lambdalambda with mu", mutate: func(c *RunConfig) { c.Algorithm = "lambdalambda"; c.Lambda = 0 }},
		{name: "lambdalambda", mutate: func(c *RunConfig) { c.Algorithm = "lambdalambda"; c.Mu = 0; c.Lambda = 0 }, ok: true},
		{name: "low beta", mutate: func(c *RunConfig) { c.Beta = 1 }},
		{name: "zero evals", mutate: func(c *RunConfig) { c.MaxEvals = 0 }},
		{name: "unknown store", mutate: func(c *RunConfig) { c.Store = "redis" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validPlus()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, evo.ErrConfig)
		})
	}
}

func TestToEvoConfig(t *testing.T) {
	cfg := validPlus()
	cfg.Selection = "tournament"
	cfg.TournSize = 3
	cfg.Crossover = true
	cfg.Seed = 9

	got := cfg.ToEvoConfig()
	assert.Equal(t, evo.AlgorithmPlus, got.Algorithm)
	assert.Equal(t, evo.SelectionTournament, got.Selection)
	assert.Equal(t, 3, got.TournSize)
	assert.True(t, got.Crossover)
	assert.Equal(t, int64(9), got.Seed)
	assert.False(t, got.SelfAdjust, "self adjustment only applies to lambdalambda")

	cfg.Algorithm = "lambdalambda"
	cfg.Mu, cfg.Lambda = 0, 0
	assert.True(t, cfg.ToEvoConfig().SelfAdjust)
}

func TestResultsFolder(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*RunConfig)
		want   string
	}{
		{name: "plus", mutate: func(c *RunConfig) {}, want: "results/onemax/5+10EA"},
		{name: "crossover", mutate: func(c *RunConfig) { c.Crossover = true }, want: "results/onemax/5+10GA"},
		{
			name: "fast tournament",
			mutate: func(c *RunConfig) {
				c.Fast = true
				c.Selection = "tournament"
				c.TournSize = 2
			},
			want: "results/onemax/5+10Fast-Tournament-2EA",
		},
		{
			name:   "mkp repair",
			mutate: func(c *RunConfig) { c.Problem = "mkp"; c.Repair = true },
			want:   "results/mkp/repair/5+10EA",
		},
		{
			name:   "mkp no repair",
			mutate: func(c *RunConfig) { c.Problem = "mkp" },
			want:   "results/mkp/no-repair/5+10EA",
		},
		{
			name:   "greedy",
			mutate: func(c *RunConfig) { c.Algorithm = "greedy"; c.Mu = 0; c.Lambda = 0 },
			want:   "results/onemax/Greedy-2+1GA",
		},
		{
			name:   "lambdalambda",
			mutate: func(c *RunConfig) { c.Algorithm = "lambdalambda"; c.Mu = 0; c.Lambda = 0 },
			want:   "results/onemax/1+lambda,lambdaEA",
		},
		{
			name:   "custom root",
			mutate: func(c *RunConfig) { c.ResultsRoot = "out" },
			want:   "out/onemax/5+10EA",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validPlus()
			tc.mutate(&cfg)
			assert.Equal(t, filepath.FromSlash(tc.want), cfg.ResultsFolder())
		})
	}
}
