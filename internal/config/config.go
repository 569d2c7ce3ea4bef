// Package config loads and validates run configurations for the command line
// front end. A RunConfig describes one run with the same options the command
// line exposes; ToEvoConfig turns it into the engine's evo.Config.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"theoryea/internal/evo"
	"theoryea/internal/problem"
)

const (
	DefaultResultsRoot = "results"
	DefaultStore       = "memory"
)

var validate = validator.New()

// RunConfig is the file and flag level description of a run. Zero Mu and
// Lambda mean "not supplied".
type RunConfig struct {
	Problem     string `yaml:"problem" json:"problem" validate:"required,oneof=mkp onemax isg maxsat"`
	ProblemFile string `yaml:"problem_file" json:"problem_file" validate:"required"`
	Algorithm   string `yaml:"algorithm" json:"algorithm" validate:"required,oneof=plus comma greedy steady lambdalambda"`
	Selection   string `yaml:"selection" json:"selection" validate:"required,oneof=uniform tournament"`
	TournSize   int    `yaml:"tournament_size" json:"tournament_size" validate:"gte=0"`

	Mu        int  `yaml:"mu" json:"mu" validate:"gte=0"`
	Lambda    int  `yaml:"lambda" json:"lambda" validate:"gte=0"`
	Crossover bool `yaml:"crossover" json:"crossover"`

	Fast         bool    `yaml:"fast" json:"fast"`
	Beta         float64 `yaml:"beta" json:"beta" validate:"gt=1"`
	MutationRate float64 `yaml:"mutation_rate" json:"mutation_rate" validate:"gt=0"`
	MaxEvals     int     `yaml:"max_evals" json:"max_evals" validate:"gt=0"`
	Seed         int64   `yaml:"seed" json:"seed"`

	SelfAdjust bool    `yaml:"self_adjust" json:"self_adjust"`
	F          float64 `yaml:"f" json:"f" validate:"gt=1"`

	Repair           bool `yaml:"repair" json:"repair"`
	Discard          bool `yaml:"discard" json:"discard"`
	DuplicateRetries int  `yaml:"duplicate_retries" json:"duplicate_retries" validate:"gte=0"`

	ResultsRoot string `yaml:"results_root" json:"results_root"`
	Store       string `yaml:"store" json:"store" validate:"omitempty,oneof=memory sqlite badger"`
	StorePath   string `yaml:"store_path" json:"store_path"`
}

// Default returns a configuration holding every documented default. Problem,
// problem file and algorithm are left empty.
func Default() RunConfig {
	return RunConfig{
		Selection:        string(evo.SelectionUniform),
		Beta:             evo.DefaultBeta,
		MutationRate:     evo.DefaultMutationRate,
		MaxEvals:         evo.DefaultMaxEvals,
		Seed:             evo.DefaultSeed,
		SelfAdjust:       true,
		F:                evo.DefaultF,
		DuplicateRetries: evo.DefaultDuplicateRetries,
		ResultsRoot:      DefaultResultsRoot,
		Store:            DefaultStore,
	}
}

// Load reads a YAML file on top of Default. An empty path returns the
// defaults unchanged.
func Load(path string) (RunConfig, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return RunConfig{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return RunConfig{}, fmt.Errorf("%w: parse config %s: %v", evo.ErrConfig, path, err)
	}
	return cfg, nil
}

// Validate applies field rules and then the cross-option rules of the front
// end. Every failure wraps evo.ErrConfig.
func (c RunConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", evo.ErrConfig, strings.Join(fields, "; "))
		}
		return fmt.Errorf("%w: %v", evo.ErrConfig, err)
	}

	alg := evo.Algorithm(c.Algorithm)
	switch {
	case c.Selection == string(evo.SelectionTournament) && c.TournSize < 1:
		return invalid("tournament selection requires a tournament size")
	case c.Repair && c.Problem != problem.KindKnapsack:
		return invalid("repair is only relevant for mkp")
	case c.Fast && alg != evo.AlgorithmPlus && alg != evo.AlgorithmComma:
		return invalid("fast mutation is only valid for plus and comma")
	case c.Discard && alg != evo.AlgorithmPlus && alg != evo.AlgorithmComma:
		return invalid("discarding duplicates is only valid for plus and comma")
	case alg == evo.AlgorithmGreedy && c.Crossover:
		return invalid("greedy applies mutation only, crossover not applicable")
	case alg == evo.AlgorithmGreedy && c.Lambda != 0:
		return invalid("greedy produces one child per generation, lambda not applicable")
	case alg == evo.AlgorithmLambdaLambda && (c.Mu != 0 || c.Lambda != 0):
		return invalid("mu and lambda cannot be set for lambdalambda")
	}
	if alg == evo.AlgorithmPlus || alg == evo.AlgorithmComma || alg == evo.AlgorithmSteady {
		if c.Mu < 1 || c.Lambda < 1 {
			return invalid("mu and lambda are required unless using greedy or lambdalambda")
		}
	}
	return nil
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", evo.ErrConfig, msg)
}

// ToEvoConfig builds the engine configuration. Logger and observer are left
// for the caller to attach.
func (c RunConfig) ToEvoConfig() evo.Config {
	cfg := evo.Config{
		Algorithm:        evo.Algorithm(c.Algorithm),
		Mu:               c.Mu,
		Lambda:           c.Lambda,
		Selection:        evo.SelectionMethod(c.Selection),
		TournSize:        c.TournSize,
		Crossover:        c.Crossover,
		Fast:             c.Fast,
		Beta:             c.Beta,
		MutationRate:     c.MutationRate,
		MaxEvals:         c.MaxEvals,
		Seed:             c.Seed,
		Repair:           c.Repair,
		Discard:          c.Discard,
		DuplicateRetries: c.DuplicateRetries,
		F:                c.F,
	}
	if cfg.Algorithm == evo.AlgorithmLambdaLambda {
		cfg.SelfAdjust = c.SelfAdjust
	}
	return cfg
}

// TestFile is the base name of the problem file, used as the results file
// name.
func (c RunConfig) TestFile() string {
	return filepath.Base(c.ProblemFile)
}

// ResultsFolder names the directory a run's results go to, for example
// results/mkp/repair/5+10Fast-Tournament-2GA.
func (c RunConfig) ResultsFolder() string {
	root := c.ResultsRoot
	if root == "" {
		root = DefaultResultsRoot
	}
	parts := []string{root, c.Problem}
	if c.Problem == problem.KindKnapsack {
		if c.Repair {
			parts = append(parts, "repair")
		} else {
			parts = append(parts, "no-repair")
		}
	}

	mu := strconv.Itoa(c.Mu)
	lambda := strconv.Itoa(c.Lambda)
	alg := evo.Algorithm(c.Algorithm)
	switch alg {
	case evo.AlgorithmGreedy:
		if c.Mu == 0 {
			mu = "2"
		}
		lambda = "1"
	case evo.AlgorithmLambdaLambda:
		mu = "1"
		lambda = "lambda"
	}

	var b strings.Builder
	if alg == evo.AlgorithmGreedy {
		b.WriteString("Greedy-")
	}
	b.WriteString(mu + "+" + lambda)
	if alg == evo.AlgorithmLambdaLambda {
		b.WriteString("," + lambda)
	}
	if c.Fast {
		b.WriteString("Fast-")
	}
	if c.Selection == string(evo.SelectionTournament) {
		b.WriteString("Tournament-" + strconv.Itoa(c.TournSize))
	}
	if c.Crossover || alg == evo.AlgorithmGreedy {
		b.WriteString("GA")
	} else {
		b.WriteString("EA")
	}
	return filepath.Join(append(parts, b.String())...)
}
