package evo

import (
	"errors"
	"fmt"
	"log/slog"
)

type Algorithm string

const (
	AlgorithmPlus         Algorithm = "plus"
	AlgorithmComma        Algorithm = "comma"
	AlgorithmSteady       Algorithm = "steady"
	AlgorithmGreedy       Algorithm = "greedy"
	AlgorithmLambdaLambda Algorithm = "lambdalambda"
)

type SelectionMethod string

const (
	SelectionUniform    SelectionMethod = "uniform"
	SelectionTournament SelectionMethod = "tournament"
)

const (
	DefaultMaxEvals         = 10000
	DefaultBeta             = 1.5
	DefaultF                = 1.5
	DefaultMutationRate     = 1.0
	DefaultSeed             = 100
	DefaultInitialLambda    = 1.0
	DefaultDuplicateRetries = 100
)

// ErrConfig marks a configuration that the selected algorithm cannot run.
var ErrConfig = errors.New("config error")

// Config holds every knob of a single run. It is built once and never
// modified while the run is in progress.
type Config struct {
	Algorithm Algorithm
	// Mu and Lambda are 0 when not supplied. They are required for the
	// theory GA variants and must stay unset for greedy and lambdalambda.
	Mu     int
	Lambda int

	Selection SelectionMethod
	TournSize int
	Crossover bool

	Fast bool
	Beta float64

	// MutationRate is the expected number of flipped bits per mutation.
	MutationRate float64
	MaxEvals     int
	Seed         int64

	Repair bool
	// Discard regenerates offspring already present in the population or
	// the current batch. Plus and comma only.
	Discard bool
	// DuplicateRetries bounds regeneration attempts when Discard is set.
	DuplicateRetries int

	SelfAdjust    bool
	F             float64
	InitialLambda float64

	Logger   *slog.Logger
	Observer Observer
}

// WithDefaults fills zero values with the documented defaults.
func (c Config) WithDefaults() Config {
	if c.Selection == "" {
		c.Selection = SelectionUniform
	}
	if c.Beta == 0 {
		c.Beta = DefaultBeta
	}
	if c.F == 0 {
		c.F = DefaultF
	}
	if c.MutationRate == 0 {
		c.MutationRate = DefaultMutationRate
	}
	if c.MaxEvals == 0 {
		c.MaxEvals = DefaultMaxEvals
	}
	if c.InitialLambda == 0 {
		c.InitialLambda = DefaultInitialLambda
	}
	if c.DuplicateRetries == 0 {
		c.DuplicateRetries = DefaultDuplicateRetries
	}
	return c
}

// Validate checks the configuration against a genome length. It expects
// defaults to be applied already.
func (c Config) Validate(length int) error {
	if length <= 0 {
		return configErrorf("genome length must be > 0, got %d", length)
	}
	if c.MaxEvals <= 0 {
		return configErrorf("max evaluations must be > 0, got %d", c.MaxEvals)
	}
	if c.MutationRate <= 0 {
		return configErrorf("mutation rate must be > 0, got %g", c.MutationRate)
	}
	if c.DuplicateRetries < 0 {
		return configErrorf("duplicate retries must be >= 0, got %d", c.DuplicateRetries)
	}
	switch c.Selection {
	case SelectionUniform:
	case SelectionTournament:
		if c.TournSize < 1 {
			return configErrorf("tournament size must be >= 1, got %d", c.TournSize)
		}
	default:
		return configErrorf("unknown selection %q", c.Selection)
	}

	switch c.Algorithm {
	case AlgorithmPlus, AlgorithmComma, AlgorithmSteady:
		if c.Mu < 1 {
			return configErrorf("%s requires mu >= 1, got %d", c.Algorithm, c.Mu)
		}
		if c.Lambda < 1 {
			return configErrorf("%s requires lambda >= 1, got %d", c.Algorithm, c.Lambda)
		}
		if c.Algorithm == AlgorithmComma && c.Lambda < c.Mu {
			return configErrorf("comma replacement requires lambda >= mu, got mu=%d lambda=%d", c.Mu, c.Lambda)
		}
		if c.Fast && c.Algorithm == AlgorithmSteady {
			return configErrorf("fast mutation applies to plus and comma only")
		}
		if c.Fast && c.Beta <= 1 {
			return configErrorf("fast mutation requires beta > 1, got %g", c.Beta)
		}
	case AlgorithmGreedy:
		if c.Lambda != 0 {
			return configErrorf("greedy (2+1) produces one child per generation, lambda not applicable")
		}
		if c.Mu != 0 && c.Mu != 2 {
			return configErrorf("greedy (2+1) keeps two parents, got mu=%d", c.Mu)
		}
		if c.Fast {
			return configErrorf("fast mutation applies to plus and comma only")
		}
		if c.Crossover {
			return configErrorf("greedy (2+1) does not apply crossover")
		}
	case AlgorithmLambdaLambda:
		if c.Lambda != 0 {
			return configErrorf("lambdalambda adjusts lambda itself, lambda not applicable")
		}
		if c.Mu != 0 && c.Mu != 1 {
			return configErrorf("lambdalambda keeps a single solution, got mu=%d", c.Mu)
		}
		if c.Fast {
			return configErrorf("fast mutation applies to plus and comma only")
		}
		if c.InitialLambda < 1 || c.InitialLambda > float64(length) {
			return configErrorf("initial lambda must be in [1,%d], got %g", length, c.InitialLambda)
		}
		if c.SelfAdjust && c.F <= 1 {
			return configErrorf("self-adjustment requires F > 1, got %g", c.F)
		}
	default:
		return configErrorf("unknown algorithm %q", c.Algorithm)
	}
	if c.Discard && c.Algorithm != AlgorithmPlus && c.Algorithm != AlgorithmComma {
		return configErrorf("duplicate discarding applies to plus and comma only")
	}
	return nil
}

func configErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrConfig}, args...)...)
}
