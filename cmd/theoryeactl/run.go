package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"theoryea/internal/config"
	"theoryea/internal/evo"
	theoryea "theoryea/pkg/theoryea"
)

// runFlags holds the per-run options. Only flags the user set override the
// configuration file.
type runFlags struct {
	problem      string
	fast         bool
	mu           int
	lambda       int
	crossover    bool
	maxEvals     int
	beta         float64
	selection    string
	tournSize    int
	algorithm    string
	seed         int64
	selfAdjust   bool
	f            float64
	repair       bool
	mutationRate float64
	discard      bool
	retries      int
}

func addRunFlags(cmd *cobra.Command, rf *runFlags) {
	fs := cmd.Flags()
	fs.StringVarP(&rf.problem, "problem", "p", "", "problem: mkp|onemax|isg|maxsat")
	fs.BoolVarP(&rf.fast, "fast", "f", false, "use heavy-tailed fast mutation (plus and comma only)")
	fs.IntVarP(&rf.mu, "mu", "m", 0, "population size")
	fs.IntVarP(&rf.lambda, "lambda", "l", 0, "offspring per generation")
	fs.BoolVarP(&rf.crossover, "crossover", "c", false, "apply uniform crossover before mutation")
	fs.IntVarP(&rf.maxEvals, "max-evals", "e", evo.DefaultMaxEvals, "evaluation budget, checked between generations")
	fs.Float64VarP(&rf.beta, "beta", "b", evo.DefaultBeta, "power-law exponent for fast mutation")
	fs.StringVarP(&rf.selection, "selection", "S", string(evo.SelectionUniform), "parent selection: uniform|tournament")
	fs.IntVarP(&rf.tournSize, "tournament-size", "s", 0, "tournament size")
	fs.StringVarP(&rf.algorithm, "algorithm", "a", "", "algorithm: plus|comma|greedy|steady|lambdalambda")
	fs.Int64VarP(&rf.seed, "seed", "r", evo.DefaultSeed, "random seed")
	fs.BoolVarP(&rf.selfAdjust, "self-adjust", "A", true, "self-adjust lambda (lambdalambda only)")
	fs.Float64VarP(&rf.f, "adjust-factor", "F", evo.DefaultF, "update factor F for self-adjusting lambda")
	fs.BoolVarP(&rf.repair, "repair", "R", false, "repair infeasible knapsack solutions (mkp only)")
	fs.Float64VarP(&rf.mutationRate, "mutation-rate", "M", evo.DefaultMutationRate, "expected number of flipped bits per mutation")
	fs.BoolVarP(&rf.discard, "discard", "D", false, "regenerate offspring already present in the population")
	fs.IntVar(&rf.retries, "duplicate-retries", evo.DefaultDuplicateRetries, "regeneration attempts per offspring when discarding duplicates")
}

// apply copies explicitly set flags onto cfg. A positional argument names
// the problem file.
func (rf *runFlags) apply(cmd *cobra.Command, args []string, cfg *config.RunConfig) {
	set := func(name string) bool { return cmd.Flags().Changed(name) }
	if set("problem") {
		cfg.Problem = rf.problem
	}
	if set("fast") {
		cfg.Fast = rf.fast
	}
	if set("mu") {
		cfg.Mu = rf.mu
	}
	if set("lambda") {
		cfg.Lambda = rf.lambda
	}
	if set("crossover") {
		cfg.Crossover = rf.crossover
	}
	if set("max-evals") {
		cfg.MaxEvals = rf.maxEvals
	}
	if set("beta") {
		cfg.Beta = rf.beta
	}
	if set("selection") {
		cfg.Selection = rf.selection
	}
	if set("tournament-size") {
		cfg.TournSize = rf.tournSize
	}
	if set("algorithm") {
		cfg.Algorithm = rf.algorithm
	}
	if set("seed") {
		cfg.Seed = rf.seed
	}
	if set("self-adjust") {
		cfg.SelfAdjust = rf.selfAdjust
	}
	if set("adjust-factor") {
		cfg.F = rf.f
	}
	if set("repair") {
		cfg.Repair = rf.repair
	}
	if set("mutation-rate") {
		cfg.MutationRate = rf.mutationRate
	}
	if set("discard") {
		cfg.Discard = rf.discard
	}
	if set("duplicate-retries") {
		cfg.DuplicateRetries = rf.retries
	}
	if len(args) > 0 {
		cfg.ProblemFile = args[0]
	}
}

func newRunCmd(opts *globalOptions) *cobra.Command {
	rf := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run [flags] <testfile>",
		Short: "Run one algorithm on one problem instance",
		Long: `Run one algorithm on one problem instance.

For mkp, maxsat and isg the test file is an instance file. For onemax it is
an identifier onemax_<length>_<run>. Results are written to
<results>/<problem>/<details>/<testfile>.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			rf.apply(cmd, args, &cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			client, finish, err := opts.openClient(cfg)
			if err != nil {
				return err
			}
			summary, err := client.Run(cmd.Context(), cfg)
			if closeErr := finish(); err == nil {
				err = closeErr
			}
			if err != nil {
				return err
			}
			printRunSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}
	addRunFlags(cmd, rf)
	return cmd
}

func printRunSummary(w io.Writer, s theoryea.RunSummary) {
	fmt.Fprintf(w, "run_id=%s best_fitness=%g evaluations=%s generations=%s\n",
		s.RunID, s.BestFitness, humanize.Comma(int64(s.Evaluations)), humanize.Comma(int64(s.Generations)))
	fmt.Fprintf(w, "best=%s\n", s.BestGenome)
	if s.Optimum != nil {
		fmt.Fprintf(w, "optimum=%g reached=%t\n", *s.Optimum, s.ReachedOptimum)
	}
	if s.DegenerateDuplicates > 0 {
		fmt.Fprintf(w, "degenerate_duplicates=%d\n", s.DegenerateDuplicates)
	}
	fmt.Fprintf(w, "results=%s\n", s.ResultsPath)
}
