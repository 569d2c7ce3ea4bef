package main

import (
	"fmt"
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	theoryea "theoryea/pkg/theoryea"
)

func newBenchmarkCmd(opts *globalOptions) *cobra.Command {
	rf := &runFlags{}
	var (
		runs      int
		workers   int
		seeds     []int64
		traceStep int
	)
	cmd := &cobra.Command{
		Use:   "benchmark [flags] <testfile>",
		Short: "Repeat a run over several seeds and summarise the outcomes",
		Args:  cobra.MaximumNArgs(1),
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
			result, err := client.Benchmark(cmd.Context(), theoryea.BenchmarkRequest{
				Config:    cfg,
				Seeds:     seeds,
				Runs:      runs,
				Workers:   workers,
				TraceStep: traceStep,
			})
			if closeErr := finish(); err == nil {
				err = closeErr
			}
			if err != nil {
				return err
			}

			s := result.Summary
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "runs=%d success=%d success_rate=%.2f\n", s.TotalRuns, s.SuccessRuns, s.SuccessRate)
			fmt.Fprintf(out, "best_fitness mean=%g std=%g min=%g max=%g\n",
				s.BestFitness.Mean, s.BestFitness.Std, s.BestFitness.Min, s.BestFitness.Max)
			fmt.Fprintf(out, "evaluations mean=%s min=%s max=%s\n",
				humanize.Comma(int64(s.Evaluations.Mean)), humanize.Comma(int64(s.Evaluations.Min)), humanize.Comma(int64(s.Evaluations.Max)))
			if s.ToTarget != nil {
				fmt.Fprintf(out, "evaluations_to_optimum mean=%s\n", humanize.Comma(int64(s.ToTarget.Mean)))
			}
			fmt.Fprintf(out, "summary=%s\n", result.SummaryPath)
			return nil
		},
	}
	addRunFlags(cmd, rf)
	cmd.Flags().IntVar(&runs, "runs", 10, "number of runs, seeded consecutively from --seed")
	cmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "runs executed concurrently")
	cmd.Flags().Int64SliceVar(&seeds, "seeds", nil, "explicit seeds, overrides --runs")
	cmd.Flags().IntVar(&traceStep, "trace-step", 500, "evaluation spacing of the averaged convergence trace")
	return cmd
}
