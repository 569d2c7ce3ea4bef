package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	theoryea "theoryea/pkg/theoryea"
)

func newRunsCmd(opts *globalOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			client, finish, err := opts.openClient(cfg)
			if err != nil {
				return err
			}
			entries, err := client.Runs(cmd.Context(), limit)
			if closeErr := finish(); err == nil {
				err = closeErr
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "no runs")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(out, "%s %s problem=%s file=%s algorithm=%s seed=%d best=%g evaluations=%s\n",
					e.RunID, e.CreatedAtUTC, e.Problem, e.ProblemFile, e.Algorithm, e.Seed,
					e.BestFitness, humanize.Comma(int64(e.Evaluations)))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")
	return cmd
}

func newShowCmd(opts *globalOptions) *cobra.Command {
	var (
		latest    bool
		showTrace bool
	)
	cmd := &cobra.Command{
		Use:   "show [run-id]",
		Short: "Show one run and its convergence trace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := theoryea.ShowRequest{Latest: latest}
			if len(args) == 1 {
				req.RunID = args[0]
			}
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			client, finish, err := opts.openClient(cfg)
			if err != nil {
				return err
			}
			shown, err := client.Show(cmd.Context(), req)
			if closeErr := finish(); err == nil {
				err = closeErr
			}
			if errors.Is(err, theoryea.ErrNoRuns) {
				return errors.New("no runs available to show")
			}
			if err != nil {
				return err
			}

			r := shown.Run
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run_id=%s created=%s\n", r.ID, r.CreatedAtUTC)
			fmt.Fprintf(out, "problem=%s file=%s algorithm=%s mu=%d lambda=%d selection=%s seed=%d\n",
				r.Problem, r.ProblemFile, r.Algorithm, r.Mu, r.Lambda, r.Selection, r.Seed)
			fmt.Fprintf(out, "best_fitness=%g evaluations=%s generations=%s\n",
				r.BestFitness, humanize.Comma(int64(r.Evaluations)), humanize.Comma(int64(r.Generations)))
			fmt.Fprintf(out, "best=%s\n", r.BestGenome)
			if showTrace {
				for _, p := range shown.Trace {
					fmt.Fprintf(out, "generation=%d evaluations=%d best_fitness=%g lambda=%g\n",
						p.Generation, p.Evaluations, p.BestFitness, p.Lambda)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&latest, "latest", false, "show the most recent run")
	cmd.Flags().BoolVar(&showTrace, "trace", false, "print every trace checkpoint")
	return cmd
}
