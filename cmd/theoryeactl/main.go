package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"theoryea/internal/config"
	"theoryea/internal/metrics"
	theoryea "theoryea/pkg/theoryea"
)

var version = "dev"

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	logLevel   string
	store      string
	storePath  string
	results    string
	metricsOut string
	configPath string

	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOptions{stderr: stderr}
	root := &cobra.Command{
		Use:           "theoryeactl",
		Short:         "Run evolutionary algorithms on pseudo-boolean benchmark problems",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&opts.logLevel, "log-level", "info", "log level: debug|info|warn|error")
	pf.StringVar(&opts.store, "store", "", "store backend: memory|sqlite|badger (default from config)")
	pf.StringVar(&opts.storePath, "store-path", "", "sqlite database file or badger directory")
	pf.StringVar(&opts.results, "results", "", "results root directory (default from config)")
	pf.StringVar(&opts.metricsOut, "metrics-out", "", "write prometheus metrics to this textfile after the command")
	pf.StringVar(&opts.configPath, "config", "", "YAML run configuration")

	root.AddCommand(
		newRunCmd(opts),
		newBenchmarkCmd(opts),
		newRunsCmd(opts),
		newShowCmd(opts),
		newVersionCmd(),
	)
	return root
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	handlerOpts := &slog.HandlerOptions{Level: lvl}
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
	}
	return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
}

// loadConfig reads --config (or the defaults) and applies the persistent
// store and results flags on top.
func (o *globalOptions) loadConfig() (config.RunConfig, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.RunConfig{}, err
	}
	if o.store != "" {
		cfg.Store = o.store
	}
	if o.storePath != "" {
		cfg.StorePath = o.storePath
	}
	if o.results != "" {
		cfg.ResultsRoot = o.results
	}
	return cfg, nil
}

// openClient builds a facade client for cfg. The returned finish function
// closes the client and writes the metrics textfile when requested.
func (o *globalOptions) openClient(cfg config.RunConfig) (*theoryea.Client, func() error, error) {
	logger, err := newLogger(o.stderr, o.logLevel)
	if err != nil {
		return nil, nil, err
	}
	var recorder *metrics.Recorder
	if o.metricsOut != "" {
		recorder = metrics.NewRecorder()
	}
	client, err := theoryea.New(theoryea.Options{
		StoreKind:   cfg.Store,
		StorePath:   cfg.StorePath,
		ResultsRoot: cfg.ResultsRoot,
		Logger:      logger,
		Metrics:     recorder,
	})
	if err != nil {
		return nil, nil, err
	}
	finish := func() error {
		closeErr := client.Close()
		if recorder != nil {
			if err := recorder.WriteTextfile(o.metricsOut); err != nil {
				return fmt.Errorf("write metrics: %w", err)
			}
		}
		return closeErr
	}
	return client, finish, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "theoryeactl %s\n", version)
			return nil
		},
	}
}
