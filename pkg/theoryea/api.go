// Package theoryea is the library facade over the search engine: it loads a
// problem, runs one algorithm on it, persists the outcome and writes the
// results files the command line tool reports on.
package theoryea

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"theoryea/internal/config"
	"theoryea/internal/evo"
	"theoryea/internal/metrics"
	"theoryea/internal/model"
	"theoryea/internal/problem"
	"theoryea/internal/stats"
	"theoryea/internal/storage"
)

const (
	defaultRunsLimit = 20
	defaultDBPath    = "theoryea.db"
	// fixed width so run timestamps sort as strings
	createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

var ErrNoRuns = errors.New("no runs recorded")

type Options struct {
	StoreKind   string
	StorePath   string
	ResultsRoot string
	Logger      *slog.Logger
	// Metrics, when set, receives every generation of every run.
	Metrics *metrics.Recorder
}

type Client struct {
	store       storage.Store
	resultsRoot string
	logger      *slog.Logger
	metrics     *metrics.Recorder

	initOnce sync.Once
	initErr  error

	// run_index.json is rewritten on every append
	indexMu sync.Mutex
}

// RunSummary describes a finished run and where its files went.
type RunSummary struct {
	RunID                string
	ResultsPath          string
	TracePath            string
	BestGenome           string
	BestFitness          float64
	Evaluations          int
	Generations          int
	DegenerateDuplicates int
	FinalLambda          float64
	Optimum              *float64
	ReachedOptimum       bool
}

type BenchmarkRequest struct {
	Config config.RunConfig
	// Seeds lists one seed per run. When empty, Runs consecutive seeds
	// starting at Config.Seed are used.
	Seeds   []int64
	Runs    int
	Workers int
	// TraceStep is the evaluation spacing of the averaged trace; zero
	// uses the stats default.
	TraceStep int
}

type BenchmarkResult struct {
	Summary     stats.BenchmarkSummary
	SummaryPath string
	Runs        []RunSummary
}

type ShowRequest struct {
	RunID  string
	Latest bool
}

type ShowResult struct {
	Run   model.RunRecord
	Trace []model.TracePoint
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	storePath := opts.StorePath
	if storePath == "" && storeKind == storage.KindSQLite {
		storePath = defaultDBPath
	}
	resultsRoot := opts.ResultsRoot
	if resultsRoot == "" {
		resultsRoot = config.DefaultResultsRoot
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	store, err := storage.NewStore(storeKind, storePath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:       store,
		resultsRoot: resultsRoot,
		logger:      logger,
		metrics:     opts.Metrics,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	c.initOnce.Do(func() {
		c.initErr = c.store.Init(ctx)
	})
	return c.initErr
}

// Run validates cfg, loads its problem and runs the configured algorithm
// once. The run is saved to the store and its results file is written to
// cfg.ResultsFolder().
func (c *Client) Run(ctx context.Context, cfg config.RunConfig) (RunSummary, error) {
	cfg = c.withResultsRoot(cfg)
	if err := cfg.Validate(); err != nil {
		return RunSummary{}, err
	}
	if err := c.Init(ctx); err != nil {
		return RunSummary{}, err
	}
	p, err := problem.Load(cfg.Problem, cfg.ProblemFile)
	if err != nil {
		return RunSummary{}, err
	}
	summary, _, err := c.execute(ctx, cfg, p, cfg.TestFile())
	return summary, err
}

// Benchmark repeats one configuration over several seeds, running up to
// Workers of them at once, and writes an aggregate summary next to the
// per-seed results.
func (c *Client) Benchmark(ctx context.Context, req BenchmarkRequest) (BenchmarkResult, error) {
	cfg := c.withResultsRoot(req.Config)
	if err := cfg.Validate(); err != nil {
		return BenchmarkResult{}, err
	}
	seeds := req.Seeds
	if len(seeds) == 0 {
		if req.Runs <= 0 {
			return BenchmarkResult{}, fmt.Errorf("%w: benchmark needs seeds or a positive run count", evo.ErrConfig)
		}
		seeds = make([]int64, req.Runs)
		for i := range seeds {
			seeds[i] = cfg.Seed + int64(i)
		}
	}
	if err := c.Init(ctx); err != nil {
		return BenchmarkResult{}, err
	}
	// problems are read-only after loading and shared by every worker
	p, err := problem.Load(cfg.Problem, cfg.ProblemFile)
	if err != nil {
		return BenchmarkResult{}, err
	}

	summaries := make([]RunSummary, len(seeds))
	traces := make([][]model.TracePoint, len(seeds))
	g, gctx := errgroup.WithContext(ctx)
	if req.Workers > 0 {
		g.SetLimit(req.Workers)
	}
	for i, seed := range seeds {
		g.Go(func() error {
			runCfg := cfg
			runCfg.Seed = seed
			testFile := cfg.TestFile() + ".seed" + strconv.FormatInt(seed, 10)
			summary, trace, err := c.execute(gctx, runCfg, p, testFile)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			summaries[i] = summary
			traces[i] = trace
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BenchmarkResult{}, err
	}

	target := optimumOf(p)
	runs := make([]stats.BenchmarkRun, len(seeds))
	for i, s := range summaries {
		runs[i] = stats.BenchmarkRun{
			RunID:       s.RunID,
			Seed:        seeds[i],
			BestFitness: s.BestFitness,
			Evaluations: s.Evaluations,
		}
		if target != nil {
			runs[i].EvaluationsToTarget, runs[i].ReachedTarget = stats.EvaluationsToTarget(traces[i], *target)
		}
	}
	benchmark := stats.SummarizeBenchmark(cfg.TestFile(), runs, target)
	benchmark.AverageTrace = stats.AverageTrace(traces, req.TraceStep)
	path, err := stats.WriteBenchmarkSummary(cfg.ResultsFolder(), benchmark)
	if err != nil {
		return BenchmarkResult{}, err
	}
	c.logger.Info("benchmark complete",
		"problem", cfg.Problem,
		"algorithm", cfg.Algorithm,
		"runs", benchmark.TotalRuns,
		"success_rate", benchmark.SuccessRate,
		"summary", path,
	)
	return BenchmarkResult{Summary: benchmark, SummaryPath: path, Runs: summaries}, nil
}

// Runs lists recorded runs from the results index, newest first.
func (c *Client) Runs(_ context.Context, limit int) ([]stats.RunIndexEntry, error) {
	if limit <= 0 {
		limit = defaultRunsLimit
	}
	entries, err := stats.ListRunIndex(c.resultsRoot)
	if err != nil {
		return nil, err
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Show returns a run and its trace. The store is consulted first; runs
// recorded by an earlier process with a non-persistent store are read back
// from their results files.
func (c *Client) Show(ctx context.Context, req ShowRequest) (ShowResult, error) {
	if req.RunID != "" && req.Latest {
		return ShowResult{}, errors.New("use either run id or latest")
	}
	if req.RunID == "" && !req.Latest {
		return ShowResult{}, errors.New("show requires run id or latest")
	}
	if err := c.Init(ctx); err != nil {
		return ShowResult{}, err
	}

	entries, err := stats.ListRunIndex(c.resultsRoot)
	if err != nil {
		return ShowResult{}, err
	}
	runID := req.RunID
	if req.Latest {
		if len(entries) == 0 {
			return ShowResult{}, ErrNoRuns
		}
		runID = entries[0].RunID
	}

	run, ok, err := c.store.GetRun(ctx, runID)
	if err != nil {
		return ShowResult{}, err
	}
	if ok {
		trace, _, err := c.store.GetTrace(ctx, runID)
		if err != nil {
			return ShowResult{}, err
		}
		return ShowResult{Run: run, Trace: trace}, nil
	}

	for _, e := range entries {
		if e.RunID != runID {
			continue
		}
		summary, ok, err := stats.ReadRunSummary(e.ResultsPath)
		if err != nil {
			return ShowResult{}, err
		}
		if !ok {
			break
		}
		if summary.Run.ID != runID {
			return ShowResult{}, fmt.Errorf("results file %s holds run %s, not %s", e.ResultsPath, summary.Run.ID, runID)
		}
		trace, _, err := stats.ReadTrace(stats.TracePath(filepath.Dir(e.ResultsPath), filepath.Base(e.ResultsPath)))
		if err != nil {
			return ShowResult{}, err
		}
		return ShowResult{Run: summary.Run, Trace: trace}, nil
	}
	return ShowResult{}, fmt.Errorf("run not found: %s", runID)
}

func (c *Client) withResultsRoot(cfg config.RunConfig) config.RunConfig {
	if cfg.ResultsRoot == "" || cfg.ResultsRoot == config.DefaultResultsRoot {
		cfg.ResultsRoot = c.resultsRoot
	}
	return cfg
}

func (c *Client) execute(ctx context.Context, cfg config.RunConfig, p problem.Problem, testFile string) (RunSummary, []model.TracePoint, error) {
	if err := ctx.Err(); err != nil {
		return RunSummary{}, nil, err
	}
	runID := uuid.NewString()
	logger := c.logger.With("run_id", runID)

	evoCfg := cfg.ToEvoConfig()
	evoCfg.Logger = logger
	if c.metrics != nil {
		evoCfg.Observer = c.metrics.Observer(nil)
	}

	started := time.Now()
	result, err := evo.Run(p, evoCfg)
	if err != nil {
		return RunSummary{}, nil, err
	}
	if c.metrics != nil {
		c.metrics.RunCompleted(evoCfg.Algorithm, cfg.Problem)
	}

	folder := cfg.ResultsFolder()
	record := model.RunRecord{
		VersionedRecord: storage.Versioned(),
		ID:              runID,
		CreatedAtUTC:    time.Now().UTC().Format(createdAtLayout),
		Problem:         cfg.Problem,
		ProblemFile:     cfg.ProblemFile,
		Algorithm:       cfg.Algorithm,
		Mu:              cfg.Mu,
		Lambda:          cfg.Lambda,
		Selection:       cfg.Selection,
		TournSize:       cfg.TournSize,
		Crossover:       cfg.Crossover,
		Fast:            cfg.Fast,
		Repair:          cfg.Repair,
		Discard:         cfg.Discard,
		SelfAdjust:      evoCfg.SelfAdjust,
		Seed:            cfg.Seed,
		MaxEvals:        cfg.MaxEvals,
		BestGenome:      result.Best.Genome.String(),
		BestFitness:     result.Best.Fitness,
		Evaluations:     result.Evaluations,
		Generations:     result.Generations,
		ResultsFolder:   folder,
	}
	if err := c.store.SaveRun(ctx, record); err != nil {
		return RunSummary{}, nil, fmt.Errorf("save run: %w", err)
	}
	if err := c.store.SaveTrace(ctx, runID, result.Trace); err != nil {
		return RunSummary{}, nil, fmt.Errorf("save trace: %w", err)
	}

	// a repeated configuration keeps earlier results files intact
	testFile, err = stats.ClaimTestFile(folder, testFile, runID)
	if err != nil {
		return RunSummary{}, nil, fmt.Errorf("claim results file: %w", err)
	}
	optimum := optimumOf(p)
	resultsPath, err := stats.WriteRunArtifacts(folder, testFile, stats.RunArtifacts{
		Run:     record,
		Trace:   result.Trace,
		Optimum: optimum,
	})
	if err != nil {
		return RunSummary{}, nil, fmt.Errorf("write results: %w", err)
	}
	if err := c.appendIndex(stats.RunIndexEntry{
		RunID:        runID,
		Problem:      record.Problem,
		ProblemFile:  record.ProblemFile,
		Algorithm:    record.Algorithm,
		Seed:         record.Seed,
		BestFitness:  record.BestFitness,
		Evaluations:  record.Evaluations,
		ResultsPath:  resultsPath,
		CreatedAtUTC: record.CreatedAtUTC,
	}); err != nil {
		return RunSummary{}, nil, fmt.Errorf("update run index: %w", err)
	}

	logger.Info("run complete",
		"problem", cfg.Problem,
		"algorithm", cfg.Algorithm,
		"seed", cfg.Seed,
		"best_fitness", record.BestFitness,
		"evaluations", record.Evaluations,
		"generations", record.Generations,
		"elapsed", time.Since(started),
	)

	summary := RunSummary{
		RunID:                runID,
		ResultsPath:          resultsPath,
		TracePath:            stats.TracePath(folder, testFile),
		BestGenome:           record.BestGenome,
		BestFitness:          record.BestFitness,
		Evaluations:          record.Evaluations,
		Generations:          record.Generations,
		DegenerateDuplicates: result.DegenerateDuplicates,
		FinalLambda:          result.FinalLambda,
		Optimum:              optimum,
	}
	if optimum != nil {
		summary.ReachedOptimum = record.BestFitness >= *optimum
	}
	return summary, result.Trace, nil
}

func (c *Client) appendIndex(entry stats.RunIndexEntry) error {
	c.indexMu.Lock()
	defer c.indexMu.Unlock()
	return stats.AppendRunIndex(c.resultsRoot, entry)
}

func optimumOf(p problem.Problem) *float64 {
	bounded, ok := p.(problem.Bounded)
	if !ok {
		return nil
	}
	v, ok := bounded.Optimum()
	if !ok {
		return nil
	}
	return &v
}
