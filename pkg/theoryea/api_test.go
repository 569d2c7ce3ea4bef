package theoryea

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"theoryea/internal/config"
	"theoryea/internal/evo"
	"theoryea/internal/metrics"
	"theoryea/internal/stats"
)

func newTestClient(t *testing.T, root string, opts Options) *Client {
	t.Helper()
	opts.ResultsRoot = root
	client, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func oneMaxConfig() config.RunConfig {
	cfg := config.Default()
	cfg.Problem = "onemax"
	cfg.ProblemFile = "onemax_10_1"
	cfg.Algorithm = "plus"
	cfg.Mu = 2
	cfg.Lambda = 2
	cfg.MaxEvals = 200
	return cfg
}

func TestClientRunWritesResultsAndStore(t *testing.T) {
	root := t.TempDir()
	client := newTestClient(t, root, Options{StoreKind: "memory"})
	ctx := context.Background()

	summary, err := client.Run(ctx, oneMaxConfig())
	require.NoError(t, err)
	require.NotEmpty(t, summary.RunID)
	assert.Equal(t, filepath.Join(root, "onemax", "2+2EA", "onemax_10_1"), summary.ResultsPath)
	assert.FileExists(t, summary.ResultsPath)
	assert.FileExists(t, summary.TracePath)
	assert.Len(t, summary.BestGenome, 10)
	require.NotNil(t, summary.Optimum)
	assert.Equal(t, 10.0, *summary.Optimum)
	assert.Equal(t, summary.BestFitness >= 10, summary.ReachedOptimum)
	assert.LessOrEqual(t, summary.Evaluations, 200+2)

	runs, err := client.Runs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, summary.RunID, runs[0].RunID)
	assert.Equal(t, "plus", runs[0].Algorithm)

	shown, err := client.Show(ctx, ShowRequest{Latest: true})
	require.NoError(t, err)
	assert.Equal(t, summary.RunID, shown.Run.ID)
	assert.Equal(t, summary.BestFitness, shown.Run.BestFitness)
	assert.Equal(t, summary.BestGenome, shown.Run.BestGenome)
	require.NotEmpty(t, shown.Trace)
	assert.Equal(t, summary.Evaluations, shown.Trace[len(shown.Trace)-1].Evaluations)
}

func TestClientRunIsReproducible(t *testing.T) {
	client := newTestClient(t, t.TempDir(), Options{})
	ctx := context.Background()

	first, err := client.Run(ctx, oneMaxConfig())
	require.NoError(t, err)
	second, err := client.Run(ctx, oneMaxConfig())
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.BestGenome, second.BestGenome)
	assert.Equal(t, first.Evaluations, second.Evaluations)

	runs, err := client.Runs(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, second.RunID, runs[0].RunID, "runs are listed newest first")
}

func TestClientRunRejectsInvalidConfig(t *testing.T) {
	client := newTestClient(t, t.TempDir(), Options{})

	cfg := oneMaxConfig()
	cfg.Repair = true
	_, err := client.Run(context.Background(), cfg)
	assert.ErrorIs(t, err, evo.ErrConfig)

	cfg = oneMaxConfig()
	cfg.ProblemFile = "onemax_ten"
	_, err = client.Run(context.Background(), cfg)
	assert.Error(t, err)
}

func TestClientBenchmark(t *testing.T) {
	root := t.TempDir()
	client := newTestClient(t, root, Options{StoreKind: "badger"})
	ctx := context.Background()

	result, err := client.Benchmark(ctx, BenchmarkRequest{
		Config:    oneMaxConfig(),
		Seeds:     []int64{1, 2, 3},
		Workers:   2,
		TraceStep: 50,
	})
	require.NoError(t, err)
	require.Len(t, result.Runs, 3)
	assert.FileExists(t, result.SummaryPath)
	assert.Equal(t, filepath.Join(root, "onemax", "2+2EA", "onemax_10_1_benchmark.json"), result.SummaryPath)
	assert.Equal(t, 3, result.Summary.TotalRuns)
	require.NotNil(t, result.Summary.Target)
	assert.Equal(t, 10.0, *result.Summary.Target)
	assert.NotEmpty(t, result.Summary.AverageTrace)
	for i, run := range result.Summary.Runs {
		assert.Equal(t, []int64{1, 2, 3}[i], run.Seed)
		assert.Equal(t, result.Runs[i].RunID, run.RunID)
	}
	assert.FileExists(t, filepath.Join(root, "onemax", "2+2EA", "onemax_10_1.seed2"))

	runs, err := client.Runs(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 3)

	shown, err := client.Show(ctx, ShowRequest{RunID: result.Runs[1].RunID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), shown.Run.Seed)
}

func TestClientBenchmarkRequiresRuns(t *testing.T) {
	client := newTestClient(t, t.TempDir(), Options{})
	_, err := client.Benchmark(context.Background(), BenchmarkRequest{Config: oneMaxConfig()})
	assert.ErrorIs(t, err, evo.ErrConfig)
}

func TestClientShowReadsResultsFilesFromEarlierProcess(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()

	first := newTestClient(t, root, Options{})
	summary, err := first.Run(ctx, oneMaxConfig())
	require.NoError(t, err)

	second := newTestClient(t, root, Options{})
	shown, err := second.Show(ctx, ShowRequest{RunID: summary.RunID})
	require.NoError(t, err)
	assert.Equal(t, summary.RunID, shown.Run.ID)
	assert.Equal(t, summary.BestGenome, shown.Run.BestGenome)
	assert.NotEmpty(t, shown.Trace)

	_, err = second.Show(ctx, ShowRequest{RunID: "missing"})
	assert.Error(t, err)
}

func TestClientRepeatedConfigKeepsEveryRunsResults(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()

	first := newTestClient(t, root, Options{})
	var runs []RunSummary
	for _, seed := range []int64{1, 2} {
		cfg := oneMaxConfig()
		cfg.Seed = seed
		summary, err := first.Run(ctx, cfg)
		require.NoError(t, err)
		runs = append(runs, summary)
	}
	folder := filepath.Join(root, "onemax", "2+2EA")
	assert.Equal(t, filepath.Join(folder, "onemax_10_1"), runs[0].ResultsPath)
	assert.Equal(t, filepath.Join(folder, "onemax_10_1."+runs[1].RunID), runs[1].ResultsPath)
	assert.Equal(t, runs[1].ResultsPath+".trace.csv", runs[1].TracePath)
	assert.FileExists(t, runs[1].TracePath)

	second := newTestClient(t, root, Options{})
	for i, seed := range []int64{1, 2} {
		shown, err := second.Show(ctx, ShowRequest{RunID: runs[i].RunID})
		require.NoError(t, err)
		assert.Equal(t, runs[i].RunID, shown.Run.ID)
		assert.Equal(t, seed, shown.Run.Seed)
		assert.Equal(t, runs[i].BestGenome, shown.Run.BestGenome)
		require.NotEmpty(t, shown.Trace)
		assert.Equal(t, runs[i].Evaluations, shown.Trace[len(shown.Trace)-1].Evaluations)
	}
}

func TestClientShowRejectsResultsFileOfAnotherRun(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()

	first := newTestClient(t, root, Options{})
	summary, err := first.Run(ctx, oneMaxConfig())
	require.NoError(t, err)
	require.NoError(t, stats.AppendRunIndex(root, stats.RunIndexEntry{
		RunID:        "stale",
		Problem:      "onemax",
		ResultsPath:  summary.ResultsPath,
		CreatedAtUTC: "2000-01-01T00:00:00.000000000Z",
	}))

	second := newTestClient(t, root, Options{})
	_, err = second.Show(ctx, ShowRequest{RunID: "stale"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), summary.RunID)
}

func TestClientShowRequestValidation(t *testing.T) {
	client := newTestClient(t, t.TempDir(), Options{})
	ctx := context.Background()

	_, err := client.Show(ctx, ShowRequest{})
	assert.Error(t, err)
	_, err = client.Show(ctx, ShowRequest{RunID: "x", Latest: true})
	assert.Error(t, err)
	_, err = client.Show(ctx, ShowRequest{Latest: true})
	assert.ErrorIs(t, err, ErrNoRuns)
}

func TestClientFeedsMetrics(t *testing.T) {
	recorder := metrics.NewRecorder()
	client := newTestClient(t, t.TempDir(), Options{Metrics: recorder})

	cfg := oneMaxConfig()
	cfg.Algorithm = "lambdalambda"
	cfg.Mu, cfg.Lambda = 0, 0
	_, err := client.Run(context.Background(), cfg)
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(recorder.Registry(), "theoryea_runs_total", "theoryea_lambda")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	path := filepath.Join(t.TempDir(), "theoryea.prom")
	require.NoError(t, recorder.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `theoryea_runs_total{algorithm="lambdalambda",problem="onemax"} 1`)
}
