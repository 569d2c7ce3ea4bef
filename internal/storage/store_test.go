package storage

import (
	"context"
	"testing"

	"theoryea/internal/model"
)

func sampleRun(id, created string, best float64) model.RunRecord {
	return model.RunRecord{
		VersionedRecord: Versioned(),
		ID:              id,
		CreatedAtUTC:    created,
		Problem:         "onemax",
		ProblemFile:     "onemax_20_1",
		Algorithm:       "plus",
		Mu:              5,
		Lambda:          5,
		Selection:       "uniform",
		Seed:            100,
		MaxEvals:        1000,
		BestGenome:      "11111111111111111111",
		BestFitness:     best,
		Evaluations:     1000,
		Generations:     199,
	}
}

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := store.GetRun(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected missing run, ok=%t err=%v", ok, err)
	}

	later := sampleRun("run-b", "2026-01-02T00:00:00Z", 18)
	earlier := sampleRun("run-a", "2026-01-01T00:00:00Z", 20)
	for _, run := range []model.RunRecord{later, earlier} {
		if err := store.SaveRun(ctx, run); err != nil {
			t.Fatalf("save run %s: %v", run.ID, err)
		}
	}

	got, ok, err := store.GetRun(ctx, "run-a")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted run")
	}
	if got.BestFitness != 20 || got.BestGenome != earlier.BestGenome || got.Seed != 100 {
		t.Fatalf("unexpected run: %+v", got)
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "run-a" || runs[1].ID != "run-b" {
		t.Fatalf("expected runs ordered by creation time, got %+v", runs)
	}

	updated := later
	updated.BestFitness = 19
	if err := store.SaveRun(ctx, updated); err != nil {
		t.Fatalf("overwrite run: %v", err)
	}
	got, _, err = store.GetRun(ctx, "run-b")
	if err != nil || got.BestFitness != 19 {
		t.Fatalf("expected overwritten run, got %+v err=%v", got, err)
	}

	stale := sampleRun("run-c", "2026-01-03T00:00:00Z", 1)
	stale.SchemaVersion = CurrentSchemaVersion + 1
	if err := store.SaveRun(ctx, stale); err == nil {
		t.Fatal("expected version mismatch on save")
	}

	trace := []model.TracePoint{
		{Generation: 0, Evaluations: 5, BestFitness: 11},
		{Generation: 1, Evaluations: 10, BestFitness: 13, Lambda: 1.5},
	}
	if err := store.SaveTrace(ctx, "run-a", trace); err != nil {
		t.Fatalf("save trace: %v", err)
	}
	loaded, ok, err := store.GetTrace(ctx, "run-a")
	if err != nil {
		t.Fatalf("get trace: %v", err)
	}
	if !ok || len(loaded) != 2 || loaded[1].Lambda != 1.5 || loaded[1].Evaluations != 10 {
		t.Fatalf("unexpected trace: ok=%t %+v", ok, loaded)
	}
	if _, ok, err := store.GetTrace(ctx, "run-b"); err != nil || ok {
		t.Fatalf("expected missing trace, ok=%t err=%v", ok, err)
	}
}
