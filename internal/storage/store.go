package storage

import (
	"context"

	"theoryea/internal/model"
)

// Store persists finished runs and their convergence traces.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
	SaveTrace(ctx context.Context, runID string, trace []model.TracePoint) error
	GetTrace(ctx context.Context, runID string) ([]model.TracePoint, bool, error)
}
