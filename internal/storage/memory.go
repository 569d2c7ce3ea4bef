package storage

import (
	"context"
	"errors"
	"sync"

	"theoryea/internal/model"
)

var errNotInitialized = errors.New("store is not initialized")

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]model.RunRecord
	traces      map[string][]model.TracePoint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]model.RunRecord)
	s.traces = make(map[string][]model.TracePoint)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return err
	}
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (model.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	return run, ok, nil
}

func (s *MemoryStore) ListRuns(_ context.Context) ([]model.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]model.RunRecord, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	sortRuns(runs)
	return runs, nil
}

func (s *MemoryStore) SaveTrace(_ context.Context, runID string, trace []model.TracePoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.traces[runID] = append([]model.TracePoint(nil), trace...)
	return nil
}

func (s *MemoryStore) GetTrace(_ context.Context, runID string) ([]model.TracePoint, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trace, ok := s.traces[runID]
	if !ok {
		return nil, false, nil
	}
	return append([]model.TracePoint(nil), trace...), true, nil
}
