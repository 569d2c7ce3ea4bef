package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"theoryea/internal/model"
)

const (
	runKeyPrefix   = "run/"
	traceKeyPrefix = "trace/"
)

type BadgerConfig struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path     string
	InMemory bool
	Logger   *slog.Logger
}

// BadgerStore keeps runs and traces as JSON values in a badger key space.
type BadgerStore struct {
	cfg BadgerConfig

	mu sync.RWMutex
	db *badger.DB
}

func NewBadgerStore(cfg BadgerConfig) *BadgerStore {
	return &BadgerStore{cfg: cfg}
}

type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (s *BadgerStore) Init(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	var opts badger.Options
	if s.cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if s.cfg.Path == "" {
			return errors.New("badger path is required for a persistent store")
		}
		if err := os.MkdirAll(s.cfg.Path, 0o750); err != nil {
			return fmt.Errorf("create badger directory %s: %w", s.cfg.Path, err)
		}
		opts = badger.DefaultOptions(s.cfg.Path)
	}
	opts = opts.WithNumVersionsToKeep(1)
	if s.cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: s.cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return fmt.Errorf("open badger database: %w", err)
	}
	s.db = db
	return nil
}

func (s *BadgerStore) SaveRun(ctx context.Context, run model.RunRecord) error {
	if err := checkVersion(run.VersionedRecord); err != nil {
		return err
	}
	payload, err := EncodeRun(run)
	if err != nil {
		return err
	}
	return s.update(ctx, func(txn *badger.Txn) error {
		return txn.Set([]byte(runKeyPrefix+run.ID), payload)
	})
}

func (s *BadgerStore) GetRun(ctx context.Context, id string) (model.RunRecord, bool, error) {
	payload, ok, err := s.get(ctx, runKeyPrefix+id)
	if err != nil || !ok {
		return model.RunRecord{}, false, err
	}
	run, err := DecodeRun(payload)
	if err != nil {
		return model.RunRecord{}, false, fmt.Errorf("decode run %s: %w", id, err)
	}
	return run, true, nil
}

func (s *BadgerStore) ListRuns(ctx context.Context) ([]model.RunRecord, error) {
	db, err := s.getDB(ctx)
	if err != nil {
		return nil, err
	}

	var runs []model.RunRecord
	err = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(runKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			payload, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			run, err := DecodeRun(payload)
			if err != nil {
				return fmt.Errorf("decode run %s: %w", item.Key()[len(runKeyPrefix):], err)
			}
			runs = append(runs, run)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortRuns(runs)
	return runs, nil
}

func (s *BadgerStore) SaveTrace(ctx context.Context, runID string, trace []model.TracePoint) error {
	payload, err := EncodeTrace(trace)
	if err != nil {
		return err
	}
	return s.update(ctx, func(txn *badger.Txn) error {
		return txn.Set([]byte(traceKeyPrefix+runID), payload)
	})
}

func (s *BadgerStore) GetTrace(ctx context.Context, runID string) ([]model.TracePoint, bool, error) {
	payload, ok, err := s.get(ctx, traceKeyPrefix+runID)
	if err != nil || !ok {
		return nil, false, err
	}
	trace, err := DecodeTrace(payload)
	if err != nil {
		return nil, false, fmt.Errorf("decode trace %s: %w", runID, err)
	}
	return trace, true, nil
}

func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *BadgerStore) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	db, err := s.getDB(ctx)
	if err != nil {
		return err
	}
	return db.Update(fn)
}

func (s *BadgerStore) get(ctx context.Context, key string) ([]byte, bool, error) {
	db, err := s.getDB(ctx)
	if err != nil {
		return nil, false, err
	}

	var payload []byte
	err = db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		payload, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

func (s *BadgerStore) getDB(ctx context.Context) (*badger.DB, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errNotInitialized
	}
	return s.db, nil
}
