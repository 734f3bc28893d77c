package catalogRepo

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Store holds the active catalog snapshot behind an atomic pointer so that
// any number of concurrent estimator calls read it lock-free. A background
// refresher swaps in a fresh snapshot on an interval; a load failure keeps
// the previous snapshot in place.
type Store struct {
	repo   Repository
	logger *zap.Logger
	snap   atomic.Pointer[Snapshot]
}

// NewStore loads the initial snapshot and returns a ready store.
func NewStore(ctx context.Context, repo Repository, logger *zap.Logger) (*Store, error) {
	s := &Store{repo: repo, logger: logger}
	snap, err := repo.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	s.snap.Store(snap)
	return s, nil
}

// Snapshot returns the current immutable snapshot.
func (s *Store) Snapshot() *Snapshot {
	return s.snap.Load()
}

// StartRefresher refreshes the snapshot every interval until ctx is done.
func (s *Store) StartRefresher(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				snap, err := s.repo.LoadSnapshot(ctx)
				if err != nil {
					s.logger.Warn("catalog refresh failed, keeping previous snapshot", zap.Error(err))
					continue
				}
				s.snap.Store(snap)
				s.logger.Debug("catalog snapshot refreshed", zap.Int64("version", snap.Version))
			}
		}
	}()
}
