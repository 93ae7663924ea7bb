package features

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yourusername/sharpeye/internal/logger"
	"github.com/yourusername/sharpeye/internal/metrics"
	"github.com/yourusername/sharpeye/internal/repository"
)

// Refresher rebuilds the snapshot from the game log repository and swaps it
// into the store. A failed refresh leaves the previous snapshot live.
type Refresher struct {
	repo     repository.GameLogRepository
	store    *Store
	log      *logger.ModelLogger
	lookback time.Duration
	timeout  time.Duration
	now      func() time.Time

	mu sync.Mutex
}

// NewRefresher creates a refresher reading lookbackDays of history
func NewRefresher(repo repository.GameLogRepository, store *Store, log *logger.ModelLogger, lookbackDays int, timeout time.Duration) *Refresher {
	return &Refresher{
		repo:     repo,
		store:    store,
		log:      log,
		lookback: time.Duration(lookbackDays) * 24 * time.Hour,
		timeout:  timeout,
		now:      time.Now,
	}
}

// Refresh loads the logs and publishes a new snapshot
func (r *Refresher) Refresh(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := r.now()
	version := r.store.NextVersion()
	since := day(start.Add(-r.lookback))

	players, err := r.repo.PlayerGameLogs(ctx, since)
	if err != nil {
		return r.fail(version, fmt.Errorf("loading player game logs: %w", err))
	}
	teams, err := r.repo.TeamGameLogs(ctx, since)
	if err != nil {
		return r.fail(version, fmt.Errorf("loading team game logs: %w", err))
	}

	snap := NewSnapshot(version, start, players, teams)
	r.store.Publish(snap)

	metrics.UpdateSnapshot(version, start)
	r.log.LogSnapshotRefresh(version, snap.PlayerCount(), snap.TeamLogCount(), r.now().Sub(start))
	return nil
}

func (r *Refresher) fail(version uint64, err error) error {
	metrics.RecordSnapshotRefreshError()
	r.log.LogSnapshotRefreshError(version, err)
	return err
}
