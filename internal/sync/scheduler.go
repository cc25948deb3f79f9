package sync

import (
	"context"
	"time"

	"wildlings/internal/logging"
)

const (
	DefaultSyncInterval = 5 * time.Minute
	DefaultSyncDebounce = 1500 * time.Millisecond
)

// Syncer is the engine surface the scheduler drives.
type Syncer interface {
	SyncOnce(ctx context.Context) (Outcome, error)
}

// Scheduler triggers sync cycles on a fixed interval and, debounced,
// after local mutations. Failed cycles are not retried here; the engine's
// persisted backoff gates the next attempt.
type Scheduler struct {
	syncer   Syncer
	log      logging.Logger
	interval time.Duration
	debounce time.Duration
	changed  chan struct{}
}

func NewScheduler(syncer Syncer, log logging.Logger, interval, debounce time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	if debounce <= 0 {
		debounce = DefaultSyncDebounce
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Scheduler{
		syncer:   syncer,
		log:      log,
		interval: interval,
		debounce: debounce,
		changed:  make(chan struct{}, 1),
	}
}

// NotifyChange requests a sync soon after a local mutation. Bursts of
// notifications collapse into one cycle. Never blocks.
func (s *Scheduler) NotifyChange() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is canceled, firing cycles on the interval tick and
// one debounce period after the latest change notification.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	debounce := time.NewTimer(s.debounce)
	if !debounce.Stop() {
		<-debounce.C
	}
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.changed:
			debounce.Reset(s.debounce)
		case <-debounce.C:
			s.runOnce(ctx)
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	outcome, err := s.syncer.SyncOnce(ctx)
	if err != nil {
		s.log.Warn(ctx, "scheduled sync failed", "error", err)
		return
	}
	if outcome.Skipped {
		return
	}
	s.log.Debug(ctx, "scheduled sync done", "pushed", outcome.Pushed, "pulled", outcome.Pulled)
}
