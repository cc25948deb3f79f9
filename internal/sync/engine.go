package sync

import (
	"context"
	"errors"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"wildlings/internal/common"
	"wildlings/internal/logging"
	"wildlings/internal/models"
	"wildlings/internal/store"
)

// Outcome summarizes one sync cycle. Skipped cycles perform no network
// calls and no store writes.
type Outcome struct {
	Skipped bool
	Pushed  int
	Pulled  int
}

// Options tunes the engine; zero fields fall back to defaults. Now, Random
// and NewID exist for deterministic tests.
type Options struct {
	Now         func() time.Time
	Random      func() float64
	NewID       func() string
	BatchSize   int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	JitterRatio float64
}

// Engine drains the outbox to the server, merges server changes back and
// schedules retries on failure. At most one cycle runs at a time; a
// concurrent SyncOnce is a silent no-op.
type Engine struct {
	store       *store.Store
	api         API
	log         logging.Logger
	now         func() time.Time
	random      func() float64
	newID       func() string
	batchSize   int
	baseBackoff time.Duration
	maxBackoff  time.Duration
	jitterRatio float64
	inFlight    atomic.Bool
}

func NewEngine(st *store.Store, api API, log logging.Logger, opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Random == nil {
		opts.Random = rand.Float64
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.BaseBackoff <= 0 {
		opts.BaseBackoff = DefaultBaseBackoff
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = DefaultMaxBackoff
	}
	if opts.JitterRatio <= 0 {
		opts.JitterRatio = DefaultJitterRatio
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Engine{
		store:       st,
		api:         api,
		log:         log,
		now:         opts.Now,
		random:      opts.Random,
		newID:       opts.NewID,
		batchSize:   opts.BatchSize,
		baseBackoff: opts.BaseBackoff,
		maxBackoff:  opts.MaxBackoff,
		jitterRatio: opts.JitterRatio,
	}
}

// cycle carries the mutable state of one SyncOnce run between states.
type cycle struct {
	startedAt  time.Time
	pushed     int
	pulled     int
	serverTime *time.Time
	err        error
}

// SyncOnce runs one push+pull cycle. Transport and protocol errors are
// recorded in the backoff schedule and re-raised; invariant and store
// errors propagate untouched.
func (e *Engine) SyncOnce(ctx context.Context) (Outcome, error) {
	if !e.inFlight.CompareAndSwap(false, true) {
		return Outcome{Skipped: true}, nil
	}
	defer e.inFlight.Store(false)

	c := cycle{startedAt: e.now()}
	state := StateDueCheck

	for {
		switch state {
		case StateDueCheck:
			due, err := e.isDue(ctx, c.startedAt)
			if err != nil {
				return Outcome{}, err
			}
			if !due {
				e.log.Debug(ctx, "sync skipped, backoff in effect")
				return Outcome{Skipped: true}, nil
			}
			state = StatePushing

		case StatePushing:
			resp, pushed, err := e.push(ctx)
			if err != nil {
				c.err = err
				state = StateBackoff
				continue
			}
			c.pushed = pushed
			if resp != nil {
				t := resp.ServerTime
				c.serverTime = &t
			}
			state = StatePulling

		case StatePulling:
			resp, err := e.pull(ctx)
			if err != nil {
				c.err = err
				state = StateBackoff
				continue
			}
			c.pulled = len(resp.Changes.Logs)
			t := resp.ServerTime
			c.serverTime = &t
			state = StateSettled

		case StateSettled:
			lastSyncAt := c.startedAt
			if c.serverTime != nil {
				lastSyncAt = *c.serverTime
			}
			if err := e.store.Metadata.ClearSyncBackoff(ctx, lastSyncAt); err != nil {
				return Outcome{}, err
			}
			e.log.Info(ctx, "sync settled", "pushed", c.pushed, "pulled", c.pulled)
			return Outcome{Pushed: c.pushed, Pulled: c.pulled}, nil

		case StateBackoff:
			if err := e.scheduleRetry(ctx, c.startedAt); err != nil {
				e.log.Error(ctx, "failed to persist backoff", "error", err)
			}
			e.log.Warn(ctx, "sync failed", "error", c.err)
			return Outcome{Pushed: c.pushed, Pulled: c.pulled}, c.err
		}
	}
}

func (e *Engine) isDue(ctx context.Context, now time.Time) (bool, error) {
	md, err := e.store.Metadata.Get(ctx)
	if err != nil {
		return false, err
	}
	if md.NextSyncAt != nil && md.NextSyncAt.After(now) {
		return false, nil
	}
	return true, nil
}

// push sends up to batchSize of the oldest outbox entries. A non-2xx
// status or network failure fails the whole batch: every entry's attempts
// and last_error are updated, and the error is returned.
func (e *Engine) push(ctx context.Context) (*PushResponse, int, error) {
	batch, err := e.store.Outbox.OldestBatch(ctx, e.batchSize)
	if err != nil {
		return nil, 0, err
	}
	if len(batch) == 0 {
		return nil, 0, nil
	}

	deviceID, err := store.EnsureDeviceID(ctx, e.store.Repositories, e.newID)
	if err != nil {
		return nil, 0, err
	}

	ops := make([]PushOp, len(batch))
	opIDs := make([]string, len(batch))
	for i, entry := range batch {
		ops[i] = PushOp{
			OpID:     entry.OpID,
			Entity:   entry.Entity,
			Action:   string(entry.Action),
			RecordID: entry.RecordID,
			Payload:  entry.Payload,
		}
		opIDs[i] = entry.OpID
	}

	resp, err := e.api.Push(ctx, &PushRequest{
		DeviceID:   deviceID,
		ClientTime: e.now(),
		Ops:        ops,
	})
	if err != nil {
		if rerr := e.store.Outbox.RecordFailure(ctx, opIDs, err.Error()); rerr != nil {
			e.log.Error(ctx, "failed to record push failure", "error", rerr)
		}
		return nil, 0, err
	}

	if err := e.applyPushResponse(ctx, resp, opIDs); err != nil {
		return nil, 0, err
	}
	return resp, len(batch), nil
}

// applyPushResponse settles a pushed batch in one transaction: acked
// entries leave the queue, rejected entries keep the server's message,
// entries in neither list are marked NO_ACK for a later retry, and the
// server's authoritative instants land on the log rows.
func (e *Engine) applyPushResponse(ctx context.Context, resp *PushResponse, opIDs []string) error {
	acked := make(map[string]struct{}, len(resp.AckOpIDs))
	for _, id := range resp.AckOpIDs {
		acked[id] = struct{}{}
	}
	rejected := make(map[string]string, len(resp.Rejected))
	for _, r := range resp.Rejected {
		rejected[r.OpID] = r.Message
	}

	var unacked []string
	for _, id := range opIDs {
		if _, ok := acked[id]; ok {
			continue
		}
		if _, ok := rejected[id]; ok {
			continue
		}
		unacked = append(unacked, id)
	}

	return e.store.WithTx(ctx, func(ctx context.Context, r *store.Repositories) error {
		if err := r.Outbox.DeleteByOpIDs(ctx, resp.AckOpIDs); err != nil {
			return err
		}
		if err := r.Outbox.RecordFailure(ctx, unacked, "NO_ACK"); err != nil {
			return err
		}
		for opID, message := range rejected {
			if err := r.Outbox.RecordFailure(ctx, []string{opID}, message); err != nil {
				return err
			}
		}
		for _, applied := range resp.Applied.Logs {
			if err := r.Logs.SetServerStamp(ctx, applied.ID, applied.UpdatedAtServer, applied.DeletedAtServer); err != nil {
				return err
			}
		}
		return nil
	})
}

// pull fetches server changes since the stored cursor and merges them,
// skipping records with a pending outbox entry or an open editor. The
// cursor advances unconditionally.
func (e *Engine) pull(ctx context.Context) (*PullResponse, error) {
	md, err := e.store.Metadata.Get(ctx)
	if err != nil {
		return nil, err
	}
	cursor := ""
	if md.LastSyncCursor != nil {
		cursor = *md.LastSyncCursor
	}

	resp, err := e.api.Pull(ctx, cursor)
	if err != nil {
		return nil, err
	}

	err = e.store.WithTx(ctx, func(ctx context.Context, r *store.Repositories) error {
		for i := range resp.Changes.Logs {
			if err := mergeServerLog(ctx, r, &resp.Changes.Logs[i], md.EditingLogID); err != nil {
				return err
			}
		}
		return r.Metadata.SetCursor(ctx, resp.NextCursor)
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func mergeServerLog(ctx context.Context, r *store.Repositories, pl *PullLog, editingLogID *string) error {
	// A local change still in flight wins until it is pushed, whatever
	// fields it touched.
	pending, err := r.Outbox.CountForRecord(ctx, pl.ID)
	if err != nil {
		return err
	}
	if pending > 0 {
		return nil
	}
	if editingLogID != nil && *editingLogID == pl.ID {
		return nil
	}

	err = r.Logs.ApplyServerUpsert(ctx, pl.ID, pl.StartAt, pl.EndAt, pl.Note, pl.UpdatedAtServer, pl.DeletedAtServer)
	if errors.Is(err, common.ErrNotFound) {
		updatedAtServer := pl.UpdatedAtServer
		return r.Logs.Put(ctx, &models.Log{
			ID:              pl.ID,
			StartAt:         pl.StartAt,
			EndAt:           pl.EndAt,
			Note:            pl.Note,
			UpdatedAtLocal:  pl.UpdatedAtServer,
			UpdatedAtServer: &updatedAtServer,
			DeletedAtServer: pl.DeletedAtServer,
		})
	}
	return err
}

func (e *Engine) scheduleRetry(ctx context.Context, now time.Time) error {
	md, err := e.store.Metadata.Get(ctx)
	if err != nil {
		return err
	}

	var previous time.Duration
	if md.SyncBackoffMs != nil {
		previous = time.Duration(*md.SyncBackoffMs) * time.Millisecond
	}

	backoff := nextBackoff(previous, e.baseBackoff, e.maxBackoff)
	jitter := jitterFor(backoff, e.jitterRatio, e.random)
	return e.store.Metadata.RecordSyncFailure(ctx, backoff.Milliseconds(), now.Add(backoff+jitter))
}
