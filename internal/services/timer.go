package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"wildlings/internal/common"
	"wildlings/internal/models"
	"wildlings/internal/store"
)

// TimerService runs the active-timer lifecycle. The active log may only be
// mutated through these operations; LogService refuses it.
type TimerService interface {
	// Start creates a running log and points the metadata at it.
	// Fails with common.ErrTimerAlreadyActive when a timer is running.
	Start(ctx context.Context, startAt time.Time) (*models.Log, error)

	// Stop completes the running log and clears the active fields.
	// Fails with common.ErrNoActiveTimer or common.ErrActiveLogMissing.
	Stop(ctx context.Context, endAt time.Time) (*models.Log, error)

	// AdjustStart rewrites the running log's start_at and the metadata's
	// active_start_at together; the two must never diverge.
	AdjustStart(ctx context.Context, startAt, updatedAtLocal time.Time) (*models.Log, error)
}

type timerService struct {
	store *store.Store
	newID func() string
}

func NewTimerService(st *store.Store) TimerService {
	return &timerService{store: st, newID: uuid.NewString}
}

func (s *timerService) Start(ctx context.Context, startAt time.Time) (*models.Log, error) {
	var created *models.Log

	err := s.store.WithTx(ctx, func(ctx context.Context, r *store.Repositories) error {
		md, err := r.Metadata.Get(ctx)
		if err != nil {
			return err
		}
		if md.ActiveLogID != nil {
			return common.ErrTimerAlreadyActive
		}

		deviceID, err := store.EnsureDeviceID(ctx, r, s.newID)
		if err != nil {
			return err
		}

		l := &models.Log{
			ID:             s.newID(),
			StartAt:        startAt,
			UpdatedAtLocal: startAt,
		}
		if err := r.Logs.Put(ctx, l); err != nil {
			return err
		}
		if err := enqueueUpsert(ctx, r, deviceID, l, s.newID); err != nil {
			return err
		}
		if err := r.Metadata.SetActiveTimer(ctx, l.ID, startAt); err != nil {
			return err
		}

		created = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *timerService) Stop(ctx context.Context, endAt time.Time) (*models.Log, error) {
	var stopped *models.Log

	err := s.store.WithTx(ctx, func(ctx context.Context, r *store.Repositories) error {
		md, err := r.Metadata.Get(ctx)
		if err != nil {
			return err
		}
		if md.ActiveLogID == nil {
			return common.ErrNoActiveTimer
		}

		l, err := r.Logs.GetByID(ctx, *md.ActiveLogID)
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrActiveLogMissing
		}
		if err != nil {
			return err
		}

		deviceID, err := store.EnsureDeviceID(ctx, r, s.newID)
		if err != nil {
			return err
		}

		l.EndAt = &endAt
		l.UpdatedAtLocal = endAt
		if err := r.Logs.Put(ctx, l); err != nil {
			return err
		}
		if err := enqueueUpsert(ctx, r, deviceID, l, s.newID); err != nil {
			return err
		}
		if err := r.Metadata.ClearActiveTimer(ctx); err != nil {
			return err
		}

		stopped = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stopped, nil
}

func (s *timerService) AdjustStart(ctx context.Context, startAt, updatedAtLocal time.Time) (*models.Log, error) {
	var adjusted *models.Log

	err := s.store.WithTx(ctx, func(ctx context.Context, r *store.Repositories) error {
		md, err := r.Metadata.Get(ctx)
		if err != nil {
			return err
		}
		if md.ActiveLogID == nil {
			return common.ErrNoActiveTimer
		}

		l, err := r.Logs.GetByID(ctx, *md.ActiveLogID)
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrActiveLogMissing
		}
		if err != nil {
			return err
		}

		deviceID, err := store.EnsureDeviceID(ctx, r, s.newID)
		if err != nil {
			return err
		}

		l.StartAt = startAt
		l.UpdatedAtLocal = updatedAtLocal
		if err := r.Logs.Put(ctx, l); err != nil {
			return err
		}
		if err := enqueueUpsert(ctx, r, deviceID, l, s.newID); err != nil {
			return err
		}
		if err := r.Metadata.SetActiveStartAt(ctx, startAt); err != nil {
			return err
		}

		adjusted = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return adjusted, nil
}
