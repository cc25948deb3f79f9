package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"wildlings/internal/common"
	"wildlings/internal/models"
	"wildlings/internal/store"
)

// LogService covers completed entries: manual creation, edits, deletion,
// plus the editing mark and the yearly goal. The active log is off limits
// here; it belongs to TimerService.
type LogService interface {
	// CreateManual records a completed interval. Fails with
	// common.ErrEndTimeRequired when endAt is nil.
	CreateManual(ctx context.Context, startAt time.Time, endAt *time.Time, note *string, updatedAtLocal time.Time) (*models.Log, error)

	// Update rewrites a log's fields. Fails with
	// common.ErrCannotEditActiveLog on the active log.
	Update(ctx context.Context, logID string, startAt time.Time, endAt *time.Time, note *string, updatedAtLocal time.Time) (*models.Log, error)

	// Delete tombstones a log. Fails with common.ErrCannotDeleteActiveLog
	// on the active log.
	Delete(ctx context.Context, logID string, deletedAtLocal time.Time) error

	// ListVisible returns all non-tombstoned logs.
	ListVisible(ctx context.Context) ([]models.Log, error)

	// BeginEditing marks a log as open in an editor so pull merge leaves
	// it alone; EndEditing clears the mark.
	BeginEditing(ctx context.Context, logID string) error
	EndEditing(ctx context.Context) error

	// SetYearlyGoal stores the single tracked goal.
	SetYearlyGoal(ctx context.Context, year int, hours float64) error
}

type logService struct {
	store *store.Store
	newID func() string
}

func NewLogService(st *store.Store) LogService {
	return &logService{store: st, newID: uuid.NewString}
}

func (s *logService) CreateManual(ctx context.Context, startAt time.Time, endAt *time.Time, note *string, updatedAtLocal time.Time) (*models.Log, error) {
	if endAt == nil {
		return nil, common.ErrEndTimeRequired
	}

	var created *models.Log
	err := s.store.WithTx(ctx, func(ctx context.Context, r *store.Repositories) error {
		deviceID, err := store.EnsureDeviceID(ctx, r, s.newID)
		if err != nil {
			return err
		}

		l := &models.Log{
			ID:             s.newID(),
			StartAt:        startAt,
			EndAt:          endAt,
			Note:           note,
			UpdatedAtLocal: updatedAtLocal,
		}
		if err := r.Logs.Put(ctx, l); err != nil {
			return err
		}
		if err := enqueueUpsert(ctx, r, deviceID, l, s.newID); err != nil {
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

func (s *logService) Update(ctx context.Context, logID string, startAt time.Time, endAt *time.Time, note *string, updatedAtLocal time.Time) (*models.Log, error) {
	var updated *models.Log

	err := s.store.WithTx(ctx, func(ctx context.Context, r *store.Repositories) error {
		md, err := r.Metadata.Get(ctx)
		if err != nil {
			return err
		}
		if md.ActiveLogID != nil && *md.ActiveLogID == logID {
			return common.ErrCannotEditActiveLog
		}

		l, err := r.Logs.GetByID(ctx, logID)
		if err != nil {
			return err
		}

		deviceID, err := store.EnsureDeviceID(ctx, r, s.newID)
		if err != nil {
			return err
		}

		l.StartAt = startAt
		l.EndAt = endAt
		l.Note = note
		l.UpdatedAtLocal = updatedAtLocal
		if err := r.Logs.Put(ctx, l); err != nil {
			return err
		}
		if err := enqueueUpsert(ctx, r, deviceID, l, s.newID); err != nil {
			return err
		}

		updated = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *logService) Delete(ctx context.Context, logID string, deletedAtLocal time.Time) error {
	return s.store.WithTx(ctx, func(ctx context.Context, r *store.Repositories) error {
		md, err := r.Metadata.Get(ctx)
		if err != nil {
			return err
		}
		if md.ActiveLogID != nil && *md.ActiveLogID == logID {
			return common.ErrCannotDeleteActiveLog
		}

		l, err := r.Logs.GetByID(ctx, logID)
		if err != nil {
			return err
		}

		deviceID, err := store.EnsureDeviceID(ctx, r, s.newID)
		if err != nil {
			return err
		}

		l.DeletedAtLocal = &deletedAtLocal
		l.UpdatedAtLocal = deletedAtLocal
		if err := r.Logs.Put(ctx, l); err != nil {
			return err
		}
		return enqueueDelete(ctx, r, deviceID, logID, deletedAtLocal, s.newID)
	})
}

func (s *logService) ListVisible(ctx context.Context) ([]models.Log, error) {
	all, err := s.store.Logs.List(ctx)
	if err != nil {
		return nil, err
	}

	visible := make([]models.Log, 0, len(all))
	for _, l := range all {
		if !l.Tombstoned() {
			visible = append(visible, l)
		}
	}
	return visible, nil
}

func (s *logService) BeginEditing(ctx context.Context, logID string) error {
	if _, err := s.store.Logs.GetByID(ctx, logID); err != nil {
		return err
	}
	return s.store.Metadata.SetEditingLog(ctx, &logID)
}

func (s *logService) EndEditing(ctx context.Context) error {
	return s.store.Metadata.SetEditingLog(ctx, nil)
}

func (s *logService) SetYearlyGoal(ctx context.Context, year int, hours float64) error {
	return s.store.Metadata.SetYearlyGoal(ctx, year, hours)
}
