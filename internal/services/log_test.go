package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"wildlings/internal/common"
	"wildlings/internal/models"
	"wildlings/internal/store"
)

func newLogService(st *store.Store) *logService {
	return &logService{store: st, newID: sequentialIDs()}
}

func TestCreateManual_RequiresEnd(t *testing.T) {
	st := openStore(t)
	svc := newLogService(st)

	_, err := svc.CreateManual(context.Background(), time.Now(), nil, nil, time.Now())
	require.ErrorIs(t, err, common.ErrEndTimeRequired)

	list, err := st.Logs.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestCreateManual_WritesLogAndOutboxTogether(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	svc := newLogService(st)

	startAt := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	endAt := startAt.Add(time.Hour)
	note := "playground"
	createdAt := endAt.Add(time.Minute)

	l, err := svc.CreateManual(ctx, startAt, &endAt, &note, createdAt)
	require.NoError(t, err)
	require.False(t, l.Running())

	stored, err := st.Logs.GetByID(ctx, l.ID)
	require.NoError(t, err)
	require.Equal(t, &note, stored.Note)
	require.True(t, stored.UpdatedAtLocal.Equal(createdAt))

	queue, err := st.Outbox.List(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	require.Equal(t, models.ActionUpsert, queue[0].Action)
	require.Equal(t, l.ID, queue[0].RecordID)
}

func TestUpdate_RefusesActiveLog(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	timers := newTimerService(st)
	svc := newLogService(st)

	startAt := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	active, err := timers.Start(ctx, startAt)
	require.NoError(t, err)

	_, err = svc.Update(ctx, active.ID, startAt, nil, nil, time.Now())
	require.ErrorIs(t, err, common.ErrCannotEditActiveLog)
}

func TestUpdate_RewritesFieldsAndEnqueues(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	svc := newLogService(st)

	startAt := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	endAt := startAt.Add(time.Hour)
	l, err := svc.CreateManual(ctx, startAt, &endAt, nil, endAt)
	require.NoError(t, err)

	newStart := startAt.Add(-15 * time.Minute)
	newEnd := endAt.Add(15 * time.Minute)
	note := "longer than remembered"
	editedAt := endAt.Add(time.Hour)

	updated, err := svc.Update(ctx, l.ID, newStart, &newEnd, &note, editedAt)
	require.NoError(t, err)
	require.True(t, updated.StartAt.Equal(newStart))
	require.Equal(t, &note, updated.Note)

	stored, err := st.Logs.GetByID(ctx, l.ID)
	require.NoError(t, err)
	require.True(t, stored.EndAt.Equal(newEnd))
	require.True(t, stored.UpdatedAtLocal.Equal(editedAt))

	queue, err := st.Outbox.List(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 2, "create and update each enqueue one op")
}

func TestUpdate_MissingLog(t *testing.T) {
	svc := newLogService(openStore(t))

	_, err := svc.Update(context.Background(), "missing", time.Now(), nil, nil, time.Now())
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestDelete_RefusesActiveLog(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	timers := newTimerService(st)
	svc := newLogService(st)

	active, err := timers.Start(ctx, time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	err = svc.Delete(ctx, active.ID, time.Now())
	require.ErrorIs(t, err, common.ErrCannotDeleteActiveLog)
}

func TestDelete_TombstonesAndHidesFromList(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	svc := newLogService(st)

	startAt := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	endAt := startAt.Add(time.Hour)
	l, err := svc.CreateManual(ctx, startAt, &endAt, nil, endAt)
	require.NoError(t, err)

	deletedAt := endAt.Add(time.Hour)
	require.NoError(t, svc.Delete(ctx, l.ID, deletedAt))

	// the row survives as a tombstone
	stored, err := st.Logs.GetByID(ctx, l.ID)
	require.NoError(t, err)
	require.True(t, stored.Tombstoned())
	require.True(t, stored.DeletedAtLocal.Equal(deletedAt))

	visible, err := svc.ListVisible(ctx)
	require.NoError(t, err)
	require.Empty(t, visible)

	queue, err := st.Outbox.List(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 2)
	require.Equal(t, models.ActionDelete, queue[1].Action)
	require.Equal(t, l.ID, queue[1].RecordID)
}

func TestListVisible_SkipsTombstonesOnly(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	svc := newLogService(st)

	startAt := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	endAt := startAt.Add(time.Hour)

	kept, err := svc.CreateManual(ctx, startAt, &endAt, nil, endAt)
	require.NoError(t, err)
	gone, err := svc.CreateManual(ctx, startAt.Add(2*time.Hour), &endAt, nil, endAt)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, gone.ID, endAt.Add(time.Hour)))

	visible, err := svc.ListVisible(ctx)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	require.Equal(t, kept.ID, visible[0].ID)
}

func TestEditingMark_SetAndClear(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	svc := newLogService(st)

	startAt := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	endAt := startAt.Add(time.Hour)
	l, err := svc.CreateManual(ctx, startAt, &endAt, nil, endAt)
	require.NoError(t, err)

	require.NoError(t, svc.BeginEditing(ctx, l.ID))
	md, err := st.Metadata.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, l.ID, *md.EditingLogID)

	require.NoError(t, svc.EndEditing(ctx))
	md, err = st.Metadata.Get(ctx)
	require.NoError(t, err)
	require.Nil(t, md.EditingLogID)
}

func TestBeginEditing_MissingLog(t *testing.T) {
	svc := newLogService(openStore(t))

	err := svc.BeginEditing(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestSetYearlyGoal_Persists(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	svc := newLogService(st)

	require.NoError(t, svc.SetYearlyGoal(ctx, 2026, 1000))

	md, err := st.Metadata.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, 2026, *md.YearlyGoalYear)
	require.Equal(t, 1000.0, *md.YearlyGoalHours)
}
