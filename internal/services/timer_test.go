package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"wildlings/internal/common"
	"wildlings/internal/models"
	"wildlings/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// sequentialIDs makes services produce predictable ids: id-1, id-2, ...
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTimerService(st *store.Store) *timerService {
	return &timerService{store: st, newID: sequentialIDs()}
}

func TestTimerStart_CreatesRunningLogWithOutboxEntry(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	svc := newTimerService(st)

	startAt := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	l, err := svc.Start(ctx, startAt)
	require.NoError(t, err)
	require.True(t, l.Running())

	stored, err := st.Logs.GetByID(ctx, l.ID)
	require.NoError(t, err)
	require.True(t, stored.StartAt.Equal(startAt))
	require.Nil(t, stored.EndAt)

	queue, err := st.Outbox.List(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	require.Equal(t, models.ActionUpsert, queue[0].Action)
	require.Equal(t, l.ID, queue[0].RecordID)

	md, err := st.Metadata.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, l.ID, *md.ActiveLogID)
	require.True(t, md.ActiveStartAt.Equal(startAt))
	require.NotNil(t, md.DeviceID)
}

func TestTimerStart_RefusesSecondTimer(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	svc := newTimerService(st)

	startAt := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	_, err := svc.Start(ctx, startAt)
	require.NoError(t, err)

	_, err = svc.Start(ctx, startAt.Add(time.Minute))
	require.ErrorIs(t, err, common.ErrTimerAlreadyActive)

	// the refused start must leave no trace
	list, err := st.Logs.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	queue, err := st.Outbox.List(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 1)
}

func TestTimerStop_CompletesLogAndClearsActive(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	svc := newTimerService(st)

	startAt := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	started, err := svc.Start(ctx, startAt)
	require.NoError(t, err)

	endAt := startAt.Add(90 * time.Minute)
	stopped, err := svc.Stop(ctx, endAt)
	require.NoError(t, err)
	require.Equal(t, started.ID, stopped.ID)
	require.NotNil(t, stopped.EndAt)
	require.True(t, stopped.EndAt.Equal(endAt))

	md, err := st.Metadata.Get(ctx)
	require.NoError(t, err)
	require.Nil(t, md.ActiveLogID)
	require.Nil(t, md.ActiveStartAt)

	// start and stop each enqueue one op for the same record
	queue, err := st.Outbox.List(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 2)
	require.Equal(t, started.ID, queue[0].RecordID)
	require.Equal(t, started.ID, queue[1].RecordID)
}

func TestTimerStop_NoActiveTimer(t *testing.T) {
	svc := newTimerService(openStore(t))

	_, err := svc.Stop(context.Background(), time.Now())
	require.ErrorIs(t, err, common.ErrNoActiveTimer)
}

func TestTimerStop_ActiveLogRowMissing(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	svc := newTimerService(st)

	// metadata points at a log that does not exist
	require.NoError(t, st.Metadata.SetActiveTimer(ctx, "ghost", time.Now()))

	_, err := svc.Stop(ctx, time.Now())
	require.ErrorIs(t, err, common.ErrActiveLogMissing)
}

func TestTimerAdjustStart_MovesLogAndMetadataTogether(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	svc := newTimerService(st)

	startAt := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	started, err := svc.Start(ctx, startAt)
	require.NoError(t, err)

	moved := startAt.Add(-25 * time.Minute)
	adjustedAt := startAt.Add(5 * time.Minute)
	adjusted, err := svc.AdjustStart(ctx, moved, adjustedAt)
	require.NoError(t, err)
	require.True(t, adjusted.StartAt.Equal(moved))
	require.True(t, adjusted.Running())

	stored, err := st.Logs.GetByID(ctx, started.ID)
	require.NoError(t, err)
	require.True(t, stored.StartAt.Equal(moved))

	md, err := st.Metadata.Get(ctx)
	require.NoError(t, err)
	require.True(t, md.ActiveStartAt.Equal(moved), "log and metadata must agree on the start")

	queue, err := st.Outbox.List(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 2)
}

func TestTimerAdjustStart_NoActiveTimer(t *testing.T) {
	svc := newTimerService(openStore(t))

	_, err := svc.AdjustStart(context.Background(), time.Now(), time.Now())
	require.ErrorIs(t, err, common.ErrNoActiveTimer)
}
