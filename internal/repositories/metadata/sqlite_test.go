package metadata

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE metadata (
		id TEXT PRIMARY KEY,
		device_id TEXT,
		active_log_id TEXT,
		active_start_at TEXT,
		editing_log_id TEXT,
		last_sync_cursor TEXT,
		last_sync_at TEXT,
		sync_backoff_ms INTEGER,
		next_sync_at TEXT,
		yearly_goal_hours REAL,
		yearly_goal_year INTEGER
	)`)
	require.NoError(t, err)
	return db
}

func TestGet_CreatesEmptyRowOnFirstRead(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))

	md, err := repo.Get(context.Background())
	require.NoError(t, err)
	require.Nil(t, md.DeviceID)
	require.Nil(t, md.ActiveLogID)
	require.Nil(t, md.ActiveStartAt)
	require.Nil(t, md.EditingLogID)
	require.Nil(t, md.LastSyncCursor)
	require.Nil(t, md.LastSyncAt)
	require.Nil(t, md.SyncBackoffMs)
	require.Nil(t, md.NextSyncAt)
	require.Nil(t, md.YearlyGoalHours)
	require.Nil(t, md.YearlyGoalYear)
}

func TestSetDeviceID_Persists(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupDB(t))

	require.NoError(t, repo.SetDeviceID(ctx, "dev-1"))

	md, err := repo.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, md.DeviceID)
	require.Equal(t, "dev-1", *md.DeviceID)
}

func TestActiveTimer_SetAdjustClear(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupDB(t))

	startAt := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SetActiveTimer(ctx, "log-1", startAt))

	md, err := repo.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "log-1", *md.ActiveLogID)
	require.True(t, md.ActiveStartAt.Equal(startAt))

	moved := startAt.Add(-30 * time.Minute)
	require.NoError(t, repo.SetActiveStartAt(ctx, moved))
	md, err = repo.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "log-1", *md.ActiveLogID)
	require.True(t, md.ActiveStartAt.Equal(moved))

	require.NoError(t, repo.ClearActiveTimer(ctx))
	md, err = repo.Get(ctx)
	require.NoError(t, err)
	require.Nil(t, md.ActiveLogID)
	require.Nil(t, md.ActiveStartAt)
}

func TestSetEditingLog_SetAndClear(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupDB(t))

	logID := "log-1"
	require.NoError(t, repo.SetEditingLog(ctx, &logID))
	md, err := repo.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "log-1", *md.EditingLogID)

	require.NoError(t, repo.SetEditingLog(ctx, nil))
	md, err = repo.Get(ctx)
	require.NoError(t, err)
	require.Nil(t, md.EditingLogID)
}

func TestSetCursor(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupDB(t))

	require.NoError(t, repo.SetCursor(ctx, "2026-06-01T10:00:00Z|42"))
	md, err := repo.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "2026-06-01T10:00:00Z|42", *md.LastSyncCursor)
}

func TestSyncBackoff_RecordAndClear(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupDB(t))

	nextAt := time.Date(2026, 6, 1, 10, 0, 2, 0, time.UTC)
	require.NoError(t, repo.RecordSyncFailure(ctx, 2000, nextAt))

	md, err := repo.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, md.SyncBackoffMs)
	require.Equal(t, int64(2000), *md.SyncBackoffMs)
	require.True(t, md.NextSyncAt.Equal(nextAt))

	syncedAt := nextAt.Add(5 * time.Second)
	require.NoError(t, repo.ClearSyncBackoff(ctx, syncedAt))

	md, err = repo.Get(ctx)
	require.NoError(t, err)
	require.Nil(t, md.SyncBackoffMs)
	require.Nil(t, md.NextSyncAt)
	require.True(t, md.LastSyncAt.Equal(syncedAt))
}

func TestSetYearlyGoal_Overwrites(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupDB(t))

	require.NoError(t, repo.SetYearlyGoal(ctx, 2026, 1000))
	require.NoError(t, repo.SetYearlyGoal(ctx, 2027, 1200))

	md, err := repo.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, 2027, *md.YearlyGoalYear)
	require.Equal(t, 1200.0, *md.YearlyGoalHours)
}
