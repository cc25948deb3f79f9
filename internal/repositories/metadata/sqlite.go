package metadata

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"wildlings/internal/dbx"
	"wildlings/internal/models"
	"wildlings/internal/timex"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) ensure(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO metadata (id) VALUES (?) ON CONFLICT(id) DO NOTHING`, models.MetadataID)
	if err != nil {
		return fmt.Errorf("failed to init metadata: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context) (*models.Metadata, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}

	query := `SELECT device_id, active_log_id, active_start_at, editing_log_id,
			last_sync_cursor, last_sync_at, sync_backoff_ms, next_sync_at,
			yearly_goal_hours, yearly_goal_year
		FROM metadata WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, models.MetadataID)

	var (
		m                                      models.Metadata
		deviceID, activeLogID, editingLogID    sql.NullString
		activeStartAt, lastSyncAt, nextSyncAt  sql.NullString
		lastSyncCursor                         sql.NullString
		syncBackoffMs                          sql.NullInt64
		yearlyGoalHours                        sql.NullFloat64
		yearlyGoalYear                         sql.NullInt64
	)
	err := row.Scan(&deviceID, &activeLogID, &activeStartAt, &editingLogID,
		&lastSyncCursor, &lastSyncAt, &syncBackoffMs, &nextSyncAt,
		&yearlyGoalHours, &yearlyGoalYear)
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata: %w", err)
	}

	m.DeviceID = strPtr(deviceID)
	m.ActiveLogID = strPtr(activeLogID)
	m.EditingLogID = strPtr(editingLogID)
	m.LastSyncCursor = strPtr(lastSyncCursor)
	if m.ActiveStartAt, err = instantPtr(activeStartAt); err != nil {
		return nil, err
	}
	if m.LastSyncAt, err = instantPtr(lastSyncAt); err != nil {
		return nil, err
	}
	if m.NextSyncAt, err = instantPtr(nextSyncAt); err != nil {
		return nil, err
	}
	if syncBackoffMs.Valid {
		m.SyncBackoffMs = &syncBackoffMs.Int64
	}
	if yearlyGoalHours.Valid {
		m.YearlyGoalHours = &yearlyGoalHours.Float64
	}
	if yearlyGoalYear.Valid {
		year := int(yearlyGoalYear.Int64)
		m.YearlyGoalYear = &year
	}
	return &m, nil
}

func (r *SQLiteRepository) SetDeviceID(ctx context.Context, id string) error {
	return r.update(ctx, `UPDATE metadata SET device_id = ? WHERE id = ?`, id, models.MetadataID)
}

func (r *SQLiteRepository) SetActiveTimer(ctx context.Context, logID string, startAt time.Time) error {
	return r.update(ctx,
		`UPDATE metadata SET active_log_id = ?, active_start_at = ? WHERE id = ?`,
		logID, timex.FormatInstant(startAt), models.MetadataID)
}

func (r *SQLiteRepository) SetActiveStartAt(ctx context.Context, startAt time.Time) error {
	return r.update(ctx,
		`UPDATE metadata SET active_start_at = ? WHERE id = ?`,
		timex.FormatInstant(startAt), models.MetadataID)
}

func (r *SQLiteRepository) ClearActiveTimer(ctx context.Context) error {
	return r.update(ctx,
		`UPDATE metadata SET active_log_id = NULL, active_start_at = NULL WHERE id = ?`,
		models.MetadataID)
}

func (r *SQLiteRepository) SetEditingLog(ctx context.Context, logID *string) error {
	return r.update(ctx,
		`UPDATE metadata SET editing_log_id = ? WHERE id = ?`, logID, models.MetadataID)
}

func (r *SQLiteRepository) SetCursor(ctx context.Context, cursor string) error {
	return r.update(ctx,
		`UPDATE metadata SET last_sync_cursor = ? WHERE id = ?`, cursor, models.MetadataID)
}

func (r *SQLiteRepository) RecordSyncFailure(ctx context.Context, backoffMs int64, nextSyncAt time.Time) error {
	return r.update(ctx,
		`UPDATE metadata SET sync_backoff_ms = ?, next_sync_at = ? WHERE id = ?`,
		backoffMs, timex.FormatInstant(nextSyncAt), models.MetadataID)
}

func (r *SQLiteRepository) ClearSyncBackoff(ctx context.Context, lastSyncAt time.Time) error {
	return r.update(ctx,
		`UPDATE metadata SET sync_backoff_ms = NULL, next_sync_at = NULL, last_sync_at = ? WHERE id = ?`,
		timex.FormatInstant(lastSyncAt), models.MetadataID)
}

func (r *SQLiteRepository) SetYearlyGoal(ctx context.Context, year int, hours float64) error {
	return r.update(ctx,
		`UPDATE metadata SET yearly_goal_year = ?, yearly_goal_hours = ? WHERE id = ?`,
		year, hours, models.MetadataID)
}

func (r *SQLiteRepository) update(ctx context.Context, query string, args ...any) error {
	if err := r.ensure(ctx); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update metadata: %w", err)
	}
	return nil
}

func strPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func instantPtr(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := timex.ParseInstant(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
