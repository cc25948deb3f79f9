package logs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"wildlings/internal/common"
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

func (r *SQLiteRepository) Put(ctx context.Context, l *models.Log) error {
	query := `INSERT INTO logs (id, start_at, end_at, note, updated_at_local,
			deleted_at_local, updated_at_server, deleted_at_server)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			start_at = excluded.start_at,
			end_at = excluded.end_at,
			note = excluded.note,
			updated_at_local = excluded.updated_at_local,
			deleted_at_local = excluded.deleted_at_local,
			updated_at_server = excluded.updated_at_server,
			deleted_at_server = excluded.deleted_at_server
	`
	_, err := r.db.ExecContext(ctx, query,
		l.ID,
		timex.FormatInstant(l.StartAt),
		instantOrNil(l.EndAt),
		l.Note,
		timex.FormatInstant(l.UpdatedAtLocal),
		instantOrNil(l.DeletedAtLocal),
		instantOrNil(l.UpdatedAtServer),
		instantOrNil(l.DeletedAtServer),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert log: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Log, error) {
	query := `SELECT id, start_at, end_at, note, updated_at_local,
			deleted_at_local, updated_at_server, deleted_at_server
		FROM logs WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	l, err := scanLog(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get log %s: %w", id, err)
	}
	return l, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.Log, error) {
	query := `SELECT id, start_at, end_at, note, updated_at_local,
			deleted_at_local, updated_at_server, deleted_at_server
		FROM logs ORDER BY start_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select logs: %w", err)
	}
	defer rows.Close()

	var result []models.Log
	for rows.Next() {
		l, err := scanLog(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) ApplyServerUpsert(ctx context.Context, id string, startAt time.Time, endAt *time.Time, note *string, updatedAtServer time.Time, deletedAtServer *time.Time) error {
	query := `UPDATE logs SET
			start_at = ?, end_at = ?, note = ?,
			updated_at_server = ?, deleted_at_server = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		timex.FormatInstant(startAt),
		instantOrNil(endAt),
		note,
		timex.FormatInstant(updatedAtServer),
		instantOrNil(deletedAtServer),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to apply server upsert for log %s: %w", id, err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) SetServerStamp(ctx context.Context, id string, updatedAtServer time.Time, deletedAtServer *time.Time) error {
	query := `UPDATE logs SET updated_at_server = ?, deleted_at_server = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		timex.FormatInstant(updatedAtServer),
		instantOrNil(deletedAtServer),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to stamp log %s: %w", id, err)
	}
	return nil
}

func scanLog(scan func(dest ...any) error) (*models.Log, error) {
	var (
		l                     models.Log
		startAt, updatedLocal string
		endAt, deletedLocal   sql.NullString
		updatedSrv, deletedSrv sql.NullString
		note                  sql.NullString
	)
	if err := scan(&l.ID, &startAt, &endAt, &note, &updatedLocal, &deletedLocal, &updatedSrv, &deletedSrv); err != nil {
		return nil, err
	}

	var err error
	if l.StartAt, err = timex.ParseInstant(startAt); err != nil {
		return nil, err
	}
	if l.UpdatedAtLocal, err = timex.ParseInstant(updatedLocal); err != nil {
		return nil, err
	}
	if l.EndAt, err = instantPtr(endAt); err != nil {
		return nil, err
	}
	if l.DeletedAtLocal, err = instantPtr(deletedLocal); err != nil {
		return nil, err
	}
	if l.UpdatedAtServer, err = instantPtr(updatedSrv); err != nil {
		return nil, err
	}
	if l.DeletedAtServer, err = instantPtr(deletedSrv); err != nil {
		return nil, err
	}
	if note.Valid {
		l.Note = &note.String
	}
	return &l, nil
}

func instantOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return timex.FormatInstant(*t)
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
