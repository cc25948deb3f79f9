package outbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

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

func (r *SQLiteRepository) Enqueue(ctx context.Context, e *models.OutboxEntry) error {
	query := `INSERT INTO outbox (op_id, device_id, entity, action, record_id,
			payload, created_at_local, attempts, last_error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.OpID, e.DeviceID, e.Entity, string(e.Action), e.RecordID,
		string(e.Payload), timex.FormatInstant(e.CreatedAtLocal), e.Attempts, e.LastError)
	if err != nil {
		return fmt.Errorf("failed to enqueue op: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) OldestBatch(ctx context.Context, limit int) ([]models.OutboxEntry, error) {
	query := selectColumns + ` ORDER BY created_at_local, op_id LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select outbox batch: %w", err)
	}
	defer rows.Close()
	return collect(rows)
}

func (r *SQLiteRepository) GetByOpID(ctx context.Context, opID string) (*models.OutboxEntry, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+` WHERE op_id = ?`, opID)
	e, err := scanEntry(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get op %s: %w", opID, err)
	}
	return e, nil
}

func (r *SQLiteRepository) CountForRecord(ctx context.Context, recordID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM outbox WHERE record_id = ?`, recordID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count ops for record %s: %w", recordID, err)
	}
	return n, nil
}

func (r *SQLiteRepository) DeleteByOpIDs(ctx context.Context, opIDs []string) error {
	if len(opIDs) == 0 {
		return nil
	}
	query := `DELETE FROM outbox WHERE op_id IN (` + placeholders(len(opIDs)) + `)`
	_, err := r.db.ExecContext(ctx, query, toAny(opIDs)...)
	if err != nil {
		return fmt.Errorf("failed to delete acked ops: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) RecordFailure(ctx context.Context, opIDs []string, message string) error {
	if len(opIDs) == 0 {
		return nil
	}
	query := `UPDATE outbox SET attempts = attempts + 1, last_error = ?
		WHERE op_id IN (` + placeholders(len(opIDs)) + `)`
	args := append([]any{message}, toAny(opIDs)...)
	_, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to record op failure: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.OutboxEntry, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` ORDER BY created_at_local, op_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list outbox: %w", err)
	}
	defer rows.Close()
	return collect(rows)
}

const selectColumns = `SELECT op_id, device_id, entity, action, record_id,
	payload, created_at_local, attempts, last_error FROM outbox`

func collect(rows *sql.Rows) ([]models.OutboxEntry, error) {
	var result []models.OutboxEntry
	for rows.Next() {
		e, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanEntry(scan func(dest ...any) error) (*models.OutboxEntry, error) {
	var (
		e         models.OutboxEntry
		action    string
		payload   string
		createdAt string
		lastError sql.NullString
	)
	if err := scan(&e.OpID, &e.DeviceID, &e.Entity, &action, &e.RecordID,
		&payload, &createdAt, &e.Attempts, &lastError); err != nil {
		return nil, err
	}

	e.Action = models.Action(action)
	e.Payload = []byte(payload)
	var err error
	if e.CreatedAtLocal, err = timex.ParseInstant(createdAt); err != nil {
		return nil, err
	}
	if lastError.Valid {
		e.LastError = &lastError.String
	}
	return &e, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func toAny(ids []string) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
