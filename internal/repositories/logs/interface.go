package logs

import (
	"context"
	"time"

	"wildlings/internal/models"
)

// Repository stores logs. Implementations are bound to a dbx.DBTX so the
// same code runs against the database or inside a transaction.
type Repository interface {
	// Put upserts a log by id, replacing every column.
	Put(ctx context.Context, l *models.Log) error

	// GetByID returns a log or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Log, error)

	// List returns every log, tombstones included.
	List(ctx context.Context) ([]models.Log, error)

	// ApplyServerUpsert overwrites the server-owned fields of an existing
	// log during pull merge. Local tombstones and updated_at_local are left
	// untouched.
	ApplyServerUpsert(ctx context.Context, id string, startAt time.Time, endAt *time.Time, note *string, updatedAtServer time.Time, deletedAtServer *time.Time) error

	// SetServerStamp records the server-acknowledged instants after a push.
	SetServerStamp(ctx context.Context, id string, updatedAtServer time.Time, deletedAtServer *time.Time) error
}
