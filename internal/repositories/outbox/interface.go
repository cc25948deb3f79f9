package outbox

import (
	"context"

	"wildlings/internal/models"
)

// Repository stores the replication queue. Entries are appended by mutators
// inside the same transaction as the log write and removed only by the sync
// engine after acknowledgment.
type Repository interface {
	// Enqueue appends a new entry.
	Enqueue(ctx context.Context, e *models.OutboxEntry) error

	// OldestBatch returns up to limit entries, FIFO by created_at_local.
	OldestBatch(ctx context.Context, limit int) ([]models.OutboxEntry, error)

	// GetByOpID returns an entry or common.ErrNotFound.
	GetByOpID(ctx context.Context, opID string) (*models.OutboxEntry, error)

	// CountForRecord counts pending entries for a record id. Pull merge
	// uses this to suppress server overwrites of unsent local edits.
	CountForRecord(ctx context.Context, recordID string) (int, error)

	// DeleteByOpIDs removes acknowledged entries.
	DeleteByOpIDs(ctx context.Context, opIDs []string) error

	// RecordFailure increments attempts and sets last_error on each entry.
	RecordFailure(ctx context.Context, opIDs []string, message string) error

	// List returns the whole queue, FIFO, for inspection.
	List(ctx context.Context) ([]models.OutboxEntry, error)
}
