package metadata

import (
	"context"
	"time"

	"wildlings/internal/models"
)

// Repository manages the singleton metadata row. Every accessor creates the
// row lazily, so callers never see "no metadata yet".
type Repository interface {
	// Get returns the metadata row, creating an empty one if missing.
	Get(ctx context.Context) (*models.Metadata, error)

	// SetDeviceID persists the per-installation identifier.
	SetDeviceID(ctx context.Context, id string) error

	// SetActiveTimer points the metadata at the running log.
	SetActiveTimer(ctx context.Context, logID string, startAt time.Time) error

	// SetActiveStartAt rewrites the running timer's start instant.
	SetActiveStartAt(ctx context.Context, startAt time.Time) error

	// ClearActiveTimer resets both active fields.
	ClearActiveTimer(ctx context.Context) error

	// SetEditingLog marks (or with nil unmarks) a log as open for editing.
	SetEditingLog(ctx context.Context, logID *string) error

	// SetCursor advances the pull cursor.
	SetCursor(ctx context.Context, cursor string) error

	// RecordSyncFailure persists the computed backoff and the next attempt
	// instant.
	RecordSyncFailure(ctx context.Context, backoffMs int64, nextSyncAt time.Time) error

	// ClearSyncBackoff resets backoff state and stamps the last successful
	// sync instant.
	ClearSyncBackoff(ctx context.Context, lastSyncAt time.Time) error

	// SetYearlyGoal stores the single tracked goal.
	SetYearlyGoal(ctx context.Context, year int, hours float64) error
}
