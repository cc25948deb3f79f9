// Package models defines the local records persisted by the store and
// synced with the server.
package models

import "time"

// Log is a single continuous (or still-running) interval of outdoor time.
// Deletion is logical: a tombstoned log stays in the store so local and
// server state can converge.
type Log struct {
	// ID is a globally unique identifier, assigned at creation, immutable.
	ID string

	// StartAt is the interval start.
	StartAt time.Time

	// EndAt is nil while the timer is running, set for completed entries.
	EndAt *time.Time

	// Note is optional free text.
	Note *string

	// UpdatedAtLocal is the last local mutation instant. It drives outbox
	// ordering and the sync cursor.
	UpdatedAtLocal time.Time

	// DeletedAtLocal marks a local tombstone.
	DeletedAtLocal *time.Time

	// UpdatedAtServer is the last server-acknowledged update instant,
	// nil until the server has processed an op touching this record.
	UpdatedAtServer *time.Time

	// DeletedAtServer marks a server-side tombstone.
	DeletedAtServer *time.Time
}

// Tombstoned reports whether the log is logically deleted on either side.
func (l *Log) Tombstoned() bool {
	return l.DeletedAtLocal != nil || l.DeletedAtServer != nil
}

// Running reports whether the log represents an unstopped timer.
func (l *Log) Running() bool {
	return l.EndAt == nil
}

// UpsertPayload is the wire snapshot of a log captured at enqueue time.
type UpsertPayload struct {
	ID              string     `json:"id"`
	StartAt         time.Time  `json:"start_at"`
	EndAt           *time.Time `json:"end_at"`
	Note            *string    `json:"note"`
	UpdatedAtLocal  time.Time  `json:"updated_at_local"`
	DeletedAtLocal  *time.Time `json:"deleted_at_local"`
	UpdatedAtServer *time.Time `json:"updated_at_server"`
	DeletedAtServer *time.Time `json:"deleted_at_server"`
}

// DeletePayload is the minimal tombstone shape sent for a delete op.
type DeletePayload struct {
	ID             string    `json:"id"`
	DeletedAtLocal time.Time `json:"deleted_at_local"`
}

// SnapshotPayload captures the log's current state for an upsert op.
func SnapshotPayload(l *Log) UpsertPayload {
	return UpsertPayload{
		ID:              l.ID,
		StartAt:         l.StartAt,
		EndAt:           l.EndAt,
		Note:            l.Note,
		UpdatedAtLocal:  l.UpdatedAtLocal,
		DeletedAtLocal:  l.DeletedAtLocal,
		UpdatedAtServer: l.UpdatedAtServer,
		DeletedAtServer: l.DeletedAtServer,
	}
}
