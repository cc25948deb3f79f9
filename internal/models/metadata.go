package models

import "time"

// MetadataID keys the single metadata row.
const MetadataID = "singleton"

// Metadata is the process-wide local sync/timer state. One row per store,
// created lazily with all fields empty on first read.
type Metadata struct {
	// DeviceID is generated once and persisted forever.
	DeviceID *string

	// ActiveLogID / ActiveStartAt identify the running timer, or both nil.
	ActiveLogID   *string
	ActiveStartAt *time.Time

	// EditingLogID marks a log open for local editing; pull merge skips it.
	EditingLogID *string

	// LastSyncCursor is the opaque server pagination token for incremental
	// pulls, nil before the first pull.
	LastSyncCursor *string

	// LastSyncAt is the instant of the last successful sync.
	LastSyncAt *time.Time

	// SyncBackoffMs / NextSyncAt hold retry scheduling state; both nil when
	// not in backoff.
	SyncBackoffMs *int64
	NextSyncAt    *time.Time

	// YearlyGoalHours / YearlyGoalYear track a single goal at a time.
	YearlyGoalHours *float64
	YearlyGoalYear  *int
}
