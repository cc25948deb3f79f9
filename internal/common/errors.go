// Package common defines shared constants and sentinel errors used across
// the store, services and sync layers. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// ErrOperationFailed wraps any failure inside a store transaction.
	// The original cause is always attached with %w.
	ErrOperationFailed = errors.New("operation failed")

	// Timer/log invariant violations. Never retried, surfaced verbatim.
	ErrTimerAlreadyActive    = errors.New("timer already active")
	ErrNoActiveTimer         = errors.New("no active timer")
	ErrEndTimeRequired       = errors.New("end time required")
	ErrCannotEditActiveLog   = errors.New("cannot edit the active log")
	ErrCannotDeleteActiveLog = errors.New("cannot delete the active log")

	// ErrActiveLogMissing means the metadata row points at a log that does
	// not exist. This is store corruption, not a recoverable condition.
	ErrActiveLogMissing = errors.New("active log missing")
)
