package models

import "time"

// Action classifies an outbox op.
type Action string

const (
	ActionUpsert Action = "upsert"
	ActionDelete Action = "delete"
)

// EntityLog is the only replicated entity today. The column exists so the
// queue can carry other entities later.
const EntityLog = "log"

// OutboxEntry is a pending change awaiting replication to the server.
// Entries are created by mutators in the same transaction as the log write
// and removed only by the sync engine once acknowledged.
type OutboxEntry struct {
	// OpID is unique per mutation and never reused.
	OpID string

	// DeviceID is the stable per-installation identifier.
	DeviceID string

	// Entity names the record type ("log").
	Entity string

	// Action is upsert or delete.
	Action Action

	// RecordID is the log this entry concerns.
	RecordID string

	// Payload is the JSON snapshot captured at enqueue time. It is never
	// mutated afterwards; only attempts/last_error change on retry.
	Payload []byte

	// CreatedAtLocal is the enqueue instant, the FIFO push ordering key.
	CreatedAtLocal time.Time

	// Attempts counts failed pushes of this entry.
	Attempts int

	// LastError holds the most recent push failure, nil if none.
	LastError *string
}
