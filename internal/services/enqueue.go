// Package services implements the transactional timer/log mutators and the
// stats engine. Every mutation writes the log table, the metadata row where
// relevant and exactly one outbox entry in a single store transaction.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"wildlings/internal/models"
	"wildlings/internal/store"
)

func enqueueUpsert(ctx context.Context, r *store.Repositories, deviceID string, l *models.Log, newID func() string) error {
	payload, err := json.Marshal(models.SnapshotPayload(l))
	if err != nil {
		return fmt.Errorf("failed to snapshot log %s: %w", l.ID, err)
	}
	return r.Outbox.Enqueue(ctx, &models.OutboxEntry{
		OpID:           newID(),
		DeviceID:       deviceID,
		Entity:         models.EntityLog,
		Action:         models.ActionUpsert,
		RecordID:       l.ID,
		Payload:        payload,
		CreatedAtLocal: l.UpdatedAtLocal,
	})
}

func enqueueDelete(ctx context.Context, r *store.Repositories, deviceID, logID string, deletedAtLocal time.Time, newID func() string) error {
	payload, err := json.Marshal(models.DeletePayload{ID: logID, DeletedAtLocal: deletedAtLocal})
	if err != nil {
		return fmt.Errorf("failed to marshal tombstone for log %s: %w", logID, err)
	}
	return r.Outbox.Enqueue(ctx, &models.OutboxEntry{
		OpID:           newID(),
		DeviceID:       deviceID,
		Entity:         models.EntityLog,
		Action:         models.ActionDelete,
		RecordID:       logID,
		Payload:        payload,
		CreatedAtLocal: deletedAtLocal,
	})
}
