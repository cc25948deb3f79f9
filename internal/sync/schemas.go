package sync

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrProtocol marks a server response that failed schema validation. It is
// handled exactly like a transport failure: surfaced and backed off.
var ErrProtocol = errors.New("protocol error")

var validate = validator.New()

// PushRequest is the body of POST /sync/push.
type PushRequest struct {
	DeviceID   string    `json:"device_id"`
	ClientTime time.Time `json:"client_time"`
	Ops        []PushOp  `json:"ops"`
}

// PushOp carries one outbox entry. Payload is passed through verbatim from
// the snapshot captured at enqueue time.
type PushOp struct {
	OpID     string          `json:"op_id"`
	Entity   string          `json:"entity"`
	Action   string          `json:"action"`
	RecordID string          `json:"record_id"`
	Payload  json.RawMessage `json:"payload"`
}

// RejectedOp reports a permanently refused op.
type RejectedOp struct {
	OpID    string `json:"op_id" validate:"required,uuid"`
	Code    string `json:"code" validate:"required"`
	Message string `json:"message"`
}

// AppliedLog carries the authoritative server instants for an applied log.
type AppliedLog struct {
	ID              string     `json:"id" validate:"required,uuid"`
	UpdatedAtServer time.Time  `json:"updated_at_server" validate:"required"`
	DeletedAtServer *time.Time `json:"deleted_at_server"`
}

// PushResponse is the body returned by POST /sync/push.
type PushResponse struct {
	ServerTime time.Time    `json:"server_time" validate:"required"`
	AckOpIDs   []string     `json:"ack_op_ids" validate:"dive,uuid"`
	Rejected   []RejectedOp `json:"rejected" validate:"dive"`
	Applied    struct {
		Logs []AppliedLog `json:"logs" validate:"dive"`
	} `json:"applied"`
	NextCursor string `json:"next_cursor"`
}

// PullLog is one server-side change returned by GET /sync/pull.
type PullLog struct {
	ID              string     `json:"id" validate:"required,uuid"`
	StartAt         time.Time  `json:"start_at" validate:"required"`
	EndAt           *time.Time `json:"end_at"`
	Note            *string    `json:"note"`
	UpdatedAtServer time.Time  `json:"updated_at_server" validate:"required"`
	DeletedAtServer *time.Time `json:"deleted_at_server"`
}

// PullResponse is the body returned by GET /sync/pull.
type PullResponse struct {
	ServerTime time.Time `json:"server_time" validate:"required"`
	NextCursor string    `json:"next_cursor"`
	Changes    struct {
		Logs []PullLog `json:"logs" validate:"dive"`
	} `json:"changes"`
}

func validateResponse(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrProtocol, err)
	}
	return nil
}
