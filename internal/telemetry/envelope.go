package telemetry

import (
	"encoding/json"
	"time"

	"github.com/arkfood/ordering-backend/pkg/enums"
	pkgerrors "github.com/arkfood/ordering-backend/pkg/errors"
	"github.com/google/uuid"
)

// Envelope is the wire form of one analytics event, as published to the
// event topic and stored by the warehouse worker.
type Envelope struct {
	EventID    string               `json:"event_id"`
	EventType  enums.TelemetryEvent `json:"event_type"`
	SessionID  string               `json:"session_id"`
	OccurredAt time.Time            `json:"occurred_at"`
	Payload    json.RawMessage      `json:"payload,omitempty"`
}

// NewEnvelope wraps an event payload, stamping a fresh event id.
func NewEnvelope(eventType enums.TelemetryEvent, sessionID string, occurredAt time.Time, payload any) (Envelope, error) {
	if !eventType.IsValid() {
		return Envelope{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown telemetry event type")
	}

	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Envelope{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding telemetry payload")
		}
		raw = data
	}

	return Envelope{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		SessionID:  sessionID,
		OccurredAt: occurredAt.UTC(),
		Payload:    raw,
	}, nil
}

// Decode parses a published envelope and rejects ones missing the fields
// the warehouse schema requires.
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed telemetry envelope")
	}
	if env.EventID == "" || !env.EventType.IsValid() {
		return Envelope{}, pkgerrors.New(pkgerrors.CodeValidation, "telemetry envelope missing event id or type")
	}
	return env, nil
}
