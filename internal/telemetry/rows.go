package telemetry

import (
	"time"
)

// EventRow is the warehouse schema for one analytics event. Payload is
// stored as a JSON string so schema evolution on the event side never
// breaks inserts.
type EventRow struct {
	EventID    string    `bigquery:"event_id"`
	EventType  string    `bigquery:"event_type"`
	SessionID  string    `bigquery:"session_id"`
	OccurredAt time.Time `bigquery:"occurred_at"`
	Payload    string    `bigquery:"payload"`
	IngestedAt time.Time `bigquery:"ingested_at"`
}

// RowFromEnvelope maps an envelope onto the warehouse schema.
func RowFromEnvelope(env Envelope, ingestedAt time.Time) EventRow {
	return EventRow{
		EventID:    env.EventID,
		EventType:  env.EventType.String(),
		SessionID:  env.SessionID,
		OccurredAt: env.OccurredAt,
		Payload:    string(env.Payload),
		IngestedAt: ingestedAt.UTC(),
	}
}
