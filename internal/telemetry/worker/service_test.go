package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/arkfood/ordering-backend/internal/telemetry"
	"github.com/arkfood/ordering-backend/pkg/enums"
	"github.com/arkfood/ordering-backend/pkg/logger"
	"github.com/google/uuid"
)

type stubSink struct {
	rows []any
	err  error
}

func (s *stubSink) InsertRows(_ context.Context, _ string, rows []any) error {
	if s.err != nil {
		return s.err
	}
	s.rows = append(s.rows, rows...)
	return nil
}

func (s *stubSink) EventsTable() string { return "cart_events" }

func newTestService(sink *stubSink) *Service {
	return &Service{
		sink: sink,
		logg: logger.New(logger.Options{ServiceName: "telemetry-test"}),
		now:  func() time.Time { return time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC) },
	}
}

func buildTelemetryMessage(t *testing.T) *gcppubsub.Message {
	t.Helper()
	env := telemetry.Envelope{
		EventID:    uuid.NewString(),
		EventType:  enums.EventAddToCart,
		SessionID:  "sess-1",
		OccurredAt: time.Date(2026, 3, 10, 12, 59, 0, 0, time.UTC),
		Payload:    json.RawMessage(`{"dish_id":"cola","quantity":1}`),
	}
	data, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return &gcppubsub.Message{ID: "msg-1", Data: data}
}

func TestProcessStoresRow(t *testing.T) {
	sink := &stubSink{}
	svc := newTestService(sink)

	res := svc.process(context.Background(), buildTelemetryMessage(t))
	if res.nack {
		t.Fatal("expected ack on success")
	}
	if len(sink.rows) != 1 {
		t.Fatalf("stored %d rows, want 1", len(sink.rows))
	}

	row, ok := sink.rows[0].(telemetry.EventRow)
	if !ok {
		t.Fatalf("row type %T", sink.rows[0])
	}
	if row.EventType != "add_to_cart" || row.SessionID != "sess-1" {
		t.Fatalf("row = %+v", row)
	}
	if row.IngestedAt.IsZero() {
		t.Fatal("ingested_at not stamped")
	}
}

func TestProcessDropsMalformed(t *testing.T) {
	sink := &stubSink{}
	svc := newTestService(sink)

	res := svc.process(context.Background(), &gcppubsub.Message{ID: "msg-1", Data: []byte("not json")})
	if res.nack {
		t.Fatal("malformed message must ack, not redeliver")
	}
	if len(sink.rows) != 0 {
		t.Fatal("malformed message must not reach the sink")
	}
}

func TestProcessDropsUnknownEventType(t *testing.T) {
	sink := &stubSink{}
	svc := newTestService(sink)

	data, _ := json.Marshal(map[string]any{
		"event_id":   uuid.NewString(),
		"event_type": "mystery_event",
	})
	res := svc.process(context.Background(), &gcppubsub.Message{ID: "msg-1", Data: data})
	if res.nack {
		t.Fatal("unknown event type must ack")
	}
	if len(sink.rows) != 0 {
		t.Fatal("unknown event type must not reach the sink")
	}
}

func TestProcessNacksOnInsertFailure(t *testing.T) {
	sink := &stubSink{err: errors.New("warehouse down")}
	svc := newTestService(sink)

	res := svc.process(context.Background(), buildTelemetryMessage(t))
	if !res.nack {
		t.Fatal("insert failure must nack for redelivery")
	}
}
