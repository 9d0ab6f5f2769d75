package worker

import (
	"context"
	"errors"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/arkfood/ordering-backend/internal/telemetry"
	"github.com/arkfood/ordering-backend/pkg/logger"
)

// Inserter is the warehouse sink for telemetry rows.
type Inserter interface {
	InsertRows(ctx context.Context, table string, rows []any) error
	EventsTable() string
}

// Service consumes telemetry envelopes from Pub/Sub and lands them in the
// events table. Malformed messages are acked and dropped; insert failures
// are nacked so Pub/Sub redelivers.
type Service struct {
	subscription *gcppubsub.Subscriber
	sink         Inserter
	logg         *logger.Logger
	now          func() time.Time
}

func NewService(subscription *gcppubsub.Subscriber, sink Inserter, logg *logger.Logger) (*Service, error) {
	if subscription == nil {
		return nil, errors.New("telemetry subscription is required")
	}
	if sink == nil {
		return nil, errors.New("warehouse sink is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}

	return &Service{
		subscription: subscription,
		sink:         sink,
		logg:         logg,
		now:          time.Now,
	}, nil
}

type processResult struct {
	nack bool
}

// Run consumes telemetry messages until the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.subscription.Receive(ctx, func(innerCtx context.Context, msg *gcppubsub.Message) {
		if s.process(innerCtx, msg).nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

func (s *Service) process(ctx context.Context, msg *gcppubsub.Message) processResult {
	logCtx := s.logg.WithField(ctx, "message_id", msg.ID)

	env, err := telemetry.Decode(msg.Data)
	if err != nil {
		s.logg.Warn(s.logg.WithField(logCtx, "error", err.Error()), "dropping malformed telemetry message")
		return processResult{}
	}

	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"event_id":   env.EventID,
		"event_type": env.EventType.String(),
		"session_id": env.SessionID,
	})

	row := telemetry.RowFromEnvelope(env, s.now())
	if err := s.sink.InsertRows(logCtx, s.sink.EventsTable(), []any{row}); err != nil {
		s.logg.Error(logCtx, "inserting telemetry row failed", err)
		return processResult{nack: true}
	}

	s.logg.Info(logCtx, "telemetry event stored")
	return processResult{}
}
