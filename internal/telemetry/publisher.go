package telemetry

import (
	"context"
	"encoding/json"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/arkfood/ordering-backend/pkg/logger"
)

// Publisher ships envelopes to the telemetry topic. Delivery is fire and
// forget: a failed publish is logged and dropped, never surfaced to the
// cart operation that produced it.
type Publisher struct {
	topic *pubsub.Publisher
	logg  *logger.Logger
}

func NewPublisher(topic *pubsub.Publisher, logg *logger.Logger) *Publisher {
	return &Publisher{topic: topic, logg: logg}
}

func (p *Publisher) Track(ctx context.Context, env Envelope) {
	if p == nil || p.topic == nil {
		return
	}

	data, err := json.Marshal(env)
	if err != nil {
		p.logError(ctx, env, err)
		return
	}

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"event_type": env.EventType.String(),
			"session_id": env.SessionID,
		},
	})

	go func() {
		if _, err := result.Get(context.Background()); err != nil {
			p.logError(context.Background(), env, err)
		}
	}()
}

func (p *Publisher) logError(ctx context.Context, env Envelope, err error) {
	if p.logg == nil {
		return
	}
	ctx = p.logg.WithFields(ctx, map[string]any{
		"event_id":   env.EventID,
		"event_type": env.EventType.String(),
	})
	p.logg.Error(ctx, "publishing telemetry event failed", err)
}
