package telemetry

import (
	"context"
	"sync"
)

// Tracker records analytics envelopes. Implementations must not block the
// caller; delivery is best effort.
type Tracker interface {
	Track(ctx context.Context, env Envelope)
}

// Noop discards every event. Used when telemetry is disabled.
type Noop struct{}

func (Noop) Track(context.Context, Envelope) {}

// Capture collects envelopes in memory for assertions.
type Capture struct {
	mu     sync.Mutex
	events []Envelope
}

func (c *Capture) Track(_ context.Context, env Envelope) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, env)
}

// Events returns a copy of everything tracked so far.
func (c *Capture) Events() []Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Envelope(nil), c.events...)
}
