package cart

import (
	"context"
	"sync"
	"time"
)

// EventType labels a cart state change.
type EventType string

const (
	EventItemAdded       EventType = "item_added"
	EventItemRemoved     EventType = "item_removed"
	EventQuantityChanged EventType = "quantity_changed"
	EventCartCleared     EventType = "cart_cleared"
	EventReloaded        EventType = "reloaded"
	EventOpenRequested   EventType = "open_requested"
	EventCheckoutStarted EventType = "checkout_started"
)

// Event describes one cart state change. Fields that do not apply to the
// event type are zero.
type Event struct {
	Type      EventType
	SessionID string

	// Set for item-level events.
	Item        LineItem
	OldQuantity int
	NewQuantity int

	// Cart-level figures at the time of the event.
	ItemCount   int
	Subtotal    int
	DeliveryFee int
	Total       int

	At time.Time
}

// Listener receives cart events. Listeners must not block; slow consumers
// should hand off internally.
type Listener func(ctx context.Context, event Event)

// Emitter fans cart events out to subscribed listeners in subscription order.
type Emitter struct {
	mu        sync.RWMutex
	listeners []Listener
}

func NewEmitter() *Emitter {
	return &Emitter{}
}

// Subscribe registers a listener for all subsequent events.
func (e *Emitter) Subscribe(fn Listener) {
	if fn == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
}

func (e *Emitter) emit(ctx context.Context, event Event) {
	e.mu.RLock()
	listeners := append([]Listener(nil), e.listeners...)
	e.mu.RUnlock()
	for _, fn := range listeners {
		fn(ctx, event)
	}
}
