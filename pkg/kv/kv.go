package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("kv: key not found")

// Change describes a write to a watched key. Origin identifies the process
// that performed the write so a watcher can skip its own events, the same
// way browser storage events never fire in the tab that wrote.
type Change struct {
	Key     string    `json:"key"`
	Origin  string    `json:"origin"`
	At      time.Time `json:"at"`
	Removed bool      `json:"removed,omitempty"`
}

// Store is the persistent key-value surface the cart core relies on.
// Values are opaque JSON blobs.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	// Watch delivers change notifications for the key until ctx is done.
	// Every write is delivered, including the caller's own; filter on
	// Change.Origin to reproduce cross-tab semantics.
	Watch(ctx context.Context, key string) (<-chan Change, error)
}
