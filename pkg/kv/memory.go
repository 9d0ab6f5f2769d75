package kv

import (
	"context"
	"sync"
	"time"
)

// MemoryBus is an in-process store shared between several origins. Each
// origin gets its own Store view via Client, which makes it possible to
// simulate two processes writing the same key without Redis.
type MemoryBus struct {
	mu       sync.Mutex
	data     map[string][]byte
	watchers map[string][]chan Change
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		data:     make(map[string][]byte),
		watchers: make(map[string][]chan Change),
	}
}

// Client returns a Store view bound to the given origin id.
func (b *MemoryBus) Client(origin string) Store {
	return &memoryStore{bus: b, origin: origin}
}

func (b *MemoryBus) get(key string) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.data[key]
	if !ok {
		return nil, false
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, true
}

func (b *MemoryBus) set(key string, value []byte, origin string) {
	cp := make([]byte, len(value))
	copy(cp, value)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[key] = cp
	b.notifyLocked(key, Change{Key: key, Origin: origin, At: time.Now().UTC()})
}

func (b *MemoryBus) remove(key string, origin string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.data, key)
	b.notifyLocked(key, Change{Key: key, Origin: origin, At: time.Now().UTC(), Removed: true})
}

// notifyLocked runs under b.mu so a send can never race the close in the
// watch cleanup. Sends never block: slow watchers drop changes.
func (b *MemoryBus) notifyLocked(key string, ch Change) {
	for _, w := range b.watchers[key] {
		select {
		case w <- ch:
		default:
		}
	}
}

func (b *MemoryBus) watch(ctx context.Context, key string) <-chan Change {
	out := make(chan Change, 16)

	b.mu.Lock()
	b.watchers[key] = append(b.watchers[key], out)
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		list := b.watchers[key]
		for i, w := range list {
			if w == out {
				b.watchers[key] = append(list[:i], list[i+1:]...)
				break
			}
		}
		close(out)
		b.mu.Unlock()
	}()

	return out
}

type memoryStore struct {
	bus    *MemoryBus
	origin string
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := s.bus.get(key)
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (s *memoryStore) Set(_ context.Context, key string, value []byte) error {
	s.bus.set(key, value, s.origin)
	return nil
}

func (s *memoryStore) Remove(_ context.Context, key string) error {
	s.bus.remove(key, s.origin)
	return nil
}

func (s *memoryStore) Watch(ctx context.Context, key string) (<-chan Change, error) {
	return s.bus.watch(ctx, key), nil
}
