package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/arkfood/ordering-backend/internal/hours"
	"github.com/arkfood/ordering-backend/internal/notify"
	"github.com/arkfood/ordering-backend/pkg/kv"
)

// twoClients builds two stores for the same session on a shared bus,
// like the same visitor with two tabs open.
func twoClients(t *testing.T) (*fixture, *fixture, *kv.MemoryBus) {
	t.Helper()

	schedule, err := hours.New("09:00", "23:00")
	if err != nil {
		t.Fatalf("building schedule: %v", err)
	}
	bus := kv.NewMemoryBus()

	build := func(origin string) *fixture {
		clock := &fakeClock{cur: time.Date(2026, time.March, 10, 13, 0, 0, 0, time.UTC)}
		notices := &notify.Capture{}
		store, err := NewStore(context.Background(), StoreParams{
			SessionID: "sess-1",
			Key:       "cart:sess-1",
			Origin:    origin,
			Catalog:   &fakeCatalog{dishes: testDishes()},
			KV:        bus.Client(origin),
			Notifier:  notices,
			Schedule:  schedule,
			Now:       clock.Now,
		})
		if err != nil {
			t.Fatalf("creating store for %s: %v", origin, err)
		}
		return &fixture{store: store, bus: bus, notices: notices, now: clock}
	}

	return build("tab-a"), build("tab-b"), bus
}

func TestWatchReloadsOnForeignWrite(t *testing.T) {
	a, b, _ := twoClients(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan Event, 4)
	b.store.Events().Subscribe(func(_ context.Context, event Event) {
		if event.Type == EventReloaded {
			select {
			case reloaded <- event:
			default:
			}
		}
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = b.store.Watch(ctx)
	}()
	time.Sleep(20 * time.Millisecond)

	if _, err := a.store.AddItem(ctx, "shawarma-classic", "", 2, false); err != nil {
		t.Fatalf("add on tab a: %v", err)
	}

	select {
	case <-reloaded:
	case <-time.After(time.Second):
		t.Fatal("tab b never reloaded after tab a's write")
	}

	snap := b.store.Snapshot(ctx)
	if snap.ItemCount != 2 || snap.Items[0].DishID != "shawarma-classic" {
		t.Fatalf("tab b snapshot = %+v", snap.Items)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}

func TestWatchSkipsOwnWrites(t *testing.T) {
	a, _, _ := twoClients(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	reloads := 0
	a.store.Events().Subscribe(func(_ context.Context, event Event) {
		if event.Type == EventReloaded {
			mu.Lock()
			reloads++
			mu.Unlock()
		}
	})

	go func() { _ = a.store.Watch(ctx) }()
	time.Sleep(20 * time.Millisecond)

	if _, err := a.store.AddItem(ctx, "cola", "", 1, false); err != nil {
		t.Fatalf("add: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if reloads != 0 {
		t.Fatalf("store reloaded %d times on its own write", reloads)
	}
}

func TestResyncWindow(t *testing.T) {
	a, b, _ := twoClients(t)
	ctx := context.Background()

	if _, err := a.store.AddItem(ctx, "shawarma-classic", "", 1, false); err != nil {
		t.Fatalf("add on tab a: %v", err)
	}

	// Fresh state: resync adopts it.
	b.store.Resync(ctx)
	if snap := b.store.Snapshot(ctx); snap.ItemCount != 1 {
		t.Fatalf("resync skipped fresh state, %d items", snap.ItemCount)
	}

	// Drain tab b, then age the stored state past the window.
	if _, err := a.store.UpdateQuantity(ctx, "shawarma-classic", 3); err != nil {
		t.Fatalf("update on tab a: %v", err)
	}
	b.now.Advance(31 * time.Minute)
	b.store.Resync(ctx)
	if snap := b.store.Snapshot(ctx); snap.ItemCount != 1 {
		t.Fatalf("resync adopted stale state, %d items", snap.ItemCount)
	}
}

func TestHasUnsavedChanges(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	if f.store.HasUnsavedChanges(ctx) {
		t.Fatal("empty cart can have nothing unsaved")
	}

	if _, err := f.store.AddItem(ctx, "cola", "", 1, false); err != nil {
		t.Fatalf("add: %v", err)
	}
	if f.store.HasUnsavedChanges(ctx) {
		t.Fatal("freshly persisted cart reported as dirty")
	}

	f.now.Advance(6 * time.Minute)
	if !f.store.HasUnsavedChanges(ctx) {
		t.Fatal("stale stored state must read as dirty")
	}

	// Dropped storage counts as unsaved too.
	if err := f.bus.Client("other").Remove(ctx, "cart:sess-1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !f.store.HasUnsavedChanges(ctx) {
		t.Fatal("missing stored state must read as dirty")
	}
}
