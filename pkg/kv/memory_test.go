package kv

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryBusGetSet(t *testing.T) {
	bus := NewMemoryBus()
	store := bus.Client("proc-a")
	ctx := context.Background()

	if _, err := store.Get(ctx, "cart:s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.Set(ctx, "cart:s1", []byte(`{"items":[]}`)); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := store.Get(ctx, "cart:s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `{"items":[]}` {
		t.Fatalf("unexpected value %q", got)
	}

	if err := store.Remove(ctx, "cart:s1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := store.Get(ctx, "cart:s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after remove, got %v", err)
	}
}

func TestMemoryBusWatchCarriesOrigin(t *testing.T) {
	bus := NewMemoryBus()
	writer := bus.Client("proc-a")
	reader := bus.Client("proc-b")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := reader.Watch(ctx, "cart:s1")
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	if err := writer.Set(ctx, "cart:s1", []byte(`{}`)); err != nil {
		t.Fatalf("set: %v", err)
	}

	select {
	case ch := <-changes:
		if ch.Origin != "proc-a" {
			t.Fatalf("expected origin proc-a, got %q", ch.Origin)
		}
		if ch.Removed {
			t.Fatal("set must not be marked removed")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for change")
	}

	if err := writer.Remove(ctx, "cart:s1"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	select {
	case ch := <-changes:
		if !ch.Removed {
			t.Fatal("expected removed change")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for removal")
	}
}

func TestMemoryBusWritesDuringWatcherTeardown(t *testing.T) {
	bus := NewMemoryBus()
	writer := bus.Client("proc-a")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			reader := bus.Client("proc-b")
			ctx, cancel := context.WithCancel(context.Background())
			changes, err := reader.Watch(ctx, "cart:s1")
			if err != nil {
				t.Errorf("watch: %v", err)
				cancel()
				return
			}
			cancel()
			for range changes {
			}
		}
	}()

	ctx := context.Background()
	for i := 0; i < 2000; i++ {
		if err := writer.Set(ctx, "cart:s1", []byte(`{}`)); err != nil {
			t.Fatalf("set: %v", err)
		}
		select {
		case <-done:
			return
		default:
		}
	}
	<-done
}

func TestMemoryBusWatchStopsOnCancel(t *testing.T) {
	bus := NewMemoryBus()
	store := bus.Client("proc-a")

	ctx, cancel := context.WithCancel(context.Background())
	changes, err := store.Watch(ctx, "cart:s1")
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	cancel()

	select {
	case _, open := <-changes:
		if open {
			t.Fatal("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
}
