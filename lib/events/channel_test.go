package events

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestChannelBroadcast(t *testing.T) {
	c := NewChannel[LocalEvent]("test-broadcast")

	var a, b []LocalEvent
	cancelA := c.Subscribe(func(e LocalEvent) { a = append(a, e) })
	cancelB := c.Subscribe(func(e LocalEvent) { b = append(b, e) })

	c.Dispatch(LocalEvent{Key: "k", Value: 1})
	if len(a) != 1 || len(b) != 1 {
		t.Fatalf("got %d and %d events, want 1 each", len(a), len(b))
	}
	if a[0].Key != "k" || a[0].Value != 1 {
		t.Errorf("unexpected event %+v", a[0])
	}

	cancelA()
	cancelA() // idempotent
	c.Dispatch(LocalEvent{Key: "k", Value: 2})
	if len(a) != 1 {
		t.Errorf("canceled listener received %d events, want 1", len(a))
	}
	if len(b) != 2 {
		t.Errorf("listener received %d events, want 2", len(b))
	}

	cancelB()
	if c.Len() != 0 {
		t.Errorf("Len() = %d after cancel, want 0", c.Len())
	}
}

func TestChannelListenerPanic(t *testing.T) {
	c := NewChannel[StorageEvent]("test-panic")

	var delivered atomic.Int32
	c.Subscribe(func(StorageEvent) { panic("boom") })
	c.Subscribe(func(StorageEvent) { delivered.Add(1) })

	c.Dispatch(StorageEvent{Key: "k"})
	if delivered.Load() != 1 {
		t.Fatalf("delivered = %d, want 1", delivered.Load())
	}
}

func TestChannelConcurrent(t *testing.T) {
	c := NewChannel[int]("test-concurrent")

	var sum atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cancel := c.Subscribe(func(v int) { sum.Add(int64(v)) })
			defer cancel()
			for j := 0; j < 100; j++ {
				c.Dispatch(1)
			}
		}()
	}
	wg.Wait()

	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
	if sum.Load() == 0 {
		t.Error("no event delivered")
	}
}

func TestBus(t *testing.T) {
	bus := NewBus()
	if bus.Local.Name() != LocalEventName || bus.Local.Name() != "caplay-local-storage" {
		t.Errorf("local channel name = %q", bus.Local.Name())
	}

	cancel := bus.Storage.Subscribe(func(StorageEvent) {})
	if bus.Listeners() != 1 {
		t.Errorf("Listeners() = %d, want 1", bus.Listeners())
	}
	cancel()
	if bus.Listeners() != 0 {
		t.Errorf("Listeners() = %d, want 0", bus.Listeners())
	}

	if p := StringPtr("v"); *p != "v" {
		t.Errorf("StringPtr = %q", *p)
	}
}
