package persist

import (
	"context"
	"errors"
	"github.com/caplayground/caplay/lib/db/engines/maple"
	"github.com/caplayground/caplay/lib/events"
	"sync"
	"testing"
	"time"
)

// fakeBackend records writes and can be told to fail them
type fakeBackend struct {
	mu       sync.Mutex
	data     map[string][]byte
	writes   []string
	failWith error
	closed   bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{data: make(map[string][]byte)}
}

func (f *fakeBackend) Scan(_ context.Context, fn func(key string, value []byte)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, v := range f.data {
		fn(k, v)
	}
	return nil
}

func (f *fakeBackend) Read(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeBackend) Write(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.data[key] = value
	f.writes = append(f.writes, key)
	return nil
}

func (f *fakeBackend) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func waitReady(t *testing.T, e Engine) {
	t.Helper()
	select {
	case <-e.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("engine did not become ready")
	}
}

func TestEngineWarmUp(t *testing.T) {
	b := newFakeBackend()
	b.data["theme"] = []byte(`"dark"`)

	e := NewEngine("fake", b, maple.NewMapleDB(nil))
	defer e.Close()
	waitReady(t, e)

	got, ok := e.Cached("theme")
	if !ok || string(got) != `"dark"` {
		t.Fatalf("Cached(theme) = %q, %v; want \"dark\", true", got, ok)
	}
	if _, ok := e.Cached("missing"); ok {
		t.Fatal("expected cache miss for unknown key")
	}
}

func TestEnginePutVisibleImmediately(t *testing.T) {
	e := NewEngine("fake", newFakeBackend(), maple.NewMapleDB(nil))
	defer e.Close()

	// no wait for Ready: the cache is updated inside Put
	e.Put("k", []byte(`1`))
	got, ok := e.Cached("k")
	if !ok || string(got) != "1" {
		t.Fatalf("Cached(k) = %q, %v; want 1, true", got, ok)
	}
}

func TestEngineLoadOrderedAfterPut(t *testing.T) {
	b := newFakeBackend()
	e := NewEngine("fake", b, maple.NewMapleDB(nil))
	defer e.Close()

	for i := 0; i < 100; i++ {
		e.Put("counter", []byte{byte('0' + i%10)})
	}
	got, ok, err := e.Load(context.Background(), "counter")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !ok || string(got) != "9" {
		t.Fatalf("Load(counter) = %q, %v; want 9, true", got, ok)
	}
}

func TestEngineWriteFailureIsCounted(t *testing.T) {
	b := newFakeBackend()
	b.failWith = errors.New("disk full")

	e := NewEngine("failing", b, maple.NewMapleDB(nil))
	e.Put("a", []byte(`"x"`))
	e.Put("b", []byte(`"y"`))

	// Load is answered after both writes ran
	if _, _, err := e.Load(context.Background(), "a"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	stats := e.Stats()
	if stats.WriteErrors != 2 {
		t.Errorf("WriteErrors = %d, want 2", stats.WriteErrors)
	}
	if stats.Engine != "failing" {
		t.Errorf("Engine = %q, want failing", stats.Engine)
	}

	// the cache still serves the values
	if got, ok := e.Cached("b"); !ok || string(got) != `"y"` {
		t.Errorf("Cached(b) = %q, %v", got, ok)
	}

	if err := e.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestEngineCloseFlushes(t *testing.T) {
	b := newFakeBackend()
	e := NewEngine("fake", b, maple.NewMapleDB(nil))

	for _, k := range []string{"a", "b", "c"} {
		e.Put(k, []byte(`true`))
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	// second close is a no-op
	if err := e.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.writes) != 3 || b.writes[0] != "a" || b.writes[2] != "c" {
		t.Errorf("writes = %v, want [a b c]", b.writes)
	}
	if !b.closed {
		t.Error("backend was not closed")
	}

	if _, _, err := e.Load(context.Background(), "a"); err == nil {
		t.Error("expected Load on closed engine to fail")
	}
}

func TestEngineLoadCanceled(t *testing.T) {
	e := NewEngine("fake", newFakeBackend(), maple.NewMapleDB(nil))
	defer e.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := e.Load(ctx, "k"); !errors.Is(err, context.Canceled) {
		t.Fatalf("Load with canceled context = %v, want context.Canceled", err)
	}
}

func TestFollowStorageEvents(t *testing.T) {
	b := newFakeBackend()
	e := NewEngine("fake", b, maple.NewMapleDB(nil))
	defer e.Close()
	waitReady(t, e)

	bus := events.NewBus()
	cancel := Follow(e, bus.Storage)
	defer cancel()

	e.Put("theme", []byte(`"light"`))

	steps := []struct {
		name    string
		event   events.StorageEvent
		want    string
		present bool
	}{
		{"changed elsewhere", events.StorageEvent{Key: "theme", NewValue: events.StringPtr(`"dark"`)}, `"dark"`, true},
		{"new key elsewhere", events.StorageEvent{Key: "zoom", NewValue: events.StringPtr(`2`)}, `2`, true},
		{"removed elsewhere", events.StorageEvent{Key: "theme"}, "", false},
	}
	for _, s := range steps {
		bus.Storage.Dispatch(s.event)
		got, ok := e.Cached(s.event.Key)
		if ok != s.present || string(got) != s.want {
			t.Errorf("%s: Cached(%s) = %q, %v; want %q, %v", s.name, s.event.Key, got, ok, s.want, s.present)
		}
	}

	// observed values are not written back
	if err := e.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.writes) != 1 || b.writes[0] != "theme" {
		t.Errorf("backend writes = %v, want only the local Put", b.writes)
	}

	cancel()
	if n := bus.Storage.Len(); n != 0 {
		t.Errorf("listeners after cancel = %d", n)
	}
}
