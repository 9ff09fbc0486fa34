package binding

import (
	"github.com/caplayground/caplay/lib/events"
	"github.com/caplayground/caplay/lib/native"
	"github.com/caplayground/caplay/lib/native/filestore"
	"github.com/caplayground/caplay/lib/persist/memory"
	"github.com/caplayground/caplay/lib/store"
	"github.com/caplayground/caplay/lib/store/dualstore"
	"reflect"
	"sync/atomic"
	"testing"
	"time"
)

// testContext is everything one context shares between its bindings
type testContext struct {
	st  store.IStore
	ls  native.Storage
	bus *events.Bus
}

func newTestContext(t *testing.T, ls native.Storage) *testContext {
	t.Helper()
	engine, err := memory.NewEngine("")
	if err != nil {
		t.Fatalf("memory.NewEngine failed: %v", err)
	}
	st := dualstore.NewDualStore(engine, ls)
	t.Cleanup(func() { _ = st.Close() })
	return &testContext{st: st, ls: ls, bus: events.NewBus()}
}

type settings struct {
	Theme string `json:"theme"`
	Grid  bool   `json:"grid"`
}

func TestResolutionOrder(t *testing.T) {
	tests := []struct {
		name   string
		cached string
		native string
		want   settings
	}{
		{"initial", "", "", settings{Theme: "system"}},
		{"native", "", `{"theme":"light","grid":true}`, settings{Theme: "light", Grid: true}},
		{"cached wins", `{"theme":"dark"}`, `{"theme":"light"}`, settings{Theme: "dark"}},
		{"malformed native", "", `{"theme":`, settings{Theme: "system"}},
		{"wrong type native", "", `[1,2,3]`, settings{Theme: "system"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestContext(t, native.NewMemoryStorage())
			if tt.cached != "" {
				// through the store, then native storage is overwritten below
				if err := c.st.Set("settings", rawJSON(tt.cached)); err != nil {
					t.Fatalf("Set failed: %v", err)
				}
			}
			if tt.native != "" {
				_ = c.ls.SetItem("settings", tt.native)
			}

			b := New(c.st, c.ls, c.bus, "settings", settings{Theme: "system"})
			defer b.Close()

			if got := b.Value(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Value() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRoundTripRemount(t *testing.T) {
	c := newTestContext(t, native.NewMemoryStorage())

	b := New(c.st, c.ls, c.bus, "recent", []string{})
	b.Set([]string{"a.ca", "b.ca"})
	b.Close()

	again := New(c.st, c.ls, c.bus, "recent", []string{})
	defer again.Close()
	if got := again.Value(); !reflect.DeepEqual(got, []string{"a.ca", "b.ca"}) {
		t.Errorf("Value() after remount = %v", got)
	}
}

func TestSameContextFanOut(t *testing.T) {
	c := newTestContext(t, native.NewMemoryStorage())

	a := New(c.st, c.ls, c.bus, "zoom", 1.0)
	b := New(c.st, c.ls, c.bus, "zoom", 1.0)
	other := New(c.st, c.ls, c.bus, "zoom-other", 1.0)
	defer a.Close()
	defer b.Close()
	defer other.Close()

	var seen []float64
	b.Watch(func(v float64) { seen = append(seen, v) })

	a.Set(2.5)

	// synchronous: no waiting and no storage event involved
	if got := b.Value(); got != 2.5 {
		t.Errorf("b.Value() = %v, want 2.5", got)
	}
	if len(seen) != 1 || seen[0] != 2.5 {
		t.Errorf("watcher saw %v, want [2.5]", seen)
	}
	if got := other.Value(); got != 1.0 {
		t.Errorf("binding of another key changed to %v", got)
	}

	a.Update(func(prev float64) float64 { return prev * 2 })
	if got := b.Value(); got != 5 {
		t.Errorf("b.Value() after Update = %v, want 5", got)
	}

	// idempotent writes still notify
	a.Set(5)
	if len(seen) != 3 {
		t.Errorf("watcher called %d times, want 3", len(seen))
	}
}

func TestLocalEventOfAnotherType(t *testing.T) {
	c := newTestContext(t, native.NewMemoryStorage())

	typed := New(c.st, c.ls, c.bus, "settings", settings{})
	generic := New[map[string]any](c.st, c.ls, c.bus, "settings", nil)
	defer typed.Close()
	defer generic.Close()

	generic.Set(map[string]any{"theme": "dark", "grid": true})
	if got := typed.Value(); got != (settings{Theme: "dark", Grid: true}) {
		t.Errorf("typed.Value() = %+v", got)
	}
}

func TestCrossContextNotification(t *testing.T) {
	c := newTestContext(t, native.NewMemoryStorage())

	b := New(c.st, c.ls, c.bus, "theme", "light")
	unrelated := New(c.st, c.ls, c.bus, "theme2", "light")
	defer b.Close()
	defer unrelated.Close()

	// as the native storage watcher reports a write of another context
	c.bus.Storage.Dispatch(events.StorageEvent{
		Key:      "theme",
		NewValue: events.StringPtr(`"dark"`),
	})

	if got := b.Value(); got != "dark" {
		t.Errorf("Value() = %q, want dark", got)
	}
	if got := unrelated.Value(); got != "light" {
		t.Errorf("binding of another key changed to %q", got)
	}

	// prefixes do not match
	c.bus.Storage.Dispatch(events.StorageEvent{Key: "them", NewValue: events.StringPtr(`"x"`)})
	if got := b.Value(); got != "dark" {
		t.Errorf("Value() = %q after event of other key", got)
	}
}

func TestParseFailureFallback(t *testing.T) {
	c := newTestContext(t, native.NewMemoryStorage())

	b := New(c.st, c.ls, c.bus, "grid", 8)
	defer b.Close()
	b.Set(16)

	tests := []struct {
		name  string
		value *string
	}{
		{"malformed", events.StringPtr(`{not json`)},
		{"wrong type", events.StringPtr(`"sixteen"`)},
		{"removed", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b.Set(16)
			c.bus.Storage.Dispatch(events.StorageEvent{Key: "grid", NewValue: tt.value})
			if got := b.Value(); got != 8 {
				t.Errorf("Value() = %d, want initial 8", got)
			}
		})
	}
}

func TestCloseReleasesListeners(t *testing.T) {
	c := newTestContext(t, native.NewMemoryStorage())

	var calls atomic.Int32
	b := New(c.st, c.ls, c.bus, "k", 0)
	b.Watch(func(int) { calls.Add(1) })
	if n := c.bus.Listeners(); n != 2 {
		t.Fatalf("Listeners() = %d, want 2", n)
	}

	b.Close()
	b.Close()
	if n := c.bus.Listeners(); n != 0 {
		t.Fatalf("Listeners() after Close = %d, want 0", n)
	}

	c.bus.Local.Dispatch(events.LocalEvent{Key: "k", Value: 3})
	c.bus.Storage.Dispatch(events.StorageEvent{Key: "k", NewValue: events.StringPtr("4")})
	if calls.Load() != 0 {
		t.Errorf("closed binding notified %d times", calls.Load())
	}
	if got := b.Value(); got != 0 {
		t.Errorf("closed binding changed to %d", got)
	}
}

func TestWatchCancel(t *testing.T) {
	c := newTestContext(t, native.NewMemoryStorage())
	b := New(c.st, c.ls, c.bus, "k", "")
	defer b.Close()

	var calls int
	cancel := b.Watch(func(string) { calls++ })
	b.Set("a")
	cancel()
	b.Set("b")
	if calls != 1 {
		t.Errorf("watcher called %d times, want 1", calls)
	}
}

func TestPropagationBetweenContexts(t *testing.T) {
	dir := t.TempDir()

	open := func() (*testContext, *filestore.Watcher) {
		ls, err := filestore.Open(dir)
		if err != nil {
			t.Fatalf("filestore.Open failed: %v", err)
		}
		c := newTestContext(t, ls)
		w, err := ls.Watch(c.bus.Storage)
		if err != nil {
			t.Fatalf("Watch failed: %v", err)
		}
		t.Cleanup(func() { _ = w.Close() })
		return c, w
	}

	tab1, _ := open()
	tab2, w2 := open()

	b1 := New(tab1.st, tab1.ls, tab1.bus, "layers", []string{"bg"})
	b2 := New(tab2.st, tab2.ls, tab2.bus, "layers", []string{"bg"})
	defer b1.Close()
	defer b2.Close()

	changed := make(chan []string, 4)
	b2.Watch(func(v []string) { changed <- v })

	b1.Set([]string{"bg", "clock"})
	w2.Rescan()

	select {
	case v := <-changed:
		if !reflect.DeepEqual(v, []string{"bg", "clock"}) {
			t.Errorf("other context saw %v", v)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("change did not reach the other context")
	}
	if got := b2.Value(); !reflect.DeepEqual(got, []string{"bg", "clock"}) {
		t.Errorf("b2.Value() = %v", got)
	}
}

// rawJSON is stored verbatim by the store
type rawJSON string

func (r rawJSON) MarshalJSON() ([]byte, error) {
	return []byte(r), nil
}
