package binding

import (
	"encoding/json"
	"fmt"
	"github.com/caplayground/caplay/lib/events"
	"github.com/caplayground/caplay/lib/native"
	"github.com/caplayground/caplay/lib/store"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"sync"
	"sync/atomic"
)

var Logger = logger.GetLogger("binding")

// Binding is the reactive view of one key of type T.
//
// It resolves its value on creation, follows changes made by other bindings of the
// same context (local events) and by other contexts (storage events), and writes
// changes through the store. A Binding holds one subscription on each channel of the
// bus until Close.
type Binding[T any] struct {
	key     string
	initial T

	st  store.IStore
	ls  native.Storage
	bus *events.Bus

	mu    sync.RWMutex
	value T

	watchers  *xsync.MapOf[uint64, func(T)]
	nextWatch atomic.Uint64

	cancelStorage func()
	cancelLocal   func()
	closeOnce     sync.Once
}

// New creates a binding for key and subscribes it to the bus.
//
// The value is resolved in this order, the first hit wins:
//  1. the store's cached value (GetSync)
//  2. the JSON value in native storage
//  3. initial
//
// Values that do not decode into T are logged and treated as a miss.
func New[T any](st store.IStore, ls native.Storage, bus *events.Bus, key string, initial T) *Binding[T] {
	b := &Binding[T]{
		key:      key,
		initial:  initial,
		st:       st,
		ls:       ls,
		bus:      bus,
		watchers: xsync.NewMapOf[uint64, func(T)](),
	}
	b.value = b.resolve()

	b.cancelStorage = bus.Storage.Subscribe(b.onStorage)
	b.cancelLocal = bus.Local.Subscribe(b.onLocal)
	return b
}

// Key returns the key of the binding
func (b *Binding[T]) Key() string {
	return b.key
}

// Value returns the current value
func (b *Binding[T]) Value() T {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.value
}

// Set replaces the value.
// The new value is visible immediately; it is then written to the store and broadcast
// to the other bindings of this context. Store errors are logged, not returned.
func (b *Binding[T]) Set(next T) {
	b.mu.Lock()
	b.value = next
	b.mu.Unlock()

	b.publish(next)
}

// Update replaces the value with fn(previous value).
// fn runs under the binding's lock; it must not call back into the binding.
func (b *Binding[T]) Update(fn func(prev T) T) {
	b.mu.Lock()
	next := fn(b.value)
	b.value = next
	b.mu.Unlock()

	b.publish(next)
}

// Watch registers fn to be called with every new value and returns the function
// that removes it. fn is called in the goroutine that caused the change.
func (b *Binding[T]) Watch(fn func(T)) (cancel func()) {
	id := b.nextWatch.Add(1)
	b.watchers.Store(id, fn)
	return func() {
		b.watchers.Delete(id)
	}
}

// Close removes the subscriptions of the binding and all watchers.
// Calling Close more than once is a no-op.
func (b *Binding[T]) Close() {
	b.closeOnce.Do(func() {
		b.cancelStorage()
		b.cancelLocal()
		b.watchers.Clear()
	})
}

// --------------------------------------------------------------------------
// Resolution
// --------------------------------------------------------------------------

func (b *Binding[T]) resolve() T {
	if raw, ok := b.st.GetSync(b.key); ok {
		v, err := decode[T](raw)
		if err == nil {
			return v
		}
		Logger.Warningf("cached value of %q: %v", b.key, err)
	}

	if s, ok := b.ls.GetItem(b.key); ok {
		v, err := decode[T]([]byte(s))
		if err == nil {
			return v
		}
		Logger.Warningf("native value of %q: %v", b.key, err)
	}

	return b.initial
}

// --------------------------------------------------------------------------
// Listeners
// --------------------------------------------------------------------------

// onStorage applies a change made by another context
func (b *Binding[T]) onStorage(e events.StorageEvent) {
	if e.Key != b.key {
		return
	}
	if e.NewValue == nil {
		b.apply(b.initial)
		return
	}
	v, err := decode[T]([]byte(*e.NewValue))
	if err != nil {
		Logger.Warningf("storage event for %q: %v, falling back to initial value", b.key, err)
		b.apply(b.initial)
		return
	}
	b.apply(v)
}

// onLocal applies a change made by a binding of this context
func (b *Binding[T]) onLocal(e events.LocalEvent) {
	if e.Key != b.key {
		return
	}
	if v, ok := e.Value.(T); ok {
		b.apply(v)
		return
	}

	// a binding of the same key with another type
	raw, err := json.Marshal(e.Value)
	if err != nil {
		Logger.Warningf("local event for %q: %v", b.key, err)
		return
	}
	v, err := decode[T](raw)
	if err != nil {
		Logger.Warningf("local event for %q: %v", b.key, err)
		return
	}
	b.apply(v)
}

func (b *Binding[T]) apply(v T) {
	b.mu.Lock()
	b.value = v
	b.mu.Unlock()

	b.watchers.Range(func(_ uint64, fn func(T)) bool {
		fn(v)
		return true
	})
}

// publish writes the value and tells the other bindings of this context
func (b *Binding[T]) publish(v T) {
	if err := b.st.Set(b.key, v); err != nil {
		Logger.Errorf("write of %q failed: %v", b.key, err)
	}
	b.bus.Local.Dispatch(events.LocalEvent{Key: b.key, Value: v})
}

func decode[T any](raw []byte) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decode %T: %w", v, err)
	}
	return v, nil
}
