package events

import (
	"fmt"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"sync/atomic"
)

var Logger = logger.GetLogger("events")

// Channel is a process-wide broadcast of events of type E.
//
// Dispatch delivers an event synchronously, in the dispatching goroutine, to every
// listener subscribed at that moment. The channel does not filter: each listener
// decides whether an event concerns it.
type Channel[E any] struct {
	name       string
	listeners  *xsync.MapOf[uint64, func(E)]
	nextID     atomic.Uint64
	dispatched *metrics.Counter
}

// NewChannel creates a channel. The name labels its metrics and log lines.
func NewChannel[E any](name string) *Channel[E] {
	return &Channel[E]{
		name:       name,
		listeners:  xsync.NewMapOf[uint64, func(E)](),
		dispatched: metrics.GetOrCreateCounter(fmt.Sprintf(`caplay_events_dispatched_total{channel=%q}`, name)),
	}
}

// Name returns the name of the channel
func (c *Channel[E]) Name() string {
	return c.name
}

// Subscribe registers fn and returns the function that removes it again.
// The returned cancel function may be called any number of times.
func (c *Channel[E]) Subscribe(fn func(E)) (cancel func()) {
	id := c.nextID.Add(1)
	c.listeners.Store(id, fn)

	var canceled atomic.Bool
	return func() {
		if canceled.CompareAndSwap(false, true) {
			c.listeners.Delete(id)
		}
	}
}

// Dispatch delivers e to all current listeners.
// A panicking listener is logged and does not keep the event from the others.
func (c *Channel[E]) Dispatch(e E) {
	c.dispatched.Inc()
	c.listeners.Range(func(id uint64, fn func(E)) bool {
		c.call(id, fn, e)
		return true
	})
}

func (c *Channel[E]) call(id uint64, fn func(E), e E) {
	defer func() {
		if r := recover(); r != nil {
			Logger.Errorf("listener %d of %s panicked: %v", id, c.name, r)
		}
	}()
	fn(e)
}

// Len returns the number of subscribed listeners
func (c *Channel[E]) Len() int {
	return c.listeners.Size()
}
