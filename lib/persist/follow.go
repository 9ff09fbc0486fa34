package persist

import "github.com/caplayground/caplay/lib/events"

// Follow keeps the cache of e in line with the storage events of ch, the changes
// other contexts make to the shared native storage. A removed key is evicted.
func Follow(e Engine, ch *events.Channel[events.StorageEvent]) (cancel func()) {
	return ch.Subscribe(func(ev events.StorageEvent) {
		if ev.NewValue == nil {
			e.Observe(ev.Key, nil, false)
			return
		}
		e.Observe(ev.Key, []byte(*ev.NewValue), true)
	})
}
