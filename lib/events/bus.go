package events

// LocalEventName names the same-context notification
const LocalEventName = "caplay-local-storage"

// StorageEventName names the cross-context notification
const StorageEventName = "storage"

// StorageEvent reports a change of native storage made by another context.
// Values are the serialized strings found in native storage; a nil NewValue
// means the key was removed.
type StorageEvent struct {
	Key      string
	OldValue *string
	NewValue *string
}

// LocalEvent is broadcast by a binding after it changed a key, so other bindings
// of the same key in the same context update without a read. Value is the live
// value, not its encoding.
type LocalEvent struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// Bus groups the two notification channels of one context
type Bus struct {
	Storage *Channel[StorageEvent]
	Local   *Channel[LocalEvent]
}

// NewBus creates the channels of a context
func NewBus() *Bus {
	return &Bus{
		Storage: NewChannel[StorageEvent](StorageEventName),
		Local:   NewChannel[LocalEvent](LocalEventName),
	}
}

// Listeners returns the number of listeners on both channels
func (b *Bus) Listeners() int {
	return b.Storage.Len() + b.Local.Len()
}

// StringPtr returns a pointer to s, for building storage events
func StringPtr(s string) *string {
	return &s
}
