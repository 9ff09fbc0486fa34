package persist

import "context"

// Engine is the primary persistence backend of a store: durable, possibly slow,
// with a synchronous read cache in front of it.
type Engine interface {
	// Cached returns the cached value without waiting on I/O.
	Cached(key string) (value []byte, loaded bool)
	// Load asks the backend for the value. It is answered after every Put made
	// before the call and refreshes the cache.
	Load(ctx context.Context, key string) (value []byte, loaded bool, err error)
	// Put updates the cache and queues the durable write. It never blocks on I/O;
	// failures of the durable write are logged and counted in Stats.
	Put(key string, value []byte)
	// Observe applies a change another context made to the cache only. With
	// present=false the key is evicted. Nothing is written to the backend.
	Observe(key string, value []byte, present bool)
	// Ready is closed once the cache was warmed from the backend.
	Ready() <-chan struct{}
	// Stats returns statistics about the engine.
	Stats() Stats
	// Close executes all queued writes and closes the backend.
	Close() error
}

// Backend is the durable storage below an Engine.
// Backends are only used by the engine worker and need not be safe for concurrent use.
type Backend interface {
	// Scan calls fn for every stored entry.
	Scan(ctx context.Context, fn func(key string, value []byte)) error
	// Read returns the stored value of a key.
	Read(ctx context.Context, key string) (value []byte, loaded bool, err error)
	// Write stores the value of a key, replacing any previous value.
	Write(ctx context.Context, key string, value []byte) error
	// Close releases the backend.
	Close() error
}

// Stats describes the state of an Engine
type Stats struct {
	Engine      string
	CachedKeys  int
	Pending     int
	Writes      uint64
	WriteErrors uint64
	WriteMeanMs float64
}
