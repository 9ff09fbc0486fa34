// Package persist defines the persistence engine used as the primary backend of
// the key-value store, and the queued engine shared by all implementations.
//
// An Engine has two faces:
//   - a synchronous one (Cached) answered from an in-memory maple cache, usable
//     during the first render before any I/O completed
//   - an asynchronous one (Load, and the durable part of Put) executed by a single
//     worker goroutine draining a lock-free MPSC queue
//
// Put never blocks on I/O. A failed durable write is logged through the "persist"
// logger and counted (caplay_persist_write_errors_total); the store keeps working
// on native storage alone.
//
// Implementations:
//   - sqlite: SQLite database in the profile (default)
//   - memory: maple database, volatile or restored from / saved to a snapshot file
package persist
