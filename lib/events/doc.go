// Package events implements the notification channels a context uses to learn
// about state changes.
//
// Two kinds of notifications exist:
//   - StorageEvent: native storage was changed by another context. The native storage
//     implementation produces them; a context never receives its own writes.
//   - LocalEvent ("caplay-local-storage"): a binding in this context changed a key and
//     broadcasts the live value to the other bindings of the same context.
//
// Both are delivered through a Channel, a plain synchronous broadcast without any
// filtering or ordering beyond the order of Dispatch calls.
package events
