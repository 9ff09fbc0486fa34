// Package util provides utility components shared by the cache engines and
// the asynchronous workers of the persistence layer.
//
// The package contains:
//   - functions: Hash functions and seed generation used for shard placement
//   - lockfreempsc: A lock-free Multi-Producer Single-Consumer (MPSC) queue. It backs the
//     write queue of the persistence engines and the command queue of the desktop bridge,
//     where many goroutines fire-and-forget work that a single worker executes in order.
package util
