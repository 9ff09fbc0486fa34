// Package maple implements a sharded in-memory key-value database (KVDB) that
// serves as the synchronous read cache of the persistence engines.
//
// The package focuses on:
//   - Concurrent access through sharding and xsync maps
//   - Stale write detection based on caller-supplied write indexes
//   - Binary snapshots (Save/Load) so a cache can double as a durable store
//
// Key Components:
//
//   - mapleImpl: The central database structure implementing db.KVDB. It manages shards
//     and maintains a monotonically increasing write index. The mapleImpl does not
//     generate write indexes itself; the caller supplies them, so a persistence engine can
//     use its own logical clock.
//
//   - shard: A partition of the database that manages a subset of the key space.
//     Keys are distributed across shards with a seeded FNV-1a hash.
//
//   - entry: The stored value plus the write index of the last write. A write whose
//     index is lower than the stored one is ignored.
//
// Snapshot format (all integers unsigned varints):
//
//	magic "MAPLEDB\x00" | version | writeIdx | count | (keyLen key valLen value index)*
package maple
