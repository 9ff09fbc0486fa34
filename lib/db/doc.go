// Package db provides a standardized interface for the in-memory key-value
// databases used as synchronous read caches by the persistence engines.
//
// The package focuses on:
//   - A unified interface for key-value operations
//   - Feature discovery through capability flags
//   - Standardized persistence operations (Save/Load snapshots)
//
// Key Components:
//
//   - KVDB Interface: The core interface that all database implementations must satisfy.
//     It provides methods for basic operations (Set, Get, Delete, Range),
//     cache warm-up (SetIfUnset), metadata retrieval (GetInfo),
//     and persistence operations (Save, Load).
//
//   - Feature Flags: The Feature type defines capability flags that implementations
//     can advertise through the SupportsFeature method.
//
//   - Database Information: The DatabaseInfo structure reports key count, estimated
//     size and implementation-specific metadata.
//
// Note on write indexes:
//   - All write operations take a write-index that serves as a logical timestamp.
//     A write carrying an index lower than the stored entry's index is ignored, so a
//     slow cache warm-up can never overwrite a value written after it started.
//   - The write-index only increases monotonically (see SetWriteIdx).
//
// Related Packages:
//
// The engines/maple package (github.com/caplayground/caplay/lib/db/engines/maple) provides a
// sharded in-memory implementation built on xsync maps with binary snapshot support.
//
// The testing package (github.com/caplayground/caplay/lib/db/testing) provides
// a standardized test suite for implementations of db.KVDB.
package db
