// Package sqlite provides the default persistence engine: a SQLite database
// (modernc.org/sqlite, no cgo) in the profile directory with a maple read cache.
//
// Schema:
//
//	entries(key TEXT PRIMARY KEY, value BLOB, updated_at INTEGER)
//
// Values are the JSON encoding handed to the store. The database is shared by
// every context of the profile; writes are plain upserts (last write wins).
package sqlite
