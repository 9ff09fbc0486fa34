// Package memory provides a persistence engine backed by a maple database.
//
// Without a path the engine is volatile. With a path the maple database is
// restored from a snapshot file on start and saved back on Close, which makes
// it a lightweight alternative to the sqlite engine for profiles that are only
// used by one context at a time.
package memory
