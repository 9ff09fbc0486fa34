// Package runtime is the startup of a context. Bootstrap builds the one Runtime value a
// context shares by reference: detected platform, native storage and its watcher,
// persistence engine and store, event bus, window bridge and HTTP client.
//
// Layout of a profile directory:
//
//	<profile>/local/          native storage, one file per key
//	<profile>/persist.sqlite  persistence engine (sqlite)
//	<profile>/persist.maple   persistence engine (maple snapshot)
//
// Every context of a profile opens the same directory; the watcher of each context
// reports the writes of the others as storage events.
package runtime
