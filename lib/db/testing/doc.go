// Package testing is the conformance suite for db.KVDB implementations, the
// read caches below the persistence engines.
//
// RunKVDBTests checks the contract the engines rely on: index ordered writes
// (a stale write never replaces a newer one), SetIfUnset for cache warm-up, Range,
// snapshot Save/Load when the implementation supports it, and concurrent use.
//
//	func TestMaple(t *testing.T) {
//		dbtesting.RunKVDBTests(t, "MapleDB", func() db.KVDB {
//			return maple.NewMapleDB(nil)
//		})
//	}
package testing
