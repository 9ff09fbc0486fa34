package native

// Storage is the small synchronous key/value area shared by every context of a profile.
// Values are strings; the store keeps the JSON encoding of its values here.
//
// A write is visible to GetItem of every context as soon as SetItem returned.
// Concurrent writes of the same key from different contexts are not ordered, the last one wins.
type Storage interface {
	// GetItem returns the value of a key
	GetItem(key string) (value string, ok bool)
	// SetItem replaces the value of a key
	SetItem(key, value string) error
	// RemoveItem deletes a key, removing a missing key is not an error
	RemoveItem(key string) error
	// Keys returns all keys in no particular order
	Keys() []string
}
