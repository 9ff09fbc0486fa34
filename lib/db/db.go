package db

import "io"

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

type Implementation string

const (
	ImplMaple Implementation = "maple"
)

// Feature represents database features as bit flags
type Feature uint64

const (
	FeatureSet        Feature = 1 << iota // Support for Set operations
	FeatureSetIfUnset                     // Support for SetIfUnset operations
	FeatureGet                            // Support for Get operations
	FeatureDelete                         // Support for Delete operations
	FeatureRange                          // Support for Range operations
	FeatureSave                           // Support for Save operations
	FeatureLoad                           // Support for Load operations
)

func (f Feature) String() string {
	switch f {
	case FeatureSet:
		return "Set"
	case FeatureSetIfUnset:
		return "SetIfUnset"
	case FeatureGet:
		return "Get"
	case FeatureDelete:
		return "Delete"
	case FeatureRange:
		return "Range"
	case FeatureSave:
		return "Save"
	case FeatureLoad:
		return "Load"
	default:
		return "Unknown"
	}
}

type DatabaseInfo struct {
	Keys              int            `json:"keys"`
	SizeBytes         int            `json:"size_bytes"`
	DbType            Implementation `json:"db_type"`
	SupportedFeatures []Feature      `json:"supported_features"`
	Metadata          interface{}    `json:"metadata"`
}

// --------------------------------------------------------------------------
// Database Interface
// --------------------------------------------------------------------------

// KVDB defines an interface for the in-memory key-value databases that back the
// synchronous read cache of a persistence engine.
// Any implementation of this interface must manage keys in a consistent way.
// Implementations can vary in their feature support, which can be queried with SupportsFeature.
type KVDB interface {

	// --------------------------------------------------------------------------
	// Write Operations
	// --------------------------------------------------------------------------

	// Set inserts or updates an entry with the given key, value, and writeIndex.
	// If the key already exists, the old value is overwritten unless the stored
	// entry carries a higher writeIndex (stale writes are ignored).
	Set(key string, value []byte, writeIndex uint64)

	// SetIfUnset inserts an entry only if the key does not exist yet.
	// It is used to warm a cache without clobbering values written in the meantime.
	SetIfUnset(key string, value []byte, writeIndex uint64)

	// Delete removes an entry with the specified key. Like Set it is ignored when
	// the stored entry carries a higher writeIndex.
	Delete(key string, writeIndex uint64)

	// --------------------------------------------------------------------------
	// Query Operations
	// --------------------------------------------------------------------------

	// Get retrieves the value for an exact key.
	// The boolean return value indicates whether a value for the key was found.
	// The returned slice is a copy and safe to modify.
	Get(key string) (value []byte, loaded bool)

	// Range calls fn for every entry until fn returns false.
	// The value passed to fn must not be retained or modified.
	Range(fn func(key string, value []byte) bool)

	// --------------------------------------------------------------------------
	// Persistence Operations
	// --------------------------------------------------------------------------

	// Save persists the current state of the database to the provided io.Writer.
	Save(w io.Writer) (err error)

	// Load restores the database state data provided by an io.Reader.
	Load(r io.Reader) (err error)

	// --------------------------------------------------------------------------
	// Feature Support
	// --------------------------------------------------------------------------

	// SupportsFeature checks if the database implementation supports the specified feature.
	// Multiple features can be checked at once using bitwise OR (|) operator.
	SupportsFeature(feature Feature) (ok bool)

	// GetInfo returns information about the database.
	GetInfo() (info DatabaseInfo)

	// --------------------------------------------------------------------------
	// Write Index Operations
	// --------------------------------------------------------------------------

	// SetWriteIdx sets the current index of the database only if the provided index is greater than the current index.
	SetWriteIdx(index uint64)

	// WriteIdx returns the current index of the database.
	WriteIdx() (index uint64)

	// Close closes the database.
	Close() (err error)
}
