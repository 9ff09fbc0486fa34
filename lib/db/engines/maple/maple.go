package maple

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"github.com/caplayground/caplay/lib/db"
	"github.com/caplayground/caplay/lib/db/util"
	"github.com/puzpuzpuz/xsync/v3"
	"io"
	"runtime"
	"sync/atomic"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

// Constants for database behavior and structure
const (
	magicNum     = "MAPLEDB\x00" // File format identifier
	mapleVersion = 4             // Database version
)

// --------------------------------------------------------------------------
// Core Maple database structure
// --------------------------------------------------------------------------

// entry is a single value stored in a shard
type entry struct {
	Value []byte
	Index uint64 // write index of the last write
}

// shard is a partition of the database
type shard struct {
	data *xsync.MapOf[string, entry]
}

// mapleImpl implements a sharded in-memory database
type mapleImpl struct {
	numShards int           // Number of shards
	seed      uint64        // Seed for hash function
	shards    []*shard      // Array of shards
	currIndex atomic.Uint64 // Current logical timestamp
	closed    atomic.Bool
}

// DBOptions configures the mapleImpl behavior during initialization
type DBOptions struct {
	NumShards int // Number of shards (0 = auto)
}

// DefaultOptions returns the default mapleImpl options
func DefaultOptions() *DBOptions {
	return &DBOptions{
		NumShards: runtime.NumCPU(), // Auto-determine based on CPU count
	}
}

// --------------------------------------------------------------------------
// Initialization and Setup
// --------------------------------------------------------------------------

// NewMapleDB creates a new MapleDB instance with the specified options (optional)
func NewMapleDB(opts *DBOptions) db.KVDB {

	// Generate default options if not provided
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.NumShards <= 0 {
		opts.NumShards = runtime.NumCPU()
	}

	shards := make([]*shard, opts.NumShards)
	for i := 0; i < opts.NumShards; i++ {
		shards[i] = &shard{data: xsync.NewMapOf[string, entry]()}
	}

	return &mapleImpl{
		numShards: opts.NumShards,
		seed:      util.GenerateSeed(),
		shards:    shards,
	}
}

// shardFor returns the shard responsible for the given key
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) shardFor(key string) *shard {
	// Shift right by 7 bits to use higher-quality bits for distribution
	shifted := uint64(util.HashString(key, maple.seed)) >> 7
	return maple.shards[shifted%uint64(maple.numShards)]
}

// --------------------------------------------------------------------------
// Core KVDB Interface Methods - Write Operations
// --------------------------------------------------------------------------

// Set inserts or updates an entry with the given key, value, and writeIndex.
// Writes carrying an index lower than the stored one are ignored.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) Set(key string, value []byte, writeIndex uint64) {
	maple.compute(key, value, writeIndex, func(new, old entry, loaded bool) entry {
		return new
	})
}

// SetIfUnset inserts an entry only if the key does not exist.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) SetIfUnset(key string, value []byte, writeIndex uint64) {
	maple.compute(key, value, writeIndex, func(new, old entry, loaded bool) entry {
		if loaded {
			return old
		}
		return new
	})
}

// compute is a helper shared by Set and SetIfUnset.
// It copies the value, advances the write index and ignores stale writes.
//
// Thread-safety: This function relies on xsync.MapOf.Compute for atomicity.
func (maple *mapleImpl) compute(key string, value []byte, writeIndex uint64, fn func(new, old entry, loaded bool) entry) {
	maple.SetWriteIdx(writeIndex)

	// Copy value to prevent memory corruption
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	maple.shardFor(key).data.Compute(key, func(old entry, loaded bool) (entry, bool) {
		if loaded && writeIndex < old.Index {
			return old, false
		}
		return fn(entry{Value: valueCopy, Index: writeIndex}, old, loaded), false
	})
}

// Delete removes an entry with the specified key.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) Delete(key string, writeIndex uint64) {
	maple.SetWriteIdx(writeIndex)
	maple.shardFor(key).data.Compute(key, func(old entry, loaded bool) (entry, bool) {
		if loaded && writeIndex < old.Index {
			return old, false
		}
		return old, true
	})
}

// --------------------------------------------------------------------------
// Core KVDB Interface Methods - Read Operations
// --------------------------------------------------------------------------

// Get retrieves a value for a key.
// The returned value is a copy of the stored data and therefore safe to use and modify.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) Get(key string) ([]byte, bool) {
	e, ok := maple.shardFor(key).data.Load(key)
	if !ok {
		return nil, false
	}
	data := make([]byte, len(e.Value))
	copy(data, e.Value)
	return data, true
}

// Range iterates over all entries of all shards.
// Entries written during the iteration may or may not be visited.
func (maple *mapleImpl) Range(fn func(key string, value []byte) bool) {
	for _, s := range maple.shards {
		cont := true
		s.data.Range(func(key string, e entry) bool {
			cont = fn(key, e.Value)
			return cont
		})
		if !cont {
			return
		}
	}
}

// --------------------------------------------------------------------------
// Persistence
// --------------------------------------------------------------------------

// Save writes a binary snapshot of the database.
//
// Format: magic | version | writeIdx | count | (keyLen key valLen val index)*
// All integers are unsigned varints.
func (maple *mapleImpl) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(magicNum); err != nil {
		return err
	}

	// collect entries first so the count matches what is written
	type record struct {
		key string
		e   entry
	}
	var records []record
	for _, s := range maple.shards {
		s.data.Range(func(key string, e entry) bool {
			records = append(records, record{key: key, e: e})
			return true
		})
	}

	buf := make([]byte, binary.MaxVarintLen64)
	putUvarint := func(v uint64) error {
		n := binary.PutUvarint(buf, v)
		_, err := bw.Write(buf[:n])
		return err
	}

	if err := putUvarint(mapleVersion); err != nil {
		return err
	}
	if err := putUvarint(maple.WriteIdx()); err != nil {
		return err
	}
	if err := putUvarint(uint64(len(records))); err != nil {
		return err
	}
	for _, r := range records {
		if err := putUvarint(uint64(len(r.key))); err != nil {
			return err
		}
		if _, err := bw.WriteString(r.key); err != nil {
			return err
		}
		if err := putUvarint(uint64(len(r.e.Value))); err != nil {
			return err
		}
		if _, err := bw.Write(r.e.Value); err != nil {
			return err
		}
		if err := putUvarint(r.e.Index); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// Load replaces the database content with a snapshot written by Save.
func (maple *mapleImpl) Load(r io.Reader) error {
	br := bufio.NewReader(r)

	magic := make([]byte, len(magicNum))
	if _, err := io.ReadFull(br, magic); err != nil {
		return fmt.Errorf("read magic number: %w", err)
	}
	if string(magic) != magicNum {
		return fmt.Errorf("invalid snapshot: bad magic number")
	}

	version, err := binary.ReadUvarint(br)
	if err != nil {
		return fmt.Errorf("read version: %w", err)
	}
	if version != mapleVersion {
		return fmt.Errorf("unsupported snapshot version %d (expected %d)", version, mapleVersion)
	}

	writeIdx, err := binary.ReadUvarint(br)
	if err != nil {
		return fmt.Errorf("read write index: %w", err)
	}
	count, err := binary.ReadUvarint(br)
	if err != nil {
		return fmt.Errorf("read entry count: %w", err)
	}

	readBytes := func() ([]byte, error) {
		n, err := binary.ReadUvarint(br)
		if err != nil {
			return nil, err
		}
		b := make([]byte, n)
		_, err = io.ReadFull(br, b)
		return b, err
	}

	// clear all shards before loading
	for _, s := range maple.shards {
		s.data.Clear()
	}

	for i := uint64(0); i < count; i++ {
		key, err := readBytes()
		if err != nil {
			return fmt.Errorf("read key %d: %w", i, err)
		}
		value, err := readBytes()
		if err != nil {
			return fmt.Errorf("read value %d: %w", i, err)
		}
		idx, err := binary.ReadUvarint(br)
		if err != nil {
			return fmt.Errorf("read index %d: %w", i, err)
		}
		maple.shardFor(string(key)).data.Store(string(key), entry{Value: value, Index: idx})
	}

	maple.SetWriteIdx(writeIdx)
	return nil
}

// --------------------------------------------------------------------------
// Meta Information
// --------------------------------------------------------------------------

const supportedFeatures = db.FeatureSet | db.FeatureSetIfUnset | db.FeatureGet | db.FeatureDelete |
	db.FeatureRange | db.FeatureSave | db.FeatureLoad

func (maple *mapleImpl) SupportsFeature(feature db.Feature) bool {
	return supportedFeatures&feature == feature
}

func (maple *mapleImpl) GetInfo() db.DatabaseInfo {
	keys, size := 0, 0
	for _, s := range maple.shards {
		s.data.Range(func(key string, e entry) bool {
			keys++
			size += len(key) + len(e.Value)
			return true
		})
	}

	var features []db.Feature
	for f := db.FeatureSet; f <= db.FeatureLoad; f <<= 1 {
		if maple.SupportsFeature(f) {
			features = append(features, f)
		}
	}

	return db.DatabaseInfo{
		Keys:              keys,
		SizeBytes:         size,
		DbType:            db.ImplMaple,
		SupportedFeatures: features,
		Metadata: map[string]interface{}{
			"shards":    maple.numShards,
			"write_idx": maple.WriteIdx(),
		},
	}
}

// --------------------------------------------------------------------------
// Write Index
// --------------------------------------------------------------------------

// SetWriteIdx only ever moves the index forward.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) SetWriteIdx(index uint64) {
	for {
		curr := maple.currIndex.Load()
		if index <= curr || maple.currIndex.CompareAndSwap(curr, index) {
			return
		}
	}
}

func (maple *mapleImpl) WriteIdx() uint64 {
	return maple.currIndex.Load()
}

// Close releases all entries. Calling Close more than once is a no-op.
func (maple *mapleImpl) Close() error {
	if maple.closed.CompareAndSwap(false, true) {
		for _, s := range maple.shards {
			s.data.Clear()
		}
	}
	return nil
}
