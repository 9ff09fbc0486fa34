package util

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// --------------------------------------------------------------------------
// General Utility Functions
// --------------------------------------------------------------------------

// GenerateSeed creates a random seed for internal hash distribution
func GenerateSeed() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// the clock is good enough for shard placement
		return uint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(b[:])
}

// --------------------------------------------------------------------------
// Hash Functions
// --------------------------------------------------------------------------

// UintKey is a hashed key
type UintKey uint64

// HashString generates a FNV-1a hash for a string mixed with a seed
func HashString(s string, seed uint64) UintKey {
	const (
		offset64 = 14695981039346656037
		prime64  = 1099511628211
	)

	hash := uint64(offset64) ^ seed
	for i := 0; i < len(s); i++ {
		hash ^= uint64(s[i])
		hash *= prime64
	}

	return UintKey(hash)
}
