package filestore

import (
	"encoding/base64"
	"errors"
	"fmt"
	"github.com/caplayground/caplay/lib/native"
	"github.com/google/uuid"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var Logger = logger.GetLogger("native")

const (
	keyPrefix = "k_"
	tmpPrefix = ".tmp-"
)

// Store is a native.Storage keeping one file per key in a directory.
//
// Several contexts (processes) may open the same directory. Writes are atomic per
// key (temp file + rename); concurrent writes of one key are not ordered.
//
// Every Store remembers the last value it saw per key (its snapshot). The watcher
// compares the directory against it, so writes made through this Store never
// come back as storage events.
type Store struct {
	dir      string
	snapshot *xsync.MapOf[string, string]

	// mu serializes own writes with the watcher's diff of a key
	mu sync.Mutex
}

// Open opens (and creates) the storage directory
func Open(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	s := &Store{
		dir:      filepath.Clean(dir),
		snapshot: xsync.NewMapOf[string, string](),
	}

	keys, err := s.listKeys()
	if err != nil {
		return nil, err
	}
	for _, key := range keys {
		if value, ok := s.GetItem(key); ok {
			s.snapshot.Store(key, value)
		}
	}
	Logger.Debugf("opened %s with %d keys", s.dir, len(keys))
	return s, nil
}

// Dir returns the storage directory
func (s *Store) Dir() string {
	return s.dir
}

// --------------------------------------------------------------------------
// Interface Methods (docu see native.Storage)
// --------------------------------------------------------------------------

var _ native.Storage = (*Store)(nil)

func (s *Store) GetItem(key string) (string, bool) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			Logger.Warningf("read %q: %v", key, err)
		}
		return "", false
	}
	return string(data), true
}

func (s *Store) SetItem(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := filepath.Join(s.dir, tmpPrefix+uuid.NewString())
	if err := os.WriteFile(tmp, []byte(value), 0o644); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write %q: %w", key, err)
	}

	prev, hadPrev := s.snapshot.Load(key)
	s.snapshot.Store(key, value)

	if err := os.Rename(tmp, s.path(key)); err != nil {
		if hadPrev {
			s.snapshot.Store(key, prev)
		} else {
			s.snapshot.Delete(key)
		}
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %q: %w", key, err)
	}
	return nil
}

func (s *Store) RemoveItem(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Delete(key)
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}

func (s *Store) Keys() []string {
	keys, err := s.listKeys()
	if err != nil {
		Logger.Warningf("list keys: %v", err)
		return nil
	}
	return keys
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// diff compares the file of key with the snapshot and returns the change, if any
func (s *Store) diff(key string) (oldValue, newValue *string, changed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, hadPrev := s.snapshot.Load(key)
	curr, hasCurr := s.GetItem(key)

	switch {
	case !hadPrev && !hasCurr:
		return nil, nil, false
	case hadPrev && !hasCurr:
		s.snapshot.Delete(key)
		return &prev, nil, true
	case hadPrev && prev == curr:
		return nil, nil, false
	}

	s.snapshot.Store(key, curr)
	if hadPrev {
		return &prev, &curr, true
	}
	return nil, &curr, true
}

// snapshotKeys returns the keys the snapshot holds
func (s *Store) snapshotKeys() []string {
	keys := make([]string, 0, s.snapshot.Size())
	s.snapshot.Range(func(key string, _ string) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

func (s *Store) listKeys() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read storage dir: %w", err)
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if key, ok := decodeKey(e.Name()); ok {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, encodeKey(key))
}

// encodeKey maps any key to a portable file name
func encodeKey(key string) string {
	return keyPrefix + base64.RawURLEncoding.EncodeToString([]byte(key))
}

func decodeKey(name string) (string, bool) {
	if !strings.HasPrefix(name, keyPrefix) {
		return "", false
	}
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(name, keyPrefix))
	if err != nil {
		return "", false
	}
	return string(raw), true
}
