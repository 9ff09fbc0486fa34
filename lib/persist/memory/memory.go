package memory

import (
	"context"
	"errors"
	"fmt"
	"github.com/caplayground/caplay/lib/db"
	"github.com/caplayground/caplay/lib/db/engines/maple"
	"github.com/caplayground/caplay/lib/persist"
	"os"
	"path/filepath"
	"sync/atomic"
)

// backend keeps entries in a maple database. With a snapshot path the
// database is loaded on start and written back on Close, otherwise it is
// purely in-memory.
type backend struct {
	data     db.KVDB
	path     string
	writeIdx atomic.Uint64
}

// NewEngine creates a persistence engine whose durable layer is a maple snapshot file.
// An empty path gives a volatile engine, used in tests and for throwaway profiles.
func NewEngine(path string) (persist.Engine, error) {
	b := &backend{
		data: maple.NewMapleDB(nil),
		path: path,
	}

	if path != "" {
		if err := b.restore(); err != nil {
			return nil, err
		}
	}

	name := "memory"
	if path != "" {
		name = "maple"
	}
	return persist.NewEngine(name, b, maple.NewMapleDB(nil)), nil
}

// restore loads the snapshot if one exists
func (b *backend) restore() error {
	f, err := os.Open(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	if err := b.data.Load(f); err != nil {
		return fmt.Errorf("load snapshot %s: %w", b.path, err)
	}
	b.writeIdx.Store(b.data.WriteIdx())
	return nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see persist.Backend)
// --------------------------------------------------------------------------

func (b *backend) Scan(_ context.Context, fn func(key string, value []byte)) error {
	b.data.Range(func(key string, value []byte) bool {
		fn(key, append([]byte(nil), value...))
		return true
	})
	return nil
}

func (b *backend) Read(_ context.Context, key string) ([]byte, bool, error) {
	value, ok := b.data.Get(key)
	return value, ok, nil
}

func (b *backend) Write(_ context.Context, key string, value []byte) error {
	b.data.Set(key, value, b.writeIdx.Add(1))
	return nil
}

// Close writes the snapshot atomically (temp file + rename)
func (b *backend) Close() error {
	defer b.data.Close()

	if b.path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(b.path), ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	if err := b.data.Save(tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), b.path)
}
