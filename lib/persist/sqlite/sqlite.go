package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/caplayground/caplay/lib/db/engines/maple"
	"github.com/caplayground/caplay/lib/persist"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS entries (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// Backend stores entries in a SQLite database.
type Backend struct {
	sqlDB *sql.DB
}

// Open opens (and creates if needed) the SQLite database at path.
// Several processes may open the same file; WAL mode and a busy timeout let
// their writes interleave, the last write of a key wins.
func Open(path string) (*Backend, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	dsn := "file:" + cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// the engine worker is the only user, one connection avoids SQLITE_BUSY between our own connections
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Backend{sqlDB: sqlDB}, nil
}

// NewEngine opens the database at path and wraps it in a persistence engine
// with a maple read cache.
func NewEngine(path string) (persist.Engine, error) {
	b, err := Open(path)
	if err != nil {
		return nil, err
	}
	return persist.NewEngine("sqlite", b, maple.NewMapleDB(nil)), nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see persist.Backend)
// --------------------------------------------------------------------------

func (b *Backend) Scan(ctx context.Context, fn func(key string, value []byte)) error {
	rows, err := b.sqlDB.QueryContext(ctx, `SELECT key, value FROM entries`)
	if err != nil {
		return fmt.Errorf("scan entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key   string
			value []byte
		)
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("scan entry: %w", err)
		}
		fn(key, value)
	}
	return rows.Err()
}

func (b *Backend) Read(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := b.sqlDB.QueryRowContext(ctx, `SELECT value FROM entries WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get entry: %w", err)
	}
	return value, true, nil
}

func (b *Backend) Write(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := b.sqlDB.ExecContext(
		ctx,
		`INSERT INTO entries (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put entry: %w", err)
	}
	return nil
}

// Close releases the underlying SQLite connection.
func (b *Backend) Close() error {
	if b == nil || b.sqlDB == nil {
		return nil
	}
	return b.sqlDB.Close()
}
