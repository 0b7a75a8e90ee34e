// Package sqlite implements an Adapter that keeps every file as a row of a
// single SQLite table. Each write is one UPSERT statement, so readers see the
// old or the new row and nothing in between; every write stamps a UUIDv7
// revision.
//
// Move fails with ErrConflict on an existing destination and Delete fails
// with ErrNotFound on a missing path.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/larder/pkg/types"
)

//go:embed schema.sql
var schemaSQL string

// InMemory is the database path for a private in-memory database.
const InMemory = ":memory:"

var errEmptyPath = errors.New("path must not be empty")

// Adapter stores files in a SQLite database.
type Adapter struct {
	types.AdapterInfo

	db *sql.DB
}

// Open opens (creating if needed) the database at dbPath and returns an
// enabled adapter. Use InMemory for a private in-memory database.
func Open(name string, priority int, dbPath string) (*Adapter, error) {
	if dbPath != InMemory {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, types.IOError("open", name, dbPath, err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, types.IOError("open", name, dbPath, err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, types.IOError("open", name, dbPath, fmt.Errorf("apply schema: %w", err))
	}

	return &Adapter{
		AdapterInfo: types.AdapterInfo{AdapterName: name, AdapterPriority: priority, AdapterEnabled: true},
		db:          db,
	}, nil
}

// SetEnabled toggles the enabled flag. Call before registering the adapter.
func (a *Adapter) SetEnabled(enabled bool) {
	a.AdapterEnabled = enabled
}

// Close releases the database.
func (a *Adapter) Close() error {
	return a.db.Close()
}

// newRevision generates a UUID v7 revision stamp.
func newRevision() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// List returns stored paths in lexicographic order.
func (a *Adapter) List(ctx context.Context, pred func(string) bool) ([]string, error) {
	rows, err := a.db.QueryContext(ctx, "SELECT path FROM files ORDER BY path")
	if err != nil {
		return nil, types.IOError("list", a.Name(), "", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, types.IOError("list", a.Name(), "", err)
		}
		if pred == nil || pred(p) {
			paths = append(paths, p)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, types.IOError("list", a.Name(), "", err)
	}
	return paths, nil
}

// Exists reports whether a row is stored for path.
func (a *Adapter) Exists(ctx context.Context, path string) (bool, error) {
	var one int
	err := a.db.QueryRowContext(ctx, "SELECT 1 FROM files WHERE path = ?", path).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, types.IOError("exists", a.Name(), path, err)
	}
	return true, nil
}

// Read returns the bytes stored for path.
func (a *Adapter) Read(ctx context.Context, path string) ([]byte, error) {
	var data []byte
	err := a.db.QueryRowContext(ctx, "SELECT data FROM files WHERE path = ?", path).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NotFound("read", a.Name(), path)
	}
	if err != nil {
		return nil, types.IOError("read", a.Name(), path, err)
	}
	return data, nil
}

// Revision returns the revision stamped by the last write of path.
func (a *Adapter) Revision(ctx context.Context, path string) (string, error) {
	var rev string
	err := a.db.QueryRowContext(ctx, "SELECT revision FROM files WHERE path = ?", path).Scan(&rev)
	if errors.Is(err, sql.ErrNoRows) {
		return "", types.NotFound("revision", a.Name(), path)
	}
	if err != nil {
		return "", types.IOError("revision", a.Name(), path, err)
	}
	return rev, nil
}

// Write upserts the row for path.
func (a *Adapter) Write(ctx context.Context, path string, data []byte) error {
	if path == "" {
		return types.IOError("write", a.Name(), path, errEmptyPath)
	}
	if data == nil {
		data = []byte{}
	}
	_, err := a.db.ExecContext(ctx, `INSERT INTO files (path, data, revision, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(path) DO UPDATE SET
    data = excluded.data,
    revision = excluded.revision,
    updated_at = excluded.updated_at`,
		path, data, newRevision(), now())
	return types.IOError("write", a.Name(), path, err)
}

// Move renames the row for path inside one transaction.
func (a *Adapter) Move(ctx context.Context, path, newPath string) error {
	if newPath == "" {
		return types.IOError("move", a.Name(), newPath, errEmptyPath)
	}
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return types.IOError("move", a.Name(), path, err)
	}
	defer tx.Rollback()

	exists := func(p string) (bool, error) {
		var one int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM files WHERE path = ?", p).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return err == nil, err
	}

	ok, err := exists(path)
	if err != nil {
		return types.IOError("move", a.Name(), path, err)
	}
	if !ok {
		return types.NotFound("move", a.Name(), path)
	}
	if path == newPath {
		return nil
	}
	taken, err := exists(newPath)
	if err != nil {
		return types.IOError("move", a.Name(), newPath, err)
	}
	if taken {
		return types.Conflict("move", a.Name(), newPath)
	}

	if _, err := tx.ExecContext(ctx, "UPDATE files SET path = ?, updated_at = ? WHERE path = ?", newPath, now(), path); err != nil {
		return types.IOError("move", a.Name(), path, err)
	}
	return types.IOError("move", a.Name(), path, tx.Commit())
}

// Delete removes the row for path.
func (a *Adapter) Delete(ctx context.Context, path string) error {
	res, err := a.db.ExecContext(ctx, "DELETE FROM files WHERE path = ?", path)
	if err != nil {
		return types.IOError("delete", a.Name(), path, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return types.IOError("delete", a.Name(), path, err)
	}
	if n == 0 {
		return types.NotFound("delete", a.Name(), path)
	}
	return nil
}
