// Package disk implements an Adapter over a directory tree on an afero
// filesystem. Paths are slash-separated and relative to the adapter root.
//
// Writes use the temp-file, fsync, rename pattern so readers never observe a
// partial file. Move fails with ErrConflict on an existing destination and
// Delete fails with ErrNotFound on a missing path.
package disk

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/mesh-intelligence/larder/pkg/types"
)

const (
	tempPrefix = ".larder-"
	tempSuffix = ".tmp"
)

var (
	errInvalidPath  = errors.New("invalid path")
	errReservedPath = errors.New("reserved path: names matching " + tempPrefix + "*" + tempSuffix + " hold in-flight writes")
)

// Adapter stores files under the root of an afero filesystem.
type Adapter struct {
	types.AdapterInfo

	fs afero.Fs
	// mu serializes mutations so the existence check in Move cannot race a
	// concurrent write through this adapter.
	mu sync.Mutex
}

// New returns an enabled adapter over fsys. The filesystem root is the
// adapter root.
func New(name string, priority int, fsys afero.Fs) *Adapter {
	return &Adapter{
		AdapterInfo: types.AdapterInfo{AdapterName: name, AdapterPriority: priority, AdapterEnabled: true},
		fs:          fsys,
	}
}

// NewOS returns an enabled adapter rooted at dir on the host filesystem,
// creating dir if it does not exist.
func NewOS(name string, priority int, dir string) (*Adapter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, types.IOError("open", name, dir, err)
	}
	return New(name, priority, afero.NewBasePathFs(afero.NewOsFs(), dir)), nil
}

// SetEnabled toggles the enabled flag. Call before registering the adapter.
func (a *Adapter) SetEnabled(enabled bool) {
	a.AdapterEnabled = enabled
}

// SamePath compares cleaned paths, so "saves/../a.dat" and "a.dat" are the
// same location.
func (a *Adapter) SamePath(p, q string) bool {
	cp, errP := clean(p)
	cq, errQ := clean(q)
	return errP == nil && errQ == nil && cp == cq
}

// clean validates an adapter path and returns its absolute form within the
// filesystem. Temp file names are reserved, so List and Exists always agree.
func clean(p string) (string, error) {
	c := path.Clean("/" + filepath.ToSlash(p))
	if c == "/" {
		return "", errInvalidPath
	}
	if isTemp(c) {
		return "", errReservedPath
	}
	return c, nil
}

func isTemp(name string) bool {
	base := path.Base(name)
	return strings.HasPrefix(base, tempPrefix) && strings.HasSuffix(base, tempSuffix)
}

// List walks the tree and returns file paths in lexicographic order.
// Directories and in-flight temp files are skipped.
func (a *Adapter) List(_ context.Context, pred func(string) bool) ([]string, error) {
	var paths []string
	err := afero.Walk(a.fs, "/", func(name string, info fs.FileInfo, err error) error {
		if err != nil {
			if name == "/" && errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if info.IsDir() || isTemp(name) {
			return nil
		}
		rel := strings.TrimPrefix(filepath.ToSlash(name), "/")
		if pred == nil || pred(rel) {
			paths = append(paths, rel)
		}
		return nil
	})
	if err != nil {
		return nil, types.IOError("list", a.Name(), "", err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Exists reports whether a regular file is stored at p.
func (a *Adapter) Exists(_ context.Context, p string) (bool, error) {
	name, err := clean(p)
	if err != nil {
		return false, types.IOError("exists", a.Name(), p, err)
	}
	return a.isFile("exists", p, name)
}

func (a *Adapter) isFile(op, p, name string) (bool, error) {
	info, err := a.fs.Stat(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, types.IOError(op, a.Name(), p, err)
	}
	return !info.IsDir(), nil
}

// Read returns the bytes at p.
func (a *Adapter) Read(_ context.Context, p string) ([]byte, error) {
	name, err := clean(p)
	if err != nil {
		return nil, types.IOError("read", a.Name(), p, err)
	}
	ok, err := a.isFile("read", p, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, types.NotFound("read", a.Name(), p)
	}
	data, err := afero.ReadFile(a.fs, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, types.NotFound("read", a.Name(), p)
		}
		return nil, types.IOError("read", a.Name(), p, err)
	}
	return data, nil
}

// Write atomically replaces the bytes at p, creating parent directories.
func (a *Adapter) Write(_ context.Context, p string, data []byte) error {
	name, err := clean(p)
	if err != nil {
		return types.IOError("write", a.Name(), p, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	return types.IOError("write", a.Name(), p, a.writeAtomic(name, data))
}

// writeAtomic writes data to a temp file beside name, syncs it and renames
// it into place.
func (a *Adapter) writeAtomic(name string, data []byte) error {
	dir := path.Dir(name)
	if err := a.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := afero.TempFile(a.fs, dir, tempPrefix+"*"+tempSuffix)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		a.fs.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		a.fs.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		a.fs.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := a.fs.Rename(tmpName, name); err != nil {
		a.fs.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Move renames p to newPath.
func (a *Adapter) Move(_ context.Context, p, newPath string) error {
	src, err := clean(p)
	if err != nil {
		return types.IOError("move", a.Name(), p, err)
	}
	dst, err := clean(newPath)
	if err != nil {
		return types.IOError("move", a.Name(), newPath, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	ok, err := a.isFile("move", p, src)
	if err != nil {
		return err
	}
	if !ok {
		return types.NotFound("move", a.Name(), p)
	}
	if src == dst {
		return nil
	}
	exists, err := afero.Exists(a.fs, dst)
	if err != nil {
		return types.IOError("move", a.Name(), newPath, err)
	}
	if exists {
		return types.Conflict("move", a.Name(), newPath)
	}
	if err := a.fs.MkdirAll(path.Dir(dst), 0o755); err != nil {
		return types.IOError("move", a.Name(), newPath, err)
	}
	return types.IOError("move", a.Name(), p, a.fs.Rename(src, dst))
}

// Delete removes p.
func (a *Adapter) Delete(_ context.Context, p string) error {
	name, err := clean(p)
	if err != nil {
		return types.IOError("delete", a.Name(), p, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	ok, err := a.isFile("delete", p, name)
	if err != nil {
		return err
	}
	if !ok {
		return types.NotFound("delete", a.Name(), p)
	}
	return types.IOError("delete", a.Name(), p, a.fs.Remove(name))
}
