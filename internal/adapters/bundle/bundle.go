// Package bundle implements a read-only Adapter over an io/fs tree, for
// resources packaged with the application (an embed.FS or os.DirFS).
// Write, Move and Delete always fail with ErrReadOnly.
package bundle

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// Adapter serves files from an fs.FS.
type Adapter struct {
	types.AdapterInfo

	fsys fs.FS
}

// New returns an enabled read-only adapter over fsys.
func New(name string, priority int, fsys fs.FS) *Adapter {
	return &Adapter{
		AdapterInfo: types.AdapterInfo{AdapterName: name, AdapterPriority: priority, AdapterEnabled: true},
		fsys:        fsys,
	}
}

// NewDir returns an adapter serving the directory tree at dir.
func NewDir(name string, priority int, dir string) (*Adapter, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, types.IOError("open", name, dir, err)
	}
	if !info.IsDir() {
		return nil, types.IOError("open", name, dir, fmt.Errorf("not a directory"))
	}
	return New(name, priority, os.DirFS(dir)), nil
}

// SetEnabled toggles the enabled flag. Call before registering the adapter.
func (a *Adapter) SetEnabled(enabled bool) {
	a.AdapterEnabled = enabled
}

// fsPath converts an adapter path to an io/fs path.
func fsPath(p string) (string, error) {
	name := strings.TrimPrefix(p, "/")
	if name == "" || name == "." || !fs.ValidPath(name) {
		return "", fmt.Errorf("invalid path %q", p)
	}
	return name, nil
}

// List returns every regular file in lexicographic order.
func (a *Adapter) List(_ context.Context, pred func(string) bool) ([]string, error) {
	var paths []string
	err := fs.WalkDir(a.fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if pred == nil || pred(name) {
			paths = append(paths, name)
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
	name, err := fsPath(p)
	if err != nil {
		return false, nil
	}
	info, err := fs.Stat(a.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, types.IOError("exists", a.Name(), p, err)
	}
	return !info.IsDir(), nil
}

// Read returns the bytes at p.
func (a *Adapter) Read(ctx context.Context, p string) ([]byte, error) {
	ok, err := a.Exists(ctx, p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, types.NotFound("read", a.Name(), p)
	}
	name, _ := fsPath(p)
	data, err := fs.ReadFile(a.fsys, name)
	if err != nil {
		return nil, types.IOError("read", a.Name(), p, err)
	}
	return data, nil
}

// Write always fails: packaged resources are immutable.
func (a *Adapter) Write(_ context.Context, p string, _ []byte) error {
	return types.ReadOnly("write", a.Name(), p)
}

// Move always fails: packaged resources are immutable.
func (a *Adapter) Move(_ context.Context, p, _ string) error {
	return types.ReadOnly("move", a.Name(), p)
}

// Delete always fails: packaged resources are immutable.
func (a *Adapter) Delete(_ context.Context, p string) error {
	return types.ReadOnly("delete", a.Name(), p)
}
