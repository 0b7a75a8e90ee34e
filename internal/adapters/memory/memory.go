// Package memory implements an in-process Adapter backed by a map.
// Move fails with ErrConflict on an existing destination; Delete fails with
// ErrNotFound on a missing path.
package memory

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// Adapter keeps files in memory. Stored slices are copied on the way in and
// on the way out so callers never share backing arrays with the store.
type Adapter struct {
	types.AdapterInfo

	mu    sync.RWMutex
	files map[string][]byte
}

// New returns an empty, enabled memory adapter.
func New(name string, priority int) *Adapter {
	return &Adapter{
		AdapterInfo: types.AdapterInfo{AdapterName: name, AdapterPriority: priority, AdapterEnabled: true},
		files:       make(map[string][]byte),
	}
}

// SetEnabled toggles the enabled flag.
func (a *Adapter) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.AdapterEnabled = enabled
}

// Enabled reports whether the adapter is enabled.
func (a *Adapter) Enabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.AdapterEnabled
}

// List returns stored paths in lexicographic order.
func (a *Adapter) List(_ context.Context, pred func(string) bool) ([]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	paths := make([]string, 0, len(a.files))
	for p := range a.files {
		if pred == nil || pred(p) {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Exists reports whether path is stored.
func (a *Adapter) Exists(_ context.Context, path string) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.files[path]
	return ok, nil
}

// Read returns a copy of the bytes at path.
func (a *Adapter) Read(_ context.Context, path string) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	data, ok := a.files[path]
	if !ok {
		return nil, types.NotFound("read", a.Name(), path)
	}
	return bytes.Clone(data), nil
}

// Write stores a copy of data at path.
func (a *Adapter) Write(_ context.Context, path string, data []byte) error {
	cp := bytes.Clone(data)
	if cp == nil {
		cp = []byte{}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.files[path] = cp
	return nil
}

// Move renames path to newPath.
func (a *Adapter) Move(_ context.Context, path, newPath string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	data, ok := a.files[path]
	if !ok {
		return types.NotFound("move", a.Name(), path)
	}
	if path == newPath {
		return nil
	}
	if _, exists := a.files[newPath]; exists {
		return types.Conflict("move", a.Name(), newPath)
	}
	a.files[newPath] = data
	delete(a.files, path)
	return nil
}

// Delete removes path.
func (a *Adapter) Delete(_ context.Context, path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.files[path]; !ok {
		return types.NotFound("delete", a.Name(), path)
	}
	delete(a.files, path)
	return nil
}

// Len returns the number of stored files.
func (a *Adapter) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.files)
}
