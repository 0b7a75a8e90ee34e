// Package objstore implements an Adapter over a NATS JetStream object store
// bucket, the cloud-blob medium.
//
// Object puts are atomic. The object store has no rename, so Move copies the
// object to the new name and then deletes the old one; an interruption in
// between leaves both objects rather than neither. Move fails with
// ErrConflict on an existing destination and Delete fails with ErrNotFound
// on a missing path.
package objstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/mesh-intelligence/larder/pkg/types"
)

var _ types.Adapter = (*Adapter)(nil)

// Adapter stores files as objects in one bucket.
type Adapter struct {
	types.AdapterInfo

	store jetstream.ObjectStore
	conn  *nats.Conn // owned connection, nil when the store was supplied

	// mu serializes mutations made through this adapter so Move's
	// destination check cannot race its own writes.
	mu sync.Mutex
}

// New returns an enabled adapter over an existing object store.
func New(name string, priority int, store jetstream.ObjectStore) *Adapter {
	return &Adapter{
		AdapterInfo: types.AdapterInfo{AdapterName: name, AdapterPriority: priority, AdapterEnabled: true},
		store:       store,
	}
}

// Dial connects to the NATS server at url, creates the bucket if needed and
// returns an enabled adapter owning the connection.
func Dial(ctx context.Context, name string, priority int, url, bucket string) (*Adapter, error) {
	nc, err := nats.Connect(url, nats.Name("larder-"+name))
	if err != nil {
		return nil, types.IOError("open", name, bucket, fmt.Errorf("connect %s: %w", url, err))
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, types.IOError("open", name, bucket, fmt.Errorf("jetstream: %w", err))
	}
	store, err := js.CreateOrUpdateObjectStore(ctx, jetstream.ObjectStoreConfig{
		Bucket:      bucket,
		Description: "larder adapter " + name,
	})
	if err != nil {
		nc.Close()
		return nil, types.IOError("open", name, bucket, fmt.Errorf("object store: %w", err))
	}
	a := New(name, priority, store)
	a.conn = nc
	return a, nil
}

// SetEnabled toggles the enabled flag. Call before registering the adapter.
func (a *Adapter) SetEnabled(enabled bool) {
	a.AdapterEnabled = enabled
}

// Close drains the owned connection, if any.
func (a *Adapter) Close() error {
	if a.conn == nil {
		return nil
	}
	return a.conn.Drain()
}

func isNotFound(err error) bool {
	return errors.Is(err, jetstream.ErrObjectNotFound)
}

// List returns live object names in lexicographic order.
func (a *Adapter) List(ctx context.Context, pred func(string) bool) ([]string, error) {
	infos, err := a.store.List(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoObjectsFound) {
			return nil, nil
		}
		return nil, types.IOError("list", a.Name(), "", err)
	}

	var paths []string
	for _, info := range infos {
		if info.Deleted {
			continue
		}
		if pred == nil || pred(info.Name) {
			paths = append(paths, info.Name)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Exists reports whether a live object is stored under path.
func (a *Adapter) Exists(ctx context.Context, path string) (bool, error) {
	info, err := a.store.GetInfo(ctx, path)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, types.IOError("exists", a.Name(), path, err)
	}
	return !info.Deleted, nil
}

// Read returns the object's bytes.
func (a *Adapter) Read(ctx context.Context, path string) ([]byte, error) {
	data, err := a.store.GetBytes(ctx, path)
	if err != nil {
		if isNotFound(err) {
			return nil, types.NotFound("read", a.Name(), path)
		}
		return nil, types.IOError("read", a.Name(), path, err)
	}
	return data, nil
}

// Write puts the object.
func (a *Adapter) Write(ctx context.Context, path string, data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, err := a.store.PutBytes(ctx, path, data)
	return types.IOError("write", a.Name(), path, err)
}

// Move copies the object to newPath and then deletes path.
func (a *Adapter) Move(ctx context.Context, path, newPath string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	data, err := a.store.GetBytes(ctx, path)
	if err != nil {
		if isNotFound(err) {
			return types.NotFound("move", a.Name(), path)
		}
		return types.IOError("move", a.Name(), path, err)
	}
	if path == newPath {
		return nil
	}
	taken, err := a.Exists(ctx, newPath)
	if err != nil {
		return err
	}
	if taken {
		return types.Conflict("move", a.Name(), newPath)
	}
	if _, err := a.store.PutBytes(ctx, newPath, data); err != nil {
		return types.IOError("move", a.Name(), newPath, err)
	}
	return types.IOError("move", a.Name(), path, a.store.Delete(ctx, path))
}

// Delete removes the object.
func (a *Adapter) Delete(ctx context.Context, path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.store.Delete(ctx, path); err != nil {
		if isNotFound(err) {
			return types.NotFound("delete", a.Name(), path)
		}
		return types.IOError("delete", a.Name(), path, err)
	}
	return nil
}
