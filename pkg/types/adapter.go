package types

import "context"

// Adapter stores raw bytes under adapter-defined path strings on one storage
// medium. Mutations touch only the adapter's own medium.
//
// Implementations document their Move and Delete policies: every adapter in
// this module fails Move with ErrConflict when the destination exists and
// Delete with ErrNotFound when the path is absent.
type Adapter interface {
	// Name identifies the adapter within a persistence system.
	Name() string

	// Priority orders adapters ascending; lower values come first.
	Priority() int

	// Enabled gates participation in first-enabled-adapter queries.
	Enabled() bool

	// List returns every stored path for which pred returns true, or every
	// path when pred is nil. The order is stable for an unchanged store.
	List(ctx context.Context, pred func(path string) bool) ([]string, error)

	// Exists reports whether path is stored.
	Exists(ctx context.Context, path string) (bool, error)

	// Read returns the bytes stored at path.
	// Returns ErrNotFound if path is absent, ErrIO on medium failure.
	Read(ctx context.Context, path string) ([]byte, error)

	// Write creates or replaces the bytes at path. Readers observe either the
	// previous content or the new content, never a partial write.
	Write(ctx context.Context, path string, data []byte) error

	// Move renames path to newPath within this adapter.
	// Returns ErrNotFound if path is absent, ErrConflict if newPath exists.
	Move(ctx context.Context, path, newPath string) error

	// Delete removes path. Returns ErrNotFound if path is absent.
	Delete(ctx context.Context, path string) error
}

// PathComparer is implemented by adapters whose path comparison is not exact
// string equality (for example case-insensitive media).
type PathComparer interface {
	SamePath(a, b string) bool
}

// AdapterInfo holds the identity attributes shared by every adapter and
// implements the Name, Priority and Enabled methods. Adapters embed it.
type AdapterInfo struct {
	AdapterName     string
	AdapterPriority int
	AdapterEnabled  bool
}

// Name returns the adapter name.
func (i AdapterInfo) Name() string { return i.AdapterName }

// Priority returns the adapter priority.
func (i AdapterInfo) Priority() int { return i.AdapterPriority }

// Enabled reports whether the adapter is enabled.
func (i AdapterInfo) Enabled() bool { return i.AdapterEnabled }
