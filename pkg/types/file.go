package types

import "context"

// File identifies a path within a specific adapter. It holds no state of its
// own: every operation forwards to the adapter with the handle's path and
// returns the adapter's error unchanged.
type File struct {
	adapter Adapter
	path    string
}

// NewFile returns a handle for path on adapter.
func NewFile(adapter Adapter, path string) *File {
	return &File{adapter: adapter, path: path}
}

// Adapter returns the owning adapter.
func (f *File) Adapter() Adapter { return f.adapter }

// Path returns the adapter-relative path.
func (f *File) Path() string { return f.path }

// String formats the handle as "adapter:path".
func (f *File) String() string {
	if f.adapter == nil {
		return f.path
	}
	return f.adapter.Name() + ":" + f.path
}

// Same reports whether f and other name the same location: the same adapter
// and paths equal under the adapter's comparison.
func (f *File) Same(other *File) bool {
	if f == nil || other == nil {
		return f == other
	}
	if f.adapter != other.adapter {
		return false
	}
	if pc, ok := f.adapter.(PathComparer); ok {
		return pc.SamePath(f.path, other.path)
	}
	return f.path == other.path
}

// SameAdapter reports whether f and other are bound to the same adapter.
func (f *File) SameAdapter(other *File) bool {
	return f.adapter == other.adapter
}

// Exists reports whether the file is stored.
func (f *File) Exists(ctx context.Context) (bool, error) {
	return f.adapter.Exists(ctx, f.path)
}

// Read returns the file's bytes.
func (f *File) Read(ctx context.Context) ([]byte, error) {
	return f.adapter.Read(ctx, f.path)
}

// Write replaces the file's bytes.
func (f *File) Write(ctx context.Context, data []byte) error {
	return f.adapter.Write(ctx, f.path, data)
}

// Move renames the file within its adapter and, on success, points the
// handle at newPath.
func (f *File) Move(ctx context.Context, newPath string) error {
	if err := f.adapter.Move(ctx, f.path, newPath); err != nil {
		return err
	}
	f.path = newPath
	return nil
}

// Delete removes the file.
func (f *File) Delete(ctx context.Context) error {
	return f.adapter.Delete(ctx, f.path)
}
