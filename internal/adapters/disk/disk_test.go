package disk

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/larder/internal/adapters/adaptertest"
	"github.com/mesh-intelligence/larder/pkg/types"
)

func TestAdapterConformance_MemMapFs(t *testing.T) {
	adaptertest.Run(t, func(t *testing.T) types.Adapter {
		return New("disk", 0, afero.NewMemMapFs())
	})
}

func TestAdapterConformance_OS(t *testing.T) {
	adaptertest.Run(t, func(t *testing.T) types.Adapter {
		a, err := NewOS("disk", 0, t.TempDir())
		require.NoError(t, err)
		return a
	})
}

func TestNewOS_CreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "root")
	_, err := NewOS("disk", 0, root)
	require.NoError(t, err)

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestAdapter_WritesLandUnderRoot(t *testing.T) {
	root := t.TempDir()
	a, err := NewOS("disk", 0, root)
	require.NoError(t, err)

	require.NoError(t, a.Write(context.Background(), "saves/slot1.dat", []byte("state")))

	data, err := os.ReadFile(filepath.Join(root, "saves", "slot1.dat"))
	require.NoError(t, err)
	assert.Equal(t, []byte("state"), data)

	entries, err := os.ReadDir(filepath.Join(root, "saves"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestAdapter_ListSkipsTempFilesAndDirs(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/empty/dir", 0o755))
	require.NoError(t, afero.WriteFile(fsys, "/"+tempPrefix+"123"+tempSuffix, []byte("partial"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/real.dat", []byte("real"), 0o644))

	a := New("disk", 0, fsys)
	got, err := a.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"real.dat"}, got)
}

func TestAdapter_TempNamesAreReserved(t *testing.T) {
	fsys := afero.NewMemMapFs()
	a := New("disk", 0, fsys)
	ctx := context.Background()
	reserved := "saves/" + tempPrefix + "user" + tempSuffix

	err := a.Write(ctx, reserved, []byte("x"))
	assert.ErrorIs(t, err, types.ErrIO)

	require.NoError(t, a.Write(ctx, "saves/a.dat", []byte("x")))
	err = a.Move(ctx, "saves/a.dat", reserved)
	assert.ErrorIs(t, err, types.ErrIO)

	_, err = a.Exists(ctx, reserved)
	assert.ErrorIs(t, err, types.ErrIO)

	got, err := a.List(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"saves/a.dat"}, got)

	// Names that only share the prefix or the suffix stay usable.
	require.NoError(t, a.Write(ctx, tempPrefix+"notes.dat", []byte("x")))
	require.NoError(t, a.Write(ctx, "draft"+tempSuffix, []byte("x")))
	ok, err := a.Exists(ctx, "draft"+tempSuffix)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAdapter_PathsCannotEscapeRoot(t *testing.T) {
	fsys := afero.NewMemMapFs()
	a := New("disk", 0, fsys)
	ctx := context.Background()

	require.NoError(t, a.Write(ctx, "../../outside.dat", []byte("x")))

	ok, err := afero.Exists(fsys, "/outside.dat")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAdapter_RootPathIsInvalid(t *testing.T) {
	a := New("disk", 0, afero.NewMemMapFs())
	ctx := context.Background()

	for _, p := range []string{"", "/", ".", ".."} {
		err := a.Write(ctx, p, []byte("x"))
		assert.ErrorIs(t, err, types.ErrIO, "path %q", p)
	}
}

func TestAdapter_ExistsIsFalseForDirectories(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/saves", 0o755))

	a := New("disk", 0, fsys)
	ok, err := a.Exists(context.Background(), "saves")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = a.Read(context.Background(), "saves")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestAdapter_SamePath(t *testing.T) {
	a := New("disk", 0, afero.NewMemMapFs())
	tests := []struct {
		p, q string
		want bool
	}{
		{"a.dat", "a.dat", true},
		{"saves/../a.dat", "a.dat", true},
		{"/a.dat", "a.dat", true},
		{"a.dat", "b.dat", false},
		{"", "", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, a.SamePath(tt.p, tt.q), "%q vs %q", tt.p, tt.q)
	}
}

func TestAdapter_FileSameUsesPathComparer(t *testing.T) {
	a := New("disk", 0, afero.NewMemMapFs())
	f := types.NewFile(a, "saves/../a.dat")
	assert.True(t, f.Same(types.NewFile(a, "a.dat")))
}
