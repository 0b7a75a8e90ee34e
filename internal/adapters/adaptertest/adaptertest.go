// Package adaptertest provides the conformance suite shared by every
// writable adapter. Adapter packages call Run from their own tests.
package adaptertest

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// Factory returns a fresh, empty adapter for one subtest.
type Factory func(t *testing.T) types.Adapter

// Run exercises the Adapter contract against adapters produced by newAdapter.
func Run(t *testing.T, newAdapter Factory) {
	t.Helper()

	ctx := context.Background()

	t.Run("write then read returns same bytes", func(t *testing.T) {
		a := newAdapter(t)
		require.NoError(t, a.Write(ctx, "a.dat", []byte("alpha")))

		got, err := a.Read(ctx, "a.dat")
		require.NoError(t, err)
		assert.Equal(t, []byte("alpha"), got)
	})

	t.Run("write overwrites existing content", func(t *testing.T) {
		a := newAdapter(t)
		require.NoError(t, a.Write(ctx, "a.dat", []byte("first version, longer")))
		require.NoError(t, a.Write(ctx, "a.dat", []byte("second")))

		got, err := a.Read(ctx, "a.dat")
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), got)
	})

	t.Run("write accepts empty content", func(t *testing.T) {
		a := newAdapter(t)
		require.NoError(t, a.Write(ctx, "empty.dat", nil))

		ok, err := a.Exists(ctx, "empty.dat")
		require.NoError(t, err)
		assert.True(t, ok)

		got, err := a.Read(ctx, "empty.dat")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("read missing path returns ErrNotFound", func(t *testing.T) {
		a := newAdapter(t)
		_, err := a.Read(ctx, "missing.dat")
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("exists tracks writes and deletes", func(t *testing.T) {
		a := newAdapter(t)
		ok, err := a.Exists(ctx, "a.dat")
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, a.Write(ctx, "a.dat", []byte("x")))
		ok, err = a.Exists(ctx, "a.dat")
		require.NoError(t, err)
		assert.True(t, ok)

		require.NoError(t, a.Delete(ctx, "a.dat"))
		ok, err = a.Exists(ctx, "a.dat")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("list returns sorted paths including nested ones", func(t *testing.T) {
		a := newAdapter(t)
		for _, p := range []string{"b.dat", "a.dat", "saves/slot1.dat"} {
			require.NoError(t, a.Write(ctx, p, []byte(p)))
		}

		got, err := a.List(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"a.dat", "b.dat", "saves/slot1.dat"}, got)

		again, err := a.List(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, got, again)
	})

	t.Run("list applies predicate", func(t *testing.T) {
		a := newAdapter(t)
		for i := range 4 {
			require.NoError(t, a.Write(ctx, fmt.Sprintf("f%d.dat", i), []byte{byte(i)}))
		}

		got, err := a.List(ctx, func(p string) bool { return p == "f1.dat" || p == "f3.dat" })
		require.NoError(t, err)
		assert.Equal(t, []string{"f1.dat", "f3.dat"}, got)
	})

	t.Run("list on empty store returns no paths", func(t *testing.T) {
		a := newAdapter(t)
		got, err := a.List(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("move renames content", func(t *testing.T) {
		a := newAdapter(t)
		require.NoError(t, a.Write(ctx, "a.dat", []byte("payload")))
		require.NoError(t, a.Move(ctx, "a.dat", "moved/b.dat"))

		ok, err := a.Exists(ctx, "a.dat")
		require.NoError(t, err)
		assert.False(t, ok)

		got, err := a.Read(ctx, "moved/b.dat")
		require.NoError(t, err)
		assert.Equal(t, []byte("payload"), got)
	})

	t.Run("move missing source returns ErrNotFound", func(t *testing.T) {
		a := newAdapter(t)
		err := a.Move(ctx, "missing.dat", "b.dat")
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("move onto existing destination returns ErrConflict", func(t *testing.T) {
		a := newAdapter(t)
		require.NoError(t, a.Write(ctx, "a.dat", []byte("a")))
		require.NoError(t, a.Write(ctx, "b.dat", []byte("b")))

		err := a.Move(ctx, "a.dat", "b.dat")
		assert.ErrorIs(t, err, types.ErrConflict)

		got, err := a.Read(ctx, "b.dat")
		require.NoError(t, err)
		assert.Equal(t, []byte("b"), got, "destination must be untouched")
		got, err = a.Read(ctx, "a.dat")
		require.NoError(t, err)
		assert.Equal(t, []byte("a"), got, "source must be untouched")
	})

	t.Run("delete missing path returns ErrNotFound", func(t *testing.T) {
		a := newAdapter(t)
		err := a.Delete(ctx, "missing.dat")
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("file handle move follows the new path", func(t *testing.T) {
		a := newAdapter(t)
		f := types.NewFile(a, "a.dat")
		require.NoError(t, f.Write(ctx, []byte("handle")))
		require.NoError(t, f.Move(ctx, "c.dat"))
		assert.Equal(t, "c.dat", f.Path())

		got, err := f.Read(ctx)
		require.NoError(t, err)
		assert.Equal(t, []byte("handle"), got)
	})
}
