package types_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/larder/internal/adapters/memory"
	"github.com/mesh-intelligence/larder/pkg/types"
)

func TestFile_Accessors(t *testing.T) {
	a := memory.New("local", 0)
	f := types.NewFile(a, "saves/slot1.dat")

	assert.Same(t, a, f.Adapter())
	assert.Equal(t, "saves/slot1.dat", f.Path())
	assert.Equal(t, "local:saves/slot1.dat", f.String())
	assert.Equal(t, "orphan.dat", types.NewFile(nil, "orphan.dat").String())
}

func TestFile_Same(t *testing.T) {
	a := memory.New("local", 0)
	b := memory.New("local", 1)

	tests := []struct {
		name string
		x, y *types.File
		want bool
	}{
		{"same adapter and path", types.NewFile(a, "p"), types.NewFile(a, "p"), true},
		{"different path", types.NewFile(a, "p"), types.NewFile(a, "q"), false},
		{"same name, different adapter", types.NewFile(a, "p"), types.NewFile(b, "p"), false},
		{"nil handle", types.NewFile(a, "p"), nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.x.Same(tt.y))
		})
	}

	assert.True(t, types.NewFile(a, "p").SameAdapter(types.NewFile(a, "q")))
	assert.False(t, types.NewFile(a, "p").SameAdapter(types.NewFile(b, "p")))
}

func TestFile_Delegates(t *testing.T) {
	ctx := context.Background()
	a := memory.New("local", 0)
	f := types.NewFile(a, "a.dat")

	ok, err := f.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, f.Write(ctx, []byte("hi")))
	got, err := f.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), got)

	require.NoError(t, f.Move(ctx, "b.dat"))
	assert.Equal(t, "b.dat", f.Path())
	ok, err = a.Exists(ctx, "a.dat")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, a.Write(ctx, "c.dat", nil))
	assert.ErrorIs(t, f.Move(ctx, "c.dat"), types.ErrConflict)
	assert.Equal(t, "b.dat", f.Path(), "failed move keeps the old path")

	require.NoError(t, f.Delete(ctx))
	assert.ErrorIs(t, f.Delete(ctx), types.ErrNotFound)
}
