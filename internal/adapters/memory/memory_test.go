package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/larder/internal/adapters/adaptertest"
	"github.com/mesh-intelligence/larder/pkg/types"
)

func TestAdapterConformance(t *testing.T) {
	adaptertest.Run(t, func(t *testing.T) types.Adapter {
		return New("memory", 0)
	})
}

func TestAdapter_Identity(t *testing.T) {
	a := New("scratch", 7)
	assert.Equal(t, "scratch", a.Name())
	assert.Equal(t, 7, a.Priority())
	assert.True(t, a.Enabled())

	a.SetEnabled(false)
	assert.False(t, a.Enabled())
}

func TestAdapter_ReadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	a := New("memory", 0)

	src := []byte("abc")
	require.NoError(t, a.Write(ctx, "a", src))
	src[0] = 'z'

	got, err := a.Read(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)

	got[1] = 'z'
	again, err := a.Read(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestAdapter_MoveOntoSelfIsNoop(t *testing.T) {
	ctx := context.Background()
	a := New("memory", 0)
	require.NoError(t, a.Write(ctx, "a", []byte("x")))
	require.NoError(t, a.Move(ctx, "a", "a"))
	assert.Equal(t, 1, a.Len())
}
