//go:build integration

package objstore

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mesh-intelligence/larder/internal/adapters/adaptertest"
	"github.com/mesh-intelligence/larder/pkg/types"
)

// startNATS starts a JetStream-enabled NATS container and returns its URL.
func startNATS(t *testing.T, ctx context.Context) string {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "nats:2.11-alpine",
		ExposedPorts: []string{"4222/tcp"},
		Cmd:          []string{"--js"},
		WaitingFor:   wait.ForLog("Server is ready"),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "4222")
	require.NoError(t, err)

	return fmt.Sprintf("nats://%s:%s", host, port.Port())
}

func TestIntegration_AdapterConformance(t *testing.T) {
	ctx := context.Background()
	url := startNATS(t, ctx)

	n := 0
	adaptertest.Run(t, func(t *testing.T) types.Adapter {
		n++
		a, err := Dial(ctx, "cloud", 0, url, fmt.Sprintf("larder-test-%d", n))
		require.NoError(t, err)
		t.Cleanup(func() { a.Close() })
		return a
	})
}

func TestIntegration_DialReusesBucket(t *testing.T) {
	ctx := context.Background()
	url := startNATS(t, ctx)

	a, err := Dial(ctx, "cloud", 0, url, "shared")
	require.NoError(t, err)
	require.NoError(t, a.Write(ctx, "a.dat", []byte("shared")))
	require.NoError(t, a.Close())

	b, err := Dial(ctx, "cloud", 0, url, "shared")
	require.NoError(t, err)
	defer b.Close()

	got, err := b.Read(ctx, "a.dat")
	require.NoError(t, err)
	assert.Equal(t, []byte("shared"), got)
}
