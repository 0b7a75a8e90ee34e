package larder_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/mesh-intelligence/larder/pkg/larder"
	"github.com/mesh-intelligence/larder/pkg/types"
)

func disabled() *bool {
	b := false
	return &b
}

func TestOpen_AllLocalKinds(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "defaults"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "defaults", "new.dat"), []byte{0xa0}, 0o644))

	cfg := types.Config{
		Format: types.FormatCBOR,
		Adapters: []types.AdapterConfig{
			{Name: "archive", Kind: types.KindSQLite, Priority: 5, Path: "archive.db"},
			{Name: "local", Kind: types.KindDisk, Priority: 0, Path: "saves"},
			{Name: "scratch", Kind: types.KindMemory, Priority: 1, Enabled: disabled()},
			{Name: "defaults", Kind: types.KindBundle, Priority: 9, Path: "defaults"},
		},
	}
	sys, err := larder.Open(ctx, cfg, larder.WithBaseDir(dir))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, sys.Close()) })

	assert.Equal(t, types.FormatCBOR, sys.Serializer().Format())

	var names []string
	for _, a := range sys.GetAdapters() {
		names = append(names, a.Name())
	}
	assert.Equal(t, []string{"local", "scratch", "archive", "defaults"}, names)

	first, err := sys.GetFirstEnabledAdapter()
	require.NoError(t, err)
	assert.Equal(t, "local", first.Name())
	scratch, err := sys.GetAdapter("scratch")
	require.NoError(t, err)
	assert.False(t, scratch.Enabled())

	file := types.NewFile(first, "slot1.dat")
	require.NoError(t, sys.Write(ctx, file, types.State{"hp": int64(10)}))
	assert.FileExists(t, filepath.Join(dir, "saves", "slot1.dat"))
	assert.FileExists(t, filepath.Join(dir, "archive.db"))

	archive, err := sys.GetAdapter("archive")
	require.NoError(t, err)
	require.NoError(t, sys.Move(ctx, file, types.NewFile(archive, "slot1.dat")))

	got, err := sys.Read(ctx, types.NewFile(archive, "slot1.dat"))
	require.NoError(t, err)
	assert.Equal(t, types.State{"hp": int64(10)}, got)

	defaults, err := sys.GetAdapter("defaults")
	require.NoError(t, err)
	got, err = sys.Read(ctx, types.NewFile(defaults, "new.dat"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOpen_InvalidConfig(t *testing.T) {
	_, err := larder.Open(context.Background(), types.Config{
		Adapters: []types.AdapterConfig{{Name: "x", Kind: "tape"}},
	})
	assert.ErrorIs(t, err, types.ErrConfiguration)

	_, err = larder.Open(context.Background(), types.Config{Format: "xml"})
	assert.ErrorIs(t, err, types.ErrConfiguration)
}

func TestOpen_AdapterFailureClosesOthers(t *testing.T) {
	dir := t.TempDir()
	notADir := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(notADir, nil, 0o644))

	_, err := larder.Open(context.Background(), types.Config{
		Adapters: []types.AdapterConfig{
			{Name: "db", Kind: types.KindSQLite, Path: filepath.Join(dir, "a.db")},
			{Name: "bundle", Kind: types.KindBundle, Path: notADir},
		},
	})
	assert.ErrorIs(t, err, types.ErrIO)
}

func TestOpen_Observability(t *testing.T) {
	ctx := context.Background()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	reg := prometheus.NewRegistry()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))

	sys, err := larder.Open(ctx,
		types.Config{Adapters: []types.AdapterConfig{{Name: "mem", Kind: types.KindMemory}}},
		larder.WithLogger(logger),
		larder.WithMetrics(reg),
		larder.WithTracer(tp.Tracer("test")),
	)
	require.NoError(t, err)

	mem, err := sys.GetAdapter("mem")
	require.NoError(t, err)
	require.NoError(t, sys.Write(ctx, types.NewFile(mem, "a.dat"), types.State{}))

	assert.Contains(t, logs.String(), `msg="file written" file=mem:a.dat`)
	n, err := testutil.GatherAndCount(reg, "larder_persistence_events_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, rec.Ended(), 1)
	assert.Equal(t, "larder.write", rec.Ended()[0].Name())
}
