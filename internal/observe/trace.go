package observe

import (
	"context"
	"io"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// tracedAdapter records a span around every storage call of the wrapped
// adapter.
type tracedAdapter struct {
	types.Adapter
	tracer trace.Tracer
}

// Trace wraps a so that each List, Exists, Read, Write, Move and Delete call
// runs inside a span named "larder.<op>".
func Trace(a types.Adapter, tracer trace.Tracer) types.Adapter {
	return &tracedAdapter{Adapter: a, tracer: tracer}
}

// Unwrap returns the traced adapter.
func (t *tracedAdapter) Unwrap() types.Adapter { return t.Adapter }

// SamePath defers to the wrapped adapter's path comparison when it has one.
func (t *tracedAdapter) SamePath(a, b string) bool {
	if pc, ok := t.Adapter.(types.PathComparer); ok {
		return pc.SamePath(a, b)
	}
	return a == b
}

// Close closes the wrapped adapter when it holds resources.
func (t *tracedAdapter) Close() error {
	if c, ok := t.Adapter.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (t *tracedAdapter) start(ctx context.Context, op, path string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{attribute.String("larder.adapter", t.Name())}
	if path != "" {
		attrs = append(attrs, attribute.String("larder.path", path))
	}
	return t.tracer.Start(ctx, "larder."+op, trace.WithAttributes(attrs...))
}

func end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (t *tracedAdapter) List(ctx context.Context, pred func(string) bool) (paths []string, err error) {
	ctx, span := t.start(ctx, "list", "")
	defer func() {
		span.SetAttributes(attribute.Int("larder.count", len(paths)))
		end(span, err)
	}()
	return t.Adapter.List(ctx, pred)
}

func (t *tracedAdapter) Exists(ctx context.Context, path string) (ok bool, err error) {
	ctx, span := t.start(ctx, "exists", path)
	defer func() { end(span, err) }()
	return t.Adapter.Exists(ctx, path)
}

func (t *tracedAdapter) Read(ctx context.Context, path string) (data []byte, err error) {
	ctx, span := t.start(ctx, "read", path)
	defer func() {
		span.SetAttributes(attribute.Int("larder.bytes", len(data)))
		end(span, err)
	}()
	return t.Adapter.Read(ctx, path)
}

func (t *tracedAdapter) Write(ctx context.Context, path string, data []byte) (err error) {
	ctx, span := t.start(ctx, "write", path)
	span.SetAttributes(attribute.Int("larder.bytes", len(data)))
	defer func() { end(span, err) }()
	return t.Adapter.Write(ctx, path, data)
}

func (t *tracedAdapter) Move(ctx context.Context, path, newPath string) (err error) {
	ctx, span := t.start(ctx, "move", path)
	span.SetAttributes(attribute.String("larder.destination", newPath))
	defer func() { end(span, err) }()
	return t.Adapter.Move(ctx, path, newPath)
}

func (t *tracedAdapter) Delete(ctx context.Context, path string) (err error) {
	ctx, span := t.start(ctx, "delete", path)
	defer func() { end(span, err) }()
	return t.Adapter.Delete(ctx, path)
}
