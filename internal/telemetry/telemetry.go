// Package telemetry sets up OpenTelemetry tracing for the larder CLI.
package telemetry

import (
	"context"
	"fmt"

	"github.com/caarlos0/env/v11"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Env holds the tracing switches read from the environment.
type Env struct {
	Endpoint string `env:"LARDER_OTEL_ENDPOINT"`
	Enabled  bool   `env:"LARDER_OTEL_ENABLED" envDefault:"true"`
}

// ParseEnv reads Env from the process environment.
func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// Active reports whether tracing should be exported.
func (e Env) Active() bool {
	return e.Enabled && e.Endpoint != ""
}

// Setup initialises tracing for serviceName.
//
// Tracing is opt-in: when LARDER_OTEL_ENDPOINT is empty or
// LARDER_OTEL_ENABLED is false, Setup returns a no-op shutdown function and
// leaves the global provider alone. The returned shutdown flushes pending
// spans and should be deferred by the caller.
func Setup(ctx context.Context, serviceName string) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }

	cfg, err := ParseEnv()
	if err != nil {
		return noop, err
	}
	if !cfg.Active() {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.Endpoint))
	if err != nil {
		return noop, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return noop, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}
