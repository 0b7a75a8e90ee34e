// Package larder is the public entry point: it builds a persistence system
// from a Config, registering one adapter per configured entry.
//
// Example:
//
//	sys, err := larder.Open(ctx, types.Config{
//	    Adapters: []types.AdapterConfig{
//	        {Name: "local", Kind: types.KindDisk, Path: "saves"},
//	    },
//	})
//	if err != nil {
//	    return err
//	}
//	defer sys.Close()
//	local, _ := sys.GetAdapter("local")
//	err = sys.Write(ctx, types.NewFile(local, "slot1.dat"), state)
package larder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/mesh-intelligence/larder/internal/adapters/bundle"
	"github.com/mesh-intelligence/larder/internal/adapters/disk"
	"github.com/mesh-intelligence/larder/internal/adapters/memory"
	"github.com/mesh-intelligence/larder/internal/adapters/objstore"
	"github.com/mesh-intelligence/larder/internal/adapters/sqlite"
	"github.com/mesh-intelligence/larder/internal/observe"
	"github.com/mesh-intelligence/larder/internal/persistence"
	"github.com/mesh-intelligence/larder/pkg/types"
)

// Version is the larder release.
const Version = "0.3.0"

// Re-exported so callers need not import internal packages.
type (
	System    = persistence.System
	Event     = persistence.Event
	EventKind = persistence.EventKind
	Listener  = persistence.Listener
)

// Event kinds.
const (
	EventRead    = persistence.EventRead
	EventWritten = persistence.EventWritten
	EventMoved   = persistence.EventMoved
	EventCopied  = persistence.EventCopied
	EventDeleted = persistence.EventDeleted
)

type options struct {
	logger   *slog.Logger
	baseDir  string
	tracer   trace.Tracer
	registry prometheus.Registerer
}

// Option configures Open.
type Option func(*options)

// WithLogger sets the system logger. Each successful operation is logged
// once at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithBaseDir resolves relative adapter paths against dir.
func WithBaseDir(dir string) Option {
	return func(o *options) { o.baseDir = dir }
}

// WithTracer records a span for every adapter call.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) { o.tracer = tracer }
}

// WithMetrics registers event counters with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) { o.registry = reg }
}

// Open validates cfg, opens every configured adapter and registers it with
// a new System. Adapters opened before a failure are closed again.
func Open(ctx context.Context, cfg types.Config, opts ...Option) (*System, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var sysOpts []persistence.Option
	if o.logger != nil {
		sysOpts = append(sysOpts, persistence.WithLogger(o.logger))
	}
	sys, err := persistence.New(cfg.EffectiveFormat(), sysOpts...)
	if err != nil {
		return nil, err
	}

	for _, ac := range cfg.Adapters {
		a, err := openAdapter(ctx, ac, o.baseDir)
		if err != nil {
			return nil, errors.Join(err, sys.Close())
		}
		if o.tracer != nil {
			a = observe.Trace(a, o.tracer)
		}
		if err := sys.RegisterAdapter(a); err != nil {
			if c, ok := a.(io.Closer); ok {
				err = errors.Join(err, c.Close())
			}
			return nil, errors.Join(err, sys.Close())
		}
	}

	if o.registry != nil {
		m, err := observe.NewMetrics(o.registry)
		if err != nil {
			return nil, errors.Join(err, sys.Close())
		}
		sys.Subscribe(m.Listener())
	}
	return sys, nil
}

// toggler is implemented by every adapter kind Open can build.
type toggler interface {
	types.Adapter
	SetEnabled(bool)
}

func openAdapter(ctx context.Context, ac types.AdapterConfig, baseDir string) (types.Adapter, error) {
	p := ac.Path
	if p != "" && p != sqlite.InMemory && baseDir != "" && !filepath.IsAbs(p) {
		p = filepath.Join(baseDir, p)
	}

	var (
		a   toggler
		err error
	)
	switch ac.Kind {
	case types.KindMemory:
		a = memory.New(ac.Name, ac.Priority)
	case types.KindDisk:
		a, err = disk.NewOS(ac.Name, ac.Priority, p)
	case types.KindSQLite:
		a, err = sqlite.Open(ac.Name, ac.Priority, p)
	case types.KindBundle:
		a, err = bundle.NewDir(ac.Name, ac.Priority, p)
	case types.KindObjStore:
		a, err = objstore.Dial(ctx, ac.Name, ac.Priority, ac.URL, ac.Bucket)
	default:
		return nil, types.ErrAdapterKindUnknown
	}
	if err != nil {
		return nil, err
	}
	a.SetEnabled(ac.IsEnabled())
	return a, nil
}
