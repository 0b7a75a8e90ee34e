// Package persistence implements the persistence system: it aggregates the
// registered adapters, owns the serializer, exposes the unified file API and
// notifies listeners after each successful operation.
//
// All calls are synchronous. The system performs no locking around file
// operations; concurrent writers to one file are the caller's concern.
package persistence

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/mesh-intelligence/larder/internal/serializer"
	"github.com/mesh-intelligence/larder/pkg/types"
)

// System is the persistence root. Construct one with New and pass it to the
// collaborators that need it.
type System struct {
	serializer *serializer.Serializer
	logger     *slog.Logger

	mu        sync.RWMutex
	adapters  []types.Adapter // sorted by priority, ties in registration order
	listeners []subscription
	nextID    uint64
}

// Option configures a System.
type Option func(*System)

// WithLogger sets the structured logger. The default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *System) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSerializer replaces the serializer built from the format argument.
func WithSerializer(ser *serializer.Serializer) Option {
	return func(s *System) {
		if ser != nil {
			s.serializer = ser
		}
	}
}

// New returns a System encoding files in format. The format cannot change
// for the lifetime of the System. Unknown formats fail with ErrConfiguration.
func New(format types.Format, opts ...Option) (*System, error) {
	s := &System{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.serializer == nil {
		ser, err := serializer.New(format)
		if err != nil {
			return nil, err
		}
		s.serializer = ser
	}
	return s, nil
}

// Serializer returns the system's serializer.
func (s *System) Serializer() *serializer.Serializer {
	return s.serializer
}

// RegisterAdapter adds a to the system. Adapters with the same name are
// accepted; lookups by name return the first in priority order.
func (s *System) RegisterAdapter(a types.Adapter) error {
	if a == nil {
		return types.ConfigurationError("register adapter", "nil adapter")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.adapters {
		if existing == a {
			return types.ConfigurationError("register adapter", "adapter %q is already registered", a.Name())
		}
		if existing.Name() == a.Name() {
			s.logger.Warn("duplicate adapter name; lookups resolve by priority",
				"adapter", a.Name(), "priority", a.Priority(), "existing_priority", existing.Priority())
		}
	}

	s.adapters = append(s.adapters, a)
	slices.SortStableFunc(s.adapters, func(x, y types.Adapter) int {
		return cmp.Compare(x.Priority(), y.Priority())
	})
	s.logger.Debug("adapter registered", "adapter", a.Name(), "priority", a.Priority(), "enabled", a.Enabled())
	return nil
}

// UnregisterAdapter removes a and reports whether it was registered.
func (s *System) UnregisterAdapter(a types.Adapter) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.Index(s.adapters, a)
	if i < 0 {
		return false
	}
	s.adapters = slices.Delete(s.adapters, i, i+1)
	s.logger.Debug("adapter unregistered", "adapter", a.Name())
	return true
}

// GetAdapters returns the registered adapters in priority order.
func (s *System) GetAdapters() []types.Adapter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.adapters)
}

// GetEnabledAdapters returns the enabled adapters in priority order.
func (s *System) GetEnabledAdapters() []types.Adapter {
	var enabled []types.Adapter
	for _, a := range s.GetAdapters() {
		if a.Enabled() {
			enabled = append(enabled, a)
		}
	}
	return enabled
}

// TryGetAdapter returns the first adapter in priority order named name.
func (s *System) TryGetAdapter(name string) (types.Adapter, bool) {
	for _, a := range s.GetAdapters() {
		if a.Name() == name {
			return a, true
		}
	}
	return nil, false
}

// GetAdapter returns the first adapter in priority order named name, or
// ErrNotFound.
func (s *System) GetAdapter(name string) (types.Adapter, error) {
	if a, ok := s.TryGetAdapter(name); ok {
		return a, nil
	}
	return nil, &types.Error{
		Kind: types.ErrNotFound,
		Op:   "get adapter",
		Err:  fmt.Errorf("no registered adapter with name %q", name),
	}
}

// TryGetFirstEnabledAdapter returns the first enabled adapter.
func (s *System) TryGetFirstEnabledAdapter() (types.Adapter, bool) {
	for _, a := range s.GetAdapters() {
		if a.Enabled() {
			return a, true
		}
	}
	return nil, false
}

// GetFirstEnabledAdapter returns the first enabled adapter, or ErrNotFound.
func (s *System) GetFirstEnabledAdapter() (types.Adapter, error) {
	if a, ok := s.TryGetFirstEnabledAdapter(); ok {
		return a, nil
	}
	return nil, &types.Error{
		Kind: types.ErrNotFound,
		Op:   "get first enabled adapter",
		Err:  errors.New("no enabled registered adapter"),
	}
}

// Close closes every registered adapter that implements io.Closer.
func (s *System) Close() error {
	var errs []error
	for _, a := range s.GetAdapters() {
		if c, ok := a.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close adapter %q: %w", a.Name(), err))
			}
		}
	}
	return errors.Join(errs...)
}
