package types

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by an adapter, the serializer or the
// persistence system matches exactly one of these with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrIO            = errors.New("i/o failure")
	ErrSerialization = errors.New("serialization failed")
	ErrConfiguration = errors.New("invalid configuration")
)

// ErrReadOnly is returned by adapters that cannot mutate their medium.
// It matches ErrIO.
var ErrReadOnly = fmt.Errorf("%w: adapter is read-only", ErrIO)

// Error carries the operation and location of a failure along with its kind
// and, optionally, the underlying cause.
type Error struct {
	Kind    error  // one of the Err* kinds above
	Op      string // operation name, e.g. "read" or "move"
	Adapter string // adapter name, empty when not adapter-specific
	Path    string // adapter-relative path, empty when not path-specific
	Err     error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if loc := e.location(); loc != "" {
		b.WriteString(" ")
		b.WriteString(loc)
	}
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) location() string {
	switch {
	case e.Adapter != "" && e.Path != "":
		return e.Adapter + ":" + e.Path
	case e.Adapter != "":
		return e.Adapter
	default:
		return e.Path
	}
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NotFound reports a missing path.
func NotFound(op, adapter, path string) error {
	return &Error{Kind: ErrNotFound, Op: op, Adapter: adapter, Path: path}
}

// Conflict reports a destination that already exists.
func Conflict(op, adapter, path string) error {
	return &Error{Kind: ErrConflict, Op: op, Adapter: adapter, Path: path}
}

// IOError wraps a medium failure. A nil err yields nil.
func IOError(op, adapter, path string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: ErrIO, Op: op, Adapter: adapter, Path: path, Err: err}
}

// ReadOnly reports a mutation attempted on a read-only adapter.
func ReadOnly(op, adapter, path string) error {
	return &Error{Kind: ErrReadOnly, Op: op, Adapter: adapter, Path: path}
}

// SerializationError wraps a codec failure. A nil err yields nil.
func SerializationError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: ErrSerialization, Op: op, Err: err}
}

// ConfigurationError reports an invalid construction-time option.
func ConfigurationError(op, format string, args ...any) error {
	return &Error{Kind: ErrConfiguration, Op: op, Err: fmt.Errorf(format, args...)}
}
