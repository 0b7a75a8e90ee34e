// Package serializer turns States into bytes and back through one Backend
// chosen by format at construction.
//
// Every failure leaving this package matches types.ErrSerialization; codec
// library error types never cross the boundary.
package serializer

import (
	"errors"
	"fmt"
	"sort"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// backendFactories maps each supported format to its Backend constructor.
var backendFactories = map[types.Format]func() (types.Backend, error){
	types.FormatMessagePack: newMessagePackBackend,
	types.FormatCBOR:        newCBORBackend,
}

// Formats returns the supported formats in sorted order.
func Formats() []types.Format {
	formats := make([]types.Format, 0, len(backendFactories))
	for f := range backendFactories {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}

// Serializer owns exactly one Backend for its lifetime.
type Serializer struct {
	format  types.Format
	backend types.Backend
}

// New returns a Serializer for format. An empty format selects
// types.DefaultFormat. Unknown formats fail with ErrConfiguration.
func New(format types.Format) (*Serializer, error) {
	if format == "" {
		format = types.DefaultFormat
	}
	factory, ok := backendFactories[format]
	if !ok {
		return nil, types.ConfigurationError("new serializer", "unknown format %q (supported: %v)", format, Formats())
	}
	backend, err := factory()
	if err != nil {
		return nil, types.ConfigurationError("new serializer", "backend %q: %v", format, err)
	}
	return &Serializer{format: format, backend: backend}, nil
}

// NewWithBackend returns a Serializer around a caller-supplied Backend.
func NewWithBackend(format types.Format, backend types.Backend) (*Serializer, error) {
	if backend == nil {
		return nil, types.ConfigurationError("new serializer", "nil backend for format %q", format)
	}
	return &Serializer{format: format, backend: backend}, nil
}

// Format returns the active format.
func (s *Serializer) Format() types.Format { return s.format }

// EncodeState converts state to bytes. The state is normalized first, so
// unsupported value types fail before the backend runs.
func (s *Serializer) EncodeState(state types.State) ([]byte, error) {
	norm, err := state.Normalize()
	if err != nil {
		return nil, err
	}
	data, err := s.backend.Serialize(norm)
	if err != nil {
		return nil, wrap("encode", err)
	}
	return data, nil
}

// DecodeState converts bytes to a normalized State.
func (s *Serializer) DecodeState(data []byte) (types.State, error) {
	state, err := s.backend.Deserialize(data)
	if err != nil {
		return nil, wrap("decode", err)
	}
	norm, err := state.Normalize()
	if err != nil {
		return nil, err
	}
	return norm, nil
}

// Encode asks m for its State and encodes it.
func (s *Serializer) Encode(m types.StateMarshaler) ([]byte, error) {
	state, err := m.MarshalState()
	if err != nil {
		return nil, wrap("encode", fmt.Errorf("marshal %T: %w", m, err))
	}
	return s.EncodeState(state)
}

// Decode decodes data and loads the result into u in place.
func (s *Serializer) Decode(data []byte, u types.StateUnmarshaler) error {
	state, err := s.DecodeState(data)
	if err != nil {
		return err
	}
	if err := u.UnmarshalState(state); err != nil {
		return wrap("decode", fmt.Errorf("unmarshal %T: %w", u, err))
	}
	return nil
}

// wrap converts err into a serialization error, keeping errors that already
// are one.
func wrap(op string, err error) error {
	if errors.Is(err, types.ErrSerialization) {
		return err
	}
	// Flatten the codec error to its message so its concrete type does not
	// leak to callers.
	return types.SerializationError(op, errors.New(err.Error()))
}
