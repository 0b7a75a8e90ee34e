package persistence

import (
	"context"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// List returns a handle for every path on every registered adapter, enabled
// or not, for which pred returns true. Adapters are visited in priority
// order and the same path on two adapters yields two handles.
func (s *System) List(ctx context.Context, pred func(path string) bool) ([]*types.File, error) {
	var files []*types.File
	for _, a := range s.GetAdapters() {
		paths, err := a.List(ctx, pred)
		if err != nil {
			return nil, err
		}
		for _, p := range paths {
			files = append(files, types.NewFile(a, p))
		}
	}
	return files, nil
}

// Exists reports whether file is stored.
func (s *System) Exists(ctx context.Context, file *types.File) (bool, error) {
	return file.Exists(ctx)
}

// readData reads the raw bytes of file and notifies EventRead.
func (s *System) readData(ctx context.Context, file *types.File) ([]byte, error) {
	data, err := file.Read(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("file read", "file", file.String(), "bytes", len(data))
	s.notify(Event{Kind: EventRead, File: file})
	return data, nil
}

// Read reads file and decodes it into a State. Decode failures match
// ErrSerialization; adapter failures are returned unchanged.
func (s *System) Read(ctx context.Context, file *types.File) (types.State, error) {
	data, err := s.readData(ctx, file)
	if err != nil {
		return nil, err
	}
	return s.serializer.DecodeState(data)
}

// ReadInto reads file and decodes it into target in place.
func (s *System) ReadInto(ctx context.Context, file *types.File, target types.StateUnmarshaler) error {
	data, err := s.readData(ctx, file)
	if err != nil {
		return err
	}
	return s.serializer.Decode(data, target)
}

// writeData writes raw bytes to file and notifies EventWritten.
func (s *System) writeData(ctx context.Context, file *types.File, data []byte) error {
	if err := file.Write(ctx, data); err != nil {
		return err
	}
	s.logger.Debug("file written", "file", file.String(), "bytes", len(data))
	s.notify(Event{Kind: EventWritten, File: file})
	return nil
}

// Write encodes state and writes it to file. Encoding happens first, so an
// encode failure never touches the destination.
func (s *System) Write(ctx context.Context, file *types.File, state types.State) error {
	data, err := s.serializer.EncodeState(state)
	if err != nil {
		return err
	}
	return s.writeData(ctx, file, data)
}

// WriteFrom encodes the State produced by source and writes it to file.
func (s *System) WriteFrom(ctx context.Context, file *types.File, source types.StateMarshaler) error {
	data, err := s.serializer.Encode(source)
	if err != nil {
		return err
	}
	return s.writeData(ctx, file, data)
}

// Move moves file to destination.
//
// On one adapter this is the adapter's native move. Across adapters it reads
// the source, writes the destination and only then deletes the source: an
// interruption can leave the data in both places but never in neither.
// The file handle passed in is not modified.
func (s *System) Move(ctx context.Context, file, destination *types.File) error {
	if file.SameAdapter(destination) {
		if err := file.Adapter().Move(ctx, file.Path(), destination.Path()); err != nil {
			return err
		}
	} else {
		if err := transfer(ctx, file, destination); err != nil {
			return err
		}
		if err := file.Delete(ctx); err != nil {
			return err
		}
	}

	s.logger.Debug("file moved", "file", file.String(), "destination", destination.String())
	s.notify(Event{Kind: EventMoved, File: file, Destination: destination})
	return nil
}

// Copy copies file to destination and leaves the source in place, whether
// or not both handles share an adapter.
func (s *System) Copy(ctx context.Context, file, destination *types.File) error {
	if err := transfer(ctx, file, destination); err != nil {
		return err
	}

	s.logger.Debug("file copied", "file", file.String(), "destination", destination.String())
	s.notify(Event{Kind: EventCopied, File: file, Destination: destination})
	return nil
}

// transfer copies the raw bytes of src to dst without notifying.
func transfer(ctx context.Context, src, dst *types.File) error {
	data, err := src.Read(ctx)
	if err != nil {
		return err
	}
	return dst.Write(ctx, data)
}

// Delete removes file.
func (s *System) Delete(ctx context.Context, file *types.File) error {
	if err := file.Delete(ctx); err != nil {
		return err
	}
	s.logger.Debug("file deleted", "file", file.String())
	s.notify(Event{Kind: EventDeleted, File: file})
	return nil
}
