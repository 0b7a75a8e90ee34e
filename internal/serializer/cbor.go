package serializer

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// cborBackend encodes States as deterministic CBOR (RFC 8949 core
// deterministic encoding).
type cborBackend struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

func newCBORBackend() (types.Backend, error) {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, err
	}
	dec, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
		IntDec:         cbor.IntDecConvertSigned,
	}.DecMode()
	if err != nil {
		return nil, err
	}
	return &cborBackend{enc: enc, dec: dec}, nil
}

func (b *cborBackend) Serialize(state types.State) ([]byte, error) {
	data, err := b.enc.Marshal(map[string]any(state))
	if err != nil {
		return nil, fmt.Errorf("could not serialize the data: %w", err)
	}
	return data, nil
}

func (b *cborBackend) Deserialize(data []byte) (types.State, error) {
	var m map[string]any
	if err := b.dec.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("could not deserialize the data: %w", err)
	}
	if m == nil {
		return nil, fmt.Errorf("could not deserialize the data: top-level value is not a map")
	}
	return types.State(m), nil
}
