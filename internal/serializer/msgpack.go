package serializer

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// messagePackBackend encodes States as MessagePack maps with sorted keys.
type messagePackBackend struct{}

func newMessagePackBackend() (types.Backend, error) {
	return messagePackBackend{}, nil
}

func (messagePackBackend) Serialize(state types.State) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(map[string]any(state)); err != nil {
		return nil, fmt.Errorf("could not serialize the data: %w", err)
	}
	return buf.Bytes(), nil
}

func (messagePackBackend) Deserialize(data []byte) (types.State, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.UseLooseInterfaceDecoding(true)

	c, err := dec.PeekCode()
	if err != nil {
		return nil, fmt.Errorf("could not deserialize the data: %w", err)
	}
	if !isMap(c) {
		return nil, fmt.Errorf("could not deserialize the data: top-level value is not a map")
	}
	m, err := decodeMap(dec)
	if err != nil {
		return nil, fmt.Errorf("could not deserialize the data: %w", err)
	}
	return types.State(m), nil
}

// decodeValue walks containers itself so that a zero-length bin decodes as
// an empty []byte rather than the loose decoder's empty string.
func decodeValue(dec *msgpack.Decoder) (any, error) {
	c, err := dec.PeekCode()
	if err != nil {
		return nil, err
	}
	switch {
	case msgpcode.IsBin(c):
		b, err := dec.DecodeBytes()
		if err != nil {
			return nil, err
		}
		if b == nil {
			b = []byte{}
		}
		return b, nil
	case isMap(c):
		return decodeMap(dec)
	case isArray(c):
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return nil, err
		}
		items := make([]any, n)
		for i := range items {
			if items[i], err = decodeValue(dec); err != nil {
				return nil, err
			}
		}
		return items, nil
	}
	return dec.DecodeInterfaceLoose()
}

func decodeMap(dec *msgpack.Decoder) (map[string]any, error) {
	n, err := dec.DecodeMapLen()
	if err != nil {
		return nil, err
	}
	m := make(map[string]any, n)
	for range n {
		k, err := dec.DecodeString()
		if err != nil {
			return nil, err
		}
		if m[k], err = decodeValue(dec); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func isMap(c byte) bool {
	return msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32
}

func isArray(c byte) bool {
	return msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32
}
