package types

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"unicode/utf8"
)

// State is one persisted document: a tree of scalars, sequences and
// mappings keyed by string.
//
// Values a backend can round-trip losslessly are nil, bool, int64, float64,
// string, []byte, []any and map[string]any. Normalize converts other integer
// and float widths, nested States and typed slices and maps into those kinds.
type State map[string]any

// StateMarshaler is implemented by objects that can save themselves as a State.
type StateMarshaler interface {
	MarshalState() (State, error)
}

// StateUnmarshaler is implemented by objects that can load themselves from a
// State in place.
type StateUnmarshaler interface {
	UnmarshalState(State) error
}

// Keys returns the top-level keys in sorted order.
func (s State) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String returns the string stored at key.
func (s State) String(key string) (string, bool) {
	v, ok := s[key].(string)
	return v, ok
}

// Bool returns the bool stored at key.
func (s State) Bool(key string) (bool, bool) {
	v, ok := s[key].(bool)
	return v, ok
}

// Int returns the integer stored at key, accepting any Go integer width.
func (s State) Int(key string) (int64, bool) {
	n, err := Normalize(s[key])
	if err != nil {
		return 0, false
	}
	v, ok := n.(int64)
	return v, ok
}

// Float returns the float stored at key. Integers are widened.
func (s State) Float(key string) (float64, bool) {
	n, err := Normalize(s[key])
	if err != nil {
		return 0, false
	}
	switch v := n.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// Bytes returns the byte slice stored at key.
func (s State) Bytes(key string) ([]byte, bool) {
	v, ok := s[key].([]byte)
	return v, ok
}

// List returns the sequence stored at key.
func (s State) List(key string) ([]any, bool) {
	n, err := Normalize(s[key])
	if err != nil {
		return nil, false
	}
	v, ok := n.([]any)
	return v, ok
}

// Object returns the nested document stored at key.
func (s State) Object(key string) (State, bool) {
	switch v := s[key].(type) {
	case State:
		return v, true
	case map[string]any:
		return State(v), true
	}
	return nil, false
}

// Normalize returns a copy of s in which every value is one of the
// representable kinds. A nil State normalizes to an empty one. Keys and
// string values must be valid UTF-8.
func (s State) Normalize() (State, error) {
	out := make(State, len(s))
	for k, v := range s {
		if err := checkKey(k, "$"); err != nil {
			return nil, err
		}
		n, err := normalize(v, k)
		if err != nil {
			return nil, err
		}
		out[k] = n
	}
	return out, nil
}

// Normalize converts v into one of the representable value kinds, or fails
// with ErrSerialization.
func Normalize(v any) (any, error) {
	return normalize(v, "$")
}

func normalize(v any, at string) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case bool, int64, float64:
		return x, nil
	case string:
		if !utf8.ValidString(x) {
			return nil, SerializationError("normalize", fmt.Errorf("string at %s is not valid UTF-8", at))
		}
		return x, nil
	case []byte:
		if x == nil {
			return nil, nil
		}
		return x, nil
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint:
		return normalizeUint(uint64(x), at)
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		return normalizeUint(x, at)
	case float32:
		return float64(x), nil
	case State:
		return normalizeMap(map[string]any(x), at)
	case map[string]any:
		return normalizeMap(x, at)
	case []any:
		return normalizeSlice(x, at)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return normalize(rv.String(), at)
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil, nil
		}
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return normalizeSlice(items, at)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		if rv.IsNil() {
			return nil, nil
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return normalizeMap(m, at)
	}
	return nil, SerializationError("normalize", fmt.Errorf("unsupported value of type %T at %s", v, at))
}

func checkKey(k, at string) error {
	if !utf8.ValidString(k) {
		return SerializationError("normalize", fmt.Errorf("key %q in %s is not valid UTF-8", k, at))
	}
	return nil
}

func normalizeUint(x uint64, at string) (any, error) {
	if x > math.MaxInt64 {
		return nil, SerializationError("normalize", fmt.Errorf("integer %d at %s overflows int64", x, at))
	}
	return int64(x), nil
}

func normalizeMap(m map[string]any, at string) (any, error) {
	if m == nil {
		return nil, nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if err := checkKey(k, at); err != nil {
			return nil, err
		}
		n, err := normalize(v, at+"."+k)
		if err != nil {
			return nil, err
		}
		out[k] = n
	}
	return out, nil
}

func normalizeSlice(items []any, at string) (any, error) {
	if items == nil {
		return nil, nil
	}
	out := make([]any, len(items))
	for i, v := range items {
		n, err := normalize(v, fmt.Sprintf("%s[%d]", at, i))
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}
