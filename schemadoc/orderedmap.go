package schemadoc

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// OrderedMap is a JSON object that remembers the order its keys were parsed
// in. The standard library's map[string]interface{} does not, and several
// passes (property iteration in the IMG extractor, the traversal driver's
// wildcard walk) are specified to operate "in document order" — see the
// Open question resolutions in DESIGN.md.
type OrderedMap struct {
	keys   []string
	index  map[string]int
	values []interface{}
}

// NewOrderedMap returns an empty OrderedMap.
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{index: map[string]int{}}
}

// Get returns the value stored under key and whether it was present.
func (m *OrderedMap) Get(key string) (interface{}, bool) {
	if m == nil {
		return nil, false
	}
	i, ok := m.index[key]
	if !ok {
		return nil, false
	}
	return m.values[i], true
}

// Set inserts or overwrites key, preserving its original position on
// overwrite and appending on insert.
func (m *OrderedMap) Set(key string, value interface{}) {
	if i, ok := m.index[key]; ok {
		m.values[i] = value
		return
	}
	m.index[key] = len(m.keys)
	m.keys = append(m.keys, key)
	m.values = append(m.values, value)
}

// Delete removes key if present.
func (m *OrderedMap) Delete(key string) {
	i, ok := m.index[key]
	if !ok {
		return
	}
	m.keys = append(m.keys[:i], m.keys[i+1:]...)
	m.values = append(m.values[:i], m.values[i+1:]...)
	delete(m.index, key)
	for k, idx := range m.index {
		if idx > i {
			m.index[k] = idx - 1
		}
	}
}

// Has reports whether key is present.
func (m *OrderedMap) Has(key string) bool {
	_, ok := m.index[key]
	return ok
}

// Keys returns the object's keys in document order. The returned slice must
// not be mutated by the caller.
func (m *OrderedMap) Keys() []string {
	if m == nil {
		return nil
	}
	return m.keys
}

// Len reports the number of keys.
func (m *OrderedMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Clone returns a deep copy, recursing into nested *OrderedMap and []interface{}
// values.
func (m *OrderedMap) Clone() *OrderedMap {
	if m == nil {
		return nil
	}
	out := NewOrderedMap()
	for _, k := range m.keys {
		v, _ := m.Get(k)
		out.Set(k, CloneValue(v))
	}
	return out
}

// CloneValue deep-copies an arbitrary decoded JSON value (OrderedMap, slice,
// or scalar).
func CloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case *OrderedMap:
		return t.Clone()
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = CloneValue(e)
		}
		return out
	default:
		return v
	}
}

// MarshalJSON renders the object back out in its original key order.
func (m *OrderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(m.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object while remembering key order. It is
// normally invoked indirectly via DecodeValue/Unmarshal.
func (m *OrderedMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec, json.Delim('{'))
	if err != nil {
		return err
	}
	om, ok := v.(*OrderedMap)
	if !ok {
		return fmt.Errorf("schemadoc: expected object, got %T", v)
	}
	*m = *om
	return nil
}

// Unmarshal decodes arbitrary JSON bytes into the generic, order-preserving
// value representation used throughout this module: *OrderedMap for
// objects, []interface{} for arrays, json.Number/string/bool/nil for
// scalars.
func Unmarshal(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return decodeValue(dec, nil)
}

// decodeValue reads one JSON value from dec. If startTok is non-nil it is
// used as the already-consumed opening delimiter (used by
// OrderedMap.UnmarshalJSON, which is invoked after encoding/json has already
// validated the surrounding value).
func decodeValue(dec *json.Decoder, startTok json.Token) (interface{}, error) {
	tok := startTok
	if tok == nil {
		t, err := dec.Token()
		if err != nil {
			return nil, err
		}
		tok = t
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			om := NewOrderedMap()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("schemadoc: object key was not a string")
				}
				val, err := decodeValue(dec, nil)
				if err != nil {
					return nil, err
				}
				om.Set(key, val)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, err
			}
			return om, nil
		case '[':
			var arr []interface{}
			for dec.More() {
				val, err := decodeValue(dec, nil)
				if err != nil {
					return nil, err
				}
				arr = append(arr, val)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, err
			}
			if arr == nil {
				arr = []interface{}{}
			}
			return arr, nil
		}
	}
	return tok, nil
}

// ToOrderedMap asserts v is an *OrderedMap, returning nil, false otherwise.
func ToOrderedMap(v interface{}) (*OrderedMap, bool) {
	om, ok := v.(*OrderedMap)
	return om, ok
}
