package workplan

import (
	"encoding/json"
	"iter"
)

// OrderedMap is a map that remembers insertion order. Re-setting an existing
// key keeps its original position.
type OrderedMap[K comparable, V any] struct {
	keys   []K
	values map[K]V
}

// NewOrderedMap returns an empty OrderedMap.
func NewOrderedMap[K comparable, V any]() *OrderedMap[K, V] {
	return &OrderedMap[K, V]{values: make(map[K]V)}
}

func (m *OrderedMap[K, V]) init() {
	if m.values == nil {
		m.values = make(map[K]V)
	}
}

// Set stores v under k.
func (m *OrderedMap[K, V]) Set(k K, v V) {
	m.init()
	if _, ok := m.values[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.values[k] = v
}

// Get returns the value stored under k.
func (m *OrderedMap[K, V]) Get(k K) (V, bool) {
	if m == nil || m.values == nil {
		var zero V
		return zero, false
	}
	v, ok := m.values[k]
	return v, ok
}

// Has reports whether k is present.
func (m *OrderedMap[K, V]) Has(k K) bool {
	_, ok := m.Get(k)
	return ok
}

// Delete removes k. Deleting a missing key is a no-op.
func (m *OrderedMap[K, V]) Delete(k K) {
	if m == nil || m.values == nil {
		return
	}
	if _, ok := m.values[k]; !ok {
		return
	}
	delete(m.values, k)
	for i, key := range m.keys {
		if key == k {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// DeleteFunc removes every entry for which drop returns true.
func (m *OrderedMap[K, V]) DeleteFunc(drop func(K, V) bool) {
	if m == nil || m.values == nil {
		return
	}
	kept := m.keys[:0]
	for _, k := range m.keys {
		if drop(k, m.values[k]) {
			delete(m.values, k)
			continue
		}
		kept = append(kept, k)
	}
	m.keys = kept
}

// Len returns the number of entries.
func (m *OrderedMap[K, V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns a copy of the keys in insertion order.
func (m *OrderedMap[K, V]) Keys() []K {
	if m == nil {
		return nil
	}
	out := make([]K, len(m.keys))
	copy(out, m.keys)
	return out
}

// All iterates entries in insertion order.
func (m *OrderedMap[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		if m == nil {
			return
		}
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// Clone returns a shallow copy.
func (m *OrderedMap[K, V]) Clone() *OrderedMap[K, V] {
	out := NewOrderedMap[K, V]()
	for k, v := range m.All() {
		out.Set(k, v)
	}
	return out
}

type entry[K comparable, V any] struct {
	Key   K `json:"key"`
	Value V `json:"value"`
}

// MarshalJSON encodes the map as an array of key/value entries so that order
// survives a round trip and struct keys are representable.
func (m *OrderedMap[K, V]) MarshalJSON() ([]byte, error) {
	entries := make([]entry[K, V], 0, m.Len())
	for k, v := range m.All() {
		entries = append(entries, entry[K, V]{Key: k, Value: v})
	}
	return json.Marshal(entries)
}

// UnmarshalJSON decodes the array form produced by MarshalJSON.
func (m *OrderedMap[K, V]) UnmarshalJSON(data []byte) error {
	var entries []entry[K, V]
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	m.keys = nil
	m.values = make(map[K]V, len(entries))
	for _, e := range entries {
		m.Set(e.Key, e.Value)
	}
	return nil
}
