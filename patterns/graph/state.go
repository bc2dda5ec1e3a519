package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"slices"
)

// Update is the partial record a node returns. Keys it omits keep their
// previous value.
type Update map[string]any

// State is an immutable, ordered record of named values. Keys follow the
// declaration order of the graph's state shape; in graphs without a shape,
// keys keep their first-insertion order. The zero State is empty.
//
// State is a shallow record: slice and map values are shared between
// successive States and must not be modified in place by nodes.
type State struct {
	keys   []string
	values map[string]any
}

// NewState builds a State from values without any shape. Keys are ordered
// alphabetically.
func NewState(values map[string]any) State {
	state, _ := Merge(State{}, Update(values), nil)
	return state
}

// Get returns the value stored under key.
func (state State) Get(key string) (any, bool) {
	value, exists := state.values[key]
	return value, exists
}

// Has reports whether key is present.
func (state State) Has(key string) bool {
	_, exists := state.values[key]
	return exists
}

// Keys returns the keys in order.
func (state State) Keys() []string {
	return slices.Clone(state.keys)
}

// Len returns the number of keys.
func (state State) Len() int {
	return len(state.keys)
}

// Map returns a copy of the values.
func (state State) Map() map[string]any {
	return maps.Clone(state.values)
}

// String returns the string stored under key, or "" when the key is absent
// or holds another type.
func (state State) String(key string) string {
	text, _ := state.values[key].(string)
	return text
}

// Float returns the number stored under key converted to float64, or 0 when
// the key is absent or not numeric.
func (state State) Float(key string) float64 {
	value, exists := state.values[key]
	if !exists || value == nil {
		return 0
	}
	reflected := reflect.ValueOf(value)
	switch {
	case reflected.CanFloat():
		return reflected.Float()
	case reflected.CanInt():
		return float64(reflected.Int())
	case reflected.CanUint():
		return float64(reflected.Uint())
	default:
		return 0
	}
}

// Value returns the value under key asserted to T.
func Value[T any](state State, key string) (T, bool) {
	typed, ok := state.values[key].(T)
	return typed, ok
}

// Project returns a State holding only the keys declared by shape, in the
// shape's order. Declared keys without a value are left out.
func (state State) Project(shape *Shape) State {
	if shape == nil {
		return state
	}
	projected := State{values: make(map[string]any, len(shape.fields))}
	for _, name := range shape.Names() {
		if value, exists := state.values[name]; exists {
			projected.keys = append(projected.keys, name)
			projected.values[name] = value
		}
	}
	return projected
}

// MarshalJSON encodes the State as a JSON object with keys in order.
func (state State) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for position, key := range state.keys {
		if position > 0 {
			buf.WriteByte(',')
		}
		encodedKey, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		encodedValue, err := json.Marshal(state.values[key])
		if err != nil {
			return nil, fmt.Errorf("state key %q: %w", key, err)
		}
		buf.Write(encodedKey)
		buf.WriteByte(':')
		buf.Write(encodedValue)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Merge is the pure reduction of a State with an Update. It returns a new
// State; state itself is never modified. Keys absent from update keep their
// previous value. With a shape, every key must be declared and type-correct,
// and the field's Reducer (if any) combines the old and new values.
//
// Without a shape, updates overwrite and new keys are appended in
// alphabetical order so that ordering is deterministic.
func Merge(state State, update Update, shape *Shape) (State, error) {
	values := make(map[string]any, len(state.values)+len(update))
	maps.Copy(values, state.values)

	updateKeys := slices.Sorted(maps.Keys(update))
	for _, key := range updateKeys {
		value := update[key]
		if shape == nil {
			values[key] = value
			continue
		}

		field, declared := shape.Field(key)
		if !declared {
			return State{}, &InvalidUpdateError{Key: key, Reason: fmt.Sprintf("not declared in state shape %q", shape.Name())}
		}
		if err := field.check(value); err != nil {
			return State{}, &InvalidUpdateError{Key: key, Reason: err.Error()}
		}
		if field.Reducer != nil {
			reduced, err := field.Reducer(state.values[key], value)
			if err != nil {
				return State{}, &InvalidUpdateError{Key: key, Reason: "reducer failed: " + err.Error()}
			}
			value = reduced
		}
		values[key] = value
	}

	merged := State{values: values}
	if shape != nil {
		for _, name := range shape.Names() {
			if _, exists := values[name]; exists {
				merged.keys = append(merged.keys, name)
			}
		}
		return merged, nil
	}

	merged.keys = slices.Clone(state.keys)
	for _, key := range updateKeys {
		if _, existed := state.values[key]; !existed {
			merged.keys = append(merged.keys, key)
		}
	}
	return merged, nil
}
