package graph

import (
	"fmt"
	"reflect"
	"slices"
)

// FieldType is the declared kind of a state field.
type FieldType string

const (
	FieldString   FieldType = "string"
	FieldNumber   FieldType = "number"
	FieldMessages FieldType = "messages"
	FieldAny      FieldType = "any"
)

// Reducer combines the current value of a field with an update for it.
// current is nil when the field has no value yet. Reducers must not modify
// current in place.
type Reducer func(current, update any) (any, error)

// Field declares one named entry of a Shape. A nil Reducer means the update
// overwrites the current value.
type Field struct {
	Name     string
	Type     FieldType
	Nullable bool
	Reducer  Reducer
}

// String declares a string field.
func String(name string) Field { return Field{Name: name, Type: FieldString} }

// Number declares a numeric field. Any Go integer or float kind is accepted.
func Number(name string) Field { return Field{Name: name, Type: FieldNumber} }

// Messages declares a slice-valued field, typically a conversation.
func Messages(name string) Field { return Field{Name: name, Type: FieldMessages} }

// Any declares a field without type checking.
func Any(name string) Field { return Field{Name: name, Type: FieldAny} }

// WithReducer returns a copy of the field that merges updates with reducer.
func (field Field) WithReducer(reducer Reducer) Field {
	field.Reducer = reducer
	return field
}

// AsNullable returns a copy of the field that accepts nil values.
func (field Field) AsNullable() Field {
	field.Nullable = true
	return field
}

func (field Field) check(value any) error {
	if value == nil {
		if field.Nullable || field.Type == FieldAny {
			return nil
		}
		return fmt.Errorf("nil is not allowed for non-nullable %s field", field.Type)
	}

	switch field.Type {
	case FieldString:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
	case FieldNumber:
		if !isNumber(value) {
			return fmt.Errorf("expected number, got %T", value)
		}
	case FieldMessages:
		if reflect.TypeOf(value).Kind() != reflect.Slice {
			return fmt.Errorf("expected a slice, got %T", value)
		}
	}
	return nil
}

func isNumber(value any) bool {
	switch reflect.TypeOf(value).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// AppendReducer appends an update of type []T (or a single T) to the
// current []T. The result is always a fresh slice.
func AppendReducer[T any]() Reducer {
	return func(current, update any) (any, error) {
		var existing []T
		if current != nil {
			typed, ok := current.([]T)
			if !ok {
				return nil, fmt.Errorf("current value has type %T, want %T", current, existing)
			}
			existing = typed
		}

		switch typed := update.(type) {
		case []T:
			return slices.Concat(existing, typed), nil
		case T:
			return slices.Concat(existing, []T{typed}), nil
		case nil:
			return slices.Clone(existing), nil
		default:
			return nil, fmt.Errorf("update has type %T, want %T", update, existing)
		}
	}
}

// Shape is an ordered set of named, typed fields describing a State.
type Shape struct {
	name   string
	fields []Field
	index  map[string]int
}

// NewShape declares a shape. Field order is preserved. A later field with
// the same name replaces an earlier one in place.
func NewShape(name string, fields ...Field) *Shape {
	shape := &Shape{name: name, index: make(map[string]int, len(fields))}
	for _, field := range fields {
		if position, exists := shape.index[field.Name]; exists {
			shape.fields[position] = field
			continue
		}
		shape.index[field.Name] = len(shape.fields)
		shape.fields = append(shape.fields, field)
	}
	return shape
}

// Name returns the shape name.
func (shape *Shape) Name() string { return shape.name }

// Fields returns a copy of the declared fields in order.
func (shape *Shape) Fields() []Field { return slices.Clone(shape.fields) }

// Names returns the field names in declaration order.
func (shape *Shape) Names() []string {
	names := make([]string, len(shape.fields))
	for position, field := range shape.fields {
		names[position] = field.Name
	}
	return names
}

// Has reports whether the shape declares name.
func (shape *Shape) Has(name string) bool {
	_, exists := shape.index[name]
	return exists
}

// Field returns the declaration of name.
func (shape *Shape) Field(name string) (Field, bool) {
	position, exists := shape.index[name]
	if !exists {
		return Field{}, false
	}
	return shape.fields[position], true
}

// Missing returns the names declared by other but not by shape, in other's order.
func (shape *Shape) Missing(other *Shape) []string {
	if other == nil {
		return nil
	}
	var missing []string
	for _, field := range other.fields {
		if !shape.Has(field.Name) {
			missing = append(missing, field.Name)
		}
	}
	return missing
}

// unionShape joins shapes in order; the first declaration of a name wins.
func unionShape(name string, shapes ...*Shape) *Shape {
	var fields []Field
	seen := map[string]bool{}
	for _, shape := range shapes {
		if shape == nil {
			continue
		}
		for _, field := range shape.fields {
			if !seen[field.Name] {
				seen[field.Name] = true
				fields = append(fields, field)
			}
		}
	}
	return NewShape(name, fields...)
}
