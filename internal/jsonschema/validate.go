package jsonschema

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// Validate checks decoded JSON arguments against an object schema: required
// properties must be present, and known properties must match their declared
// type and enum. Every violation is reported.
func Validate(schema *Schema, arguments map[string]any) error {
	if schema == nil {
		return nil
	}

	var problems []error
	for _, name := range schema.Required {
		if _, present := arguments[name]; !present {
			problems = append(problems, fmt.Errorf("missing required argument %q", name))
		}
	}
	for name, value := range arguments {
		property, known := schema.Properties[name]
		if !known {
			continue
		}
		if err := validateValue(property, value); err != nil {
			problems = append(problems, fmt.Errorf("argument %q: %w", name, err))
		}
	}
	return errors.Join(problems...)
}

func validateValue(schema *Schema, value any) error {
	if value == nil {
		return nil
	}

	switch schema.Type {
	case "string":
		if _, ok := value.(string); !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("expected boolean, got %T", value)
		}
	case "number":
		if _, ok := asFloat(value); !ok {
			return fmt.Errorf("expected number, got %T", value)
		}
	case "integer":
		number, ok := asFloat(value)
		if !ok || number != math.Trunc(number) {
			return fmt.Errorf("expected integer, got %v", value)
		}
	case "array":
		if _, ok := value.([]any); !ok {
			return fmt.Errorf("expected array, got %T", value)
		}
	case "object":
		nested, ok := value.(map[string]any)
		if !ok {
			return fmt.Errorf("expected object, got %T", value)
		}
		if len(schema.Properties) > 0 {
			return Validate(schema, nested)
		}
	}

	if len(schema.Enum) > 0 && !slices.ContainsFunc(schema.Enum, func(allowed any) bool { return enumEqual(allowed, value) }) {
		return fmt.Errorf("value %v is not one of %v", value, schema.Enum)
	}
	return nil
}

func enumEqual(allowed, value any) bool {
	allowedNumber, allowedIsNumber := asFloat(allowed)
	valueNumber, valueIsNumber := asFloat(value)
	if allowedIsNumber && valueIsNumber {
		return allowedNumber == valueNumber
	}
	return allowed == value
}

func asFloat(value any) (float64, bool) {
	switch number := value.(type) {
	case float64:
		return number, true
	case float32:
		return float64(number), true
	case int:
		return float64(number), true
	case int64:
		return float64(number), true
	case int32:
		return float64(number), true
	default:
		return 0, false
	}
}
