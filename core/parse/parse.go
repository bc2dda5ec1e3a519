package parse

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ParseStringAs converts content into T. Strings are returned as-is, other
// scalar kinds go through strconv, and everything else is decoded as JSON
// with one repair attempt on failure.
//
// Example:
//
//	type Addition struct {
//	    A float64 `json:"a"`
//	    B float64 `json:"b"`
//	}
//	args, err := parse.ParseStringAs[Addition](`{a: 2, 'b': 4,}`)
func ParseStringAs[T any](content string) (T, error) {
	var result T
	target := reflect.ValueOf(&result).Elem()
	trimmed := strings.TrimSpace(content)

	switch target.Kind() {
	case reflect.String:
		target.SetString(content)
		return result, nil

	case reflect.Bool:
		value, err := strconv.ParseBool(trimmed)
		if err != nil {
			return result, fmt.Errorf("failed to parse content as bool: %w", err)
		}
		target.SetBool(value)
		return result, nil

	case reflect.Float32, reflect.Float64:
		value, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return result, fmt.Errorf("failed to parse content as float: %w", err)
		}
		target.SetFloat(value)
		return result, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		value, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return result, fmt.Errorf("failed to parse content as int: %w", err)
		}
		target.SetInt(value)
		return result, nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		value, err := strconv.ParseUint(trimmed, 10, 64)
		if err != nil {
			return result, fmt.Errorf("failed to parse content as uint: %w", err)
		}
		target.SetUint(value)
		return result, nil

	default:
		if err := unmarshalRepairing(trimmed, &result); err != nil {
			return result, err
		}
		return result, nil
	}
}

// ParseArguments decodes a tool-call argument string into a JSON object.
// An empty string yields an empty map.
func ParseArguments(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}
	arguments, err := ParseStringAs[map[string]any](raw)
	if err != nil {
		return nil, fmt.Errorf("invalid tool arguments: %w", err)
	}
	if arguments == nil {
		return map[string]any{}, nil
	}
	return arguments, nil
}

// DecodeArguments converts structured arguments into T by a JSON round trip,
// so json tags on T apply.
func DecodeArguments[T any](arguments map[string]any) (T, error) {
	var result T
	encoded, err := json.Marshal(arguments)
	if err != nil {
		return result, fmt.Errorf("failed to encode arguments: %w", err)
	}
	if err := json.Unmarshal(encoded, &result); err != nil {
		return result, fmt.Errorf("failed to decode arguments as %T: %w", result, err)
	}
	return result, nil
}

func unmarshalRepairing(content string, target any) error {
	err := json.Unmarshal([]byte(content), target)
	if err == nil {
		return nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(content)
	if repairErr != nil {
		return fmt.Errorf("failed to unmarshal content as %T and failed to repair JSON: unmarshal error: %w, repair error: %v", target, err, repairErr)
	}
	if err := json.Unmarshal([]byte(repaired), target); err != nil {
		return fmt.Errorf("failed to unmarshal repaired JSON as %T: %w (repaired: %s)", target, err, repaired)
	}
	return nil
}
