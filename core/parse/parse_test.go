package parse

import (
	"testing"
)

type additionInput struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

func TestParseStringAs_Scalars(t *testing.T) {
	if got, err := ParseStringAs[string]("  keep spaces "); err != nil || got != "  keep spaces " {
		t.Errorf("string: got %q, %v", got, err)
	}
	if got, err := ParseStringAs[int](" 42 "); err != nil || got != 42 {
		t.Errorf("int: got %d, %v", got, err)
	}
	if got, err := ParseStringAs[float64]("2.5"); err != nil || got != 2.5 {
		t.Errorf("float: got %v, %v", got, err)
	}
	if got, err := ParseStringAs[bool]("true"); err != nil || !got {
		t.Errorf("bool: got %v, %v", got, err)
	}
	if _, err := ParseStringAs[uint]("-1"); err == nil {
		t.Error("uint: expected error for negative input")
	}
}

func TestParseStringAs_RepairsJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"valid", `{"a": 2, "b": 4}`},
		{"single quotes", `{'a': 2, 'b': 4}`},
		{"unquoted keys", `{a: 2, b: 4}`},
		{"trailing comma", `{"a": 2, "b": 4,}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStringAs[additionInput](tt.input)
			if err != nil {
				t.Fatalf("ParseStringAs() error = %v", err)
			}
			if got.A != 2 || got.B != 4 {
				t.Errorf("got %+v, want {A:2 B:4}", got)
			}
		})
	}
}

func TestParseArguments(t *testing.T) {
	empty, err := ParseArguments("   ")
	if err != nil || len(empty) != 0 {
		t.Errorf("empty arguments: got %v, %v", empty, err)
	}

	arguments, err := ParseArguments(`{"expression": "2 * (3 + 4)"}`)
	if err != nil {
		t.Fatalf("ParseArguments() error = %v", err)
	}
	if arguments["expression"] != "2 * (3 + 4)" {
		t.Errorf("expression = %v", arguments["expression"])
	}

	nullArguments, err := ParseArguments("null")
	if err != nil || nullArguments == nil {
		t.Errorf("null arguments should decode to an empty map, got %v, %v", nullArguments, err)
	}
}

func TestDecodeArguments(t *testing.T) {
	got, err := DecodeArguments[additionInput](map[string]any{"a": 1.5, "b": 2})
	if err != nil {
		t.Fatalf("DecodeArguments() error = %v", err)
	}
	if got.A != 1.5 || got.B != 2 {
		t.Errorf("got %+v", got)
	}

	if _, err := DecodeArguments[additionInput](map[string]any{"a": "two"}); err == nil {
		t.Error("expected type mismatch error")
	}
}
