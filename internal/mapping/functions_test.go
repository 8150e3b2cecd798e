package mapping

import (
	"errors"
	"reflect"
	"testing"
)

func TestChainApply(t *testing.T) {
	tests := []struct {
		name  string
		fns   []string
		input any
		want  any
	}{
		{name: "upper", fns: []string{"upper"}, input: "abc", want: "ABC"},
		{name: "lower", fns: []string{"lower"}, input: "ABC", want: "abc"},
		{name: "trim_then_title", fns: []string{"trim", "title"}, input: "  ada lovelace ", want: "Ada Lovelace"},
		{name: "fields", fns: []string{"fields"}, input: "a b  c", want: []any{"a", "b", "c"}},
		{name: "join", fns: []string{"join"}, input: []any{"a", 1, true}, want: "a, 1, true"},
		{name: "first_array", fns: []string{"first"}, input: []any{1, 2}, want: 1},
		{name: "last_string", fns: []string{"last"}, input: "héllo", want: "o"},
		{name: "first_empty", fns: []string{"first"}, input: []any{}, want: nil},
		{name: "count_string_runes", fns: []string{"count"}, input: "héllo", want: 5},
		{name: "count_object", fns: []string{"count"}, input: map[string]any{"a": 1}, want: 1},
		{name: "empty_chain", fns: nil, input: "x", want: "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain, err := NewChain(tt.fns)
			if err != nil {
				t.Fatalf("NewChain returned error: %v", err)
			}
			got, err := chain.Apply(tt.input)
			if err != nil {
				t.Fatalf("Apply returned error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Apply = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestChainNullShortCircuits(t *testing.T) {
	chain, err := NewChain([]string{"upper", "trim"})
	if err != nil {
		t.Fatalf("NewChain returned error: %v", err)
	}
	got, err := chain.Apply(nil)
	if err != nil || got != nil {
		t.Errorf("Apply(nil) = %v, %v; want nil, nil", got, err)
	}
}

func TestChainTypeErrors(t *testing.T) {
	chain, err := NewChain([]string{"upper"})
	if err != nil {
		t.Fatalf("NewChain returned error: %v", err)
	}
	if _, err := chain.Apply(42); !errors.Is(err, ErrApply) {
		t.Errorf("Apply(42) error = %v, want ErrApply", err)
	}
}

func TestNewChainUnknownFunction(t *testing.T) {
	if _, err := NewChain([]string{"upper", "nope"}); !errors.Is(err, ErrUnknownFunction) {
		t.Errorf("NewChain error = %v, want ErrUnknownFunction", err)
	}
}
