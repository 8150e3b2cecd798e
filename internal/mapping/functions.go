package mapping

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	// ErrUnknownFunction reports an apply chain naming a function that is not
	// registered.
	ErrUnknownFunction = errors.New("mapping: unknown function")

	// ErrApply reports a registered function applied to a value of the wrong
	// kind.
	ErrApply = errors.New("mapping: apply failed")
)

// Func is a unary value transformation usable in an apply chain.
type Func func(any) (any, error)

// Chain applies its functions left to right. A null value short-circuits the
// rest of the chain, so chains never have to guard against missing input.
type Chain []Func

// Apply runs the chain over v.
func (c Chain) Apply(v any) (any, error) {
	for _, fn := range c {
		if v == nil {
			return nil, nil
		}
		var err error
		v, err = fn(v)
		if err != nil {
			return nil, err
		}
	}
	return v, nil
}

// NewChain resolves names against the function registry.
func NewChain(names []string) (Chain, error) {
	chain := make(Chain, 0, len(names))
	for _, name := range names {
		fn, ok := registry[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFunction, name)
		}
		chain = append(chain, fn)
	}
	return chain, nil
}

var registry = map[string]Func{
	"upper":  stringFunc("upper", strings.ToUpper),
	"lower":  stringFunc("lower", strings.ToLower),
	"trim":   stringFunc("trim", strings.TrimSpace),
	"title":  stringFunc("title", titleCase),
	"fields": fieldsFunc,
	"join":   joinFunc,
	"first":  firstFunc,
	"last":   lastFunc,
	"count":  countFunc,
}

func stringFunc(name string, fn func(string) string) Func {
	return func(v any) (any, error) {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects a string, got %T", ErrApply, name, v)
		}
		return fn(s), nil
	}
}

// titleCase uses proper Unicode word boundaries.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			runes := []rune(word)
			runes[0] = unicode.ToUpper(runes[0])
			words[i] = string(runes)
		}
	}
	return strings.Join(words, " ")
}

// fieldsFunc splits a string on whitespace.
func fieldsFunc(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%w: fields expects a string, got %T", ErrApply, v)
	}
	parts := strings.Fields(s)
	out := make([]any, len(parts))
	for i, p := range parts {
		out[i] = p
	}
	return out, nil
}

// joinFunc joins array elements with ", ", formatting non-strings.
func joinFunc(v any) (any, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: join expects an array, got %T", ErrApply, v)
	}
	parts := make([]string, len(arr))
	for i, elem := range arr {
		if s, ok := elem.(string); ok {
			parts[i] = s
			continue
		}
		parts[i] = fmt.Sprintf("%v", elem)
	}
	return strings.Join(parts, ", "), nil
}

func firstFunc(v any) (any, error) {
	switch t := v.(type) {
	case []any:
		if len(t) == 0 {
			return nil, nil
		}
		return t[0], nil
	case string:
		if t == "" {
			return nil, nil
		}
		return string([]rune(t)[0]), nil
	default:
		return nil, fmt.Errorf("%w: first expects an array or string, got %T", ErrApply, v)
	}
}

func lastFunc(v any) (any, error) {
	switch t := v.(type) {
	case []any:
		if len(t) == 0 {
			return nil, nil
		}
		return t[len(t)-1], nil
	case string:
		if t == "" {
			return nil, nil
		}
		runes := []rune(t)
		return string(runes[len(runes)-1]), nil
	default:
		return nil, fmt.Errorf("%w: last expects an array or string, got %T", ErrApply, v)
	}
}

func countFunc(v any) (any, error) {
	switch t := v.(type) {
	case []any:
		return len(t), nil
	case map[string]any:
		return len(t), nil
	case string:
		return len([]rune(t)), nil
	default:
		return nil, fmt.Errorf("%w: count expects a container or string, got %T", ErrApply, v)
	}
}
