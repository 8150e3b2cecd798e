// Package codec reads and writes trees as JSON or YAML. Directive values
// cross the text boundary as reserved single-key objects, {"$drop": level}
// and {"$keep": value}, and are revived into their in-memory types on
// decode.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	yaml "github.com/goccy/go-yaml"
	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/pretty"

	"github.com/ericpan64/chidian/internal/tree"
)

const (
	dropSentinel = "$drop"
	keepSentinel = "$keep"
)

var (
	// ErrDecode reports unreadable input or an invalid directive sentinel.
	ErrDecode = errors.New("codec: decode failed")

	// ErrEncode reports a tree that cannot be serialized.
	ErrEncode = errors.New("codec: encode failed")
)

// Format selects the text representation.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// ParseFormat validates a format name from user input.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case JSON, YAML:
		return Format(name), nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", ErrDecode, name)
	}
}

// Decode reads one document and revives directive sentinels.
func Decode(data []byte, format Format) (any, error) {
	var raw any
	switch format {
	case JSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
	case YAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrDecode, format)
	}
	return revive(raw)
}

// Encode writes a tree, flattening directives into their sentinel encoding.
// Pretty output is JSON-only.
func Encode(w io.Writer, v any, format Format, prettyOutput bool) error {
	flat := flatten(v)
	switch format {
	case JSON:
		if prettyOutput {
			opts := ojg.Options{Sort: true, Indent: 2}
			if _, err := io.WriteString(w, pretty.JSON(flat, &opts)); err != nil {
				return fmt.Errorf("%w: %v", ErrEncode, err)
			}
			_, err := io.WriteString(w, "\n")
			return err
		}
		enc := json.NewEncoder(w)
		if err := enc.Encode(flat); err != nil {
			return fmt.Errorf("%w: %v", ErrEncode, err)
		}
		return nil
	case YAML:
		data, err := yaml.Marshal(flat)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrEncode, err)
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("%w: unknown format %q", ErrEncode, format)
	}
}

// revive replaces sentinel objects with directive values, depth-first.
func revive(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		if len(t) == 1 {
			if level, ok := t[dropSentinel]; ok {
				name, ok := level.(string)
				if !ok {
					return nil, fmt.Errorf("%w: %s wants a level name, got %T", ErrDecode, dropSentinel, level)
				}
				parsed, ok := tree.ParseDropLevel(name)
				if !ok {
					return nil, fmt.Errorf("%w: unknown drop level %q", ErrDecode, name)
				}
				return parsed, nil
			}
			if inner, ok := t[keepSentinel]; ok {
				revived, err := revive(inner)
				if err != nil {
					return nil, err
				}
				return tree.Keep{Value: revived}, nil
			}
		}
		out := make(map[string]any, len(t))
		for k, child := range t {
			revived, err := revive(child)
			if err != nil {
				return nil, err
			}
			out[k] = revived
		}
		return out, nil

	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			revived, err := revive(item)
			if err != nil {
				return nil, err
			}
			out[i] = revived
		}
		return out, nil

	default:
		return v, nil
	}
}

// flatten is the inverse of revive.
func flatten(v any) any {
	switch t := v.(type) {
	case tree.DropLevel:
		return map[string]any{dropSentinel: t.String()}
	case tree.Keep:
		return map[string]any{keepSentinel: flatten(t.Value)}
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[k] = flatten(child)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = flatten(item)
		}
		return out
	default:
		return v
	}
}
