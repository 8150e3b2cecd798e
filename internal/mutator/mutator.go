// Package mutator writes a value into a tree at a parsed path, creating
// intermediate containers as needed. Mutation is copy-on-write with
// structural sharing: only the containers along the walked path are rebuilt;
// untouched subtrees are referenced from the new tree.
package mutator

import (
	"errors"
	"fmt"

	"github.com/ericpan64/chidian/internal/evaluator"
	"github.com/ericpan64/chidian/internal/parser"
)

// ErrInvalidMutationPath reports a path that uses read-only constructs
// (wildcard, slice, tuple), is empty, or begins with an array index.
var ErrInvalidMutationPath = errors.New("mutator: invalid mutation path")

// Options configures one mutation.
type Options struct {
	// Strict fails on type mismatches along the path instead of overwriting
	// the conflicting node with a fresh container of the required type.
	Strict bool
}

// Apply sets value at path inside root and returns the new tree. The input
// tree is never modified; the result shares every subtree the path does not
// touch. Mutation targets exactly one location, so broadcast constructs are
// rejected up front.
func Apply(root any, path parser.Path, value any, opts Options) (any, error) {
	if err := ValidatePath(path); err != nil {
		return nil, err
	}
	return set(root, path.Segments, value, opts)
}

// ValidatePath enforces the write-path subset of the segment model.
func ValidatePath(path parser.Path) error {
	if len(path.Segments) == 0 {
		return fmt.Errorf("%w: empty path", ErrInvalidMutationPath)
	}
	if _, ok := path.Segments[0].(parser.Index); ok {
		return fmt.Errorf("%w: path must start with a key, not %s", ErrInvalidMutationPath, path.Segments[0])
	}
	for i, segment := range path.Segments {
		switch segment.(type) {
		case parser.Wildcard, parser.Slice, parser.Tuple:
			return fmt.Errorf("%w: %s at position %d addresses multiple locations", ErrInvalidMutationPath, segment, i)
		}
	}
	return nil
}

// set rebuilds the container at the head of segments with the remaining path
// applied beneath it. An exhausted path returns the value itself.
func set(current any, segments []parser.Segment, value any, opts Options) (any, error) {
	if len(segments) == 0 {
		return value, nil
	}

	switch seg := segments[0].(type) {
	case parser.Key:
		return setKey(current, string(seg), segments, value, opts)
	case parser.Index:
		return setIndex(current, int(seg), segments, value, opts)
	default:
		// ValidatePath rejects everything else before we get here.
		return nil, fmt.Errorf("%w: %s", ErrInvalidMutationPath, seg)
	}
}

func setKey(current any, key string, segments []parser.Segment, value any, opts Options) (any, error) {
	obj, ok := current.(map[string]any)
	if !ok && current != nil {
		if opts.Strict {
			return nil, fmt.Errorf("%w: cannot set key %q on %s", evaluator.ErrTypeMismatch, key, kindOf(current))
		}
		obj = nil // overwrite with a fresh object
	}

	out := make(map[string]any, len(obj)+1)
	for k, v := range obj {
		out[k] = v
	}

	child, err := descend(out[key], segments, value, opts, key)
	if err != nil {
		return nil, err
	}
	out[key] = child
	return out, nil
}

func setIndex(current any, idx int, segments []parser.Segment, value any, opts Options) (any, error) {
	arr, ok := current.([]any)
	if !ok && current != nil {
		if opts.Strict {
			return nil, fmt.Errorf("%w: cannot set index [%d] on %s", evaluator.ErrTypeMismatch, idx, kindOf(current))
		}
		arr = nil // overwrite with a fresh array
	}

	resolved := idx
	if resolved < 0 {
		// Negative indices address existing elements only; they never grow
		// the array.
		resolved += len(arr)
		if resolved < 0 {
			return nil, fmt.Errorf("%w: [%d] on array of length %d", evaluator.ErrIndexOutOfRange, idx, len(arr))
		}
	}

	length := len(arr)
	if resolved >= length {
		length = resolved + 1
	}
	out := make([]any, length)
	copy(out, arr)

	child, err := descend(out[resolved], segments, value, opts, fmt.Sprintf("[%d]", idx))
	if err != nil {
		return nil, err
	}
	out[resolved] = child
	return out, nil
}

// descend prepares the child at the current position for the rest of the
// path. For non-final segments the next segment's kind decides the container
// type required here: Index needs an array, Key needs an object. An existing
// child of the wrong kind fails in strict mode and is replaced otherwise.
func descend(existing any, segments []parser.Segment, value any, opts Options, at string) (any, error) {
	rest := segments[1:]
	if len(rest) == 0 {
		return value, nil
	}

	_, nextIsIndex := rest[0].(parser.Index)
	switch existing.(type) {
	case nil:
		// Created fresh by the recursive step.
	case []any:
		if !nextIsIndex {
			if opts.Strict {
				return nil, fmt.Errorf("%w: expected object at %s, found array", evaluator.ErrTypeMismatch, at)
			}
			existing = nil
		}
	case map[string]any:
		if nextIsIndex {
			if opts.Strict {
				return nil, fmt.Errorf("%w: expected array at %s, found object", evaluator.ErrTypeMismatch, at)
			}
			existing = nil
		}
	default:
		if opts.Strict {
			return nil, fmt.Errorf("%w: expected container at %s, found %s", evaluator.ErrTypeMismatch, at, kindOf(existing))
		}
		existing = nil
	}

	return set(existing, rest, value, opts)
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "bool"
	default:
		return "number"
	}
}
