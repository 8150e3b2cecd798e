// Package evaluator walks a parsed path over a tree and produces the
// addressed value, fanning out over arrays for wildcard, slice and tuple
// segments.
package evaluator

import (
	"errors"
	"fmt"

	"github.com/ericpan64/chidian/internal/parser"
)

var (
	// ErrKeyNotFound reports an absent object key, naming the key.
	ErrKeyNotFound = errors.New("evaluator: key not found")

	// ErrIndexOutOfRange reports an array index outside [0, len).
	ErrIndexOutOfRange = errors.New("evaluator: index out of range")

	// ErrTypeMismatch reports a segment applied to the wrong container kind.
	ErrTypeMismatch = errors.New("evaluator: type mismatch")
)

// Recorder collects key/index misses observed during lenient evaluation so a
// pipeline run can surface them afterwards. It is scoped to one run and must
// not be shared across concurrent runs.
type Recorder struct {
	misses []string
}

func (r *Recorder) record(desc string) {
	if r != nil {
		r.misses = append(r.misses, desc)
	}
}

// Misses returns the recorded miss descriptions in observation order.
func (r *Recorder) Misses() []string {
	if r == nil {
		return nil
	}
	return r.misses
}

// Options configures one evaluation.
type Options struct {
	// Strict makes every miss or type mismatch fatal immediately, removing
	// the lenient null fallback inside broadcast and tuple evaluation.
	Strict bool

	// Misses, when non-nil, records lenient key/index misses.
	Misses *Recorder
}

// Evaluate walks path over root. The current value is modeled as a sequence
// (usually of length one); Key segments broadcast over arrays, Wildcard fans
// out, Tuple collects subpath results positionally. A length-1 sequence from
// a non-broadcasting chain unwraps to the single value, so "a.b" yields a
// scalar while "a[*].b" yields an array even for one element.
//
// In lenient (default) evaluation a miss inside broadcast or tuple
// evaluation becomes null; a miss on a flat single-location chain is still
// returned as an error to the caller. Strict evaluation fails on the first
// miss anywhere.
func Evaluate(root any, path parser.Path, opts Options) (any, error) {
	if len(path.Segments) == 0 {
		return nil, fmt.Errorf("%w: empty path", parser.ErrInvalidPath)
	}
	e := &walker{opts: opts}
	return e.walk(root, path.Segments, false)
}

type walker struct {
	opts Options
}

// walk evaluates segments against root. nested marks evaluation inside a
// tuple subpath, where leniency applies from the first segment on.
func (e *walker) walk(root any, segments []parser.Segment, nested bool) (any, error) {
	current := []any{root}
	fanout := false

	for _, segment := range segments {
		next := make([]any, 0, len(current))
		lenientHere := nested || fanout

		for _, item := range current {
			switch seg := segment.(type) {
			case parser.Key:
				results, spread, err := e.evalKey(item, string(seg), lenientHere)
				if err != nil {
					return nil, err
				}
				if spread {
					fanout = true
					next = append(next, results...)
				} else {
					next = append(next, results[0])
				}

			case parser.Index:
				v, err := e.evalIndex(item, int(seg), lenientHere)
				if err != nil {
					return nil, err
				}
				next = append(next, v)

			case parser.Slice:
				v, err := e.evalSlice(item, seg, lenientHere)
				if err != nil {
					return nil, err
				}
				next = append(next, v)

			case parser.Wildcard:
				arr, ok := item.([]any)
				if !ok {
					v, err := e.mismatch(fmt.Errorf("%w: wildcard applied to %s", ErrTypeMismatch, kindOf(item)), lenientHere)
					if err != nil {
						return nil, err
					}
					next = append(next, v)
					continue
				}
				fanout = true
				next = append(next, arr...)

			case parser.Tuple:
				v, err := e.evalTuple(item, seg)
				if err != nil {
					return nil, err
				}
				next = append(next, v)
			}
		}
		current = next
	}

	if !fanout && len(current) == 1 {
		return current[0], nil
	}
	return current, nil
}

// evalKey resolves a Key segment. The spread result reports array broadcast:
// one result per element, to be flattened into the current sequence.
func (e *walker) evalKey(item any, key string, lenient bool) ([]any, bool, error) {
	switch t := item.(type) {
	case map[string]any:
		v, ok := t[key]
		if !ok {
			res, err := e.missKey(key, lenient)
			if err != nil {
				return nil, false, err
			}
			return []any{res}, false, nil
		}
		return []any{v}, false, nil

	case []any:
		results := make([]any, 0, len(t))
		for _, elem := range t {
			obj, ok := elem.(map[string]any)
			if !ok {
				// Broadcast reaches a non-object element.
				v, err := e.mismatch(fmt.Errorf("%w: key %q applied to %s inside array", ErrTypeMismatch, key, kindOf(elem)), true)
				if err != nil {
					return nil, false, err
				}
				results = append(results, v)
				continue
			}
			v, ok := obj[key]
			if !ok {
				res, err := e.missKey(key, true)
				if err != nil {
					return nil, false, err
				}
				results = append(results, res)
				continue
			}
			results = append(results, v)
		}
		return results, true, nil

	default:
		v, err := e.mismatch(fmt.Errorf("%w: key %q applied to %s", ErrTypeMismatch, key, kindOf(item)), lenient)
		if err != nil {
			return nil, false, err
		}
		return []any{v}, false, nil
	}
}

func (e *walker) evalIndex(item any, idx int, lenient bool) (any, error) {
	arr, ok := item.([]any)
	if !ok {
		return e.mismatch(fmt.Errorf("%w: index [%d] applied to %s", ErrTypeMismatch, idx, kindOf(item)), lenient)
	}

	resolved := idx
	if resolved < 0 {
		resolved += len(arr)
	}
	if resolved < 0 || resolved >= len(arr) {
		e.opts.Misses.record(fmt.Sprintf("index [%d]", idx))
		if e.opts.Strict || !lenient {
			return nil, fmt.Errorf("%w: [%d] on array of length %d", ErrIndexOutOfRange, idx, len(arr))
		}
		return nil, nil
	}
	return arr[resolved], nil
}

func (e *walker) evalSlice(item any, s parser.Slice, lenient bool) (any, error) {
	arr, ok := item.([]any)
	if !ok {
		return e.mismatch(fmt.Errorf("%w: slice %s applied to %s", ErrTypeMismatch, s, kindOf(item)), lenient)
	}

	start, end := resolveSliceBounds(s, len(arr))
	if start >= end {
		return []any{}, nil
	}
	out := make([]any, end-start)
	copy(out, arr[start:end])
	return out, nil
}

// resolveSliceBounds applies Python-style defaults and clamping: negative
// bounds resolve against the length, then both bounds clamp into [0, len].
func resolveSliceBounds(s parser.Slice, length int) (int, int) {
	start, end := 0, length
	if s.Start != nil {
		start = *s.Start
		if start < 0 {
			start += length
		}
	}
	if s.End != nil {
		end = *s.End
		if end < 0 {
			end += length
		}
	}
	start = clamp(start, 0, length)
	end = clamp(end, 0, length)
	return start, end
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// evalTuple collects each subpath result positionally. The tuple broadcasts
// over arrays: applied to an array it evaluates element-wise, recursively,
// before descending into the subpaths.
func (e *walker) evalTuple(item any, tuple parser.Tuple) (any, error) {
	if arr, ok := item.([]any); ok {
		out := make([]any, len(arr))
		for i, elem := range arr {
			v, err := e.evalTuple(elem, tuple)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}

	out := make([]any, len(tuple))
	for i, sub := range tuple {
		v, err := e.walk(item, sub.Segments, true)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// missKey handles an absent object key: recorded always, null in lenient
// broadcast/tuple context, an error otherwise.
func (e *walker) missKey(key string, lenient bool) (any, error) {
	e.opts.Misses.record(fmt.Sprintf("key %q", key))
	if e.opts.Strict || !lenient {
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	return nil, nil
}

// mismatch handles a segment applied to the wrong kind of value.
func (e *walker) mismatch(err error, lenient bool) (any, error) {
	if e.opts.Strict || !lenient {
		return nil, err
	}
	return nil, nil
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
