// Package processor rewrites a candidate output tree produced by a
// transform step: Drop markers delete the addressed ancestor container, Keep
// wrappers shield their value from emptiness pruning, and pruning removes
// values without content.
package processor

import (
	"errors"
	"fmt"

	"github.com/ericpan64/chidian/internal/tree"
)

// ErrDropDepth reports a Drop marker addressing an ancestor above the tree
// root. The transform authored an impossible directive; there is no
// recovery.
var ErrDropDepth = errors.New("processor: drop level exceeds tree depth")

// Apply resolves Drop and Keep directives in root and, when removeEmpty is
// set, prunes values without content. A dropped object root yields an empty
// object and a dropped array root an empty array, so the pipeline always
// returns a container when it was given one.
func Apply(root any, removeEmpty bool) (any, error) {
	r, err := resolve(root)
	if err != nil {
		return nil, err
	}
	if r.pending {
		if r.levels > 0 {
			return nil, fmt.Errorf("%w: %d level(s) above the root", ErrDropDepth, r.levels)
		}
		switch root.(type) {
		case map[string]any:
			return map[string]any{}, nil
		case []any:
			return []any{}, nil
		default:
			return nil, nil
		}
	}

	out, _ := finalize(r.value, removeEmpty)
	return out, nil
}

// kept tags a value that bypasses emptiness pruning. It exists only between
// the resolve and finalize passes.
type kept struct {
	value any
}

// result is the outcome of resolving one value. A pending result carries a
// drop signal upward instead of a value: levels counts the container levels
// still to cross, with 0 meaning "remove the slot holding this value".
type result struct {
	value   any
	pending bool
	levels  int
}

func dropSignal(levels int) result { return result{pending: true, levels: levels} }

// resolve walks the tree depth-first, erasing directives. Drop signals
// travel upward through the return value, decremented at each container
// level until they reach the ancestor they address.
func resolve(v any) (result, error) {
	switch t := v.(type) {
	case tree.DropLevel:
		return dropSignal(t.Levels()), nil

	case tree.Keep:
		inner, err := resolve(t.Value)
		if err != nil || inner.pending {
			return inner, err
		}
		return result{value: kept{value: inner.value}}, nil

	case map[string]any:
		return resolveObject(t)

	case []any:
		return resolveArray(t)

	default:
		return result{value: v}, nil
	}
}

func resolveObject(obj map[string]any) (result, error) {
	out := make(map[string]any, len(obj))
	for key, child := range obj {
		r, err := resolve(child)
		if err != nil {
			return result{}, err
		}
		if !r.pending {
			out[key] = r.value
			continue
		}
		switch {
		case r.levels == 0:
			// The child's slot is removed; the object survives.
		case r.levels == 1:
			// This object is the addressed ancestor: collapse it and stop
			// processing further keys.
			return dropSignal(0), nil
		default:
			return dropSignal(r.levels - 1), nil
		}
	}
	return result{value: out}, nil
}

func resolveArray(arr []any) (result, error) {
	out := make([]any, 0, len(arr))
	for _, item := range arr {
		// A bare marker as an array element: ThisObject removes just that
		// element; higher levels address the array itself and beyond.
		if level, ok := item.(tree.DropLevel); ok {
			if level == tree.DropThisObject {
				continue
			}
			return dropSignal(level.Levels() - 1), nil
		}

		r, err := resolve(item)
		if err != nil {
			return result{}, err
		}
		if !r.pending {
			out = append(out, r.value)
			continue
		}
		switch {
		case r.levels == 0:
			// The element is omitted; remaining elements compact naturally.
		case r.levels == 1:
			return dropSignal(0), nil
		default:
			return dropSignal(r.levels - 1), nil
		}
	}
	return result{value: out}, nil
}

// finalize unwraps kept tags and, when removeEmpty is set, prunes members
// without content. Children are finalized before their parent decides, so a
// shallow emptiness check on the result is exact. The keep flag reports that
// the value must be retained regardless of content.
func finalize(v any, removeEmpty bool) (any, bool) {
	switch t := v.(type) {
	case kept:
		// Everything beneath a Keep survives; only nested tags are erased.
		out, _ := finalize(t.value, false)
		return out, true

	case map[string]any:
		out := make(map[string]any, len(t))
		for key, child := range t {
			c, keep := finalize(child, removeEmpty)
			if removeEmpty && !keep && isEmpty(c) {
				continue
			}
			out[key] = c
		}
		return out, false

	case []any:
		out := make([]any, 0, len(t))
		for _, item := range t {
			c, keep := finalize(item, removeEmpty)
			if removeEmpty && !keep && isEmpty(c) {
				continue
			}
			out = append(out, c)
		}
		return out, false

	default:
		return v, false
	}
}

// isEmpty is the shallow content check used during pruning; finalize works
// bottom-up, so members lacking content are already gone when the parent is
// inspected.
func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	default:
		return false
	}
}
