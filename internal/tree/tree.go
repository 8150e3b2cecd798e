// Package tree defines the value model shared by every engine in this
// module: JSON-like trees made of nil, bool, number, string, []any and
// map[string]any, plus the two directive values (Drop, Keep) that transform
// steps may place into a candidate output tree.
package tree

// DropLevel marks a value whose surrounding container(s) should be removed
// during post-processing. The level counts container levels upward, with the
// immediate container of the marker as level 1.
type DropLevel int

const (
	DropThisObject DropLevel = iota + 1
	DropParent
	DropGrandparent
	DropGreatGrandparent
)

// Levels returns the number of container levels the marker removes.
func (d DropLevel) Levels() int { return int(d) }

func (d DropLevel) String() string {
	switch d {
	case DropThisObject:
		return "this_object"
	case DropParent:
		return "parent"
	case DropGrandparent:
		return "grandparent"
	case DropGreatGrandparent:
		return "greatgrandparent"
	default:
		return "invalid"
	}
}

// ParseDropLevel converts the symbolic name used at serialization boundaries
// back into a DropLevel. The boolean reports whether the name is known.
func ParseDropLevel(name string) (DropLevel, bool) {
	switch name {
	case "this_object":
		return DropThisObject, true
	case "parent":
		return DropParent, true
	case "grandparent":
		return DropGrandparent, true
	case "greatgrandparent":
		return DropGreatGrandparent, true
	default:
		return 0, false
	}
}

// Keep wraps a value that must survive emptiness pruning even when empty.
// The wrapper is consumed by the post-processor; it never appears in final
// output.
type Keep struct {
	Value any
}

// IsContainer reports whether v is one of the two recursive variants.
func IsContainer(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	default:
		return false
	}
}

// HasContent reports whether a value carries content. Nil, empty strings and
// containers whose members all lack content are empty; numbers and booleans
// always have content. Directive values count as content so they are never
// pruned before the post-processor sees them.
func HasContent(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case map[string]any:
		for _, child := range t {
			if HasContent(child) {
				return true
			}
		}
		return false
	case []any:
		for _, child := range t {
			if HasContent(child) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// Clone deep-copies a tree. Directive values are copied by value; the Keep
// payload is cloned recursively.
func Clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[k] = Clone(child)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = Clone(child)
		}
		return out
	case Keep:
		return Keep{Value: Clone(t.Value)}
	default:
		return v
	}
}
