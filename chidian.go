// Package chidian queries and reshapes JSON-like trees. A small path DSL
// addresses values inside nested objects and arrays, with wildcard and tuple
// fan-out on reads and copy-on-write writes; transform pipelines post-process
// their output with Drop and Keep directives and emptiness pruning.
package chidian

import (
	"errors"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/theory/jsonpath"

	"github.com/ericpan64/chidian/internal/evaluator"
	"github.com/ericpan64/chidian/internal/mutator"
	"github.com/ericpan64/chidian/internal/parser"
	"github.com/ericpan64/chidian/internal/pipeline"
	"github.com/ericpan64/chidian/internal/processor"
	"github.com/ericpan64/chidian/internal/tree"
)

// Directive values usable inside a transform's output tree.
type (
	// DropLevel marks a container for deletion during post-processing.
	DropLevel = tree.DropLevel

	// Keep shields a value from emptiness pruning.
	Keep = tree.Keep
)

// Drop levels, counting the marker's immediate container as the first.
const (
	DropThisObject       = tree.DropThisObject
	DropParent           = tree.DropParent
	DropGrandparent      = tree.DropGrandparent
	DropGreatGrandparent = tree.DropGreatGrandparent
)

// Sentinel errors, matchable with errors.Is.
var (
	ErrInvalidPath         = parser.ErrInvalidPath
	ErrKeyNotFound         = evaluator.ErrKeyNotFound
	ErrIndexOutOfRange     = evaluator.ErrIndexOutOfRange
	ErrTypeMismatch        = evaluator.ErrTypeMismatch
	ErrInvalidMutationPath = mutator.ErrInvalidMutationPath
	ErrDropDepth           = processor.ErrDropDepth
	ErrStrictViolation     = pipeline.ErrStrictViolation
)

// pathCache holds compiled path expressions; expressions repeat heavily when
// the same mapping runs over a document stream.
var pathCache = newPathCache()

func newPathCache() *lru.Cache[string, parser.Path] {
	cache, err := lru.New[string, parser.Path](512)
	if err != nil {
		panic(err)
	}
	return cache
}

func compilePath(expr string) (parser.Path, error) {
	if path, ok := pathCache.Get(expr); ok {
		return path, nil
	}
	path, err := parser.Parse(expr)
	if err != nil {
		return parser.Path{}, err
	}
	pathCache.Add(expr, path)
	return path, nil
}

// Option adjusts a Get or Put call.
type Option func(*options)

type options struct {
	def    any
	hasDef bool
	apply  ApplyFunc
	strict bool
}

// WithDefault substitutes def when the read misses or yields null.
func WithDefault(def any) Option {
	return func(o *options) {
		o.def = def
		o.hasDef = true
	}
}

// WithApply post-processes the read result with fns, in order.
func WithApply(fns ...ApplyFunc) Option {
	return func(o *options) { o.apply = Chain(fns...) }
}

// Strict makes misses fatal on reads and type mismatches fatal on writes.
func Strict() Option {
	return func(o *options) { o.strict = true }
}

// Get evaluates a path expression against data. Broadcast segments fan out
// over arrays; misses inside a fan-out become nulls while a miss on a flat
// chain is an error, unless a default is configured.
func Get(data any, expr string, opts ...Option) (any, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	path, err := compilePath(expr)
	if err != nil {
		return nil, err
	}

	v, err := evaluator.Evaluate(data, path, evaluator.Options{Strict: o.strict})
	if err != nil {
		if o.hasDef && !o.strict && isMiss(err) {
			v = nil
		} else {
			return nil, err
		}
	}
	if v == nil && o.hasDef {
		v = o.def
	}
	if o.apply != nil {
		return o.apply(v)
	}
	return v, nil
}

func isMiss(err error) bool {
	return errors.Is(err, evaluator.ErrKeyNotFound) || errors.Is(err, evaluator.ErrIndexOutOfRange)
}

// Put sets value at a path expression inside data and returns the new tree.
// The input is never modified; untouched subtrees are shared. Paths with
// wildcard, slice or tuple segments are rejected.
func Put(data any, expr string, value any, opts ...Option) (any, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	path, err := compilePath(expr)
	if err != nil {
		return nil, err
	}
	return mutator.Apply(data, path, value, mutator.Options{Strict: o.strict})
}

// GetJSONPath evaluates an RFC 9535 JSONPath expression against data. An
// empty node list yields null, a single node unwraps, several nodes stay an
// array.
func GetJSONPath(data any, expr string) (any, error) {
	selector, err := jsonpath.Parse(expr)
	if err != nil {
		return nil, err
	}
	nodes := selector.Select(data)
	switch len(nodes) {
	case 0:
		return nil, nil
	case 1:
		return nodes[0], nil
	default:
		return append([]any{}, nodes...), nil
	}
}
