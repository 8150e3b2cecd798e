package chidian

import (
	"io"

	"github.com/ericpan64/chidian/internal/lexicon"
	"github.com/ericpan64/chidian/internal/mapping"
	"github.com/ericpan64/chidian/internal/pipeline"
)

// Context carries per-run state into a transform: a run identifier, the
// strict flag, the miss record and a step log. Contexts are never shared
// across runs.
type Context = pipeline.Context

// TransformFunc maps an input tree to a candidate output tree. It is called
// exactly once per run.
type TransformFunc = pipeline.TransformFunc

// RunConfig controls a pipeline run. The zero value prunes empty values and
// evaluates leniently.
type RunConfig = pipeline.Config

// Run executes fn over input, then resolves Drop and Keep directives in the
// candidate tree and prunes values without content unless KeepEmpty is set.
// With Strict set, a transform that read a missing key or index fails the
// run with ErrStrictViolation after the transform completes.
func Run(input any, fn TransformFunc, cfg RunConfig) (any, error) {
	return pipeline.Run(input, fn, cfg)
}

// RunWithContext is Run returning the run Context, for callers that want the
// step log or miss list afterwards.
func RunWithContext(input any, fn TransformFunc, cfg RunConfig) (any, *Context, error) {
	return pipeline.RunWithContext(input, fn, cfg)
}

// ApplyFunc is a unary value transformation.
type ApplyFunc func(any) (any, error)

// Chain composes fns left to right. A null value short-circuits the rest of
// the chain.
func Chain(fns ...ApplyFunc) ApplyFunc {
	return func(v any) (any, error) {
		for _, fn := range fns {
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
}

// CompileMapping parses a YAML mapping document and compiles it into a
// transform function for Run. Each output field names a put-path and is
// produced from a path expression, a JSONPath selector or a literal, with
// optional defaulting, apply chains and structural directives.
func CompileMapping(r io.Reader) (TransformFunc, error) {
	spec, err := mapping.Parse(r)
	if err != nil {
		return nil, err
	}
	return spec.Compile()
}

// Lexicon is a bidirectional string table for code translation in transform
// steps.
type Lexicon = lexicon.Lexicon

// LexiconPair is one forward mapping; earlier pairs win the reverse
// direction.
type LexiconPair = lexicon.Pair

// NewLexicon builds a lexicon from ordered pairs.
func NewLexicon(pairs []LexiconPair) *Lexicon {
	return lexicon.New(pairs)
}

// NewLexiconWithDefault builds a lexicon answering def for unknown keys.
func NewLexiconWithDefault(pairs []LexiconPair, def string) *Lexicon {
	return lexicon.NewWithDefault(pairs, def)
}
