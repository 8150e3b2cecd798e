// Package mapping compiles declarative YAML mapping documents into transform
// functions. Each output field names a put-path and is produced from a path
// expression, a JSONPath selector, or a literal, with optional defaulting,
// apply chains and structural directives.
package mapping

import (
	"errors"
	"fmt"
	"io"
	"sort"

	yaml "github.com/goccy/go-yaml"
	"github.com/theory/jsonpath"

	"github.com/ericpan64/chidian/internal/mutator"
	"github.com/ericpan64/chidian/internal/parser"
	"github.com/ericpan64/chidian/internal/pipeline"
	"github.com/ericpan64/chidian/internal/tree"
)

// ErrMapping is the sentinel error for malformed mapping documents.
var ErrMapping = errors.New("mapping: invalid mapping")

// Spec is a declarative mapping document.
type Spec struct {
	Name   string           `yaml:"name,omitempty"`
	Fields map[string]Field `yaml:"fields"`
}

// Field describes how one output field is produced. Exactly one of Path,
// JSONPath or Value must be set.
type Field struct {
	Path     string `yaml:"path,omitempty"`     // path DSL expression
	JSONPath string `yaml:"jsonpath,omitempty"` // RFC 9535 JSONPath
	Value    any    `yaml:"value,omitempty"`    // literal

	Default     any      `yaml:"default,omitempty"`       // replaces a null result
	Apply       []string `yaml:"apply,omitempty"`         // function chain, applied in order
	Keep        bool     `yaml:"keep,omitempty"`          // shield the result from pruning
	DropIfEmpty string   `yaml:"drop_if_empty,omitempty"` // emit a drop when the result has no content
}

// Parse decodes a mapping document.
func Parse(r io.Reader) (*Spec, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMapping, err)
	}
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMapping, err)
	}
	if len(spec.Fields) == 0 {
		return nil, fmt.Errorf("%w: no fields", ErrMapping)
	}
	return &spec, nil
}

type compiledField struct {
	name     string
	target   parser.Path
	path     string         // non-empty for DSL sources
	selector *jsonpath.Path // non-nil for JSONPath sources
	literal  any
	def      any
	chain    Chain
	keep     bool
	dropWhen tree.DropLevel // 0 when unset
}

// Compile validates the document and produces a transform function for the
// pipeline. All paths, selectors and function names are resolved up front so
// a compiled mapping cannot fail on syntax at run time.
func (s *Spec) Compile() (pipeline.TransformFunc, error) {
	names := make([]string, 0, len(s.Fields))
	for name := range s.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	compiled := make([]compiledField, 0, len(names))
	for _, name := range names {
		cf, err := compileField(name, s.Fields[name])
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, cf)
	}

	return func(ctx *pipeline.Context, input any) (any, error) {
		var out any = map[string]any{}
		for _, cf := range compiled {
			v, err := cf.produce(ctx, input)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", cf.name, err)
			}
			out, err = mutator.Apply(out, cf.target, v, mutator.Options{Strict: ctx.Strict()})
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", cf.name, err)
			}
			ctx.Log(fmt.Sprintf("mapped %s", cf.name))
		}
		return out, nil
	}, nil
}

func compileField(name string, f Field) (compiledField, error) {
	cf := compiledField{name: name, path: f.Path, literal: f.Value, def: f.Default, keep: f.Keep}

	target, err := parser.Parse(name)
	if err != nil {
		return cf, fmt.Errorf("%w: field %q: %v", ErrMapping, name, err)
	}
	if err := mutator.ValidatePath(target); err != nil {
		return cf, fmt.Errorf("%w: field %q: %v", ErrMapping, name, err)
	}
	cf.target = target

	sources := 0
	if f.Path != "" {
		sources++
		if _, err := parser.Parse(f.Path); err != nil {
			return cf, fmt.Errorf("%w: field %q: %v", ErrMapping, name, err)
		}
	}
	if f.JSONPath != "" {
		sources++
		selector, err := jsonpath.Parse(f.JSONPath)
		if err != nil {
			return cf, fmt.Errorf("%w: field %q: invalid JSONPath %s: %v", ErrMapping, name, f.JSONPath, err)
		}
		cf.selector = selector
	}
	if f.Value != nil {
		sources++
	}
	if sources != 1 {
		return cf, fmt.Errorf("%w: field %q: exactly one of path, jsonpath or value required", ErrMapping, name)
	}

	cf.chain, err = NewChain(f.Apply)
	if err != nil {
		return cf, fmt.Errorf("%w: field %q: %v", ErrMapping, name, err)
	}

	if f.DropIfEmpty != "" {
		level, ok := tree.ParseDropLevel(f.DropIfEmpty)
		if !ok {
			return cf, fmt.Errorf("%w: field %q: unknown drop level %q", ErrMapping, name, f.DropIfEmpty)
		}
		if f.Keep {
			return cf, fmt.Errorf("%w: field %q: keep and drop_if_empty are mutually exclusive", ErrMapping, name)
		}
		cf.dropWhen = level
	}
	return cf, nil
}

// produce evaluates the source, then defaulting, the apply chain, and the
// structural directives, in that order.
func (cf compiledField) produce(ctx *pipeline.Context, input any) (any, error) {
	var v any
	switch {
	case cf.path != "":
		var err error
		v, err = ctx.Get(input, cf.path)
		if err != nil {
			return nil, err
		}
	case cf.selector != nil:
		// JSONPath selectors are lenient: an empty node list is a null, a
		// single node unwraps, several nodes stay an array.
		nodes := cf.selector.Select(input)
		switch len(nodes) {
		case 0:
			v = nil
		case 1:
			v = nodes[0]
		default:
			v = append([]any{}, nodes...)
		}
	default:
		v = tree.Clone(cf.literal)
	}

	if v == nil && cf.def != nil {
		v = tree.Clone(cf.def)
	}

	v, err := cf.chain.Apply(v)
	if err != nil {
		return nil, err
	}

	if cf.dropWhen != 0 && !tree.HasContent(v) {
		return cf.dropWhen, nil
	}
	if cf.keep {
		return tree.Keep{Value: v}, nil
	}
	return v, nil
}
