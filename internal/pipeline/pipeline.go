// Package pipeline orchestrates one transform run: the caller's transform
// produces a candidate tree, strict mode is checked against the misses the
// transform observed, then the structural post-processor resolves directives
// and optionally prunes values without content.
package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ericpan64/chidian/internal/evaluator"
	"github.com/ericpan64/chidian/internal/mutator"
	"github.com/ericpan64/chidian/internal/parser"
	"github.com/ericpan64/chidian/internal/processor"
)

var (
	// ErrStrictViolation reports that a strict run read at least one missing
	// key or index. The transform itself succeeded; the run is rejected
	// afterwards.
	ErrStrictViolation = errors.New("pipeline: strict mode violation")

	// ErrNilTransform reports a run invoked without a transform function.
	ErrNilTransform = errors.New("pipeline: nil transform")
)

// TransformFunc maps the input tree to a candidate output tree. It is called
// exactly once per run with a run-scoped Context.
type TransformFunc func(ctx *Context, input any) (any, error)

// Config controls one run. The zero value prunes empty values and evaluates
// leniently.
type Config struct {
	// KeepEmpty disables the emptiness pruning pass.
	KeepEmpty bool

	// Strict fails the run when the transform reads a missing key or index,
	// and makes mutations fail on type mismatches.
	Strict bool
}

// Context is the state of a single run, threaded into the transform. It is
// never shared across concurrent runs, so strict-mode miss tracking on one
// run cannot observe another.
type Context struct {
	id     string
	strict bool
	misses *evaluator.Recorder
	steps  []string
}

func newContext(strict bool) *Context {
	return &Context{
		id:     uuid.NewString(),
		strict: strict,
		misses: &evaluator.Recorder{},
	}
}

// ID returns the run identifier, unique per run.
func (c *Context) ID() string { return c.id }

// Strict reports whether the run was configured strict.
func (c *Context) Strict() bool { return c.strict }

// Log appends a step description to the run's step log.
func (c *Context) Log(step string) { c.steps = append(c.steps, step) }

// Steps returns the logged steps in order.
func (c *Context) Steps() []string { return c.steps }

// Misses returns the key/index misses observed so far.
func (c *Context) Misses() []string { return c.misses.Misses() }

// Get evaluates expr against tree. Misses are recorded on the run and yield
// null instead of failing, so a strict run completes its transform and is
// rejected afterwards with the full miss list. Malformed expressions and
// type mismatches still fail immediately.
func (c *Context) Get(tree any, expr string) (any, error) {
	path, err := parser.Parse(expr)
	if err != nil {
		return nil, err
	}
	v, err := evaluator.Evaluate(tree, path, evaluator.Options{Misses: c.misses})
	if errors.Is(err, evaluator.ErrKeyNotFound) || errors.Is(err, evaluator.ErrIndexOutOfRange) {
		return nil, nil
	}
	return v, err
}

// Put sets value at expr inside tree and returns the new tree, copy-on-write.
func (c *Context) Put(tree any, expr string, value any) (any, error) {
	path, err := parser.Parse(expr)
	if err != nil {
		return nil, err
	}
	return mutator.Apply(tree, path, value, mutator.Options{Strict: c.strict})
}

// Run executes fn over input and post-processes the candidate tree it
// returns. No stage runs unless the previous one succeeded.
func Run(input any, fn TransformFunc, cfg Config) (any, error) {
	out, _, err := RunWithContext(input, fn, cfg)
	return out, err
}

// RunWithContext is Run returning the run Context as well, for callers that
// want the step log or miss list after the fact.
func RunWithContext(input any, fn TransformFunc, cfg Config) (any, *Context, error) {
	if fn == nil {
		return nil, nil, ErrNilTransform
	}
	ctx := newContext(cfg.Strict)

	candidate, err := fn(ctx, input)
	if err != nil {
		return nil, ctx, fmt.Errorf("pipeline: transform: %w", err)
	}

	if cfg.Strict {
		if misses := ctx.Misses(); len(misses) > 0 {
			return nil, ctx, fmt.Errorf("%w: %s", ErrStrictViolation, strings.Join(misses, "; "))
		}
	}

	out, err := processor.Apply(candidate, !cfg.KeepEmpty)
	if err != nil {
		return nil, ctx, err
	}
	return out, ctx, nil
}
