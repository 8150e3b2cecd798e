package chidian

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestRunEndToEnd(t *testing.T) {
	input := map[string]any{
		"patient": map[string]any{"id": "p-1", "note": ""},
		"history": []any{},
	}

	fn := func(ctx *Context, in any) (any, error) {
		id, err := ctx.Get(in, "patient.id")
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"id":      id,
			"history": Keep{Value: []any{}},
			"scratch": map[string]any{"tmp": DropThisObject},
			"note":    "",
		}, nil
	}

	got, err := Run(input, fn, RunConfig{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	want := map[string]any{
		"id":      "p-1",
		"history": []any{},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Run = %#v, want %#v", got, want)
	}
}

func TestRunStrictViolation(t *testing.T) {
	fn := func(ctx *Context, in any) (any, error) {
		v, err := ctx.Get(in, "missing")
		if err != nil {
			return nil, err
		}
		return map[string]any{"slot": v}, nil
	}

	if _, err := Run(map[string]any{}, fn, RunConfig{Strict: true}); !errors.Is(err, ErrStrictViolation) {
		t.Errorf("Run error = %v, want ErrStrictViolation", err)
	}
}

func TestRunDropDepthIsFatal(t *testing.T) {
	fn := func(ctx *Context, in any) (any, error) {
		return map[string]any{"a": map[string]any{"flag": DropGreatGrandparent}}, nil
	}

	if _, err := Run(nil, fn, RunConfig{}); !errors.Is(err, ErrDropDepth) {
		t.Errorf("Run error = %v, want ErrDropDepth", err)
	}
}

func TestChainShortCircuitsOnNull(t *testing.T) {
	calls := 0
	count := func(v any) (any, error) { calls++; return v, nil }
	drop := func(v any) (any, error) { return nil, nil }

	chain := Chain(count, drop, count)
	got, err := chain("x")
	if err != nil || got != nil {
		t.Fatalf("chain = %v, %v; want nil", got, err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (chain must stop at null)", calls)
	}
}

func TestCompileMappingEndToEnd(t *testing.T) {
	doc := `
fields:
  summary.id:
    path: patient.id
  summary.name:
    jsonpath: $.patient.name
    apply: [trim, title]
`
	fn, err := CompileMapping(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("CompileMapping returned error: %v", err)
	}

	input := map[string]any{
		"patient": map[string]any{"id": "p-1", "name": " grace hopper "},
	}
	got, err := Run(input, fn, RunConfig{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	want := map[string]any{"summary": map[string]any{
		"id":   "p-1",
		"name": "Grace Hopper",
	}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Run = %#v, want %#v", got, want)
	}
}

func TestLexiconFacade(t *testing.T) {
	l := NewLexiconWithDefault([]LexiconPair{{Key: "M", Value: "male"}}, "unknown")

	if got := l.Get("M"); got != "male" {
		t.Errorf("Get(M) = %q, want male", got)
	}
	if got := l.Get("male"); got != "M" {
		t.Errorf("Get(male) = %q, want M", got)
	}
	if got := l.Get("x"); got != "unknown" {
		t.Errorf("Get(x) = %q, want unknown", got)
	}
}
