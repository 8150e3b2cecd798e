package chidian

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	source := map[string]any{
		"patient": map[string]any{"id": "p-1"},
		"items": []any{
			map[string]any{"id": 1},
			map[string]any{"id": 2},
		},
		"data": []any{
			map[string]any{"a": 1, "b": 2},
			map[string]any{"a": 3, "b": 4},
		},
	}

	tests := []struct {
		name string
		expr string
		want any
	}{
		{name: "flat", expr: "patient.id", want: "p-1"},
		{name: "wildcard_broadcast", expr: "items[*].id", want: []any{1, 2}},
		{name: "implicit_broadcast", expr: "items.id", want: []any{1, 2}},
		{name: "tuple_broadcast", expr: "data[*].(a,b)", want: []any{[]any{1, 2}, []any{3, 4}}},
		{name: "index", expr: "items[-1].id", want: 2},
		{name: "slice", expr: "items[0:1]", want: []any{map[string]any{"id": 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Get(source, tt.expr)
			if err != nil {
				t.Fatalf("Get(%q) returned error: %v", tt.expr, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Get(%q) = %#v, want %#v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestGetDefaultAndApply(t *testing.T) {
	source := map[string]any{"name": "  ada  "}

	got, err := Get(source, "nickname", WithDefault("none"))
	if err != nil || got != "none" {
		t.Errorf("Get with default = %v, %v; want none", got, err)
	}

	trim := func(v any) (any, error) { return strings.TrimSpace(v.(string)), nil }
	upper := func(v any) (any, error) { return strings.ToUpper(v.(string)), nil }
	got, err = Get(source, "name", WithApply(trim, upper))
	if err != nil || got != "ADA" {
		t.Errorf("Get with apply = %v, %v; want ADA", got, err)
	}

	// Without a default, a flat miss is an error.
	if _, err := Get(source, "nickname"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Get error = %v, want ErrKeyNotFound", err)
	}

	// Strict overrides the default.
	if _, err := Get(source, "nickname", WithDefault("none"), Strict()); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("strict Get error = %v, want ErrKeyNotFound", err)
	}
}

func TestGetBadPath(t *testing.T) {
	if _, err := Get(map[string]any{}, "a[["); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("Get error = %v, want ErrInvalidPath", err)
	}
}

func TestPut(t *testing.T) {
	got, err := Put(map[string]any{}, "a.b[2].c", 5)
	if err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	want := map[string]any{"a": map[string]any{"b": []any{
		nil, nil, map[string]any{"c": 5},
	}}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Put = %#v, want %#v", got, want)
	}

	for _, expr := range []string{"a[*]", "a[1:2]"} {
		if _, err := Put(map[string]any{}, expr, 1); !errors.Is(err, ErrInvalidMutationPath) {
			t.Errorf("Put(%q) error = %v, want ErrInvalidMutationPath", expr, err)
		}
	}
}

func TestGetJSONPath(t *testing.T) {
	source := map[string]any{
		"items": []any{
			map[string]any{"id": "a"},
			map[string]any{"id": "b"},
		},
	}

	got, err := GetJSONPath(source, "$.items[0].id")
	if err != nil || got != "a" {
		t.Errorf("GetJSONPath single = %v, %v; want a", got, err)
	}

	got, err = GetJSONPath(source, "$.items[*].id")
	if err != nil || !reflect.DeepEqual(got, []any{"a", "b"}) {
		t.Errorf("GetJSONPath multi = %#v, %v", got, err)
	}

	got, err = GetJSONPath(source, "$.missing")
	if err != nil || got != nil {
		t.Errorf("GetJSONPath miss = %v, %v; want nil", got, err)
	}

	if _, err := GetJSONPath(source, "$["); err == nil {
		t.Error("GetJSONPath accepted a malformed expression")
	}
}

func TestPathCacheServesRepeatedExpressions(t *testing.T) {
	source := map[string]any{"a": 1}
	for range [3]struct{}{} {
		got, err := Get(source, "a")
		if err != nil || got != 1 {
			t.Fatalf("Get = %v, %v; want 1", got, err)
		}
	}
}
