package tree

import (
	"reflect"
	"testing"
)

func TestHasContent(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{name: "nil", value: nil, want: false},
		{name: "empty_string", value: "", want: false},
		{name: "string", value: "x", want: true},
		{name: "zero_number", value: 0, want: true},
		{name: "false_bool", value: false, want: true},
		{name: "empty_object", value: map[string]any{}, want: false},
		{name: "empty_array", value: []any{}, want: false},
		{name: "object_of_empties", value: map[string]any{"a": nil, "b": []any{}}, want: false},
		{name: "array_of_empties", value: []any{"", map[string]any{}}, want: false},
		{name: "nested_content", value: map[string]any{"a": []any{map[string]any{"b": 1}}}, want: true},
		{name: "keep_is_content", value: Keep{Value: map[string]any{}}, want: true},
		{name: "drop_is_content", value: DropParent, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasContent(tt.value); got != tt.want {
				t.Errorf("HasContent(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestDropLevelRoundTrip(t *testing.T) {
	for _, level := range []DropLevel{DropThisObject, DropParent, DropGrandparent, DropGreatGrandparent} {
		parsed, ok := ParseDropLevel(level.String())
		if !ok || parsed != level {
			t.Errorf("ParseDropLevel(%q) = %v, %v", level.String(), parsed, ok)
		}
	}

	if _, ok := ParseDropLevel("ancestor"); ok {
		t.Error("ParseDropLevel accepted an unknown level name")
	}
}

func TestCloneIsDeep(t *testing.T) {
	original := map[string]any{
		"items": []any{map[string]any{"id": 1}},
	}

	cloned := Clone(original).(map[string]any)
	cloned["items"].([]any)[0].(map[string]any)["id"] = 2

	got := original["items"].([]any)[0].(map[string]any)["id"]
	if !reflect.DeepEqual(got, 1) {
		t.Errorf("Clone shared structure with the original: id = %v", got)
	}
}
