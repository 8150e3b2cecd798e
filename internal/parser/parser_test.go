package parser

import (
	"errors"
	"reflect"
	"testing"
)

func intPtr(i int) *int { return &i }

func TestParseValidExpressions(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want []Segment
	}{
		{
			name: "single_key",
			expr: "a",
			want: []Segment{Key("a")},
		},
		{
			name: "dotted_keys",
			expr: "patient.name.family",
			want: []Segment{Key("patient"), Key("name"), Key("family")},
		},
		{
			name: "key_with_index",
			expr: "a[0]",
			want: []Segment{Key("a"), Index(0)},
		},
		{
			name: "negative_index",
			expr: "a[-1]",
			want: []Segment{Key("a"), Index(-1)},
		},
		{
			name: "slice_with_bounds",
			expr: "a[1:3]",
			want: []Segment{Key("a"), Slice{Start: intPtr(1), End: intPtr(3)}},
		},
		{
			name: "slice_open_both",
			expr: "a[:]",
			want: []Segment{Key("a"), Slice{}},
		},
		{
			name: "slice_open_end",
			expr: "a[-2:]",
			want: []Segment{Key("a"), Slice{Start: intPtr(-2)}},
		},
		{
			name: "wildcard",
			expr: "a[*]",
			want: []Segment{Key("a"), Wildcard{}},
		},
		{
			name: "leading_index",
			expr: "[0].name",
			want: []Segment{Index(0), Key("name")},
		},
		{
			name: "leading_wildcard",
			expr: "[*].id",
			want: []Segment{Wildcard{}, Key("id")},
		},
		{
			name: "chained_brackets",
			expr: "matrix[0][1]",
			want: []Segment{Key("matrix"), Index(0), Index(1)},
		},
		{
			name: "tuple",
			expr: "(a,b)",
			want: []Segment{Tuple{
				{Segments: []Segment{Key("a")}},
				{Segments: []Segment{Key("b")}},
			}},
		},
		{
			name: "tuple_with_nested_path",
			expr: "a[0].(b,c.d)",
			want: []Segment{Key("a"), Index(0), Tuple{
				{Segments: []Segment{Key("b")}},
				{Segments: []Segment{Key("c"), Key("d")}},
			}},
		},
		{
			name: "tuple_with_whitespace",
			expr: "( a , b.c )",
			want: []Segment{Tuple{
				{Segments: []Segment{Key("a")}},
				{Segments: []Segment{Key("b"), Key("c")}},
			}},
		},
		{
			name: "nested_tuple",
			expr: "(a,(b,c))",
			want: []Segment{Tuple{
				{Segments: []Segment{Key("a")}},
				{Segments: []Segment{Tuple{
					{Segments: []Segment{Key("b")}},
					{Segments: []Segment{Key("c")}},
				}}},
			}},
		},
		{
			name: "underscore_identifier",
			expr: "_meta.field_1",
			want: []Segment{Key("_meta"), Key("field_1")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.expr)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tt.expr, err)
			}
			if !reflect.DeepEqual(got.Segments, tt.want) {
				t.Errorf("Parse(%q) = %#v, want %#v", tt.expr, got.Segments, tt.want)
			}
		})
	}
}

func TestParseInvalidExpressions(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{name: "empty", expr: ""},
		{name: "whitespace_only", expr: "   "},
		{name: "unterminated_bracket", expr: "a["},
		{name: "unmatched_paren", expr: "(a,b"},
		{name: "non_numeric_index", expr: "a[x]"},
		{name: "non_numeric_slice_bound", expr: "a[1:x]"},
		{name: "too_many_colons", expr: "a[1:2:3]"},
		{name: "empty_tuple", expr: "()"},
		{name: "empty_tuple_element", expr: "(a,)"},
		{name: "trailing_dot", expr: "a.b."},
		{name: "double_dot", expr: "a..b"},
		{name: "leading_digit_identifier", expr: "1abc"},
		{name: "empty_bracket", expr: "a[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.expr)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", tt.expr)
			}
			if !errors.Is(err, ErrInvalidPath) {
				t.Errorf("Parse(%q) error = %v, want ErrInvalidPath", tt.expr, err)
			}
		})
	}
}

func TestPathString(t *testing.T) {
	tests := []string{
		"a.b[0].c",
		"items[*].id",
		"a[1:3]",
		"a[0].(b,c.d)",
	}

	for _, expr := range tests {
		path, err := Parse(expr)
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", expr, err)
		}
		if got := path.String(); got != expr {
			t.Errorf("Parse(%q).String() = %q", expr, got)
		}
	}
}
