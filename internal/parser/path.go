package parser

import (
	"strconv"
	"strings"
)

// Segment is one step of a parsed path. The concrete types below form the
// canonical segment model shared by the read and write engines; the mutation
// engine applies an additional validation filter rather than using a second
// grammar.
type Segment interface {
	isSegment()
	String() string
}

// Key selects a field from an object. Applied to an array it broadcasts
// across the elements.
type Key string

// Index selects one array element; negative values count from the end.
type Index int

// Slice selects a half-open contiguous sub-sequence with Python-style
// negative-index semantics. A nil bound defaults to the start or the end of
// the array.
type Slice struct {
	Start *int
	End   *int
}

// Wildcard selects every element of an array.
type Wildcard struct{}

// Tuple evaluates each inner path against the current value and collects the
// results positionally.
type Tuple []Path

func (Key) isSegment()      {}
func (Index) isSegment()    {}
func (Slice) isSegment()    {}
func (Wildcard) isSegment() {}
func (Tuple) isSegment()    {}

func (k Key) String() string   { return string(k) }
func (i Index) String() string { return "[" + strconv.Itoa(int(i)) + "]" }

func (s Slice) String() string {
	var b strings.Builder
	b.WriteByte('[')
	if s.Start != nil {
		b.WriteString(strconv.Itoa(*s.Start))
	}
	b.WriteByte(':')
	if s.End != nil {
		b.WriteString(strconv.Itoa(*s.End))
	}
	b.WriteByte(']')
	return b.String()
}

func (Wildcard) String() string { return "[*]" }

func (t Tuple) String() string {
	parts := make([]string, len(t))
	for i, p := range t {
		parts[i] = p.String()
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// Path is an ordered sequence of segments, produced once by Parse and then
// reused read-only.
type Path struct {
	Segments []Segment
}

func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p.Segments {
		if i > 0 {
			switch seg.(type) {
			case Key, Tuple:
				b.WriteByte('.')
			}
		}
		b.WriteString(seg.String())
	}
	return b.String()
}
