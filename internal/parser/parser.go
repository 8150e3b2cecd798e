// Package parser compiles path expressions of the tree-addressing DSL into
// a structured Path.
//
// Grammar:
//
//	path       := unit ('.' unit)*
//	unit       := tuple | list_op | single
//	single     := identifier index?
//	list_op    := identifier? (star | slice)
//	tuple      := '(' path (',' path)* ')'
//	index      := '[' signed_int ']'
//	slice      := '[' signed_int? ':' signed_int? ']'
//	star       := '[*]'
//	identifier := [A-Za-z_][A-Za-z0-9_]*
//
// Whitespace is insignificant between tokens but not permitted inside an
// identifier. A path may begin with a bracketed operation applied to the
// traversal root, and an identifier may carry several chained brackets
// (e.g. "matrix[0][1]").
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPath is the sentinel error for all malformed path expressions.
// Every failure wraps it and names the offending fragment.
var ErrInvalidPath = errors.New("parser: invalid path")

// Parse compiles a path expression into a Path. An empty (or all-whitespace)
// expression is an error: a top-level path must address at least one
// location.
func Parse(expr string) (Path, error) {
	s := &scanner{input: expr}
	s.skipSpace()
	if s.done() {
		return Path{}, fmt.Errorf("%w: empty expression", ErrInvalidPath)
	}

	var segments []Segment
	for {
		unit, err := s.parseUnit()
		if err != nil {
			return Path{}, err
		}
		segments = append(segments, unit...)

		s.skipSpace()
		if s.done() {
			return Path{Segments: segments}, nil
		}
		if s.peek() != '.' {
			return Path{}, fmt.Errorf("%w: unexpected character %q at %q", ErrInvalidPath, s.peek(), s.rest())
		}
		s.pos++ // consume '.'
		s.skipSpace()
		if s.done() {
			return Path{}, fmt.Errorf("%w: expression %q ends with '.'", ErrInvalidPath, expr)
		}
	}
}

type scanner struct {
	input string
	pos   int
}

func (s *scanner) done() bool   { return s.pos >= len(s.input) }
func (s *scanner) peek() byte   { return s.input[s.pos] }
func (s *scanner) rest() string { return s.input[s.pos:] }

func (s *scanner) skipSpace() {
	for !s.done() && (s.input[s.pos] == ' ' || s.input[s.pos] == '\t') {
		s.pos++
	}
}

// parseUnit consumes one dot-separated unit. A single unit may expand into
// multiple segments: "items[0]" flattens to Key("items"), Index(0).
func (s *scanner) parseUnit() ([]Segment, error) {
	switch c := s.peek(); {
	case c == '(':
		seg, err := s.parseTuple()
		if err != nil {
			return nil, err
		}
		return []Segment{seg}, nil

	case c == '[':
		seg, err := s.parseBracket()
		if err != nil {
			return nil, err
		}
		return s.parseChainedBrackets([]Segment{seg})

	case isIdentStart(c):
		name := s.parseIdentifier()
		return s.parseChainedBrackets([]Segment{Key(name)})

	default:
		return nil, fmt.Errorf("%w: unexpected character %q at %q", ErrInvalidPath, c, s.rest())
	}
}

// parseChainedBrackets appends any bracket operations directly following the
// current position.
func (s *scanner) parseChainedBrackets(segments []Segment) ([]Segment, error) {
	for !s.done() && s.peek() == '[' {
		seg, err := s.parseBracket()
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

func (s *scanner) parseIdentifier() string {
	start := s.pos
	for !s.done() && isIdentRune(s.input[s.pos]) {
		s.pos++
	}
	return s.input[start:s.pos]
}

// parseBracket consumes one '[...]' operation: index, slice or star.
func (s *scanner) parseBracket() (Segment, error) {
	open := s.pos
	s.pos++ // consume '['
	end := strings.IndexByte(s.input[s.pos:], ']')
	if end == -1 {
		return nil, fmt.Errorf("%w: unterminated bracket at %q", ErrInvalidPath, s.input[open:])
	}

	content := strings.TrimSpace(s.input[s.pos : s.pos+end])
	s.pos += end + 1

	if content == "*" {
		return Wildcard{}, nil
	}

	if strings.Contains(content, ":") {
		return parseSliceContent(content)
	}

	idx, err := strconv.Atoi(content)
	if err != nil {
		return nil, fmt.Errorf("%w: index %q is not an integer", ErrInvalidPath, content)
	}
	return Index(idx), nil
}

func parseSliceContent(content string) (Segment, error) {
	bounds := strings.Split(content, ":")
	if len(bounds) != 2 {
		return nil, fmt.Errorf("%w: malformed slice [%s]", ErrInvalidPath, content)
	}

	var slice Slice
	for i, bound := range bounds {
		bound = strings.TrimSpace(bound)
		if bound == "" {
			continue
		}
		v, err := strconv.Atoi(bound)
		if err != nil {
			return nil, fmt.Errorf("%w: slice bound %q in [%s] is not an integer", ErrInvalidPath, bound, content)
		}
		if i == 0 {
			slice.Start = &v
		} else {
			slice.End = &v
		}
	}
	return slice, nil
}

// parseTuple consumes '(' path (',' path)* ')'. Paren depth is tracked so
// commas and dots inside a nested tuple do not split the outer unit.
func (s *scanner) parseTuple() (Segment, error) {
	open := s.pos
	depth := 0
	end := -1
	for i := s.pos; i < len(s.input) && end == -1; i++ {
		switch s.input[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				end = i
			}
		}
	}
	if end == -1 {
		return nil, fmt.Errorf("%w: unmatched parenthesis at %q", ErrInvalidPath, s.input[open:])
	}

	content := s.input[s.pos+1 : end]
	s.pos = end + 1

	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: empty tuple", ErrInvalidPath)
	}

	var paths Tuple
	for _, part := range splitTopLevel(content) {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("%w: empty element in tuple (%s)", ErrInvalidPath, content)
		}
		inner, err := Parse(part)
		if err != nil {
			return nil, err
		}
		paths = append(paths, inner)
	}
	return paths, nil
}

// splitTopLevel splits tuple content on commas that are not nested inside
// parentheses.
func splitTopLevel(content string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(content); i++ {
		switch content[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, content[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, content[start:])
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentRune(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}
