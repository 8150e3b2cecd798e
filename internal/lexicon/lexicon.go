// Package lexicon provides a bidirectional string table used by transform
// steps to translate codes between two vocabularies, with an optional
// fallback for unknown keys.
package lexicon

import (
	"errors"
	"fmt"
)

// ErrNotFound reports a key absent from both directions of the table.
var ErrNotFound = errors.New("lexicon: key not found")

// Pair is one forward mapping. Pairs are ordered: when several keys share a
// value, the first pair wins the reverse direction.
type Pair struct {
	Key   string
	Value string
}

// Lexicon is an immutable bidirectional lookup table.
type Lexicon struct {
	forward    map[string]string
	reverse    map[string]string
	def        string
	hasDefault bool
}

// New builds a table from ordered pairs.
func New(pairs []Pair) *Lexicon {
	l := &Lexicon{
		forward: make(map[string]string, len(pairs)),
		reverse: make(map[string]string, len(pairs)),
	}
	for _, p := range pairs {
		if _, exists := l.forward[p.Key]; !exists {
			l.forward[p.Key] = p.Value
		}
		if _, exists := l.reverse[p.Value]; !exists {
			l.reverse[p.Value] = p.Key
		}
	}
	return l
}

// NewWithDefault builds a table that answers def for unknown keys.
func NewWithDefault(pairs []Pair, def string) *Lexicon {
	l := New(pairs)
	l.def = def
	l.hasDefault = true
	return l
}

// Get resolves key in the forward direction first, then the reverse
// direction, then the default. Without a default an unknown key yields "".
func (l *Lexicon) Get(key string) string {
	if v, ok := l.forward[key]; ok {
		return v
	}
	if v, ok := l.reverse[key]; ok {
		return v
	}
	return l.def
}

// Lookup is the strict form of Get: unknown keys fail even when a default is
// configured.
func (l *Lexicon) Lookup(key string) (string, error) {
	if v, ok := l.forward[key]; ok {
		return v, nil
	}
	if v, ok := l.reverse[key]; ok {
		return v, nil
	}
	return "", fmt.Errorf("%w: %q", ErrNotFound, key)
}

// Forward resolves key in the forward direction only.
func (l *Lexicon) Forward(key string) (string, bool) {
	v, ok := l.forward[key]
	return v, ok
}

// Reverse resolves value in the reverse direction only.
func (l *Lexicon) Reverse(value string) (string, bool) {
	v, ok := l.reverse[value]
	return v, ok
}

// Contains reports whether key resolves in either direction.
func (l *Lexicon) Contains(key string) bool {
	if _, ok := l.forward[key]; ok {
		return true
	}
	_, ok := l.reverse[key]
	return ok
}

// Len returns the number of forward entries.
func (l *Lexicon) Len() int { return len(l.forward) }

// ReverseLen returns the number of reverse entries, which is smaller than
// Len when several keys share a value.
func (l *Lexicon) ReverseLen() int { return len(l.reverse) }
