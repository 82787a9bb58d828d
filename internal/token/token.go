// Package token splits rewritten text into a token lattice, assigning
// every token an original-text character span recovered through the
// engine's position maps.
package token

import (
	"fmt"

	"github.com/dlclark/regexp2"

	"github.com/roach88/repp/internal/textmap"
)

// DefaultSeparator is the whitespace-run pattern used when a module
// declares no tokenizer pattern of its own.
var DefaultSeparator = regexp2.MustCompile(`[ \t]+`, regexp2.None)

// Token is one surface form with its provenance span in the original,
// unmodified input.
type Token struct {
	ID   int          `json:"id"`
	Form string       `json:"form"`
	Span textmap.Span `json:"span"`
}

func (t Token) String() string {
	return fmt.Sprintf("(%d, %d, %d, %q)", t.ID, t.Span.From, t.Span.To, t.Form)
}

// Lattice is the ordered token sequence produced by tokenization.
// It is fully materialized; downstream consumers need counts and
// random access.
type Lattice []Token

// Forms returns just the surface forms, in order.
func (l Lattice) Forms() []string {
	forms := make([]string, len(l))
	for i, t := range l {
		forms[i] = t.Form
	}
	return forms
}

// Split cuts s into maximal non-separator spans and maps each one back
// to its original-text span. The maps are consulted at one-past-start
// and at-end so the span lands inside the token's own provenance rather
// than an adjacent deletion's. A nil sep uses DefaultSeparator.
func Split(s string, start, end textmap.Map, sep *regexp2.Regexp) Lattice {
	if sep == nil {
		sep = DefaultSeparator
	}
	runes := []rune(s)
	lattice := Lattice{}
	pos := 0

	emit := func(from, to int) {
		if from >= to {
			return
		}
		lattice = append(lattice, Token{
			ID:   len(lattice),
			Form: string(runes[from:to]),
			Span: span(from, to, start, end),
		})
	}

	m, err := sep.FindStringMatch(s)
	for err == nil && m != nil {
		emit(pos, m.Index)
		pos = m.Index + m.Length
		m, err = sep.FindNextMatch(m)
	}
	emit(pos, len(runes))
	return lattice
}

// span resolves a token's [from, to) output span to original-text
// coordinates: original = output + map[output+1] on the left edge and
// original = output + map[output] on the right.
func span(from, to int, start, end textmap.Map) textmap.Span {
	if from+1 >= len(start) || to >= len(end) {
		return textmap.None
	}
	return textmap.Span{
		From: from + start[from+1],
		To:   to + end[to],
	}
}
