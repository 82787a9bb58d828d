package textmap

import "fmt"

// Span is a half-open character range [From, To) in the original text.
type Span struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// None is the null-alignment sentinel used by callers for content with
// no original-text correspondence.
var None = Span{From: -1, To: -1}

// IsNone reports whether the span is the null-alignment sentinel.
func (s Span) IsNone() bool {
	return s == None
}

// Len returns the number of characters covered by the span.
func (s Span) Len() int {
	return s.To - s.From
}

func (s Span) String() string {
	if s.IsNone() {
		return "<-1:-1>"
	}
	return fmt.Sprintf("<%d:%d>", s.From, s.To)
}
