package domain

import "fmt"

// Span references a contiguous range of text within a document, as half-open
// byte offsets [Start, End). The offsets are owned by the host document; the
// engine never interprets them beyond emptiness checks. Whether a cursor
// position at a boundary counts as "inside" is host semantics, exposed via
// the ports.Document containment query.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Empty reports whether the span covers no text. A span fully consumed by
// deletion collapses to Start == End and becomes empty.
func (s Span) Empty() bool {
	return s.End <= s.Start
}

// Len returns the number of bytes the span covers.
func (s Span) Len() int {
	if s.Empty() {
		return 0
	}
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}
