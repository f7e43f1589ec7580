package ports

import "github.com/mathrick/lively/pkg/domain"

// Document is the contract the host document/editor fulfils for the engine.
// All methods are called from the engine's serialized dispatch path.
type Document interface {
	// ID uniquely identifies the document while it is open.
	ID() string

	// Text returns the raw source currently covered by span. It returns
	// an error when the span is no longer valid (deleted or out of
	// bounds); the engine treats that as an implicit deletion trigger.
	Text(span domain.Span) (string, error)

	// Contains reports whether pos falls inside span. Boundary inclusion
	// is owned by the host: the engine relies on this matching the
	// host's own containment semantics exactly to avoid freeze/thaw
	// flicker at span edges.
	Contains(span domain.Span, pos int) bool

	// CursorPos returns the current cursor position.
	CursorPos() int

	// Selection returns the current interactive selection, if any.
	Selection() (domain.Span, bool)

	// Visible reports whether the document has a visible presentation
	// (window/viewport attached). Hidden documents are skipped during
	// render passes.
	Visible() bool

	// SetDisplay attaches a replacement display string over span, hiding
	// the raw source underneath.
	SetDisplay(span domain.Span, text string)

	// ClearDisplay removes any replacement display over span, revealing
	// raw source again.
	ClearDisplay(span domain.Span)
}
