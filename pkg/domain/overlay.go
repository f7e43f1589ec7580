package domain

// State defines which lifecycle collection an overlay belongs to.
type State string

const (
	// StateActive overlays are periodically re-evaluated and show their
	// rendered result in place of raw source.
	StateActive State = "active"

	// StateFrozen overlays show raw, editable source; evaluation is
	// suspended while the cursor is nearby.
	StateFrozen State = "frozen"
)

// Display is the presentation attached to an overlay: either nothing (raw
// source shows through) or a rendered replacement string. It is a closed
// variant rather than an open property bag.
type Display struct {
	rendered bool
	text     string
}

// NoDisplay returns the empty presentation: raw source is visible.
func NoDisplay() Display {
	return Display{}
}

// Rendered returns a presentation showing text in place of raw source.
func Rendered(text string) Display {
	return Display{rendered: true, text: text}
}

// Text returns the rendered string and whether one is present.
func (d Display) Text() (string, bool) {
	return d.text, d.rendered
}

// Overlay is a tracked document span with lively behavior. Overlays are
// created by Registry.Create and mutated only through the Registry, which
// serializes access across the tick and input paths.
type Overlay struct {
	// ID uniquely identifies the overlay for introspection and lookup.
	ID string

	// DocID names the owning document. The span is only meaningful
	// against that document; no overlay outlives it.
	DocID string

	// Span is the source range the overlay covers.
	Span Span

	// State says whether the overlay is rendered (active) or editable
	// (frozen).
	State State

	// Display holds the rendered presentation. Present only while the
	// overlay is active and its last evaluation succeeded.
	Display Display
}
