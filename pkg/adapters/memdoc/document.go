// Package memdoc provides an in-memory ports.Document implementation, used
// by tests and by the CLI demo host.
package memdoc

import (
	"fmt"
	"sync"

	"github.com/mathrick/lively/pkg/domain"
)

// Document implements ports.Document over an in-memory byte buffer.
// Safe for concurrent use.
type Document struct {
	id string

	mu        sync.Mutex
	text      []byte
	cursor    int
	visible   bool
	selection *domain.Span
	displays  map[domain.Span]string
}

// New creates a visible document with the given identity and content.
func New(id, text string) *Document {
	return &Document{
		id:       id,
		text:     []byte(text),
		visible:  true,
		displays: make(map[domain.Span]string),
	}
}

// ID returns the document identity.
func (d *Document) ID() string { return d.id }

// Text returns the raw source covered by span, or an error when the span no
// longer fits the buffer.
func (d *Document) Text(span domain.Span) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if span.Start < 0 || span.End > len(d.text) || span.Empty() {
		return "", fmt.Errorf("span %s out of range (len %d)", span, len(d.text))
	}
	return string(d.text[span.Start:span.End]), nil
}

// Contains reports whether pos falls inside span. Boundaries are inclusive:
// a cursor sitting at either edge of a span counts as inside it, matching
// how editors treat a zero-width cursor at an overlay boundary.
func (d *Document) Contains(span domain.Span, pos int) bool {
	return pos >= span.Start && pos <= span.End
}

// CursorPos returns the current cursor position.
func (d *Document) CursorPos() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cursor
}

// SetCursor moves the cursor. The host calls the engine's input hooks around
// the move; this only updates position.
func (d *Document) SetCursor(pos int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cursor = pos
}

// Selection returns the interactive selection, if one is set.
func (d *Document) Selection() (domain.Span, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.selection == nil {
		return domain.Span{}, false
	}
	return *d.selection, true
}

// Select sets the interactive selection.
func (d *Document) Select(span domain.Span) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.selection = &span
}

// ClearSelection drops the interactive selection.
func (d *Document) ClearSelection() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.selection = nil
}

// Visible reports whether the document has a visible presentation.
func (d *Document) Visible() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.visible
}

// SetVisible attaches or detaches the document's presentation.
func (d *Document) SetVisible(v bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.visible = v
}

// SetDisplay attaches a replacement display string over span.
func (d *Document) SetDisplay(span domain.Span, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.displays[span] = text
}

// ClearDisplay removes the replacement display over span.
func (d *Document) ClearDisplay(span domain.Span) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.displays, span)
}

// Display returns the replacement display over span, if any. Test and
// presentation helper; not part of the port.
func (d *Document) Display(span domain.Span) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	text, ok := d.displays[span]
	return text, ok
}

// SetText replaces the text covered by span, simulating an edit. Displays
// and other spans are left untouched; offsets are the caller's problem, as
// they are for a real host buffer.
func (d *Document) SetText(span domain.Span, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if span.Start < 0 || span.End > len(d.text) {
		return fmt.Errorf("span %s out of range (len %d)", span, len(d.text))
	}
	var next []byte
	next = append(next, d.text[:span.Start]...)
	next = append(next, text...)
	next = append(next, d.text[span.End:]...)
	d.text = next
	return nil
}

// Contents returns the whole buffer. Presentation helper for the CLI host.
func (d *Document) Contents() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return string(d.text)
}
