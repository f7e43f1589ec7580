package runtime

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mathrick/lively/pkg/domain"
)

// Tracker decides which overlays should be frozen (editable, raw source) or
// active (rendered) from cursor position, recomputed after every input
// event. It keeps one recent-set per document: the overlays whose span
// contained the cursor as of the previous input event.
type Tracker struct {
	registry *Registry
	logger   *slog.Logger

	mu     sync.Mutex
	recent map[string]map[string]*domain.Overlay // docID -> overlayID -> overlay
}

// NewTracker creates a tracker over the registry.
func NewTracker(registry *Registry, logger *slog.Logger) *Tracker {
	return &Tracker{
		registry: registry,
		logger:   logger,
		recent:   make(map[string]map[string]*domain.Overlay),
	}
}

// Update runs one freeze/thaw cycle for the document:
//
//  1. overlays whose span contains the cursor are frozen (no-op if already
//     frozen) and remembered in the recent-set;
//  2. overlays remembered from the previous event that no longer contain
//     the cursor are thawed and forgotten.
//
// Containment is the host's query, so boundary inclusion matches the host
// exactly. Overlapping overlays at one position all freeze together; no
// ordering among them is guaranteed. Overlays untouched by the cursor keep
// their prior state.
//
// The caller is expected to follow up with a render pass so newly thawed
// overlays show a fresh value instead of stale raw text.
func (t *Tracker) Update(ctx context.Context, docID string) error {
	doc := t.registry.Document(docID)
	if doc == nil {
		return domain.ErrDocumentNotFound
	}
	pos := doc.CursorPos()
	here := t.registry.OverlaysAt(docID, pos)

	t.mu.Lock()
	rec := t.recent[docID]
	if rec == nil {
		rec = make(map[string]*domain.Overlay)
		t.recent[docID] = rec
	}

	hereIDs := make(map[string]struct{}, len(here))
	var toFreeze, toThaw []*domain.Overlay
	for _, o := range here {
		hereIDs[o.ID] = struct{}{}
		toFreeze = append(toFreeze, o)
		rec[o.ID] = o
	}
	for id, o := range rec {
		if _, ok := hereIDs[id]; !ok {
			toThaw = append(toThaw, o)
			delete(rec, id)
		}
	}
	t.mu.Unlock()

	for _, o := range toFreeze {
		t.registry.Freeze(ctx, o)
	}
	for _, o := range toThaw {
		t.registry.Thaw(ctx, o)
	}
	return nil
}

// DropDocument forgets the document's recent-set. Called when the host
// closes a document; the registry handles the overlays themselves.
func (t *Tracker) DropDocument(docID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.recent, docID)
}
