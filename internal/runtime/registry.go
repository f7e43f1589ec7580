package runtime

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/mathrick/lively/internal/metrics"
	"github.com/mathrick/lively/pkg/domain"
	"github.com/mathrick/lively/pkg/ports"
)

// Registry owns the overlay population: the disjoint active and frozen
// collections plus the attachment table from document IDs to live host
// documents. Every overlay belongs to exactly one collection, never both.
//
// All mutation from the tick and input paths funnels through the Registry's
// mutex, which is what makes the rest of the runtime lock-free.
type Registry struct {
	mu     sync.Mutex
	docs   map[string]ports.Document
	active map[string]*domain.Overlay
	frozen map[string]*domain.Overlay

	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger, hooks domain.LifecycleHooks) *Registry {
	return &Registry{
		docs:   make(map[string]ports.Document),
		active: make(map[string]*domain.Overlay),
		frozen: make(map[string]*domain.Overlay),
		hooks:  hooks,
		logger: logger,
	}
}

// AttachDocument registers a host document so overlays can resolve their
// source text against it. Re-attaching the same ID replaces the handle.
func (r *Registry) AttachDocument(doc ports.Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.ID()] = doc
}

// DetachDocument removes the document handle and deletes every overlay that
// referenced it. No overlay outlives its document.
func (r *Registry) DetachDocument(ctx context.Context, docID string) {
	r.mu.Lock()
	var dropped []*domain.OverlayEvent
	for id, o := range r.active {
		if o.DocID == docID {
			delete(r.active, id)
			dropped = append(dropped, event(o))
		}
	}
	for id, o := range r.frozen {
		if o.DocID == docID {
			delete(r.frozen, id)
			dropped = append(dropped, event(o))
		}
	}
	delete(r.docs, docID)
	r.syncGauges()
	r.mu.Unlock()

	for _, ev := range dropped {
		fire(ctx, r.hooks.OnDelete, ev)
	}
}

// Document resolves a document ID to its host handle, or nil if detached.
func (r *Registry) Document(docID string) ports.Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.docs[docID]
}

// Create allocates a new active overlay over span in doc. It fails with
// domain.ErrInvalidSpan when the span is empty or already fully consumed by
// deletion. The document is attached as a side effect if it wasn't yet.
func (r *Registry) Create(ctx context.Context, doc ports.Document, span domain.Span) (*domain.Overlay, error) {
	if span.Empty() {
		return nil, domain.ErrInvalidSpan
	}

	o := &domain.Overlay{
		ID:      uuid.NewString(),
		DocID:   doc.ID(),
		Span:    span,
		State:   domain.StateActive,
		Display: domain.NoDisplay(),
	}

	r.mu.Lock()
	r.docs[o.DocID] = doc
	r.active[o.ID] = o
	r.syncGauges()
	ev := event(o)
	r.mu.Unlock()

	r.logger.Debug("overlay created", "overlay_id", o.ID, "doc_id", o.DocID, "span", span.String())
	fire(ctx, r.hooks.OnCreate, ev)
	return o, nil
}

// Delete removes the overlay from whichever collection holds it and clears
// its display so raw source shows through. Deleting an overlay that is
// already gone is a no-op, not an error.
func (r *Registry) Delete(ctx context.Context, o *domain.Overlay) {
	r.mu.Lock()
	_, inActive := r.active[o.ID]
	_, inFrozen := r.frozen[o.ID]
	if !inActive && !inFrozen {
		r.mu.Unlock()
		return
	}
	delete(r.active, o.ID)
	delete(r.frozen, o.ID)
	o.Display = domain.NoDisplay()
	if doc := r.docs[o.DocID]; doc != nil {
		doc.ClearDisplay(o.Span)
	}
	r.syncGauges()
	ev := event(o)
	r.mu.Unlock()

	r.logger.Debug("overlay deleted", "overlay_id", o.ID, "doc_id", o.DocID)
	fire(ctx, r.hooks.OnDelete, ev)
}

// Freeze moves the overlay from active to frozen and clears its display so
// the raw source becomes visible and editable. No-op if the overlay is
// already frozen or deleted.
func (r *Registry) Freeze(ctx context.Context, o *domain.Overlay) {
	r.mu.Lock()
	if _, ok := r.active[o.ID]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.active, o.ID)
	r.frozen[o.ID] = o
	o.State = domain.StateFrozen
	o.Display = domain.NoDisplay()
	if doc := r.docs[o.DocID]; doc != nil {
		doc.ClearDisplay(o.Span)
	}
	r.syncGauges()
	ev := event(o)
	r.mu.Unlock()

	metrics.TransitionsTotal.WithLabelValues("freeze").Inc()
	fire(ctx, r.hooks.OnFreeze, ev)
}

// Thaw moves the overlay from frozen back to active. The display stays
// empty until the next render pass fills it in. No-op if the overlay is
// already active or deleted.
func (r *Registry) Thaw(ctx context.Context, o *domain.Overlay) {
	r.mu.Lock()
	if _, ok := r.frozen[o.ID]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.frozen, o.ID)
	r.active[o.ID] = o
	o.State = domain.StateActive
	r.syncGauges()
	ev := event(o)
	r.mu.Unlock()

	metrics.TransitionsTotal.WithLabelValues("thaw").Inc()
	fire(ctx, r.hooks.OnThaw, ev)
}

// SetRendered attaches a rendered result to the overlay and pushes it to the
// host's display primitive. It only applies while the overlay is still
// active: a freeze or delete that raced the evaluation wins.
func (r *Registry) SetRendered(ctx context.Context, o *domain.Overlay, text string) {
	r.mu.Lock()
	if _, ok := r.active[o.ID]; !ok {
		r.mu.Unlock()
		return
	}
	o.Display = domain.Rendered(text)
	if doc := r.docs[o.DocID]; doc != nil {
		doc.SetDisplay(o.Span, text)
	}
	ev := event(o)
	r.mu.Unlock()

	fire(ctx, r.hooks.OnRender, ev)
}

// BlankDisplays clears every active overlay's display without touching state
// membership. Used by the pre-input hook so the user sees raw source rather
// than stale rendered text mid-keystroke.
func (r *Registry) BlankDisplays() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.active {
		o.Display = domain.NoDisplay()
		if doc := r.docs[o.DocID]; doc != nil {
			doc.ClearDisplay(o.Span)
		}
	}
}

// ListActive returns a snapshot of the active collection. Mutating the
// registry while iterating the snapshot is safe.
func (r *Registry) ListActive() []*domain.Overlay {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Overlay, 0, len(r.active))
	for _, o := range r.active {
		out = append(out, o)
	}
	return out
}

// ListFrozen returns a snapshot of the frozen collection.
func (r *Registry) ListFrozen() []*domain.Overlay {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Overlay, 0, len(r.frozen))
	for _, o := range r.frozen {
		out = append(out, o)
	}
	return out
}

// OverlaysAt returns every overlay of doc (active or frozen) whose span
// contains pos, using the host's own containment semantics.
func (r *Registry) OverlaysAt(docID string, pos int) []*domain.Overlay {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc := r.docs[docID]
	if doc == nil {
		return nil
	}
	var out []*domain.Overlay
	for _, o := range r.active {
		if o.DocID == docID && doc.Contains(o.Span, pos) {
			out = append(out, o)
		}
	}
	for _, o := range r.frozen {
		if o.DocID == docID && doc.Contains(o.Span, pos) {
			out = append(out, o)
		}
	}
	return out
}

// OverlaysOver returns every overlay of doc whose span equals span. Used to
// propagate host span-deletion notifications.
func (r *Registry) OverlaysOver(docID string, span domain.Span) []*domain.Overlay {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Overlay
	for _, o := range r.active {
		if o.DocID == docID && o.Span == span {
			out = append(out, o)
		}
	}
	for _, o := range r.frozen {
		if o.DocID == docID && o.Span == span {
			out = append(out, o)
		}
	}
	return out
}

// StopAll deletes every overlay in both collections. Used for global
// teardown; document attachments survive so new overlays can be created.
func (r *Registry) StopAll(ctx context.Context) {
	r.mu.Lock()
	dropped := make([]*domain.OverlayEvent, 0, len(r.active)+len(r.frozen))
	drop := func(o *domain.Overlay) {
		o.Display = domain.NoDisplay()
		if doc := r.docs[o.DocID]; doc != nil {
			doc.ClearDisplay(o.Span)
		}
		dropped = append(dropped, event(o))
	}
	for id, o := range r.active {
		delete(r.active, id)
		drop(o)
	}
	for id, o := range r.frozen {
		delete(r.frozen, id)
		drop(o)
	}
	r.syncGauges()
	r.mu.Unlock()

	for _, ev := range dropped {
		fire(ctx, r.hooks.OnDelete, ev)
	}
}

// Get returns a value copy of the overlay with the given ID, for
// introspection. The copy does not observe later transitions.
func (r *Registry) Get(id string) (domain.Overlay, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.active[id]; ok {
		return *o, true
	}
	if o, ok := r.frozen[id]; ok {
		return *o, true
	}
	return domain.Overlay{}, false
}

// Snapshot returns value copies of every tracked overlay.
func (r *Registry) Snapshot() []domain.Overlay {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Overlay, 0, len(r.active)+len(r.frozen))
	for _, o := range r.active {
		out = append(out, *o)
	}
	for _, o := range r.frozen {
		out = append(out, *o)
	}
	return out
}

// StateOf returns the current state of the overlay, or false if deleted.
func (r *Registry) StateOf(o *domain.Overlay) (domain.State, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.active[o.ID]; ok {
		return domain.StateActive, true
	}
	if _, ok := r.frozen[o.ID]; ok {
		return domain.StateFrozen, true
	}
	return "", false
}

// DisplayOf returns the current display of the overlay.
func (r *Registry) DisplayOf(o *domain.Overlay) domain.Display {
	r.mu.Lock()
	defer r.mu.Unlock()
	return o.Display
}

// syncGauges refreshes the population metrics. Caller holds r.mu.
func (r *Registry) syncGauges() {
	metrics.OverlaysCurrent.WithLabelValues(string(domain.StateActive)).Set(float64(len(r.active)))
	metrics.OverlaysCurrent.WithLabelValues(string(domain.StateFrozen)).Set(float64(len(r.frozen)))
}

// event snapshots an overlay into a hook event. Caller holds r.mu, so the
// snapshot is consistent.
func event(o *domain.Overlay) *domain.OverlayEvent {
	text, _ := o.Display.Text()
	return &domain.OverlayEvent{
		OverlayID: o.ID,
		DocID:     o.DocID,
		Span:      o.Span,
		State:     o.State,
		Output:    text,
	}
}

// fire invokes a lifecycle hook. Caller must not hold r.mu: hooks may call
// back into the registry.
func fire(ctx context.Context, hook func(context.Context, *domain.OverlayEvent), ev *domain.OverlayEvent) {
	if hook != nil {
		hook(ctx, ev)
	}
}
