package domain

import "context"

// OverlayEvent describes a lifecycle transition of a single overlay.
type OverlayEvent struct {
	OverlayID string `json:"overlay_id"`
	DocID     string `json:"doc_id"`
	Span      Span   `json:"span"`
	State     State  `json:"state"`

	// Output is the rendered string for render events.
	Output string `json:"output,omitempty"`

	// Err is set for evaluation-failure events.
	Err error `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability. Nil callbacks
// are skipped. Hooks run inline on the dispatch path, so they must return
// quickly.
type LifecycleHooks struct {
	OnCreate    func(context.Context, *OverlayEvent)
	OnDelete    func(context.Context, *OverlayEvent)
	OnFreeze    func(context.Context, *OverlayEvent)
	OnThaw      func(context.Context, *OverlayEvent)
	OnRender    func(context.Context, *OverlayEvent)
	OnEvalError func(context.Context, *OverlayEvent)
}
