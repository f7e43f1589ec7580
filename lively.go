package lively

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mathrick/lively/internal/logging"
	"github.com/mathrick/lively/internal/runtime"
	"github.com/mathrick/lively/pkg/domain"
	"github.com/mathrick/lively/pkg/ports"
)

// DefaultInterval is the default idle refresh interval.
const DefaultInterval = runtime.DefaultInterval

// Engine is the high-level entry point for the lively library. It wraps the
// internal runtime (registry, renderer, proximity tracker, scheduler) and
// provides a simplified API for hosts.
type Engine struct {
	registry  *runtime.Registry
	renderer  *runtime.Renderer
	tracker   *runtime.Tracker
	scheduler *runtime.Scheduler

	eval     ports.Evaluator
	clock    clockwork.Clock
	interval time.Duration
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithInterval overrides the idle refresh interval. Must be set before the
// scheduler first starts; later changes are ignored.
func WithInterval(d time.Duration) Option {
	return func(e *Engine) {
		e.interval = d
	}
}

// WithClock injects the clock used by the refresh ticker. Tests pass a
// clockwork fake clock.
func WithClock(clock clockwork.Clock) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// New creates an engine around the given evaluator. The engine starts in the
// Stopped state; MakeLively starts the refresh scheduler on first use.
func New(eval ports.Evaluator, opts ...Option) (*Engine, error) {
	if eval == nil {
		return nil, errors.New("lively: evaluator is required")
	}

	e := &Engine{
		eval:     eval,
		clock:    clockwork.NewRealClock(),
		interval: DefaultInterval,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}

	e.registry = runtime.NewRegistry(e.logger, e.hooks)
	e.renderer = runtime.NewRenderer(e.registry, e.eval, e.logger, e.hooks)
	e.tracker = runtime.NewTracker(e.registry, e.logger)
	e.scheduler = runtime.NewScheduler(e.renderer, e.tracker, e.registry, e.clock, e.interval, e.logger)
	return e, nil
}

// AttachDocument registers a host document with the engine.
func (e *Engine) AttachDocument(doc ports.Document) {
	e.registry.AttachDocument(doc)
}

// DetachDocument removes a closed document: its overlays are deleted and its
// recent-set is forgotten.
func (e *Engine) DetachDocument(ctx context.Context, docID string) {
	e.registry.DetachDocument(ctx, docID)
	e.tracker.DropDocument(docID)
}

// MakeLively creates an active overlay over span in doc and starts the
// refresh scheduler if it is not already running. The new overlay shows its
// first rendered value on the next render pass.
func (e *Engine) MakeLively(ctx context.Context, doc ports.Document, span domain.Span) (*domain.Overlay, error) {
	o, err := e.registry.Create(ctx, doc, span)
	if err != nil {
		return nil, err
	}
	e.scheduler.Start(ctx)
	return o, nil
}

// MakeLivelySelection creates an overlay over the document's current
// interactive selection. Fails with domain.ErrInvalidSpan when there is no
// selection or the selection is empty.
func (e *Engine) MakeLivelySelection(ctx context.Context, doc ports.Document) (*domain.Overlay, error) {
	span, ok := doc.Selection()
	if !ok {
		return nil, domain.ErrInvalidSpan
	}
	return e.MakeLively(ctx, doc, span)
}

// UpdateAllNow forces an immediate render pass outside the ticker cadence.
func (e *Engine) UpdateAllNow(ctx context.Context) {
	e.renderer.UpdateAll(ctx)
}

// StopAll is the global teardown: the ticker is cancelled and every overlay,
// active and frozen, is deleted. Idempotent.
func (e *Engine) StopAll(ctx context.Context) {
	e.scheduler.Stop(ctx)
}

// Running reports whether the refresh scheduler is active.
func (e *Engine) Running() bool {
	return e.scheduler.Running()
}

// BeforeInput is the host's pre-input hook: call it before each input event
// lands. Every active overlay's display is blanked so the user sees raw
// source, without changing active/frozen membership.
func (e *Engine) BeforeInput() {
	e.scheduler.BeforeInput()
}

// AfterInput is the host's post-input hook: call it after each input event
// with the document it landed in. Overlays containing the new cursor
// position freeze, overlays the cursor left thaw, and a render pass restores
// rendered values everywhere else.
func (e *Engine) AfterInput(ctx context.Context, docID string) error {
	return e.scheduler.AfterInput(ctx, docID)
}

// NotifySpanDeleted propagates a host span-deletion notification: overlays
// over exactly that span are deleted. Host-driven, so it is not an error
// when no overlay matches.
func (e *Engine) NotifySpanDeleted(ctx context.Context, docID string, span domain.Span) {
	for _, o := range e.registry.OverlaysOver(docID, span) {
		e.registry.Delete(ctx, o)
	}
}

// Delete removes a single overlay. Idempotent.
func (e *Engine) Delete(ctx context.Context, o *domain.Overlay) {
	e.registry.Delete(ctx, o)
}

// Overlays returns a snapshot of every tracked overlay, for introspection.
func (e *Engine) Overlays() []domain.Overlay {
	return e.registry.Snapshot()
}

// Overlay returns a snapshot of the overlay with the given ID.
func (e *Engine) Overlay(id string) (domain.Overlay, bool) {
	return e.registry.Get(id)
}

// StateOf returns the overlay's current lifecycle state, or false when it
// has been deleted.
func (e *Engine) StateOf(o *domain.Overlay) (domain.State, bool) {
	return e.registry.StateOf(o)
}

// DisplayOf returns the overlay's current display.
func (e *Engine) DisplayOf(o *domain.Overlay) domain.Display {
	return e.registry.DisplayOf(o)
}
