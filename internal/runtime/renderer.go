package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mathrick/lively/internal/metrics"
	"github.com/mathrick/lively/pkg/domain"
	"github.com/mathrick/lively/pkg/ports"
)

// Renderer evaluates active overlays and pushes their results to the host
// display. It re-reads source text on every pass rather than caching
// anything: overlays are meant to be live, so the source may change between
// cycles (a half-edited overlay is normal, not an error).
type Renderer struct {
	registry *Registry
	eval     ports.Evaluator
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
}

// NewRenderer creates a renderer over the given registry and evaluator.
func NewRenderer(registry *Registry, eval ports.Evaluator, logger *slog.Logger, hooks domain.LifecycleHooks) *Renderer {
	return &Renderer{
		registry: registry,
		eval:     eval,
		hooks:    hooks,
		logger:   logger,
	}
}

// UpdateAll runs one render pass over the active collection. Documents with
// no visible presentation are skipped. Failures are isolated per overlay:
// the offender is reported and deleted, the rest of the pass continues.
func (r *Renderer) UpdateAll(ctx context.Context) {
	metrics.RenderPassesTotal.Inc()

	for _, o := range r.registry.ListActive() {
		doc := r.registry.Document(o.DocID)
		if doc == nil {
			// Document went away; the overlay must not outlive it.
			r.registry.Delete(ctx, o)
			continue
		}
		if !doc.Visible() {
			continue
		}

		err := r.Render(ctx, o)
		if err == nil {
			continue
		}

		var evalErr *domain.EvaluationError
		if errors.As(err, &evalErr) {
			metrics.EvalErrorsTotal.Inc()
			r.logger.Warn("overlay evaluation failed, removing overlay",
				"overlay_id", o.ID, "doc_id", o.DocID, "err", err)
			if r.hooks.OnEvalError != nil {
				snap, _ := r.registry.Get(o.ID)
				ev := event(&snap)
				ev.Err = err
				r.hooks.OnEvalError(ctx, ev)
			}
		} else {
			// Span or document gone: an implicit deletion trigger,
			// not a diagnostic.
			r.logger.Debug("overlay span no longer readable",
				"overlay_id", o.ID, "doc_id", o.DocID, "err", err)
		}
		r.registry.Delete(ctx, o)
	}
}

// Render evaluates the raw text currently covered by the overlay's span and
// attaches the result as its display. With an unchanged source and a pure
// evaluator this is idempotent.
func (r *Renderer) Render(ctx context.Context, o *domain.Overlay) error {
	doc := r.registry.Document(o.DocID)
	if doc == nil {
		return domain.ErrDocumentNotFound
	}

	src, err := doc.Text(o.Span)
	if err != nil {
		return fmt.Errorf("read span %s: %w", o.Span, err)
	}

	out, err := r.eval.Evaluate(ctx, src)
	if err != nil {
		return &domain.EvaluationError{Source: src, Err: err}
	}

	r.registry.SetRendered(ctx, o, out)
	return nil
}
