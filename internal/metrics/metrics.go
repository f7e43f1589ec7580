package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Engine lifecycle metrics
var (
	// RenderPassesTotal counts full render passes (timer ticks, post-input
	// refreshes, and forced updates).
	RenderPassesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lively_render_passes_total",
			Help: "Total render passes over the active overlay set",
		},
	)

	// EvalErrorsTotal counts per-overlay evaluation failures. Each failure
	// also deletes the offending overlay.
	EvalErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lively_eval_errors_total",
			Help: "Total evaluation failures (each deletes its overlay)",
		},
	)

	// OverlaysCurrent tracks the live overlay population by state.
	OverlaysCurrent = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lively_overlays_current",
			Help: "Current overlays by state (active/frozen)",
		},
		[]string{"state"},
	)

	// TransitionsTotal counts freeze/thaw transitions driven by cursor
	// proximity.
	TransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lively_transitions_total",
			Help: "Overlay state transitions by direction (freeze/thaw)",
		},
		[]string{"direction"},
	)
)
