package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultInterval is the idle refresh interval between render passes.
const DefaultInterval = 250 * time.Millisecond

// Scheduler drives the engine: one recurring ticker for idle refreshes plus
// the pre-/post-input hooks the host calls around each input event.
//
// It is a two-state machine, Stopped and Running. Start and Stop are both
// idempotent, so at most one ticker exists per scheduler at any time.
type Scheduler struct {
	renderer *Renderer
	tracker  *Tracker
	registry *Registry
	clock    clockwork.Clock
	interval time.Duration
	logger   *slog.Logger

	mu      sync.Mutex // protects running and stopCh
	running bool
	stopCh  chan struct{}
}

// NewScheduler creates a stopped scheduler.
func NewScheduler(renderer *Renderer, tracker *Tracker, registry *Registry, clock clockwork.Clock, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		renderer: renderer,
		tracker:  tracker,
		registry: registry,
		clock:    clock,
		interval: interval,
		logger:   logger,
	}
}

// Start transitions Stopped -> Running: it launches the recurring render
// ticker. Calling Start while already running is a no-op. Cancelling ctx
// tears the scheduler down like Stop, after which Start works again.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.logger.Info("lively scheduler started", "interval", s.interval)
	go s.loop(ctx, s.stopCh)
}

// loop is the idle refresh cycle: one render pass per tick until stopped.
func (s *Scheduler) loop(ctx context.Context, stopCh <-chan struct{}) {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			s.renderer.UpdateAll(ctx)
		case <-stopCh:
			return
		case <-ctx.Done():
			// Context cancellation is a teardown path, equivalent to
			// Stop: the Running flag must not outlive the loop. Skip
			// the teardown if Stop already raced us into a restart.
			s.mu.Lock()
			stale := s.stopCh != stopCh
			s.mu.Unlock()
			if stale {
				return
			}
			ticker.Stop()
			s.registry.StopAll(ctx)
			s.logger.Info("lively scheduler context cancelled")

			// Reset last: once Running reports false the teardown is
			// fully observable.
			s.mu.Lock()
			if s.stopCh == stopCh {
				s.running = false
			}
			s.mu.Unlock()
			return
		}
	}
}

// Stop transitions Running -> Stopped: it cancels the ticker and deletes
// every overlay, active and frozen. Synchronous and total; after it returns
// no partial teardown state is observable. Calling Stop while already
// stopped is a no-op.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	close(s.stopCh)
	s.running = false
	s.mu.Unlock()

	s.registry.StopAll(ctx)
	s.logger.Info("lively scheduler stopped")
}

// Running reports whether the ticker is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// BeforeInput is the pre-input hook: blank every active overlay's display so
// the user sees raw source mid-keystroke. A transient visual effect only;
// state membership is untouched.
func (s *Scheduler) BeforeInput() {
	s.registry.BlankDisplays()
}

// AfterInput is the post-input hook: run the proximity cycle for the
// document the input landed in, then a render pass so newly active overlays
// immediately show a formatted value.
func (s *Scheduler) AfterInput(ctx context.Context, docID string) error {
	if err := s.tracker.Update(ctx, docID); err != nil {
		return err
	}
	s.renderer.UpdateAll(ctx)
	return nil
}
