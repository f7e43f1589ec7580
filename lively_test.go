package lively_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathrick/lively"
	"github.com/mathrick/lively/pkg/adapters/calc"
	"github.com/mathrick/lively/pkg/adapters/memdoc"
	"github.com/mathrick/lively/pkg/domain"
)

// TestEngine_Scenario walks the canonical lifecycle: render, freeze on
// cursor entry, thaw and re-render on cursor exit, total teardown.
func TestEngine_Scenario(t *testing.T) {
	ctx := context.Background()
	content := "result: (+ 1 2) done"
	doc := memdoc.New("scratch", content)

	start := strings.Index(content, "(+ 1 2)")
	span := domain.Span{Start: start, End: start + len("(+ 1 2)")}

	eng, err := lively.New(calc.New(), lively.WithClock(clockwork.NewFakeClock()))
	require.NoError(t, err)

	o, err := eng.MakeLively(ctx, doc, span)
	require.NoError(t, err)
	assert.True(t, eng.Running(), "making an overlay lively starts the scheduler")

	// One render pass: the formatted result replaces raw source.
	eng.UpdateAllNow(ctx)
	text, ok := eng.DisplayOf(o).Text()
	require.True(t, ok)
	assert.Equal(t, "3", text)
	shown, ok := doc.Display(span)
	require.True(t, ok)
	assert.Equal(t, "3", shown)

	// Cursor moves inside the span: frozen, raw source visible again.
	eng.BeforeInput()
	doc.SetCursor(start + 2)
	require.NoError(t, eng.AfterInput(ctx, doc.ID()))

	state, alive := eng.StateOf(o)
	require.True(t, alive)
	assert.Equal(t, domain.StateFrozen, state)
	_, ok = eng.DisplayOf(o).Text()
	assert.False(t, ok)
	_, ok = doc.Display(span)
	assert.False(t, ok)
	raw, err := doc.Text(span)
	require.NoError(t, err)
	assert.Equal(t, "(+ 1 2)", raw)

	// Cursor moves away: active again, next pass restores the result.
	eng.BeforeInput()
	doc.SetCursor(0)
	require.NoError(t, eng.AfterInput(ctx, doc.ID()))

	state, alive = eng.StateOf(o)
	require.True(t, alive)
	assert.Equal(t, domain.StateActive, state)
	text, ok = eng.DisplayOf(o).Text()
	require.True(t, ok)
	assert.Equal(t, "3", text)

	// Teardown is total.
	eng.StopAll(ctx)
	assert.False(t, eng.Running())
	assert.Empty(t, eng.Overlays())
	_, alive = eng.StateOf(o)
	assert.False(t, alive)
}

func TestEngine_RequiresEvaluator(t *testing.T) {
	_, err := lively.New(nil)
	assert.Error(t, err)
}

func TestEngine_MakeLivelyInvalidSpan(t *testing.T) {
	eng, err := lively.New(calc.New(), lively.WithClock(clockwork.NewFakeClock()))
	require.NoError(t, err)

	doc := memdoc.New("scratch", "abc")
	_, err = eng.MakeLively(context.Background(), doc, domain.Span{Start: 1, End: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidSpan)
	assert.False(t, eng.Running(), "a failed create must not start the scheduler")
}

func TestEngine_MakeLivelySelection(t *testing.T) {
	ctx := context.Background()
	eng, err := lively.New(calc.New(), lively.WithClock(clockwork.NewFakeClock()))
	require.NoError(t, err)

	doc := memdoc.New("scratch", "(+ 2 2) tail")

	t.Run("no selection", func(t *testing.T) {
		_, err := eng.MakeLivelySelection(ctx, doc)
		assert.ErrorIs(t, err, domain.ErrInvalidSpan)
	})

	t.Run("with selection", func(t *testing.T) {
		doc.Select(domain.Span{Start: 0, End: 7})
		o, err := eng.MakeLivelySelection(ctx, doc)
		require.NoError(t, err)

		eng.UpdateAllNow(ctx)
		text, ok := eng.DisplayOf(o).Text()
		require.True(t, ok)
		assert.Equal(t, "4", text)
	})

	eng.StopAll(ctx)
}

func TestEngine_TimerDrivenRefresh(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	eng, err := lively.New(calc.New(),
		lively.WithClock(clock),
		lively.WithInterval(time.Second),
	)
	require.NoError(t, err)

	doc := memdoc.New("scratch", "(* 6 7)")
	o, err := eng.MakeLively(ctx, doc, domain.Span{Start: 0, End: 7})
	require.NoError(t, err)
	defer eng.StopAll(ctx)

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(time.Second)

	require.Eventually(t, func() bool {
		text, ok := eng.DisplayOf(o).Text()
		return ok && text == "42"
	}, time.Second, time.Millisecond)
}

func TestEngine_NotifySpanDeleted(t *testing.T) {
	ctx := context.Background()
	eng, err := lively.New(calc.New(), lively.WithClock(clockwork.NewFakeClock()))
	require.NoError(t, err)

	doc := memdoc.New("scratch", "(+ 1 2) (+ 3 4)")
	gone, err := eng.MakeLively(ctx, doc, domain.Span{Start: 0, End: 7})
	require.NoError(t, err)
	kept, err := eng.MakeLively(ctx, doc, domain.Span{Start: 8, End: 15})
	require.NoError(t, err)
	defer eng.StopAll(ctx)

	eng.NotifySpanDeleted(ctx, doc.ID(), gone.Span)

	_, alive := eng.StateOf(gone)
	assert.False(t, alive)
	_, alive = eng.StateOf(kept)
	assert.True(t, alive)
}

func TestEngine_DetachDocument(t *testing.T) {
	ctx := context.Background()
	eng, err := lively.New(calc.New(), lively.WithClock(clockwork.NewFakeClock()))
	require.NoError(t, err)

	doc := memdoc.New("scratch", "(+ 1 2)")
	o, err := eng.MakeLively(ctx, doc, domain.Span{Start: 0, End: 7})
	require.NoError(t, err)
	defer eng.StopAll(ctx)

	eng.DetachDocument(ctx, doc.ID())
	_, alive := eng.StateOf(o)
	assert.False(t, alive, "no overlay outlives its document")
	assert.Empty(t, eng.Overlays())
}
