package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathrick/lively/internal/logging"
	"github.com/mathrick/lively/pkg/adapters/memdoc"
	"github.com/mathrick/lively/pkg/domain"
)

func newTestRegistry() *Registry {
	return NewRegistry(logging.NewNop(), domain.LifecycleHooks{})
}

func TestRegistry_Create(t *testing.T) {
	ctx := context.Background()
	doc := memdoc.New("doc", "hello {{(+ 1 2)}} world")

	t.Run("valid span enters active", func(t *testing.T) {
		reg := newTestRegistry()
		o, err := reg.Create(ctx, doc, domain.Span{Start: 8, End: 15})
		require.NoError(t, err)
		require.NotNil(t, o)
		assert.Equal(t, domain.StateActive, o.State)
		assert.Len(t, reg.ListActive(), 1)
		assert.Empty(t, reg.ListFrozen())
	})

	t.Run("empty span rejected", func(t *testing.T) {
		reg := newTestRegistry()
		_, err := reg.Create(ctx, doc, domain.Span{Start: 5, End: 5})
		assert.ErrorIs(t, err, domain.ErrInvalidSpan)
		assert.Empty(t, reg.ListActive())
	})

	t.Run("inverted span rejected", func(t *testing.T) {
		reg := newTestRegistry()
		_, err := reg.Create(ctx, doc, domain.Span{Start: 9, End: 3})
		assert.ErrorIs(t, err, domain.ErrInvalidSpan)
	})
}

func TestRegistry_Disjointness(t *testing.T) {
	ctx := context.Background()
	doc := memdoc.New("doc", "some text here")
	reg := newTestRegistry()

	o, err := reg.Create(ctx, doc, domain.Span{Start: 0, End: 4})
	require.NoError(t, err)

	assertInExactlyOne := func(want domain.State) {
		t.Helper()
		state, ok := reg.StateOf(o)
		require.True(t, ok)
		assert.Equal(t, want, state)
		assert.Len(t, append(reg.ListActive(), reg.ListFrozen()...), 1)
	}

	assertInExactlyOne(domain.StateActive)
	reg.Freeze(ctx, o)
	assertInExactlyOne(domain.StateFrozen)
	reg.Thaw(ctx, o)
	assertInExactlyOne(domain.StateActive)

	reg.Delete(ctx, o)
	_, ok := reg.StateOf(o)
	assert.False(t, ok)
	assert.Empty(t, reg.ListActive())
	assert.Empty(t, reg.ListFrozen())
}

func TestRegistry_FreezeThawIdempotent(t *testing.T) {
	ctx := context.Background()
	doc := memdoc.New("doc", "some text here")
	reg := newTestRegistry()

	o, err := reg.Create(ctx, doc, domain.Span{Start: 0, End: 4})
	require.NoError(t, err)

	reg.Freeze(ctx, o)
	reg.Freeze(ctx, o)
	state, ok := reg.StateOf(o)
	require.True(t, ok)
	assert.Equal(t, domain.StateFrozen, state)
	assert.Len(t, reg.ListFrozen(), 1)

	reg.Thaw(ctx, o)
	reg.Thaw(ctx, o)
	state, ok = reg.StateOf(o)
	require.True(t, ok)
	assert.Equal(t, domain.StateActive, state)
	assert.Len(t, reg.ListActive(), 1)
}

func TestRegistry_FreezeClearsDisplay(t *testing.T) {
	ctx := context.Background()
	doc := memdoc.New("doc", "some text here")
	reg := newTestRegistry()

	span := domain.Span{Start: 0, End: 4}
	o, err := reg.Create(ctx, doc, span)
	require.NoError(t, err)

	reg.SetRendered(ctx, o, "42")
	_, shown := doc.Display(span)
	require.True(t, shown)

	reg.Freeze(ctx, o)
	_, hasText := reg.DisplayOf(o).Text()
	assert.False(t, hasText)
	_, shown = doc.Display(span)
	assert.False(t, shown, "freezing must reveal raw source")
}

func TestRegistry_SetRenderedSkipsNonActive(t *testing.T) {
	ctx := context.Background()
	doc := memdoc.New("doc", "some text here")
	reg := newTestRegistry()

	o, err := reg.Create(ctx, doc, domain.Span{Start: 0, End: 4})
	require.NoError(t, err)
	reg.Freeze(ctx, o)

	reg.SetRendered(ctx, o, "stale result")
	_, hasText := reg.DisplayOf(o).Text()
	assert.False(t, hasText, "a frozen overlay must not pick up a racing render")
}

func TestRegistry_DeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	doc := memdoc.New("doc", "some text here")
	reg := newTestRegistry()

	deletes := 0
	reg.hooks.OnDelete = func(context.Context, *domain.OverlayEvent) { deletes++ }

	o, err := reg.Create(ctx, doc, domain.Span{Start: 0, End: 4})
	require.NoError(t, err)

	reg.Delete(ctx, o)
	reg.Delete(ctx, o)
	assert.Equal(t, 1, deletes, "second delete must be a no-op")
}

func TestRegistry_SnapshotsNotLiveViews(t *testing.T) {
	ctx := context.Background()
	doc := memdoc.New("doc", "some text here")
	reg := newTestRegistry()

	o1, err := reg.Create(ctx, doc, domain.Span{Start: 0, End: 4})
	require.NoError(t, err)
	_, err = reg.Create(ctx, doc, domain.Span{Start: 5, End: 9})
	require.NoError(t, err)

	snapshot := reg.ListActive()
	reg.Delete(ctx, o1)
	assert.Len(t, snapshot, 2, "snapshot must not shrink under mutation")
	assert.Len(t, reg.ListActive(), 1)
}

func TestRegistry_StopAll(t *testing.T) {
	ctx := context.Background()
	doc := memdoc.New("doc", "some text here")
	reg := newTestRegistry()

	o1, err := reg.Create(ctx, doc, domain.Span{Start: 0, End: 4})
	require.NoError(t, err)
	o2, err := reg.Create(ctx, doc, domain.Span{Start: 5, End: 9})
	require.NoError(t, err)
	reg.Freeze(ctx, o2)
	reg.SetRendered(ctx, o1, "42")

	reg.StopAll(ctx)
	assert.Empty(t, reg.ListActive())
	assert.Empty(t, reg.ListFrozen())
	_, shown := doc.Display(o1.Span)
	assert.False(t, shown)
}

func TestRegistry_DetachDocument(t *testing.T) {
	ctx := context.Background()
	docA := memdoc.New("a", "some text here")
	docB := memdoc.New("b", "other text too")
	reg := newTestRegistry()

	_, err := reg.Create(ctx, docA, domain.Span{Start: 0, End: 4})
	require.NoError(t, err)
	keep, err := reg.Create(ctx, docB, domain.Span{Start: 0, End: 5})
	require.NoError(t, err)

	reg.DetachDocument(ctx, "a")
	assert.Nil(t, reg.Document("a"))
	require.Len(t, reg.ListActive(), 1)
	assert.Equal(t, keep.ID, reg.ListActive()[0].ID)
}
