/*
Package lively embeds small executable expressions inside a live document and
renders their evaluated results in place, refreshed on a timer, while leaving
the underlying source editable whenever the cursor approaches it.

It is a Go port of lively.el. The core is the overlay lifecycle engine: the
bookkeeping that tracks which spans of text are "lively", renders their
evaluated output over the raw source, freezes and thaws them on cursor
proximity, and recovers from evaluation failures without corrupting document
state. The host editor and the expression evaluator are external
collaborators behind the interfaces in pkg/ports.

# Usage

	doc := memdoc.New("scratch", "total: {{(+ 1 2)}}")
	eng, err := lively.New(calc.New())
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	overlay, err := eng.MakeLively(ctx, doc, domain.Span{Start: 9, End: 16})
	if err != nil {
		log.Fatal(err)
	}

	// The engine now refreshes the overlay every 250ms. Wire the host's
	// input events to the hooks:
	eng.BeforeInput()           // on every keystroke, before it lands
	eng.AfterInput(ctx, doc.ID()) // after it lands: freeze/thaw + refresh

	_ = overlay
	eng.StopAll(ctx) // teardown: every overlay deleted, ticker cancelled

Hosts drive the engine from their own event dispatch; the engine serializes
overlay mutation internally, so the tick and input paths never corrupt each
other.
*/
package lively
