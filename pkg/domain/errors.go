package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidSpan is returned when an overlay is created over an empty span,
// or over a span already fully consumed by deletion.
var ErrInvalidSpan = errors.New("invalid span")

// ErrDocumentNotFound is returned when an operation names a document that
// was never attached to the engine, or has since been detached.
var ErrDocumentNotFound = errors.New("document not found")

// EvaluationError reports that the evaluator failed on an overlay's current
// source text. It is caught per overlay during a render pass; the offending
// overlay is deleted rather than left in a zombie state.
type EvaluationError struct {
	Source string
	Err    error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation of %q failed: %v", e.Source, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}
