package ports

import "context"

// Evaluator turns a source text fragment into its formatted result.
// Implementations are swappable (shell commands, calculators, interpreter
// bindings); a failed evaluation returns an error and the engine deletes
// the offending overlay.
type Evaluator interface {
	Evaluate(ctx context.Context, source string) (string, error)
}

// EvaluatorFunc adapts a plain function to the Evaluator interface.
type EvaluatorFunc func(ctx context.Context, source string) (string, error)

func (f EvaluatorFunc) Evaluate(ctx context.Context, source string) (string, error) {
	return f(ctx, source)
}
