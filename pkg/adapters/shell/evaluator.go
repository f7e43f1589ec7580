// Package shell provides an Evaluator that runs overlay source text as a
// shell command and renders its trimmed output.
package shell

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Evaluator executes source text with `sh -c` (configurable) and returns
// trimmed stdout. Expressions are arbitrary commands, so this is only as
// safe as the document being edited; there is no sandboxing.
type Evaluator struct {
	shell   string
	baseDir string
	timeout time.Duration
}

// Option configures the evaluator.
type Option func(*Evaluator)

// WithShell overrides the shell binary (default "sh").
func WithShell(shell string) Option {
	return func(e *Evaluator) {
		e.shell = shell
	}
}

// WithBaseDir sets the working directory for executed commands.
func WithBaseDir(dir string) Option {
	return func(e *Evaluator) {
		e.baseDir = dir
	}
}

// WithTimeout bounds a single command execution. Zero means no bound beyond
// the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(e *Evaluator) {
		e.timeout = d
	}
}

// New creates a shell evaluator.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{shell: "sh"}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs source as a command line and returns its stdout with
// surrounding whitespace trimmed. A non-zero exit is an evaluation failure;
// stderr is folded into the error for the diagnostic.
func (e *Evaluator) Evaluate(ctx context.Context, source string) (string, error) {
	if strings.TrimSpace(source) == "" {
		return "", fmt.Errorf("empty command")
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, e.shell, "-c", source)
	cmd.Dir = e.baseDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("%w: %s", err, msg)
		}
		return "", err
	}
	return strings.TrimSpace(stdout.String()), nil
}
