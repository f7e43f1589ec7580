package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/mathrick/lively"
	"github.com/mathrick/lively/pkg/adapters/calc"
	"github.com/mathrick/lively/pkg/adapters/shell"
	"github.com/mathrick/lively/pkg/domain"
	"github.com/mathrick/lively/pkg/ports"
)

// BuildEngine assembles an engine from the CLI configuration.
func BuildEngine(cfg Config, logger *slog.Logger) (*lively.Engine, error) {
	var eval ports.Evaluator
	switch cfg.Evaluator {
	case "shell", "":
		eval = shell.New(shell.WithShell(cfg.Shell))
	case "calc":
		eval = calc.New()
	default:
		return nil, fmt.Errorf("unknown evaluator %q (want shell or calc)", cfg.Evaluator)
	}

	return lively.New(eval,
		lively.WithInterval(cfg.Interval()),
		lively.WithLogger(logger),
	)
}

// FindMarkedSpans locates {{...}} segments in text and returns the spans of
// their inner expressions, in document order.
func FindMarkedSpans(text string) []domain.Span {
	var spans []domain.Span
	offset := 0
	for {
		rest := text[offset:]
		open := strings.Index(rest, "{{")
		if open < 0 {
			break
		}
		closing := strings.Index(rest[open+2:], "}}")
		if closing < 0 {
			break
		}
		start := offset + open + 2
		end := start + closing
		if end > start {
			spans = append(spans, domain.Span{Start: start, End: end})
		}
		offset = end + 2
	}
	return spans
}
