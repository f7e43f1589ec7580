package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/mathrick/lively"
	"github.com/mathrick/lively/internal/cli"
	"github.com/mathrick/lively/internal/logging"
	"github.com/mathrick/lively/pkg/adapters/memdoc"
	"github.com/mathrick/lively/pkg/domain"
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Open a document and keep its {{...}} expressions lively",
	Long: `Run loads a text file, makes every {{...}} segment lively, and enters an
interactive loop. Commands:

  cursor N   move the cursor to offset N (freezes/thaws nearby overlays)
  update     force an immediate render pass
  show       reprint the document
  stop       delete all overlays and stop the refresh timer
  quit       exit`,
	Args: cobra.ExactArgs(1),
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := logging.New(logging.ParseLevel(cfg.LogLevel))

	eng, err := cli.BuildEngine(cfg, logger)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	doc := memdoc.New(filepath.Base(args[0]), string(data))

	ctx := cmd.Context()
	spans := cli.FindMarkedSpans(doc.Contents())
	if len(spans) == 0 {
		return fmt.Errorf("no {{...}} segments found in %s", args[0])
	}
	for _, span := range spans {
		if _, err := eng.MakeLively(ctx, doc, span); err != nil {
			return fmt.Errorf("make lively over %s: %w", span, err)
		}
	}
	defer eng.StopAll(ctx)

	eng.UpdateAllNow(ctx)
	printDocument(cmd.OutOrStdout(), doc, eng)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	fmt.Fprint(cmd.OutOrStdout(), "> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		fields := strings.Fields(line)

		switch {
		case line == "quit", line == "exit":
			return nil
		case line == "stop":
			eng.StopAll(ctx)
		case line == "update":
			eng.UpdateAllNow(ctx)
		case line == "show", line == "":
			// fallthrough to the reprint below
		case len(fields) == 2 && fields[0] == "cursor":
			pos, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "bad offset %q\n", fields[1])
				break
			}
			// The input hooks bracket the cursor move the way a host
			// editor brackets a keystroke.
			eng.BeforeInput()
			doc.SetCursor(pos)
			if err := eng.AfterInput(ctx, doc.ID()); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "input cycle: %v\n", err)
			}
		default:
			fmt.Fprintf(cmd.OutOrStdout(), "unknown command %q\n", line)
		}

		printDocument(cmd.OutOrStdout(), doc, eng)
		fmt.Fprint(cmd.OutOrStdout(), "> ")
	}
	return scanner.Err()
}

// printDocument writes the document with overlay displays substituted in:
// rendered results in green, frozen (editable) raw segments in yellow.
func printDocument(w io.Writer, doc *memdoc.Document, eng *lively.Engine) {
	profile := termenv.ColorProfile()
	text := doc.Contents()

	overlays := eng.Overlays()
	sort.Slice(overlays, func(i, j int) bool { return overlays[i].Span.Start < overlays[j].Span.Start })

	var b strings.Builder
	pos := 0
	for _, o := range overlays {
		if o.Span.Start < pos || o.Span.End > len(text) {
			continue // stale span after edits; next pass deletes it
		}
		b.WriteString(text[pos:o.Span.Start])
		raw := text[o.Span.Start:o.Span.End]
		if rendered, ok := o.Display.Text(); ok {
			b.WriteString(termenv.String(rendered).Foreground(profile.Color("2")).String())
		} else if o.State == domain.StateFrozen {
			b.WriteString(termenv.String(raw).Foreground(profile.Color("3")).String())
		} else {
			b.WriteString(raw)
		}
		pos = o.Span.End
	}
	b.WriteString(text[pos:])
	b.WriteString("\n")
	fmt.Fprint(w, b.String())
}
