package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mathrick/lively/internal/cli"
	"github.com/mathrick/lively/internal/logging"
	livelyhttp "github.com/mathrick/lively/pkg/adapters/http"
	"github.com/mathrick/lively/pkg/adapters/memdoc"
)

var serveCmd = &cobra.Command{
	Use:   "serve [file]",
	Short: "Keep a document lively and expose overlay introspection over HTTP",
	Long: `Serve loads a text file, makes every {{...}} segment lively, and serves
the overlay snapshot, a forced-update endpoint, and Prometheus metrics on
the configured listen address.`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("listen", "", "Listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		cfg.Listen = listen
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

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	srv := &http.Server{
		Addr:    cfg.Listen,
		Handler: livelyhttp.NewHandler(eng, logger),
	}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	logger.Info("introspection server listening", "addr", cfg.Listen, "doc", doc.ID())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
