package cmd

import (
	"log/slog"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kchia/component-forge/internal/api"
	"github.com/kchia/component-forge/internal/output"
)

func newServeCmd() *cobra.Command {
	var configPath string
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP retrieval API",
		Long: `Start the HTTP retrieval API.

Exposes POST /api/v1/retrieval/search and GET /api/v1/retrieval/health.
When corpus.watch is enabled the pattern library is reloaded on change
without restarting the server.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, configPath, addr)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to component-forge.yaml")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")

	return cmd
}

func runServe(cmd *cobra.Command, configPath, addr string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, configPath, true)
	if err != nil {
		return err
	}
	defer app.Close()

	if addr == "" {
		addr = app.cfg.Server.Addr
	}

	if app.cfg.Corpus.Watch {
		go func() {
			if err := app.store.Watch(ctx, app.cfg.WatchDebounceDuration()); err != nil && ctx.Err() == nil {
				slog.Error("corpus watcher stopped", "error", err)
			}
		}()
	}

	out := output.New(cmd.OutOrStdout())
	out.Successf("serving retrieval API on %s", addr)
	out.Detail("patterns", strconv.Itoa(app.service.CorpusSize()))
	out.Detail("semantic", semanticLabel(app.service.SemanticReady()))

	return api.NewServer(app.service, addr, app.cfg.Retrieval.DefaultTopK).ListenAndServe(ctx)
}

func semanticLabel(ready bool) string {
	if ready {
		return "ready"
	}
	return "disabled (lexical-only)"
}
