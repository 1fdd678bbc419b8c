package cmd

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kchia/component-forge/internal/logging"
	"github.com/kchia/component-forge/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server on stdio",
		Long: `Start the Model Context Protocol server on stdio.

Exposes the search_patterns and retrieval_status tools for AI clients.
Stdout carries JSON-RPC exclusively; all logging goes to
~/.component-forge/logs/.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMCP(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to component-forge.yaml")

	return cmd
}

func runMCP(cmd *cobra.Command, configPath string) error {
	// Stdout is reserved for JSON-RPC, so logs go to file only.
	logCfg := logging.DefaultConfig()
	logCfg.WriteToStderr = false
	if logger, cleanup, err := logging.Setup(logCfg); err == nil {
		slog.SetDefault(logger)
		defer cleanup()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, configPath, true)
	if err != nil {
		slog.Error("failed to start", "error", err)
		return err
	}
	defer app.Close()

	if app.cfg.Corpus.Watch {
		go func() {
			if err := app.store.Watch(ctx, app.cfg.WatchDebounceDuration()); err != nil && ctx.Err() == nil {
				slog.Error("corpus watcher stopped", "error", err)
			}
		}()
	}

	server, err := mcp.NewServer(app.service, app.cfg.Retrieval.DefaultTopK)
	if err != nil {
		return err
	}

	return server.Serve(ctx, app.cfg.Server.Transport)
}
