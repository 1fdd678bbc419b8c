package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kchia/component-forge/internal/output"
)

func newStatusCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show corpus and retrieval channel status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to component-forge.yaml")

	return cmd
}

func runStatus(cmd *cobra.Command, configPath string) error {
	ctx := cmd.Context()

	app, err := newApp(ctx, configPath, false)
	if err != nil {
		return err
	}
	defer app.Close()

	out := output.New(cmd.OutOrStdout())
	cfg := app.cfg

	out.Success("corpus loaded")
	out.Detail("path", cfg.Corpus.Path)
	out.Detail("patterns", strconv.Itoa(app.service.CorpusSize()))
	out.Newline()

	if app.service.SemanticReady() {
		out.Success("semantic channel ready")
		out.Detail("provider", cfg.Embeddings.Provider)
		out.Detail("model", app.embedder.ModelName())
		out.Detail("dimensions", strconv.Itoa(app.embedder.Dimensions()))
	} else if cfg.Embeddings.Provider == "" {
		out.Warning("semantic channel disabled (no embeddings provider configured)")
	} else {
		out.Warning("semantic channel unavailable, running lexical-only")
		out.Detail("provider", cfg.Embeddings.Provider)
	}
	out.Newline()

	out.Status("⚖️ ", fmt.Sprintf("fusion weights: lexical %.1f / semantic %.1f",
		cfg.Retrieval.LexicalWeight, cfg.Retrieval.SemanticWeight))
	out.Detail("candidate width", strconv.Itoa(cfg.Retrieval.CandidateWidth))
	out.Detail("default top_k", strconv.Itoa(cfg.Retrieval.DefaultTopK))

	return nil
}
