package cmd

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kchia/component-forge/internal/retrieval"
	"github.com/kchia/component-forge/internal/ui"
)

// searchOptions holds CLI flags for a one-shot search.
type searchOptions struct {
	configPath    string
	props         []string
	variants      []string
	accessibility []string
	description   string
	topK          int
	format        string
	noColor       bool
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <component-type>",
		Short: "Retrieve patterns for a component requirement",
		Long: `Retrieve the patterns that best match a component requirement.

Examples:
  component-forge search Button --props variant,size --variants primary
  component-forge search Card --description "container with header and footer"
  component-forge search Input --a11y aria-label --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to component-forge.yaml")
	cmd.Flags().StringSliceVarP(&opts.props, "props", "p", nil, "Prop names the component should expose")
	cmd.Flags().StringSliceVar(&opts.variants, "variants", nil, "Visual variants the component should support")
	cmd.Flags().StringSliceVar(&opts.accessibility, "a11y", nil, "Required accessibility features")
	cmd.Flags().StringVarP(&opts.description, "description", "d", "", "Free-text component description")
	cmd.Flags().IntVarP(&opts.topK, "top-k", "n", 0, "Maximum number of patterns (default from config)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	return cmd
}

func runSearch(cmd *cobra.Command, componentType string, opts searchOptions) error {
	ctx := cmd.Context()

	app, err := newApp(ctx, opts.configPath, false)
	if err != nil {
		return err
	}
	defer app.Close()

	topK := opts.topK
	if topK <= 0 {
		topK = app.cfg.Retrieval.DefaultTopK
	}

	req := &retrieval.Requirement{
		ComponentType: componentType,
		Props:         opts.props,
		Variants:      opts.variants,
		Accessibility: opts.accessibility,
		Description:   opts.description,
	}

	resp, err := app.service.Search(ctx, req, topK)
	if err != nil {
		return err
	}

	if opts.format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	ui.NewResultRenderer(cmd.OutOrStdout(), opts.noColor).Render(resp)
	return nil
}
