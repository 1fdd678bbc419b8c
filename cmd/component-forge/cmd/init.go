package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kchia/component-forge/configs"
	forgeerrors "github.com/kchia/component-forge/internal/errors"
	"github.com/kchia/component-forge/internal/output"
)

func newInitCmd() *cobra.Command {
	var (
		withPatterns bool
		force        bool
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a starter component-forge.yaml (and optionally a pattern library)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runInit(cmd, dir, withPatterns, force)
		},
	}

	cmd.Flags().BoolVar(&withPatterns, "with-patterns", false, "Also write data/patterns.json with a small starter library")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, withPatterns, force bool) error {
	out := output.New(cmd.OutOrStdout())

	cfgPath := filepath.Join(dir, "component-forge.yaml")
	if err := writeTemplate(cfgPath, configs.ConfigTemplate, force); err != nil {
		return err
	}
	out.Success("wrote " + cfgPath)

	if withPatterns {
		libPath := filepath.Join(dir, "data", "patterns.json")
		if err := writeTemplate(libPath, configs.StarterLibrary, force); err != nil {
			return err
		}
		out.Success("wrote " + libPath)
	}

	out.Newline()
	out.Status("👉", "edit corpus.path in component-forge.yaml, then run: component-forge status")

	return nil
}

func writeTemplate(path, content string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return forgeerrors.New(forgeerrors.ErrCodeInvalidInput,
				fmt.Sprintf("%s already exists", path), nil).
				WithSuggestion("Pass --force to overwrite it")
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return forgeerrors.Wrap(forgeerrors.ErrCodeInternal, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return forgeerrors.Wrap(forgeerrors.ErrCodeInternal, err)
	}
	return nil
}
