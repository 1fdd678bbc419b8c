package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFixture creates a pattern corpus and a config file pointing at it.
func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	corpusPath := filepath.Join(dir, "patterns.json")
	corpus := `[
		{
			"id": "shadcn-button",
			"name": "Button",
			"category": "form",
			"description": "A clickable button with variants and sizes",
			"metadata": {
				"props": ["variant", "size"],
				"variants": ["primary", "ghost"]
			}
		},
		{
			"id": "shadcn-card",
			"name": "Card",
			"category": "layout",
			"description": "A content container with header and footer"
		}
	]`
	require.NoError(t, os.WriteFile(corpusPath, []byte(corpus), 0o644))

	configPath := filepath.Join(dir, "component-forge.yaml")
	config := fmt.Sprintf("version: 1\ncorpus:\n  path: %s\n", corpusPath)
	require.NoError(t, os.WriteFile(configPath, []byte(config), 0o644))

	return configPath
}

// execute runs the CLI with the given args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

func TestRootHelpListsCommands(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)

	for _, sub := range []string{"serve", "mcp", "search", "status", "version"} {
		assert.Contains(t, out, sub)
	}
}

func TestUnknownCommand(t *testing.T) {
	_, err := execute(t, "frobnicate")
	assert.Error(t, err)
}
