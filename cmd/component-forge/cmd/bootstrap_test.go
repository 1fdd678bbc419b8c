package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kchia/component-forge/internal/retrieval"
)

func TestReloadReExtractsProps(t *testing.T) {
	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "patterns.json")

	initial := `[
		{
			"id": "shadcn-button",
			"name": "Button",
			"category": "form",
			"description": "A clickable button"
		}
	]`
	require.NoError(t, os.WriteFile(corpusPath, []byte(initial), 0o644))

	configPath := filepath.Join(dir, "component-forge.yaml")
	cfg := fmt.Sprintf("version: 1\ncorpus:\n  path: %s\n", corpusPath)
	require.NoError(t, os.WriteFile(configPath, []byte(cfg), 0o644))

	app, err := newApp(context.Background(), configPath, false)
	require.NoError(t, err)
	defer app.Close()

	// Swap in a pattern whose props exist only in its code; enrichment
	// must run on the reload path too, not just at startup.
	updated := `[
		{
			"id": "shadcn-toggle",
			"name": "Toggle",
			"category": "form",
			"description": "A two-state toggle control",
			"code": "interface ToggleProps { pressed: boolean; onPressedChange: () => void; }"
		}
	]`
	require.NoError(t, os.WriteFile(corpusPath, []byte(updated), 0o644))
	require.NoError(t, app.store.Reload())

	resp, err := app.service.Search(context.Background(), &retrieval.Requirement{
		ComponentType: "Toggle",
		Props:         []string{"pressed"},
	}, 3)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Patterns)

	top := resp.Patterns[0]
	assert.Equal(t, "shadcn-toggle", top.Pattern.ID)
	assert.Contains(t, top.Highlights.MatchedProps, "pressed")
}
