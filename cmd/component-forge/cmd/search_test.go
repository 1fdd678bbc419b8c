package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kchia/component-forge/internal/retrieval"
)

func TestSearchCommandJSON(t *testing.T) {
	configPath := writeFixture(t)

	out, err := execute(t,
		"search", "Button",
		"--config", configPath,
		"--props", "variant,size",
		"--format", "json",
		"--top-k", "1")
	require.NoError(t, err)

	var resp retrieval.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	require.Len(t, resp.Patterns, 1)
	assert.Equal(t, "shadcn-button", resp.Patterns[0].Pattern.ID)
	assert.Contains(t, resp.Patterns[0].Highlights.MatchedProps, "variant")
	assert.Equal(t, []string{"lexical"}, resp.Metadata.MethodsUsed)
}

func TestSearchCommandText(t *testing.T) {
	configPath := writeFixture(t)

	out, err := execute(t,
		"search", "Button",
		"--config", configPath,
		"--no-color")
	require.NoError(t, err)

	assert.Contains(t, out, "Button")
	assert.Contains(t, out, "confidence")
	assert.Contains(t, out, "methods: lexical")
}

func TestSearchCommandRequiresComponentType(t *testing.T) {
	configPath := writeFixture(t)

	_, err := execute(t, "search", "--config", configPath)
	assert.Error(t, err)
}

func TestSearchCommandMissingCorpus(t *testing.T) {
	_, err := execute(t, "search", "Button", "--config", "/nonexistent/forge.yaml")
	assert.Error(t, err)
}
