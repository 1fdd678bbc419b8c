package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCommand(t *testing.T) {
	configPath := writeFixture(t)

	out, err := execute(t, "status", "--config", configPath)
	require.NoError(t, err)

	assert.Contains(t, out, "corpus loaded")
	assert.Contains(t, out, "patterns: 2")
	assert.Contains(t, out, "semantic channel disabled")
	assert.Contains(t, out, "fusion weights: lexical 0.3 / semantic 0.7")
}
