package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kchia/component-forge/internal/corpus"
	"github.com/kchia/component-forge/internal/retrieval"
)

func sampleResponse() *retrieval.Response {
	semRank := 1
	return &retrieval.Response{
		Patterns: []retrieval.ExplainedResult{
			{
				Pattern:     &corpus.Pattern{ID: "shadcn-button", Name: "Button"},
				Confidence:  0.87,
				Explanation: "Button matched on both keyword overlap and semantic similarity (rank 1).",
				Ranking: retrieval.RankingDetails{
					LexicalScore:  4.2,
					LexicalRank:   1,
					SemanticScore: 0.91,
					SemanticRank:  &semRank,
					FinalScore:    0.87,
					FinalRank:     1,
				},
			},
			{
				Pattern:     &corpus.Pattern{ID: "shadcn-card", Name: "Card"},
				Confidence:  0.31,
				Explanation: "Card matched on keyword overlap with the requirement (rank 2).",
				Ranking: retrieval.RankingDetails{
					LexicalScore: 1.1,
					LexicalRank:  2,
					FinalScore:   0.31,
					FinalRank:    2,
				},
			},
		},
		Metadata: retrieval.Metadata{
			LatencyMS:             12.4,
			MethodsUsed:           []string{"lexical", "semantic"},
			Weights:               retrieval.DefaultWeights(),
			TotalPatternsSearched: 10,
		},
	}
}

func TestRenderResults(t *testing.T) {
	var buf bytes.Buffer
	// buf is not a terminal so color is stripped automatically.
	NewResultRenderer(&buf, false).Render(sampleResponse())

	out := buf.String()
	assert.Contains(t, out, "Top 2 patterns")
	assert.Contains(t, out, "1. Button (shadcn-button)")
	assert.Contains(t, out, "2. Card (shadcn-card)")
	assert.Contains(t, out, "87% confidence")
	assert.Contains(t, out, "semantic 0.910 (rank 1)")
	// Unranked semantic channel renders as a dash.
	assert.Contains(t, out, "semantic 0.000 (rank -)")
	assert.Contains(t, out, "methods: lexical+semantic")
	assert.Contains(t, out, "searched: 10")
}

func TestRenderEmptyResponse(t *testing.T) {
	var buf bytes.Buffer
	NewResultRenderer(&buf, true).Render(&retrieval.Response{
		Metadata: retrieval.Metadata{
			MethodsUsed: []string{"lexical"},
			Weights:     retrieval.LexicalOnlyWeights(),
		},
	})

	assert.Contains(t, buf.String(), "No matching patterns found.")
	assert.Contains(t, buf.String(), "methods: lexical")
}

func TestRenderConfidenceBar(t *testing.T) {
	assert.Equal(t, strings.Repeat("█", 10), renderConfidenceBar(1.0, 10))
	assert.Equal(t, strings.Repeat("░", 10), renderConfidenceBar(0.0, 10))
	assert.Equal(t, "█████░░░░░", renderConfidenceBar(0.55, 10))
	// Out-of-range values clamp instead of panicking.
	assert.Equal(t, strings.Repeat("█", 10), renderConfidenceBar(1.7, 10))
	assert.Equal(t, strings.Repeat("░", 10), renderConfidenceBar(-0.2, 10))
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}
