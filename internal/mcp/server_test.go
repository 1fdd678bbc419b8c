package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kchia/component-forge/internal/corpus"
	forgeerrors "github.com/kchia/component-forge/internal/errors"
	"github.com/kchia/component-forge/internal/retrieval"
)

func testRetriever(t *testing.T) Retriever {
	t.Helper()

	lib, err := corpus.NewLibrary([]corpus.Pattern{
		{
			ID:          "shadcn-button",
			Name:        "Button",
			Category:    "form",
			Description: "A clickable button with variants and sizes",
			Metadata: map[string]any{
				"props":    []any{"variant", "size"},
				"variants": []any{"primary", "ghost"},
			},
		},
		{
			ID:          "shadcn-card",
			Name:        "Card",
			Category:    "layout",
			Description: "A content container",
		},
	})
	require.NoError(t, err)

	svc, err := retrieval.NewService(context.Background(), lib, nil, retrieval.DefaultServiceConfig(), nil)
	require.NoError(t, err)
	return svc
}

func TestNewServerRequiresRetriever(t *testing.T) {
	_, err := NewServer(nil, 3)
	assert.Error(t, err)
}

func TestSearchPatternsTool(t *testing.T) {
	server, err := NewServer(testRetriever(t), 3)
	require.NoError(t, err)

	_, output, err := server.searchPatternsHandler(context.Background(), nil, SearchPatternsInput{
		ComponentType: "Button",
		Props:         []string{"variant", "size"},
		TopK:          2,
	})
	require.NoError(t, err)

	require.NotEmpty(t, output.Patterns)
	assert.LessOrEqual(t, len(output.Patterns), 2)
	assert.Equal(t, "shadcn-button", output.Patterns[0].Pattern.ID)
	assert.Equal(t, []string{"lexical"}, output.Metadata.MethodsUsed)
}

func TestSearchPatternsToolDefaultTopK(t *testing.T) {
	server, err := NewServer(testRetriever(t), 1)
	require.NoError(t, err)

	_, output, err := server.searchPatternsHandler(context.Background(), nil, SearchPatternsInput{
		ComponentType: "Button",
	})
	require.NoError(t, err)
	assert.Len(t, output.Patterns, 1)
}

func TestSearchPatternsToolMissingComponentType(t *testing.T) {
	server, err := NewServer(testRetriever(t), 3)
	require.NoError(t, err)

	_, _, err = server.searchPatternsHandler(context.Background(), nil, SearchPatternsInput{})

	require.Error(t, err)
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrCodeInvalidParams, mcpErr.Code)
}

func TestRetrievalStatusTool(t *testing.T) {
	server, err := NewServer(testRetriever(t), 3)
	require.NoError(t, err)

	_, output, err := server.retrievalStatusHandler(context.Background(), nil, RetrievalStatusInput{})
	require.NoError(t, err)

	assert.Equal(t, 2, output.Patterns)
	assert.False(t, output.SemanticReady)
	assert.NotEmpty(t, output.Version)
}

func TestListTools(t *testing.T) {
	server, err := NewServer(testRetriever(t), 3)
	require.NoError(t, err)

	tools := server.ListTools()
	require.Len(t, tools, 2)
	assert.Equal(t, "search_patterns", tools[0].Name)
	assert.Equal(t, "retrieval_status", tools[1].Name)
}

func TestServeRejectsUnknownTransport(t *testing.T) {
	server, err := NewServer(testRetriever(t), 3)
	require.NoError(t, err)

	err = server.Serve(context.Background(), "sse")
	assert.Error(t, err)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{
			name:     "requirement validation",
			err:      forgeerrors.ValidationError("missing component_type", nil),
			wantCode: ErrCodeInvalidParams,
		},
		{
			name:     "corpus missing",
			err:      forgeerrors.New(forgeerrors.ErrCodeCorpusNotFound, "no corpus", nil),
			wantCode: ErrCodeCorpusNotReady,
		},
		{
			name:     "deadline",
			err:      context.DeadlineExceeded,
			wantCode: ErrCodeTimeout,
		},
		{
			name:     "plain error",
			err:      errors.New("boom"),
			wantCode: ErrCodeInternalError,
		},
		{
			name:     "already mapped",
			err:      NewInvalidParamsError("bad input"),
			wantCode: ErrCodeInvalidParams,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := MapError(tt.err)
			require.NotNil(t, mapped)
			assert.Equal(t, tt.wantCode, mapped.Code)
		})
	}

	assert.Nil(t, MapError(nil))
}

func TestMapErrorIncludesSuggestion(t *testing.T) {
	err := forgeerrors.ValidationError("requirement is missing component_type", nil).
		WithSuggestion("set component_type")

	mapped := MapError(err)
	assert.Contains(t, mapped.Message, "set component_type")
}
