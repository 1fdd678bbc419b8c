package retrieval

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kchia/component-forge/internal/corpus"
	"github.com/kchia/component-forge/internal/embed"
	forgeerrors "github.com/kchia/component-forge/internal/errors"
	"github.com/kchia/component-forge/internal/index"
)

// countingEmbedder fails every query-time embed and counts the attempts.
type countingEmbedder struct {
	inner *embed.StaticEmbedder
	calls int
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls++
	return nil, errors.New("embedding backend unreachable")
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return c.inner.EmbedBatch(ctx, texts)
}

func (c *countingEmbedder) Dimensions() int                    { return c.inner.Dimensions() }
func (c *countingEmbedder) ModelName() string                  { return c.inner.ModelName() }
func (c *countingEmbedder) Available(ctx context.Context) bool { return true }
func (c *countingEmbedder) Close() error                       { return nil }

func semanticFixture(t *testing.T) (*index.VectorIndex, *corpus.Library) {
	t.Helper()

	lib, err := corpus.NewLibrary([]corpus.Pattern{
		{ID: "shadcn-button", Name: "Button", Category: "form", Description: "A clickable button"},
		{ID: "shadcn-card", Name: "Card", Category: "layout", Description: "A content container"},
	})
	require.NoError(t, err)

	static := embed.NewStaticEmbedder()
	patterns := lib.Patterns()
	ids := make([]string, len(patterns))
	docs := make([]string, len(patterns))
	for i := range patterns {
		ids[i] = patterns[i].ID
		docs[i] = patterns[i].Document()
	}
	vectors, err := static.EmbedBatch(context.Background(), docs)
	require.NoError(t, err)

	idx, err := index.NewVectorIndex(index.VectorConfig{Dimensions: static.Dimensions()})
	require.NoError(t, err)
	require.NoError(t, idx.Add(context.Background(), ids, vectors))

	return idx, lib
}

func TestSemanticRetrieverHonorsRetryBudget(t *testing.T) {
	idx, lib := semanticFixture(t)

	tests := []struct {
		name      string
		retries   int
		wantCalls int
	}{
		{"zero retries means one attempt", 0, 1},
		{"two retries means three attempts", 2, 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			embedder := &countingEmbedder{inner: embed.NewStaticEmbedder()}
			r := NewSemanticRetriever(embedder, time.Second, tc.retries)

			_, err := r.Search(context.Background(), idx, lib, "clickable button", 5, Filters{})
			require.Error(t, err)
			assert.Equal(t, tc.wantCalls, embedder.calls)
		})
	}
}

func TestNewSemanticRetrieverNegativeRetriesKeepsDefault(t *testing.T) {
	r := NewSemanticRetriever(embed.NewStaticEmbedder(), time.Second, -1)
	assert.Equal(t, forgeerrors.DefaultRetryConfig().MaxRetries, r.retry.MaxRetries)
}
