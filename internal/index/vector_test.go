package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVectorIndex(t *testing.T) *VectorIndex {
	t.Helper()
	idx, err := NewVectorIndex(VectorConfig{Dimensions: 4})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestVectorIndex_NearestNeighborFirst(t *testing.T) {
	idx := newTestVectorIndex(t)

	err := idx.Add(context.Background(),
		[]string{"shadcn-button", "shadcn-card", "shadcn-badge"},
		[][]float32{
			{1, 0, 0, 0},
			{0, 1, 0, 0},
			{0, 0, 1, 0},
		})
	require.NoError(t, err)

	results, err := idx.Search(context.Background(), []float32{0.9, 0.1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "shadcn-button", results[0].PatternID)
	assert.Equal(t, 1, results[0].Rank)
	assert.Equal(t, 2, results[1].Rank)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
}

func TestVectorIndex_ScoresBounded(t *testing.T) {
	idx := newTestVectorIndex(t)

	require.NoError(t, idx.Add(context.Background(),
		[]string{"a", "b"},
		[][]float32{{1, 0, 0, 0}, {-1, 0, 0, 0}}))

	results, err := idx.Search(context.Background(), []float32{1, 0, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, r := range results {
		assert.GreaterOrEqual(t, r.Score, 0.0)
		assert.LessOrEqual(t, r.Score, 1.0)
	}
	// Identical vector scores ~1, opposite vector scores ~0
	assert.InDelta(t, 1.0, results[0].Score, 0.001)
	assert.InDelta(t, 0.0, results[1].Score, 0.001)
}

func TestVectorIndex_DimensionMismatch(t *testing.T) {
	idx := newTestVectorIndex(t)

	err := idx.Add(context.Background(), []string{"a"}, [][]float32{{1, 0}})
	require.Error(t, err)
	assert.IsType(t, ErrDimensionMismatch{}, err)

	_, err = idx.Search(context.Background(), []float32{1, 0}, 1)
	require.Error(t, err)
}

func TestVectorIndex_EmptyGraph(t *testing.T) {
	idx := newTestVectorIndex(t)

	results, err := idx.Search(context.Background(), []float32{1, 0, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestVectorIndex_ReAddReplacesVector(t *testing.T) {
	idx := newTestVectorIndex(t)

	require.NoError(t, idx.Add(context.Background(), []string{"a"}, [][]float32{{1, 0, 0, 0}}))
	require.NoError(t, idx.Add(context.Background(), []string{"a"}, [][]float32{{0, 1, 0, 0}}))

	assert.Equal(t, 1, idx.Count())

	results, err := idx.Search(context.Background(), []float32{0, 1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].PatternID)
	assert.InDelta(t, 1.0, results[0].Score, 0.001)
}

func TestNewVectorIndex_RequiresDimensions(t *testing.T) {
	_, err := NewVectorIndex(VectorConfig{})
	require.Error(t, err)
}
