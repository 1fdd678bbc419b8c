package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kchia/component-forge/internal/index"
)

func lexResult(id string, score float64, rank int, terms ...string) *index.LexicalResult {
	return &index.LexicalResult{PatternID: id, Score: score, Rank: rank, MatchedTerms: terms}
}

func semResult(id string, score float64, rank int) *index.VectorResult {
	return &index.VectorResult{PatternID: id, Score: score, Rank: rank}
}

func TestFuseCombinesNormalizedChannels(t *testing.T) {
	fusion := NewScoreFusion(DefaultWeights())

	lexical := []*index.LexicalResult{
		lexResult("button", 10, 1, "variant"),
		lexResult("card", 5, 2),
	}
	semantic := []*index.VectorResult{
		semResult("card", 0.9, 1),
		semResult("badge", 0.5, 2),
	}

	fused := fusion.Fuse(lexical, semantic, 10)
	require.Len(t, fused, 3)

	// Min-max over each channel's candidates: button lex=1 sem=0,
	// card lex=0 sem=1, badge lex=0 sem=0.
	assert.Equal(t, "card", fused[0].PatternID)
	assert.InDelta(t, 0.7, fused[0].FinalScore, 1e-9)
	assert.Equal(t, "button", fused[1].PatternID)
	assert.InDelta(t, 0.3, fused[1].FinalScore, 1e-9)
	assert.Equal(t, "badge", fused[2].PatternID)
	assert.InDelta(t, 0.0, fused[2].FinalScore, 1e-9)

	for i, r := range fused {
		assert.Equal(t, i+1, r.FinalRank)
		assert.InDelta(t, 1.0, r.Weights.Lexical+r.Weights.Semantic, 1e-9)
	}
}

func TestFuseCarriesChannelDetails(t *testing.T) {
	fusion := NewScoreFusion(DefaultWeights())

	fused := fusion.Fuse(
		[]*index.LexicalResult{lexResult("button", 4, 1, "variant", "size")},
		[]*index.VectorResult{semResult("button", 0.8, 1)},
		10,
	)

	require.Len(t, fused, 1)
	r := fused[0]
	assert.Equal(t, 4.0, r.LexicalScore)
	assert.Equal(t, 1, r.LexicalRank)
	assert.Equal(t, []string{"variant", "size"}, r.MatchedTerms)
	assert.Equal(t, 0.8, r.SemanticScore)
	assert.Equal(t, 1, r.SemanticRank)
	// Lone candidate per channel normalizes to 1 in both.
	assert.InDelta(t, 1.0, r.FinalScore, 1e-9)
}

func TestFuseIsPure(t *testing.T) {
	fusion := NewScoreFusion(DefaultWeights())

	lexical := []*index.LexicalResult{
		lexResult("a", 3, 1),
		lexResult("b", 2, 2),
		lexResult("c", 1, 3),
	}
	semantic := []*index.VectorResult{
		semResult("b", 0.9, 1),
		semResult("d", 0.4, 2),
	}

	first := fusion.Fuse(lexical, semantic, 3)
	for i := 0; i < 20; i++ {
		again := fusion.Fuse(lexical, semantic, 3)
		require.Len(t, again, len(first))
		for j := range first {
			assert.Equal(t, first[j].PatternID, again[j].PatternID)
			assert.Equal(t, first[j].FinalScore, again[j].FinalScore)
			assert.Equal(t, first[j].FinalRank, again[j].FinalRank)
		}
	}
}

func TestFuseTieBreak(t *testing.T) {
	fusion := NewScoreFusion(DefaultWeights())

	t.Run("better lexical rank wins", func(t *testing.T) {
		// Both share the lexical max so both normalize to 1 and tie.
		lexical := []*index.LexicalResult{
			lexResult("zz-first-ranked", 5, 1),
			lexResult("aa-second-ranked", 5, 2),
		}

		fused := fusion.Fuse(lexical, nil, 10)
		require.Len(t, fused, 2)
		assert.Equal(t, "zz-first-ranked", fused[0].PatternID)
		assert.Equal(t, "aa-second-ranked", fused[1].PatternID)
	})

	t.Run("pattern id breaks remaining ties", func(t *testing.T) {
		semantic := []*index.VectorResult{
			semResult("mango", 0.7, 1),
			semResult("apple", 0.7, 2),
		}

		fused := fusion.Fuse(nil, semantic, 10)
		require.Len(t, fused, 2)
		// Neither is lexically ranked, so ascending id decides.
		assert.Equal(t, "apple", fused[0].PatternID)
		assert.Equal(t, "mango", fused[1].PatternID)
	})

	t.Run("unranked sorts after any real rank", func(t *testing.T) {
		lexical := []*index.LexicalResult{lexResult("lex-only", 2, 1)}
		semantic := []*index.VectorResult{semResult("sem-only", 0.6, 1)}
		// Single-candidate channels both normalize to 1: with weights
		// 0.5/0.5 the final scores tie and the lexically ranked
		// pattern must come first.
		fused := NewScoreFusion(Weights{Lexical: 0.5, Semantic: 0.5}).Fuse(lexical, semantic, 10)

		require.Len(t, fused, 2)
		assert.Equal(t, "lex-only", fused[0].PatternID)
		assert.Equal(t, "sem-only", fused[1].PatternID)
	})
}

func TestFuseTruncatesWithContiguousRanks(t *testing.T) {
	fusion := NewScoreFusion(DefaultWeights())

	lexical := []*index.LexicalResult{
		lexResult("a", 9, 1),
		lexResult("b", 7, 2),
		lexResult("c", 5, 3),
		lexResult("d", 3, 4),
		lexResult("e", 1, 5),
	}

	fused := fusion.Fuse(lexical, nil, 2)
	require.Len(t, fused, 2)
	assert.Equal(t, 1, fused[0].FinalRank)
	assert.Equal(t, 2, fused[1].FinalRank)
	assert.Equal(t, "a", fused[0].PatternID)
	assert.Equal(t, "b", fused[1].PatternID)
}

func TestFuseEmptyInputs(t *testing.T) {
	fusion := NewScoreFusion(DefaultWeights())

	assert.Empty(t, fusion.Fuse(nil, nil, 5))
	assert.Empty(t, fusion.Fuse([]*index.LexicalResult{lexResult("a", 1, 1)}, nil, 0))
	assert.Empty(t, fusion.FuseLexicalOnly(nil, 5))
}

func TestFuseLexicalOnlyKeepsRawScores(t *testing.T) {
	fusion := NewScoreFusion(DefaultWeights())

	lexical := []*index.LexicalResult{
		lexResult("button", 7.3, 1, "variant"),
		lexResult("card", 2.1, 2),
	}

	fused := fusion.FuseLexicalOnly(lexical, 10)
	require.Len(t, fused, 2)

	for i, r := range fused {
		assert.Equal(t, lexical[i].Score, r.FinalScore)
		assert.Equal(t, LexicalOnlyWeights(), r.Weights)
		assert.Equal(t, i+1, r.FinalRank)
		assert.Zero(t, r.SemanticRank)
	}
}

func TestMinMaxNormalizer(t *testing.T) {
	t.Run("spreads over unit interval", func(t *testing.T) {
		norm := minMaxNormalizer([]float64{2, 6, 10})
		assert.InDelta(t, 0.0, norm(2), 1e-9)
		assert.InDelta(t, 0.5, norm(6), 1e-9)
		assert.InDelta(t, 1.0, norm(10), 1e-9)
	})

	t.Run("uniform scores normalize to one", func(t *testing.T) {
		norm := minMaxNormalizer([]float64{4, 4, 4})
		assert.InDelta(t, 1.0, norm(4), 1e-9)
	})

	t.Run("no candidates normalize to zero", func(t *testing.T) {
		norm := minMaxNormalizer(nil)
		assert.InDelta(t, 0.0, norm(12), 1e-9)
	})
}
