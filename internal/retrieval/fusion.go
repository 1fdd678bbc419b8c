package retrieval

import (
	"sort"

	"github.com/kchia/component-forge/internal/index"
)

// ScoreFusion merges the two channels' candidate lists into one ranking.
//
// Raw BM25 scores are unbounded while vector similarities live in [0, 1],
// so each channel is min-max normalized over its own candidate set for the
// current query before the weighted combination. That keeps the ranking
// stable under corpus-size-driven drift in raw BM25 magnitude.
type ScoreFusion struct {
	weights Weights
}

// NewScoreFusion creates a fusion stage with the given channel weights.
func NewScoreFusion(weights Weights) *ScoreFusion {
	return &ScoreFusion{weights: weights}
}

// Fuse combines both channels' candidates into a single ranked list of at
// most topK results. Patterns appearing in only one channel contribute a
// zero from the other. Pure function of its inputs: identical inputs
// always produce identical output.
func (f *ScoreFusion) Fuse(lexical []*index.LexicalResult, semantic []*index.VectorResult, topK int) []*FusedResult {
	if topK <= 0 || (len(lexical) == 0 && len(semantic) == 0) {
		return []*FusedResult{}
	}

	fused := make(map[string]*FusedResult)
	getOrCreate := func(id string) *FusedResult {
		if r, ok := fused[id]; ok {
			return r
		}
		r := &FusedResult{PatternID: id, Weights: f.weights}
		fused[id] = r
		return r
	}

	for _, lr := range lexical {
		r := getOrCreate(lr.PatternID)
		r.LexicalScore = lr.Score
		r.LexicalRank = lr.Rank
		r.MatchedTerms = lr.MatchedTerms
	}
	for _, sr := range semantic {
		r := getOrCreate(sr.PatternID)
		r.SemanticScore = sr.Score
		r.SemanticRank = sr.Rank
	}

	lexNorm := minMaxNormalizer(lexicalScores(lexical))
	semNorm := minMaxNormalizer(semanticScores(semantic))

	for _, r := range fused {
		var lex, sem float64
		if r.LexicalRank > 0 {
			lex = lexNorm(r.LexicalScore)
		}
		if r.SemanticRank > 0 {
			sem = semNorm(r.SemanticScore)
		}
		r.FinalScore = f.weights.Lexical*lex + f.weights.Semantic*sem
	}

	return rankAndTruncate(fused, topK)
}

// FuseLexicalOnly ranks results when the semantic channel did not run.
// Normalization is bypassed entirely: the final score is the raw BM25
// score and the reported weights are {lexical: 1, semantic: 0}.
func (f *ScoreFusion) FuseLexicalOnly(lexical []*index.LexicalResult, topK int) []*FusedResult {
	if topK <= 0 || len(lexical) == 0 {
		return []*FusedResult{}
	}

	fused := make(map[string]*FusedResult, len(lexical))
	for _, lr := range lexical {
		fused[lr.PatternID] = &FusedResult{
			PatternID:    lr.PatternID,
			LexicalScore: lr.Score,
			LexicalRank:  lr.Rank,
			MatchedTerms: lr.MatchedTerms,
			FinalScore:   lr.Score,
			Weights:      LexicalOnlyWeights(),
		}
	}

	return rankAndTruncate(fused, topK)
}

// rankAndTruncate sorts fused results descending by final score with a
// deterministic tie-break (better lexical rank, then ascending pattern
// id), truncates to topK, and assigns contiguous 1-based final ranks.
func rankAndTruncate(fused map[string]*FusedResult, topK int) []*FusedResult {
	results := make([]*FusedResult, 0, len(fused))
	for _, r := range fused {
		results = append(results, r)
	}

	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.FinalScore != b.FinalScore {
			return a.FinalScore > b.FinalScore
		}
		if ra, rb := tieRank(a.LexicalRank), tieRank(b.LexicalRank); ra != rb {
			return ra < rb
		}
		return a.PatternID < b.PatternID
	})

	if len(results) > topK {
		results = results[:topK]
	}
	for i, r := range results {
		r.FinalRank = i + 1
	}

	return results
}

// tieRank treats "not ranked" (0) as worse than any real rank.
func tieRank(rank int) int {
	if rank <= 0 {
		return int(^uint(0) >> 1)
	}
	return rank
}

// minMaxNormalizer returns a function mapping raw channel scores onto
// [0, 1] over the given candidate scores. When every candidate shares one
// score, ranked candidates all normalize to 1.
func minMaxNormalizer(scores []float64) func(float64) float64 {
	if len(scores) == 0 {
		return func(float64) float64 { return 0 }
	}

	min, max := scores[0], scores[0]
	for _, s := range scores[1:] {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}

	if max == min {
		return func(float64) float64 { return 1 }
	}
	span := max - min
	return func(s float64) float64 { return (s - min) / span }
}

func lexicalScores(results []*index.LexicalResult) []float64 {
	scores := make([]float64, len(results))
	for i, r := range results {
		scores[i] = r.Score
	}
	return scores
}

func semanticScores(results []*index.VectorResult) []float64 {
	scores := make([]float64, len(results))
	for i, r := range results {
		scores[i] = r.Score
	}
	return scores
}
