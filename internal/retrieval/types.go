// Package retrieval implements the hybrid pattern retrieval pipeline:
// requirement validation, query building, parallel lexical and semantic
// channel search, weighted score fusion, and deterministic per-result
// explanations.
package retrieval

import (
	"time"

	"github.com/kchia/component-forge/internal/corpus"
)

// Requirement is the structured input for one retrieval request.
// ComponentType is mandatory; everything else refines the query.
type Requirement struct {
	ComponentType string   `json:"component_type"`
	Props         []string `json:"props,omitempty"`
	Variants      []string `json:"variants,omitempty"`
	Accessibility []string `json:"accessibility,omitempty"`
	Description   string   `json:"description,omitempty"`
}

// Query is the QueryBuilder output: one query per channel plus filters
// the semantic channel may apply.
type Query struct {
	// Lexical is a deduplicated bag of terms for BM25.
	Lexical string
	// Semantic is a synthesized natural-language sentence for embedding.
	Semantic string
	// Filters restrict the semantic candidate set.
	Filters Filters
}

// Filters are structured constraints derived from the requirement.
type Filters struct {
	// ComponentType matches against pattern name and category.
	ComponentType string
}

// Weights are the channel weights applied during fusion.
type Weights struct {
	Lexical  float64 `json:"lexical"`
	Semantic float64 `json:"semantic"`
}

// DefaultWeights favor the semantic channel; lexical overlap anchors
// exact prop and variant name matches.
func DefaultWeights() Weights {
	return Weights{Lexical: 0.3, Semantic: 0.7}
}

// LexicalOnlyWeights are reported when the semantic channel did not
// contribute to a request.
func LexicalOnlyWeights() Weights {
	return Weights{Lexical: 1.0, Semantic: 0.0}
}

// FusedResult is one pattern's combined ranking across both channels.
// A rank of 0 means the pattern was not ranked by that channel.
type FusedResult struct {
	PatternID string

	LexicalScore float64
	LexicalRank  int
	// MatchedTerms are the query terms the lexical channel matched.
	MatchedTerms []string

	SemanticScore float64
	SemanticRank  int

	FinalScore float64
	FinalRank  int

	Weights Weights
}

// RankingDetails is the externally visible ranking breakdown for one
// result. SemanticRank is null when the semantic channel did not rank
// the pattern.
type RankingDetails struct {
	LexicalScore  float64  `json:"bm25_score"`
	LexicalRank   int      `json:"bm25_rank"`
	SemanticScore float64  `json:"semantic_score"`
	SemanticRank  *int     `json:"semantic_rank"`
	FinalScore    float64  `json:"final_score"`
	FinalRank     int      `json:"final_rank"`
}

// MatchHighlights are exact-name intersections between requested and
// declared pattern features.
type MatchHighlights struct {
	MatchedProps    []string `json:"matched_props"`
	MatchedVariants []string `json:"matched_variants"`
	MatchedA11y     []string `json:"matched_a11y"`
}

// ExplainedResult is one fully assembled retrieval result.
type ExplainedResult struct {
	Pattern *corpus.Pattern `json:"pattern"`

	Confidence  float64         `json:"confidence"`
	Explanation string          `json:"explanation"`
	Highlights  MatchHighlights `json:"match_highlights"`
	Ranking     RankingDetails  `json:"ranking_details"`
}

// Metadata describes how a response was produced.
type Metadata struct {
	Latency               time.Duration `json:"-"`
	LatencyMS             float64       `json:"latency_ms"`
	MethodsUsed           []string      `json:"methods_used"`
	Weights               Weights       `json:"weights"`
	TotalPatternsSearched int           `json:"total_patterns_searched"`
	Query                 string        `json:"query"`
}

// Response is the orchestrator's output for one request.
type Response struct {
	Patterns []ExplainedResult `json:"patterns"`
	Metadata Metadata          `json:"retrieval_metadata"`
}
