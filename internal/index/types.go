// Package index provides the two retrieval channels over the pattern
// library: a BM25 lexical index backed by Bleve and an HNSW vector index
// for semantic search.
package index

import "fmt"

// BM25Config tunes the lexical channel. The BM25 k1/b parameters are
// fixed by Bleve at 1.2/0.75 and are not exposed here.
type BM25Config struct {
	// StopWords are filtered at index and query time. A nil slice means
	// the default list; an empty slice disables filtering.
	StopWords []string
}

// DefaultBM25Config returns the standard lexical channel configuration.
func DefaultBM25Config() BM25Config {
	return BM25Config{
		StopWords: DefaultStopWords,
	}
}

// LexicalResult is a single BM25 hit.
type LexicalResult struct {
	// PatternID identifies the matched pattern.
	PatternID string
	// Score is the raw BM25 score (unbounded, higher is better).
	Score float64
	// Rank is 1-based within the result list.
	Rank int
	// MatchedTerms are the query terms found in the document.
	MatchedTerms []string
}

// VectorConfig tunes the semantic channel.
type VectorConfig struct {
	// Dimensions is the embedding size; all vectors must match.
	Dimensions int
	// Metric is "cos" or "l2". Defaults to cosine.
	Metric string
	// M is the HNSW graph connectivity parameter.
	M int
	// EfSearch is the HNSW search beam width.
	EfSearch int
}

// VectorResult is a single nearest-neighbor hit.
type VectorResult struct {
	PatternID string
	// Score is a bounded similarity in [0, 1], higher is better.
	Score float64
	// Rank is 1-based within the result list.
	Rank int
}

// ErrDimensionMismatch reports a vector whose size doesn't match the index.
type ErrDimensionMismatch struct {
	Expected int
	Got      int
}

func (e ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("vector dimension mismatch: expected %d, got %d", e.Expected, e.Got)
}
