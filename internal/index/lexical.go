package index

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/registry"
	"github.com/blevesearch/bleve/v2/search"
	bleveindex "github.com/blevesearch/bleve_index_api"

	"github.com/kchia/component-forge/internal/corpus"
	forgeerrors "github.com/kchia/component-forge/internal/errors"
)

const (
	// PatternTokenizerName is the custom tokenizer registered with Bleve.
	PatternTokenizerName = "pattern_tokenizer"

	// PatternStopFilterName is the custom stop word filter.
	PatternStopFilterName = "pattern_stop"

	// PatternAnalyzerName is the analyzer combining both.
	PatternAnalyzerName = "pattern_analyzer"
)

func init() {
	_ = registry.RegisterTokenizer(PatternTokenizerName, patternTokenizerConstructor)
	_ = registry.RegisterTokenFilter(PatternStopFilterName, patternStopFilterConstructor)
}

// LexicalIndex is the BM25 channel: an in-memory Bleve index over the
// assembled pattern documents. Indexes are built once per library snapshot
// and swapped wholesale on reload, so no incremental update path exists.
type LexicalIndex struct {
	mu     sync.RWMutex
	index  bleve.Index
	config BM25Config
	count  int
	closed bool
}

// bleveDocument is the indexed document shape. A single content field
// keeps BM25 length normalization over the whole assembled text.
type bleveDocument struct {
	Content string `json:"content"`
}

// NewLexicalIndex creates an empty in-memory BM25 index.
func NewLexicalIndex(config BM25Config) (*LexicalIndex, error) {
	indexMapping, err := createIndexMapping(config)
	if err != nil {
		return nil, forgeerrors.IndexError("failed to create index mapping", err)
	}

	idx, err := bleve.NewMemOnly(indexMapping)
	if err != nil {
		return nil, forgeerrors.IndexError("failed to create lexical index", err)
	}

	return &LexicalIndex{index: idx, config: config}, nil
}

// BuildLexicalIndex creates an index over every pattern in the library.
func BuildLexicalIndex(ctx context.Context, lib *corpus.Library, config BM25Config) (*LexicalIndex, error) {
	idx, err := NewLexicalIndex(config)
	if err != nil {
		return nil, err
	}
	if err := idx.IndexLibrary(ctx, lib); err != nil {
		idx.Close()
		return nil, err
	}
	return idx, nil
}

// createIndexMapping builds the Bleve mapping with BM25 scoring and the
// pattern analyzer as default. The stop filter is defined per mapping so
// the configured word list reaches both index and query analysis.
func createIndexMapping(config BM25Config) (*mapping.IndexMappingImpl, error) {
	indexMapping := bleve.NewIndexMapping()

	stopWords := config.StopWords
	if stopWords == nil {
		stopWords = DefaultStopWords
	}
	err := indexMapping.AddCustomTokenFilter(PatternStopFilterName, map[string]interface{}{
		"type":       PatternStopFilterName,
		"stop_words": stopWords,
	})
	if err != nil {
		return nil, err
	}

	err = indexMapping.AddCustomAnalyzer(PatternAnalyzerName, map[string]interface{}{
		"type":      custom.Name,
		"tokenizer": PatternTokenizerName,
		"token_filters": []string{
			lowercase.Name,
			PatternStopFilterName,
		},
	})
	if err != nil {
		return nil, err
	}

	indexMapping.DefaultAnalyzer = PatternAnalyzerName
	indexMapping.ScoringModel = bleveindex.BM25Scoring

	return indexMapping, nil
}

// IndexLibrary adds every pattern in the library to the index.
func (l *LexicalIndex) IndexLibrary(ctx context.Context, lib *corpus.Library) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return forgeerrors.IndexError("lexical index is closed", nil)
	}

	batch := l.index.NewBatch()
	for _, p := range lib.Patterns() {
		doc := bleveDocument{Content: p.Document()}
		if err := batch.Index(p.ID, doc); err != nil {
			return forgeerrors.IndexError("failed to index pattern "+p.ID, err)
		}
	}

	if err := l.index.Batch(batch); err != nil {
		return forgeerrors.IndexError("failed to execute index batch", err)
	}

	l.count = lib.Len()
	return nil
}

// Search returns up to limit patterns matching the query, scored by BM25.
// Results are ordered by score descending with ties broken by ascending
// pattern id, and ranks are 1-based. An empty query returns no results.
func (l *LexicalIndex) Search(ctx context.Context, queryStr string, limit int) ([]*LexicalResult, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return nil, forgeerrors.IndexError("lexical index is closed", nil)
	}

	if strings.TrimSpace(queryStr) == "" || limit <= 0 {
		return []*LexicalResult{}, nil
	}

	matchQuery := bleve.NewMatchQuery(queryStr)
	matchQuery.SetField("content")

	searchRequest := bleve.NewSearchRequest(matchQuery)
	searchRequest.Size = limit
	searchRequest.IncludeLocations = true

	result, err := l.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, forgeerrors.New(forgeerrors.ErrCodeSearchFailed, "lexical search failed", err)
	}

	results := make([]*LexicalResult, 0, len(result.Hits))
	for _, hit := range result.Hits {
		results = append(results, &LexicalResult{
			PatternID:    hit.ID,
			Score:        hit.Score,
			MatchedTerms: extractMatchedTerms(hit),
		})
	}

	// Bleve's ordering for equal scores is not specified; make it
	// deterministic before assigning ranks.
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].PatternID < results[j].PatternID
	})
	for i, r := range results {
		r.Rank = i + 1
	}

	return results, nil
}

// Count returns the number of indexed patterns.
func (l *LexicalIndex) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.count
}

// Close releases the underlying Bleve index.
func (l *LexicalIndex) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	return l.index.Close()
}

// extractMatchedTerms pulls the matched query terms from a hit's term
// locations on the content field.
func extractMatchedTerms(hit *search.DocumentMatch) []string {
	terms := make(map[string]struct{})
	for field, locations := range hit.Locations {
		if field == "content" {
			for term := range locations {
				terms[term] = struct{}{}
			}
		}
	}

	result := make([]string, 0, len(terms))
	for term := range terms {
		result = append(result, term)
	}
	sort.Strings(result)
	return result
}

// patternTokenizerConstructor creates the pattern tokenizer for Bleve.
func patternTokenizerConstructor(config map[string]interface{}, cache *registry.Cache) (analysis.Tokenizer, error) {
	return &blevePatternTokenizer{}, nil
}

type blevePatternTokenizer struct{}

// Tokenize implements analysis.Tokenizer using the shared identifier-aware
// tokenization rules.
func (t *blevePatternTokenizer) Tokenize(input []byte) analysis.TokenStream {
	text := string(input)
	tokens := Tokenize(text)

	result := make(analysis.TokenStream, 0, len(tokens))
	pos := 1
	offset := 0

	for _, token := range tokens {
		start := strings.Index(strings.ToLower(text[offset:]), token)
		if start == -1 {
			start = offset
		} else {
			start += offset
		}
		end := start + len(token)

		result = append(result, &analysis.Token{
			Term:     []byte(token),
			Start:    start,
			End:      end,
			Position: pos,
			Type:     analysis.AlphaNumeric,
		})
		pos++
		if end <= len(text) {
			offset = end
		}
	}

	return result
}

// patternStopFilterConstructor creates the stop word filter for Bleve.
// The word list comes from the mapping's filter config; a missing list
// falls back to the defaults.
func patternStopFilterConstructor(config map[string]interface{}, cache *registry.Cache) (analysis.TokenFilter, error) {
	words := DefaultStopWords
	if config != nil {
		if configured, ok := config["stop_words"].([]string); ok {
			words = configured
		}
	}
	return &blevePatternStopFilter{
		stopWords: BuildStopWordMap(words),
	}, nil
}

type blevePatternStopFilter struct {
	stopWords map[string]struct{}
}

// Filter implements analysis.TokenFilter.
func (f *blevePatternStopFilter) Filter(input analysis.TokenStream) analysis.TokenStream {
	result := make(analysis.TokenStream, 0, len(input))
	for _, token := range input {
		term := strings.ToLower(string(token.Term))
		if _, isStop := f.stopWords[term]; !isStop {
			result = append(result, token)
		}
	}
	return result
}
