package retrieval

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/kchia/component-forge/internal/corpus"
	"github.com/kchia/component-forge/internal/embed"
	forgeerrors "github.com/kchia/component-forge/internal/errors"
	"github.com/kchia/component-forge/internal/index"
)

// SemanticRetriever is the optional vector channel. It embeds the query
// sentence and searches the snapshot's HNSW index, with bounded retries
// and a circuit breaker so a dead embedding service fails fast instead of
// adding its timeout to every request.
type SemanticRetriever struct {
	embedder embed.Embedder
	breaker  *forgeerrors.CircuitBreaker
	retry    forgeerrors.RetryConfig
	timeout  time.Duration
}

// NewSemanticRetriever creates the semantic channel. A nil embedder means
// the channel is not configured; Available reports false and every search
// returns a channel error for the orchestrator to absorb. maxRetries caps
// the embed retry budget; zero disables retries and a negative value keeps
// the built-in policy.
func NewSemanticRetriever(embedder embed.Embedder, timeout time.Duration, maxRetries int) *SemanticRetriever {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	retry := forgeerrors.DefaultRetryConfig()
	if maxRetries >= 0 {
		retry.MaxRetries = maxRetries
	}
	return &SemanticRetriever{
		embedder: embedder,
		breaker:  forgeerrors.NewCircuitBreaker("semantic-channel"),
		retry:    retry,
		timeout:  timeout,
	}
}

// Available reports whether the channel has a configured embedder.
func (s *SemanticRetriever) Available() bool {
	return s != nil && s.embedder != nil
}

// Search embeds the query and returns up to width nearest patterns,
// restricted by filters when that leaves any candidates. All failures
// come back as retryable channel errors.
func (s *SemanticRetriever) Search(ctx context.Context, idx *index.VectorIndex, lib *corpus.Library, query string, width int, filters Filters) ([]*index.VectorResult, error) {
	if !s.Available() || idx == nil {
		return nil, forgeerrors.ChannelError("semantic channel is not configured", nil)
	}
	if !s.breaker.Allow() {
		return nil, forgeerrors.ChannelError("semantic channel circuit is open", forgeerrors.ErrCircuitOpen)
	}

	searchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	vector, err := forgeerrors.RetryWithResult(searchCtx, s.retry, func() ([]float32, error) {
		return s.embedder.Embed(searchCtx, query)
	})
	if err != nil {
		s.breaker.RecordFailure()
		return nil, forgeerrors.ChannelError("failed to embed query", err)
	}

	// Over-fetch so post-filtering still fills the candidate width.
	results, err := idx.Search(searchCtx, vector, width*4)
	if err != nil {
		s.breaker.RecordFailure()
		return nil, forgeerrors.ChannelError("vector search failed", err)
	}
	s.breaker.RecordSuccess()

	results = applyFilters(results, lib, filters)
	if len(results) > width {
		results = results[:width]
	}
	for i, r := range results {
		r.Rank = i + 1
	}

	return results, nil
}

// applyFilters keeps candidates whose pattern name or category matches
// the requested component type. The filter is advisory: when it would
// empty the candidate set, the unfiltered list is kept so a category
// mismatch cannot silence the channel.
func applyFilters(results []*index.VectorResult, lib *corpus.Library, filters Filters) []*index.VectorResult {
	term := strings.ToLower(strings.TrimSpace(filters.ComponentType))
	if term == "" || lib == nil {
		return results
	}

	filtered := make([]*index.VectorResult, 0, len(results))
	for _, r := range results {
		p, ok := lib.Get(r.PatternID)
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.Category), term) {
			filtered = append(filtered, r)
		}
	}

	if len(filtered) == 0 {
		slog.Debug("semantic filter matched nothing, keeping unfiltered candidates",
			"component_type", filters.ComponentType)
		return results
	}
	return filtered
}
