package retrieval

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kchia/component-forge/internal/corpus"
	"github.com/kchia/component-forge/internal/embed"
	forgeerrors "github.com/kchia/component-forge/internal/errors"
	"github.com/kchia/component-forge/internal/index"
	"github.com/kchia/component-forge/internal/telemetry"
)

// Config tunes the retrieval service.
type Config struct {
	// Weights are the fusion weights when both channels run.
	Weights Weights
	// CandidateWidth is how many candidates each channel returns before
	// fusion. Clamped up to top_k per request.
	CandidateWidth int
	// DefaultTopK applies when a caller requests zero results explicitly
	// at the API layer; the service itself takes top_k literally.
	DefaultTopK int
	// BM25 tunes the lexical index.
	BM25 index.BM25Config
	// SemanticTimeout bounds one semantic channel invocation.
	SemanticTimeout time.Duration
	// SemanticRetries is how many times a failed embed call is retried
	// before the request degrades. Zero disables retries; negative keeps
	// the built-in policy.
	SemanticRetries int
}

// DefaultServiceConfig returns the standard retrieval configuration.
func DefaultServiceConfig() Config {
	return Config{
		Weights:         DefaultWeights(),
		CandidateWidth:  10,
		DefaultTopK:     3,
		BM25:            index.DefaultBM25Config(),
		SemanticTimeout: 3 * time.Second,
		SemanticRetries: 2,
	}
}

// snapshot pairs one immutable library with the indexes built over it.
// Swapped atomically on reload so in-flight requests keep a consistent
// view.
type snapshot struct {
	lib     *corpus.Library
	lexical *index.LexicalIndex
	vector  *index.VectorIndex
}

// Service is the retrieval orchestrator: it validates the requirement,
// builds queries, fans out to both channels, fuses, explains, and
// assembles the response with its metadata.
type Service struct {
	cfg       Config
	embedder  embed.Embedder
	semantic  *SemanticRetriever
	fusion    *ScoreFusion
	explainer *Explainer
	metrics   *telemetry.Collector

	snap atomic.Pointer[snapshot]
}

// NewService builds the service over the given library. The lexical index
// is mandatory: a build failure is fatal, since serving with a broken
// index would silently return garbage. The vector index is best-effort;
// failure to build it just disables the semantic channel.
func NewService(ctx context.Context, lib *corpus.Library, embedder embed.Embedder, cfg Config, metrics *telemetry.Collector) (*Service, error) {
	if cfg.CandidateWidth <= 0 {
		cfg.CandidateWidth = 10
	}
	if cfg.Weights.Lexical == 0 && cfg.Weights.Semantic == 0 {
		cfg.Weights = DefaultWeights()
	}

	s := &Service{
		cfg:       cfg,
		embedder:  embedder,
		semantic:  NewSemanticRetriever(embedder, cfg.SemanticTimeout, cfg.SemanticRetries),
		fusion:    NewScoreFusion(cfg.Weights),
		explainer: NewExplainer(),
		metrics:   metrics,
	}

	snap, err := s.buildSnapshot(ctx, lib)
	if err != nil {
		return nil, err
	}
	s.snap.Store(snap)

	return s, nil
}

// buildSnapshot constructs the indexes for one library snapshot.
func (s *Service) buildSnapshot(ctx context.Context, lib *corpus.Library) (*snapshot, error) {
	lexical, err := index.BuildLexicalIndex(ctx, lib, s.cfg.BM25)
	if err != nil {
		return nil, err
	}

	snap := &snapshot{lib: lib, lexical: lexical}

	if s.embedder != nil && lib.Len() > 0 {
		vector, err := s.buildVectorIndex(ctx, lib)
		if err != nil {
			slog.Warn("vector index build failed, semantic channel disabled for this snapshot",
				"error", err, "patterns", lib.Len())
		} else {
			snap.vector = vector
		}
	}

	return snap, nil
}

// buildVectorIndex embeds every pattern document and loads the HNSW graph.
func (s *Service) buildVectorIndex(ctx context.Context, lib *corpus.Library) (*index.VectorIndex, error) {
	patterns := lib.Patterns()
	ids := make([]string, len(patterns))
	docs := make([]string, len(patterns))
	for i := range patterns {
		ids[i] = patterns[i].ID
		docs[i] = patterns[i].Document()
	}

	vectors, err := s.embedder.EmbedBatch(ctx, docs)
	if err != nil {
		return nil, err
	}

	vector, err := index.NewVectorIndex(index.VectorConfig{
		Dimensions: s.embedder.Dimensions(),
	})
	if err != nil {
		return nil, err
	}
	if err := vector.Add(ctx, ids, vectors); err != nil {
		return nil, err
	}

	return vector, nil
}

// Reload rebuilds indexes over a new library snapshot and swaps it in.
// Called from the corpus store's reload hook; requests in flight keep
// using the previous snapshot until the swap. Old indexes are left to the
// collector rather than closed, since in-flight searches may still hold
// them.
func (s *Service) Reload(ctx context.Context, lib *corpus.Library) error {
	snap, err := s.buildSnapshot(ctx, lib)
	if err != nil {
		return err
	}

	s.snap.Store(snap)
	slog.Info("retrieval snapshot swapped",
		"patterns", lib.Len(),
		"semantic_ready", snap.vector != nil)
	return nil
}

// SemanticReady reports whether the current snapshot can serve the
// semantic channel.
func (s *Service) SemanticReady() bool {
	snap := s.snap.Load()
	return s.semantic.Available() && snap != nil && snap.vector != nil
}

// CorpusSize returns the number of patterns in the current snapshot.
func (s *Service) CorpusSize() int {
	if snap := s.snap.Load(); snap != nil {
		return snap.lib.Len()
	}
	return 0
}

// Search runs the full pipeline for one requirement and returns at most
// topK explained results. Semantic channel failures degrade the request
// to lexical-only; they never surface as errors.
func (s *Service) Search(ctx context.Context, req *Requirement, topK int) (*Response, error) {
	start := time.Now()

	query, err := BuildQuery(req)
	if err != nil {
		return nil, err
	}

	snap := s.snap.Load()
	total := snap.lib.Len()

	if topK <= 0 || total == 0 {
		return s.assemble(nil, req, query, snap, false, total, start), nil
	}

	width := s.cfg.CandidateWidth
	if width < topK {
		width = topK
	}

	var (
		lexResults []*index.LexicalResult
		semResults []*index.VectorResult
		semErr     error
	)

	semanticWired := s.semantic.Available() && snap.vector != nil

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		lexResults, err = snap.lexical.Search(gctx, query.Lexical, width)
		return err
	})
	if semanticWired {
		g.Go(func() error {
			// Absorbed: a semantic failure degrades, never aborts.
			semResults, semErr = s.semantic.Search(gctx, snap.vector, snap.lib, query.Semantic, width, query.Filters)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	semanticUsed := semanticWired && semErr == nil
	if semErr != nil {
		slog.Warn("semantic channel degraded to lexical-only",
			"error", semErr,
			"code", forgeerrors.GetCode(semErr))
	}

	var fused []*FusedResult
	if semanticUsed {
		fused = s.fusion.Fuse(lexResults, semResults, topK)
	} else {
		fused = s.fusion.FuseLexicalOnly(lexResults, topK)
	}

	return s.assemble(fused, req, query, snap, semanticUsed, total, start), nil
}

// assemble explains each fused result and attaches response metadata.
func (s *Service) assemble(fused []*FusedResult, req *Requirement, query Query, snap *snapshot, semanticUsed bool, total int, start time.Time) *Response {
	patterns := make([]ExplainedResult, 0, len(fused))

	for _, f := range fused {
		pattern, ok := snap.lib.Get(f.PatternID)
		if !ok {
			// Index and library drifted; skip rather than panic.
			slog.Error("fused result references unknown pattern", "pattern_id", f.PatternID)
			continue
		}
		patterns = append(patterns, s.explainOne(f, pattern, req))
	}

	weights := LexicalOnlyWeights()
	methods := []string{"lexical"}
	if semanticUsed {
		weights = s.cfg.Weights
		methods = []string{"lexical", "semantic"}
	}

	latency := time.Since(start)
	resp := &Response{
		Patterns: patterns,
		Metadata: Metadata{
			Latency:               latency,
			LatencyMS:             float64(latency.Microseconds()) / 1000.0,
			MethodsUsed:           methods,
			Weights:               weights,
			TotalPatternsSearched: total,
			Query:                 query.Semantic,
		},
	}

	method := telemetry.MethodLexical
	if semanticUsed {
		method = telemetry.MethodHybrid
	}
	s.metrics.Record(telemetry.QueryEvent{
		Query:         query.Lexical,
		ComponentType: req.ComponentType,
		Method:        method,
		ResultCount:   len(patterns),
		Latency:       latency,
		Timestamp:     time.Now(),
	})

	return resp
}

// explainOne attaches confidence, highlights, and the explanation to one
// fused result, degrading to a generic sentence when the pattern's
// metadata cannot be read.
func (s *Service) explainOne(f *FusedResult, pattern *corpus.Pattern, req *Requirement) ExplainedResult {
	highlights, explanation, err := s.explainer.Explain(f, pattern, req)
	if err != nil {
		slog.Warn("explanation degraded to generic template",
			"pattern_id", pattern.ID,
			"code", forgeerrors.GetCode(err),
			"error", err)
		highlights = MatchHighlights{
			MatchedProps:    []string{},
			MatchedVariants: []string{},
			MatchedA11y:     []string{},
		}
		explanation = s.explainer.GenericExplanation(f, pattern)
	}

	var semRank *int
	if f.SemanticRank > 0 {
		rank := f.SemanticRank
		semRank = &rank
	}

	return ExplainedResult{
		Pattern:     pattern,
		Confidence:  s.explainer.Confidence(f),
		Explanation: explanation,
		Highlights:  highlights,
		Ranking: RankingDetails{
			LexicalScore:  f.LexicalScore,
			LexicalRank:   f.LexicalRank,
			SemanticScore: f.SemanticScore,
			SemanticRank:  semRank,
			FinalScore:    f.FinalScore,
			FinalRank:     f.FinalRank,
		},
	}
}
