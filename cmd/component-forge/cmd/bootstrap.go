package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kchia/component-forge/internal/config"
	"github.com/kchia/component-forge/internal/corpus"
	"github.com/kchia/component-forge/internal/embed"
	"github.com/kchia/component-forge/internal/index"
	"github.com/kchia/component-forge/internal/retrieval"
	"github.com/kchia/component-forge/internal/telemetry"
)

// app holds the wired retrieval stack shared by the serve, mcp, and
// search commands.
type app struct {
	cfg       *config.Config
	store     *corpus.Store
	embedder  embed.Embedder
	metrics   *telemetry.Collector
	metricsDB *telemetry.SQLiteStore
	service   *retrieval.Service
}

// newApp loads configuration, the pattern corpus, the embedder, and the
// retrieval service. Telemetry is wired only when withTelemetry is set:
// one-shot commands skip the flush loop and the database lock.
func newApp(ctx context.Context, configPath string, withTelemetry bool) (*app, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load(".")
	}
	if err != nil {
		return nil, err
	}

	if cfg.Corpus.Path == "" {
		return nil, fmt.Errorf("no corpus configured: set corpus.path in component-forge.yaml or FORGE_CORPUS_PATH")
	}

	store, err := corpus.NewStore(cfg.Corpus.Path)
	if err != nil {
		return nil, err
	}
	lib := store.Snapshot()
	slog.Info("corpus loaded", "path", cfg.Corpus.Path, "patterns", lib.Len())

	if cfg.Corpus.ExtractProps {
		if n := corpus.EnrichProps(ctx, lib); n > 0 {
			slog.Info("extracted props from pattern code", "patterns", n)
		}
	}

	// An embedder failure only costs the semantic channel.
	embedder, err := embed.New(ctx, embed.ProviderConfig{
		Provider:   cfg.Embeddings.Provider,
		Host:       cfg.Embeddings.OllamaHost,
		Model:      cfg.Embeddings.Model,
		Dimensions: cfg.Embeddings.Dimensions,
		BatchSize:  cfg.Embeddings.BatchSize,
		CacheSize:  cfg.Embeddings.CacheSize,
		Timeout:    cfg.EmbeddingTimeoutDuration(),
	})
	if err != nil {
		slog.Warn("embedder unavailable, running lexical-only",
			"provider", cfg.Embeddings.Provider, "error", err)
		embedder = nil
	}

	a := &app{cfg: cfg, store: store, embedder: embedder}

	if withTelemetry && cfg.Telemetry.Enabled {
		a.wireTelemetry(cfg)
	}

	svc, err := retrieval.NewService(ctx, lib, embedder, retrieval.Config{
		Weights: retrieval.Weights{
			Lexical:  cfg.Retrieval.LexicalWeight,
			Semantic: cfg.Retrieval.SemanticWeight,
		},
		CandidateWidth: cfg.Retrieval.CandidateWidth,
		DefaultTopK:    cfg.Retrieval.DefaultTopK,
		BM25: index.BM25Config{
			StopWords: index.DefaultStopWords,
		},
		SemanticTimeout: cfg.SemanticTimeoutDuration(),
		SemanticRetries: cfg.Retrieval.SemanticRetries,
	}, a.metrics)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.service = svc

	store.OnReload(func(lib *corpus.Library) {
		// Reloaded libraries need the same enrichment as the initial one,
		// or uncurated patterns lose their extracted props on hot reload.
		if cfg.Corpus.ExtractProps {
			if n := corpus.EnrichProps(context.Background(), lib); n > 0 {
				slog.Info("extracted props from pattern code", "patterns", n)
			}
		}
		if err := svc.Reload(context.Background(), lib); err != nil {
			slog.Error("failed to rebuild indexes after corpus reload", "error", err)
		}
	})

	return a, nil
}

// wireTelemetry opens the metrics database and starts the collector.
// Failure to open the database degrades to in-memory metrics.
func (a *app) wireTelemetry(cfg *config.Config) {
	tcfg := telemetry.DefaultConfig()
	if cfg.Telemetry.BufferSize > 0 {
		tcfg.ZeroResultsCapacity = cfg.Telemetry.BufferSize
	}

	if cfg.Telemetry.DBPath != "" {
		db, err := telemetry.OpenSQLiteStore(cfg.Telemetry.DBPath)
		if err != nil {
			slog.Warn("telemetry database unavailable, keeping metrics in memory",
				"path", cfg.Telemetry.DBPath, "error", err)
		} else {
			a.metricsDB = db
		}
	}

	a.metrics = telemetry.NewCollector(a.metricsDB, tcfg)
}

// Close releases app resources in reverse wiring order.
func (a *app) Close() {
	if a.metrics != nil {
		if err := a.metrics.Close(); err != nil {
			slog.Warn("failed to close telemetry collector", "error", err)
		}
	}
	if a.metricsDB != nil {
		if err := a.metricsDB.Close(); err != nil {
			slog.Warn("failed to close telemetry database", "error", err)
		}
	}
	if a.embedder != nil {
		_ = a.embedder.Close()
	}
}
