package embed

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ProviderConfig selects and configures an embedding provider.
type ProviderConfig struct {
	// Provider is "ollama", "static", or "" to disable embeddings.
	Provider   string
	Host       string
	Model      string
	Dimensions int
	BatchSize  int
	CacheSize  int
	Timeout    time.Duration
}

// New builds the configured embedder wrapped in an LRU cache. Returns
// (nil, nil) when no provider is configured; callers treat that as the
// semantic channel being disabled.
func New(ctx context.Context, cfg ProviderConfig) (Embedder, error) {
	var inner Embedder

	switch strings.ToLower(cfg.Provider) {
	case "":
		return nil, nil
	case "static":
		inner = NewStaticEmbedder()
	case "ollama":
		var err error
		inner, err = NewOllamaEmbedder(ctx, OllamaConfig{
			Host:       cfg.Host,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			BatchSize:  cfg.BatchSize,
			Timeout:    cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}

	return NewCachedEmbedder(inner, cfg.CacheSize), nil
}
