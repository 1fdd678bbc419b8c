// Package embed generates query and pattern embeddings for the semantic
// channel. The Ollama embedder is the real provider; the static embedder
// is a deterministic hash-based fallback that needs no external service.
package embed

import (
	"context"
	"math"
	"time"
)

const (
	// DefaultBatchSize is texts per embedding request.
	DefaultBatchSize = 32

	// MaxBatchSize bounds a single request to avoid memory blowups.
	MaxBatchSize = 256

	// DefaultTimeout bounds a single embedding request.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxRetries is the retry budget per request.
	DefaultMaxRetries = 3

	// DefaultOllamaHost is the local Ollama endpoint.
	DefaultOllamaHost = "http://localhost:11434"

	// DefaultOllamaModel is the default embedding model.
	DefaultOllamaModel = "nomic-embed-text"

	// DefaultDimensions is used when dimension detection is skipped.
	DefaultDimensions = 768

	// StaticDimensions is the static embedder's fixed vector size.
	StaticDimensions = 256
)

// Embedder generates dense vectors for text.
type Embedder interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int

	// ModelName returns the model identifier.
	ModelName() string

	// Available reports whether the embedder is ready to serve.
	Available(ctx context.Context) bool

	// Close releases resources.
	Close() error
}

// OllamaConfig configures the Ollama embedder.
type OllamaConfig struct {
	Host       string
	Model      string
	Dimensions int
	BatchSize  int
	Timeout    time.Duration
	MaxRetries int

	// SkipHealthCheck skips the startup connectivity probe. Tests use this
	// with httptest servers.
	SkipHealthCheck bool
}

// ollamaEmbedRequest is the /api/embed request body. Input is a single
// string or a list of strings.
type ollamaEmbedRequest struct {
	Model string `json:"model"`
	Input any    `json:"input"`
}

// ollamaEmbedResponse is the /api/embed response body.
type ollamaEmbedResponse struct {
	Model      string      `json:"model"`
	Embeddings [][]float64 `json:"embeddings"`
}

// normalizeVector scales v to unit length, returning v. Zero vectors are
// returned unchanged.
func normalizeVector(v []float32) []float32 {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	if sumSquares == 0 {
		return v
	}
	invMagnitude := float32(1.0 / math.Sqrt(sumSquares))
	for i := range v {
		v[i] *= invMagnitude
	}
	return v
}
