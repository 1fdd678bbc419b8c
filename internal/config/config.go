// Package config handles loading retrieval engine configuration from
// YAML files and environment variables.
//
// Precedence (lowest to highest):
//  1. Built-in defaults
//  2. Config file (component-forge.yaml / .yml in the working directory,
//     or the path given explicitly)
//  3. Environment variables (FORGE_*)
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for the retrieval engine.
type Config struct {
	Version int `yaml:"version" json:"version"`

	Corpus     CorpusConfig     `yaml:"corpus" json:"corpus"`
	Retrieval  RetrievalConfig  `yaml:"retrieval" json:"retrieval"`
	Embeddings EmbeddingsConfig `yaml:"embeddings" json:"embeddings"`
	Server     ServerConfig     `yaml:"server" json:"server"`
	Telemetry  TelemetryConfig  `yaml:"telemetry" json:"telemetry"`
}

// CorpusConfig configures the pattern library source.
type CorpusConfig struct {
	// Path is the pattern library file or directory of JSON files.
	Path string `yaml:"path" json:"path"`
	// Watch enables hot reload when the library file changes on disk.
	Watch bool `yaml:"watch" json:"watch"`
	// WatchDebounce coalesces bursts of file events (default: 500ms).
	WatchDebounce string `yaml:"watch_debounce" json:"watch_debounce"`
	// ExtractProps enables tree-sitter prop extraction from pattern code.
	ExtractProps bool `yaml:"extract_props" json:"extract_props"`
}

// RetrievalConfig configures the hybrid search pipeline.
type RetrievalConfig struct {
	// LexicalWeight is the BM25 channel weight in fusion (default: 0.3).
	LexicalWeight float64 `yaml:"lexical_weight" json:"lexical_weight"`
	// SemanticWeight is the vector channel weight in fusion (default: 0.7).
	SemanticWeight float64 `yaml:"semantic_weight" json:"semantic_weight"`
	// CandidateWidth is how many candidates each channel returns before
	// fusion (default: 10). Must be >= the largest top_k callers request.
	CandidateWidth int `yaml:"candidate_width" json:"candidate_width"`
	// DefaultTopK is the result count when a request doesn't specify one.
	DefaultTopK int `yaml:"default_top_k" json:"default_top_k"`
	// SemanticTimeout bounds a single semantic channel call (default: 3s).
	SemanticTimeout string `yaml:"semantic_timeout" json:"semantic_timeout"`
	// SemanticRetries is how many times a failed semantic call is retried
	// before the engine degrades to lexical-only (default: 2).
	SemanticRetries int `yaml:"semantic_retries" json:"semantic_retries"`
}

// EmbeddingsConfig configures the embedding provider for the semantic channel.
type EmbeddingsConfig struct {
	// Provider selects the embedder: "ollama", "static", or "" to disable
	// the semantic channel entirely (lexical-only mode).
	Provider string `yaml:"provider" json:"provider"`
	// Model is the embedding model name (default: nomic-embed-text).
	Model string `yaml:"model" json:"model"`
	// Dimensions is the embedding vector size; 0 auto-detects.
	Dimensions int `yaml:"dimensions" json:"dimensions"`
	// OllamaHost overrides the Ollama endpoint (default: http://localhost:11434).
	OllamaHost string `yaml:"ollama_host" json:"ollama_host"`
	// BatchSize is texts per embedding request (default: 32).
	BatchSize int `yaml:"batch_size" json:"batch_size"`
	// CacheSize is the LRU embedding cache capacity (default: 1000).
	CacheSize int `yaml:"cache_size" json:"cache_size"`
	// Timeout bounds a single embedding request (default: 10s).
	Timeout string `yaml:"timeout" json:"timeout"`
}

// ServerConfig configures the HTTP API and MCP server.
type ServerConfig struct {
	// Addr is the HTTP listen address (default: :8765).
	Addr string `yaml:"addr" json:"addr"`
	// Transport is the MCP transport: "stdio" is the only supported value.
	Transport string `yaml:"transport" json:"transport"`
	LogLevel  string `yaml:"log_level" json:"log_level"`
	LogFile   string `yaml:"log_file" json:"log_file"`
}

// TelemetryConfig configures query metrics collection.
type TelemetryConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	// BufferSize is the in-memory query history capacity (default: 1000).
	BufferSize int `yaml:"buffer_size" json:"buffer_size"`
	// DBPath persists query metrics to SQLite when non-empty.
	DBPath string `yaml:"db_path" json:"db_path"`
}

// NewConfig creates a Config with defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Corpus: CorpusConfig{
			Path:          "data/patterns.json",
			Watch:         false,
			WatchDebounce: "500ms",
			ExtractProps:  true,
		},
		Retrieval: RetrievalConfig{
			// Lexical matches on exact terms are precise but narrow;
			// the semantic channel carries most of the ranking signal.
			LexicalWeight:   0.3,
			SemanticWeight:  0.7,
			CandidateWidth:  10,
			DefaultTopK:     3,
			SemanticTimeout: "3s",
			SemanticRetries: 2,
		},
		Embeddings: EmbeddingsConfig{
			Provider:   "", // Empty disables the semantic channel
			Model:      "nomic-embed-text",
			Dimensions: 0,
			OllamaHost: "",
			BatchSize:  32,
			CacheSize:  1000,
			Timeout:    "10s",
		},
		Server: ServerConfig{
			Addr:      ":8765",
			Transport: "stdio",
			LogLevel:  "info",
		},
		Telemetry: TelemetryConfig{
			Enabled:    true,
			BufferSize: 1000,
		},
	}
}

// Load reads configuration from dir, falling back to defaults for anything
// the file doesn't set, then applies environment overrides and validates.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadFile reads configuration from an explicit file path.
func LoadFile(path string) (*Config, error) {
	cfg := NewConfig()

	if err := cfg.loadYAML(path); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFromFile tries component-forge.yaml then .yml in dir. A missing
// config file is fine; defaults apply.
func (c *Config) loadFromFile(dir string) error {
	yamlPath := filepath.Join(dir, "component-forge.yaml")
	if _, err := os.Stat(yamlPath); err == nil {
		return c.loadYAML(yamlPath)
	}

	ymlPath := filepath.Join(dir, "component-forge.yml")
	if _, err := os.Stat(ymlPath); err == nil {
		return c.loadYAML(ymlPath)
	}

	return nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if other.Corpus.Path != "" {
		c.Corpus.Path = other.Corpus.Path
	}
	if other.Corpus.Watch {
		c.Corpus.Watch = true
	}
	if other.Corpus.WatchDebounce != "" {
		c.Corpus.WatchDebounce = other.Corpus.WatchDebounce
	}

	if other.Retrieval.LexicalWeight != 0 {
		c.Retrieval.LexicalWeight = other.Retrieval.LexicalWeight
	}
	if other.Retrieval.SemanticWeight != 0 {
		c.Retrieval.SemanticWeight = other.Retrieval.SemanticWeight
	}
	if other.Retrieval.CandidateWidth != 0 {
		c.Retrieval.CandidateWidth = other.Retrieval.CandidateWidth
	}
	if other.Retrieval.DefaultTopK != 0 {
		c.Retrieval.DefaultTopK = other.Retrieval.DefaultTopK
	}
	if other.Retrieval.SemanticTimeout != "" {
		c.Retrieval.SemanticTimeout = other.Retrieval.SemanticTimeout
	}
	if other.Retrieval.SemanticRetries != 0 {
		c.Retrieval.SemanticRetries = other.Retrieval.SemanticRetries
	}

	if other.Embeddings.Provider != "" {
		c.Embeddings.Provider = other.Embeddings.Provider
	}
	if other.Embeddings.Model != "" {
		c.Embeddings.Model = other.Embeddings.Model
	}
	if other.Embeddings.Dimensions != 0 {
		c.Embeddings.Dimensions = other.Embeddings.Dimensions
	}
	if other.Embeddings.OllamaHost != "" {
		c.Embeddings.OllamaHost = other.Embeddings.OllamaHost
	}
	if other.Embeddings.BatchSize != 0 {
		c.Embeddings.BatchSize = other.Embeddings.BatchSize
	}
	if other.Embeddings.CacheSize != 0 {
		c.Embeddings.CacheSize = other.Embeddings.CacheSize
	}
	if other.Embeddings.Timeout != "" {
		c.Embeddings.Timeout = other.Embeddings.Timeout
	}

	if other.Server.Addr != "" {
		c.Server.Addr = other.Server.Addr
	}
	if other.Server.Transport != "" {
		c.Server.Transport = other.Server.Transport
	}
	if other.Server.LogLevel != "" {
		c.Server.LogLevel = other.Server.LogLevel
	}
	if other.Server.LogFile != "" {
		c.Server.LogFile = other.Server.LogFile
	}

	if other.Telemetry.BufferSize != 0 {
		c.Telemetry.BufferSize = other.Telemetry.BufferSize
	}
	if other.Telemetry.DBPath != "" {
		c.Telemetry.DBPath = other.Telemetry.DBPath
	}
}

// applyEnvOverrides applies FORGE_* environment variables. Env vars win
// over file values so deployments can tune weights without editing YAML.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("FORGE_CORPUS_PATH"); v != "" {
		c.Corpus.Path = v
	}
	if v := os.Getenv("FORGE_LEXICAL_WEIGHT"); v != "" {
		if w, err := parseFloat64(v); err == nil && w >= 0 && w <= 1 {
			c.Retrieval.LexicalWeight = w
		}
	}
	if v := os.Getenv("FORGE_SEMANTIC_WEIGHT"); v != "" {
		if w, err := parseFloat64(v); err == nil && w >= 0 && w <= 1 {
			c.Retrieval.SemanticWeight = w
		}
	}
	if v := os.Getenv("FORGE_CANDIDATE_WIDTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Retrieval.CandidateWidth = n
		}
	}
	if v := os.Getenv("FORGE_EMBEDDINGS_PROVIDER"); v != "" {
		c.Embeddings.Provider = v
	}
	if v := os.Getenv("FORGE_EMBEDDINGS_MODEL"); v != "" {
		c.Embeddings.Model = v
	}
	if v := os.Getenv("FORGE_OLLAMA_HOST"); v != "" {
		c.Embeddings.OllamaHost = v
	}
	if v := os.Getenv("FORGE_SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("FORGE_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
	if v := os.Getenv("FORGE_TELEMETRY_DB"); v != "" {
		c.Telemetry.DBPath = v
	}
}

func parseFloat64(s string) (float64, error) {
	var f float64
	_, err := fmt.Sscanf(strings.TrimSpace(s), "%f", &f)
	return f, err
}

// Validate checks the final configuration for consistency.
func (c *Config) Validate() error {
	if c.Retrieval.LexicalWeight < 0 || c.Retrieval.LexicalWeight > 1 {
		return fmt.Errorf("lexical_weight must be between 0 and 1, got %f", c.Retrieval.LexicalWeight)
	}
	if c.Retrieval.SemanticWeight < 0 || c.Retrieval.SemanticWeight > 1 {
		return fmt.Errorf("semantic_weight must be between 0 and 1, got %f", c.Retrieval.SemanticWeight)
	}

	sum := c.Retrieval.LexicalWeight + c.Retrieval.SemanticWeight
	if math.Abs(sum-1.0) > 0.01 {
		return fmt.Errorf("lexical_weight + semantic_weight must equal 1.0, got %.2f", sum)
	}

	if c.Retrieval.CandidateWidth <= 0 {
		return fmt.Errorf("candidate_width must be positive, got %d", c.Retrieval.CandidateWidth)
	}
	if c.Retrieval.DefaultTopK < 0 {
		return fmt.Errorf("default_top_k must be non-negative, got %d", c.Retrieval.DefaultTopK)
	}
	if c.Retrieval.DefaultTopK > c.Retrieval.CandidateWidth {
		return fmt.Errorf("default_top_k (%d) cannot exceed candidate_width (%d)",
			c.Retrieval.DefaultTopK, c.Retrieval.CandidateWidth)
	}

	if _, err := time.ParseDuration(c.Embeddings.Timeout); err != nil {
		return fmt.Errorf("embeddings.timeout is not a valid duration: %w", err)
	}
	if _, err := time.ParseDuration(c.Retrieval.SemanticTimeout); err != nil {
		return fmt.Errorf("semantic_timeout is not a valid duration: %w", err)
	}
	if c.Corpus.WatchDebounce != "" {
		if _, err := time.ParseDuration(c.Corpus.WatchDebounce); err != nil {
			return fmt.Errorf("watch_debounce is not a valid duration: %w", err)
		}
	}

	if c.Embeddings.Provider != "" {
		validProviders := map[string]bool{"ollama": true, "static": true}
		if !validProviders[strings.ToLower(c.Embeddings.Provider)] {
			return fmt.Errorf("embeddings.provider must be 'ollama', 'static', or empty (disabled), got %s", c.Embeddings.Provider)
		}
	}

	if strings.ToLower(c.Server.Transport) != "stdio" {
		return fmt.Errorf("server.transport must be 'stdio', got %s", c.Server.Transport)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Server.LogLevel)] {
		return fmt.Errorf("server.log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.Server.LogLevel)
	}

	return nil
}

// EmbeddingTimeoutDuration returns the parsed embedding request timeout.
func (c *Config) EmbeddingTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Embeddings.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// SemanticTimeoutDuration returns the parsed semantic channel timeout.
func (c *Config) SemanticTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Retrieval.SemanticTimeout)
	if err != nil {
		return 3 * time.Second
	}
	return d
}

// WatchDebounceDuration returns the parsed watch debounce interval.
func (c *Config) WatchDebounceDuration() time.Duration {
	d, err := time.ParseDuration(c.Corpus.WatchDebounce)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
