package mcp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kchia/component-forge/internal/retrieval"
	"github.com/kchia/component-forge/pkg/version"
)

// Retriever is the retrieval surface the tools need.
type Retriever interface {
	Search(ctx context.Context, req *retrieval.Requirement, topK int) (*retrieval.Response, error)
	CorpusSize() int
	SemanticReady() bool
}

// ToolInfo describes a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}

// SearchPatternsInput defines the input schema for the search_patterns tool.
type SearchPatternsInput struct {
	ComponentType string   `json:"component_type" jsonschema:"the UI component kind to retrieve patterns for, e.g. Button or Card"`
	Props         []string `json:"props,omitempty" jsonschema:"prop names the component should expose"`
	Variants      []string `json:"variants,omitempty" jsonschema:"visual variants the component should support"`
	Accessibility []string `json:"accessibility,omitempty" jsonschema:"required accessibility features, e.g. aria-label"`
	Description   string   `json:"description,omitempty" jsonschema:"free-text description of the component"`
	TopK          int      `json:"top_k,omitempty" jsonschema:"maximum number of patterns to return, default 3"`
}

// SearchPatternsOutput defines the output schema for the search_patterns tool.
type SearchPatternsOutput struct {
	Patterns []retrieval.ExplainedResult `json:"patterns" jsonschema:"ranked patterns with confidence and explanations"`
	Metadata retrieval.Metadata          `json:"retrieval_metadata" jsonschema:"how the response was produced"`
}

// RetrievalStatusInput defines the input schema for the retrieval_status tool.
type RetrievalStatusInput struct{}

// RetrievalStatusOutput defines the output schema for the retrieval_status tool.
// AI clients use SemanticReady to decide how much to trust ranking nuance:
// lexical-only mode favors exact prop and variant naming in the requirement.
type RetrievalStatusOutput struct {
	Patterns      int    `json:"patterns" jsonschema:"number of patterns in the loaded corpus"`
	SemanticReady bool   `json:"semantic_ready" jsonschema:"true when the semantic channel can serve requests"`
	Version       string `json:"version" jsonschema:"component-forge version"`
}

// Server bridges AI clients with the pattern retrieval pipeline.
type Server struct {
	mcp         *mcp.Server
	retriever   Retriever
	defaultTopK int
	logger      *slog.Logger
}

// NewServer creates the MCP server and registers its tools.
func NewServer(retriever Retriever, defaultTopK int) (*Server, error) {
	if retriever == nil {
		return nil, fmt.Errorf("retriever is required")
	}
	if defaultTopK <= 0 {
		defaultTopK = 3
	}

	s := &Server{
		retriever:   retriever,
		defaultTopK: defaultTopK,
		logger:      slog.Default(),
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    "component-forge",
			Version: version.Version,
		},
		nil,
	)

	s.registerTools()

	return s, nil
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []ToolInfo {
	return []ToolInfo{
		{
			Name:        "search_patterns",
			Description: "Retrieve the library patterns that best match a structured component requirement. Combines keyword and semantic ranking and explains why each pattern matched. Use before generating a component so the output follows an existing pattern.",
		},
		{
			Name:        "retrieval_status",
			Description: "Check corpus size and whether semantic ranking is active. Use to decide how much requirement detail to provide: lexical-only mode rewards exact prop and variant names.",
		},
	}
}

func (s *Server) registerTools() {
	for _, tool := range s.ListTools() {
		s.logger.Debug("registering tool", slog.String("name", tool.Name))
	}

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_patterns",
		Description: s.ListTools()[0].Description,
	}, s.searchPatternsHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "retrieval_status",
		Description: s.ListTools()[1].Description,
	}, s.retrievalStatusHandler)

	s.logger.Info("MCP tools registered", slog.Int("count", 2))
}

func (s *Server) searchPatternsHandler(ctx context.Context, _ *mcp.CallToolRequest, input SearchPatternsInput) (
	*mcp.CallToolResult,
	SearchPatternsOutput,
	error,
) {
	if input.ComponentType == "" {
		return nil, SearchPatternsOutput{}, NewInvalidParamsError("component_type is required")
	}

	start := time.Now()
	requestID := generateRequestID()

	topK := input.TopK
	if topK <= 0 {
		topK = s.defaultTopK
	}

	req := &retrieval.Requirement{
		ComponentType: input.ComponentType,
		Props:         input.Props,
		Variants:      input.Variants,
		Accessibility: input.Accessibility,
		Description:   input.Description,
	}

	s.logger.Info("search_patterns started",
		slog.String("request_id", requestID),
		slog.String("component_type", input.ComponentType),
		slog.Int("top_k", topK))

	resp, err := s.retriever.Search(ctx, req, topK)
	duration := time.Since(start)

	if err != nil {
		s.logger.Error("search_patterns failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return nil, SearchPatternsOutput{}, MapError(err)
	}

	s.logger.Info("search_patterns completed",
		slog.String("request_id", requestID),
		slog.Duration("duration", duration),
		slog.Int("result_count", len(resp.Patterns)))

	return nil, SearchPatternsOutput{
		Patterns: resp.Patterns,
		Metadata: resp.Metadata,
	}, nil
}

func (s *Server) retrievalStatusHandler(ctx context.Context, _ *mcp.CallToolRequest, _ RetrievalStatusInput) (
	*mcp.CallToolResult,
	RetrievalStatusOutput,
	error,
) {
	return nil, RetrievalStatusOutput{
		Patterns:      s.retriever.CorpusSize(),
		SemanticReady: s.retriever.SemanticReady(),
		Version:       version.Version,
	}, nil
}

// Serve starts the server on the given transport and blocks until the
// context is cancelled. Only stdio is supported.
func (s *Server) Serve(ctx context.Context, transport string) error {
	s.logger.Info("starting MCP server", slog.String("transport", transport))

	switch transport {
	case "stdio":
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && err != context.Canceled {
			s.logger.Error("MCP server stopped with error", slog.String("error", err.Error()))
			return err
		}
		s.logger.Info("MCP server stopped gracefully")
		return nil
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio)", transport)
	}
}

// generateRequestID creates a short unique request ID for log correlation.
func generateRequestID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
