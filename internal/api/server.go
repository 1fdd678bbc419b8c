// Package api exposes the retrieval pipeline over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	forgeerrors "github.com/kchia/component-forge/internal/errors"
	"github.com/kchia/component-forge/internal/retrieval"
)

const (
	searchPath = "/api/v1/retrieval/search"
	healthPath = "/api/v1/retrieval/health"

	// maxRequestBody bounds a search request body.
	maxRequestBody = 1 << 20
)

// Retriever is the service surface the HTTP handlers need.
type Retriever interface {
	Search(ctx context.Context, req *retrieval.Requirement, topK int) (*retrieval.Response, error)
	CorpusSize() int
	SemanticReady() bool
}

// Server wires the retrieval service behind a JSON HTTP API.
type Server struct {
	retriever   Retriever
	defaultTopK int
	httpServer  *http.Server
}

// NewServer creates the API server. defaultTopK applies when a search
// request omits top_k.
func NewServer(retriever Retriever, addr string, defaultTopK int) *Server {
	if defaultTopK <= 0 {
		defaultTopK = 3
	}
	s := &Server{
		retriever:   retriever,
		defaultTopK: defaultTopK,
	}
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Handler returns the route multiplexer. Exposed so tests can drive the
// handlers without a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(searchPath, s.handleSearch)
	mux.HandleFunc(healthPath, s.handleHealth)
	return mux
}

// ListenAndServe starts the server and blocks until the context is
// cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("api server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}

// searchRequest is the POST body for the search endpoint.
type searchRequest struct {
	Requirement retrieval.Requirement `json:"requirement"`
	TopK        *int                  `json:"top_k"`
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// healthBody is the health endpoint response.
type healthBody struct {
	Status        string `json:"status"`
	Patterns      int    `json:"patterns"`
	SemanticReady bool   `json:"semantic_ready"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed,
			forgeerrors.New(forgeerrors.ErrCodeInvalidInput, "search requires POST", nil))
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		writeError(w, http.StatusBadRequest,
			forgeerrors.New(forgeerrors.ErrCodeInvalidInput, "failed to read request body", err))
		return
	}

	var req searchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest,
			forgeerrors.New(forgeerrors.ErrCodeInvalidInput, "request body is not valid JSON", err).
				WithSuggestion("send {\"requirement\": {\"component_type\": \"Button\"}}"))
		return
	}

	topK := s.defaultTopK
	if req.TopK != nil {
		topK = *req.TopK
	}

	resp, err := s.retriever.Search(r.Context(), &req.Requirement, topK)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed,
			forgeerrors.New(forgeerrors.ErrCodeInvalidInput, "health requires GET", nil))
		return
	}

	writeJSON(w, http.StatusOK, healthBody{
		Status:        "ok",
		Patterns:      s.retriever.CorpusSize(),
		SemanticReady: s.retriever.SemanticReady(),
	})
}

// statusFor maps a pipeline error onto an HTTP status. Validation errors
// are the caller's fault; everything else that escapes the orchestrator
// is an internal failure.
func statusFor(err error) int {
	switch forgeerrors.GetCode(err) {
	case forgeerrors.ErrCodeRequirementInvalid, forgeerrors.ErrCodeInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	detail := errorDetail{
		Code:    forgeerrors.GetCode(err),
		Message: err.Error(),
	}
	var fe *forgeerrors.ForgeError
	if errors.As(err, &fe) {
		detail.Message = fe.Message
		detail.Suggestion = fe.Suggestion
	}

	if status >= http.StatusInternalServerError {
		slog.Error("api request failed", "status", status, "code", detail.Code, "error", err)
	}
	writeJSON(w, status, errorBody{Error: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
