// Package mcp implements the Model Context Protocol server for
// component-forge. It exposes pattern retrieval as tools so AI clients
// can ground generated components in curated library patterns.
package mcp

import (
	"context"
	"errors"
	"fmt"

	forgeerrors "github.com/kchia/component-forge/internal/errors"
)

// JSON-RPC error codes used by the tools.
const (
	ErrCodeTimeout        = -32001
	ErrCodeCorpusNotReady = -32002

	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// MCPError is an MCP protocol error with code and message.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// NewInvalidParamsError creates an invalid-params error.
func NewInvalidParamsError(message string) *MCPError {
	return &MCPError{Code: ErrCodeInvalidParams, Message: message}
}

// NewMethodNotFoundError creates a method-not-found error for a tool name.
func NewMethodNotFoundError(name string) *MCPError {
	return &MCPError{Code: ErrCodeMethodNotFound, Message: fmt.Sprintf("unknown tool: %s", name)}
}

// MapError converts pipeline errors to MCP protocol errors.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var mcpErr *MCPError
	if errors.As(err, &mcpErr) {
		return mcpErr
	}

	var forgeErr *forgeerrors.ForgeError
	if errors.As(err, &forgeErr) {
		return mapForgeError(forgeErr)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request timed out."}
	case errors.Is(err, context.Canceled):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request was canceled."}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: err.Error()}
	}
}

func mapForgeError(err *forgeerrors.ForgeError) *MCPError {
	message := err.Message
	if err.Suggestion != "" {
		message = fmt.Sprintf("%s %s", message, err.Suggestion)
	}

	switch err.Code {
	case forgeerrors.ErrCodeRequirementInvalid, forgeerrors.ErrCodeInvalidInput:
		return &MCPError{Code: ErrCodeInvalidParams, Message: message}
	case forgeerrors.ErrCodeCorpusNotFound, forgeerrors.ErrCodeCorpusInvalid:
		return &MCPError{Code: ErrCodeCorpusNotReady, Message: message}
	case forgeerrors.ErrCodeNetworkTimeout:
		return &MCPError{Code: ErrCodeTimeout, Message: message}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: message}
	}
}
