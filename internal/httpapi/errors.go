// ABOUTME: JSON response helpers and the mapping from service errors to status codes
// ABOUTME: Error bodies use the {"error": {"message", "code", "details"}} shape
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/harper/semantic-canvas/internal/canvas"
	"github.com/harper/semantic-canvas/internal/core"
	"github.com/harper/semantic-canvas/internal/embedding"
)

const (
	codeValidation         = "VALIDATION_ERROR"
	codeBlockNotFound      = "BLOCK_NOT_FOUND"
	codeBlockExists        = "BLOCK_EXISTS"
	codeConnectionNotFound = "CONNECTION_NOT_FOUND"
	codeConnectionExists   = "CONNECTION_EXISTS"
	codeNoEmbedding        = "NO_EMBEDDING"
	codeInvalidQuery       = "INVALID_QUERY"
	codeRateLimited        = "RATE_LIMITED"
	codeEmbeddingAuth      = "EMBEDDING_AUTH"
	codeEmbeddingFailed    = "EMBEDDING_FAILED"
	codeInvalidVector      = "INVALID_VECTOR"
	codeNotFound           = "NOT_FOUND"
	codeInternal           = "INTERNAL_ERROR"
)

// FieldDetail names one rejected request field
type FieldDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errorPayload struct {
	Message string        `json:"message"`
	Code    string        `json:"code"`
	Details []FieldDetail `json:"details,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

func errorBody(message, code string, details []FieldDetail) errorResponse {
	return errorResponse{Error: errorPayload{Message: message, Code: code, Details: details}}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error to its HTTP status and error code
func statusFor(err error) (int, string, string) {
	switch {
	case errors.Is(err, canvas.ErrValidation):
		return http.StatusBadRequest, codeValidation, err.Error()
	case errors.Is(err, canvas.ErrBlockNotFound):
		return http.StatusNotFound, codeBlockNotFound, "Block not found"
	case errors.Is(err, canvas.ErrConnectionNotFound):
		return http.StatusNotFound, codeConnectionNotFound, "Connection not found"
	case errors.Is(err, canvas.ErrBlockExists):
		return http.StatusConflict, codeBlockExists, "Block already exists"
	case errors.Is(err, canvas.ErrConnectionExists):
		return http.StatusConflict, codeConnectionExists, "Connection already exists"
	case errors.Is(err, canvas.ErrNoEmbedding):
		return http.StatusBadRequest, codeNoEmbedding, "Block has no embedding"
	case errors.Is(err, embedding.ErrEmptyInput):
		return http.StatusBadRequest, codeInvalidQuery, "Query text is required"
	case errors.Is(err, embedding.ErrRateLimited):
		return http.StatusTooManyRequests, codeRateLimited, err.Error()
	case errors.Is(err, embedding.ErrAuthFailure):
		return http.StatusBadGateway, codeEmbeddingAuth, err.Error()
	case errors.Is(err, embedding.ErrProvider):
		return http.StatusBadGateway, codeEmbeddingFailed, err.Error()
	case errors.Is(err, core.ErrInvalidVector):
		return http.StatusInternalServerError, codeInvalidVector, "Stored embeddings have inconsistent dimensions"
	default:
		return http.StatusInternalServerError, codeInternal, "Internal Server Error"
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := statusFor(err)
	if status >= 500 {
		s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorBody(message, code, nil))
}
