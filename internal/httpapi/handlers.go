// ABOUTME: Route handlers for blocks, connections, analysis and admin endpoints
// ABOUTME: Response shapes follow the canvas frontend contract; vectors are never returned
package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/harper/semantic-canvas/internal/logging"
	"github.com/harper/semantic-canvas/internal/models"
)

func (s *Server) badRequest(w http.ResponseWriter, err error) {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		writeJSON(w, http.StatusBadRequest, errorBody("Validation failed", codeValidation, reqErr.details))
		return
	}
	writeJSON(w, http.StatusBadRequest, errorBody(err.Error(), codeValidation, nil))
}

func (s *Server) listBlocks(w http.ResponseWriter, r *http.Request) {
	blocks, err := s.svc.ListBlocks()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"blocks": blocks})
}

func (s *Server) getBlock(w http.ResponseWriter, r *http.Request) {
	block, err := s.svc.GetBlock(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"block": block})
}

func (s *Server) createBlock(w http.ResponseWriter, r *http.Request) {
	var req createBlockRequest
	if err := decode(w, r, &req); err != nil {
		s.badRequest(w, err)
		return
	}

	result, err := s.svc.CreateBlock(r.Context(), req.block())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	logging.AddToEvent(r.Context(),
		slog.String("block_id", result.Block.ID),
		slog.Int("suggestions", len(result.Suggestions)))
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) updateBlock(w http.ResponseWriter, r *http.Request) {
	var req updateBlockRequest
	if err := decode(w, r, &req); err != nil {
		s.badRequest(w, err)
		return
	}

	id := r.PathValue("id")
	result, err := s.svc.UpdateBlock(r.Context(), id, req.patch())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	logging.AddToEvent(r.Context(), slog.String("block_id", id))
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) deleteBlock(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.svc.DeleteBlock(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": id})
}

func (s *Server) listConnections(w http.ResponseWriter, r *http.Request) {
	var (
		conns []models.Connection
		err   error
	)
	if blockID := r.URL.Query().Get("block_id"); blockID != "" {
		conns, err = s.svc.ListConnectionsByBlock(blockID)
	} else {
		conns, err = s.svc.ListConnections()
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"connections": conns})
}

func (s *Server) getConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := s.svc.GetConnection(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"connection": conn})
}

func (s *Server) createConnection(w http.ResponseWriter, r *http.Request) {
	var req createConnectionRequest
	if err := decode(w, r, &req); err != nil {
		s.badRequest(w, err)
		return
	}

	conn, err := s.svc.CreateConnection(models.Connection{
		ID:        req.ID,
		FromBlock: req.FromBlock,
		ToBlock:   req.ToBlock,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"connection": conn})
}

func (s *Server) deleteConnection(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.svc.DeleteConnection(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": id})
}

func (s *Server) analyzeCanvas(w http.ResponseWriter, r *http.Request) {
	analysis, err := s.svc.AnalyzeCanvas(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	logging.AddToEvent(r.Context(),
		slog.Int("relationships", analysis.Relationships),
		slog.Int("suggestions", len(analysis.Suggestions)))
	writeJSON(w, http.StatusOK, analysis)
}

// findSimilar reads optional limit and threshold query parameters;
// unparseable values fall back to the defaults.
func (s *Server) findSimilar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	threshold, _ := strconv.ParseFloat(q.Get("threshold"), 64)

	similar, err := s.svc.FindSimilar(r.Context(), r.PathValue("id"), limit, threshold)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"similar": similar})
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decode(w, r, &req); err != nil {
		s.badRequest(w, err)
		return
	}

	results, err := s.svc.SearchText(r.Context(), req.Query, req.Limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) autoSuggest(w http.ResponseWriter, r *http.Request) {
	suggestions, err := s.svc.AutoSuggest(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

func (s *Server) clearCache(w http.ResponseWriter, r *http.Request) {
	s.svc.ClearCache()
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   s.now().UTC(),
	})
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorBody("Route not found", codeNotFound, nil))
}
