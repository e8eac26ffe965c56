package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/etnz/perfledger"
	"github.com/etnz/perfledger/renderer"
)

// maxBody bounds the request size, a decade of activities fits easily.
const maxBody = 16 << 20

// performanceRequest is the body of POST /api/performance.
type performanceRequest struct {
	Account    perfledger.AccountContext   `json:"account"`
	Activities []perfledger.ActivityRecord `json:"activities"`
	Balance    perfledger.BalanceSnapshot  `json:"balance"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handlePerformance computes one account. The result is JSON, or markdown
// with ?format=markdown.
func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	var req performanceRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	res, err := s.engine.Compute(r.Context(), req.Account, req.Activities, req.Balance)
	switch {
	case errors.Is(err, perfledger.ErrInvalidInput):
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	case err != nil:
		s.log.Error().Err(err).Str("account", req.Account.AccountID).Msg("Failed to compute performance")
		s.writeError(w, http.StatusInternalServerError, "failed to compute performance")
		return
	}

	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(renderer.RenderResult(res))); err != nil {
			s.log.Error().Err(err).Msg("Failed to write markdown response")
		}
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
