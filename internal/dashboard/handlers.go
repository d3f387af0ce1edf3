package dashboard

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/adanbank/signal-sentinel/internal/audit"
	"github.com/adanbank/signal-sentinel/internal/enrich"
	"github.com/adanbank/signal-sentinel/internal/store"
	"github.com/adanbank/signal-sentinel/internal/websocket"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, s.webFile)
}

func (s *Server) handleSignals(w http.ResponseWriter, r *http.Request) {
	signals, err := store.ReadAs[enrich.ReviewSignal](s.review)
	if err != nil {
		s.logger.Error("failed to read review queue", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to read signals")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"signals": signals,
		"count":   len(signals),
	})
}

type resolveRequest struct {
	SyntheticID string `json:"synthetic_id"`
	Action      string `json:"action"`
}

func (s *Server) handleResolveSignal(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Action != audit.ActionApprove && req.Action != audit.ActionDecline {
		writeError(w, http.StatusBadRequest, "action must be approve or decline")
		return
	}
	if req.SyntheticID == "" {
		writeError(w, http.StatusBadRequest, "synthetic_id is required")
		return
	}

	signals, err := store.ReadAs[enrich.ReviewSignal](s.review)
	if err != nil {
		s.logger.Error("failed to read review queue", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to read signals")
		return
	}

	idx := -1
	for i, sig := range signals {
		if sig.SyntheticID == req.SyntheticID {
			idx = i
			break
		}
	}
	if idx < 0 {
		writeError(w, http.StatusNotFound, "signal not found")
		return
	}

	resolved := signals[idx]
	remaining := append(signals[:idx:idx], signals[idx+1:]...)
	if err := s.review.Replace(remaining); err != nil {
		s.logger.Error("failed to rewrite review queue", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to update signals")
		return
	}

	entry := audit.NewEntry(req.SyntheticID, req.Action)
	if err := s.auditLog.Record(r.Context(), entry); err != nil {
		s.logger.Error("failed to record audit entry", zap.Error(err))
	}

	if s.archive != nil {
		if err := s.archive.InsertResolved(r.Context(), resolved, entry); err != nil {
			// Archiving must never block resolution.
			s.logger.Error("failed to archive resolved signal", zap.Error(err))
		}
	}

	if s.hub != nil {
		s.hub.Broadcast(websocket.NewEvent(websocket.EventSignalResolved, map[string]any{
			"synthetic_id": req.SyntheticID,
			"action":       req.Action,
			"remaining":    len(remaining),
		}))
	}

	s.logger.Info("signal resolved",
		zap.String("synthetic_id", req.SyntheticID),
		zap.String("action", req.Action))

	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "resolved",
		"synthetic_id": req.SyntheticID,
		"action":       req.Action,
	})
}

func (s *Server) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := s.auditLog.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list audit entries", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to read audit log")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
