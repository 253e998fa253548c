package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/periodiq/periodiq/internal/apperr"
	"github.com/periodiq/periodiq/internal/httputil"
	"github.com/periodiq/periodiq/internal/models"
)

func (s *Server) handleListTracking(w http.ResponseWriter, r *http.Request) {
	records, err := s.tracking.List()
	if err != nil {
		writeAppErr(w, apperr.Internal(err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, records)
}

func (s *Server) handleCreateTracking(w http.ResponseWriter, r *http.Request) {
	var t models.TrackingRecord
	if err := httputil.ReadJSON(r, &t); err != nil {
		writeAppErr(w, apperr.ValidationError("invalid request body"))
		return
	}
	if t.Title == "" {
		writeAppErr(w, apperr.ValidationError("title is required"))
		return
	}
	if err := s.tracking.Create(&t); err != nil {
		writeAppErr(w, apperr.Internal(err))
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, t)
}

func (s *Server) handleUpdateTracking(w http.ResponseWriter, r *http.Request) {
	id, err := parseTrackingID(r)
	if err != nil {
		writeAppErr(w, apperr.ValidationError("invalid tracking id"))
		return
	}
	existing, err := s.tracking.GetByID(id)
	if err != nil {
		writeAppErr(w, apperr.NotFound("tracking record"))
		return
	}
	if err := httputil.ReadJSON(r, existing); err != nil {
		writeAppErr(w, apperr.ValidationError("invalid request body"))
		return
	}
	existing.ID = id
	if err := s.tracking.Update(existing); err != nil {
		writeAppErr(w, apperr.Internal(err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, existing)
}

func (s *Server) handleDeleteTracking(w http.ResponseWriter, r *http.Request) {
	id, err := parseTrackingID(r)
	if err != nil {
		writeAppErr(w, apperr.ValidationError("invalid tracking id"))
		return
	}
	if err := s.tracking.Delete(id); err != nil {
		writeAppErr(w, apperr.Internal(err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleTrackingSearch triggers Orchestrator steps 2–5 only (spec §6
// EXPANSION): search and filter, but never submit, for a UI preview.
func (s *Server) handleTrackingSearch(w http.ResponseWriter, r *http.Request) {
	id, err := parseTrackingID(r)
	if err != nil {
		writeAppErr(w, apperr.ValidationError("invalid tracking id"))
		return
	}
	items, err := s.orch.Preview(r.Context(), id)
	if err != nil {
		writeAppErr(w, apperr.Internal(err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, items)
}

// handleTrackingDownload triggers the full Orchestrator run for a
// tracking record (spec §6 EXPANSION, §4.4).
func (s *Server) handleTrackingDownload(w http.ResponseWriter, r *http.Request) {
	id, err := parseTrackingID(r)
	if err != nil {
		writeAppErr(w, apperr.ValidationError("invalid tracking id"))
		return
	}
	result, err := s.orch.Run(r.Context(), id)
	if err != nil {
		writeAppErr(w, apperr.Internal(err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func parseTrackingID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}
