package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/periodiq/periodiq/internal/apperr"
	"github.com/periodiq/periodiq/internal/httputil"
	"github.com/periodiq/periodiq/internal/models"
)

// handleListSubmissions is the read model over Submission (spec §6
// EXPANSION): GET /api/v1/submissions, optionally filtered by tracking
// id and/or state.
func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var trackingID *uuid.UUID
	if raw := q.Get("tracking_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeAppErr(w, apperr.ValidationError("invalid tracking_id"))
			return
		}
		trackingID = &id
	}

	state := models.SubmissionState(q.Get("state"))

	submissions, err := s.submissions.List(trackingID, state)
	if err != nil {
		writeAppErr(w, apperr.Internal(err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, submissions)
}
