package api

import (
	"net/http"

	"github.com/periodiq/periodiq/internal/apperr"
	"github.com/periodiq/periodiq/internal/httputil"
	"github.com/periodiq/periodiq/internal/importpipeline"
)

type manualImportRequest struct {
	FilePath     string `json:"file_path"`
	SkipOrganize bool   `json:"skip_organize"`
	TrackingMode string `json:"tracking_mode"`
}

// handleManualImport is the directory-scan entry point into the Import
// Pipeline outside of the Monitor's hand-off (spec §6 EXPANSION, §4.6):
// POST /api/v1/import with no associated Submission.
func (s *Server) handleManualImport(w http.ResponseWriter, r *http.Request) {
	var req manualImportRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		writeAppErr(w, apperr.ValidationError("invalid request body"))
		return
	}
	if req.FilePath == "" {
		writeAppErr(w, apperr.ValidationError("file_path is required"))
		return
	}

	mode := importpipeline.TrackingWatch
	if req.TrackingMode != "" {
		mode = importpipeline.TrackingMode(req.TrackingMode)
	}

	outcome, err := s.pipeline.Import(r.Context(), req.FilePath, nil, importpipeline.Options{
		SkipOrganize: req.SkipOrganize,
		TrackingMode: mode,
	})
	if err != nil {
		writeAppErr(w, apperr.Internal(err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"outcome": string(outcome)})
}
