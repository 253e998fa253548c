package api

import (
	"net/http"

	"github.com/periodiq/periodiq/internal/httputil"
)

type statusResponse struct {
	Scheduler interface{} `json:"scheduler"`
	Monitor   interface{} `json:"monitor"`
}

// handleStatus is the Scheduler + Monitor counters snapshot (spec §6
// EXPANSION, §4.5, §4.8): GET /api/v1/status.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, statusResponse{
		Scheduler: s.sched.Status(),
		Monitor:   s.mon.Snapshot(),
	})
}
