package api

import (
	"net/http"

	"github.com/periodiq/periodiq/internal/apperr"
	"github.com/periodiq/periodiq/internal/httputil"
)

// handleListLibrary is the read model over LibraryEntry (spec §6
// EXPANSION): GET /api/v1/library, optionally filtered by
// title/category/language.
func (s *Server) handleListLibrary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries, err := s.libraryEntries.List(q.Get("title"), q.Get("category"), q.Get("language"))
	if err != nil {
		writeAppErr(w, apperr.Internal(err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}
