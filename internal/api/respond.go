package api

import (
	"log"
	"net/http"

	"github.com/periodiq/periodiq/internal/apperr"
	"github.com/periodiq/periodiq/internal/httputil"
)

// writeAppErr translates an *apperr.AppError into the httputil response
// envelope, logging the cause server-side only for internal errors
// (spec §7: the real failure is never sent to the client).
func writeAppErr(w http.ResponseWriter, err *apperr.AppError) {
	if err.Cause != nil {
		log.Printf("api: %s: %v", err.Code, err.Cause)
	}
	httputil.WriteError(w, err.HTTPStatus, err.Code, err.Message)
}
