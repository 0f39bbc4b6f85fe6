package httpapi

import (
	"net/http"

	"github.com/Neur0toxine/atranscoder-rpc/internal/logging"
)

// jsonErrors wraps the handler chain so that every failure mode the boundary
// can produce -- a panic, an unmatched route, a disallowed method -- renders
// the same {"error": "..."} body the handlers use, instead of chi/net/http's
// plain-text defaults. A client parsing every response as JSON should never
// have to special-case a transport-level failure.
func jsonErrors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logging.WithComponentFromContext(r.Context(), "httpapi").
					Error().
					Str(logging.FieldEvent, "request.panic").
					Interface("panic", rec).
					Msg("recovered from panic")
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "not found")
}

func methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
