package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sydlexius/periphery/internal/discogs"
	"github.com/sydlexius/periphery/internal/session"
	"github.com/sydlexius/periphery/internal/version"
)

func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
		"commit":  version.Commit,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encode error", http.StatusInternalServerError)
	}
}

// writeCatalogError maps catalog client failures onto HTTP statuses. The
// upstream rate-limit budget, when known, is forwarded so clients can back
// off.
func writeCatalogError(w http.ResponseWriter, err error) {
	var unavailable *discogs.ErrUnavailable
	var notFound *discogs.ErrNotFound
	var authRequired *discogs.ErrAuthRequired

	switch {
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found in catalog"})
	case errors.As(err, &authRequired):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "catalog authentication failed"})
	case errors.As(err, &unavailable):
		if unavailable.Remaining != "" {
			w.Header().Set("X-Ratelimit-Remaining", unavailable.Remaining)
		}
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "catalog unavailable"})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

// withSession resolves the {id} path value and runs fn against the live
// session, writing a 404 when the session is unknown.
func (r *Router) withSession(w http.ResponseWriter, req *http.Request, update bool, fn func(*session.Session) error) bool {
	id := req.PathValue("id")
	var err error
	if update {
		err = r.sessions.Update(id, fn)
	} else {
		err = r.sessions.View(id, fn)
	}
	if errors.Is(err, session.ErrSessionNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return false
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return false
	}
	return true
}
