package api

import (
	"errors"
	"net/http"

	"github.com/sydlexius/periphery/internal/session"
	"github.com/sydlexius/periphery/internal/store"
)

func (r *Router) handleSaveSearch(w http.ResponseWriter, req *http.Request) {
	r.withSession(w, req, false, func(sess *session.Session) error {
		if err := r.saved.Save(req.Context(), sess); err != nil {
			r.logger.Error("saving search failed", "session_id", sess.ID, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save search"})
			return nil
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "saved", "id": sess.ID})
		return nil
	})
}

func (r *Router) handleListSaved(w http.ResponseWriter, req *http.Request) {
	items, err := r.saved.List(req.Context())
	if err != nil {
		r.logger.Error("listing saved searches failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list saved searches"})
		return
	}
	if items == nil {
		items = []store.SavedSearch{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"saved": items})
}

// handleRestoreSaved loads a snapshot and registers it as a live session,
// exactly as it was saved.
func (r *Router) handleRestoreSaved(w http.ResponseWriter, req *http.Request) {
	id := req.PathValue("id")
	sess, err := r.saved.Get(req.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "saved search not found"})
		return
	}
	if err != nil {
		r.logger.Error("restoring saved search failed", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to restore saved search"})
		return
	}

	r.sessions.Put(sess)
	writeJSON(w, http.StatusOK, sess)
}

func (r *Router) handleDeleteSaved(w http.ResponseWriter, req *http.Request) {
	id := req.PathValue("id")
	err := r.saved.Delete(req.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "saved search not found"})
		return
	}
	if err != nil {
		r.logger.Error("deleting saved search failed", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete saved search"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (r *Router) handleClearSaved(w http.ResponseWriter, req *http.Request) {
	if err := r.saved.Clear(req.Context()); err != nil {
		r.logger.Error("clearing saved searches failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to clear saved searches"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
