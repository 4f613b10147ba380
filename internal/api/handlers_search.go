package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sydlexius/periphery/internal/search"
	"github.com/sydlexius/periphery/internal/session"
)

// handleProxySearch exposes the raw catalog search. The upstream rate-limit
// budget is forwarded verbatim in X-Ratelimit-Remaining.
func (r *Router) handleProxySearch(w http.ResponseWriter, req *http.Request) {
	band := req.URL.Query().Get("band")
	album := req.URL.Query().Get("album")
	if band == "" || album == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "band and album are required"})
		return
	}

	page, err := r.catalog.SearchReleases(req.Context(), band, album)
	if err != nil {
		r.logger.Warn("proxy search failed", "band", band, "album", album, "error", err)
		writeCatalogError(w, err)
		return
	}

	if page.RateLimitRemaining != "" {
		w.Header().Set("X-Ratelimit-Remaining", page.RateLimitRemaining)
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": page.Results})
}

func (r *Router) handleCreateSearch(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Artist string `json:"artist"`
		Album  string `json:"album"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if body.Artist == "" || body.Album == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "artist and album are required"})
		return
	}

	sess, err := r.engine.Run(req.Context(), session.SearchParams{Artist: body.Artist, Album: body.Album})
	if errors.Is(err, search.ErrNoMatches) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no releases matched the search"})
		return
	}
	if err != nil {
		r.logger.Error("search failed", "artist", body.Artist, "album", body.Album, "error", err)
		writeCatalogError(w, err)
		return
	}

	r.sessions.Put(sess)
	writeJSON(w, http.StatusCreated, sess)
}

func (r *Router) handleGetSearch(w http.ResponseWriter, req *http.Request) {
	r.withSession(w, req, false, func(sess *session.Session) error {
		writeJSON(w, http.StatusOK, sess)
		return nil
	})
}

const (
	defaultPerPage = 50
	maxPerPage     = 250
)

func (r *Router) handleListReleases(w http.ResponseWriter, req *http.Request) {
	page, perPage := paginationParams(req)

	r.withSession(w, req, false, func(sess *session.Session) error {
		scored := sess.ScoredReleases()
		total := len(scored)

		// page*perPage can overflow for absurd query values; a negative
		// start or end must clamp like any other out-of-range page.
		start := (page - 1) * perPage
		if start < 0 || start > total {
			start = total
		}
		end := start + perPage
		if end < start || end > total {
			end = total
		}

		items := scored[start:end]
		if items == nil {
			items = []session.ScoredRelease{}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"releases": items,
			"pagination": map[string]int{
				"page":     page,
				"per_page": perPage,
				"total":    total,
				"pages":    (total + perPage - 1) / perPage,
			},
		})
		return nil
	})
}

func paginationParams(req *http.Request) (page, perPage int) {
	page = 1
	perPage = defaultPerPage
	if v, err := strconv.Atoi(req.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(req.URL.Query().Get("per_page")); err == nil && v > 0 {
		perPage = min(v, maxPerPage)
	}
	return page, perPage
}
