package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sydlexius/periphery/internal/session"
)

// filterView is the filter payload returned after every mutation, so the
// client can redraw toggles without a second round trip.
type filterView struct {
	Filter                  *session.FilterState `json:"filter"`
	AllRolesInactive        bool                 `json:"all_roles_inactive"`
	AllContributorsInactive bool                 `json:"all_contributors_inactive"`
}

func (r *Router) writeFilter(w http.ResponseWriter, sess *session.Session) {
	writeJSON(w, http.StatusOK, filterView{
		Filter:                  sess.Filter,
		AllRolesInactive:        sess.Filter.AllRolesInactive(),
		AllContributorsInactive: sess.Filter.AllContributorsInactive(),
	})
}

func (r *Router) handleToggleContributor(w http.ResponseWriter, req *http.Request) {
	cid, err := strconv.Atoi(req.PathValue("cid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid contributor id"})
		return
	}
	r.withSession(w, req, true, func(sess *session.Session) error {
		sess.Filter.ToggleContributor(cid)
		r.writeFilter(w, sess)
		return nil
	})
}

func (r *Router) handleToggleRole(w http.ResponseWriter, req *http.Request) {
	role := req.PathValue("role")
	if role == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid role"})
		return
	}
	r.withSession(w, req, true, func(sess *session.Session) error {
		sess.Filter.ToggleRole(role)
		r.writeFilter(w, sess)
		return nil
	})
}

func (r *Router) handleResetFilters(w http.ResponseWriter, req *http.Request) {
	r.withSession(w, req, true, func(sess *session.Session) error {
		sess.Filter.ResetAll(sess.Contributors)
		r.writeFilter(w, sess)
		return nil
	})
}

func (r *Router) handleExcludeRoles(w http.ResponseWriter, req *http.Request) {
	r.withSession(w, req, true, func(sess *session.Session) error {
		sess.Filter.ExcludeAllRoles()
		r.writeFilter(w, sess)
		return nil
	})
}

func (r *Router) handleExcludeContributors(w http.ResponseWriter, req *http.Request) {
	r.withSession(w, req, true, func(sess *session.Session) error {
		sess.Filter.ExcludeAllContributors()
		r.writeFilter(w, sess)
		return nil
	})
}

// handleUpdateFilters sets the session-wide exclusion flags. Omitted fields
// are left unchanged.
func (r *Router) handleUpdateFilters(w http.ResponseWriter, req *http.Request) {
	var body struct {
		ExcludeMainArtist  *bool `json:"exclude_main_artist"`
		CollaborationsOnly *bool `json:"collaborations_only"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	r.withSession(w, req, true, func(sess *session.Session) error {
		if body.ExcludeMainArtist != nil {
			sess.Filter.ExcludeMainArtist = *body.ExcludeMainArtist
		}
		if body.CollaborationsOnly != nil {
			sess.Filter.CollaborationsOnly = *body.CollaborationsOnly
		}
		r.writeFilter(w, sess)
		return nil
	})
}
