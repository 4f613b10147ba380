package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sydlexius/periphery/internal/database"
	"github.com/sydlexius/periphery/internal/discogs"
	"github.com/sydlexius/periphery/internal/search"
	"github.com/sydlexius/periphery/internal/session"
	"github.com/sydlexius/periphery/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestRouter wires a Router against an httptest upstream standing in for
// the catalog API. upstream may be nil for tests that never hit the catalog.
func newTestRouter(t *testing.T, upstream http.Handler) *Router {
	t.Helper()

	baseURL := "http://127.0.0.1:0"
	if upstream != nil {
		srv := httptest.NewServer(upstream)
		t.Cleanup(srv.Close)
		baseURL = srv.URL
	}

	client := discogs.NewWithBaseURL(discogs.Config{
		Token:     "test-token",
		UserAgent: "periphery-test",
		RetryMax:  0,
	}, discardLogger(), baseURL)

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return NewRouter(RouterDeps{
		Engine:   search.NewEngine(client, discardLogger(), 5),
		Catalog:  client,
		Sessions: session.NewRegistry(),
		Saved:    store.NewService(db),
		Logger:   discardLogger(),
	})
}

// seedSession registers a two-contributor session with one shared and one
// solo release.
func seedSession(t *testing.T, r *Router) *session.Session {
	t.Helper()

	set := session.NewContributorSet()
	set.Merge(session.Credit{ID: 10, Name: "Alice", Roles: []string{"Producer"}}, session.SourceCredit, "")
	set.Merge(session.Credit{ID: 20, Name: "Bob", Roles: []string{"Drums"}}, session.SourceCredit, "")

	shared := &session.ReleaseCandidate{ID: 100, Title: "Duo", Artist: "Alice & Bob"}
	shared.AddContributor(10)
	shared.AddContributor(20)
	solo := &session.ReleaseCandidate{ID: 200, Title: "Solo", Artist: "Alice"}
	solo.AddContributor(10)

	sess := session.New(
		session.SearchParams{Artist: "Alice", Album: "Duo"},
		set,
		map[int]*session.ReleaseCandidate{100: shared, 200: solo},
	)
	r.sessions.Put(sess)
	return sess
}

func doRequest(t *testing.T, r *Router, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t, nil)

	w := doRequest(t, r, http.MethodGet, "/api/v1/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}

func TestProxySearch_ForwardsRateLimitHeader(t *testing.T) {
	upstream := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/database/search" {
			http.NotFound(w, req)
			return
		}
		q := req.URL.Query()
		if q.Get("type") != "release" || q.Get("sort") != "have" || q.Get("sort_order") != "desc" {
			t.Errorf("unexpected query: %s", req.URL.RawQuery)
		}
		w.Header().Set("X-Discogs-Ratelimit-Remaining", "42")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results": [{"id": 1, "title": "Band - Album"}], "pagination": {"page": 1, "pages": 1}}`))
	})
	r := newTestRouter(t, upstream)

	w := doRequest(t, r, http.MethodGet, "/api/search?band=Band&album=Album", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}
	if got := w.Header().Get("X-Ratelimit-Remaining"); got != "42" {
		t.Errorf("X-Ratelimit-Remaining = %q, want 42", got)
	}
}

func TestProxySearch_RequiresParams(t *testing.T) {
	r := newTestRouter(t, nil)

	w := doRequest(t, r, http.MethodGet, "/api/search?band=Band", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestCreateSearch_EndToEnd(t *testing.T) {
	upstream := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch req.URL.Path {
		case "/database/search":
			_, _ = w.Write([]byte(`{"results": [{"id": 1, "title": "Band - Album"}], "pagination": {"page": 1, "pages": 1}}`))
		case "/releases/1":
			_, _ = w.Write([]byte(`{"id": 1, "title": "Album", "artists": [{"id": 9, "name": "Band"}]}`))
		case "/artists/9":
			_, _ = w.Write([]byte(`{"id": 9, "name": "Band"}`))
		case "/artists/9/releases":
			_, _ = w.Write([]byte(`{"releases": [{"id": 1, "title": "Album", "artist": "Band", "year": 2001}], "pagination": {"page": 1, "pages": 1}}`))
		default:
			http.NotFound(w, req)
		}
	})
	r := newTestRouter(t, upstream)

	w := doRequest(t, r, http.MethodPost, "/api/v1/searches", []byte(`{"artist": "Band", "album": "Album"}`))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusCreated, w.Body.String())
	}
	var sess session.Session
	if err := json.Unmarshal(w.Body.Bytes(), &sess); err != nil {
		t.Fatalf("decoding session: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("session id missing")
	}
	if sess.Contributors.Len() != 1 {
		t.Errorf("contributors = %d, want 1", sess.Contributors.Len())
	}

	// Session should be retrievable through the registry route.
	got := doRequest(t, r, http.MethodGet, "/api/v1/searches/"+sess.ID, nil)
	if got.Code != http.StatusOK {
		t.Errorf("GET session status = %d, want %d", got.Code, http.StatusOK)
	}
}

func TestCreateSearch_NoMatches(t *testing.T) {
	upstream := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results": [], "pagination": {"page": 1, "pages": 1}}`))
	})
	r := newTestRouter(t, upstream)

	w := doRequest(t, r, http.MethodPost, "/api/v1/searches", []byte(`{"artist": "Nobody", "album": "Nothing"}`))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusNotFound, w.Body.String())
	}
}

func TestGetSearch_NotFound(t *testing.T) {
	r := newTestRouter(t, nil)

	w := doRequest(t, r, http.MethodGet, "/api/v1/searches/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestListReleases_RankedAndPaginated(t *testing.T) {
	r := newTestRouter(t, nil)
	sess := seedSession(t, r)

	w := doRequest(t, r, http.MethodGet, "/api/v1/searches/"+sess.ID+"/releases?page=1&per_page=1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var body struct {
		Releases   []session.ScoredRelease `json:"releases"`
		Pagination struct {
			Page    int `json:"page"`
			PerPage int `json:"per_page"`
			Total   int `json:"total"`
			Pages   int `json:"pages"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Pagination.Total != 2 || body.Pagination.Pages != 2 {
		t.Errorf("pagination = %+v, want total 2 pages 2", body.Pagination)
	}
	if len(body.Releases) != 1 {
		t.Fatalf("releases = %d, want 1", len(body.Releases))
	}
	// The shared release carries both contributors and ranks first.
	if body.Releases[0].ID != 100 {
		t.Errorf("top release = %d, want 100", body.Releases[0].ID)
	}
}

func TestListReleases_PageBeyondRange(t *testing.T) {
	r := newTestRouter(t, nil)
	sess := seedSession(t, r)

	// Out-of-range pages, including values large enough to overflow the
	// start offset multiplication, return an empty page rather than failing.
	for _, query := range []string{
		"?page=99&per_page=50",
		"?page=9000000000000000000&per_page=250",
	} {
		w := doRequest(t, r, http.MethodGet, "/api/v1/searches/"+sess.ID+"/releases"+query, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status = %d, want %d; body: %s", query, w.Code, http.StatusOK, w.Body.String())
		}
		var body struct {
			Releases   []session.ScoredRelease `json:"releases"`
			Pagination struct {
				Total int `json:"total"`
			} `json:"pagination"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: decoding body: %v", query, err)
		}
		if len(body.Releases) != 0 {
			t.Errorf("%s: releases = %d, want 0", query, len(body.Releases))
		}
		if body.Pagination.Total != 2 {
			t.Errorf("%s: total = %d, want 2", query, body.Pagination.Total)
		}
	}
}

func TestToggleContributor_ChangesRanking(t *testing.T) {
	r := newTestRouter(t, nil)
	sess := seedSession(t, r)

	w := doRequest(t, r, http.MethodPost, "/api/v1/searches/"+sess.ID+"/filters/contributors/20", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("toggle status = %d, want %d", w.Code, http.StatusOK)
	}
	var view filterView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("decoding filter view: %v", err)
	}
	if view.Filter.ContributorActive(20) {
		t.Error("contributor 20 should be inactive after toggle")
	}

	// With only Alice active both releases score 1.0; ids break the tie.
	list := doRequest(t, r, http.MethodGet, "/api/v1/searches/"+sess.ID+"/releases", nil)
	var body struct {
		Releases []session.ScoredRelease `json:"releases"`
	}
	if err := json.Unmarshal(list.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding releases: %v", err)
	}
	if len(body.Releases) != 2 {
		t.Fatalf("releases = %d, want 2", len(body.Releases))
	}
	if body.Releases[0].Score != body.Releases[1].Score {
		t.Errorf("scores differ: %v vs %v", body.Releases[0].Score, body.Releases[1].Score)
	}
	if body.Releases[0].ID != 100 {
		t.Errorf("tie-break order wrong: first id = %d", body.Releases[0].ID)
	}
}

func TestToggleRole(t *testing.T) {
	r := newTestRouter(t, nil)
	sess := seedSession(t, r)

	w := doRequest(t, r, http.MethodPost, "/api/v1/searches/"+sess.ID+"/filters/roles/Producer", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var view filterView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("decoding filter view: %v", err)
	}
	if view.Filter.RoleActive("Producer") {
		t.Error("Producer should be inactive after toggle")
	}
}

func TestBulkFilterOps(t *testing.T) {
	r := newTestRouter(t, nil)
	sess := seedSession(t, r)

	w := doRequest(t, r, http.MethodPost, "/api/v1/searches/"+sess.ID+"/filters/exclude-roles", nil)
	var view filterView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("decoding filter view: %v", err)
	}
	if !view.AllRolesInactive {
		t.Error("expected all roles inactive after exclude-roles")
	}

	// With every role off, releases disappear entirely.
	list := doRequest(t, r, http.MethodGet, "/api/v1/searches/"+sess.ID+"/releases", nil)
	var body struct {
		Releases []session.ScoredRelease `json:"releases"`
	}
	if err := json.Unmarshal(list.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding releases: %v", err)
	}
	if len(body.Releases) != 0 {
		t.Errorf("releases = %d, want 0", len(body.Releases))
	}

	reset := doRequest(t, r, http.MethodPost, "/api/v1/searches/"+sess.ID+"/filters/reset", nil)
	if err := json.Unmarshal(reset.Body.Bytes(), &view); err != nil {
		t.Fatalf("decoding filter view: %v", err)
	}
	if view.AllRolesInactive || view.AllContributorsInactive {
		t.Error("expected everything active after reset")
	}
}

func TestUpdateFilters_PartialFlags(t *testing.T) {
	r := newTestRouter(t, nil)
	sess := seedSession(t, r)

	w := doRequest(t, r, http.MethodPut, "/api/v1/searches/"+sess.ID+"/filters", []byte(`{"collaborations_only": true}`))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var view filterView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("decoding filter view: %v", err)
	}
	if !view.Filter.CollaborationsOnly {
		t.Error("CollaborationsOnly should be set")
	}
	if view.Filter.ExcludeMainArtist {
		t.Error("ExcludeMainArtist should be unchanged")
	}

	// Only the shared release survives collaborations-only.
	list := doRequest(t, r, http.MethodGet, "/api/v1/searches/"+sess.ID+"/releases", nil)
	var body struct {
		Releases []session.ScoredRelease `json:"releases"`
	}
	if err := json.Unmarshal(list.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding releases: %v", err)
	}
	if len(body.Releases) != 1 || body.Releases[0].ID != 100 {
		t.Errorf("unexpected releases: %+v", body.Releases)
	}
}

func TestSaveRestoreRoundTrip(t *testing.T) {
	r := newTestRouter(t, nil)
	sess := seedSession(t, r)

	// Mutate filter state, then save.
	doRequest(t, r, http.MethodPost, "/api/v1/searches/"+sess.ID+"/filters/contributors/20", nil)
	w := doRequest(t, r, http.MethodPost, "/api/v1/searches/"+sess.ID+"/save", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("save status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	list := doRequest(t, r, http.MethodGet, "/api/v1/saved", nil)
	var listing struct {
		Saved []store.SavedSearch `json:"saved"`
	}
	if err := json.Unmarshal(list.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decoding saved list: %v", err)
	}
	if len(listing.Saved) != 1 || listing.Saved[0].ID != sess.ID {
		t.Fatalf("unexpected saved list: %+v", listing.Saved)
	}

	// Drop the live session, then restore from the snapshot.
	r.sessions.Remove(sess.ID)
	restored := doRequest(t, r, http.MethodGet, "/api/v1/saved/"+sess.ID, nil)
	if restored.Code != http.StatusOK {
		t.Fatalf("restore status = %d, want %d", restored.Code, http.StatusOK)
	}
	var got session.Session
	if err := json.Unmarshal(restored.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding restored session: %v", err)
	}
	if got.Filter.ContributorActive(20) {
		t.Error("restored session lost toggled filter state")
	}
	if err := r.sessions.View(sess.ID, func(*session.Session) error { return nil }); err != nil {
		t.Errorf("restored session not registered: %v", err)
	}
}

func TestDeleteSaved(t *testing.T) {
	r := newTestRouter(t, nil)
	sess := seedSession(t, r)

	if err := r.saved.Save(context.Background(), sess); err != nil {
		t.Fatalf("Save: %v", err)
	}
	w := doRequest(t, r, http.MethodDelete, "/api/v1/saved/"+sess.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d, want %d", w.Code, http.StatusOK)
	}
	again := doRequest(t, r, http.MethodDelete, "/api/v1/saved/"+sess.ID, nil)
	if again.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want %d", again.Code, http.StatusNotFound)
	}
}

func TestClearSaved(t *testing.T) {
	r := newTestRouter(t, nil)
	sess := seedSession(t, r)

	if err := r.saved.Save(context.Background(), sess); err != nil {
		t.Fatalf("Save: %v", err)
	}
	w := doRequest(t, r, http.MethodDelete, "/api/v1/saved", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("clear status = %d, want %d", w.Code, http.StatusOK)
	}
	list := doRequest(t, r, http.MethodGet, "/api/v1/saved", nil)
	var listing struct {
		Saved []store.SavedSearch `json:"saved"`
	}
	if err := json.Unmarshal(list.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decoding saved list: %v", err)
	}
	if len(listing.Saved) != 0 {
		t.Errorf("saved = %d, want 0", len(listing.Saved))
	}
}
