// Package api exposes the search engine, filter state, and snapshot store
// over HTTP.
package api

import (
	"log/slog"
	"net/http"

	"github.com/sydlexius/periphery/internal/discogs"
	"github.com/sydlexius/periphery/internal/search"
	"github.com/sydlexius/periphery/internal/session"
	"github.com/sydlexius/periphery/internal/store"
)

// RouterDeps bundles all dependencies needed by the HTTP router.
type RouterDeps struct {
	Engine   *search.Engine
	Catalog  *discogs.Client
	Sessions *session.Registry
	Saved    *store.Service
	Logger   *slog.Logger
	BasePath string
}

// Router sets up all HTTP routes for the application.
type Router struct {
	engine   *search.Engine
	catalog  *discogs.Client
	sessions *session.Registry
	saved    *store.Service
	logger   *slog.Logger
	basePath string
}

// NewRouter creates a new Router with all routes configured.
func NewRouter(deps RouterDeps) *Router {
	return &Router{
		engine:   deps.Engine,
		catalog:  deps.Catalog,
		sessions: deps.Sessions,
		saved:    deps.Saved,
		logger:   deps.Logger,
		basePath: deps.BasePath,
	}
}

// Handler returns the fully configured HTTP handler.
func (r *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	bp := r.basePath

	mux.HandleFunc("GET "+bp+"/api/v1/health", r.handleHealth)

	// Raw catalog search proxy
	mux.HandleFunc("GET "+bp+"/api/search", r.handleProxySearch)

	// Sessions
	mux.HandleFunc("POST "+bp+"/api/v1/searches", r.handleCreateSearch)
	mux.HandleFunc("GET "+bp+"/api/v1/searches/{id}", r.handleGetSearch)
	mux.HandleFunc("GET "+bp+"/api/v1/searches/{id}/releases", r.handleListReleases)

	// Filter state
	mux.HandleFunc("PUT "+bp+"/api/v1/searches/{id}/filters", r.handleUpdateFilters)
	mux.HandleFunc("POST "+bp+"/api/v1/searches/{id}/filters/reset", r.handleResetFilters)
	mux.HandleFunc("POST "+bp+"/api/v1/searches/{id}/filters/exclude-roles", r.handleExcludeRoles)
	mux.HandleFunc("POST "+bp+"/api/v1/searches/{id}/filters/exclude-contributors", r.handleExcludeContributors)
	mux.HandleFunc("POST "+bp+"/api/v1/searches/{id}/filters/contributors/{cid}", r.handleToggleContributor)
	mux.HandleFunc("POST "+bp+"/api/v1/searches/{id}/filters/roles/{role}", r.handleToggleRole)

	// Saved searches
	mux.HandleFunc("POST "+bp+"/api/v1/searches/{id}/save", r.handleSaveSearch)
	mux.HandleFunc("GET "+bp+"/api/v1/saved", r.handleListSaved)
	mux.HandleFunc("GET "+bp+"/api/v1/saved/{id}", r.handleRestoreSaved)
	mux.HandleFunc("DELETE "+bp+"/api/v1/saved/{id}", r.handleDeleteSaved)
	mux.HandleFunc("DELETE "+bp+"/api/v1/saved", r.handleClearSaved)

	return mux
}
