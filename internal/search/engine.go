// Package search orchestrates a full periphery expansion: seed release
// search, credit scanning, band-roster expansion, and the discography fold
// that produces release candidates. All network work is sequential; the
// catalog client underneath enforces the pacing.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sydlexius/periphery/internal/discogs"
	"github.com/sydlexius/periphery/internal/event"
	"github.com/sydlexius/periphery/internal/session"
)

// Catalog is the slice of the Discogs client the engine depends on.
type Catalog interface {
	SearchReleases(ctx context.Context, artist, album string) (*discogs.SearchPage, error)
	GetRelease(ctx context.Context, id int) (*discogs.Release, error)
	GetArtist(ctx context.Context, id int) (*discogs.Artist, error)
	GetArtistReleases(ctx context.Context, id int) ([]discogs.ArtistRelease, error)
}

// Stage identifies a phase of the expansion for progress reporting.
type Stage string

// Expansion stages.
const (
	StageSearching     Stage = "searching"
	StageCredits       Stage = "credits"
	StageDiscographies Stage = "discographies"
)

// ProgressFunc is invoked synchronously after each completed unit of work.
// It observes only; it has no effect on control flow.
type ProgressFunc func(stage Stage, label string, current, total int)

// ErrNoMatches is returned when the seed search finds nothing; this is the
// only way an expansion fails outright besides the search call itself
// erroring. Everything downstream degrades instead of aborting.
var ErrNoMatches = errors.New("no releases matched the search")

// Engine runs expansions.
type Engine struct {
	catalog     Catalog
	logger      *slog.Logger
	maxReleases int
	progress    ProgressFunc
	bus         *event.Bus
}

// NewEngine creates an expansion engine. maxReleases caps how many seed
// search results are scanned for credits.
func NewEngine(catalog Catalog, logger *slog.Logger, maxReleases int) *Engine {
	if maxReleases < 1 {
		maxReleases = 1
	}
	return &Engine{
		catalog:     catalog,
		logger:      logger.With(slog.String("component", "search-engine")),
		maxReleases: maxReleases,
	}
}

// SetProgress registers a progress observer.
func (e *Engine) SetProgress(fn ProgressFunc) {
	e.progress = fn
}

// SetEventBus wires an event bus for lifecycle notifications.
func (e *Engine) SetEventBus(bus *event.Bus) {
	e.bus = bus
}

// Run performs a complete expansion for the given query and returns the
// assembled session. The only terminal failure is the seed search itself;
// every later fetch error is logged, the unit is skipped, and the fold
// keeps whatever has been merged so far.
func (e *Engine) Run(ctx context.Context, params session.SearchParams) (*session.Session, error) {
	e.publish(event.SearchStarted, map[string]any{
		"artist": params.Artist,
		"album":  params.Album,
	})

	page, err := e.catalog.SearchReleases(ctx, params.Artist, params.Album)
	if err != nil {
		e.publish(event.SearchFailed, map[string]any{"error": err.Error()})
		return nil, fmt.Errorf("searching releases: %w", err)
	}
	if len(page.Results) == 0 {
		e.publish(event.SearchFailed, map[string]any{"error": ErrNoMatches.Error()})
		return nil, ErrNoMatches
	}
	e.report(StageSearching, "Searching for release", 1, 1)

	seeds := page.Results
	if len(seeds) > e.maxReleases {
		seeds = seeds[:e.maxReleases]
	}

	contributors := session.NewContributorSet()
	expandedBands := make(map[int]bool)

	for i, seed := range seeds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := e.scanRelease(ctx, seed.ID, contributors, expandedBands); err != nil {
			e.logger.Warn("skipping release credits",
				slog.Int("release_id", seed.ID),
				slog.String("error", err.Error()))
		}
		e.report(StageCredits, "Scanning release credits", i+1, len(seeds))
	}

	releases, err := e.expandDiscographies(ctx, contributors)
	if err != nil {
		return nil, err
	}

	sess := session.New(params, contributors, releases)
	e.publish(event.SearchCompleted, map[string]any{
		"session_id":   sess.ID,
		"contributors": contributors.Len(),
		"releases":     len(releases),
	})
	return sess, nil
}

// scanRelease walks one release's credit lists in a fixed order: main
// artists, extra artists, top-level credits, then per-track extra artists.
// Band-roster expansion runs strictly after the credit scan so the
// external call schedule stays predictable.
func (e *Engine) scanRelease(ctx context.Context, releaseID int, contributors *session.ContributorSet, expandedBands map[int]bool) error {
	rel, err := e.catalog.GetRelease(ctx, releaseID)
	if err != nil {
		return err
	}

	for _, a := range rel.Artists {
		contributors.Merge(toCredit(a), session.SourceMainArtist, "Main Artist")
	}
	for _, a := range rel.ExtraArtists {
		contributors.Merge(toCredit(a), session.SourceCredit, "")
	}
	for _, a := range rel.Credits {
		contributors.Merge(toCredit(a), session.SourceCredit, "")
	}
	for _, track := range rel.Tracklist {
		for _, a := range track.ExtraArtists {
			contributors.Merge(toCredit(a), session.SourceCredit, "")
		}
	}

	for _, a := range rel.Artists {
		if a.ID == 0 || expandedBands[a.ID] {
			continue
		}
		expandedBands[a.ID] = true

		if err := ctx.Err(); err != nil {
			return err
		}
		artist, err := e.catalog.GetArtist(ctx, a.ID)
		if err != nil {
			e.logger.Warn("skipping band roster",
				slog.Int("artist_id", a.ID),
				slog.String("error", err.Error()))
			continue
		}
		for _, member := range artist.Members {
			contributors.Merge(session.Credit{
				ID:          member.ID,
				Name:        member.Name,
				ResourceURL: member.ResourceURL,
			}, session.SourceBandMember, "Band Member")
		}
	}

	return nil
}

// expandDiscographies folds each contributor's full release list into the
// candidate map, in contributor insertion order. One contributor failing
// never rolls back what earlier contributors merged.
func (e *Engine) expandDiscographies(ctx context.Context, contributors *session.ContributorSet) (map[int]*session.ReleaseCandidate, error) {
	releases := make(map[int]*session.ReleaseCandidate)
	all := contributors.All()

	for i, c := range all {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		list, err := e.catalog.GetArtistReleases(ctx, c.ID)
		if err != nil {
			e.logger.Warn("skipping contributor discography",
				slog.Int("contributor_id", c.ID),
				slog.String("contributor", c.Name),
				slog.String("error", err.Error()))
			e.report(StageDiscographies, "Fetching discographies", i+1, len(all))
			continue
		}

		for _, rel := range list {
			if rel.ID == 0 {
				continue
			}
			existing, ok := releases[rel.ID]
			if !ok {
				existing = &session.ReleaseCandidate{
					ID:          rel.ID,
					Title:       rel.Title,
					Year:        discogs.YearString(rel.Year),
					Artist:      rel.Artist,
					Thumb:       rel.Thumb,
					ResourceURL: rel.ResourceURL,
				}
				releases[rel.ID] = existing
			}
			existing.AddContributor(c.ID)
		}

		e.report(StageDiscographies, "Fetching discographies", i+1, len(all))
	}

	return releases, nil
}

func (e *Engine) report(stage Stage, label string, current, total int) {
	if e.progress != nil {
		e.progress(stage, label, current, total)
	}
	e.publish(event.SearchProgress, map[string]any{
		"stage":   string(stage),
		"label":   label,
		"current": current,
		"total":   total,
	})
}

func (e *Engine) publish(t event.Type, data map[string]any) {
	if e.bus == nil {
		return
	}
	e.bus.Publish(event.Event{Type: t, Data: data})
}

func toCredit(a discogs.ArtistCredit) session.Credit {
	return session.Credit{
		ID:          a.ID,
		Name:        a.Name,
		ResourceURL: a.ResourceURL,
		Roles:       a.Role,
	}
}
