// Package session holds the in-memory state of a single periphery search:
// the deduplicated contributor set built from release credits, the release
// candidates discovered through contributor discographies, and the live
// filter state the scorer evaluates against.
package session

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Source is the provenance of a person's association with a release.
// The wire values match the Discogs-derived records the engine consumes.
type Source string

// Known contribution sources.
const (
	SourceMainArtist Source = "artist"  // credited as a release's main artist
	SourceCredit     Source = "credits" // session/extra credit on release or track
	SourceBandMember Source = "member"  // inherited from a band roster
)

// SearchParams identifies the album a session was built from.
type SearchParams struct {
	Artist string `json:"artist"`
	Album  string `json:"album"`
}

// Credit is a raw person record as it appears in upstream credit data,
// before identity merging.
type Credit struct {
	ID          int
	Name        string
	ResourceURL string
	Roles       []string
}

// Contributor is a person merged from one or more credit sources. Roles and
// Sources are sets kept as sorted slices; they only ever grow.
type Contributor struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	ResourceURL string   `json:"resource_url,omitempty"`
	Roles       []string `json:"roles"`
	Sources     []Source `json:"sources"`
}

// HasSource reports whether the contributor was ever seen via src.
func (c *Contributor) HasSource(src Source) bool {
	for _, s := range c.Sources {
		if s == src {
			return true
		}
	}
	return false
}

// HasRole reports whether the contributor carries the given normalized role.
func (c *Contributor) HasRole(role string) bool {
	i := sort.SearchStrings(c.Roles, role)
	return i < len(c.Roles) && c.Roles[i] == role
}

func (c *Contributor) addRole(role string) {
	i := sort.SearchStrings(c.Roles, role)
	if i < len(c.Roles) && c.Roles[i] == role {
		return
	}
	c.Roles = append(c.Roles, "")
	copy(c.Roles[i+1:], c.Roles[i:])
	c.Roles[i] = role
}

func (c *Contributor) addSource(src Source) {
	for _, s := range c.Sources {
		if s == src {
			return
		}
	}
	c.Sources = append(c.Sources, src)
	sort.Slice(c.Sources, func(i, j int) bool { return c.Sources[i] < c.Sources[j] })
}

// ReleaseCandidate is a release discovered while expanding a contributor's
// discography. Descriptive fields are set on first sighting and never
// replaced; ContributorIDs grows monotonically as more contributors are
// folded in.
type ReleaseCandidate struct {
	ID             int    `json:"id"`
	Title          string `json:"title"`
	Year           string `json:"year,omitempty"`
	Artist         string `json:"artist,omitempty"`
	Thumb          string `json:"thumb,omitempty"`
	ResourceURL    string `json:"resource_url,omitempty"`
	ContributorIDs []int  `json:"contributor_ids"`
}

// AddContributor records that the given contributor appears on this release.
// Adding the same id twice is a no-op.
func (r *ReleaseCandidate) AddContributor(id int) {
	i := sort.SearchInts(r.ContributorIDs, id)
	if i < len(r.ContributorIDs) && r.ContributorIDs[i] == id {
		return
	}
	r.ContributorIDs = append(r.ContributorIDs, 0)
	copy(r.ContributorIDs[i+1:], r.ContributorIDs[i:])
	r.ContributorIDs[i] = id
}

// HasContributor reports whether the contributor id is recorded on this release.
func (r *ReleaseCandidate) HasContributor(id int) bool {
	i := sort.SearchInts(r.ContributorIDs, id)
	return i < len(r.ContributorIDs) && r.ContributorIDs[i] == id
}

// ScoredRelease is a release candidate plus its correlation metrics under
// the current filter state. It is recomputed on every filter change and
// never persisted.
type ScoredRelease struct {
	ReleaseCandidate
	Score                float64 `json:"score"`
	Confidence           float64 `json:"confidence"`
	ActiveContributorIDs []int   `json:"active_contributor_ids"`
}

// Session is one search's complete state. Contributors and Releases are
// written only during expansion; once scoring begins the only mutable part
// is Filter.
type Session struct {
	ID           string                    `json:"id"`
	Params       SearchParams              `json:"params"`
	Contributors *ContributorSet           `json:"contributors"`
	Releases     map[int]*ReleaseCandidate `json:"releases"`
	Filter       *FilterState              `json:"filter"`
	CreatedAt    time.Time                 `json:"created_at"`
}

// New assembles a session once expansion has completed, with a filter
// covering every discovered contributor and role, all active.
func New(params SearchParams, contributors *ContributorSet, releases map[int]*ReleaseCandidate) *Session {
	if contributors == nil {
		contributors = NewContributorSet()
	}
	if releases == nil {
		releases = make(map[int]*ReleaseCandidate)
	}
	return &Session{
		ID:           uuid.NewString(),
		Params:       params,
		Contributors: contributors,
		Releases:     releases,
		Filter:       NewFilterState(contributors),
		CreatedAt:    time.Now().UTC(),
	}
}
