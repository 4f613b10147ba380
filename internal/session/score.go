package session

import (
	"sort"
	"strings"
)

// ContributorWeight is the per-person confidence weight derived from how
// directly the person was credited: a direct album/track credit outweighs a
// main-artist credit, which outweighs inherited band membership. Each
// additional source kind beyond the first adds 0.1, capped at 1.0.
func ContributorWeight(c *Contributor) float64 {
	var base float64
	switch {
	case c.HasSource(SourceCredit):
		base = 1.0
	case c.HasSource(SourceMainArtist):
		base = 0.7
	case c.HasSource(SourceBandMember):
		base = 0.4
	}

	if extra := len(c.Sources) - 1; extra > 0 {
		base += 0.1 * float64(extra)
	}
	if base > 1.0 {
		base = 1.0
	}
	return base
}

// activeIDs returns the contributors that count for scoring: the person
// toggle must be on AND at least one of the person's roles must be active.
// Role and person filters are conjunctive.
func (s *Session) activeIDs() map[int]bool {
	active := make(map[int]bool)
	for _, c := range s.Contributors.All() {
		if !s.Filter.ContributorActive(c.ID) {
			continue
		}
		hasActiveRole := false
		for _, role := range c.Roles {
			if s.Filter.RoleActive(role) {
				hasActiveRole = true
				break
			}
		}
		if hasActiveRole {
			active[c.ID] = true
		}
	}
	return active
}

// ScoredReleases evaluates every release candidate against the current
// filter state and returns the survivors ranked by score x confidence
// descending, ties broken by release id ascending. The ordering is fully
// deterministic so repeated calls paginate consistently.
//
// The score denominator is the count of contributors currently active
// across the whole session, not per release family: toggling any
// contributor shifts every release's share. That matches the original
// ranking semantics and the interactive feel of the filter, so it is kept
// as-is.
func (s *Session) ScoredReleases() []ScoredRelease {
	active := s.activeIDs()
	if len(active) == 0 {
		return nil
	}

	artistToken := firstToken(s.Params.Artist)

	out := make([]ScoredRelease, 0, len(s.Releases))
	for _, rel := range s.Releases {
		scored, ok := s.scoreRelease(rel, active, artistToken)
		if !ok {
			continue
		}
		out = append(out, scored)
	}

	sort.Slice(out, func(i, j int) bool {
		ri := out[i].Score * out[i].Confidence
		rj := out[j].Score * out[j].Confidence
		if ri != rj {
			return ri > rj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// scoreRelease computes one release's metrics under the given active set.
// Returns ok=false when the release is excluded from output entirely.
func (s *Session) scoreRelease(rel *ReleaseCandidate, active map[int]bool, artistToken string) (ScoredRelease, bool) {
	var activeOnRelease []int
	for _, id := range rel.ContributorIDs {
		if active[id] {
			activeOnRelease = append(activeOnRelease, id)
		}
	}
	if len(activeOnRelease) == 0 {
		return ScoredRelease{}, false
	}

	if s.Filter.CollaborationsOnly && len(activeOnRelease) < 2 {
		return ScoredRelease{}, false
	}
	if s.Filter.ExcludeMainArtist && artistToken != "" &&
		strings.Contains(strings.ToLower(rel.Artist), artistToken) {
		return ScoredRelease{}, false
	}

	var totalWeight float64
	for _, id := range activeOnRelease {
		totalWeight += ContributorWeight(s.Contributors.Get(id))
	}

	return ScoredRelease{
		ReleaseCandidate:     *rel,
		Score:                float64(len(activeOnRelease)) / float64(len(active)),
		Confidence:           totalWeight / float64(len(activeOnRelease)),
		ActiveContributorIDs: activeOnRelease,
	}, true
}

// firstToken returns the lowercased first whitespace-separated token of the
// searched artist name, used by the main-artist exclusion predicate.
func firstToken(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}
