package session

import (
	"encoding/json"
	"sort"

	"github.com/sydlexius/periphery/internal/roles"
)

// ContributorSet is the session-wide identity map of credited people, keyed
// by their upstream person id. Insertion order is preserved: it is the
// first-seen order during credit scanning and drives the deterministic
// schedule of the discography expansion.
type ContributorSet struct {
	byID  map[int]*Contributor
	order []int
}

// NewContributorSet creates an empty contributor set.
func NewContributorSet() *ContributorSet {
	return &ContributorSet{byID: make(map[int]*Contributor)}
}

// Merge upserts a credit record into the set. A record without a usable id
// is dropped silently; upstream data is known to contain such noise.
//
// The role collection for this call is defaultRole (used when the upstream
// record supplies no explicit role label) plus the record's own roles, all
// normalized before merging. On an existing entry the source and roles are
// unioned in; the first-seen name is never overwritten, so display labels
// stay stable even when upstream returns name variants for the same id.
func (s *ContributorSet) Merge(credit Credit, src Source, defaultRole string) {
	if credit.ID == 0 {
		return
	}

	raw := make([]string, 0, len(credit.Roles)+1)
	if defaultRole != "" {
		raw = append(raw, defaultRole)
	}
	raw = append(raw, credit.Roles...)
	normalized := roles.Normalize(raw)

	if existing, ok := s.byID[credit.ID]; ok {
		existing.addSource(src)
		for _, role := range normalized {
			existing.addRole(role)
		}
		return
	}

	c := &Contributor{
		ID:          credit.ID,
		Name:        credit.Name,
		ResourceURL: credit.ResourceURL,
		Roles:       normalized,
		Sources:     []Source{src},
	}
	s.byID[credit.ID] = c
	s.order = append(s.order, credit.ID)
}

// Get returns the contributor with the given id, or nil.
func (s *ContributorSet) Get(id int) *Contributor {
	return s.byID[id]
}

// Len returns the number of contributors in the set.
func (s *ContributorSet) Len() int {
	return len(s.order)
}

// All returns the contributors in insertion (first-seen) order.
func (s *ContributorSet) All() []*Contributor {
	out := make([]*Contributor, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// IDs returns the contributor ids in insertion order.
func (s *ContributorSet) IDs() []int {
	out := make([]int, len(s.order))
	copy(out, s.order)
	return out
}

// Roles returns the union of all contributors' normalized roles, sorted.
func (s *ContributorSet) Roles() []string {
	seen := make(map[string]bool)
	for _, c := range s.byID {
		for _, role := range c.Roles {
			seen[role] = true
		}
	}
	out := make([]string, 0, len(seen))
	for role := range seen {
		out = append(out, role)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON serializes the set as an array in insertion order, so a
// snapshot round-trip reproduces the same expansion schedule.
func (s *ContributorSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.All())
}

// UnmarshalJSON restores the set from its array form.
func (s *ContributorSet) UnmarshalJSON(data []byte) error {
	var list []*Contributor
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	s.byID = make(map[int]*Contributor, len(list))
	s.order = s.order[:0]
	for _, c := range list {
		if c == nil || c.ID == 0 {
			continue
		}
		if _, ok := s.byID[c.ID]; ok {
			continue
		}
		s.byID[c.ID] = c
		s.order = append(s.order, c.ID)
	}
	return nil
}
