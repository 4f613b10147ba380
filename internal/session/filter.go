package session

// FilterState tracks which contributors and roles are currently included in
// scoring, plus two session-wide exclusion flags. Toggles never delete
// keys; a key that was never added reads as inactive.
type FilterState struct {
	Contributors       map[int]bool    `json:"contributors"`
	Roles              map[string]bool `json:"roles"`
	ExcludeMainArtist  bool            `json:"exclude_main_artist"`
	CollaborationsOnly bool            `json:"collaborations_only"`
}

// NewFilterState creates a filter covering every contributor and role in
// the set, all active.
func NewFilterState(set *ContributorSet) *FilterState {
	f := &FilterState{
		Contributors: make(map[int]bool),
		Roles:        make(map[string]bool),
	}
	f.ResetAll(set)
	return f
}

// ContributorActive reports the person-level toggle for id. Fail-closed:
// an unknown id is inactive.
func (f *FilterState) ContributorActive(id int) bool {
	return f.Contributors[id]
}

// RoleActive reports the role-level toggle. Fail-closed.
func (f *FilterState) RoleActive(role string) bool {
	return f.Roles[role]
}

// ToggleContributor flips the person-level toggle for id. No other key is
// affected.
func (f *FilterState) ToggleContributor(id int) {
	f.Contributors[id] = !f.Contributors[id]
}

// ToggleRole flips the role-level toggle. No other key is affected.
func (f *FilterState) ToggleRole(role string) {
	f.Roles[role] = !f.Roles[role]
}

// ResetAll sets every known contributor and role back to active.
func (f *FilterState) ResetAll(set *ContributorSet) {
	for _, id := range set.IDs() {
		f.Contributors[id] = true
	}
	for _, role := range set.Roles() {
		f.Roles[role] = true
	}
}

// ExcludeAllRoles sets every role toggle to false, leaving contributor
// toggles untouched.
func (f *FilterState) ExcludeAllRoles() {
	for role := range f.Roles {
		f.Roles[role] = false
	}
}

// ExcludeAllContributors sets every contributor toggle to false, leaving
// role toggles untouched.
func (f *FilterState) ExcludeAllContributors() {
	for id := range f.Contributors {
		f.Contributors[id] = false
	}
}

// AllRolesInactive reports whether no role toggle is on.
func (f *FilterState) AllRolesInactive() bool {
	for _, active := range f.Roles {
		if active {
			return false
		}
	}
	return true
}

// AllContributorsInactive reports whether no contributor toggle is on.
func (f *FilterState) AllContributorsInactive() bool {
	for _, active := range f.Contributors {
		if active {
			return false
		}
	}
	return true
}

// IsContributorDisabled reports whether toggling the contributor would have
// no effect: true unless at least one of their roles is currently active.
// Independent of the contributor's own toggle.
func (f *FilterState) IsContributorDisabled(set *ContributorSet, id int) bool {
	c := set.Get(id)
	if c == nil {
		return true
	}
	for _, role := range c.Roles {
		if f.Roles[role] {
			return false
		}
	}
	return true
}

// IsRoleDisabled reports whether toggling the role would have no effect:
// true unless at least one contributor holding it is contributor-active.
func (f *FilterState) IsRoleDisabled(set *ContributorSet, role string) bool {
	for _, c := range set.All() {
		if c.HasRole(role) && f.Contributors[c.ID] {
			return false
		}
	}
	return true
}
