package discogs

import (
	"bytes"
	"encoding/json"
)

// Discogs API response types.

// SearchResponse is the top-level response from the release search endpoint.
type SearchResponse struct {
	Results    []SearchResult `json:"results"`
	Pagination Pagination     `json:"pagination"`
}

// SearchResult represents a single release search hit.
type SearchResult struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Year        string    `json:"year"`
	Type        string    `json:"type"`
	Thumb       string    `json:"thumb"`
	CoverImage  string    `json:"cover_image"`
	ResourceURL string    `json:"resource_url"`
	Community   Community `json:"community"`
}

// Community holds collection counts for a search hit.
type Community struct {
	Want int `json:"want"`
	Have int `json:"have"`
}

// Pagination holds pagination info.
type Pagination struct {
	Page    int `json:"page"`
	Pages   int `json:"pages"`
	PerPage int `json:"per_page"`
	Items   int `json:"items"`
}

// Release is the full release detail response.
type Release struct {
	ID           int            `json:"id"`
	Title        string         `json:"title"`
	Year         int            `json:"year"`
	Artists      []ArtistCredit `json:"artists"`
	ExtraArtists []ArtistCredit `json:"extraartists"`
	Credits      []ArtistCredit `json:"credits"`
	Tracklist    []Track        `json:"tracklist"`
}

// ArtistCredit is a person credited on a release or track.
type ArtistCredit struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Role        RoleList `json:"role"`
	ResourceURL string   `json:"resource_url"`
}

// RoleList accepts the role field as either a single string or an array;
// upstream uses both forms.
type RoleList []string

// UnmarshalJSON implements the string-or-array decoding.
func (r *RoleList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = nil
		return nil
	}
	if data[0] == '[' {
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*r = list
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*r = nil
		return nil
	}
	*r = []string{s}
	return nil
}

// Track is a tracklist entry; it may carry its own extra-artist credits.
type Track struct {
	Position     string         `json:"position"`
	Title        string         `json:"title"`
	ExtraArtists []ArtistCredit `json:"extraartists"`
}

// Artist is the full artist detail response. Members is present only for
// rostered bands.
type Artist struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	Profile     string      `json:"profile"`
	Members     []ArtistRef `json:"members"`
	ResourceURL string      `json:"resource_url"`
}

// ArtistRef is a reference to another artist, e.g. a band-roster entry.
type ArtistRef struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Active      bool   `json:"active"`
	ResourceURL string `json:"resource_url"`
}

// ArtistReleasesResponse is one page of an artist's discography.
type ArtistReleasesResponse struct {
	Releases   []ArtistRelease `json:"releases"`
	Pagination Pagination      `json:"pagination"`
}

// ArtistRelease is a single discography entry.
type ArtistRelease struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Year        int    `json:"year"`
	Artist      string `json:"artist"`
	Role        string `json:"role"`
	Type        string `json:"type"`
	Thumb       string `json:"thumb"`
	ResourceURL string `json:"resource_url"`
}
