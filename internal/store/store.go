// Package store persists search sessions as opaque snapshots. The session
// is serialized verbatim and written as a blob keyed by session id; reading
// it back repopulates the in-memory structures unchanged. Nothing here
// interprets or recomputes session contents.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sydlexius/periphery/internal/session"
)

// ErrNotFound is returned when no snapshot exists for the requested id.
var ErrNotFound = errors.New("saved search not found")

// SavedSearch is the listing metadata for one snapshot.
type SavedSearch struct {
	ID      string    `json:"id"`
	Artist  string    `json:"artist"`
	Album   string    `json:"album"`
	SavedAt time.Time `json:"saved_at"`
}

// Service provides saved-search snapshot operations.
type Service struct {
	db *sql.DB
}

// NewService creates a snapshot store service.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// Save writes the session snapshot, replacing any previous snapshot with
// the same id.
func (s *Service) Save(ctx context.Context, sess *session.Session) error {
	if sess.ID == "" {
		return fmt.Errorf("cannot save session without id")
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO saved_searches (id, artist, album, payload, saved_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			artist = excluded.artist,
			album = excluded.album,
			payload = excluded.payload,
			saved_at = excluded.saved_at
	`, sess.ID, sess.Params.Artist, sess.Params.Album, string(payload), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("saving search: %w", err)
	}
	return nil
}

// Get restores a saved session by id.
func (s *Service) Get(ctx context.Context, id string) (*session.Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT payload FROM saved_searches WHERE id = ?`, id)

	var payload string
	if err := row.Scan(&payload); errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("reading saved search: %w", err)
	}

	var sess session.Session
	if err := json.Unmarshal([]byte(payload), &sess); err != nil {
		return nil, fmt.Errorf("decoding saved search: %w", err)
	}
	return &sess, nil
}

// List returns metadata for all snapshots, most recently saved first.
func (s *Service) List(ctx context.Context) ([]SavedSearch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, artist, album, saved_at FROM saved_searches ORDER BY saved_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("listing saved searches: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []SavedSearch
	for rows.Next() {
		var item SavedSearch
		var savedAt string
		if err := rows.Scan(&item.ID, &item.Artist, &item.Album, &savedAt); err != nil {
			return nil, fmt.Errorf("scanning saved search: %w", err)
		}
		item.SavedAt, err = time.Parse(time.RFC3339, savedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing saved_at for %s: %w", item.ID, err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// IsSaved reports whether a snapshot exists for the given id.
func (s *Service) IsSaved(ctx context.Context, id string) (bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT 1 FROM saved_searches WHERE id = ?`, id)
	var one int
	if err := row.Scan(&one); errors.Is(err, sql.ErrNoRows) {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("checking saved search: %w", err)
	}
	return true, nil
}

// Delete removes one snapshot.
func (s *Service) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM saved_searches WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting saved search: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear removes every snapshot.
func (s *Service) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM saved_searches`); err != nil {
		return fmt.Errorf("clearing saved searches: %w", err)
	}
	return nil
}
