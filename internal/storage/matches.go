package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/vk-tinder/internal/profile"
)

// InsertMatches stores matches in one transaction. Already known URLs are skipped.
// It returns the number of new rows.
func (s *Storage) InsertMatches(ctx context.Context, matches profile.Matches) (int, error) {
	if matches.Len() == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO matches (first_name, last_name, url)
		VALUES ($1, $2, $3)
		ON CONFLICT (url) DO NOTHING
	`

	inserted := 0
	for _, m := range matches {
		result, err := tx.ExecContext(ctx, query, m.FirstName, m.LastName, m.URL)
		if err != nil {
			return 0, fmt.Errorf("insert match %s: %w", m.URL, err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return 0, err
		}
		inserted += int(rows)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit matches: %w", err)
	}

	s.logger.Debug("matches stored",
		zap.Int("total", matches.Len()),
		zap.Int("new", inserted),
	)

	return inserted, nil
}

// AddToBlacklist is a no-op when the URL is already blacklisted.
func (s *Storage) AddToBlacklist(ctx context.Context, m profile.Match) error {
	query := `
		INSERT INTO blacklist (first_name, last_name, url)
		VALUES ($1, $2, $3)
		ON CONFLICT (url) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, query, m.FirstName, m.LastName, m.URL); err != nil {
		return fmt.Errorf("add to blacklist: %w", err)
	}

	return nil
}

// AddToFavorites marks a stored match as favorite. The match must be persisted first.
func (s *Storage) AddToFavorites(ctx context.Context, m profile.Match) error {
	var matchID int64
	if err := s.db.GetContext(ctx, &matchID, `SELECT id FROM matches WHERE url = $1`, m.URL); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s: %w", m.URL, ErrMatchNotFound)
		}
		return fmt.Errorf("find match: %w", err)
	}

	query := `
		INSERT INTO favorites (match_id)
		VALUES ($1)
		ON CONFLICT (match_id) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, query, matchID); err != nil {
		return fmt.Errorf("add to favorites: %w", err)
	}

	return nil
}

func (s *Storage) BlacklistedURLs(ctx context.Context) ([]string, error) {
	var urls []string
	if err := s.db.SelectContext(ctx, &urls, `SELECT url FROM blacklist ORDER BY id`); err != nil {
		return nil, err
	}

	return urls, nil
}

// Favorites returns favorite matches in the order they were added.
func (s *Storage) Favorites(ctx context.Context) (profile.Matches, error) {
	var matches profile.Matches
	query := `
		SELECT m.first_name, m.last_name, m.url
		FROM favorites f
		JOIN matches m ON m.id = f.match_id
		ORDER BY f.id
	`
	if err := s.db.SelectContext(ctx, &matches, query); err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}

	return matches, nil
}
