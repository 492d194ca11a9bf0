package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sinoai/medassist-bot/internal/model"
)

// PutSuggestion upserts a suggestion text under its opaque ID. Colliding
// IDs resolve last-write-wins: suggestions are short-lived and the ID is
// derived from user, position and content, so a collision carries the
// same scoped meaning. Every write also sweeps entries older than the
// TTL, piggybacking cleanup on write traffic instead of a background
// timer.
func (s *Store) PutSuggestion(ctx context.Context, id, text string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin suggestion put: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO suggestions (suggestion_id, text, created_at) VALUES (?, ?, unixepoch())`,
		id, text,
	); err != nil {
		return fmt.Errorf("insert suggestion: %w", err)
	}

	cutoff := time.Now().Add(-model.SuggestionTTL).Unix()
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM suggestions WHERE created_at < ?`, cutoff,
	); err != nil {
		return fmt.Errorf("sweep suggestions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit suggestion put: %w", err)
	}
	return nil
}

// Suggestion returns the cached text for an ID. The second return value
// is false for unknown or expired IDs; callers treat that as
// "suggestion unavailable" and drop the action silently.
func (s *Store) Suggestion(ctx context.Context, id string) (string, bool, error) {
	cutoff := time.Now().Add(-model.SuggestionTTL).Unix()

	var text string
	err := s.db.QueryRowContext(ctx,
		`SELECT text FROM suggestions WHERE suggestion_id = ? AND created_at >= ?`,
		id, cutoff,
	).Scan(&text)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query suggestion: %w", err)
	}
	return text, true, nil
}
