package store

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// UserLanguage returns the user's selected language. The second return
// value is false when no language is on file.
func (s *Store) UserLanguage(ctx context.Context, userID int64) (string, bool, error) {
	var lang sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT language FROM users WHERE user_id = ?`, userID,
	).Scan(&lang)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query user language: %w", err)
	}
	if !lang.Valid || lang.String == "" {
		return "", false, nil
	}
	return lang.String, true, nil
}

// SetUserLanguage creates the user on first selection or updates their
// language. Display metadata is kept when the new values are empty.
func (s *Store) SetUserLanguage(ctx context.Context, userID int64, language, firstName, username string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (user_id, language, first_name, username)
		VALUES (?, ?, NULLIF(?, ''), NULLIF(?, ''))
		ON CONFLICT(user_id) DO UPDATE SET
			language = excluded.language,
			first_name = COALESCE(excluded.first_name, users.first_name),
			username = COALESCE(excluded.username, users.username)
	`, userID, language, firstName, username)
	if err != nil {
		return fmt.Errorf("set user language: %w", err)
	}
	s.logger.Info("user language set",
		zap.Int64("user_id", userID),
		zap.String("language", language),
	)
	return nil
}

// UserExists reports whether the user has ever selected a language.
func (s *Store) UserExists(ctx context.Context, userID int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM users WHERE user_id = ?`, userID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query user: %w", err)
	}
	return true, nil
}
