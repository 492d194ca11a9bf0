package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sinoai/medassist-bot/internal/model"
)

// retentionLimit is how many rows per user survive a trim. Trimming down
// to exactly MaxWindow on every append would be wasteful under frequent
// small writes; the 2x buffer amortizes deletion while capping how many
// rows History can ever scan past.
const retentionLimit = 2 * model.MaxWindow

// AddMessage appends a message to the user's conversation log, then
// trims that user's log down to the retention limit. The trim is scoped
// to the single user and never reorders surviving rows.
func (s *Store) AddMessage(ctx context.Context, userID int64, role model.Role, content string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO messages (user_id, role, content) VALUES (?, ?, ?)`,
		userID, role, content,
	); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM messages
		WHERE user_id = ? AND id NOT IN (
			SELECT id FROM messages
			WHERE user_id = ?
			ORDER BY created_at DESC, id DESC
			LIMIT ?
		)
	`, userID, userID, retentionLimit); err != nil {
		return fmt.Errorf("trim messages: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

// History returns up to limit most recent messages for the user,
// ordered oldest-first so the slice can be fed directly as prompt
// context. A non-positive limit falls back to MaxWindow.
func (s *Store) History(ctx context.Context, userID int64, limit int) ([]model.Message, error) {
	if limit <= 0 {
		limit = model.MaxWindow
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, role, content, created_at FROM (
			SELECT id, user_id, role, content, created_at
			FROM messages
			WHERE user_id = ?
			ORDER BY created_at DESC, id DESC
			LIMIT ?
		) ORDER BY created_at ASC, id ASC
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var (
			m  model.Message
			ts int64
		)
		if err := rows.Scan(&m.ID, &m.UserID, &m.Role, &m.Content, &ts); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.CreatedAt = unixTime(ts)
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return messages, nil
}

// MessageCount returns the number of persisted messages for the user.
func (s *Store) MessageCount(ctx context.Context, userID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE user_id = ?`, userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return n, nil
}

// ClearHistory deletes all messages for the user. Idempotent.
func (s *Store) ClearHistory(ctx context.Context, userID int64) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM messages WHERE user_id = ?`, userID,
	); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	s.logger.Info("history cleared", zap.Int64("user_id", userID))
	return nil
}
