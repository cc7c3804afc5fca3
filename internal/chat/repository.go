package chat

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"tasteal/internal/database"
)

// Repository is a database-backed repository for conversations.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Append stores a message and refreshes the conversation summary. The
// sender has read the conversation, the other participant has not.
func (r *Repository) Append(ctx context.Context, msg Message, receiver string) error {
	images, err := json.Marshal(msg.Images)
	if err != nil {
		return fmt.Errorf("failed to marshal message images: %w", err)
	}
	userA, userB := msg.SenderID, receiver
	if userA > userB {
		userA, userB = userB, userA
	}
	readA := database.BoolToInt(userA == msg.SenderID)
	now := database.FormatTime(msg.CreatedAt)

	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO chats (combined_id, user_a, user_b, last_message, last_sender, read_by_a, read_by_b, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (combined_id) DO UPDATE SET
				last_message = excluded.last_message, last_sender = excluded.last_sender,
				read_by_a = excluded.read_by_a, read_by_b = excluded.read_by_b, updated_at = excluded.updated_at
			WHERE chats.user_a = excluded.user_a AND chats.user_b = excluded.user_b`,
			msg.CombinedID, userA, userB, lastLine(msg.Text, msg.Images), msg.SenderID, readA, 1-readA, now)
		if err != nil {
			return fmt.Errorf("failed to update conversation %s: %w", msg.CombinedID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to update conversation %s: %w", msg.CombinedID, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: conversation %s belongs to other accounts", ErrInvalidParticipants, msg.CombinedID)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO chat_messages (id, combined_id, sender_id, text, images, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			msg.ID, msg.CombinedID, msg.SenderID, msg.Text, string(images), now); err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
		return nil
	})
}

// Participants returns the two uids of a conversation.
func (r *Repository) Participants(ctx context.Context, combinedID string) (string, string, error) {
	var a, b string
	err := r.db.QueryRowContext(ctx, `SELECT user_a, user_b FROM chats WHERE combined_id = ?`, combinedID).Scan(&a, &b)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", ErrNotFound
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to get conversation %s: %w", combinedID, err)
	}
	return a, b, nil
}

// Messages returns the latest limit messages, oldest first.
func (r *Repository) Messages(ctx context.Context, combinedID string, limit int) ([]Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, combined_id, sender_id, text, images, created_at
		FROM chat_messages
		WHERE combined_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, combinedID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages of %s: %w", combinedID, err)
	}
	defer rows.Close()

	msgs := []Message{}
	for rows.Next() {
		var (
			m       Message
			images  string
			created string
		)
		if err := rows.Scan(&m.ID, &m.CombinedID, &m.SenderID, &m.Text, &images, &created); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		if err := json.Unmarshal([]byte(images), &m.Images); err != nil {
			return nil, fmt.Errorf("message %s has invalid images: %w", m.ID, err)
		}
		if m.CreatedAt, err = database.ParseTime(created); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}
	slices.Reverse(msgs)
	return msgs, nil
}

// Conversations returns an account's inbox, most recent first.
func (r *Repository) Conversations(ctx context.Context, uid string) ([]Conversation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT combined_id,
		       CASE WHEN user_a = ? THEN user_b ELSE user_a END,
		       last_message, last_sender,
		       CASE WHEN user_a = ? THEN read_by_a ELSE read_by_b END,
		       updated_at
		FROM chats
		WHERE user_a = ? OR user_b = ?
		ORDER BY updated_at DESC`, uid, uid, uid, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations of %s: %w", uid, err)
	}
	defer rows.Close()

	convs := []Conversation{}
	for rows.Next() {
		var (
			c       Conversation
			read    int
			updated string
		)
		if err := rows.Scan(&c.CombinedID, &c.With, &c.LastMessage, &c.LastSender, &read, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		c.IsRead = read != 0
		if c.UpdatedAt, err = database.ParseTime(updated); err != nil {
			return nil, err
		}
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

// MarkRead flags a conversation as read by uid.
func (r *Repository) MarkRead(ctx context.Context, combinedID, uid string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE chats SET
			read_by_a = CASE WHEN user_a = ? THEN 1 ELSE read_by_a END,
			read_by_b = CASE WHEN user_b = ? THEN 1 ELSE read_by_b END
		WHERE combined_id = ?`, uid, uid, combinedID)
	if err != nil {
		return fmt.Errorf("failed to mark %s read: %w", combinedID, err)
	}
	return nil
}
