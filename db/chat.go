package db

import (
	"context"
	"time"
)

// ChatMessage (Сообщение): append-only, ordered by creation time.
type ChatMessage struct {
	ID         int64     `db:"id" json:"id"`
	VendorID   int64     `db:"vendor_id" json:"vendorId"`
	SenderID   int64     `db:"sender_id" json:"senderId"`
	SenderName string    `db:"sender_name" json:"senderName"`
	Content    string    `db:"content" json:"content"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// CreateChatMessage persists a message and fans out one notification row
// per chat-enabled decision-maker except the sender. The stream never
// learns about the write directly; it picks the message up on its next
// check against the store.
func (s *Storage) CreateChatMessage(ctx context.Context, m *ChatMessage) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
        INSERT INTO chat_messages (vendor_id, sender_id, content)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`
	err = tx.QueryRowxContext(ctx, query, m.VendorID, m.SenderID, m.Content).
		Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
        INSERT INTO chat_notifications (message_id, user_id)
        SELECT $1, u.id
        FROM users u
        WHERE u.role = 'DECISION_MAKER' AND u.can_access_chat = TRUE AND u.id <> $2`,
		m.ID, m.SenderID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Storage) GetChatMessages(ctx context.Context, vendorID int64) ([]ChatMessage, error) {
	messages := []ChatMessage{}
	query := `
        SELECT m.id, m.vendor_id, m.sender_id, u.name AS sender_name, m.content, m.created_at
        FROM chat_messages m
        JOIN users u ON u.id = m.sender_id
        WHERE m.vendor_id = $1
        ORDER BY m.created_at ASC`
	err := s.db.SelectContext(ctx, &messages, query, vendorID)
	return messages, err
}

// GetChatMessagesAfter returns the vendor's messages created strictly
// after the checkpoint, in creation order. The stream advances its
// checkpoint to the last returned message's timestamp.
func (s *Storage) GetChatMessagesAfter(ctx context.Context, vendorID int64, after time.Time) ([]ChatMessage, error) {
	messages := []ChatMessage{}
	query := `
        SELECT m.id, m.vendor_id, m.sender_id, u.name AS sender_name, m.content, m.created_at
        FROM chat_messages m
        JOIN users u ON u.id = m.sender_id
        WHERE m.vendor_id = $1 AND m.created_at > $2
        ORDER BY m.created_at ASC`
	err := s.db.SelectContext(ctx, &messages, query, vendorID, after)
	return messages, err
}

// UnreadNotificationCount backs the unread badge for a user.
func (s *Storage) UnreadNotificationCount(ctx context.Context, userID int64) (int, error) {
	var count int
	query := `SELECT COUNT(1) FROM chat_notifications WHERE user_id = $1 AND read = FALSE`
	err := s.db.GetContext(ctx, &count, query, userID)
	return count, err
}

// MarkNotificationsRead clears the unread badge for a vendor's messages.
func (s *Storage) MarkNotificationsRead(ctx context.Context, userID, vendorID int64) error {
	query := `
        UPDATE chat_notifications SET read = TRUE
        WHERE user_id = $1
          AND message_id IN (SELECT id FROM chat_messages WHERE vendor_id = $2)`
	_, err := s.db.ExecContext(ctx, query, userID, vendorID)
	return err
}
