package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ChatConversation is one relay-bot conversation keyed by Telegram chat id.
type ChatConversation struct {
	ID           string    `json:"id"`
	ChatID       string    `json:"chatId"`
	Username     string    `json:"username,omitempty"`
	MessageCount int       `json:"messageCount"`
	LastMessage  string    `json:"lastMessage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ChatMessage is one stored turn of a relay conversation.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// GetOrCreateConversation finds the conversation for a chat id, creating
// it on first contact.
func (db *DB) GetOrCreateConversation(ctx context.Context, chatID, username string) (ChatConversation, error) {
	var conv ChatConversation

	err := db.Pool.QueryRow(ctx,
		`INSERT INTO chat_conversations (id, chat_id, username)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (chat_id) DO UPDATE SET updated_at = now()
		 RETURNING id, chat_id, username, created_at, updated_at`,
		uuid.NewString(), chatID, username,
	).Scan(&conv.ID, &conv.ChatID, &conv.Username, &conv.CreatedAt, &conv.UpdatedAt)
	if err != nil {
		return ChatConversation{}, fmt.Errorf("get or create conversation: %w", err)
	}

	return conv, nil
}

// GetConversation returns the conversation for a chat id, or ErrNotFound.
func (db *DB) GetConversation(ctx context.Context, chatID string) (ChatConversation, error) {
	var conv ChatConversation

	err := db.Pool.QueryRow(ctx,
		`SELECT c.id, c.chat_id, c.username, c.created_at, c.updated_at,
		        (SELECT COUNT(*) FROM chat_messages m WHERE m.conversation_id = c.id),
		        COALESCE((SELECT m.content FROM chat_messages m
		                  WHERE m.conversation_id = c.id ORDER BY m.created_at DESC LIMIT 1), '')
		 FROM chat_conversations c WHERE c.chat_id = $1`,
		chatID,
	).Scan(&conv.ID, &conv.ChatID, &conv.Username, &conv.CreatedAt, &conv.UpdatedAt, &conv.MessageCount, &conv.LastMessage)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ChatConversation{}, ErrNotFound
		}

		return ChatConversation{}, fmt.Errorf("get conversation: %w", err)
	}

	return conv, nil
}

// ListConversations returns every relay conversation with its message
// count and last message, most recently updated first.
func (db *DB) ListConversations(ctx context.Context) ([]ChatConversation, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT c.id, c.chat_id, c.username, c.created_at, c.updated_at,
		        (SELECT COUNT(*) FROM chat_messages m WHERE m.conversation_id = c.id),
		        COALESCE((SELECT m.content FROM chat_messages m
		                  WHERE m.conversation_id = c.id ORDER BY m.created_at DESC LIMIT 1), '')
		 FROM chat_conversations c ORDER BY c.updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var convs []ChatConversation

	for rows.Next() {
		var conv ChatConversation
		if err := rows.Scan(&conv.ID, &conv.ChatID, &conv.Username, &conv.CreatedAt, &conv.UpdatedAt,
			&conv.MessageCount, &conv.LastMessage); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}

		convs = append(convs, conv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversations: %w", err)
	}

	return convs, nil
}

// AppendMessage stores one turn and bumps the conversation's updated_at.
func (db *DB) AppendMessage(ctx context.Context, conversationID, role, content string) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin append message: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx,
		`INSERT INTO chat_messages (id, conversation_id, role, content) VALUES ($1, $2, $3, $4)`,
		uuid.NewString(), conversationID, role, SanitizeUTF8(content),
	); err != nil {
		return fmt.Errorf("append message: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE chat_conversations SET updated_at = now() WHERE id = $1`, conversationID,
	); err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit append message: %w", err)
	}

	return nil
}

// GetMessages returns a conversation's turns in chronological order.
func (db *DB) GetMessages(ctx context.Context, conversationID string) ([]ChatMessage, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, role, content, created_at FROM chat_messages
		 WHERE conversation_id = $1 ORDER BY created_at`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("get messages: %w", err)
	}
	defer rows.Close()

	var msgs []ChatMessage

	for rows.Next() {
		var m ChatMessage
		if err := rows.Scan(&m.ID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}

		msgs = append(msgs, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return msgs, nil
}

// ClearConversation deletes a conversation's history but keeps the
// conversation row, so the chat id stays known.
func (db *DB) ClearConversation(ctx context.Context, chatID string) error {
	if _, err := db.Pool.Exec(ctx,
		`DELETE FROM chat_messages WHERE conversation_id IN
		 (SELECT id FROM chat_conversations WHERE chat_id = $1)`, chatID,
	); err != nil {
		return fmt.Errorf("clear conversation: %w", err)
	}

	return nil
}
