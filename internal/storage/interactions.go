package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/wakai-center/wakai-backend/internal/core/domain"
)

// ConversationRecord is an alias for the domain type.
type ConversationRecord = domain.ConversationRecord

const interactionColumns = "case_nuc, source, user_type, conversation, chat_id, created_at"

// SaveInteraction logs one raw contact event (used by the relay bot and
// the notification job).
func (db *DB) SaveInteraction(ctx context.Context, rec *ConversationRecord) error {
	caseNuc := toInt8(rec.CaseNuc.Value, rec.CaseNuc.Valid)

	created := time.Now()
	if t, err := time.Parse(time.RFC3339, rec.CreatedAt); err == nil {
		created = t
	}

	if _, err := db.Pool.Exec(ctx,
		`INSERT INTO interactions (case_nuc, source, user_type, conversation, chat_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		caseNuc, string(rec.Source), string(rec.UserType), toText(rec.Text()), rec.ChatID, toTimestamptz(created),
	); err != nil {
		return fmt.Errorf("save interaction: %w", err)
	}

	return nil
}

// GetInteractions returns every interaction row, newest first.
func (db *DB) GetInteractions(ctx context.Context) ([]ConversationRecord, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+interactionColumns+` FROM interactions ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("get interactions: %w", err)
	}

	return scanInteractions(rows)
}

// GetInteractionsByCase returns a single case's interactions, oldest first,
// so downstream grouping sees them in event order.
func (db *DB) GetInteractionsByCase(ctx context.Context, caseNuc int64) ([]ConversationRecord, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+interactionColumns+` FROM interactions WHERE case_nuc = $1 ORDER BY created_at`, caseNuc)
	if err != nil {
		return nil, fmt.Errorf("get interactions by case: %w", err)
	}

	return scanInteractions(rows)
}

// GetChatIDs returns the distinct chat ids seen in interactions, in
// first-seen order.
func (db *DB) GetChatIDs(ctx context.Context) ([]string, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT chat_id FROM interactions WHERE chat_id <> '' GROUP BY chat_id ORDER BY MIN(created_at)`)
	if err != nil {
		return nil, fmt.Errorf("get chat ids: %w", err)
	}
	defer rows.Close()

	var ids []string

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan chat id: %w", err)
		}

		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat ids: %w", err)
	}

	return ids, nil
}

func scanInteractions(rows pgx.Rows) ([]ConversationRecord, error) {
	defer rows.Close()

	var recs []ConversationRecord

	for rows.Next() {
		var (
			caseNuc      pgtype.Int8
			source       string
			userType     string
			conversation pgtype.Text
			chatID       string
			createdAt    pgtype.Timestamptz
		)

		if err := rows.Scan(&caseNuc, &source, &userType, &conversation, &chatID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}

		rec := ConversationRecord{
			Source:    domain.Source(source),
			UserType:  domain.UserType(userType),
			ChatID:    chatID,
			CreatedAt: fromTimestamptz(createdAt).Format(time.RFC3339),
		}
		if caseNuc.Valid {
			rec.CaseNuc = domain.NewCaseNuc(caseNuc.Int64)
		}
		if conversation.Valid {
			text := conversation.String
			rec.Conversation = &text
		}

		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interactions: %w", err)
	}

	return recs, nil
}
