package db

import (
	"context"
	"fmt"

	"github.com/wakai-center/wakai-backend/internal/core/domain"
)

// VoiceSummary is an alias for the domain type.
type VoiceSummary = domain.VoiceSummary

// SaveVoiceSummary stores one post-call webhook result.
func (db *DB) SaveVoiceSummary(ctx context.Context, vs *VoiceSummary) error {
	if _, err := db.Pool.Exec(ctx,
		`INSERT INTO voice_summaries (case_nuc, conversation_id, last_message, summary, payload)
		 VALUES ($1, $2, $3, $4, $5)`,
		vs.CaseNuc, vs.ConversationID, toText(vs.LastMessage), toText(vs.Summary), vs.Payload,
	); err != nil {
		return fmt.Errorf("save voice summary: %w", err)
	}

	return nil
}

// GetVoiceSummaries returns a case's stored voice summaries, newest first.
func (db *DB) GetVoiceSummaries(ctx context.Context, caseNuc int64) ([]VoiceSummary, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, case_nuc, conversation_id, COALESCE(last_message, ''), COALESCE(summary, ''), payload, created_at
		 FROM voice_summaries WHERE case_nuc = $1 ORDER BY created_at DESC`, caseNuc)
	if err != nil {
		return nil, fmt.Errorf("get voice summaries: %w", err)
	}
	defer rows.Close()

	var summaries []VoiceSummary

	for rows.Next() {
		var vs VoiceSummary
		if err := rows.Scan(&vs.ID, &vs.CaseNuc, &vs.ConversationID, &vs.LastMessage, &vs.Summary, &vs.Payload, &vs.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan voice summary: %w", err)
		}

		summaries = append(summaries, vs)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate voice summaries: %w", err)
	}

	return summaries, nil
}
