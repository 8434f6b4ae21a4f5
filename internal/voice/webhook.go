package voice

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/wakai-center/wakai-backend/internal/core/domain"
)

// Webhook parse failures. The HTTP handler maps these onto reason codes;
// the webhook endpoint itself always answers 200 so the provider never
// disables it.
var (
	ErrMissingConversationID = errors.New("missing conversation_id in webhook")
	ErrMissingCaseID         = errors.New("case_id not found in dynamic_variables")
	ErrInvalidCaseID         = errors.New("case_id is not a number")
)

type transcriptEntry struct {
	Role    string  `json:"role"`
	Message *string `json:"message"`
}

type webhookData struct {
	ConversationID string `json:"conversation_id"`
	Analysis       struct {
		TranscriptSummary string `json:"transcript_summary"`
	} `json:"analysis"`
	Transcript []transcriptEntry `json:"transcript"`
	ClientData struct {
		DynamicVariables struct {
			CaseID *domain.CaseNuc `json:"case_id"`
		} `json:"dynamic_variables"`
	} `json:"conversation_initiation_client_data"`
}

// ParseWebhook extracts a voice summary from a post-call webhook body.
// Newer payloads nest everything under "data"; older ones carry the same
// fields at the root. The full raw body is preserved in the summary.
func ParseWebhook(raw []byte) (domain.VoiceSummary, error) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(raw, &envelope); err != nil {
		return domain.VoiceSummary{}, fmt.Errorf("parse webhook: %w", err)
	}

	body := raw
	if len(envelope.Data) > 0 && !bytes.Equal(envelope.Data, []byte("null")) {
		body = envelope.Data
	}

	var data webhookData
	if err := json.Unmarshal(body, &data); err != nil {
		return domain.VoiceSummary{}, fmt.Errorf("parse webhook data: %w", err)
	}

	if data.ConversationID == "" {
		return domain.VoiceSummary{}, ErrMissingConversationID
	}

	caseID := data.ClientData.DynamicVariables.CaseID
	if caseID == nil {
		return domain.VoiceSummary{}, ErrMissingCaseID
	}

	if !caseID.Valid {
		return domain.VoiceSummary{}, ErrInvalidCaseID
	}

	return domain.VoiceSummary{
		CaseNuc:        caseID.Value,
		ConversationID: data.ConversationID,
		LastMessage:    lastAgentMessage(data.Transcript),
		Summary:        strings.TrimSpace(data.Analysis.TranscriptSummary),
		Payload:        json.RawMessage(raw),
	}, nil
}

// lastAgentMessage picks the final agent utterance from a transcript,
// falling back to the last non-empty message from any role.
func lastAgentMessage(transcript []transcriptEntry) string {
	for i := len(transcript) - 1; i >= 0; i-- {
		e := transcript[i]
		if e.Role == "agent" && e.Message != nil && *e.Message != "" {
			return *e.Message
		}
	}

	for i := len(transcript) - 1; i >= 0; i-- {
		e := transcript[i]
		if e.Message != nil && *e.Message != "" {
			return *e.Message
		}
	}

	return ""
}
