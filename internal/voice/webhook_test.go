package voice

import (
	"errors"
	"fmt"
	"testing"
)

func webhookJSON(caseID string) string {
	return fmt.Sprintf(`{
		"type": "post_call_transcription",
		"data": {
			"conversation_id": "conv-1",
			"analysis": {"transcript_summary": "  Se confirmó la asistencia.  "},
			"transcript": [
				{"role": "agent", "message": "Hola, le llamo del centro de mediación."},
				{"role": "user", "message": "Sí, confirmo."},
				{"role": "agent", "message": "Perfecto, hasta luego."},
				{"role": "user", "message": null}
			],
			"conversation_initiation_client_data": {
				"dynamic_variables": {"case_id": %s}
			}
		}
	}`, caseID)
}

func TestParseWebhook(t *testing.T) {
	sum, err := ParseWebhook([]byte(webhookJSON(`"12345"`)))
	if err != nil {
		t.Fatal(err)
	}

	if sum.CaseNuc != 12345 {
		t.Errorf("CaseNuc = %d", sum.CaseNuc)
	}
	if sum.ConversationID != "conv-1" {
		t.Errorf("ConversationID = %q", sum.ConversationID)
	}
	if sum.Summary != "Se confirmó la asistencia." {
		t.Errorf("Summary = %q", sum.Summary)
	}
	if sum.LastMessage != "Perfecto, hasta luego." {
		t.Errorf("LastMessage = %q", sum.LastMessage)
	}
	if len(sum.Payload) == 0 {
		t.Error("raw payload not preserved")
	}
}

func TestParseWebhookNumericCaseID(t *testing.T) {
	sum, err := ParseWebhook([]byte(webhookJSON(`12345`)))
	if err != nil {
		t.Fatal(err)
	}
	if sum.CaseNuc != 12345 {
		t.Errorf("CaseNuc = %d", sum.CaseNuc)
	}
}

func TestParseWebhookRootLevelPayload(t *testing.T) {
	raw := `{
		"conversation_id": "conv-2",
		"analysis": {"transcript_summary": "Resumen"},
		"transcript": [{"role": "user", "message": "Aló"}],
		"conversation_initiation_client_data": {
			"dynamic_variables": {"case_id": "99"}
		}
	}`

	sum, err := ParseWebhook([]byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	if sum.ConversationID != "conv-2" || sum.CaseNuc != 99 {
		t.Errorf("got %q / %d", sum.ConversationID, sum.CaseNuc)
	}
	if sum.LastMessage != "Aló" {
		t.Errorf("LastMessage = %q, want any-role fallback", sum.LastMessage)
	}
}

func TestParseWebhookErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"missing conversation id", `{"data": {"transcript": []}}`, ErrMissingConversationID},
		{"missing case id", `{"data": {"conversation_id": "c"}}`, ErrMissingCaseID},
		{"non numeric case id", webhookJSON(`"no-es-numero"`), ErrInvalidCaseID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseWebhook([]byte(tt.raw))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseWebhookMalformed(t *testing.T) {
	if _, err := ParseWebhook([]byte("{not json")); err == nil {
		t.Error("expected error for malformed body")
	}
}

func TestLastAgentMessageEmptyTranscript(t *testing.T) {
	if got := lastAgentMessage(nil); got != "" {
		t.Errorf("lastAgentMessage(nil) = %q", got)
	}
}
