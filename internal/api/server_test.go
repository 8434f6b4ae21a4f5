package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/wakai-center/wakai-backend/internal/assistant"
	"github.com/wakai-center/wakai-backend/internal/core/domain"
	"github.com/wakai-center/wakai-backend/internal/notify"
	"github.com/wakai-center/wakai-backend/internal/platform/config"
	db "github.com/wakai-center/wakai-backend/internal/storage"
	"github.com/wakai-center/wakai-backend/internal/voice"
)

type stubStore struct {
	interactions  []db.ConversationRecord
	cases         map[int64]db.CaseRecord
	conversation  db.ChatConversation
	conversations []db.ChatConversation
	messages      []db.ChatMessage
	chatIDs       []string

	savedSummaries []domain.VoiceSummary
	saveErr        error
}

func (s *stubStore) GetInteractions(context.Context) ([]db.ConversationRecord, error) {
	return s.interactions, nil
}

func (s *stubStore) GetInteractionsByCase(_ context.Context, caseNuc int64) ([]db.ConversationRecord, error) {
	var out []db.ConversationRecord
	for _, rec := range s.interactions {
		if rec.CaseNuc.Valid && rec.CaseNuc.Value == caseNuc {
			out = append(out, rec)
		}
	}

	return out, nil
}

func (s *stubStore) GetChatIDs(context.Context) ([]string, error) { return s.chatIDs, nil }

func (s *stubStore) GetCases(context.Context) ([]db.CaseRecord, error) {
	var out []db.CaseRecord
	for _, rec := range s.cases {
		out = append(out, rec)
	}

	return out, nil
}

func (s *stubStore) GetCase(_ context.Context, caseNuc int64) (db.CaseRecord, error) {
	rec, ok := s.cases[caseNuc]
	if !ok {
		return db.CaseRecord{}, db.ErrNotFound
	}

	return rec, nil
}

func (s *stubStore) GetConversation(_ context.Context, chatID string) (db.ChatConversation, error) {
	if s.conversation.ChatID != chatID {
		return db.ChatConversation{}, db.ErrNotFound
	}

	return s.conversation, nil
}

func (s *stubStore) ListConversations(context.Context) ([]db.ChatConversation, error) {
	return s.conversations, nil
}

func (s *stubStore) GetMessages(context.Context, string) ([]db.ChatMessage, error) {
	return s.messages, nil
}

func (s *stubStore) SaveVoiceSummary(_ context.Context, vs *domain.VoiceSummary) error {
	if s.saveErr != nil {
		return s.saveErr
	}

	s.savedSummaries = append(s.savedSummaries, *vs)

	return nil
}

func (s *stubStore) GetVoiceSummaries(_ context.Context, caseNuc int64) ([]domain.VoiceSummary, error) {
	var out []domain.VoiceSummary
	for _, vs := range s.savedSummaries {
		if vs.CaseNuc == caseNuc {
			out = append(out, vs)
		}
	}

	return out, nil
}

type stubAssistant struct {
	reply assistant.Reply
	err   error
}

func (a *stubAssistant) Chat(context.Context, []assistant.Message) (assistant.Reply, error) {
	return a.reply, a.err
}

type stubNotifier struct {
	summary notify.Summary
}

func (n *stubNotifier) SendAppointmentReminders(context.Context) (notify.Summary, error) {
	return n.summary, nil
}

type stubCaller struct {
	result  voice.CallResult
	err     error
	payload voice.OutboundCallPayload
}

func (c *stubCaller) TriggerOutboundCall(_ context.Context, payload voice.OutboundCallPayload) (voice.CallResult, error) {
	c.payload = payload

	return c.result, c.err
}

func strPtr(s string) *string { return &s }

func testRouter(t *testing.T, store *stubStore, opts Options) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zerolog.Nop()
	cfg := &config.Config{
		AppEnv:                 "local",
		ElevenLabsAgentID:      "agent-1",
		ElevenLabsAgentPhoneID: "phone-1",
	}

	return NewServer(cfg, store, opts, &logger).Router()
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid response body: %v\n%s", err, w.Body.String())
	}

	return out
}

func TestRootBanner(t *testing.T) {
	router := testRouter(t, &stubStore{}, Options{})

	w := doRequest(router, http.MethodGet, "/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["status"] != "ok" || body["service"] != "wakai-backend" {
		t.Errorf("banner = %v", body)
	}
}

func TestConversationsEndpoint(t *testing.T) {
	store := &stubStore{interactions: []db.ConversationRecord{
		{CaseNuc: domain.NewCaseNuc(10), Source: domain.SourceWhatsApp, Conversation: strPtr("hola"), ChatID: "c1"},
	}}
	router := testRouter(t, store, Options{})

	w := doRequest(router, http.MethodGet, "/api/conversations", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["success"] != true || body["count"] != float64(1) {
		t.Errorf("body = %v", body)
	}
}

func TestConversationByChatIDNotFound(t *testing.T) {
	router := testRouter(t, &stubStore{}, Options{})

	w := doRequest(router, http.MethodGet, "/api/conversations/nope", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["error"] != "Conversation not found" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestChatConversationsEndpoint(t *testing.T) {
	store := &stubStore{conversations: []db.ChatConversation{
		{ID: "id-1", ChatID: "c1", MessageCount: 4, LastMessage: "Adiós"},
		{ID: "id-2", ChatID: "c2", MessageCount: 1},
	}}
	router := testRouter(t, store, Options{})

	w := doRequest(router, http.MethodGet, "/api/chat-conversations", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["success"] != true || body["count"] != float64(2) {
		t.Fatalf("body = %v", body)
	}

	data, ok := body["data"].([]any)
	if !ok || len(data) != 2 {
		t.Fatalf("data = %v", body["data"])
	}

	first, _ := data[0].(map[string]any)
	if first["chatId"] != "c1" || first["lastMessage"] != "Adiós" {
		t.Errorf("first = %v", first)
	}
}

func TestCaseNotFound(t *testing.T) {
	router := testRouter(t, &stubStore{cases: map[int64]db.CaseRecord{}}, Options{})

	for _, path := range []string{"/api/case/999", "/api/case/abc", "/api/case-report/999"} {
		w := doRequest(router, http.MethodGet, path, "")
		if w.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d", path, w.Code)
			continue
		}

		if body := decodeBody(t, w); body["error"] != "Caso no encontrado" {
			t.Errorf("%s: error = %v", path, body["error"])
		}
	}
}

func TestCaseReportShape(t *testing.T) {
	store := &stubStore{cases: map[int64]db.CaseRecord{
		12345: {
			CaseNuc:           12345,
			SessionDate:       "2025-07-01T10:00:00Z",
			MatterType:        "Relación directa y regular",
			SessionType:       "Primera sesión",
			ApplicantFullName: "María Soto",
			PensionActual:     "$200.000",
		},
	}}
	router := testRouter(t, store, Options{})

	w := doRequest(router, http.MethodGet, "/api/case-report/12345", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	body := decodeBody(t, w)

	reporte, ok := body["reporte"].(map[string]any)
	if !ok {
		t.Fatalf("no reporte in body: %v", body)
	}

	if reporte["nuc"] != "12345" || reporte["materia"] != "Relación directa y regular" {
		t.Errorf("reporte = %v", reporte)
	}

	datos, ok := reporte["datosAdicionales"].(map[string]any)
	if !ok {
		t.Fatalf("no datosAdicionales: %v", reporte)
	}

	if datos["pensionActual"] != "$200.000" {
		t.Errorf("pensionActual = %v", datos["pensionActual"])
	}

	if _, present := datos["regimenVisitasActual"]; present {
		t.Error("empty additional field should be omitted")
	}
}

func TestContactScoringEndpoint(t *testing.T) {
	store := &stubStore{interactions: []db.ConversationRecord{
		{CaseNuc: domain.NewCaseNuc(10), Source: domain.SourceWhatsApp, Conversation: strPtr("confirmó asistencia"), CreatedAt: "2025-06-14T10:00:00Z", ChatID: "c1"},
		{CaseNuc: domain.NewCaseNuc(10), Source: domain.SourcePhoneCall, Conversation: strPtr("no respondió"), CreatedAt: "2025-06-13T10:00:00Z", ChatID: "c1"},
	}}
	router := testRouter(t, store, Options{})

	w := doRequest(router, http.MethodGet, "/api/contact-scoring/10", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["caseNuc"] != "10" {
		t.Errorf("caseNuc = %v", body["caseNuc"])
	}

	metrics, ok := body["metrics"].(map[string]any)
	if !ok {
		t.Fatalf("no metrics: %v", body)
	}

	if metrics["totalAttempts"] != float64(2) {
		t.Errorf("totalAttempts = %v", metrics["totalAttempts"])
	}

	for _, key := range []string{"successRate", "scoreGeneral", "scoreBreakdown", "contactsByChannel", "sentiment"} {
		if _, present := metrics[key]; !present {
			t.Errorf("metrics missing %q", key)
		}
	}
}

func TestCaseSummariesEndpoint(t *testing.T) {
	store := &stubStore{cases: map[int64]db.CaseRecord{
		12345: {CaseNuc: 12345, ApplicantFullName: "María Soto", RespondentFullName: "Jorge Pérez", SessionDate: "2025-07-01T10:00:00Z"},
	}}
	router := testRouter(t, store, Options{})

	w := doRequest(router, http.MethodGet, "/api/case-summaries", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["count"] != float64(1) {
		t.Fatalf("count = %v", body["count"])
	}

	data, ok := body["data"].([]any)
	if !ok || len(data) != 1 {
		t.Fatalf("data = %v", body["data"])
	}

	summary, _ := data[0].(map[string]any)
	if summary["id"] != "12345" || summary["participantName"] != "María Soto" {
		t.Errorf("summary = %v", summary)
	}
}

func TestChatEndpoint(t *testing.T) {
	router := testRouter(t, &stubStore{}, Options{
		Assistant: &stubAssistant{reply: assistant.Reply{Message: "Hola, ¿en qué puedo ayudarte?"}},
	})

	w := doRequest(router, http.MethodPost, "/api/chat", `{"messages":[{"role":"user","content":"hola"}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	if body := decodeBody(t, w); body["message"] != "Hola, ¿en qué puedo ayudarte?" {
		t.Errorf("body = %v", body)
	}
}

func TestChatEndpointWithoutAssistant(t *testing.T) {
	router := testRouter(t, &stubStore{}, Options{})

	w := doRequest(router, http.MethodPost, "/api/chat", `{"messages":[]}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestSendNotificationsEndpoint(t *testing.T) {
	notifier := &stubNotifier{summary: notify.Summary{
		CasesCount:        2,
		NotificationsSent: 3,
		Results:           []notify.Result{{CaseNuc: "10", Sent: true}},
	}}
	router := testRouter(t, &stubStore{}, Options{Notifier: notifier})

	w := doRequest(router, http.MethodPost, "/api/send-notifications", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["casesCount"] != float64(2) || body["notificationsSent"] != float64(3) {
		t.Errorf("body = %v", body)
	}
}

func TestOutboundCallCaseNotFound(t *testing.T) {
	router := testRouter(t, &stubStore{cases: map[int64]db.CaseRecord{}}, Options{Caller: &stubCaller{}})

	for _, body := range []string{`{}`, `{"caseNuc":"no"}`, `{"caseNuc":999}`} {
		w := doRequest(router, http.MethodPost, "/ai-tools/outbound-call", body)
		if w.Code != http.StatusNotFound {
			t.Errorf("body %s: status = %d", body, w.Code)
			continue
		}

		if resp := decodeBody(t, w); resp["error"] != "CASE_NOT_FOUND" {
			t.Errorf("body %s: error = %v", body, resp["error"])
		}
	}
}

func TestOutboundCallTriggered(t *testing.T) {
	caller := &stubCaller{result: voice.CallResult{Status: http.StatusOK, Body: json.RawMessage(`{"call_id":"abc"}`)}}
	store := &stubStore{cases: map[int64]db.CaseRecord{
		12345: {CaseNuc: 12345, RespondentFullName: "Jorge Pérez", RespondentMobile: "912345678"},
	}}
	router := testRouter(t, store, Options{Caller: caller})

	w := doRequest(router, http.MethodPost, "/ai-tools/outbound-call", `{"caseNuc":12345}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if body["status"] != "CALL_TRIGGERED" || body["toNumber"] != "+56912345678" {
		t.Errorf("body = %v", body)
	}

	if caller.payload.ClientData.DynamicVariables.RequestedName != "Jorge Pérez" {
		t.Errorf("payload variables = %+v", caller.payload.ClientData.DynamicVariables)
	}
}

func TestOutboundCallProviderError(t *testing.T) {
	caller := &stubCaller{result: voice.CallResult{Status: http.StatusUnauthorized, Body: json.RawMessage(`{"detail":"bad key"}`)}}
	store := &stubStore{cases: map[int64]db.CaseRecord{
		12345: {CaseNuc: 12345, RespondentMobile: "912345678"},
	}}
	router := testRouter(t, store, Options{Caller: caller})

	w := doRequest(router, http.MethodPost, "/ai-tools/outbound-call", `{"caseNuc":12345}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["status"] != "CALL_FAILED" || body["error"] != "ELEVENLABS_ERROR" {
		t.Errorf("body = %v", body)
	}

	details, ok := body["details"].(map[string]any)
	if !ok || details["status"] != float64(http.StatusUnauthorized) {
		t.Errorf("details = %v", body["details"])
	}
}

func TestOutboundCallNoPhoneNumber(t *testing.T) {
	store := &stubStore{cases: map[int64]db.CaseRecord{12345: {CaseNuc: 12345}}}
	router := testRouter(t, store, Options{Caller: &stubCaller{}})

	w := doRequest(router, http.MethodPost, "/ai-tools/outbound-call", `{"caseNuc":12345}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", w.Code)
	}

	if body := decodeBody(t, w); body["status"] != "CALL_FAILED" {
		t.Errorf("body = %v", body)
	}
}

func TestPostCallWebhookStored(t *testing.T) {
	store := &stubStore{}
	router := testRouter(t, store, Options{})

	payload := `{"data":{
		"conversation_id":"conv-1",
		"analysis":{"transcript_summary":"Resumen"},
		"transcript":[{"role":"agent","message":"Adiós"}],
		"conversation_initiation_client_data":{"dynamic_variables":{"case_id":"12345"}}
	}}`

	w := doRequest(router, http.MethodPost, "/ai-tools/elevenlabs/post-call", payload)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["status"] != "stored" || body["case_nuc"] != float64(12345) {
		t.Errorf("body = %v", body)
	}

	if len(store.savedSummaries) != 1 || store.savedSummaries[0].LastMessage != "Adiós" {
		t.Errorf("saved = %+v", store.savedSummaries)
	}

	w = doRequest(router, http.MethodGet, "/api/voice-summaries/12345", "")
	if w.Code != http.StatusOK {
		t.Fatalf("voice-summaries status = %d", w.Code)
	}

	if body := decodeBody(t, w); body["count"] != float64(1) {
		t.Errorf("voice-summaries body = %v", body)
	}
}

func TestPostCallWebhookAlways200(t *testing.T) {
	tests := []struct {
		name    string
		store   *stubStore
		payload string
		reason  string
	}{
		{"missing conversation id", &stubStore{}, `{"data":{}}`, "parsing_error"},
		{"missing case id", &stubStore{}, `{"data":{"conversation_id":"c"}}`, "missing_case_id"},
		{
			"db error",
			&stubStore{saveErr: errors.New("connection refused")},
			`{"data":{"conversation_id":"c","conversation_initiation_client_data":{"dynamic_variables":{"case_id":"1"}}}}`,
			"db_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := testRouter(t, tt.store, Options{})

			w := doRequest(router, http.MethodPost, "/ai-tools/elevenlabs/post-call", tt.payload)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, webhook must always answer 200", w.Code)
			}

			body := decodeBody(t, w)
			if body["status"] != "error_storing" || body["reason"] != tt.reason {
				t.Errorf("body = %v", body)
			}
		})
	}
}
