package normalize

import (
	"strings"
	"testing"
	"time"

	"github.com/wakai-center/wakai-backend/internal/core/domain"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func testMapper() *Mapper {
	return New(func() time.Time { return testNow })
}

func strPtr(s string) *string { return &s }

func TestOutcome(t *testing.T) {
	tests := []struct {
		name string
		text string
		want domain.Outcome
	}{
		{"confirmation", "El cliente confirmó asistencia", domain.OutcomeSuccessful},
		{"confirmed attendance phrase", "asistencia confirmada para el lunes", domain.OutcomeSuccessful},
		{"no answer", "No respondió al llamado", domain.OutcomeNoAnswer},
		{"no response phrase", "llamada sin respuesta", domain.OutcomeNoAnswer},
		{"declined", "rechazó la propuesta de sesión", domain.OutcomeDeclined},
		{"declined verb", "declinó participar", domain.OutcomeDeclined},
		{"scheduled", "programado para la próxima semana", domain.OutcomeScheduled},
		{"scheduled synonym", "quedó agendado", domain.OutcomeScheduled},
		{"positive disposition", "mostró una actitud positiva", domain.OutcomePositiveDisposition},
		{"willing", "se mostró dispuesto a conversar", domain.OutcomePositiveDisposition},
		{"refused", "negó haber recibido la citación", domain.OutcomeRefused},
		{"empty text", "", domain.OutcomeSuccessful},
		{"no keywords", "conversación general sin marcas", domain.OutcomeSuccessful},
		{"case insensitive", "EL CLIENTE CONFIRMÓ", domain.OutcomeSuccessful},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Outcome(tt.text); got != tt.want {
				t.Errorf("Outcome(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestOutcomeRuleOrder(t *testing.T) {
	// "rechazó" appears in both the decline and the refusal rules; the
	// decline rule comes first and must win.
	if got := Outcome("rechazó todo"); got != domain.OutcomeDeclined {
		t.Errorf("Outcome = %q, want %q", got, domain.OutcomeDeclined)
	}
	// Confirmation outranks a later positive-disposition keyword.
	if got := Outcome("confirmó y quedó dispuesto"); got != domain.OutcomeSuccessful {
		t.Errorf("Outcome = %q, want %q", got, domain.OutcomeSuccessful)
	}
}

func TestChannel(t *testing.T) {
	tests := []struct {
		source domain.Source
		want   domain.Channel
	}{
		{domain.SourceWhatsApp, domain.ChannelWhatsApp},
		{domain.SourcePhoneCall, domain.ChannelPhone},
		{domain.SourceMail, domain.ChannelEmail},
		{domain.SourceTelegram, domain.ChannelTelegram},
		{domain.Source("carrier_pigeon"), domain.ChannelWhatsApp},
		{domain.Source(""), domain.ChannelWhatsApp},
	}
	for _, tt := range tests {
		if got := Channel(tt.source); got != tt.want {
			t.Errorf("Channel(%q) = %q, want %q", tt.source, got, tt.want)
		}
	}
}

func TestNote(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"empty", "", DefaultNote},
		{"plain", "Llamada realizada", "Llamada realizada"},
		{"timestamp stripped", "[10:30 AM] Llamada realizada", "Llamada realizada"},
		{"bot prefix stripped", "Nexo Bot: Hola Juan", "Hola Juan"},
		{"both stripped", "[9:05 PM] Nexo Bot: Hola Juan", "Hola Juan"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Note(tt.text); got != tt.want {
				t.Errorf("Note(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestNoteTruncation(t *testing.T) {
	long := strings.Repeat("á", 250)
	got := Note(long)
	if want := strings.Repeat("á", 200) + "..."; got != want {
		t.Errorf("truncated note has %d runes, want 203", len([]rune(got)))
	}
	exact := strings.Repeat("x", 200)
	if got := Note(exact); got != exact {
		t.Errorf("200-rune note should not be truncated")
	}
}

func TestParticipantLabel(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		userType domain.UserType
		want     string
	}{
		{"greeting with full name", "Hola María González, le recordamos su cita", domain.UserApplicant, "María González"},
		{"greeting single name", "hola Juan como está", domain.UserRespondent, "Juan"},
		{"lowercase prose after name", "Hola María le recordamos su cita", domain.UserApplicant, "María"},
		{"lowercase name falls back", "hola maría gonzález", domain.UserApplicant, LabelApplicant},
		{"no greeting applicant", "Llamada sin saludo", domain.UserApplicant, LabelApplicant},
		{"no greeting respondent", "Llamada sin saludo", domain.UserRespondent, LabelRespondent},
		{"empty respondent", "", domain.UserRespondent, LabelRespondent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParticipantLabel(tt.text, tt.userType); got != tt.want {
				t.Errorf("ParticipantLabel = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMapRecord(t *testing.T) {
	m := testMapper()
	rec := domain.ConversationRecord{
		CaseNuc:      domain.NewCaseNuc(1042),
		Source:       domain.SourcePhoneCall,
		UserType:     domain.UserApplicant,
		Conversation: strPtr("[10:30 AM] Nexo Bot: Hola Carla, confirmó asistencia"),
		CreatedAt:    "2025-06-13T09:00:00Z",
		ChatID:       "555",
	}
	got := m.MapRecord(rec)

	if got.ID != "1042-555-2025-06-13T09:00:00Z" {
		t.Errorf("ID = %q", got.ID)
	}
	if got.CaseID != "1042" {
		t.Errorf("CaseID = %q", got.CaseID)
	}
	if got.Channel != domain.ChannelPhone {
		t.Errorf("Channel = %q", got.Channel)
	}
	if got.Outcome != domain.OutcomeSuccessful {
		t.Errorf("Outcome = %q", got.Outcome)
	}
	if got.Note != "Hola Carla, confirmó asistencia" {
		t.Errorf("Note = %q", got.Note)
	}
	if got.ParticipantLabel != "Carla" {
		t.Errorf("ParticipantLabel = %q", got.ParticipantLabel)
	}
	if !got.OccurredAt.Equal(time.Date(2025, 6, 13, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("OccurredAt = %v", got.OccurredAt)
	}
}

func TestMapRecordUnparsableDate(t *testing.T) {
	m := testMapper()
	got := m.MapRecord(domain.ConversationRecord{
		CaseNuc:   domain.NewCaseNuc(1),
		Source:    domain.SourceWhatsApp,
		CreatedAt: "no es una fecha",
	})
	if !got.OccurredAt.Equal(testNow) {
		t.Errorf("OccurredAt = %v, want injected now %v", got.OccurredAt, testNow)
	}
}

func TestMapRecordsFiltersInvalidCase(t *testing.T) {
	m := testMapper()
	recs := []domain.ConversationRecord{
		{CaseNuc: domain.NewCaseNuc(1), Source: domain.SourceWhatsApp, CreatedAt: "2025-06-01T00:00:00Z", ChatID: "a"},
		{CaseNuc: domain.CaseNuc{}, Source: domain.SourceMail, CreatedAt: "2025-06-02T00:00:00Z", ChatID: "b"},
		{CaseNuc: domain.NewCaseNuc(2), Source: domain.SourceTelegram, CreatedAt: "2025-06-03T00:00:00Z", ChatID: "c"},
		{CaseNuc: domain.CaseNuc{}, Source: domain.SourcePhoneCall, CreatedAt: "2025-06-04T00:00:00Z", ChatID: "d"},
	}
	got := m.MapRecords(recs)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	// Stable filter: surviving records keep their relative order.
	if got[0].CaseID != "1" || got[1].CaseID != "2" {
		t.Errorf("order = [%s %s], want [1 2]", got[0].CaseID, got[1].CaseID)
	}
}
