package normalize

import (
	"testing"

	"github.com/wakai-center/wakai-backend/internal/core/domain"
)

func TestMapCaseRecord(t *testing.T) {
	m := testMapper()
	row := domain.CaseRecord{
		CaseNuc:                          3051,
		SessionDate:                      "2025-07-01T15:30:00Z",
		ApplicantFullName:                "María Soto",
		ApplicantRUT:                     "12.345.678-9",
		RespondentFullName:               "Jorge Díaz",
		RespondentRUT:                    "9.876.543-2",
		RelationshipType:                 "Padres separados",
		MediationType:                    "Régimen de visitas",
		Subject:                          "Pensión de alimentos",
		SessionType:                      "Primera sesión",
		ApplicantQuestionsRequests:       "Solicita cambio de horario",
		ApplicantAttendanceConfirmation:  "Confirmó asistencia",
		RespondentAttendanceConfirmation: "",
		CreatedAt:                        "2025-06-20T08:00:00Z",
		UpdatedAt:                        "2025-06-25T08:00:00Z",
	}

	got := m.MapCaseRecord(row)

	if got.ID != "3051" {
		t.Errorf("ID = %q", got.ID)
	}
	if got.RelationshipType != domain.RelationshipParents {
		t.Errorf("RelationshipType = %q", got.RelationshipType)
	}
	if got.MediationType != domain.MediationVisitation {
		t.Errorf("MediationType = %q", got.MediationType)
	}
	if got.Status != domain.StatusScheduled {
		t.Errorf("Status = %q", got.Status)
	}
	if got.EmotionalStatus != domain.EmotionalCooperative {
		t.Errorf("EmotionalStatus = %q", got.EmotionalStatus)
	}
	want := "Materia: Pensión de alimentos | Tipo de sesión: Primera sesión | Solicitudes: Solicita cambio de horario"
	if got.Description != want {
		t.Errorf("Description = %q", got.Description)
	}
	if got.RUT != "12.345.678-9" || got.RUT2 != "9.876.543-2" {
		t.Errorf("RUTs = %q %q", got.RUT, got.RUT2)
	}
}

func TestMapCaseRecordDefaults(t *testing.T) {
	m := testMapper()
	got := m.MapCaseRecord(domain.CaseRecord{CaseNuc: 7})

	if got.RUT != PlaceholderRUT {
		t.Errorf("RUT = %q, want placeholder", got.RUT)
	}
	if got.RelationshipType != domain.RelationshipOther {
		t.Errorf("RelationshipType = %q", got.RelationshipType)
	}
	if got.MediationType != domain.MediationOther {
		t.Errorf("MediationType = %q", got.MediationType)
	}
	if got.EmotionalStatus != domain.EmotionalNeutral {
		t.Errorf("EmotionalStatus = %q", got.EmotionalStatus)
	}
	if got.Description != DefaultDescription {
		t.Errorf("Description = %q", got.Description)
	}
	if !got.CreatedAt.Equal(testNow) || !got.UpdatedAt.Equal(testNow) {
		t.Errorf("timestamps should fall back to injected now")
	}
}

func TestMapCaseRecordTypeTables(t *testing.T) {
	m := testMapper()
	relTests := []struct {
		text string
		want domain.RelationshipType
	}{
		{"padre e hija", domain.RelationshipParents},
		{"co-parenting", domain.RelationshipParents},
		{"cuidadora principal", domain.RelationshipCaregivers},
		{"tutor legal", domain.RelationshipGuardians},
		{"hermanos", domain.RelationshipOther},
	}
	for _, tt := range relTests {
		got := m.MapCaseRecord(domain.CaseRecord{CaseNuc: 1, RelationshipType: tt.text})
		if got.RelationshipType != tt.want {
			t.Errorf("relationship %q = %q, want %q", tt.text, got.RelationshipType, tt.want)
		}
	}

	medTests := []struct {
		text string
		want domain.MediationType
	}{
		{"régimen de visitas", domain.MediationVisitation},
		{"comunicación directa", domain.MediationCommunication},
		{"cuidado personal", domain.MediationChildcare},
		{"convivencia familiar", domain.MediationCoexistence},
		{"otro asunto", domain.MediationOther},
	}
	for _, tt := range medTests {
		got := m.MapCaseRecord(domain.CaseRecord{CaseNuc: 1, MediationType: tt.text})
		if got.MediationType != tt.want {
			t.Errorf("mediation %q = %q, want %q", tt.text, got.MediationType, tt.want)
		}
	}
}
