package normalize

import (
	"strconv"
	"strings"

	"github.com/wakai-center/wakai-backend/internal/core/domain"
)

// MapCaseRecord maps one authoritative intake row onto a MediationCase.
// Unlike GroupCases this has real participant data; the keyword rules only
// cover the free-text classification fields.
func (m *Mapper) MapCaseRecord(row domain.CaseRecord) domain.MediationCase {
	confirmations := strings.ToLower(row.ApplicantAttendanceConfirmation) + " " +
		strings.ToLower(row.RespondentAttendanceConfirmation)

	rut := row.ApplicantRUT
	if rut == "" {
		rut = PlaceholderRUT
	}

	mc := domain.MediationCase{
		ID:               strconv.FormatInt(row.CaseNuc, 10),
		ParticipantName:  row.ApplicantFullName,
		ParticipantName2: row.RespondentFullName,
		RUT:              rut,
		RUT2:             row.RespondentRUT,
		RelationshipType: matchRules(strings.ToLower(row.RelationshipType), relationshipRules, domain.RelationshipOther),
		MediationType:    matchRules(strings.ToLower(row.MediationType), mediationTypeRules, domain.MediationOther),
		MediationDate:    m.parseTime(row.SessionDate),
		Status:           domain.StatusScheduled,
		Description:      caseDescription(row),
		EmotionalStatus:  matchRules(confirmations, confirmationRules, domain.EmotionalNeutral),
	}

	mc.CreatedAt = m.now()
	if row.CreatedAt != "" {
		mc.CreatedAt = m.parseTime(row.CreatedAt)
	}
	mc.UpdatedAt = m.now()
	if row.UpdatedAt != "" {
		mc.UpdatedAt = m.parseTime(row.UpdatedAt)
	}
	return mc
}

// MapCaseRecords maps intake rows in order.
func (m *Mapper) MapCaseRecords(rows []domain.CaseRecord) []domain.MediationCase {
	cases := make([]domain.MediationCase, 0, len(rows))
	for _, row := range rows {
		cases = append(cases, m.MapCaseRecord(row))
	}
	return cases
}

func caseDescription(row domain.CaseRecord) string {
	var parts []string
	if row.Subject != "" {
		parts = append(parts, "Materia: "+row.Subject)
	}
	if row.SessionType != "" {
		parts = append(parts, "Tipo de sesión: "+row.SessionType)
	}
	if row.ApplicantQuestionsRequests != "" {
		parts = append(parts, "Solicitudes: "+row.ApplicantQuestionsRequests)
	}
	if len(parts) == 0 {
		return DefaultDescription
	}
	return strings.Join(parts, " | ")
}
