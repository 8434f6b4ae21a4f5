package normalize

import "github.com/wakai-center/wakai-backend/internal/core/domain"

// Fallback values used whenever the source data is missing or unusable.
// Keeping them named here makes every default a single point of change.
const (
	DefaultNote        = "Sin información disponible"
	DefaultDescription = "Caso de mediación familiar"
	PlaceholderRUT     = "00.000.000-0"
	LabelApplicant     = "Solicitante"
	LabelRespondent    = "Demandado"

	noteMaxRunes = 200
)

// rule pairs a keyword list with the value it yields. Rules are evaluated
// top-down over lower-cased text; the first rule with any matching keyword
// wins, so the order of each table below is part of the contract.
type rule[T any] struct {
	keywords []string
	value    T
}

var outcomeRules = []rule[domain.Outcome]{
	{[]string{"confirmó", "asistencia confirmada"}, domain.OutcomeSuccessful},
	{[]string{"no respondió", "sin respuesta"}, domain.OutcomeNoAnswer},
	{[]string{"rechazó", "declinó"}, domain.OutcomeDeclined},
	{[]string{"programado", "agendado"}, domain.OutcomeScheduled},
	{[]string{"positiva", "dispuesto"}, domain.OutcomePositiveDisposition},
	{[]string{"rechazó", "negó"}, domain.OutcomeRefused},
}

var statusRules = []rule[domain.CaseStatus]{
	{[]string{"completado", "finalizado"}, domain.StatusCompleted},
	{[]string{"en progreso", "en curso"}, domain.StatusInProgress},
	{[]string{"cancelado"}, domain.StatusCancelled},
}

var emotionRules = []rule[domain.EmotionalStatus]{
	{[]string{"cooperativo", "dispuesto"}, domain.EmotionalCooperative},
	{[]string{"resistente", "rechazó"}, domain.EmotionalResistant},
	{[]string{"inseguro", "dudoso"}, domain.EmotionalUnsure},
}

var confirmationRules = []rule[domain.EmotionalStatus]{
	{[]string{"confirmó", "sí"}, domain.EmotionalCooperative},
	{[]string{"no", "rechazó"}, domain.EmotionalResistant},
	{[]string{"duda", "inseguro"}, domain.EmotionalUnsure},
}

var relationshipRules = []rule[domain.RelationshipType]{
	{[]string{"padre", "parent"}, domain.RelationshipParents},
	{[]string{"cuidador", "caregiver"}, domain.RelationshipCaregivers},
	{[]string{"tutor", "guardian"}, domain.RelationshipGuardians},
}

var mediationTypeRules = []rule[domain.MediationType]{
	{[]string{"visita", "visitation"}, domain.MediationVisitation},
	{[]string{"comunicación", "communication"}, domain.MediationCommunication},
	{[]string{"cuidado", "childcare"}, domain.MediationChildcare},
	{[]string{"convivencia", "coexistence"}, domain.MediationCoexistence},
}
