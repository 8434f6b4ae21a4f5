package voice

import (
	"strconv"
	"strings"

	"github.com/wakai-center/wakai-backend/internal/core/domain"
)

// Script fallbacks used when a case row lacks the corresponding field.
const (
	fallbackRespondent = "el solicitado"
	fallbackApplicant  = "el solicitante"
	fallbackCenter     = "Centro de Mediación"
	fallbackDate       = "fecha por confirmar"
	fallbackLocation   = "ubicación por confirmar"
)

// DynamicVariables feed the voice agent's call script. The snake_case
// keys are the agent-side contract.
type DynamicVariables struct {
	RequestedName   string `json:"requested_name"`
	RequesterName   string `json:"requester_name"`
	CenterName      string `json:"center_name"`
	HearingDate     string `json:"hearing_date"`
	HearingLocation string `json:"hearing_location"`
	CaseID          string `json:"case_id"`
	SessionType     string `json:"session_type,omitempty"`
	MediationType   string `json:"mediation_type,omitempty"`
}

// OutboundCallPayload is the convai/twilio outbound call request body.
type OutboundCallPayload struct {
	AgentID            string `json:"agent_id"`
	AgentPhoneNumberID string `json:"agent_phone_number_id"`
	ToNumber           string `json:"to_number"`
	ClientData         struct {
		DynamicVariables DynamicVariables `json:"dynamic_variables"`
	} `json:"conversation_initiation_client_data"`
}

// CenterName derives the center's display name from a case row, with an
// optional configured override.
func CenterName(rec domain.CaseRecord, override string) string {
	if override != "" {
		return override
	}

	var parts []string

	if rec.CenterCommune != "" {
		parts = append(parts, rec.CenterCommune)
	}

	if rec.CenterRegion != "" {
		parts = append(parts, rec.CenterRegion)
	}

	if len(parts) > 0 {
		return "Centro de Mediación " + strings.Join(parts, ", ")
	}

	return fallbackCenter
}

// HearingLocation composes the full hearing address from a case row.
func HearingLocation(rec domain.CaseRecord) string {
	var parts []string

	if rec.CenterAddress != "" {
		parts = append(parts, rec.CenterAddress)
	}

	if rec.CenterCommune != "" {
		parts = append(parts, rec.CenterCommune)
	}

	if rec.CenterRegion != "" {
		parts = append(parts, rec.CenterRegion)
	}

	if len(parts) == 0 {
		return fallbackLocation
	}

	return strings.Join(parts, ", ")
}

// BuildDynamicVariables maps a case row onto the call-script variables.
func BuildDynamicVariables(rec domain.CaseRecord, centerOverride string) DynamicVariables {
	v := DynamicVariables{
		RequestedName:   rec.RespondentFullName,
		RequesterName:   rec.ApplicantFullName,
		CenterName:      CenterName(rec, centerOverride),
		HearingDate:     rec.SessionDateText,
		HearingLocation: HearingLocation(rec),
		CaseID:          strconv.FormatInt(rec.CaseNuc, 10),
		SessionType:     rec.SessionType,
		MediationType:   rec.MatterType,
	}

	if v.RequestedName == "" {
		v.RequestedName = fallbackRespondent
	}

	if v.RequesterName == "" {
		v.RequesterName = fallbackApplicant
	}

	if v.HearingDate == "" {
		v.HearingDate = fallbackDate
	}

	return v
}

// BuildPayload assembles the full outbound-call request for one case.
func BuildPayload(rec domain.CaseRecord, toNumber, agentID, agentPhoneID, centerOverride string) OutboundCallPayload {
	p := OutboundCallPayload{
		AgentID:            agentID,
		AgentPhoneNumberID: agentPhoneID,
		ToNumber:           toNumber,
	}
	p.ClientData.DynamicVariables = BuildDynamicVariables(rec, centerOverride)

	return p
}
