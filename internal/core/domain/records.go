package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Source is the raw channel tag carried by conversation records.
type Source string

const (
	SourceWhatsApp  Source = "whatsapp"
	SourceMail      Source = "mail"
	SourcePhoneCall Source = "phone_call"
	SourceTelegram  Source = "telegram"
)

// UserType tags which side of the case a record belongs to.
type UserType string

const (
	UserApplicant  UserType = "applicant"
	UserRespondent UserType = "respondent"
)

// CaseNuc is a case number that decodes tolerantly from upstream JSON.
// Upstream rows carry it as a number, a numeric string, null, or free text;
// anything that is not a number yields Valid=false without an error so a
// single bad row never sinks a whole batch.
type CaseNuc struct {
	Value int64
	Valid bool
}

func NewCaseNuc(v int64) CaseNuc { return CaseNuc{Value: v, Valid: true} }

func (n *CaseNuc) UnmarshalJSON(data []byte) error {
	*n = CaseNuc{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	s := string(data)
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		s = strings.TrimSpace(s)
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Tolerate floats that are still whole case numbers.
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int64(f)) {
			return nil
		}
		v = int64(f)
	}
	n.Value = v
	n.Valid = true
	return nil
}

func (n CaseNuc) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(n.Value, 10)), nil
}

// String renders the case number, or empty when invalid.
func (n CaseNuc) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatInt(n.Value, 10)
}

// ConversationRecord is one raw interaction row as stored upstream. The
// field names mirror the upstream wire contract exactly; normalization
// happens downstream, never here.
type ConversationRecord struct {
	CaseNuc      CaseNuc  `json:"caseNuc"`
	Source       Source   `json:"source"`
	UserType     UserType `json:"userType"`
	Conversation *string  `json:"conversation"`
	CreatedAt    string   `json:"created_at"`
	ChatID       string   `json:"chatId"`
}

// Text returns the conversation body, empty when the column is null.
func (r ConversationRecord) Text() string {
	if r.Conversation == nil {
		return ""
	}
	return *r.Conversation
}

// CaseRecord is one raw case row as stored upstream (the intake table).
// Optional columns are plain strings with "" meaning absent, matching how
// the rows actually arrive.
type CaseRecord struct {
	CaseNuc                         int64  `json:"caseNuc"`
	SessionDate                     string `json:"sessionDate"`
	SessionDateText                 string `json:"sessionDate_txt,omitempty"`
	ApplicantFullName               string `json:"applicantFullName"`
	ApplicantRUT                    string `json:"applicantRut,omitempty"`
	ApplicantAddress                string `json:"applicantAddress,omitempty"`
	ApplicantCommune                string `json:"applicantCommune,omitempty"`
	ApplicantRegion                 string `json:"applicantRegion,omitempty"`
	ApplicantPhone                  string `json:"applicantPhone,omitempty"`
	ApplicantEmail                  string `json:"applicantEmail,omitempty"`
	ApplicantSex                    string `json:"applicantSex,omitempty"`
	RespondentFullName              string `json:"respondentFullName,omitempty"`
	RespondentRUT                   string `json:"respondentRut,omitempty"`
	RespondentAddress               string `json:"respondentAddress,omitempty"`
	RespondentCommune               string `json:"respondentCommune,omitempty"`
	RespondentRegion                string `json:"respondentRegion,omitempty"`
	RespondentPhone                 string `json:"respondentPhone,omitempty"`
	RespondentMobile                string `json:"respondentMobile,omitempty"`
	RespondentEmail                 string `json:"respondentEmail,omitempty"`
	RespondentSex                   string `json:"respondentSex,omitempty"`
	Subject                         string `json:"subject,omitempty"`
	MatterType                      string `json:"matterType,omitempty"`
	SessionType                     string `json:"sessionType,omitempty"`
	RelationshipType                string `json:"relationshipType,omitempty"`
	MediationType                   string `json:"mediationType,omitempty"`
	CenterAddress                   string `json:"centerAddress,omitempty"`
	CenterCommune                   string `json:"centerCommune,omitempty"`
	CenterRegion                    string `json:"centerRegion,omitempty"`
	ApplicantAttendanceConfirmation string `json:"applicantAttendanceConfirmation,omitempty"`
	RespondentAttendanceConfirmation string `json:"respondentAttendanceConfirmation,omitempty"`
	ApplicantQuestionsRequests      string `json:"applicantQuestionsRequests,omitempty"`
	RespondentQuestionsRequests     string `json:"respondentQuestionsRequests,omitempty"`
	ApplicantAdditionalDataProvided string `json:"applicantAdditionalDataProvided,omitempty"`
	RespondentContactObservations   string `json:"respondentContactObservations,omitempty"`
	AgentAlerts                     string `json:"agentAlerts,omitempty"`
	PensionActual                   string `json:"pensionActual,omitempty"`
	PromedioSueldoLiquido           string `json:"promedioSueldoLiquido,omitempty"`
	RegimenVisitasActual            string `json:"regimenVisitasActual,omitempty"`
	CuidadoPersonalActual           string `json:"cuidadoPersonalActual,omitempty"`
	CreatedAt                       string `json:"created_at,omitempty"`
	UpdatedAt                       string `json:"updated_at,omitempty"`
}

// VoiceSummary is one stored post-call webhook result.
type VoiceSummary struct {
	ID             int64           `json:"id,omitempty"`
	CaseNuc        int64           `json:"caseNuc"`
	ConversationID string          `json:"conversation_id"`
	LastMessage    string          `json:"last_message,omitempty"`
	Summary        string          `json:"summary,omitempty"`
	Payload        json.RawMessage `json:"payload,omitempty"`
	CreatedAt      time.Time       `json:"created_at,omitempty"`
}
