package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/wakai-center/wakai-backend/internal/core/domain"
)

// CaseRecord is an alias for the domain type.
type CaseRecord = domain.CaseRecord

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

const caseColumns = `case_nuc, session_date, session_date_txt,
	applicant_full_name, applicant_rut, applicant_address, applicant_commune, applicant_region,
	applicant_phone, applicant_email, applicant_sex,
	respondent_full_name, respondent_rut, respondent_address, respondent_commune, respondent_region,
	respondent_phone, respondent_mobile, respondent_email, respondent_sex,
	subject, matter_type, session_type, relationship_type, mediation_type,
	center_address, center_commune, center_region,
	applicant_attendance_confirmation, respondent_attendance_confirmation,
	applicant_questions_requests, respondent_questions_requests,
	applicant_additional_data_provided, respondent_contact_observations, agent_alerts,
	pension_actual, promedio_sueldo_liquido, regimen_visitas_actual, cuidado_personal_actual,
	created_at, updated_at`

// GetCases returns every case row ordered by case number.
func (db *DB) GetCases(ctx context.Context) ([]CaseRecord, error) {
	rows, err := db.Pool.Query(ctx, `SELECT `+caseColumns+` FROM cases ORDER BY case_nuc`)
	if err != nil {
		return nil, fmt.Errorf("get cases: %w", err)
	}
	defer rows.Close()

	var cases []CaseRecord

	for rows.Next() {
		rec, err := scanCase(rows)
		if err != nil {
			return nil, err
		}

		cases = append(cases, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cases: %w", err)
	}

	return cases, nil
}

// GetCase returns one case row by case number, or ErrNotFound.
func (db *DB) GetCase(ctx context.Context, caseNuc int64) (CaseRecord, error) {
	rows, err := db.Pool.Query(ctx, `SELECT `+caseColumns+` FROM cases WHERE case_nuc = $1`, caseNuc)
	if err != nil {
		return CaseRecord{}, fmt.Errorf("get case: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return CaseRecord{}, fmt.Errorf("get case: %w", err)
		}

		return CaseRecord{}, ErrNotFound
	}

	return scanCase(rows)
}

// GetCasesForDate returns the cases whose session date falls on the given
// day, used by the appointment reminder job.
func (db *DB) GetCasesForDate(ctx context.Context, day time.Time) ([]CaseRecord, error) {
	prefix := day.Format("2006-01-02")

	rows, err := db.Pool.Query(ctx,
		`SELECT `+caseColumns+` FROM cases WHERE session_date LIKE $1 || '%' ORDER BY case_nuc`, prefix)
	if err != nil {
		return nil, fmt.Errorf("get cases for date: %w", err)
	}
	defer rows.Close()

	var cases []CaseRecord

	for rows.Next() {
		rec, err := scanCase(rows)
		if err != nil {
			return nil, err
		}

		cases = append(cases, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cases for date: %w", err)
	}

	return cases, nil
}

func scanCase(rows pgx.Rows) (CaseRecord, error) {
	var (
		rec       CaseRecord
		cols      [38]pgtype.Text
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	dests := make([]any, 0, 40)
	dests = append(dests, &rec.CaseNuc)
	for i := range cols {
		dests = append(dests, &cols[i])
	}
	dests = append(dests, &createdAt, &updatedAt)

	if err := rows.Scan(dests...); err != nil {
		return CaseRecord{}, fmt.Errorf("scan case: %w", err)
	}

	fields := []*string{
		&rec.SessionDate, &rec.SessionDateText,
		&rec.ApplicantFullName, &rec.ApplicantRUT, &rec.ApplicantAddress, &rec.ApplicantCommune, &rec.ApplicantRegion,
		&rec.ApplicantPhone, &rec.ApplicantEmail, &rec.ApplicantSex,
		&rec.RespondentFullName, &rec.RespondentRUT, &rec.RespondentAddress, &rec.RespondentCommune, &rec.RespondentRegion,
		&rec.RespondentPhone, &rec.RespondentMobile, &rec.RespondentEmail, &rec.RespondentSex,
		&rec.Subject, &rec.MatterType, &rec.SessionType, &rec.RelationshipType, &rec.MediationType,
		&rec.CenterAddress, &rec.CenterCommune, &rec.CenterRegion,
		&rec.ApplicantAttendanceConfirmation, &rec.RespondentAttendanceConfirmation,
		&rec.ApplicantQuestionsRequests, &rec.RespondentQuestionsRequests,
		&rec.ApplicantAdditionalDataProvided, &rec.RespondentContactObservations, &rec.AgentAlerts,
		&rec.PensionActual, &rec.PromedioSueldoLiquido, &rec.RegimenVisitasActual, &rec.CuidadoPersonalActual,
	}
	for i, f := range fields {
		*f = fromText(cols[i])
	}

	if createdAt.Valid {
		rec.CreatedAt = createdAt.Time.Format(time.RFC3339)
	}

	if updatedAt.Valid {
		rec.UpdatedAt = updatedAt.Time.Format(time.RFC3339)
	}

	return rec, nil
}
