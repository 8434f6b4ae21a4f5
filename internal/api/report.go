package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	db "github.com/wakai-center/wakai-backend/internal/storage"
)

// caseReport is the Spanish-labeled report consumed by the dashboard's
// report view. The key names are a frontend contract.
type caseReport struct {
	NUC                string           `json:"nuc"`
	FechaHoraMediacion string           `json:"fechaHoraMediacion"`
	Materia            string           `json:"materia"`
	TipoSesion         string           `json:"tipoSesion"`
	Solicitante        applicantReport  `json:"solicitante"`
	Solicitado         respondentReport `json:"solicitado"`
	DatosAdicionales   additionalData   `json:"datosAdicionales"`
}

type applicantReport struct {
	Nombre                     string `json:"nombre"`
	Sexo                       string `json:"sexo"`
	Direccion                  string `json:"direccion"`
	Comuna                     string `json:"comuna"`
	Region                     string `json:"region"`
	ConfirmacionAsistencia     string `json:"confirmacionAsistencia"`
	DudasOSolicitudes          string `json:"dudasOSolicitudes"`
	DatosAdicionalesEntregados string `json:"datosAdicionalesEntregados"`
	AlertasAgente              string `json:"alertasAgente"`
}

type respondentReport struct {
	Nombre                 string `json:"nombre"`
	Sexo                   string `json:"sexo"`
	Direccion              string `json:"direccion"`
	Comuna                 string `json:"comuna"`
	Region                 string `json:"region"`
	ConfirmacionAsistencia string `json:"confirmacionAsistencia"`
	DudasOSolicitudes      string `json:"dudasOSolicitudes"`
	ObservacionesContacto  string `json:"observacionesContacto"`
}

type additionalData struct {
	PensionActual         string `json:"pensionActual,omitempty"`
	PromedioSueldoLiquido string `json:"promedioSueldoLiquido,omitempty"`
	RegimenVisitasActual  string `json:"regimenVisitasActual,omitempty"`
	CuidadoPersonalActual string `json:"cuidadoPersonalActual,omitempty"`
}

func buildCaseReport(rec db.CaseRecord) caseReport {
	return caseReport{
		NUC:                strconv.FormatInt(rec.CaseNuc, 10),
		FechaHoraMediacion: rec.SessionDate,
		Materia:            rec.MatterType,
		TipoSesion:         rec.SessionType,
		Solicitante: applicantReport{
			Nombre:                     rec.ApplicantFullName,
			Sexo:                       rec.ApplicantSex,
			Direccion:                  rec.ApplicantAddress,
			Comuna:                     rec.ApplicantCommune,
			Region:                     rec.ApplicantRegion,
			ConfirmacionAsistencia:     rec.ApplicantAttendanceConfirmation,
			DudasOSolicitudes:          rec.ApplicantQuestionsRequests,
			DatosAdicionalesEntregados: rec.ApplicantAdditionalDataProvided,
			AlertasAgente:              rec.AgentAlerts,
		},
		Solicitado: respondentReport{
			Nombre:                 rec.RespondentFullName,
			Sexo:                   rec.RespondentSex,
			Direccion:              rec.RespondentAddress,
			Comuna:                 rec.RespondentCommune,
			Region:                 rec.RespondentRegion,
			ConfirmacionAsistencia: rec.RespondentAttendanceConfirmation,
			DudasOSolicitudes:      rec.RespondentQuestionsRequests,
			ObservacionesContacto:  rec.RespondentContactObservations,
		},
		DatosAdicionales: additionalData{
			PensionActual:         rec.PensionActual,
			PromedioSueldoLiquido: rec.PromedioSueldoLiquido,
			RegimenVisitasActual:  rec.RegimenVisitasActual,
			CuidadoPersonalActual: rec.CuidadoPersonalActual,
		},
	}
}

func (s *Server) handleCaseReport(c *gin.Context) {
	rec, ok := s.caseByParam(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "reporte": buildCaseReport(rec)})
}
