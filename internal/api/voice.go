package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wakai-center/wakai-backend/internal/core/domain"
	"github.com/wakai-center/wakai-backend/internal/platform/observability"
	db "github.com/wakai-center/wakai-backend/internal/storage"
	"github.com/wakai-center/wakai-backend/internal/voice"
)

func (s *Server) handleVoiceSummaries(c *gin.Context) {
	caseNuc, err := strconv.ParseInt(c.Param("caseNuc"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Caso no encontrado"})

		return
	}

	summaries, err := s.store.GetVoiceSummaries(c.Request.Context(), caseNuc)
	if err != nil {
		s.logger.Error().Err(err).Int64("case_nuc", caseNuc).Msg("fetching voice summaries")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to fetch voice summaries",
			"message": err.Error(),
		})

		return
	}

	if summaries == nil {
		summaries = []domain.VoiceSummary{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"caseNuc": strconv.FormatInt(caseNuc, 10),
		"data":    summaries,
		"count":   len(summaries),
	})
}

type outboundCallRequest struct {
	CaseNuc          domain.CaseNuc `json:"caseNuc"`
	OverrideToNumber string         `json:"overrideToNumber"`
}

func (s *Server) handleOutboundCall(c *gin.Context) {
	if s.caller == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "INTERNAL_ERROR"})

		return
	}

	var req outboundCallRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.CaseNuc.Valid {
		c.JSON(http.StatusNotFound, gin.H{"error": "CASE_NOT_FOUND"})

		return
	}

	rec, err := s.store.GetCase(c.Request.Context(), req.CaseNuc.Value)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "CASE_NOT_FOUND"})

			return
		}

		s.logger.Error().Err(err).Int64("case_nuc", req.CaseNuc.Value).Msg("fetching case for outbound call")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "INTERNAL_ERROR"})

		return
	}

	toNumber := voice.NormalizePhone(req.OverrideToNumber)
	if toNumber == "" {
		toNumber = voice.NormalizePhone(rec.RespondentMobile)
	}

	if toNumber == "" {
		observability.OutboundCalls.WithLabelValues("no_number").Inc()
		c.JSON(http.StatusBadGateway, gin.H{
			"status": "CALL_FAILED",
			"error":  "ELEVENLABS_ERROR",
			"details": gin.H{
				"status": http.StatusBadRequest,
				"body":   gin.H{"message": "No valid phone number found"},
			},
		})

		return
	}

	payload := voice.BuildPayload(rec, toNumber, s.cfg.ElevenLabsAgentID, s.cfg.ElevenLabsAgentPhoneID, s.cfg.CenterName)

	result, err := s.caller.TriggerOutboundCall(c.Request.Context(), payload)
	if err != nil {
		observability.OutboundCalls.WithLabelValues("error").Inc()
		s.logger.Error().Err(err).Int64("case_nuc", req.CaseNuc.Value).Msg("outbound call request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "INTERNAL_ERROR"})

		return
	}

	if !result.OK() {
		observability.OutboundCalls.WithLabelValues("provider_error").Inc()
		s.logger.Warn().
			Int("provider_status", result.Status).
			Int64("case_nuc", req.CaseNuc.Value).
			Msg("provider rejected outbound call")
		c.JSON(http.StatusBadGateway, gin.H{
			"status": "CALL_FAILED",
			"error":  "ELEVENLABS_ERROR",
			"details": gin.H{
				"status": result.Status,
				"body":   result.Body,
			},
		})

		return
	}

	observability.OutboundCalls.WithLabelValues("triggered").Inc()

	c.JSON(http.StatusOK, gin.H{
		"status":     "CALL_TRIGGERED",
		"caseNuc":    req.CaseNuc.Value,
		"toNumber":   toNumber,
		"elevenlabs": result.Body,
	})
}

// handlePostCallWebhook ingests the provider's post-call webhook. Every
// outcome answers 200 so the provider never disables the webhook; a
// non-stored outcome carries a reason instead.
func (s *Server) handlePostCallWebhook(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		observability.VoiceWebhooks.WithLabelValues("parsing_error").Inc()
		c.JSON(http.StatusOK, gin.H{
			"status":  "error_storing",
			"reason":  "parsing_error",
			"details": err.Error(),
		})

		return
	}

	summary, err := voice.ParseWebhook(raw)
	if err != nil {
		reason := "parsing_error"

		switch {
		case errors.Is(err, voice.ErrMissingCaseID):
			reason = "missing_case_id"
		case errors.Is(err, voice.ErrInvalidCaseID):
			reason = "invalid_case_id"
		}

		observability.VoiceWebhooks.WithLabelValues(reason).Inc()
		s.logger.Warn().Err(err).Msg("rejecting post-call webhook")
		c.JSON(http.StatusOK, gin.H{
			"status":  "error_storing",
			"reason":  reason,
			"details": err.Error(),
		})

		return
	}

	if err := s.store.SaveVoiceSummary(c.Request.Context(), &summary); err != nil {
		observability.VoiceWebhooks.WithLabelValues("db_error").Inc()
		s.logger.Error().Err(err).Str("conversation_id", summary.ConversationID).Msg("storing voice summary")
		c.JSON(http.StatusOK, gin.H{
			"status":  "error_storing",
			"reason":  "db_error",
			"details": err.Error(),
		})

		return
	}

	observability.VoiceWebhooks.WithLabelValues("stored").Inc()

	c.JSON(http.StatusOK, gin.H{
		"status":          "stored",
		"conversation_id": summary.ConversationID,
		"case_nuc":        summary.CaseNuc,
	})
}
