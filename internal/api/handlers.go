package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wakai-center/wakai-backend/internal/platform/observability"
	db "github.com/wakai-center/wakai-backend/internal/storage"
)

func (s *Server) handleConversations(c *gin.Context) {
	recs, err := s.store.GetInteractions(c.Request.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("fetching conversations")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to fetch conversations",
			"message": err.Error(),
		})

		return
	}

	if recs == nil {
		recs = []db.ConversationRecord{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    recs,
		"count":   len(recs),
	})
}

func (s *Server) handleChatIDs(c *gin.Context) {
	ids, err := s.store.GetChatIDs(c.Request.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("fetching chat ids")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to fetch chat IDs",
			"message": err.Error(),
		})

		return
	}

	if ids == nil {
		ids = []string{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    ids,
		"count":   len(ids),
	})
}

// handleChatConversations lists the relay conversations with message
// counts and last messages, most recently active first.
func (s *Server) handleChatConversations(c *gin.Context) {
	convs, err := s.store.ListConversations(c.Request.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("listing chat conversations")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to fetch chat conversations",
			"message": err.Error(),
		})

		return
	}

	if convs == nil {
		convs = []db.ChatConversation{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    convs,
		"count":   len(convs),
	})
}

// conversationView is a relay conversation with its message history.
type conversationView struct {
	db.ChatConversation
	Messages []db.ChatMessage `json:"messages"`
}

func (s *Server) handleConversationByChatID(c *gin.Context) {
	chatID := c.Param("chatId")

	conv, err := s.store.GetConversation(c.Request.Context(), chatID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "Conversation not found",
				"message": fmt.Sprintf("No conversation found for chat ID: %s", chatID),
			})

			return
		}

		s.logger.Error().Err(err).Str("chat_id", chatID).Msg("fetching conversation")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to fetch conversation",
			"message": err.Error(),
		})

		return
	}

	msgs, err := s.store.GetMessages(c.Request.Context(), conv.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("chat_id", chatID).Msg("fetching conversation messages")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to fetch conversation",
			"message": err.Error(),
		})

		return
	}

	if msgs == nil {
		msgs = []db.ChatMessage{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"chatId":        chatID,
		"data":          conversationView{ChatConversation: conv, Messages: msgs},
		"message_count": conv.MessageCount,
	})
}

func (s *Server) handleCases(c *gin.Context) {
	cases, err := s.store.GetCases(c.Request.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("fetching cases")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})

		return
	}

	if len(cases) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "No cases found"})

		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "cases": cases})
}

func (s *Server) handleCase(c *gin.Context) {
	rec, ok := s.caseByParam(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "case": rec})
}

// caseByParam resolves the :caseNuc route param to a case row, writing
// the 404/500 response itself when resolution fails.
func (s *Server) caseByParam(c *gin.Context) (db.CaseRecord, bool) {
	caseNuc, err := strconv.ParseInt(c.Param("caseNuc"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Caso no encontrado"})

		return db.CaseRecord{}, false
	}

	rec, err := s.store.GetCase(c.Request.Context(), caseNuc)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Caso no encontrado"})

			return db.CaseRecord{}, false
		}

		s.logger.Error().Err(err).Int64("case_nuc", caseNuc).Msg("fetching case")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})

		return db.CaseRecord{}, false
	}

	return rec, true
}

func (s *Server) handleContactAttempts(c *gin.Context) {
	caseNuc, err := strconv.ParseInt(c.Param("caseNuc"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Caso no encontrado"})

		return
	}

	recs, err := s.store.GetInteractionsByCase(c.Request.Context(), caseNuc)
	if err != nil {
		s.logger.Error().Err(err).Int64("case_nuc", caseNuc).Msg("fetching contact attempts")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to fetch contact attempts",
			"message": err.Error(),
		})

		return
	}

	attempts := s.mapper.MapRecords(recs)
	countNormalized(len(recs), len(attempts))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"caseNuc": strconv.FormatInt(caseNuc, 10),
		"data":    attempts,
		"count":   len(attempts),
	})
}

// countNormalized records how many raw rows survived normalization.
func countNormalized(raw, kept int) {
	observability.RecordsNormalized.WithLabelValues("true").Add(float64(kept))
	observability.RecordsNormalized.WithLabelValues("false").Add(float64(raw - kept))
}

func (s *Server) handleMediationCases(c *gin.Context) {
	recs, err := s.store.GetInteractions(c.Request.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("fetching mediation cases")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to fetch mediation cases",
			"message": err.Error(),
		})

		return
	}

	cases := s.mapper.GroupCases(recs)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    cases,
		"count":   len(cases),
	})
}

// handleCaseSummaries serves the intake rows normalized into the same
// MediationCase shape the interaction-derived view uses, so the dashboard
// can render both sources with one component.
func (s *Server) handleCaseSummaries(c *gin.Context) {
	rows, err := s.store.GetCases(c.Request.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("fetching case summaries")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to fetch case summaries",
			"message": err.Error(),
		})

		return
	}

	cases := s.mapper.MapCaseRecords(rows)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    cases,
		"count":   len(cases),
	})
}

func (s *Server) handleContactScoring(c *gin.Context) {
	caseNuc, err := strconv.ParseInt(c.Param("caseNuc"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Caso no encontrado"})

		return
	}

	recs, err := s.store.GetInteractionsByCase(c.Request.Context(), caseNuc)
	if err != nil {
		s.logger.Error().Err(err).Int64("case_nuc", caseNuc).Msg("fetching interactions for scoring")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to compute contact scoring",
			"message": err.Error(),
		})

		return
	}

	attempts := s.mapper.MapRecords(recs)
	countNormalized(len(recs), len(attempts))

	metrics := s.engine.Compute(attempts)
	observability.ScoringComputed.Inc()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"caseNuc": strconv.FormatInt(caseNuc, 10),
		"metrics": metrics,
	})
}
