package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wakai-center/wakai-backend/internal/assistant"
)

type chatRequest struct {
	Messages []assistant.Message `json:"messages"`
}

func (s *Server) handleChat(c *gin.Context) {
	if s.assistant == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "OpenAI API key not configured",
		})

		return
	}

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid JSON in request body",
			"message": err.Error(),
		})

		return
	}

	reply, err := s.assistant.Chat(c.Request.Context(), req.Messages)
	if err != nil {
		s.logger.Error().Err(err).Msg("assistant chat failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to process chat message",
			"message": err.Error(),
		})

		return
	}

	if len(reply.ToolCalls) > 0 {
		c.JSON(http.StatusOK, gin.H{"tool_calls": reply.ToolCalls})

		return
	}

	c.JSON(http.StatusOK, gin.H{"message": reply.Message})
}
