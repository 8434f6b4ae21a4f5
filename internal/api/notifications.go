package api

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wakai-center/wakai-backend/internal/notify"
)

const (
	defaultTestMessage = "Mensaje de prueba"
	maxLambdaBody      = 4 << 10
)

func (s *Server) handleSendNotifications(c *gin.Context) {
	if s.notifier == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Notification senders not configured",
		})

		return
	}

	summary, err := s.notifier.SendAppointmentReminders(c.Request.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("notification fan-out failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to send notifications",
			"message": err.Error(),
		})

		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"message":             "Notifications processed",
		"casesCount":          summary.CasesCount,
		"notificationsSent":   summary.NotificationsSent,
		"notificationsFailed": summary.NotificationsFailed,
		"results":             summary.Results,
	})
}

type testNotificationRequest struct {
	ChatID  string `json:"chatId"`
	Mensaje string `json:"mensaje"`
}

// preCallLambda pings the warm-up Lambda before a test send. A missing
// URL skips the ping; a failing one aborts the send with 502.
func (s *Server) preCallLambda(c *gin.Context) (int, bool) {
	if s.cfg.WhatsAppLambdaURL == "" {
		return 0, true
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodPost, s.cfg.WhatsAppLambdaURL, nil)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"success":      false,
			"error":        "Lambda call failed",
			"details":      err.Error(),
			"lambdaStatus": 0,
		})

		return 0, false
	}

	resp, err := s.lambda.Do(req)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"success":      false,
			"error":        "Lambda call failed",
			"details":      err.Error(),
			"lambdaStatus": 0,
		})

		return 0, false
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxLambdaBody))
		c.JSON(http.StatusBadGateway, gin.H{
			"success":      false,
			"error":        "Lambda call failed",
			"details":      string(body),
			"lambdaStatus": resp.StatusCode,
		})

		return resp.StatusCode, false
	}

	return resp.StatusCode, true
}

func (s *Server) handleTelegramNotification(c *gin.Context) {
	lambdaStatus, ok := s.preCallLambda(c)
	if !ok {
		return
	}

	var req testNotificationRequest

	_ = c.ShouldBindJSON(&req)
	if req.Mensaje == "" {
		req.Mensaje = defaultTestMessage
	}

	if req.ChatID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "chatId is required",
		})

		return
	}

	appointment := notify.FormatAppointment("Contacto Prueba Telegram", time.Now().Format(time.RFC3339), "Centro de Mediación")
	appointment.Lugar += " | " + req.Mensaje

	var sendError string

	sent := s.tg != nil

	if s.tg != nil {
		if err := s.tg.Send(req.ChatID, appointment.Message()); err != nil {
			sent = false
			sendError = err.Error()
		}
	}

	status := http.StatusOK
	if !sent {
		status = http.StatusInternalServerError
	}

	message := "Telegram notification sent successfully"
	if !sent {
		message = "Failed to send Telegram notification"
	}

	resp := gin.H{
		"success":      sent,
		"chatId":       req.ChatID,
		"message":      message,
		"lambdaStatus": lambdaStatus,
	}
	if sendError != "" {
		resp["sendError"] = sendError
	}

	c.JSON(status, resp)
}

func (s *Server) handleWhatsAppNotification(c *gin.Context) {
	lambdaStatus, ok := s.preCallLambda(c)
	if !ok {
		return
	}

	var req testNotificationRequest

	_ = c.ShouldBindJSON(&req)
	if req.Mensaje == "" {
		req.Mensaje = defaultTestMessage
	}

	if req.ChatID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "chatId is required",
		})

		return
	}

	var sendError string

	sent := s.wsp != nil

	if s.wsp != nil {
		if err := s.wsp.Send(c.Request.Context(), req.ChatID, req.Mensaje); err != nil {
			sent = false
			sendError = err.Error()
		}
	}

	status := http.StatusOK
	if !sent {
		status = http.StatusInternalServerError
	}

	message := "WhatsApp notification sent successfully"
	if !sent {
		message = "Failed to send WhatsApp notification"
	}

	resp := gin.H{
		"success":      sent,
		"message":      message,
		"lambdaStatus": lambdaStatus,
	}
	if sendError != "" {
		resp["sendError"] = sendError
	}

	c.JSON(status, resp)
}
