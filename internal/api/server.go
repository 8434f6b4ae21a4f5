// Package api serves the dashboard HTTP API: raw interaction and case
// rows, the normalized contact-attempt and mediation-case views, contact
// scoring, the embedded chat assistant and the voice-call tool endpoints.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/wakai-center/wakai-backend/internal/assistant"
	"github.com/wakai-center/wakai-backend/internal/core/domain"
	"github.com/wakai-center/wakai-backend/internal/normalize"
	"github.com/wakai-center/wakai-backend/internal/notify"
	"github.com/wakai-center/wakai-backend/internal/platform/config"
	"github.com/wakai-center/wakai-backend/internal/platform/observability"
	"github.com/wakai-center/wakai-backend/internal/scoring"
	db "github.com/wakai-center/wakai-backend/internal/storage"
	"github.com/wakai-center/wakai-backend/internal/voice"
)

const shutdownTimeout = 10 * time.Second

// Store is the slice of the storage layer the API reads and writes.
type Store interface {
	GetInteractions(ctx context.Context) ([]db.ConversationRecord, error)
	GetInteractionsByCase(ctx context.Context, caseNuc int64) ([]db.ConversationRecord, error)
	GetChatIDs(ctx context.Context) ([]string, error)
	GetCases(ctx context.Context) ([]db.CaseRecord, error)
	GetCase(ctx context.Context, caseNuc int64) (db.CaseRecord, error)
	GetConversation(ctx context.Context, chatID string) (db.ChatConversation, error)
	ListConversations(ctx context.Context) ([]db.ChatConversation, error)
	GetMessages(ctx context.Context, conversationID string) ([]db.ChatMessage, error)
	SaveVoiceSummary(ctx context.Context, vs *domain.VoiceSummary) error
	GetVoiceSummaries(ctx context.Context, caseNuc int64) ([]domain.VoiceSummary, error)
}

// Assistant answers dashboard chat requests.
type Assistant interface {
	Chat(ctx context.Context, history []assistant.Message) (assistant.Reply, error)
}

// Notifier runs the appointment reminder fan-out.
type Notifier interface {
	SendAppointmentReminders(ctx context.Context) (notify.Summary, error)
}

// Caller places outbound voice calls.
type Caller interface {
	TriggerOutboundCall(ctx context.Context, payload voice.OutboundCallPayload) (voice.CallResult, error)
}

// Server wires the handlers to their collaborators.
type Server struct {
	cfg       *config.Config
	store     Store
	assistant Assistant
	notifier  Notifier
	caller    Caller
	tg        notify.TelegramSender
	wsp       notify.WhatsAppSender
	mapper    *normalize.Mapper
	engine    *scoring.Engine
	lambda    *http.Client
	logger    *zerolog.Logger
}

// Options carries the optional collaborators; nil fields disable the
// corresponding endpoints with a configuration error response.
type Options struct {
	Assistant Assistant
	Notifier  Notifier
	Caller    Caller
	Telegram  notify.TelegramSender
	WhatsApp  notify.WhatsAppSender
}

func NewServer(cfg *config.Config, store Store, opts Options, logger *zerolog.Logger) *Server {
	return &Server{
		cfg:       cfg,
		store:     store,
		assistant: opts.Assistant,
		notifier:  opts.Notifier,
		caller:    opts.Caller,
		tg:        opts.Telegram,
		wsp:       opts.WhatsApp,
		mapper:    normalize.New(nil),
		engine:    scoring.NewEngine(nil),
		lambda:    &http.Client{Timeout: cfg.WhatsAppTimeout},
		logger:    logger,
	}
}

// Router builds the gin engine with CORS, metrics middleware and every
// route mounted.
func (s *Server) Router() *gin.Engine {
	if s.cfg.AppEnv != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.metricsMiddleware())

	corsCfg := cors.DefaultConfig()
	if len(s.cfg.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = s.cfg.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = []string{"Authorization", "Content-Type", "X-Requested-With"}
	router.Use(cors.New(corsCfg))

	router.GET("/", s.handleRoot)

	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/conversations", s.handleConversations)
		apiGroup.GET("/conversations/:chatId", s.handleConversationByChatID)
		apiGroup.GET("/chat-ids", s.handleChatIDs)
		apiGroup.GET("/chat-conversations", s.handleChatConversations)
		apiGroup.GET("/cases", s.handleCases)
		apiGroup.GET("/case/:caseNuc", s.handleCase)
		apiGroup.GET("/case-report/:caseNuc", s.handleCaseReport)
		apiGroup.GET("/contact-attempts/:caseNuc", s.handleContactAttempts)
		apiGroup.GET("/mediation-cases", s.handleMediationCases)
		apiGroup.GET("/case-summaries", s.handleCaseSummaries)
		apiGroup.GET("/contact-scoring/:caseNuc", s.handleContactScoring)
		apiGroup.GET("/voice-summaries/:caseNuc", s.handleVoiceSummaries)
		apiGroup.POST("/chat", s.handleChat)
		apiGroup.POST("/send-notifications", s.handleSendNotifications)
		apiGroup.POST("/telegram-notification", s.handleTelegramNotification)
		apiGroup.POST("/wsp-notification", s.handleWhatsAppNotification)
	}

	aiTools := router.Group("/ai-tools")
	{
		aiTools.POST("/outbound-call", s.handleOutboundCall)
		aiTools.POST("/elevenlabs/post-call", s.handlePostCallWebhook)
	}

	return router
}

// Run serves the API until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.APIPort),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		s.logger.Info().Str("addr", srv.Addr).Msg("API server listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("api server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api server shutdown: %w", err)
	}

	return nil
}

func (s *Server) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		observability.APIRequests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		observability.APIRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   "wakai-backend",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
