// Package app wires the application dependencies and runs the selected
// operational mode:
//
//   - API mode: the dashboard HTTP API with scoring, chat and voice tools
//   - Bot mode: the Telegram relay bot for mediation participants
//   - Notify mode: one appointment-reminder fan-out for today's cases
//
// Each mode runs independently; the health/metrics server accompanies all
// of them.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/wakai-center/wakai-backend/internal/api"
	"github.com/wakai-center/wakai-backend/internal/assistant"
	"github.com/wakai-center/wakai-backend/internal/bot"
	"github.com/wakai-center/wakai-backend/internal/notify"
	"github.com/wakai-center/wakai-backend/internal/platform/config"
	"github.com/wakai-center/wakai-backend/internal/platform/observability"
	db "github.com/wakai-center/wakai-backend/internal/storage"
	"github.com/wakai-center/wakai-backend/internal/voice"
)

// App holds the application dependencies and provides methods to run
// different modes.
type App struct {
	cfg      *config.Config
	database *db.DB
	logger   *zerolog.Logger
}

// New creates a new App instance with the given dependencies.
func New(cfg *config.Config, database *db.DB, logger *zerolog.Logger) *App {
	return &App{
		cfg:      cfg,
		database: database,
		logger:   logger,
	}
}

// StartHealthServer starts the health check and metrics server.
func (a *App) StartHealthServer(ctx context.Context) error {
	return observability.NewServer(a.database, a.cfg.HealthPort, a.logger).Start(ctx)
}

// RunAPI serves the dashboard HTTP API until the context is cancelled.
func (a *App) RunAPI(ctx context.Context) error {
	opts := api.Options{}

	if a.cfg.OpenAIAPIKey != "" {
		opts.Assistant = assistant.New(a.cfg, a.logger)
	} else {
		a.logger.Warn().Msg("OPENAI_API_KEY not set, chat endpoint disabled")
	}

	if a.cfg.ElevenLabsAPIKey != "" {
		opts.Caller = voice.NewClient(a.cfg.ElevenLabsBaseURL, a.cfg.ElevenLabsAPIKey, a.cfg.ElevenLabsTimeout)
	} else {
		a.logger.Warn().Msg("ELEVENLABS_API_KEY not set, outbound calls disabled")
	}

	tg, wsp := a.senders()
	opts.Telegram = tg
	opts.WhatsApp = wsp

	if tg != nil || wsp != nil {
		opts.Notifier = notify.NewService(a.database, tg, wsp, nil, a.logger)
	}

	return api.NewServer(a.cfg, a.database, opts, a.logger).Run(ctx)
}

// RunBot runs the Telegram relay bot until the context is cancelled.
func (a *App) RunBot(ctx context.Context) error {
	if a.cfg.BotToken == "" {
		return fmt.Errorf("bot mode requires BOT_TOKEN")
	}

	if a.cfg.OpenAIAPIKey == "" {
		return fmt.Errorf("bot mode requires OPENAI_API_KEY")
	}

	relay, err := bot.New(a.cfg, a.database, assistant.New(a.cfg, a.logger), a.logger)
	if err != nil {
		return fmt.Errorf("bot initialization failed: %w", err)
	}

	return relay.Run(ctx)
}

// RunNotify runs one appointment-reminder fan-out and exits.
func (a *App) RunNotify(ctx context.Context) error {
	tg, wsp := a.senders()
	if tg == nil && wsp == nil {
		return fmt.Errorf("notify mode requires BOT_TOKEN or WSP_LAMBDA_URL")
	}

	summary, err := notify.NewService(a.database, tg, wsp, nil, a.logger).SendAppointmentReminders(ctx)
	if err != nil {
		return fmt.Errorf("sending appointment reminders: %w", err)
	}

	a.logger.Info().
		Int("cases", summary.CasesCount).
		Int("sent", summary.NotificationsSent).
		Int("failed", summary.NotificationsFailed).
		Msg("appointment reminder run finished")

	return nil
}

// senders builds the configured notification channels; either may be nil.
func (a *App) senders() (notify.TelegramSender, notify.WhatsAppSender) {
	var tg notify.TelegramSender

	if a.cfg.BotToken != "" {
		sender, err := notify.NewTelegram(a.cfg.BotToken)
		if err != nil {
			a.logger.Warn().Err(err).Msg("telegram sender unavailable")
		} else {
			tg = sender
		}
	}

	var wsp notify.WhatsAppSender

	if a.cfg.WhatsAppLambdaURL != "" {
		wsp = notify.NewWhatsApp(a.cfg.WhatsAppLambdaURL, a.cfg.WhatsAppTimeout)
	}

	return tg, wsp
}
