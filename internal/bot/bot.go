// Package bot runs the Telegram relay bot: participants chat with the
// mediation assistant, and every exchange is persisted so the dashboard
// can replay it.
package bot

import (
	"context"
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/wakai-center/wakai-backend/internal/assistant"
	"github.com/wakai-center/wakai-backend/internal/core/domain"
	"github.com/wakai-center/wakai-backend/internal/platform/config"
	"github.com/wakai-center/wakai-backend/internal/platform/observability"
	db "github.com/wakai-center/wakai-backend/internal/storage"
)

const (
	updateTimeout = 60

	// maxHistoryMessages bounds the context window sent to the model.
	maxHistoryMessages = 20
)

// Command names.
const (
	CmdStart  = "start"
	CmdHelp   = "help"
	CmdChatID = "chatid"
	CmdClear  = "clear"
)

// User-facing reply texts. Spanish is the product language.
const (
	replyError = "Lo siento, ocurrió un error al procesar tu mensaje. Por favor intenta nuevamente."
	replyClear = "Tu historial de conversación ha sido limpiado."
	replyHelp  = "Comandos disponibles:\n" +
		"/start - Iniciar conversación\n" +
		"/help - Mostrar ayuda\n" +
		"/chatid - Mostrar tu Chat ID\n" +
		"/clear - Limpiar historial de conversación\n\n" +
		"También puedes hacerme cualquier pregunta sobre mediaciones."
)

// Repository is the slice of the storage layer the bot needs.
type Repository interface {
	GetOrCreateConversation(ctx context.Context, chatID, username string) (db.ChatConversation, error)
	AppendMessage(ctx context.Context, conversationID, role, content string) error
	GetMessages(ctx context.Context, conversationID string) ([]db.ChatMessage, error)
	ClearConversation(ctx context.Context, chatID string) error
	SaveInteraction(ctx context.Context, rec *db.ConversationRecord) error
}

// Responder generates the assistant's reply for a conversation history.
type Responder interface {
	Respond(ctx context.Context, history []assistant.Message) (string, error)
}

type Bot struct {
	cfg       *config.Config
	database  Repository
	responder Responder
	api       *tgbotapi.BotAPI
	logger    *zerolog.Logger
}

func New(cfg *config.Config, database Repository, responder Responder, logger *zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("creating bot API: %w", err)
	}

	return &Bot{
		cfg:       cfg,
		database:  database,
		responder: responder,
		api:       api,
		logger:    logger,
	}, nil
}

func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = updateTimeout

	updates := b.api.GetUpdatesChan(u)

	b.logger.Info().Str("username", b.api.Self.UserName).Msg("relay bot started")

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("bot run context canceled: %w", ctx.Err())
		case update := <-updates:
			if update.Message == nil || update.Message.Text == "" {
				continue
			}

			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		observability.BotMessages.WithLabelValues("command").Inc()
		b.handleCommand(ctx, msg)

		return
	}

	observability.BotMessages.WithLabelValues("text").Inc()
	b.handleText(ctx, msg)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case CmdStart:
		b.handleStart(ctx, msg)
	case CmdHelp:
		b.reply(msg, replyHelp)
	case CmdChatID:
		b.handleChatID(msg)
	case CmdClear:
		b.handleClear(ctx, msg)
	default:
		b.reply(msg, "Comando desconocido. Usa /help para ver los comandos disponibles.")
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	chatID := strconv.FormatInt(msg.Chat.ID, 10)

	greeting := "¡Hola! Soy tu asistente de mediaciones familiares. " +
		"Puedo ayudarte con información sobre tus citas de mediación.\n\n" +
		"📱 Tu Chat ID es: " + chatID + "\n" +
		"Guarda este número para usar el endpoint de API.\n" +
		"También puedes usar el comando /chatid para verlo nuevamente."

	b.reply(msg, greeting)

	conv, err := b.database.GetOrCreateConversation(ctx, chatID, username(msg))
	if err != nil {
		b.logger.Error().Err(err).Str("chat_id", chatID).Msg("creating conversation on /start")

		return
	}

	if err := b.database.AppendMessage(ctx, conv.ID, "assistant", "¡Hola! Soy tu asistente de mediaciones familiares."); err != nil {
		b.logger.Error().Err(err).Str("chat_id", chatID).Msg("recording greeting")
	}
}

func (b *Bot) handleChatID(msg *tgbotapi.Message) {
	chatID := strconv.FormatInt(msg.Chat.ID, 10)
	userID := strconv.FormatInt(msg.From.ID, 10)

	name := "No disponible"
	if msg.From.UserName != "" {
		name = "@" + msg.From.UserName
	}

	b.reply(msg, "📱 Tu información:\n\n"+
		"Chat ID: "+chatID+"\n"+
		"User ID: "+userID+"\n"+
		"Username: "+name+"\n\n"+
		"💡 Usa el Chat ID ("+chatID+") en el endpoint de API para enviar mensajes.")
}

func (b *Bot) handleClear(ctx context.Context, msg *tgbotapi.Message) {
	chatID := strconv.FormatInt(msg.Chat.ID, 10)

	if err := b.database.ClearConversation(ctx, chatID); err != nil {
		b.logger.Error().Err(err).Str("chat_id", chatID).Msg("clearing conversation")
		b.reply(msg, replyError)

		return
	}

	b.reply(msg, replyClear)
}

func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	chatID := strconv.FormatInt(msg.Chat.ID, 10)

	conv, err := b.database.GetOrCreateConversation(ctx, chatID, username(msg))
	if err != nil {
		b.logger.Error().Err(err).Str("chat_id", chatID).Msg("resolving conversation")
		b.reply(msg, replyError)

		return
	}

	if err := b.database.AppendMessage(ctx, conv.ID, "user", msg.Text); err != nil {
		b.logger.Error().Err(err).Str("chat_id", chatID).Msg("recording user message")
	}

	b.logInteraction(ctx, chatID, msg.Text)

	if _, err := b.api.Request(tgbotapi.NewChatAction(msg.Chat.ID, tgbotapi.ChatTyping)); err != nil {
		b.logger.Debug().Err(err).Msg("sending typing action")
	}

	history, err := b.history(ctx, conv.ID)
	if err != nil {
		b.logger.Error().Err(err).Str("chat_id", chatID).Msg("loading conversation history")
		b.reply(msg, replyError)

		return
	}

	response, err := b.responder.Respond(ctx, history)
	if err != nil {
		observability.BotMessages.WithLabelValues("error").Inc()
		b.logger.Error().Err(err).Str("chat_id", chatID).Msg("assistant response failed")
		b.reply(msg, replyError)

		return
	}

	if err := b.database.AppendMessage(ctx, conv.ID, "assistant", response); err != nil {
		b.logger.Error().Err(err).Str("chat_id", chatID).Msg("recording assistant message")
	}

	b.reply(msg, response)
}

// history loads the stored turns, trimmed to the most recent window.
func (b *Bot) history(ctx context.Context, conversationID string) ([]assistant.Message, error) {
	msgs, err := b.database.GetMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if len(msgs) > maxHistoryMessages {
		msgs = msgs[len(msgs)-maxHistoryMessages:]
	}

	history := make([]assistant.Message, 0, len(msgs))
	for _, m := range msgs {
		history = append(history, assistant.Message{Role: m.Role, Content: m.Content})
	}

	return history, nil
}

// logInteraction mirrors the exchange into the interactions table so the
// dashboard's conversation views see relay traffic too.
func (b *Bot) logInteraction(ctx context.Context, chatID, text string) {
	rec := db.ConversationRecord{
		Source:       domain.SourceTelegram,
		UserType:     domain.UserApplicant,
		Conversation: &text,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
		ChatID:       chatID,
	}

	if err := b.database.SaveInteraction(ctx, &rec); err != nil {
		b.logger.Warn().Err(err).Str("chat_id", chatID).Msg("logging interaction")
	}
}

func username(msg *tgbotapi.Message) string {
	if msg.From == nil {
		return ""
	}

	return msg.From.UserName
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	reply := tgbotapi.NewMessage(msg.Chat.ID, text)

	if _, err := b.api.Send(reply); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", msg.Chat.ID).Msg("failed to send reply")
	}
}
