package notify

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/wakai-center/wakai-backend/internal/platform/observability"
	db "github.com/wakai-center/wakai-backend/internal/storage"
)

// Result is the per-recipient outcome of a reminder fan-out.
type Result struct {
	CaseNuc   string `json:"caseNuc"`
	Recipient string `json:"recipient"`
	ChatID    string `json:"chatId"`
	Sent      bool   `json:"sent"`
}

// Summary aggregates one fan-out run.
type Summary struct {
	CasesCount          int      `json:"casesCount"`
	NotificationsSent   int      `json:"notificationsSent"`
	NotificationsFailed int      `json:"notificationsFailed"`
	Results             []Result `json:"results"`
}

// Store is the slice of the storage layer the reminder job reads.
type Store interface {
	GetCasesForDate(ctx context.Context, day time.Time) ([]db.CaseRecord, error)
	GetInteractionsByCase(ctx context.Context, caseNuc int64) ([]db.ConversationRecord, error)
}

// Service pushes appointment reminders for the day's cases to every chat
// known for each case.
type Service struct {
	db     Store
	tg     TelegramSender
	wsp    WhatsAppSender
	now    func() time.Time
	logger *zerolog.Logger
}

func NewService(database Store, tg TelegramSender, wsp WhatsAppSender, now func() time.Time, logger *zerolog.Logger) *Service {
	if now == nil {
		now = time.Now
	}

	return &Service{db: database, tg: tg, wsp: wsp, now: now, logger: logger}
}

// SendAppointmentReminders notifies every chat associated with a case
// whose session is scheduled today. Send failures are recorded per
// recipient; only storage errors abort the run.
func (s *Service) SendAppointmentReminders(ctx context.Context) (Summary, error) {
	cases, err := s.db.GetCasesForDate(ctx, s.now())
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{CasesCount: len(cases), Results: []Result{}}

	for _, rec := range cases {
		appointment := FormatAppointment(rec.ApplicantFullName, rec.SessionDate, CaseLocation(rec))
		message := appointment.Message()

		chatIDs, err := s.chatIDsForCase(ctx, rec.CaseNuc)
		if err != nil {
			return Summary{}, err
		}

		nuc := strconv.FormatInt(rec.CaseNuc, 10)

		if len(chatIDs) == 0 {
			s.logger.Warn().Str("case_nuc", nuc).Msg("no chats known for case, skipping reminder")
			summary.NotificationsFailed++
			summary.Results = append(summary.Results, Result{
				CaseNuc:   nuc,
				Recipient: appointment.Nombre,
				Sent:      false,
			})

			continue
		}

		for _, chatID := range chatIDs {
			sent := s.deliver(ctx, chatID, message)
			if sent {
				summary.NotificationsSent++
			} else {
				summary.NotificationsFailed++
			}

			summary.Results = append(summary.Results, Result{
				CaseNuc:   nuc,
				Recipient: appointment.Nombre,
				ChatID:    chatID,
				Sent:      sent,
			})
		}
	}

	return summary, nil
}

// deliver tries Telegram first and falls back to the WhatsApp relay.
func (s *Service) deliver(ctx context.Context, chatID, message string) bool {
	if s.tg != nil {
		err := s.tg.Send(chatID, message)
		if err == nil {
			observability.NotificationsSent.WithLabelValues("telegram", "ok").Inc()
			return true
		}

		observability.NotificationsSent.WithLabelValues("telegram", "error").Inc()
		s.logger.Warn().Err(err).Str("chat_id", chatID).Msg("telegram reminder failed")
	}

	if s.wsp != nil {
		err := s.wsp.Send(ctx, chatID, message)
		if err == nil {
			observability.NotificationsSent.WithLabelValues("whatsapp", "ok").Inc()
			return true
		}

		observability.NotificationsSent.WithLabelValues("whatsapp", "error").Inc()
		s.logger.Warn().Err(err).Str("chat_id", chatID).Msg("whatsapp reminder failed")
	}

	return false
}

func (s *Service) chatIDsForCase(ctx context.Context, caseNuc int64) ([]string, error) {
	recs, err := s.db.GetInteractionsByCase(ctx, caseNuc)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})

	var ids []string

	for _, rec := range recs {
		if rec.ChatID == "" {
			continue
		}

		if _, ok := seen[rec.ChatID]; ok {
			continue
		}

		seen[rec.ChatID] = struct{}{}

		ids = append(ids, rec.ChatID)
	}

	return ids, nil
}
