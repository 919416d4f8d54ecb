package sections

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/qcdesk/qcbot/internal/apitime"
	"github.com/qcdesk/qcbot/internal/botgw"
	"github.com/qcdesk/qcbot/internal/timewindow"
)

// Only dialogs with customer activity after this hour are "awaiting reply":
// earlier ones were handled during the day shift.
const chatEveningCutoffHour = 19

const (
	maxDialogsChecked = 50
	messagesPerDialog = 5
)

// Chats polls the bot gateway for active dialogs whose last customer message
// arrived after the evening cutoff and is presumably still unanswered.
type Chats struct {
	gw *botgw.Client
}

func NewChats(gw *botgw.Client) *Chats {
	return &Chats{gw: gw}
}

func (s *Chats) Name() string { return "4. Chats checked" }

func (s *Chats) Lines(ctx context.Context, w timewindow.Windows) ([]string, error) {
	cutoff := w.Date.At(chatEveningCutoffHour, 0, 0)

	dialogs, err := s.gw.ActiveDialogs(ctx, maxDialogsChecked)
	if err != nil {
		return nil, fmt.Errorf("fetching active dialogs: %w", err)
	}

	awaiting := 0
	for _, d := range dialogs {
		if d.ChatID == 0 {
			continue
		}
		messages, err := s.gw.DialogMessages(ctx, d.ChatID, messagesPerDialog)
		if err != nil {
			// One unreadable dialog should not sink the section.
			slog.WarnContext(ctx, "dialog messages unavailable", "chat", d.ChatID, "error", err)
			continue
		}
		if hasCustomerMessageSince(ctx, messages, cutoff) {
			awaiting++
		}
	}

	return []string{
		"4. Chats checked",
		fmt.Sprintf("Arrived after %d:00: %d chats awaiting reply", chatEveningCutoffHour, awaiting),
	}, nil
}

func hasCustomerMessageSince(ctx context.Context, messages []botgw.Message, cutoff time.Time) bool {
	for _, m := range messages {
		if m.Sender.Type != botgw.SenderCustomer || m.CreatedAt == "" {
			continue
		}
		at, err := apitime.Parse(m.CreatedAt)
		if err != nil {
			slog.WarnContext(ctx, "chat message skipped: bad createdAt", "createdAt", m.CreatedAt)
			continue
		}
		if !at.Before(cutoff) {
			return true
		}
	}
	return false
}
