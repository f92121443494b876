package notify

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"
)

type NotificationData struct {
	Event   string
	Project string
	// Message is the host's own text for Notification events.
	Message string
	// Body is the last assistant message for Stop events.
	Body string
}

func BuildNotificationText(data NotificationData) string {
	var emoji, status string
	switch data.Event {
	case "Notification":
		emoji = "🔔"
		status = "Needs Attention"
	case "SubagentStop":
		emoji = "☑️"
		status = "Subagent Finished"
	default:
		emoji = "✅"
		status = "Task Completed"
	}
	lines := []string{
		emoji + " " + status,
		"Project: " + data.Project,
	}
	if data.Message != "" {
		lines = append(lines, "", data.Message)
	}
	if data.Body != "" {
		lines = append(lines, "", "💬 Claude:", data.Body)
	}
	return strings.Join(lines, "\n")
}

// Truncate keeps at most maxRunes runes of s, marking the cut.
func Truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if maxRunes <= 0 || len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}

// Deadline bounds how long a hook may spend on delivery.
const Deadline = 4 * time.Second

// Sender delivers a notification text somewhere.
type Sender interface {
	Send(text string) error
}

// TelegramSender posts to one chat through a bot.
type TelegramSender struct {
	bot  *tele.Bot
	chat tele.ChatID
}

// NewTelegramSender builds a sender without contacting Telegram until the
// first Send.
func NewTelegramSender(token string, chatID int64) (*TelegramSender, error) {
	if token == "" || chatID == 0 {
		return nil, fmt.Errorf("telegram credentials incomplete")
	}
	bot, err := tele.NewBot(tele.Settings{
		Token:   token,
		Offline: true,
		Client:  &http.Client{Timeout: Deadline},
	})
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	return &TelegramSender{bot: bot, chat: tele.ChatID(chatID)}, nil
}

func (s *TelegramSender) Send(text string) error {
	_, err := s.bot.Send(s.chat, text)
	return err
}
