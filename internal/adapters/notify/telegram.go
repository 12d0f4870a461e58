package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/alejandrodnm/edgescan/internal/domain"
)

const (
	telegramMaxRetries = 3
	telegramRetryBase  = time.Second
)

// Telegram implementa ports.Notifier empujando las detecciones a un chat.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram crea el notificador de Telegram con el token y chat dados.
func NewTelegram(botToken, chatID string) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("notify.NewTelegram: create bot: %w", err)
	}

	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("notify.NewTelegram: invalid chat ID %q: %w", chatID, err)
	}

	return &Telegram{bot: bot, chatID: chatIDInt}, nil
}

// Notify envía las alertas del ciclo como un solo mensaje MarkdownV2.
func (t *Telegram) Notify(_ context.Context, alerts []domain.EdgeAlert) error {
	if len(alerts) == 0 {
		return nil
	}
	return t.sendMarkdownV2(formatAlerts(alerts))
}

// sendMarkdownV2 envía con retry y backoff lineal.
func (t *Telegram) sendMarkdownV2(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = "MarkdownV2"

	var lastErr error
	for i := 0; i < telegramMaxRetries; i++ {
		if _, err := t.bot.Send(msg); err == nil {
			return nil
		} else {
			lastErr = err
		}
		time.Sleep(telegramRetryBase * time.Duration(i+1))
	}
	return fmt.Errorf("notify.Telegram: failed after %d retries: %w", telegramMaxRetries, lastErr)
}

// formatAlerts arma el mensaje MarkdownV2 con las detecciones del ciclo.
func formatAlerts(alerts []domain.EdgeAlert) string {
	var sb strings.Builder
	sb.WriteString("📊 *Micro\\-edge alerts*\n\n")

	for i, alert := range alerts {
		title := escapeMarkdownV2(alert.Title)
		evStr := escapeMarkdownV2(fmt.Sprintf("%+.2f%%", alert.ExpectedValue))
		priceStr := escapeMarkdownV2(fmt.Sprintf("%.1f%%", alert.MarketPrice*100))
		probStr := escapeMarkdownV2(fmt.Sprintf("%.1f%%", alert.TrueProbability*100))

		fmt.Fprintf(&sb, "%d\\. %s\n", i+1, title)
		fmt.Fprintf(&sb, "   🎯 %s EV *%s* \\(price %s → est %s\\)\n",
			escapeMarkdownV2(alert.Outcome), evStr, priceStr, probStr)
	}

	return sb.String()
}

// escapeMarkdownV2 escapa los caracteres especiales de Telegram MarkdownV2.
func escapeMarkdownV2(text string) string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/4)
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!':
			b.WriteByte('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}
