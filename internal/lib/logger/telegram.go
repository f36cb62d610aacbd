package logger

import (
	"context"
	"fmt"
	"log/slog"
)

// AlertSender delivers a log line to the ops alert channel.
type AlertSender interface {
	SendMessage(msg string)
}

// telegramHandler mirrors records at or above level to the alert channel,
// in addition to the wrapped handler.
type telegramHandler struct {
	next   slog.Handler
	sender AlertSender
	level  slog.Level
}

// SetupTelegramHandler wraps the logger so records at or above level are
// also forwarded to the Telegram alert bot.
func SetupTelegramHandler(log *slog.Logger, sender AlertSender, level slog.Level) *slog.Logger {
	return slog.New(&telegramHandler{
		next:   log.Handler(),
		sender: sender,
		level:  level,
	})
}

func (h *telegramHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *telegramHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= h.level && h.sender != nil {
		text := fmt.Sprintf("[%s] %s", r.Level, r.Message)
		r.Attrs(func(a slog.Attr) bool {
			text += fmt.Sprintf("\n%s: %s", a.Key, a.Value)
			return true
		})
		go h.sender.SendMessage(text)
	}
	return h.next.Handle(ctx, r)
}

func (h *telegramHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &telegramHandler{next: h.next.WithAttrs(attrs), sender: h.sender, level: h.level}
}

func (h *telegramHandler) WithGroup(name string) slog.Handler {
	return &telegramHandler{next: h.next.WithGroup(name), sender: h.sender, level: h.level}
}
