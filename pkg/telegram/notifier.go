package telegram

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"time"
)

// Reminder напоминание о записи расписания
type Reminder struct {
	Title     string
	Subject   string
	StartTime time.Time
	Lead      time.Duration
}

// AdminAlert обращение к администраторам
type AdminAlert struct {
	SenderName    string
	SenderContact string
	Title         string
	Content       string
}

// Notifier доставляет уведомления пользователю по привязанному чату
type Notifier interface {
	SendReminder(ctx context.Context, chatID int64, r Reminder) error
	SendAdminAlert(ctx context.Context, chatID int64, a AdminAlert) error
}

// FormatReminder текст напоминания
func FormatReminder(r Reminder) string {
	text := fmt.Sprintf("⏰ <b>Starting in %d minutes</b>\n\n📋 <b>%s</b>", int(r.Lead.Minutes()), html.EscapeString(r.Title))
	if r.Subject != "" {
		text += fmt.Sprintf("\n📖 %s", html.EscapeString(r.Subject))
	}
	text += fmt.Sprintf("\n🕐 %s", r.StartTime.Format("Mon 02 Jan 15:04"))
	return text
}

// FormatAdminAlert текст обращения к администратору
func FormatAdminAlert(a AdminAlert) string {
	return fmt.Sprintf("📨 <b>New message for admins</b>\n\n👤 <b>From:</b> %s\n📲 <b>Contact:</b> %s\n📋 <b>%s</b>\n\n%s",
		html.EscapeString(a.SenderName),
		html.EscapeString(a.SenderContact),
		html.EscapeString(a.Title),
		html.EscapeString(a.Content),
	)
}

// LogNotifier пишет уведомления в лог, если бот не настроен
type LogNotifier struct {
	log *slog.Logger
}

// NewLogNotifier создает notifier без внешней доставки
func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendReminder(_ context.Context, chatID int64, r Reminder) error {
	n.log.Info("reminder", slog.Int64("chat_id", chatID), slog.String("title", r.Title), slog.Time("start", r.StartTime))
	return nil
}

func (n *LogNotifier) SendAdminAlert(_ context.Context, chatID int64, a AdminAlert) error {
	n.log.Info("admin alert", slog.Int64("chat_id", chatID), slog.String("title", a.Title), slog.String("from", a.SenderName))
	return nil
}
