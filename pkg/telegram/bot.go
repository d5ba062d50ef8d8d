package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// LinkFunc привязывает чат к профилю по коду из ссылки /start <code>
type LinkFunc func(ctx context.Context, code string, chatID int64) error

// Bot представляет Telegram бота
type Bot struct {
	api      *tgbotapi.BotAPI
	log      *slog.Logger
	linkChat LinkFunc
	appURL   string
}

// NewBot создает новый экземпляр бота
func NewBot(token, appURL string, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	api.Debug = false

	if log == nil {
		log = slog.Default()
	}
	return &Bot{api: api, log: log.With(slog.String("component", "telegram")), appURL: appURL}, nil
}

// SetLinkChat callback привязки чата
func (b *Bot) SetLinkChat(cb LinkFunc) { b.linkChat = cb }

// SetCommands устанавливает команды бота
func (b *Bot) SetCommands() error {
	commands := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "🚀 Link this chat to your BrainSelf profile"},
		tgbotapi.BotCommand{Command: "help", Description: "ℹ️ What this bot does"},
	)
	if _, err := b.api.Request(commands); err != nil {
		return fmt.Errorf("failed to set commands: %w", err)
	}
	return nil
}

// SendMessage отправляет сообщение пользователю
func (b *Bot) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML

	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func (b *Bot) SendReminder(_ context.Context, chatID int64, r Reminder) error {
	return b.SendMessage(chatID, FormatReminder(r))
}

func (b *Bot) SendAdminAlert(_ context.Context, chatID int64, a AdminAlert) error {
	return b.SendMessage(chatID, FormatAdminAlert(a))
}

// Run читает обновления long polling до отмены ctx
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				b.handleMessage(ctx, update.Message)
			}
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, m *tgbotapi.Message) {
	chatID := m.Chat.ID
	switch m.Command() {
	case "start":
		code := strings.TrimSpace(m.CommandArguments())
		if code == "" {
			_ = b.SendMessage(chatID, b.welcomeText())
			return
		}
		b.handleLink(ctx, chatID, code)
	case "help":
		_ = b.SendMessage(chatID, helpText)
	default:
		_ = b.SendMessage(chatID, "Use /start to link this chat with your profile.")
	}
}

func (b *Bot) handleLink(ctx context.Context, chatID int64, code string) {
	if b.linkChat == nil {
		_ = b.SendMessage(chatID, "Linking is not available right now.")
		return
	}
	if err := b.linkChat(ctx, code, chatID); err != nil {
		b.log.Warn("chat link failed", slog.Int64("chat_id", chatID), slog.Any("error", err))
		_ = b.SendMessage(chatID, "❌ This link code is not valid. Open the link from your profile page again.")
		return
	}
	_ = b.SendMessage(chatID, "✅ Chat linked. Timetable reminders will arrive here.")
}

func (b *Bot) welcomeText() string {
	return fmt.Sprintf("👋 Welcome to BrainSelf!\n\nOpen your profile at %s and use the Telegram link there to receive timetable reminders.", b.appURL)
}

const helpText = `ℹ️ <b>BrainSelf bot</b>

• Timetable reminders a few minutes before each entry
• Messages for administrators from the contact form

Use the link on your profile page to connect this chat.`
