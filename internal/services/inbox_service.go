package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"brainself/internal/access"
	"brainself/internal/models"
	"brainself/internal/repository"
	"brainself/pkg/telegram"
)

const adminAlertTimeout = 10 * time.Second

// ContactInput обращение к администраторам с формы обратной связи
type ContactInput struct {
	SenderName    string `json:"sender_name" binding:"required"`
	SenderContact string `json:"sender_contact" binding:"required"`
	Title         string `json:"title" binding:"required"`
	Content       string `json:"content" binding:"required"`
}

func (in *ContactInput) normalize() error {
	in.SenderName = strings.TrimSpace(in.SenderName)
	in.SenderContact = strings.TrimSpace(in.SenderContact)
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	if in.SenderName == "" || in.SenderContact == "" || in.Title == "" || in.Content == "" {
		return validationError("all fields are required")
	}
	return nil
}

// Inbox сообщения пользователя и число непрочитанных
type Inbox struct {
	Messages []*models.Message `json:"messages"`
	Unread   int64             `json:"unread"`
}

type InboxService interface {
	// BroadcastToAdmins доступен и без входа в систему
	BroadcastToAdmins(ctx context.Context, in ContactInput) (int, error)

	List(ctx context.Context, actor access.Session) (*Inbox, error)
	UnreadCount(ctx context.Context, actor access.Session) (int64, error)
	MarkRead(ctx context.Context, actor access.Session, id uuid.UUID) error
	MarkAllRead(ctx context.Context, actor access.Session) (int64, error)
	Delete(ctx context.Context, actor access.Session, id uuid.UUID) error

	Prune(ctx context.Context, olderThan time.Time) error
}

type inboxService struct {
	repos    *repository.Repositories
	notifier telegram.Notifier
	log      *slog.Logger
}

func NewInboxService(repos *repository.Repositories, notifier telegram.Notifier, log *slog.Logger) InboxService {
	if log == nil {
		log = slog.Default()
	}
	return &inboxService{repos: repos, notifier: notifier, log: log}
}

// FormatContactMessage текст сообщения администратору во входящих
func FormatContactMessage(in ContactInput) string {
	return fmt.Sprintf("From: %s\nContact: %s\n\n%s", in.SenderName, in.SenderContact, in.Content)
}

func (s *inboxService) BroadcastToAdmins(ctx context.Context, in ContactInput) (int, error) {
	if err := in.normalize(); err != nil {
		return 0, err
	}

	var admins []*models.Profile
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		var err error
		if admins, err = tx.Profiles.ListByRole(ctx, models.RoleAdmin); err != nil {
			return fmt.Errorf("failed to load admins: %w", err)
		}
		if len(admins) == 0 {
			return fmt.Errorf("administrators: %w", ErrNotFound)
		}
		ids := make([]uuid.UUID, 0, len(admins))
		for _, a := range admins {
			ids = append(ids, a.ID)
		}
		return tx.Messages.CreateForUsers(ctx, ids, models.MessageTypeOther, in.Title, FormatContactMessage(in))
	})
	if err != nil {
		return 0, err
	}

	s.alertAdmins(admins, in)
	s.log.Info("message sent to admins", slog.Int("admins", len(admins)), slog.String("title", in.Title))
	return len(admins), nil
}

// alertAdmins дублирует обращение в Telegram; сбои доставки только логируются
func (s *inboxService) alertAdmins(admins []*models.Profile, in ContactInput) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), adminAlertTimeout)
	defer cancel()

	alert := telegram.AdminAlert{
		SenderName:    in.SenderName,
		SenderContact: in.SenderContact,
		Title:         in.Title,
		Content:       in.Content,
	}
	for _, a := range admins {
		if a.TelegramChatID == nil {
			continue
		}
		if err := s.notifier.SendAdminAlert(ctx, *a.TelegramChatID, alert); err != nil {
			s.log.Warn("failed to alert admin", slog.String("profile_id", a.ID.String()), slog.String("error", err.Error()))
		}
	}
}

func (s *inboxService) List(ctx context.Context, actor access.Session) (*Inbox, error) {
	if err := access.Authorize(actor, access.RequireAuthenticated); err != nil {
		return nil, err
	}
	msgs, err := s.repos.Messages.ListByUser(ctx, actor.ProfileID())
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	out := &Inbox{Messages: msgs}
	for _, m := range msgs {
		if !m.ReadStatus {
			out.Unread++
		}
	}
	return out, nil
}

func (s *inboxService) UnreadCount(ctx context.Context, actor access.Session) (int64, error) {
	if err := access.Authorize(actor, access.RequireAuthenticated); err != nil {
		return 0, err
	}
	return s.repos.Messages.CountUnread(ctx, actor.ProfileID())
}

func (s *inboxService) own(ctx context.Context, actor access.Session, id uuid.UUID) (*models.Message, error) {
	if err := access.Authorize(actor, access.RequireAuthenticated); err != nil {
		return nil, err
	}
	m, err := s.repos.Messages.GetByID(ctx, id)
	if err != nil {
		return nil, wrapRepo(err, "message")
	}
	if m.UserID != actor.ProfileID() {
		// чужое сообщение неотличимо от отсутствующего
		return nil, fmt.Errorf("message: %w", ErrNotFound)
	}
	return m, nil
}

// MarkRead идемпотентен: повторная отметка ничего не меняет
func (s *inboxService) MarkRead(ctx context.Context, actor access.Session, id uuid.UUID) error {
	m, err := s.own(ctx, actor, id)
	if err != nil {
		return err
	}
	if m.ReadStatus {
		return nil
	}
	return wrapRepo(s.repos.Messages.MarkAsRead(ctx, id), "mark read")
}

func (s *inboxService) MarkAllRead(ctx context.Context, actor access.Session) (int64, error) {
	if err := access.Authorize(actor, access.RequireAuthenticated); err != nil {
		return 0, err
	}
	return s.repos.Messages.MarkAllAsRead(ctx, actor.ProfileID())
}

func (s *inboxService) Delete(ctx context.Context, actor access.Session, id uuid.UUID) error {
	if _, err := s.own(ctx, actor, id); err != nil {
		return err
	}
	return wrapRepo(s.repos.Messages.Delete(ctx, id), "delete message")
}

// Prune удаляет прочитанные сообщения старше olderThan
func (s *inboxService) Prune(ctx context.Context, olderThan time.Time) error {
	if err := s.repos.Messages.CleanupOld(ctx, olderThan); err != nil {
		return fmt.Errorf("failed to prune inbox: %w", err)
	}
	return nil
}
