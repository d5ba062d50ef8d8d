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
	"brainself/internal/realtime"
	"brainself/internal/repository"
)

const maxChatHistory = 500

type ChatService interface {
	Send(ctx context.Context, actor access.Session, groupID uuid.UUID, text string) (*realtime.ChatEvent, error)
	// List возвращает сообщения по возрастанию времени; since отбирает только более новые
	List(ctx context.Context, actor access.Session, groupID uuid.UUID, since *time.Time) ([]realtime.ChatEvent, error)
	Subscribe(ctx context.Context, actor access.Session, groupID uuid.UUID) (<-chan realtime.ChatEvent, func(), error)
}

type chatService struct {
	repos  *repository.Repositories
	groups GroupService
	hub    *realtime.Hub
	log    *slog.Logger
}

// NewChatService создает сервис группового чата
func NewChatService(repos *repository.Repositories, groups GroupService, hub *realtime.Hub, log *slog.Logger) ChatService {
	if log == nil {
		log = slog.Default()
	}
	return &chatService{repos: repos, groups: groups, hub: hub, log: log}
}

// Send сохраняет сообщение и рассылает его подписчикам группы.
// Писать могут только участники группы.
func (s *chatService) Send(ctx context.Context, actor access.Session, groupID uuid.UUID, text string) (*realtime.ChatEvent, error) {
	if err := access.Authorize(actor, access.RequireAuthenticated); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, validationError("message is empty")
	}
	member, err := s.repos.Groups.IsMember(ctx, groupID, actor.ProfileID())
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !member {
		return nil, access.ErrForbidden
	}

	msg := &models.GroupChatMessage{GroupID: groupID, UserID: actor.ProfileID(), Message: text}
	if err := s.repos.Chat.CreateMessage(ctx, msg); err != nil {
		return nil, wrapRepo(err, "send message")
	}
	msg.Author = actor.Profile

	ev := chatEvent(msg)
	// сообщение уже сохранено: сбой рассылки догонят через since
	if err := s.hub.PublishChat(ctx, ev); err != nil {
		s.log.Warn("failed to publish chat message",
			slog.String("group_id", groupID.String()),
			slog.String("error", err.Error()),
		)
	}
	return &ev, nil
}

func (s *chatService) List(ctx context.Context, actor access.Session, groupID uuid.UUID, since *time.Time) ([]realtime.ChatEvent, error) {
	if err := s.groups.CanView(ctx, actor, groupID); err != nil {
		return nil, err
	}
	// догонка после переподключения отдается целиком, иначе последние maxChatHistory
	limit := maxChatHistory
	if since != nil {
		limit = 0
	}
	msgs, err := s.repos.Chat.ListMessages(ctx, groupID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	events := make([]realtime.ChatEvent, 0, len(msgs))
	for _, m := range msgs {
		events = append(events, chatEvent(m))
	}
	return events, nil
}

func (s *chatService) Subscribe(ctx context.Context, actor access.Session, groupID uuid.UUID) (<-chan realtime.ChatEvent, func(), error) {
	if err := s.groups.CanView(ctx, actor, groupID); err != nil {
		return nil, nil, err
	}
	return s.hub.SubscribeChat(ctx, groupID)
}

func chatEvent(m *models.GroupChatMessage) realtime.ChatEvent {
	nickname := "Unknown"
	if m.Author != nil && m.Author.Nickname != "" {
		nickname = m.Author.Nickname
	}
	return realtime.ChatEvent{
		ID:        m.ID,
		GroupID:   m.GroupID,
		UserID:    m.UserID,
		Nickname:  nickname,
		Message:   m.Message,
		CreatedAt: m.CreatedAt,
	}
}
