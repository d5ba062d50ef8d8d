package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"brainself/internal/access"
	"brainself/internal/models"
	"brainself/internal/repository"
)

// ProfileUpdate изменяемые пользователем поля профиля
type ProfileUpdate struct {
	Nickname           *string `json:"nickname"`
	ContactEmail       *string `json:"contact_email"`
	ContactNumber      *string `json:"contact_number"`
	RegistrationNumber *string `json:"registration_number"`
	GradeLevel         *string `json:"grade_level"`
}

// RoleStats число пользователей по ролям
type RoleStats struct {
	Total    int64 `json:"total"`
	Students int64 `json:"students"`
	Teachers int64 `json:"teachers"`
	Admins   int64 `json:"admins"`
}

// ProfileService управляет профилями и ролями
type ProfileService interface {
	Me(ctx context.Context, actor access.Session) (*models.Profile, error)
	UpdateMe(ctx context.Context, actor access.Session, in ProfileUpdate) (*models.Profile, error)

	// Только для учителей
	ListStudents(ctx context.Context, actor access.Session) ([]*models.Profile, error)

	// Только для администраторов
	ListUsers(ctx context.Context, actor access.Session, filter repository.ProfileFilter) ([]*models.Profile, error)
	UpdateRole(ctx context.Context, actor access.Session, profileID uuid.UUID, role models.AppRole) error
	BulkUpdateRole(ctx context.Context, actor access.Session, profileIDs []uuid.UUID, role models.AppRole) (int64, error)
	RoleStats(ctx context.Context, actor access.Session) (*RoleStats, error)

	// Административные операции без сессии (CLI)
	SetRoleByNickname(ctx context.Context, nickname string, role models.AppRole) (*models.Profile, error)

	LinkTelegram(ctx context.Context, code string, chatID int64) error
}

type profileService struct {
	profiles repository.ProfileRepository
	events   *access.Events
	log      *slog.Logger
}

// NewProfileService создает сервис профилей
func NewProfileService(profiles repository.ProfileRepository, events *access.Events, log *slog.Logger) ProfileService {
	if log == nil {
		log = slog.Default()
	}
	return &profileService{profiles: profiles, events: events, log: log}
}

func (s *profileService) Me(ctx context.Context, actor access.Session) (*models.Profile, error) {
	if err := access.Authorize(actor, access.RequireAuthenticated); err != nil {
		return nil, err
	}
	p, err := s.profiles.GetByID(ctx, actor.ProfileID())
	return p, wrapRepo(err, "profile")
}

func (s *profileService) UpdateMe(ctx context.Context, actor access.Session, in ProfileUpdate) (*models.Profile, error) {
	if err := access.Authorize(actor, access.RequireAuthenticated); err != nil {
		return nil, err
	}
	p, err := s.profiles.GetByID(ctx, actor.ProfileID())
	if err != nil {
		return nil, wrapRepo(err, "profile")
	}

	if in.Nickname != nil {
		nickname := strings.TrimSpace(*in.Nickname)
		if nickname == "" {
			return nil, validationError("nickname is required")
		}
		if !strings.EqualFold(nickname, p.Nickname) {
			if _, err := s.profiles.GetByNickname(ctx, nickname); err == nil {
				return nil, conflictError("nickname already taken")
			} else if !repository.IsNotFound(err) {
				return nil, err
			}
		}
		p.Nickname = nickname
	}
	if in.GradeLevel != nil {
		grade := strings.TrimSpace(*in.GradeLevel)
		if grade != "" && !models.ValidGradeLevel(grade) {
			return nil, validationError("invalid grade level %q", grade)
		}
		p.GradeLevel = trimmedOrNil(&grade)
	}
	if in.ContactEmail != nil {
		p.ContactEmail = trimmedOrNil(in.ContactEmail)
	}
	if in.ContactNumber != nil {
		p.ContactNumber = trimmedOrNil(in.ContactNumber)
	}
	if in.RegistrationNumber != nil {
		p.RegistrationNumber = trimmedOrNil(in.RegistrationNumber)
	}

	if err := s.profiles.Update(ctx, p); err != nil {
		return nil, wrapRepo(err, "update profile")
	}
	return p, nil
}

func (s *profileService) ListStudents(ctx context.Context, actor access.Session) ([]*models.Profile, error) {
	if err := access.Authorize(actor, access.RequireTeacher); err != nil {
		return nil, err
	}
	return s.profiles.ListStudents(ctx)
}

func (s *profileService) ListUsers(ctx context.Context, actor access.Session, filter repository.ProfileFilter) ([]*models.Profile, error) {
	if err := access.Authorize(actor, access.RequireAdmin); err != nil {
		return nil, err
	}
	return s.profiles.List(ctx, filter)
}

func (s *profileService) UpdateRole(ctx context.Context, actor access.Session, profileID uuid.UUID, role models.AppRole) error {
	_, err := s.BulkUpdateRole(ctx, actor, []uuid.UUID{profileID}, role)
	return err
}

func (s *profileService) BulkUpdateRole(ctx context.Context, actor access.Session, profileIDs []uuid.UUID, role models.AppRole) (int64, error) {
	if err := access.Authorize(actor, access.RequireAdmin); err != nil {
		return 0, err
	}
	if !role.Valid() {
		return 0, validationError("invalid role %q", role)
	}
	if len(profileIDs) == 0 {
		return 0, validationError("no users selected")
	}

	targets, err := s.profiles.ListByIDs(ctx, profileIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to load profiles: %w", err)
	}
	if len(targets) == 0 {
		return 0, fmt.Errorf("profiles: %w", ErrNotFound)
	}

	updated, err := s.profiles.UpdateRole(ctx, profileIDs, role)
	if err != nil {
		return 0, fmt.Errorf("failed to update roles: %w", err)
	}
	for _, p := range targets {
		s.events.Publish(access.AuthEvent{Type: access.EventRoleChanged, UserID: p.UserID})
	}
	s.log.Info("roles updated",
		slog.String("by", actor.ProfileID().String()),
		slog.String("role", string(role)),
		slog.Int64("count", updated),
	)
	return updated, nil
}

func (s *profileService) RoleStats(ctx context.Context, actor access.Session) (*RoleStats, error) {
	if err := access.Authorize(actor, access.RequireAdmin); err != nil {
		return nil, err
	}
	counts, err := s.profiles.CountByRole(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count roles: %w", err)
	}
	stats := &RoleStats{
		Students: counts[models.RoleStudent],
		Teachers: counts[models.RoleTeacher],
		Admins:   counts[models.RoleAdmin],
	}
	stats.Total = stats.Students + stats.Teachers + stats.Admins
	return stats, nil
}

func (s *profileService) SetRoleByNickname(ctx context.Context, nickname string, role models.AppRole) (*models.Profile, error) {
	if !role.Valid() {
		return nil, validationError("invalid role %q", role)
	}
	p, err := s.profiles.GetByNickname(ctx, strings.TrimSpace(nickname))
	if err != nil {
		return nil, wrapRepo(err, "profile "+nickname)
	}
	if _, err := s.profiles.UpdateRole(ctx, []uuid.UUID{p.ID}, role); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	p.Role = &role
	s.events.Publish(access.AuthEvent{Type: access.EventRoleChanged, UserID: p.UserID})
	return p, nil
}

// LinkTelegram привязывает чат по коду, выданному на странице профиля (ID профиля)
func (s *profileService) LinkTelegram(ctx context.Context, code string, chatID int64) error {
	id, err := uuid.Parse(strings.TrimSpace(code))
	if err != nil {
		return validationError("invalid link code")
	}
	if _, err := s.profiles.GetByID(ctx, id); err != nil {
		return wrapRepo(err, "profile")
	}
	return wrapRepo(s.profiles.SetTelegramChat(ctx, id, &chatID), "link telegram")
}
