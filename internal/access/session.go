// Package access определяет роль пользователя и проверяет права доступа.
//
// Проверки этого пакета не являются границей безопасности сами по себе:
// обработчики отсекают запросы до загрузки данных, а сервисы повторяют
// проверку перед каждой записью. Политик на уровне строк в базе нет.
package access

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"brainself/internal/models"
	"brainself/internal/repository"
)

// Session описывает результат определения роли для текущей identity
type Session struct {
	UserID  uuid.UUID
	Profile *models.Profile
	// Role пустая, если пользователь анонимный или профиль не найден
	Role    models.AppRole
	Loading bool
}

// Anonymous возвращает сессию без роли
func Anonymous() Session { return Session{} }

// LoadingSession возвращает сессию, роль которой еще не известна
func LoadingSession(userID uuid.UUID) Session {
	return Session{UserID: userID, Loading: true}
}

// ForProfile строит сессию по уже загруженному профилю
func ForProfile(p *models.Profile) Session {
	if p == nil {
		return Anonymous()
	}
	return Session{UserID: p.UserID, Profile: p, Role: p.EffectiveRole()}
}

// IsAuthenticated сообщает, что у сессии есть профиль и роль
func (s Session) IsAuthenticated() bool { return !s.Loading && s.Role != "" && s.Profile != nil }

// IsAdmin истинно только для администратора
func (s Session) IsAdmin() bool { return !s.Loading && s.Role == models.RoleAdmin }

// IsTeacher истинно для учителя и администратора
func (s Session) IsTeacher() bool {
	return !s.Loading && (s.Role == models.RoleTeacher || s.Role == models.RoleAdmin)
}

// IsStudent истинно только для ученика
func (s Session) IsStudent() bool { return !s.Loading && s.Role == models.RoleStudent }

// ProfileID возвращает ID профиля или uuid.Nil
func (s Session) ProfileID() uuid.UUID {
	if s.Profile == nil {
		return uuid.Nil
	}
	return s.Profile.ID
}

// ProfileLookup находит профиль по identity
type ProfileLookup interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
}

// Resolver определяет роль по identity
type Resolver struct {
	profiles ProfileLookup
	log      *slog.Logger
}

// NewResolver создает резолвер ролей
func NewResolver(profiles ProfileLookup, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{profiles: profiles, log: log}
}

// Resolve загружает профиль identity. Любая ошибка трактуется как отсутствие роли.
func (r *Resolver) Resolve(ctx context.Context, identity *uuid.UUID) Session {
	if identity == nil || *identity == uuid.Nil {
		return Anonymous()
	}
	profile, err := r.profiles.GetByUserID(ctx, *identity)
	if err != nil {
		if repository.IsNotFound(err) {
			r.log.Debug("profile not found for identity", "user_id", identity.String())
		} else {
			r.log.Error("failed to resolve role", "user_id", identity.String(), "error", err)
		}
		return Session{UserID: *identity}
	}
	if profile == nil {
		return Session{UserID: *identity}
	}
	return Session{UserID: *identity, Profile: profile, Role: profile.EffectiveRole()}
}
