package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"brainself/internal/access"
	"brainself/internal/models"
	"brainself/internal/repository"
)

const minPasswordLength = 6

// Claims содержимое JWT токена
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// SignUpInput данные регистрации
type SignUpInput struct {
	Email         string
	Password      string
	Nickname      string
	ContactNumber *string
	ContactEmail  *string
	SchoolTagID   *uuid.UUID
}

// AuthResult представляет результат авторизации
type AuthResult struct {
	User      *models.User    `json:"user"`
	Profile   *models.Profile `json:"profile"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// AuthService представляет сервис авторизации
type AuthService struct {
	repos     *repository.Repositories
	revoked   RevocationStore
	events    *access.Events
	log       *slog.Logger
	jwtSecret string
	ttl       time.Duration
	now       func() time.Time
}

// NewAuthService создает новый сервис авторизации
func NewAuthService(
	repos *repository.Repositories,
	revoked RevocationStore,
	events *access.Events,
	log *slog.Logger,
	jwtSecret string,
	ttl time.Duration,
) *AuthService {
	if revoked == nil {
		revoked = NewMemoryRevocations()
	}
	if events == nil {
		events = access.NewEvents()
	}
	if log == nil {
		log = slog.Default()
	}
	return &AuthService{
		repos:     repos,
		revoked:   revoked,
		events:    events,
		log:       log,
		jwtSecret: jwtSecret,
		ttl:       ttl,
		now:       time.Now,
	}
}

// Subscribe возвращает поток событий аутентификации
func (s *AuthService) Subscribe() (<-chan access.AuthEvent, func()) {
	return s.events.Subscribe()
}

// HashPassword хэширует пароль bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// SignUp создает identity и профиль ученика в одной транзакции
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, validationError("invalid email address")
	}
	if len(in.Password) < minPasswordLength {
		return nil, validationError("password must be at least %d characters", minPasswordLength)
	}
	nickname := strings.TrimSpace(in.Nickname)
	if nickname == "" {
		return nil, validationError("nickname is required")
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	role := models.RoleStudent
	user := &models.User{Email: email, PasswordHash: hash}
	profile := &models.Profile{
		Nickname:      nickname,
		Email:         email,
		ContactNumber: trimmedOrNil(in.ContactNumber),
		ContactEmail:  trimmedOrNil(in.ContactEmail),
		Role:          &role,
		SchoolTagID:   in.SchoolTagID,
	}

	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if _, err := tx.Users.GetByEmail(ctx, email); err == nil {
			return conflictError("email already registered")
		} else if !repository.IsNotFound(err) {
			return err
		}
		if _, err := tx.Profiles.GetByNickname(ctx, nickname); err == nil {
			return conflictError("nickname already taken")
		} else if !repository.IsNotFound(err) {
			return err
		}

		if err := tx.Users.Create(ctx, user); err != nil {
			return wrapRepo(err, "create user")
		}
		profile.UserID = user.ID
		if err := tx.Profiles.Create(ctx, profile); err != nil {
			return wrapRepo(err, "create profile")
		}
		if in.SchoolTagID != nil {
			if _, err := tx.SchoolTags.GetByID(ctx, *in.SchoolTagID); err != nil {
				return wrapRepo(err, "school tag")
			}
			link := &models.UserSchoolTag{UserID: profile.ID, SchoolTagID: *in.SchoolTagID, AssignedBy: profile.ID}
			if err := tx.SchoolTags.Assign(ctx, link); err != nil {
				return wrapRepo(err, "assign school tag")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user signed up", slog.String("user_id", user.ID.String()), slog.String("nickname", nickname))
	return s.issue(user, profile, access.EventSignedIn)
}

// SignIn проверяет пароль и выдает токен
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.repos.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, access.ErrNotAuthenticated
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, access.ErrNotAuthenticated
	}

	profile, err := s.repos.Profiles.GetByUserID(ctx, user.ID)
	if err != nil && !repository.IsNotFound(err) {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return s.issue(user, profile, access.EventSignedIn)
}

// SignOut отзывает токен до истечения срока
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	claims, err := s.parse(ctx, token)
	if err != nil {
		return err
	}
	if err := s.revoke(ctx, claims); err != nil {
		return err
	}
	s.publish(access.EventSignedOut, claims.UserID)
	return nil
}

// Refresh выдает новый токен и отзывает старый
func (s *AuthService) Refresh(ctx context.Context, token string) (*AuthResult, error) {
	claims, err := s.parse(ctx, token)
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, access.ErrNotAuthenticated
	}
	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, access.ErrNotAuthenticated
	}
	profile, err := s.repos.Profiles.GetByUserID(ctx, user.ID)
	if err != nil && !repository.IsNotFound(err) {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	if err := s.revoke(ctx, claims); err != nil {
		return nil, err
	}
	return s.issue(user, profile, access.EventTokenRefreshed)
}

// CurrentUser проверяет токен и возвращает identity
func (s *AuthService) CurrentUser(ctx context.Context, token string) (uuid.UUID, error) {
	claims, err := s.parse(ctx, token)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, access.ErrNotAuthenticated
	}
	return id, nil
}

// ChangePassword меняет пароль после проверки текущего
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	if len(next) < minPasswordLength {
		return validationError("password must be at least %d characters", minPasswordLength)
	}
	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return wrapRepo(err, "user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return validationError("current password is incorrect")
	}
	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	return wrapRepo(s.repos.Users.UpdatePassword(ctx, userID, hash), "update password")
}

func (s *AuthService) issue(user *models.User, profile *models.Profile, event access.EventType) (*AuthResult, error) {
	now := s.now().UTC()
	expires := now.Add(s.ttl)
	claims := Claims{
		UserID: user.ID.String(),
		Role:   string(profile.EffectiveRole()),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.publish(event, claims.UserID)
	return &AuthResult{User: user, Profile: profile, Token: token, ExpiresAt: expires}, nil
}

// parse валидирует подпись, срок и отзыв
func (s *AuthService) parse(ctx context.Context, tokenString string) (*Claims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, access.ErrNotAuthenticated
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", access.ErrNotAuthenticated, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, access.ErrNotAuthenticated
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check revocation: %w", err)
	}
	if revoked {
		return nil, access.ErrNotAuthenticated
	}
	return claims, nil
}

func (s *AuthService) revoke(ctx context.Context, claims *Claims) error {
	if claims.ID == "" || claims.ExpiresAt == nil {
		return errors.New("token has no id")
	}
	if err := s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (s *AuthService) publish(t access.EventType, userID string) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return
	}
	s.events.Publish(access.AuthEvent{Type: t, UserID: id, At: s.now()})
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
