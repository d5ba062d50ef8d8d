package repository

import (
	"context"
	"strings"

	"brainself/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository интерфейс для работы с учетными записями
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
}

// userRepository реализация репозитория учетных записей
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository создает новый репозиторий учетных записей
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create создает новую учетную запись
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.Email = normalizeEmail(user.Email)
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID получает учетную запись по ID
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail получает учетную запись по email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdatePassword заменяет хеш пароля
func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password_hash", hash).Error
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ProfileFilter задает фильтры поиска пользователей в админке
type ProfileFilter struct {
	Query string
	Role  *models.AppRole
	Limit int
}

// ProfileRepository интерфейс для работы с профилями
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	Update(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	GetByNickname(ctx context.Context, nickname string) (*models.Profile, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Profile, error)
	List(ctx context.Context, filter ProfileFilter) ([]*models.Profile, error)
	ListByRole(ctx context.Context, role models.AppRole) ([]*models.Profile, error)
	ListStudents(ctx context.Context) ([]*models.Profile, error)
	SearchStudents(ctx context.Context, nickname string) ([]*models.Profile, error)
	UpdateRole(ctx context.Context, ids []uuid.UUID, role models.AppRole) (int64, error)
	CountByRole(ctx context.Context) (map[models.AppRole]int64, error)
	SetTelegramChat(ctx context.Context, id uuid.UUID, chatID *int64) error
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository создает новый репозиторий профилей
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// studentScope отбирает профили учеников; пустая роль считается ученической
func studentScope(db *gorm.DB) *gorm.DB {
	return db.Where("role = ? OR role IS NULL", models.RoleStudent)
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *profileRepository) Update(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

func (r *profileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	if err := r.db.WithContext(ctx).Preload("SchoolTag").First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByNickname ищет профиль по точному нику без учета регистра
func (r *profileRepository) GetByNickname(ctx context.Context, nickname string) (*models.Profile, error) {
	var p models.Profile
	err := r.db.WithContext(ctx).
		Where("LOWER(nickname) = ?", strings.ToLower(strings.TrimSpace(nickname))).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Profile, error) {
	var ps []*models.Profile
	if len(ids) == 0 {
		return ps, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("nickname ASC").Find(&ps).Error
	return ps, err
}

func (r *profileRepository) List(ctx context.Context, filter ProfileFilter) ([]*models.Profile, error) {
	var ps []*models.Profile
	q := r.db.WithContext(ctx).Preload("SchoolTag")
	if s := strings.TrimSpace(filter.Query); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(nickname) LIKE ? OR LOWER(email) LIKE ? OR LOWER(registration_number) LIKE ?", like, like, like)
	}
	if filter.Role != nil {
		if *filter.Role == models.RoleStudent {
			q = q.Scopes(studentScope)
		} else {
			q = q.Where("role = ?", *filter.Role)
		}
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	err := q.Order("created_at DESC").Find(&ps).Error
	return ps, err
}

func (r *profileRepository) ListByRole(ctx context.Context, role models.AppRole) ([]*models.Profile, error) {
	return r.List(ctx, ProfileFilter{Role: &role})
}

func (r *profileRepository) ListStudents(ctx context.Context) ([]*models.Profile, error) {
	var ps []*models.Profile
	err := r.db.WithContext(ctx).Scopes(studentScope).Order("nickname ASC").Find(&ps).Error
	return ps, err
}

// SearchStudents ищет учеников по подстроке ника
func (r *profileRepository) SearchStudents(ctx context.Context, nickname string) ([]*models.Profile, error) {
	var ps []*models.Profile
	like := "%" + strings.ToLower(strings.TrimSpace(nickname)) + "%"
	err := r.db.WithContext(ctx).Scopes(studentScope).
		Where("LOWER(nickname) LIKE ?", like).
		Order("nickname ASC").
		Find(&ps).Error
	return ps, err
}

func (r *profileRepository) UpdateRole(ctx context.Context, ids []uuid.UUID, role models.AppRole) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&models.Profile{}).Where("id IN ?", ids).Update("role", role)
	return res.RowsAffected, res.Error
}

func (r *profileRepository) CountByRole(ctx context.Context) (map[models.AppRole]int64, error) {
	var rows []struct {
		Role  *models.AppRole
		Count int64
	}
	err := r.db.WithContext(ctx).Model(&models.Profile{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	stats := map[models.AppRole]int64{models.RoleStudent: 0, models.RoleTeacher: 0, models.RoleAdmin: 0}
	for _, row := range rows {
		role := models.RoleStudent
		if row.Role != nil && *row.Role != "" {
			role = *row.Role
		}
		stats[role] += row.Count
	}
	return stats, nil
}

func (r *profileRepository) SetTelegramChat(ctx context.Context, id uuid.UUID, chatID *int64) error {
	return r.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Update("telegram_chat_id", chatID).Error
}
