package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"brainself/internal/models"
)

type AchievementRepository interface {
	Create(ctx context.Context, achievement *models.Achievement) error
	List(ctx context.Context) ([]*models.Achievement, error)
	GetByName(ctx context.Context, name string) (*models.Achievement, error)

	// Award идемпотентен: повторная выдача ничего не меняет
	Award(ctx context.Context, userID, achievementID uuid.UUID) (bool, error)
	ListEarned(ctx context.Context, userID uuid.UUID) ([]*models.UserAchievement, error)
}

type achievementRepository struct{ db *gorm.DB }

func NewAchievementRepository(db *gorm.DB) AchievementRepository {
	return &achievementRepository{db: db}
}

func (r *achievementRepository) Create(ctx context.Context, achievement *models.Achievement) error {
	if achievement.ID == uuid.Nil {
		achievement.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(achievement).Error
}

func (r *achievementRepository) List(ctx context.Context) ([]*models.Achievement, error) {
	var as []*models.Achievement
	err := r.db.WithContext(ctx).Order("points ASC").Order("name ASC").Find(&as).Error
	return as, err
}

func (r *achievementRepository) GetByName(ctx context.Context, name string) (*models.Achievement, error) {
	var a models.Achievement
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *achievementRepository) Award(ctx context.Context, userID, achievementID uuid.UUID) (bool, error) {
	ua := models.UserAchievement{
		ID:            uuid.New(),
		UserID:        userID,
		AchievementID: achievementID,
		EarnedAt:      time.Now(),
	}
	res := r.db.WithContext(ctx).Omit("Achievement").Clauses(clause.OnConflict{DoNothing: true}).Create(&ua)
	return res.RowsAffected > 0, res.Error
}

func (r *achievementRepository) ListEarned(ctx context.Context, userID uuid.UUID) ([]*models.UserAchievement, error) {
	var us []*models.UserAchievement
	err := r.db.WithContext(ctx).Preload("Achievement").
		Where("user_id = ?", userID).
		Order("earned_at DESC").
		Find(&us).Error
	return us, err
}
