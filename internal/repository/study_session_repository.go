package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"brainself/internal/models"
)

type StudySessionRepository interface {
	Create(ctx context.Context, session *models.StudySession) error
	Complete(ctx context.Context, id uuid.UUID, durationMinutes int, completedAt time.Time) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.StudySession, error)
	ListByUsers(ctx context.Context, userIDs []uuid.UUID) ([]*models.StudySession, error)
	TotalMinutes(ctx context.Context, userID uuid.UUID) (int, error)
}

type studySessionRepository struct{ db *gorm.DB }

func NewStudySessionRepository(db *gorm.DB) StudySessionRepository {
	return &studySessionRepository{db: db}
}

func (r *studySessionRepository) Create(ctx context.Context, session *models.StudySession) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *studySessionRepository) Complete(ctx context.Context, id uuid.UUID, durationMinutes int, completedAt time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.StudySession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"duration_minutes": durationMinutes,
			"completed_at":     completedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByUser возвращает последние сессии пользователя; limit <= 0 означает все
func (r *studySessionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.StudySession, error) {
	var ss []*models.StudySession
	q := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("started_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&ss).Error
	return ss, err
}

func (r *studySessionRepository) ListByUsers(ctx context.Context, userIDs []uuid.UUID) ([]*models.StudySession, error) {
	var ss []*models.StudySession
	if len(userIDs) == 0 {
		return ss, nil
	}
	err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Order("started_at DESC").Find(&ss).Error
	return ss, err
}

func (r *studySessionRepository) TotalMinutes(ctx context.Context, userID uuid.UUID) (int, error) {
	var total int
	err := r.db.WithContext(ctx).Model(&models.StudySession{}).
		Select("COALESCE(SUM(duration_minutes), 0)").
		Where("user_id = ?", userID).
		Scan(&total).Error
	return total, err
}
