package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"brainself/internal/models"
)

type TimetableRepository interface {
	Create(ctx context.Context, entry *models.TimetableEntry) error
	Update(ctx context.Context, entry *models.TimetableEntry) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.TimetableEntry, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.TimetableEntry, error)
	ListBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*models.TimetableEntry, error)
	// ListWithReminders возвращает записи с включенными уведомлениями,
	// которые еще могут сработать (будущие или повторяющиеся)
	ListWithReminders(ctx context.Context, now time.Time) ([]*models.TimetableEntry, error)
}

type timetableRepository struct{ db *gorm.DB }

func NewTimetableRepository(db *gorm.DB) TimetableRepository { return &timetableRepository{db: db} }

func (r *timetableRepository) Create(ctx context.Context, entry *models.TimetableEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *timetableRepository) Update(ctx context.Context, entry *models.TimetableEntry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *timetableRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.TimetableEntry{}, "id = ?", id).Error
}

func (r *timetableRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TimetableEntry, error) {
	var e models.TimetableEntry
	if err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *timetableRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.TimetableEntry, error) {
	var es []*models.TimetableEntry
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("start_time ASC").Find(&es).Error
	return es, err
}

func (r *timetableRepository) ListBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*models.TimetableEntry, error) {
	var es []*models.TimetableEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND start_time >= ? AND start_time < ?", userID, from, to).
		Order("start_time ASC").
		Find(&es).Error
	return es, err
}

func (r *timetableRepository) ListWithReminders(ctx context.Context, now time.Time) ([]*models.TimetableEntry, error) {
	var es []*models.TimetableEntry
	err := r.db.WithContext(ctx).
		Where("notification_enabled = ?", true).
		Where("start_time > ? OR is_recurring = ?", now, true).
		Order("start_time ASC").
		Find(&es).Error
	return es, err
}
