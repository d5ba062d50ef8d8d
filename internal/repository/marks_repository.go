package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"brainself/internal/models"
)

// MarkFilter задает фильтры таблицы оценок
type MarkFilter struct {
	Subject    string
	GradeLevel string
	Term       models.Term
	Year       int
}

type MarksRepository interface {
	Create(ctx context.Context, mark *models.StudentMark) error
	Update(ctx context.Context, mark *models.StudentMark) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.StudentMark, error)
	// ListByStudent возвращает только оценки, выставленные профилю
	ListByStudent(ctx context.Context, profileID uuid.UUID) ([]*models.StudentMark, error)
	ListByStudents(ctx context.Context, profileIDs []uuid.UUID) ([]*models.StudentMark, error)
	List(ctx context.Context, filter MarkFilter) ([]*models.StudentMark, error)
}

type marksRepository struct{ db *gorm.DB }

func NewMarksRepository(db *gorm.DB) MarksRepository { return &marksRepository{db: db} }

func (r *marksRepository) Create(ctx context.Context, mark *models.StudentMark) error {
	if mark.ID == uuid.Nil {
		mark.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Omit("Student").Create(mark).Error
}

func (r *marksRepository) Update(ctx context.Context, mark *models.StudentMark) error {
	return r.db.WithContext(ctx).Omit("Student").Save(mark).Error
}

func (r *marksRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.StudentMark{}, "id = ?", id).Error
}

func (r *marksRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.StudentMark, error) {
	var m models.StudentMark
	if err := r.db.WithContext(ctx).Preload("Student").First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *marksRepository) ListByStudent(ctx context.Context, profileID uuid.UUID) ([]*models.StudentMark, error) {
	var ms []*models.StudentMark
	err := r.db.WithContext(ctx).
		Where("student_id = ?", profileID).
		Order("year DESC").Order("created_at DESC").
		Find(&ms).Error
	return ms, err
}

// ListByStudents возвращает оценки группы учеников, новые первыми
func (r *marksRepository) ListByStudents(ctx context.Context, profileIDs []uuid.UUID) ([]*models.StudentMark, error) {
	var ms []*models.StudentMark
	if len(profileIDs) == 0 {
		return ms, nil
	}
	err := r.db.WithContext(ctx).
		Where("student_id IN ?", profileIDs).
		Order("created_at DESC").Order("id ASC").
		Find(&ms).Error
	return ms, err
}

func (r *marksRepository) List(ctx context.Context, filter MarkFilter) ([]*models.StudentMark, error) {
	var ms []*models.StudentMark
	q := r.db.WithContext(ctx).Preload("Student")
	if s := strings.TrimSpace(filter.Subject); s != "" {
		q = q.Where("LOWER(subject_name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if filter.GradeLevel != "" {
		q = q.Where("grade_level = ?", filter.GradeLevel)
	}
	if filter.Term != "" {
		q = q.Where("term = ?", filter.Term)
	}
	if filter.Year > 0 {
		q = q.Where("year = ?", filter.Year)
	}
	err := q.Order("created_at DESC").Find(&ms).Error
	return ms, err
}
