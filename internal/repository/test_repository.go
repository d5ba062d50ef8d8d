package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"brainself/internal/models"
)

type TestRepository interface {
	CreateTest(ctx context.Context, test *models.Test) error
	GetTest(ctx context.Context, id uuid.UUID) (*models.Test, error)
	ListPublished(ctx context.Context, gradeLevel string) ([]*models.Test, error)

	CreateQuestion(ctx context.Context, question *models.TestQuestion) error
	// ListQuestions возвращает вопросы теста в порядке order_index, затем created_at
	ListQuestions(ctx context.Context, testID uuid.UUID) ([]*models.TestQuestion, error)

	CreateAttempt(ctx context.Context, attempt *models.TestAttempt) error
	GetAttempt(ctx context.Context, id uuid.UUID) (*models.TestAttempt, error)
	UpdateAttempt(ctx context.Context, attempt *models.TestAttempt) error
	ListCompletedAttempts(ctx context.Context, userID uuid.UUID) ([]*models.TestAttempt, error)
	ListOpenAttempts(ctx context.Context) ([]*models.TestAttempt, error)
}

type testRepository struct{ db *gorm.DB }

func NewTestRepository(db *gorm.DB) TestRepository { return &testRepository{db: db} }

func (r *testRepository) CreateTest(ctx context.Context, test *models.Test) error {
	if test.ID == uuid.Nil {
		test.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Omit("Subject", "Questions").Create(test).Error
}

func (r *testRepository) GetTest(ctx context.Context, id uuid.UUID) (*models.Test, error) {
	var t models.Test
	if err := r.db.WithContext(ctx).Preload("Subject").First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *testRepository) ListPublished(ctx context.Context, gradeLevel string) ([]*models.Test, error) {
	var ts []*models.Test
	q := r.db.WithContext(ctx).Preload("Subject").Where("is_published = ?", true)
	if gradeLevel != "" {
		q = q.Where("grade_level = ?", gradeLevel)
	}
	err := q.Order("created_at DESC").Find(&ts).Error
	return ts, err
}

func (r *testRepository) CreateQuestion(ctx context.Context, question *models.TestQuestion) error {
	if question.ID == uuid.Nil {
		question.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(question).Error
}

func (r *testRepository) ListQuestions(ctx context.Context, testID uuid.UUID) ([]*models.TestQuestion, error) {
	var qs []*models.TestQuestion
	err := r.db.WithContext(ctx).
		Where("test_id = ?", testID).
		Order("order_index ASC").Order("created_at ASC").
		Find(&qs).Error
	return qs, err
}

func (r *testRepository) CreateAttempt(ctx context.Context, attempt *models.TestAttempt) error {
	if attempt.ID == uuid.Nil {
		attempt.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Omit("Test").Create(attempt).Error
}

func (r *testRepository) GetAttempt(ctx context.Context, id uuid.UUID) (*models.TestAttempt, error) {
	var a models.TestAttempt
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *testRepository) UpdateAttempt(ctx context.Context, attempt *models.TestAttempt) error {
	return r.db.WithContext(ctx).Omit("Test").Save(attempt).Error
}

func (r *testRepository) ListCompletedAttempts(ctx context.Context, userID uuid.UUID) ([]*models.TestAttempt, error) {
	var as []*models.TestAttempt
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND completed_at IS NOT NULL", userID).
		Order("completed_at DESC").
		Find(&as).Error
	return as, err
}

// ListOpenAttempts нужен при старте, чтобы заново взвести таймеры истечения
func (r *testRepository) ListOpenAttempts(ctx context.Context) ([]*models.TestAttempt, error) {
	var as []*models.TestAttempt
	err := r.db.WithContext(ctx).Where("completed_at IS NULL").Find(&as).Error
	return as, err
}
