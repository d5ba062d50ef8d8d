package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"brainself/internal/models"
)

type SchoolTagRepository interface {
	Create(ctx context.Context, tag *models.SchoolTag) error
	Update(ctx context.Context, tag *models.SchoolTag) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.SchoolTag, error)
	List(ctx context.Context) ([]*models.SchoolTag, error)

	Assign(ctx context.Context, link *models.UserSchoolTag) error
	Unassign(ctx context.Context, userID, tagID uuid.UUID) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.UserSchoolTag, error)
	TagIDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	HasTag(ctx context.Context, userID, tagID uuid.UUID) (bool, error)
	// StudentsWithAnyTag возвращает учеников, у которых есть хотя бы один из тегов
	StudentsWithAnyTag(ctx context.Context, tagIDs []uuid.UUID) ([]*models.Profile, error)
}

type schoolTagRepository struct{ db *gorm.DB }

func NewSchoolTagRepository(db *gorm.DB) SchoolTagRepository { return &schoolTagRepository{db: db} }

func (r *schoolTagRepository) Create(ctx context.Context, tag *models.SchoolTag) error {
	if tag.ID == uuid.Nil {
		tag.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(tag).Error
}

func (r *schoolTagRepository) Update(ctx context.Context, tag *models.SchoolTag) error {
	return r.db.WithContext(ctx).Save(tag).Error
}

func (r *schoolTagRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("school_tag_id = ?", id).Delete(&models.UserSchoolTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.SchoolTag{}, "id = ?", id).Error
	})
}

func (r *schoolTagRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SchoolTag, error) {
	var t models.SchoolTag
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *schoolTagRepository) List(ctx context.Context) ([]*models.SchoolTag, error) {
	var ts []*models.SchoolTag
	err := r.db.WithContext(ctx).Order("display_name ASC").Find(&ts).Error
	return ts, err
}

func (r *schoolTagRepository) Assign(ctx context.Context, link *models.UserSchoolTag) error {
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	if link.AssignedAt.IsZero() {
		link.AssignedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *schoolTagRepository) Unassign(ctx context.Context, userID, tagID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND school_tag_id = ?", userID, tagID).
		Delete(&models.UserSchoolTag{}).Error
}

func (r *schoolTagRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.UserSchoolTag, error) {
	var ls []*models.UserSchoolTag
	err := r.db.WithContext(ctx).Preload("SchoolTag").
		Where("user_id = ?", userID).
		Order("assigned_at ASC").
		Find(&ls).Error
	return ls, err
}

func (r *schoolTagRepository) TagIDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.UserSchoolTag{}).
		Where("user_id = ?", userID).
		Pluck("school_tag_id", &ids).Error
	return ids, err
}

func (r *schoolTagRepository) HasTag(ctx context.Context, userID, tagID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserSchoolTag{}).
		Where("user_id = ? AND school_tag_id = ?", userID, tagID).
		Count(&count).Error
	return count > 0, err
}

func (r *schoolTagRepository) StudentsWithAnyTag(ctx context.Context, tagIDs []uuid.UUID) ([]*models.Profile, error) {
	var ps []*models.Profile
	if len(tagIDs) == 0 {
		return ps, nil
	}
	sub := r.db.Model(&models.UserSchoolTag{}).Select("user_id").Where("school_tag_id IN ?", tagIDs)
	err := r.db.WithContext(ctx).Scopes(studentScope).
		Where("id IN (?)", sub).
		Order("nickname ASC").
		Find(&ps).Error
	return ps, err
}
