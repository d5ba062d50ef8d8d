package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"brainself/internal/models"
)

type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	Update(ctx context.Context, group *models.Group) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Group, error)
	List(ctx context.Context) ([]*models.Group, error)

	AddMember(ctx context.Context, member *models.GroupMember) error
	RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error
	ListMembers(ctx context.Context, groupID uuid.UUID) ([]*models.GroupMember, error)
	ListMemberships(ctx context.Context, userID uuid.UUID) ([]*models.GroupMember, error)
	IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
}

type groupRepository struct{ db *gorm.DB }

func NewGroupRepository(db *gorm.DB) GroupRepository { return &groupRepository{db: db} }

func (r *groupRepository) Create(ctx context.Context, group *models.Group) error {
	if group.ID == uuid.Nil {
		group.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *groupRepository) Update(ctx context.Context, group *models.Group) error {
	return r.db.WithContext(ctx).Save(group).Error
}

func (r *groupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&models.GroupMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Group{}, "id = ?", id).Error
	})
}

func (r *groupRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	var g models.Group
	err := r.db.WithContext(ctx).Preload("SchoolTag").First(&g, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *groupRepository) List(ctx context.Context) ([]*models.Group, error) {
	var gs []*models.Group
	err := r.db.WithContext(ctx).Preload("SchoolTag").Order("created_at DESC").Find(&gs).Error
	return gs, err
}

func (r *groupRepository) AddMember(ctx context.Context, member *models.GroupMember) error {
	if member.ID == uuid.Nil {
		member.ID = uuid.New()
	}
	if member.JoinedAt.IsZero() {
		member.JoinedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *groupRepository) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("group_id = ? AND user_id = ?", groupID, userID).Delete(&models.GroupMember{}).Error
}

func (r *groupRepository) ListMembers(ctx context.Context, groupID uuid.UUID) ([]*models.GroupMember, error) {
	var ms []*models.GroupMember
	err := r.db.WithContext(ctx).Preload("User").Where("group_id = ?", groupID).Order("joined_at ASC").Find(&ms).Error
	return ms, err
}

// ListMemberships возвращает членства пользователя, новые первыми
func (r *groupRepository) ListMemberships(ctx context.Context, userID uuid.UUID) ([]*models.GroupMember, error) {
	var ms []*models.GroupMember
	err := r.db.WithContext(ctx).
		Preload("Group").Preload("Group.SchoolTag").
		Where("user_id = ?", userID).
		Order("joined_at DESC").
		Find(&ms).Error
	return ms, err
}

func (r *groupRepository) IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.GroupMember{}).Where("group_id = ? AND user_id = ?", groupID, userID).Count(&count).Error
	return count > 0, err
}
