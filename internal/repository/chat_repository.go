package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"brainself/internal/models"
)

type ChatRepository interface {
	CreateMessage(ctx context.Context, message *models.GroupChatMessage) error
	GetMessage(ctx context.Context, id uuid.UUID) (*models.GroupChatMessage, error)
	// ListMessages возвращает сообщения группы по возрастанию времени.
	// Если since задан, только сообщения строго позже него. При limit > 0 берутся самые новые limit сообщений.
	ListMessages(ctx context.Context, groupID uuid.UUID, since *time.Time, limit int) ([]*models.GroupChatMessage, error)
}

type chatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) CreateMessage(ctx context.Context, message *models.GroupChatMessage) error {
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *chatRepository) GetMessage(ctx context.Context, id uuid.UUID) (*models.GroupChatMessage, error) {
	var m models.GroupChatMessage
	if err := r.db.WithContext(ctx).Preload("Author").First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *chatRepository) ListMessages(ctx context.Context, groupID uuid.UUID, since *time.Time, limit int) ([]*models.GroupChatMessage, error) {
	var ms []*models.GroupChatMessage
	q := r.db.WithContext(ctx).Preload("Author").Where("group_id = ?", groupID)
	if since != nil {
		q = q.Where("created_at > ?", *since)
	}
	if limit <= 0 {
		err := q.Order("created_at ASC").Order("id ASC").Find(&ms).Error
		return ms, err
	}

	// последние limit сообщений, затем в хронологическом порядке
	if err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&ms).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(ms)-1; i < j; i, j = i+1, j-1 {
		ms[i], ms[j] = ms[j], ms[i]
	}
	return ms, nil
}
