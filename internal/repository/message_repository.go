package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"brainself/internal/models"
)

// MessageRepository хранит сообщения входящих (inbox)
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Message, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Message, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Методы для массовых операций
	CreateForUsers(ctx context.Context, userIDs []uuid.UUID, messageType models.MessageType, title, content string) error
	MarkAsRead(ctx context.Context, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
	CleanupOld(ctx context.Context, olderThan time.Time) error
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	var message models.Message
	if err := r.db.WithContext(ctx).First(&message, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *messageRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Message, error) {
	var messages []*models.Message
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&messages).Error
	return messages, err
}

func (r *messageRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("user_id = ? AND read_status = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *messageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Message{}, "id = ?", id).Error
}

func (r *messageRepository) CreateForUsers(ctx context.Context, userIDs []uuid.UUID, messageType models.MessageType, title, content string) error {
	if len(userIDs) == 0 {
		return nil
	}
	now := time.Now()
	messages := make([]models.Message, 0, len(userIDs))
	for _, userID := range userIDs {
		messages = append(messages, models.Message{
			ID:          uuid.New(),
			UserID:      userID,
			MessageType: messageType,
			Title:       title,
			Content:     content,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	return r.db.WithContext(ctx).Create(&messages).Error
}

// MarkAsRead идемпотентен: повторный вызов оставляет read_status = true
func (r *messageRepository) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.Message{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"read_status": true,
			"updated_at":  time.Now(),
		}).Error
}

func (r *messageRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("user_id = ? AND read_status = ?", userID, false).
		Updates(map[string]interface{}{
			"read_status": true,
			"updated_at":  time.Now(),
		})
	return res.RowsAffected, res.Error
}

func (r *messageRepository) CleanupOld(ctx context.Context, olderThan time.Time) error {
	return r.db.WithContext(ctx).
		Where("created_at < ? AND read_status = ?", olderThan, true).
		Delete(&models.Message{}).Error
}
