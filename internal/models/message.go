package models

import (
	"time"

	"github.com/google/uuid"
)

// MessageType определяет типы сообщений во входящих
type MessageType string

const (
	MessageTypeMention   MessageType = "mention"
	MessageTypeNewTag    MessageType = "new_tag"
	MessageTypeTagChange MessageType = "tag_change"
	MessageTypeOther     MessageType = "other"
)

// Message представляет запись во входящих (inbox) пользователя
type Message struct {
	ID          uuid.UUID   `json:"id" gorm:"type:text;primaryKey"`
	UserID      uuid.UUID   `json:"user_id" gorm:"type:text;not null;index"`
	MessageType MessageType `json:"message_type" gorm:"type:varchar(20);not null;default:'other'"`
	Title       string      `json:"title" gorm:"not null"`
	Content     string      `json:"content" gorm:"not null"`
	ReadStatus  bool        `json:"read_status" gorm:"not null;default:false"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
