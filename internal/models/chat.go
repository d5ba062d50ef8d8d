package models

import (
	"time"

	"github.com/google/uuid"
)

// GroupChatMessage представляет сообщение группового чата
type GroupChatMessage struct {
	ID        uuid.UUID `json:"id" gorm:"type:text;primaryKey"`
	GroupID   uuid.UUID `json:"group_id" gorm:"type:text;not null;index:idx_group_chat_created"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:text;not null"`
	Message   string    `json:"message" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_group_chat_created"`
	UpdatedAt time.Time `json:"updated_at"`

	// Связи
	Author *Profile `json:"author,omitempty" gorm:"foreignKey:UserID"`
}
