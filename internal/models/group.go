package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultTagColor используется, если при создании тега цвет не указан
const DefaultTagColor = "#3b82f6"

// SchoolTag представляет метку учебного заведения
type SchoolTag struct {
	ID          uuid.UUID      `json:"id" gorm:"type:text;primaryKey"`
	Name        string         `json:"name" gorm:"uniqueIndex;not null"`
	DisplayName string         `json:"display_name" gorm:"not null"`
	Color       string         `json:"color" gorm:"not null"`
	Description *string        `json:"description,omitempty"`
	CreatedBy   uuid.UUID      `json:"created_by" gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// UserSchoolTag связывает профиль с тегом школы
type UserSchoolTag struct {
	ID          uuid.UUID `json:"id" gorm:"type:text;primaryKey"`
	UserID      uuid.UUID `json:"user_id" gorm:"type:text;not null;uniqueIndex:idx_user_school_tag"`
	SchoolTagID uuid.UUID `json:"school_tag_id" gorm:"type:text;not null;uniqueIndex:idx_user_school_tag"`
	AssignedBy  uuid.UUID `json:"assigned_by" gorm:"type:text"`
	AssignedAt  time.Time `json:"assigned_at"`

	// Связи
	SchoolTag SchoolTag `json:"school_tag" gorm:"foreignKey:SchoolTagID"`
	User      Profile   `json:"-" gorm:"foreignKey:UserID"`
}

// Group представляет учебную группу
type Group struct {
	ID          uuid.UUID      `json:"id" gorm:"type:text;primaryKey"`
	Name        string         `json:"name" gorm:"type:text;not null"`
	Description *string        `json:"description,omitempty"`
	SchoolTagID *uuid.UUID     `json:"school_tag_id,omitempty" gorm:"type:text"`
	CreatedBy   uuid.UUID      `json:"created_by" gorm:"type:text;not null"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	// Связи
	SchoolTag *SchoolTag    `json:"school_tag,omitempty" gorm:"foreignKey:SchoolTagID"`
	Members   []GroupMember `json:"members,omitempty" gorm:"foreignKey:GroupID"`
}

// GroupMember представляет участника группы. Членство всегда явное.
type GroupMember struct {
	ID       uuid.UUID `json:"id" gorm:"type:text;primaryKey"`
	GroupID  uuid.UUID `json:"group_id" gorm:"type:text;not null;uniqueIndex:idx_group_member"`
	UserID   uuid.UUID `json:"user_id" gorm:"type:text;not null;uniqueIndex:idx_group_member"`
	AddedBy  uuid.UUID `json:"added_by" gorm:"type:text"`
	JoinedAt time.Time `json:"joined_at"`

	// Связи
	Group *Group   `json:"group,omitempty" gorm:"foreignKey:GroupID"`
	User  *Profile `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
