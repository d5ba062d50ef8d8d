package models

import (
	"time"

	"github.com/google/uuid"
)

// RequirementType определяет условие получения достижения
type RequirementType string

const (
	RequirementStudyTime        RequirementType = "study_time_minutes"
	RequirementTestsCompleted   RequirementType = "tests_completed"
	RequirementCoursesCompleted RequirementType = "courses_completed"
	RequirementAverageScore     RequirementType = "average_score"
	RequirementManual           RequirementType = "manual"
)

// ExportMasterAchievement выдается за экспорт карточки результата
const ExportMasterAchievement = "Export Master"

// Achievement представляет достижение из каталога
type Achievement struct {
	ID               uuid.UUID       `json:"id" gorm:"type:text;primaryKey"`
	Name             string          `json:"name" gorm:"uniqueIndex;not null"`
	NameSi           *string         `json:"name_si,omitempty"`
	Description      *string         `json:"description,omitempty"`
	DescriptionSi    *string         `json:"description_si,omitempty"`
	Icon             *string         `json:"icon,omitempty"`
	Points           int             `json:"points"`
	RequirementType  RequirementType `json:"requirement_type" gorm:"type:varchar(30);not null"`
	RequirementValue int             `json:"requirement_value"`
	CreatedAt        time.Time       `json:"created_at"`
}

// UserAchievement фиксирует получение достижения
type UserAchievement struct {
	ID            uuid.UUID `json:"id" gorm:"type:text;primaryKey"`
	UserID        uuid.UUID `json:"user_id" gorm:"type:text;not null;uniqueIndex:idx_user_achievement"`
	AchievementID uuid.UUID `json:"achievement_id" gorm:"type:text;not null;uniqueIndex:idx_user_achievement"`
	EarnedAt      time.Time `json:"earned_at"`

	// Связи
	Achievement *Achievement `json:"achievement,omitempty" gorm:"foreignKey:AchievementID"`
}

// Типы активности учебной сессии
const (
	ActivityTestTaking = "test_taking"
	ActivityLesson     = "lesson"
	ActivityVideo      = "video"
	ActivityOther      = "other"
)

// StudySession представляет отрезок учебной активности
type StudySession struct {
	ID              uuid.UUID  `json:"id" gorm:"type:text;primaryKey"`
	UserID          uuid.UUID  `json:"user_id" gorm:"type:text;not null;index"`
	ActivityType    string     `json:"activity_type" gorm:"not null"`
	ActivityID      *string    `json:"activity_id,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
	StartedAt       time.Time  `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
