package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Subject представляет учебный предмет
type Subject struct {
	ID            uuid.UUID `json:"id" gorm:"type:text;primaryKey"`
	Name          string    `json:"name" gorm:"not null"`
	NameSi        *string   `json:"name_si,omitempty"`
	Description   *string   `json:"description,omitempty"`
	DescriptionSi *string   `json:"description_si,omitempty"`
	Color         *string   `json:"color,omitempty"`
	Icon          *string   `json:"icon,omitempty"`
	GradeLevel    *string   `json:"grade_level,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Course представляет курс из каталога
type Course struct {
	ID              uuid.UUID  `json:"id" gorm:"type:text;primaryKey"`
	SubjectID       *uuid.UUID `json:"subject_id,omitempty" gorm:"type:text;index"`
	Title           string     `json:"title" gorm:"not null"`
	TitleSi         *string    `json:"title_si,omitempty"`
	Description     *string    `json:"description,omitempty"`
	DescriptionSi   *string    `json:"description_si,omitempty"`
	DifficultyLevel *string    `json:"difficulty_level,omitempty"`
	EstimatedHours  *int       `json:"estimated_hours,omitempty"`
	GradeLevel      *string    `json:"grade_level,omitempty"`
	ThumbnailURL    *string    `json:"thumbnail_url,omitempty"`
	IsPublished     bool       `json:"is_published"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// Связи
	Subject *Subject `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
	Lessons []Lesson `json:"lessons,omitempty" gorm:"foreignKey:CourseID"`
}

// Lesson представляет урок курса
type Lesson struct {
	ID              uuid.UUID         `json:"id" gorm:"type:text;primaryKey"`
	CourseID        uuid.UUID         `json:"course_id" gorm:"type:text;not null;index"`
	Title           string            `json:"title" gorm:"not null"`
	Description     *string           `json:"description,omitempty"`
	ContentType     string            `json:"content_type" gorm:"not null;default:'text'"`
	ContentURL      *string           `json:"content_url,omitempty"`
	ContentData     datatypes.JSONMap `json:"content_data,omitempty"`
	DurationMinutes *int              `json:"duration_minutes,omitempty"`
	OrderIndex      int               `json:"order_index"`
	IsPublished     bool              `json:"is_published"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// Enrollment связывает профиль с курсом
type Enrollment struct {
	ID                 uuid.UUID  `json:"id" gorm:"type:text;primaryKey"`
	UserID             uuid.UUID  `json:"user_id" gorm:"type:text;not null;uniqueIndex:idx_enrollment"`
	CourseID           uuid.UUID  `json:"course_id" gorm:"type:text;not null;uniqueIndex:idx_enrollment"`
	ProgressPercentage int        `json:"progress_percentage"`
	EnrolledAt         time.Time  `json:"enrolled_at"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`

	// Связи
	Course *Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

// Статусы прохождения урока
const (
	LessonStatusInProgress = "in_progress"
	LessonStatusCompleted  = "completed"
)

// LessonProgress хранит прогресс по уроку в рамках записи на курс
type LessonProgress struct {
	ID               uuid.UUID  `json:"id" gorm:"type:text;primaryKey"`
	EnrollmentID     uuid.UUID  `json:"enrollment_id" gorm:"type:text;not null;uniqueIndex:idx_lesson_progress"`
	LessonID         uuid.UUID  `json:"lesson_id" gorm:"type:text;not null;uniqueIndex:idx_lesson_progress"`
	UserID           uuid.UUID  `json:"user_id" gorm:"type:text;not null;index"`
	Status           string     `json:"status" gorm:"not null"`
	Score            *int       `json:"score,omitempty"`
	TimeSpentMinutes int        `json:"time_spent_minutes"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// YoutubeVideo представляет обучающее видео
type YoutubeVideo struct {
	ID              uuid.UUID  `json:"id" gorm:"type:text;primaryKey"`
	SubjectID       *uuid.UUID `json:"subject_id,omitempty" gorm:"type:text;index"`
	Title           string     `json:"title" gorm:"not null"`
	TitleSi         *string    `json:"title_si,omitempty"`
	Description     *string    `json:"description,omitempty"`
	DescriptionSi   *string    `json:"description_si,omitempty"`
	YoutubeURL      string     `json:"youtube_url" gorm:"not null"`
	GradeLevel      *string    `json:"grade_level,omitempty"`
	DifficultyLevel *string    `json:"difficulty_level,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	ThumbnailURL    *string    `json:"thumbnail_url,omitempty"`
	ViewCount       int        `json:"view_count"`
	IsPublished     bool       `json:"is_published"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// VideoProgress хранит прогресс просмотра видео
type VideoProgress struct {
	ID                  uuid.UUID `json:"id" gorm:"type:text;primaryKey"`
	UserID              uuid.UUID `json:"user_id" gorm:"type:text;not null;uniqueIndex:idx_video_progress"`
	VideoID             uuid.UUID `json:"video_id" gorm:"type:text;not null;uniqueIndex:idx_video_progress"`
	Completed           bool      `json:"completed"`
	LastPositionSeconds int       `json:"last_position_seconds"`
	WatchTimeMinutes    int       `json:"watch_time_minutes"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}
