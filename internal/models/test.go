package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AnswerMap сопоставляет ID вопроса и выбранный ключ ответа
type AnswerMap map[string]string

// Test представляет тест из каталога
type Test struct {
	ID               uuid.UUID  `json:"id" gorm:"type:text;primaryKey"`
	SubjectID        *uuid.UUID `json:"subject_id,omitempty" gorm:"type:text;index"`
	Title            string     `json:"title" gorm:"not null"`
	TitleSi          *string    `json:"title_si,omitempty"`
	Description      *string    `json:"description,omitempty"`
	DescriptionSi    *string    `json:"description_si,omitempty"`
	DifficultyLevel  *string    `json:"difficulty_level,omitempty"`
	GradeLevel       *string    `json:"grade_level,omitempty"`
	TimeLimitMinutes *int       `json:"time_limit_minutes,omitempty"`
	TotalQuestions   int        `json:"total_questions"`
	IsPublished      bool       `json:"is_published"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// Связи
	Subject   *Subject       `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
	Questions []TestQuestion `json:"questions,omitempty" gorm:"foreignKey:TestID"`
}

// TimeLimit возвращает лимит времени теста (ноль, если не задан)
func (t *Test) TimeLimit() time.Duration {
	if t.TimeLimitMinutes == nil || *t.TimeLimitMinutes <= 0 {
		return 0
	}
	return time.Duration(*t.TimeLimitMinutes) * time.Minute
}

// TestQuestion представляет вопрос теста
type TestQuestion struct {
	ID             uuid.UUID                              `json:"id" gorm:"type:text;primaryKey"`
	TestID         uuid.UUID                              `json:"test_id" gorm:"type:text;not null;index"`
	QuestionText   string                                 `json:"question_text" gorm:"not null"`
	QuestionTextSi *string                                `json:"question_text_si,omitempty"`
	QuestionType   string                                 `json:"question_type" gorm:"not null;default:'multiple_choice'"`
	Options        datatypes.JSONType[map[string]string]  `json:"options"`
	OptionsSi      *datatypes.JSONType[map[string]string] `json:"options_si,omitempty"`
	CorrectAnswer  string                                 `json:"correct_answer,omitempty" gorm:"not null"`
	Explanation    *string                                `json:"explanation,omitempty"`
	ExplanationSi  *string                                `json:"explanation_si,omitempty"`
	Points         *int                                   `json:"points,omitempty"`
	OrderIndex     int                                    `json:"order_index"`
	CreatedAt      time.Time                              `json:"created_at"`
	UpdatedAt      time.Time                              `json:"updated_at"`
}

// TestAttempt представляет одну попытку прохождения теста
type TestAttempt struct {
	ID             uuid.UUID                     `json:"id" gorm:"type:text;primaryKey"`
	TestID         uuid.UUID                     `json:"test_id" gorm:"type:text;not null;index"`
	UserID         uuid.UUID                     `json:"user_id" gorm:"type:text;not null;index"`
	StudySessionID *uuid.UUID                    `json:"study_session_id,omitempty" gorm:"type:text"`
	Answers        datatypes.JSONType[AnswerMap] `json:"answers"`
	Score          *int                          `json:"score,omitempty"`
	EarnedPoints   *int                          `json:"earned_points,omitempty"`
	TotalPoints    *int                          `json:"total_points,omitempty"`
	StartedAt      time.Time                     `json:"started_at"`
	CompletedAt    *time.Time                    `json:"completed_at,omitempty"`

	// Связи
	Test *Test `json:"test,omitempty" gorm:"foreignKey:TestID"`
}

// Completed сообщает, завершена ли попытка
func (a *TestAttempt) Completed() bool { return a.CompletedAt != nil }
