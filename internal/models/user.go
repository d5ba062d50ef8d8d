package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppRole определяет роли пользователей платформы
type AppRole string

const (
	RoleStudent AppRole = "student"
	RoleTeacher AppRole = "teacher"
	RoleAdmin   AppRole = "admin"
)

// AllRoles перечисляет допустимые значения app_role
var AllRoles = []AppRole{RoleStudent, RoleTeacher, RoleAdmin}

// ParseRole проверяет строку роли. Любое значение вне перечисления считается ошибкой.
func ParseRole(s string) (AppRole, error) {
	r := AppRole(strings.TrimSpace(s))
	if r.Valid() {
		return r, nil
	}
	return "", fmt.Errorf("invalid role %q", s)
}

// Valid сообщает, входит ли значение в перечисление app_role
func (r AppRole) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// User представляет учетную запись (identity), от которой отделен профиль
type User struct {
	ID           uuid.UUID      `json:"id" gorm:"type:text;primaryKey"`
	Email        string         `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string         `json:"-" gorm:"not null"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// Profile представляет прикладную запись пользователя
type Profile struct {
	ID                 uuid.UUID      `json:"id" gorm:"type:text;primaryKey"`
	UserID             uuid.UUID      `json:"user_id" gorm:"type:text;uniqueIndex;not null"`
	Nickname           string         `json:"nickname" gorm:"uniqueIndex;not null"`
	Email              string         `json:"email" gorm:"not null"`
	ContactEmail       *string        `json:"contact_email,omitempty"`
	ContactNumber      *string        `json:"contact_number,omitempty"`
	RegistrationNumber *string        `json:"registration_number,omitempty" gorm:"index"`
	GradeLevel         *string        `json:"grade_level,omitempty"`
	Role               *AppRole       `json:"role"`
	SchoolTagID        *uuid.UUID     `json:"school_tag_id,omitempty" gorm:"type:text"`
	TelegramChatID     *int64         `json:"telegram_chat_id,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `json:"-" gorm:"index"`

	// Связи
	SchoolTag *SchoolTag `json:"school_tag,omitempty" gorm:"foreignKey:SchoolTagID"`
}

// EffectiveRole возвращает роль профиля; пустая роль означает ученика
func (p *Profile) EffectiveRole() AppRole {
	if p == nil {
		return ""
	}
	if p.Role == nil || *p.Role == "" {
		return RoleStudent
	}
	return *p.Role
}

// DisplayGrade превращает "grade_10" в "grade 10"
func DisplayGrade(grade string) string {
	return strings.Replace(grade, "_", " ", 1)
}

// Классы, для которых выставляются оценки
const (
	MinGrade = 6
	MaxGrade = 13
)

// ValidGradeLevel проверяет значение вида grade_6 .. grade_13
func ValidGradeLevel(grade string) bool {
	n, ok := strings.CutPrefix(grade, "grade_")
	if !ok {
		return false
	}
	var v int
	if _, err := fmt.Sscanf(n, "%d", &v); err != nil || fmt.Sprint(v) != n {
		return false
	}
	return v >= MinGrade && v <= MaxGrade
}
