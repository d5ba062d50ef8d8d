package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Term определяет учебную четверть
type Term string

const (
	Term1 Term = "term_1"
	Term2 Term = "term_2"
	Term3 Term = "term_3"
)

// Valid сообщает, входит ли значение в перечисление term
func (t Term) Valid() bool {
	switch t {
	case Term1, Term2, Term3:
		return true
	}
	return false
}

// ErrInvalidMarkTarget возвращается, если у оценки нет ровно одной цели
var ErrInvalidMarkTarget = errors.New("mark must target exactly one of a registered student or a custom name")

// MarkTarget описывает, кому выставлена оценка.
// Реализации: RegisteredStudent и AdhocStudent.
type MarkTarget interface {
	isMarkTarget()
}

// RegisteredStudent ссылается на профиль ученика
type RegisteredStudent struct {
	ProfileID uuid.UUID
}

// AdhocStudent задает ученика без профиля по имени
type AdhocStudent struct {
	Name string
}

func (RegisteredStudent) isMarkTarget() {}
func (AdhocStudent) isMarkTarget()      {}

// StudentMark представляет оценку за тест или четверть.
// Поля StudentID и CustomStudentName взаимоисключающие; задавать их следует через NewStudentMark.
type StudentMark struct {
	ID                 uuid.UUID      `json:"id" gorm:"type:text;primaryKey"`
	StudentID          *uuid.UUID     `json:"student_id,omitempty" gorm:"type:text;index"`
	CustomStudentName  *string        `json:"custom_student_name,omitempty"`
	RegistrationNumber *string        `json:"registration_number,omitempty"`
	SubjectName        string         `json:"subject_name" gorm:"not null"`
	Marks              int            `json:"marks" gorm:"not null"`
	GradeLevel         string         `json:"grade_level" gorm:"not null"`
	Term               Term           `json:"term" gorm:"type:varchar(10);not null"`
	Year               int            `json:"year" gorm:"not null"`
	TeacherID          uuid.UUID      `json:"teacher_id" gorm:"type:text;not null;index"`
	TeacherName        string         `json:"teacher_name"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `json:"-" gorm:"index"`

	// Связи
	Student *Profile `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

// NewStudentMark создает оценку для заданной цели
func NewStudentMark(target MarkTarget, subject string, marks int, grade string, term Term, year int) (*StudentMark, error) {
	m := &StudentMark{
		SubjectName: strings.TrimSpace(subject),
		Marks:       marks,
		GradeLevel:  grade,
		Term:        term,
		Year:        year,
	}
	if err := m.SetTarget(target); err != nil {
		return nil, err
	}
	return m, nil
}

// SetTarget заменяет цель оценки, сбрасывая другую половину варианта
func (m *StudentMark) SetTarget(target MarkTarget) error {
	switch t := target.(type) {
	case RegisteredStudent:
		if t.ProfileID == uuid.Nil {
			return ErrInvalidMarkTarget
		}
		id := t.ProfileID
		m.StudentID = &id
		m.CustomStudentName = nil
	case AdhocStudent:
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return ErrInvalidMarkTarget
		}
		m.StudentID = nil
		m.CustomStudentName = &name
	default:
		return ErrInvalidMarkTarget
	}
	return nil
}

// Target восстанавливает вариант из сохраненных колонок
func (m *StudentMark) Target() (MarkTarget, error) {
	hasID := m.StudentID != nil && *m.StudentID != uuid.Nil
	hasName := m.CustomStudentName != nil && strings.TrimSpace(*m.CustomStudentName) != ""
	switch {
	case hasID && !hasName:
		return RegisteredStudent{ProfileID: *m.StudentID}, nil
	case hasName && !hasID:
		return AdhocStudent{Name: *m.CustomStudentName}, nil
	}
	return nil, ErrInvalidMarkTarget
}

// DisplayName возвращает имя ученика для таблиц
func (m *StudentMark) DisplayName() string {
	if m.CustomStudentName != nil {
		return *m.CustomStudentName
	}
	if m.Student != nil {
		return m.Student.Nickname
	}
	return "Unknown"
}

// BeforeSave не дает сохранить оценку без цели или с двумя целями
func (m *StudentMark) BeforeSave(tx *gorm.DB) error {
	if _, err := m.Target(); err != nil {
		return err
	}
	if !m.Term.Valid() {
		return fmt.Errorf("invalid term %q", m.Term)
	}
	return nil
}
