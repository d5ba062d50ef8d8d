package models

import (
	"time"

	"github.com/google/uuid"
)

// TimetableEntryType определяет типы записей расписания
type TimetableEntryType string

const (
	EntryTypeStudy    TimetableEntryType = "study"
	EntryTypeBreak    TimetableEntryType = "break"
	EntryTypeRevision TimetableEntryType = "revision"
	EntryTypeHomework TimetableEntryType = "homework"
)

// Valid сообщает, допустим ли тип записи
func (t TimetableEntryType) Valid() bool {
	switch t {
	case EntryTypeStudy, EntryTypeBreak, EntryTypeRevision, EntryTypeHomework:
		return true
	}
	return false
}

// Шаблоны повторения
const (
	RecurrenceDaily  = "daily"
	RecurrenceWeekly = "weekly"
)

// TimetableEntry представляет запись расписания пользователя
type TimetableEntry struct {
	ID                  uuid.UUID          `json:"id" gorm:"type:text;primaryKey"`
	UserID              uuid.UUID          `json:"user_id" gorm:"type:text;not null;index"`
	Title               string             `json:"title" gorm:"not null"`
	Description         *string            `json:"description,omitempty"`
	SubjectName         *string            `json:"subject_name,omitempty"`
	StartTime           time.Time          `json:"start_time" gorm:"not null"`
	EndTime             time.Time          `json:"end_time" gorm:"not null"`
	EntryType           TimetableEntryType `json:"entry_type" gorm:"type:varchar(20);not null;default:'study'"`
	IsRecurring         bool               `json:"is_recurring"`
	RecurrencePattern   *string            `json:"recurrence_pattern,omitempty"`
	NotificationEnabled bool               `json:"notification_enabled"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// NextOccurrence возвращает время следующего повторения после now
func (e *TimetableEntry) NextOccurrence(now time.Time) (time.Time, bool) {
	if !e.IsRecurring || e.RecurrencePattern == nil {
		return time.Time{}, false
	}
	var step time.Duration
	switch *e.RecurrencePattern {
	case RecurrenceDaily:
		step = 24 * time.Hour
	case RecurrenceWeekly:
		step = 7 * 24 * time.Hour
	default:
		return time.Time{}, false
	}
	next := e.StartTime
	for !next.After(now) {
		next = next.Add(step)
	}
	return next, true
}
