package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStudentMark_Registered(t *testing.T) {
	id := uuid.New()
	m, err := NewStudentMark(RegisteredStudent{ProfileID: id}, " Maths ", 72, "grade_10", Term1, 2024)
	require.NoError(t, err)

	require.NotNil(t, m.StudentID)
	assert.Equal(t, id, *m.StudentID)
	assert.Nil(t, m.CustomStudentName)
	assert.Equal(t, "Maths", m.SubjectName)

	target, err := m.Target()
	require.NoError(t, err)
	assert.Equal(t, RegisteredStudent{ProfileID: id}, target)
}

func TestNewStudentMark_Adhoc(t *testing.T) {
	m, err := NewStudentMark(AdhocStudent{Name: "Kasun"}, "Science", 40, "grade_9", Term2, 2024)
	require.NoError(t, err)

	assert.Nil(t, m.StudentID)
	require.NotNil(t, m.CustomStudentName)
	assert.Equal(t, "Kasun", m.DisplayName())
}

func TestStudentMark_SetTargetSwitchesVariant(t *testing.T) {
	m, err := NewStudentMark(AdhocStudent{Name: "Kasun"}, "Science", 40, "grade_9", Term2, 2024)
	require.NoError(t, err)

	id := uuid.New()
	require.NoError(t, m.SetTarget(RegisteredStudent{ProfileID: id}))
	assert.Nil(t, m.CustomStudentName)
	assert.Equal(t, id, *m.StudentID)
}

func TestStudentMark_InvalidTargets(t *testing.T) {
	_, err := NewStudentMark(AdhocStudent{Name: "   "}, "Science", 40, "grade_9", Term2, 2024)
	assert.ErrorIs(t, err, ErrInvalidMarkTarget)

	_, err = NewStudentMark(RegisteredStudent{}, "Science", 40, "grade_9", Term2, 2024)
	assert.ErrorIs(t, err, ErrInvalidMarkTarget)

	_, err = NewStudentMark(nil, "Science", 40, "grade_9", Term2, 2024)
	assert.ErrorIs(t, err, ErrInvalidMarkTarget)

	// обе колонки заданы вручную
	id := uuid.New()
	name := "Nimal"
	m := &StudentMark{StudentID: &id, CustomStudentName: &name, Term: Term1}
	assert.ErrorIs(t, m.BeforeSave(nil), ErrInvalidMarkTarget)

	empty := &StudentMark{Term: Term1}
	assert.ErrorIs(t, empty.BeforeSave(nil), ErrInvalidMarkTarget)
}

func TestStudentMark_BeforeSaveRejectsUnknownTerm(t *testing.T) {
	m, err := NewStudentMark(AdhocStudent{Name: "Kasun"}, "Science", 40, "grade_9", Term("term_4"), 2024)
	require.NoError(t, err)
	assert.Error(t, m.BeforeSave(nil))
}

func TestParseRole(t *testing.T) {
	for _, s := range []string{"student", "teacher", "admin"} {
		r, err := ParseRole(s)
		require.NoError(t, err)
		assert.Equal(t, AppRole(s), r)
	}
	for _, s := range []string{"", "Admin", "superuser", "guest"} {
		_, err := ParseRole(s)
		assert.Error(t, err, s)
	}
}

func TestProfile_EffectiveRole(t *testing.T) {
	p := &Profile{}
	assert.Equal(t, RoleStudent, p.EffectiveRole())

	admin := RoleAdmin
	p.Role = &admin
	assert.Equal(t, RoleAdmin, p.EffectiveRole())

	var none *Profile
	assert.Equal(t, AppRole(""), none.EffectiveRole())
}

func TestTimetableEntry_NextOccurrence(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	daily := RecurrenceDaily
	e := &TimetableEntry{StartTime: start, IsRecurring: true, RecurrencePattern: &daily}

	next, ok := e.NextOccurrence(start.Add(30 * time.Hour))
	require.True(t, ok)
	assert.Equal(t, start.Add(48*time.Hour), next)

	e.IsRecurring = false
	_, ok = e.NextOccurrence(start)
	assert.False(t, ok)
}

func TestValidGradeLevel(t *testing.T) {
	assert.True(t, ValidGradeLevel("grade_6"))
	assert.True(t, ValidGradeLevel("grade_13"))
	assert.False(t, ValidGradeLevel("grade_5"))
	assert.False(t, ValidGradeLevel("grade_14"))
	assert.False(t, ValidGradeLevel("grade_07"))
	assert.False(t, ValidGradeLevel("10"))
	assert.Equal(t, "grade 10", DisplayGrade("grade_10"))
}
