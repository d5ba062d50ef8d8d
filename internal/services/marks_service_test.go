package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brainself/internal/access"
	"brainself/internal/models"
	"brainself/internal/repository"
)

func markFor(student *models.Profile, name string, value int) MarkInput {
	in := MarkInput{SubjectName: "Mathematics", Marks: value, GradeLevel: "grade_10", Term: models.Term1, Year: 2024}
	if student != nil {
		in.StudentID = &student.ID
	}
	if name != "" {
		in.CustomStudentName = &name
	}
	return in
}

func TestMarksService_RoundTrip(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()
	teacher := newSession(t, repos, "teacher", models.RoleTeacher)
	student := newSession(t, repos, "student", models.RoleStudent)
	marks := NewMarksService(repos)

	m, err := marks.AddMark(ctx, teacher, markFor(student.Profile, "", 85))
	require.NoError(t, err)
	assert.Equal(t, teacher.ProfileID(), m.TeacherID)
	assert.Equal(t, "teacher", m.TeacherName)

	_, err = marks.AddMark(ctx, teacher, markFor(nil, "Walk-in Kid", 40))
	require.NoError(t, err)

	mine, err := marks.MyMarks(ctx, student)
	require.NoError(t, err)
	require.Len(t, mine.Marks, 1, "adhoc marks never appear in a student's list")
	assert.Equal(t, 85, mine.Marks[0].Marks)
	assert.Equal(t, 1, mine.Summary.HighCount)
	require.NotNil(t, mine.Summary.Average)
	assert.Equal(t, 85, *mine.Summary.Average)

	all, err := marks.ListMarks(ctx, teacher, repository.MarkFilter{Term: models.Term1})
	require.NoError(t, err)
	assert.Len(t, all.Marks, 2)
	require.NotNil(t, all.Summary.Average)
	assert.Equal(t, 63, *all.Summary.Average)

	_, err = marks.ListMarks(ctx, student, repository.MarkFilter{})
	assert.ErrorIs(t, err, access.ErrForbidden)
}

func TestMarksService_TargetValidation(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()
	teacher := newSession(t, repos, "teacher", models.RoleTeacher)
	student := newSession(t, repos, "student", models.RoleStudent)
	marks := NewMarksService(repos)

	_, err := marks.AddMark(ctx, teacher, markFor(nil, "", 50))
	assert.ErrorIs(t, err, ErrValidation, "no target")

	_, err = marks.AddMark(ctx, teacher, markFor(student.Profile, "Someone", 50))
	assert.ErrorIs(t, err, ErrValidation, "both targets")

	bad := markFor(student.Profile, "", 101)
	_, err = marks.AddMark(ctx, teacher, bad)
	assert.ErrorIs(t, err, ErrValidation)

	bad = markFor(student.Profile, "", 50)
	bad.Term = "term_4"
	_, err = marks.AddMark(ctx, teacher, bad)
	assert.ErrorIs(t, err, ErrValidation)

	bad = markFor(student.Profile, "", 50)
	bad.GradeLevel = "grade_5"
	_, err = marks.AddMark(ctx, teacher, bad)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMarksService_OnlyAuthorEdits(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()
	author := newSession(t, repos, "author", models.RoleTeacher)
	other := newSession(t, repos, "other", models.RoleTeacher)
	student := newSession(t, repos, "student", models.RoleStudent)
	marks := NewMarksService(repos)

	m, err := marks.AddMark(ctx, author, markFor(student.Profile, "", 70))
	require.NoError(t, err)

	_, err = marks.UpdateMark(ctx, other, m.ID, markFor(student.Profile, "", 10))
	assert.ErrorIs(t, err, access.ErrForbidden)
	assert.ErrorIs(t, marks.DeleteMark(ctx, other, m.ID), access.ErrForbidden)

	updated, err := marks.UpdateMark(ctx, author, m.ID, markFor(nil, "Renamed Kid", 75))
	require.NoError(t, err)
	assert.Equal(t, m.ID, updated.ID)
	assert.Nil(t, updated.StudentID)

	mine, err := marks.MyMarks(ctx, student)
	require.NoError(t, err)
	assert.Empty(t, mine.Marks)
	assert.Nil(t, mine.Summary.Average)

	require.NoError(t, marks.DeleteMark(ctx, author, m.ID))
	assert.ErrorIs(t, marks.DeleteMark(ctx, author, m.ID), ErrNotFound)
}
