package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"brainself/internal/access"
	"brainself/internal/analytics"
	"brainself/internal/models"
	"brainself/internal/repository"
)

const (
	minMark = 0
	maxMark = 100
	minYear = 2000
	maxYear = 2100
)

// MarkInput данные оценки. Должно быть задано ровно одно из StudentID и CustomStudentName.
type MarkInput struct {
	StudentID          *uuid.UUID  `json:"student_id"`
	CustomStudentName  *string     `json:"custom_student_name"`
	RegistrationNumber *string     `json:"registration_number"`
	SubjectName        string      `json:"subject_name" binding:"required"`
	Marks              int         `json:"marks" binding:"min=0,max=100"`
	GradeLevel         string      `json:"grade_level" binding:"required"`
	Term               models.Term `json:"term" binding:"required,term"`
	Year               int         `json:"year" binding:"required"`
}

func (in MarkInput) target() (models.MarkTarget, error) {
	hasID := in.StudentID != nil && *in.StudentID != uuid.Nil
	hasName := in.CustomStudentName != nil && strings.TrimSpace(*in.CustomStudentName) != ""
	switch {
	case hasID && !hasName:
		return models.RegisteredStudent{ProfileID: *in.StudentID}, nil
	case hasName && !hasID:
		return models.AdhocStudent{Name: *in.CustomStudentName}, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrValidation, models.ErrInvalidMarkTarget)
}

func (in MarkInput) validate() error {
	if strings.TrimSpace(in.SubjectName) == "" {
		return validationError("subject is required")
	}
	if in.Marks < minMark || in.Marks > maxMark {
		return validationError("marks must be between %d and %d", minMark, maxMark)
	}
	if !models.ValidGradeLevel(in.GradeLevel) {
		return validationError("invalid grade level %q", in.GradeLevel)
	}
	if !in.Term.Valid() {
		return validationError("invalid term %q", in.Term)
	}
	if in.Year < minYear || in.Year > maxYear {
		return validationError("invalid year %d", in.Year)
	}
	return nil
}

// MarksList оценки со сводкой
type MarksList struct {
	Marks   []*models.StudentMark  `json:"marks"`
	Summary analytics.MarksSummary `json:"summary"`
}

type MarksService interface {
	AddMark(ctx context.Context, actor access.Session, in MarkInput) (*models.StudentMark, error)
	UpdateMark(ctx context.Context, actor access.Session, id uuid.UUID, in MarkInput) (*models.StudentMark, error)
	DeleteMark(ctx context.Context, actor access.Session, id uuid.UUID) error

	// MyMarks возвращает только оценки, выставленные профилю actor
	MyMarks(ctx context.Context, actor access.Session) (*MarksList, error)
	ListMarks(ctx context.Context, actor access.Session, filter repository.MarkFilter) (*MarksList, error)
}

type marksService struct {
	repos *repository.Repositories
}

func NewMarksService(repos *repository.Repositories) MarksService {
	return &marksService{repos: repos}
}

func (s *marksService) AddMark(ctx context.Context, actor access.Session, in MarkInput) (*models.StudentMark, error) {
	if err := access.Authorize(actor, access.RequireTeacher); err != nil {
		return nil, err
	}
	mark, err := s.build(ctx, in)
	if err != nil {
		return nil, err
	}
	mark.TeacherID = actor.ProfileID()
	mark.TeacherName = actor.Profile.Nickname

	if err := s.repos.Marks.Create(ctx, mark); err != nil {
		return nil, markError(err, "create mark")
	}
	return mark, nil
}

// build проверяет вход и собирает оценку через единственный конструктор
func (s *marksService) build(ctx context.Context, in MarkInput) (*models.StudentMark, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	target, err := in.target()
	if err != nil {
		return nil, err
	}
	mark, err := models.NewStudentMark(target, in.SubjectName, in.Marks, in.GradeLevel, in.Term, in.Year)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	mark.RegistrationNumber = trimmedOrNil(in.RegistrationNumber)

	if reg, ok := target.(models.RegisteredStudent); ok {
		student, err := s.repos.Profiles.GetByID(ctx, reg.ProfileID)
		if err != nil {
			return nil, wrapRepo(err, "student")
		}
		if mark.RegistrationNumber == nil {
			mark.RegistrationNumber = student.RegistrationNumber
		}
		mark.Student = student
	}
	return mark, nil
}

func (s *marksService) UpdateMark(ctx context.Context, actor access.Session, id uuid.UUID, in MarkInput) (*models.StudentMark, error) {
	existing, err := s.authored(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	mark, err := s.build(ctx, in)
	if err != nil {
		return nil, err
	}
	mark.ID = existing.ID
	mark.TeacherID = existing.TeacherID
	mark.TeacherName = existing.TeacherName
	mark.CreatedAt = existing.CreatedAt

	if err := s.repos.Marks.Update(ctx, mark); err != nil {
		return nil, markError(err, "update mark")
	}
	return mark, nil
}

func (s *marksService) DeleteMark(ctx context.Context, actor access.Session, id uuid.UUID) error {
	if _, err := s.authored(ctx, actor, id); err != nil {
		return err
	}
	return wrapRepo(s.repos.Marks.Delete(ctx, id), "delete mark")
}

// authored загружает оценку и проверяет, что ее выставил actor
func (s *marksService) authored(ctx context.Context, actor access.Session, id uuid.UUID) (*models.StudentMark, error) {
	if err := access.Authorize(actor, access.RequireTeacher); err != nil {
		return nil, err
	}
	mark, err := s.repos.Marks.GetByID(ctx, id)
	if err != nil {
		return nil, wrapRepo(err, "mark")
	}
	if mark.TeacherID != actor.ProfileID() {
		return nil, access.ErrForbidden
	}
	return mark, nil
}

func (s *marksService) MyMarks(ctx context.Context, actor access.Session) (*MarksList, error) {
	if err := access.Authorize(actor, access.RequireAuthenticated); err != nil {
		return nil, err
	}
	marks, err := s.repos.Marks.ListByStudent(ctx, actor.ProfileID())
	if err != nil {
		return nil, fmt.Errorf("failed to load marks: %w", err)
	}
	return summarize(marks), nil
}

func (s *marksService) ListMarks(ctx context.Context, actor access.Session, filter repository.MarkFilter) (*MarksList, error) {
	if err := access.Authorize(actor, access.RequireTeacher); err != nil {
		return nil, err
	}
	if filter.Term != "" && !filter.Term.Valid() {
		return nil, validationError("invalid term %q", filter.Term)
	}
	marks, err := s.repos.Marks.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load marks: %w", err)
	}
	return summarize(marks), nil
}

func summarize(marks []*models.StudentMark) *MarksList {
	values := make([]int, 0, len(marks))
	for _, m := range marks {
		values = append(values, m.Marks)
	}
	return &MarksList{Marks: marks, Summary: analytics.SummarizeMarks(values)}
}

func markError(err error, what string) error {
	if errors.Is(err, models.ErrInvalidMarkTarget) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return wrapRepo(err, what)
}
