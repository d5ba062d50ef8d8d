package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"brainself/internal/access"
	"brainself/internal/analytics"
	"brainself/internal/models"
	"brainself/internal/repository"
)

const recentSessions = 10

// StudentAnalysis подробный разбор одного ученика
type StudentAnalysis struct {
	Student             *models.Profile        `json:"student"`
	Marks               []*models.StudentMark  `json:"marks"`
	Summary             analytics.MarksSummary `json:"summary"`
	Trend               analytics.Trend        `json:"trend"`
	Enrollments         []*models.Enrollment   `json:"enrollments"`
	RecentSessions      []*models.StudySession `json:"recent_sessions"`
	TotalSessionMinutes int                    `json:"total_session_minutes"`
	AvgSessionMinutes   *int                   `json:"avg_session_minutes"`
}

type AnalyticsService interface {
	// Report строит отчет по всем ученикам; фильтр применяется только к списку учеников
	Report(ctx context.Context, actor access.Session, filter analytics.Filter) (*analytics.Report, error)
	StudentAnalysis(ctx context.Context, actor access.Session, nickname string) (*StudentAnalysis, error)
}

type analyticsService struct {
	repos *repository.Repositories
	log   *slog.Logger
}

func NewAnalyticsService(repos *repository.Repositories, log *slog.Logger) AnalyticsService {
	if log == nil {
		log = slog.Default()
	}
	return &analyticsService{repos: repos, log: log}
}

func (s *analyticsService) Report(ctx context.Context, actor access.Session, filter analytics.Filter) (*analytics.Report, error) {
	if err := access.Authorize(actor, access.RequireTeacher); err != nil {
		return nil, err
	}
	students, err := s.repos.Profiles.ListStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load students: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(students))
	for _, p := range students {
		ids = append(ids, p.ID)
	}

	// неполный отчет не отдается
	marks, err := s.repos.Marks.ListByStudents(ctx, ids)
	if err != nil {
		return nil, s.partial("marks", err)
	}
	sessions, err := s.repos.StudySessions.ListByUsers(ctx, ids)
	if err != nil {
		return nil, s.partial("study sessions", err)
	}
	enrollments, err := s.repos.Courses.ListEnrollmentsForUsers(ctx, ids)
	if err != nil {
		return nil, s.partial("enrollments", err)
	}

	inputs := buildInputs(students, marks, sessions, enrollments)
	report := analytics.Summarize(inputs, func(grade string) string { return models.DisplayGrade(grade) })
	report.Students = filter.Apply(report.Students)
	return &report, nil
}

func (s *analyticsService) partial(what string, err error) error {
	s.log.Error("analytics load failed", slog.String("part", what), slog.String("error", err.Error()))
	return fmt.Errorf("%w: failed to load %s: %v", ErrPartialFailure, what, err)
}

// buildInputs раскладывает строки по ученикам, сохраняя порядок от новых к старым
func buildInputs(
	students []*models.Profile,
	marks []*models.StudentMark,
	sessions []*models.StudySession,
	enrollments []*models.Enrollment,
) []analytics.StudentInput {
	byID := make(map[uuid.UUID]*analytics.StudentInput, len(students))
	inputs := make([]analytics.StudentInput, len(students))
	for i, p := range students {
		in := analytics.StudentInput{ID: p.ID, Nickname: p.Nickname}
		if p.RegistrationNumber != nil {
			in.RegistrationNumber = *p.RegistrationNumber
		}
		if p.GradeLevel != nil {
			in.GradeLevel = *p.GradeLevel
		}
		inputs[i] = in
		byID[p.ID] = &inputs[i]
	}

	for _, m := range marks {
		if m.StudentID == nil {
			continue
		}
		if in, ok := byID[*m.StudentID]; ok {
			in.Marks = append(in.Marks, analytics.Mark{Subject: m.SubjectName, Marks: m.Marks, CreatedAt: m.CreatedAt})
		}
	}
	for _, ss := range sessions {
		if in, ok := byID[ss.UserID]; ok {
			in.Sessions = append(in.Sessions, analytics.Session{DurationMinutes: ss.DurationMinutes, StartedAt: ss.StartedAt})
		}
	}
	for _, e := range enrollments {
		if in, ok := byID[e.UserID]; ok {
			in.CourseProgress = append(in.CourseProgress, e.ProgressPercentage)
		}
	}
	return inputs
}

// StudentAnalysis ищет ученика по нику без учета регистра.
// При нескольких совпадениях выигрывает точное совпадение ника.
func (s *analyticsService) StudentAnalysis(ctx context.Context, actor access.Session, nickname string) (*StudentAnalysis, error) {
	if err := access.Authorize(actor, access.RequireTeacher); err != nil {
		return nil, err
	}
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, validationError("nickname is required")
	}
	student, err := s.findStudent(ctx, nickname)
	if err != nil {
		return nil, err
	}

	out := &StudentAnalysis{Student: student}
	var errs []error

	if out.Marks, err = s.repos.Marks.ListByStudent(ctx, student.ID); err != nil {
		errs = append(errs, fmt.Errorf("marks: %w", err))
	}
	values := make([]int, 0, len(out.Marks))
	for _, m := range out.Marks {
		values = append(values, m.Marks)
	}
	out.Summary = analytics.SummarizeMarks(values)
	out.Trend = analytics.TrendOf(values)

	if out.Enrollments, err = s.repos.Courses.ListEnrollments(ctx, student.ID); err != nil {
		errs = append(errs, fmt.Errorf("enrollments: %w", err))
	}
	if out.RecentSessions, err = s.repos.StudySessions.ListByUser(ctx, student.ID, recentSessions); err != nil {
		errs = append(errs, fmt.Errorf("study sessions: %w", err))
	}
	sessions := make([]analytics.Session, 0, len(out.RecentSessions))
	for _, ss := range out.RecentSessions {
		sessions = append(sessions, analytics.Session{DurationMinutes: ss.DurationMinutes, StartedAt: ss.StartedAt})
	}
	out.TotalSessionMinutes, out.AvgSessionMinutes = analytics.SessionStats(sessions)

	if len(errs) > 0 {
		return nil, s.partial("student analysis", errors.Join(errs...))
	}
	return out, nil
}

func (s *analyticsService) findStudent(ctx context.Context, nickname string) (*models.Profile, error) {
	matches, err := s.repos.Profiles.SearchStudents(ctx, nickname)
	if err != nil {
		return nil, fmt.Errorf("failed to search students: %w", err)
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("student %q: %w", nickname, ErrNotFound)
	case 1:
		return matches[0], nil
	}
	for _, p := range matches {
		if strings.EqualFold(p.Nickname, nickname) {
			return p, nil
		}
	}
	return nil, conflictError("%d students match %q, please be more specific", len(matches), nickname)
}
