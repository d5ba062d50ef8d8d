package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"brainself/internal/access"
	"brainself/internal/models"
	"brainself/internal/repository"
)

const recentEnrollments = 3

// Dashboard сводка для главной страницы ученика
type Dashboard struct {
	EnrolledCourses    int                      `json:"enrolled_courses"`
	HoursStudied       float64                  `json:"hours_studied"`
	CompletedTests     int                      `json:"completed_tests"`
	AchievementsEarned int                      `json:"achievements_earned"`
	TodaySchedule      []*models.TimetableEntry `json:"today_schedule"`
	RecentEnrollments  []*models.Enrollment     `json:"recent_enrollments"`
}

type DashboardService interface {
	Get(ctx context.Context, actor access.Session) (*Dashboard, error)
}

type dashboardService struct {
	repos *repository.Repositories
	now   func() time.Time
}

func NewDashboardService(repos *repository.Repositories) DashboardService {
	return &dashboardService{repos: repos, now: time.Now}
}

func (s *dashboardService) Get(ctx context.Context, actor access.Session) (*Dashboard, error) {
	if err := access.Authorize(actor, access.RequireAuthenticated); err != nil {
		return nil, err
	}
	id := actor.ProfileID()

	enrollments, err := s.repos.Courses.ListEnrollments(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load enrollments: %w", err)
	}
	minutes, err := s.repos.StudySessions.TotalMinutes(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load study time: %w", err)
	}
	attempts, err := s.repos.Tests.ListCompletedAttempts(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempts: %w", err)
	}
	earned, err := s.repos.Achievements.ListEarned(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load achievements: %w", err)
	}
	entries, err := s.repos.Timetable.ListByUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load timetable: %w", err)
	}

	recent := enrollments
	if len(recent) > recentEnrollments {
		recent = recent[:recentEnrollments]
	}
	return &Dashboard{
		EnrolledCourses:    len(enrollments),
		HoursStudied:       math.Round(float64(minutes)/6) / 10,
		CompletedTests:     len(attempts),
		AchievementsEarned: len(earned),
		TodaySchedule:      EntriesOn(entries, s.now()),
		RecentEnrollments:  recent,
	}, nil
}
