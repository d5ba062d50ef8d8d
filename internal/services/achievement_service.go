package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"brainself/internal/access"
	"brainself/internal/analytics"
	"brainself/internal/models"
	"brainself/internal/repository"
)

// AchievementProgress прогресс пользователя по одному достижению
type AchievementProgress struct {
	Achievement *models.Achievement `json:"achievement"`
	Value       int                 `json:"value"`
	Progress    int                 `json:"progress"`
	Earned      bool                `json:"earned"`
	EarnedAt    *time.Time          `json:"earned_at,omitempty"`
}

// AchievementsOverview все достижения с прогрессом
type AchievementsOverview struct {
	Items       []AchievementProgress `json:"items"`
	EarnedCount int                   `json:"earned_count"`
	TotalPoints int                   `json:"total_points"`
}

// userStats значения, с которыми сравниваются пороги достижений
type userStats map[models.RequirementType]int

type AchievementService interface {
	Catalog(ctx context.Context) ([]*models.Achievement, error)
	Progress(ctx context.Context, actor access.Session) (*AchievementsOverview, error)

	// Evaluate выдает все достижения, пороги которых пройдены. Повторная выдача ничего не меняет.
	Evaluate(ctx context.Context, profileID uuid.UUID) ([]*models.Achievement, error)
	AwardByName(ctx context.Context, profileID uuid.UUID, name string) (bool, error)
}

type achievementService struct {
	repos *repository.Repositories
	log   *slog.Logger
}

func NewAchievementService(repos *repository.Repositories, log *slog.Logger) AchievementService {
	if log == nil {
		log = slog.Default()
	}
	return &achievementService{repos: repos, log: log}
}

func (s *achievementService) Catalog(ctx context.Context) ([]*models.Achievement, error) {
	return s.repos.Achievements.List(ctx)
}

// ProgressPercent = min(100, value / threshold * 100)
func ProgressPercent(value, threshold int) int {
	if threshold <= 0 {
		if value > 0 {
			return 100
		}
		return 0
	}
	p := analytics.Round(float64(value) / float64(threshold) * 100)
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}

func (s *achievementService) Progress(ctx context.Context, actor access.Session) (*AchievementsOverview, error) {
	if err := access.Authorize(actor, access.RequireAuthenticated); err != nil {
		return nil, err
	}
	catalog, err := s.repos.Achievements.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load achievements: %w", err)
	}
	earned, err := s.repos.Achievements.ListEarned(ctx, actor.ProfileID())
	if err != nil {
		return nil, fmt.Errorf("failed to load earned achievements: %w", err)
	}
	stats, err := s.stats(ctx, actor.ProfileID())
	if err != nil {
		return nil, err
	}

	earnedAt := make(map[uuid.UUID]time.Time, len(earned))
	for _, e := range earned {
		earnedAt[e.AchievementID] = e.EarnedAt
	}

	out := &AchievementsOverview{Items: make([]AchievementProgress, 0, len(catalog))}
	for _, a := range catalog {
		item := AchievementProgress{Achievement: a, Value: stats[a.RequirementType]}
		item.Progress = ProgressPercent(item.Value, a.RequirementValue)
		if at, ok := earnedAt[a.ID]; ok {
			at := at
			item.Earned = true
			item.EarnedAt = &at
			item.Progress = 100
			out.EarnedCount++
			out.TotalPoints += a.Points
		}
		out.Items = append(out.Items, item)
	}
	return out, nil
}

func (s *achievementService) stats(ctx context.Context, profileID uuid.UUID) (userStats, error) {
	minutes, err := s.repos.StudySessions.TotalMinutes(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load study time: %w", err)
	}
	attempts, err := s.repos.Tests.ListCompletedAttempts(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempts: %w", err)
	}
	enrollments, err := s.repos.Courses.ListEnrollments(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load enrollments: %w", err)
	}

	scores := make([]int, 0, len(attempts))
	for _, a := range attempts {
		if a.Score != nil {
			scores = append(scores, *a.Score)
		}
	}
	completed := 0
	for _, e := range enrollments {
		if e.CompletedAt != nil {
			completed++
		}
	}

	stats := userStats{
		models.RequirementStudyTime:        minutes,
		models.RequirementTestsCompleted:   len(attempts),
		models.RequirementCoursesCompleted: completed,
	}
	if avg := analytics.Average(scores); avg != nil {
		stats[models.RequirementAverageScore] = *avg
	}
	return stats, nil
}

func (s *achievementService) Evaluate(ctx context.Context, profileID uuid.UUID) ([]*models.Achievement, error) {
	catalog, err := s.repos.Achievements.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load achievements: %w", err)
	}
	stats, err := s.stats(ctx, profileID)
	if err != nil {
		return nil, err
	}

	var awarded []*models.Achievement
	for _, a := range catalog {
		if a.RequirementType == models.RequirementManual || a.RequirementValue <= 0 {
			continue
		}
		if stats[a.RequirementType] < a.RequirementValue {
			continue
		}
		created, err := s.repos.Achievements.Award(ctx, profileID, a.ID)
		if err != nil {
			return awarded, fmt.Errorf("failed to award %q: %w", a.Name, err)
		}
		if created {
			awarded = append(awarded, a)
			s.log.Info("achievement earned", slog.String("profile_id", profileID.String()), slog.String("name", a.Name))
		}
	}
	return awarded, nil
}

func (s *achievementService) AwardByName(ctx context.Context, profileID uuid.UUID, name string) (bool, error) {
	a, err := s.repos.Achievements.GetByName(ctx, name)
	if err != nil {
		return false, wrapRepo(err, "achievement "+name)
	}
	created, err := s.repos.Achievements.Award(ctx, profileID, a.ID)
	if err != nil {
		return false, fmt.Errorf("failed to award %q: %w", name, err)
	}
	return created, nil
}
