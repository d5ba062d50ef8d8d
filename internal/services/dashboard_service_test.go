package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brainself/internal/access"
	"brainself/internal/models"
)

func TestDashboardService_Get(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()
	student := newSession(t, repos, "student", models.RoleStudent)
	other := newSession(t, repos, "other", models.RoleStudent)
	f := newCourse(t, repos)

	courses := NewCourseService(repos, nil, nil)
	_, err := courses.Enroll(ctx, student, f.course.ID)
	require.NoError(t, err)
	_, err = courses.LogStudySession(ctx, student, StudySessionInput{ActivityType: models.ActivityOther, DurationMinutes: 90})
	require.NoError(t, err)
	_, err = courses.LogStudySession(ctx, other, StudySessionInput{ActivityType: models.ActivityOther, DurationMinutes: 600})
	require.NoError(t, err)

	badge := &models.Achievement{Name: "Badge", RequirementType: models.RequirementManual}
	require.NoError(t, repos.Achievements.Create(ctx, badge))
	_, err = repos.Achievements.Award(ctx, student.ProfileID(), badge.ID)
	require.NoError(t, err)

	day := time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)
	for _, start := range []time.Time{day.Add(-3 * time.Hour), day.Add(24 * time.Hour)} {
		require.NoError(t, repos.Timetable.Create(ctx, &models.TimetableEntry{
			UserID: student.ProfileID(), Title: "Study", StartTime: start, EndTime: start.Add(time.Hour),
		}))
	}

	svc := NewDashboardService(repos).(*dashboardService)
	svc.now = func() time.Time { return day }

	d, err := svc.Get(ctx, student)
	require.NoError(t, err)
	assert.Equal(t, 1, d.EnrolledCourses)
	assert.InDelta(t, 1.5, d.HoursStudied, 0.001)
	assert.Equal(t, 0, d.CompletedTests)
	assert.Equal(t, 1, d.AchievementsEarned)
	require.Len(t, d.TodaySchedule, 1)
	assert.True(t, d.TodaySchedule[0].StartTime.Equal(day.Add(-3*time.Hour)))
	require.Len(t, d.RecentEnrollments, 1)
	assert.Equal(t, f.course.ID, d.RecentEnrollments[0].CourseID)

	_, err = svc.Get(ctx, access.Anonymous())
	assert.ErrorIs(t, err, access.ErrNotAuthenticated)
}
