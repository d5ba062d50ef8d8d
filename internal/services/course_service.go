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

// CourseDetails курс с опубликованными уроками и записью пользователя
type CourseDetails struct {
	Course     *models.Course     `json:"course"`
	Lessons    []*models.Lesson   `json:"lessons"`
	Enrollment *models.Enrollment `json:"enrollment,omitempty"`
}

// VideoProgressInput отметка просмотра видео
type VideoProgressInput struct {
	LastPositionSeconds int  `json:"last_position_seconds" binding:"min=0"`
	WatchTimeMinutes    int  `json:"watch_time_minutes" binding:"min=0"`
	Completed           bool `json:"completed"`
}

// StudySessionInput ручная запись учебной сессии
type StudySessionInput struct {
	ActivityType    string  `json:"activity_type" binding:"required"`
	ActivityID      *string `json:"activity_id"`
	DurationMinutes int     `json:"duration_minutes" binding:"min=1"`
}

type CourseService interface {
	Subjects(ctx context.Context) ([]*models.Subject, error)
	Courses(ctx context.Context, filter repository.CourseFilter) ([]*models.Course, error)
	Course(ctx context.Context, actor access.Session, id uuid.UUID) (*CourseDetails, error)

	Enroll(ctx context.Context, actor access.Session, courseID uuid.UUID) (*models.Enrollment, error)
	MyEnrollments(ctx context.Context, actor access.Session) ([]*models.Enrollment, error)
	// CompleteLesson отмечает урок и пересчитывает прогресс записи на курс
	CompleteLesson(ctx context.Context, actor access.Session, lessonID uuid.UUID, minutes int) (*models.Enrollment, error)

	Videos(ctx context.Context, subjectID *uuid.UUID) ([]*models.YoutubeVideo, error)
	ViewVideo(ctx context.Context, videoID uuid.UUID) (*models.YoutubeVideo, error)
	SaveVideoProgress(ctx context.Context, actor access.Session, videoID uuid.UUID, in VideoProgressInput) (*models.VideoProgress, error)

	LogStudySession(ctx context.Context, actor access.Session, in StudySessionInput) (*models.StudySession, error)
}

type courseService struct {
	repos        *repository.Repositories
	achievements AchievementService
	log          *slog.Logger
	now          func() time.Time
}

func NewCourseService(repos *repository.Repositories, achievements AchievementService, log *slog.Logger) CourseService {
	if log == nil {
		log = slog.Default()
	}
	return &courseService{repos: repos, achievements: achievements, log: log, now: time.Now}
}

func (s *courseService) Subjects(ctx context.Context) ([]*models.Subject, error) {
	return s.repos.Courses.ListSubjects(ctx)
}

func (s *courseService) Courses(ctx context.Context, filter repository.CourseFilter) ([]*models.Course, error) {
	return s.repos.Courses.ListPublishedCourses(ctx, filter)
}

func (s *courseService) Course(ctx context.Context, actor access.Session, id uuid.UUID) (*CourseDetails, error) {
	course, err := s.publishedCourse(ctx, s.repos, id)
	if err != nil {
		return nil, err
	}
	lessons, err := s.repos.Courses.ListLessons(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load lessons: %w", err)
	}
	out := &CourseDetails{Course: course, Lessons: lessons}
	if actor.IsAuthenticated() {
		e, err := s.repos.Courses.GetEnrollment(ctx, actor.ProfileID(), id)
		switch {
		case err == nil:
			out.Enrollment = e
		case !repository.IsNotFound(err):
			return nil, fmt.Errorf("failed to load enrollment: %w", err)
		}
	}
	return out, nil
}

func (s *courseService) publishedCourse(ctx context.Context, repos *repository.Repositories, id uuid.UUID) (*models.Course, error) {
	c, err := repos.Courses.GetCourse(ctx, id)
	if err != nil {
		return nil, wrapRepo(err, "course")
	}
	if !c.IsPublished {
		return nil, fmt.Errorf("course: %w", ErrNotFound)
	}
	return c, nil
}

func (s *courseService) Enroll(ctx context.Context, actor access.Session, courseID uuid.UUID) (*models.Enrollment, error) {
	if err := access.Authorize(actor, access.RequireAuthenticated); err != nil {
		return nil, err
	}
	e := &models.Enrollment{UserID: actor.ProfileID(), CourseID: courseID, EnrolledAt: s.now().UTC()}
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		course, err := s.publishedCourse(ctx, tx, courseID)
		if err != nil {
			return err
		}
		if _, err := tx.Courses.GetEnrollment(ctx, actor.ProfileID(), courseID); err == nil {
			return conflictError("already enrolled")
		} else if !repository.IsNotFound(err) {
			return err
		}
		if err := tx.Courses.CreateEnrollment(ctx, e); err != nil {
			return wrapRepo(err, "enroll")
		}
		e.Course = course
		return nil
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (s *courseService) MyEnrollments(ctx context.Context, actor access.Session) ([]*models.Enrollment, error) {
	if err := access.Authorize(actor, access.RequireAuthenticated); err != nil {
		return nil, err
	}
	return s.repos.Courses.ListEnrollments(ctx, actor.ProfileID())
}

// CourseProgress доля завершенных уроков в процентах
func CourseProgress(completed, total int64) int {
	if total <= 0 {
		return 0
	}
	p := analytics.Round(float64(completed) / float64(total) * 100)
	if p > 100 {
		return 100
	}
	return p
}

func (s *courseService) CompleteLesson(ctx context.Context, actor access.Session, lessonID uuid.UUID, minutes int) (*models.Enrollment, error) {
	if err := access.Authorize(actor, access.RequireAuthenticated); err != nil {
		return nil, err
	}
	if minutes < 0 {
		return nil, validationError("minutes must not be negative")
	}
	now := s.now().UTC()

	var enrollment *models.Enrollment
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		lesson, err := tx.Courses.GetLesson(ctx, lessonID)
		if err != nil {
			return wrapRepo(err, "lesson")
		}
		e, err := tx.Courses.GetEnrollment(ctx, actor.ProfileID(), lesson.CourseID)
		if err != nil {
			if repository.IsNotFound(err) {
				return validationError("enroll in the course first")
			}
			return err
		}

		if err := tx.Courses.UpsertLessonProgress(ctx, &models.LessonProgress{
			EnrollmentID:     e.ID,
			LessonID:         lesson.ID,
			UserID:           actor.ProfileID(),
			Status:           models.LessonStatusCompleted,
			TimeSpentMinutes: minutes,
			CompletedAt:      &now,
		}); err != nil {
			return wrapRepo(err, "lesson progress")
		}

		completed, err := tx.Courses.CountCompletedLessons(ctx, e.ID)
		if err != nil {
			return err
		}
		total, err := tx.Courses.CountPublishedLessons(ctx, lesson.CourseID)
		if err != nil {
			return err
		}
		e.ProgressPercentage = CourseProgress(completed, total)
		if e.ProgressPercentage >= 100 && e.CompletedAt == nil {
			e.CompletedAt = &now
		}
		if err := tx.Courses.UpdateEnrollmentProgress(ctx, e.ID, e.ProgressPercentage, e.CompletedAt); err != nil {
			return wrapRepo(err, "update enrollment")
		}

		if minutes > 0 {
			activity := lesson.ID.String()
			if err := tx.StudySessions.Create(ctx, &models.StudySession{
				UserID:          actor.ProfileID(),
				ActivityType:    models.ActivityLesson,
				ActivityID:      &activity,
				DurationMinutes: minutes,
				StartedAt:       now.Add(-time.Duration(minutes) * time.Minute),
				CompletedAt:     &now,
			}); err != nil {
				return wrapRepo(err, "study session")
			}
		}
		enrollment = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.evaluate(ctx, actor.ProfileID())
	return enrollment, nil
}

func (s *courseService) evaluate(ctx context.Context, profileID uuid.UUID) {
	if s.achievements == nil {
		return
	}
	if _, err := s.achievements.Evaluate(ctx, profileID); err != nil {
		s.log.Warn("failed to evaluate achievements", slog.String("error", err.Error()))
	}
}

func (s *courseService) Videos(ctx context.Context, subjectID *uuid.UUID) ([]*models.YoutubeVideo, error) {
	return s.repos.Courses.ListPublishedVideos(ctx, subjectID)
}

// ViewVideo возвращает видео и увеличивает счетчик просмотров
func (s *courseService) ViewVideo(ctx context.Context, videoID uuid.UUID) (*models.YoutubeVideo, error) {
	v, err := s.repos.Courses.GetVideo(ctx, videoID)
	if err != nil {
		return nil, wrapRepo(err, "video")
	}
	if !v.IsPublished {
		return nil, fmt.Errorf("video: %w", ErrNotFound)
	}
	if err := s.repos.Courses.IncrementVideoViews(ctx, videoID); err != nil {
		return nil, fmt.Errorf("failed to count view: %w", err)
	}
	v.ViewCount++
	return v, nil
}

func (s *courseService) SaveVideoProgress(ctx context.Context, actor access.Session, videoID uuid.UUID, in VideoProgressInput) (*models.VideoProgress, error) {
	if err := access.Authorize(actor, access.RequireAuthenticated); err != nil {
		return nil, err
	}
	if in.LastPositionSeconds < 0 || in.WatchTimeMinutes < 0 {
		return nil, validationError("progress values must not be negative")
	}
	if _, err := s.repos.Courses.GetVideo(ctx, videoID); err != nil {
		return nil, wrapRepo(err, "video")
	}
	p := &models.VideoProgress{
		UserID:              actor.ProfileID(),
		VideoID:             videoID,
		Completed:           in.Completed,
		LastPositionSeconds: in.LastPositionSeconds,
		WatchTimeMinutes:    in.WatchTimeMinutes,
	}
	if err := s.repos.Courses.UpsertVideoProgress(ctx, p); err != nil {
		return nil, wrapRepo(err, "video progress")
	}
	return p, nil
}

func (s *courseService) LogStudySession(ctx context.Context, actor access.Session, in StudySessionInput) (*models.StudySession, error) {
	if err := access.Authorize(actor, access.RequireAuthenticated); err != nil {
		return nil, err
	}
	switch in.ActivityType {
	case models.ActivityLesson, models.ActivityVideo, models.ActivityOther:
	default:
		return nil, validationError("invalid activity type %q", in.ActivityType)
	}
	if in.DurationMinutes <= 0 {
		return nil, validationError("duration must be positive")
	}
	now := s.now().UTC()
	session := &models.StudySession{
		UserID:          actor.ProfileID(),
		ActivityType:    in.ActivityType,
		ActivityID:      in.ActivityID,
		DurationMinutes: in.DurationMinutes,
		StartedAt:       now.Add(-time.Duration(in.DurationMinutes) * time.Minute),
		CompletedAt:     &now,
	}
	if err := s.repos.StudySessions.Create(ctx, session); err != nil {
		return nil, wrapRepo(err, "study session")
	}
	s.evaluate(ctx, actor.ProfileID())
	return session, nil
}
