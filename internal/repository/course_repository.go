package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"brainself/internal/models"
)

// CourseFilter задает фильтры каталога курсов
type CourseFilter struct {
	Search     string
	SubjectID  *uuid.UUID
	Difficulty string
	GradeLevel string
}

type CourseRepository interface {
	CreateSubject(ctx context.Context, subject *models.Subject) error
	ListSubjects(ctx context.Context) ([]*models.Subject, error)

	CreateCourse(ctx context.Context, course *models.Course) error
	GetCourse(ctx context.Context, id uuid.UUID) (*models.Course, error)
	ListPublishedCourses(ctx context.Context, filter CourseFilter) ([]*models.Course, error)

	CreateLesson(ctx context.Context, lesson *models.Lesson) error
	GetLesson(ctx context.Context, id uuid.UUID) (*models.Lesson, error)
	ListLessons(ctx context.Context, courseID uuid.UUID) ([]*models.Lesson, error)
	CountPublishedLessons(ctx context.Context, courseID uuid.UUID) (int64, error)

	CreateEnrollment(ctx context.Context, enrollment *models.Enrollment) error
	GetEnrollment(ctx context.Context, userID, courseID uuid.UUID) (*models.Enrollment, error)
	ListEnrollments(ctx context.Context, userID uuid.UUID) ([]*models.Enrollment, error)
	ListEnrollmentsForUsers(ctx context.Context, userIDs []uuid.UUID) ([]*models.Enrollment, error)
	UpdateEnrollmentProgress(ctx context.Context, id uuid.UUID, progress int, completedAt *time.Time) error

	UpsertLessonProgress(ctx context.Context, progress *models.LessonProgress) error
	CountCompletedLessons(ctx context.Context, enrollmentID uuid.UUID) (int64, error)

	CreateVideo(ctx context.Context, video *models.YoutubeVideo) error
	ListPublishedVideos(ctx context.Context, subjectID *uuid.UUID) ([]*models.YoutubeVideo, error)
	GetVideo(ctx context.Context, id uuid.UUID) (*models.YoutubeVideo, error)
	IncrementVideoViews(ctx context.Context, id uuid.UUID) error
	UpsertVideoProgress(ctx context.Context, progress *models.VideoProgress) error
}

type courseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) CreateSubject(ctx context.Context, subject *models.Subject) error {
	if subject.ID == uuid.Nil {
		subject.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(subject).Error
}

func (r *courseRepository) ListSubjects(ctx context.Context) ([]*models.Subject, error) {
	var ss []*models.Subject
	err := r.db.WithContext(ctx).Order("name ASC").Find(&ss).Error
	return ss, err
}

func (r *courseRepository) CreateCourse(ctx context.Context, course *models.Course) error {
	if course.ID == uuid.Nil {
		course.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Omit("Subject", "Lessons").Create(course).Error
}

func (r *courseRepository) GetCourse(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	var c models.Course
	err := r.db.WithContext(ctx).Preload("Subject").First(&c, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *courseRepository) ListPublishedCourses(ctx context.Context, filter CourseFilter) ([]*models.Course, error) {
	var cs []*models.Course
	q := r.db.WithContext(ctx).Preload("Subject").Where("is_published = ?", true)
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if filter.SubjectID != nil {
		q = q.Where("subject_id = ?", *filter.SubjectID)
	}
	if filter.Difficulty != "" {
		q = q.Where("difficulty_level = ?", filter.Difficulty)
	}
	if filter.GradeLevel != "" {
		q = q.Where("grade_level = ?", filter.GradeLevel)
	}
	err := q.Order("created_at DESC").Find(&cs).Error
	return cs, err
}

func (r *courseRepository) CreateLesson(ctx context.Context, lesson *models.Lesson) error {
	if lesson.ID == uuid.Nil {
		lesson.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(lesson).Error
}

func (r *courseRepository) GetLesson(ctx context.Context, id uuid.UUID) (*models.Lesson, error) {
	var l models.Lesson
	if err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *courseRepository) ListLessons(ctx context.Context, courseID uuid.UUID) ([]*models.Lesson, error) {
	var ls []*models.Lesson
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND is_published = ?", courseID, true).
		Order("order_index ASC").
		Find(&ls).Error
	return ls, err
}

func (r *courseRepository) CountPublishedLessons(ctx context.Context, courseID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Lesson{}).
		Where("course_id = ? AND is_published = ?", courseID, true).
		Count(&count).Error
	return count, err
}

func (r *courseRepository) CreateEnrollment(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == uuid.Nil {
		enrollment.ID = uuid.New()
	}
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now()
	}
	return r.db.WithContext(ctx).Omit("Course").Create(enrollment).Error
}

func (r *courseRepository) GetEnrollment(ctx context.Context, userID, courseID uuid.UUID) (*models.Enrollment, error) {
	var e models.Enrollment
	err := r.db.WithContext(ctx).Where("user_id = ? AND course_id = ?", userID, courseID).First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *courseRepository) ListEnrollments(ctx context.Context, userID uuid.UUID) ([]*models.Enrollment, error) {
	var es []*models.Enrollment
	err := r.db.WithContext(ctx).Preload("Course").
		Where("user_id = ?", userID).
		Order("enrolled_at DESC").
		Find(&es).Error
	return es, err
}

func (r *courseRepository) ListEnrollmentsForUsers(ctx context.Context, userIDs []uuid.UUID) ([]*models.Enrollment, error) {
	var es []*models.Enrollment
	if len(userIDs) == 0 {
		return es, nil
	}
	err := r.db.WithContext(ctx).Preload("Course").
		Where("user_id IN ?", userIDs).
		Order("enrolled_at DESC").
		Find(&es).Error
	return es, err
}

func (r *courseRepository) UpdateEnrollmentProgress(ctx context.Context, id uuid.UUID, progress int, completedAt *time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"progress_percentage": progress,
			"completed_at":        completedAt,
		}).Error
}

// UpsertLessonProgress создает или обновляет прогресс по паре (запись, урок)
func (r *courseRepository) UpsertLessonProgress(ctx context.Context, progress *models.LessonProgress) error {
	if progress.ID == uuid.Nil {
		progress.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "enrollment_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "score", "time_spent_minutes", "completed_at", "updated_at"}),
	}).Create(progress).Error
}

func (r *courseRepository) CountCompletedLessons(ctx context.Context, enrollmentID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.LessonProgress{}).
		Where("enrollment_id = ? AND status = ?", enrollmentID, models.LessonStatusCompleted).
		Count(&count).Error
	return count, err
}

func (r *courseRepository) CreateVideo(ctx context.Context, video *models.YoutubeVideo) error {
	if video.ID == uuid.Nil {
		video.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(video).Error
}

func (r *courseRepository) ListPublishedVideos(ctx context.Context, subjectID *uuid.UUID) ([]*models.YoutubeVideo, error) {
	var vs []*models.YoutubeVideo
	q := r.db.WithContext(ctx).Where("is_published = ?", true)
	if subjectID != nil {
		q = q.Where("subject_id = ?", *subjectID)
	}
	err := q.Order("created_at DESC").Find(&vs).Error
	return vs, err
}

func (r *courseRepository) GetVideo(ctx context.Context, id uuid.UUID) (*models.YoutubeVideo, error) {
	var v models.YoutubeVideo
	if err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *courseRepository) IncrementVideoViews(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.YoutubeVideo{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
}

func (r *courseRepository) UpsertVideoProgress(ctx context.Context, progress *models.VideoProgress) error {
	if progress.ID == uuid.Nil {
		progress.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "video_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"completed", "last_position_seconds", "watch_time_minutes", "updated_at"}),
	}).Create(progress).Error
}
