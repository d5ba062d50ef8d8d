// Package seed заполняет базу каталогом достижений и демонстрационными материалами.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"

	"brainself/internal/models"
	"brainself/internal/repository"
)

// Result сколько записей создано
type Result struct {
	Achievements int
	Subjects     int
	Courses      int
	Tests        int
	Videos       int
}

func ptr[T any](v T) *T { return &v }

// Achievements каталог достижений по умолчанию
func Achievements() []models.Achievement {
	return []models.Achievement{
		{Name: "First Test", Description: ptr("Complete your first test"), Icon: ptr("trophy"), Points: 10,
			RequirementType: models.RequirementTestsCompleted, RequirementValue: 1},
		{Name: "Test Taker", Description: ptr("Complete 10 tests"), Icon: ptr("target"), Points: 50,
			RequirementType: models.RequirementTestsCompleted, RequirementValue: 10},
		{Name: "Study Hour", Description: ptr("Study for 60 minutes in total"), Icon: ptr("clock"), Points: 15,
			RequirementType: models.RequirementStudyTime, RequirementValue: 60},
		{Name: "Dedicated Learner", Description: ptr("Study for 10 hours in total"), Icon: ptr("book"), Points: 100,
			RequirementType: models.RequirementStudyTime, RequirementValue: 600},
		{Name: "Course Finisher", Description: ptr("Complete a course"), Icon: ptr("graduation-cap"), Points: 40,
			RequirementType: models.RequirementCoursesCompleted, RequirementValue: 1},
		{Name: "High Achiever", Description: ptr("Keep an average test score of 85%"), Icon: ptr("star"), Points: 75,
			RequirementType: models.RequirementAverageScore, RequirementValue: 85},
		{Name: models.ExportMasterAchievement, Description: ptr("Export a test result card"), Icon: ptr("download"), Points: 5,
			RequirementType: models.RequirementManual},
	}
}

// Run создает недостающие достижения и, если каталог предметов пуст, демонстрационные курсы и тесты.
// Повторный запуск ничего не дублирует.
func Run(ctx context.Context, repos *repository.Repositories, log *slog.Logger) (*Result, error) {
	if log == nil {
		log = slog.Default()
	}
	res := &Result{}

	for _, a := range Achievements() {
		if _, err := repos.Achievements.GetByName(ctx, a.Name); err == nil {
			continue
		} else if !repository.IsNotFound(err) {
			return nil, fmt.Errorf("failed to look up achievement %q: %w", a.Name, err)
		}
		a := a
		if err := repos.Achievements.Create(ctx, &a); err != nil {
			return nil, fmt.Errorf("failed to create achievement %q: %w", a.Name, err)
		}
		res.Achievements++
	}

	subjects, err := repos.Courses.ListSubjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	if len(subjects) > 0 {
		log.Info("catalog already seeded", slog.Int("subjects", len(subjects)))
		return res, nil
	}

	err = repos.Transaction(ctx, func(tx *repository.Repositories) error {
		return seedCatalog(ctx, tx, res)
	})
	if err != nil {
		return nil, err
	}
	log.Info("seed complete",
		slog.Int("achievements", res.Achievements),
		slog.Int("subjects", res.Subjects),
		slog.Int("courses", res.Courses),
		slog.Int("tests", res.Tests))
	return res, nil
}

func seedCatalog(ctx context.Context, tx *repository.Repositories, res *Result) error {
	maths := &models.Subject{Name: "Mathematics", NameSi: ptr("ගණිතය"), Color: ptr("#3b82f6"), Icon: ptr("calculator")}
	science := &models.Subject{Name: "Science", NameSi: ptr("විද්‍යාව"), Color: ptr("#10b981"), Icon: ptr("flask")}
	for _, s := range []*models.Subject{maths, science} {
		if err := tx.Courses.CreateSubject(ctx, s); err != nil {
			return fmt.Errorf("failed to create subject %s: %w", s.Name, err)
		}
		res.Subjects++
	}

	course := &models.Course{
		SubjectID:       &maths.ID,
		Title:           "Fractions and Decimals",
		Description:     ptr("Work with fractions, decimals and percentages."),
		DifficultyLevel: ptr("beginner"),
		EstimatedHours:  ptr(3),
		GradeLevel:      ptr("grade_7"),
		IsPublished:     true,
	}
	if err := tx.Courses.CreateCourse(ctx, course); err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	res.Courses++

	lessons := []string{"What is a fraction", "Equivalent fractions", "From fractions to decimals"}
	for i, title := range lessons {
		lesson := &models.Lesson{
			CourseID:        course.ID,
			Title:           title,
			ContentType:     "text",
			DurationMinutes: ptr(20),
			OrderIndex:      i + 1,
			IsPublished:     true,
		}
		if err := tx.Courses.CreateLesson(ctx, lesson); err != nil {
			return fmt.Errorf("failed to create lesson %q: %w", title, err)
		}
	}

	video := &models.YoutubeVideo{
		SubjectID:       &science.ID,
		Title:           "Photosynthesis in 5 minutes",
		YoutubeURL:      "https://www.youtube.com/watch?v=UPBMG5EYydo",
		GradeLevel:      ptr("grade_8"),
		DifficultyLevel: ptr("beginner"),
		DurationMinutes: ptr(5),
		IsPublished:     true,
	}
	if err := tx.Courses.CreateVideo(ctx, video); err != nil {
		return fmt.Errorf("failed to create video: %w", err)
	}
	res.Videos++

	test := &models.Test{
		SubjectID:        &maths.ID,
		Title:            "Fractions quick check",
		DifficultyLevel:  ptr("beginner"),
		GradeLevel:       ptr("grade_7"),
		TimeLimitMinutes: ptr(15),
		TotalQuestions:   3,
		IsPublished:      true,
	}
	if err := tx.Tests.CreateTest(ctx, test); err != nil {
		return fmt.Errorf("failed to create test: %w", err)
	}
	res.Tests++

	questions := []models.TestQuestion{
		{QuestionText: "Which fraction equals 0.5?", CorrectAnswer: "b",
			Options: datatypes.NewJSONType(map[string]string{"a": "1/3", "b": "1/2", "c": "2/3", "d": "3/4"})},
		{QuestionText: "What is 1/4 as a percentage?", CorrectAnswer: "a",
			Options: datatypes.NewJSONType(map[string]string{"a": "25%", "b": "40%", "c": "14%", "d": "75%"})},
		{QuestionText: "Simplify 6/8.", CorrectAnswer: "d", Points: ptr(2),
			Options: datatypes.NewJSONType(map[string]string{"a": "2/3", "b": "6/8", "c": "1/2", "d": "3/4"})},
	}
	for i := range questions {
		q := questions[i]
		q.TestID = test.ID
		q.QuestionType = "multiple_choice"
		q.OrderIndex = i + 1
		if err := tx.Tests.CreateQuestion(ctx, &q); err != nil {
			return fmt.Errorf("failed to create question %d: %w", i+1, err)
		}
	}
	return nil
}
