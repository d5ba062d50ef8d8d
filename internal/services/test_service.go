package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"brainself/internal/access"
	"brainself/internal/models"
	"brainself/internal/reminders"
	"brainself/internal/repository"
	"brainself/internal/scoring"
	"brainself/pkg/storage"
)

const expiryTimeout = 30 * time.Second

// TestSummary опубликованный тест с лучшей завершенной попыткой пользователя
type TestSummary struct {
	Test        *models.Test        `json:"test"`
	BestAttempt *models.TestAttempt `json:"best_attempt,omitempty"`
}

// PublicQuestion вопрос без правильного ответа и пояснения
type PublicQuestion struct {
	ID             uuid.UUID          `json:"id"`
	QuestionText   string             `json:"question_text"`
	QuestionTextSi *string            `json:"question_text_si,omitempty"`
	QuestionType   string             `json:"question_type"`
	Options        map[string]string  `json:"options"`
	OptionsSi      *map[string]string `json:"options_si,omitempty"`
	Points         int                `json:"points"`
	OrderIndex     int                `json:"order_index"`
}

// AttemptState открытая попытка со сроком сдачи
type AttemptState struct {
	Attempt   *models.TestAttempt `json:"attempt"`
	Deadline  *time.Time          `json:"deadline,omitempty"`
	Questions []PublicQuestion    `json:"questions"`
}

// SubmitResult итог завершенной попытки
type SubmitResult struct {
	Attempt         *models.TestAttempt   `json:"attempt"`
	Result          scoring.Result        `json:"result"`
	NewAchievements []*models.Achievement `json:"new_achievements,omitempty"`
}

type TestService interface {
	List(ctx context.Context, actor access.Session, gradeLevel string) ([]TestSummary, error)
	Questions(ctx context.Context, actor access.Session, testID uuid.UUID) ([]PublicQuestion, error)

	Start(ctx context.Context, actor access.Session, testID uuid.UUID) (*AttemptState, error)
	SaveAnswer(ctx context.Context, actor access.Session, attemptID, questionID uuid.UUID, answer string) error
	// Submit завершает попытку; answers дополняют сохраненные ответы
	Submit(ctx context.Context, actor access.Session, attemptID uuid.UUID, answers models.AnswerMap) (*SubmitResult, error)
	ExportResultCard(ctx context.Context, actor access.Session, attemptID uuid.UUID) (string, error)

	// RestoreExpiries заново взводит таймеры открытых попыток после перезапуска
	RestoreExpiries(ctx context.Context) error
}

type testService struct {
	repos        *repository.Repositories
	achievements AchievementService
	storage      *storage.Storage
	expiry       *reminders.Scheduler
	log          *slog.Logger
	now          func() time.Time
}

func NewTestService(
	repos *repository.Repositories,
	achievements AchievementService,
	store *storage.Storage,
	expiry *reminders.Scheduler,
	log *slog.Logger,
) TestService {
	if log == nil {
		log = slog.Default()
	}
	return &testService{
		repos:        repos,
		achievements: achievements,
		storage:      store,
		expiry:       expiry,
		log:          log,
		now:          time.Now,
	}
}

func (s *testService) List(ctx context.Context, actor access.Session, gradeLevel string) ([]TestSummary, error) {
	if err := access.Authorize(actor, access.RequireAuthenticated); err != nil {
		return nil, err
	}
	tests, err := s.repos.Tests.ListPublished(ctx, gradeLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to load tests: %w", err)
	}
	attempts, err := s.repos.Tests.ListCompletedAttempts(ctx, actor.ProfileID())
	if err != nil {
		return nil, fmt.Errorf("failed to load attempts: %w", err)
	}

	best := make(map[uuid.UUID]*models.TestAttempt)
	for _, a := range attempts {
		if a.Score == nil {
			continue
		}
		if b, ok := best[a.TestID]; !ok || *a.Score > *b.Score {
			best[a.TestID] = a
		}
	}

	out := make([]TestSummary, 0, len(tests))
	for _, t := range tests {
		out = append(out, TestSummary{Test: t, BestAttempt: best[t.ID]})
	}
	return out, nil
}

func (s *testService) Questions(ctx context.Context, actor access.Session, testID uuid.UUID) ([]PublicQuestion, error) {
	if err := access.Authorize(actor, access.RequireAuthenticated); err != nil {
		return nil, err
	}
	if _, err := s.publishedTest(ctx, s.repos, testID); err != nil {
		return nil, err
	}
	qs, err := s.repos.Tests.ListQuestions(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}
	return publicQuestions(qs), nil
}

func publicQuestions(qs []*models.TestQuestion) []PublicQuestion {
	out := make([]PublicQuestion, 0, len(qs))
	for _, q := range qs {
		pq := PublicQuestion{
			ID:             q.ID,
			QuestionText:   q.QuestionText,
			QuestionTextSi: q.QuestionTextSi,
			QuestionType:   q.QuestionType,
			Options:        q.Options.Data(),
			Points:         1,
			OrderIndex:     q.OrderIndex,
		}
		if q.OptionsSi != nil {
			opts := q.OptionsSi.Data()
			pq.OptionsSi = &opts
		}
		if q.Points != nil {
			pq.Points = *q.Points
		}
		out = append(out, pq)
	}
	return out
}

func (s *testService) publishedTest(ctx context.Context, repos *repository.Repositories, id uuid.UUID) (*models.Test, error) {
	t, err := repos.Tests.GetTest(ctx, id)
	if err != nil {
		return nil, wrapRepo(err, "test")
	}
	if !t.IsPublished {
		return nil, fmt.Errorf("test: %w", ErrNotFound)
	}
	return t, nil
}

// Start создает попытку и учебную сессию test_taking одной транзакцией
func (s *testService) Start(ctx context.Context, actor access.Session, testID uuid.UUID) (*AttemptState, error) {
	if err := access.Authorize(actor, access.RequireAuthenticated); err != nil {
		return nil, err
	}
	now := s.now().UTC()

	var (
		test      *models.Test
		questions []*models.TestQuestion
		attempt   *models.TestAttempt
	)
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		var err error
		if test, err = s.publishedTest(ctx, tx, testID); err != nil {
			return err
		}
		if questions, err = tx.Tests.ListQuestions(ctx, testID); err != nil {
			return fmt.Errorf("failed to load questions: %w", err)
		}

		activity := testID.String()
		session := &models.StudySession{
			UserID:       actor.ProfileID(),
			ActivityType: models.ActivityTestTaking,
			ActivityID:   &activity,
			StartedAt:    now,
		}
		if err := tx.StudySessions.Create(ctx, session); err != nil {
			return wrapRepo(err, "create study session")
		}
		attempt = &models.TestAttempt{
			TestID:         testID,
			UserID:         actor.ProfileID(),
			StudySessionID: &session.ID,
			Answers:        datatypes.NewJSONType(models.AnswerMap{}),
			StartedAt:      now,
		}
		return wrapRepo(tx.Tests.CreateAttempt(ctx, attempt), "create attempt")
	})
	if err != nil {
		return nil, err
	}

	state := &AttemptState{Attempt: attempt, Questions: publicQuestions(questions)}
	if limit := test.TimeLimit(); limit > 0 {
		deadline := now.Add(limit)
		state.Deadline = &deadline
		s.armExpiry(attempt.ID, deadline)
	}
	s.log.Info("test attempt started",
		slog.String("attempt_id", attempt.ID.String()),
		slog.String("test_id", testID.String()),
	)
	return state, nil
}

func (s *testService) armExpiry(attemptID uuid.UUID, deadline time.Time) {
	if s.expiry == nil {
		return
	}
	s.expiry.Schedule(attemptID, deadline, func() { s.expire(attemptID) })
}

// expire завершает попытку с сохраненными ответами тем же путем, что и Submit
func (s *testService) expire(attemptID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), expiryTimeout)
	defer cancel()

	res, err := s.finish(ctx, attemptID, nil, nil)
	switch {
	case errors.Is(err, ErrConflict):
		return
	case err != nil:
		s.log.Error("failed to expire attempt", slog.String("attempt_id", attemptID.String()), slog.String("error", err.Error()))
		return
	}
	s.log.Info("test attempt expired",
		slog.String("attempt_id", attemptID.String()),
		slog.Int("score", res.Result.Percent),
	)
}

func (s *testService) openAttempt(ctx context.Context, actor access.Session, attemptID uuid.UUID) (*models.TestAttempt, error) {
	if err := access.Authorize(actor, access.RequireAuthenticated); err != nil {
		return nil, err
	}
	a, err := s.repos.Tests.GetAttempt(ctx, attemptID)
	if err != nil {
		return nil, wrapRepo(err, "attempt")
	}
	if a.UserID != actor.ProfileID() {
		return nil, access.ErrForbidden
	}
	if a.Completed() {
		return nil, conflictError("attempt already submitted")
	}
	return a, nil
}

func (s *testService) SaveAnswer(ctx context.Context, actor access.Session, attemptID, questionID uuid.UUID, answer string) error {
	a, err := s.openAttempt(ctx, actor, attemptID)
	if err != nil {
		return err
	}
	test, err := s.repos.Tests.GetTest(ctx, a.TestID)
	if err != nil {
		return wrapRepo(err, "test")
	}
	if limit := test.TimeLimit(); limit > 0 && s.now().After(a.StartedAt.Add(limit)) {
		return conflictError("time is up")
	}
	questions, err := s.repos.Tests.ListQuestions(ctx, a.TestID)
	if err != nil {
		return fmt.Errorf("failed to load questions: %w", err)
	}
	if !hasQuestion(questions, questionID) {
		return validationError("question does not belong to this test")
	}

	answers := a.Answers.Data()
	if answers == nil {
		answers = models.AnswerMap{}
	}
	answers[questionID.String()] = answer
	a.Answers = datatypes.NewJSONType(answers)
	return wrapRepo(s.repos.Tests.UpdateAttempt(ctx, a), "save answer")
}

func hasQuestion(qs []*models.TestQuestion, id uuid.UUID) bool {
	for _, q := range qs {
		if q.ID == id {
			return true
		}
	}
	return false
}

func (s *testService) Submit(ctx context.Context, actor access.Session, attemptID uuid.UUID, answers models.AnswerMap) (*SubmitResult, error) {
	if _, err := s.openAttempt(ctx, actor, attemptID); err != nil {
		return nil, err
	}
	owner := actor.ProfileID()
	return s.finish(ctx, attemptID, &owner, answers)
}

// finish оценивает попытку и закрывает ее вместе с учебной сессией.
// Повторное завершение возвращает ErrConflict.
func (s *testService) finish(ctx context.Context, attemptID uuid.UUID, owner *uuid.UUID, extra models.AnswerMap) (*SubmitResult, error) {
	now := s.now().UTC()
	res := &SubmitResult{}

	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		a, err := tx.Tests.GetAttempt(ctx, attemptID)
		if err != nil {
			return wrapRepo(err, "attempt")
		}
		if owner != nil && a.UserID != *owner {
			return access.ErrForbidden
		}
		if a.Completed() {
			return conflictError("attempt already submitted")
		}
		test, err := tx.Tests.GetTest(ctx, a.TestID)
		if err != nil {
			return wrapRepo(err, "test")
		}
		questions, err := tx.Tests.ListQuestions(ctx, a.TestID)
		if err != nil {
			return fmt.Errorf("failed to load questions: %w", err)
		}

		// после дедлайна ответы из запроса не принимаются, оцениваются только сохраненные
		if limit := test.TimeLimit(); owner != nil && limit > 0 && now.After(a.StartedAt.Add(limit)) {
			extra = nil
		}
		answers := a.Answers.Data()
		if answers == nil {
			answers = models.AnswerMap{}
		}
		for k, v := range extra {
			answers[k] = v
		}
		res.Result = scoring.Score(questionValues(questions), answers)

		a.Answers = datatypes.NewJSONType(answers)
		a.Score = &res.Result.Percent
		a.EarnedPoints = &res.Result.EarnedPoints
		a.TotalPoints = &res.Result.TotalPoints
		a.CompletedAt = &now
		if err := tx.Tests.UpdateAttempt(ctx, a); err != nil {
			return wrapRepo(err, "complete attempt")
		}
		if a.StudySessionID != nil {
			minutes := SessionMinutes(now.Sub(a.StartedAt), test.TimeLimit())
			if err := tx.StudySessions.Complete(ctx, *a.StudySessionID, minutes, now); err != nil {
				return wrapRepo(err, "complete study session")
			}
		}
		res.Attempt = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.expiry != nil {
		s.expiry.Cancel(attemptID)
	}

	if s.achievements != nil {
		awarded, err := s.achievements.Evaluate(ctx, res.Attempt.UserID)
		if err != nil {
			s.log.Warn("failed to evaluate achievements", slog.String("error", err.Error()))
		}
		res.NewAchievements = awarded
	}
	return res, nil
}

func questionValues(qs []*models.TestQuestion) []models.TestQuestion {
	out := make([]models.TestQuestion, 0, len(qs))
	for _, q := range qs {
		out = append(out, *q)
	}
	return out
}

// SessionMinutes округляет прошедшее время до минут; лимит теста ограничивает результат
func SessionMinutes(elapsed, limit time.Duration) int {
	if elapsed < 0 {
		elapsed = 0
	}
	if limit > 0 && elapsed > limit {
		elapsed = limit
	}
	return int(elapsed.Round(time.Minute) / time.Minute)
}

// ExportResultCard сохраняет PNG карточку завершенной попытки и выдает Export Master
func (s *testService) ExportResultCard(ctx context.Context, actor access.Session, attemptID uuid.UUID) (string, error) {
	if err := access.Authorize(actor, access.RequireAuthenticated); err != nil {
		return "", err
	}
	a, err := s.repos.Tests.GetAttempt(ctx, attemptID)
	if err != nil {
		return "", wrapRepo(err, "attempt")
	}
	if a.UserID != actor.ProfileID() {
		return "", access.ErrForbidden
	}
	if !a.Completed() || a.Score == nil {
		return "", conflictError("attempt is not submitted yet")
	}

	questions, err := s.repos.Tests.ListQuestions(ctx, a.TestID)
	if err != nil {
		return "", fmt.Errorf("failed to load questions: %w", err)
	}
	result := scoring.Score(questionValues(questions), a.Answers.Data())

	path, err := s.storage.SaveCard(actor.ProfileID(), a.ID, storage.ResultCard{
		Score:   *a.Score,
		Correct: result.Correct,
		Total:   result.Total,
	})
	if err != nil {
		return "", err
	}
	if s.achievements != nil {
		if _, err := s.achievements.AwardByName(ctx, actor.ProfileID(), models.ExportMasterAchievement); err != nil {
			s.log.Warn("failed to award export achievement", slog.String("error", err.Error()))
		}
	}
	return path, nil
}

func (s *testService) RestoreExpiries(ctx context.Context) error {
	open, err := s.repos.Tests.ListOpenAttempts(ctx)
	if err != nil {
		return fmt.Errorf("failed to load open attempts: %w", err)
	}
	now := s.now()
	restored := 0
	for _, a := range open {
		test, err := s.repos.Tests.GetTest(ctx, a.TestID)
		if err != nil {
			s.log.Warn("skip attempt without test", slog.String("attempt_id", a.ID.String()))
			continue
		}
		limit := test.TimeLimit()
		if limit <= 0 {
			continue
		}
		deadline := a.StartedAt.Add(limit)
		if !deadline.After(now) {
			s.expire(a.ID)
			continue
		}
		s.armExpiry(a.ID, deadline)
		restored++
	}
	s.log.Info("attempt timers restored", slog.Int("count", restored))
	return nil
}
