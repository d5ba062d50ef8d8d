package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"brainself/internal/access"
	"brainself/internal/models"
	"brainself/internal/reminders"
	"brainself/internal/repository"
	"brainself/pkg/telegram"
)

const (
	// DefaultReminderLead за сколько до начала записи приходит напоминание
	DefaultReminderLead = 5 * time.Minute
	reminderTimeout     = 15 * time.Second
)

// TimetableInput данные записи расписания
type TimetableInput struct {
	Title               string                    `json:"title" binding:"required"`
	Description         *string                   `json:"description"`
	SubjectName         *string                   `json:"subject_name"`
	StartTime           time.Time                 `json:"start_time" binding:"required"`
	EndTime             time.Time                 `json:"end_time" binding:"required"`
	EntryType           models.TimetableEntryType `json:"entry_type"`
	IsRecurring         bool                      `json:"is_recurring"`
	RecurrencePattern   *string                   `json:"recurrence_pattern"`
	NotificationEnabled bool                      `json:"notification_enabled"`
}

func (in *TimetableInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return validationError("title is required")
	}
	if !in.EndTime.After(in.StartTime) {
		return validationError("end time must be after start time")
	}
	if in.EntryType == "" {
		in.EntryType = models.EntryTypeStudy
	}
	if !in.EntryType.Valid() {
		return validationError("invalid entry type %q", in.EntryType)
	}
	if !in.IsRecurring {
		in.RecurrencePattern = nil
		return nil
	}
	if in.RecurrencePattern == nil {
		return validationError("recurrence pattern is required")
	}
	switch *in.RecurrencePattern {
	case models.RecurrenceDaily, models.RecurrenceWeekly:
		return nil
	}
	return validationError("invalid recurrence pattern %q", *in.RecurrencePattern)
}

func (in TimetableInput) apply(e *models.TimetableEntry) {
	e.Title = in.Title
	e.Description = trimmedOrNil(in.Description)
	e.SubjectName = trimmedOrNil(in.SubjectName)
	e.StartTime = in.StartTime
	e.EndTime = in.EndTime
	e.EntryType = in.EntryType
	e.IsRecurring = in.IsRecurring
	e.RecurrencePattern = in.RecurrencePattern
	e.NotificationEnabled = in.NotificationEnabled
}

type TimetableService interface {
	List(ctx context.Context, actor access.Session) ([]*models.TimetableEntry, error)
	Create(ctx context.Context, actor access.Session, in TimetableInput) (*models.TimetableEntry, error)
	Update(ctx context.Context, actor access.Session, id uuid.UUID, in TimetableInput) (*models.TimetableEntry, error)
	Delete(ctx context.Context, actor access.Session, id uuid.UUID) error

	// RestoreReminders взводит напоминания всех будущих записей после запуска
	RestoreReminders(ctx context.Context) (int, error)
	// ForgetPermission сбрасывает сохраненное разрешение, например после привязки Telegram
	ForgetPermission(profileID uuid.UUID)
}

type timetableService struct {
	repos     *repository.Repositories
	scheduler *reminders.Scheduler
	notifier  telegram.Notifier
	lead      time.Duration
	log       *slog.Logger
	now       func() time.Time

	mu          sync.Mutex
	permissions map[uuid.UUID]*int64
}

func NewTimetableService(
	repos *repository.Repositories,
	scheduler *reminders.Scheduler,
	notifier telegram.Notifier,
	lead time.Duration,
	log *slog.Logger,
) TimetableService {
	if lead <= 0 {
		lead = DefaultReminderLead
	}
	if log == nil {
		log = slog.Default()
	}
	return &timetableService{
		repos:       repos,
		scheduler:   scheduler,
		notifier:    notifier,
		lead:        lead,
		log:         log,
		now:         time.Now,
		permissions: make(map[uuid.UUID]*int64),
	}
}

func (s *timetableService) List(ctx context.Context, actor access.Session) ([]*models.TimetableEntry, error) {
	if err := access.Authorize(actor, access.RequireAuthenticated); err != nil {
		return nil, err
	}
	return s.repos.Timetable.ListByUser(ctx, actor.ProfileID())
}

func (s *timetableService) Create(ctx context.Context, actor access.Session, in TimetableInput) (*models.TimetableEntry, error) {
	if err := access.Authorize(actor, access.RequireAuthenticated); err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	e := &models.TimetableEntry{UserID: actor.ProfileID()}
	in.apply(e)
	if err := s.repos.Timetable.Create(ctx, e); err != nil {
		return nil, wrapRepo(err, "create entry")
	}
	s.arm(ctx, e)
	return e, nil
}

func (s *timetableService) Update(ctx context.Context, actor access.Session, id uuid.UUID, in TimetableInput) (*models.TimetableEntry, error) {
	e, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	in.apply(e)
	if err := s.repos.Timetable.Update(ctx, e); err != nil {
		return nil, wrapRepo(err, "update entry")
	}
	s.arm(ctx, e)
	return e, nil
}

func (s *timetableService) Delete(ctx context.Context, actor access.Session, id uuid.UUID) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repos.Timetable.Delete(ctx, id); err != nil {
		return wrapRepo(err, "delete entry")
	}
	s.scheduler.Cancel(id)
	return nil
}

func (s *timetableService) owned(ctx context.Context, actor access.Session, id uuid.UUID) (*models.TimetableEntry, error) {
	if err := access.Authorize(actor, access.RequireAuthenticated); err != nil {
		return nil, err
	}
	e, err := s.repos.Timetable.GetByID(ctx, id)
	if err != nil {
		return nil, wrapRepo(err, "entry")
	}
	if e.UserID != actor.ProfileID() {
		return nil, access.ErrForbidden
	}
	return e, nil
}

// NextReminder возвращает момент напоминания и начало занятия, к которому оно относится.
// Для повторяющихся записей берется ближайшее повторение, напоминание о котором еще впереди.
func NextReminder(e *models.TimetableEntry, now time.Time, lead time.Duration) (at, start time.Time, ok bool) {
	start = e.StartTime
	if !start.Add(-lead).After(now) {
		if start, ok = e.NextOccurrence(now.Add(lead)); !ok {
			return time.Time{}, time.Time{}, false
		}
	}
	return start.Add(-lead), start, true
}

// arm планирует напоминание или снимает прежнее. Без разрешения запись остается без напоминания.
func (s *timetableService) arm(ctx context.Context, e *models.TimetableEntry) bool {
	s.scheduler.Cancel(e.ID)
	if !e.NotificationEnabled {
		return false
	}
	at, start, ok := NextReminder(e, s.now(), s.lead)
	if !ok {
		return false
	}
	if _, granted := s.permission(ctx, e.UserID); !granted {
		return false
	}
	entry := *e
	return s.scheduler.Arm(e.ID, at, func(tok reminders.Token) { s.fire(tok, &entry, start) })
}

// permission запрашивается один раз на пользователя: разрешение есть, если к профилю привязан чат
func (s *timetableService) permission(ctx context.Context, profileID uuid.UUID) (int64, bool) {
	s.mu.Lock()
	chat, asked := s.permissions[profileID]
	s.mu.Unlock()
	if asked {
		if chat == nil {
			return 0, false
		}
		return *chat, true
	}

	p, err := s.repos.Profiles.GetByID(ctx, profileID)
	if err != nil {
		s.log.Warn("failed to check reminder permission", slog.String("profile_id", profileID.String()), slog.String("error", err.Error()))
		return 0, false
	}
	s.mu.Lock()
	s.permissions[profileID] = p.TelegramChatID
	s.mu.Unlock()
	if p.TelegramChatID == nil {
		s.log.Debug("reminder permission denied", slog.String("profile_id", profileID.String()))
		return 0, false
	}
	return *p.TelegramChatID, true
}

func (s *timetableService) ForgetPermission(profileID uuid.UUID) {
	s.mu.Lock()
	delete(s.permissions, profileID)
	s.mu.Unlock()
}

// fire отправляет напоминание и взводит следующее повторение.
// Если запись успели удалить или изменить, токен устарел и повторение не взводится.
func (s *timetableService) fire(tok reminders.Token, e *models.TimetableEntry, start time.Time) {
	if !s.scheduler.Current(tok) {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), reminderTimeout)
	defer cancel()

	if chat, ok := s.permission(ctx, e.UserID); ok {
		r := telegram.Reminder{Title: e.Title, StartTime: start, Lead: s.lead}
		if e.SubjectName != nil {
			r.Subject = *e.SubjectName
		}
		if err := s.notifier.SendReminder(ctx, chat, r); err != nil {
			s.log.Warn("failed to send reminder", slog.String("entry_id", e.ID.String()), slog.String("error", err.Error()))
		}
	}

	if !e.IsRecurring {
		return
	}
	next, ok := e.NextOccurrence(start)
	if !ok {
		return
	}
	entry := *e
	if !s.scheduler.Rearm(tok, next.Add(-s.lead), func(tok reminders.Token) { s.fire(tok, &entry, next) }) {
		s.log.Debug("recurring reminder dropped", slog.String("entry_id", e.ID.String()))
	}
}

func (s *timetableService) RestoreReminders(ctx context.Context) (int, error) {
	entries, err := s.repos.Timetable.ListWithReminders(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to load timetable: %w", err)
	}
	armed := 0
	for _, e := range entries {
		if s.arm(ctx, e) {
			armed++
		}
	}
	s.log.Info("reminders restored", slog.Int("count", armed), slog.Int("entries", len(entries)))
	return armed, nil
}

// EntriesOn возвращает записи, которые приходятся на день day, включая повторения
func EntriesOn(entries []*models.TimetableEntry, day time.Time) []*models.TimetableEntry {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	to := from.AddDate(0, 0, 1)

	out := make([]*models.TimetableEntry, 0)
	for _, e := range entries {
		start := e.StartTime.In(day.Location())
		if !start.Before(from) && start.Before(to) {
			out = append(out, e)
			continue
		}
		if start.Before(from) {
			if next, ok := e.NextOccurrence(from.Add(-time.Nanosecond)); ok && next.Before(to) {
				out = append(out, e)
			}
		}
	}
	return out
}
