package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brainself/internal/access"
	"brainself/internal/models"
	"brainself/internal/reminders"
	"brainself/pkg/telegram"
)

func TestNextReminder(t *testing.T) {
	now := time.Date(2024, 3, 4, 9, 58, 0, 0, time.UTC)
	lead := 5 * time.Minute

	once := &models.TimetableEntry{StartTime: now.Add(time.Hour)}
	at, start, ok := NextReminder(once, now, lead)
	require.True(t, ok)
	assert.Equal(t, now.Add(55*time.Minute), at)
	assert.Equal(t, once.StartTime, start)

	past := &models.TimetableEntry{StartTime: now.Add(-time.Hour)}
	_, _, ok = NextReminder(past, now, lead)
	assert.False(t, ok)

	// сегодняшнее напоминание в 9:55 уже прошло, берется завтрашнее занятие
	daily := &models.TimetableEntry{
		StartTime:         time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC),
		IsRecurring:       true,
		RecurrencePattern: ptr(models.RecurrenceDaily),
	}
	at, start, ok = NextReminder(daily, now, lead)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 3, 5, 9, 55, 0, 0, time.UTC), at)
}

func entryInput(start time.Time) TimetableInput {
	return TimetableInput{
		Title:               "Algebra",
		SubjectName:         ptr("Mathematics"),
		StartTime:           start,
		EndTime:             start.Add(time.Hour),
		NotificationEnabled: true,
	}
}

func TestTimetableService_Reminders(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()
	student := newSession(t, repos, "student", models.RoleStudent)
	scheduler := reminders.NewScheduler()
	t.Cleanup(scheduler.Stop)
	notifier := &recordingNotifier{}
	svc := NewTimetableService(repos, scheduler, notifier, 0, nil).(*timetableService)

	start := time.Now().Add(2 * time.Hour).Truncate(time.Minute)

	// без привязанного Telegram запись сохраняется без напоминания
	e, err := svc.Create(ctx, student, entryInput(start))
	require.NoError(t, err)
	assert.Equal(t, models.EntryTypeStudy, e.EntryType)
	_, armed := scheduler.Pending(e.ID)
	assert.False(t, armed)

	require.NoError(t, repos.Profiles.SetTelegramChat(ctx, student.ProfileID(), ptr(int64(7))))
	svc.ForgetPermission(student.ProfileID())

	e, err = svc.Update(ctx, student, e.ID, entryInput(start))
	require.NoError(t, err)
	at, armed := scheduler.Pending(e.ID)
	require.True(t, armed)
	assert.True(t, at.Equal(start.Add(-DefaultReminderLead)))

	// перенос заменяет прежнее напоминание
	moved := start.Add(24 * time.Hour)
	_, err = svc.Update(ctx, student, e.ID, entryInput(moved))
	require.NoError(t, err)
	at, armed = scheduler.Pending(e.ID)
	require.True(t, armed)
	assert.True(t, at.Equal(moved.Add(-DefaultReminderLead)))
	assert.Equal(t, 1, scheduler.Len())

	off := entryInput(moved)
	off.NotificationEnabled = false
	_, err = svc.Update(ctx, student, e.ID, off)
	require.NoError(t, err)
	_, armed = scheduler.Pending(e.ID)
	assert.False(t, armed)

	_, err = svc.Update(ctx, student, e.ID, entryInput(moved))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, student, e.ID))
	assert.Zero(t, scheduler.Len())
}

func TestTimetableService_FireReschedulesRecurring(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()
	student := newSession(t, repos, "student", models.RoleStudent)
	require.NoError(t, repos.Profiles.SetTelegramChat(ctx, student.ProfileID(), ptr(int64(7))))
	scheduler := reminders.NewScheduler()
	t.Cleanup(scheduler.Stop)
	notifier := &recordingNotifier{}
	svc := NewTimetableService(repos, scheduler, notifier, 0, nil).(*timetableService)

	in := entryInput(time.Now().Add(time.Hour).Truncate(time.Minute))
	in.IsRecurring = true
	in.RecurrencePattern = ptr(models.RecurrenceWeekly)
	e, err := svc.Create(ctx, student, in)
	require.NoError(t, err)

	svc.fire(scheduler.TokenFor(e.ID), e, e.StartTime)
	require.Equal(t, 1, notifier.reminderCount())
	assert.Equal(t, "Mathematics", notifier.reminders[0].Subject)

	at, armed := scheduler.Pending(e.ID)
	require.True(t, armed)
	assert.True(t, at.Equal(e.StartTime.Add(7*24*time.Hour-DefaultReminderLead)))
}

func TestTimetableService_Validation(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()
	owner := newSession(t, repos, "owner", models.RoleStudent)
	other := newSession(t, repos, "other", models.RoleStudent)
	scheduler := reminders.NewScheduler()
	t.Cleanup(scheduler.Stop)
	svc := NewTimetableService(repos, scheduler, &recordingNotifier{}, 0, nil)

	start := time.Now().Add(time.Hour)
	bad := entryInput(start)
	bad.EndTime = start
	_, err := svc.Create(ctx, owner, bad)
	assert.ErrorIs(t, err, ErrValidation)

	bad = entryInput(start)
	bad.IsRecurring = true
	bad.RecurrencePattern = ptr("monthly")
	_, err = svc.Create(ctx, owner, bad)
	assert.ErrorIs(t, err, ErrValidation)

	e, err := svc.Create(ctx, owner, entryInput(start))
	require.NoError(t, err)
	_, err = svc.Update(ctx, other, e.ID, entryInput(start))
	assert.ErrorIs(t, err, access.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, other, e.ID), access.ErrForbidden)

	mine, err := svc.List(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestEntriesOn(t *testing.T) {
	day := time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)
	today := &models.TimetableEntry{Title: "today", StartTime: time.Date(2024, 3, 6, 8, 0, 0, 0, time.UTC)}
	tomorrow := &models.TimetableEntry{Title: "tomorrow", StartTime: time.Date(2024, 3, 7, 8, 0, 0, 0, time.UTC)}
	weekly := &models.TimetableEntry{
		Title:             "weekly",
		StartTime:         time.Date(2024, 2, 28, 15, 0, 0, 0, time.UTC),
		IsRecurring:       true,
		RecurrencePattern: ptr(models.RecurrenceWeekly),
	}
	otherWeekday := &models.TimetableEntry{
		Title:             "monday",
		StartTime:         time.Date(2024, 2, 26, 15, 0, 0, 0, time.UTC),
		IsRecurring:       true,
		RecurrencePattern: ptr(models.RecurrenceWeekly),
	}

	got := EntriesOn([]*models.TimetableEntry{today, tomorrow, weekly, otherWeekday}, day)
	titles := make([]string, 0, len(got))
	for _, e := range got {
		titles = append(titles, e.Title)
	}
	assert.Equal(t, []string{"today", "weekly"}, titles)
}

// blockingNotifier держит SendReminder, пока тест не отпустит release
type blockingNotifier struct {
	recordingNotifier
	entered chan struct{}
	release chan struct{}
}

func (n *blockingNotifier) SendReminder(ctx context.Context, chatID int64, r telegram.Reminder) error {
	n.entered <- struct{}{}
	<-n.release
	return n.recordingNotifier.SendReminder(ctx, chatID, r)
}

func TestTimetableService_DeleteDuringSendStopsRecurrence(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()
	student := newSession(t, repos, "student", models.RoleStudent)
	require.NoError(t, repos.Profiles.SetTelegramChat(ctx, student.ProfileID(), ptr(int64(7))))
	scheduler := reminders.NewScheduler()
	t.Cleanup(scheduler.Stop)
	notifier := &blockingNotifier{entered: make(chan struct{}), release: make(chan struct{})}
	svc := NewTimetableService(repos, scheduler, notifier, 0, nil).(*timetableService)

	in := entryInput(time.Now().Add(time.Hour).Truncate(time.Minute))
	in.IsRecurring = true
	in.RecurrencePattern = ptr(models.RecurrenceDaily)
	e, err := svc.Create(ctx, student, in)
	require.NoError(t, err)
	tok := scheduler.TokenFor(e.ID)

	done := make(chan struct{})
	go func() {
		svc.fire(tok, e, e.StartTime)
		close(done)
	}()
	<-notifier.entered
	require.NoError(t, svc.Delete(ctx, student, e.ID))
	close(notifier.release)
	<-done

	assert.Equal(t, 1, notifier.reminderCount())
	_, armed := scheduler.Pending(e.ID)
	assert.False(t, armed, "deleted entry must not be re-armed")
}

func TestTimetableService_UpdateDuringSendKeepsNewSchedule(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()
	student := newSession(t, repos, "student", models.RoleStudent)
	require.NoError(t, repos.Profiles.SetTelegramChat(ctx, student.ProfileID(), ptr(int64(7))))
	scheduler := reminders.NewScheduler()
	t.Cleanup(scheduler.Stop)
	notifier := &blockingNotifier{entered: make(chan struct{}), release: make(chan struct{})}
	svc := NewTimetableService(repos, scheduler, notifier, 0, nil).(*timetableService)

	in := entryInput(time.Now().Add(time.Hour).Truncate(time.Minute))
	in.IsRecurring = true
	in.RecurrencePattern = ptr(models.RecurrenceDaily)
	e, err := svc.Create(ctx, student, in)
	require.NoError(t, err)
	tok := scheduler.TokenFor(e.ID)

	done := make(chan struct{})
	go func() {
		svc.fire(tok, e, e.StartTime)
		close(done)
	}()
	<-notifier.entered
	moved := entryInput(e.StartTime.Add(3 * time.Hour))
	_, err = svc.Update(ctx, student, e.ID, moved)
	require.NoError(t, err)
	close(notifier.release)
	<-done

	at, armed := scheduler.Pending(e.ID)
	require.True(t, armed)
	assert.True(t, at.Equal(moved.StartTime.Add(-DefaultReminderLead)))
	assert.Equal(t, 1, scheduler.Len())
}
