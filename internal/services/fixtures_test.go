package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"brainself/internal/access"
	"brainself/internal/models"
	"brainself/internal/repository"
	"brainself/pkg/database"
	"brainself/pkg/telegram"
)

func newRepos(t *testing.T) *repository.Repositories {
	t.Helper()
	db, err := database.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repository.New(db.DB)
}

// newSession создает identity и профиль с ролью и возвращает сессию для него
func newSession(t *testing.T, repos *repository.Repositories, nickname string, role models.AppRole) access.Session {
	t.Helper()
	ctx := context.Background()
	user := &models.User{Email: nickname + "@example.com", PasswordHash: "x"}
	require.NoError(t, repos.Users.Create(ctx, user))
	p := &models.Profile{UserID: user.ID, Nickname: nickname, Email: user.Email, Role: &role}
	require.NoError(t, repos.Profiles.Create(ctx, p))
	return access.ForProfile(p)
}

func newTag(t *testing.T, repos *repository.Repositories, name string) *models.SchoolTag {
	t.Helper()
	tag := &models.SchoolTag{Name: name, DisplayName: name, Color: models.DefaultTagColor}
	require.NoError(t, repos.SchoolTags.Create(context.Background(), tag))
	return tag
}

// recordingNotifier запоминает отправленные уведомления
type recordingNotifier struct {
	mu        sync.Mutex
	reminders []telegram.Reminder
	alerts    map[int64]int
}

func (n *recordingNotifier) SendReminder(_ context.Context, _ int64, r telegram.Reminder) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reminders = append(n.reminders, r)
	return nil
}

func (n *recordingNotifier) SendAdminAlert(_ context.Context, chatID int64, _ telegram.AdminAlert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.alerts == nil {
		n.alerts = make(map[int64]int)
	}
	n.alerts[chatID]++
	return nil
}

func (n *recordingNotifier) reminderCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.reminders)
}

func ptr[T any](v T) *T { return &v }
