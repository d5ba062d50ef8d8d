package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brainself/internal/models"
)

func contact() ContactInput {
	return ContactInput{
		SenderName:    " Parent ",
		SenderContact: "parent@example.com",
		Title:         "Trial lesson",
		Content:       "Can my kid join a trial lesson?",
	}
}

func TestInboxService_BroadcastToAdmins(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()
	first := newSession(t, repos, "first", models.RoleAdmin)
	second := newSession(t, repos, "second", models.RoleAdmin)
	student := newSession(t, repos, "student", models.RoleStudent)
	require.NoError(t, repos.Profiles.SetTelegramChat(ctx, first.ProfileID(), ptr(int64(42))))

	notifier := &recordingNotifier{}
	inbox := NewInboxService(repos, notifier, nil)

	n, err := inbox.BroadcastToAdmins(ctx, contact())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, map[int64]int{42: 1}, notifier.alerts)

	got, err := inbox.List(ctx, second)
	require.NoError(t, err)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, int64(1), got.Unread)
	assert.Equal(t, "Trial lesson", got.Messages[0].Title)
	assert.Equal(t, models.MessageTypeOther, got.Messages[0].MessageType)
	assert.Contains(t, got.Messages[0].Content, "From: Parent")

	none, err := inbox.List(ctx, student)
	require.NoError(t, err)
	assert.Empty(t, none.Messages)

	_, err = inbox.BroadcastToAdmins(ctx, ContactInput{SenderName: "x"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestInboxService_NoAdmins(t *testing.T) {
	repos := newRepos(t)
	_, err := NewInboxService(repos, nil, nil).BroadcastToAdmins(context.Background(), contact())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInboxService_ReadState(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()
	admin := newSession(t, repos, "admin", models.RoleAdmin)
	intruder := newSession(t, repos, "intruder", models.RoleStudent)
	inbox := NewInboxService(repos, nil, nil)

	for i := 0; i < 2; i++ {
		_, err := inbox.BroadcastToAdmins(ctx, contact())
		require.NoError(t, err)
	}
	got, err := inbox.List(ctx, admin)
	require.NoError(t, err)
	require.Len(t, got.Messages, 2)
	id := got.Messages[0].ID

	assert.ErrorIs(t, inbox.MarkRead(ctx, intruder, id), ErrNotFound)
	assert.ErrorIs(t, inbox.Delete(ctx, intruder, id), ErrNotFound)

	require.NoError(t, inbox.MarkRead(ctx, admin, id))
	require.NoError(t, inbox.MarkRead(ctx, admin, id), "marking twice is a no-op")
	unread, err := inbox.UnreadCount(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	// прочитанное старое сообщение удаляется, непрочитанное остается
	require.NoError(t, inbox.Prune(ctx, time.Now().Add(time.Hour)))
	got, err = inbox.List(ctx, admin)
	require.NoError(t, err)
	require.Len(t, got.Messages, 1)
	assert.False(t, got.Messages[0].ReadStatus)

	marked, err := inbox.MarkAllRead(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), marked)

	require.NoError(t, inbox.Delete(ctx, admin, got.Messages[0].ID))
	unread, err = inbox.UnreadCount(ctx, admin)
	require.NoError(t, err)
	assert.Zero(t, unread)
}
